// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package ingest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/resonance-meter/combat-core/internal/capture"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestThrottledFlow_BypassWhenUnlimited(t *testing.T) {
	r := capture.NewReassembler(testLogger())
	tf := NewThrottledFlow(context.Background(), r, 0)

	got, ok, err := tf.Insert(1, []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("expected hello, got %q ok=%v", got, ok)
	}
}

func TestThrottledFlow_RespectsRateAndReassembles(t *testing.T) {
	r := capture.NewReassembler(testLogger())
	tf := NewThrottledFlow(context.Background(), r, 1<<20) // 1 MiB/s, well above test payload

	got, ok, err := tf.Insert(1, []byte("abcdef"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || !bytes.Equal(got, []byte("abcdef")) {
		t.Fatalf("expected abcdef, got %q ok=%v", got, ok)
	}
}

func TestThrottledFlow_CancelledContext(t *testing.T) {
	r := capture.NewReassembler(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tf := NewThrottledFlow(ctx, r, 1) // 1 byte/sec forces a wait
	if _, _, err := tf.Insert(1, []byte("abcdef")); err == nil {
		t.Fatal("expected error from a cancelled context")
	}
}
