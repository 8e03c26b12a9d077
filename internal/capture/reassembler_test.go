// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package capture

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReassembler_ReassemblesInOrder(t *testing.T) {
	r := NewReassembler(testLogger())

	got, ok := r.Insert(10, []byte("abc"))
	if !ok || !bytes.Equal(got, []byte("abc")) {
		t.Fatalf("expected abc, got %q ok=%v", got, ok)
	}

	got, ok = r.Insert(13, []byte("def"))
	if !ok || !bytes.Equal(got, []byte("def")) {
		t.Fatalf("expected def, got %q ok=%v", got, ok)
	}
}

func TestReassembler_ReassemblesOutOfOrderOnceGapFilled(t *testing.T) {
	r := NewReassembler(testLogger())

	got, ok := r.Insert(100, []byte("abc"))
	if !ok || !bytes.Equal(got, []byte("abc")) {
		t.Fatalf("expected abc, got %q ok=%v", got, ok)
	}

	if _, ok := r.Insert(106, []byte("ghi")); ok {
		t.Fatal("expected no output while gap at 103-105 is open")
	}

	got, ok = r.Insert(103, []byte("def"))
	if !ok || !bytes.Equal(got, []byte("defghi")) {
		t.Fatalf("expected defghi once the gap is filled, got %q ok=%v", got, ok)
	}
}

func TestReassembler_TrimsOverlappingSegmentsAndIgnoresDuplicates(t *testing.T) {
	r := NewReassembler(testLogger())

	if _, ok := r.Insert(50, []byte("abc")); !ok {
		t.Fatal("expected first segment to be delivered")
	}

	// Duplicate, shorter payload at the same seq should be ignored.
	if _, ok := r.Insert(50, []byte("ab")); ok {
		t.Fatal("expected duplicate shorter payload to be dropped")
	}

	// Overlapping payload should emit only the unseen tail.
	got, ok := r.Insert(51, []byte("bcdef"))
	if !ok || !bytes.Equal(got, []byte("def")) {
		t.Fatalf("expected def, got %q ok=%v", got, ok)
	}
}

func TestReassembler_ResetDropsStateAndReinitializes(t *testing.T) {
	r := NewReassembler(testLogger())

	if _, ok := r.Insert(500, []byte("abc")); !ok {
		t.Fatal("expected first segment to be delivered")
	}

	r.Reset(nil)
	if _, has := r.NextSequence(); has {
		t.Fatal("expected no established sequence after reset")
	}

	got, ok := r.Insert(42, []byte("xyz"))
	if !ok || !bytes.Equal(got, []byte("xyz")) {
		t.Fatalf("expected xyz, got %q ok=%v", got, ok)
	}
}

func TestReassembler_EmptyPayloadIgnored(t *testing.T) {
	r := NewReassembler(testLogger())
	if _, ok := r.Insert(1, nil); ok {
		t.Fatal("expected empty payload to be ignored")
	}
}

func TestReassembler_GapBeyondCacheLimitSkipsAhead(t *testing.T) {
	r := NewReassembler(testLogger())

	// Establish next_seq at 0, then leave the first byte missing forever
	// and push enough out-of-order data to exceed the 5 MiB cache cap.
	r.Reset(uint32Ptr(0))

	chunk := bytes.Repeat([]byte{0xAB}, 1<<20) // 1 MiB
	seq := uint32(1)
	for i := 0; i < 6; i++ {
		r.Insert(seq, chunk)
		seq += uint32(len(chunk))
	}

	// The reassembler should have given up waiting for seq 0 and advanced
	// past it once the 5 MiB budget was exceeded.
	next, has := r.NextSequence()
	if !has || next == 0 {
		t.Fatalf("expected reassembler to skip past the unfillable gap, next=%d has=%v", next, has)
	}
}

func uint32Ptr(v uint32) *uint32 { return &v }

func TestSequenceWrapAround(t *testing.T) {
	const maxU32 = ^uint32(0)
	if !SequenceBefore(maxU32, 0) {
		t.Fatal("expected max uint32 to be before 0 across the wrap boundary")
	}
	if !SequenceAfter(0, maxU32) {
		t.Fatal("expected 0 to be after max uint32 across the wrap boundary")
	}
}
