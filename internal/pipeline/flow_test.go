// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/resonance-meter/combat-core/internal/decode"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildNotifySubPacket mirrors the decode package's test helper: a
// sub-packet header (size+type) wrapping a Notify fragment payload.
func buildNotifySubPacket(methodID uint32, body []byte) []byte {
	const serviceUUID = 0x0000000063335342
	payload := make([]byte, 0, 16+len(body))
	var header [16]byte
	binary.BigEndian.PutUint64(header[0:8], serviceUUID)
	binary.BigEndian.PutUint32(header[8:12], 0)
	binary.BigEndian.PutUint32(header[12:16], methodID)
	payload = append(payload, header[:]...)
	payload = append(payload, body...)

	packetSize := 6 + len(payload)
	out := make([]byte, 6, packetSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(packetSize))
	binary.BigEndian.PutUint16(out[4:6], 0x0001) // FragmentNotify
	return append(out, payload...)
}

// wrapFrame prefixes subPacket with the application-level 4-byte BE
// length, header included.
func wrapFrame(subPacket []byte) []byte {
	frameLen := 4 + len(subPacket)
	out := make([]byte, 4, frameLen)
	binary.BigEndian.PutUint32(out[0:4], uint32(frameLen))
	return append(out, subPacket...)
}

func TestFlow_IngestInOrderSegmentProducesEvent(t *testing.T) {
	server := NewServer([4]byte{127, 0, 0, 1}, 1234, [4]byte{10, 0, 0, 1}, 5678)
	queue := NewEventQueue()

	var got []decode.Event
	done := make(chan struct{})
	go func() {
		queue.Run(func(_ Server, e decode.Event) {
			got = append(got, e)
		})
		close(done)
	}()

	flow := NewFlow(context.Background(), server, queue, 0, testLogger())

	frame := wrapFrame(buildNotifySubPacket(1, []byte("hit")))
	if err := flow.Ingest(100, frame); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	queue.Close()
	<-done

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if string(got[0].Payload) != "hit" {
		t.Fatalf("unexpected payload: %q", got[0].Payload)
	}
}

func TestFlow_IngestOutOfOrderBuffersUntilGapFilled(t *testing.T) {
	server := NewServer([4]byte{127, 0, 0, 1}, 1234, [4]byte{10, 0, 0, 1}, 5678)
	queue := NewEventQueue()

	var got []decode.Event
	done := make(chan struct{})
	go func() {
		queue.Run(func(_ Server, e decode.Event) { got = append(got, e) })
		close(done)
	}()

	flow := NewFlow(context.Background(), server, queue, 0, testLogger())

	frame := wrapFrame(buildNotifySubPacket(2, []byte("buff")))
	first, second := frame[:5], frame[5:]

	// A fresh reassembler adopts the first segment it sees as its baseline,
	// so establish the expected sequence up front.
	base := uint32(100)
	flow.Reset(&base)

	// Deliver the second half first, at a sequence number past the
	// first: the flow should buffer it silently.
	if err := flow.Ingest(105, second); err != nil {
		t.Fatalf("Ingest (out of order): %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("expected no events before the gap is filled, got %d", len(got))
	}

	if err := flow.Ingest(100, first); err != nil {
		t.Fatalf("Ingest (gap fill): %v", err)
	}

	queue.Close()
	<-done

	if len(got) != 1 || got[0].Opcode != decode.OpBuffApply {
		t.Fatalf("expected the reassembled event to surface, got %+v", got)
	}
}

func TestFlow_Reset(t *testing.T) {
	server := NewServer([4]byte{0, 0, 0, 0}, 1, [4]byte{0, 0, 0, 0}, 2)
	queue := NewEventQueue()
	flow := NewFlow(context.Background(), server, queue, 0, testLogger())

	if err := flow.Ingest(500, []byte("abc")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	flow.Reset(nil)

	seq, hasSeq := flow.reassembler.Reassembler().NextSequence()
	if hasSeq {
		t.Fatalf("expected no next sequence after reset, got %d", seq)
	}
}

func TestFlow_IngestFeedsPartialBytesBeforeRateLimitError(t *testing.T) {
	server := NewServer([4]byte{127, 0, 0, 1}, 1234, [4]byte{10, 0, 0, 1}, 5678)
	queue := NewEventQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// bytesPerSec=10 gives a 10-byte burst: the frame below is split into
	// chunks of 10, 10, and 9 bytes. The first chunk drains the full burst
	// instantly; the second chunk then has to wait for the bucket to refill,
	// which outlives the context's deadline.
	flow := NewFlow(ctx, server, queue, 10, testLogger())

	frame := wrapFrame(buildNotifySubPacket(1, []byte("hit")))
	if len(frame) <= 10 {
		t.Fatalf("test frame too short to exercise multi-chunk throttling: %d bytes", len(frame))
	}

	err := flow.Ingest(1000, frame)
	if err == nil {
		t.Fatal("expected an error from the expired context on the second chunk")
	}

	// The first chunk reassembled cleanly (it's the very first segment, so
	// it becomes the reassembler's baseline and drains immediately) and
	// must have reached the framer despite the later chunk's error.
	remaining := flow.framer.TakeRemaining()
	if !bytes.Equal(remaining, frame[:10]) {
		t.Fatalf("expected the first chunk's bytes in the framer, got %q", remaining)
	}

	queue.Close()
}

func TestServer_String(t *testing.T) {
	s := NewServer([4]byte{192, 168, 1, 1}, 443, [4]byte{10, 0, 0, 5}, 51000)
	want := "192.168.1.1:443 -> 10.0.0.5:51000"
	if got := s.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
