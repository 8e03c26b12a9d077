// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"log/slog"

	"github.com/resonance-meter/combat-core/internal/capture"
	"github.com/resonance-meter/combat-core/internal/decode"
	"github.com/resonance-meter/combat-core/internal/framing"
	"github.com/resonance-meter/combat-core/internal/ingest"
)

// Flow owns one captured TCP connection's state: its sequence-number
// reassembler, its length-prefixed application framer, and its sub-packet
// processor. Ingest is not safe for concurrent calls on the same Flow —
// callers should serialize per-flow, same as the underlying capture
// source delivers segments for one connection in order of arrival.
type Flow struct {
	server      Server
	reassembler *ingest.ThrottledFlow
	framer      *framing.Framer
	processor   *decode.Processor
	queue       *EventQueue
	logger      *slog.Logger
}

// NewFlow creates a Flow for server, emitting decoded events onto queue.
// bytesPerSec<=0 disables rate limiting on this flow's reassembly.
func NewFlow(ctx context.Context, server Server, queue *EventQueue, bytesPerSec int64, logger *slog.Logger) *Flow {
	logger = logger.With("flow", server.String())
	return &Flow{
		server:      server,
		reassembler: ingest.NewThrottledFlow(ctx, capture.NewReassembler(logger), bytesPerSec),
		framer:      framing.NewFramer(),
		processor:   decode.NewProcessor(logger),
		queue:       queue,
		logger:      logger,
	}
}

// Ingest feeds one captured TCP segment through reassembly, framing, and
// decoding, pushing every decoded event onto the flow's queue.
func (f *Flow) Ingest(sequenceNumber uint32, payload []byte) error {
	reassembled, ok, err := f.reassembler.Insert(sequenceNumber, payload)
	// Insert may return bytes it successfully reassembled before a later
	// chunk's rate-limit wait failed; feed those through before reporting
	// the error, rather than discarding already-reassembled data.
	if ok {
		f.framer.Feed(reassembled)
	}
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	for {
		frame, ok := f.framer.TryNext()
		if !ok {
			break
		}
		// frame includes its 4-byte length prefix; the processor walks
		// only the sub-packet payload that follows it.
		f.processor.Process(frame[4:], func(e decode.Event) {
			f.queue.Push(f.server, e)
		})
	}

	return nil
}

// Reset clears the flow's reassembly state, e.g. after a detected
// retransmission-from-scratch or a capture restart.
func (f *Flow) Reset(nextSeq *uint32) {
	f.reassembler.Reassembler().Reset(nextSeq)
}
