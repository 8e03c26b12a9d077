// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package capture reassembles out-of-order TCP segments, keyed by the
// 32-bit wrap-around sequence number, into contiguous byte runs.
package capture

import (
	"log/slog"
	"sync"
)

// maxCacheSize is the byte budget of the out-of-order segment cache before
// the reassembler gives up on the missing gap and jumps ahead.
const maxCacheSize = 5 * 1024 * 1024 // 5 MiB

// SequenceBefore reports whether a comes strictly before b in the wrapping
// 32-bit sequence space.
func SequenceBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// SequenceAfter reports whether a comes strictly after b in the wrapping
// 32-bit sequence space.
func SequenceAfter(a, b uint32) bool {
	return int32(a-b) > 0
}

// Reassembler reorders TCP segments for a single flow into contiguous byte
// runs. Its methods serialize on an internal mutex, so it is safe for
// concurrent use.
type Reassembler struct {
	mu sync.Mutex

	cache         map[uint32][]byte
	hasNextSeq    bool
	nextSeq       uint32
	bufferedBytes int

	logger *slog.Logger
}

// NewReassembler creates an empty Reassembler.
func NewReassembler(logger *slog.Logger) *Reassembler {
	return &Reassembler{
		cache:  make(map[uint32][]byte),
		logger: logger.With("component", "tcp_reassembler"),
	}
}

// Insert records a segment received at the given sequence number. It
// returns the longest contiguous run of bytes starting at the expected
// sequence that becomes available as a result, or ok=false if the segment
// was buffered (or discarded) without producing new contiguous data.
func (r *Reassembler) Insert(sequenceNumber uint32, payload []byte) (drained []byte, ok bool) {
	if len(payload) == 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	expected := sequenceNumber
	if r.hasNextSeq {
		expected = r.nextSeq
	} else {
		r.nextSeq = sequenceNumber
		r.hasNextSeq = true
	}

	startSeq := sequenceNumber
	data := payload

	if SequenceBefore(startSeq, expected) {
		overlap := expected - startSeq
		if int(overlap) >= len(data) {
			return nil, false
		}
		startSeq = expected
		data = data[overlap:]
	}

	if existing, exists := r.cache[startSeq]; exists {
		if len(data) > len(existing) {
			r.bufferedBytes -= len(existing)
			r.cache[startSeq] = append([]byte(nil), data...)
			r.bufferedBytes += len(data)
		}
	} else {
		r.cache[startSeq] = append([]byte(nil), data...)
		r.bufferedBytes += len(data)
	}

	if r.bufferedBytes > maxCacheSize {
		r.skipToEarliestCached()
	}

	return r.drain()
}

// skipToEarliestCached advances nextSeq to the earliest sequence number
// currently cached, abandoning whatever gap the reassembler was waiting on.
// Must be called with mu held.
func (r *Reassembler) skipToEarliestCached() {
	var first uint32
	found := false
	for seq := range r.cache {
		if !found || SequenceBefore(seq, first) {
			first = seq
			found = true
		}
	}
	if !found {
		return
	}
	r.logger.Warn("reassembly buffer exceeded limit, skipping gap",
		"buffered_bytes", r.bufferedBytes,
		"waiting_for", r.nextSeq,
		"skip_to", first,
	)
	r.nextSeq = first
}

// drain pulls every contiguous segment starting at nextSeq out of the
// cache and concatenates them. Must be called with mu held.
func (r *Reassembler) drain() ([]byte, bool) {
	cursor := r.nextSeq
	var output []byte

	for {
		segment, exists := r.cache[cursor]
		if !exists {
			break
		}
		delete(r.cache, cursor)
		r.bufferedBytes -= len(segment)
		cursor += uint32(len(segment))
		output = append(output, segment...)
	}

	if len(output) == 0 {
		return nil, false
	}
	r.nextSeq = cursor
	return output, true
}

// Reset clears all buffered state and rearms the reassembler to expect
// nextSeq next. Pass nil to forget the expected sequence entirely.
func (r *Reassembler) Reset(nextSeq *uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[uint32][]byte)
	r.bufferedBytes = 0
	if nextSeq == nil {
		r.hasNextSeq = false
		r.nextSeq = 0
		return
	}
	r.hasNextSeq = true
	r.nextSeq = *nextSeq
}

// NextSequence returns the sequence number the reassembler currently
// expects next, and whether one has been established yet.
func (r *Reassembler) NextSequence() (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextSeq, r.hasNextSeq
}
