// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package framing reassembles a contiguous byte stream into complete
// length-prefixed application frames: a 4-byte big-endian length (header
// included) followed by that many bytes total.
package framing

import "encoding/binary"

// maxBufferSize is the safety cap against pathological allocations from a
// malformed or desynchronized stream.
const maxBufferSize = 10 * 1024 * 1024 // 10 MiB

// lengthPrefixSize is the size of the u32 BE length header itself.
const lengthPrefixSize = 4

// Framer buffers a byte stream and extracts complete length-prefixed
// frames from it. It is not safe for concurrent use.
type Framer struct {
	buffer []byte
}

// NewFramer creates an empty Framer.
func NewFramer() *Framer {
	return &Framer{buffer: make([]byte, 0, 4096)}
}

// Feed appends incoming bytes to the internal buffer. If the buffer grows
// past maxBufferSize, it is dropped entirely to recover from malformed
// input.
func (f *Framer) Feed(data []byte) {
	f.buffer = append(f.buffer, data...)
	if len(f.buffer) > maxBufferSize {
		f.buffer = f.buffer[:0]
	}
}

// FeedOwned feeds data into the Framer without copying when the internal
// buffer is currently empty, taking ownership of the slice instead. Subject
// to the same maxBufferSize cap as Feed.
func (f *Framer) FeedOwned(data []byte) {
	if len(f.buffer) == 0 {
		f.buffer = data
	} else {
		f.buffer = append(f.buffer, data...)
	}
	if len(f.buffer) > maxBufferSize {
		f.buffer = f.buffer[:0]
	}
}

// TryNext extracts the next complete frame, including its length prefix,
// if one is fully buffered. Returns ok=false when more data is needed.
// A length prefix too small to carry at least one payload byte, or an
// absurd one, triggers a hard reset of the buffer to recover from
// desynchronization — a frame is never shorter than lengthPrefixSize+1.
func (f *Framer) TryNext() (frame []byte, ok bool) {
	if len(f.buffer) < lengthPrefixSize {
		return nil, false
	}

	frameLen := int(binary.BigEndian.Uint32(f.buffer[:lengthPrefixSize]))

	if frameLen < lengthPrefixSize+1 || frameLen > maxBufferSize {
		f.buffer = f.buffer[:0]
		return nil, false
	}

	if len(f.buffer) < frameLen {
		return nil, false
	}

	frame = f.buffer[:frameLen]
	f.buffer = f.buffer[frameLen:]
	return frame, true
}

// TakeRemaining returns and clears whatever bytes are left unconsumed in
// the buffer, for cooperative shutdown.
func (f *Framer) TakeRemaining() []byte {
	remaining := f.buffer
	f.buffer = nil
	return remaining
}
