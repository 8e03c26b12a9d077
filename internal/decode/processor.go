// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package decode

import (
	"encoding/binary"
	"log/slog"
)

// subPacketHeaderSize is size(4) + type(2).
const subPacketHeaderSize = 6

// maxFrameDownDepth bounds FrameDown recursion so a malformed or
// adversarial nested frame can't exhaust the stack.
const maxFrameDownDepth = 16

// Event is a decoded Notify sub-packet, ready for domain-level
// interpretation downstream.
type Event struct {
	Opcode  Opcode
	Payload []byte
}

// Processor walks a complete application frame's sub-packets and emits one
// Event per recognized Notify fragment. It recurses (depth-bounded) into
// FrameDown fragments, which carry a nested frame to process in turn.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{logger: logger.With("component", "frame_processor")}
}

// Process walks frame's sub-packets, calling emit for every decoded Notify
// event. Malformed remainders are abandoned (the walk stops) rather than
// treated as fatal — a frame is processed best-effort.
func (p *Processor) Process(frame []byte, emit func(Event)) {
	p.process(frame, emit, 0)
}

func (p *Processor) process(frame []byte, emit func(Event), depth int) {
	if depth > maxFrameDownDepth {
		p.logger.Debug("frame-down recursion limit reached, abandoning remainder", "depth", depth)
		return
	}

	offset := 0
	for offset+subPacketHeaderSize <= len(frame) {
		packetSize := int(binary.BigEndian.Uint32(frame[offset : offset+4]))
		if packetSize < subPacketHeaderSize {
			p.logger.Debug("malformed sub-packet: size below header size", "packet_size", packetSize)
			return
		}

		end := offset + packetSize
		if end > len(frame) {
			return
		}

		rawType := binary.BigEndian.Uint16(frame[offset+4 : offset+6])
		compressed := rawType&0x8000 != 0
		discriminator := rawType &^ 0x8000

		payloadStart := offset + subPacketHeaderSize
		payloadEnd := end

		switch fragmentTypeOf(discriminator) {
		case FragmentNotify:
			op, body, ok := parseNotifyFragment(frame[payloadStart:payloadEnd], compressed, p.logger)
			if ok {
				emit(Event{Opcode: op, Payload: body})
			}

		case FragmentFrameDown:
			if payloadEnd-payloadStart < 4 {
				p.logger.Debug("frame-down payload too short")
				offset = end
				continue
			}

			nestedStart := payloadStart + 4
			nested := frame[nestedStart:payloadEnd]

			if compressed {
				decoded, err := decodeZstd(nested)
				if err != nil {
					p.logger.Debug("frame-down zstd decompression failed", "error", err)
					offset = end
					continue
				}
				nested = decoded
			}

			p.process(nested, emit, depth+1)

		default:
			// Other: not ours, skip.
		}

		offset = end
	}
}
