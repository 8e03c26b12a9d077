// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package decode

import (
	"encoding/binary"
	"log/slog"
)

// notifyHeaderSize is service_uuid(8) + stub_id(4) + method_id(4).
const notifyHeaderSize = 16

// parseNotifyFragment reads a Notify sub-packet's payload, validates its
// service UUID, and returns the resolved opcode and the (optionally
// zstd-decompressed) remaining payload. Returns ok=false for anything that
// doesn't belong to our service or is malformed — never an error, since a
// bad Notify fragment is discardable-per-sub-packet, not fatal.
func parseNotifyFragment(payload []byte, compressed bool, logger *slog.Logger) (op Opcode, body []byte, ok bool) {
	if len(payload) < notifyHeaderSize {
		logger.Debug("notify payload too short", "len", len(payload))
		return OpUnknown, nil, false
	}

	uuid := binary.BigEndian.Uint64(payload[0:8])
	// stub id at payload[8:12] is skipped, matching the wire contract.
	methodID := binary.BigEndian.Uint32(payload[12:16])

	if uuid != serviceUUID {
		logger.Debug("notify service uuid mismatch", "uuid", uuid)
		return OpUnknown, nil, false
	}

	op, ok := opcodeFromMethodID(methodID)
	if !ok {
		logger.Debug("notify unknown method id, dropping", "method_id", methodID)
		return OpUnknown, nil, false
	}

	rest := payload[notifyHeaderSize:]
	if compressed {
		decoded, err := decodeZstd(rest)
		if err != nil {
			logger.Debug("notify zstd decompression failed", "error", err)
			return OpUnknown, nil, false
		}
		rest = decoded
	}

	return op, rest, true
}
