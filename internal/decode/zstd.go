// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package decode

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// decodeZstd single-shot decompresses a zstd-compressed buffer. Used for
// both compressed Notify payloads and compressed FrameDown inner frames.
func decodeZstd(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("constructing zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression: %w", err)
	}
	return out, nil
}
