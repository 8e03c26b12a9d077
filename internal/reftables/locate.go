// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reftables

import (
	"os"
	"path/filepath"
)

// locate probes for a reference-table file, in order: for each root,
// "<root>/<relativePath>" and then "<root>/src-tauri/<relativePath>" for the
// legacy layout; finally the executable's own directory joined with
// relativePath. Returns "" if none exist.
func locate(roots []string, relativePath string) string {
	for _, root := range roots {
		candidate := filepath.Join(root, relativePath)
		if fileExists(candidate) {
			return candidate
		}
		legacy := filepath.Join(root, "src-tauri", relativePath)
		if fileExists(legacy) {
			return legacy
		}
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), relativePath)
		if fileExists(candidate) {
			return candidate
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
