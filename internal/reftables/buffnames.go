// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reftables

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const buffNameRelativePath = "meter-data/BuffName.json"

func loadBuffNames(roots []string) (map[int32]BuffName, error) {
	path := locate(roots, buffNameRelativePath)
	if path == "" {
		return map[int32]BuffName{}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []rawBuffEntry
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := make(map[int32]BuffName, len(raw))
	for _, entry := range raw {
		if entry.NameDesign == "" {
			continue
		}
		var sprite string
		if entry.SpriteFile != "" {
			sprite = entry.SpriteFile
		}
		result[entry.ID] = BuffName{
			Name:       entry.NameDesign,
			Icon:       entry.Icon,
			SpriteFile: sprite,
		}
	}
	return result, nil
}

// BuffLookupName returns the display name for the given buff id.
func (b *Bundle) BuffLookupName(buffID int32) (string, bool) {
	entry, ok := b.snapshot().buffNames[buffID]
	if !ok {
		return "", false
	}
	return entry.Name, true
}

// BuffIsValid reports whether the buff id exists in the loaded table.
func (b *Bundle) BuffIsValid(buffID int32) bool {
	_, ok := b.snapshot().buffNames[buffID]
	return ok
}

// BuffLookupSprite returns the sprite file for the given buff id, if any.
func (b *Bundle) BuffLookupSprite(buffID int32) (string, bool) {
	entry, ok := b.snapshot().buffNames[buffID]
	if !ok || entry.SpriteFile == "" {
		return "", false
	}
	return entry.SpriteFile, true
}

// BuffsWithSprites returns every buff carrying a sprite file, sorted by id.
func (b *Bundle) BuffsWithSprites() []BuffSprite {
	names := b.snapshot().buffNames
	result := make([]BuffSprite, 0, len(names))
	for id, entry := range names {
		if entry.SpriteFile == "" {
			continue
		}
		result = append(result, BuffSprite{BaseID: id, Name: entry.Name, SpriteFile: entry.SpriteFile})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BaseID < result[j].BaseID })
	return result
}

// SearchBuffsByName returns up to limit buffs whose name contains keyword
// (case-insensitive), sorted by id. Returns nil for an empty keyword.
func (b *Bundle) SearchBuffsByName(keyword string, limit int) []BuffSprite {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}

	names := b.snapshot().buffNames
	var result []BuffSprite
	for id, entry := range names {
		if !strings.Contains(strings.ToLower(entry.Name), needle) {
			continue
		}
		result = append(result, BuffSprite{BaseID: id, Name: entry.Name, SpriteFile: entry.SpriteFile})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BaseID < result[j].BaseID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
