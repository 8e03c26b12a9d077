// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reftables

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const (
	tempAttrTableRelativePath      = "meter-data/TempAttrTable.json"
	skillEffectTableRelativePath   = "meter-data/SkillEffectTable.json"
	skillFightLevelTableRelative   = "meter-data/SkillFightLevelTable.json"
	recountTableRelativePath       = "meter-data/RecountTable.json"
	tempAttrTypePercentReduce      = 100
	tempAttrTypeFlatReduce         = 101
	tempAttrTypeAccelerateReduce   = 103
)

// loadTempAttrDefs keeps only the three attribute types the cooldown
// calculation cares about (100 = pct reduce, 101 = flat reduce,
// 103 = accelerate pct).
func loadTempAttrDefs(roots []string) (map[int32]TempAttrDef, error) {
	path := locate(roots, tempAttrTableRelativePath)
	if path == "" {
		return map[int32]TempAttrDef{}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]rawTempAttrDef
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := make(map[int32]TempAttrDef, len(raw))
	for _, entry := range raw {
		switch entry.AttrType {
		case tempAttrTypePercentReduce, tempAttrTypeFlatReduce, tempAttrTypeAccelerateReduce:
		default:
			continue
		}
		result[entry.ID] = TempAttrDef{
			AttrType:   entry.AttrType,
			LogicType:  entry.LogicType,
			AttrParams: entry.AttrParams,
		}
	}
	return result, nil
}

// loadSkillEffectTags maps skill_level_id -> tags.
func loadSkillEffectTags(roots []string) (map[int32][]int32, error) {
	path := locate(roots, skillEffectTableRelativePath)
	if path == "" {
		return map[int32][]int32{}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]rawSkillEffectEntry
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := make(map[int32][]int32, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			continue
		}
		result[int32(id)] = value.Tags
	}
	return result, nil
}

// loadSkillFightLevels maps skill_level_id -> skill_effect_id.
func loadSkillFightLevels(roots []string) (map[int32]int32, error) {
	path := locate(roots, skillFightLevelTableRelative)
	if path == "" {
		return map[int32]int32{}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]rawSkillFightLevelEntry
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := make(map[int32]int32, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			continue
		}
		result[int32(id)] = value.SkillEffectID
	}
	return result, nil
}

// loadRecount builds the damage-id -> recount-entry map and its derived
// inverse (recount-id -> display name). When several entries share a
// recount id, one of their names is kept; which one is not defined.
func loadRecount(roots []string) (map[int64]RecountEntry, map[int64]string, error) {
	path := locate(roots, recountTableRelativePath)
	if path == "" {
		return map[int64]RecountEntry{}, map[int64]string{}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]rawRecountEntry
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	damageIDToRecount := make(map[int64]RecountEntry)
	recountIDToName := make(map[int64]string)
	for _, entry := range raw {
		for _, damageID := range entry.DamageID {
			damageIDToRecount[damageID] = RecountEntry{RecountID: entry.ID, RecountName: entry.RecountName}
		}
		if _, exists := recountIDToName[entry.ID]; !exists {
			recountIDToName[entry.ID] = entry.RecountName
		}
	}
	return damageIDToRecount, recountIDToName, nil
}
