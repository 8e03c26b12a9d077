// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package cooldown derives a skill's actual cooldown and haste-accelerate
// rate from its base cooldown, the caster's temp-attribute bag, and the
// reference tables that describe how each temp attribute contributes.
package cooldown

import (
	"log/slog"

	"github.com/resonance-meter/combat-core/internal/reftables"
)

// tagNoCDReduce is the skill tag that disables all cooldown reduction.
const tagNoCDReduce = 103

const (
	attrTypeFlat       = 101
	attrTypePct        = 100
	attrTypeAccelerate = 103
)

// Calculate derives (actualCD, accelerateRate) for a skill cast.
//
// baseCD<=0 short-circuits to (0, 0). A skill tagged TAG_NO_CD_REDUCE
// ignores every reduction source and returns the unreduced base cooldown
// with no accelerate contribution.
func Calculate(
	logger *slog.Logger,
	baseCD float32,
	skillLevelID int32,
	tempAttrValues map[int32]int32,
	attrSkillCD float32,
	attrSkillCDPct float32,
	attrCDAcceleratePct float32,
	tempAttrDefs map[int32]reftables.TempAttrDef,
	skillEffectTags map[int32][]int32,
) (actualCD float32, accelerateRate float32) {
	logger = logger.With("component", "cooldown")

	if baseCD <= 0 {
		logger.Debug("base cd <= 0, no cooldown applies", "skill_level_id", skillLevelID)
		return 0, 0
	}

	skillID := skillLevelID / 100
	tagLookupSkillLevelID := skillID*100 + 1
	skillTagsSlice := skillEffectTags[tagLookupSkillLevelID]
	skillTags := make(map[int32]struct{}, len(skillTagsSlice))
	for _, tag := range skillTagsSlice {
		skillTags[tag] = struct{}{}
	}

	if _, noCDReduce := skillTags[tagNoCDReduce]; noCDReduce {
		logger.Debug("skill carries TAG_NO_CD_REDUCE, reduction skipped",
			"skill_level_id", skillLevelID, "base_cd", baseCD)
		return baseCD, 0
	}

	flatReduce := attrSkillCD
	pctReduce := attrSkillCDPct / 10000
	accelerate := attrCDAcceleratePct / 10000

	for tempAttrID, value := range tempAttrValues {
		if value == 0 {
			continue
		}
		def, found := tempAttrDefs[tempAttrID]
		if !found {
			continue
		}
		if !tempAttrMatches(def, skillID, skillTags) {
			continue
		}

		switch def.AttrType {
		case attrTypeFlat:
			flatReduce += float32(value) / 1000
		case attrTypePct:
			pctReduce += float32(value) / 10000
		case attrTypeAccelerate:
			accelerate += float32(value) / 10000
		}
	}

	reducedCD := (1 - pctReduce) * (baseCD - flatReduce)
	if reducedCD < 0 {
		reducedCD = 0
	}

	logger.Debug("cooldown resolved",
		"skill_level_id", skillLevelID, "actual_cd", reducedCD, "accelerate_rate", accelerate)

	return reducedCD, accelerate
}

// tempAttrMatches reports whether a temp-attribute definition applies to
// this cast, per its logic type: 0 always applies, 1 gates on the exact
// skill id, 3 gates on any tag overlap with the skill's own tags.
func tempAttrMatches(def reftables.TempAttrDef, skillID int32, skillTags map[int32]struct{}) bool {
	switch def.LogicType {
	case 0:
		return true
	case 1:
		for _, param := range def.AttrParams {
			if param == skillID {
				return true
			}
		}
		return false
	case 3:
		for _, tag := range def.AttrParams {
			if _, ok := skillTags[tag]; ok {
				return true
			}
		}
		return false
	default:
		return false
	}
}
