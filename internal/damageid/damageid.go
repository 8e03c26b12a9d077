// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package damageid derives the damage id used to look up a recount bucket
// for a hit (a decimal concatenation parsed back to int64), from the raw
// fight-log fields a Notify payload carries.
package damageid

import (
	"strconv"
)

// Compute derives the damage id for a hit. damageSource, ownerLevel, and
// hitEventID are optional (nil means "absent").
//
// A positive damageSource selects damage type 2 (damage_source==2) or 3
// (any other positive source). Otherwise the hit is skill-sourced (type 1)
// and the skill's effect id is resolved via skillLevelToEffect, keyed by
// owner_id*100+owner_level, falling back to owner_id*100+1, and finally to
// owner_id itself if neither lookup succeeds.
func Compute(
	damageSource *int32,
	ownerID int32,
	ownerLevel *int32,
	hitEventID *int32,
	skillLevelToEffect map[int32]int32,
) int64 {
	level := clampNonNegative(ownerLevel)
	hitEvent := clampNonNegative(hitEventID)
	skillEffectID := ownerID
	if skillEffectID < 0 {
		skillEffectID = 0
	}

	var damageType int32
	if damageSource != nil && *damageSource > 0 {
		if *damageSource == 2 {
			damageType = 2
		} else {
			damageType = 3
		}
	} else {
		skillLevelID, ok := checkedMulAdd(ownerID, 100, level)
		if !ok {
			skillLevelID = ownerID
		}
		if effectID, found := skillLevelToEffect[skillLevelID]; found {
			skillEffectID = effectID
		} else {
			levelOneSkillID, ok := checkedMulAdd(ownerID, 100, 1)
			if !ok {
				levelOneSkillID = ownerID
			}
			if effectID, found := skillLevelToEffect[levelOneSkillID]; found {
				skillEffectID = effectID
			}
		}
		damageType = 1
	}

	if skillEffectID < 0 {
		skillEffectID = 0
	}

	var formatted string
	if hitEvent >= 10 {
		formatted = strconv.Itoa(int(damageType)) + strconv.Itoa(int(skillEffectID)) + strconv.Itoa(int(hitEvent))
	} else {
		formatted = strconv.Itoa(int(damageType)) + strconv.Itoa(int(skillEffectID)) + "0" + strconv.Itoa(int(hitEvent))
	}

	id, err := strconv.ParseInt(formatted, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func clampNonNegative(v *int32) int32 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

// checkedMulAdd computes a*mul+add, reporting overflow via ok=false,
// mirroring Rust's checked_mul/checked_add chain on i32.
func checkedMulAdd(a, mul, add int32) (result int32, ok bool) {
	product := int64(a) * int64(mul)
	if product > int64(1<<31-1) || product < int64(-1<<31) {
		return 0, false
	}
	sum := product + int64(add)
	if sum > int64(1<<31-1) || sum < int64(-1<<31) {
		return 0, false
	}
	return int32(sum), true
}
