// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package recount maps a damage id to the recount bucket (and display
// name) it contributes to, using the reference tables loaded by the
// reftables bundle.
package recount

import "github.com/resonance-meter/combat-core/internal/reftables"

// ResolveSkillKey maps damageID to its recount bucket id. Damage ids with
// no entry in the table resolve to themselves, so every hit lands in some
// bucket even when the reference data is incomplete.
func ResolveSkillKey(damageID int64, damageIDToRecount map[int64]reftables.RecountEntry) int64 {
	if entry, ok := damageIDToRecount[damageID]; ok {
		return entry.RecountID
	}
	return damageID
}

// LookupName resolves a recount bucket id to its display name.
func LookupName(skillKey int64, recountIDToName map[int64]string) (string, bool) {
	name, ok := recountIDToName[skillKey]
	return name, ok
}
