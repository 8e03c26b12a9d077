// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package reftables loads the static reference tables the decoding core
// derives domain values from: buff names, skill effect tags, cooldown
// temp-attribute definitions, skill fight levels, and recount names.
// Every table is read once from on-disk JSON and exposed read-only; an
// optional reload operation atomically replaces the whole set.
package reftables

// BuffName describes a single buff entry loaded from BuffName.json.
type BuffName struct {
	Name       string
	Icon       string
	SpriteFile string // empty when the buff has no sprite
}

// BuffSprite is a BuffName entry known to carry a sprite file, returned by
// BuffsWithSprites.
type BuffSprite struct {
	BaseID     int32
	Name       string
	SpriteFile string
}

// TempAttrDef describes a cooldown-reduction temp-attribute definition
// loaded from TempAttrTable.json. AttrType is one of 100 (percent reduce),
// 101 (flat reduce), 103 (accelerate percent); LogicType selects how
// AttrParams is matched against a skill (0 = always, 1 = skill id
// membership, 3 = tag intersection).
type TempAttrDef struct {
	AttrType   int32
	LogicType  int32
	AttrParams []int32
}

// RecountEntry groups the recount id and display name a set of damage ids
// resolve to.
type RecountEntry struct {
	RecountID   int64
	RecountName string
}

// raw JSON shapes, matching the on-disk table format exactly.

type rawBuffEntry struct {
	ID         int32  `json:"Id"`
	Icon       string `json:"Icon"`
	NameDesign string `json:"NameDesign"`
	SpriteFile string `json:"SpriteFile"`
}

type rawTempAttrDef struct {
	ID         int32   `json:"Id"`
	AttrType   int32   `json:"AttrType"`
	LogicType  int32   `json:"LogicType"`
	AttrParams []int32 `json:"AttrParams"`
}

type rawSkillEffectEntry struct {
	Tags []int32 `json:"Tags"`
}

type rawSkillFightLevelEntry struct {
	SkillEffectID int32 `json:"SkillEffectId"`
}

type rawRecountEntry struct {
	ID          int64   `json:"Id"`
	RecountName string  `json:"RecountName"`
	DamageID    []int64 `json:"DamageId"`
}
