// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reftables

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// snapshot is the immutable set of loaded tables. Bundle swaps the pointer
// to a new snapshot atomically on Reload so readers never observe a
// partially-updated mapping.
type snapshot struct {
	buffNames         map[int32]BuffName
	tempAttrDefs      map[int32]TempAttrDef
	skillEffectTags   map[int32][]int32
	skillFightLevels  map[int32]int32
	damageIDToRecount map[int64]RecountEntry
	recountIDToName   map[int64]string
}

func emptySnapshot() *snapshot {
	return &snapshot{
		buffNames:         map[int32]BuffName{},
		tempAttrDefs:      map[int32]TempAttrDef{},
		skillEffectTags:   map[int32][]int32{},
		skillFightLevels:  map[int32]int32{},
		damageIDToRecount: map[int64]RecountEntry{},
		recountIDToName:   map[int64]string{},
	}
}

// Bundle holds the five reference tables behind a single atomically-swapped
// snapshot, guarded by one writer lock (Reload serializes concurrent
// reloads; reads never block on it).
type Bundle struct {
	roots  []string
	logger *slog.Logger

	cur      atomic.Pointer[snapshot]
	writerMu sync.Mutex

	cron *cron.Cron
}

// NewBundle creates a Bundle that probes roots (in order) for the five
// reference-table JSON files, and performs the initial synchronous load.
// A table that isn't found loads as an empty mapping without a log line; one
// that fails to read or parse degrades to an empty mapping and logs at Warn
// — startup never fails because of one table.
func NewBundle(roots []string, logger *slog.Logger) *Bundle {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	b := &Bundle{roots: roots, logger: logger.With("component", "reftables")}
	b.cur.Store(emptySnapshot())
	b.Reload()
	return b
}

// Reload loads all five tables from disk and atomically replaces the
// current snapshot. Concurrent reloads are serialized by writerMu; readers
// never block.
func (b *Bundle) Reload() {
	b.writerMu.Lock()
	defer b.writerMu.Unlock()

	next := emptySnapshot()

	if m, err := loadBuffNames(b.roots); err != nil {
		b.logger.Warn("failed to load BuffName.json", "error", err)
	} else {
		next.buffNames = m
	}

	if m, err := loadTempAttrDefs(b.roots); err != nil {
		b.logger.Warn("failed to load TempAttrTable.json", "error", err)
	} else {
		next.tempAttrDefs = m
	}

	if m, err := loadSkillEffectTags(b.roots); err != nil {
		b.logger.Warn("failed to load SkillEffectTable.json", "error", err)
	} else {
		next.skillEffectTags = m
	}

	if m, err := loadSkillFightLevels(b.roots); err != nil {
		b.logger.Warn("failed to load SkillFightLevelTable.json", "error", err)
	} else {
		next.skillFightLevels = m
	}

	if dtr, rtn, err := loadRecount(b.roots); err != nil {
		b.logger.Warn("failed to load RecountTable.json", "error", err)
	} else {
		next.damageIDToRecount = dtr
		next.recountIDToName = rtn
	}

	b.cur.Store(next)
	b.logger.Info("reference tables reloaded",
		"buff_names", len(next.buffNames),
		"temp_attr_defs", len(next.tempAttrDefs),
		"skill_effect_tags", len(next.skillEffectTags),
		"skill_fight_levels", len(next.skillFightLevels),
		"recount_entries", len(next.damageIDToRecount),
	)
}

func (b *Bundle) snapshot() *snapshot {
	return b.cur.Load()
}

// StartReload schedules Reload on the given cron expression (standard
// 5-field cron). Returns an error if the expression is invalid. Call
// StopReload to release the scheduler on shutdown.
func (b *Bundle) StartReload(schedule string) error {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(b.logger.Handler(), slog.LevelDebug))))
	if _, err := c.AddFunc(schedule, b.Reload); err != nil {
		return fmt.Errorf("scheduling reference-table reload %q: %w", schedule, err)
	}
	b.cron = c
	b.cron.Start()
	b.logger.Info("reference-table reload scheduled", "schedule", schedule)
	return nil
}

// StopReload stops the scheduled reload, if one was started, and waits for
// it to finish via ctx.
func (b *Bundle) StopReload(ctx context.Context) {
	if b.cron == nil {
		return
	}
	stopCtx := b.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		b.logger.Warn("reference-table reload scheduler stop timed out")
	}
}

// TempAttrDefs returns the loaded cooldown temp-attribute definitions.
func (b *Bundle) TempAttrDefs() map[int32]TempAttrDef {
	return b.snapshot().tempAttrDefs
}

// SkillEffectTags returns the loaded skill_level_id -> tags map.
func (b *Bundle) SkillEffectTags() map[int32][]int32 {
	return b.snapshot().skillEffectTags
}

// SkillFightLevels returns the loaded skill_level_id -> skill_effect_id map.
func (b *Bundle) SkillFightLevels() map[int32]int32 {
	return b.snapshot().skillFightLevels
}

// DamageIDToRecount returns the loaded damage-id -> recount-entry map.
func (b *Bundle) DamageIDToRecount() map[int64]RecountEntry {
	return b.snapshot().damageIDToRecount
}

// RecountIDToName returns the loaded recount-id -> display-name map.
func (b *Bundle) RecountIDToName() map[int64]string {
	return b.snapshot().recountIDToName
}
