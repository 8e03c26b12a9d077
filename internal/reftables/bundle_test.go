// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reftables

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(t *testing.T, dir, relPath, contents string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(contents), 0644); err != nil {
		t.Fatalf("write %s: %v", full, err)
	}
}

func TestBundle_MissingTablesDegradeToEmpty(t *testing.T) {
	dir := t.TempDir()
	b := NewBundle([]string{dir}, testLogger())

	if _, ok := b.BuffLookupName(1); ok {
		t.Fatal("expected empty buff table")
	}
	if len(b.TempAttrDefs()) != 0 {
		t.Fatal("expected empty temp attr defs")
	}
	if len(b.DamageIDToRecount()) != 0 {
		t.Fatal("expected empty recount table")
	}
}

func TestBundle_LoadsBuffNames(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, buffNameRelativePath, `[
		{"Id": 1, "Icon": "icon1", "NameDesign": "Haste", "SpriteFile": "haste.png"},
		{"Id": 2, "Icon": "icon2", "NameDesign": "Slow", "SpriteFile": ""},
		{"Id": 3, "Icon": "icon3", "NameDesign": ""}
	]`)

	b := NewBundle([]string{dir}, testLogger())

	name, ok := b.BuffLookupName(1)
	if !ok || name != "Haste" {
		t.Fatalf("expected Haste, got %q ok=%v", name, ok)
	}
	if !b.BuffIsValid(1) || b.BuffIsValid(3) {
		t.Fatal("unexpected validity for buff 1/3 (entry 3 has empty name and should be dropped)")
	}
	if sprite, ok := b.BuffLookupSprite(1); !ok || sprite != "haste.png" {
		t.Fatalf("expected sprite haste.png, got %q ok=%v", sprite, ok)
	}
	if _, ok := b.BuffLookupSprite(2); ok {
		t.Fatal("expected no sprite for buff 2")
	}

	withSprites := b.BuffsWithSprites()
	if len(withSprites) != 1 || withSprites[0].BaseID != 1 {
		t.Fatalf("expected one sprited buff (id 1), got %+v", withSprites)
	}

	matches := b.SearchBuffsByName("HAS", 10)
	if len(matches) != 1 || matches[0].BaseID != 1 {
		t.Fatalf("expected case-insensitive match on buff 1, got %+v", matches)
	}
	if got := b.SearchBuffsByName("", 10); got != nil {
		t.Fatalf("expected nil for empty keyword, got %+v", got)
	}
}

func TestBundle_Reload(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, buffNameRelativePath, `[{"Id": 1, "NameDesign": "Old"}]`)

	b := NewBundle([]string{dir}, testLogger())
	name, _ := b.BuffLookupName(1)
	if name != "Old" {
		t.Fatalf("expected Old, got %q", name)
	}

	writeJSON(t, dir, buffNameRelativePath, `[{"Id": 1, "NameDesign": "New"}]`)
	b.Reload()

	name, _ = b.BuffLookupName(1)
	if name != "New" {
		t.Fatalf("expected New after reload, got %q", name)
	}
}

func TestBundle_RecountResolution(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, recountTableRelativePath, `{
		"101": {"Id": 101, "RecountName": "Fireball", "DamageId": [30010001, 30010002]},
		"102": {"Id": 102, "RecountName": "Ice Lance", "DamageId": [30020001]}
	}`)

	b := NewBundle([]string{dir}, testLogger())

	entry, ok := b.DamageIDToRecount()[30010001]
	if !ok || entry.RecountID != 101 || entry.RecountName != "Fireball" {
		t.Fatalf("unexpected recount entry: %+v ok=%v", entry, ok)
	}

	name, ok := b.RecountIDToName()[102]
	if !ok || name != "Ice Lance" {
		t.Fatalf("expected Ice Lance, got %q ok=%v", name, ok)
	}
}
