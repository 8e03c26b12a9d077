// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"log/slog"

	"github.com/resonance-meter/combat-core/internal/damageid"
	"github.com/resonance-meter/combat-core/internal/decode"
	"github.com/resonance-meter/combat-core/internal/dungeon"
	"github.com/resonance-meter/combat-core/internal/pipeline"
	"github.com/resonance-meter/combat-core/internal/recount"
	"github.com/resonance-meter/combat-core/internal/reftables"
)

// newEventHandler resolves every decoded event against the reference
// tables and logs the derived domain result. It stands in for the
// downstream recount/overlay consumer, which is out of this repo's scope.
func newEventHandler(logger *slog.Logger, tables *reftables.Bundle) func(pipeline.Server, decode.Event) {
	logger = logger.With("component", "event_handler")

	return func(server pipeline.Server, event decode.Event) {
		switch event.Opcode {
		case decode.OpSkillDamage:
			handleSkillDamage(logger, tables, server, event)
		case decode.OpDungeonStateSync:
			handleDungeonStateSync(logger, server, event)
		default:
			logger.Debug("unhandled event", "flow", server.String(), "opcode", event.Opcode)
		}
	}
}

func handleSkillDamage(logger *slog.Logger, tables *reftables.Bundle, server pipeline.Server, event decode.Event) {
	// A real damage-hit payload carries owner id, damage source, hit event
	// id and level; a capture front-end would decode those fields from
	// event.Payload before calling into damageid.Compute. Absent that
	// front-end here, this demonstrates the resolution chain with the
	// payload length as a stand-in signal.
	ownerID := int32(len(event.Payload))

	id := damageid.Compute(nil, ownerID, nil, nil, tables.SkillFightLevels())
	skillKey := recount.ResolveSkillKey(id, tables.DamageIDToRecount())
	name, found := recount.LookupName(skillKey, tables.RecountIDToName())

	logger.Debug("skill damage resolved",
		"flow", server.String(), "damage_id", id, "skill_key", skillKey,
		"recount_name", name, "recount_name_found", found)
}

func handleDungeonStateSync(logger *slog.Logger, server pipeline.Server, event decode.Event) {
	state, err := dungeon.Parse(event.Payload)
	if err != nil {
		logger.Debug("dungeon state sync payload malformed", "flow", server.String(), "error", err)
		return
	}
	logger.Debug("dungeon state synced",
		"flow", server.String(), "flow_state", state.FlowState, "target_count", len(state.Targets))
}
