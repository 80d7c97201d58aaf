package narrative

import (
	"sort"
	"strings"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/model"
)

const (
	// BasicAttackKey is the action key the telemetry uses when no ability was involved.
	BasicAttackKey = "null"
	// BasicAttackLabel is its display name.
	BasicAttackLabel = "Basic attack"

	// RoshanPrefix identifies the neutral boss tracked in its own bucket.
	RoshanPrefix = "npc_dota_roshan"
)

// combat builds one ParticipantCombat per player, in slot order.
func (e *Engine) combat(players []model.Player, r *roster) []model.ParticipantCombat {
	out := make([]model.ParticipantCombat, 0, len(players))
	for i := range players {
		p := &players[i]
		pt := r.bySlot[i]
		out = append(out, model.ParticipantCombat{
			Slot:        i,
			Hero:        pt.hero,
			Side:        pt.side,
			DamageTaken: e.bucketDamageTaken(p.DamageTaken),
			Actions:     e.combatActions(p),
		})
	}
	return out
}

// bucketDamageTaken classifies each damage source. Towers, creeps, neutrals
// and Roshan are running totals; heroes and unrecognised sources stay keyed
// by source.
func (e *Engine) bucketDamageTaken(src map[string]int) model.DamageTaken {
	d := model.DamageTaken{Heroes: make(map[string]int)}
	for key, v := range src {
		k := strings.ToLower(key)
		switch {
		case catalog.IsHeroName(k):
			d.Heroes[e.heroNameOr(key, key)] += v
		case strings.Contains(k, "tower"):
			d.Towers += v
		case strings.HasPrefix(k, "npc_dota_creep_") || strings.Contains(k, "siege"):
			d.LaneCreeps += v
		case strings.HasPrefix(k, RoshanPrefix):
			d.Roshan += v
		case strings.HasPrefix(k, "npc_dota_neutral_"):
			d.Neutrals += v
		default:
			if d.Other == nil {
				d.Other = make(map[string]int)
			}
			d.Other[key] += v
		}
	}
	return d
}

// combatActions merges the usage, hit, target and damage maps into one
// record per action key, sorted by key.
func (e *Engine) combatActions(p *model.Player) []model.CombatAction {
	byKey := make(map[string]*model.CombatAction)
	get := func(key string) *model.CombatAction {
		a := byKey[key]
		if a == nil {
			a = &model.CombatAction{Key: key, Name: e.actionName(key)}
			byKey[key] = a
		}
		return a
	}

	for k, n := range p.AbilityUses {
		get(k).Uses += n
	}
	for k, n := range p.ItemUses {
		get(k).Uses += n
	}
	for k, n := range p.HeroHits {
		get(k).Hits += n
	}
	for k, targets := range p.AbilityTargets {
		a := get(k)
		a.Targets = e.resolveTargets(a.Targets, targets)
	}
	for k, targets := range p.DamageTargets {
		a := get(k)
		a.Damage = e.resolveTargets(a.Damage, targets)
	}

	out := make([]model.CombatAction, 0, len(byKey))
	for _, a := range byKey {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// resolveTargets adds src into dst, renaming hero identifiers to display names.
func (e *Engine) resolveTargets(dst, src map[string]int) map[string]int {
	if dst == nil {
		dst = make(map[string]int, len(src))
	}
	for target, n := range src {
		name := target
		if catalog.IsHeroName(target) {
			name = e.heroNameOr(target, target)
		}
		dst[name] += n
	}
	return dst
}

func (e *Engine) actionName(key string) string {
	if key == BasicAttackKey {
		return BasicAttackLabel
	}
	if n, ok := e.cat.AbilityName(key); ok {
		return n
	}
	if it, ok := e.cat.Item(key); ok && it.Name != "" {
		return it.Name
	}
	return key
}
