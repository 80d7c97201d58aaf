package narrative

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pable/go-dota-narrative/internal/model"
)

// objectiveKind enumerates the objective types the normalizer understands.
// Every kind must have a case in objectiveEvent; TestEveryObjectiveKindHasHandler
// walks allObjectiveKinds to enforce it.
type objectiveKind int

const (
	objBuildingKill objectiveKind = iota
	objFirstBlood
	objRoshanKill
	objAegis
	objAegisStolen
	objAegisDenied
	objCourierLost
	objTormentorKill
)

var allObjectiveKinds = []objectiveKind{
	objBuildingKill,
	objFirstBlood,
	objRoshanKill,
	objAegis,
	objAegisStolen,
	objAegisDenied,
	objCourierLost,
	objTormentorKill,
}

var objectiveTypes = map[string]objectiveKind{
	"building_kill":              objBuildingKill,
	"CHAT_MESSAGE_FIRSTBLOOD":    objFirstBlood,
	"CHAT_MESSAGE_ROSHAN_KILL":   objRoshanKill,
	"CHAT_MESSAGE_AEGIS":         objAegis,
	"CHAT_MESSAGE_AEGIS_STOLEN":  objAegisStolen,
	"CHAT_MESSAGE_DENIED_AEGIS":  objAegisDenied,
	"CHAT_MESSAGE_COURIER_LOST":  objCourierLost,
	"CHAT_MESSAGE_MINIBOSS_KILL": objTormentorKill,
}

func objectiveKindOf(typ string) (objectiveKind, bool) {
	k, ok := objectiveTypes[typ]
	return k, ok
}

// objectiveEvent renders one objective. ok is false when the record is
// suppressed or lacks a field its kind requires.
func (e *Engine) objectiveEvent(kind objectiveKind, o *model.Objective, r *roster) (string, bool) {
	switch kind {
	case objBuildingKill:
		return e.buildingMessage(string(o.Key))

	case objFirstBlood:
		killer, ok := e.objectiveActor(o, r)
		if !ok {
			return "", false
		}
		victim := UnknownName
		if k, ok := o.Key.Int(); ok {
			if p, ok := r.firstBloodVictim(k); ok {
				victim = p.hero
			}
		}
		return fmt.Sprintf("%s drew first blood on %s", killer.hero, victim), true

	case objRoshanKill:
		if o.Team == nil {
			return "", false
		}
		return fmt.Sprintf("%s killed Roshan", sideLabel(model.SideFromTeam(*o.Team))), true

	case objAegis:
		p, ok := e.objectiveActor(o, r)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s picked up the Aegis", p.hero), true

	case objAegisStolen:
		p, ok := e.objectiveActor(o, r)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s stole the Aegis", p.hero), true

	case objAegisDenied:
		p, ok := e.objectiveActor(o, r)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s denied the Aegis", p.hero), true

	case objCourierLost:
		if o.Team == nil {
			return "", false
		}
		return fmt.Sprintf("%s's courier was killed", sideLabel(model.SideFromTeam(*o.Team))), true

	case objTormentorKill:
		if p, ok := e.objectiveActor(o, r); ok {
			return fmt.Sprintf("%s killed a Tormentor", p.hero), true
		}
		if o.Team != nil {
			return fmt.Sprintf("%s killed a Tormentor", sideLabel(model.SideFromTeam(*o.Team))), true
		}
		return "", false
	}
	panic(fmt.Sprintf("narrative: objective kind %d has no handler", kind))
}

// objectiveActor resolves the participant an objective refers to, preferring
// the Players index over player_slot.
func (e *Engine) objectiveActor(o *model.Objective, r *roster) (participant, bool) {
	if o.Slot != nil {
		if p, ok := r.at(*o.Slot); ok {
			return p, true
		}
	}
	if o.PlayerSlot != nil {
		if p, ok := r.atPlayerSlot(*o.PlayerSlot); ok {
			return p, true
		}
	}
	if o.Slot == nil && o.PlayerSlot == nil {
		return participant{}, false
	}
	// The record names a player we cannot place; keep the line.
	return participant{slot: -1, hero: UnknownName}, true
}

// firstBloodVictim resolves a first-blood key. OpenDota writes the victim's
// players index; values of 128 and up are read as a player_slot.
func (r *roster) firstBloodVictim(key int) (participant, bool) {
	if key >= 128 {
		return r.atPlayerSlot(key)
	}
	return r.at(key)
}

func sideLabel(s model.Side) string {
	if s == model.SideUnknown {
		return UnknownName
	}
	return s.String()
}

// buildingMessage describes a destroyed structure from its unit key, e.g.
// "npc_dota_goodguys_tower1_top" or "good_rax_top_melee". The ancient ("fort")
// is suppressed: the match result already carries it.
func (e *Engine) buildingMessage(key string) (string, bool) {
	k := strings.ToLower(key)
	if k == "" || strings.Contains(k, "fort") {
		return "", false
	}

	side := model.SideUnknown
	switch {
	case strings.Contains(k, "good"):
		side = model.SideRadiant
	case strings.Contains(k, "bad"):
		side = model.SideDire
	}

	var lane string
	for _, l := range []string{"top", "mid", "bot"} {
		if strings.Contains(k, l) {
			lane = l
			break
		}
	}

	var structure string
	switch {
	case strings.Contains(k, "tower"):
		structure = "tower"
	case strings.Contains(k, "rax") && strings.Contains(k, "melee"):
		structure = "melee barracks"
	case strings.Contains(k, "rax") && strings.Contains(k, "range"):
		structure = "ranged barracks"
	}

	if structure == "" {
		e.log.Warn("unexpected building identifier", "key", key)
		if side == model.SideUnknown {
			return fmt.Sprintf("%s was destroyed", key), true
		}
		return fmt.Sprintf("%s's %s was destroyed", side, key), true
	}

	var b strings.Builder
	if side != model.SideUnknown {
		b.WriteString(side.String())
		b.WriteString("'s ")
	} else {
		b.WriteString("A ")
	}
	if structure == "tower" {
		if tier, ok := firstDigit(k); ok {
			fmt.Fprintf(&b, "tier %c ", tier)
		}
	}
	if lane != "" {
		b.WriteString(lane)
		b.WriteByte(' ')
	}
	b.WriteString(structure)
	b.WriteString(" was destroyed")
	return b.String(), true
}

func firstDigit(s string) (rune, bool) {
	for _, c := range s {
		if unicode.IsDigit(c) {
			return c, true
		}
	}
	return 0, false
}
