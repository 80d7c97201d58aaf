// Package model holds the raw match telemetry decoded from OpenDota-shaped JSON
// and the compacted narrative structures produced from it.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Side represents which team a participant plays for.
type Side int

const (
	SideUnknown Side = 0
	SideRadiant Side = 2
	SideDire    Side = 3
)

func (s Side) String() string {
	switch s {
	case SideRadiant:
		return "Radiant"
	case SideDire:
		return "Dire"
	default:
		return "?"
	}
}

// SideFromTeam maps the numeric team id used in objective records (2/3, or the
// 0/1 encoding some parsers emit) to a Side.
func SideFromTeam(team int) Side {
	switch team {
	case 0, 2:
		return SideRadiant
	case 1, 3:
		return SideDire
	default:
		return SideUnknown
	}
}

// SideFromPlayerSlot derives the side from a player_slot value (0-4 Radiant, 128-132 Dire).
func SideFromPlayerSlot(playerSlot int) Side {
	if playerSlot >= 128 {
		return SideDire
	}
	return SideRadiant
}

// FlexString decodes a JSON string or number into its string form. OpenDota
// emits some identifiers (objective keys, entity handles) as either.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Int parses the value as an integer.
func (f FlexString) Int() (int, bool) {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ---- Raw telemetry ----

// Match is one fully-materialised match snapshot. A nil slice means the
// category was absent from the telemetry; an empty slice means it was present
// but had no entries.
type Match struct {
	MatchID    int64       `json:"match_id"`
	Duration   int         `json:"duration"`
	StartTime  int64       `json:"start_time"`
	RadiantWin bool        `json:"radiant_win"`
	Objectives []Objective `json:"objectives"`
	Players    []Player    `json:"players"`
	Teamfights []Teamfight `json:"teamfights"`
}

// Objective is one type-tagged entry of the objectives stream.
type Objective struct {
	Time       int        `json:"time"`
	Type       string     `json:"type"`
	Key        FlexString `json:"key"`
	Slot       *int       `json:"slot"`
	PlayerSlot *int       `json:"player_slot"`
	Unit       string     `json:"unit"`
	Team       *int       `json:"team"`
	Value      int        `json:"value"`
}

type Player struct {
	AccountID   *int64 `json:"account_id"`
	PlayerSlot  int    `json:"player_slot"`
	HeroID      int    `json:"hero_id"`
	Personaname string `json:"personaname"`

	KillsLog   []KillLogEntry    `json:"kills_log"`
	BuybackLog []BuybackLogEntry `json:"buyback_log"`

	ObsLog     []WardLogEntry `json:"obs_log"`
	SenLog     []WardLogEntry `json:"sen_log"`
	ObsLeftLog []WardLogEntry `json:"obs_left_log"`
	SenLeftLog []WardLogEntry `json:"sen_left_log"`

	DamageTaken    map[string]int            `json:"damage_taken"`
	AbilityUses    map[string]int            `json:"ability_uses"`
	ItemUses       map[string]int            `json:"item_uses"`
	HeroHits       map[string]int            `json:"hero_hits"`
	AbilityTargets map[string]map[string]int `json:"ability_targets"`
	DamageTargets  map[string]map[string]int `json:"damage_targets"`
}

// Side returns the team this player belongs to.
func (p *Player) Side() Side {
	return SideFromPlayerSlot(p.PlayerSlot)
}

// KillLogEntry records a hero kill; Key is the victim's internal hero name.
type KillLogEntry struct {
	Time int    `json:"time"`
	Key  string `json:"key"`
}

type BuybackLogEntry struct {
	Time       int  `json:"time"`
	Slot       *int `json:"slot"`
	PlayerSlot *int `json:"player_slot"`
}

// WardLogEntry is a ward placement or removal. Handle (the entity handle) pairs
// a removal with its placement; AttackerName is only set on removals.
type WardLogEntry struct {
	Time         int        `json:"time"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Handle       FlexString `json:"ehandle"`
	AttackerName string     `json:"attackername"`
}

// Teamfight is one detected conflict window. Players is index-aligned with
// Match.Players.
type Teamfight struct {
	Start     int               `json:"start"`
	End       int               `json:"end"`
	LastDeath int               `json:"last_death"`
	Deaths    int               `json:"deaths"`
	Players   []TeamfightPlayer `json:"players"`
}

// TeamfightPlayer holds one participant's deltas within a conflict window.
type TeamfightPlayer struct {
	Deaths      int            `json:"deaths"`
	Buybacks    int            `json:"buybacks"`
	Damage      int            `json:"damage"`
	Healing     int            `json:"healing"`
	GoldDelta   int            `json:"gold_delta"`
	XPDelta     int            `json:"xp_delta"`
	AbilityUses map[string]int `json:"ability_uses"`
	ItemUses    map[string]int `json:"item_uses"`
	Killed      map[string]int `json:"killed"`
}

// ItemPopularity holds per-phase purchase counts keyed by item id.
type ItemPopularity struct {
	StartGame map[string]int `json:"start_game_items"`
	EarlyGame map[string]int `json:"early_game_items"`
	MidGame   map[string]int `json:"mid_game_items"`
	LateGame  map[string]int `json:"late_game_items"`
}

// ParseMatch decodes an OpenDota match document.
func ParseMatch(b []byte) (*Match, error) {
	var m Match
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode match: %w", err)
	}
	return &m, nil
}
