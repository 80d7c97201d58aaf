package model

// ---- Compacted narrative ----

// NormalizedEvent is one line of the chronological match narrative.
type NormalizedEvent struct {
	Time    int    `json:"time"`
	Message string `json:"message"`
}

type WardKind string

const (
	WardObserver WardKind = "observer"
	WardSentry   WardKind = "sentry"
)

type RemovalReason string

const (
	ReasonUnset  RemovalReason = "unset"
	ReasonExpire RemovalReason = "expire"
	ReasonDeward RemovalReason = "deward"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VisionEvent is the reconciled lifecycle of one placed ward. RemovedAt is nil
// (and Reason unset) when no removal was captured for it.
type VisionEvent struct {
	Kind      WardKind      `json:"kind"`
	PlacedBy  string        `json:"placed_by"`
	PlacedAt  int           `json:"placed_at"`
	Position  Position      `json:"position"`
	RemovedAt *int          `json:"removed_at"`
	Reason    RemovalReason `json:"reason"`
	RemovedBy string        `json:"removed_by,omitempty"`
}

// CombatAction merges usage, hit, target and damage counters for one ability or item key.
type CombatAction struct {
	Key     string         `json:"key"`
	Name    string         `json:"name"`
	Uses    int            `json:"uses"`
	Hits    int            `json:"hits"`
	Targets map[string]int `json:"targets,omitempty"`
	Damage  map[string]int `json:"damage,omitempty"`
}

// DamageTaken buckets a participant's incoming damage by source. Heroes and
// Other stay keyed per source; the remaining buckets are running totals.
type DamageTaken struct {
	Heroes     map[string]int `json:"heroes"`
	Towers     int            `json:"towers"`
	LaneCreeps int            `json:"lane_creeps"`
	Neutrals   int            `json:"neutrals"`
	Roshan     int            `json:"roshan"`
	Other      map[string]int `json:"other,omitempty"`
}

// Total returns the sum of every bucket.
func (d *DamageTaken) Total() int {
	total := d.Towers + d.LaneCreeps + d.Neutrals + d.Roshan
	for _, v := range d.Heroes {
		total += v
	}
	for _, v := range d.Other {
		total += v
	}
	return total
}

type ParticipantCombat struct {
	Slot        int            `json:"slot"`
	Hero        string         `json:"hero"`
	Side        Side           `json:"side"`
	DamageTaken DamageTaken    `json:"damage_taken"`
	Actions     []CombatAction `json:"actions"`
}

type SideStats struct {
	Deaths      int      `json:"deaths"`
	DeathRoster []string `json:"death_roster"`
	Buybacks    int      `json:"buybacks"`
	Damage      int      `json:"damage"`
	Healing     int      `json:"healing"`
	GoldDelta   int      `json:"gold_delta"`
	XPDelta     int      `json:"xp_delta"`
}

// FocusStats is the focus participant's view of one teamfight.
type FocusStats struct {
	Hero        string         `json:"hero"`
	Deaths      int            `json:"deaths"`
	Kills       int            `json:"kills"`
	Killed      []string       `json:"killed"`
	Damage      int            `json:"damage"`
	Healing     int            `json:"healing"`
	GoldDelta   int            `json:"gold_delta"`
	XPDelta     int            `json:"xp_delta"`
	BoughtBack  bool           `json:"bought_back"`
	AbilityUses map[string]int `json:"ability_uses,omitempty"`
	ItemUses    map[string]int `json:"item_uses,omitempty"`
}

type TeamfightRecord struct {
	Start   int         `json:"start"`
	End     int         `json:"end"`
	Radiant SideStats   `json:"radiant"`
	Dire    SideStats   `json:"dire"`
	Focus   *FocusStats `json:"focus,omitempty"`
}

// Stats returns the record's totals for the given side.
func (r *TeamfightRecord) Stats(s Side) *SideStats {
	if s == SideDire {
		return &r.Dire
	}
	return &r.Radiant
}

type PopularItemEntry struct {
	Name string `json:"name"`
}

// PopularItems holds the ranked item names for each game phase.
type PopularItems struct {
	Early []PopularItemEntry `json:"early"`
	Mid   []PopularItemEntry `json:"mid"`
	Late  []PopularItemEntry `json:"late"`
}

// Narrative is the full compaction of one match. Gaps lists telemetry
// categories that were absent from the input, so a missing category is never
// mistaken for an uneventful one.
type Narrative struct {
	MatchID    int64               `json:"match_id"`
	FocusSlot  int                 `json:"focus_slot"`
	Events     []NormalizedEvent   `json:"events"`
	Vision     []VisionEvent       `json:"vision"`
	Combat     []ParticipantCombat `json:"combat"`
	Teamfights []TeamfightRecord   `json:"teamfights"`
	Gaps       []string            `json:"gaps,omitempty"`
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID        int64  `db:"match_id"`
	Duration       int    `db:"duration"`
	RadiantWin     bool   `db:"radiant_win"`
	FocusSlot      int    `db:"focus_slot"`
	FocusHero      string `db:"focus_hero"`
	EventCount     int    `db:"event_count"`
	WardCount      int    `db:"ward_count"`
	TeamfightCount int    `db:"teamfight_count"`
	CompactedAt    string `db:"compacted_at"`
}
