package narrative

import (
	"testing"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/model"
)

// Hero ids used by the test roster.
const (
	heroAxe     = 2
	heroCM      = 5
	heroPudge   = 14
	heroLion    = 26
	heroUnknown = 9999
)

// Players index of each test participant.
const (
	slotAxe   = 0 // Radiant
	slotCM    = 1 // Radiant
	slotLion  = 2 // Dire
	slotPudge = 3 // Dire
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Hero{
			{ID: heroAxe, Name: "npc_dota_hero_axe", LocalizedName: "Axe"},
			{ID: heroCM, Name: "npc_dota_hero_crystal_maiden", LocalizedName: "Crystal Maiden"},
			{ID: heroPudge, Name: "npc_dota_hero_pudge", LocalizedName: "Pudge"},
			{ID: heroLion, Name: "npc_dota_hero_lion", LocalizedName: "Lion"},
		},
		[]catalog.Item{
			{ID: 1, Key: "blink", Name: "Blink Dagger", Cost: 2250, Qual: "component", Active: true},
			{ID: 29, Key: "boots", Name: "Boots of Speed", Cost: 500, Qual: "component"},
			{ID: 35, Key: "recipe_magic_wand", Name: "Magic Wand Recipe", Cost: 150},
			{ID: 36, Key: "magic_wand", Name: "Magic Wand", Cost: 450, Qual: "common", Active: true},
			{ID: 44, Key: "tango", Name: "Tango", Cost: 90, Qual: "consumable", Active: true},
			{ID: 188, Key: "smoke_of_deceit", Name: "Smoke of Deceit", Cost: 50, Qual: "consumable", Active: true},
			{ID: 247, Key: "moon_shard", Name: "Moon Shard", Cost: 4000, Qual: "consumable", Active: true},
			{ID: 116, Key: "black_king_bar", Name: "Black King Bar", Cost: 4050, Qual: "epic", Active: true},
		},
		[]catalog.Ability{
			{Key: "axe_berserkers_call", Name: "Berserker's Call"},
			{Key: "lion_impale", Name: "Earth Spike"},
		},
	)
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return c
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return mustEngine(t, testCatalog(t))
}

func mustEngine(t *testing.T, cat *catalog.Catalog) *Engine {
	t.Helper()
	e, err := New(cat, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// makePlayers returns the four-player roster with every log present but empty.
func makePlayers() []model.Player {
	mk := func(playerSlot, heroID int) model.Player {
		return model.Player{
			PlayerSlot: playerSlot,
			HeroID:     heroID,
			KillsLog:   []model.KillLogEntry{},
			BuybackLog: []model.BuybackLogEntry{},
			ObsLog:     []model.WardLogEntry{},
			SenLog:     []model.WardLogEntry{},
			ObsLeftLog: []model.WardLogEntry{},
			SenLeftLog: []model.WardLogEntry{},
		}
	}
	return []model.Player{
		mk(0, heroAxe),
		mk(1, heroCM),
		mk(128, heroLion),
		mk(129, heroPudge),
	}
}

// makeMatch builds a match with the test roster and empty (present) categories.
func makeMatch() *model.Match {
	return &model.Match{
		MatchID:    7000000001,
		Objectives: []model.Objective{},
		Players:    makePlayers(),
		Teamfights: []model.Teamfight{},
	}
}

func intPtr(v int) *int { return &v }

func compact(t *testing.T, e *Engine, m *model.Match, focus int) *model.Narrative {
	t.Helper()
	n, err := e.Compact(m, FocusOn(focus))
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	return n
}
