package cmd

import (
	"encoding/json"
	"testing"

	"github.com/pable/go-dota-narrative/internal/model"
)

func TestTopActions(t *testing.T) {
	got := topActions([]model.CombatAction{
		{Name: "Blink Dagger", Uses: 4},
		{Name: "Basic attack", Uses: 0},
		{Name: "Berserker's Call", Uses: 12},
		{Name: "Culling Blade", Uses: 4},
		{Name: "Battle Hunger", Uses: 9},
	}, 3)
	want := []string{"Berserker's Call", "Battle Hunger", "Blink Dagger"}
	if len(got) != len(want) {
		t.Fatalf("got %d actions, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("action %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestBuildNarrativeContext(t *testing.T) {
	removed := 460
	n := &model.Narrative{
		MatchID:   7001,
		FocusSlot: 0,
		Events:    []model.NormalizedEvent{{Time: 600, Message: "Axe killed Lion"}},
		Vision: []model.VisionEvent{
			{Kind: model.WardObserver, PlacedBy: "Lion", PlacedAt: 100, RemovedAt: &removed, Reason: model.ReasonDeward, RemovedBy: "Axe"},
		},
		Gaps: []string{"teamfights"},
	}
	s := model.MatchSummary{MatchID: 7001, Duration: 2461, RadiantWin: true, FocusSlot: 0, FocusHero: "Axe"}

	out, err := buildNarrativeContext(s, n)
	if err != nil {
		t.Fatalf("buildNarrativeContext: %v", err)
	}
	var doc struct {
		Duration  string   `json:"duration"`
		Winner    string   `json:"winner"`
		FocusHero string   `json:"focus_hero"`
		Missing   []string `json:"missing"`
		Timeline  []struct {
			Time string `json:"time"`
		} `json:"timeline"`
		Vision []struct {
			Removed string `json:"removed"`
			Reason  string `json:"reason"`
		} `json:"vision"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("context is not JSON: %v", err)
	}
	if doc.Duration != "41:01" || doc.Winner != "Radiant" || doc.FocusHero != "Axe" {
		t.Errorf("header = %+v", doc)
	}
	if len(doc.Missing) != 1 || doc.Missing[0] != "teamfights" {
		t.Errorf("missing = %v", doc.Missing)
	}
	if len(doc.Timeline) != 1 || doc.Timeline[0].Time != "10:00" {
		t.Errorf("timeline = %+v", doc.Timeline)
	}
	if len(doc.Vision) != 1 || doc.Vision[0].Removed != "7:40" || doc.Vision[0].Reason != "deward" {
		t.Errorf("vision = %+v", doc.Vision)
	}
}
