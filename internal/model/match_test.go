package model

import (
	"encoding/json"
	"testing"
)

func TestParseMatch_AbsentVersusEmpty(t *testing.T) {
	m, err := ParseMatch([]byte(`{
		"match_id": 7000000001,
		"objectives": [],
		"players": [{"player_slot": 0, "hero_id": 2, "kills_log": []}]
	}`))
	if err != nil {
		t.Fatalf("ParseMatch: %v", err)
	}
	if m.Objectives == nil {
		t.Error("empty objectives array should decode to a non-nil slice")
	}
	if m.Teamfights != nil {
		t.Error("missing teamfights should stay nil")
	}
	p := m.Players[0]
	if p.KillsLog == nil || p.BuybackLog != nil {
		t.Errorf("kills_log present and buyback_log absent, got %v / %v", p.KillsLog, p.BuybackLog)
	}
}

func TestParseMatch_Invalid(t *testing.T) {
	if _, err := ParseMatch([]byte(`{"match_id": "x"`)); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": "good_rax_top_melee", "b": 131, "c": null}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != "good_rax_top_melee" || v.B != "131" || v.C != "" {
		t.Errorf("decoded %+v", v)
	}
	if n, ok := v.B.Int(); !ok || n != 131 {
		t.Errorf("Int() = %d, %v", n, ok)
	}
	if _, ok := v.A.Int(); ok {
		t.Error("non-numeric value should not parse as int")
	}
}

func TestSides(t *testing.T) {
	cases := []struct {
		team int
		want Side
	}{
		{2, SideRadiant}, {3, SideDire}, {0, SideRadiant}, {1, SideDire}, {7, SideUnknown},
	}
	for _, tc := range cases {
		if got := SideFromTeam(tc.team); got != tc.want {
			t.Errorf("SideFromTeam(%d) = %v, want %v", tc.team, got, tc.want)
		}
	}
	if SideFromPlayerSlot(4) != SideRadiant || SideFromPlayerSlot(130) != SideDire {
		t.Error("player_slot side mapping")
	}
}

func TestDamageTakenTotal(t *testing.T) {
	d := DamageTaken{
		Heroes: map[string]int{"Axe": 10, "Lion": 5},
		Towers: 1, LaneCreeps: 2, Neutrals: 3, Roshan: 4,
		Other: map[string]int{"x": 100},
	}
	if d.Total() != 125 {
		t.Errorf("Total = %d, want 125", d.Total())
	}
}
