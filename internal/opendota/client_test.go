package opendota

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestServer(t *testing.T, routes map[string]string) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.RequestURI())
		mu.Unlock()
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func TestGetMatch(t *testing.T) {
	srv, seen := newTestServer(t, map[string]string{
		"/api/matches/7001": `{
			"match_id": 7001,
			"duration": 2400,
			"radiant_win": true,
			"objectives": [{"time": 600, "type": "building_kill", "key": "good_rax_top_melee"}],
			"players": [{"player_slot": 0, "hero_id": 2, "obs_log": [{"time": 100, "x": 120, "y": 80, "ehandle": 4411}]}]
		}`,
	})
	c := NewClient(srv.URL+"/api/", "k3y", 5*time.Second)

	m, err := c.GetMatch(context.Background(), 7001)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if m.MatchID != 7001 || !m.RadiantWin || len(m.Objectives) != 1 {
		t.Errorf("unexpected match: %+v", m)
	}
	if m.Players[0].ObsLog[0].Handle != "4411" {
		t.Errorf("numeric ehandle should decode as string, got %q", m.Players[0].ObsLog[0].Handle)
	}
	if m.Teamfights != nil {
		t.Error("absent teamfights should stay nil")
	}
	if reqs := seen(); len(reqs) != 1 || reqs[0] != "/api/matches/7001?api_key=k3y" {
		t.Errorf("requests = %v", reqs)
	}
}

func TestGetMatch_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := NewClient(srv.URL, "", time.Second)

	_, err := c.GetMatch(context.Background(), 1)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestGetMatch_CanceledContext(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"/matches/1": `{}`})
	c := NewClient(srv.URL, "", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetMatch(ctx, 1); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestGetItemPopularity(t *testing.T) {
	srv, seen := newTestServer(t, map[string]string{
		"/heroes/2/itemPopularity": `{
			"start_game_items": {"44": 120},
			"early_game_items": {"36": 80, "29": 60},
			"mid_game_items": {"1": 50},
			"late_game_items": {"116": 40}
		}`,
	})
	c := NewClient(srv.URL, "", time.Second)

	p, err := c.GetItemPopularity(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetItemPopularity: %v", err)
	}
	if p.EarlyGame["36"] != 80 || p.LateGame["116"] != 40 || p.StartGame["44"] != 120 {
		t.Errorf("unexpected popularity: %+v", p)
	}
	if reqs := seen(); reqs[0] != "/heroes/2/itemPopularity" {
		t.Errorf("no api_key expected without a key, got %v", reqs)
	}
}

func TestGetCatalog(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"/constants/heroes": `{
			"2": {"id": 2, "name": "npc_dota_hero_axe", "localized_name": "Axe"},
			"1": {"id": 1, "name": "npc_dota_hero_antimage", "localized_name": "Anti-Mage"}
		}`,
		"/constants/items": `{
			"blink": {"id": 1, "dname": "Blink Dagger", "cost": 2250, "qual": "component", "abilities": [{"type": "active"}]},
			"boots": {"id": 29, "dname": "Boots of Speed", "cost": 500, "qual": "component", "abilities": [{"type": "passive"}]},
			"recipe_magic_wand": {"id": 35, "dname": "Magic Wand Recipe", "cost": 150}
		}`,
		"/constants/abilities": `{
			"axe_berserkers_call": {"dname": "Berserker's Call"},
			"dota_base_ability": {}
		}`,
	})
	c := NewClient(srv.URL, "", time.Second)

	heroes, items, abilities, err := c.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}
	if len(heroes) != 2 || heroes[0].ID != 1 {
		t.Errorf("heroes should be sorted by id: %+v", heroes)
	}
	if len(items) != 3 || items[0].Key != "blink" || !items[0].Active {
		t.Errorf("items = %+v", items)
	}
	if items[1].Active {
		t.Error("passive-only item marked active")
	}
	if !items[2].Recipe {
		t.Error("recipe_ key should set Recipe")
	}
	if len(abilities) != 1 || abilities[0].Name != "Berserker's Call" {
		t.Errorf("abilities without a display name should be dropped: %+v", abilities)
	}
}

func TestGetRecentMatches(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"/players/86745912/recentMatches": `[
			{"match_id": 7002, "hero_id": 2, "player_slot": 1, "start_time": 1760000000, "version": 21},
			{"match_id": 7001, "hero_id": 26, "player_slot": 130, "start_time": 1759990000, "version": null}
		]`,
	})
	c := NewClient(srv.URL, "", time.Second)

	recent, err := c.GetRecentMatches(context.Background(), 86745912)
	if err != nil {
		t.Fatalf("GetRecentMatches: %v", err)
	}
	if len(recent) != 2 || recent[0].MatchID != 7002 {
		t.Fatalf("recent = %+v", recent)
	}
	if !recent[0].Parsed() || recent[1].Parsed() {
		t.Error("parsed flag should follow the version field")
	}
}
