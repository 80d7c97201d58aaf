package narrative

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/model"
)

func names(entries []model.PopularItemEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestRankPhase_Filters(t *testing.T) {
	e := newTestEngine(t)
	got := names(e.rankPhase(map[string]int{
		"1":   40, // Blink Dagger: active component, kept
		"29":  90, // Boots of Speed: passive component
		"35":  80, // recipe
		"36":  30, // Magic Wand
		"44":  99, // Tango: cheap consumable
		"188": 70, // Smoke: cheap consumable
		"247": 20, // Moon Shard: expensive consumable, kept
		"116": 50, // Black King Bar
		"777": 60, // unknown id
	}))

	want := []string{"Black King Bar", "Blink Dagger", "Magic Wand", "Moon Shard"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ranked = %v, want %v", got, want)
	}
}

func TestRankPhase_UnnamedRecipeKey(t *testing.T) {
	cat, err := catalog.New(nil, []catalog.Item{
		{ID: 5, Key: "item_recipe_bkb", Qual: "common"},
		{ID: 6, Key: "item_black_king_bar", Qual: "epic"},
	}, nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	e := mustEngine(t, cat)

	got := names(e.rankPhase(map[string]int{"5": 3, "6": 1}))
	if len(got) != 1 || got[0] != "black_king_bar" {
		t.Fatalf("ranked = %v, want [black_king_bar]", got)
	}
	for _, name := range got {
		if strings.Contains(strings.ToLower(name), "recipe") {
			t.Errorf("recipe %q ranked", name)
		}
	}
}

func TestRankPhase_TopTenByCount(t *testing.T) {
	var items []catalog.Item
	counts := make(map[string]int)
	for i := 1; i <= 15; i++ {
		items = append(items, catalog.Item{
			ID: i, Key: fmt.Sprintf("item%02d", i), Name: fmt.Sprintf("Item %02d", i),
			Cost: 3000, Qual: "epic", Active: true,
		})
		counts[strconv.Itoa(i)] = i * 10
	}
	cat, err := catalog.New(nil, items, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := names(mustEngine(t, cat).rankPhase(counts))
	if len(got) != PopularItemLimit {
		t.Fatalf("expected %d entries, got %d", PopularItemLimit, len(got))
	}
	for i, name := range got {
		want := fmt.Sprintf("Item %02d", 15-i)
		if name != want {
			t.Errorf("position %d = %q, want %q", i, name, want)
		}
	}
}

func TestRankPhase_TieBreakByName(t *testing.T) {
	e := newTestEngine(t)
	got := names(e.rankPhase(map[string]int{"116": 5, "1": 5, "36": 5}))
	want := []string{"Black King Bar", "Blink Dagger", "Magic Wand"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ranked = %v, want %v", got, want)
	}
}

func TestRankPopularItems_AllPhases(t *testing.T) {
	e := newTestEngine(t)
	pop := model.ItemPopularity{
		StartGame: map[string]int{"44": 100},
		EarlyGame: map[string]int{"36": 10, "44": 50},
		MidGame:   map[string]int{"1": 7, "35": 9},
		LateGame:  map[string]int{"116": 3, "247": 4},
	}
	got := e.RankPopularItems(pop)

	if n := names(got.Early); len(n) != 1 || n[0] != "Magic Wand" {
		t.Errorf("early = %v", n)
	}
	if n := names(got.Mid); len(n) != 1 || n[0] != "Blink Dagger" {
		t.Errorf("mid = %v", n)
	}
	if n := names(got.Late); len(n) != 2 || n[0] != "Moon Shard" || n[1] != "Black King Bar" {
		t.Errorf("late = %v", n)
	}
	for _, phase := range [][]model.PopularItemEntry{got.Early, got.Mid, got.Late} {
		for _, entry := range phase {
			if strings.Contains(strings.ToLower(entry.Name), "recipe") {
				t.Errorf("recipe leaked into ranking: %q", entry.Name)
			}
		}
	}
}

func TestRankPopularItems_EmptyPhase(t *testing.T) {
	got := newTestEngine(t).RankPopularItems(model.ItemPopularity{})
	if len(got.Early) != 0 || len(got.Mid) != 0 || len(got.Late) != 0 {
		t.Errorf("expected empty rankings, got %+v", got)
	}
}
