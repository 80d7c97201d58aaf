package storage

import (
	"bytes"
	"testing"

	"github.com/pable/go-dota-narrative/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intp(v int) *int { return &v }

func sampleNarrative(matchID int64) *model.Narrative {
	return &model.Narrative{
		MatchID:   matchID,
		FocusSlot: 2,
		Events: []model.NormalizedEvent{
			{Time: 120, Message: "Axe drew first blood on Lion"},
			{Time: 610, Message: "Radiant's top melee barracks was destroyed"},
			{Time: 900, Message: "Dire killed Roshan"},
		},
		Vision: []model.VisionEvent{
			{Kind: model.WardObserver, PlacedBy: "Lion", PlacedAt: 90, Position: model.Position{X: 110, Y: 140},
				RemovedAt: intp(200), Reason: model.ReasonDeward, RemovedBy: "Axe"},
			{Kind: model.WardSentry, PlacedBy: "Lion", PlacedAt: 300, Reason: model.ReasonUnset},
		},
		Combat: []model.ParticipantCombat{
			{Slot: 0, Hero: "Axe", Side: model.SideRadiant, DamageTaken: model.DamageTaken{
				Heroes: map[string]int{"Lion": 800}, Towers: 120,
			}},
		},
		Teamfights: []model.TeamfightRecord{
			{
				Start: 600, End: 640,
				Radiant: model.SideStats{Deaths: 2, DeathRoster: []string{"Axe", "Axe"}, Damage: 1500},
				Dire:    model.SideStats{Deaths: 1, DeathRoster: []string{"Lion"}, Damage: 2100},
				Focus:   &model.FocusStats{Hero: "Lion", Deaths: 1, Kills: 1, Killed: []string{"Axe"}},
			},
			{
				Start: 1500, End: 1530,
				Radiant: model.SideStats{DeathRoster: []string{}},
				Dire:    model.SideStats{Deaths: 1, DeathRoster: []string{"Lion"}, Damage: 300},
			},
		},
		Gaps: []string{"players[3].sen_left_log"},
	}
}

func summaryFor(n *model.Narrative, compactedAt string) model.MatchSummary {
	return model.MatchSummary{
		MatchID:        n.MatchID,
		Duration:       2400,
		RadiantWin:     true,
		FocusSlot:      n.FocusSlot,
		FocusHero:      "Lion",
		EventCount:     len(n.Events),
		WardCount:      len(n.Vision),
		TeamfightCount: len(n.Teamfights),
		CompactedAt:    compactedAt,
	}
}

func TestSaveAndExists(t *testing.T) {
	db := openMemDB(t)
	n := sampleNarrative(7001)

	if err := db.SaveNarrative(summaryFor(n, "2026-01-01T00:00:00Z"), n); err != nil {
		t.Fatalf("SaveNarrative: %v", err)
	}

	exists, err := db.MatchExists(7001)
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after save")
	}

	exists2, _ := db.MatchExists(42)
	if exists2 {
		t.Error("expected unknown match to not exist")
	}
}

func TestNarrativeRoundTrip(t *testing.T) {
	db := openMemDB(t)
	n := sampleNarrative(7002)
	if err := db.SaveNarrative(summaryFor(n, "2026-01-01T00:00:00Z"), n); err != nil {
		t.Fatalf("SaveNarrative: %v", err)
	}

	got, err := db.GetNarrative(7002)
	if err != nil {
		t.Fatalf("GetNarrative: %v", err)
	}
	if got == nil {
		t.Fatal("expected narrative")
	}
	if len(got.Events) != 3 || got.Events[1] != n.Events[1] {
		t.Errorf("events mismatch: %+v", got.Events)
	}
	if len(got.Vision) != 2 || got.Vision[0].RemovedAt == nil || *got.Vision[0].RemovedAt != 200 {
		t.Errorf("vision mismatch: %+v", got.Vision)
	}
	if got.Vision[1].RemovedAt != nil {
		t.Error("open ward should come back without a removal time")
	}
	if got.Combat[0].DamageTaken.Heroes["Lion"] != 800 {
		t.Errorf("combat mismatch: %+v", got.Combat)
	}
	if got.Teamfights[0].Focus == nil || got.Teamfights[0].Focus.Kills != 1 {
		t.Errorf("focus stats lost: %+v", got.Teamfights[0])
	}
	if len(got.Gaps) != 1 {
		t.Errorf("gaps lost: %v", got.Gaps)
	}

	missing, err := db.GetNarrative(1)
	if err != nil {
		t.Fatalf("GetNarrative missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown match")
	}
}

func TestSaveNarrative_MismatchedSummary(t *testing.T) {
	db := openMemDB(t)
	n := sampleNarrative(7003)
	s := summaryFor(n, "")
	s.MatchID = 9
	if err := db.SaveNarrative(s, n); err == nil {
		t.Error("expected error for mismatched match ids")
	}
	if err := db.SaveNarrative(s, nil); err == nil {
		t.Error("expected error for nil narrative")
	}
}

func TestListMatches(t *testing.T) {
	db := openMemDB(t)
	older := sampleNarrative(1)
	newer := sampleNarrative(2)
	db.SaveNarrative(summaryFor(older, "2026-01-01T00:00:00Z"), older)
	db.SaveNarrative(summaryFor(newer, "2026-02-01T00:00:00Z"), newer)

	list, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(list))
	}
	if list[0].MatchID != 2 {
		t.Errorf("expected match 2 first (newest), got %d", list[0].MatchID)
	}
	if !list[0].RadiantWin || list[0].FocusHero != "Lion" || list[0].TeamfightCount != 2 {
		t.Errorf("summary fields not restored: %+v", list[0])
	}
}

func TestResaveReplacesDetail(t *testing.T) {
	db := openMemDB(t)
	n := sampleNarrative(7004)
	db.SaveNarrative(summaryFor(n, "2026-01-01T00:00:00Z"), n)

	n.Events = n.Events[:1]
	n.Teamfights = n.Teamfights[:1]
	// Second save should not error (INSERT OR REPLACE) and must not duplicate detail rows.
	if err := db.SaveNarrative(summaryFor(n, "2026-01-02T00:00:00Z"), n); err != nil {
		t.Fatalf("second SaveNarrative: %v", err)
	}

	_, rows, err := db.QueryRaw("SELECT * FROM match_events WHERE match_id = 7004")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 event row after resave, got %d", len(rows))
	}
	totals, err := db.SumTeamfights([]int64{7004})
	if err != nil {
		t.Fatalf("SumTeamfights: %v", err)
	}
	if totals.Teamfights != 1 {
		t.Errorf("expected 1 teamfight after resave, got %d", totals.Teamfights)
	}
}

func TestDeleteMatch(t *testing.T) {
	db := openMemDB(t)
	n := sampleNarrative(7005)
	db.SaveNarrative(summaryFor(n, "2026-01-01T00:00:00Z"), n)
	db.SaveRawMatch(7005, []byte(`{"match_id":7005}`))

	deleted, err := db.DeleteMatch(7005)
	if err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	if !deleted {
		t.Error("expected DeleteMatch to report the match as removed")
	}
	if ok, _ := db.MatchExists(7005); ok {
		t.Error("match still exists after delete")
	}
	if raw, _ := db.GetRawMatch(7005); raw != nil {
		t.Error("raw payload still cached after delete")
	}
	hits, _ := db.SearchEvents("Roshan", nil)
	if len(hits) != 0 {
		t.Errorf("event rows survived delete: %+v", hits)
	}

	again, err := db.DeleteMatch(7005)
	if err != nil {
		t.Fatalf("second DeleteMatch: %v", err)
	}
	if again {
		t.Error("expected second delete to report nothing removed")
	}
}

func TestRawMatchCache(t *testing.T) {
	db := openMemDB(t)
	payload := bytes.Repeat([]byte(`{"time":1,"type":"CHAT_MESSAGE_AEGIS"},`), 200)

	if err := db.SaveRawMatch(8001, payload); err != nil {
		t.Fatalf("SaveRawMatch: %v", err)
	}
	got, err := db.GetRawMatch(8001)
	if err != nil {
		t.Fatalf("GetRawMatch: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("raw payload changed in round trip")
	}

	none, err := db.GetRawMatch(8002)
	if err != nil || none != nil {
		t.Errorf("expected nil, nil for uncached match, got %v, %v", none, err)
	}
}

func TestPackIsCompressed(t *testing.T) {
	b := bytes.Repeat([]byte("Radiant's tier 1 top tower was destroyed\n"), 500)
	packed := pack(b)
	if len(packed) >= len(b)/4 {
		t.Errorf("expected repetitive payload to compress well: %d -> %d bytes", len(b), len(packed))
	}
	out, err := unpack(packed)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(out, b) {
		t.Error("unpack did not restore input")
	}
	if _, err := unpack([]byte("not zstd")); err == nil {
		t.Error("expected error for corrupt payload")
	}
}

func TestHeroTrendAndSearch(t *testing.T) {
	db := openMemDB(t)
	a := sampleNarrative(10)
	b := sampleNarrative(11)
	db.SaveNarrative(summaryFor(a, "2026-01-01T00:00:00Z"), a)
	db.SaveNarrative(summaryFor(b, "2026-01-05T00:00:00Z"), b)

	trend, err := db.HeroTrend("lion")
	if err != nil {
		t.Fatalf("HeroTrend: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("expected 2 trend rows, got %d", len(trend))
	}
	if trend[0].MatchID != 10 || trend[0].Teamfights != 2 || trend[0].Deaths != 2 || trend[0].Side != "Dire" {
		t.Errorf("unexpected first row: %+v", trend[0])
	}

	axe, err := db.HeroTrend("Axe")
	if err != nil {
		t.Fatalf("HeroTrend axe: %v", err)
	}
	if len(axe) != 2 || axe[0].Deaths != 2 || axe[0].Teamfights != 1 {
		t.Errorf("axe trend = %+v", axe)
	}

	hits, err := db.SearchEvents("roshan", nil)
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}
	if len(hits) != 2 || hits[0].MatchID != 10 || hits[0].Time != 900 {
		t.Errorf("search hits = %+v", hits)
	}

	only, err := db.SearchEvents("barracks", []int64{11})
	if err != nil {
		t.Fatalf("SearchEvents filtered: %v", err)
	}
	if len(only) != 1 || only[0].MatchID != 11 {
		t.Errorf("filtered hits = %+v", only)
	}

	totals, err := db.SumTeamfights(nil)
	if err != nil {
		t.Fatalf("SumTeamfights: %v", err)
	}
	if totals.Matches != 2 || totals.Teamfights != 4 || totals.RadiantDeaths != 4 || totals.DireDeaths != 4 {
		t.Errorf("totals = %+v", totals)
	}
	if totals.DireDamage != 4800 {
		t.Errorf("DireDamage = %d, want 4800", totals.DireDamage)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	n := sampleNarrative(12)
	db.SaveNarrative(summaryFor(n, "2026-01-01T00:00:00Z"), n)

	cols, rows, err := db.QueryRaw("SELECT match_id, focus_hero, narrative FROM matches")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[1] != "focus_hero" {
		t.Errorf("cols = %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "12" || rows[0][1] != "Lion" {
		t.Errorf("rows = %v", rows)
	}
	if _, _, err := db.QueryRaw("SELECT nope FROM nowhere"); err == nil {
		t.Error("expected error for invalid query")
	}
}

func TestOverviewAndTopFallen(t *testing.T) {
	db := openMemDB(t)
	empty, err := db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview on empty db: %v", err)
	}
	if empty.Matches != 0 || empty.LatestCompact != "" {
		t.Errorf("empty overview = %+v", empty)
	}

	a := sampleNarrative(20)
	b := sampleNarrative(21)
	db.SaveNarrative(summaryFor(a, "2026-02-01T00:00:00Z"), a)
	db.SaveNarrative(summaryFor(b, "2026-02-03T00:00:00Z"), b)
	db.SaveRawMatch(20, []byte(`{"match_id":20}`))

	ov, err := db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	want := Overview{
		Matches:       2,
		RadiantWins:   2,
		Events:        6,
		Wards:         4,
		RawCached:     1,
		FirstCompact:  "2026-02-01T00:00:00Z",
		LatestCompact: "2026-02-03T00:00:00Z",
	}
	if ov != want {
		t.Errorf("overview = %+v, want %+v", ov, want)
	}

	top, err := db.TopFallenHeroes(1)
	if err != nil {
		t.Fatalf("TopFallenHeroes: %v", err)
	}
	if len(top) != 1 || top[0].Hero != "Axe" || top[0].Deaths != 4 || top[0].Matches != 2 {
		t.Errorf("top fallen = %+v (ties break by name)", top)
	}
}
