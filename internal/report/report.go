package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-dota-narrative/internal/model"
	"github.com/pable/go-dota-narrative/internal/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// Clock formats a match time in seconds as m:ss. Pre-horn times are negative.
func Clock(sec int) string {
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("%s%d:%02d", sign, sec/60, sec%60)
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	winner := model.SideDire
	if s.RadiantWin {
		winner = model.SideRadiant
	}
	focus := "none"
	if s.FocusSlot >= 0 {
		focus = fmt.Sprintf("%s (slot %d)", s.FocusHero, s.FocusSlot)
	}
	fmt.Fprintf(w, "\nMatch: %d  |  Duration: %s  |  Winner: %s  |  Focus: %s  |  Compacted: %s\n\n",
		s.MatchID, Clock(s.Duration), winner, focus, s.CompactedAt)
}

// PrintGaps lists telemetry categories that were missing from the input.
func PrintGaps(w io.Writer, gaps []string) {
	if len(gaps) == 0 {
		return
	}
	fmt.Fprintln(w, "Missing telemetry (not the same as nothing happening):")
	for _, g := range gaps {
		fmt.Fprintf(w, "  - %s\n", g)
	}
	fmt.Fprintln(w)
}

// PrintTimeline prints the chronological narrative.
func PrintTimeline(w io.Writer, events []model.NormalizedEvent) {
	table := newTable(w)
	table.Header("TIME", "EVENT")
	for _, ev := range events {
		table.Append(Clock(ev.Time), ev.Message)
	}
	table.Render()
}

// PrintVisionTable prints one row per placed ward. Wards placed by focusHero
// are marked with ">".
func PrintVisionTable(w io.Writer, vision []model.VisionEvent, focusHero string) {
	table := newTable(w)
	table.Header(" ", "KIND", "PLACED_BY", "PLACED", "X", "Y", "REMOVED", "LIFETIME", "REASON", "BY")

	for _, v := range vision {
		marker := " "
		if focusHero != "" && v.PlacedBy == focusHero {
			marker = ">"
		}
		removed, lifetime := "—", "—"
		if v.RemovedAt != nil {
			removed = Clock(*v.RemovedAt)
			lifetime = strconv.Itoa(*v.RemovedAt-v.PlacedAt) + "s"
		}
		by := v.RemovedBy
		if by == "" {
			by = "—"
		}
		table.Append(
			marker,
			string(v.Kind),
			v.PlacedBy,
			Clock(v.PlacedAt),
			fmt.Sprintf("%.0f", v.Position.X),
			fmt.Sprintf("%.0f", v.Position.Y),
			removed,
			lifetime,
			string(v.Reason),
			by,
		)
	}
	table.Render()
}

// PrintCombatTable prints each participant's damage-taken buckets and their
// most-used action. The focus participant's row is marked with ">".
func PrintCombatTable(w io.Writer, combat []model.ParticipantCombat, focusSlot int) {
	table := newTable(w)
	table.Header(" ", "HERO", "SIDE", "DMG_TAKEN", "HEROES", "TOWERS", "CREEPS", "NEUTRALS", "ROSHAN", "OTHER", "TOP_ACTION")

	for i := range combat {
		c := &combat[i]
		marker := " "
		if c.Slot == focusSlot {
			marker = ">"
		}
		var fromHeroes, other int
		for _, v := range c.DamageTaken.Heroes {
			fromHeroes += v
		}
		for _, v := range c.DamageTaken.Other {
			other += v
		}
		table.Append(
			marker,
			c.Hero,
			c.Side.String(),
			strconv.Itoa(c.DamageTaken.Total()),
			strconv.Itoa(fromHeroes),
			strconv.Itoa(c.DamageTaken.Towers),
			strconv.Itoa(c.DamageTaken.LaneCreeps),
			strconv.Itoa(c.DamageTaken.Neutrals),
			strconv.Itoa(c.DamageTaken.Roshan),
			strconv.Itoa(other),
			topAction(c.Actions),
		)
	}
	table.Render()
}

// PrintActionTable prints one participant's merged ability and item records,
// heaviest damage first.
func PrintActionTable(w io.Writer, c model.ParticipantCombat) {
	actions := make([]model.CombatAction, len(c.Actions))
	copy(actions, c.Actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return sumValues(actions[i].Damage) > sumValues(actions[j].Damage)
	})

	fmt.Fprintf(w, "\n%s: actions\n", c.Hero)
	table := newTable(w)
	table.Header("ACTION", "USES", "HITS", "DAMAGE", "TOP_TARGET", "TARGETED")
	for _, a := range actions {
		top, _ := maxEntry(a.Damage)
		if top == "" {
			top = "—"
		}
		table.Append(
			a.Name,
			strconv.Itoa(a.Uses),
			strconv.Itoa(a.Hits),
			strconv.Itoa(sumValues(a.Damage)),
			top,
			strconv.Itoa(sumValues(a.Targets)),
		)
	}
	table.Render()
}

// PrintTeamfightTable prints per-side totals for each teamfight, followed by
// the focus participant's view when one was recorded.
func PrintTeamfightTable(w io.Writer, fights []model.TeamfightRecord) {
	table := newTable(w)
	table.Header("#", "START", "END", "RAD_D", "DIRE_D", "RAD_DMG", "DIRE_DMG", "RAD_GOLD", "DIRE_GOLD", "RAD_BB", "DIRE_BB", "FALLEN")

	var focused []int
	for i, tf := range fights {
		fallen := append(append([]string{}, tf.Radiant.DeathRoster...), tf.Dire.DeathRoster...)
		table.Append(
			strconv.Itoa(i+1),
			Clock(tf.Start),
			Clock(tf.End),
			strconv.Itoa(tf.Radiant.Deaths),
			strconv.Itoa(tf.Dire.Deaths),
			strconv.Itoa(tf.Radiant.Damage),
			strconv.Itoa(tf.Dire.Damage),
			fmt.Sprintf("%+d", tf.Radiant.GoldDelta),
			fmt.Sprintf("%+d", tf.Dire.GoldDelta),
			strconv.Itoa(tf.Radiant.Buybacks),
			strconv.Itoa(tf.Dire.Buybacks),
			rosterSummary(fallen),
		)
		if tf.Focus != nil {
			focused = append(focused, i)
		}
	}
	table.Render()

	if len(focused) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s in teamfights\n", fights[focused[0]].Focus.Hero)
	ft := newTable(w)
	ft.Header("#", "K", "D", "DAMAGE", "HEALING", "GOLD", "XP", "BB", "KILLED")
	for _, i := range focused {
		f := fights[i].Focus
		bb := ""
		if f.BoughtBack {
			bb = "yes"
		}
		killed := strings.Join(f.Killed, ", ")
		if killed == "" {
			killed = "—"
		}
		ft.Append(
			strconv.Itoa(i+1),
			strconv.Itoa(f.Kills),
			strconv.Itoa(f.Deaths),
			strconv.Itoa(f.Damage),
			strconv.Itoa(f.Healing),
			fmt.Sprintf("%+d", f.GoldDelta),
			fmt.Sprintf("%+d", f.XPDelta),
			bb,
			killed,
		)
	}
	ft.Render()
}

// PrintPopularItems prints the ranked item names per game phase side by side.
func PrintPopularItems(w io.Writer, hero string, items model.PopularItems) {
	fmt.Fprintf(w, "\nPopular items: %s\n", hero)
	table := newTable(w)
	table.Header("RANK", "EARLY", "MID", "LATE")

	rows := max(len(items.Early), len(items.Mid), len(items.Late))
	for i := 0; i < rows; i++ {
		table.Append(strconv.Itoa(i+1), entryAt(items.Early, i), entryAt(items.Mid, i), entryAt(items.Late, i))
	}
	table.Render()
}

// PrintHeroTrend prints a hero's teamfight deaths across stored matches.
func PrintHeroTrend(w io.Writer, hero string, rows []storage.HeroTrendRow) {
	fmt.Fprintf(w, "\nTeamfight deaths: %s\n", hero)
	table := newTable(w)
	table.Header("MATCH", "COMPACTED", "SIDE", "FIGHTS", "DEATHS", "D/FIGHT")

	var fights, deaths int
	for _, r := range rows {
		fights += r.Teamfights
		deaths += r.Deaths
		table.Append(
			strconv.FormatInt(r.MatchID, 10),
			r.CompactedAt,
			r.Side,
			strconv.Itoa(r.Teamfights),
			strconv.Itoa(r.Deaths),
			fmt.Sprintf("%.2f", ratio(r.Deaths, r.Teamfights)),
		)
	}
	table.Footer("TOTAL", "", "", strconv.Itoa(fights), strconv.Itoa(deaths), fmt.Sprintf("%.2f", ratio(deaths, fights)))
	table.Render()
}

// PrintFallenHeroes prints heroes ranked by teamfight deaths.
func PrintFallenHeroes(w io.Writer, heroes []storage.HeroDeaths) {
	table := newTable(w)
	table.Header("HERO", "MATCHES", "DEATHS", "D/MATCH")
	for _, h := range heroes {
		table.Append(h.Hero, strconv.Itoa(h.Matches), strconv.Itoa(h.Deaths), fmt.Sprintf("%.2f", ratio(h.Deaths, h.Matches)))
	}
	table.Render()
}

// PrintEventHits prints timeline lines found by a cross-match search.
func PrintEventHits(w io.Writer, hits []storage.EventHit) {
	table := newTable(w)
	table.Header("MATCH", "TIME", "EVENT")
	for _, h := range hits {
		table.Append(strconv.FormatInt(h.MatchID, 10), Clock(h.Time), h.Message)
	}
	table.Render()
}

// PrintQueryResult prints the columns and rows of an ad-hoc query.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
}

func entryAt(entries []model.PopularItemEntry, i int) string {
	if i < len(entries) {
		return entries[i].Name
	}
	return ""
}

// rosterSummary collapses repeated names into "Name xN", keeping first-seen order.
func rosterSummary(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	counts := make(map[string]int, len(names))
	var order []string
	for _, n := range names {
		if counts[n] == 0 {
			order = append(order, n)
		}
		counts[n]++
	}
	parts := make([]string, len(order))
	for i, n := range order {
		parts[i] = n
		if counts[n] > 1 {
			parts[i] = fmt.Sprintf("%s x%d", n, counts[n])
		}
	}
	return strings.Join(parts, ", ")
}

func topAction(actions []model.CombatAction) string {
	best, bestUses := "—", 0
	for _, a := range actions {
		if a.Uses > bestUses {
			best, bestUses = a.Name, a.Uses
		}
	}
	if bestUses == 0 {
		return best
	}
	return fmt.Sprintf("%s (%d)", best, bestUses)
}

// maxEntry returns the key with the highest value, breaking ties by key.
func maxEntry(m map[string]int) (string, int) {
	var key string
	val := -1
	for k, v := range m {
		if v > val || (v == val && k < key) {
			key, val = k, v
		}
	}
	return key, val
}

func sumValues(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
