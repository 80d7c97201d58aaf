package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/model"
	"github.com/pable/go-dota-narrative/internal/narrative"
	"github.com/pable/go-dota-narrative/internal/report"
	"github.com/pable/go-dota-narrative/internal/storage"
)

var (
	compactFocus   int
	compactHero    string
	compactAccount int64
	compactForce   bool
	compactRefresh bool
	compactFull    bool
)

var compactCmd = &cobra.Command{
	Use:   "compact <match.json|match-id>",
	Short: "Compact a match into a narrative and store it",
	Long: `Compact a match into a narrative and store it.

The argument is either a path to an OpenDota match JSON document or a match id.
Match ids are served from the local raw-match cache when present and fetched
from OpenDota otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompact,
}

func init() {
	compactCmd.Flags().IntVar(&compactFocus, "focus", narrative.NoFocus, "focus player by index into the players list")
	compactCmd.Flags().StringVar(&compactHero, "hero", "", "focus player by hero (id, name or display name)")
	compactCmd.Flags().Int64Var(&compactAccount, "account", 0, "focus player by account id")
	compactCmd.Flags().BoolVarP(&compactForce, "force", "f", false, "recompact even if the match is already stored")
	compactCmd.Flags().BoolVar(&compactRefresh, "refresh", false, "refetch the match from OpenDota instead of using the cache")
	compactCmd.Flags().BoolVar(&compactFull, "full", false, "also print vision and combat tables")
}

func runCompact(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	engine, cat, err := newEngine()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	m, err := loadMatch(cmd.Context(), db, args[0], compactRefresh)
	if err != nil {
		return err
	}

	exists, err := db.MatchExists(m.MatchID)
	if err != nil {
		return fmt.Errorf("check match: %w", err)
	}
	if exists && !compactForce {
		fmt.Fprintf(os.Stdout, "Match %d already stored, showing cached narrative (use --force to recompact).\n", m.MatchID)
		return showMatch(os.Stdout, db, m.MatchID, compactFull)
	}

	focus, err := resolveFocus(m, cat)
	if err != nil {
		return err
	}

	start := time.Now()
	n, err := engine.Compact(m, narrative.FocusOn(focus))
	if err != nil {
		return fmt.Errorf("compact: %w", err)
	}
	logger.Info("match compacted",
		"match_id", m.MatchID,
		"events", len(n.Events),
		"wards", len(n.Vision),
		"teamfights", len(n.Teamfights),
		"gaps", len(n.Gaps),
		"elapsed", time.Since(start),
	)

	summary := buildSummary(m, n)
	if err := db.SaveNarrative(summary, n); err != nil {
		return fmt.Errorf("save narrative: %w", err)
	}
	printNarrative(os.Stdout, summary, n, compactFull)
	return nil
}

// loadMatch reads a match from a file path, or by id from the raw cache or OpenDota.
func loadMatch(ctx context.Context, db *storage.DB, arg string, refresh bool) (*model.Match, error) {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		b, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read match file: %w", err)
		}
		m, err := model.ParseMatch(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if m.MatchID != 0 {
			if err := db.SaveRawMatch(m.MatchID, b); err != nil {
				return nil, fmt.Errorf("cache match: %w", err)
			}
		}
		return m, nil
	}

	id, err := parseMatchID(arg)
	if err != nil {
		return nil, fmt.Errorf("%q is neither a readable file nor a match id", arg)
	}
	b, err := fetchRawMatch(ctx, db, id, refresh)
	if err != nil {
		return nil, err
	}
	return model.ParseMatch(b)
}

// fetchRawMatch returns the cached match document, fetching and caching it on a miss.
func fetchRawMatch(ctx context.Context, db *storage.DB, id int64, refresh bool) ([]byte, error) {
	if !refresh {
		b, err := db.GetRawMatch(id)
		if err != nil {
			return nil, fmt.Errorf("read cache: %w", err)
		}
		if b != nil {
			logger.Debug("raw match cache hit", "match_id", id)
			return b, nil
		}
	}
	logger.Info("fetching match", "match_id", id)
	b, err := newOpenDota().GetMatchRaw(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch match %d: %w", id, err)
	}
	if err := db.SaveRawMatch(id, b); err != nil {
		return nil, fmt.Errorf("cache match: %w", err)
	}
	return b, nil
}

var errAmbiguousFocus = errors.New("use only one of --focus, --hero and --account")

// resolveFocus turns the focus flags into an index into m.Players.
func resolveFocus(m *model.Match, cat *catalog.Catalog) (int, error) {
	set := 0
	if compactFocus != narrative.NoFocus {
		set++
	}
	if compactHero != "" {
		set++
	}
	if compactAccount != 0 {
		set++
	}
	if set > 1 {
		return 0, errAmbiguousFocus
	}

	switch {
	case compactHero != "":
		h, ok := cat.HeroByQuery(compactHero)
		if !ok {
			return 0, fmt.Errorf("unknown hero %q", compactHero)
		}
		for i, p := range m.Players {
			if p.HeroID == h.ID {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%s did not play in match %d", h.LocalizedName, m.MatchID)
	case compactAccount != 0:
		if slot := accountSlot(m, compactAccount); slot != narrative.NoFocus {
			return slot, nil
		}
		return 0, fmt.Errorf("account %d did not play in match %d", compactAccount, m.MatchID)
	default:
		return compactFocus, nil
	}
}

func buildSummary(m *model.Match, n *model.Narrative) model.MatchSummary {
	s := model.MatchSummary{
		MatchID:        m.MatchID,
		Duration:       m.Duration,
		RadiantWin:     m.RadiantWin,
		FocusSlot:      n.FocusSlot,
		EventCount:     len(n.Events),
		WardCount:      len(n.Vision),
		TeamfightCount: len(n.Teamfights),
		CompactedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if n.FocusSlot >= 0 && n.FocusSlot < len(n.Combat) {
		s.FocusHero = n.Combat[n.FocusSlot].Hero
	}
	return s
}

func printNarrative(w io.Writer, s model.MatchSummary, n *model.Narrative, full bool) {
	report.PrintMatchSummary(w, s)
	report.PrintGaps(w, n.Gaps)
	report.PrintTimeline(w, n.Events)
	fmt.Fprintln(w)
	report.PrintTeamfightTable(w, n.Teamfights)
	if !full {
		return
	}
	fmt.Fprintln(w)
	report.PrintVisionTable(w, n.Vision, s.FocusHero)
	fmt.Fprintln(w)
	report.PrintCombatTable(w, n.Combat, n.FocusSlot)
	if n.FocusSlot >= 0 && n.FocusSlot < len(n.Combat) {
		report.PrintActionTable(w, n.Combat[n.FocusSlot])
	}
}

func showMatch(w io.Writer, db *storage.DB, matchID int64, full bool) error {
	s, err := db.GetMatchSummary(matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if s == nil {
		return fmt.Errorf("match %d not found; run 'dotanarrative compact %d' first", matchID, matchID)
	}
	n, err := db.GetNarrative(matchID)
	if err != nil {
		return fmt.Errorf("load narrative: %w", err)
	}
	printNarrative(w, *s, n, full)
	return nil
}

// joinIDs renders match ids for log and error messages.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
