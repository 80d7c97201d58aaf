package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/model"
	"github.com/pable/go-dota-narrative/internal/narrative"
)

// fetch command flags.
var (
	// fetchAccount pulls the player's recent matches instead of explicit ids.
	fetchAccount int64
	// fetchCount is the number of recent matches to ingest with --account.
	fetchCount int
	// fetchOut is a directory the raw match documents are written to.
	fetchOut string
	// fetchCompact also compacts and stores each fetched match.
	fetchCompact bool
	fetchRefresh bool
)

// fetchCmd downloads OpenDota match documents into the raw-match cache.
var fetchCmd = &cobra.Command{
	Use:   "fetch [match-id...]",
	Short: "Download OpenDota matches into the local cache",
	Long: `Downloads parsed match documents from OpenDota into the local raw-match cache,
optionally writing them to disk and compacting them.

Examples:
  # Cache two matches and write their JSON next to you
  dotanarrative fetch 8012345678 8012345679 --out .

  # Compact a player's last 5 parsed matches, focused on that player
  dotanarrative fetch --account 86745912 --count 5 --compact`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int64Var(&fetchAccount, "account", 0, "fetch this account's recent matches")
	fetchCmd.Flags().IntVar(&fetchCount, "count", 10, "number of recent matches to fetch with --account")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "also write each match as <dir>/<match-id>.json")
	fetchCmd.Flags().BoolVar(&fetchCompact, "compact", false, "compact and store each fetched match")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "refetch even if the match is cached")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && fetchAccount == 0 {
		return fmt.Errorf("give at least one match id or --account")
	}

	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseMatchID(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	ctx := cmd.Context()
	if fetchAccount != 0 {
		recent, err := newOpenDota().GetRecentMatches(ctx, fetchAccount)
		if err != nil {
			return fmt.Errorf("recent matches for %d: %w", fetchAccount, err)
		}
		for _, r := range recent {
			if len(ids) >= len(args)+fetchCount {
				break
			}
			if !r.Parsed() {
				fmt.Fprintf(os.Stderr, "  [skip] %d: replay not parsed by OpenDota\n", r.MatchID)
				continue
			}
			ids = append(ids, r.MatchID)
		}
	}

	if fetchOut != "" {
		if err := os.MkdirAll(fetchOut, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var engine *narrative.Engine
	if fetchCompact {
		if engine, _, err = newEngine(); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	stored := 0
	for i, id := range ids {
		fmt.Printf("[%d/%d] %d\n", i+1, len(ids), id)
		b, err := fetchRawMatch(ctx, db, id, fetchRefresh)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [error] %v\n", err)
			continue
		}
		if fetchOut != "" {
			path := filepath.Join(fetchOut, fmt.Sprintf("%d.json", id))
			if err := os.WriteFile(path, b, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("  wrote %s (%d bytes)\n", path, len(b))
		}
		if engine == nil {
			stored++
			continue
		}

		m, err := model.ParseMatch(b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [error] %v\n", err)
			continue
		}
		focus := narrative.NoFocus
		if fetchAccount != 0 {
			focus = accountSlot(m, fetchAccount)
		}
		n, err := engine.Compact(m, narrative.FocusOn(focus))
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [error] compact: %v\n", err)
			continue
		}
		summary := buildSummary(m, n)
		if err := db.SaveNarrative(summary, n); err != nil {
			return fmt.Errorf("save narrative: %w", err)
		}
		fmt.Printf("  %d events, %d wards, %d teamfights", len(n.Events), len(n.Vision), len(n.Teamfights))
		if len(n.Gaps) > 0 {
			fmt.Printf(", %d missing categories", len(n.Gaps))
		}
		fmt.Println()
		stored++
	}
	fmt.Printf("\nDone: %d/%d matches stored.\n", stored, len(ids))
	return nil
}

// accountSlot returns the players index of accountID, or NoFocus.
func accountSlot(m *model.Match, accountID int64) int {
	for i, p := range m.Players {
		if p.AccountID != nil && *p.AccountID == accountID {
			return i
		}
	}
	return narrative.NoFocus
}
