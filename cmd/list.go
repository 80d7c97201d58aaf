package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/model"
	"github.com/pable/go-dota-narrative/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'dotanarrative compact <match.json|match-id>' to add one.")
		return nil
	}

	printMatchList(os.Stdout, matches)
	return nil
}

func printMatchList(w io.Writer, matches []model.MatchSummary) {
	fmt.Fprintf(w, "%-12s  %-8s  %-7s  %-16s  %6s  %5s  %6s  %s\n",
		"MATCH", "DURATION", "WINNER", "FOCUS", "EVENTS", "WARDS", "FIGHTS", "COMPACTED")
	fmt.Fprintf(w, "%-12s  %-8s  %-7s  %-16s  %6s  %5s  %6s  %s\n",
		"────────────", "────────", "───────", "────────────────", "──────", "─────", "──────", "────────────────────")
	for _, m := range matches {
		winner := "Dire"
		if m.RadiantWin {
			winner = "Radiant"
		}
		focus := m.FocusHero
		if focus == "" {
			focus = "—"
		}
		fmt.Fprintf(w, "%-12d  %-8s  %-7s  %-16s  %6d  %5d  %6d  %s\n",
			m.MatchID, report.Clock(m.Duration), winner, focus, m.EventCount, m.WardCount, m.TeamfightCount, m.CompactedAt)
	}
}
