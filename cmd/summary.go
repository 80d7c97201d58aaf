package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/report"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all stored narratives:
match count, compaction range, side win split, teamfight totals
and the heroes that fell most often in teamfights.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'dotanarrative compact <match.json|match-id>' to add one.")
		return nil
	}

	totals, err := db.SumTeamfights(nil)
	if err != nil {
		return fmt.Errorf("sum teamfights: %w", err)
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d (%d raw documents cached)\n", ov.Matches, ov.RawCached)
	fmt.Fprintf(os.Stdout, "  Compacted      : %s → %s\n", ov.FirstCompact, ov.LatestCompact)
	fmt.Fprintf(os.Stdout, "  Winners        : Radiant %d / Dire %d\n", ov.RadiantWins, ov.Matches-ov.RadiantWins)
	fmt.Fprintf(os.Stdout, "  Timeline events: %d\n", ov.Events)
	fmt.Fprintf(os.Stdout, "  Wards          : %d\n", ov.Wards)
	fmt.Fprintf(os.Stdout, "  Teamfights     : %d (%d Radiant / %d Dire deaths)\n",
		totals.Teamfights, totals.RadiantDeaths, totals.DireDeaths)

	top, err := db.TopFallenHeroes(10)
	if err != nil {
		return fmt.Errorf("top fallen heroes: %w", err)
	}
	if len(top) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Most teamfight deaths ---\n\n")
		report.PrintFallenHeroes(os.Stdout, top)
	}
	return nil
}
