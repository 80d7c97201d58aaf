package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/report"
)

var searchMatches []int64

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search stored timelines for matching events",
	Long: `Search stored timelines for events containing the given text (case-insensitive).

Example:
  dotanarrative search "Roshan" --match 8012345678 --match 8012345679`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int64SliceVar(&searchMatches, "match", nil, "restrict to these match ids (repeatable)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	hits, err := db.SearchEvents(text, searchMatches)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("no matching events")
		return nil
	}
	logger.Debug("event search", "text", text, "matches", joinIDs(searchMatches), "hits", len(hits))
	report.PrintEventHits(os.Stdout, hits)
	fmt.Fprintf(os.Stdout, "\n(%d events)\n", len(hits))
	return nil
}
