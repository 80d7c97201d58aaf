package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the narrative database",
	Long: `Run an arbitrary SQL query against the narrative database and print results as a table.

Schema overview:
  matches(match_id, duration, radiant_win, focus_slot, focus_hero,
    event_count, ward_count, teamfight_count, compacted_at, narrative BLOB)
  match_events(match_id, seq, time, message)
  teamfights(match_id, idx, start_time, end_time, radiant_deaths, dire_deaths,
    radiant_damage, dire_damage, radiant_gold, dire_gold)
  teamfight_deaths(match_id, idx, side, hero, deaths)
  raw_matches(match_id, fetched_at, payload BLOB)

Times are in seconds from the horn. Blobs are zstd-compressed and print as their size.

Example:
  dotanarrative sql "SELECT hero, SUM(deaths) d FROM teamfight_deaths GROUP BY hero ORDER BY d DESC LIMIT 5"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
