package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/report"
)

var heroCmd = &cobra.Command{
	Use:   "hero <hero>",
	Short: "Teamfight deaths of a hero across stored matches",
	Long: `Teamfight deaths of a hero across stored matches.

The hero may be given by id, internal name (npc_dota_hero_axe) or display name.`,
	Args: cobra.ExactArgs(1),
	RunE: runHero,
}

func runHero(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	name := args[0]
	if h, ok := cat.HeroByQuery(name); ok {
		name = h.LocalizedName
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.HeroTrend(name)
	if err != nil {
		return fmt.Errorf("query hero trend: %w", err)
	}
	if len(rows) == 0 {
		fmt.Printf("no stored teamfights with %s\n", name)
		return nil
	}
	report.PrintHeroTrend(os.Stdout, name, rows)

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if len(ids) == 0 || ids[len(ids)-1] != r.MatchID {
			ids = append(ids, r.MatchID)
		}
	}
	totals, err := db.SumTeamfights(ids)
	if err != nil {
		return fmt.Errorf("sum teamfights: %w", err)
	}
	fmt.Printf("\nAcross those %d matches: %d teamfights, %d Radiant / %d Dire deaths.\n",
		totals.Matches, totals.Teamfights, totals.RadiantDeaths, totals.DireDeaths)
	return nil
}
