package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/report"
)

var itemsCmd = &cobra.Command{
	Use:   "items <hero>",
	Short: "Rank a hero's most purchased items per game phase (OpenDota)",
	Args:  cobra.ExactArgs(1),
	RunE:  runItems,
}

func runItems(cmd *cobra.Command, args []string) error {
	engine, cat, err := newEngine()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	h, ok := cat.HeroByQuery(args[0])
	if !ok {
		return fmt.Errorf("unknown hero %q", args[0])
	}

	pop, err := newOpenDota().GetItemPopularity(cmd.Context(), h.ID)
	if err != nil {
		return fmt.Errorf("item popularity for %s: %w", h.LocalizedName, err)
	}
	report.PrintPopularItems(os.Stdout, h.LocalizedName, engine.RankPopularItems(*pop))
	return nil
}
