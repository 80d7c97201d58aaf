package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/model"
	"github.com/pable/go-dota-narrative/internal/report"
)

var (
	fightsFocus     bool
	fightsLost      string
	fightsHero      string
	fightsMinDeaths int
)

// fightsCmd is the cobra command for the teamfight drill-down of one match.
var fightsCmd = &cobra.Command{
	Use:   "fights <match-id>",
	Short: "Teamfight drill-down for one stored match",
	Args:  cobra.ExactArgs(1),
	RunE:  runFights,
}

func init() {
	fightsCmd.Flags().BoolVar(&fightsFocus, "focus", false, "only fights the focus player took part in")
	fightsCmd.Flags().StringVar(&fightsLost, "lost", "", "only fights where this side (radiant or dire) lost more heroes")
	fightsCmd.Flags().StringVar(&fightsHero, "hero", "", "only fights in which this hero died")
	fightsCmd.Flags().IntVar(&fightsMinDeaths, "min-deaths", 0, "only fights with at least this many deaths")
}

// filterFights applies --focus, --lost, --hero and --min-deaths.
func filterFights(fights []model.TeamfightRecord, focus bool, lost, hero string, minDeaths int) []model.TeamfightRecord {
	lost = strings.ToLower(lost)
	var out []model.TeamfightRecord
	for _, tf := range fights {
		if focus && tf.Focus == nil {
			continue
		}
		switch lost {
		case "radiant":
			if tf.Radiant.Deaths <= tf.Dire.Deaths {
				continue
			}
		case "dire":
			if tf.Dire.Deaths <= tf.Radiant.Deaths {
				continue
			}
		}
		if hero != "" && !diedIn(tf, hero) {
			continue
		}
		if tf.Radiant.Deaths+tf.Dire.Deaths < minDeaths {
			continue
		}
		out = append(out, tf)
	}
	return out
}

func diedIn(tf model.TeamfightRecord, hero string) bool {
	match := func(h string) bool { return strings.EqualFold(h, hero) }
	return slices.ContainsFunc(tf.Radiant.DeathRoster, match) || slices.ContainsFunc(tf.Dire.DeathRoster, match)
}

func runFights(cmd *cobra.Command, args []string) error {
	if fightsLost != "" && !strings.EqualFold(fightsLost, "radiant") && !strings.EqualFold(fightsLost, "dire") {
		return fmt.Errorf("--lost must be radiant or dire, got %q", fightsLost)
	}
	id, err := parseMatchID(args[0])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.GetNarrative(id)
	if err != nil {
		return fmt.Errorf("load narrative: %w", err)
	}
	if n == nil {
		return fmt.Errorf("match %d not found; run 'dotanarrative compact %d' first", id, id)
	}
	if len(n.Teamfights) == 0 {
		fmt.Fprintf(os.Stderr, "No teamfights recorded for match %d\n", id)
		return nil
	}

	hero := fightsHero
	if hero != "" {
		if cat, err := loadCatalog(); err == nil {
			if h, ok := cat.HeroByQuery(hero); ok {
				hero = h.LocalizedName
			}
		}
	}

	fights := filterFights(n.Teamfights, fightsFocus, fightsLost, hero, fightsMinDeaths)
	if len(fights) == 0 {
		fmt.Fprintln(os.Stderr, "No teamfights match the given filters.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "\nMatch %d: %d of %d teamfights\n", id, len(fights), len(n.Teamfights))
	report.PrintTeamfightTable(os.Stdout, fights)
	return nil
}
