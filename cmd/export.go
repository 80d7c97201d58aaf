package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pable/go-dota-narrative/internal/model"
)

var (
	exportOut    string
	exportFormat string
)

// exportRecord is one stored match in an export file.
type exportRecord struct {
	MatchID     int64            `json:"match_id"`
	Duration    int              `json:"duration"`
	RadiantWin  bool             `json:"radiant_win"`
	FocusHero   string           `json:"focus_hero,omitempty"`
	CompactedAt string           `json:"compacted_at"`
	Narrative   *model.Narrative `json:"narrative"`
}

var exportCmd = &cobra.Command{
	Use:   "export [match-id...]",
	Short: "Export stored narratives as JSON or YAML",
	Long: `Export stored narratives as JSON or YAML. With no ids every stored match is exported.

Examples:
  dotanarrative export --out narratives.json
  dotanarrative export 8012345678 --format yaml --out match.yaml`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or yaml")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "json" && exportFormat != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", exportFormat)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var summaries []model.MatchSummary
	if len(args) == 0 {
		if summaries, err = db.ListMatches(); err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
	} else {
		for _, a := range args {
			id, err := parseMatchID(a)
			if err != nil {
				return err
			}
			s, err := db.GetMatchSummary(id)
			if err != nil {
				return fmt.Errorf("query match: %w", err)
			}
			if s == nil {
				return fmt.Errorf("match %d not found", id)
			}
			summaries = append(summaries, *s)
		}
	}

	records := make([]exportRecord, 0, len(summaries))
	for _, s := range summaries {
		n, err := db.GetNarrative(s.MatchID)
		if err != nil {
			return fmt.Errorf("load narrative: %w", err)
		}
		records = append(records, exportRecord{
			MatchID:     s.MatchID,
			Duration:    s.Duration,
			RadiantWin:  s.RadiantWin,
			FocusHero:   s.FocusHero,
			CompactedAt: s.CompactedAt,
			Narrative:   n,
		})
	}

	b, err := encodeExport(records, exportFormat)
	if err != nil {
		return err
	}
	if exportOut == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(exportOut, b, 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "exported %d matches to %s\n", len(records), exportOut)
	return nil
}

// encodeExport renders records as indented JSON, or as YAML with the same keys.
func encodeExport(records []exportRecord, format string) ([]byte, error) {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	if format == "json" {
		return append(b, '\n'), nil
	}
	// Round-trip through a generic value so YAML keys follow the json tags.
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
