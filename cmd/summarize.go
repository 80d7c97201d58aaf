package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-dota-narrative/internal/model"
	"github.com/pable/go-dota-narrative/internal/report"
)

const summarizeSystemPrompt = `You are a Dota 2 match analyst. You are given a compacted match narrative
produced by a telemetry tool and, optionally, a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent events, heroes or numbers.
- Cite match times (m:ss) and numbers when making a claim.
- Categories listed under "missing" were not recorded. Do not read them as "nothing happened".
- If the data is insufficient to answer confidently, say so explicitly.
- When a focus player is set, write the story from their point of view.

Data glossary:
- timeline: objectives, kills and buybacks in match order, one line each.
- vision: wards with placement time, position and how they were removed
  (expired, deward, unset when the removal was never observed).
- combat: damage taken per participant bucketed by source, plus merged ability/item usage.
- teamfights: per-side deaths, damage, gold swing and buybacks for each fight window.
  gold_delta is the side's net gold change inside the window.
- focus (inside a teamfight): the focus player's kills, deaths and who they killed.`

var (
	summarizeModel  string
	summarizeAPIKey string
	summarizeDryRun bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <match-id> [question]",
	Short: "Write a match story from a stored narrative with AI (requires ANTHROPIC_API_KEY)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "", "Anthropic model to use (default from config)")
	summarizeCmd.Flags().StringVar(&summarizeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	summarizeCmd.Flags().BoolVar(&summarizeDryRun, "dry-run", false, "print the data sent to the model and exit")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	id, err := parseMatchID(args[0])
	if err != nil {
		return err
	}
	question := "Tell the story of this match in a few short paragraphs."
	if len(args) == 2 {
		question = args[1]
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetMatchSummary(id)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if s == nil {
		return fmt.Errorf("match %d not found; run 'dotanarrative compact %d' first", id, id)
	}
	n, err := db.GetNarrative(id)
	if err != nil {
		return fmt.Errorf("load narrative: %w", err)
	}

	contextJSON, err := buildNarrativeContext(*s, n)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	if summarizeDryRun {
		fmt.Fprintln(os.Stdout, contextJSON)
		return nil
	}

	modelID := summarizeModel
	if modelID == "" {
		modelID = cfg.Summary.Model
	}
	return callAnthropic(cmd.Context(), os.Stdout, summarizeAPIKey, modelID, cfg.Summary.MaxTokens, contextJSON, question)
}

type contextEvent struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

type contextWard struct {
	Kind     string  `json:"kind"`
	PlacedBy string  `json:"placed_by"`
	PlacedAt string  `json:"placed_at"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Removed  string  `json:"removed,omitempty"`
	Reason   string  `json:"reason"`
	By       string  `json:"removed_by,omitempty"`
}

type contextCombat struct {
	Hero        string         `json:"hero"`
	Side        string         `json:"side"`
	DamageTaken int            `json:"damage_taken"`
	FromHeroes  map[string]int `json:"from_heroes,omitempty"`
	Towers      int            `json:"from_towers"`
	Creeps      int            `json:"from_lane_creeps"`
	Neutrals    int            `json:"from_neutrals"`
	Roshan      int            `json:"from_roshan"`
	TopActions  []string       `json:"top_actions,omitempty"`
}

type contextTeamfight struct {
	Start   string            `json:"start"`
	End     string            `json:"end"`
	Radiant model.SideStats   `json:"radiant"`
	Dire    model.SideStats   `json:"dire"`
	Focus   *model.FocusStats `json:"focus,omitempty"`
}

// buildNarrativeContext serialises a stored narrative into compact JSON for the model.
// Times are rendered as m:ss so the model can quote them directly.
func buildNarrativeContext(s model.MatchSummary, n *model.Narrative) (string, error) {
	winner := model.SideDire
	if s.RadiantWin {
		winner = model.SideRadiant
	}
	doc := map[string]any{
		"match_id": s.MatchID,
		"duration": report.Clock(s.Duration),
		"winner":   winner.String(),
	}
	if s.FocusSlot >= 0 {
		doc["focus_hero"] = s.FocusHero
	}
	if len(n.Gaps) > 0 {
		doc["missing"] = n.Gaps
	}

	events := make([]contextEvent, len(n.Events))
	for i, ev := range n.Events {
		events[i] = contextEvent{Time: report.Clock(ev.Time), Message: ev.Message}
	}
	doc["timeline"] = events

	wards := make([]contextWard, len(n.Vision))
	for i, v := range n.Vision {
		w := contextWard{
			Kind:     string(v.Kind),
			PlacedBy: v.PlacedBy,
			PlacedAt: report.Clock(v.PlacedAt),
			X:        v.Position.X,
			Y:        v.Position.Y,
			Reason:   string(v.Reason),
			By:       v.RemovedBy,
		}
		if v.RemovedAt != nil {
			w.Removed = report.Clock(*v.RemovedAt)
		}
		wards[i] = w
	}
	doc["vision"] = wards

	combat := make([]contextCombat, len(n.Combat))
	for i, c := range n.Combat {
		cc := contextCombat{
			Hero:        c.Hero,
			Side:        c.Side.String(),
			DamageTaken: c.DamageTaken.Total(),
			FromHeroes:  c.DamageTaken.Heroes,
			Towers:      c.DamageTaken.Towers,
			Creeps:      c.DamageTaken.LaneCreeps,
			Neutrals:    c.DamageTaken.Neutrals,
			Roshan:      c.DamageTaken.Roshan,
		}
		for _, a := range topActions(c.Actions, 3) {
			cc.TopActions = append(cc.TopActions, fmt.Sprintf("%s x%d", a.Name, a.Uses))
		}
		combat[i] = cc
	}
	doc["combat"] = combat

	fights := make([]contextTeamfight, len(n.Teamfights))
	for i, tf := range n.Teamfights {
		fights[i] = contextTeamfight{
			Start:   report.Clock(tf.Start),
			End:     report.Clock(tf.End),
			Radiant: tf.Radiant,
			Dire:    tf.Dire,
			Focus:   tf.Focus,
		}
	}
	doc["teamfights"] = fights

	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// topActions returns up to limit actions with the most uses, keeping input order on ties.
func topActions(actions []model.CombatAction, limit int) []model.CombatAction {
	var out []model.CombatAction
	for _, a := range actions {
		if a.Uses == 0 {
			continue
		}
		i := len(out)
		for i > 0 && out[i-1].Uses < a.Uses {
			i--
		}
		out = append(out, model.CombatAction{})
		copy(out[i+1:], out[i:])
		out[i] = a
		if len(out) > limit {
			out = out[:limit]
		}
	}
	return out
}

func callAnthropic(ctx context.Context, w io.Writer, apiKey, modelID string, maxTokens int64, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)
	logger.Debug("requesting summary", "model", modelID, "context_bytes", len(dataJSON))

	fmt.Fprintln(w, "\n─── Match Story ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: summarizeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(w, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
