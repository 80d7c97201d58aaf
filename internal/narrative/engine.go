// Package narrative compacts raw match telemetry into a chronological
// narrative, reconciled vision events, per-participant combat records and
// teamfight summaries.
//
// Compaction is pure: it performs no I/O, mutates nothing it is given and
// allocates fresh output on every call, so one Engine may serve any number of
// matches concurrently.
package narrative

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/model"
)

// NoFocus disables focus-player statistics.
const NoFocus = -1

// UnknownName is rendered for identifiers that cannot be resolved.
const UnknownName = "Unknown"

var (
	ErrNilMatch       = errors.New("nil match")
	ErrNoParticipants = errors.New("match has no participant list")
	ErrNilCatalog     = errors.New("nil catalog")
)

// Options controls a single compaction. The zero value compacts without a
// focus player.
type Options struct {
	// Focus is the index into Match.Players of the player the narrative is
	// written for. Nil means no focus.
	Focus *int
}

// FocusOn returns Options focused on the given players index. NoFocus yields
// the zero Options.
func FocusOn(slot int) Options {
	if slot == NoFocus {
		return Options{}
	}
	return Options{Focus: &slot}
}

func (o Options) focusSlot() int {
	if o.Focus == nil {
		return NoFocus
	}
	return *o.Focus
}

// Engine holds the read-only reference data shared across compactions.
type Engine struct {
	cat *catalog.Catalog
	log *slog.Logger
}

// New returns an Engine backed by cat, which is required. A nil logger
// discards output.
func New(cat *catalog.Catalog, logger *slog.Logger) (*Engine, error) {
	if cat == nil {
		return nil, ErrNilCatalog
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cat: cat, log: logger}, nil
}

// Compact builds the narrative for one match. It fails only when a mandatory
// top-level structure is missing; record-level problems are skipped and
// category-level absences are listed in Narrative.Gaps.
func (e *Engine) Compact(m *model.Match, opts Options) (*model.Narrative, error) {
	if m == nil {
		return nil, ErrNilMatch
	}
	if len(m.Players) == 0 {
		return nil, fmt.Errorf("match %d: %w", m.MatchID, ErrNoParticipants)
	}
	focus := opts.focusSlot()
	if focus < NoFocus || focus >= len(m.Players) {
		return nil, fmt.Errorf("match %d: focus slot %d out of range [0,%d)", m.MatchID, focus, len(m.Players))
	}

	r := e.newRoster(m.Players)
	out := &model.Narrative{
		MatchID:   m.MatchID,
		FocusSlot: focus,
	}
	g := &gaps{}

	out.Events = e.timeline(m, r, g)
	out.Vision = e.reconcileVision(m.Players, r, g)
	out.Combat = e.combat(m.Players, r)
	out.Teamfights = e.teamfights(m, r, focus, g)
	out.Gaps = g.list

	e.log.Debug("match compacted",
		"match_id", m.MatchID,
		"events", len(out.Events),
		"wards", len(out.Vision),
		"teamfights", len(out.Teamfights),
		"gaps", len(out.Gaps),
	)
	return out, nil
}

// gaps collects the names of telemetry categories absent from the input.
type gaps struct {
	list []string
}

func (g *gaps) add(format string, args ...any) {
	g.list = append(g.list, fmt.Sprintf(format, args...))
}

// participant is a player with its hero already resolved.
type participant struct {
	slot   int
	heroID int
	hero   string
	side   model.Side
}

// roster indexes one match's participants by slot and player_slot.
type roster struct {
	bySlot       []participant
	byPlayerSlot map[int]int
}

func (e *Engine) newRoster(players []model.Player) *roster {
	r := &roster{
		bySlot:       make([]participant, len(players)),
		byPlayerSlot: make(map[int]int, len(players)),
	}
	for i := range players {
		p := &players[i]
		name := UnknownName
		if h, ok := e.cat.HeroByID(p.HeroID); ok {
			name = h.LocalizedName
		}
		r.bySlot[i] = participant{slot: i, heroID: p.HeroID, hero: name, side: p.Side()}
		r.byPlayerSlot[p.PlayerSlot] = i
	}
	return r
}

// at returns the participant at a Players index.
func (r *roster) at(slot int) (participant, bool) {
	if slot < 0 || slot >= len(r.bySlot) {
		return participant{}, false
	}
	return r.bySlot[slot], true
}

// atPlayerSlot returns the participant with the given player_slot.
func (r *roster) atPlayerSlot(playerSlot int) (participant, bool) {
	i, ok := r.byPlayerSlot[playerSlot]
	if !ok {
		return participant{}, false
	}
	return r.bySlot[i], true
}

// heroName resolves an internal hero unit name to its display name.
func (e *Engine) heroName(internal string) (string, bool) {
	h, ok := e.cat.HeroByName(internal)
	if !ok {
		return "", false
	}
	return h.LocalizedName, true
}

// heroNameOr resolves an internal hero name, returning fallback when unresolvable.
func (e *Engine) heroNameOr(internal, fallback string) string {
	if n, ok := e.heroName(internal); ok {
		return n
	}
	return fallback
}
