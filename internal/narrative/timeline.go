package narrative

import (
	"fmt"
	"sort"

	"github.com/pable/go-dota-narrative/internal/model"
)

// eventSource orders narrative lines that share a timestamp: objectives first,
// then kills, then buybacks. Within a source, input order is kept.
type eventSource int

const (
	sourceObjective eventSource = iota
	sourceKill
	sourceBuyback
)

type sourcedEvent struct {
	model.NormalizedEvent
	source eventSource
}

// timeline merges objectives, kill logs and buyback logs into one
// chronological narrative.
func (e *Engine) timeline(m *model.Match, r *roster, g *gaps) []model.NormalizedEvent {
	var events []sourcedEvent

	if m.Objectives == nil {
		g.add("objectives")
	}
	for i := range m.Objectives {
		o := &m.Objectives[i]
		kind, ok := objectiveKindOf(o.Type)
		if !ok {
			e.log.Debug("skipping unrecognized objective", "type", o.Type, "time", o.Time)
			continue
		}
		msg, ok := e.objectiveEvent(kind, o, r)
		if !ok {
			continue
		}
		events = append(events, sourcedEvent{model.NormalizedEvent{Time: o.Time, Message: msg}, sourceObjective})
	}

	for i := range m.Players {
		p := &m.Players[i]
		killer := r.bySlot[i].hero
		if p.KillsLog == nil {
			g.add("players[%d].kills_log", i)
		}
		for _, k := range p.KillsLog {
			victim := e.heroNameOr(k.Key, UnknownName)
			events = append(events, sourcedEvent{
				model.NormalizedEvent{Time: k.Time, Message: fmt.Sprintf("%s killed %s", killer, victim)},
				sourceKill,
			})
		}
	}

	for i := range m.Players {
		p := &m.Players[i]
		if p.BuybackLog == nil {
			g.add("players[%d].buyback_log", i)
		}
		for _, b := range p.BuybackLog {
			actor := e.buybackActor(&b, r, i)
			events = append(events, sourcedEvent{
				model.NormalizedEvent{Time: b.Time, Message: fmt.Sprintf("%s bought back", actor)},
				sourceBuyback,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].source < events[j].source
	})

	out := make([]model.NormalizedEvent, len(events))
	for i, ev := range events {
		out[i] = ev.NormalizedEvent
	}
	return out
}

// buybackActor names the hero in a buyback entry. The entry's own slot wins
// over the log owner when both are present.
func (e *Engine) buybackActor(b *model.BuybackLogEntry, r *roster, owner int) string {
	if b.Slot != nil {
		if p, ok := r.at(*b.Slot); ok {
			return p.hero
		}
		return UnknownName
	}
	if b.PlayerSlot != nil {
		if p, ok := r.atPlayerSlot(*b.PlayerSlot); ok {
			return p.hero
		}
		return UnknownName
	}
	return r.bySlot[owner].hero
}
