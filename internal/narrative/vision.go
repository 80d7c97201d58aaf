package narrative

import (
	"sort"

	"github.com/pable/go-dota-narrative/internal/model"
)

// openWard is a placement still waiting for its removal record.
type openWard struct {
	handle string
	idx    int // into the output slice
}

type removal struct {
	model.WardLogEntry
	kind  model.WardKind
	owner int
}

// reconcileVision pairs ward placements with their removals by entity handle
// and classifies each removal as a natural expiry or a deward.
func (e *Engine) reconcileVision(players []model.Player, r *roster, g *gaps) []model.VisionEvent {
	var (
		out      []model.VisionEvent
		removals []removal
	)
	// open[owner][kind] holds the placements not yet closed.
	open := make(map[int]map[model.WardKind][]openWard, len(players))

	for i := range players {
		p := &players[i]
		placedBy := r.bySlot[i].hero
		open[i] = make(map[model.WardKind][]openWard, 2)

		for _, src := range []struct {
			kind       model.WardKind
			placements []model.WardLogEntry
			removals   []model.WardLogEntry
			name       string
		}{
			{model.WardObserver, p.ObsLog, p.ObsLeftLog, "obs"},
			{model.WardSentry, p.SenLog, p.SenLeftLog, "sen"},
		} {
			if src.placements == nil {
				g.add("players[%d].%s_log", i, src.name)
			}
			if src.removals == nil {
				g.add("players[%d].%s_left_log", i, src.name)
			}
			for _, pl := range src.placements {
				open[i][src.kind] = append(open[i][src.kind], openWard{handle: string(pl.Handle), idx: len(out)})
				out = append(out, model.VisionEvent{
					Kind:     src.kind,
					PlacedBy: placedBy,
					PlacedAt: pl.Time,
					Position: model.Position{X: pl.X, Y: pl.Y},
					Reason:   model.ReasonUnset,
				})
			}
			for _, rm := range src.removals {
				removals = append(removals, removal{WardLogEntry: rm, kind: src.kind, owner: i})
			}
		}
	}

	sort.SliceStable(removals, func(i, j int) bool {
		return removals[i].Time < removals[j].Time
	})

	for _, rm := range removals {
		wards := open[rm.owner][rm.kind]
		match := -1
		for j, w := range wards {
			if w.handle != string(rm.Handle) || out[w.idx].PlacedAt > rm.Time {
				continue
			}
			// Handles can be reused once a ward is gone; the latest placement wins.
			if match < 0 || out[w.idx].PlacedAt >= out[wards[match].idx].PlacedAt {
				match = j
			}
		}
		if match < 0 {
			e.log.Debug("dropping ward removal without placement",
				"owner", rm.owner, "kind", rm.kind, "handle", string(rm.Handle), "time", rm.Time)
			continue
		}

		ev := &out[wards[match].idx]
		removedAt := rm.Time
		ev.RemovedAt = &removedAt
		if rm.AttackerName == "" || e.isOwnHero(rm.AttackerName, r.bySlot[rm.owner]) {
			ev.Reason = model.ReasonExpire
		} else {
			ev.Reason = model.ReasonDeward
			ev.RemovedBy = e.heroNameOr(rm.AttackerName, rm.AttackerName)
		}
		open[rm.owner][rm.kind] = append(wards[:match], wards[match+1:]...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlacedAt < out[j].PlacedAt
	})
	return out
}

// isOwnHero reports whether attacker resolves to the ward owner's hero.
func (e *Engine) isOwnHero(attacker string, owner participant) bool {
	h, ok := e.cat.HeroByName(attacker)
	return ok && h.ID == owner.heroID
}
