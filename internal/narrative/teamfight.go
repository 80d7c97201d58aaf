package narrative

import (
	"maps"
	"sort"

	"github.com/pable/go-dota-narrative/internal/model"
)

// teamfights folds each conflict window's per-player deltas into side totals
// and, when focusSlot takes part, a focus-player record. Output keeps input order.
func (e *Engine) teamfights(m *model.Match, r *roster, focusSlot int, g *gaps) []model.TeamfightRecord {
	if m.Teamfights == nil {
		g.add("teamfights")
		return nil
	}

	out := make([]model.TeamfightRecord, 0, len(m.Teamfights))
	for fi := range m.Teamfights {
		tf := &m.Teamfights[fi]
		rec := model.TeamfightRecord{
			Start:   tf.Start,
			End:     tf.End,
			Radiant: model.SideStats{DeathRoster: []string{}},
			Dire:    model.SideStats{DeathRoster: []string{}},
		}

		for i := range tf.Players {
			tp := &tf.Players[i]
			pt, ok := r.at(i)
			if !ok {
				g.add("teamfights[%d].players[%d]: no matching participant", fi, i)
				continue
			}
			s := rec.Stats(pt.side)
			s.Deaths += tp.Deaths
			for d := 0; d < tp.Deaths; d++ {
				s.DeathRoster = append(s.DeathRoster, pt.hero)
			}
			s.Buybacks += tp.Buybacks
			s.Damage += tp.Damage
			s.Healing += tp.Healing
			s.GoldDelta += tp.GoldDelta
			s.XPDelta += tp.XPDelta

			if i == focusSlot {
				rec.Focus = e.focusStats(tp, pt)
			}
		}
		out = append(out, rec)
	}
	return out
}

func (e *Engine) focusStats(tp *model.TeamfightPlayer, pt participant) *model.FocusStats {
	killed := make([]string, 0, len(tp.Killed))
	for k := range tp.Killed {
		killed = append(killed, e.heroNameOr(k, UnknownName))
	}
	sort.Strings(killed)

	return &model.FocusStats{
		Hero:        pt.hero,
		Deaths:      tp.Deaths,
		Kills:       len(tp.Killed),
		Killed:      killed,
		Damage:      tp.Damage,
		Healing:     tp.Healing,
		GoldDelta:   tp.GoldDelta,
		XPDelta:     tp.XPDelta,
		BoughtBack:  tp.Buybacks > 0,
		AbilityUses: maps.Clone(tp.AbilityUses),
		ItemUses:    maps.Clone(tp.ItemUses),
	}
}
