package narrative

import (
	"sort"

	"github.com/pable/go-dota-narrative/internal/model"
)

const (
	// PopularItemLimit caps each phase's ranking.
	PopularItemLimit = 10
	// ConsumableCostThreshold is the price below which consumables are treated
	// as routine purchases and left out of the ranking.
	ConsumableCostThreshold = 500
)

// RankPopularItems ranks the early, mid and late game purchase counts for a
// hero. Counts only decide order; the result carries names.
func (e *Engine) RankPopularItems(p model.ItemPopularity) model.PopularItems {
	return model.PopularItems{
		Early: e.rankPhase(p.EarlyGame),
		Mid:   e.rankPhase(p.MidGame),
		Late:  e.rankPhase(p.LateGame),
	}
}

func (e *Engine) rankPhase(counts map[string]int) []model.PopularItemEntry {
	type ranked struct {
		name  string
		count int
	}
	var candidates []ranked
	for id, n := range counts {
		it, ok := e.cat.Item(id)
		if !ok {
			e.log.Debug("skipping unknown item", "item", id)
			continue
		}
		switch {
		case it.IsRecipe():
			continue
		case it.Qual == "component" && !it.Active:
			continue
		case it.Qual == "consumable" && it.Cost < ConsumableCostThreshold:
			continue
		}
		name := it.Name
		if name == "" {
			name = it.Key
		}
		candidates = append(candidates, ranked{name: name, count: n})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > PopularItemLimit {
		candidates = candidates[:PopularItemLimit]
	}

	out := make([]model.PopularItemEntry, len(candidates))
	for i, c := range candidates {
		out[i] = model.PopularItemEntry{Name: c.name}
	}
	return out
}
