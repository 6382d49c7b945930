package engine

import (
	"sort"

	"lastcandle.games/internal/game"
)

// actionPriority is the fixed resolution weight of an action. Higher weights
// resolve first; the dagger outranks everything and a pass ranks last.
func actionPriority(a *game.NightAction) int {
	if a.Pass() {
		return 0
	}
	switch a.ItemKind {
	case game.ItemDagger:
		return 5
	case game.ItemKnife:
		return 4
	case game.ItemTalisman:
		return 3
	case game.ItemSpyglass:
		return 2
	case game.ItemAutopsyKit:
		return 1
	}
	return 0
}

// classify turns the unordered batch into the single total order every phase
// walks: priority descending, submission time ascending. The sort is stable
// so equal (priority, timestamp) pairs keep their batch order and a replay
// of the same batch reproduces the same walk.
func classify(batch []*game.NightAction) []*game.NightAction {
	ordered := make([]*game.NightAction, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := actionPriority(ordered[i]), actionPriority(ordered[j])
		if pi != pj {
			return pi > pj
		}
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})
	return ordered
}
