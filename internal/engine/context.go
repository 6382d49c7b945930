package engine

import (
	"sort"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/rng"
)

// nightContext carries everything one resolution pass needs: the match, the
// injected random source and the classified order of tonight's batch.
type nightContext struct {
	m     *game.Match
	rnd   rng.Source
	night int
	order []*game.NightAction
}

func newNightContext(m *game.Match, rnd rng.Source) *nightContext {
	return &nightContext{
		m:     m,
		rnd:   rnd,
		night: m.NightNumber,
		order: classify(m.ActionsForNight(m.NightNumber)),
	}
}

func (nc *nightContext) player(id uint) *game.Player { return nc.m.PlayerByID(id) }

// sortedPlayers returns every guest ordered by ID. Phases that draw from the
// random source iterate this order so the call sequence replays identically.
func (nc *nightContext) sortedPlayers() []*game.Player {
	out := make([]*game.Player, 0, len(nc.m.Players))
	for i := range nc.m.Players {
		out = append(out, &nc.m.Players[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// survivors returns guests alive both in the persisted state and in the
// patch, ordered by ID, optionally excluding one of them.
func (nc *nightContext) survivors(p *Patch, excludeID uint) []*game.Player {
	var out []*game.Player
	for _, pl := range nc.sortedPlayers() {
		if !pl.Alive() || p.dead(pl.ID) || pl.ID == excludeID {
			continue
		}
		out = append(out, pl)
	}
	return out
}

// holdsDaggerNow reports whether the guest holds the dagger once the
// patch's staged transfers are taken into account.
func (nc *nightContext) holdsDaggerNow(playerID uint, p *Patch) bool {
	for i := range nc.m.Items {
		it := &nc.m.Items[i]
		if it.Kind != game.ItemDagger {
			continue
		}
		if to, moved := p.movedTo(it.ID); moved {
			return to == playerID
		}
		pl := nc.player(playerID)
		return pl != nil && pl.HoldsDagger
	}
	return false
}

// findDagger locates the guest's dagger physically: in their holdings, or
// inside their own unresolved submitted action (a blocked dagger attack).
// The second return is the action the item must be seized from, zero when
// the item sits in holdings. Returns nil when the patch already moved it.
func (nc *nightContext) findDagger(playerID uint, p *Patch) (*game.Item, uint) {
	for i := range nc.m.Items {
		it := &nc.m.Items[i]
		if it.Kind != game.ItemDagger {
			continue
		}
		if _, moved := p.movedTo(it.ID); moved {
			return nil, 0
		}
		switch it.Location {
		case game.LocationHeld:
			if it.PlayerID != nil && *it.PlayerID == playerID {
				return it, 0
			}
		case game.LocationSubmitted:
			for _, a := range nc.order {
				if a.ActorID == playerID && a.ItemID != nil && *a.ItemID == it.ID && !a.ItemSeized {
					return it, a.ID
				}
			}
		}
		return nil, 0
	}
	return nil, 0
}

// captureDrops freezes the IDs of everything the victim still holds, minus
// items the patch already moved elsewhere. Taken at death time, before
// consumption can return anything to the body.
func (nc *nightContext) captureDrops(victimID uint, p *Patch) []uint {
	var ids []uint
	for _, it := range nc.m.HeldItems(victimID) {
		if _, moved := p.movedTo(it.ID); moved {
			continue
		}
		ids = append(ids, it.ID)
	}
	return ids
}
