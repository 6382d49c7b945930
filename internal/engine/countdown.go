package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
)

// Nights a cursed guest may go without killing before the curse takes them.
const collapseStreak = 2

// resolveCountdown advances the curse against every corrupted guest who is
// still breathing and did not land a kill tonight. Candidacy is fixed before
// the walk starts, so a guest who picks up the dagger during this phase
// begins their count next night.
func (nc *nightContext) resolveCountdown(prev *Patch) *Patch {
	p := prev.clone()

	var candidates []*game.Player
	for _, pl := range nc.sortedPlayers() {
		if !pl.Alive() || p.dead(pl.ID) {
			continue
		}
		if pl.UnderCurse() || p.Cursed[pl.ID] || nc.holdsDaggerNow(pl.ID, p) {
			candidates = append(candidates, pl)
		}
	}

	for _, pl := range candidates {
		if p.Attack != nil && p.Attack.Landed[pl.ID] {
			continue
		}
		streak := pl.NoKillStreak
		if v, ok := p.Streaks[pl.ID]; ok {
			streak = v
		}
		streak++
		p.Streaks[pl.ID] = streak
		if streak < collapseStreak {
			p.privateNote(pl.ID, game.EventCurseReport,
				"The curse tightens its grip. Kill tonight or it will take you.")
			continue
		}
		nc.collapse(pl, p)
	}
	return p
}

// collapse kills a cursed guest outright. A collapse has no killer, so a
// held dagger passes to a random survivor instead of an inheritor, and the
// body's drops go to the unconditional pool.
func (nc *nightContext) collapse(pl *game.Player, p *Patch) {
	nc.passDagger(pl, nil, p)
	p.Deaths = append(p.Deaths, deathMark{
		PlayerID: pl.ID,
		Cause:    game.CauseCollapse,
		Policy:   game.PolicyAnySurvivor,
		DropIDs:  nc.captureDrops(pl.ID, p),
	})
	p.publicNote(game.EventDeath, fmt.Sprintf("%s was found dead.", pl.PlayerName))
}

// passDagger hands a dying holder's dagger on outside the normal drop flow.
// The killer inherits it when one exists; otherwise it goes to a uniformly
// random survivor, holding capacity ignored. The receiver is cursed either
// way. With nobody left to receive it the dagger stays with the body and
// rides the drop pile.
func (nc *nightContext) passDagger(holder *game.Player, killerID *uint, p *Patch) {
	if !nc.holdsDaggerNow(holder.ID, p) {
		return
	}
	item, fromAction := nc.findDagger(holder.ID, p)
	if item == nil {
		return
	}
	var receiver *game.Player
	if killerID != nil {
		receiver = nc.player(*killerID)
	}
	if receiver == nil || !receiver.Alive() || p.dead(receiver.ID) {
		pool := nc.survivors(p, holder.ID)
		if len(pool) == 0 {
			return
		}
		receiver = pool[nc.rnd.Die(len(pool))-1]
	}
	p.Moves = append(p.Moves, itemMove{ItemID: item.ID, ToPlayerID: receiver.ID, FromActionID: fromAction})
	if fromAction != 0 {
		nc.markSeized(fromAction)
	}
	p.Cursed[receiver.ID] = true
	p.privateNote(receiver.ID, game.EventItemReceived,
		"You wake with the cursed dagger in your hand. Kill, or the curse will take you next.")
}
