package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/rng"
)

// runDistributions works through every death record whose drops are still
// unallocated, in creation order. A knife kill whose killer is alive and has
// room opens a selection window and suspends the queue; everything else
// hands out items on the spot. Reports whether a selection is now open.
func runDistributions(m *game.Match, rnd rng.Source) bool {
	for i := range m.Deaths {
		rec := &m.Deaths[i]
		if rec.Distributed {
			continue
		}
		if distributeRecord(m, rec, rnd) {
			return true
		}
	}
	return false
}

// distributeRecord settles one death record's drop pile. Returns true when
// the record opened a killer selection instead of finishing.
func distributeRecord(m *game.Match, rec *game.DeathRecord, rnd rng.Source) bool {
	drops := droppedItems(m, rec)
	if len(drops) == 0 {
		rec.Distributed = true
		return false
	}
	if rec.Policy == game.PolicyKillerPick && rec.KillerID != nil {
		killer := m.PlayerByID(*rec.KillerID)
		if killer != nil && killer.Alive() && m.HeldCount(killer.ID) < m.Rules.HoldingCapacity {
			openSelection(m, rec, killer)
			return true
		}
	}
	distributeRemainder(m, rec, drops, rnd)
	rec.Distributed = true
	return false
}

// openSelection suspends the queue on a killer-pick record. The deadline is
// stamped by the caller; the engine never reads the clock.
func openSelection(m *game.Match, rec *game.DeathRecord, killer *game.Player) {
	kid := killer.ID
	m.Pending = &game.PendingSelection{
		MatchID:  m.ID,
		VictimID: rec.PlayerID,
		KillerID: kid,
		Night:    rec.Night,
	}
	m.AppendEvent(rec.Night, game.EventSelectionOffer, game.VisibilityPrivate, &kid,
		fmt.Sprintf("You stand over %s's belongings. Take one before the rest are scattered.",
			victimName(m, rec)))
}

// distributeRemainder allocates each dropped item to a uniformly random
// eligible survivor, re-checking eligibility per item since capacities fill
// as items land. Items nobody can carry are lost as excess.
func distributeRemainder(m *game.Match, rec *game.DeathRecord, drops []*game.Item, rnd rng.Source) {
	name := victimName(m, rec)
	passed, lost := 0, 0
	for _, it := range drops {
		pool := eligibleReceivers(m, rec)
		if len(pool) == 0 {
			it.PlayerID = nil
			it.Location = game.LocationExcess
			lost++
			continue
		}
		receiver := pool[rnd.Die(len(pool))-1]
		giveItem(m, rec, it, receiver, name)
		passed++
	}
	if passed > 0 {
		m.AppendEvent(rec.Night, game.EventDeath, game.VisibilityPublic, nil,
			fmt.Sprintf("%s's belongings were passed on.", name))
	}
	if lost > 0 {
		m.AppendEvent(rec.Night, game.EventItemExcess, game.VisibilityPublic, nil,
			fmt.Sprintf("No one could carry what %s left behind.", name))
	}
}

// eligibleReceivers lists survivors with room for one more item, honoring
// the record's killer exclusion. Ordered by ID so random draws replay.
func eligibleReceivers(m *game.Match, rec *game.DeathRecord) []*game.Player {
	var out []*game.Player
	for _, pl := range m.AlivePlayers() {
		if rec.Policy != game.PolicyAnySurvivor && rec.KillerID != nil && pl.ID == *rec.KillerID {
			continue
		}
		if m.HeldCount(pl.ID) >= m.Rules.HoldingCapacity {
			continue
		}
		out = append(out, pl)
	}
	return out
}

func giveItem(m *game.Match, rec *game.DeathRecord, it *game.Item, receiver *game.Player, victim string) {
	pid := receiver.ID
	it.PlayerID = &pid
	it.Location = game.LocationHeld
	if it.Kind == game.ItemDagger {
		receiver.HoldsDagger = true
		receiver.MarkCursed()
	}
	rec.ReceiverIDs = append(rec.ReceiverIDs, receiver.ID)
	m.AppendEvent(rec.Night, game.EventItemReceived, game.VisibilityPrivate, &pid,
		fmt.Sprintf("From %s's belongings you receive a %s.", victim, it.Kind.Label()))
}

func droppedItems(m *game.Match, rec *game.DeathRecord) []*game.Item {
	var out []*game.Item
	for _, uid := range rec.DropUIDs {
		if it := m.ItemByUID(uid); it != nil && it.Location == game.LocationDropped {
			out = append(out, it)
		}
	}
	return out
}

func victimName(m *game.Match, rec *game.DeathRecord) string {
	if pl := m.PlayerByID(rec.PlayerID); pl != nil {
		return pl.PlayerName
	}
	return "the departed"
}
