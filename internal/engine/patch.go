package engine

import (
	"lastcandle.games/internal/game"
)

// --- Phase patch model -------------------------------------------------
//
// Each phase receives the previous phase's patch read-only and returns a
// fresh extended copy. apply is the single point where the accumulated
// result is written back into the match; the only thing phases mutate
// directly is the outcome fields of the submitted actions themselves.

// deathMark stages one death, in the order it happened this pass.
type deathMark struct {
	PlayerID uint
	Cause    game.DeathCause
	KillerID *uint
	Policy   game.DropPolicy
	// DropIDs freezes the victim's holdings at the moment of death.
	DropIDs []uint
}

// itemMove stages a physical transfer. FromActionID is non-zero when the
// item was seized out of an unresolved submitted action.
type itemMove struct {
	ItemID       uint
	ToPlayerID   uint
	FromActionID uint
}

type disposalOutcome string

const (
	disposalConsumed    disposalOutcome = "consumed"
	disposalReturned    disposalOutcome = "returned"
	disposalTransferred disposalOutcome = "transferred"
)

// disposal stages the consumption decision for one submitted item.
type disposal struct {
	ActionID uint
	ItemID   uint
	Outcome  disposalOutcome
}

// attackOutcome is the running state of the attack walk, kept on the patch
// so the countdown phase can see who landed a kill.
type attackOutcome struct {
	QuotaCap       int
	CommonAttempts int
	// WardedKiller is the guest protected for the rest of the pass after a
	// successful dagger kill; zero when nobody is.
	WardedKiller uint
	// Landed records actors whose lethal action executed this pass.
	Landed map[uint]bool
}

// note stages an event-log row.
type note struct {
	Type       game.EventType
	Visibility game.Visibility
	PlayerID   *uint
	Message    string
}

// Patch is the accumulator threaded through the phases.
type Patch struct {
	// Shielded holds explicit shield state for every guest a phase
	// touched: true when warded, false when the ward was spent.
	Shielded map[uint]bool
	Deaths   []deathMark
	// Cursed marks guests who fall under the curse this pass.
	Cursed map[uint]bool
	Moves  []itemMove
	// Streaks holds new absolute no-kill streak values.
	Streaks   map[uint]int
	Attack    *attackOutcome
	Disposals []disposal
	Notes     []note
}

func newPatch() *Patch {
	return &Patch{
		Shielded: map[uint]bool{},
		Cursed:   map[uint]bool{},
		Streaks:  map[uint]int{},
	}
}

// clone deep-copies the patch so a phase can extend it without mutating its
// input.
func (p *Patch) clone() *Patch {
	out := &Patch{
		Shielded:  make(map[uint]bool, len(p.Shielded)),
		Cursed:    make(map[uint]bool, len(p.Cursed)),
		Streaks:   make(map[uint]int, len(p.Streaks)),
		Deaths:    append([]deathMark(nil), p.Deaths...),
		Moves:     append([]itemMove(nil), p.Moves...),
		Disposals: append([]disposal(nil), p.Disposals...),
		Notes:     append([]note(nil), p.Notes...),
	}
	for k, v := range p.Shielded {
		out.Shielded[k] = v
	}
	for k, v := range p.Cursed {
		out.Cursed[k] = v
	}
	for k, v := range p.Streaks {
		out.Streaks[k] = v
	}
	if p.Attack != nil {
		a := *p.Attack
		a.Landed = make(map[uint]bool, len(p.Attack.Landed))
		for k, v := range p.Attack.Landed {
			a.Landed[k] = v
		}
		out.Attack = &a
	}
	return out
}

func (p *Patch) dead(playerID uint) bool {
	for _, d := range p.Deaths {
		if d.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (p *Patch) shielded(playerID uint) bool { return p.Shielded[playerID] }

// movedTo returns where the patch last moved an item, if it did.
func (p *Patch) movedTo(itemID uint) (uint, bool) {
	for i := len(p.Moves) - 1; i >= 0; i-- {
		if p.Moves[i].ItemID == itemID {
			return p.Moves[i].ToPlayerID, true
		}
	}
	return 0, false
}

func (p *Patch) landed(playerID uint) bool {
	return p.Attack != nil && p.Attack.Landed[playerID]
}

func (p *Patch) publicNote(t game.EventType, msg string) {
	p.Notes = append(p.Notes, note{Type: t, Visibility: game.VisibilityPublic, Message: msg})
}

func (p *Patch) privateNote(playerID uint, t game.EventType, msg string) {
	id := playerID
	p.Notes = append(p.Notes, note{Type: t, Visibility: game.VisibilityPrivate, PlayerID: &id, Message: msg})
}

// --- Accumulator merge -------------------------------------------------

// apply writes the final patch into the match: shields, curses, streaks,
// item transfers, deaths with their records and drop piles, consumption
// results and the staged event rows. Nothing else writes this state.
func (nc *nightContext) apply(p *Patch) {
	m := nc.m

	for id, warded := range p.Shielded {
		if pl := nc.player(id); pl != nil {
			pl.Shielded = warded
		}
	}

	for id := range p.Cursed {
		if pl := nc.player(id); pl != nil {
			pl.MarkCursed()
		}
	}

	for id, streak := range p.Streaks {
		if pl := nc.player(id); pl != nil {
			pl.NoKillStreak = streak
		}
	}

	for _, mv := range p.Moves {
		it := m.ItemByID(mv.ItemID)
		if it == nil {
			continue
		}
		if it.Kind == game.ItemDagger {
			if it.PlayerID != nil {
				if prev := nc.player(*it.PlayerID); prev != nil {
					prev.HoldsDagger = false
				}
			}
			if prev := nc.player(nc.actorOf(mv.FromActionID)); prev != nil {
				prev.HoldsDagger = false
			}
			if recv := nc.player(mv.ToPlayerID); recv != nil {
				recv.HoldsDagger = true
			}
		}
		to := mv.ToPlayerID
		it.PlayerID = &to
		it.Location = game.LocationHeld
	}

	for _, d := range p.Deaths {
		pl := nc.player(d.PlayerID)
		if pl == nil {
			continue
		}
		pl.MarkDead(d.Cause, d.KillerID, nc.night)
		rec := game.DeathRecord{
			MatchID:  m.ID,
			Night:    nc.night,
			PlayerID: d.PlayerID,
			Cause:    d.Cause,
			KillerID: d.KillerID,
			Policy:   d.Policy,
		}
		for _, itemID := range d.DropIDs {
			it := m.ItemByID(itemID)
			if it == nil {
				continue
			}
			it.PlayerID = nil
			it.Location = game.LocationDropped
			rec.DropUIDs = append(rec.DropUIDs, it.UID)
		}
		m.Deaths = append(m.Deaths, rec)
	}

	for _, dsp := range p.Disposals {
		it := m.ItemByID(dsp.ItemID)
		if it == nil {
			continue
		}
		switch dsp.Outcome {
		case disposalConsumed:
			it.PlayerID = nil
			it.Location = game.LocationDiscarded
		case disposalReturned:
			actorID := nc.actorOf(dsp.ActionID)
			if actorID != 0 {
				it.PlayerID = &actorID
				it.Location = game.LocationHeld
			}
		case disposalTransferred:
			// the move already placed it
		}
	}

	for _, n := range p.Notes {
		m.AppendEvent(nc.night, n.Type, n.Visibility, n.PlayerID, n.Message)
	}
}

// actorOf returns the actor of a batch action by ID, zero when absent.
func (nc *nightContext) actorOf(actionID uint) uint {
	if actionID == 0 {
		return 0
	}
	for _, a := range nc.order {
		if a.ID == actionID {
			return a.ActorID
		}
	}
	return 0
}
