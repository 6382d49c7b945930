package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/rng"
)

// Resign removes a living guest from an in-progress match as a forced
// collapse with no killer: a held dagger jumps to a random survivor and the
// drop pile goes out to anyone. Runs between nightly passes; the caller
// persists the mutation and settles any open killer selection first when
// the leaver is the one holding it up.
func Resign(m *game.Match, playerID uint, rnd rng.Source) *Outcome {
	pl := m.PlayerByID(playerID)
	if pl == nil || !pl.Alive() {
		return &Outcome{}
	}
	nc := newNightContext(m, rnd)
	p := newPatch()
	nc.passDagger(pl, nil, p)
	p.Deaths = append(p.Deaths, deathMark{
		PlayerID: pl.ID,
		Cause:    game.CauseCollapse,
		Policy:   game.PolicyAnySurvivor,
		DropIDs:  nc.captureDrops(pl.ID, p),
	})
	p.publicNote(game.EventDeath, fmt.Sprintf("%s has fled the manor.", pl.PlayerName))
	nc.apply(p)

	if m.Pending != nil {
		// another guest's selection stays open; settle only the new record
		if rec := m.DeathByVictim(pl.ID); rec != nil && !rec.Distributed {
			distributeRecord(m, rec, rnd)
		}
		return &Outcome{Pending: true}
	}
	if runDistributions(m, rnd) {
		m.Phase = game.PhaseSelection
		return &Outcome{Pending: true}
	}
	if concludeIfOver(m, m.NightNumber) {
		return &Outcome{MatchEnded: true, Summary: m.Message}
	}
	return &Outcome{}
}
