package service

import (
	"time"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/engine"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/rng"
)

// ResignMatch removes a living guest from an in-progress match. The engine
// treats it as an immediate killerless collapse: belongings scatter to any
// survivor and a held dagger jumps to a random one. If the resigner was the
// guest holding up an item selection, the pick is drawn for them first so
// the match never waits on someone who left.
func ResignMatch(repo MatchRepo, matchID uint, playerEmail string, actionTimeout, selectionTimeout time.Duration) (*game.Match, error) {
	m, err := repo.GetMatchByID(matchID)
	if err != nil || m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Status != game.StatusInProgress {
		return nil, ErrMatchNotInProgress
	}
	pl := m.PlayerByEmail(playerEmail)
	if pl == nil {
		return nil, ErrPlayerNotInMatch
	}
	if !pl.Alive() {
		return nil, ErrPlayerDead
	}

	seed := rng.NewSeed()
	rnd := rng.New(seed)
	now := time.Now()

	if m.Pending != nil && m.Pending.KillerID == pl.ID {
		night := m.Pending.Night
		out := engine.CompleteDistribution(m, nil, rnd)
		if err := repo.DeletePendingSelection(m.ID); err != nil {
			return nil, err
		}
		writeNightJournal(m, night, seed, now, out.Pending)
		if out.MatchEnded {
			// The drawn pick closed the night and the match with it; the
			// departure still counts as a resignation.
			if err := repo.RecordResignation(playerEmail); err != nil {
				logging.Error("failed to record resignation", err, logging.Fields{constants.LogFieldMatchID: m.ID})
			}
			if !m.StatsCounted {
				if err := repo.UpdateStatsOnMatchEnd(m, ""); err != nil {
					logging.Error("failed to update stats on match end", err, logging.Fields{constants.LogFieldMatchID: m.ID})
				}
				m.StatsCounted = true
			}
			m.ActionDeadline = time.Time{}
			if err := repo.UpdateMatch(m); err != nil {
				return nil, err
			}
			return m, nil
		}
		if !out.Pending {
			// The drawn pick closed the night. A kill happened, so the idle
			// counter resets, and the new night needs its deadline before the
			// resignation below is folded in.
			m.IdleNights = 0
			m.ActionDeadline = now.Add(actionTimeout)
		}
	}

	out := engine.Resign(m, pl.ID, rnd)
	if err := repo.RecordResignation(playerEmail); err != nil {
		logging.Error("failed to record resignation", err, logging.Fields{constants.LogFieldMatchID: m.ID})
	}

	switch {
	case out.Pending:
		if m.Pending != nil && m.Pending.Deadline.IsZero() {
			m.Pending.Deadline = now.Add(selectionTimeout)
			m.ActionDeadline = time.Time{}
		}
	case out.MatchEnded:
		if !m.StatsCounted {
			if err := repo.UpdateStatsOnMatchEnd(m, ""); err != nil {
				logging.Error("failed to update stats on match end", err, logging.Fields{constants.LogFieldMatchID: m.ID})
			}
			m.StatsCounted = true
		}
		m.ActionDeadline = time.Time{}
	}

	if err := repo.UpdateMatch(m); err != nil {
		return nil, err
	}

	// If the resigner was the last guest the night was waiting on, the
	// batch is now complete and resolution is due.
	if m.Status == game.StatusInProgress && m.Phase == game.PhaseNight && allSubmitted(m) {
		if err := ResolveDueNight(repo, m.ID, m.NightNumber, actionTimeout, selectionTimeout); err != nil {
			return nil, err
		}
		return repo.GetMatchByID(matchID)
	}
	return m, nil
}
