package service

import (
	"errors"
	"time"

	"lastcandle.games/internal/archive"
	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/dedupe"
	"lastcandle.games/internal/engine"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/keys"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/rng"
)

// MatchRepo is the minimal repository interface required by the night
// resolution paths. Using a small interface simplifies testing.
type MatchRepo interface {
	GetMatchByID(id uint) (*game.Match, error)
	UpdateMatch(m *game.Match) error
	UpdateStatsOnMatchEnd(m *game.Match, resignedEmail string) error
	RecordResignation(email string) error
	DeletePendingSelection(matchID uint) error
}

var ErrMatchNotFound = errors.New("match not found")

// ResolveDueNight resolves the given night of the given match. Safe to call
// from racing triggers (last submitter, deadline scanner, resignation): the
// singleflight key carries the night number, so exactly one caller resolves
// and late callers for an already-resolved night reload and bail out.
func ResolveDueNight(repo MatchRepo, matchID uint, night int, actionTimeout, selectionTimeout time.Duration) error {
	key := keys.ResolveKey(matchID, night)
	_, err, _ := dedupe.ResolveGroup.Do(key, func() (interface{}, error) {
		m, err := repo.GetMatchByID(matchID)
		if err != nil || m == nil {
			return nil, ErrMatchNotFound
		}
		if m.Status != game.StatusInProgress || m.Phase != game.PhaseNight || m.NightNumber != night {
			// Someone else already resolved it, or a selection suspended it.
			return nil, nil
		}
		return nil, resolveNight(repo, m, actionTimeout, selectionTimeout)
	})
	return err
}

// resolveNight runs the engine for the match's current night and applies the
// service-side bookkeeping: auto-passes for silent guests, the idle-night
// counter, deadlines, stats and the night journal. The caller must hold the
// resolve singleflight for this match and night.
func resolveNight(repo MatchRepo, m *game.Match, actionTimeout, selectionTimeout time.Duration) error {
	night := m.NightNumber
	now := time.Now()

	// File a pass for every living guest who never submitted, so the
	// resolver always sees a complete batch.
	for _, p := range m.AlivePlayers() {
		if p.HasSubmitted {
			continue
		}
		m.Actions = append(m.Actions, game.NightAction{
			MatchID:     m.ID,
			Night:       night,
			ActorID:     p.ID,
			SubmittedAt: now,
			Auto:        true,
		})
		p.HasSubmitted = true
	}

	allAuto := true
	for _, a := range m.ActionsForNight(night) {
		if !a.Auto {
			allAuto = false
			break
		}
	}

	seed := rng.NewSeed()
	logging.Info("resolving night", logging.Fields{
		constants.LogFieldMatchID: m.ID,
		constants.LogFieldNight:   night,
		constants.LogFieldSeed:    seed,
	})
	out := engine.ResolveNight(m, rng.New(seed))

	switch {
	case out.Pending:
		// The killer-pick suspends the clock for everyone else.
		m.Pending.Deadline = now.Add(selectionTimeout)
		m.ActionDeadline = time.Time{}
	case out.MatchEnded:
		if !m.StatsCounted {
			if err := repo.UpdateStatsOnMatchEnd(m, ""); err != nil {
				logging.Error("failed to update stats on match end", err, logging.Fields{constants.LogFieldMatchID: m.ID})
			}
			m.StatsCounted = true
		}
		m.ActionDeadline = time.Time{}
	default:
		if allAuto {
			m.IdleNights++
		} else {
			m.IdleNights = 0
		}
		if m.IdleNights >= m.Rules.MaxIdleNights {
			abandonMatch(m)
		} else {
			m.ActionDeadline = now.Add(actionTimeout)
		}
	}
	m.ClaimedBy = ""
	m.ClaimedAt = time.Time{}

	writeNightJournal(m, night, seed, now, out.Pending)

	return repo.UpdateMatch(m)
}

// abandonMatch finishes a match whose guests have all gone silent. Nobody
// wins and no stats are recorded.
func abandonMatch(m *game.Match) {
	m.Status = game.StatusFinished
	m.Phase = ""
	m.Winner = ""
	m.Message = "The candles gutter out. The match ends for inactivity."
	m.StatsCounted = true
	m.ActionDeadline = time.Time{}
}

func writeNightJournal(m *game.Match, night int, seed int64, resolvedAt time.Time, pending bool) {
	var died []uint
	for i := range m.Deaths {
		if m.Deaths[i].Night == night {
			died = append(died, m.Deaths[i].PlayerID)
		}
	}
	if err := archive.WriteNight(archive.NightRecord{
		MatchID:    m.ID,
		Night:      night,
		Seed:       seed,
		ResolvedAt: resolvedAt,
		Deaths:     died,
		Pending:    pending,
	}); err != nil {
		logging.Error("failed to write night journal", err, logging.Fields{constants.LogFieldMatchID: m.ID, constants.LogFieldNight: night})
	}
}
