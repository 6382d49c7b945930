package service

import (
	"errors"
	"time"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/dedupe"
	"lastcandle.games/internal/engine"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/keys"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/rng"
)

var (
	ErrNoPendingSelection = errors.New("no item selection is pending")
	ErrNotYourSelection   = errors.New("the selection belongs to another guest")
	ErrItemNotAmongDrops  = errors.New("item is not among the victim's belongings")
)

// CompleteSelection hands the killer their chosen item and resumes the
// distribution queue. An empty playerEmail is the scanner acting on a timed
// out selection; an empty itemUID draws the item at random. The killer's
// pick and the scanner race through one singleflight key, so the item is
// handed out exactly once.
func CompleteSelection(repo MatchRepo, matchID uint, playerEmail, itemUID string, actionTimeout, selectionTimeout time.Duration) (*game.Match, error) {
	key := keys.SelectionKey(matchID)
	v, err, _ := dedupe.SelectionGroup.Do(key, func() (interface{}, error) {
		return completeSelection(repo, matchID, playerEmail, itemUID, actionTimeout, selectionTimeout)
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.(*game.Match)
	return m, nil
}

func completeSelection(repo MatchRepo, matchID uint, playerEmail, itemUID string, actionTimeout, selectionTimeout time.Duration) (*game.Match, error) {
	m, err := repo.GetMatchByID(matchID)
	if err != nil || m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Status != game.StatusInProgress {
		return nil, ErrMatchNotInProgress
	}
	if m.Pending == nil || m.Phase != game.PhaseSelection {
		return nil, ErrNoPendingSelection
	}

	if playerEmail != "" {
		picker := m.PlayerByEmail(playerEmail)
		if picker == nil {
			return nil, ErrPlayerNotInMatch
		}
		if picker.ID != m.Pending.KillerID {
			return nil, ErrNotYourSelection
		}
	}

	var pick *game.Item
	if itemUID != "" {
		pick = m.ItemByUID(itemUID)
		if pick == nil || pick.Location != game.LocationDropped {
			return nil, ErrItemNotAmongDrops
		}
		rec := m.DeathByVictim(m.Pending.VictimID)
		if rec == nil || !containsUID(rec.DropUIDs, pick.UID) {
			return nil, ErrItemNotAmongDrops
		}
	}

	night := m.Pending.Night
	seed := rng.NewSeed()
	out := engine.CompleteDistribution(m, pick, rng.New(seed))
	if err := repo.DeletePendingSelection(m.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	switch {
	case out.Pending:
		// The queue hit another killer-pick record.
		m.Pending.Deadline = now.Add(selectionTimeout)
	case out.MatchEnded:
		if !m.StatsCounted {
			if err := repo.UpdateStatsOnMatchEnd(m, ""); err != nil {
				logging.Error("failed to update stats on match end", err, logging.Fields{constants.LogFieldMatchID: m.ID})
			}
			m.StatsCounted = true
		}
		m.ActionDeadline = time.Time{}
	default:
		// The night closed; a kill happened, so the idle counter resets.
		m.IdleNights = 0
		m.ActionDeadline = now.Add(actionTimeout)
	}

	writeNightJournal(m, night, seed, now, out.Pending)

	if err := repo.UpdateMatch(m); err != nil {
		return nil, err
	}
	return m, nil
}

func containsUID(uids []string, uid string) bool {
	for _, u := range uids {
		if u == uid {
			return true
		}
	}
	return false
}
