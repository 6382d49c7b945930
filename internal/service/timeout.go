package service

import (
	"time"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/logging"
)

// HandleTimedOutMatch resolves a match whose night deadline has passed.
// Silent guests are auto-passed inside the resolution, so the night always
// closes; consecutive all-silent nights are abandoned there too. The state
// guards make a stale claim from the scanner harmless.
func HandleTimedOutMatch(repo MatchRepo, m *game.Match, actionTimeout, selectionTimeout time.Duration) error {
	if m.Status != game.StatusInProgress || m.Phase != game.PhaseNight {
		return nil
	}
	logging.Info("night deadline passed; resolving", logging.Fields{
		constants.LogFieldMatchID: m.ID,
		constants.LogFieldNight:   m.NightNumber,
	})
	return ResolveDueNight(repo, m.ID, m.NightNumber, actionTimeout, selectionTimeout)
}

// HandleExpiredSelection draws the pick for a killer who let their item
// selection time out. A selection completed in the meantime surfaces as
// ErrNoPendingSelection and is not an error for the scanner.
func HandleExpiredSelection(repo MatchRepo, matchID uint, actionTimeout, selectionTimeout time.Duration) error {
	logging.Info("selection deadline passed; drawing for the killer", logging.Fields{
		constants.LogFieldMatchID: matchID,
	})
	_, err := CompleteSelection(repo, matchID, "", "", actionTimeout, selectionTimeout)
	if err == ErrNoPendingSelection || err == ErrMatchNotInProgress {
		return nil
	}
	return err
}
