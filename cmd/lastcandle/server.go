package main

import (
	"time"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/service"
	"lastcandle.games/internal/stream"
)

// startTimeoutScanner claims matches whose night deadline passed and
// delegates resolution to service.HandleTimedOutMatch.
func startTimeoutScanner(repo interface {
	ClaimTimedOutMatchIDs(time.Time, int, time.Duration, string) ([]uint, error)
	GetMatchByID(uint) (*game.Match, error)
	UpdateMatch(*game.Match) error
}, broker *stream.Broker, actionTimeout, selectionTimeout time.Duration, workerID string) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			ids, err := repo.ClaimTimedOutMatchIDs(now, 20, 2*time.Minute, workerID)
			if err != nil {
				logging.Error("timeout scanner failed to list ids", err, nil)
				continue
			}
			// process each id sequentially (keeps the DB safe under SQLite)
			for _, id := range ids {
				m, err := repo.GetMatchByID(id)
				if err != nil {
					continue
				}
				if err := service.HandleTimedOutMatch(repo.(service.MatchRepo), m, actionTimeout, selectionTimeout); err != nil {
					logging.Error("failed to resolve timed-out match", err, logging.Fields{"match_id": id})
					continue
				}
				publishMatchState(repo, broker, id)
			}
		}
	}()
}

// startSelectionScanner claims item selections whose deadline passed and
// draws the pick on the absent killer's behalf.
func startSelectionScanner(repo interface {
	ClaimExpiredSelectionIDs(time.Time, int, time.Duration, string) ([]uint, error)
	GetMatchByID(uint) (*game.Match, error)
}, broker *stream.Broker, actionTimeout, selectionTimeout time.Duration, workerID string) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			matchIDs, err := repo.ClaimExpiredSelectionIDs(now, 20, 2*time.Minute, workerID)
			if err != nil {
				logging.Error("selection scanner failed to list ids", err, nil)
				continue
			}
			for _, id := range matchIDs {
				if err := service.HandleExpiredSelection(repo.(service.MatchRepo), id, actionTimeout, selectionTimeout); err != nil {
					logging.Error("failed to draw expired selection", err, logging.Fields{"match_id": id})
					continue
				}
				publishMatchState(repo, broker, id)
			}
		}
	}()
}

// publishMatchState tells stream watchers that a scanner changed the match.
func publishMatchState(repo interface {
	GetMatchByID(uint) (*game.Match, error)
}, broker *stream.Broker, matchID uint) {
	m, err := repo.GetMatchByID(matchID)
	if err != nil {
		return
	}
	kind := stream.KindResolved
	switch {
	case m.Status == game.StatusFinished:
		kind = stream.KindEnded
	case m.Phase == game.PhaseSelection:
		kind = stream.KindSelection
	}
	broker.Publish(stream.Update{MatchID: m.ID, Kind: kind, Night: m.NightNumber})
}
