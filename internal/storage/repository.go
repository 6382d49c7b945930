package storage

import (
	"time"

	"lastcandle.games/internal/game"
)

type Repository interface {
	CreateMatch(m *game.Match) error
	// GetMatchByID loads the full match: players, items, actions, deaths,
	// events and any pending selection.
	GetMatchByID(id uint) (*game.Match, error)
	// FindMatchByJoinCode loads a light match (players only) for lobby
	// operations and code-to-ID resolution.
	FindMatchByJoinCode(code string) (*game.Match, error)
	GetPublicMatches() ([]game.Match, error)
	UpdateMatch(m *game.Match) error
	RemovePlayerByEmail(matchID uint, email string) error
	// DeletePendingSelection removes the match's selection row. Saving a
	// match with Pending set to nil leaves the row behind, so completion
	// paths call this explicitly.
	DeletePendingSelection(matchID uint) error

	UpsertUser(email, name string) error
	GetStatsByEmail(email string) (*game.User, error)
	SaveUser(u *game.User) error
	UpdateStatsOnMatchEnd(m *game.Match, resignedEmail string) error
	// RecordResignation bumps the player's resignation count the moment
	// they flee, independent of the match-end stats pass.
	RecordResignation(email string) error
	// Leaderboard
	GetTopPlayers(limit int) ([]game.User, error)

	// ClaimTimedOutMatchIDs atomically claims in-progress matches whose
	// night deadline has passed and returns their IDs. A claim is held for
	// claimTTL, so a crashed worker's matches become claimable again.
	ClaimTimedOutMatchIDs(now time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error)
	// ClaimExpiredSelectionIDs does the same for pending item selections
	// whose pick deadline has passed, returning the owning match IDs.
	ClaimExpiredSelectionIDs(now time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error)
}
