package api

import (
	"time"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/storage"
	"lastcandle.games/internal/stream"
)

// MatchHandler groups all match-related HTTP handlers.
type MatchHandler struct {
	repo             storage.Repository
	broker           *stream.Broker
	rules            game.Rules
	actionTimeout    time.Duration
	selectionTimeout time.Duration
}

// NewMatchHandler creates a MatchHandler with the given repository, update
// broker, the rules applied to newly created matches, and the configured
// night and selection timeouts.
func NewMatchHandler(repo storage.Repository, broker *stream.Broker, rules game.Rules, actionTimeout, selectionTimeout time.Duration) *MatchHandler {
	return &MatchHandler{
		repo:             repo,
		broker:           broker,
		rules:            rules,
		actionTimeout:    actionTimeout,
		selectionTimeout: selectionTimeout,
	}
}
