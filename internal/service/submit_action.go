package service

import (
	"errors"
	"time"

	"lastcandle.games/internal/game"
)

var (
	ErrMatchNotInProgress = errors.New("match is not in progress")
	ErrActionsLocked      = errors.New("actions are locked; the night is being resolved")
	ErrPlayerNotInMatch   = errors.New("player not in match")
	ErrPlayerDead         = errors.New("the dead take no actions")
	ErrAlreadySubmitted   = errors.New("an action was already submitted tonight")
	ErrItemNotHeld        = errors.New("item is not in your hands")
	ErrDaggerBinds        = errors.New("the dagger permits no other act")
	ErrTargetRequired     = errors.New("this item needs a target")
	ErrBadTarget          = errors.New("invalid target")
)

// ActionSubmission is one guest's choice for the night. An empty ItemUID is
// a pass; TargetID is ignored for the talisman and for passes.
type ActionSubmission struct {
	ItemUID  string
	TargetID uint
}

// SubmitAction stores a guest's action for the current night and resolves
// the night once every living guest has submitted. Returns the updated
// match and whether resolution ran.
func SubmitAction(repo MatchRepo, matchID uint, playerEmail string, sub ActionSubmission, actionTimeout, selectionTimeout time.Duration) (*game.Match, bool, error) {
	m, err := repo.GetMatchByID(matchID)
	if err != nil || m == nil {
		return nil, false, ErrMatchNotFound
	}
	if m.Status != game.StatusInProgress {
		return nil, false, ErrMatchNotInProgress
	}
	if m.Phase != game.PhaseNight {
		return nil, false, ErrActionsLocked
	}

	actor := m.PlayerByEmail(playerEmail)
	if actor == nil {
		return nil, false, ErrPlayerNotInMatch
	}
	if !actor.Alive() {
		return nil, false, ErrPlayerDead
	}
	if actor.HasSubmitted {
		return nil, false, ErrAlreadySubmitted
	}

	action := game.NightAction{
		MatchID:     m.ID,
		Night:       m.NightNumber,
		ActorID:     actor.ID,
		SubmittedAt: time.Now(),
	}

	if sub.ItemUID != "" {
		item := m.ItemByUID(sub.ItemUID)
		if item == nil || item.Location != game.LocationHeld ||
			item.PlayerID == nil || *item.PlayerID != actor.ID {
			return nil, false, ErrItemNotHeld
		}
		// Holding the dagger rules out every other item; only the dagger
		// itself or a pass gets through.
		if actor.HoldsDagger && item.Kind != game.ItemDagger {
			return nil, false, ErrDaggerBinds
		}
		if err := checkTarget(m, actor, item.Kind, sub.TargetID); err != nil {
			return nil, false, err
		}

		itemID := item.ID
		action.ItemID = &itemID
		action.ItemKind = item.Kind
		if item.Kind != game.ItemTalisman {
			targetID := sub.TargetID
			action.TargetID = &targetID
		}
		item.Location = game.LocationSubmitted
	}

	m.Actions = append(m.Actions, action)
	actor.HasSubmitted = true

	if allSubmitted(m) {
		if err := repo.UpdateMatch(m); err != nil {
			return nil, false, err
		}
		if err := ResolveDueNight(repo, m.ID, m.NightNumber, actionTimeout, selectionTimeout); err != nil {
			return nil, false, err
		}
		// Reload so the caller sees the resolved state, not the batch.
		m, err = repo.GetMatchByID(matchID)
		if err != nil {
			return nil, true, err
		}
		return m, true, nil
	}

	if err := repo.UpdateMatch(m); err != nil {
		return nil, false, err
	}
	return m, false, nil
}

// checkTarget applies the submission-time target rules. Resolution still
// re-checks everything; this only rejects requests that could never be
// valid, like aiming an autopsy kit at the living.
func checkTarget(m *game.Match, actor *game.Player, kind game.ItemKind, targetID uint) error {
	if kind == game.ItemTalisman {
		return nil
	}
	if targetID == 0 {
		return ErrTargetRequired
	}
	target := m.PlayerByID(targetID)
	if target == nil || target.ID == actor.ID {
		return ErrBadTarget
	}
	switch kind {
	case game.ItemAutopsyKit:
		if target.Alive() {
			return ErrBadTarget
		}
	default:
		if !target.Alive() {
			return ErrBadTarget
		}
	}
	return nil
}

// allSubmitted reports whether every living guest has an action in for the
// current night.
func allSubmitted(m *game.Match) bool {
	alive := m.AlivePlayers()
	if len(alive) == 0 {
		return false
	}
	for _, p := range alive {
		if !p.HasSubmitted {
			return false
		}
	}
	return true
}
