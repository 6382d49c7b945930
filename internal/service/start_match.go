package service

import (
	"errors"
	"time"

	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/game"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/rng"
	"lastcandle.games/internal/storage"
)

var (
	ErrNotEnoughPlayers    = errors.New("not enough guests to start the night")
	ErrMatchAlreadyStarted = errors.New("match has already started")
)

// StartMatch performs all server-side initialization when the host starts a
// match: every guest receives the starting kit, the extra pool is shuffled
// and dealt around the table, and the cursed dagger lands in one random
// hand. The scalar rules were frozen onto the match at creation; the kit
// composition comes from the rules passed here.
func StartMatch(repo storage.Repository, m *game.Match, rules game.Rules, rnd rng.Source, actionTimeout time.Duration) error {
	if m.Status != game.StatusWaiting {
		return ErrMatchAlreadyStarted
	}
	if len(m.Players) < m.Rules.MinPlayers {
		return ErrNotEnoughPlayers
	}

	for i := range m.Players {
		m.Players[i].Status = game.StatusAlive
		m.Players[i].HasSubmitted = false
	}

	dealItems(m, rules, rnd)

	m.Status = game.StatusInProgress
	m.Phase = game.PhaseNight
	m.NightNumber = 1
	m.Message = "Night falls over the manor. Choose your actions."
	m.ActionDeadline = time.Now().Add(actionTimeout)
	m.AppendEvent(1, game.EventNightBegin, game.VisibilityPublic, nil, "Night 1 falls over the manor.")

	logging.Info("match started", logging.Fields{
		constants.LogFieldMatchID: m.ID,
		"players":                 len(m.Players),
	})
	return repo.UpdateMatch(m)
}

// dealItems stocks every hand. Draw order is fixed (kits, shuffled extras,
// dagger holder) so a seeded source deals the same table every time.
func dealItems(m *game.Match, rules game.Rules, rnd rng.Source) {
	for i := range m.Players {
		for _, kind := range rules.StartingKit {
			addHeldItem(m, &m.Players[i], kind)
		}
	}

	extras := append([]game.ItemKind(nil), rules.ExtraItems...)
	rnd.Shuffle(len(extras), func(i, j int) { extras[i], extras[j] = extras[j], extras[i] })
	cursor := 0
	for _, kind := range extras {
		placed := false
		for tries := 0; tries < len(m.Players); tries++ {
			p := &m.Players[cursor%len(m.Players)]
			cursor++
			if m.HeldCount(p.ID) >= m.Rules.HoldingCapacity {
				continue
			}
			addHeldItem(m, p, kind)
			placed = true
			break
		}
		if !placed {
			// Every hand is full; the leftover never enters play.
			m.Items = append(m.Items, game.Item{MatchID: m.ID, Kind: kind, Location: game.LocationExcess})
		}
	}

	// The dagger ignores capacity here the same way it does on every later
	// transfer.
	holder := &m.Players[rnd.Die(len(m.Players))-1]
	addHeldItem(m, holder, game.ItemDagger)
	holder.HoldsDagger = true
	holderID := holder.ID
	m.AppendEvent(1, game.EventItemReceived, game.VisibilityPrivate, &holderID,
		"You wake with the cursed dagger in your hand. Kill, or the curse will take you next.")
}

func addHeldItem(m *game.Match, p *game.Player, kind game.ItemKind) {
	pid := p.ID
	m.Items = append(m.Items, game.Item{
		MatchID:  m.ID,
		PlayerID: &pid,
		Kind:     kind,
		Location: game.LocationHeld,
	})
}
