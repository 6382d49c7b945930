package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
)

// resolvePassive handles spyglass reveals and talisman wards. It runs before
// any lethal action is considered, so scouts see holdings as they stand when
// the night begins and every ward is up before the first blade falls.
// Nothing here is consumed; disposal is decided later from the outcome.
func (nc *nightContext) resolvePassive(prev *Patch) *Patch {
	p := prev.clone()
	for _, a := range nc.order {
		if a.Pass() {
			continue
		}
		switch a.ItemKind {
		case game.ItemTalisman:
			if nc.player(a.ActorID) == nil {
				continue
			}
			p.Shielded[a.ActorID] = true
			a.Executed = true
			p.privateNote(a.ActorID, game.EventWardReport,
				"Your talisman glows faintly. You are warded tonight.")
		case game.ItemSpyglass:
			nc.resolveScout(a, p)
		}
	}
	return p
}

// resolveScout reveals the target's holding count and one random item. A
// drawn dagger is reported as a knife: the dagger's existence never leaks
// through a spyglass.
func (nc *nightContext) resolveScout(a *game.NightAction, p *Patch) {
	if a.TargetID == nil {
		return
	}
	target := nc.player(*a.TargetID)
	if target == nil || nc.player(a.ActorID) == nil {
		return
	}
	held := nc.m.HeldItems(target.ID)
	a.Executed = true
	if len(held) == 0 {
		p.privateNote(a.ActorID, game.EventScoutReport,
			fmt.Sprintf("%s carries nothing of note.", target.PlayerName))
		return
	}
	pick := held[nc.rnd.Die(len(held))-1]
	seen := pick.Kind
	if seen == game.ItemDagger {
		seen = game.ItemKnife
	}
	p.privateNote(a.ActorID, game.EventScoutReport,
		fmt.Sprintf("%s carries %d item(s). Through the spyglass you glimpse a %s.",
			target.PlayerName, len(held), seen.Label()))
}
