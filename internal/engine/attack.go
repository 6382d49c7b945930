package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
)

// Knife kills allowed per night. The cap tightens when the dagger is in
// the batch: the manor only has so much room for blood.
const (
	knifeQuota            = 3
	knifeQuotaDaggerNight = 2
)

// resolveAttacks walks every lethal action in classified order. The walk is
// an inherently sequential fold: each action's checks depend on the deaths,
// spent wards and dagger transfers of the actions before it.
func (nc *nightContext) resolveAttacks(prev *Patch) *Patch {
	p := prev.clone()
	out := &attackOutcome{QuotaCap: knifeQuota, Landed: map[uint]bool{}}
	for _, a := range nc.order {
		if !a.Pass() && a.ItemKind == game.ItemDagger {
			out.QuotaCap = knifeQuotaDaggerNight
			break
		}
	}
	p.Attack = out

	for _, a := range nc.order {
		if a.Pass() || !a.ItemKind.Lethal() || a.TargetID == nil {
			continue
		}
		nc.resolveAttack(a, p)
	}
	return p
}

// resolveAttack applies the fixed check sequence to one lethal action.
func (nc *nightContext) resolveAttack(a *game.NightAction, p *Patch) {
	out := p.Attack
	actor := nc.player(a.ActorID)
	target := nc.player(*a.TargetID)
	if actor == nil || target == nil {
		// missing record: skip the action, keep the pass going
		return
	}

	// 1. the actor was killed earlier in this same walk
	if p.dead(actor.ID) || !actor.Alive() {
		a.FailureReason = game.FailureActorDead
		return
	}

	// 2. the target carved out protection with the dagger earlier tonight;
	//    the wasted knife still burns quota
	if out.WardedKiller != 0 && target.ID == out.WardedKiller {
		if a.ItemKind == game.ItemKnife {
			out.CommonAttempts++
		}
		a.FailureReason = game.FailureTargetProtected
		return
	}

	// 3. knife quota: the attempt counts whether or not it lands
	if a.ItemKind == game.ItemKnife {
		out.CommonAttempts++
		if out.CommonAttempts > out.QuotaCap {
			a.FailureReason = game.FailureQuotaExceeded
			return
		}
	}

	// 4. someone got there first
	if p.dead(target.ID) || !target.Alive() {
		a.FailureReason = game.FailureTargetAlreadyDead
		return
	}

	// 5. a ward blocks exactly one blade, then it is spent
	if p.shielded(target.ID) {
		p.Shielded[target.ID] = false
		a.FailureReason = game.FailureTalismanBlocked
		p.privateNote(target.ID, game.EventWardReport,
			"Something struck at you in the dark. Your talisman is spent.")
		return
	}

	// 6. the blow lands
	a.Executed = true
	out.Landed[actor.ID] = true
	p.Streaks[actor.ID] = 0
	p.Shielded[target.ID] = false

	var cause game.DeathCause
	if a.ItemKind == game.ItemDagger {
		cause = game.CauseDagger
		out.WardedKiller = actor.ID
	} else {
		cause = game.CauseKnife
		if !actor.UnderCurse() && !p.Cursed[actor.ID] {
			p.privateNote(actor.ID, game.EventCurseReport,
				"Blood is on your hands. The curse will take you unless you kill again.")
		}
		p.Cursed[actor.ID] = true
	}

	// 7. a knife kill inherits the victim's dagger on the spot, capacity be
	//    damned, and the curse comes with it; a dagger kill leaves any drop
	//    to the distribution step
	if cause == game.CauseKnife && nc.holdsDaggerNow(target.ID, p) {
		if item, fromAction := nc.findDagger(target.ID, p); item != nil {
			p.Moves = append(p.Moves, itemMove{ItemID: item.ID, ToPlayerID: actor.ID, FromActionID: fromAction})
			if fromAction != 0 {
				nc.markSeized(fromAction)
			}
			p.Cursed[actor.ID] = true
			p.privateNote(actor.ID, game.EventCurseReport,
				"The cursed dagger is yours now. Kill again, or the curse will take you.")
		}
	}

	// 8. record the death and queue the drop pile
	killerID := actor.ID
	policy := game.PolicyKillerPick
	if cause == game.CauseDagger {
		policy = game.PolicyKillerExcluded
	}
	p.Deaths = append(p.Deaths, deathMark{
		PlayerID: target.ID,
		Cause:    cause,
		KillerID: &killerID,
		Policy:   policy,
		DropIDs:  nc.captureDrops(target.ID, p),
	})
	p.publicNote(game.EventDeath, fmt.Sprintf("%s was found dead.", target.PlayerName))
	p.privateNote(actor.ID, game.EventKillReport,
		fmt.Sprintf("Your %s found its mark. %s will not see morning.", a.ItemKind.Label(), target.PlayerName))
}

func (nc *nightContext) markSeized(actionID uint) {
	for _, a := range nc.order {
		if a.ID == actionID {
			a.ItemSeized = true
			return
		}
	}
}
