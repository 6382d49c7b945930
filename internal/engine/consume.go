package engine

import "lastcandle.games/internal/game"

// resolveConsumption settles where every submitted item ends the night. The
// dagger is never spent. A strike the actor never got to make comes back to
// their hand; everything that actually resolved, landed or wasted, is spent.
func (nc *nightContext) resolveConsumption(prev *Patch) *Patch {
	p := prev.clone()
	for _, a := range nc.order {
		if a.Pass() {
			continue
		}
		if nc.m.ItemByID(*a.ItemID) == nil {
			continue
		}
		d := disposal{ActionID: a.ID, ItemID: *a.ItemID}
		switch {
		case a.ItemSeized:
			d.Outcome = disposalTransferred
		case a.ItemKind == game.ItemDagger:
			d.Outcome = disposalReturned
		case a.Executed:
			d.Outcome = disposalConsumed
		case a.FailureReason == game.FailureActorDead || a.FailureReason == game.FailureQuotaExceeded:
			d.Outcome = disposalReturned
		case a.FailureReason == game.FailureTargetProtected ||
			a.FailureReason == game.FailureTargetAlreadyDead ||
			a.FailureReason == game.FailureTalismanBlocked:
			d.Outcome = disposalConsumed
		default:
			// resolved to nothing at all, hand it back
			d.Outcome = disposalReturned
		}
		p.Disposals = append(p.Disposals, d)
	}
	return p
}
