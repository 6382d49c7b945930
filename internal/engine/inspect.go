package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
)

// resolveInspections answers autopsy kit uses against the dead. The report
// names the recorded cause outright, so a dagger wound is the one place the
// dagger's presence in the manor is ever confirmed. A body with no death
// record on file reads as a collapse.
func (nc *nightContext) resolveInspections(prev *Patch) *Patch {
	p := prev.clone()
	for _, a := range nc.order {
		if a.Pass() || a.ItemKind != game.ItemAutopsyKit || a.TargetID == nil {
			continue
		}
		if nc.player(a.ActorID) == nil {
			continue
		}
		target := nc.player(*a.TargetID)
		if target == nil || target.Alive() {
			continue
		}
		cause := game.CauseCollapse
		if rec := nc.m.DeathByVictim(target.ID); rec != nil {
			cause = rec.Cause
		}
		a.Executed = true
		p.privateNote(a.ActorID, game.EventAutopsyReport, autopsyMessage(target, cause))
	}
	return p
}

func autopsyMessage(target *game.Player, cause game.DeathCause) string {
	switch cause {
	case game.CauseDagger:
		return fmt.Sprintf("%s died of a dagger wound. The ancient blade walks among you.", target.PlayerName)
	case game.CauseKnife:
		return fmt.Sprintf("%s died of a knife wound. An ordinary blade, as far as you can tell.", target.PlayerName)
	default:
		return fmt.Sprintf("%s shows no wound at all. The curse took them.", target.PlayerName)
	}
}
