package engine

import (
	"fmt"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/rng"
)

// Outcome reports what a resolution entry point produced. Pending means a
// killer selection is open and the night is not final yet.
type Outcome struct {
	Pending    bool
	MatchEnded bool
	Summary    string
}

// ResolveNight runs the full pass for the match's current night: passive
// reveals, attacks, inspections, the curse countdown and consumption, each
// phase folding the previous phase's patch, then a single merge back into
// the match followed by the drop distributions. The caller persists the
// mutated match and stamps any deadline.
func ResolveNight(m *game.Match, rnd rng.Source) *Outcome {
	nc := newNightContext(m, rnd)
	p := newPatch()
	p = nc.resolvePassive(p)
	p = nc.resolveAttacks(p)
	p = nc.resolveInspections(p)
	p = nc.resolveCountdown(p)
	p = nc.resolveConsumption(p)
	nc.apply(p)

	if runDistributions(m, rnd) {
		m.Phase = game.PhaseSelection
		return &Outcome{Pending: true}
	}
	return finalizeNight(m)
}

// CompleteDistribution resolves the open killer selection. A nil pick stands
// for a timed-out or declined choice and draws the item at random. The rest
// of the victim's drops go out killer-excluded, then the queue resumes and
// may suspend again on a later record.
func CompleteDistribution(m *game.Match, pick *game.Item, rnd rng.Source) *Outcome {
	sel := m.Pending
	if sel == nil {
		return &Outcome{}
	}
	m.Pending = nil

	rec := m.DeathByVictim(sel.VictimID)
	if rec != nil && !rec.Distributed {
		drops := droppedItems(m, rec)
		var chosen *game.Item
		if pick != nil {
			for _, it := range drops {
				if it.ID == pick.ID {
					chosen = it
					break
				}
			}
		}
		if chosen == nil && len(drops) > 0 {
			chosen = drops[rnd.Die(len(drops))-1]
		}
		killer := m.PlayerByID(sel.KillerID)
		if chosen != nil && killer != nil && killer.Alive() {
			giveItem(m, rec, chosen, killer, victimName(m, rec))
		}
		distributeRemainder(m, rec, droppedItems(m, rec), rnd)
		rec.Distributed = true
	}

	if runDistributions(m, rnd) {
		m.Phase = game.PhaseSelection
		return &Outcome{Pending: true}
	}
	return finalizeNight(m)
}

// finalizeNight closes the books once every drop pile is settled: wards and
// submission flags reset, the summary is written, and either the match ends
// or the next night begins.
func finalizeNight(m *game.Match) *Outcome {
	night := m.NightNumber
	for i := range m.Players {
		m.Players[i].Shielded = false
		m.Players[i].HasSubmitted = false
	}
	summary := nightSummary(m, night)
	m.LastNightSummary = summary
	if concludeIfOver(m, night) {
		return &Outcome{MatchEnded: true, Summary: summary}
	}
	m.NightNumber++
	m.Phase = game.PhaseNight
	m.Message = "A new night falls. Choose what you carry into it."
	m.AppendEvent(m.NightNumber, game.EventNightBegin, game.VisibilityPublic, nil,
		fmt.Sprintf("Night %d falls over the manor.", m.NightNumber))
	return &Outcome{Summary: summary}
}

// concludeIfOver finishes the match once fewer than two guests survive.
func concludeIfOver(m *game.Match, night int) bool {
	alive := m.AlivePlayers()
	if len(alive) > 1 {
		return false
	}
	m.Status = game.StatusFinished
	m.Phase = ""
	if len(alive) == 1 {
		m.Winner = alive[0].PlayerName
		m.Message = fmt.Sprintf("%s walks out of the manor alive.", alive[0].PlayerName)
	} else {
		m.Winner = ""
		m.Message = "The manor keeps them all."
	}
	m.AppendEvent(night, game.EventMatchEnd, game.VisibilityPublic, nil, m.Message)
	return true
}

func nightSummary(m *game.Match, night int) string {
	dead := 0
	for i := range m.Deaths {
		if m.Deaths[i].Night == night {
			dead++
		}
	}
	switch dead {
	case 0:
		return "Dawn breaks and every guest still breathes."
	case 1:
		return "Dawn breaks over one body."
	default:
		return fmt.Sprintf("Dawn breaks over %d bodies.", dead)
	}
}
