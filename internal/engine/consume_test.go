package engine

import (
	"testing"
	"time"

	"lastcandle.games/internal/game"
)

// Consumption is driven entirely by the outcome fields the earlier phases
// left on the actions, so these tests preset outcomes and run the phase
// directly.

func TestConsumption_ReturnsStrikesThatNeverHappened(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	k1 := addItem(m, 10, 1, game.ItemKnife)
	k2 := addItem(m, 11, 2, game.ItemKnife)
	submit(m, 1, k1, 3, 0)
	submit(m, 2, k2, 3, time.Second)
	actionByActor(m, 1).FailureReason = game.FailureActorDead
	actionByActor(m, 2).FailureReason = game.FailureQuotaExceeded

	nc := newNightContext(m, &stubSource{})
	nc.apply(nc.resolveConsumption(newPatch()))

	for id, holder := range map[uint]uint{k1: 1, k2: 2} {
		it := m.ItemByID(id)
		if it.Location != game.LocationHeld || it.PlayerID == nil || *it.PlayerID != holder {
			t.Fatalf("expected item %d back with player %d, got %+v", id, holder, it)
		}
	}
}

func TestConsumption_SpendsEverythingThatResolved(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	spy := addItem(m, 10, 1, game.ItemSpyglass)
	k1 := addItem(m, 11, 2, game.ItemKnife)
	k2 := addItem(m, 12, 3, game.ItemKnife)
	submit(m, 1, spy, 2, 0)
	submit(m, 2, k1, 1, time.Second)
	submit(m, 3, k2, 1, 2*time.Second)
	actionByActor(m, 1).Executed = true
	actionByActor(m, 2).FailureReason = game.FailureTalismanBlocked
	actionByActor(m, 3).FailureReason = game.FailureTargetAlreadyDead

	nc := newNightContext(m, &stubSource{})
	nc.apply(nc.resolveConsumption(newPatch()))

	for _, id := range []uint{spy, k1, k2} {
		if it := m.ItemByID(id); it.Location != game.LocationDiscarded || it.PlayerID != nil {
			t.Fatalf("expected item %d discarded, got %+v", id, it)
		}
	}
}

func TestConsumption_NeverSpendsTheDagger(t *testing.T) {
	m := testManor("Ada", "Bram")
	dag := addItem(m, 10, 1, game.ItemDagger)
	submit(m, 1, dag, 2, 0)
	actionByActor(m, 1).Executed = true

	nc := newNightContext(m, &stubSource{})
	nc.apply(nc.resolveConsumption(newPatch()))

	it := m.ItemByID(dag)
	if it.Location != game.LocationHeld || it.PlayerID == nil || *it.PlayerID != 1 {
		t.Fatalf("expected the dagger back in its holder's hand, got %+v", it)
	}
}

func TestConsumption_LeavesSeizedItemsWhereTheyWent(t *testing.T) {
	m := testManor("Ada", "Bram")
	dag := addItem(m, 10, 1, game.ItemDagger)
	submit(m, 1, dag, 2, 0)
	a := actionByActor(m, 1)
	a.FailureReason = game.FailureTalismanBlocked
	a.ItemSeized = true
	// the seizure already re-homed the item
	two := uint(2)
	it := m.ItemByID(dag)
	it.PlayerID = &two
	it.Location = game.LocationHeld

	nc := newNightContext(m, &stubSource{})
	nc.apply(nc.resolveConsumption(newPatch()))

	if it.PlayerID == nil || *it.PlayerID != 2 || it.Location != game.LocationHeld {
		t.Fatalf("expected the seized dagger untouched, got %+v", it)
	}
}
