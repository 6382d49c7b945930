package engine

import (
	"testing"
	"time"

	"lastcandle.games/internal/game"
	"lastcandle.games/internal/rng"
)

func TestResolveNight_TalismanBlocksOnlyOneStrike(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	tal := addItem(m, 10, 2, game.ItemTalisman)
	k1 := addItem(m, 11, 1, game.ItemKnife)
	k2 := addItem(m, 12, 3, game.ItemKnife)
	submit(m, 2, tal, 0, 0)
	submit(m, 1, k1, 2, time.Second)
	submit(m, 3, k2, 2, 2*time.Second)

	ResolveNight(m, rng.New(1))

	if a := actionByActor(m, 1); a.FailureReason != game.FailureTalismanBlocked {
		t.Fatalf("expected the first knife blocked, got %q", a.FailureReason)
	}
	if a := actionByActor(m, 3); !a.Executed {
		t.Fatalf("expected the second knife to land past the spent ward, got failure=%q", actionByActor(m, 3).FailureReason)
	}
	if m.PlayerByID(2).Alive() {
		t.Fatalf("expected the target dead after the ward was spent")
	}
	// a blocked strike is still a spent knife
	if it := m.ItemByID(k1); it.Location != game.LocationDiscarded {
		t.Fatalf("expected the blocked knife spent, got %s", it.Location)
	}
	if it := m.ItemByID(tal); it.Location != game.LocationDiscarded {
		t.Fatalf("expected the talisman spent, got %s", it.Location)
	}
	if m.PlayerByID(1).UnderCurse() {
		t.Fatalf("a blocked strike must not curse the attacker")
	}
}

func TestResolveNight_KnifeQuotaCapsAtThree(t *testing.T) {
	m := testManor("P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8")
	for i := uint(1); i <= 4; i++ {
		addItem(m, 10+i, i, game.ItemKnife)
		submit(m, i, 10+i, i+4, time.Duration(i)*time.Second)
	}

	ResolveNight(m, rng.New(1))

	for _, victim := range []uint{5, 6, 7} {
		if m.PlayerByID(victim).Alive() {
			t.Fatalf("expected player %d dead within quota", victim)
		}
	}
	if !m.PlayerByID(8).Alive() {
		t.Fatalf("expected the fourth target spared by the quota")
	}
	a4 := actionByActor(m, 4)
	if a4.FailureReason != game.FailureQuotaExceeded {
		t.Fatalf("expected quota_exceeded on the fourth knife, got %q", a4.FailureReason)
	}
	// an over-quota knife is not spent
	if it := m.ItemByID(14); it.Location != game.LocationHeld || *it.PlayerID != 4 {
		t.Fatalf("expected the fourth knife back in hand, got %+v", it)
	}
	if m.PlayerByID(4).UnderCurse() {
		t.Fatalf("a failed strike must not curse the attacker")
	}
}

func TestResolveNight_DaggerTightensTheQuota(t *testing.T) {
	m := testManor("P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8")
	dag := addItem(m, 10, 1, game.ItemDagger)
	submit(m, 1, dag, 2, 0)
	for i := uint(3); i <= 5; i++ {
		addItem(m, 10+i, i, game.ItemKnife)
		submit(m, i, 10+i, i+3, time.Duration(i)*time.Second)
	}

	ResolveNight(m, rng.New(1))

	if m.PlayerByID(2).Alive() {
		t.Fatalf("expected the dagger kill to land")
	}
	if rec := m.DeathByVictim(2); rec.Cause != game.CauseDagger || rec.Policy != game.PolicyKillerExcluded {
		t.Fatalf("expected a killer-excluded dagger record, got %+v", rec)
	}
	for _, victim := range []uint{6, 7} {
		if m.PlayerByID(victim).Alive() {
			t.Fatalf("expected player %d dead within the tightened quota", victim)
		}
	}
	if !m.PlayerByID(8).Alive() {
		t.Fatalf("expected the third knife refused on a dagger night")
	}
	if a := actionByActor(m, 5); a.FailureReason != game.FailureQuotaExceeded {
		t.Fatalf("expected quota_exceeded on the third knife, got %q", a.FailureReason)
	}
	// the dagger is never spent; it comes back to its holder
	if it := m.ItemByID(dag); it.Location != game.LocationHeld || *it.PlayerID != 1 {
		t.Fatalf("expected the dagger back with its holder, got %+v", it)
	}
	if !m.PlayerByID(1).HoldsDagger {
		t.Fatalf("expected the holder flag to survive the night")
	}
	if m.PlayerByID(1).Status == game.StatusCursed {
		t.Fatalf("a dagger kill must not mark the holder cursed; the dagger itself corrupts")
	}
}

func TestResolveNight_BlockedKnifeStillBurnsQuota(t *testing.T) {
	m := testManor("P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8")
	tal := addItem(m, 10, 5, game.ItemTalisman)
	submit(m, 5, tal, 0, 0)
	addItem(m, 11, 1, game.ItemKnife)
	submit(m, 1, 11, 5, time.Second)
	addItem(m, 12, 2, game.ItemKnife)
	submit(m, 2, 12, 6, 2*time.Second)
	addItem(m, 13, 3, game.ItemKnife)
	submit(m, 3, 13, 7, 3*time.Second)
	addItem(m, 14, 4, game.ItemKnife)
	submit(m, 4, 14, 8, 4*time.Second)

	ResolveNight(m, rng.New(1))

	if a := actionByActor(m, 1); a.FailureReason != game.FailureTalismanBlocked {
		t.Fatalf("expected the first knife blocked, got %q", a.FailureReason)
	}
	for _, victim := range []uint{6, 7} {
		if m.PlayerByID(victim).Alive() {
			t.Fatalf("expected player %d dead within quota", victim)
		}
	}
	// the blocked strike spent a slot, so only two kills fit tonight
	if !m.PlayerByID(8).Alive() {
		t.Fatalf("expected the fourth target spared by the quota")
	}
	if a := actionByActor(m, 4); a.FailureReason != game.FailureQuotaExceeded {
		t.Fatalf("expected quota_exceeded after a blocked attempt, got %q", a.FailureReason)
	}
	if it := m.ItemByID(14); it.Location != game.LocationHeld || *it.PlayerID != 4 {
		t.Fatalf("expected the refused knife back in hand, got %+v", it)
	}
}

func TestResolveNight_DeadActorsKnifeBurnsNoQuota(t *testing.T) {
	m := testManor("P1", "P2", "P3", "P4", "P5", "P6")
	addItem(m, 11, 1, game.ItemKnife)
	submit(m, 1, 11, 2, 0)
	addItem(m, 12, 2, game.ItemKnife)
	submit(m, 2, 12, 1, time.Second)
	addItem(m, 13, 3, game.ItemKnife)
	submit(m, 3, 13, 5, 2*time.Second)
	addItem(m, 14, 4, game.ItemKnife)
	submit(m, 4, 14, 6, 3*time.Second)

	ResolveNight(m, rng.New(1))

	if m.PlayerByID(2).Alive() {
		t.Fatalf("expected the first knife to land")
	}
	if a := actionByActor(m, 2); a.FailureReason != game.FailureActorDead {
		t.Fatalf("expected actor_dead on the corpse's knife, got %q", a.FailureReason)
	}
	// the corpse's attempt spent no slot, so the third living knife still fits
	for _, victim := range []uint{5, 6} {
		if m.PlayerByID(victim).Alive() {
			t.Fatalf("expected player %d dead within quota", victim)
		}
	}
	if recs := len(m.Deaths); recs != 3 {
		t.Fatalf("expected three death records, got %d", recs)
	}
	// an unswung knife comes back, even to a body
	if it := m.ItemByID(12); it.Location != game.LocationHeld || *it.PlayerID != 2 {
		t.Fatalf("expected the corpse's knife returned, got %+v", it)
	}
}

func TestResolveNight_DaggerKillProtectsTheHolder(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	dag := addItem(m, 10, 1, game.ItemDagger)
	k := addItem(m, 11, 3, game.ItemKnife)
	submit(m, 1, dag, 2, 0)
	submit(m, 3, k, 1, time.Second)

	ResolveNight(m, rng.New(1))

	if !m.PlayerByID(1).Alive() {
		t.Fatalf("expected the dagger holder protected after their kill")
	}
	if a := actionByActor(m, 3); a.FailureReason != game.FailureTargetProtected {
		t.Fatalf("expected target_protected on the knife, got %q", a.FailureReason)
	}
	// the deflected knife is spent all the same
	if it := m.ItemByID(k); it.Location != game.LocationDiscarded {
		t.Fatalf("expected the deflected knife spent, got %s", it.Location)
	}
	if m.PlayerByID(3).UnderCurse() {
		t.Fatalf("a deflected strike must not curse the attacker")
	}
}

func TestResolveNight_SecondKnifeFindsTheTargetDead(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	k1 := addItem(m, 10, 1, game.ItemKnife)
	k2 := addItem(m, 11, 3, game.ItemKnife)
	submit(m, 1, k1, 2, 0)
	submit(m, 3, k2, 2, time.Second)

	ResolveNight(m, rng.New(1))

	if a := actionByActor(m, 3); a.FailureReason != game.FailureTargetAlreadyDead {
		t.Fatalf("expected target_already_dead, got %q", a.FailureReason)
	}
	if it := m.ItemByID(k2); it.Location != game.LocationDiscarded {
		t.Fatalf("expected the wasted knife spent, got %s", it.Location)
	}
	if recs := len(m.Deaths); recs != 1 {
		t.Fatalf("expected exactly one death record, got %d", recs)
	}
}

func TestResolveNight_KnifeKillSeizesTheDagger(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	dag := addItem(m, 10, 2, game.ItemDagger)
	k := addItem(m, 11, 1, game.ItemKnife)
	submit(m, 1, k, 2, 0)
	submit(m, 2, 0, 0, time.Second)

	ResolveNight(m, rng.New(1))

	it := m.ItemByID(dag)
	if it.PlayerID == nil || *it.PlayerID != 1 || it.Location != game.LocationHeld {
		t.Fatalf("expected the dagger seized by the killer, got %+v", it)
	}
	if !m.PlayerByID(1).HoldsDagger || m.PlayerByID(2).HoldsDagger {
		t.Fatalf("expected the holder flag to follow the dagger")
	}
	if m.PlayerByID(1).Status != game.StatusCursed {
		t.Fatalf("expected the killer cursed, got %s", m.PlayerByID(1).Status)
	}
	rec := m.DeathByVictim(2)
	for _, uid := range rec.DropUIDs {
		if uid == it.UID {
			t.Fatalf("a seized dagger must not land in the drop pile")
		}
	}
	if !hasEvent(m, game.EventCurseReport, 1, "dagger") {
		t.Fatalf("expected a private dagger report for the killer")
	}
}

func TestResolveNight_BlockedDaggerIsStillSeized(t *testing.T) {
	m := testManor("Ada", "Bram", "Cora")
	dag := addItem(m, 10, 2, game.ItemDagger)
	tal := addItem(m, 11, 3, game.ItemTalisman)
	k := addItem(m, 12, 1, game.ItemKnife)
	submit(m, 3, tal, 0, 0)
	submit(m, 2, dag, 3, time.Second)
	submit(m, 1, k, 2, 2*time.Second)

	ResolveNight(m, rng.New(1))

	daggerAction := actionByActor(m, 2)
	if daggerAction.FailureReason != game.FailureTalismanBlocked {
		t.Fatalf("expected the dagger blocked by the ward, got %q", daggerAction.FailureReason)
	}
	if !daggerAction.ItemSeized {
		t.Fatalf("expected the dagger pulled out of the blocked action")
	}
	if m.PlayerByID(2).Alive() {
		t.Fatalf("expected the blocked holder killed by the knife")
	}
	it := m.ItemByID(dag)
	if it.PlayerID == nil || *it.PlayerID != 1 || !m.PlayerByID(1).HoldsDagger {
		t.Fatalf("expected the killer to inherit the submitted dagger, got %+v", it)
	}
}
