package service

import (
	"errors"
	"testing"
	"time"

	"lastcandle.games/internal/game"
)

func TestResignMatch_CollapsesAndScatters(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	holdItem(m, 1, game.ItemKnife)
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	got, err := ResignMatch(mr, 1, "ada@manor.test", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PlayerByID(1).Status != game.StatusCollapsed {
		t.Fatalf("expected ada collapsed, got %q", got.PlayerByID(1).Status)
	}
	knife := got.ItemByUID("item-1")
	if knife.Location != game.LocationHeld || knife.PlayerID == nil || *knife.PlayerID == 1 {
		t.Fatalf("expected the knife scattered to a survivor, got %+v", knife)
	}
	if got.Status != game.StatusInProgress {
		t.Fatalf("expected the match to continue with two guests, got %q", got.Status)
	}
	if len(mr.resignations) != 1 || mr.resignations[0] != "ada@manor.test" {
		t.Fatalf("expected ada's resignation recorded, got %v", mr.resignations)
	}
}

func TestResignMatch_EndsMatchForTheLastPair(t *testing.T) {
	m := testMatch("ada", "bree")
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	got, err := ResignMatch(mr, 1, "ada@manor.test", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != game.StatusFinished {
		t.Fatalf("expected the match finished, got %q", got.Status)
	}
	if got.Winner != "bree" {
		t.Fatalf("expected bree to walk out alive, got %q", got.Winner)
	}
	if mr.statsCalls != 1 {
		t.Fatalf("expected one stats pass, got %d", mr.statsCalls)
	}
	if len(mr.resignations) != 1 {
		t.Fatalf("expected the resignation recorded, got %v", mr.resignations)
	}
}

func TestResignMatch_EndsMatchDespiteStatsFailure(t *testing.T) {
	m := testMatch("ada", "bree")
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}, statsErr: errors.New("stats store down")}

	got, err := ResignMatch(mr, 1, "ada@manor.test", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("a stats failure must not fail the resignation: %v", err)
	}
	if got.Status != game.StatusFinished {
		t.Fatalf("expected the match finished, got %q", got.Status)
	}
	if mr.statsCalls != 1 {
		t.Fatalf("expected one stats attempt, got %d", mr.statsCalls)
	}
	if !got.StatsCounted {
		t.Fatalf("expected stats marked counted so the match never counts twice")
	}
}

func TestResignMatch_DrawsThePendingPickFirst(t *testing.T) {
	m := selectionFixture()
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	got, err := ResignMatch(mr, 1, "ada@manor.test", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.selectionDeletes != 1 {
		t.Fatalf("expected the stale selection row deleted, got %d", mr.selectionDeletes)
	}
	if got.Pending != nil {
		t.Fatalf("expected no selection left open by the leaver")
	}
	if got.PlayerByID(1).Status != game.StatusCollapsed {
		t.Fatalf("expected ada collapsed after the draw, got %q", got.PlayerByID(1).Status)
	}
	// bree's knife and talisman went somewhere, and whatever ada drew came
	// back off her body; nothing may still read as held by the dead.
	for _, it := range got.Items {
		if it.Location == game.LocationHeld && it.PlayerID != nil {
			if holder := got.PlayerByID(*it.PlayerID); holder == nil || !holder.Alive() {
				t.Fatalf("item %s held by a dead guest", it.UID)
			}
		}
	}
}

func TestResignMatch_TriggersResolutionWhenLastAwaited(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	fileAction(m, 2, 0, 0)
	fileAction(m, 3, 0, 0)
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	got, err := ResignMatch(mr, 1, "ada@manor.test", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.NightNumber != 2 {
		t.Fatalf("expected the night resolved once the holdout fled, got night %d", got.NightNumber)
	}
	if got.Status != game.StatusInProgress {
		t.Fatalf("expected the match to continue, got %q", got.Status)
	}
}

func TestResignMatch_RejectsTheDead(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	m.Players[0].Status = game.StatusDead
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if _, err := ResignMatch(mr, 1, "ada@manor.test", time.Minute, time.Minute); err != ErrPlayerDead {
		t.Fatalf("expected ErrPlayerDead, got %v", err)
	}
}
