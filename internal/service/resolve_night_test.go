package service

import (
	"fmt"
	"testing"
	"time"

	"lastcandle.games/internal/game"
)

type mockRepo struct {
	matches          map[uint]*game.Match
	updates          int
	statsCalls       int
	statsErr         error
	resignations     []string
	selectionDeletes int
}

func (r *mockRepo) GetMatchByID(id uint) (*game.Match, error) {
	if m, ok := r.matches[id]; ok {
		return m, nil
	}
	return nil, ErrMatchNotFound
}

func (r *mockRepo) UpdateMatch(m *game.Match) error {
	r.updates++
	return nil
}

func (r *mockRepo) UpdateStatsOnMatchEnd(m *game.Match, resignedEmail string) error {
	r.statsCalls++
	return r.statsErr
}

func (r *mockRepo) RecordResignation(email string) error {
	r.resignations = append(r.resignations, email)
	return nil
}

func (r *mockRepo) DeletePendingSelection(matchID uint) error {
	r.selectionDeletes++
	return nil
}

// testMatch builds an in-progress match on night 1 with one guest per name.
// Guest emails follow the name: "ada" becomes "ada@manor.test".
func testMatch(names ...string) *game.Match {
	m := &game.Match{
		Status:      game.StatusInProgress,
		Phase:       game.PhaseNight,
		NightNumber: 1,
		Rules:       game.DefaultRules(),
	}
	m.ID = 1
	for i, name := range names {
		p := game.Player{
			PlayerName:  name,
			PlayerEmail: name + "@manor.test",
			Seat:        i + 1,
			Status:      game.StatusAlive,
		}
		p.ID = uint(i + 1)
		m.Players = append(m.Players, p)
	}
	return m
}

// holdItem puts an item of the given kind into a guest's hand and returns
// its ID.
func holdItem(m *game.Match, holderID uint, kind game.ItemKind) uint {
	id := uint(len(m.Items) + 1)
	hid := holderID
	it := game.Item{
		UID:      fmt.Sprintf("item-%d", id),
		MatchID:  m.ID,
		PlayerID: &hid,
		Kind:     kind,
		Location: game.LocationHeld,
	}
	it.ID = id
	m.Items = append(m.Items, it)
	if kind == game.ItemDagger {
		if p := m.PlayerByID(holderID); p != nil {
			p.HoldsDagger = true
		}
	}
	return id
}

// fileAction records a submitted action directly on the match, bypassing
// SubmitAction. itemID 0 is a pass.
func fileAction(m *game.Match, actorID, itemID, targetID uint) {
	a := game.NightAction{
		MatchID:     m.ID,
		Night:       m.NightNumber,
		ActorID:     actorID,
		SubmittedAt: time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC).Add(time.Duration(len(m.Actions)) * time.Second),
	}
	a.ID = uint(len(m.Actions) + 1)
	if itemID != 0 {
		it := m.ItemByID(itemID)
		iid := it.ID
		a.ItemID = &iid
		a.ItemKind = it.Kind
		it.Location = game.LocationSubmitted
		if it.Kind != game.ItemTalisman {
			tid := targetID
			a.TargetID = &tid
		}
	}
	m.Actions = append(m.Actions, a)
	m.PlayerByID(actorID).HasSubmitted = true
}

func TestResolveDueNight_AutoPassesSilentGuests(t *testing.T) {
	m := testMatch("ada", "bree", "cole", "dunn")
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if err := ResolveDueNight(mr, 1, 1, time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(m.ActionsForNight(1)); got != 4 {
		t.Fatalf("expected 4 auto-passes, got %d", got)
	}
	for _, a := range m.ActionsForNight(1) {
		if !a.Auto {
			t.Fatalf("expected action by %d to be auto-filed", a.ActorID)
		}
	}
	if m.NightNumber != 2 {
		t.Fatalf("expected night 2 after resolution, got %d", m.NightNumber)
	}
	if m.IdleNights != 1 {
		t.Fatalf("expected idle counter 1 after an all-silent night, got %d", m.IdleNights)
	}
	if m.ActionDeadline.IsZero() {
		t.Fatalf("expected a fresh action deadline for night 2")
	}
}

func TestResolveDueNight_AbandonsAfterQuietNights(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	m.Rules.MaxIdleNights = 2
	m.IdleNights = 1
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if err := ResolveDueNight(mr, 1, 1, time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != game.StatusFinished {
		t.Fatalf("expected the match abandoned, got status %q", m.Status)
	}
	if m.Winner != "" {
		t.Fatalf("expected no winner on abandonment, got %q", m.Winner)
	}
	if !m.StatsCounted {
		t.Fatalf("expected stats marked counted so the match never counts later")
	}
	if mr.statsCalls != 0 {
		t.Fatalf("abandoned matches must not update stats, got %d calls", mr.statsCalls)
	}
}

func TestResolveDueNight_SkipsAlreadyResolvedNight(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	m.NightNumber = 2
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if err := ResolveDueNight(mr, 1, 1, time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.updates != 0 {
		t.Fatalf("stale resolution must not touch the match, got %d updates", mr.updates)
	}
	if m.NightNumber != 2 {
		t.Fatalf("expected night to stay at 2, got %d", m.NightNumber)
	}
}

func TestResolveDueNight_CountsStatsWhenMatchEnds(t *testing.T) {
	m := testMatch("ada", "bree")
	knife := holdItem(m, 1, game.ItemKnife)
	fileAction(m, 1, knife, 2)
	fileAction(m, 2, 0, 0)
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if err := ResolveDueNight(mr, 1, 1, time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != game.StatusFinished {
		t.Fatalf("expected the match to end, got status %q", m.Status)
	}
	if m.Winner != "ada" {
		t.Fatalf("expected ada to walk out alive, got %q", m.Winner)
	}
	if mr.statsCalls != 1 {
		t.Fatalf("expected one stats pass, got %d", mr.statsCalls)
	}
	if !m.StatsCounted {
		t.Fatalf("expected stats marked counted")
	}
}

func TestResolveDueNight_RealSubmissionResetsIdleCounter(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	m.IdleNights = 2
	spy := holdItem(m, 1, game.ItemSpyglass)
	fileAction(m, 1, spy, 2)
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if err := ResolveDueNight(mr, 1, 1, time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IdleNights != 0 {
		t.Fatalf("expected idle counter reset by a real submission, got %d", m.IdleNights)
	}
	if m.NightNumber != 2 {
		t.Fatalf("expected night 2, got %d", m.NightNumber)
	}
}
