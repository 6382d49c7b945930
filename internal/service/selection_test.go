package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lastcandle.games/internal/archive"
	"lastcandle.games/internal/game"

	"github.com/klauspost/compress/zstd"
)

// selectionFixture builds a match suspended on a killer-pick: ada killed
// bree with a knife, and bree dropped two items.
func selectionFixture() *game.Match {
	m := testMatch("ada", "bree", "cole", "dunn")
	m.Phase = game.PhaseSelection
	m.IdleNights = 2
	m.Players[1].Status = game.StatusDead

	knife := holdItem(m, 2, game.ItemKnife)
	talisman := holdItem(m, 2, game.ItemTalisman)
	for _, id := range []uint{knife, talisman} {
		it := m.ItemByID(id)
		it.PlayerID = nil
		it.Location = game.LocationDropped
	}

	killerID := uint(1)
	rec := game.DeathRecord{
		MatchID:  m.ID,
		Night:    1,
		PlayerID: 2,
		Cause:    game.CauseKnife,
		KillerID: &killerID,
		Policy:   game.PolicyKillerPick,
		DropUIDs: []string{"item-1", "item-2"},
	}
	rec.ID = 1
	m.Deaths = append(m.Deaths, rec)

	m.Pending = &game.PendingSelection{
		MatchID:  m.ID,
		VictimID: 2,
		KillerID: 1,
		Night:    1,
		Deadline: time.Now().Add(time.Minute),
	}
	return m
}

func TestCompleteSelection_HandsPickToKiller(t *testing.T) {
	m := selectionFixture()
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	got, err := CompleteSelection(mr, 1, "ada@manor.test", "item-1", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	knife := got.ItemByUID("item-1")
	if knife.Location != game.LocationHeld || knife.PlayerID == nil || *knife.PlayerID != 1 {
		t.Fatalf("expected the knife in ada's hands, got %+v", knife)
	}
	talisman := got.ItemByUID("item-2")
	if talisman.PlayerID == nil || *talisman.PlayerID == 1 || *talisman.PlayerID == 2 {
		t.Fatalf("expected the talisman scattered to a bystander, got %+v", talisman)
	}
	if got.Pending != nil || got.Phase != game.PhaseNight {
		t.Fatalf("expected the night to resume, got phase %q", got.Phase)
	}
	if got.NightNumber != 2 {
		t.Fatalf("expected night 2 after the queue drained, got %d", got.NightNumber)
	}
	if got.IdleNights != 0 {
		t.Fatalf("expected the idle counter reset by the kill, got %d", got.IdleNights)
	}
	if mr.selectionDeletes != 1 {
		t.Fatalf("expected the selection row deleted once, got %d", mr.selectionDeletes)
	}
	if got.ActionDeadline.IsZero() {
		t.Fatalf("expected a fresh action deadline for the resumed night")
	}
}

func TestCompleteSelection_RejectsImpostor(t *testing.T) {
	m := selectionFixture()
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if _, err := CompleteSelection(mr, 1, "cole@manor.test", "item-1", time.Minute, time.Minute); err != ErrNotYourSelection {
		t.Fatalf("expected ErrNotYourSelection, got %v", err)
	}
}

func TestCompleteSelection_RejectsItemOutsideTheDrops(t *testing.T) {
	m := selectionFixture()
	holdItem(m, 3, game.ItemSpyglass)
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if _, err := CompleteSelection(mr, 1, "ada@manor.test", "item-3", time.Minute, time.Minute); err != ErrItemNotAmongDrops {
		t.Fatalf("expected ErrItemNotAmongDrops, got %v", err)
	}
}

func TestCompleteSelection_ScannerDrawsOnTimeout(t *testing.T) {
	m := selectionFixture()
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	got, err := CompleteSelection(mr, 1, "", "", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Pending != nil {
		t.Fatalf("expected the selection closed by the draw")
	}
	if n := got.HeldCount(1); n != 1 {
		t.Fatalf("expected the killer drawn exactly one item, got %d", n)
	}
	if !got.Deaths[0].Distributed {
		t.Fatalf("expected the drop pile settled")
	}
}

func TestCompleteSelection_EndsMatchDespiteStatsFailure(t *testing.T) {
	m := testMatch("ada", "bree")
	m.Phase = game.PhaseSelection
	m.Players[1].Status = game.StatusDead
	knife := holdItem(m, 2, game.ItemKnife)
	it := m.ItemByID(knife)
	it.PlayerID = nil
	it.Location = game.LocationDropped
	killerID := uint(1)
	rec := game.DeathRecord{
		MatchID:  m.ID,
		Night:    1,
		PlayerID: 2,
		Cause:    game.CauseKnife,
		KillerID: &killerID,
		Policy:   game.PolicyKillerPick,
		DropUIDs: []string{"item-1"},
	}
	rec.ID = 1
	m.Deaths = append(m.Deaths, rec)
	m.Pending = &game.PendingSelection{
		MatchID:  m.ID,
		VictimID: 2,
		KillerID: 1,
		Night:    1,
		Deadline: time.Now().Add(time.Minute),
	}
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}, statsErr: errors.New("stats store down")}

	got, err := CompleteSelection(mr, 1, "ada@manor.test", "item-1", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("a stats failure must not fail the pick: %v", err)
	}
	if got.Status != game.StatusFinished || got.Winner != "ada" {
		t.Fatalf("expected ada to walk out alive, got status %q winner %q", got.Status, got.Winner)
	}
	if mr.statsCalls != 1 {
		t.Fatalf("expected one stats attempt, got %d", mr.statsCalls)
	}
	if !got.StatsCounted {
		t.Fatalf("expected stats marked counted so the match never counts twice")
	}
}

func TestCompleteSelection_JournalsTheDrawSeed(t *testing.T) {
	dir := t.TempDir()
	archive.Configure(dir)
	defer archive.Configure("")

	m := selectionFixture()
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if _, err := CompleteSelection(mr, 1, "ada@manor.test", "item-1", time.Minute, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("closing the journal: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading the journal dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one journal file, got %d", len(entries))
	}
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("reading the journal: %v", err)
	}
	zr, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("opening the journal: %v", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompressing the journal: %v", err)
	}

	var rec archive.NightRecord
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("decoding the journal line: %v", err)
	}
	if rec.MatchID != 1 || rec.Night != 1 {
		t.Fatalf("expected the suspended night journaled, got match %d night %d", rec.MatchID, rec.Night)
	}
	if rec.Seed == 0 {
		t.Fatalf("expected the draw seed recorded")
	}
	if rec.Pending {
		t.Fatalf("expected the entry marked closed, got pending")
	}
	if len(rec.Deaths) != 1 || rec.Deaths[0] != 2 {
		t.Fatalf("expected the night's death listed, got %v", rec.Deaths)
	}
}

func TestCompleteSelection_NothingPending(t *testing.T) {
	m := testMatch("ada", "bree", "cole")
	mr := &mockRepo{matches: map[uint]*game.Match{1: m}}

	if _, err := CompleteSelection(mr, 1, "ada@manor.test", "", time.Minute, time.Minute); err != ErrNoPendingSelection {
		t.Fatalf("expected ErrNoPendingSelection, got %v", err)
	}
}
