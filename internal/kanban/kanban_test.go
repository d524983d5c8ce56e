package kanban

import (
	"path/filepath"
	"testing"
)

const testTime = "2026-08-03T12:00:00Z"

func TestAddCardDefaultsToBacklog(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	card, err := b.AddCard("Write tests", "", "", testTime)
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	if card.Column != ColumnBacklog {
		t.Errorf("Column = %q, want backlog", card.Column)
	}
	if len(card.History) != 1 || card.History[0].To != ColumnBacklog {
		t.Errorf("expected initial history entry, got %+v", card.History)
	}
}

func TestAddCardRejectsInvalidColumn(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	if _, err := b.AddCard("x", "", Column("nope"), testTime); err == nil {
		t.Fatalf("expected error for invalid column")
	}
}

func TestMoveRecordsHistoryAndAllowsBackwardTransitions(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	card, _ := b.AddCard("Ship feature", "", ColumnBacklog, testTime)

	if _, err := b.Move(card.ID, ColumnInProgress, testTime); err != nil {
		t.Fatalf("Move forward: %v", err)
	}
	if _, err := b.Move(card.ID, ColumnBacklog, testTime); err != nil {
		t.Fatalf("Move backward: %v", err)
	}

	if card.Column != ColumnBacklog {
		t.Errorf("Column = %q, want backlog after backward move", card.Column)
	}
	if len(card.History) != 3 {
		t.Fatalf("History len = %d, want 3", len(card.History))
	}
	if card.History[1].From != ColumnBacklog || card.History[1].To != ColumnInProgress {
		t.Errorf("unexpected history entry %+v", card.History[1])
	}
}

func TestMoveRejectsArchivedCard(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	card, _ := b.AddCard("x", "", "", testTime)
	if _, err := b.Archive(card.ID, testTime); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := b.Move(card.ID, ColumnDone, testTime); err == nil {
		t.Fatalf("expected move on archived card to fail")
	}
}

func TestByColumnExcludesArchivedAndSortsByID(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	c1, _ := b.AddCard("first", "", ColumnInProgress, testTime)
	c2, _ := b.AddCard("second", "", ColumnInProgress, testTime)
	c3, _ := b.AddCard("archived", "", ColumnInProgress, testTime)
	b.Archive(c3.ID, testTime)

	grouped := b.ByColumn()
	inProgress := grouped[ColumnInProgress]
	if len(inProgress) != 2 {
		t.Fatalf("len(inProgress) = %d, want 2", len(inProgress))
	}
	if inProgress[0].ID != c1.ID || inProgress[1].ID != c2.ID {
		t.Errorf("unexpected order: %v", inProgress)
	}
}

func TestDeleteRemovesCard(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	card, _ := b.AddCard("x", "", "", testTime)
	if err := b.Delete(card.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Card(card.ID); err == nil {
		t.Errorf("expected card to be gone")
	}
}

func TestHistoryAllCardsSortedByID(t *testing.T) {
	b := NewBoard("b1", "Sprint 1", testTime)
	b.AddCard("a", "", "", testTime)
	b.AddCard("b", "", ColumnDone, testTime)

	entries, err := b.History("")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].To != ColumnBacklog || entries[1].To != ColumnDone {
		t.Errorf("entries not in card-ID order: %+v", entries)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "proj1"))

	b := NewBoard("board1", "Sprint 1", testTime)
	b.AddCard("task one", "do the thing", ColumnBacklog, testTime)

	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load("board1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatalf("expected board to load")
	}
	if len(loaded.Cards) != 1 {
		t.Errorf("len(Cards) = %d, want 1", len(loaded.Cards))
	}
}

func TestStoreLoadMissingReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	b, err := store.Load("doesnotexist")
	if err != nil || b != nil {
		t.Fatalf("Load = %v, %v, want nil, nil", b, err)
	}
}

func TestStoreListReturnsBoardIDs(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	b1 := NewBoard("alpha", "A", testTime)
	b2 := NewBoard("beta", "B", testTime)
	store.Save(b1)
	store.Save(b2)

	ids, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
}
