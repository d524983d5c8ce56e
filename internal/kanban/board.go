package kanban

import (
	"fmt"
	"sort"
)

// AddCard creates a new card in ColumnBacklog (or the given column, if
// valid) and returns it.
func (b *Board) AddCard(title, description string, column Column, now string) (*Card, error) {
	if column == "" {
		column = ColumnBacklog
	}
	if err := ValidateColumn(column); err != nil {
		return nil, err
	}
	id := fmt.Sprintf("card-%d", b.NextID)
	b.NextID++

	card := &Card{
		ID:          id,
		Title:       title,
		Description: description,
		Column:      column,
		History:     []MoveEntry{{To: column, Timestamp: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Cards[id] = card
	return card, nil
}

// Card returns the card by ID, or an error if it does not exist.
func (b *Board) Card(id string) (*Card, error) {
	c, ok := b.Cards[id]
	if !ok {
		return nil, fmt.Errorf("kanban: card %q not found", id)
	}
	return c, nil
}

// Move transitions a card to a new column and appends a history entry.
// Unlike the linear change pipeline this generalizes from, a Kanban
// board permits movement to any column, including backward.
func (b *Board) Move(id string, to Column, now string) (*Card, error) {
	if err := ValidateColumn(to); err != nil {
		return nil, err
	}
	card, err := b.Card(id)
	if err != nil {
		return nil, err
	}
	if card.Archived {
		return nil, fmt.Errorf("kanban: card %q is archived", id)
	}
	from := card.Column
	card.Column = to
	card.UpdatedAt = now
	card.History = append(card.History, MoveEntry{From: from, To: to, Timestamp: now})
	return card, nil
}

// Update changes a card's title and/or description in place.
func (b *Board) Update(id, title, description string, now string) (*Card, error) {
	card, err := b.Card(id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		card.Title = title
	}
	if description != "" {
		card.Description = description
	}
	card.UpdatedAt = now
	return card, nil
}

// Delete permanently removes a card.
func (b *Board) Delete(id string) error {
	if _, ok := b.Cards[id]; !ok {
		return fmt.Errorf("kanban: card %q not found", id)
	}
	delete(b.Cards, id)
	return nil
}

// Archive marks a card archived without deleting its history. An
// archived card no longer appears in column listings but remains
// retrievable by kanban_history and kanban_detail.
func (b *Board) Archive(id string, now string) (*Card, error) {
	card, err := b.Card(id)
	if err != nil {
		return nil, err
	}
	card.Archived = true
	card.UpdatedAt = now
	return card, nil
}

// ByColumn groups active (non-archived) cards by column, in the fixed
// column order, each column's cards sorted by ID for deterministic
// output.
func (b *Board) ByColumn() map[Column][]*Card {
	grouped := map[Column][]*Card{}
	for _, col := range Columns {
		grouped[col] = nil
	}
	for _, card := range b.Cards {
		if card.Archived {
			continue
		}
		grouped[card.Column] = append(grouped[card.Column], card)
	}
	for _, col := range Columns {
		sort.Slice(grouped[col], func(i, j int) bool { return grouped[col][i].ID < grouped[col][j].ID })
	}
	return grouped
}

// History returns every move/lifecycle entry for id, or for every card
// on the board when id is empty, sorted by card ID then chronological
// order.
func (b *Board) History(id string) ([]MoveEntry, error) {
	if id != "" {
		card, err := b.Card(id)
		if err != nil {
			return nil, err
		}
		return card.History, nil
	}

	var ids []string
	for cid := range b.Cards {
		ids = append(ids, cid)
	}
	sort.Strings(ids)

	var all []MoveEntry
	for _, cid := range ids {
		all = append(all, b.Cards[cid].History...)
	}
	return all, nil
}
