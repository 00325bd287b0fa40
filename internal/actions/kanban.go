package actions

import (
	"context"
	"fmt"
	"strings"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"
)

// AddBoard creates a board. Columns and cards without ids get fresh ones.
func (d *Dispatcher) AddBoard(ctx context.Context, b models.KanbanBoard) (string, error) {
	if strings.TrimSpace(b.Title) == "" {
		return "", fmt.Errorf("%w: board title is required", ErrInvalidInput)
	}

	b.Id = d.newId()
	b.Columns = d.assignIds(b.Columns)
	err := d.execute(ctx, "add board", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.AddOp(models.CollectionKanban, b.Id, b)}, nil
	})
	if err != nil {
		return "", err
	}
	return b.Id, nil
}

func (d *Dispatcher) UpdateBoard(ctx context.Context, id string, patch models.KanbanBoardPatch) error {
	if patch.Columns != nil {
		cols := d.assignIds(*patch.Columns)
		patch.Columns = &cols
	}
	return d.execute(ctx, "update board", func(data models.AppData) ([]store.Op, error) {
		if _, ok := data.FindBoard(id); !ok {
			return nil, fmt.Errorf("board %s: %w", id, ErrNotFound)
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

// DeleteBoard removes the board with all of its columns and cards
func (d *Dispatcher) DeleteBoard(ctx context.Context, id string) error {
	return d.execute(ctx, "delete board", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.DeleteOp(models.CollectionKanban, id)}, nil
	})
}

// AddCard appends a card to a column and returns the card id
func (d *Dispatcher) AddCard(ctx context.Context, boardId, columnId string, card models.KanbanCard) (string, error) {
	if strings.TrimSpace(card.Title) == "" {
		return "", fmt.Errorf("%w: card title is required", ErrInvalidInput)
	}
	card.Id = d.newId()
	card = d.assignCardIds(card)

	err := d.execute(ctx, "add card", func(data models.AppData) ([]store.Op, error) {
		board, ok := data.FindBoard(boardId)
		if !ok {
			return nil, fmt.Errorf("board %s: %w", boardId, ErrNotFound)
		}
		cols := cloneColumns(board.Columns)
		ci := columnIndex(cols, columnId)
		if ci < 0 {
			return nil, fmt.Errorf("column %s: %w", columnId, ErrNotFound)
		}
		cols[ci].Cards = append(cols[ci].Cards, card)
		return []store.Op{store.UpdateOp(boardId, models.KanbanBoardPatch{Columns: &cols})}, nil
	})
	if err != nil {
		return "", err
	}
	return card.Id, nil
}

// MoveCard moves a card to position in the target column. Positions past
// the end append.
func (d *Dispatcher) MoveCard(ctx context.Context, boardId, cardId, toColumnId string, position int) error {
	return d.execute(ctx, "move card", func(data models.AppData) ([]store.Op, error) {
		board, ok := data.FindBoard(boardId)
		if !ok {
			return nil, fmt.Errorf("board %s: %w", boardId, ErrNotFound)
		}
		cols := cloneColumns(board.Columns)
		target := columnIndex(cols, toColumnId)
		if target < 0 {
			return nil, fmt.Errorf("column %s: %w", toColumnId, ErrNotFound)
		}
		card, ok := removeCard(cols, cardId)
		if !ok {
			return nil, fmt.Errorf("card %s: %w", cardId, ErrNotFound)
		}

		cards := cols[target].Cards
		if position < 0 {
			position = 0
		}
		if position > len(cards) {
			position = len(cards)
		}
		out := make([]models.KanbanCard, 0, len(cards)+1)
		out = append(out, cards[:position]...)
		out = append(out, card)
		cols[target].Cards = append(out, cards[position:]...)

		return []store.Op{store.UpdateOp(boardId, models.KanbanBoardPatch{Columns: &cols})}, nil
	})
}

func (d *Dispatcher) DeleteCard(ctx context.Context, boardId, cardId string) error {
	return d.execute(ctx, "delete card", func(data models.AppData) ([]store.Op, error) {
		board, ok := data.FindBoard(boardId)
		if !ok {
			return nil, fmt.Errorf("board %s: %w", boardId, ErrNotFound)
		}
		cols := cloneColumns(board.Columns)
		if _, ok := removeCard(cols, cardId); !ok {
			return nil, nil
		}
		return []store.Op{store.UpdateOp(boardId, models.KanbanBoardPatch{Columns: &cols})}, nil
	})
}

func (d *Dispatcher) assignIds(cols []models.KanbanColumn) []models.KanbanColumn {
	out := cloneColumns(cols)
	for i := range out {
		if out[i].Id == "" {
			out[i].Id = d.newId()
		}
		for j := range out[i].Cards {
			if out[i].Cards[j].Id == "" {
				out[i].Cards[j].Id = d.newId()
			}
			out[i].Cards[j] = d.assignCardIds(out[i].Cards[j])
		}
	}
	return out
}

func (d *Dispatcher) assignCardIds(card models.KanbanCard) models.KanbanCard {
	card.Comments = append([]models.KanbanComment(nil), card.Comments...)
	for i := range card.Comments {
		if card.Comments[i].Id == "" {
			card.Comments[i].Id = d.newId()
		}
	}
	card.Attachments = append([]models.KanbanAttachment(nil), card.Attachments...)
	for i := range card.Attachments {
		if card.Attachments[i].Id == "" {
			card.Attachments[i].Id = d.newId()
		}
	}
	return card
}

// cloneColumns copies the column and card slices so that edits never reach
// the published snapshot.
func cloneColumns(cols []models.KanbanColumn) []models.KanbanColumn {
	out := make([]models.KanbanColumn, len(cols))
	for i, c := range cols {
		c.Cards = append([]models.KanbanCard(nil), c.Cards...)
		out[i] = c
	}
	return out
}

func columnIndex(cols []models.KanbanColumn, id string) int {
	for i, c := range cols {
		if c.Id == id {
			return i
		}
	}
	return -1
}

func removeCard(cols []models.KanbanColumn, cardId string) (models.KanbanCard, bool) {
	for i := range cols {
		for j, card := range cols[i].Cards {
			if card.Id == cardId {
				cols[i].Cards = append(cols[i].Cards[:j:j], cols[i].Cards[j+1:]...)
				return card, true
			}
		}
	}
	return models.KanbanCard{}, false
}
