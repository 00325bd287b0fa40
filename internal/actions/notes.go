package actions

import (
	"context"
	"fmt"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"
)

// AddNote creates a note dated today unless a date is given
func (d *Dispatcher) AddNote(ctx context.Context, n models.Note) (string, error) {
	if n.Date == "" {
		n.Date = calendar.Today(d.clock())
	}
	if !calendar.Valid(n.Date) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, n.Date)
	}

	n.Id = d.newId()
	err := d.execute(ctx, "add note", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.AddOp(models.CollectionNotes, n.Id, n)}, nil
	})
	if err != nil {
		return "", err
	}
	return n.Id, nil
}

func (d *Dispatcher) UpdateNote(ctx context.Context, id string, patch models.NotePatch) error {
	if patch.Date != nil && !calendar.Valid(*patch.Date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, *patch.Date)
	}
	return d.execute(ctx, "update note", func(data models.AppData) ([]store.Op, error) {
		if _, ok := find(data.Notes, id); !ok {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

func (d *Dispatcher) DeleteNote(ctx context.Context, id string) error {
	return d.execute(ctx, "delete note", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.DeleteOp(models.CollectionNotes, id)}, nil
	})
}

func (d *Dispatcher) ToggleNotePin(ctx context.Context, id string) error {
	return d.execute(ctx, "toggle note pin", func(data models.AppData) ([]store.Op, error) {
		n, ok := find(data.Notes, id)
		if !ok {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return []store.Op{store.UpdateOp(id, models.NotePatch{IsPinned: models.Ptr(!n.IsPinned)})}, nil
	})
}
