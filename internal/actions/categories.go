package actions

import (
	"context"
	"fmt"
	"strings"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"
)

func categoryExists(categories []models.Category, name string, t models.TransactionType, skipId string) bool {
	for _, c := range categories {
		if c.Id != skipId && c.Type == t && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func validateCategory(c models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	return nil
}

// AddCategory creates a user category. Names are unique per type.
func (d *Dispatcher) AddCategory(ctx context.Context, c models.Category) (string, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.IsDefault = false
	if err := validateCategory(c); err != nil {
		return "", err
	}

	c.Id = d.newId()
	err := d.execute(ctx, "add category", func(data models.AppData) ([]store.Op, error) {
		if categoryExists(data.Categories, c.Name, c.Type, "") {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
		return []store.Op{store.AddOp(models.CollectionCategories, c.Id, c)}, nil
	})
	if err != nil {
		return "", err
	}
	return c.Id, nil
}

func (d *Dispatcher) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) error {
	return d.execute(ctx, "update category", func(data models.AppData) ([]store.Op, error) {
		current, ok := find(data.Categories, id)
		if !ok {
			return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		next := patch.Apply(current)
		if err := validateCategory(next); err != nil {
			return nil, err
		}
		if categoryExists(data.Categories, next.Name, next.Type, id) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, next.Name)
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

// DeleteCategory removes a user category. Seeded defaults are protected.
func (d *Dispatcher) DeleteCategory(ctx context.Context, id string) error {
	return d.execute(ctx, "delete category", func(data models.AppData) ([]store.Op, error) {
		c, ok := find(data.Categories, id)
		if !ok {
			return nil, nil
		}
		if c.IsDefault {
			return nil, fmt.Errorf("%w: %q", ErrDefaultCategory, c.Name)
		}
		return []store.Op{store.DeleteOp(models.CollectionCategories, id)}, nil
	})
}

// SeedCategories stores categories only when the owner has none yet. It
// reports whether anything was written.
func (d *Dispatcher) SeedCategories(ctx context.Context, categories []models.Category) (bool, error) {
	seeded := false
	err := d.execute(ctx, "seed categories", func(data models.AppData) ([]store.Op, error) {
		seeded = false
		if len(data.Categories) > 0 {
			return nil, nil
		}
		ops := make([]store.Op, 0, len(categories))
		for _, c := range categories {
			if c.Id == "" {
				c.Id = d.newId()
			}
			ops = append(ops, store.PutOp(models.CollectionCategories, c.Id, c))
		}
		seeded = len(ops) > 0
		return ops, nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}
