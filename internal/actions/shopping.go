package actions

import (
	"context"
	"fmt"
	"strings"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"
)

func validateShoppingItem(s models.ShoppingItem) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	if s.Quantity < 1 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidAmount, s.Quantity)
	}
	if s.ActualPrice.IsNegative() {
		return fmt.Errorf("%w: price %s", ErrInvalidAmount, s.ActualPrice.String())
	}
	return nil
}

// AddShoppingItem adds an item to the list. Quantity defaults to 1.
func (d *Dispatcher) AddShoppingItem(ctx context.Context, s models.ShoppingItem) (string, error) {
	if s.Quantity == 0 {
		s.Quantity = 1
	}
	if err := validateShoppingItem(s); err != nil {
		return "", err
	}

	s.Id = d.newId()
	err := d.execute(ctx, "add shopping item", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.AddOp(models.CollectionShopping, s.Id, s)}, nil
	})
	if err != nil {
		return "", err
	}
	return s.Id, nil
}

func (d *Dispatcher) UpdateShoppingItem(ctx context.Context, id string, patch models.ShoppingItemPatch) error {
	return d.execute(ctx, "update shopping item", func(data models.AppData) ([]store.Op, error) {
		current, ok := find(data.ShoppingList, id)
		if !ok {
			return nil, fmt.Errorf("shopping item %s: %w", id, ErrNotFound)
		}
		if err := validateShoppingItem(patch.Apply(current)); err != nil {
			return nil, err
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

func (d *Dispatcher) DeleteShoppingItem(ctx context.Context, id string) error {
	return d.execute(ctx, "delete shopping item", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.DeleteOp(models.CollectionShopping, id)}, nil
	})
}

func (d *Dispatcher) ToggleShoppingItem(ctx context.Context, id string) error {
	return d.execute(ctx, "toggle shopping item", func(data models.AppData) ([]store.Op, error) {
		current, ok := find(data.ShoppingList, id)
		if !ok {
			return nil, fmt.Errorf("shopping item %s: %w", id, ErrNotFound)
		}
		return []store.Op{store.UpdateOp(id, models.ShoppingItemPatch{IsChecked: models.Ptr(!current.IsChecked)})}, nil
	})
}

// ClearCheckedShoppingItems deletes every checked item in one batch
func (d *Dispatcher) ClearCheckedShoppingItems(ctx context.Context) error {
	return d.execute(ctx, "clear checked shopping items", func(data models.AppData) ([]store.Op, error) {
		var ops []store.Op
		for _, s := range data.ShoppingList {
			if s.IsChecked {
				ops = append(ops, store.DeleteOp(models.CollectionShopping, s.Id))
			}
		}
		return ops, nil
	})
}
