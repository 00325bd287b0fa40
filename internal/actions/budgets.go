package actions

import (
	"context"
	"fmt"
	"strings"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"
)

func validateBudget(b models.Budget) error {
	if strings.TrimSpace(b.Category) == "" {
		return fmt.Errorf("%w: budget category is required", ErrInvalidInput)
	}
	if !b.Limit.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, b.Limit.String())
	}
	return nil
}

// budgetForCategory returns the id of the budget on category, ignoring skipId
func budgetForCategory(budgets []models.Budget, category, skipId string) (string, bool) {
	for _, b := range budgets {
		if b.Id != skipId && b.Category == category {
			return b.Id, true
		}
	}
	return "", false
}

// AddBudget creates a budget. At most one budget may exist per category.
func (d *Dispatcher) AddBudget(ctx context.Context, b models.Budget) (string, error) {
	if err := validateBudget(b); err != nil {
		return "", err
	}

	b.Id = d.newId()
	err := d.execute(ctx, "add budget", func(data models.AppData) ([]store.Op, error) {
		if existing, dup := budgetForCategory(data.Budgets, b.Category, ""); dup {
			return nil, fmt.Errorf("%w: %q (budget %s)", ErrDuplicateBudget, b.Category, existing)
		}
		return []store.Op{store.AddOp(models.CollectionBudgets, b.Id, b)}, nil
	})
	if err != nil {
		return "", err
	}
	return b.Id, nil
}

func (d *Dispatcher) UpdateBudget(ctx context.Context, id string, patch models.BudgetPatch) error {
	return d.execute(ctx, "update budget", func(data models.AppData) ([]store.Op, error) {
		current, ok := find(data.Budgets, id)
		if !ok {
			return nil, fmt.Errorf("budget %s: %w", id, ErrNotFound)
		}
		next := patch.Apply(current)
		if err := validateBudget(next); err != nil {
			return nil, err
		}
		if existing, dup := budgetForCategory(data.Budgets, next.Category, id); dup {
			return nil, fmt.Errorf("%w: %q (budget %s)", ErrDuplicateBudget, next.Category, existing)
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

func (d *Dispatcher) DeleteBudget(ctx context.Context, id string) error {
	return d.execute(ctx, "delete budget", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.DeleteOp(models.CollectionBudgets, id)}, nil
	})
}
