package actions

import (
	"context"
	"fmt"
	"strings"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"
)

func validateInvestment(i models.Investment) error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: investment name is required", ErrInvalidInput)
	}
	if !i.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, i.Amount.String())
	}
	if i.InvestedAmount.IsNegative() || i.TargetAmount.IsNegative() {
		return fmt.Errorf("%w: negative invested or target amount", ErrInvalidAmount)
	}
	if !calendar.Valid(i.Date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, i.Date)
	}
	return nil
}

// AddInvestment records a position. InvestedAmount defaults to Amount.
func (d *Dispatcher) AddInvestment(ctx context.Context, i models.Investment) (string, error) {
	if i.InvestedAmount.IsZero() {
		i.InvestedAmount = i.Amount
	}
	if err := validateInvestment(i); err != nil {
		return "", err
	}

	i.Id = d.newId()
	err := d.execute(ctx, "add investment", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.AddOp(models.CollectionInvestments, i.Id, i)}, nil
	})
	if err != nil {
		return "", err
	}
	return i.Id, nil
}

func (d *Dispatcher) UpdateInvestment(ctx context.Context, id string, patch models.InvestmentPatch) error {
	return d.execute(ctx, "update investment", func(data models.AppData) ([]store.Op, error) {
		current, ok := find(data.Investments, id)
		if !ok {
			return nil, fmt.Errorf("investment %s: %w", id, ErrNotFound)
		}
		if err := validateInvestment(patch.Apply(current)); err != nil {
			return nil, err
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

func (d *Dispatcher) DeleteInvestment(ctx context.Context, id string) error {
	return d.execute(ctx, "delete investment", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.DeleteOp(models.CollectionInvestments, id)}, nil
	})
}

type identified interface {
	EntityId() string
}

func find[T identified](items []T, id string) (T, bool) {
	for _, item := range items {
		if item.EntityId() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
