package actions

import (
	"context"
	"fmt"
	"strings"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"github.com/shopspring/decimal"
)

// UnlockBadge records a badge. Unlocking twice is a no-op.
func (d *Dispatcher) UnlockBadge(ctx context.Context, badgeId string) error {
	if strings.TrimSpace(badgeId) == "" {
		return fmt.Errorf("%w: badge id is required", ErrInvalidInput)
	}
	return d.execute(ctx, "unlock badge", func(data models.AppData) ([]store.Op, error) {
		if data.HasBadge(badgeId) {
			return nil, nil
		}
		return []store.Op{store.PutOp(models.CollectionBadges, badgeId, models.Badge{Id: badgeId})}, nil
	})
}

func (d *Dispatcher) SaveWealthProfile(ctx context.Context, wp models.WealthProfile) error {
	if wp.Age <= 0 || wp.RetirementAge <= 0 {
		return fmt.Errorf("%w: age and retirement age must be positive", ErrInvalidInput)
	}
	if wp.MonthlyContribution != nil && wp.MonthlyContribution.IsNegative() {
		return fmt.Errorf("%w: monthly contribution %s", ErrInvalidAmount, wp.MonthlyContribution.String())
	}
	return d.execute(ctx, "save wealth profile", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.PutOp(models.CollectionSettings, models.SettingWealthProfile, wp)}, nil
	})
}

// SetWalletBalance overwrites the cached wallet aggregate
func (d *Dispatcher) SetWalletBalance(ctx context.Context, amount decimal.Decimal) error {
	return d.execute(ctx, "set wallet balance", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.PutOp(models.CollectionSettings, models.SettingWalletBalance,
			models.WalletBalance{Amount: amount})}, nil
	})
}
