package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/rules"
	"finance-sync-go/internal/store"

	"github.com/shopspring/decimal"
)

func validateDebt(debt models.Debt) error {
	if strings.TrimSpace(debt.Creditor) == "" {
		return fmt.Errorf("%w: creditor is required", ErrInvalidInput)
	}
	if !debt.OriginalAmount.IsPositive() || !debt.CurrentAmount.IsPositive() {
		return fmt.Errorf("%w: original %s current %s", ErrInvalidAmount,
			debt.OriginalAmount.String(), debt.CurrentAmount.String())
	}
	if debt.TargetAmount.IsNegative() || debt.AgreedAmount.IsNegative() {
		return fmt.Errorf("%w: negative target or agreed amount", ErrInvalidAmount)
	}
	if debt.DueDate != "" && !calendar.Valid(debt.DueDate) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, debt.DueDate)
	}
	switch debt.Status {
	case models.DebtOpen, models.DebtNegotiating, models.DebtAgreement, models.DebtPaid:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, debt.Status)
	}
	return nil
}

// AddDebt records a debt. CurrentAmount defaults to OriginalAmount and the
// status to open.
func (d *Dispatcher) AddDebt(ctx context.Context, debt models.Debt) (string, error) {
	if debt.CurrentAmount.IsZero() {
		debt.CurrentAmount = debt.OriginalAmount
	}
	if debt.Status == "" {
		debt.Status = models.DebtOpen
	}
	if err := validateDebt(debt); err != nil {
		return "", err
	}

	debt.Id = d.newId()
	err := d.execute(ctx, "add debt", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.AddOp(models.CollectionDebts, debt.Id, debt)}, nil
	})
	if err != nil {
		return "", err
	}
	return debt.Id, nil
}

// UpdateDebt patches a debt. Setting the status here bypasses the
// installment cascade.
func (d *Dispatcher) UpdateDebt(ctx context.Context, id string, patch models.DebtPatch) error {
	return d.execute(ctx, "update debt", func(data models.AppData) ([]store.Op, error) {
		current, ok := data.FindDebt(id)
		if !ok {
			return nil, fmt.Errorf("debt %s: %w", id, ErrNotFound)
		}
		if err := validateDebt(patch.Apply(current)); err != nil {
			return nil, err
		}
		return []store.Op{store.UpdateOp(id, patch)}, nil
	})
}

// DeleteDebt removes the debt only. Linked installment transactions stay.
func (d *Dispatcher) DeleteDebt(ctx context.Context, id string) error {
	return d.execute(ctx, "delete debt", func(models.AppData) ([]store.Op, error) {
		return []store.Op{store.DeleteOp(models.CollectionDebts, id)}, nil
	})
}

// ApplyDebtInterest grows the current amount by ratePercent, rounded to cents
func (d *Dispatcher) ApplyDebtInterest(ctx context.Context, id string, ratePercent decimal.Decimal) error {
	if !ratePercent.IsPositive() {
		return fmt.Errorf("%w: interest rate %s", ErrInvalidAmount, ratePercent.String())
	}
	return d.execute(ctx, "apply debt interest", func(data models.AppData) ([]store.Op, error) {
		debt, ok := data.FindDebt(id)
		if !ok {
			return nil, fmt.Errorf("debt %s: %w", id, ErrNotFound)
		}
		grown := rules.ApplyInterest(debt.CurrentAmount, ratePercent)
		return []store.Op{store.UpdateOp(id, models.DebtPatch{CurrentAmount: &grown})}, nil
	})
}

// Agreement is a negotiated settlement paid in monthly installments
type Agreement struct {
	AgreedAmount  decimal.Decimal
	Installments  int
	FirstDate     string
	PaymentMethod string
}

// CreateAgreement marks the debt as under agreement and generates its
// installments in one batch. It returns the installment ids. Calling it
// twice generates a second set.
func (d *Dispatcher) CreateAgreement(ctx context.Context, debtId string, a Agreement) ([]string, error) {
	var ids []string
	err := d.execute(ctx, "create agreement", func(data models.AppData) ([]store.Op, error) {
		debt, ok := data.FindDebt(debtId)
		if !ok {
			return nil, fmt.Errorf("debt %s: %w", debtId, ErrNotFound)
		}

		installments, err := rules.Installments(rules.AgreementPlan{
			DebtId:        debt.Id,
			Description:   "Agreement " + debt.Creditor,
			TotalAmount:   a.AgreedAmount,
			Installments:  a.Installments,
			FirstDate:     a.FirstDate,
			PaymentMethod: a.PaymentMethod,
		})
		if err != nil {
			if errors.Is(err, rules.ErrInstallmentTooSmall) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidInstallments, err)
		}

		ops := []store.Op{store.UpdateOp(debt.Id, models.DebtPatch{
			AgreedAmount: &a.AgreedAmount,
			Status:       models.Ptr(models.DebtAgreement),
		})}
		ids = ids[:0]
		for _, t := range installments {
			t.Id = d.newId()
			ids = append(ids, t.Id)
			ops = append(ops, store.AddOp(models.CollectionTransactions, t.Id, t))
		}
		return ops, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
