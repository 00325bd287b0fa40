package rules

import (
	"errors"
	"fmt"
	"strings"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"

	"github.com/shopspring/decimal"
)

// PrescriptionYears is how long after its due date a debt stops being enforceable
const PrescriptionYears = 5

var (
	ErrInvalidInstallments = errors.New("invalid installment plan")
	ErrInstallmentTooSmall = errors.New("installment value rounds to zero")
)

// DebtStatusFromInstallments derives a debt's status from its linked
// installments. ok is false when the debt has no installments at all.
// The result is only ever paid or agreement.
func DebtStatusFromInstallments(transactions []models.Transaction, debtId string) (status models.DebtStatus, ok bool) {
	total, paid := 0, 0
	for _, t := range transactions {
		if t.DebtId != debtId {
			continue
		}
		total++
		if t.Status == models.StatusPaid {
			paid++
		}
	}
	if total == 0 {
		return "", false
	}
	if paid == total {
		return models.DebtPaid, true
	}
	return models.DebtAgreement, true
}

// InstallmentProgress counts linked and paid installments for a debt
func InstallmentProgress(transactions []models.Transaction, debtId string) (total, paid int, outstanding decimal.Decimal) {
	outstanding = decimal.Zero
	for _, t := range transactions {
		if t.DebtId != debtId {
			continue
		}
		total++
		if t.Status == models.StatusPaid {
			paid++
		} else {
			outstanding = outstanding.Add(t.Amount)
		}
	}
	return total, paid, outstanding
}

// AgreementPlan describes a settlement paid in monthly installments
type AgreementPlan struct {
	DebtId        string
	Description   string
	TotalAmount   decimal.Decimal
	Installments  int
	FirstDate     string
	PaymentMethod string
}

// Installments expands a plan into pending expense transactions, one per
// month from FirstDate. Each carries round2(total / n). Calling it twice
// for the same plan yields a second full set.
func Installments(plan AgreementPlan) ([]models.Transaction, error) {
	if plan.Installments < 1 {
		return nil, fmt.Errorf("%w: %d installments", ErrInvalidInstallments, plan.Installments)
	}
	if !plan.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: total amount %s", ErrInvalidInstallments, plan.TotalAmount.String())
	}
	if !calendar.Valid(plan.FirstDate) {
		return nil, fmt.Errorf("%w: first date %q", ErrInvalidInstallments, plan.FirstDate)
	}

	value := Round2(plan.TotalAmount.Div(decimal.NewFromInt(int64(plan.Installments))))
	if !value.IsPositive() {
		return nil, ErrInstallmentTooSmall
	}

	base := strings.TrimSpace(plan.Description)
	out := make([]models.Transaction, 0, plan.Installments)
	for i := 0; i < plan.Installments; i++ {
		date, err := calendar.AddMonthsClamped(plan.FirstDate, i)
		if err != nil {
			return nil, err
		}
		description := base
		if plan.Installments > 1 {
			description = fmt.Sprintf("%s (%d/%d)", base, i+1, plan.Installments)
		}
		out = append(out, models.Transaction{
			Description:   description,
			Amount:        value,
			Type:          models.TransactionExpense,
			Category:      models.GenericCategory,
			Date:          date,
			Status:        models.StatusPending,
			PaymentMethod: plan.PaymentMethod,
			DebtId:        plan.DebtId,
		})
	}
	return out, nil
}

// ApplyInterest grows an amount by ratePercent and rounds to cents
func ApplyInterest(amount, ratePercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(decimal.NewFromInt(100)))
	return Round2(amount.Mul(factor))
}

// IsPrescribed reports whether an unpaid debt is at least PrescriptionYears
// past its due date as of today. Classification only.
func IsPrescribed(d models.Debt, today string) bool {
	if d.Status == models.DebtPaid || d.DueDate == "" {
		return false
	}
	years, err := calendar.YearsBetween(d.DueDate, today)
	if err != nil {
		return false
	}
	return years >= PrescriptionYears
}
