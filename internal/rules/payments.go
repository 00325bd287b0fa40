package rules

import (
	"finance-sync-go/internal/models"

	"github.com/shopspring/decimal"
)

// DueForAutoPay returns the pending auto-pay transactions dated on or before
// today. today is a local YYYY-MM-DD date; comparison is lexicographic.
func DueForAutoPay(transactions []models.Transaction, today string) []models.Transaction {
	var due []models.Transaction
	for _, t := range transactions {
		if t.Status == models.StatusPending && t.AutoPay && t.Date <= today {
			due = append(due, t)
		}
	}
	return due
}

// Contribution is the signed effect of a transaction on the wallet balance.
// Only paid transactions count.
func Contribution(t models.Transaction) decimal.Decimal {
	if t.Status != models.StatusPaid {
		return decimal.Zero
	}
	if t.Type == models.TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// WalletBalance recomputes the wallet aggregate from transaction history
func WalletBalance(transactions []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(Contribution(t))
	}
	return total
}

// Round2 rounds a money amount to cents
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
