package api

import (
	"context"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
)

// GetBudgetUsage reports each budget's spending in month. Paid and pending
// expenses both count.
func (s *FinanceService) GetBudgetUsage(ctx context.Context, ownerId string, month calendar.Month) ([]models.BudgetUsage, error) {
	data, err := s.load(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	return budgetUsage(data, month), nil
}

func budgetUsage(data models.AppData, month calendar.Month) []models.BudgetUsage {
	out := make([]models.BudgetUsage, 0, len(data.Budgets))
	for _, b := range data.Budgets {
		usage := models.BudgetUsage{
			BudgetId: b.Id,
			Category: b.Category,
			Limit:    b.Limit,
		}
		for _, t := range data.Transactions {
			if t.Type == models.TransactionExpense && t.Category == b.Category && month.Contains(t.Date) {
				usage.Spent = usage.Spent.Add(t.Amount)
			}
		}
		usage.Remaining = b.Limit.Sub(usage.Spent)
		usage.Exceeded = usage.Spent.GreaterThan(b.Limit)
		out = append(out, usage)
	}
	return out
}
