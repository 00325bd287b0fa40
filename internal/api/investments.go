package api

import (
	"context"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/rules"

	"github.com/shopspring/decimal"
)

// GetInvestmentSummary aggregates cost basis, market value and goal progress
func (s *FinanceService) GetInvestmentSummary(ctx context.Context, ownerId string) (models.InvestmentSummary, error) {
	data, err := s.load(ctx, ownerId)
	if err != nil {
		return models.InvestmentSummary{}, err
	}
	return investmentSummary(data.Investments), nil
}

func investmentSummary(investments []models.Investment) models.InvestmentSummary {
	var summary models.InvestmentSummary
	goalCurrent := decimal.Zero
	for _, i := range investments {
		summary.Positions++
		summary.Invested = summary.Invested.Add(i.CostBasis())
		summary.Current = summary.Current.Add(i.Amount)
		if i.TargetAmount.IsPositive() {
			summary.Target = summary.Target.Add(i.TargetAmount)
			goalCurrent = goalCurrent.Add(i.Amount)
		}
	}
	summary.Gain = summary.Current.Sub(summary.Invested)
	if summary.Target.IsPositive() {
		summary.GoalProgress = rules.Round2(goalCurrent.Div(summary.Target).Mul(decimal.NewFromInt(100)))
	}
	return summary
}
