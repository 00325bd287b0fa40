/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"github.com/shopspring/decimal"
)

// MonthlySummary aggregates one calendar month of transactions
type MonthlySummary struct {
	Month           string          `json:"month"` // YYYY-MM
	Income          decimal.Decimal `json:"income"`
	Expenses        decimal.Decimal `json:"expenses"`
	PendingIncome   decimal.Decimal `json:"pending_income"`
	PendingExpenses decimal.Decimal `json:"pending_expenses"`
	Balance         decimal.Decimal `json:"balance"`
	Count           int             `json:"count"`
}

// BudgetUsage reports spending against one budget for a month
type BudgetUsage struct {
	BudgetId  string          `json:"budget_id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Exceeded  bool            `json:"exceeded"`
}

// DebtOverview is a debt plus its installment progress
type DebtOverview struct {
	Debt              Debt            `json:"debt"`
	Installments      int             `json:"installments"`
	PaidInstallments  int             `json:"paid_installments"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Prescribed        bool            `json:"prescribed"`
}

// InvestmentSummary aggregates the investment portfolio
type InvestmentSummary struct {
	Invested     decimal.Decimal `json:"invested"`
	Current      decimal.Decimal `json:"current"`
	Gain         decimal.Decimal `json:"gain"`
	Target       decimal.Decimal `json:"target"`
	GoalProgress decimal.Decimal `json:"goal_progress"` // percent of Target reached, 0 without goals
	Positions    int             `json:"positions"`
}
