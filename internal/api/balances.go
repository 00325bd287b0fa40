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

package api

import (
	"context"
	"sort"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/rules"

	"github.com/shopspring/decimal"
)

// GetWalletBalance returns the cached wallet balance, or the balance
// recomputed from paid transactions when none is stored yet
func (s *FinanceService) GetWalletBalance(ctx context.Context, ownerId string) (decimal.Decimal, error) {
	data, err := s.load(ctx, ownerId)
	if err != nil {
		return decimal.Zero, err
	}
	if data.WalletBalance != nil {
		return *data.WalletBalance, nil
	}
	return rules.WalletBalance(data.Transactions), nil
}

// GetMonthlySummary totals one month of transactions. Only paid
// transactions count towards the balance.
func (s *FinanceService) GetMonthlySummary(ctx context.Context, ownerId string, month calendar.Month) (models.MonthlySummary, error) {
	data, err := s.load(ctx, ownerId)
	if err != nil {
		return models.MonthlySummary{}, err
	}
	return monthlySummary(data.Transactions, month), nil
}

func monthlySummary(txs []models.Transaction, month calendar.Month) models.MonthlySummary {
	summary := models.MonthlySummary{Month: month.Key()}
	for _, t := range txs {
		if !month.Contains(t.Date) {
			continue
		}
		summary.Count++
		switch {
		case t.Type == models.TransactionIncome && t.Status == models.StatusPaid:
			summary.Income = summary.Income.Add(t.Amount)
		case t.Type == models.TransactionIncome:
			summary.PendingIncome = summary.PendingIncome.Add(t.Amount)
		case t.Status == models.StatusPaid:
			summary.Expenses = summary.Expenses.Add(t.Amount)
		default:
			summary.PendingExpenses = summary.PendingExpenses.Add(t.Amount)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expenses)
	return summary
}

// GetTransactions returns a page of one month's transactions, newest first
func (s *FinanceService) GetTransactions(ctx context.Context, ownerId string, month calendar.Month, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	data, err := s.load(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	var inMonth []models.Transaction
	for _, t := range data.Transactions {
		if month.Contains(t.Date) {
			inMonth = append(inMonth, t)
		}
	}
	sort.SliceStable(inMonth, func(i, j int) bool {
		return inMonth[i].Date > inMonth[j].Date
	})

	if offset >= len(inMonth) {
		return []models.Transaction{}, nil
	}
	end := offset + limit
	if end > len(inMonth) {
		end = len(inMonth)
	}
	return inMonth[offset:end], nil
}
