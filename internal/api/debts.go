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
	"fmt"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/rules"

	"go.uber.org/zap"
)

// GetDebtOverview returns every debt with its installment progress and
// whether it is prescribed as of today
func (s *FinanceService) GetDebtOverview(ctx context.Context, ownerId, today string) ([]models.DebtOverview, error) {
	if !calendar.Valid(today) {
		return nil, fmt.Errorf("invalid date %q", today)
	}

	data, err := s.load(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	out := debtOverview(data, today)
	prescribed := 0
	for _, d := range out {
		if d.Prescribed {
			prescribed++
		}
	}
	zap.L().Debug("Built debt overview",
		zap.String("owner_id", ownerId),
		zap.Int("debts", len(out)),
		zap.Int("prescribed", prescribed))
	return out, nil
}

func debtOverview(data models.AppData, today string) []models.DebtOverview {
	out := make([]models.DebtOverview, 0, len(data.Debts))
	for _, d := range data.Debts {
		total, paid, outstanding := rules.InstallmentProgress(data.Transactions, d.Id)
		out = append(out, models.DebtOverview{
			Debt:              d,
			Installments:      total,
			PaidInstallments:  paid,
			OutstandingAmount: outstanding,
			Prescribed:        rules.IsPrescribed(d, today),
		})
	}
	return out
}
