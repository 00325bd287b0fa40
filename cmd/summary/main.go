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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"finance-sync-go/internal/api"
	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/common"
	"finance-sync-go/internal/config"
	"finance-sync-go/internal/localstore"
	"finance-sync-go/internal/models"

	"go.uber.org/zap"
)

const guestOwner = "guest"

type reportStats struct {
	totalOwners     int
	reported        int
	overBudget      int
	prescribedDebts int
}

func printOwnerHeader(ownerId string, month calendar.Month, wallet string) {
	fmt.Printf("\n┌─ Owner: %s\n", ownerId)
	fmt.Printf("│  Month: %s\n", month.Key())
	fmt.Printf("│  Wallet: %s\n", wallet)
	common.PrintBoxSeparator(78)
}

func printSummary(s models.MonthlySummary) {
	fmt.Printf("%s %-18s: %14s (pending %s)\n", common.BoxPrefix(false), "Income", common.Money(s.Income), common.Money(s.PendingIncome))
	fmt.Printf("%s %-18s: %14s (pending %s)\n", common.BoxPrefix(false), "Expenses", common.Money(s.Expenses), common.Money(s.PendingExpenses))
	fmt.Printf("%s %-18s: %14s (%d transactions)\n", common.BoxPrefix(false), "Balance", common.Money(s.Balance), s.Count)
}

func printBudgets(usage []models.BudgetUsage) int {
	exceeded := 0
	for _, u := range usage {
		marker := ""
		if u.Exceeded {
			marker = "  OVER"
			exceeded++
		}
		fmt.Printf("%s budget %-11s: %14s of %s%s\n", common.BoxPrefix(false), u.Category,
			common.Money(u.Spent), common.Money(u.Limit), marker)
	}
	return exceeded
}

func printDebts(debts []models.DebtOverview) int {
	prescribed := 0
	for _, d := range debts {
		note := ""
		if d.Prescribed {
			note = "  prescribed"
			prescribed++
		}
		fmt.Printf("%s debt %-13s: %14s [%s] %d/%d installments paid%s\n", common.BoxPrefix(false), d.Debt.Creditor,
			common.Money(d.Debt.CurrentAmount), d.Debt.Status, d.PaidInstallments, d.Installments, note)
		if d.OutstandingAmount.IsPositive() {
			fmt.Printf("%s    outstanding %s\n", common.BoxDetailPrefix(false), common.Money(d.OutstandingAmount))
		}
	}
	return prescribed
}

func printInvestments(s models.InvestmentSummary) {
	fmt.Printf("%s %-18s: %14s (invested %s, gain %s, goal %s%%)\n", common.BoxPrefix(true), "Investments",
		common.Money(s.Current), common.Money(s.Invested), common.Money(s.Gain), s.GoalProgress.StringFixed(1))
}

func reportOwner(ctx context.Context, svc *api.FinanceService, ownerId string, month calendar.Month, today string, stats *reportStats) error {
	wallet, err := svc.GetWalletBalance(ctx, ownerId)
	if err != nil {
		return err
	}
	summary, err := svc.GetMonthlySummary(ctx, ownerId, month)
	if err != nil {
		return err
	}
	usage, err := svc.GetBudgetUsage(ctx, ownerId, month)
	if err != nil {
		return err
	}
	debts, err := svc.GetDebtOverview(ctx, ownerId, today)
	if err != nil {
		return err
	}
	investments, err := svc.GetInvestmentSummary(ctx, ownerId)
	if err != nil {
		return err
	}

	printOwnerHeader(ownerId, month, common.Money(wallet))
	printSummary(summary)
	stats.overBudget += printBudgets(usage)
	stats.prescribedDebts += printDebts(debts)
	printInvestments(investments)
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ownerFlag := flag.String("owner", "", "Filter by specific owner id (optional)")
	guestFlag := flag.Bool("guest", false, "Report on the local guest data file instead of the entity store")
	monthFlag := flag.String("month", "", "Month to report as YYYY-MM (default: current month)")
	flag.Parse()

	logger.Info("Starting finance summary")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	clock, err := common.Clock(cfg.Reconciler.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}
	now := clock()
	month := calendar.MonthOf(now)
	if *monthFlag != "" {
		month, err = calendar.MonthOfDate(*monthFlag + "-01")
		if err != nil {
			logger.Fatal("Invalid month", zap.String("month", *monthFlag), zap.Error(err))
		}
	}

	var (
		svc    *api.FinanceService
		owners []string
	)
	if *guestFlag {
		path := cfg.Session.GuestDataFile
		svc = api.NewFinanceService(api.SnapshotFunc(func(context.Context, string) (models.AppData, error) {
			return localstore.Load(path)
		}))
		owners = []string{guestOwner}
	} else {
		services, err := common.InitializeServices(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize services", zap.Error(err))
		}
		defer services.Close()

		svc = api.NewFinanceService(services.Store)
		if err := svc.HealthCheck(ctx); err != nil {
			logger.Fatal("Store health check failed", zap.Error(err))
		}
		owners, err = common.ResolveOwners(ctx, services.Store, *ownerFlag)
		if err != nil {
			logger.Fatal("Failed to resolve owners", zap.Error(err))
		}
	}

	common.PrintHeader("FINANCE SUMMARY REPORT", common.DefaultWidth)

	stats := reportStats{}
	today := calendar.Today(now)
	for _, ownerId := range owners {
		stats.totalOwners++
		if err := reportOwner(ctx, svc, ownerId, month, today, &stats); err != nil {
			logger.Error("Failed to report owner",
				zap.String("owner_id", ownerId),
				zap.Error(err))
			continue
		}
		stats.reported++
	}

	summary := fmt.Sprintf("SUMMARY: %d of %d owners reported for %s (%d budgets over limit, %d prescribed debts)",
		stats.reported, stats.totalOwners, month.Key(), stats.overBudget, stats.prescribedDebts)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Finance summary completed",
		zap.Int("owners_queried", stats.totalOwners),
		zap.Int("owners_reported", stats.reported),
		zap.Duration("elapsed", time.Since(now)))
}
