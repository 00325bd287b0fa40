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
	"errors"
	"flag"
	"fmt"
	"strings"

	"finance-sync-go/internal/actions"
	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/common"
	"finance-sync-go/internal/config"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type recordRequest struct {
	owner    string
	toggleId string
	tx       models.Transaction
}

func parseAndValidateFlags(today string) (*recordRequest, error) {
	ownerFlag := flag.String("owner", "", "Owner id (default: guest data file)")
	toggleFlag := flag.String("toggle", "", "Flip paid/pending on this transaction id instead of recording")
	descriptionFlag := flag.String("description", "", "Description (required when recording)")
	amountFlag := flag.String("amount", "", "Positive amount (required when recording)")
	typeFlag := flag.String("type", "expense", "income or expense")
	categoryFlag := flag.String("category", models.GenericCategory, "Category name")
	dateFlag := flag.String("date", today, "Date as YYYY-MM-DD")
	statusFlag := flag.String("status", "paid", "paid or pending")
	methodFlag := flag.String("method", "", "Payment method (optional)")
	recurringFlag := flag.Bool("recurring", false, "Repeat monthly from this transaction")
	autoPayFlag := flag.Bool("autopay", false, "Mark paid automatically once due")
	flag.Parse()

	req := &recordRequest{owner: strings.TrimSpace(*ownerFlag)}
	if *toggleFlag != "" {
		req.toggleId = *toggleFlag
		return req, nil
	}

	if *descriptionFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("--description and --amount are required")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if !calendar.Valid(*dateFlag) {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *dateFlag)
	}

	req.tx = models.Transaction{
		Description:   *descriptionFlag,
		Amount:        amount,
		Type:          models.TransactionType(strings.ToLower(*typeFlag)),
		Category:      *categoryFlag,
		Date:          *dateFlag,
		Status:        models.TransactionStatus(strings.ToLower(*statusFlag)),
		PaymentMethod: *methodFlag,
		IsRecurring:   *recurringFlag,
		AutoPay:       *autoPayFlag,
	}
	return req, nil
}

func start(ctx context.Context, sess *session.Session, owner string) error {
	if owner == "" {
		return sess.EnterGuest(ctx)
	}
	return sess.SignIn(ctx, owner)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	// One-shot: no background passes while recording
	cfg.Reconciler.Enabled = false

	clock, err := common.Clock(cfg.Reconciler.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}

	req, err := parseAndValidateFlags(calendar.Today(clock()))
	if err != nil {
		logger.Fatal("Invalid arguments", zap.Error(err))
	}

	services := &common.Services{}
	if req.owner != "" {
		services, err = common.InitializeServices(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize services", zap.Error(err))
		}
	}
	defer services.Close()

	sess, err := services.NewSession(cfg)
	if err != nil {
		logger.Fatal("Failed to create session", zap.Error(err))
	}
	if err := start(ctx, sess, req.owner); err != nil {
		logger.Fatal("Failed to open session", zap.String("owner_id", req.owner), zap.Error(err))
	}
	defer sess.Close()

	d, err := sess.Dispatcher()
	if err != nil {
		logger.Fatal("No active dispatcher", zap.Error(err))
	}

	if req.toggleId != "" {
		if err := d.ToggleTransactionStatus(ctx, req.toggleId); err != nil {
			if errors.Is(err, actions.ErrNotFound) {
				logger.Fatal("Transaction not found", zap.String("transaction_id", req.toggleId))
			}
			logger.Fatal("Failed to toggle transaction", zap.Error(err))
		}
		tx, _ := sess.State().Snapshot().FindTransaction(req.toggleId)
		fmt.Printf("Transaction %s is now %s\n", req.toggleId, tx.Status)
		return
	}

	id, err := d.AddTransaction(ctx, req.tx)
	if err != nil {
		logger.Fatal("Failed to record transaction", zap.Error(err))
	}

	logger.Info("Transaction recorded",
		zap.String("owner_id", req.owner),
		zap.String("transaction_id", id),
		zap.String("amount", req.tx.Amount.String()),
		zap.String("type", string(req.tx.Type)))
	fmt.Printf("Recorded %s %s %s on %s (id %s)\n", req.tx.Type, common.Money(req.tx.Amount), req.tx.Description, req.tx.Date, id)
}
