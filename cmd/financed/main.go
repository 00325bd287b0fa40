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
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-sync-go/internal/common"
	"finance-sync-go/internal/config"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/state"

	"go.uber.org/zap"
)

func changedCollections(change state.Change) []string {
	var names []string
	for _, c := range models.Collections {
		if change.Changed.Has(c) {
			names = append(names, string(c))
		}
	}
	return names
}

func main() {
	ownerFlag := flag.String("owner", "", "Owner id to sign in as (default: guest mode)")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting finance sync daemon")

	var services *common.Services
	if *ownerFlag != "" {
		services, err = common.InitializeServices(ctx, cfg)
		if err != nil {
			zap.L().Fatal("Failed to initialize services", zap.Error(err))
		}
		defer services.Close()
	} else {
		services = &common.Services{}
	}

	sess, err := services.NewSession(cfg)
	if err != nil {
		zap.L().Fatal("Failed to create session", zap.Error(err))
	}

	unwatch := sess.State().Watch(func(change state.Change) {
		zap.L().Info("Snapshot updated",
			zap.Bool("reset", change.Reset),
			zap.Strings("collections", changedCollections(change)),
			zap.Int("transactions", len(change.Data.Transactions)))
	})
	defer unwatch()

	if *ownerFlag != "" {
		if err := sess.SignIn(ctx, *ownerFlag); err != nil {
			zap.L().Fatal("Failed to sign in", zap.String("owner_id", *ownerFlag), zap.Error(err))
		}
	} else {
		if err := sess.EnterGuest(ctx); err != nil {
			zap.L().Fatal("Failed to enter guest mode", zap.Error(err))
		}
	}

	zap.L().Info("Session running",
		zap.String("owner_id", sess.OwnerId()),
		zap.Bool("reconciler", cfg.Reconciler.Enabled))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping session...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		sess.Close()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Session stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
