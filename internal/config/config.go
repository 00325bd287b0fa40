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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"finance-sync-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 0)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	pollingInterval, err := getEnvDuration("FORMANCE_POLLING_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	autoPayDelay, err := getEnvDuration("RECONCILER_AUTOPAY_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Store: models.StoreConfig{
			Backend: strings.ToLower(getEnvString("STORE_BACKEND", "sqlite")),
		},
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "finance.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Formance: models.FormanceConfig{
			StackURL:        os.Getenv("FORMANCE_STACK_URL"),
			ClientID:        os.Getenv("FORMANCE_CLIENT_ID"),
			ClientSecret:    os.Getenv("FORMANCE_CLIENT_SECRET"),
			LedgerName:      getEnvString("FORMANCE_LEDGER", "finance-sync"),
			PollingInterval: pollingInterval,
		},
		Reconciler: models.ReconcilerConfig{
			Enabled:      getEnvBool("RECONCILER_ENABLED", true),
			AutoPayDelay: autoPayDelay,
			Timezone:     os.Getenv("RECONCILER_TIMEZONE"),
		},
		Session: models.SessionConfig{
			GuestDataFile:  getEnvString("GUEST_DATA_FILE", "guest-data.json"),
			CategoriesFile: os.Getenv("CATEGORIES_FILE"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
