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

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"go.uber.org/zap"
)

// SnapshotSource is anything that can read an owner's data once
type SnapshotSource interface {
	Snapshot(ctx context.Context, ownerId string) (models.AppData, error)
}

// SnapshotFunc adapts a function, such as a guest file read, to SnapshotSource
type SnapshotFunc func(ctx context.Context, ownerId string) (models.AppData, error)

func (f SnapshotFunc) Snapshot(ctx context.Context, ownerId string) (models.AppData, error) {
	return f(ctx, ownerId)
}

// FinanceService provides the read-side reports over an owner's data
type FinanceService struct {
	source SnapshotSource
}

func NewFinanceService(source SnapshotSource) *FinanceService {
	return &FinanceService{
		source: source,
	}
}

func (s *FinanceService) HealthCheck(ctx context.Context) error {
	if st, ok := s.source.(store.EntityStore); ok {
		if _, err := st.Owners(ctx); err != nil {
			return fmt.Errorf("store health check failed: %w", err)
		}
	}
	return nil
}

func (s *FinanceService) load(ctx context.Context, ownerId string) (models.AppData, error) {
	if ownerId == "" {
		return models.AppData{}, fmt.Errorf("owner_id is required")
	}
	data, err := s.source.Snapshot(ctx, ownerId)
	if err != nil {
		zap.L().Error("Failed to load owner data",
			zap.String("owner_id", ownerId),
			zap.Error(err))
		return models.AppData{}, fmt.Errorf("failed to retrieve data: %w", err)
	}
	return data, nil
}
