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

package common

import (
	"context"
	"fmt"
	"slices"

	"finance-sync-go/internal/store"

	"go.uber.org/zap"
)

// ResolveOwners returns the owners a command-line tool should act on.
// If ownerFilter is provided, it must name an owner with stored data.
// If ownerFilter is empty, returns every owner.
func ResolveOwners(ctx context.Context, st store.EntityStore, ownerFilter string) ([]string, error) {
	owners, err := st.Owners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get owners: %w", err)
	}

	if ownerFilter != "" {
		zap.L().Info("Looking up owner", zap.String("owner_id", ownerFilter))
		if !slices.Contains(owners, ownerFilter) {
			return nil, fmt.Errorf("owner %q has no stored data", ownerFilter)
		}
		owners = []string{ownerFilter}
	}

	zap.L().Info("Retrieved owners", zap.Int("count", len(owners)))
	return owners, nil
}
