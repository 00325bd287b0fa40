package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) Add(ctx context.Context, ownerId string, c models.Collection, id string, entity any) error {
	return s.Commit(ctx, ownerId, store.AddOp(c, id, entity))
}

func (s *Service) Update(ctx context.Context, ownerId string, c models.Collection, id string, patch models.Patch) error {
	if patch == nil || patch.PatchCollection() != c {
		return fmt.Errorf("%w: %T for %s", store.ErrPatchMismatch, patch, c)
	}
	return s.Commit(ctx, ownerId, store.UpdateOp(id, patch))
}

func (s *Service) Delete(ctx context.Context, ownerId string, c models.Collection, id string) error {
	return s.Commit(ctx, ownerId, store.DeleteOp(c, id))
}

// Commit applies ops in a single database transaction and then publishes
// the owner's new snapshot to subscribers.
func (s *Service) Commit(ctx context.Context, ownerId string, ops ...store.Op) error {
	if ownerId == "" {
		return store.ErrInvalidOwner
	}
	if len(ops) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		if err := s.applyOp(ctx, tx, ownerId, op); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Committed document batch",
		zap.String("owner_id", ownerId),
		zap.Int("ops", len(ops)))

	// The write is durable at this point; a failed reload only delays
	// subscribers until the next commit.
	s.publish(context.WithoutCancel(ctx), ownerId)
	return nil
}

func (s *Service) applyOp(ctx context.Context, tx *sql.Tx, ownerId string, op store.Op) error {
	c := string(op.Collection)

	switch op.Kind {
	case store.OpAdd:
		var existing string
		err := tx.QueryRowContext(ctx, queryGetDocument, ownerId, c, op.Id).Scan(&existing)
		if err == nil {
			return store.ErrDuplicateDocument
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check for duplicate document: %w", err)
		}

		body, err := store.EncodeEntity(op.Collection, op.Id, op.Entity)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, queryInsertDocument, ownerId, c, op.Id, string(body)); err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}

	case store.OpPut:
		body, err := store.EncodeEntity(op.Collection, op.Id, op.Entity)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, queryUpsertDocument, ownerId, c, op.Id, string(body)); err != nil {
			return fmt.Errorf("failed to upsert document: %w", err)
		}

	case store.OpUpdate:
		var current string
		err := tx.QueryRowContext(ctx, queryGetDocument, ownerId, c, op.Id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrDocumentNotFound
		} else if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}

		body, err := store.PatchDocument(op.Collection, op.Id, []byte(current), op.Patch)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, queryUpdateDocument, string(body), ownerId, c, op.Id); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

	case store.OpDelete:
		if !op.Collection.Valid() {
			return store.ErrUnknownCollection
		}
		if _, err := tx.ExecContext(ctx, queryDeleteDocument, ownerId, c, op.Id); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}

	default:
		return fmt.Errorf("unsupported op kind %s", op.Kind)
	}
	return nil
}

// Snapshot loads the owner's current AppData
func (s *Service) Snapshot(ctx context.Context, ownerId string) (models.AppData, error) {
	rows, err := s.db.QueryContext(ctx, queryGetOwnerDocuments, ownerId)
	if err != nil {
		return models.AppData{}, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var docs []store.Document
	for rows.Next() {
		var collection, id, body string
		if err := rows.Scan(&collection, &id, &body); err != nil {
			return models.AppData{}, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, store.Document{
			Collection: models.Collection(collection),
			Id:         id,
			Body:       []byte(body),
		})
	}
	if err := rows.Err(); err != nil {
		return models.AppData{}, fmt.Errorf("failed to iterate documents: %w", err)
	}

	zap.L().Debug("Loaded owner snapshot", zap.String("owner_id", ownerId), zap.Int("documents", len(docs)))
	return store.BuildSnapshot(docs), nil
}

func (s *Service) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryGetOwners)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}
