package database

import (
	"context"
	"fmt"
	"sync"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"go.uber.org/zap"
)

// Subscribe registers fn for the owner's snapshots. The current snapshot is
// delivered before Subscribe returns. fn runs on the committing goroutine
// and must not write to the store synchronously.
func (s *Service) Subscribe(ctx context.Context, ownerId string, fn func(models.AppData)) (func(), error) {
	if ownerId == "" {
		return nil, store.ErrInvalidOwner
	}

	// Holding writeMu keeps commits from slipping between the initial load
	// and the registration.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := s.Snapshot(ctx, ownerId)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial snapshot: %w", err)
	}

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[ownerId] == nil {
		s.subs[ownerId] = make(map[int]func(models.AppData))
	}
	s.subs[ownerId][id] = fn
	s.subsMu.Unlock()

	zap.L().Info("Subscribed to owner documents", zap.String("owner_id", ownerId))
	fn(data)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs[ownerId], id)
			if len(s.subs[ownerId]) == 0 {
				delete(s.subs, ownerId)
			}
			s.subsMu.Unlock()
			zap.L().Debug("Subscription cancelled", zap.String("owner_id", ownerId))
		})
	}
	context.AfterFunc(ctx, cancel)
	return cancel, nil
}

// publish reloads the owner's snapshot and hands it to every subscriber.
// Callers hold writeMu.
func (s *Service) publish(ctx context.Context, ownerId string) {
	s.subsMu.Lock()
	fns := make([]func(models.AppData), 0, len(s.subs[ownerId]))
	for _, fn := range s.subs[ownerId] {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	if len(fns) == 0 {
		return
	}

	data, err := s.Snapshot(ctx, ownerId)
	if err != nil {
		zap.L().Error("Failed to reload snapshot after commit",
			zap.String("owner_id", ownerId),
			zap.Error(err))
		return
	}
	for _, fn := range fns {
		fn(data)
	}
}
