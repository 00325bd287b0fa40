package formance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finance-sync-go/internal/models"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type subscription struct {
	ownerId  string
	fn       func(models.AppData)
	last     models.AppData
	stopChan chan struct{}
	stopOnce sync.Once
}

// Subscribe delivers the owner's snapshot now and then polls the ledger,
// delivering only snapshots that differ from the last one delivered. Local
// commits refresh subscribers before Commit returns.
func (s *Service) Subscribe(ctx context.Context, ownerId string, fn func(models.AppData)) (func(), error) {
	s.mu.Lock()
	data, err := s.Snapshot(ctx, ownerId)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to load initial snapshot: %w", err)
	}

	sub := &subscription{
		ownerId:  ownerId,
		fn:       fn,
		last:     data,
		stopChan: make(chan struct{}),
	}
	s.subs[sub] = struct{}{}
	fn(data)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.pollLoop(sub)

	zap.L().Info("Subscribed to owner documents",
		zap.String("owner_id", ownerId),
		zap.Duration("polling_interval", s.pollInterval))

	cancel := func() { s.unsubscribe(sub) }
	context.AfterFunc(ctx, cancel)
	return cancel, nil
}

func (s *Service) unsubscribe(sub *subscription) {
	sub.stopOnce.Do(func() {
		close(sub.stopChan)
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		zap.L().Debug("Subscription cancelled", zap.String("owner_id", sub.ownerId))
	})
}

func (s *Service) pollLoop(sub *subscription) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-sub.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			if _, active := s.subs[sub]; active {
				s.refreshLocked(s.ctx, sub)
			}
			s.mu.Unlock()
		}
	}
}

// refreshOwnerLocked refreshes every subscription of the owner. Callers hold mu.
func (s *Service) refreshOwnerLocked(ctx context.Context, ownerId string) {
	for sub := range s.subs {
		if sub.ownerId == ownerId {
			s.refreshLocked(ctx, sub)
		}
	}
}

func (s *Service) refreshLocked(ctx context.Context, sub *subscription) {
	data, err := s.Snapshot(ctx, sub.ownerId)
	if err != nil {
		zap.L().Error("Failed to poll owner documents",
			zap.String("owner_id", sub.ownerId),
			zap.Error(err))
		return
	}
	if cmp.Equal(sub.last, data) {
		return
	}
	sub.last = data
	sub.fn(data)
}
