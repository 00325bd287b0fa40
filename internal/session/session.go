// Package session owns the identity-scoped wiring: which dispatcher writes,
// which store subscription feeds the state container, where guest data is
// persisted and the reconciler that runs for the current identity.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"finance-sync-go/internal/actions"
	"finance-sync-go/internal/localstore"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/reconciler"
	"finance-sync-go/internal/rules"
	"finance-sync-go/internal/state"
	"finance-sync-go/internal/store"

	"go.uber.org/zap"
)

var (
	ErrNoStore      = errors.New("sign-in requires an entity store")
	ErrNotStarted   = errors.New("no identity is active")
	ErrInvalidOwner = errors.New("owner id is required")
)

// Config contains configuration for Session
type Config struct {
	// Store is the remote entity store. Without one only guest mode works.
	Store         store.EntityStore
	GuestDataFile string
	// Categories seeds an owner with no categories. Nil uses the built-in set.
	Categories []models.Category
	// DisableReconciler skips the background passes, for one-shot tools
	DisableReconciler bool
	AutoPayDelay      time.Duration
	Clock             func() time.Time
	SeriesKey         rules.SeriesKey
	IdGenerator       actions.IdGenerator
}

// Session switches between the guest and signed-in owners. The state
// container outlives identity switches; everything else is rebuilt.
type Session struct {
	cfg   Config
	state *state.Container

	mu         sync.Mutex
	dispatcher *actions.Dispatcher
	engine     *reconciler.Engine
	cancel     context.CancelFunc
	release    []func()

	// generation drops subscription deliveries that race an identity switch
	generation atomic.Uint64
}

func New(cfg Config) *Session {
	if cfg.GuestDataFile == "" {
		cfg.GuestDataFile = "guest-data.json"
	}
	if cfg.Categories == nil {
		cfg.Categories = models.DefaultCategories()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Session{
		cfg:   cfg,
		state: state.New(models.EmptyAppData()),
	}
}

// State is the container readers subscribe to
func (s *Session) State() *state.Container { return s.state }

// Dispatcher returns the active identity's dispatcher
func (s *Session) Dispatcher() (*actions.Dispatcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispatcher == nil {
		return nil, ErrNotStarted
	}
	return s.dispatcher, nil
}

// OwnerId is empty for the guest or when no identity is active
func (s *Session) OwnerId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispatcher == nil {
		return ""
	}
	return s.dispatcher.OwnerId()
}

func (s *Session) dispatcherOptions() []actions.Option {
	opts := []actions.Option{actions.WithClock(s.cfg.Clock)}
	if s.cfg.IdGenerator != nil {
		opts = append(opts, actions.WithIdGenerator(s.cfg.IdGenerator))
	}
	return opts
}

// EnterGuest loads the guest snapshot from disk, persists every later
// change back to it and starts the reconciler.
func (s *Session) EnterGuest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	data, err := localstore.Load(s.cfg.GuestDataFile)
	if err != nil {
		return fmt.Errorf("failed to enter guest mode: %w", err)
	}
	s.generation.Add(1)
	s.state.Reset(data)

	path := s.cfg.GuestDataFile
	unwatch := s.state.Watch(func(change state.Change) {
		if err := localstore.Save(path, change.Data); err != nil {
			zap.L().Error("Failed to persist guest data",
				zap.String("path", path),
				zap.Error(err))
		}
	})
	s.release = append(s.release, unwatch)

	identityCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.dispatcher = actions.New("", nil, s.state, s.dispatcherOptions()...)
	if err := s.startLocked(ctx, identityCtx); err != nil {
		s.teardownLocked()
		return err
	}

	zap.L().Info("Entered guest mode",
		zap.String("path", path),
		zap.Int("transactions", len(data.Transactions)))
	return nil
}

// SignIn mirrors ownerId's remote data into the state container, seeds
// categories for a new owner and starts the reconciler.
func (s *Session) SignIn(ctx context.Context, ownerId string) error {
	if s.cfg.Store == nil {
		return ErrNoStore
	}
	ownerId = strings.TrimSpace(ownerId)
	if ownerId == "" {
		return ErrInvalidOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	gen := s.generation.Add(1)
	s.state.Reset(models.EmptyAppData())

	identityCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	unsubscribe, err := s.cfg.Store.Subscribe(identityCtx, ownerId, func(data models.AppData) {
		if s.generation.Load() != gen {
			return
		}
		s.state.Replace(data)
	})
	if err != nil {
		s.teardownLocked()
		return fmt.Errorf("failed to subscribe for %s: %w", ownerId, err)
	}
	s.release = append(s.release, unsubscribe)

	s.dispatcher = actions.New(ownerId, s.cfg.Store, s.state, s.dispatcherOptions()...)
	if err := s.startLocked(ctx, identityCtx); err != nil {
		s.teardownLocked()
		return err
	}

	zap.L().Info("Signed in", zap.String("owner_id", ownerId))
	return nil
}

// SignOut stops everything for the current identity and clears the state
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := ""
	if s.dispatcher != nil {
		owner = s.dispatcher.OwnerId()
	}
	s.teardownLocked()
	s.generation.Add(1)
	s.state.Reset(models.EmptyAppData())

	zap.L().Info("Signed out", zap.String("owner_id", owner))
}

// Close stops the active identity without touching the state
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// startLocked seeds categories with the caller's ctx and runs the engine
// for as long as identityCtx lives.
func (s *Session) startLocked(ctx, identityCtx context.Context) error {
	if _, err := s.dispatcher.SeedCategories(ctx, s.cfg.Categories); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if s.cfg.DisableReconciler {
		return nil
	}

	s.engine = reconciler.New(reconciler.Config{
		Dispatcher:   s.dispatcher,
		AutoPayDelay: s.cfg.AutoPayDelay,
		Clock:        s.cfg.Clock,
		SeriesKey:    s.cfg.SeriesKey,
	})
	s.engine.Start(identityCtx)
	return nil
}

func (s *Session) teardownLocked() {
	if s.engine != nil {
		s.engine.Stop()
		s.engine = nil
	}
	for i := len(s.release) - 1; i >= 0; i-- {
		s.release[i]()
	}
	s.release = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.dispatcher = nil
}
