// Package actions is the mutation surface of the application. Every action
// plans a batch of store ops against the current snapshot; an authenticated
// owner commits the batch to the entity store, while a guest applies it to
// the local container directly.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/state"
	"finance-sync-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateBudget     = errors.New("a budget already exists for this category")
	ErrDefaultCategory     = errors.New("default categories cannot be deleted")
	ErrDuplicateCategory   = errors.New("a category with this name already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInstallments = errors.New("invalid installment plan")
	ErrNoStore             = errors.New("authenticated dispatcher requires an entity store")
)

// IdGenerator returns a fresh entity id
type IdGenerator func() string

// StatusHook runs when ToggleTransactionStatus changes a transaction's
// status. data already contains the toggled transaction. The returned ops
// are committed in the same batch as the toggle.
type StatusHook func(data models.AppData, before, after models.Transaction) []store.Op

// Dispatcher executes actions for one identity: an owner id when signed in,
// or the guest when ownerId is empty. Actions run one at a time: each plans
// against the snapshot left by the previous one.
type Dispatcher struct {
	// mu is held from planning until the committed batch is visible in
	// state, which for the entity stores means through their synchronous
	// publish.
	mu sync.Mutex

	ownerId string
	store   store.EntityStore
	state   *state.Container
	newId   IdGenerator
	hooks   []StatusHook
	clock   func() time.Time
}

type Option func(*Dispatcher)

func WithIdGenerator(gen IdGenerator) Option {
	return func(d *Dispatcher) { d.newId = gen }
}

// WithStatusHooks replaces the default status hooks (the debt cascade)
func WithStatusHooks(hooks ...StatusHook) Option {
	return func(d *Dispatcher) { d.hooks = hooks }
}

func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) { d.clock = clock }
}

// New creates a dispatcher. st may be nil for the guest.
func New(ownerId string, st store.EntityStore, container *state.Container, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ownerId: ownerId,
		store:   st,
		state:   container,
		newId:   uuid.NewString,
		hooks:   []StatusHook{DebtCascade},
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) OwnerId() string { return d.ownerId }

// Guest reports whether writes go to the local container only
func (d *Dispatcher) Guest() bool { return d.ownerId == "" }

func (d *Dispatcher) State() *state.Container { return d.state }

// plan computes the ops of one action from a snapshot
type plan func(data models.AppData) ([]store.Op, error)

func (d *Dispatcher) execute(ctx context.Context, action string, p plan) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Guest() {
		err := d.state.Commit(func(data models.AppData) (models.AppData, models.CollectionSet, error) {
			ops, err := p(data)
			if err != nil {
				return data, 0, err
			}
			return store.ApplyOps(data, ops)
		})
		if err != nil {
			return fmt.Errorf("%s: %w", action, err)
		}
		zap.L().Debug("Applied guest action", zap.String("action", action))
		return nil
	}

	if d.store == nil {
		return fmt.Errorf("%s: %w", action, ErrNoStore)
	}
	ops, err := p(d.state.Snapshot())
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if len(ops) == 0 {
		return nil
	}
	if err := d.store.Commit(ctx, d.ownerId, ops...); err != nil {
		zap.L().Error("Action failed",
			zap.String("action", action),
			zap.String("owner_id", d.ownerId),
			zap.Error(err))
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}
