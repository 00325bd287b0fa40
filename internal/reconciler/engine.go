// Package reconciler runs the background passes that keep an owner's data
// converged: deferred auto-pay, monthly recurrence and the one-time wallet
// migration. Every pass is idempotent and goes through the dispatcher.
package reconciler

import (
	"context"
	"sync"
	"time"

	"finance-sync-go/internal/actions"
	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/rules"
	"finance-sync-go/internal/state"

	"go.uber.org/zap"
)

const defaultAutoPayDelay = 2 * time.Second

// Config contains configuration for Engine
type Config struct {
	Dispatcher   *actions.Dispatcher
	AutoPayDelay time.Duration
	Clock        func() time.Time
	SeriesKey    rules.SeriesKey
}

// Engine reacts to committed state changes and runs the reconciliation passes
type Engine struct {
	dispatcher   *actions.Dispatcher
	state        *state.Container
	autoPayDelay time.Duration
	clock        func() time.Time
	seriesKey    rules.SeriesKey

	mu       sync.Mutex
	issued   map[string]calendar.Month // added but not yet visible in the snapshot
	migrated bool
	timer    *time.Timer
	timers   sync.WaitGroup

	trigger  chan struct{}
	unwatch  func()
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates an engine for the dispatcher's owner
func New(cfg Config) *Engine {
	e := &Engine{
		dispatcher:   cfg.Dispatcher,
		state:        cfg.Dispatcher.State(),
		autoPayDelay: cfg.AutoPayDelay,
		clock:        cfg.Clock,
		seriesKey:    cfg.SeriesKey,
		issued:       make(map[string]calendar.Month),
		trigger:      make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	if e.autoPayDelay <= 0 {
		e.autoPayDelay = defaultAutoPayDelay
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.seriesKey == nil {
		e.seriesKey = rules.DescriptionKey
	}
	return e
}

// Start watches the state container and runs the passes on every relevant
// change until Stop is called or ctx ends. An initial run is queued.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	zap.L().Info("Starting reconciler",
		zap.String("owner_id", e.dispatcher.OwnerId()),
		zap.Duration("auto_pay_delay", e.autoPayDelay))

	e.unwatch = e.state.Watch(e.onChange)
	go e.loop(ctx)
	e.Trigger()
}

// Stop ends the loop, cancels a pending auto-pay run and waits for both
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		zap.L().Info("Stopping reconciler", zap.String("owner_id", e.dispatcher.OwnerId()))
		if e.unwatch != nil {
			e.unwatch()
		}
		close(e.stopChan)
		if e.cancel != nil {
			e.cancel()
			<-e.doneChan
		}
		e.disarmAutoPay()
		e.timers.Wait()
	})
}

// Trigger queues a run. Triggers arriving while one is queued coalesce.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

func (e *Engine) onChange(change state.Change) {
	if change.Reset ||
		change.Changed.Has(models.CollectionTransactions) ||
		change.Changed.Has(models.CollectionSettings) {
		e.Trigger()
	}
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.doneChan)

	for {
		select {
		case <-e.stopChan:
			return
		case <-ctx.Done():
			e.disarmAutoPay()
			return
		case <-e.trigger:
			e.RunRecurrence(ctx)
			e.RunWalletMigration(ctx)
			e.armAutoPay(ctx)
		}
	}
}

func (e *Engine) armAutoPay(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil && e.timer.Stop() {
		e.timers.Done()
	}
	e.timers.Add(1)
	e.timer = time.AfterFunc(e.autoPayDelay, func() {
		defer e.timers.Done()
		if ctx.Err() != nil {
			return
		}
		e.RunAutoPay(ctx)
	})
}

func (e *Engine) disarmAutoPay() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil && e.timer.Stop() {
		e.timers.Done()
	}
	e.timer = nil
}

func (e *Engine) today() string {
	return calendar.Today(e.clock())
}

// RunAutoPay marks every due auto-pay transaction as paid and returns how
// many were updated. Failures are logged and skipped.
func (e *Engine) RunAutoPay(ctx context.Context) int {
	today := e.today()
	due := rules.DueForAutoPay(e.state.Snapshot().Transactions, today)

	paid := 0
	for _, t := range due {
		err := e.dispatcher.UpdateTransaction(ctx, t.Id, models.TransactionPatch{Status: models.Ptr(models.StatusPaid)})
		if err != nil {
			zap.L().Warn("Auto-pay failed",
				zap.String("owner_id", e.dispatcher.OwnerId()),
				zap.String("transaction_id", t.Id),
				zap.Error(err))
			continue
		}
		paid++
	}

	if paid > 0 {
		zap.L().Info("Auto-pay completed",
			zap.String("owner_id", e.dispatcher.OwnerId()),
			zap.String("today", today),
			zap.Int("paid", paid))
	}
	return paid
}

// RunRecurrence materializes the current month's instance of every
// recurring series that lacks one and returns how many were added.
// Inserts are sequential; a failed insert is retried on the next run.
func (e *Engine) RunRecurrence(ctx context.Context) int {
	month := calendar.MonthOf(e.clock())
	transactions := e.state.Snapshot().Transactions
	e.forgetEchoed(transactions, month)
	pending := rules.Materialize(transactions, month, e.seriesKey)

	added := 0
	for _, t := range pending {
		key := rules.InstanceKey(t, month, e.seriesKey)
		if e.wasIssued(key) {
			continue
		}
		id, err := e.dispatcher.AddTransaction(ctx, t)
		if err != nil {
			zap.L().Warn("Failed to materialize recurring transaction",
				zap.String("owner_id", e.dispatcher.OwnerId()),
				zap.String("description", t.Description),
				zap.String("month", month.Key()),
				zap.Error(err))
			continue
		}
		// Stores that publish before Commit returns already show the
		// instance; only writes still awaiting their echo are tracked.
		if _, visible := e.state.Snapshot().FindTransaction(id); !visible {
			e.markIssued(key, month)
		}
		added++

		zap.L().Debug("Materialized recurring transaction",
			zap.String("transaction_id", id),
			zap.String("date", t.Date))
	}

	if added > 0 {
		zap.L().Info("Recurrence completed",
			zap.String("owner_id", e.dispatcher.OwnerId()),
			zap.String("month", month.Key()),
			zap.Int("added", added))
	}
	return added
}

// RunWalletMigration computes and stores the wallet balance for a signed-in
// owner whose data predates it. It runs at most once per engine and reports
// whether it wrote.
func (e *Engine) RunWalletMigration(ctx context.Context) bool {
	if e.dispatcher.Guest() {
		return false
	}

	e.mu.Lock()
	done := e.migrated
	e.mu.Unlock()
	if done {
		return false
	}

	data := e.state.Snapshot()
	if data.WalletBalance != nil || len(data.Transactions) == 0 {
		return false
	}

	balance := rules.WalletBalance(data.Transactions)
	if err := e.dispatcher.SetWalletBalance(ctx, balance); err != nil {
		zap.L().Warn("Wallet migration failed",
			zap.String("owner_id", e.dispatcher.OwnerId()),
			zap.Error(err))
		return false
	}

	e.mu.Lock()
	e.migrated = true
	e.mu.Unlock()

	zap.L().Info("Migrated wallet balance",
		zap.String("owner_id", e.dispatcher.OwnerId()),
		zap.String("balance", balance.String()))
	return true
}

// forgetEchoed drops issued keys whose instance the snapshot now shows, and
// keys of other months. From then on the existence check in
// rules.Materialize alone decides, so a deleted instance is recreated.
func (e *Engine) forgetEchoed(transactions []models.Transaction, month calendar.Month) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.issued) == 0 {
		return
	}

	current := make(map[string]struct{}, len(e.issued))
	for _, t := range transactions {
		if month.Contains(t.Date) {
			current[rules.InstanceKey(t, month, e.seriesKey)] = struct{}{}
		}
	}
	for key, issuedIn := range e.issued {
		_, echoed := current[key]
		if echoed || issuedIn != month {
			delete(e.issued, key)
		}
	}
}

func (e *Engine) wasIssued(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.issued[key]
	return ok
}

func (e *Engine) markIssued(key string, month calendar.Month) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.issued[key] = month
}
