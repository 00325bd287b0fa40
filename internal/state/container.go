// Package state holds the in-memory AppData snapshot that every reader
// observes. Writers replace collections copy-on-write; watchers are told
// which collections changed.
package state

import (
	"sync"

	"finance-sync-go/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Change describes one published snapshot
type Change struct {
	Data    models.AppData
	Changed models.CollectionSet
	// Reset marks an identity switch: Data replaced everything.
	Reset bool
}

// Container is the single source of truth for the current owner's data
type Container struct {
	// writeMu is held across an update and its notifications so watchers
	// see changes in commit order.
	writeMu sync.Mutex

	mu   sync.RWMutex
	data models.AppData

	watchMu  sync.Mutex
	watchers map[int]func(Change)
	nextId   int
}

func New(initial models.AppData) *Container {
	return &Container{
		data:     initial.Normalize(),
		watchers: make(map[int]func(Change)),
	}
}

// Snapshot returns the current data. Callers must treat it as read-only.
func (c *Container) Snapshot() models.AppData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Commit runs fn against the current data and publishes its result. When
// fn fails nothing changes. fn must not call back into the container.
func (c *Container) Commit(fn func(models.AppData) (models.AppData, models.CollectionSet, error)) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	next, changed, err := fn(c.Snapshot())
	if err != nil {
		return err
	}
	if changed.Empty() {
		return nil
	}

	next = next.Normalize()
	c.set(next)
	c.notify(Change{Data: next, Changed: changed})
	return nil
}

// Replace installs a snapshot delivered by a store subscription. Collections
// equal to the current ones keep their previous slices, and nothing is
// published when no collection changed.
func (c *Container) Replace(next models.AppData) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	merged, changed := mergeUnchanged(c.Snapshot(), next.Normalize())
	if changed.Empty() {
		return
	}
	c.set(merged)
	c.notify(Change{Data: merged, Changed: changed})
}

// Reset replaces everything after an identity switch
func (c *Container) Reset(initial models.AppData) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	initial = initial.Normalize()
	c.set(initial)
	c.notify(Change{Data: initial, Changed: models.SetOf(models.Collections...), Reset: true})
}

// Watch registers fn for every published change until the returned cancel
// func is called. fn runs on the writer's goroutine and must not write to
// the container.
func (c *Container) Watch(fn func(Change)) func() {
	c.watchMu.Lock()
	id := c.nextId
	c.nextId++
	c.watchers[id] = fn
	c.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.watchMu.Lock()
			delete(c.watchers, id)
			c.watchMu.Unlock()
		})
	}
}

func (c *Container) set(data models.AppData) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
}

func (c *Container) notify(change Change) {
	c.watchMu.Lock()
	fns := make([]func(Change), 0, len(c.watchers))
	// registration order
	for i := 0; i < c.nextId; i++ {
		if fn, ok := c.watchers[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.watchMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

var equateEmpty = cmpopts.EquateEmpty()

func keep[T any](prev, next []T, c models.Collection, changed *models.CollectionSet) []T {
	if cmp.Equal(prev, next, equateEmpty) {
		return prev
	}
	*changed = changed.With(c)
	return next
}

func mergeUnchanged(prev, next models.AppData) (models.AppData, models.CollectionSet) {
	var changed models.CollectionSet
	out := models.AppData{
		Transactions:   keep(prev.Transactions, next.Transactions, models.CollectionTransactions, &changed),
		Investments:    keep(prev.Investments, next.Investments, models.CollectionInvestments, &changed),
		Budgets:        keep(prev.Budgets, next.Budgets, models.CollectionBudgets, &changed),
		Debts:          keep(prev.Debts, next.Debts, models.CollectionDebts, &changed),
		ShoppingList:   keep(prev.ShoppingList, next.ShoppingList, models.CollectionShopping, &changed),
		KanbanBoards:   keep(prev.KanbanBoards, next.KanbanBoards, models.CollectionKanban, &changed),
		Notes:          keep(prev.Notes, next.Notes, models.CollectionNotes, &changed),
		Categories:     keep(prev.Categories, next.Categories, models.CollectionCategories, &changed),
		UnlockedBadges: keep(prev.UnlockedBadges, next.UnlockedBadges, models.CollectionBadges, &changed),
		WalletBalance:  prev.WalletBalance,
		WealthProfile:  prev.WealthProfile,
	}
	if !cmp.Equal(prev.WalletBalance, next.WalletBalance) || !cmp.Equal(prev.WealthProfile, next.WealthProfile) {
		out.WalletBalance = next.WalletBalance
		out.WealthProfile = next.WealthProfile
		changed = changed.With(models.CollectionSettings)
	}
	return out, changed
}
