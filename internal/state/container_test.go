package state

import (
	"errors"
	"testing"

	"finance-sync-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTransactions(txs ...models.Transaction) models.AppData {
	data := models.EmptyAppData()
	data.Transactions = txs
	return data
}

func TestCommit_PublishesChange(t *testing.T) {
	c := New(models.EmptyAppData())

	var changes []Change
	cancel := c.Watch(func(ch Change) { changes = append(changes, ch) })
	defer cancel()

	err := c.Commit(func(d models.AppData) (models.AppData, models.CollectionSet, error) {
		d.Transactions = append([]models.Transaction{}, models.Transaction{Id: "t1"})
		return d, models.SetOf(models.CollectionTransactions), nil
	})
	require.NoError(t, err)

	require.Len(t, changes, 1)
	assert.True(t, changes[0].Changed.Has(models.CollectionTransactions))
	assert.False(t, changes[0].Reset)
	assert.Len(t, c.Snapshot().Transactions, 1)
}

func TestCommit_ErrorLeavesStateUntouched(t *testing.T) {
	c := New(withTransactions(models.Transaction{Id: "t1"}))
	notified := false
	c.Watch(func(Change) { notified = true })

	boom := errors.New("boom")
	err := c.Commit(func(d models.AppData) (models.AppData, models.CollectionSet, error) {
		return models.EmptyAppData(), models.SetOf(models.CollectionTransactions), boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, notified)
	assert.Len(t, c.Snapshot().Transactions, 1)
}

func TestReplace_KeepsIdentityOfUnchangedCollections(t *testing.T) {
	initial := withTransactions(models.Transaction{Id: "t1", Amount: decimal.NewFromInt(5)})
	initial.Notes = []models.Note{{Id: "n1", Title: "a"}}
	c := New(initial)
	before := c.Snapshot()

	var changes []Change
	c.Watch(func(ch Change) { changes = append(changes, ch) })

	// Same content, freshly decoded slices
	next := withTransactions(models.Transaction{Id: "t1", Amount: decimal.RequireFromString("5.00")})
	next.Notes = []models.Note{{Id: "n1", Title: "b"}}
	c.Replace(next)

	after := c.Snapshot()
	require.Len(t, changes, 1)
	assert.False(t, changes[0].Changed.Has(models.CollectionTransactions))
	assert.True(t, changes[0].Changed.Has(models.CollectionNotes))
	assert.Same(t, &before.Transactions[0], &after.Transactions[0])
	assert.Equal(t, "b", after.Notes[0].Title)

	c.Replace(next)
	assert.Len(t, changes, 1, "identical snapshot must not publish")
}

func TestReplace_Settings(t *testing.T) {
	c := New(models.EmptyAppData())
	var changes []Change
	c.Watch(func(ch Change) { changes = append(changes, ch) })

	balance := decimal.NewFromInt(100)
	next := models.EmptyAppData()
	next.WalletBalance = &balance
	c.Replace(next)

	require.Len(t, changes, 1)
	assert.True(t, changes[0].Changed.Has(models.CollectionSettings))
	require.NotNil(t, c.Snapshot().WalletBalance)
}

func TestReset(t *testing.T) {
	c := New(withTransactions(models.Transaction{Id: "t1"}))
	var changes []Change
	cancel := c.Watch(func(ch Change) { changes = append(changes, ch) })

	c.Reset(models.EmptyAppData())
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Reset)
	assert.Empty(t, c.Snapshot().Transactions)

	cancel()
	c.Reset(models.EmptyAppData())
	assert.Len(t, changes, 1, "cancelled watcher must not be called")
}

func TestWatchers_NotifiedInRegistrationOrder(t *testing.T) {
	c := New(models.EmptyAppData())
	var order []int
	c.Watch(func(Change) { order = append(order, 1) })
	c.Watch(func(Change) { order = append(order, 2) })
	c.Watch(func(Change) { order = append(order, 3) })

	c.Reset(models.EmptyAppData())
	assert.Equal(t, []int{1, 2, 3}, order)
}
