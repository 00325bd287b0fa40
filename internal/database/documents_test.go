package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupDocumentTestDB(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	service, err := newService(db)
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		service.Close()
	}

	return service, cleanup
}

func testTransaction(description, amount string) models.Transaction {
	return models.Transaction{
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Type:        models.TransactionExpense,
		Category:    "Food",
		Date:        "2024-03-10",
		Status:      models.StatusPending,
	}
}

func TestAddAndSnapshot(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.Add(ctx, "alice", models.CollectionTransactions, "t1", testTransaction("Groceries", "42.10")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := service.Add(ctx, "alice", models.CollectionTransactions, "t2", testTransaction("Bakery", "5")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := service.Add(ctx, "bob", models.CollectionNotes, "n1", models.Note{Title: "bob's"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	data, err := service.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(data.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(data.Transactions))
	}
	if data.Transactions[0].Id != "t1" || data.Transactions[1].Id != "t2" {
		t.Errorf("Expected insertion order t1,t2, got %s,%s", data.Transactions[0].Id, data.Transactions[1].Id)
	}
	if !data.Transactions[0].Amount.Equal(decimal.RequireFromString("42.10")) {
		t.Errorf("Expected amount 42.10, got %s", data.Transactions[0].Amount.String())
	}
	if len(data.Notes) != 0 {
		t.Errorf("Expected no notes for alice, got %d", len(data.Notes))
	}

	owners, err := service.Owners(ctx)
	if err != nil {
		t.Fatalf("Owners failed: %v", err)
	}
	if len(owners) != 2 || owners[0] != "alice" || owners[1] != "bob" {
		t.Errorf("Unexpected owners: %v", owners)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.Add(ctx, "alice", models.CollectionTransactions, "t1", testTransaction("A", "1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	err := service.Add(ctx, "alice", models.CollectionTransactions, "t1", testTransaction("A", "1"))
	if !errors.Is(err, store.ErrDuplicateDocument) {
		t.Errorf("Expected ErrDuplicateDocument, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.Add(ctx, "alice", models.CollectionTransactions, "t1", testTransaction("A", "1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	err := service.Update(ctx, "alice", models.CollectionTransactions, "t1",
		models.TransactionPatch{Status: models.Ptr(models.StatusPaid)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	err = service.Update(ctx, "alice", models.CollectionTransactions, "missing", models.TransactionPatch{})
	if !errors.Is(err, store.ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got %v", err)
	}

	err = service.Update(ctx, "alice", models.CollectionNotes, "t1", models.TransactionPatch{})
	if !errors.Is(err, store.ErrPatchMismatch) {
		t.Errorf("Expected ErrPatchMismatch, got %v", err)
	}

	data, _ := service.Snapshot(ctx, "alice")
	if data.Transactions[0].Status != models.StatusPaid {
		t.Errorf("Expected status paid, got %s", data.Transactions[0].Status)
	}

	if err := service.Delete(ctx, "alice", models.CollectionTransactions, "t1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := service.Delete(ctx, "alice", models.CollectionTransactions, "t1"); err != nil {
		t.Errorf("Deleting a missing document should be a no-op, got %v", err)
	}

	data, _ = service.Snapshot(ctx, "alice")
	if len(data.Transactions) != 0 {
		t.Errorf("Expected no transactions, got %d", len(data.Transactions))
	}
}

func TestCommit_IsAtomic(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	ctx := context.Background()
	err := service.Commit(ctx, "alice",
		store.AddOp(models.CollectionTransactions, "t1", testTransaction("A", "1")),
		store.UpdateOp("missing", models.DebtPatch{Status: models.Ptr(models.DebtPaid)}),
	)
	if !errors.Is(err, store.ErrDocumentNotFound) {
		t.Fatalf("Expected ErrDocumentNotFound, got %v", err)
	}

	data, err := service.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(data.Transactions) != 0 {
		t.Errorf("Expected rollback to drop t1, got %d transactions", len(data.Transactions))
	}
}

func TestPut_KeepsOrder(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	ctx := context.Background()
	err := service.Commit(ctx, "alice",
		store.PutOp(models.CollectionCategories, "c1", models.Category{Name: "Food"}),
		store.PutOp(models.CollectionCategories, "c2", models.Category{Name: "Rent"}),
		store.PutOp(models.CollectionCategories, "c1", models.Category{Name: "Groceries"}),
		store.PutOp(models.CollectionSettings, models.SettingWalletBalance, models.WalletBalance{Amount: decimal.NewFromInt(10)}),
		store.PutOp(models.CollectionBadges, "saver", models.Badge{}),
	)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	data, _ := service.Snapshot(ctx, "alice")
	if len(data.Categories) != 2 || data.Categories[0].Name != "Groceries" || data.Categories[1].Name != "Rent" {
		t.Errorf("Unexpected categories: %+v", data.Categories)
	}
	if data.WalletBalance == nil || !data.WalletBalance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected wallet balance 10, got %v", data.WalletBalance)
	}
	if len(data.UnlockedBadges) != 1 || data.UnlockedBadges[0] != "saver" {
		t.Errorf("Unexpected badges: %v", data.UnlockedBadges)
	}
}

func TestSubscribe(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	ctx := context.Background()
	var (
		mu        sync.Mutex
		snapshots []models.AppData
	)
	cancel, err := service.Subscribe(ctx, "alice", func(data models.AppData) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, data)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if len(snapshots) != 1 {
		t.Fatalf("Expected initial snapshot before Subscribe returns, got %d", len(snapshots))
	}

	err = service.Commit(ctx, "alice",
		store.AddOp(models.CollectionTransactions, "t1", testTransaction("A", "1")),
		store.AddOp(models.CollectionTransactions, "t2", testTransaction("B", "2")),
	)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := service.Add(ctx, "bob", models.CollectionNotes, "n1", models.Note{}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("Expected one notification per alice batch, got %d snapshots", len(snapshots))
	}
	if len(snapshots[1].Transactions) != 2 {
		t.Errorf("Expected 2 transactions in published snapshot, got %d", len(snapshots[1].Transactions))
	}

	cancel()
	if err := service.Delete(ctx, "alice", models.CollectionTransactions, "t1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("Expected no notifications after cancel, got %d snapshots", len(snapshots))
	}
}

func TestCommit_RequiresOwner(t *testing.T) {
	service, cleanup := setupDocumentTestDB(t)
	defer cleanup()

	err := service.Add(context.Background(), "", models.CollectionNotes, "n1", models.Note{})
	if !errors.Is(err, store.ErrInvalidOwner) {
		t.Errorf("Expected ErrInvalidOwner, got %v", err)
	}
}
