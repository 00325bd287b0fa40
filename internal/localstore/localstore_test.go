package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"finance-sync-go/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	data, err := Load(filepath.Join(t.TempDir(), "guest.json"))
	require.NoError(t, err)
	assert.Equal(t, models.EmptyAppData(), data)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "guest.json")

	wallet := decimal.RequireFromString("812.35")
	data := models.EmptyAppData()
	data.Transactions = []models.Transaction{{
		Id: "t1", Description: "Rent", Amount: decimal.RequireFromString("1200"),
		Type: models.TransactionExpense, Category: "Housing", Date: "2024-03-01",
		Status: models.StatusPending, IsRecurring: true,
	}}
	data.UnlockedBadges = []string{"first-transaction"}
	data.WalletBalance = &wallet

	require.NoError(t, Save(path, data))
	loaded, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(data, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("loaded data mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
