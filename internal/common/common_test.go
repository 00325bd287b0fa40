package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finance-sync-go/internal/database"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCategories_Builtin(t *testing.T) {
	cats, err := LoadCategories("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategories(), cats)
}

func TestLoadCategories_File(t *testing.T) {
	path := writeFile(t, `
categories:
  - name: Side Hustle
    type: income
  - id: rent
    name: Rent
    type: expense
    color: "#ff0000"
`)
	cats, err := LoadCategories(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	assert.Equal(t, "default-side-hustle", cats[0].Id)
	assert.Equal(t, models.TransactionIncome, cats[0].Type)
	assert.True(t, cats[0].IsDefault)
	assert.Equal(t, "rent", cats[1].Id)
	assert.Equal(t, "#ff0000", cats[1].Color)
}

func TestLoadCategories_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad type":     "categories:\n  - name: X\n    type: transfer\n",
		"missing name": "categories:\n  - type: income\n",
		"duplicate":    "categories:\n  - name: A\n    type: income\n  - name: a\n    type: expense\n",
		"empty":        "categories: []\n",
		"not yaml":     "categories: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCategories(writeFile(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadCategories(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRepositoryCategoriesFileMatchesBuiltin(t *testing.T) {
	cats, err := LoadCategories(filepath.Join("..", "..", "categories.yaml"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategories(), cats)
}

func TestClock(t *testing.T) {
	local, err := Clock("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, local().Location())

	tokyo, err := Clock("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", tokyo().Location().String())

	_, err = Clock("Mars/Olympus")
	assert.Error(t, err)
}

func TestResolveOwners(t *testing.T) {
	ctx := context.Background()
	svc, err := database.NewService(ctx, models.DatabaseConfig{
		Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, PingTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	defer svc.Close()

	for _, owner := range []string{"alice", "bob"} {
		require.NoError(t, svc.Commit(ctx, owner, store.PutOp(models.CollectionSettings, models.SettingWalletBalance,
			models.WalletBalance{Amount: decimal.NewFromInt(10)})))
	}

	all, err := ResolveOwners(ctx, svc, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, all)

	one, err := ResolveOwners(ctx, svc, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, one)

	_, err = ResolveOwners(ctx, svc, "carol")
	assert.Error(t, err)
}

func TestInitializeServices_UnknownBackend(t *testing.T) {
	_, err := InitializeServices(context.Background(), &models.Config{Store: models.StoreConfig{Backend: "redis"}})
	assert.ErrorContains(t, err, "unknown store backend")
}
