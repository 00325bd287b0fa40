package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"finance-sync-go/internal/database"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/state"
	"finance-sync-go/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sequentialIds() IdGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func fixedClock() time.Time {
	return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)
}

func newGuest(t *testing.T) *Dispatcher {
	t.Helper()
	return New("", nil, state.New(models.EmptyAppData()),
		WithIdGenerator(sequentialIds()), WithClock(fixedClock))
}

func newAuthenticated(t *testing.T, ownerId string) *Dispatcher {
	t.Helper()
	return newAuthenticatedWith(t, ownerId, nil)
}

// newAuthenticatedWith lets wrap decorate the SQLite store seen by the dispatcher
func newAuthenticatedWith(t *testing.T, ownerId string, wrap func(store.EntityStore) store.EntityStore) *Dispatcher {
	t.Helper()
	ctx := context.Background()

	svc, err := database.NewService(ctx, models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	require.NoError(t, err)

	container := state.New(models.EmptyAppData())
	cancel, err := svc.Subscribe(ctx, ownerId, container.Replace)
	require.NoError(t, err)

	t.Cleanup(func() {
		cancel()
		svc.Close()
	})

	var st store.EntityStore = svc
	if wrap != nil {
		st = wrap(svc)
	}
	return New(ownerId, st, container, WithIdGenerator(sequentialIds()), WithClock(fixedClock))
}

func expense(description, amount, date string, status models.TransactionStatus) models.Transaction {
	return models.Transaction{
		Description: description,
		Amount:      dec(amount),
		Type:        models.TransactionExpense,
		Category:    "Housing",
		Date:        date,
		Status:      status,
	}
}

func TestAddTransaction_DefaultsToPaid(t *testing.T) {
	d := newGuest(t)
	id, err := d.AddTransaction(context.Background(), models.Transaction{
		Description: "Salary", Amount: dec("3000"), Type: models.TransactionIncome, Category: "Salary", Date: "2024-03-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-001", id)

	tx, ok := d.State().Snapshot().FindTransaction(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusPaid, tx.Status)
}

func TestAmountInvariant(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	for _, amount := range []string{"0", "-10"} {
		_, err := d.AddTransaction(ctx, expense("Rent", amount, "2024-03-01", models.StatusPending))
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
	}

	id, err := d.AddTransaction(ctx, expense("Rent", "1200", "2024-03-01", models.StatusPending))
	require.NoError(t, err)

	err = d.UpdateTransaction(ctx, id, models.TransactionPatch{Amount: models.Ptr(dec("-1200"))})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	tx, _ := d.State().Snapshot().FindTransaction(id)
	assert.True(t, tx.Amount.Equal(dec("1200")), "rejected update must not change state")

	_, err = d.AddTransaction(ctx, expense("Rent", "10", "03/01/2024", models.StatusPending))
	assert.ErrorIs(t, err, ErrInvalidDate)

	bad := expense("Rent", "10", "2024-03-01", models.StatusPending)
	bad.Type = "transfer"
	_, err = d.AddTransaction(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestBudgetUniqueness(t *testing.T) {
	ctx := context.Background()
	for name, d := range map[string]*Dispatcher{"guest": newGuest(t), "authenticated": newAuthenticated(t, "alice")} {
		t.Run(name, func(t *testing.T) {
			food, err := d.AddBudget(ctx, models.Budget{Category: "Food", Limit: dec("500")})
			require.NoError(t, err)

			_, err = d.AddBudget(ctx, models.Budget{Category: "Food", Limit: dec("100")})
			assert.ErrorIs(t, err, ErrDuplicateBudget)

			leisure, err := d.AddBudget(ctx, models.Budget{Category: "Leisure", Limit: dec("200")})
			require.NoError(t, err)

			err = d.UpdateBudget(ctx, leisure, models.BudgetPatch{Category: models.Ptr("Food")})
			assert.ErrorIs(t, err, ErrDuplicateBudget)

			require.NoError(t, d.UpdateBudget(ctx, food, models.BudgetPatch{Limit: models.Ptr(dec("650"))}))
			assert.Len(t, d.State().Snapshot().Budgets, 2)
		})
	}
}

func TestDebtCascade(t *testing.T) {
	ctx := context.Background()
	for name, d := range map[string]*Dispatcher{"guest": newGuest(t), "authenticated": newAuthenticated(t, "alice")} {
		t.Run(name, func(t *testing.T) {
			debtId, err := d.AddDebt(ctx, models.Debt{Creditor: "Bank", OriginalAmount: dec("900"), DueDate: "2023-12-01"})
			require.NoError(t, err)

			ids, err := d.CreateAgreement(ctx, debtId, Agreement{AgreedAmount: dec("600"), Installments: 2, FirstDate: "2024-01-31"})
			require.NoError(t, err)
			require.Len(t, ids, 2)

			debtStatus := func() models.DebtStatus {
				debt, ok := d.State().Snapshot().FindDebt(debtId)
				require.True(t, ok)
				return debt.Status
			}
			assert.Equal(t, models.DebtAgreement, debtStatus())

			second, _ := d.State().Snapshot().FindTransaction(ids[1])
			assert.Equal(t, "2024-02-29", second.Date)
			assert.True(t, second.Amount.Equal(dec("300")))

			require.NoError(t, d.ToggleTransactionStatus(ctx, ids[0]))
			assert.Equal(t, models.DebtAgreement, debtStatus())

			require.NoError(t, d.ToggleTransactionStatus(ctx, ids[1]))
			assert.Equal(t, models.DebtPaid, debtStatus())

			require.NoError(t, d.ToggleTransactionStatus(ctx, ids[0]))
			assert.Equal(t, models.DebtAgreement, debtStatus())
		})
	}
}

func TestUpdateTransaction_DoesNotCascade(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	debtId, err := d.AddDebt(ctx, models.Debt{Creditor: "Store", OriginalAmount: dec("100")})
	require.NoError(t, err)
	ids, err := d.CreateAgreement(ctx, debtId, Agreement{AgreedAmount: dec("100"), Installments: 1, FirstDate: "2024-03-01"})
	require.NoError(t, err)

	require.NoError(t, d.UpdateTransaction(ctx, ids[0], models.TransactionPatch{Status: models.Ptr(models.StatusPaid)}))

	debt, _ := d.State().Snapshot().FindDebt(debtId)
	assert.Equal(t, models.DebtAgreement, debt.Status)
}

func TestCreateAgreement_Errors(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	_, err := d.CreateAgreement(ctx, "missing", Agreement{AgreedAmount: dec("100"), Installments: 2, FirstDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)

	debtId, err := d.AddDebt(ctx, models.Debt{Creditor: "Bank", OriginalAmount: dec("100")})
	require.NoError(t, err)

	_, err = d.CreateAgreement(ctx, debtId, Agreement{AgreedAmount: dec("100"), Installments: 0, FirstDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInstallments)

	debt, _ := d.State().Snapshot().FindDebt(debtId)
	assert.Equal(t, models.DebtOpen, debt.Status)
	assert.Empty(t, d.State().Snapshot().Transactions)
}

func TestApplyDebtInterest(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	debtId, err := d.AddDebt(ctx, models.Debt{Creditor: "Bank", OriginalAmount: dec("1000")})
	require.NoError(t, err)
	require.NoError(t, d.ApplyDebtInterest(ctx, debtId, dec("2.5")))

	debt, _ := d.State().Snapshot().FindDebt(debtId)
	assert.True(t, debt.CurrentAmount.Equal(dec("1025")))
	assert.True(t, debt.OriginalAmount.Equal(dec("1000")))

	assert.ErrorIs(t, d.ApplyDebtInterest(ctx, debtId, dec("0")), ErrInvalidAmount)
}

func TestWalletBalanceFollowsTransactions(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	// No wallet yet: nothing is tracked
	_, err := d.AddTransaction(ctx, expense("Coffee", "5", "2024-03-01", models.StatusPaid))
	require.NoError(t, err)
	assert.Nil(t, d.State().Snapshot().WalletBalance)

	require.NoError(t, d.SetWalletBalance(ctx, dec("100")))

	wallet := func() decimal.Decimal {
		wb := d.State().Snapshot().WalletBalance
		require.NotNil(t, wb)
		return *wb
	}

	income, err := d.AddTransaction(ctx, models.Transaction{
		Description: "Refund", Amount: dec("50"), Type: models.TransactionIncome, Category: "Other", Date: "2024-03-02",
	})
	require.NoError(t, err)
	assert.True(t, wallet().Equal(dec("150")))

	bill, err := d.AddTransaction(ctx, expense("Power", "30", "2024-03-03", models.StatusPending))
	require.NoError(t, err)
	assert.True(t, wallet().Equal(dec("150")), "pending transactions do not count")

	require.NoError(t, d.ToggleTransactionStatus(ctx, bill))
	assert.True(t, wallet().Equal(dec("120")))

	require.NoError(t, d.UpdateTransaction(ctx, bill, models.TransactionPatch{Amount: models.Ptr(dec("45"))}))
	assert.True(t, wallet().Equal(dec("105")))

	require.NoError(t, d.DeleteTransaction(ctx, income))
	assert.True(t, wallet().Equal(dec("55")))
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	seeded, err := d.SeedCategories(ctx, models.DefaultCategories())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = d.SeedCategories(ctx, models.DefaultCategories())
	require.NoError(t, err)
	assert.False(t, seeded, "seeding only happens for owners without categories")

	err = d.DeleteCategory(ctx, "default-food")
	assert.ErrorIs(t, err, ErrDefaultCategory)

	_, err = d.AddCategory(ctx, models.Category{Name: "food", Type: models.TransactionExpense})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	pets, err := d.AddCategory(ctx, models.Category{Name: "Pets", Type: models.TransactionExpense, IsDefault: true})
	require.NoError(t, err)
	require.NoError(t, d.DeleteCategory(ctx, pets), "user categories are never protected")

	assert.Len(t, d.State().Snapshot().Categories, len(models.DefaultCategories()))
}

func TestKanban(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	boardId, err := d.AddBoard(ctx, models.KanbanBoard{
		Title:   "Home",
		Columns: []models.KanbanColumn{{Title: "Todo"}, {Title: "Done"}},
	})
	require.NoError(t, err)

	board, _ := d.State().Snapshot().FindBoard(boardId)
	todo, done := board.Columns[0].Id, board.Columns[1].Id
	require.NotEmpty(t, todo)

	first, err := d.AddCard(ctx, boardId, todo, models.KanbanCard{Title: "Fix sink"})
	require.NoError(t, err)
	second, err := d.AddCard(ctx, boardId, todo, models.KanbanCard{Title: "Paint wall"})
	require.NoError(t, err)

	require.NoError(t, d.MoveCard(ctx, boardId, second, done, 10))
	require.NoError(t, d.MoveCard(ctx, boardId, first, done, 0))

	board, _ = d.State().Snapshot().FindBoard(boardId)
	assert.Empty(t, board.Columns[0].Cards)
	require.Len(t, board.Columns[1].Cards, 2)
	assert.Equal(t, first, board.Columns[1].Cards[0].Id)
	assert.Equal(t, second, board.Columns[1].Cards[1].Id)

	assert.ErrorIs(t, d.MoveCard(ctx, boardId, "nope", done, 0), ErrNotFound)

	require.NoError(t, d.DeleteCard(ctx, boardId, first))
	require.NoError(t, d.DeleteBoard(ctx, boardId))
	assert.Empty(t, d.State().Snapshot().KanbanBoards)
}

func TestShoppingAndNotes(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	milk, err := d.AddShoppingItem(ctx, models.ShoppingItem{Name: "Milk"})
	require.NoError(t, err)
	_, err = d.AddShoppingItem(ctx, models.ShoppingItem{Name: "Bread", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, d.ToggleShoppingItem(ctx, milk))
	require.NoError(t, d.ClearCheckedShoppingItems(ctx))

	items := d.State().Snapshot().ShoppingList
	require.Len(t, items, 1)
	assert.Equal(t, "Bread", items[0].Name)

	noteId, err := d.AddNote(ctx, models.Note{Title: "Ideas"})
	require.NoError(t, err)
	require.NoError(t, d.ToggleNotePin(ctx, noteId))

	note := d.State().Snapshot().Notes[0]
	assert.True(t, note.IsPinned)
	assert.Equal(t, "2024-03-15", note.Date)
}

func TestUnlockBadge_Idempotent(t *testing.T) {
	ctx := context.Background()
	d := newGuest(t)

	var changes int
	d.State().Watch(func(state.Change) { changes++ })

	require.NoError(t, d.UnlockBadge(ctx, "first-budget"))
	require.NoError(t, d.UnlockBadge(ctx, "first-budget"))

	assert.Equal(t, []string{"first-budget"}, d.State().Snapshot().UnlockedBadges)
	assert.Equal(t, 1, changes)
}

// Both write paths must produce the same snapshot for the same actions.
func TestDualPathEquivalence(t *testing.T) {
	script := func(t *testing.T, d *Dispatcher) {
		ctx := context.Background()

		_, err := d.SeedCategories(ctx, models.DefaultCategories())
		require.NoError(t, err)
		require.NoError(t, d.SetWalletBalance(ctx, dec("1000")))

		salary, err := d.AddTransaction(ctx, models.Transaction{
			Description: "Salary", Amount: dec("3000"), Type: models.TransactionIncome, Category: "Salary", Date: "2024-03-05",
		})
		require.NoError(t, err)
		rent := expense("Rent", "1200", "2024-03-10", models.StatusPending)
		rent.IsRecurring = true
		rentId, err := d.AddTransaction(ctx, rent)
		require.NoError(t, err)
		require.NoError(t, d.ToggleTransactionStatus(ctx, rentId))
		require.NoError(t, d.UpdateTransaction(ctx, salary, models.TransactionPatch{Amount: models.Ptr(dec("3100.50"))}))

		_, err = d.AddBudget(ctx, models.Budget{Category: "Food", Limit: dec("500")})
		require.NoError(t, err)
		_, err = d.AddBudget(ctx, models.Budget{Category: "Food", Limit: dec("50")})
		require.ErrorIs(t, err, ErrDuplicateBudget)

		debtId, err := d.AddDebt(ctx, models.Debt{Creditor: "Bank", OriginalAmount: dec("900")})
		require.NoError(t, err)
		require.NoError(t, d.ApplyDebtInterest(ctx, debtId, dec("1.5")))
		ids, err := d.CreateAgreement(ctx, debtId, Agreement{AgreedAmount: dec("600"), Installments: 3, FirstDate: "2024-04-10"})
		require.NoError(t, err)
		for _, id := range ids {
			require.NoError(t, d.ToggleTransactionStatus(ctx, id))
		}

		_, err = d.AddInvestment(ctx, models.Investment{Name: "Index fund", Amount: dec("2500"), Type: "stocks", Date: "2024-01-02"})
		require.NoError(t, err)

		boardId, err := d.AddBoard(ctx, models.KanbanBoard{Title: "Home", Columns: []models.KanbanColumn{{Title: "Todo"}, {Title: "Done"}}})
		require.NoError(t, err)
		board, _ := d.State().Snapshot().FindBoard(boardId)
		card, err := d.AddCard(ctx, boardId, board.Columns[0].Id, models.KanbanCard{Title: "Fix sink", Tags: []string{"house"}})
		require.NoError(t, err)
		require.NoError(t, d.MoveCard(ctx, boardId, card, board.Columns[1].Id, 0))

		milk, err := d.AddShoppingItem(ctx, models.ShoppingItem{Name: "Milk", ActualPrice: dec("4.99")})
		require.NoError(t, err)
		_, err = d.AddShoppingItem(ctx, models.ShoppingItem{Name: "Eggs"})
		require.NoError(t, err)
		require.NoError(t, d.ToggleShoppingItem(ctx, milk))
		require.NoError(t, d.ClearCheckedShoppingItems(ctx))

		noteId, err := d.AddNote(ctx, models.Note{Title: "Ideas", Content: "save more"})
		require.NoError(t, err)
		require.NoError(t, d.ToggleNotePin(ctx, noteId))

		require.NoError(t, d.UnlockBadge(ctx, "first-transaction"))
		require.NoError(t, d.UnlockBadge(ctx, "first-transaction"))
		require.NoError(t, d.SaveWealthProfile(ctx, models.WealthProfile{Age: 34, RetirementAge: 65, RiskProfile: "moderate"}))

		require.NoError(t, d.DeleteTransaction(ctx, salary))
	}

	guest := newGuest(t)
	authenticated := newAuthenticated(t, "alice")
	script(t, guest)
	script(t, authenticated)

	want := guest.State().Snapshot()
	got := authenticated.State().Snapshot()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("guest and authenticated snapshots differ (-guest +authenticated):\n%s", diff)
	}

	require.NotNil(t, got.WalletBalance)
	// 1000 - 1200 rent - 3 x 200 installments; the salary was deleted
	assert.True(t, got.WalletBalance.Equal(dec("-800")), "wallet %s", got.WalletBalance)
	debt := got.Debts[0]
	assert.Equal(t, models.DebtPaid, debt.Status)
	assert.True(t, debt.CurrentAmount.Equal(dec("913.5")))
}

type failingStore struct {
	err     error
	commits int
}

func (f *failingStore) Add(context.Context, string, models.Collection, string, any) error {
	return f.err
}
func (f *failingStore) Update(context.Context, string, models.Collection, string, models.Patch) error {
	return f.err
}
func (f *failingStore) Delete(context.Context, string, models.Collection, string) error {
	return f.err
}
func (f *failingStore) Commit(context.Context, string, ...store.Op) error {
	f.commits++
	return f.err
}
func (f *failingStore) Subscribe(context.Context, string, func(models.AppData)) (func(), error) {
	return func() {}, nil
}
func (f *failingStore) Snapshot(context.Context, string) (models.AppData, error) {
	return models.EmptyAppData(), nil
}
func (f *failingStore) Owners(context.Context) ([]string, error) { return nil, nil }
func (f *failingStore) Close()                                    {}

func TestAuthenticatedWriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	initial := models.EmptyAppData()
	initial.Transactions = []models.Transaction{{
		Id: "t1", Description: "Rent", Amount: dec("1200"), Type: models.TransactionExpense,
		Category: "Housing", Date: "2024-03-01", Status: models.StatusPending,
	}}
	container := state.New(initial)

	fs := &failingStore{err: errors.New("network unreachable")}
	d := New("alice", fs, container)

	_, err := d.AddTransaction(ctx, expense("Gym", "90", "2024-03-02", models.StatusPaid))
	assert.ErrorIs(t, err, fs.err)

	err = d.ToggleTransactionStatus(ctx, "t1")
	assert.ErrorIs(t, err, fs.err)

	assert.Equal(t, 2, fs.commits, "no retries")
	if diff := cmp.Diff(initial, container.Snapshot()); diff != "" {
		t.Errorf("state changed after failed writes (-want +got):\n%s", diff)
	}
}

// slowStore delays every commit so concurrent actions overlap
type slowStore struct {
	store.EntityStore
	delay time.Duration
}

func (s slowStore) Commit(ctx context.Context, ownerId string, ops ...store.Op) error {
	time.Sleep(s.delay)
	return s.EntityStore.Commit(ctx, ownerId, ops...)
}

func slow(st store.EntityStore) store.EntityStore {
	return slowStore{EntityStore: st, delay: 50 * time.Millisecond}
}

func runConcurrently(fns ...func() error) []error {
	var wg sync.WaitGroup
	errs := make([]error, len(fns))
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func() error) {
			defer wg.Done()
			errs[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	return errs
}

func TestConcurrentToggles_CascadeSeesEveryInstallment(t *testing.T) {
	ctx := context.Background()
	d := newAuthenticatedWith(t, "alice", slow)

	debtId, err := d.AddDebt(ctx, models.Debt{Creditor: "Bank", OriginalAmount: dec("900"), DueDate: "2023-12-01"})
	require.NoError(t, err)
	ids, err := d.CreateAgreement(ctx, debtId, Agreement{AgreedAmount: dec("900"), Installments: 3, FirstDate: "2024-01-10"})
	require.NoError(t, err)
	require.NoError(t, d.ToggleTransactionStatus(ctx, ids[0]))

	errs := runConcurrently(
		func() error { return d.ToggleTransactionStatus(ctx, ids[1]) },
		func() error { return d.ToggleTransactionStatus(ctx, ids[2]) },
	)
	for _, err := range errs {
		require.NoError(t, err)
	}

	data := d.State().Snapshot()
	for _, id := range ids {
		tx, ok := data.FindTransaction(id)
		require.True(t, ok)
		assert.Equal(t, models.StatusPaid, tx.Status, id)
	}
	debt, ok := data.FindDebt(debtId)
	require.True(t, ok)
	assert.Equal(t, models.DebtPaid, debt.Status)
}

func TestConcurrentAdds_WalletKeepsEveryDelta(t *testing.T) {
	ctx := context.Background()
	d := newAuthenticatedWith(t, "alice", slow)
	require.NoError(t, d.SetWalletBalance(ctx, dec("100")))

	income := func(amount string) func() error {
		return func() error {
			_, err := d.AddTransaction(ctx, models.Transaction{
				Description: "Gift " + amount, Amount: dec(amount), Type: models.TransactionIncome,
				Category: "Salary", Date: "2024-03-10", Status: models.StatusPaid,
			})
			return err
		}
	}
	for _, err := range runConcurrently(income("10"), income("20")) {
		require.NoError(t, err)
	}

	wallet := d.State().Snapshot().WalletBalance
	require.NotNil(t, wallet)
	assert.True(t, wallet.Equal(dec("130")), wallet.String())
}
