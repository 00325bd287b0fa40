package actions

import (
	"context"
	"fmt"

	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/rules"
	"finance-sync-go/internal/store"

	"github.com/shopspring/decimal"
)

func validateTransaction(t models.Transaction) error {
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, t.Amount.String())
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if !calendar.Valid(t.Date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, t.Date)
	}
	if t.Status != models.StatusPaid && t.Status != models.StatusPending {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}

// walletOps keeps the cached wallet balance in step with a transaction
// change. before or after is nil for a create or a delete. Nothing is
// emitted while the wallet balance is undefined.
func walletOps(data models.AppData, before, after *models.Transaction) []store.Op {
	if data.WalletBalance == nil {
		return nil
	}
	delta := decimal.Zero
	if before != nil {
		delta = delta.Sub(rules.Contribution(*before))
	}
	if after != nil {
		delta = delta.Add(rules.Contribution(*after))
	}
	if delta.IsZero() {
		return nil
	}
	return []store.Op{store.PutOp(models.CollectionSettings, models.SettingWalletBalance,
		models.WalletBalance{Amount: data.WalletBalance.Add(delta)})}
}

// AddTransaction records a new transaction and returns its id. An empty
// status defaults to paid.
func (d *Dispatcher) AddTransaction(ctx context.Context, t models.Transaction) (string, error) {
	if t.Status == "" {
		t.Status = models.StatusPaid
	}
	if err := validateTransaction(t); err != nil {
		return "", err
	}

	t.Id = d.newId()
	err := d.execute(ctx, "add transaction", func(data models.AppData) ([]store.Op, error) {
		ops := []store.Op{store.AddOp(models.CollectionTransactions, t.Id, t)}
		return append(ops, walletOps(data, nil, &t)...), nil
	})
	if err != nil {
		return "", err
	}
	return t.Id, nil
}

// UpdateTransaction applies a partial patch. Status changes made here do
// not run status hooks; use ToggleTransactionStatus for that.
func (d *Dispatcher) UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) error {
	return d.execute(ctx, "update transaction", func(data models.AppData) ([]store.Op, error) {
		before, ok := data.FindTransaction(id)
		if !ok {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		after := patch.Apply(before)
		if err := validateTransaction(after); err != nil {
			return nil, err
		}
		ops := []store.Op{store.UpdateOp(id, patch)}
		return append(ops, walletOps(data, &before, &after)...), nil
	})
}

// DeleteTransaction removes a transaction; deleting an unknown id is a no-op
func (d *Dispatcher) DeleteTransaction(ctx context.Context, id string) error {
	return d.execute(ctx, "delete transaction", func(data models.AppData) ([]store.Op, error) {
		before, ok := data.FindTransaction(id)
		if !ok {
			return nil, nil
		}
		ops := []store.Op{store.DeleteOp(models.CollectionTransactions, id)}
		return append(ops, walletOps(data, &before, nil)...), nil
	})
}

// ToggleTransactionStatus flips paid and pending and commits the status
// hooks' follow-up writes in the same batch.
func (d *Dispatcher) ToggleTransactionStatus(ctx context.Context, id string) error {
	return d.execute(ctx, "toggle transaction status", func(data models.AppData) ([]store.Op, error) {
		before, ok := data.FindTransaction(id)
		if !ok {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		after := before
		after.Status = before.Status.Toggled()

		ops := []store.Op{store.UpdateOp(id, models.TransactionPatch{Status: models.Ptr(after.Status)})}
		ops = append(ops, walletOps(data, &before, &after)...)

		toggled := data
		toggled.Transactions = replaceTransaction(data.Transactions, after)
		for _, hook := range d.hooks {
			ops = append(ops, hook(toggled, before, after)...)
		}
		return ops, nil
	})
}

func replaceTransaction(txs []models.Transaction, t models.Transaction) []models.Transaction {
	out := append([]models.Transaction(nil), txs...)
	for i := range out {
		if out[i].Id == t.Id {
			out[i] = t
		}
	}
	return out
}

// DebtCascade re-derives the linked debt's status from its installments
// whenever an installment's status changes.
func DebtCascade(data models.AppData, before, after models.Transaction) []store.Op {
	if after.DebtId == "" || before.Status == after.Status {
		return nil
	}
	debt, ok := data.FindDebt(after.DebtId)
	if !ok {
		return nil
	}
	status, ok := rules.DebtStatusFromInstallments(data.Transactions, debt.Id)
	if !ok || status == debt.Status {
		return nil
	}
	return []store.Op{store.UpdateOp(debt.Id, models.DebtPatch{Status: models.Ptr(status)})}
}
