package store

import (
	"fmt"

	"finance-sync-go/internal/models"
)

type entity[T any] interface {
	EntityId() string
	WithId(string) T
}

// ApplyOps applies ops to data in order and returns the resulting snapshot
// with the set of collections that actually changed. Touched collections get
// fresh slices; untouched ones keep their identity. On error data is returned
// unchanged.
func ApplyOps(data models.AppData, ops []Op) (models.AppData, models.CollectionSet, error) {
	next := data
	var changed models.CollectionSet

	for _, op := range ops {
		var (
			touched bool
			err     error
		)
		switch op.Collection {
		case models.CollectionTransactions:
			next.Transactions, touched, err = applyTo(next.Transactions, op, models.TransactionPatch.Apply)
		case models.CollectionInvestments:
			next.Investments, touched, err = applyTo(next.Investments, op, models.InvestmentPatch.Apply)
		case models.CollectionBudgets:
			next.Budgets, touched, err = applyTo(next.Budgets, op, models.BudgetPatch.Apply)
		case models.CollectionDebts:
			next.Debts, touched, err = applyTo(next.Debts, op, models.DebtPatch.Apply)
		case models.CollectionShopping:
			next.ShoppingList, touched, err = applyTo(next.ShoppingList, op, models.ShoppingItemPatch.Apply)
		case models.CollectionKanban:
			next.KanbanBoards, touched, err = applyTo(next.KanbanBoards, op, models.KanbanBoardPatch.Apply)
		case models.CollectionNotes:
			next.Notes, touched, err = applyTo(next.Notes, op, models.NotePatch.Apply)
		case models.CollectionCategories:
			next.Categories, touched, err = applyTo(next.Categories, op, models.CategoryPatch.Apply)
		case models.CollectionBadges:
			next.UnlockedBadges, touched, err = applyBadge(next.UnlockedBadges, op)
		case models.CollectionSettings:
			touched, err = applySetting(&next, op)
		default:
			err = ErrUnknownCollection
		}
		if err != nil {
			return data, 0, fmt.Errorf("%s: %w", op, err)
		}
		if touched {
			changed = changed.With(op.Collection)
		}
	}
	return next, changed, nil
}

func indexOf[T entity[T]](items []T, id string) int {
	for i, item := range items {
		if item.EntityId() == id {
			return i
		}
	}
	return -1
}

func applyTo[T entity[T], P models.Patch](items []T, op Op, apply func(P, T) T) ([]T, bool, error) {
	idx := indexOf(items, op.Id)

	switch op.Kind {
	case OpAdd, OpPut:
		e, ok := op.Entity.(T)
		if !ok {
			return items, false, fmt.Errorf("%w: entity %T", ErrPatchMismatch, op.Entity)
		}
		e = e.WithId(op.Id)
		if idx >= 0 {
			if op.Kind == OpAdd {
				return items, false, ErrDuplicateDocument
			}
			out := append([]T(nil), items...)
			out[idx] = e
			return out, true, nil
		}
		out := make([]T, len(items), len(items)+1)
		copy(out, items)
		return append(out, e), true, nil

	case OpUpdate:
		if idx < 0 {
			return items, false, ErrDocumentNotFound
		}
		p, ok := op.Patch.(P)
		if !ok {
			return items, false, fmt.Errorf("%w: patch %T", ErrPatchMismatch, op.Patch)
		}
		out := append([]T(nil), items...)
		out[idx] = apply(p, out[idx]).WithId(op.Id)
		return out, true, nil

	case OpDelete:
		if idx < 0 {
			return items, false, nil
		}
		out := make([]T, 0, len(items)-1)
		out = append(out, items[:idx]...)
		return append(out, items[idx+1:]...), true, nil
	}
	return items, false, fmt.Errorf("unsupported op kind %s", op.Kind)
}

func applyBadge(badges []string, op Op) ([]string, bool, error) {
	idx := -1
	for i, b := range badges {
		if b == op.Id {
			idx = i
			break
		}
	}

	switch op.Kind {
	case OpAdd, OpPut:
		if idx >= 0 {
			if op.Kind == OpAdd {
				return badges, false, ErrDuplicateDocument
			}
			return badges, false, nil
		}
		out := make([]string, len(badges), len(badges)+1)
		copy(out, badges)
		return append(out, op.Id), true, nil
	case OpDelete:
		if idx < 0 {
			return badges, false, nil
		}
		out := make([]string, 0, len(badges)-1)
		out = append(out, badges[:idx]...)
		return append(out, badges[idx+1:]...), true, nil
	}
	return badges, false, fmt.Errorf("%w: badges only support add, put and delete", ErrPatchMismatch)
}

func applySetting(data *models.AppData, op Op) (bool, error) {
	switch op.Id {
	case models.SettingWalletBalance:
		switch op.Kind {
		case OpAdd, OpPut:
			wb, ok := op.Entity.(models.WalletBalance)
			if !ok {
				return false, fmt.Errorf("%w: entity %T", ErrPatchMismatch, op.Entity)
			}
			if op.Kind == OpAdd && data.WalletBalance != nil {
				return false, ErrDuplicateDocument
			}
			amount := wb.Amount
			data.WalletBalance = &amount
			return true, nil
		case OpDelete:
			if data.WalletBalance == nil {
				return false, nil
			}
			data.WalletBalance = nil
			return true, nil
		}

	case models.SettingWealthProfile:
		switch op.Kind {
		case OpAdd, OpPut:
			wp, ok := op.Entity.(models.WealthProfile)
			if !ok {
				return false, fmt.Errorf("%w: entity %T", ErrPatchMismatch, op.Entity)
			}
			if op.Kind == OpAdd && data.WealthProfile != nil {
				return false, ErrDuplicateDocument
			}
			data.WealthProfile = &wp
			return true, nil
		case OpDelete:
			if data.WealthProfile == nil {
				return false, nil
			}
			data.WealthProfile = nil
			return true, nil
		}

	default:
		return false, fmt.Errorf("%w: unknown setting %q", ErrUnknownCollection, op.Id)
	}
	return false, fmt.Errorf("%w: settings only support add, put and delete", ErrPatchMismatch)
}
