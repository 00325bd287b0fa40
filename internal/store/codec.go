package store

import (
	"encoding/json"
	"fmt"

	"finance-sync-go/internal/models"

	"go.uber.org/zap"
)

// Document is one stored entity in its serialized form
type Document struct {
	Collection models.Collection
	Id         string
	Body       []byte
}

// EncodeEntity serializes an entity for storage. Badges are stored as a
// models.Badge body keyed by the badge id.
func EncodeEntity(c models.Collection, id string, e any) ([]byte, error) {
	if c == models.CollectionBadges {
		e = models.Badge{Id: id}
	}
	data, err := seed(c, id, e)
	if err != nil {
		return nil, err
	}
	if normalized, err := extract(data, c, id); err == nil {
		e = normalized
	}
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s/%s: %w", c, id, err)
	}
	return body, nil
}

// DecodeEntity parses a stored body into the typed entity for its collection
func DecodeEntity(c models.Collection, id string, body []byte) (any, error) {
	switch c {
	case models.CollectionTransactions:
		return decodeAs[models.Transaction](c, id, body)
	case models.CollectionInvestments:
		return decodeAs[models.Investment](c, id, body)
	case models.CollectionBudgets:
		return decodeAs[models.Budget](c, id, body)
	case models.CollectionDebts:
		return decodeAs[models.Debt](c, id, body)
	case models.CollectionShopping:
		return decodeAs[models.ShoppingItem](c, id, body)
	case models.CollectionKanban:
		return decodeAs[models.KanbanBoard](c, id, body)
	case models.CollectionNotes:
		return decodeAs[models.Note](c, id, body)
	case models.CollectionCategories:
		return decodeAs[models.Category](c, id, body)
	case models.CollectionBadges:
		return models.Badge{Id: id}, nil
	case models.CollectionSettings:
		switch id {
		case models.SettingWalletBalance:
			return decodeAs[models.WalletBalance](c, id, body)
		case models.SettingWealthProfile:
			return decodeAs[models.WealthProfile](c, id, body)
		}
		return nil, fmt.Errorf("%w: unknown setting %q", ErrUnknownCollection, id)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
}

func decodeAs[T any](c models.Collection, id string, body []byte) (any, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", c, id, err)
	}
	return v, nil
}

// PatchDocument applies a typed patch to a stored body and returns the new body
func PatchDocument(c models.Collection, id string, body []byte, patch models.Patch) ([]byte, error) {
	if patch == nil || patch.PatchCollection() != c {
		return nil, fmt.Errorf("%w: %T for %s", ErrPatchMismatch, patch, c)
	}
	current, err := DecodeEntity(c, id, body)
	if err != nil {
		return nil, err
	}

	// Reuse the in-memory path on a single-document snapshot.
	data, err := seed(c, id, current)
	if err != nil {
		return nil, err
	}
	next, _, err := ApplyOps(data, []Op{UpdateOp(id, patch)})
	if err != nil {
		return nil, err
	}
	updated, err := extract(next, c, id)
	if err != nil {
		return nil, err
	}
	return EncodeEntity(c, id, updated)
}

// BuildSnapshot assembles an owner's AppData from stored documents. Each
// collection keeps the order of docs. Documents that fail to decode are
// logged and skipped.
func BuildSnapshot(docs []Document) models.AppData {
	ops := make([]Op, 0, len(docs))
	for _, doc := range docs {
		e, err := DecodeEntity(doc.Collection, doc.Id, doc.Body)
		if err != nil {
			zap.L().Warn("Skipping undecodable document",
				zap.String("collection", string(doc.Collection)),
				zap.String("id", doc.Id),
				zap.Error(err))
			continue
		}
		ops = append(ops, PutOp(doc.Collection, doc.Id, e))
	}

	data, _, err := ApplyOps(models.EmptyAppData(), ops)
	if err != nil {
		// Puts of decoded entities cannot fail; keep the empty shape if they do.
		zap.L().Error("Failed to assemble snapshot", zap.Error(err))
		return models.EmptyAppData()
	}
	return data
}

// SnapshotOps returns the put ops that rebuild data from an empty store
func SnapshotOps(data models.AppData) []Op {
	var ops []Op
	for _, t := range data.Transactions {
		ops = append(ops, PutOp(models.CollectionTransactions, t.Id, t))
	}
	for _, i := range data.Investments {
		ops = append(ops, PutOp(models.CollectionInvestments, i.Id, i))
	}
	for _, b := range data.Budgets {
		ops = append(ops, PutOp(models.CollectionBudgets, b.Id, b))
	}
	for _, d := range data.Debts {
		ops = append(ops, PutOp(models.CollectionDebts, d.Id, d))
	}
	for _, s := range data.ShoppingList {
		ops = append(ops, PutOp(models.CollectionShopping, s.Id, s))
	}
	for _, b := range data.KanbanBoards {
		ops = append(ops, PutOp(models.CollectionKanban, b.Id, b))
	}
	for _, n := range data.Notes {
		ops = append(ops, PutOp(models.CollectionNotes, n.Id, n))
	}
	for _, c := range data.Categories {
		ops = append(ops, PutOp(models.CollectionCategories, c.Id, c))
	}
	for _, b := range data.UnlockedBadges {
		ops = append(ops, PutOp(models.CollectionBadges, b, models.Badge{Id: b}))
	}
	if data.WalletBalance != nil {
		ops = append(ops, PutOp(models.CollectionSettings, models.SettingWalletBalance,
			models.WalletBalance{Amount: *data.WalletBalance}))
	}
	if data.WealthProfile != nil {
		ops = append(ops, PutOp(models.CollectionSettings, models.SettingWealthProfile, *data.WealthProfile))
	}
	return ops
}

// seed verifies that e is the entity type stored in c by applying it to an
// empty snapshot.
func seed(c models.Collection, id string, e any) (models.AppData, error) {
	data, _, err := ApplyOps(models.EmptyAppData(), []Op{PutOp(c, id, e)})
	return data, err
}

func extract(data models.AppData, c models.Collection, id string) (any, error) {
	switch c {
	case models.CollectionTransactions:
		return first(data.Transactions)
	case models.CollectionInvestments:
		return first(data.Investments)
	case models.CollectionBudgets:
		return first(data.Budgets)
	case models.CollectionDebts:
		return first(data.Debts)
	case models.CollectionShopping:
		return first(data.ShoppingList)
	case models.CollectionKanban:
		return first(data.KanbanBoards)
	case models.CollectionNotes:
		return first(data.Notes)
	case models.CollectionCategories:
		return first(data.Categories)
	}
	return nil, fmt.Errorf("%w: %s/%s cannot be patched", ErrPatchMismatch, c, id)
}

func first[T any](items []T) (any, error) {
	if len(items) == 0 {
		return nil, ErrDocumentNotFound
	}
	return items[0], nil
}
