package formance

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

const (
	docsPrefix = "docs"
	listPage   = 100

	metaEntityType = "entity_type"
	metaOwner      = "owner"
	metaCollection = "collection"
	metaDocId      = "doc_id"
	metaBody       = "body"
	metaSeq        = "seq"
	metaDeleted    = "deleted"

	entityTypeDocument = "document"
)

// Ledger account address segments
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// documentAddress returns the ledger account holding one document:
// docs:{owner}:{collection}:{id}
func documentAddress(ownerId string, c models.Collection, id string) (string, error) {
	if !segmentPattern.MatchString(ownerId) {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidOwner, ownerId)
	}
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", store.ErrUnknownCollection, c)
	}
	if !segmentPattern.MatchString(id) {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return strings.Join([]string{docsPrefix, ownerId, string(c), id}, ":"), nil
}

// storedDocument is a document as read back from account metadata
type storedDocument struct {
	store.Document
	Owner   string
	Seq     int64
	Deleted bool
}

// accountDocument extracts the document kept on a ledger account. ok is
// false for accounts that are not documents.
func accountDocument(acct shared.V2Account) (storedDocument, bool) {
	meta := acct.Metadata
	if meta[metaEntityType] != entityTypeDocument {
		return storedDocument{}, false
	}
	seq, err := strconv.ParseInt(meta[metaSeq], 10, 64)
	if err != nil {
		seq = 0
	}
	return storedDocument{
		Document: store.Document{
			Collection: models.Collection(meta[metaCollection]),
			Id:         meta[metaDocId],
			Body:       []byte(meta[metaBody]),
		},
		Owner:   meta[metaOwner],
		Seq:     seq,
		Deleted: meta[metaDeleted] == "true",
	}, true
}

// liveDocuments drops tombstones and orders by insertion sequence
func liveDocuments(stored []storedDocument) []store.Document {
	live := make([]storedDocument, 0, len(stored))
	for _, d := range stored {
		if !d.Deleted {
			live = append(live, d)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].Seq != live[j].Seq {
			return live[i].Seq < live[j].Seq
		}
		return live[i].Id < live[j].Id
	})

	docs := make([]store.Document, len(live))
	for i, d := range live {
		docs[i] = d.Document
	}
	return docs
}

// ownerQuery matches every document account of one owner
func ownerQuery(ownerId string) map[string]any {
	return map[string]any{
		"$and": []map[string]any{
			{"$match": map[string]any{"metadata[" + metaEntityType + "]": entityTypeDocument}},
			{"$match": map[string]any{"metadata[" + metaOwner + "]": ownerId}},
		},
	}
}

func (s *Service) Add(ctx context.Context, ownerId string, c models.Collection, id string, entity any) error {
	return s.Commit(ctx, ownerId, store.AddOp(c, id, entity))
}

func (s *Service) Update(ctx context.Context, ownerId string, c models.Collection, id string, patch models.Patch) error {
	if patch == nil || patch.PatchCollection() != c {
		return fmt.Errorf("%w: %T for %s", store.ErrPatchMismatch, patch, c)
	}
	return s.Commit(ctx, ownerId, store.UpdateOp(id, patch))
}

func (s *Service) Delete(ctx context.Context, ownerId string, c models.Collection, id string) error {
	return s.Commit(ctx, ownerId, store.DeleteOp(c, id))
}

// Commit applies ops one by one. The ledger has no multi-account metadata
// transaction, so a failure leaves earlier ops applied; holding mu keeps
// this process's subscribers from seeing a half-applied batch.
func (s *Service) Commit(ctx context.Context, ownerId string, ops ...store.Op) error {
	if !segmentPattern.MatchString(ownerId) {
		return fmt.Errorf("%w: %q", store.ErrInvalidOwner, ownerId)
	}
	if len(ops) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, op := range ops {
		if err := s.applyOp(ctx, ownerId, op); err != nil {
			if i > 0 {
				zap.L().Warn("Batch partially applied",
					zap.String("owner_id", ownerId),
					zap.Int("applied", i),
					zap.Int("ops", len(ops)),
					zap.Error(err))
				s.refreshOwnerLocked(context.WithoutCancel(ctx), ownerId)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	zap.L().Info("Committed document batch",
		zap.String("owner_id", ownerId),
		zap.String("ledger", s.ledger),
		zap.Int("ops", len(ops)))

	s.refreshOwnerLocked(context.WithoutCancel(ctx), ownerId)
	return nil
}

func (s *Service) applyOp(ctx context.Context, ownerId string, op store.Op) error {
	addr, err := documentAddress(ownerId, op.Collection, op.Id)
	if err != nil {
		return err
	}

	current, found, err := s.getDocument(ctx, addr)
	if err != nil {
		return err
	}
	alive := found && !current.Deleted

	switch op.Kind {
	case store.OpAdd, store.OpPut:
		if op.Kind == store.OpAdd && alive {
			return store.ErrDuplicateDocument
		}
		body, err := store.EncodeEntity(op.Collection, op.Id, op.Entity)
		if err != nil {
			return err
		}
		seq := current.Seq
		if !alive {
			seq = s.nextSeq()
		}
		return s.writeMetadata(ctx, addr, map[string]string{
			metaEntityType: entityTypeDocument,
			metaOwner:      ownerId,
			metaCollection: string(op.Collection),
			metaDocId:      op.Id,
			metaBody:       string(body),
			metaSeq:        strconv.FormatInt(seq, 10),
			metaDeleted:    "false",
		})

	case store.OpUpdate:
		if !alive {
			return store.ErrDocumentNotFound
		}
		body, err := store.PatchDocument(op.Collection, op.Id, current.Body, op.Patch)
		if err != nil {
			return err
		}
		return s.writeMetadata(ctx, addr, map[string]string{metaBody: string(body)})

	case store.OpDelete:
		if !alive {
			return nil
		}
		// Accounts cannot be removed from a ledger; tombstone instead.
		return s.writeMetadata(ctx, addr, map[string]string{metaDeleted: "true"})
	}
	return fmt.Errorf("unsupported op kind %s", op.Kind)
}

func (s *Service) writeMetadata(ctx context.Context, addr string, meta map[string]string) error {
	_, err := s.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:      s.ledger,
		Address:     addr,
		RequestBody: meta,
	})
	if err != nil {
		return fmt.Errorf("failed to write document metadata: %w", err)
	}
	zap.L().Debug("Wrote document metadata", zap.String("address", addr))
	return nil
}

func (s *Service) getDocument(ctx context.Context, addr string) (storedDocument, bool, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: addr,
	})
	if err != nil {
		if isNotFoundError(err) {
			return storedDocument{}, false, nil
		}
		return storedDocument{}, false, fmt.Errorf("failed to get document account: %w", err)
	}

	doc, ok := accountDocument(resp.V2AccountResponse.Data)
	return doc, ok, nil
}

// listDocuments pages through every document account matching query
func (s *Service) listDocuments(ctx context.Context, query map[string]any) ([]storedDocument, error) {
	var (
		out    []storedDocument
		cursor *string
	)
	for {
		resp, err := s.client.Ledger.V2.ListAccounts(ctx, operations.V2ListAccountsRequest{
			Ledger:      s.ledger,
			PageSize:    ptrInt64(listPage),
			Cursor:      cursor,
			RequestBody: query,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list document accounts: %w", err)
		}

		page := resp.V2AccountsCursorResponse.Cursor
		for i := range page.Data {
			if doc, ok := accountDocument(page.Data[i]); ok {
				out = append(out, doc)
			}
		}
		if !page.HasMore || page.Next == nil {
			return out, nil
		}
		cursor = page.Next
	}
}

// Snapshot loads the owner's current AppData
func (s *Service) Snapshot(ctx context.Context, ownerId string) (models.AppData, error) {
	if !segmentPattern.MatchString(ownerId) {
		return models.AppData{}, fmt.Errorf("%w: %q", store.ErrInvalidOwner, ownerId)
	}
	stored, err := s.listDocuments(ctx, ownerQuery(ownerId))
	if err != nil {
		return models.AppData{}, err
	}
	docs := liveDocuments(stored)
	zap.L().Debug("Loaded owner snapshot", zap.String("owner_id", ownerId), zap.Int("documents", len(docs)))
	return store.BuildSnapshot(docs), nil
}

func (s *Service) Owners(ctx context.Context) ([]string, error) {
	stored, err := s.listDocuments(ctx, map[string]any{
		"$match": map[string]any{
			"metadata[" + metaEntityType + "]": entityTypeDocument,
		},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var owners []string
	for _, d := range stored {
		if d.Deleted || d.Owner == "" || seen[d.Owner] {
			continue
		}
		seen[d.Owner] = true
		owners = append(owners, d.Owner)
	}
	sort.Strings(owners)
	return owners, nil
}
