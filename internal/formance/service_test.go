package formance

import (
	"errors"
	"testing"
	"time"

	"finance-sync-go/internal/models"
	"finance-sync-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestDocumentAddress(t *testing.T) {
	got, err := documentAddress("alice_01", models.CollectionTransactions, "7f1c-22aa")
	if err != nil {
		t.Fatalf("documentAddress failed: %v", err)
	}
	if want := "docs:alice_01:transactions:7f1c-22aa"; got != want {
		t.Errorf("documentAddress = %q, want %q", got, want)
	}
}

func TestDocumentAddress_Invalid(t *testing.T) {
	if _, err := documentAddress("alice:admin", models.CollectionNotes, "n1"); !errors.Is(err, store.ErrInvalidOwner) {
		t.Errorf("expected ErrInvalidOwner, got %v", err)
	}
	if _, err := documentAddress("", models.CollectionNotes, "n1"); !errors.Is(err, store.ErrInvalidOwner) {
		t.Errorf("expected ErrInvalidOwner for empty owner, got %v", err)
	}
	if _, err := documentAddress("alice", "ghosts", "n1"); !errors.Is(err, store.ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
	if _, err := documentAddress("alice", models.CollectionNotes, "a b"); err == nil {
		t.Error("expected error for id with spaces")
	}
}

func TestAccountDocument(t *testing.T) {
	acct := shared.V2Account{
		Address: "docs:alice:notes:n1",
		Metadata: map[string]string{
			"entity_type": "document",
			"owner":       "alice",
			"collection":  "notes",
			"doc_id":      "n1",
			"body":        `{"id":"n1","title":"hi"}`,
			"seq":         "42",
			"deleted":     "false",
		},
	}

	doc, ok := accountDocument(acct)
	if !ok {
		t.Fatal("expected a document account")
	}
	if doc.Collection != models.CollectionNotes || doc.Id != "n1" || doc.Owner != "alice" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Seq != 42 || doc.Deleted {
		t.Errorf("unexpected seq/deleted: %d/%v", doc.Seq, doc.Deleted)
	}

	if _, ok := accountDocument(shared.V2Account{Address: "world", Metadata: map[string]string{}}); ok {
		t.Error("expected non-document account to be ignored")
	}
}

func TestLiveDocuments(t *testing.T) {
	stored := []storedDocument{
		{Document: store.Document{Id: "c"}, Seq: 30},
		{Document: store.Document{Id: "a"}, Seq: 10},
		{Document: store.Document{Id: "gone"}, Seq: 5, Deleted: true},
		{Document: store.Document{Id: "b"}, Seq: 10},
	}

	docs := liveDocuments(stored)
	if len(docs) != 3 {
		t.Fatalf("expected 3 live documents, got %d", len(docs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if docs[i].Id != want {
			t.Errorf("docs[%d] = %q, want %q", i, docs[i].Id, want)
		}
	}
}

func TestOwnerQuery(t *testing.T) {
	q := ownerQuery("alice")
	clauses, ok := q["$and"].([]map[string]any)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected two $and clauses, got %#v", q)
	}
	match, _ := clauses[1]["$match"].(map[string]any)
	if match["metadata[owner]"] != "alice" {
		t.Errorf("expected owner match, got %#v", match)
	}
}

func TestNextSeq_StrictlyIncreasing(t *testing.T) {
	s := newService(nil, "test", time.Second)
	defer s.Close()

	s.lastSeq = time.Now().Add(time.Hour).UnixNano()
	first := s.nextSeq()
	second := s.nextSeq()
	if second <= first {
		t.Errorf("expected increasing sequence, got %d then %d", first, second)
	}
}

func TestIsNotFoundError(t *testing.T) {
	// nil error should not be a not-found
	if isNotFoundError(nil) {
		t.Error("nil should not be a not-found error")
	}
}
