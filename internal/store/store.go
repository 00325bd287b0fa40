package store

import (
	"context"
	"errors"
	"fmt"

	"finance-sync-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDuplicateDocument  = errors.New("duplicate document")
	ErrPatchMismatch      = errors.New("patch or entity does not match collection")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrInvalidOwner       = errors.New("invalid owner id")
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// OpKind is the verb of a single write operation
type OpKind int

const (
	OpAdd OpKind = iota + 1
	OpUpdate
	OpDelete
	OpPut
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpPut:
		return "put"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is one write against a single document. Entity is set for add and
// put, Patch for update.
type Op struct {
	Kind       OpKind
	Collection models.Collection
	Id         string
	Entity     any
	Patch      models.Patch
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s/%s", o.Kind, o.Collection, o.Id)
}

// AddOp creates a document; it fails when the id already exists.
func AddOp(c models.Collection, id string, entity any) Op {
	return Op{Kind: OpAdd, Collection: c, Id: id, Entity: entity}
}

// UpdateOp applies a typed partial patch to an existing document. The
// collection is taken from the patch.
func UpdateOp(id string, patch models.Patch) Op {
	return Op{Kind: OpUpdate, Collection: patch.PatchCollection(), Id: id, Patch: patch}
}

// DeleteOp removes a document; deleting a missing document is a no-op.
func DeleteOp(c models.Collection, id string) Op {
	return Op{Kind: OpDelete, Collection: c, Id: id}
}

// PutOp creates or replaces a document.
func PutOp(c models.Collection, id string, entity any) Op {
	return Op{Kind: OpPut, Collection: c, Id: id, Entity: entity}
}

// EntityStore defines the contract that every backend (SQLite, Formance, ...) must satisfy.
// Documents are partitioned by owner id.
type EntityStore interface {
	// --- Single document writes ---
	Add(ctx context.Context, ownerId string, c models.Collection, id string, entity any) error
	Update(ctx context.Context, ownerId string, c models.Collection, id string, patch models.Patch) error
	Delete(ctx context.Context, ownerId string, c models.Collection, id string) error

	// Commit applies ops as one batch. Backends that support transactions
	// apply it atomically and publish a single snapshot for it.
	Commit(ctx context.Context, ownerId string, ops ...Op) error

	// Subscribe delivers the owner's full snapshot once before returning and
	// again after every change, until cancel is called or ctx ends.
	Subscribe(ctx context.Context, ownerId string, fn func(models.AppData)) (cancel func(), err error)

	// Snapshot reads the owner's current AppData once.
	Snapshot(ctx context.Context, ownerId string) (models.AppData, error)

	// Owners lists every owner id with at least one document.
	Owners(ctx context.Context) ([]string, error)

	// --- Lifecycle ---
	Close()
}
