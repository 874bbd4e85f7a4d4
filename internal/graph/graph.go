// Package graph implements the follow-request workflow: the request
// directory (listing + enrichment) and the response coordinator
// (approve/deny).
package graph

import (
	"context"

	"followgate/internal/store"
	"followgate/internal/syntax"
)

// RecordStore is the slice of the record store the workflow consumes.
type RecordStore interface {
	// ListCollection lists an account's records in collection order, up
	// to limit, resuming at cursor.
	ListCollection(ctx context.Context, did, collection string, limit int, cursor string) ([]store.Record, error)

	// GetReverseLinks returns entries for records in collection whose
	// named field references the target account.
	GetReverseLinks(ctx context.Context, target, collection, path string) ([]store.Backlink, error)

	// GetRecord fetches the record at a locator, or ErrRecordNotFound.
	GetRecord(ctx context.Context, uri syntax.ATURI) (*store.Record, error)

	// Transact runs fn as a single transaction scoped to one account.
	Transact(ctx context.Context, did string, fn func(tx store.RecordTx) error) (store.Commit, error)
}

// RecordGetter is the read-only subset used by enrichment.
type RecordGetter interface {
	GetRecord(ctx context.Context, uri syntax.ATURI) (*store.Record, error)
}

// Sequencer appends a commit to the ordered commit stream.
type Sequencer interface {
	SequenceCommit(ctx context.Context, did string, commit store.Commit) error
}

// AccountDirectory tracks each account's durable root pointer.
type AccountDirectory interface {
	UpdateRoot(ctx context.Context, did string, commit store.Commit) error
}
