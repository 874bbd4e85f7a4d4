package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"followgate/internal/syntax"
)

// Commit describes one committed transaction on an account.
type Commit struct {
	DID string `json:"did"`
	CID string `json:"cid"`
	Rev string `json:"rev"`
}

// RecordTx is the write surface available inside a transaction.
type RecordTx interface {
	// CreateRecord inserts a new record with a generated record key and
	// returns its locator and integrity token.
	CreateRecord(ctx context.Context, collection string, value any) (syntax.ATURI, string, error)

	// UpdateRecord replaces a record's value, using swapCID as an
	// optimistic-concurrency precondition. Returns the new integrity
	// token, ErrConcurrentWrite on token mismatch, or ErrRecordNotFound.
	UpdateRecord(ctx context.Context, collection, rkey string, value any, swapCID string) (string, error)
}

// Transact runs fn inside a single database transaction scoped to one
// account. Writes within an account are serialized by an advisory lock, so
// there is exactly one writer per account at a time. On success the commit
// describing the batch is returned.
func (s *Store) Transact(ctx context.Context, did string, fn func(tx RecordTx) error) (Commit, error) {
	pgxTx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Commit{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer pgxTx.Rollback(ctx)

	if _, err := pgxTx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, did); err != nil {
		return Commit{}, fmt.Errorf("acquire account lock: %w", err)
	}

	t := &tx{tx: pgxTx, did: did, rev: newRev()}
	if err := fn(t); err != nil {
		return Commit{}, err
	}

	commit := t.commit()
	if err := pgxTx.Commit(ctx); err != nil {
		return Commit{}, fmt.Errorf("commit transaction: %w", err)
	}
	return commit, nil
}

// newRev returns a monotonic revision identifier for a commit.
func newRev() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 36)
}

type tx struct {
	tx      pgx.Tx
	did     string
	rev     string
	written []string // CIDs written in this transaction, in order
}

func (t *tx) CreateRecord(ctx context.Context, collection string, value any) (syntax.ATURI, string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return syntax.ATURI{}, "", fmt.Errorf("marshal record: %w", err)
	}

	uri := syntax.Make(t.did, collection, uuid.NewString())
	cid := ComputeCID(data)

	_, err = t.tx.Exec(ctx, `
		INSERT INTO records (did, collection, rkey, cid, value)
		VALUES ($1, $2, $3, $4, $5)
	`, uri.DID, uri.Collection, uri.Rkey, cid, data)
	if err != nil {
		return syntax.ATURI{}, "", err
	}

	if err := t.writeBacklinks(ctx, uri, data); err != nil {
		return syntax.ATURI{}, "", err
	}

	t.written = append(t.written, cid)
	return uri, cid, nil
}

func (t *tx) UpdateRecord(ctx context.Context, collection, rkey string, value any, swapCID string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	cid := ComputeCID(data)
	tag, err := t.tx.Exec(ctx, `
		UPDATE records
		SET cid = $1, value = $2, updated_at = NOW()
		WHERE did = $3 AND collection = $4 AND rkey = $5 AND cid = $6
	`, cid, data, t.did, collection, rkey, swapCID)
	if err != nil {
		return "", err
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err := t.tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM records WHERE did = $1 AND collection = $2 AND rkey = $3
			)
		`, t.did, collection, rkey).Scan(&exists)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrConcurrentWrite
		}
		return "", ErrRecordNotFound
	}

	uri := syntax.Make(t.did, collection, rkey)
	if _, err := t.tx.Exec(ctx, `DELETE FROM record_backlinks WHERE uri = $1`, uri.String()); err != nil {
		return "", err
	}
	if err := t.writeBacklinks(ctx, uri, data); err != nil {
		return "", err
	}

	t.written = append(t.written, cid)
	return cid, nil
}

// writeBacklinks indexes account references in the record's named fields so
// they can be found from the referenced side without a second collection.
func (t *tx) writeBacklinks(ctx context.Context, uri syntax.ATURI, data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	for _, path := range []string{"subject"} {
		target, ok := fields[path].(string)
		if !ok || !strings.HasPrefix(target, "did:") {
			continue
		}
		_, err := t.tx.Exec(ctx, `
			INSERT INTO record_backlinks (uri, collection, path, target_did)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (uri, path) DO UPDATE SET target_did = EXCLUDED.target_did
		`, uri.String(), uri.Collection, path, target)
		if err != nil {
			return err
		}
	}
	return nil
}

// commit derives the commit for the writes staged in this transaction.
func (t *tx) commit() Commit {
	data, _ := json.Marshal(struct {
		DID     string   `json:"did"`
		Rev     string   `json:"rev"`
		Written []string `json:"written"`
	}{t.did, t.rev, t.written})

	return Commit{DID: t.did, CID: ComputeCID(data), Rev: t.rev}
}
