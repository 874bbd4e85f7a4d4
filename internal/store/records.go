package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"followgate/internal/syntax"
)

// Record is one stored record revision.
type Record struct {
	URI       syntax.ATURI
	CID       string
	Value     json.RawMessage
	CreatedAt time.Time
}

// Backlink is one reverse-link index entry: a record whose named field
// references the target account.
type Backlink struct {
	URI    string
	Path   string
	Target string
}

// ComputeCID hashes a record's serialized state. The digest is the record's
// integrity token and changes on every mutation.
func ComputeCID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ListCollection lists records in an account's collection in collection
// order. A non-empty cursor resumes the listing at that record, inclusive;
// the cursor may be a bare record key or a full locator.
func (s *Store) ListCollection(ctx context.Context, did, collection string, limit int, cursor string) ([]Record, error) {
	query := `
		SELECT rkey, cid, value, created_at
		FROM records
		WHERE did = $1 AND collection = $2
		ORDER BY created_at, rkey
		LIMIT $3
	`
	args := []any{did, collection, limit}

	if rkey := cursorRkey(cursor); rkey != "" {
		// Resolve the cursor to its sort position first. A cursor whose
		// record was removed out of band resolves to no position and the
		// listing restarts from the beginning, rather than comparing rows
		// against an empty subquery and returning nothing.
		var createdAt time.Time
		err := s.Pool.QueryRow(ctx, `
			SELECT created_at FROM records
			WHERE did = $1 AND collection = $2 AND rkey = $3
		`, did, collection, rkey).Scan(&createdAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			query = `
				SELECT rkey, cid, value, created_at
				FROM records
				WHERE did = $1 AND collection = $2
					AND (created_at, rkey) >= ($4, $5)
				ORDER BY created_at, rkey
				LIMIT $3
			`
			args = append(args, createdAt, rkey)
		}
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var rkey string
		if err := rows.Scan(&rkey, &rec.CID, &rec.Value, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.URI = syntax.Make(did, collection, rkey)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// cursorRkey extracts the record key from a listing cursor. Cursors handed
// out by the directory are full locators; bare record keys pass through.
func cursorRkey(cursor string) string {
	if cursor == "" {
		return ""
	}
	if uri, err := syntax.Parse(cursor); err == nil {
		return uri.Rkey
	}
	return cursor
}

// GetReverseLinks returns index entries for records in the given collection
// whose named field references the target account, in creation order of the
// referencing records.
func (s *Store) GetReverseLinks(ctx context.Context, target, collection, path string) ([]Backlink, error) {
	query := `
		SELECT uri
		FROM record_backlinks
		WHERE target_did = $1 AND collection = $2 AND path = $3
		ORDER BY created_at, uri
	`
	rows, err := s.Pool.Query(ctx, query, target, collection, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Backlink
	for rows.Next() {
		link := Backlink{Path: path, Target: target}
		if err := rows.Scan(&link.URI); err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// GetRecord fetches the current revision of the record at a locator.
func (s *Store) GetRecord(ctx context.Context, uri syntax.ATURI) (*Record, error) {
	query := `
		SELECT cid, value, created_at
		FROM records
		WHERE did = $1 AND collection = $2 AND rkey = $3
	`
	rec := Record{URI: uri}
	err := s.Pool.QueryRow(ctx, query, uri.DID, uri.Collection, uri.Rkey).
		Scan(&rec.CID, &rec.Value, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
