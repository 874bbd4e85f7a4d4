package store

import (
	"context"
	"fmt"
)

// PruneDanglingBacklinks deletes up to limit backlink rows whose source
// record no longer exists, and returns how many were removed. Backlinks are
// maintained inline with record writes, so dangling rows only appear after
// out-of-band record removal such as account deletion.
func (s *Store) PruneDanglingBacklinks(ctx context.Context, limit int) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM record_backlinks
		WHERE ctid IN (
			SELECT bl.ctid
			FROM record_backlinks bl
			LEFT JOIN records r
			  ON bl.uri = 'at://' || r.did || '/' || r.collection || '/' || r.rkey
			WHERE r.did IS NULL
			LIMIT $1
		)`, limit)
	if err != nil {
		return 0, fmt.Errorf("prune dangling backlinks: %w", err)
	}
	return tag.RowsAffected(), nil
}
