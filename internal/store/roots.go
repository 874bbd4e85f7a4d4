package store

import "context"

// UpdateRoot advances an account's durable root pointer to the given commit.
func (s *Store) UpdateRoot(ctx context.Context, did string, commit Commit) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO account_roots (did, root_cid, rev)
		VALUES ($1, $2, $3)
		ON CONFLICT (did) DO UPDATE SET
			root_cid = EXCLUDED.root_cid,
			rev = EXCLUDED.rev,
			updated_at = NOW()
	`, did, commit.CID, commit.Rev)
	return err
}
