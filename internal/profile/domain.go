// internal/profile/domain.go
//
// Domain-verification column access: key claiming and the verified latch.
//
// Context
// -------
// Two concurrent "generate my challenge" requests must never hand out two
// different key pairs for the same tenant, so the write is an atomic
// update-if-null: whichever request lands first wins, the loser re-reads
// the winner's pair.  The latch write is monotonic (false → true only) and
// is therefore safe to repeat from concurrent verifications.
package profile

import "context"

// DomainStateByUserID fetches just the verification columns.
func (s *Store) DomainStateByUserID(ctx context.Context, userID int64) (*DomainState, error) {
	const q = `
        SELECT personal_website_url, domain_key, domain_value, domain_verified
        FROM   profiles
        WHERE  user_id = $1
        LIMIT  1`
	var st DomainState
	if err := s.db.GetContext(ctx, &st, q, userID); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// ClaimDomainKey installs the key pair only when no key exists yet.  The
// boolean reports whether this call's pair won; on false the caller must
// re-read the persisted pair.
func (s *Store) ClaimDomainKey(ctx context.Context, userID int64, key, value string) (bool, error) {
	const q = `
        UPDATE profiles
        SET    domain_key = $2,
               domain_value = $3,
               domain_verified = FALSE,
               updated_at = NOW()
        WHERE  user_id = $1
          AND  domain_key IS NULL`
	res, err := s.db.ExecContext(ctx, q, userID, key, value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkDomainVerified sets the one-way latch.  Repeats are harmless.
func (s *Store) MarkDomainVerified(ctx context.Context, userID int64) error {
	const q = `
        UPDATE profiles
        SET    domain_verified = TRUE,
               updated_at = NOW()
        WHERE  user_id = $1`
	_, err := s.db.ExecContext(ctx, q, userID)
	return err
}
