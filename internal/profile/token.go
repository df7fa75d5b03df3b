// internal/profile/token.go
//
// Access-token issuance.  The token is a separate opaque credential for
// reaching a personal site by token label; once set it is immutable, and
// regeneration requests are refused rather than silently rotating a value
// visitors may already hold.
package profile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const tokenIssueAttempts = 10

// GetAccessToken returns the caller's token, or nil when none is set.
func (s *Store) GetAccessToken(ctx context.Context, userID int64) (*string, error) {
	const q = `SELECT access_token FROM profiles WHERE user_id = $1 LIMIT 1`
	var token *string
	if err := s.db.GetContext(ctx, &token, q, userID); err != nil {
		return nil, mapNoRows(err)
	}
	return token, nil
}

// EnsureAccessToken issues a 32-hex-character token exactly once.  An
// existing token is never replaced; callers holding one get ErrTokenExists.
func (s *Store) EnsureAccessToken(ctx context.Context, userID int64) (string, error) {
	existing, err := s.GetAccessToken(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if existing != nil && *existing != "" {
		return "", ErrTokenExists
	}

	// The 128-bit space makes collisions practically impossible, but the
	// unique index would still reject one, so retry a bounded number of
	// times.
	for attempt := 0; attempt < tokenIssueAttempts; attempt++ {
		token, err := randomHex(16)
		if err != nil {
			return "", err
		}

		taken, err := s.AccessTokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		const q = `
            UPDATE profiles
            SET    access_token = $2,
                   updated_at = NOW()
            WHERE  user_id = $1
              AND  access_token IS NULL`
		res, err := s.db.ExecContext(ctx, q, userID, token)
		if err != nil {
			return "", err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", err
		}
		if n == 0 {
			// Raced with another issuance; surface the refusal.
			return "", ErrTokenExists
		}
		return token, nil
	}
	return "", fmt.Errorf("profile: could not issue a unique access token after %d attempts", tokenIssueAttempts)
}

// randomHex returns n random bytes hex-encoded (2n characters).
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
