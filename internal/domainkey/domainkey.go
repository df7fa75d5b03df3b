// internal/domainkey/domainkey.go
//
// Verification challenge issuance.
//
// Context
// -------
// A tenant proves custom-domain ownership by publishing a TXT record whose
// name is derived from `domain_key` and whose content is `domain_value`.
// The pair is issued exactly once per tenant: repeat requests return the
// stored pair unchanged so the record a user has already published never
// silently stops matching.  The pair only changes when the personal URL
// changes, which clears both columns at the store layer.
//
// Uniqueness across tenants is left to the random space (128-bit key
// suffix, 256-bit value); no cross-tenant uniqueness probe is performed.
package domainkey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/folioworks/folio/internal/profile"
)

// Prefix is the fixed lead-in of every challenge name.  The full TXT name
// is `<domain_key>.<base domain>`.
const Prefix = "_domain-verification-"

// Store is the slice of the profile store the issuer needs.
type Store interface {
	DomainStateByUserID(ctx context.Context, userID int64) (*profile.DomainState, error)
	ClaimDomainKey(ctx context.Context, userID int64, key, value string) (bool, error)
}

// Pair is one issued challenge: the TXT record name stem and its secret.
type Pair struct {
	Key   string `json:"domain_key"`
	Value string `json:"domain_value"`
}

// Ensure returns the tenant's challenge pair, generating and persisting
// one when none exists.  Two concurrent calls converge on a single pair:
// the conditional update-if-null write arbitrates, and the loser re-reads
// the winner's columns.
func Ensure(ctx context.Context, store Store, userID int64) (Pair, error) {
	st, err := store.DomainStateByUserID(ctx, userID)
	if err != nil {
		return Pair{}, err
	}
	if st.DomainKey != nil && *st.DomainKey != "" {
		return Pair{Key: *st.DomainKey, Value: deref(st.DomainValue)}, nil
	}

	key, err := randomHex(16)
	if err != nil {
		return Pair{}, err
	}
	value, err := randomHex(32)
	if err != nil {
		return Pair{}, err
	}
	key = Prefix + key

	won, err := store.ClaimDomainKey(ctx, userID, key, value)
	if err != nil {
		return Pair{}, err
	}
	if !won {
		// A concurrent request claimed first; its pair is authoritative.
		st, err = store.DomainStateByUserID(ctx, userID)
		if err != nil {
			return Pair{}, err
		}
		if st.DomainKey == nil {
			return Pair{}, fmt.Errorf("domainkey: claim lost but no key persisted for user %d", userID)
		}
		return Pair{Key: *st.DomainKey, Value: deref(st.DomainValue)}, nil
	}
	return Pair{Key: key, Value: value}, nil
}

// ChallengeName joins the key with the base domain into the full TXT name.
func ChallengeName(key, baseDomain string) string {
	return key + "." + baseDomain
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
