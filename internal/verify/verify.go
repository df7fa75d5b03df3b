// internal/verify/verify.go
//
// Custom-domain ownership verification.
//
// Context
// -------
// A tenant's custom domain is trusted only after two proofs hold at once:
//
//  1. The domain's address set intersects the platform's canonical
//     hostname (the DDNS record operators point tenants at).
//  2. A TXT record at `<domain_key>.<domain>` contains the tenant's
//     secret `domain_value`.
//
// The first full success persists `domain_verified = TRUE`, a one-way
// latch; subsequent requests short-circuit here and skip DNS entirely
// until the tenant changes the URL (which clears the latch at the store
// layer).  A tenant issued no challenge yet is verified on the address
// proof alone, since there is nothing to match a TXT record against.
//
// Failure semantics
// -----------------
// DNS trouble never escapes this boundary as an error.  Every failure is
// folded into the Result: Verified=false plus a reason string built from
// the dnsx classification ("not-found", "timeout", "other"), which the
// settings page turns into user guidance ("record not visible yet" versus
// "your DNS host is timing out").
package verify

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/folioworks/folio/internal/cache"
	"github.com/folioworks/folio/internal/dnsx"
	"github.com/folioworks/folio/internal/domainkey"
	"github.com/folioworks/folio/internal/metrics"
	"github.com/folioworks/folio/internal/profile"
)

// canonicalTTL bounds how long the canonical hostname's address set is
// reused between verifications.
const canonicalTTL = time.Minute

// DNS is the slice of the resolver adapter the verifier consumes.
type DNS interface {
	Addresses(ctx context.Context, host string) ([]net.IP, error)
	TXT(ctx context.Context, name string) ([]string, error)
}

// LatchStore persists the one-way verified flag.
type LatchStore interface {
	MarkDomainVerified(ctx context.Context, userID int64) error
}

// Result reports one verification attempt.  TXTCorrect is nil when the
// tenant holds no challenge pair (no ownership proof required).
type Result struct {
	Verified   bool   `json:"verified"`
	IPCorrect  bool   `json:"ip_correct"`
	TXTCorrect *bool  `json:"txt_correct"`
	Error      string `json:"error,omitempty"`
}

// Verifier runs the two-proof check.  Concurrent checks for the same
// domain are collapsed through singleflight so a burst of visitors to an
// unverified domain costs one DNS round, not one per request.
type Verifier struct {
	dns           DNS
	store         LatchStore
	canonicalHost string
	canon         *cache.TTL
	sfg           singleflight.Group
}

// New builds a Verifier against the platform's canonical hostname.
func New(dns DNS, store LatchStore, canonicalHost string) *Verifier {
	return &Verifier{
		dns:           dns,
		store:         store,
		canonicalHost: canonicalHost,
		canon:         cache.NewTTL(8, canonicalTTL),
	}
}

// Verify checks ownership of baseDomain for the profile rec.  The latch
// short-circuit makes repeat calls on verified tenants free.
func (v *Verifier) Verify(ctx context.Context, baseDomain string, rec *profile.Record) Result {
	if rec.DomainVerified {
		metrics.DomainVerificationsTotal.WithLabelValues("cached").Inc()
		t := true
		return Result{Verified: true, IPCorrect: true, TXTCorrect: &t}
	}

	res, _, _ := v.sfg.Do(baseDomain, func() (any, error) {
		return v.check(ctx, baseDomain, rec), nil
	})
	return res.(Result)
}

func (v *Verifier) check(ctx context.Context, baseDomain string, rec *profile.Record) Result {
	var out Result

	domainIPs, err := v.dns.Addresses(ctx, baseDomain)
	if err != nil {
		metrics.DomainVerificationsTotal.WithLabelValues("dns_error").Inc()
		out.Error = fmt.Sprintf("resolving %s: %s", baseDomain, dnsx.Reason(err))
		return out
	}

	canonIPs, err := v.canonicalAddresses(ctx)
	if err != nil {
		metrics.DomainVerificationsTotal.WithLabelValues("dns_error").Inc()
		out.Error = fmt.Sprintf("resolving platform host: %s", dnsx.Reason(err))
		return out
	}

	out.IPCorrect = intersects(domainIPs, canonIPs)
	if !out.IPCorrect {
		metrics.DomainVerificationsTotal.WithLabelValues("ip_mismatch").Inc()
		out.Error = fmt.Sprintf("%s does not resolve to %s", baseDomain, v.canonicalHost)
		return out
	}

	// No challenge issued yet: the address proof stands alone.
	if rec.DomainKey == nil || *rec.DomainKey == "" {
		out.Verified = out.IPCorrect
		if out.Verified {
			v.latch(ctx, rec.UserID)
		}
		return out
	}

	name := domainkey.ChallengeName(*rec.DomainKey, baseDomain)
	records, err := v.dns.TXT(ctx, name)
	if err != nil {
		f := false
		out.TXTCorrect = &f
		metrics.DomainVerificationsTotal.WithLabelValues("txt_missing").Inc()
		out.Error = fmt.Sprintf("TXT record at %s: %s", name, dnsx.Reason(err))
		return out
	}

	matched := containsValue(records, deref(rec.DomainValue))
	out.TXTCorrect = &matched
	if !matched {
		metrics.DomainVerificationsTotal.WithLabelValues("txt_mismatch").Inc()
		out.Error = fmt.Sprintf("TXT record at %s does not contain the verification value", name)
		return out
	}

	out.Verified = true
	metrics.DomainVerificationsTotal.WithLabelValues("verified").Inc()
	v.latch(ctx, rec.UserID)
	return out
}

// latch persists the one-way flag.  A failed write is logged by the store
// caller's layer on next read; the successful DNS proof still stands for
// this response.
func (v *Verifier) latch(ctx context.Context, userID int64) {
	_ = v.store.MarkDomainVerified(ctx, userID)
}

// canonicalAddresses resolves the platform hostname through the TTL cache.
func (v *Verifier) canonicalAddresses(ctx context.Context) ([]net.IP, error) {
	if cached, ok := v.canon.Get(v.canonicalHost); ok {
		return cached.([]net.IP), nil
	}
	ips, err := v.dns.Addresses(ctx, v.canonicalHost)
	if err != nil {
		return nil, err
	}
	v.canon.Add(v.canonicalHost, ips)
	return ips, nil
}

//
// helpers
//

func intersects(a, b []net.IP) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Equal(y) {
				return true
			}
		}
	}
	return false
}

// containsValue accepts both exact-match records and records that embed
// the value among other content (some DNS hosts concatenate strings).
func containsValue(records []string, value string) bool {
	if value == "" {
		return false
	}
	for _, r := range records {
		if r == value || strings.Contains(r, value) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
