// internal/verify/verify_test.go
//
// Verification scenarios: full two-proof success, delayed TXT
// propagation, IP mismatch, the no-challenge path, and the latch
// short-circuit that must skip DNS entirely.

package verify

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/folioworks/folio/internal/dnsx"
	"github.com/folioworks/folio/internal/profile"
)

// fakeDNS maps hostnames to scripted answers and counts lookups.
type fakeDNS struct {
	addrs   map[string][]net.IP
	txt     map[string][]string
	txtErr  error
	lookups int
}

func (f *fakeDNS) Addresses(_ context.Context, host string) ([]net.IP, error) {
	f.lookups++
	ips, ok := f.addrs[host]
	if !ok {
		return nil, dnsx.ErrNotFound
	}
	return ips, nil
}

func (f *fakeDNS) TXT(_ context.Context, name string) ([]string, error) {
	f.lookups++
	if f.txtErr != nil {
		return nil, f.txtErr
	}
	return f.txt[name], nil
}

// fakeLatch records latch writes.
type fakeLatch struct{ marked []int64 }

func (f *fakeLatch) MarkDomainVerified(_ context.Context, userID int64) error {
	f.marked = append(f.marked, userID)
	return nil
}

func strPtr(s string) *string { return &s }

func platformIP() net.IP { return net.ParseIP("203.0.113.7") }

func carolProfile() *profile.Record {
	return &profile.Record{
		UserID:             3,
		PersonalWebsiteURL: strPtr("carol.dev"),
		DomainKey:          strPtr("_domain-verification-abc123"),
		DomainValue:        strPtr("deadbeefdeadbeef"),
	}
}

func TestVerify_FullSuccessLatches(t *testing.T) {
	dns := &fakeDNS{
		addrs: map[string][]net.IP{
			"carol.dev":      {platformIP()},
			"folio.ddns.net": {platformIP()},
		},
		txt: map[string][]string{
			"_domain-verification-abc123.carol.dev": {"deadbeefdeadbeef"},
		},
	}
	latch := &fakeLatch{}
	v := New(dns, latch, "folio.ddns.net")

	res := v.Verify(context.Background(), "carol.dev", carolProfile())
	require.True(t, res.Verified)
	require.True(t, res.IPCorrect)
	require.NotNil(t, res.TXTCorrect)
	require.True(t, *res.TXTCorrect)
	require.Empty(t, res.Error)
	require.Equal(t, []int64{3}, latch.marked)
}

func TestVerify_TXTNotPropagated(t *testing.T) {
	dns := &fakeDNS{
		addrs: map[string][]net.IP{
			"carol.dev":      {platformIP()},
			"folio.ddns.net": {platformIP()},
		},
		txtErr: dnsx.ErrNotFound,
	}
	latch := &fakeLatch{}
	v := New(dns, latch, "folio.ddns.net")

	res := v.Verify(context.Background(), "carol.dev", carolProfile())
	require.False(t, res.Verified)
	require.True(t, res.IPCorrect)
	require.NotNil(t, res.TXTCorrect)
	require.False(t, *res.TXTCorrect)
	require.Contains(t, res.Error, "not-found")
	require.Empty(t, latch.marked, "latch must not move on failure")
}

func TestVerify_IPMismatch(t *testing.T) {
	dns := &fakeDNS{
		addrs: map[string][]net.IP{
			"carol.dev":      {net.ParseIP("198.51.100.9")},
			"folio.ddns.net": {platformIP()},
		},
	}
	v := New(dns, &fakeLatch{}, "folio.ddns.net")

	res := v.Verify(context.Background(), "carol.dev", carolProfile())
	require.False(t, res.Verified)
	require.False(t, res.IPCorrect)
	require.Nil(t, res.TXTCorrect, "TXT must not be consulted before IP matches")
}

func TestVerify_NoChallengeUsesAddressProofOnly(t *testing.T) {
	dns := &fakeDNS{
		addrs: map[string][]net.IP{
			"carol.dev":      {platformIP()},
			"folio.ddns.net": {platformIP()},
		},
	}
	latch := &fakeLatch{}
	v := New(dns, latch, "folio.ddns.net")

	rec := carolProfile()
	rec.DomainKey, rec.DomainValue = nil, nil

	res := v.Verify(context.Background(), "carol.dev", rec)
	require.True(t, res.Verified)
	require.Nil(t, res.TXTCorrect)
	require.Equal(t, []int64{3}, latch.marked)
}

func TestVerify_LatchShortCircuitsDNS(t *testing.T) {
	dns := &fakeDNS{} // any lookup would fail loudly
	v := New(dns, &fakeLatch{}, "folio.ddns.net")

	rec := carolProfile()
	rec.DomainVerified = true

	res := v.Verify(context.Background(), "carol.dev", rec)
	require.True(t, res.Verified)
	require.Zero(t, dns.lookups, "verified tenants must skip DNS entirely")
}

func TestVerify_DNSFailureIsResultNotError(t *testing.T) {
	dns := &fakeDNS{addrs: map[string][]net.IP{}} // carol.dev NXDOMAIN
	v := New(dns, &fakeLatch{}, "folio.ddns.net")

	res := v.Verify(context.Background(), "carol.dev", carolProfile())
	require.False(t, res.Verified)
	require.Contains(t, res.Error, "not-found")
}

func TestBaseDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.Carol.dev/": "carol.dev",
		"carol.dev:8443":         "carol.dev",
		"http://carol.dev":       "carol.dev",
		" carol.dev ":            "carol.dev",
	}
	for in, want := range cases {
		require.Equal(t, want, BaseDomain(in), "input %q", in)
	}
}
