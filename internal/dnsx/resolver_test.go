// internal/dnsx/resolver_test.go
//
// Unit-tests for the resolver adapter: retry counting, backoff schedule,
// NXDOMAIN short-circuit, and error classification.

package dnsx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeLookuper scripts per-call results for TXT and address lookups.
type fakeLookuper struct {
	addrs    []net.IPAddr
	addrErr  error
	txtCalls int
	txt      func(call int) ([]string, error)
}

func (f *fakeLookuper) LookupIPAddr(_ context.Context, _ string) ([]net.IPAddr, error) {
	return f.addrs, f.addrErr
}

func (f *fakeLookuper) LookupTXT(_ context.Context, _ string) ([]string, error) {
	f.txtCalls++
	return f.txt(f.txtCalls)
}

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestTXT_RetriesThenSucceeds(t *testing.T) {
	transient := &net.DNSError{Err: "server misbehaving", IsTemporary: true}
	fake := &fakeLookuper{
		txt: func(call int) ([]string, error) {
			if call < 3 {
				return nil, transient
			}
			return []string{"deadbeef"}, nil
		},
	}

	var delays []time.Duration
	r := NewWithLookuper(fake, 10_000, 3, noSleep(&delays))

	records, err := r.TXT(context.Background(), "_v.carol.dev")
	require.NoError(t, err)
	require.Equal(t, []string{"deadbeef"}, records)
	require.Equal(t, 3, fake.txtCalls)

	// Backoff doubles per attempt: 1s after the first failure, 2s after
	// the second.
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestTXT_NotFoundDoesNotRetry(t *testing.T) {
	fake := &fakeLookuper{
		txt: func(int) ([]string, error) {
			return nil, &net.DNSError{Err: "no such host", IsNotFound: true}
		},
	}

	var delays []time.Duration
	r := NewWithLookuper(fake, 10_000, 3, noSleep(&delays))

	_, err := r.TXT(context.Background(), "_v.carol.dev")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, fake.txtCalls)
	require.Empty(t, delays)
	require.Equal(t, "not-found", Reason(err))
}

func TestTXT_ExhaustsRetries(t *testing.T) {
	fake := &fakeLookuper{
		txt: func(int) ([]string, error) {
			return nil, &net.DNSError{Err: "i/o timeout", IsTimeout: true}
		},
	}

	var delays []time.Duration
	r := NewWithLookuper(fake, 10_000, 2, noSleep(&delays))

	_, err := r.TXT(context.Background(), "_v.carol.dev")
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, 3, fake.txtCalls) // initial attempt + 2 retries
	require.Len(t, delays, 2)
	require.Equal(t, "timeout", Reason(err))
}

func TestAddresses_Classification(t *testing.T) {
	fake := &fakeLookuper{addrErr: &net.DNSError{Err: "no such host", IsNotFound: true}}
	r := NewWithLookuper(fake, 10_000, 0, nil)

	_, err := r.Addresses(context.Background(), "missing.example")
	require.ErrorIs(t, err, ErrNotFound)

	fake2 := &fakeLookuper{addrs: []net.IPAddr{{IP: net.ParseIP("203.0.113.7")}}}
	r2 := NewWithLookuper(fake2, 10_000, 0, nil)

	ips, err := r2.Addresses(context.Background(), "carol.dev")
	require.NoError(t, err)
	require.Equal(t, "203.0.113.7", ips[0].String())
}

func TestReason_Other(t *testing.T) {
	fake := &fakeLookuper{
		txt: func(int) ([]string, error) {
			return nil, &net.DNSError{Err: "server misbehaving"}
		},
	}
	r := NewWithLookuper(fake, 10_000, 0, nil)

	_, err := r.TXT(context.Background(), "_v.carol.dev")
	require.ErrorIs(t, err, ErrLookup)
	require.Equal(t, "other", Reason(err))
}
