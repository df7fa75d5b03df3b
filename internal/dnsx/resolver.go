// internal/dnsx/resolver.go
//
// DNS resolver adapter with timeout, retry, and backoff.
//
// Context
// -------
// Domain verification needs two lookups: hostname → address set, and TXT
// records at the challenge name.  Public DNS is flaky while records
// propagate, so the TXT path absorbs transient failures with a bounded
// retry loop (exponential 2^attempt-second backoff) instead of failing the
// caller on first try.  Each individual attempt is capped by the
// configured timeout so a stuck resolver can never pin a request handler.
//
// Workflow
// --------
//  1. Construct one Resolver at boot from config (timeout, max retries).
//  2. Addresses() performs a single bounded lookup and classifies errors.
//  3. TXT() loops: attempt, classify, sleep 2^attempt seconds, repeat; the
//     last underlying error is preserved in the wrap chain.
//
// Notes
// -----
//   - Lookups are idempotent reads; callers may retry freely.
//   - The Lookuper seam exists so tests can inject a fake without touching
//     the network.
package dnsx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/folioworks/folio/internal/metrics"
)

//
// Error taxonomy
//

var (
	// ErrTimeout marks an attempt that exceeded the per-lookup deadline.
	ErrTimeout = errors.New("dns: lookup timed out")

	// ErrNotFound marks an authoritative NXDOMAIN / no-such-record answer.
	ErrNotFound = errors.New("dns: name not found")

	// ErrLookup marks every other resolution failure (SERVFAIL, network).
	ErrLookup = errors.New("dns: lookup failed")
)

// Reason maps a classified lookup error onto the guidance bucket shown to
// users: "not-found", "timeout", or "other".  Unclassified errors fall
// into "other".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "other"
	}
}

//
// Resolver
//

// Lookuper is the subset of *net.Resolver the adapter consumes.  Tests
// substitute a fake; production uses net.DefaultResolver.
type Lookuper interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Resolver wraps a Lookuper with the platform's timeout and retry policy.
// Zero value is unusable; construct with New.
type Resolver struct {
	lu         Lookuper
	timeout    time.Duration
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// New builds a Resolver.  timeoutMS bounds each attempt; maxRetries is the
// number of TXT re-attempts after the first failure.
func New(timeoutMS, maxRetries int) *Resolver {
	return &Resolver{
		lu:         net.DefaultResolver,
		timeout:    time.Duration(timeoutMS) * time.Millisecond,
		maxRetries: maxRetries,
		sleep:      sleepCtx,
	}
}

// NewWithLookuper is the test constructor: injectable lookups and an
// injectable sleep so backoff is observable without real delays.
func NewWithLookuper(lu Lookuper, timeoutMS, maxRetries int,
	sleep func(context.Context, time.Duration) error) *Resolver {
	r := New(timeoutMS, maxRetries)
	r.lu = lu
	if sleep != nil {
		r.sleep = sleep
	}
	return r
}

// Addresses resolves host to its address set in a single bounded attempt.
func (r *Resolver) Addresses(ctx context.Context, host string) ([]net.IP, error) {
	actx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.lu.LookupIPAddr(actx, host)
	if err != nil {
		cls := classify(host, err)
		metrics.DNSLookupsTotal.WithLabelValues("addr", Reason(cls)).Inc()
		return nil, cls
	}
	metrics.DNSLookupsTotal.WithLabelValues("addr", "ok").Inc()

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

// TXT resolves the TXT records published at name, retrying transient
// failures with exponential backoff.  NXDOMAIN is authoritative and is
// returned without retrying; waiting cannot make a missing record appear
// any faster than the next propagation event.
func (r *Resolver) TXT(ctx context.Context, name string) ([]string, error) {
	var last error

	for attempt := 0; ; attempt++ {
		actx, cancel := context.WithTimeout(ctx, r.timeout)
		records, err := r.lu.LookupTXT(actx, name)
		cancel()

		if err == nil {
			metrics.DNSLookupsTotal.WithLabelValues("txt", "ok").Inc()
			return records, nil
		}

		last = classify(name, err)
		metrics.DNSLookupsTotal.WithLabelValues("txt", Reason(last)).Inc()

		if errors.Is(last, ErrNotFound) || attempt >= r.maxRetries {
			return nil, last
		}

		metrics.DNSRetriesTotal.Inc()
		if err := r.sleep(ctx, time.Duration(1<<attempt)*time.Second); err != nil {
			return nil, last
		}
	}
}

//
// helpers
//

// classify wraps a raw resolver error with the matching sentinel while
// preserving the underlying error for logs.
func classify(name string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		case dnsErr.IsTimeout:
			return fmt.Errorf("%w: %s: %v", ErrTimeout, name, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, name, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrLookup, name, err)
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
