// Package metrics holds Prometheus instruments that are used across the
// platform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TenantResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Host resolutions by outcome category.",
		},
		[]string{"category"}, // custom_domain, subdomain, token, reserved, no_match
	)

	DNSLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_lookups_total",
			Help: "DNS lookups by kind and result.",
		},
		[]string{"kind", "result"}, // kind: addr|txt, result: ok|not-found|timeout|other
	)

	DNSRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dns_retries_total",
			Help: "Cumulative TXT lookup retries after transient failures.",
		})

	DomainVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_verifications_total",
			Help: "Ownership verification attempts by outcome.",
		},
		[]string{"outcome"}, // verified, ip_mismatch, txt_missing, txt_mismatch, dns_error, cached
	)

	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_decisions_total",
			Help: "Access-gate decisions by outcome.",
		},
		[]string{"decision"}, // allow, public, not_found, logout, landing
	)
)

func init() {
	prometheus.MustRegister(
		TenantResolutionsTotal,
		DNSLookupsTotal,
		DNSRetriesTotal,
		DomainVerificationsTotal,
		GateDecisionsTotal,
	)
}
