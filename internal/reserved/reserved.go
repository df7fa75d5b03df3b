// internal/reserved/reserved.go
//
// Reserved subdomain names.
//
// Context
// -------
// Names like "admin", "prod", and "stripe" route to platform
// infrastructure, never to tenants.  The set is configured once at boot
// and consulted at claim time; there are no scattered string comparisons
// on the request path.
package reserved

import "strings"

// Set holds the reserved names, lower-cased.
type Set struct {
	names map[string]struct{}
}

// NewSet builds a Set from the configured name list.
func NewSet(names []string) *Set {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	return &Set{names: m}
}

// Contains reports whether name is reserved.  Matching is
// case-insensitive.
func (s *Set) Contains(name string) bool {
	_, ok := s.names[strings.ToLower(name)]
	return ok
}
