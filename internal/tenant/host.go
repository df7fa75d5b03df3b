// internal/tenant/host.go
//
// Host header parsing for the resolver.
package tenant

import (
	"strings"

	"github.com/folioworks/folio/internal/verify"
)

// SplitHost normalises the inbound Host header and extracts the candidate
// subdomain label.  The base form has port, scheme remnants, and `www.`
// stripped.  A subdomain candidate exists only when the host carries more
// than two labels ("alice.example.com" → "alice"; "example.com" → "").
func SplitHost(hostHeader string) (base, sub string) {
	base = verify.BaseDomain(hostHeader)
	if strings.Count(base, ".") >= 2 {
		sub = base[:strings.IndexByte(base, '.')]
	}
	return base, sub
}
