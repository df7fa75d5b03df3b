// internal/verify/basedomain.go
//
// Hostname normalisation shared by the verifier, the tenant resolver, and
// the claim endpoints.  A "base domain" is the user-supplied or
// header-supplied name with protocol, `www.` prefix, port, and trailing
// slash stripped, lower-cased.
package verify

import "strings"

// BaseDomain normalises raw into the canonical comparison form.
func BaseDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	d = strings.TrimSuffix(d, "/")
	if i := strings.IndexByte(d, ':'); i != -1 {
		d = d[:i]
	}
	return d
}
