// internal/api/slug.go
//
// Subdomain slug normalisation.
//
// Rules
// -----
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, and non-ASCII.
// 3. Collapse consecutive “-” to a single “-”, trim leading/trailing “-”.
// 4. Cap at 63 characters, the DNS label limit.
//
// An input that normalises to nothing is invalid rather than defaulted;
// a claim must name a real label.
package api

import (
	"errors"
	"strings"
)

// ErrInvalidSlug reports input with no usable label characters.
var ErrInvalidSlug = errors.New("api: subdomain slug has no valid characters")

const maxSlugLen = 63

// NormalizeSlug converts raw input to a claimable lower-kebab DNS label.
func NormalizeSlug(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))

	lastWasDash := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "", ErrInvalidSlug
	}
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug, nil
}
