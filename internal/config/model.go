// internal/config/model.go
//
// Typed configuration model for Folio.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `FOLIO_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so business logic never
// sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • DNS tunables live here rather than as constants so operators can
//     shorten the retry budget on slow resolvers.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the Postgres DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault.  The *secret* portion
// (`Password`) may carry a `vault:` URI that is resolved at boot, keeping
// credentials out of flat files and git history.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Platform section
//

// Platform describes how tenant sites are published.
//
//   - BaseDomain is the parent of every tenant subdomain
//     (alice → alice.<base_domain>).
//   - CanonicalHost is the DDNS name every custom domain must resolve to;
//     the ownership verifier compares address sets against it.
//   - LogoutURL is the external auth-proxy logout target used by the
//     fail-closed branch of the access gate.
//   - LogoutPath is the local path the gate passes through untouched so
//     the proxy can clear its own session.
//   - ReservedNames are subdomain slugs that can never be claimed.
type Platform struct {
	BaseDomain    string   `koanf:"base_domain"    validate:"required,hostname"`
	CanonicalHost string   `koanf:"canonical_host" validate:"required,hostname"`
	LogoutURL     string   `koanf:"logout_url"     validate:"required"`
	LogoutPath    string   `koanf:"logout_path"    validate:"required,startswith=/"`
	ReservedNames []string `koanf:"reserved_names"`
}

//
// DNS section
//

// DNS holds lookup tunables for the resolver adapter.  The worst-case
// verification latency is roughly TimeoutMS×(MaxRetries+1) plus the
// backoff delays, so keep the product under the HTTP write timeout.
type DNS struct {
	TimeoutMS  int `koanf:"timeout_ms"  validate:"gte=0"`
	MaxRetries int `koanf:"max_retries" validate:"gte=0"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database used by the request
// enrichment middleware.  Empty path disables geolocation.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or FOLIO_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // FOLIO_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Platform Platform `koanf:"platform"`
	DNS      DNS      `koanf:"dns"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
