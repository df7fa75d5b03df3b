// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `FOLIO_`, where `__` maps to “.”
     (e.g., `FOLIO_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
validated, enriched with the runtime root path and DNS defaults, and
cached in an `atomic.Pointer` for lock-free reads.  `Reload()` simply
calls `Load()` again and swaps the pointer.

Secrets
-------
Values prefixed `vault:` are left untouched by `Load()`.  Callers that
hold a Vault client run `ResolveSecrets()` once during boot; business
logic only ever sees plain strings.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/folioworks/folio/internal/vault"
)

var current atomic.Pointer[Config]

// Default DNS tunables applied when the YAML omits the `dns` block.
const (
	defaultDNSTimeoutMS  = 10_000
	defaultDNSMaxRetries = 3
)

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves FOLIO_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("FOLIO_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: FOLIO_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("FOLIO_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if cfg.DNS.TimeoutMS == 0 {
		cfg.DNS.TimeoutMS = defaultDNSTimeoutMS
	}
	if cfg.DNS.MaxRetries == 0 {
		cfg.DNS.MaxRetries = defaultDNSMaxRetries
	}
	if cfg.Platform.LogoutPath == "" {
		cfg.Platform.LogoutPath = "/logout"
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"base_domain", cfg.Platform.BaseDomain,
		"canonical_host", cfg.Platform.CanonicalHost,
		"dns_timeout_ms", cfg.DNS.TimeoutMS,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// ResolveSecrets replaces `vault:<mount/path>#<key>` values with the secret
// material fetched from Vault.  Currently only Database.Password carries a
// secret; extend here as the surface grows.
func (c *Config) ResolveSecrets(ctx context.Context, cli *vault.Client) error {
	const prefix = "vault:"

	if strings.HasPrefix(c.Database.Password, prefix) {
		ref := strings.TrimPrefix(c.Database.Password, prefix)
		path, key, _ := strings.Cut(ref, "#")
		val, err := cli.GetKV(ctx, path, key, 10*time.Minute)
		if err != nil {
			return err
		}
		c.Database.Password = val
	}
	return nil
}

// DatabaseDSN substitutes the resolved password into the DSN template.  The
// template carries one `%s` verb, e.g.
// `postgres://folio:%s@db.internal:5432/folio`.
func (c *Config) DatabaseDSN() string {
	if strings.Contains(c.Database.DSN, "%s") {
		return strings.Replace(c.Database.DSN, "%s", c.Database.Password, 1)
	}
	return c.Database.DSN
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
