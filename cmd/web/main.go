// cmd/web/main.go
//
// Folio – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (.env → conf/global.yaml → FOLIO_ env overlay).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Resolve Vault-referenced secrets, open the Postgres pool.
//
//  4. Wire the domain graph: DNS adapter → verifier → tenant resolver →
//     access gate → settings API.
//
//  5. Serve: /metrics (ungated), then the gated router — settings API,
//     logout, and the public tenant catch-all.
//
// Request life-cycle
// ------------------
//
//   - security headers + optional HTTPS upgrade
//   - request-info enrichment (UA, best-effort geo)
//   - access gate decision (identity / tenant / 404 / redirect / landing)
//   - settings API or public render context
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/content"
	"github.com/folioworks/folio/internal/database"
	"github.com/folioworks/folio/internal/dnsx"
	"github.com/folioworks/folio/internal/gate"
	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/middleware"
	"github.com/folioworks/folio/internal/plan"
	"github.com/folioworks/folio/internal/prefs"
	"github.com/folioworks/folio/internal/profile"
	"github.com/folioworks/folio/internal/requestinfo"
	"github.com/folioworks/folio/internal/reserved"
	"github.com/folioworks/folio/internal/server"
	"github.com/folioworks/folio/internal/session"
	"github.com/folioworks/folio/internal/tenant"
	"github.com/folioworks/folio/internal/user"
	"github.com/folioworks/folio/internal/vault"
	"github.com/folioworks/folio/internal/verify"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx := context.Background()

	//
	// ── 1.  Config + logger ─────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 2.  Secrets + Postgres pool ─────────────────────────────────────
	//
	if os.Getenv("VAULT_ADDR") != "" {
		vcli, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalw("vault client", "err", err)
		}
		if err := cfg.ResolveSecrets(ctx, vcli); err != nil {
			logOut.Fatalw("resolve secrets", "err", err)
		}
	}

	db, err := database.Open(cfg.DatabaseDSN())
	if err != nil {
		logOut.Fatalw("connect platform DB", "err", err)
	}
	defer db.Close()
	logOut.Infow("platform DB online")

	// Early sanity check: how many sites are currently published?
	var published int
	_ = db.Get(&published, `
	    SELECT COUNT(*) FROM profiles
	    WHERE share_website = TRUE OR share_personal_website = TRUE`)
	logOut.Infow("published tenant sites", "count", published)

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		// Geo is a nice-to-have; boot continues without it.
		logOut.Warnw("geoip disabled", "err", err)
	}

	//
	// ── 3.  Domain graph ────────────────────────────────────────────────
	//
	profiles := profile.NewStore(db)
	prefStore := prefs.NewStore(db)
	contentStore := content.NewStore(db)
	users := user.NewStore(db)

	resolver := dnsx.New(cfg.DNS.TimeoutMS, cfg.DNS.MaxRetries)
	verifier := verify.New(resolver, profiles, cfg.Platform.CanonicalHost)

	tierOf := func(ctx context.Context, userID int64) (plan.Tier, error) {
		return plan.ByUser(ctx, db, userID)
	}
	tenants := tenant.New(profiles, verifier, prefStore, contentStore, tierOf)

	g := gate.New(tenants, users, profiles, cfg.Platform.LogoutPath, cfg.Platform.LogoutURL)

	requireTier := func(ctx context.Context, userID int64, min plan.Tier) error {
		return plan.Require(ctx, db, userID, min)
	}
	settings := api.New(profiles, prefStore, verifier, requireTier,
		reserved.NewSet(cfg.Platform.ReservedNames))

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(requestinfo.Enrich)
		r.Use(g.Middleware)

		r.Mount("/api/settings", settings.Routes())

		r.Get(cfg.Platform.LogoutPath, func(w http.ResponseWriter, req *http.Request) {
			session.Clear(w, req)
			http.Redirect(w, req, cfg.Platform.LogoutURL, http.StatusFound)
		})

		// Catch-all: matched tenants get their render context, everything
		// else reaching this point is the platform landing page.
		r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
			if res, ok := gate.ResolutionFrom(req.Context()); ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				if err := json.NewEncoder(w).Encode(res.Render); err != nil {
					zap.S().Errorw("render context encode", "err", err)
				}
				return
			}
			serveLanding(w)
		})
	})

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
}

// serveLanding writes the static marketing page shown on the bare root of
// an unmatched host.
func serveLanding(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html>
<html><head><title>Folio</title></head>
<body><h1>Folio</h1><p>Build your portfolio site, on your own domain.</p></body></html>
`))
}
