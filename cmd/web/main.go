// cmd/web/main.go
//
// Conduct – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load configuration (conf/.env → conf/conduct.yaml → CONDUCT_* env,
//     with vault: references resolved).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Build the session store the config asks for (signed cookie, or SQL
//     rows keyed by a uuid cookie).
//
//  4. Build the template resolver and the pages component.
//
//  5. Mount everything on chi: request-id → recover → [force-https] →
//     component routes, plus the Prometheus /metrics endpoint.
//
//  6. Serve with hardened timeouts; SIGINT/SIGTERM drain via errgroup.
//
// Large comment blocks are framed by blank “//” lines; inline comments
// use a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/conduct/components/pages"
	"github.com/yanizio/conduct/internal/config"
	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/database"
	"github.com/yanizio/conduct/internal/logger"
	"github.com/yanizio/conduct/internal/middleware"
	"github.com/yanizio/conduct/internal/server"
	"github.com/yanizio/conduct/internal/session"
	"github.com/yanizio/conduct/internal/view"
	"github.com/yanizio/conduct/internal/webserve"
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
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Session store ───────────────────────────────────────────────
	//
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	if ttl == 0 {
		ttl = 14 * 24 * time.Hour
	}

	var store session.Store
	switch cfg.Session.Backend {
	case "sql":
		db, err := database.Open(cfg.Session.DSN)
		if err != nil {
			logOut.Fatalw("connect session DB", "err", err)
		}
		defer db.Close()
		store = session.NewSQLStore(db, cfg.Session.CookieName, ttl)
		logOut.Infow("session store online", "backend", "sql")
	default:
		store = session.NewCookieStore(cfg.Session.CookieName, []byte(cfg.Session.SigningKey), ttl)
		logOut.Infow("session store online", "backend", "cookie")
	}

	//
	// ── 2.  View engine and components ──────────────────────────────────
	//
	resolver := view.New(filepath.Join(cfg.Paths.Root, cfg.View.TemplateDir))

	formats := make([]core.Format, 0, len(cfg.View.Formats))
	for _, f := range cfg.View.Formats {
		formats = append(formats, core.Format(f))
	}

	adapter := webserve.New(store)

	pagesComp, err := pages.New(resolver, formats, cfg.View.DefaultLayout)
	if err != nil {
		logOut.Fatalw("build pages component", "err", err)
	}

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover)

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", pagesComp.Routes(adapter))

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler, server.Timeouts{
		Read:  time.Duration(cfg.HTTP.ReadTimeoutSecs) * time.Second,
		Write: time.Duration(cfg.HTTP.WriteTimeoutSecs) * time.Second,
		Idle:  time.Duration(cfg.HTTP.IdleTimeoutSecs) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Infow("bye")
}
