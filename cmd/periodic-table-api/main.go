// main is the entry point of the Periodic Table API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database, seed starter elements
//  4. Build the auth layer (token manager + middleware)
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	JWT_SECRET=change-me go run ./cmd/periodic-table-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml JWT_SECRET=change-me go run ./cmd/periodic-table-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EnderPico/TabelaPeriodica/internal/auth"
	"github.com/EnderPico/TabelaPeriodica/internal/config"
	"github.com/EnderPico/TabelaPeriodica/internal/http/handlers/element"
	"github.com/EnderPico/TabelaPeriodica/internal/http/handlers/user"
	"github.com/EnderPico/TabelaPeriodica/internal/http/middleware"
	"github.com/EnderPico/TabelaPeriodica/internal/storage/sqlite"
	"github.com/EnderPico/TabelaPeriodica/internal/utils/response"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad reads the YAML config and panics if anything is wrong.
	// The name "Must" signals: if this returns, config is guaranteed valid.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// slog is Go's structured logger (stdlib since Go 1.21).
	// Structured logging writes key=value pairs rather than plain strings,
	// making logs easy to filter/search in tools like Loki or Datadog.
	log := setupLogger(cfg.Env)

	log.Info("starting periodic-table-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// sqlite.New opens the SQLite file and creates the elements and users
	// tables. We use the result through the storage interfaces, so the
	// rest of the code never knows it is talking to SQLite.
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1) // non-zero exit code signals failure to the OS / CI system
	}

	// Seed Hydrogen and Helium on a fresh database so the API has
	// something to serve immediately. A non-empty table is left alone.
	if err := storage.InitSampleData(); err != nil {
		log.Error("failed to seed sample data",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	// ── 4. Build the Auth Layer ───────────────────────────────────────────
	// The token manager holds the process-wide signing secret for the
	// whole process lifetime. The middleware composes it with the user
	// store so every protected request re-resolves its caller.
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	authMW := middleware.New(tokens, storage)

	// admin wraps a handler in the full protection chain:
	// Authenticate (401 on any token problem) → RequireAdmin (403).
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(authMW.RequireAdmin(h))
	}

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	// http.NewServeMux() creates an empty router.
	// Go 1.22+ patterns combine METHOD, path, and {wildcards}.
	//
	// Route table:
	//   GET    /health             → liveness probe            (public)
	//   GET    /elements           → list all elements         (public)
	//   GET    /elements/{symbol}  → one element, any case     (public)
	//   POST   /register           → create an account         (public)
	//   POST   /login              → issue an access token     (public)
	//   POST   /elements           → create an element         (admin)
	//   PUT    /elements/{symbol}  → partially update          (admin)
	//   DELETE /elements/{symbol}  → delete                    (admin)
	router := http.NewServeMux()

	router.HandleFunc("GET /health", healthCheck)
	router.HandleFunc("GET /elements", element.GetList(storage))
	router.HandleFunc("GET /elements/{symbol}", element.GetBySymbol(storage))
	router.HandleFunc("POST /register", user.Register(storage))
	router.HandleFunc("POST /login", user.Login(storage, tokens))

	router.Handle("POST /elements", admin(element.New(storage)))
	router.Handle("PUT /elements/{symbol}", admin(element.Update(storage)))
	router.Handle("DELETE /elements/{symbol}", admin(element.Delete(storage)))

	// ── 6. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr, // e.g. "localhost:8000"
		Handler: router,              // every request goes through our router

		// Production hardening — set timeouts to prevent slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 7. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks forever. If we called it here in main(), the
	// graceful-shutdown code below would never run.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 8. Wait for Shutdown Signal ───────────────────────────────────────
	// Buffered channel of size 1 so we don't miss the signal if main is
	// briefly busy.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	// context.WithTimeout gives the shutdown a 5-second deadline.
	// If in-flight requests don't finish within 5 seconds,
	// the context cancels and Shutdown returns an error.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// healthCheck handles GET /health — a cheap liveness probe for monitors
// and container orchestrators. It touches nothing, not even the DB.
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "API is running",
	})
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
//
//	JSON logs are easy to ingest by log aggregators (Loki, CloudWatch, etc.)
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo, // INFO and above in production
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug, // more verbose in staging
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug, // all levels in development
			}),
		)
	}
}
