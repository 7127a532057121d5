package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"zakazadmin/internal/api"
	"zakazadmin/internal/cache"
	"zakazadmin/internal/catalog"
	"zakazadmin/internal/config"
	"zakazadmin/internal/database"
	"zakazadmin/internal/handlers"
	"zakazadmin/internal/metrics"
	"zakazadmin/internal/middleware"
	"zakazadmin/internal/render"
	"zakazadmin/internal/router"
	"zakazadmin/internal/session"
	"zakazadmin/internal/staff"
	"zakazadmin/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"api_url", cfg.APIURL,
		"category_cascade", cfg.CategoryCascade,
		"session_backend", cfg.SessionBackend,
		"audit", cfg.AuditEnabled,
	)

	m := metrics.New("zakazadmin")
	client := api.New(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, m)

	// Session store: Valkey in deployments, process memory for local runs.
	secureCookies := !cfg.IsDev()
	var backend session.Backend
	switch cfg.SessionBackend {
	case config.SessionMemory:
		slog.Warn("sessions are kept in memory and lost on restart")
		backend = session.Memory()
	default:
		valkeyClient, err := cache.ConnectValkey(ctx, cache.Options{
			Addr:     cfg.ValkeyAddr(),
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
		})
		if err != nil {
			return fmt.Errorf("connect to valkey: %w", err)
		}
		defer valkeyClient.Close()
		backend = session.Valkey(valkeyClient)
	}
	sessionStore := session.NewStore(backend, secureCookies)

	// Mutations are counted always and recorded in PostgreSQL when the
	// audit log is enabled.
	journal := catalog.Journals{
		catalog.JournalFunc(func(_ context.Context, entity, action string, _ int64) {
			m.Mutation(entity, action)
		}),
	}
	var audit handlers.AuditLog
	if cfg.AuditEnabled {
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		auditStore := store.NewAuditStore(db)
		journal = append(journal, auditStore)
		audit = auditStore
	}

	renderer, err := render.New(language.Uzbek)
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	adminHandlers := handlers.NewAdmin(renderer, client,
		catalog.NewCategoryService(client, cfg.CategoryCascade, journal),
		catalog.NewProductService(client, journal),
		staff.New(client, journal),
		journal, audit,
	)

	rl := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	defer rl.Stop()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(sessionStore, adminHandlers, m, rl, secureCookies),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
