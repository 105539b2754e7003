package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/goatkit/ganttcalendar/internal/api"
	"github.com/goatkit/ganttcalendar/internal/auth"
	"github.com/goatkit/ganttcalendar/internal/database"
	"github.com/goatkit/ganttcalendar/internal/ganttcalendar"
	"github.com/goatkit/ganttcalendar/internal/metrics"
	"github.com/goatkit/ganttcalendar/internal/plugin"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	host := plugin.NewSQLHostAPI(
		plugin.WithDB(database.NewQuerier(db, db.DriverName())),
		plugin.WithLogger(logger),
		plugin.WithConfig(vcfg),
	)

	m := metrics.Global()
	mgr := plugin.NewManager(host)
	mgr.SetObserver(m)
	if err := mgr.Register(ctx, ganttcalendar.New()); err != nil {
		return fmt.Errorf("failed to register ganttcalendar: %w", err)
	}

	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret is empty, tokens will not survive a restart")
	}

	renderer, err := api.NewRenderer(cfg.Server.TemplatesDir, !cfg.Production(), logger)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(api.RouterConfig{
		Manager:   mgr,
		Host:      host,
		Renderer:  renderer,
		Tokens:    tokens,
		Metrics:   m,
		Gatherer:  prometheus.DefaultGatherer,
		Logger:    logger,
		StaticDir: cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.Server.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := mgr.ShutdownAll(shutdownCtx); err != nil {
		logger.Error("plugin shutdown error", "error", err)
	}
	return nil
}
