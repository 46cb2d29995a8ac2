package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marshallshelly/cultivar/internal/api"
	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/internal/store"
	"github.com/spf13/cobra"
)

var (
	listenAddr  string
	autoMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (overrides LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply the schema before serving")
}

func runServe(ctx context.Context) error {
	cfg, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := models.RegisterAll(); err != nil {
		return fmt.Errorf("failed to register models: %w", err)
	}
	if autoMigrate {
		if err := applySchema(ctx, db); err != nil {
			return err
		}
	}

	addr := cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	server := api.NewServer(api.FromStores(store.New(db)), db, api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo),
	})
	srv := newHTTPServer(addr, server.Routes())

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	slog.Info("starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve returned error: %w", err)
	}

	<-idleConnsClosed
	slog.Info("server stopped")
	return nil
}

// newHTTPServer reports net/http's own errors through the default slog
// logger, so they follow LOG_FORMAT and LOG_FILE.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}
}
