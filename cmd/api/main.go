// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusconnect/backend/internal/config"
	"github.com/campusconnect/backend/internal/seed"
	"github.com/campusconnect/backend/internal/server"
	"github.com/campusconnect/backend/internal/session"
	"github.com/campusconnect/backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "CampusConnect backend API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the demo admin account and sample events",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context())
			},
		},
	)
	return root
}

// setup は設定・ロガー・ストアを初期化します。
func setup(ctx context.Context) (*config.Config, zerolog.Logger, store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, logger, nil, fmt.Errorf("open store: %w", err)
	}
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("database connected")
	return cfg, logger, st, nil
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, st, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeWithTimeout(logger, "store", st.Close)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDB を使う場合はセッションも同じ接続を共有する
	var sessionDB *mongo.Database
	if ms, ok := st.(*store.MongoStore); ok {
		sessionDB = ms.Database()
	}
	sessions, err := session.Open(ctx, cfg, sessionDB)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer closeWithTimeout(logger, "session store", sessions.Close)

	router := server.New(cfg, st, sessions.Store, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("mode", cfg.GinMode).
			Str("session_store", cfg.SessionStore).
			Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSeed(ctx context.Context) error {
	cfg, logger, st, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeWithTimeout(logger, "store", st.Close)

	if err := seed.NewSeeder(st, cfg.BcryptCost).Run(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info().Msg("seeded")
	return nil
}

func closeWithTimeout(logger zerolog.Logger, name string, closeFn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		logger.Warn().Err(err).Str("component", name).Msg("close failed")
	}
}
