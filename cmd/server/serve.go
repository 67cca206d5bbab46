package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rar_kit/internal/config"
	"rar_kit/internal/logger"
	"rar_kit/internal/middleware"
)

func newServeCmd(configPath *string) *cobra.Command {
	var connect bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath, connect)
		},
	}
	cmd.Flags().BoolVar(&connect, "connect", false, "connect to the bike on startup")
	return cmd
}

func serve(ctx context.Context, configPath string, connect bool) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize structured logging
	logger.Setup(cfg.Server.LogFile, cfg.Server.LogLevel)
	middleware.SetSecret(cfg.Server.JWTSecret)
	gin.SetMode(gin.ReleaseMode)

	// Connect to the database
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return err
	}

	a := newApp(ctx, cfg, db)
	defer a.close()

	if connect {
		if err := a.bike.Connect(ctx); err != nil {
			return err
		}
	}

	// CORS wraps the whole router so preflights never reach gin.
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           middleware.CORS(cfg.Server.CORSOrigins)(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.Server.Addr).Info("Server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
