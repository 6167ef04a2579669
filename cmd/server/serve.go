package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"leadcaller/internal/database"
	"leadcaller/internal/handlers"
	"leadcaller/internal/middleware"
	"leadcaller/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the per-minute call trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cc *commandContext) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log := cc.cfg, cc.log
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	st, closeStore, err := database.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	emailService, err := services.NewEmailService(cfg.Email)
	if err != nil {
		return err
	}
	calls := services.NewCallClient(cfg.Bland, nil)
	loc := cfg.Location()

	meetings := services.NewMeetingService(st, calls, loc, log)
	progress := services.NewProgressService(st, log)

	trigger := services.NewCallTrigger(st, calls, loc, log)
	if err := trigger.Start(ctx); err != nil {
		return err
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.RunCleanup(ctx.Done())
	}

	router := handlers.NewRouter(handlers.New(meetings, progress, emailService, log), handlers.RouterOptions{
		Log:            log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Limiter:        limiter,
		AdminJWTSecret: cfg.AdminJWTSecret,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			<-trigger.Stop().Done()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	select {
	case <-trigger.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("call trigger still running at shutdown")
	}
	return nil
}
