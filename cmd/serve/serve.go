// Package serve implements the HTTP server command for the claim service.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/certifiedsliders/resultclaims/internal/api"
	"github.com/certifiedsliders/resultclaims/internal/audit"
	"github.com/certifiedsliders/resultclaims/internal/claims"
	"github.com/certifiedsliders/resultclaims/internal/config"
	"github.com/certifiedsliders/resultclaims/internal/crossref"
	"github.com/certifiedsliders/resultclaims/internal/database"
	"github.com/certifiedsliders/resultclaims/internal/fetcher"
	"github.com/certifiedsliders/resultclaims/internal/identity"
	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/proof"
	"github.com/certifiedsliders/resultclaims/internal/review"
	"github.com/certifiedsliders/resultclaims/internal/session"
)

const (
	defaultShutdownTimeout = 30 * time.Second

	// tokenReapSchedule removes expired unconsumed claim tokens.
	tokenReapSchedule = "@every 5m"
)

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the claim service HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	redisClient, err := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	sessions := session.NewRedisStore(redisClient)

	identities := database.NewIdentityRepository(db)
	tokens := database.NewTokenRepository(db)
	resultRepo := database.NewResultRepository(db)
	submissions := database.NewSubmissionRepository(db)

	pageFetcher := fetcher.New(fetcher.Config{
		Timeout:      cfg.Fetcher.Timeout,
		MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
		UserAgent:    cfg.Fetcher.UserAgent,
		AllowedHosts: cfg.Fetcher.AllowedHosts,
	})

	auditor := audit.NewRecorder(submissions, log)

	orchestrator := claims.NewOrchestrator(claims.Config{
		Fetcher:   pageFetcher,
		Resolver:  identity.NewResolver(identities, log),
		Parsers:   proof.NewRegistry(),
		Validator: crossref.NewValidator(pageFetcher, log),
		Tokens:    tokens,
		Results:   resultRepo,
		Auditor:   auditor,
		Policy: review.Policy{
			AcceptThreshold:     cfg.Review.AcceptThreshold,
			ContextMatchPenalty: cfg.Review.ContextMatchPenalty,
		},
		TokenTTL: cfg.Review.TokenTTL,
		Logger:   log,
	})

	intake := claims.NewManualIntake(resultRepo, auditor, log)

	router := api.SetupRouter(log, sessions, api.Handlers{
		Claims:      api.NewClaimsHandler(orchestrator),
		Manual:      api.NewManualHandler(intake),
		Submissions: api.NewSubmissionsHandler(submissions),
	})

	reaper := startTokenReaper(tokens, log)
	defer reaper.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logger.String("addr", srv.Addr))
		if serveErr := srv.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		log.Info("shutting down", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// startTokenReaper schedules periodic cleanup of expired claim tokens.
func startTokenReaper(tokens *database.TokenRepository, log logger.Interface) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc(tokenReapSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reaped, reapErr := tokens.ReapExpired(ctx)
		if reapErr != nil {
			log.Warn("token reap failed", logger.Error(reapErr))
			return
		}
		if reaped > 0 {
			log.Debug("reaped expired tokens", logger.Int64("count", reaped))
		}
	})
	if err != nil {
		log.Warn("failed to schedule token reaper", logger.Error(err))
	}

	c.Start()
	return c
}
