package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/heartmarshall/myenglish-exercises/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-exercises/internal/adapter/postgres/attempt"
	"github.com/heartmarshall/myenglish-exercises/internal/adapter/postgres/sentence"
	"github.com/heartmarshall/myenglish-exercises/internal/adapter/postgres/vocabulary"
	"github.com/heartmarshall/myenglish-exercises/internal/adapter/provider/llm"
	"github.com/heartmarshall/myenglish-exercises/internal/auth"
	"github.com/heartmarshall/myenglish-exercises/internal/config"
	"github.com/heartmarshall/myenglish-exercises/internal/dataloader"
	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/service/exercise"
	"github.com/heartmarshall/myenglish-exercises/internal/service/sentencegen"
	"github.com/heartmarshall/myenglish-exercises/internal/service/supply"
	"github.com/heartmarshall/myenglish-exercises/internal/transport/middleware"
	"github.com/heartmarshall/myenglish-exercises/internal/transport/rest"
)

const rateLimitPruneInterval = time.Minute

// generator is what the supply pipeline calls on a store miss.
type generator interface {
	GenerateAndPersist(ctx context.Context, item domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error)
}

// Run is the application entry point. It loads configuration, connects to
// the database, wires services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	version := BuildVersion()

	logger.Info("starting application",
		slog.String("version", version),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("generator_enabled", cfg.Generator.Enabled()),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := migrate(ctx, logger, pool); err != nil {
			return err
		}
	}

	// Repositories.
	sentenceRepo := sentence.New(pool)
	attemptRepo := attempt.New(pool)
	vocabRepo := vocabulary.New(pool)
	txm := postgres.NewTxManager(pool)

	// Services.
	store := dataloader.NewSentenceStore(sentenceRepo, dataloader.Config{
		Wait:          cfg.Supply.BatchWait,
		BatchCapacity: cfg.Supply.BatchCapacity,
	})

	var gen generator
	if cfg.Generator.Enabled() {
		p := llm.NewProvider(logger, llm.Config{
			APIKey:     cfg.Generator.APIKey,
			Model:      cfg.Generator.Model,
			MaxTokens:  cfg.Generator.MaxTokens,
			Timeout:    cfg.Generator.Timeout,
			MaxRetries: cfg.Generator.MaxRetries,
			BaseURL:    cfg.Generator.BaseURL,
		})
		gen = sentencegen.NewService(logger, sentenceRepo, txm, p)
	}

	supplySvc, err := supply.NewService(logger, store, gen, supply.Config{
		PrefetchDepth:       cfg.Supply.PrefetchDepth,
		PrefetchConcurrency: cfg.Supply.PrefetchConcurrency,
		SharedCacheSize:     cfg.Supply.SharedCacheSize,
		ResolveTimeout:      cfg.Supply.ResolveTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supply service: %w", err)
	}

	content := func(items []domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) exercise.ContentSession {
		return supplySvc.NewSession(items, dir, kind)
	}

	exerciseSvc := exercise.NewService(logger, vocabRepo, attemptRepo, content, exercise.Config{
		TTL:              cfg.Session.TTL,
		SweepInterval:    cfg.Session.SweepInterval,
		MaxItems:         cfg.Session.MaxItems,
		HintCap:          cfg.Puzzle.HintCap,
		PrefillThreshold: cfg.Puzzle.PrefillThreshold,
		PrefillRatio:     cfg.Puzzle.PrefillRatio,
	})

	// Transport.
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.StartsPerMinute)

	mux := rest.NewRouter(rest.Routes{
		Health:     rest.NewHealthHandler(pool, exerciseSvc, version),
		Exercise:   rest.NewExerciseHandler(exerciseSvc, logger),
		API:        middleware.Auth(verifier),
		StartLimit: limiter.Limit(),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	go exerciseSvc.Run(bgCtx)
	go limiter.Run(bgCtx, rateLimitPruneInterval)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.String("error", err.Error()))
	}
	stopBackground()

	// Attempt records and prefetches still in flight get to finish before the
	// pool goes away.
	exerciseSvc.Wait()
	supplySvc.Wait()

	logger.Info("stopped")
	return nil
}

func migrate(ctx context.Context, logger *slog.Logger, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.Info("migrations applied", slog.Int("count", len(applied)))
	return nil
}
