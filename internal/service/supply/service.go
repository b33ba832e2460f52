package supply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

type contentStore interface {
	FetchStored(ctx context.Context, itemID uuid.UUID, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error)
}

type contentGenerator interface {
	GenerateAndPersist(ctx context.Context, item domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error)
}

// Config tunes the supply pipeline. A negative PrefetchDepth disables
// prefetching.
type Config struct {
	PrefetchDepth       int
	PrefetchConcurrency int
	SharedCacheSize     int
	ResolveTimeout      time.Duration
}

func (c Config) withDefaults() Config {
	switch {
	case c.PrefetchDepth == 0:
		c.PrefetchDepth = 3
	case c.PrefetchDepth < 0:
		c.PrefetchDepth = 0
	}
	if c.PrefetchConcurrency <= 0 {
		c.PrefetchConcurrency = 4
	}
	if c.SharedCacheSize <= 0 {
		c.SharedCacheSize = 1024
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = 30 * time.Second
	}
	return c
}

type sharedKey struct {
	itemID uuid.UUID
	dir    domain.Direction
	kind   domain.ExerciseKind
}

// Service resolves sentence content for exercise sessions: stored content
// first, then the generator, then a fixed fallback. Resolved content is
// shared across sessions through a bounded LRU; fallbacks are never shared.
type Service struct {
	log    *slog.Logger
	store  contentStore
	gen    contentGenerator
	cfg    Config
	shared *lru.Cache[sharedKey, *domain.SentenceContent]
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

// NewService creates a supply service. gen may be nil when generation is
// disabled; items without stored content then get the fallback.
func NewService(logger *slog.Logger, store contentStore, gen contentGenerator, cfg Config) (*Service, error) {
	cfg = cfg.withDefaults()

	shared, err := lru.New[sharedKey, *domain.SentenceContent](cfg.SharedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create shared cache: %w", err)
	}

	return &Service{
		log:    logger.With("service", "supply"),
		store:  store,
		gen:    gen,
		cfg:    cfg,
		shared: shared,
		sem:    semaphore.NewWeighted(int64(cfg.PrefetchConcurrency)),
	}, nil
}

// Wait blocks until background prefetches have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// resolveItem never fails: every error path ends in fallback content.
func (s *Service) resolveItem(ctx context.Context, item domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) *domain.SentenceContent {
	key := sharedKey{itemID: item.ID, dir: dir, kind: kind}
	if c, ok := s.shared.Get(key); ok {
		return c
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ResolveTimeout)
	defer cancel()

	stored, err := s.store.FetchStored(ctx, item.ID, dir, kind)
	switch {
	case err == nil && stored != nil:
		s.shared.Add(key, stored)
		return stored
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		s.log.WarnContext(ctx, "fetch stored content failed",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	if s.gen == nil {
		return Fallback(item.ID, dir, kind)
	}

	generated, err := s.gen.GenerateAndPersist(ctx, item, dir, kind)
	if err == nil && generated != nil {
		s.shared.Add(key, generated)
		return generated
	}
	if err != nil {
		s.log.WarnContext(ctx, "generate content failed, using fallback",
			slog.String("item_id", item.ID.String()),
			slog.String("direction", dir.String()),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
	}

	return Fallback(item.ID, dir, kind)
}
