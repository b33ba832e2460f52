package exercise

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type vocabularyRepo interface {
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.VocabItem, error)
}

type attemptStore interface {
	Record(ctx context.Context, a *domain.Attempt) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error)
}

// ContentSession supplies sentence content for the items of one exercise
// run. Implementations must be safe for concurrent use.
type ContentSession interface {
	Len() int
	Item(i int) (domain.VocabItem, bool)
	Resolve(ctx context.Context, i int) (*domain.SentenceContent, error)
}

// ContentSource starts a content session over an ordered item list.
type ContentSource func(items []domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) ContentSession

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

const recordTimeout = 5 * time.Second

// Config holds session limits and puzzle parameters.
type Config struct {
	TTL              time.Duration
	SweepInterval    time.Duration
	MaxItems         int
	HintCap          int
	PrefillThreshold int
	PrefillRatio     float64
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.MaxItems <= 0 {
		c.MaxItems = 50
	}
	return c
}

// Service runs exercise sessions. Sessions live in memory only and belong to
// the user that started them.
type Service struct {
	log      *slog.Logger
	vocab    vocabularyRepo
	attempts attemptStore
	content  ContentSource
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	wg sync.WaitGroup
}

// NewService creates an exercise service.
func NewService(
	logger *slog.Logger,
	vocab vocabularyRepo,
	attempts attemptStore,
	content ContentSource,
	cfg Config,
) *Service {
	return &Service{
		log:      logger.With("service", "exercise"),
		vocab:    vocab,
		attempts: attempts,
		content:  content,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Run expires idle sessions until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.InfoContext(ctx, "expired idle sessions", slog.Int("count", n))
			}
		}
	}
}

// Wait blocks until pending attempt records are written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) sweep() int {
	cutoff := s.now().Add(-s.cfg.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Service) puzzleOptions(dir domain.Direction) puzzle.Options {
	return puzzle.Options{
		Direction:        dir,
		HintCap:          s.cfg.HintCap,
		PrefillThreshold: s.cfg.PrefillThreshold,
		PrefillRatio:     s.cfg.PrefillRatio,
		Logger:           s.log,
	}
}

// record writes the attempt in the background. Failures are logged only.
func (s *Service) record(ctx context.Context, a *domain.Attempt) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()

		if err := s.attempts.Record(ctx, a); err != nil {
			s.log.WarnContext(ctx, "record attempt failed",
				slog.String("item_id", a.ItemID.String()),
				slog.String("error", err.Error()),
			)
		}
	}()
}
