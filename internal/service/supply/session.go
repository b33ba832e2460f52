package supply

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

// Session is the content cache of one exercise run. Each index is resolved
// at most once; concurrent callers for the same index share one resolution.
type Session struct {
	svc   *Service
	items []domain.VocabItem
	dir   domain.Direction
	kind  domain.ExerciseKind

	mu       sync.RWMutex
	resolved map[int]*domain.SentenceContent
	inflight singleflight.Group
}

// NewSession starts a content session over an ordered list of items.
func (s *Service) NewSession(items []domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) *Session {
	return &Session{
		svc:      s,
		items:    items,
		dir:      dir,
		kind:     kind,
		resolved: make(map[int]*domain.SentenceContent, len(items)),
	}
}

// Len returns the number of items in the session.
func (s *Session) Len() int { return len(s.items) }

// Item returns the vocabulary item at index i.
func (s *Session) Item(i int) (domain.VocabItem, bool) {
	if i < 0 || i >= len(s.items) {
		return domain.VocabItem{}, false
	}
	return s.items[i], true
}

// Resolve returns the content for index i and starts prefetching the next
// few indices. Content already resolved is returned as the same pointer.
// Cancelling ctx abandons the wait, not the resolution, which completes in
// the background and fills the cache.
func (s *Session) Resolve(ctx context.Context, i int) (*domain.SentenceContent, error) {
	if i < 0 || i >= len(s.items) {
		return nil, domain.NewValidationError("index", "out of range")
	}

	s.prefetch(ctx, i)

	if c, ok := s.cached(i); ok {
		return c, nil
	}

	bg := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(strconv.Itoa(i), func() (any, error) {
		return s.load(bg, i), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val.(*domain.SentenceContent), nil
	}
}

// Cached returns the content for index i if it has already been resolved.
func (s *Session) Cached(i int) (*domain.SentenceContent, bool) {
	return s.cached(i)
}

func (s *Session) cached(i int) (*domain.SentenceContent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.resolved[i]
	return c, ok
}

func (s *Session) load(ctx context.Context, i int) *domain.SentenceContent {
	if c, ok := s.cached(i); ok {
		return c
	}
	c := s.svc.resolveItem(ctx, s.items[i], s.dir, s.kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.resolved[i]; ok {
		return existing
	}
	s.resolved[i] = c
	return c
}

// prefetch resolves the indices after i in the background. Failures end in
// fallback content like any other resolution.
func (s *Session) prefetch(ctx context.Context, i int) {
	bg := context.WithoutCancel(ctx)
	last := min(i+s.svc.cfg.PrefetchDepth, len(s.items)-1)
	for j := i + 1; j <= last; j++ {
		if _, ok := s.cached(j); ok {
			continue
		}
		s.svc.wg.Add(1)
		go func(j int) {
			defer s.svc.wg.Done()
			if err := s.svc.sem.Acquire(bg, 1); err != nil {
				return
			}
			defer s.svc.sem.Release(1)
			s.inflight.Do(strconv.Itoa(j), func() (any, error) {
				return s.load(bg, j), nil
			})
		}(j)
	}
}
