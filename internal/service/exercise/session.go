package exercise

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
	"github.com/heartmarshall/myenglish-exercises/pkg/ctxutil"
)

// session is one exercise run. mu serialises gestures on the open puzzle.
type session struct {
	id      uuid.UUID
	userID  uuid.UUID
	dir     domain.Direction
	kind    domain.ExerciseKind
	content ContentSession

	lastSeen atomic.Int64 // unix nanos

	mu        sync.Mutex
	index     int
	item      domain.VocabItem
	current   *domain.SentenceContent
	puzzle    *puzzle.Puzzle
	submitted bool
	outcomes  map[int]bool
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// view builds the current view. Callers hold mu.
func (s *session) view() *View {
	v := &View{
		SessionID: s.id,
		Index:     s.index,
		Total:     s.content.Len(),
		ItemID:    s.item.ID,
		Word:      s.item.Word(s.dir),
		Submitted: s.submitted,
	}
	if s.current != nil {
		v.Translation = s.current.Translation
		v.Fallback = s.current.Fallback
	}
	if s.puzzle != nil {
		v.Puzzle = s.puzzle.Snapshot()
		v.Holding, _ = s.puzzle.Holding()
	}
	return v
}

// lookup returns the caller's session. Sessions of other users are reported
// as not found.
func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*session, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok || sess.userID != userID {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	sess.touch(s.now())
	return sess, nil
}

// withPuzzle runs fn on the open puzzle under the session lock.
func (s *Service) withPuzzle(ctx context.Context, id uuid.UUID, fn func(sess *session) (*View, error)) (*View, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.puzzle == nil {
		return nil, domain.NewValidationError("index", "no exercise is open")
	}
	return fn(sess)
}
