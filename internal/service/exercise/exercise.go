package exercise

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
	"github.com/heartmarshall/myenglish-exercises/internal/service/supply"
	"github.com/heartmarshall/myenglish-exercises/pkg/ctxutil"
)

// Start creates a session for the caller. Items come from the input or, when
// a lesson id is given, from the lesson in lesson order.
func (s *Service) Start(ctx context.Context, input StartInput) (*SessionInfo, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(s.cfg.MaxItems); err != nil {
		return nil, err
	}

	items := input.Items
	if input.LessonID != uuid.Nil {
		var err error
		items, err = s.vocab.ListByLesson(ctx, input.LessonID)
		if err != nil {
			return nil, fmt.Errorf("list lesson items: %w", err)
		}
		if len(items) > s.cfg.MaxItems {
			items = items[:s.cfg.MaxItems]
		}
	}

	sess := &session{
		id:       uuid.New(),
		userID:   userID,
		dir:      input.Direction,
		kind:     input.Kind,
		content:  s.content(items, input.Direction, input.Kind),
		index:    -1,
		outcomes: make(map[int]bool, len(items)),
	}
	sess.touch(s.now())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.InfoContext(ctx, "exercise session started",
		slog.String("session_id", sess.id.String()),
		slog.String("kind", input.Kind.String()),
		slog.String("direction", input.Direction.String()),
		slog.Int("items", len(items)),
	)

	return &SessionInfo{ID: sess.id, Direction: sess.dir, Kind: sess.kind, Total: len(items)}, nil
}

// Open resolves the content of item index and builds a fresh puzzle for it,
// discarding the previous one. The hint budget starts over.
func (s *Service) Open(ctx context.Context, sessionID uuid.UUID, index int) (*View, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, ok := sess.content.Item(index)
	if !ok {
		return nil, domain.NewValidationError("index", "out of range")
	}

	// Resolved without the session lock; generation can take seconds.
	content, err := sess.content.Resolve(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("resolve item %d: %w", index, err)
	}

	p, err := s.buildPuzzle(sess.kind, sess.dir, content)
	if err != nil {
		s.log.WarnContext(ctx, "unusable content, using fallback",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()),
		)
		content = supply.Fallback(item.ID, sess.dir, sess.kind)
		if p, err = s.buildPuzzle(sess.kind, sess.dir, content); err != nil {
			return nil, fmt.Errorf("build fallback puzzle: %w", err)
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.index = index
	sess.item = item
	sess.current = content
	sess.puzzle = p
	sess.submitted = false

	v := sess.view()
	v.Changed = true
	return v, nil
}

func (s *Service) buildPuzzle(kind domain.ExerciseKind, dir domain.Direction, c *domain.SentenceContent) (*puzzle.Puzzle, error) {
	distorted := ""
	if kind == domain.ExerciseKindFindError {
		distorted = c.SentenceText
	}
	return puzzle.New(kind, distorted, c.Correct(), s.puzzleOptions(dir))
}

// Move transfers a token to a pool or a target slot. A move that breaks the
// zone rules leaves the puzzle unchanged and is not an error.
func (s *Service) Move(ctx context.Context, sessionID uuid.UUID, input MoveInput) (*View, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.withPuzzle(ctx, sessionID, func(sess *session) (*View, error) {
		changed := !sess.submitted && sess.puzzle.Move(input.TokenID, input.location())
		v := sess.view()
		v.Changed = changed
		return v, nil
	})
}

// PickUp starts dragging a token.
func (s *Service) PickUp(ctx context.Context, sessionID, tokenID uuid.UUID) (*View, error) {
	return s.withPuzzle(ctx, sessionID, func(sess *session) (*View, error) {
		changed := !sess.submitted && sess.puzzle.PickUp(tokenID)
		v := sess.view()
		v.Changed = changed
		return v, nil
	})
}

// DropOn ends the current drag on a zone. slot applies to the target row.
func (s *Service) DropOn(ctx context.Context, sessionID uuid.UUID, zone puzzle.Zone, slot int) (*View, error) {
	if !validZone(zone) {
		return nil, domain.NewValidationError("zone", "must be TARGET, SOURCE, UNUSED or AVAILABLE")
	}
	return s.withPuzzle(ctx, sessionID, func(sess *session) (*View, error) {
		changed := !sess.submitted && sess.puzzle.DropOn(zone, slot)
		v := sess.view()
		v.Changed = changed
		return v, nil
	})
}

// Cancel abandons the current drag.
func (s *Service) Cancel(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	return s.withPuzzle(ctx, sessionID, func(sess *session) (*View, error) {
		sess.puzzle.Cancel()
		return sess.view(), nil
	})
}

// Hint places or corrects tokens on the open puzzle, within its budget.
func (s *Service) Hint(ctx context.Context, sessionID uuid.UUID) (*HintView, error) {
	var res puzzle.HintResult
	v, err := s.withPuzzle(ctx, sessionID, func(sess *session) (*View, error) {
		if !sess.submitted {
			res = sess.puzzle.Hint()
		}
		v := sess.view()
		v.Changed = res.Applied
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return &HintView{View: *v, Slots: res.Slots}, nil
}

// Submit checks the built sentence against the expected one and records the
// attempt in the background. The puzzle must be filled; a submitted puzzle
// accepts no further gestures until the next Open.
func (s *Service) Submit(ctx context.Context, sessionID uuid.UUID) (*SubmitResult, error) {
	var out *SubmitResult
	_, err := s.withPuzzle(ctx, sessionID, func(sess *session) (*View, error) {
		if sess.submitted {
			return nil, fmt.Errorf("item %d already submitted: %w", sess.index, domain.ErrConflict)
		}
		if !sess.puzzle.IsFilled() {
			return nil, domain.NewValidationError("answer", "puzzle is not filled")
		}

		sess.submitted = true
		correct := sess.puzzle.CheckSentence()
		sess.outcomes[sess.index] = correct

		s.record(ctx, &domain.Attempt{
			ID:            uuid.New(),
			UserID:        sess.userID,
			ItemID:        sess.item.ID,
			Kind:          sess.kind,
			Dir:           sess.dir,
			UserAnswer:    sess.puzzle.Answer(),
			CorrectAnswer: sess.puzzle.Correct(),
			WasCorrect:    correct,
			CreatedAt:     s.now().UTC(),
		})

		out = &SubmitResult{
			View:          *sess.view(),
			Correct:       correct,
			Answer:        sess.puzzle.Answer(),
			CorrectAnswer: sess.puzzle.Correct(),
			ErrorWord:     sess.current.MissingOrErrorWord,
			Explanation:   sess.current.Explanation,
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the current view of the session.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Finish closes the session and returns its tally.
func (s *Service) Finish(ctx context.Context, sessionID uuid.UUID) (*Summary, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sum := &Summary{SessionID: sess.id, Total: sess.content.Len(), Attempted: len(sess.outcomes)}
	for _, ok := range sess.outcomes {
		if ok {
			sum.Correct++
		}
	}

	s.log.InfoContext(ctx, "exercise session finished",
		slog.String("session_id", sess.id.String()),
		slog.Int("attempted", sum.Attempted),
		slog.Int("correct", sum.Correct),
	)
	return sum, nil
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History returns the caller's most recent attempts, newest first. A zero
// limit means the default page size.
func (s *Service) History(ctx context.Context, limit int) ([]domain.Attempt, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if limit < 0 || limit > maxHistoryLimit {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("must be between 0 and %d", maxHistoryLimit))
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	attempts, err := s.attempts.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
