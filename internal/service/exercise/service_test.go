package exercise

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
	"github.com/heartmarshall/myenglish-exercises/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type vocabularyRepoMock struct {
	ListByLessonFunc func(ctx context.Context, lessonID uuid.UUID) ([]domain.VocabItem, error)
}

func (m *vocabularyRepoMock) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.VocabItem, error) {
	return m.ListByLessonFunc(ctx, lessonID)
}

type attemptStoreMock struct {
	mu       sync.Mutex
	err      error
	attempts []domain.Attempt

	ListByUserFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error)
}

func (m *attemptStoreMock) Record(_ context.Context, a *domain.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return m.err
}

func (m *attemptStoreMock) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error) {
	return m.ListByUserFunc(ctx, userID, limit)
}

func (m *attemptStoreMock) recorded() []domain.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Attempt(nil), m.attempts...)
}

type fakeContent struct {
	items    []domain.VocabItem
	contents map[int]*domain.SentenceContent
}

func (f *fakeContent) Len() int { return len(f.items) }

func (f *fakeContent) Item(i int) (domain.VocabItem, bool) {
	if i < 0 || i >= len(f.items) {
		return domain.VocabItem{}, false
	}
	return f.items[i], true
}

func (f *fakeContent) Resolve(_ context.Context, i int) (*domain.SentenceContent, error) {
	return f.contents[i], nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	huis  = domain.VocabItem{ID: uuid.New(), SourceText: "huis", TargetText: "house"}
	fiets = domain.VocabItem{ID: uuid.New(), SourceText: "fiets", TargetText: "bicycle"}
)

func testContent(kind domain.ExerciseKind) map[int]*domain.SentenceContent {
	if kind == domain.ExerciseKindFindError {
		return map[int]*domain.SentenceContent{
			0: {ItemID: huis.ID, Kind: kind, SentenceText: "Ik gaat naar huis.", MissingOrErrorWord: "gaat",
				CorrectText: "Ik ga naar huis.", Explanation: "ik takes ga", Translation: "I go home."},
			1: {ItemID: fiets.ID, Kind: kind, SentenceText: "Zij fietst naar school.", CorrectText: "Zij fietst naar school."},
		}
	}
	return map[int]*domain.SentenceContent{
		0: {ItemID: huis.ID, Kind: kind, SentenceText: "Ik ga naar huis.", Translation: "I go home."},
		1: {ItemID: fiets.ID, Kind: kind, SentenceText: "Mijn fiets is rood."},
	}
}

type fixture struct {
	svc      *Service
	attempts *attemptStoreMock
	vocab    *vocabularyRepoMock
	contents map[int]*domain.SentenceContent
}

func newFixture(t *testing.T, kind domain.ExerciseKind) *fixture {
	t.Helper()

	f := &fixture{
		attempts: &attemptStoreMock{},
		vocab: &vocabularyRepoMock{ListByLessonFunc: func(context.Context, uuid.UUID) ([]domain.VocabItem, error) {
			return []domain.VocabItem{huis, fiets}, nil
		}},
		contents: testContent(kind),
	}
	source := func(items []domain.VocabItem, _ domain.Direction, _ domain.ExerciseKind) ContentSession {
		return &fakeContent{items: items, contents: f.contents}
	}
	f.svc = NewService(slog.New(slog.DiscardHandler), f.vocab, f.attempts, source, Config{})
	return f
}

func userCtx() context.Context {
	return ctxutil.WithUserID(context.Background(), uuid.New())
}

func start(t *testing.T, f *fixture, ctx context.Context, kind domain.ExerciseKind) uuid.UUID {
	t.Helper()
	info, err := f.svc.Start(ctx, StartInput{
		Items:     []domain.VocabItem{huis, fiets},
		Direction: domain.DirectionForward,
		Kind:      kind,
	})
	require.NoError(t, err)
	return info.ID
}

func tokenID(t *testing.T, v *View, text string) uuid.UUID {
	t.Helper()
	for _, pool := range [][]puzzle.Token{v.Puzzle.Source, v.Puzzle.Unused, v.Puzzle.Available} {
		for _, tk := range pool {
			if tk.Text == text {
				return tk.ID
			}
		}
	}
	for _, sv := range v.Puzzle.Slots {
		if sv.Token != nil && sv.Token.Text == text {
			return sv.Token.ID
		}
	}
	t.Fatalf("token %q not found", text)
	return uuid.Nil
}

func place(t *testing.T, f *fixture, ctx context.Context, id uuid.UUID, v *View, words ...string) *View {
	t.Helper()
	for i, w := range words {
		var err error
		v, err = f.svc.Move(ctx, id, MoveInput{TokenID: tokenID(t, v, w), Zone: puzzle.ZoneTarget, Slot: i})
		require.NoError(t, err)
		require.True(t, v.Changed, "placing %q", w)
	}
	return v
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestService_Start(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ctx     context.Context
		input   StartInput
		wantErr error
		total   int
	}{
		{
			name:    "unauthenticated",
			ctx:     context.Background(),
			input:   StartInput{Items: []domain.VocabItem{huis}, Direction: domain.DirectionForward, Kind: domain.ExerciseKindReorder},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "no items",
			ctx:     userCtx(),
			input:   StartInput{Direction: domain.DirectionForward, Kind: domain.ExerciseKindReorder},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "bad kind",
			ctx:     userCtx(),
			input:   StartInput{Items: []domain.VocabItem{huis}, Direction: domain.DirectionForward, Kind: "SPELL"},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "explicit items",
			ctx:   userCtx(),
			input: StartInput{Items: []domain.VocabItem{huis}, Direction: domain.DirectionForward, Kind: domain.ExerciseKindReorder},
			total: 1,
		},
		{
			name:  "lesson",
			ctx:   userCtx(),
			input: StartInput{LessonID: uuid.New(), Direction: domain.DirectionReverse, Kind: domain.ExerciseKindFindError},
			total: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, domain.ExerciseKindReorder)
			info, err := f.svc.Start(tt.ctx, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, f.svc.ActiveSessions())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total, info.Total)
			assert.Equal(t, 1, f.svc.ActiveSessions())
		})
	}
}

func TestService_Start_LessonError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	f.vocab.ListByLessonFunc = func(context.Context, uuid.UUID) ([]domain.VocabItem, error) {
		return nil, domain.ErrNotFound
	}

	_, err := f.svc.Start(userCtx(), StartInput{LessonID: uuid.New(), Direction: domain.DirectionForward, Kind: domain.ExerciseKindReorder})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ReorderRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "huis", v.Word)
	assert.Equal(t, "I go home.", v.Translation)
	assert.Len(t, v.Puzzle.Slots, 4)
	assert.Len(t, v.Puzzle.Source, 4)
	assert.Nil(t, v.Puzzle.Unused)

	v = place(t, f, ctx, id, v, "Ik", "ga", "naar", "huis.")
	assert.True(t, v.Puzzle.IsFilled)
	assert.True(t, v.Puzzle.IsFullyCorrect)

	res, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "Ik ga naar huis.", res.Answer)
	assert.True(t, res.Submitted)

	f.svc.Wait()
	got := f.attempts.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, huis.ID, got[0].ItemID)
	assert.True(t, got[0].WasCorrect)
	assert.Equal(t, domain.ExerciseKindReorder, got[0].Kind)

	sum, err := f.svc.Finish(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &Summary{SessionID: id, Total: 2, Attempted: 1, Correct: 1}, sum)
	assert.Zero(t, f.svc.ActiveSessions())

	_, err = f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_FindErrorRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindFindError)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindFindError)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, v.Puzzle.Unused, 1)
	require.Len(t, v.Puzzle.Available, 1)
	assert.Equal(t, "gaat", v.Puzzle.Unused[0].Text)
	assert.Equal(t, "ga", v.Puzzle.Available[0].Text)

	v = place(t, f, ctx, id, v, "Ik", "ga", "naar", "huis.")
	assert.True(t, v.Puzzle.IsFilled)

	res, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "gaat", res.ErrorWord)
	assert.Equal(t, "ik takes ga", res.Explanation)
}

func TestService_WrongAnswer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	place(t, f, ctx, id, v, "ga", "Ik", "naar", "huis.")

	res, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, []puzzle.SlotStatus{puzzle.SlotIncorrect, puzzle.SlotIncorrect, puzzle.SlotCorrect, puzzle.SlotCorrect},
		[]puzzle.SlotStatus{res.Puzzle.Slots[0].Status, res.Puzzle.Slots[1].Status, res.Puzzle.Slots[2].Status, res.Puzzle.Slots[3].Status})

	_, err = f.svc.Submit(ctx, id)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// gestures after submission change nothing
	mv, err := f.svc.Move(ctx, id, MoveInput{TokenID: tokenID(t, &res.View, "Ik"), Zone: puzzle.ZoneTarget, Slot: 0})
	require.NoError(t, err)
	assert.False(t, mv.Changed)

	f.svc.Wait()
	require.Len(t, f.attempts.recorded(), 1)
	assert.Equal(t, "ga Ik naar huis.", f.attempts.recorded()[0].UserAnswer)
}

func TestService_SubmitRequiresFilledPuzzle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	_, err := f.svc.Submit(ctx, id)
	require.ErrorIs(t, err, domain.ErrValidation, "nothing open")

	_, err = f.svc.Open(ctx, id, 0)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, id)
	require.ErrorIs(t, err, domain.ErrValidation)
	f.svc.Wait()
	assert.Empty(t, f.attempts.recorded())
}

func TestService_InvalidMoveIsNotAnError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindFindError)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindFindError)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)

	// an extra may not rest in the available pool
	got, err := f.svc.Move(ctx, id, MoveInput{TokenID: tokenID(t, v, "gaat"), Zone: puzzle.ZoneAvailable})
	require.NoError(t, err)
	assert.False(t, got.Changed)
	assert.Equal(t, v.Puzzle, got.Puzzle)

	// unknown token
	got, err = f.svc.Move(ctx, id, MoveInput{TokenID: uuid.New(), Zone: puzzle.ZoneTarget, Slot: 0})
	require.NoError(t, err)
	assert.False(t, got.Changed)

	_, err = f.svc.Move(ctx, id, MoveInput{TokenID: uuid.New(), Zone: "ELSEWHERE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Drag(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	ik := tokenID(t, v, "Ik")

	v, err = f.svc.PickUp(ctx, id, ik)
	require.NoError(t, err)
	assert.Equal(t, ik, v.Holding)

	v, err = f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, v.Holding)

	_, err = f.svc.PickUp(ctx, id, ik)
	require.NoError(t, err)
	v, err = f.svc.DropOn(ctx, id, puzzle.ZoneTarget, 0)
	require.NoError(t, err)
	assert.True(t, v.Changed)
	require.NotNil(t, v.Puzzle.Slots[0].Token)
	assert.Equal(t, ik, v.Puzzle.Slots[0].Token.ID)
	assert.Equal(t, puzzle.SlotCorrect, v.Puzzle.Slots[0].Status)
}

func TestService_Hint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	_, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)

	h, err := f.svc.Hint(ctx, id)
	require.NoError(t, err)
	assert.True(t, h.Changed)
	assert.Len(t, h.Slots, 2)
	assert.Equal(t, 2, h.Puzzle.HintsLeft)

	// reopening resets the budget
	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Puzzle.HintsLeft)
	assert.False(t, v.Submitted)
}

func TestService_UnusableContentFallsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindFindError)
	f.contents[0] = &domain.SentenceContent{ItemID: huis.ID, Kind: domain.ExerciseKindFindError}
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindFindError)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	assert.True(t, v.Fallback)
	assert.NotEmpty(t, v.Puzzle.Slots)
}

func TestService_OpenOutOfRange(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	_, err := f.svc.Open(ctx, id, 2)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_SessionsArePrivate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	id := start(t, f, userCtx(), domain.ExerciseKindReorder)

	_, err := f.svc.Open(userCtx(), id, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_RecordFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	f.attempts.err = errors.New("db down")
	ctx := userCtx()
	id := start(t, f, ctx, domain.ExerciseKindReorder)

	v, err := f.svc.Open(ctx, id, 0)
	require.NoError(t, err)
	place(t, f, ctx, id, v, "Ik", "ga", "naar", "huis.")

	res, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	f.svc.Wait()
}

func TestService_SweepExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	ctx := userCtx()
	idle := start(t, f, ctx, domain.ExerciseKindReorder)
	busy := start(t, f, ctx, domain.ExerciseKindReorder)

	now = now.Add(20 * time.Minute)
	_, err := f.svc.Get(ctx, busy)
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, f.svc.sweep())

	_, err = f.svc.Get(ctx, idle)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Get(ctx, busy)
	assert.NoError(t, err)
}

func TestService_History(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
		wantErr   error
	}{
		{"default page", 0, 20, nil},
		{"explicit limit", 5, 5, nil},
		{"negative", -1, 0, domain.ErrValidation},
		{"too large", 101, 0, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, domain.ExerciseKindReorder)
			userID := uuid.New()
			var gotLimit int
			f.attempts.ListByUserFunc = func(_ context.Context, id uuid.UUID, limit int) ([]domain.Attempt, error) {
				assert.Equal(t, userID, id)
				gotLimit = limit
				return []domain.Attempt{{UserID: id, WasCorrect: true}}, nil
			}

			got, err := f.svc.History(ctxutil.WithUserID(context.Background(), userID), tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, 1)
			assert.Equal(t, tt.wantLimit, gotLimit)
		})
	}
}

func TestService_History_Anonymous(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.ExerciseKindReorder)
	_, err := f.svc.History(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
