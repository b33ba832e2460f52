package sentence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func sentenceRows(items ...uuid.UUID) *pgxmock.Rows {
	rows := pgxmock.NewRows(columns)
	now := time.Now()
	for _, id := range items {
		rows.AddRow(uuid.New(), id, "FORWARD", "FIND_ERROR",
			"Ik gaat naar huis.", "gaat", "Ik ga naar huis.", "ik takes ga", "I go home.", now)
	}
	return rows
}

func TestRepo_GetByItem(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM exercise_sentences WHERE`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnRows(sentenceRows(itemID))
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM exercise_sentences WHERE`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := newMock(t)
			tt.setup(mock)

			got, err := New(mock).GetByItem(context.Background(), itemID, domain.DirectionForward, domain.ExerciseKindFindError)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, itemID, got.ItemID)
			assert.Equal(t, domain.DirectionForward, got.Dir)
			assert.Equal(t, domain.ExerciseKindFindError, got.Kind)
			assert.Equal(t, "gaat", got.MissingOrErrorWord)
			assert.Equal(t, "Ik ga naar huis.", got.Correct())
		})
	}
}

func TestRepo_GetByItemIDs(t *testing.T) {
	t.Parallel()

	t.Run("empty input skips the query", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		got, err := New(mock).GetByItemIDs(context.Background(), domain.DirectionForward, domain.ExerciseKindReorder, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("returns rows present", func(t *testing.T) {
		t.Parallel()

		a, b, c := uuid.New(), uuid.New(), uuid.New()
		mock := newMock(t)
		mock.ExpectQuery(`SELECT (.+) FROM exercise_sentences WHERE item_id IN`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(sentenceRows(a, c))

		got, err := New(mock).GetByItemIDs(context.Background(), domain.DirectionForward, domain.ExerciseKindFindError, []uuid.UUID{a, b, c})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a, got[0].ItemID)
		assert.Equal(t, c, got[1].ItemID)
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(`SELECT`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection reset"))

		_, err := New(mock).GetByItemIDs(context.Background(), domain.DirectionForward, domain.ExerciseKindFindError, []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestRepo_Create(t *testing.T) {
	t.Parallel()

	content := &domain.SentenceContent{
		ID:                 uuid.New(),
		ItemID:             uuid.New(),
		Kind:               domain.ExerciseKindFindError,
		Dir:                domain.DirectionForward,
		SentenceText:       "Ik gaat naar huis.",
		MissingOrErrorWord: "gaat",
		CorrectText:        "Ik ga naar huis.",
	}
	args := make([]any, 9)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}

	t.Run("inserts and returns the row", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO exercise_sentences (.+) RETURNING`).
			WithArgs(args...).
			WillReturnRows(sentenceRows(content.ItemID))

		got, err := New(mock).Create(context.Background(), content)
		require.NoError(t, err)
		assert.Equal(t, content.ItemID, got.ItemID)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("duplicate maps to already exists", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO exercise_sentences`).
			WithArgs(args...).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := New(mock).Create(context.Background(), content)
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}
