// Package attempt records submitted exercise answers.
package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/myenglish-exercises/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

const table = "exercise_attempts"

var columns = []string{
	"id", "user_id", "item_id", "kind", "direction",
	"user_answer", "correct_answer", "was_correct", "created_at",
}

type row struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	ItemID        uuid.UUID `db:"item_id"`
	Kind          string    `db:"kind"`
	Direction     string    `db:"direction"`
	UserAnswer    string    `db:"user_answer"`
	CorrectAnswer string    `db:"correct_answer"`
	WasCorrect    bool      `db:"was_correct"`
	CreatedAt     time.Time `db:"created_at"`
}

// Repo provides attempt persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new attempt repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Record inserts one attempt. A zero ID or CreatedAt is filled in.
func (r *Repo) Record(ctx context.Context, a *domain.Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query, args, err := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(a.ID, a.UserID, a.ItemID, a.Kind.String(), a.Dir.String(),
			a.UserAnswer, a.CorrectAnswer, a.WasCorrect, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "attempt", a.ID)
	}
	return nil
}

// ListByUser returns a user's most recent attempts, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "attempts of user", userID)
	}

	out := make([]domain.Attempt, len(rows))
	for i, rw := range rows {
		out[i] = domain.Attempt{
			ID:            rw.ID,
			UserID:        rw.UserID,
			ItemID:        rw.ItemID,
			Kind:          domain.ExerciseKind(rw.Kind),
			Dir:           domain.Direction(rw.Direction),
			UserAnswer:    rw.UserAnswer,
			CorrectAnswer: rw.CorrectAnswer,
			WasCorrect:    rw.WasCorrect,
			CreatedAt:     rw.CreatedAt,
		}
	}
	return out, nil
}
