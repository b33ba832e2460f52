// Package vocabulary reads lesson words used as exercise items.
package vocabulary

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

const table = "vocabulary_items"

var columns = []string{"id", "lesson_id", "position", "source_text", "target_text", "lesson_context", "created_at"}

type row struct {
	ID            uuid.UUID `db:"id"`
	LessonID      uuid.UUID `db:"lesson_id"`
	Position      int       `db:"position"`
	SourceText    string    `db:"source_text"`
	TargetText    string    `db:"target_text"`
	LessonContext string    `db:"lesson_context"`
	CreatedAt     time.Time `db:"created_at"`
}

// Repo provides vocabulary reads backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new vocabulary repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ListByLesson returns the items of a lesson in lesson order.
// Returns domain.ErrNotFound when the lesson has no items.
func (r *Repo) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.VocabItem, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"lesson_id": lessonID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "lesson", lessonID)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}

	items := make([]domain.VocabItem, len(rows))
	for i, rw := range rows {
		items[i] = domain.VocabItem{
			ID:            rw.ID,
			LessonID:      rw.LessonID,
			Position:      rw.Position,
			SourceText:    rw.SourceText,
			TargetText:    rw.TargetText,
			LessonContext: rw.LessonContext,
			CreatedAt:     rw.CreatedAt,
		}
	}
	return items, nil
}
