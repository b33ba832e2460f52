package testhelper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

// SeedLesson inserts one vocabulary item per pair under a fresh lesson id,
// in order. Each pair is {source, target}.
func SeedLesson(t *testing.T, pool *pgxpool.Pool, pairs ...[2]string) (uuid.UUID, []domain.VocabItem) {
	t.Helper()
	ctx := context.Background()

	lessonID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	items := make([]domain.VocabItem, 0, len(pairs))
	for i, p := range pairs {
		item := domain.VocabItem{
			ID:            uuid.New(),
			LessonID:      lessonID,
			Position:      i,
			SourceText:    p[0],
			TargetText:    p[1],
			LessonContext: fmt.Sprintf("lesson %s", lessonID.String()[:8]),
			CreatedAt:     now,
		}

		_, err := pool.Exec(ctx,
			`INSERT INTO vocabulary_items (id, lesson_id, position, source_text, target_text, lesson_context, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.LessonID, item.Position, item.SourceText, item.TargetText, item.LessonContext, item.CreatedAt,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedLesson insert item %d: %v", i, err)
		}
		items = append(items, item)
	}

	return lessonID, items
}
