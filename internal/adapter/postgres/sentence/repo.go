// Package sentence stores generated exercise sentences, one per vocabulary
// item, direction and exercise kind.
package sentence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/myenglish-exercises/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

const table = "exercise_sentences"

var columns = []string{
	"id", "item_id", "direction", "kind",
	"sentence_text", "missing_or_error_word", "correct_text", "explanation", "translation",
	"created_at",
}

type row struct {
	ID                 uuid.UUID `db:"id"`
	ItemID             uuid.UUID `db:"item_id"`
	Direction          string    `db:"direction"`
	Kind               string    `db:"kind"`
	SentenceText       string    `db:"sentence_text"`
	MissingOrErrorWord string    `db:"missing_or_error_word"`
	CorrectText        string    `db:"correct_text"`
	Explanation        string    `db:"explanation"`
	Translation        string    `db:"translation"`
	CreatedAt          time.Time `db:"created_at"`
}

func (r row) toDomain() *domain.SentenceContent {
	return &domain.SentenceContent{
		ID:                 r.ID,
		ItemID:             r.ItemID,
		Dir:                domain.Direction(r.Direction),
		Kind:               domain.ExerciseKind(r.Kind),
		SentenceText:       r.SentenceText,
		MissingOrErrorWord: r.MissingOrErrorWord,
		CorrectText:        r.CorrectText,
		Explanation:        r.Explanation,
		Translation:        r.Translation,
		CreatedAt:          r.CreatedAt,
	}
}

// Repo provides sentence persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new sentence repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetByItem returns the stored sentence for one item.
// Returns domain.ErrNotFound if none has been generated yet.
func (r *Repo) GetByItem(ctx context.Context, itemID uuid.UUID, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error) {
	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.Eq{"direction": dir.String()}).
		Where(squirrel.Eq{"kind": kind.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &rw, query, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", itemID)
	}
	return rw.toDomain(), nil
}

// GetByItemIDs returns the stored sentences for a batch of items. Items
// without a sentence are absent from the result.
func (r *Repo) GetByItemIDs(ctx context.Context, dir domain.Direction, kind domain.ExerciseKind, itemIDs []uuid.UUID) ([]domain.SentenceContent, error) {
	if len(itemIDs) == 0 {
		return []domain.SentenceContent{}, nil
	}

	query, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"item_id": itemIDs}).
		Where(squirrel.Eq{"direction": dir.String()}).
		Where(squirrel.Eq{"kind": kind.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "sentences", len(itemIDs))
	}

	out := make([]domain.SentenceContent, len(rows))
	for i, rw := range rows {
		out[i] = *rw.toDomain()
	}
	return out, nil
}

// Create inserts a sentence. Returns domain.ErrAlreadyExists if the item
// already has one for this direction and kind.
func (r *Repo) Create(ctx context.Context, c *domain.SentenceContent) (*domain.SentenceContent, error) {
	query, args, err := postgres.Builder.
		Insert(table).
		Columns(columns[:len(columns)-1]...).
		Values(
			c.ID, c.ItemID, c.Dir.String(), c.Kind.String(),
			c.SentenceText, c.MissingOrErrorWord, c.CorrectText, c.Explanation, c.Translation,
		).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &rw, query, args...); err != nil {
		return nil, postgres.MapError(err, "sentence", c.ItemID)
	}
	return rw.toDomain(), nil
}
