// Package dataloader batches stored-sentence lookups. A session prefetching
// several items at once issues one SQL query per direction and kind instead
// of one per item.
package dataloader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

const (
	defaultBatchCapacity = 100
	defaultWait          = 2 * time.Millisecond
)

type sentenceRepo interface {
	GetByItemIDs(ctx context.Context, dir domain.Direction, kind domain.ExerciseKind, itemIDs []uuid.UUID) ([]domain.SentenceContent, error)
}

// SentenceKey identifies one stored sentence.
type SentenceKey struct {
	ItemID uuid.UUID
	Dir    domain.Direction
	Kind   domain.ExerciseKind
}

// Config tunes batching. Zero values fall back to defaults.
type Config struct {
	Wait          time.Duration
	BatchCapacity int
}

// SentenceStore serves FetchStored through a batched loader. It keeps no
// result cache of its own; callers cache resolved content.
type SentenceStore struct {
	loader *dataloader.Loader[SentenceKey, *domain.SentenceContent]
}

// NewSentenceStore creates a long-lived batched store over repo.
func NewSentenceStore(repo sentenceRepo, cfg Config) *SentenceStore {
	if cfg.Wait <= 0 {
		cfg.Wait = defaultWait
	}
	if cfg.BatchCapacity <= 0 {
		cfg.BatchCapacity = defaultBatchCapacity
	}

	return &SentenceStore{
		loader: dataloader.NewBatchedLoader(
			newSentenceBatchFn(repo),
			dataloader.WithWait[SentenceKey, *domain.SentenceContent](cfg.Wait),
			dataloader.WithBatchCapacity[SentenceKey, *domain.SentenceContent](cfg.BatchCapacity),
			dataloader.WithCache[SentenceKey, *domain.SentenceContent](&dataloader.NoCache[SentenceKey, *domain.SentenceContent]{}),
		),
	}
}

// FetchStored returns the stored sentence for the item, or
// domain.ErrNotFound.
func (s *SentenceStore) FetchStored(ctx context.Context, itemID uuid.UUID, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error) {
	return s.loader.Load(ctx, SentenceKey{ItemID: itemID, Dir: dir, Kind: kind})()
}

type group struct {
	dir  domain.Direction
	kind domain.ExerciseKind
}

func newSentenceBatchFn(repo sentenceRepo) dataloader.BatchFunc[SentenceKey, *domain.SentenceContent] {
	return func(ctx context.Context, keys []SentenceKey) []*dataloader.Result[*domain.SentenceContent] {
		ids := make(map[group][]uuid.UUID)
		for _, k := range keys {
			g := group{dir: k.Dir, kind: k.Kind}
			ids[g] = append(ids[g], k.ItemID)
		}

		found := make(map[SentenceKey]*domain.SentenceContent, len(keys))
		failed := make(map[group]error)
		for g, itemIDs := range ids {
			rows, err := repo.GetByItemIDs(ctx, g.dir, g.kind, itemIDs)
			if err != nil {
				failed[g] = err
				continue
			}
			for i := range rows {
				c := rows[i]
				found[SentenceKey{ItemID: c.ItemID, Dir: c.Dir, Kind: c.Kind}] = &c
			}
		}

		results := make([]*dataloader.Result[*domain.SentenceContent], len(keys))
		for i, k := range keys {
			switch {
			case failed[group{dir: k.Dir, kind: k.Kind}] != nil:
				results[i] = &dataloader.Result[*domain.SentenceContent]{Error: failed[group{dir: k.Dir, kind: k.Kind}]}
			case found[k] != nil:
				results[i] = &dataloader.Result[*domain.SentenceContent]{Data: found[k]}
			default:
				results[i] = &dataloader.Result[*domain.SentenceContent]{
					Error: fmt.Errorf("sentence %s: %w", k.ItemID, domain.ErrNotFound),
				}
			}
		}
		return results
	}
}
