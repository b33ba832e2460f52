package sentencegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/provider"
)

type sentenceRepo interface {
	GetByItem(ctx context.Context, itemID uuid.UUID, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error)
	Create(ctx context.Context, c *domain.SentenceContent) (*domain.SentenceContent, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sentenceProvider interface {
	GenerateSentence(ctx context.Context, req provider.SentenceRequest) (*provider.SentenceResult, error)
}

// Service generates exercise sentences and stores them for reuse.
type Service struct {
	log       *slog.Logger
	sentences sentenceRepo
	tx        txManager
	provider  sentenceProvider
}

// NewService creates a new sentence generation service.
func NewService(logger *slog.Logger, sentences sentenceRepo, tx txManager, p sentenceProvider) *Service {
	return &Service{
		log:       logger.With("service", "sentencegen"),
		sentences: sentences,
		tx:        tx,
		provider:  p,
	}
}

// GenerateAndPersist writes a new sentence for item and saves it. The
// provider call is made outside the transaction. If a concurrent request
// stored content for the same item first, that content is returned.
func (s *Service) GenerateAndPersist(ctx context.Context, item domain.VocabItem, dir domain.Direction, kind domain.ExerciseKind) (*domain.SentenceContent, error) {
	word := item.Word(dir)
	if word == "" {
		return nil, domain.NewValidationError("word", "required")
	}

	translation := item.TargetText
	if dir == domain.DirectionReverse {
		translation = item.SourceText
	}

	res, err := s.provider.GenerateSentence(ctx, provider.SentenceRequest{
		Word:        word,
		Translation: translation,
		Language:    dir.Language(),
		FindError:   kind == domain.ExerciseKindFindError,
		Context:     item.LessonContext,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "sentence provider error",
			slog.String("item_id", item.ID.String()),
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("generate sentence: %w", err)
	}

	content := &domain.SentenceContent{
		ID:                 uuid.New(),
		ItemID:             item.ID,
		Kind:               kind,
		Dir:                dir,
		SentenceText:       res.Sentence,
		MissingOrErrorWord: res.Word,
		CorrectText:        res.Correct,
		Explanation:        res.Explanation,
		Translation:        res.Translation,
	}
	if content.MissingOrErrorWord == "" && kind == domain.ExerciseKindReorder {
		content.MissingOrErrorWord = word
	}
	if err := content.Validate(); err != nil {
		s.log.WarnContext(ctx, "generated sentence rejected",
			slog.String("item_id", item.ID.String()),
			slog.String("sentence", res.Sentence),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	var saved *domain.SentenceContent
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		saved, createErr = s.sentences.Create(txCtx, content)
		return createErr
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrAlreadyExists) {
			existing, err := s.sentences.GetByItem(ctx, item.ID, dir, kind)
			if err != nil {
				return nil, fmt.Errorf("get sentence after conflict: %w", err)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create sentence: %w", txErr)
	}

	s.log.InfoContext(ctx, "sentence generated and saved",
		slog.String("item_id", item.ID.String()),
		slog.String("kind", kind.String()),
		slog.String("direction", dir.String()),
	)
	return saved, nil
}
