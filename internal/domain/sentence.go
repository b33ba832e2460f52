package domain

import (
	"time"

	"github.com/google/uuid"
)

// SentenceContent is the material one puzzle is built from.
// It is immutable once resolved.
type SentenceContent struct {
	ID     uuid.UUID
	ItemID uuid.UUID
	Kind   ExerciseKind
	Dir    Direction

	// SentenceText is the sentence shown to the learner: the correct sentence
	// for reorder exercises, the sentence containing the mistake for find-error.
	SentenceText string
	// MissingOrErrorWord is the vocabulary word (reorder) or the wrong word
	// planted in the sentence (find-error).
	MissingOrErrorWord string
	CorrectText        string
	Explanation        string
	Translation        string

	// Fallback marks content substituted after the store and generator failed.
	Fallback  bool
	CreatedAt time.Time
}

// Correct returns the reference sentence the puzzle is solved against.
func (c *SentenceContent) Correct() string {
	if c.CorrectText != "" {
		return c.CorrectText
	}
	return c.SentenceText
}

// Validate checks generated content before it is persisted.
func (c *SentenceContent) Validate() error {
	var errs []FieldError
	if c.SentenceText == "" {
		errs = append(errs, FieldError{Field: "sentence_text", Message: "required"})
	}
	if !c.Kind.IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "unknown value"})
	}
	if !c.Dir.IsValid() {
		errs = append(errs, FieldError{Field: "direction", Message: "unknown value"})
	}
	if c.Kind == ExerciseKindFindError {
		switch {
		case c.CorrectText == "":
			errs = append(errs, FieldError{Field: "correct_text", Message: "required for find-error content"})
		case NormalizeSentence(c.CorrectText) == NormalizeSentence(c.SentenceText):
			errs = append(errs, FieldError{Field: "correct_text", Message: "must differ from the erroneous sentence"})
		}
	}
	return NewValidationErrors(errs)
}
