package domain

import (
	"time"

	"github.com/google/uuid"
)

// VocabItem is one word of an exercise set, as supplied by the lesson store.
type VocabItem struct {
	ID            uuid.UUID
	LessonID      uuid.UUID
	Position      int
	SourceText    string // word in the studied language
	TargetText    string // translation in the learner's base language
	LessonContext string // optional topic hint for sentence generation
	CreatedAt     time.Time
}

// Word returns the side of the pair that exercise sentences are built around.
func (v VocabItem) Word(d Direction) string {
	if d == DirectionReverse {
		return v.TargetText
	}
	return v.SourceText
}
