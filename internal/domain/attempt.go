package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one submitted answer to a sentence puzzle.
type Attempt struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ItemID        uuid.UUID
	Kind          ExerciseKind
	Dir           Direction
	UserAnswer    string
	CorrectAnswer string
	WasCorrect    bool
	CreatedAt     time.Time
}
