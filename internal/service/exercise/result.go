package exercise

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
)

// SessionInfo describes a started session.
type SessionInfo struct {
	ID        uuid.UUID
	Direction domain.Direction
	Kind      domain.ExerciseKind
	Total     int
}

// View is the state of the open puzzle of a session. Changed reports
// whether the gesture that produced the view altered the puzzle.
type View struct {
	SessionID   uuid.UUID
	Index       int
	Total       int
	ItemID      uuid.UUID
	Word        string
	Translation string
	Fallback    bool
	Submitted   bool
	Holding     uuid.UUID
	Changed     bool
	Puzzle      puzzle.View
}

// HintView is a view after a hint, with the slots the hint touched.
type HintView struct {
	View
	Slots []int
}

// SubmitResult is the outcome of checking the built sentence.
type SubmitResult struct {
	View
	Correct       bool
	Answer        string
	CorrectAnswer string
	ErrorWord     string
	Explanation   string
}

// Summary closes a session.
type Summary struct {
	SessionID uuid.UUID
	Total     int
	Attempted int
	Correct   int
}
