package exercise

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
)

// StartInput selects the items of a new session: an explicit item list or a
// lesson to read them from.
type StartInput struct {
	Items     []domain.VocabItem
	LessonID  uuid.UUID
	Direction domain.Direction
	Kind      domain.ExerciseKind
}

// Validate checks all fields and collects all errors.
func (i *StartInput) Validate(maxItems int) error {
	var errs []domain.FieldError

	switch {
	case len(i.Items) == 0 && i.LessonID == uuid.Nil:
		errs = append(errs, domain.FieldError{Field: "items", Message: "items or lesson_id required"})
	case len(i.Items) > 0 && i.LessonID != uuid.Nil:
		errs = append(errs, domain.FieldError{Field: "items", Message: "give either items or lesson_id, not both"})
	case len(i.Items) > maxItems:
		errs = append(errs, domain.FieldError{Field: "items", Message: "too many items"})
	}
	for _, it := range i.Items {
		if it.ID == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "items.id", Message: "required"})
			break
		}
	}
	if !i.Direction.IsValid() {
		errs = append(errs, domain.FieldError{Field: "direction", Message: "must be FORWARD or REVERSE"})
	}
	if !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be REORDER or FIND_ERROR"})
	}

	return domain.NewValidationErrors(errs)
}

// MoveInput moves one token to a pool or a target slot.
type MoveInput struct {
	TokenID uuid.UUID
	Zone    puzzle.Zone
	Slot    int
}

// Validate checks all fields and collects all errors.
func (i *MoveInput) Validate() error {
	var errs []domain.FieldError

	if i.TokenID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "token_id", Message: "required"})
	}
	if !validZone(i.Zone) {
		errs = append(errs, domain.FieldError{Field: "zone", Message: "must be TARGET, SOURCE, UNUSED or AVAILABLE"})
	}

	return domain.NewValidationErrors(errs)
}

func (i *MoveInput) location() puzzle.Location {
	if i.Zone == puzzle.ZoneTarget {
		return puzzle.AtSlot(i.Slot)
	}
	return puzzle.InPool(i.Zone)
}

func validZone(z puzzle.Zone) bool {
	switch z {
	case puzzle.ZoneTarget, puzzle.ZoneSource, puzzle.ZoneUnused, puzzle.ZoneAvailable:
		return true
	}
	return false
}
