package domain

// ExerciseKind identifies which sentence puzzle the learner is solving.
type ExerciseKind string

const (
	// ExerciseKindReorder asks the learner to restore a scrambled sentence.
	ExerciseKindReorder ExerciseKind = "REORDER"
	// ExerciseKindFindError asks the learner to repair a sentence that contains
	// one grammatical mistake.
	ExerciseKindFindError ExerciseKind = "FIND_ERROR"
)

func (k ExerciseKind) String() string { return string(k) }

func (k ExerciseKind) IsValid() bool {
	switch k {
	case ExerciseKindReorder, ExerciseKindFindError:
		return true
	}
	return false
}

// Direction selects which side of a vocabulary pair the exercise sentence is
// written in.
type Direction string

const (
	// DirectionForward builds sentences in the language being studied (Dutch).
	DirectionForward Direction = "FORWARD"
	// DirectionReverse builds sentences in the learner's base language (English).
	DirectionReverse Direction = "REVERSE"
)

func (d Direction) String() string { return string(d) }

func (d Direction) IsValid() bool {
	switch d {
	case DirectionForward, DirectionReverse:
		return true
	}
	return false
}

// Locale returns the BCP 47 tag of the sentence language for this direction.
func (d Direction) Locale() string {
	if d == DirectionReverse {
		return "en-GB"
	}
	return "nl-NL"
}

// Language returns the human-readable name of the sentence language.
func (d Direction) Language() string {
	if d == DirectionReverse {
		return "English"
	}
	return "Dutch"
}
