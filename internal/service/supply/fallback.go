package supply

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

type fallbackText struct {
	sentence    string
	word        string
	correct     string
	explanation string
	translation string
}

var fallbacks = map[domain.Direction]map[domain.ExerciseKind]fallbackText{
	domain.DirectionForward: {
		domain.ExerciseKindReorder: {
			sentence:    "Ik leer elke dag nieuwe woorden.",
			word:        "woorden",
			translation: "I learn new words every day.",
		},
		domain.ExerciseKindFindError: {
			sentence:    "Ik leert elke dag nieuwe woorden.",
			word:        "leert",
			correct:     "Ik leer elke dag nieuwe woorden.",
			explanation: "Bij 'ik' gebruik je de stam van het werkwoord: 'leer'.",
			translation: "I learn new words every day.",
		},
	},
	domain.DirectionReverse: {
		domain.ExerciseKindReorder: {
			sentence:    "I learn new words every day.",
			word:        "words",
			translation: "Ik leer elke dag nieuwe woorden.",
		},
		domain.ExerciseKindFindError: {
			sentence:    "I learns new words every day.",
			word:        "learns",
			correct:     "I learn new words every day.",
			explanation: "After 'I' the verb takes no -s: 'learn'.",
			translation: "Ik leer elke dag nieuwe woorden.",
		},
	},
}

// Fallback returns the fixed sentence used when neither the store nor the
// generator produced content. Each call returns a new value.
func Fallback(itemID uuid.UUID, dir domain.Direction, kind domain.ExerciseKind) *domain.SentenceContent {
	if !dir.IsValid() {
		dir = domain.DirectionForward
	}
	if !kind.IsValid() {
		kind = domain.ExerciseKindReorder
	}
	f := fallbacks[dir][kind]
	return &domain.SentenceContent{
		ItemID:             itemID,
		Kind:               kind,
		Dir:                dir,
		SentenceText:       f.sentence,
		MissingOrErrorWord: f.word,
		CorrectText:        f.correct,
		Explanation:        f.explanation,
		Translation:        f.translation,
		Fallback:           true,
	}
}
