package puzzle

import (
	"strings"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

// SlotStatus is the per-slot validation result exposed to the host.
type SlotStatus string

const (
	SlotCorrect   SlotStatus = "CORRECT"
	SlotIncorrect SlotStatus = "INCORRECT"
	SlotEmpty     SlotStatus = "EMPTY"
)

// validity compares every slot against the expected normalized word. Empty
// slots are invalid.
func validity(s State, correctOrder []string) []bool {
	out := make([]bool, len(correctOrder))
	for i, tok := range s.Slots() {
		out[i] = tok != nil && domain.NormalizeToken(tok.Text) == correctOrder[i]
	}
	return out
}

// joinSlots returns the sentence currently built in the target row.
func joinSlots(s State) string {
	var words []string
	for _, tok := range s.Slots() {
		if tok != nil {
			words = append(words, tok.Text)
		}
	}
	return strings.Join(words, " ")
}
