package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

func TestHint_BudgetAndPriority(t *testing.T) {
	t.Parallel()

	p := newReorder(t, "ik ga naar de winkel morgen", "ik ga morgen naar de winkel")

	h := p.Hint()
	require.True(t, h.Applied)
	assert.Equal(t, []int{0, 3}, h.Slots)

	h = p.Hint()
	require.True(t, h.Applied)
	assert.Equal(t, []int{4}, h.Slots)

	h = p.Hint()
	require.True(t, h.Applied)
	assert.Equal(t, []int{1}, h.Slots)

	assert.Equal(t, 3, p.HintsUsed())
	assert.Equal(t, 0, p.HintsLeft())

	h = p.Hint()
	assert.False(t, h.Applied)
	assert.Equal(t, 3, p.HintsUsed())
	assert.Equal(t, []SlotStatus{SlotCorrect, SlotCorrect, SlotEmpty, SlotCorrect, SlotCorrect, SlotEmpty}, p.SlotStatuses())
}

func TestHint_FixesWrongSlotFirst(t *testing.T) {
	t.Parallel()

	p := newReorder(t, "ik ga naar de winkel morgen", "ik ga morgen naar de winkel")
	winkel := tokenByText(t, p, "winkel")
	require.True(t, p.Move(winkel.ID, AtSlot(2)))

	h := p.Hint()
	require.True(t, h.Applied)
	assert.Equal(t, []int{2, 0}, h.Slots)

	loc, _ := p.Locate(winkel.ID)
	assert.Equal(t, InPool(ZoneSource), loc)
	assert.Equal(t, []bool{true, false, true, false, false, false}, p.Validity())
}

func TestHint_FindErrorUsesAvailablePool(t *testing.T) {
	t.Parallel()

	p, err := New(domain.ExerciseKindFindError, "ik gaat naar huis", "ik ga naar huis", testOptions())
	require.NoError(t, err)
	placeAll(t, p, "ik", "gaat", "naar", "huis")

	h := p.Hint()
	require.True(t, h.Applied)
	assert.Equal(t, []int{1}, h.Slots)

	assert.True(t, p.IsFullyCorrect())
	assert.Equal(t, []string{"gaat"}, poolTexts(p.State(), ZoneUnused))
}

func TestHint_NothingToDoIsFree(t *testing.T) {
	t.Parallel()

	p := newReorder(t, "ik ga naar de winkel morgen", "ik ga morgen naar de winkel")
	placeAll(t, p, "ik", "ga", "morgen", "naar", "de", "winkel")

	h := p.Hint()
	assert.False(t, h.Applied)
	assert.Equal(t, 0, p.HintsUsed())
	assert.Equal(t, 3, p.HintsLeft())
}

func TestHint_CustomCap(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.HintCap = 1
	p, err := New(domain.ExerciseKindReorder, "", "ik ga morgen naar de winkel", opts)
	require.NoError(t, err)

	assert.True(t, p.Hint().Applied)
	assert.False(t, p.Hint().Applied)
	assert.Equal(t, 1, p.HintsUsed())
}
