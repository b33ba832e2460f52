package puzzle

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

// HintResult lists the slots a hint touched. A hint that touched nothing
// was not charged against the budget.
type HintResult struct {
	Applied bool
	Slots   []int
}

// Hint corrects wrong slots first, then fills empty slots by priority. The
// first hint of a puzzle places two tokens, later ones a single token.
func (p *Puzzle) Hint() HintResult {
	if p.hintsUsed >= p.opts.HintCap {
		return HintResult{}
	}

	quota := 1
	if p.hintsUsed == 0 {
		quota = 2
	}

	var touched []int
	for _, i := range p.wrongSlots() {
		if len(touched) == quota {
			break
		}
		if p.fixSlot(i) {
			touched = append(touched, i)
		}
	}
	for _, i := range p.emptySlotsByPriority() {
		if len(touched) == quota {
			break
		}
		if p.fixSlot(i) {
			touched = append(touched, i)
		}
	}

	if len(touched) == 0 {
		return HintResult{}
	}
	p.hintsUsed++
	p.log.Debug("hint applied", slog.Int("hints_used", p.hintsUsed), slog.Any("slots", touched))
	return HintResult{Applied: true, Slots: touched}
}

func (p *Puzzle) wrongSlots() []int {
	var out []int
	for i, tok := range p.state.Slots() {
		if tok != nil && !p.validity[i] {
			out = append(out, i)
		}
	}
	return out
}

func (p *Puzzle) emptySlotsByPriority() []int {
	n := len(p.correctOrder)
	var out []int
	for i, tok := range p.state.Slots() {
		if tok == nil {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		pa := p.cls.Priority(p.correctOrder[out[a]], out[a], n)
		pb := p.cls.Priority(p.correctOrder[out[b]], out[b], n)
		if pa != pb {
			return pa > pb
		}
		return out[a] < out[b]
	})
	return out
}

// fixSlot puts a token carrying the expected word into slot i. When no such
// token is free, a wrong occupant is at least sent home.
func (p *Puzzle) fixSlot(i int) bool {
	if id, ok := p.candidateFor(i); ok {
		return p.Move(id, AtSlot(i))
	}
	occ, ok := p.state.Occupant(i)
	if !ok {
		return false
	}
	tok, _ := p.state.Token(occ)
	return p.Move(occ, InPool(tok.Origin.Home()))
}

// candidateFor picks the token to move into slot i, preferring the token
// the alignment assigned to i, then any pooled token with the right word,
// then one sitting in another wrong slot.
func (p *Puzzle) candidateFor(i int) (uuid.UUID, bool) {
	want := p.correctOrder[i]
	matches := func(t Token) bool { return domain.NormalizeToken(t.Text) == want }

	var pooled []Token
	for _, z := range []Zone{ZoneSource, ZoneAvailable, ZoneUnused} {
		if p.state.HasPool(z) {
			pooled = append(pooled, p.state.Pool(z)...)
		}
	}
	for _, t := range pooled {
		if t.Target == i && matches(t) {
			return t.ID, true
		}
	}
	for _, t := range pooled {
		if matches(t) {
			return t.ID, true
		}
	}
	for j, t := range p.state.Slots() {
		if j != i && t != nil && !p.validity[j] && matches(*t) {
			return t.ID, true
		}
	}
	return uuid.Nil, false
}
