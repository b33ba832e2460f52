package puzzle

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
)

// Defaults applied to zero Options fields.
const (
	DefaultHintCap          = 3
	DefaultPrefillThreshold = 10
	DefaultPrefillRatio     = 0.35

	// shuffleAttempts bounds the retries when a shuffle lands on the solution.
	shuffleAttempts = 5
)

// Options tune puzzle construction.
type Options struct {
	Direction        domain.Direction
	HintCap          int
	PrefillThreshold int
	PrefillRatio     float64
	Rand             *rand.Rand
	Logger           *slog.Logger
}

func (o Options) withDefaults() Options {
	if !o.Direction.IsValid() {
		o.Direction = domain.DirectionForward
	}
	if o.HintCap <= 0 {
		o.HintCap = DefaultHintCap
	}
	if o.PrefillThreshold <= 0 {
		o.PrefillThreshold = DefaultPrefillThreshold
	}
	if o.PrefillRatio <= 0 {
		o.PrefillRatio = DefaultPrefillRatio
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Puzzle is one reorder or find-error exercise. It is not safe for
// concurrent use; the host serialises gestures.
//
// Mutations never fail from the host's point of view: a move that breaks a
// zone rule is logged and ignored.
type Puzzle struct {
	kind         domain.ExerciseKind
	correct      string
	correctOrder []string // normalized, one per slot
	state        State
	validity     []bool
	hintsUsed    int
	held         uuid.UUID

	opts Options
	cls  *Classifier
	log  *slog.Logger
}

// New builds a puzzle. For reorder puzzles distorted may be empty, in which
// case the correct sentence is shuffled. For find-error puzzles distorted is
// the sentence containing the error.
func New(kind domain.ExerciseKind, distorted, correct string, opts Options) (*Puzzle, error) {
	opts = opts.withDefaults()

	correctTokens := domain.Tokenize(correct)
	if len(correctTokens) == 0 {
		return nil, domain.NewValidationError("correct", "required")
	}

	p := &Puzzle{
		kind:         kind,
		correct:      correct,
		correctOrder: make([]string, len(correctTokens)),
		opts:         opts,
		cls:          ClassifierFor(opts.Direction),
		log:          opts.Logger.With("component", "puzzle"),
	}
	for i, t := range correctTokens {
		p.correctOrder[i] = domain.NormalizeToken(t)
	}

	switch kind {
	case domain.ExerciseKindReorder:
		p.state = NewState(p.reorderTokens(domain.Tokenize(distorted), correctTokens), len(correctTokens))
	case domain.ExerciseKindFindError:
		distortedTokens := domain.Tokenize(distorted)
		if len(distortedTokens) == 0 {
			return nil, domain.NewValidationError("distorted", "required")
		}
		p.state = NewState(p.findErrorTokens(distortedTokens, correctTokens), len(correctTokens), ZoneUnused, ZoneAvailable)
	default:
		return nil, domain.NewValidationError("kind", "unknown exercise kind")
	}

	if err := p.prefill(correctTokens); err != nil {
		return nil, fmt.Errorf("prefill: %w", err)
	}
	p.revalidate()
	return p, nil
}

// reorderTokens returns the correct tokens in display order: the distorted
// order when it is a permutation of the correct sentence, a shuffle
// otherwise.
func (p *Puzzle) reorderTokens(distorted, correct []string) []Token {
	tokens := make([]Token, len(correct))
	for i, t := range correct {
		tokens[i] = Token{ID: uuid.New(), Text: t, Origin: OriginMatched, Target: i}
	}

	if len(distorted) > 0 {
		if a := Align(distorted, correct); a.IsPermutation() {
			ordered := make([]Token, 0, len(tokens))
			for _, m := range a.Matched {
				ordered = append(ordered, tokens[m.Target])
			}
			return ordered
		}
	}

	if len(tokens) < 2 {
		return tokens
	}
	shuffled := slices.Clone(tokens)
	for range shuffleAttempts {
		p.opts.Rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if !p.inCorrectOrder(shuffled) {
			break
		}
	}
	return shuffled
}

func (p *Puzzle) inCorrectOrder(tokens []Token) bool {
	for i, t := range tokens {
		if domain.NormalizeToken(t.Text) != p.correctOrder[i] {
			return false
		}
	}
	return true
}

// findErrorTokens classifies distorted and correct tokens by alignment.
// Matched and extra tokens keep the distorted sentence order; missing words
// are shuffled so their pool does not reveal positions.
func (p *Puzzle) findErrorTokens(distorted, correct []string) []Token {
	a := Align(distorted, correct)

	bySource := make(map[int]Token, len(distorted))
	for _, m := range a.Matched {
		bySource[m.Source] = Token{ID: uuid.New(), Text: m.Text, Origin: OriginMatched, Target: m.Target}
	}
	for _, e := range a.Extra {
		bySource[e.Source] = Token{ID: uuid.New(), Text: e.Text, Origin: OriginExtra, Target: -1}
	}

	tokens := make([]Token, 0, len(distorted)+len(a.Missing))
	for i := range distorted {
		tokens = append(tokens, bySource[i])
	}

	missing := make([]Token, len(a.Missing))
	for i, m := range a.Missing {
		missing[i] = Token{ID: uuid.New(), Text: m.Text, Origin: OriginMissing, Target: m.Target}
	}
	p.opts.Rand.Shuffle(len(missing), func(i, j int) {
		missing[i], missing[j] = missing[j], missing[i]
	})
	return append(tokens, missing...)
}

func (p *Puzzle) prefill(correctTokens []string) error {
	for _, pos := range prefillSlots(correctTokens, p.cls, p.opts.PrefillThreshold, p.opts.PrefillRatio) {
		id, ok := p.tokenForSlot(pos)
		if !ok {
			continue
		}
		from, _ := p.state.Locate(id)
		next, err := Transfer(p.state, Move{Token: id, From: from, To: AtSlot(pos)})
		if err != nil {
			return err
		}
		p.state = next
	}
	return nil
}

// tokenForSlot returns a pooled token the alignment assigned to slot i.
func (p *Puzzle) tokenForSlot(i int) (uuid.UUID, bool) {
	for _, z := range []Zone{ZoneSource, ZoneAvailable} {
		for _, t := range p.state.Pool(z) {
			if t.Target == i {
				return t.ID, true
			}
		}
	}
	return uuid.Nil, false
}

// apply runs a transfer and keeps the validity vector in step. Invalid moves
// are logged and leave the puzzle untouched.
func (p *Puzzle) apply(m Move) bool {
	next, err := Transfer(p.state, m)
	if err != nil {
		if errors.Is(err, ErrInvalidMove) {
			p.log.Debug("move ignored", slog.String("error", err.Error()))
		} else {
			p.log.Warn("move failed", slog.String("error", err.Error()))
		}
		return false
	}
	p.state = next
	p.revalidate()
	return true
}

func (p *Puzzle) revalidate() {
	p.validity = validity(p.state, p.correctOrder)
}

// MoveToTarget places token id, currently at from, into slot. A token
// already in the slot goes back to its home pool.
func (p *Puzzle) MoveToTarget(id uuid.UUID, from Location, slot int) bool {
	return p.apply(Move{Token: id, From: from, To: AtSlot(slot)})
}

// MoveToPool takes token id out of fromSlot and rests it in dest. Only the
// token's home pool is accepted.
func (p *Puzzle) MoveToPool(id uuid.UUID, fromSlot int, dest Zone) bool {
	return p.apply(Move{Token: id, From: AtSlot(fromSlot), To: InPool(dest)})
}

// Move transfers token id from wherever it is to to.
func (p *Puzzle) Move(id uuid.UUID, to Location) bool {
	from, ok := p.state.Locate(id)
	if !ok {
		p.log.Debug("move ignored", slog.String("token", id.String()), slog.String("error", "unknown token"))
		return false
	}
	return p.apply(Move{Token: id, From: from, To: to})
}

// PickUp starts a drag of token id. A previous drag is abandoned.
func (p *Puzzle) PickUp(id uuid.UUID) bool {
	if _, ok := p.state.Locate(id); !ok {
		p.log.Debug("pick up ignored", slog.String("token", id.String()))
		return false
	}
	p.held = id
	return true
}

// Holding returns the token being dragged.
func (p *Puzzle) Holding() (uuid.UUID, bool) {
	return p.held, p.held != uuid.Nil
}

// DropOn ends the drag on zone. slot is used only for ZoneTarget.
func (p *Puzzle) DropOn(zone Zone, slot int) bool {
	id, ok := p.Holding()
	if !ok {
		p.log.Debug("drop ignored", slog.String("error", "nothing held"))
		return false
	}
	p.held = uuid.Nil

	to := InPool(zone)
	if zone == ZoneTarget {
		to = AtSlot(slot)
	}
	return p.Move(id, to)
}

// Cancel abandons the current drag. The token stays where it was.
func (p *Puzzle) Cancel() {
	p.held = uuid.Nil
}

// Kind returns the exercise mode.
func (p *Puzzle) Kind() domain.ExerciseKind { return p.kind }

// Correct returns the expected sentence.
func (p *Puzzle) Correct() string { return p.correct }

// State returns the current zone assignment.
func (p *Puzzle) State() State { return p.state }

// Locate returns the location of token id.
func (p *Puzzle) Locate(id uuid.UUID) (Location, bool) { return p.state.Locate(id) }

// Validity returns a copy of the per-slot validity vector.
func (p *Puzzle) Validity() []bool { return slices.Clone(p.validity) }

// SlotStatuses reports CORRECT, INCORRECT or EMPTY per slot.
func (p *Puzzle) SlotStatuses() []SlotStatus {
	slots := p.state.Slots()
	out := make([]SlotStatus, len(slots))
	for i, tok := range slots {
		switch {
		case tok == nil:
			out[i] = SlotEmpty
		case p.validity[i]:
			out[i] = SlotCorrect
		default:
			out[i] = SlotIncorrect
		}
	}
	return out
}

// IsFilled reports whether every slot is occupied and, for find-error, every
// token has been sorted: nothing waits in the source or available pools.
// Extras resting in the unused pool count as sorted.
func (p *Puzzle) IsFilled() bool {
	counts := p.state.Counts()
	if counts[ZoneTarget] != p.state.SlotCount() {
		return false
	}
	if p.kind == domain.ExerciseKindFindError {
		return counts[ZoneSource] == 0 && counts[ZoneAvailable] == 0
	}
	return true
}

// IsFullyCorrect reports whether the puzzle is filled and every slot valid.
func (p *Puzzle) IsFullyCorrect() bool {
	if !p.IsFilled() {
		return false
	}
	for _, ok := range p.validity {
		if !ok {
			return false
		}
	}
	return true
}

// Answer returns the sentence currently built in the target row.
func (p *Puzzle) Answer() string { return joinSlots(p.state) }

// CheckSentence compares the built sentence with the expected one,
// ignoring case, diacritics and sentence punctuation.
func (p *Puzzle) CheckSentence() bool {
	return domain.NormalizeSentence(p.Answer()) == domain.NormalizeSentence(p.correct)
}

// HintsUsed returns the number of hints consumed.
func (p *Puzzle) HintsUsed() int { return p.hintsUsed }

// HintsLeft returns the remaining hint budget.
func (p *Puzzle) HintsLeft() int { return max(p.opts.HintCap-p.hintsUsed, 0) }

// SlotView is one target slot as exposed to the host.
type SlotView struct {
	Index  int
	Token  *Token
	Status SlotStatus
}

// View is a read-only snapshot of the puzzle.
type View struct {
	Kind           domain.ExerciseKind
	Slots          []SlotView
	Source         []Token
	Unused         []Token
	Available      []Token
	IsFilled       bool
	IsFullyCorrect bool
	HintsUsed      int
	HintsLeft      int
}

// Snapshot returns the current zone contents and status.
func (p *Puzzle) Snapshot() View {
	statuses := p.SlotStatuses()
	slots := p.state.Slots()
	v := View{
		Kind:           p.kind,
		Slots:          make([]SlotView, len(slots)),
		Source:         p.state.Pool(ZoneSource),
		IsFilled:       p.IsFilled(),
		IsFullyCorrect: p.IsFullyCorrect(),
		HintsUsed:      p.hintsUsed,
		HintsLeft:      p.HintsLeft(),
	}
	for i, tok := range slots {
		v.Slots[i] = SlotView{Index: i, Token: tok, Status: statuses[i]}
	}
	if p.state.HasPool(ZoneUnused) {
		v.Unused = p.state.Pool(ZoneUnused)
	}
	if p.state.HasPool(ZoneAvailable) {
		v.Available = p.state.Pool(ZoneAvailable)
	}
	return v
}
