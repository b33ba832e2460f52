package puzzle

import (
	"fmt"

	"github.com/google/uuid"
)

// Zone is one of the four places a token can be.
type Zone string

const (
	ZoneTarget    Zone = "TARGET"
	ZoneSource    Zone = "SOURCE"
	ZoneUnused    Zone = "UNUSED"
	ZoneAvailable Zone = "AVAILABLE"
)

func (z Zone) String() string { return string(z) }

// Origin records how the alignment classified a token. It never changes
// during the lifetime of a puzzle.
type Origin string

const (
	OriginMatched Origin = "MATCHED"
	OriginMissing Origin = "MISSING"
	OriginExtra   Origin = "EXTRA"
)

// Home is the pool a token of this origin rests in when it is not placed.
func (o Origin) Home() Zone {
	switch o {
	case OriginMissing:
		return ZoneAvailable
	case OriginExtra:
		return ZoneUnused
	}
	return ZoneSource
}

// Token is a single word card of a puzzle. ID is stable for the lifetime of
// the puzzle instance.
type Token struct {
	ID     uuid.UUID
	Text   string
	Origin Origin
	// Target is the slot the alignment assigned to the token, -1 for extras.
	// It drives pre-placement and hints only; validation compares text.
	Target int
}

// Location is a tagged union: a pool, or a target slot when Zone is
// ZoneTarget.
type Location struct {
	Zone Zone
	Slot int
}

// InPool returns the location of pool z.
func InPool(z Zone) Location { return Location{Zone: z, Slot: -1} }

// AtSlot returns the location of target slot i.
func AtSlot(i int) Location { return Location{Zone: ZoneTarget, Slot: i} }

func (l Location) String() string {
	if l.Zone == ZoneTarget {
		return fmt.Sprintf("%s[%d]", l.Zone, l.Slot)
	}
	return l.Zone.String()
}

// Move transfers one token from a claimed location to a destination.
type Move struct {
	Token uuid.UUID
	From  Location
	To    Location
}

// State is the zone assignment of a puzzle: one location per token, keyed by
// token id. A State is never mutated in place; Transfer returns a new one.
type State struct {
	tokens map[uuid.UUID]Token
	order  []uuid.UUID // display order of pools
	loc    map[uuid.UUID]Location
	slots  int
	pools  map[Zone]bool
}

// NewState puts every token in its home pool. pools lists the pools that
// exist in this puzzle mode; the source pool always exists.
func NewState(tokens []Token, slots int, pools ...Zone) State {
	s := State{
		tokens: make(map[uuid.UUID]Token, len(tokens)),
		order:  make([]uuid.UUID, 0, len(tokens)),
		loc:    make(map[uuid.UUID]Location, len(tokens)),
		slots:  slots,
		pools:  map[Zone]bool{ZoneSource: true},
	}
	for _, z := range pools {
		s.pools[z] = true
	}
	for _, t := range tokens {
		s.tokens[t.ID] = t
		s.order = append(s.order, t.ID)
		s.loc[t.ID] = InPool(t.Origin.Home())
	}
	return s
}

// Transfer applies m to s and returns the resulting state. s is left
// untouched. A token dropped on an occupied slot displaces the occupant to
// the occupant's home pool. Returns ErrInvalidMove when the move breaks a
// zone rule.
func Transfer(s State, m Move) (State, error) {
	tok, ok := s.tokens[m.Token]
	if !ok {
		return s, fmt.Errorf("%w: unknown token %s", ErrInvalidMove, m.Token)
	}
	if cur := s.loc[m.Token]; cur != m.From {
		return s, fmt.Errorf("%w: token %s is in %s, not %s", ErrInvalidMove, m.Token, cur, m.From)
	}
	if m.From == m.To {
		return s, fmt.Errorf("%w: token %s is already in %s", ErrInvalidMove, m.Token, m.To)
	}

	if m.To.Zone == ZoneTarget {
		if m.To.Slot < 0 || m.To.Slot >= s.slots {
			return s, fmt.Errorf("%w: slot %d out of range [0,%d)", ErrInvalidMove, m.To.Slot, s.slots)
		}
		next := s.clone()
		if occ, ok := s.Occupant(m.To.Slot); ok {
			next.loc[occ] = InPool(s.tokens[occ].Origin.Home())
		}
		next.loc[m.Token] = m.To
		return next, nil
	}

	if !s.pools[m.To.Zone] {
		return s, fmt.Errorf("%w: puzzle has no %s pool", ErrInvalidMove, m.To.Zone)
	}
	if m.From.Zone != ZoneTarget {
		return s, fmt.Errorf("%w: pool to pool move %s -> %s", ErrInvalidMove, m.From, m.To)
	}
	if home := tok.Origin.Home(); home != m.To.Zone {
		return s, fmt.Errorf("%w: %s token belongs in %s, not %s", ErrInvalidMove, tok.Origin, home, m.To.Zone)
	}

	next := s.clone()
	next.loc[m.Token] = InPool(m.To.Zone)
	return next, nil
}

func (s State) clone() State {
	loc := make(map[uuid.UUID]Location, len(s.loc))
	for id, l := range s.loc {
		loc[id] = l
	}
	return State{tokens: s.tokens, order: s.order, loc: loc, slots: s.slots, pools: s.pools}
}

// Token returns the token with the given id.
func (s State) Token(id uuid.UUID) (Token, bool) {
	t, ok := s.tokens[id]
	return t, ok
}

// Locate returns the current location of a token.
func (s State) Locate(id uuid.UUID) (Location, bool) {
	l, ok := s.loc[id]
	return l, ok
}

// Occupant returns the id of the token in slot i.
func (s State) Occupant(i int) (uuid.UUID, bool) {
	for id, l := range s.loc {
		if l.Zone == ZoneTarget && l.Slot == i {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Slots returns the slot occupants in order; empty slots hold nil.
func (s State) Slots() []*Token {
	out := make([]*Token, s.slots)
	for id, l := range s.loc {
		if l.Zone == ZoneTarget {
			t := s.tokens[id]
			out[l.Slot] = &t
		}
	}
	return out
}

// Pool returns the tokens resting in pool z in display order.
func (s State) Pool(z Zone) []Token {
	out := []Token{}
	for _, id := range s.order {
		if s.loc[id].Zone == z {
			out = append(out, s.tokens[id])
		}
	}
	return out
}

// HasPool reports whether pool z exists in this puzzle.
func (s State) HasPool(z Zone) bool { return s.pools[z] }

// Counts returns the number of tokens per zone.
func (s State) Counts() map[Zone]int {
	c := make(map[Zone]int, 4)
	for _, l := range s.loc {
		c[l.Zone]++
	}
	return c
}

// Len returns the total number of tokens, constant for a puzzle.
func (s State) Len() int { return len(s.tokens) }

// SlotCount returns the number of target slots.
func (s State) SlotCount() int { return s.slots }

// Verify checks the zone invariants: every token has exactly one valid
// location, no slot holds two tokens, and extras and missing words never
// rest in each other's pool.
func (s State) Verify() error {
	if len(s.loc) != len(s.tokens) {
		return fmt.Errorf("located %d tokens, puzzle has %d", len(s.loc), len(s.tokens))
	}
	taken := make(map[int]uuid.UUID, s.slots)
	for id, l := range s.loc {
		tok, ok := s.tokens[id]
		if !ok {
			return fmt.Errorf("location for unknown token %s", id)
		}
		switch l.Zone {
		case ZoneTarget:
			if l.Slot < 0 || l.Slot >= s.slots {
				return fmt.Errorf("token %s in slot %d out of range", id, l.Slot)
			}
			if other, dup := taken[l.Slot]; dup {
				return fmt.Errorf("slot %d holds %s and %s", l.Slot, other, id)
			}
			taken[l.Slot] = id
		default:
			if !s.pools[l.Zone] {
				return fmt.Errorf("token %s in missing pool %s", id, l.Zone)
			}
			if l.Zone != tok.Origin.Home() {
				return fmt.Errorf("%s token %s rests in %s", tok.Origin, id, l.Zone)
			}
		}
	}
	return nil
}
