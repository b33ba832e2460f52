package puzzle

import "github.com/heartmarshall/myenglish-exercises/internal/domain"

// Aligned is one token of an alignment. Source is the index in the distorted
// sentence (-1 for missing tokens), Target the slot in the correct sentence
// (-1 for extras).
type Aligned struct {
	Text   string
	Source int
	Target int
}

// Alignment splits the tokens of a distorted sentence and its correction
// into three disjoint sets.
type Alignment struct {
	Matched []Aligned // in distorted-sentence order
	Missing []Aligned // in correct-sentence order
	Extra   []Aligned // in distorted-sentence order
}

// Align matches distorted tokens against correct tokens greedily from left
// to right: each correct token claims the first unclaimed distorted token
// with the same normalized form. Correct tokens that find nothing are
// missing; distorted tokens never claimed are extra.
//
// No edit-distance minimisation is attempted. A word repeated in different
// roles may be claimed by the earlier occurrence, which changes which words
// surface as missing or extra.
func Align(distorted, correct []string) Alignment {
	keys := make([]string, len(distorted))
	for i, t := range distorted {
		keys[i] = domain.NormalizeToken(t)
	}

	claimedBy := make([]int, len(distorted))
	for i := range claimedBy {
		claimedBy[i] = -1
	}

	var a Alignment
	for ti, ct := range correct {
		key := domain.NormalizeToken(ct)
		found := false
		for si := range distorted {
			if claimedBy[si] == -1 && keys[si] == key {
				claimedBy[si] = ti
				found = true
				break
			}
		}
		if !found {
			a.Missing = append(a.Missing, Aligned{Text: ct, Source: -1, Target: ti})
		}
	}

	for si, t := range distorted {
		if claimedBy[si] == -1 {
			a.Extra = append(a.Extra, Aligned{Text: t, Source: si, Target: -1})
			continue
		}
		a.Matched = append(a.Matched, Aligned{Text: t, Source: si, Target: claimedBy[si]})
	}

	return a
}

// IsPermutation reports whether the distorted sentence used every correct
// token exactly once.
func (a Alignment) IsPermutation() bool {
	return len(a.Missing) == 0 && len(a.Extra) == 0
}
