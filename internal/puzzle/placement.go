package puzzle

import (
	"math"
	"sort"
)

// prefillSlots picks the slots pre-placed before the player starts. Short
// sentences get none. Longer ones always get both edges, then strategic
// interior words in sentence order, then evenly spaced interior positions
// until ceil(n*ratio) slots are chosen. The result is sorted.
func prefillSlots(tokens []string, c *Classifier, threshold int, ratio float64) []int {
	n := len(tokens)
	if n <= threshold || n < 2 {
		return nil
	}

	want := int(math.Ceil(float64(n) * ratio))
	want = max(want, 2)
	want = min(want, n)

	chosen := map[int]bool{0: true, n - 1: true}
	for pos := 1; pos < n-1 && len(chosen) < want; pos++ {
		if c.Strategic(tokens[pos], pos, n) {
			chosen[pos] = true
		}
	}

	if need := want - len(chosen); need > 0 {
		for _, pos := range spacedPositions(n, need, chosen) {
			chosen[pos] = true
		}
	}

	out := make([]int, 0, len(chosen))
	for pos := range chosen {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// spacedPositions spreads need interior positions evenly over [1, n-2],
// skipping positions already taken.
func spacedPositions(n, need int, taken map[int]bool) []int {
	used := make(map[int]bool, len(taken)+need)
	for p := range taken {
		used[p] = true
	}

	var out []int
	for k := 1; k <= need; k++ {
		ideal := int(math.Round(float64(k) * float64(n-1) / float64(need+1)))
		pos, ok := nearestFree(ideal, n, used)
		if !ok {
			break
		}
		used[pos] = true
		out = append(out, pos)
	}
	return out
}

// nearestFree scans outward from ideal for an unused interior position,
// preferring the lower side on ties.
func nearestFree(ideal, n int, used map[int]bool) (int, bool) {
	for d := 0; d < n; d++ {
		for _, p := range []int{ideal - d, ideal + d} {
			if p >= 1 && p <= n-2 && !used[p] {
				return p, true
			}
		}
	}
	return 0, false
}
