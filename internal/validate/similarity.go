package validate

import (
	"golang.org/x/text/cases"
)

// Strings at least this long have their most frequent characters left out
// of the search for matching blocks
const autojunkLength = 200

// Similarity is the Ratcliff/Obershelp ratio of two strings, ignoring case:
// twice the number of matching characters over the total number of characters.
// Two empty strings are identical.
//
// When b has 200 characters or more, a character of b occurring more than
// len(b)/100+1 times cannot anchor a matching block, it only extends one
// found around it. This keeps the ratio of long descriptions from being
// inflated by spaces and vowels
func Similarity(a string, b string) float64 {
	fold := cases.Fold()
	ra := []rune(fold.String(a))
	rb := []rune(fold.String(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := matcher{a: ra, b: rb, popular: popular(rb)}
	return 2 * float64(m.matching(0, len(ra), 0, len(rb))) / float64(total)
}

func popular(b []rune) map[rune]bool {
	result := map[rune]bool{}
	if len(b) < autojunkLength {
		return result
	}
	counts := map[rune]int{}
	for _, r := range b {
		counts[r]++
	}
	limit := len(b)/100 + 1
	for r, count := range counts {
		if count > limit {
			result[r] = true
		}
	}
	return result
}

type matcher struct {
	a, b    []rune
	popular map[rune]bool
}

// Characters in common: the longest common block, then recursively
// the matches on its left and on its right
func (m matcher) matching(alo int, ahi int, blo int, bhi int) int {
	i, j, size := m.longestMatch(alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size + m.matching(alo, i, blo, j) + m.matching(i+size, ahi, j+size, bhi)
}

// Longest common block of a[alo:ahi] and b[blo:bhi] not made of popular
// characters, then grown over equal characters on both sides. Ties go to
// the block that ends first in a, then in b
func (m matcher) longestMatch(alo int, ahi int, blo int, bhi int) (int, int, int) {
	a, b := m.a, m.b
	besti, bestj, bestSize := alo, blo, 0
	// lengths of the common suffixes ending at the previous row
	previous := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		current := make([]int, bhi-blo+1)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] || m.popular[b[j]] {
				continue
			}
			k := previous[j-blo] + 1
			current[j-blo+1] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		previous = current
	}

	for besti > alo && bestj > blo && a[besti-1] == b[bestj-1] {
		besti, bestj, bestSize = besti-1, bestj-1, bestSize+1
	}
	for besti+bestSize < ahi && bestj+bestSize < bhi && a[besti+bestSize] == b[bestj+bestSize] {
		bestSize++
	}
	return besti, bestj, bestSize
}
