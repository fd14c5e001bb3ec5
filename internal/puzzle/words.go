package puzzle

import "strings"

// NormalizeWord is the single comparison form for puzzle, category and guessed words.
func NormalizeWord(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// WordSet is a set of normalized words.
type WordSet map[string]struct{}

func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[NormalizeWord(w)] = struct{}{}
	}
	return s
}

func (s WordSet) Has(w string) bool {
	_, ok := s[NormalizeWord(w)]
	return ok
}

// Shared counts the words present in both sets.
func (s WordSet) Shared(o WordSet) int {
	small, big := s, o
	if len(big) < len(small) {
		small, big = big, small
	}
	n := 0
	for w := range small {
		if _, ok := big[w]; ok {
			n++
		}
	}
	return n
}

func (s WordSet) Equal(o WordSet) bool {
	return len(s) == len(o) && s.Shared(o) == len(s)
}

// WordSet returns the normalized words of c.
func (c Category) WordSet() WordSet { return NewWordSet(c.Words...) }

// SameGroup reports whether a and b hold the same words, ignoring name, tier and order.
func SameGroup(a, b Category) bool {
	return a.WordSet().Equal(b.WordSet())
}
