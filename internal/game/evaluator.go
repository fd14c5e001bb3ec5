package game

import "example.com/wordlink/internal/puzzle"

// Result classifies one selection against a puzzle.
type Result struct {
	Matched *puzzle.Category
	OneAway bool
	// Ambiguous is set when the selection equals more than one unfound category,
	// which only happens for a puzzle that failed admission checks.
	Ambiguous bool
}

// Classify compares a selection with the categories not yet found. Comparison is over
// normalized word sets. A found category can neither match again nor count as one away.
func Classify(selected []string, categories, alreadyFound []puzzle.Category) Result {
	sel := puzzle.NewWordSet(selected...)

	var res Result
	for i := range categories {
		if isFound(categories[i], alreadyFound) {
			continue
		}
		words := categories[i].WordSet()
		if sel.Equal(words) {
			if res.Matched != nil {
				res.Ambiguous = true
				continue
			}
			c := categories[i]
			res.Matched = &c
			continue
		}
		if words.Shared(sel) == puzzle.GroupSize-1 {
			res.OneAway = true
		}
	}
	if res.Matched != nil {
		res.OneAway = false
	}
	return res
}

func isFound(c puzzle.Category, found []puzzle.Category) bool {
	for _, f := range found {
		if puzzle.SameGroup(c, f) {
			return true
		}
	}
	return false
}
