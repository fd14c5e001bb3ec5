package puzzle

import (
	"fmt"
	"strings"

	"example.com/wordlink/internal/apperr"
)

var ErrInvalid = apperr.New(apperr.InvalidInput, "invalid_puzzle", "puzzle failed validation")

// ValidationError lists every structural problem found in a puzzle.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Validate checks the admission invariants: four named categories of four unique words,
// one category per tier, sixteen globally unique words, and a word list equal to the
// union of the categories.
func Validate(words []string, categories []Category) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(categories) != GroupCount {
		add("must have exactly %d categories, got %d", GroupCount, len(categories))
		return apperr.Wrap(ErrInvalid, &ValidationError{Problems: problems})
	}

	seenTier := make(map[Tier]bool, GroupCount)
	all := make(map[string]int, WordCount)
	total := 0
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			add("category is missing a name")
			name = "unknown"
		}
		if !c.Tier.Valid() {
			add("category %q has invalid tier %d", name, int(c.Tier))
		} else if seenTier[c.Tier] {
			add("tier %s used more than once", c.Tier.Color())
		} else {
			seenTier[c.Tier] = true
		}

		if len(c.Words) != GroupSize {
			add("category %q must have exactly %d words, got %d", name, GroupSize, len(c.Words))
		}
		own := make(map[string]bool, len(c.Words))
		for _, w := range c.Words {
			n := NormalizeWord(w)
			if n == "" {
				add("category %q has an empty word", name)
				continue
			}
			if own[n] {
				add("category %q has duplicate word %s", name, n)
				continue
			}
			own[n] = true
			all[n]++
			total++
		}
	}
	for _, t := range Tiers {
		if !seenTier[t] {
			add("missing category tier: %s", t.Color())
		}
	}
	for w, n := range all {
		if n > 1 {
			add("word %s appears in %d categories", w, n)
		}
	}
	if total != WordCount {
		add("categories must contain exactly %d words, got %d", WordCount, total)
	}

	if len(words) != WordCount {
		add("puzzle must list exactly %d words, got %d", WordCount, len(words))
	}
	listed := make(map[string]bool, len(words))
	for _, w := range words {
		n := NormalizeWord(w)
		if listed[n] {
			add("puzzle words must be unique: %s repeated", n)
		}
		listed[n] = true
		if _, ok := all[n]; !ok {
			add("puzzle word %s is not in any category", n)
		}
	}
	for w := range all {
		if !listed[w] {
			add("category word %s missing from puzzle words", w)
		}
	}

	if len(problems) > 0 {
		return apperr.Wrap(ErrInvalid, &ValidationError{Problems: problems})
	}
	return nil
}

// Check validates p itself.
func (p Puzzle) Check() error {
	return Validate(p.Words, p.Categories)
}
