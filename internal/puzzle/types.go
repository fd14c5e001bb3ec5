package puzzle

import (
	"fmt"
	"strings"
	"time"
)

const (
	GroupCount = 4
	GroupSize  = 4
	WordCount  = GroupCount * GroupSize
)

// Tier is the fixed difficulty rank of a category. Every puzzle uses each tier exactly once.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
)

var Tiers = []Tier{Tier1, Tier2, Tier3, Tier4}

func (t Tier) Valid() bool { return t >= Tier1 && t <= Tier4 }

// Label is the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case Tier1:
		return "easy"
	case Tier2:
		return "medium"
	case Tier3:
		return "hard"
	case Tier4:
		return "difficult"
	}
	return "unknown"
}

func (t Tier) Color() string {
	switch t {
	case Tier1:
		return "yellow"
	case Tier2:
		return "green"
	case Tier3:
		return "blue"
	case Tier4:
		return "purple"
	}
	return "unknown"
}

func (t Tier) String() string { return fmt.Sprintf("tier%d", int(t)) }

// ParseTier accepts a tier name ("tier2"), a color ("green") or a label ("medium", "tricky").
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tier1", "1", "yellow", "easy":
		return Tier1, nil
	case "tier2", "2", "green", "medium":
		return Tier2, nil
	case "tier3", "3", "blue", "hard", "tricky":
		return Tier3, nil
	case "tier4", "4", "purple", "difficult":
		return Tier4, nil
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// Difficulty is the puzzle-wide display label chosen at authoring time.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyTricky Difficulty = "tricky"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyTricky, DifficultyHard:
		return d, true
	}
	return "", false
}

type Category struct {
	Name      string   `json:"name"`
	Words     []string `json:"words"`
	Tier      Tier     `json:"tier"`
	Rationale string   `json:"rationale,omitempty"`
}

// PlayStats are the puzzle-level aggregates maintained by the stats updater.
type PlayStats struct {
	PlayCount            int     `json:"playCount"`
	AvgCompletionSeconds float64 `json:"avgCompletionSeconds"`
	AvgMistakes          float64 `json:"avgMistakes"`
}

type Puzzle struct {
	ID         string     `json:"id"`
	Words      []string   `json:"words"`
	Categories []Category `json:"categories"`
	Difficulty Difficulty `json:"difficulty"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Approved   bool       `json:"approved"`
	Stats      PlayStats  `json:"stats"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Draft is generator output before admission.
type Draft struct {
	Words      []string
	Categories []Category
	Difficulty Difficulty
	Reasoning  string
}
