package stats

import (
	"time"

	"example.com/wordlink/internal/apperr"
	"example.com/wordlink/internal/puzzle"
)

var ErrPlayerNotFound = apperr.New(apperr.NotFound, "stats_not_found", "user stats not found")

// Outcome is what a finished session contributes to the aggregates.
type Outcome struct {
	SessionID        string
	PuzzleID         string
	Username         string
	Won              bool
	MistakesMade     int
	TimeTakenSeconds int
}

func (o Outcome) Perfect() bool { return o.Won && o.MistakesMade == 0 }

type PlayerStats struct {
	Username             string    `json:"username"`
	GamesPlayed          int       `json:"totalGames"`
	Wins                 int       `json:"totalWins"`
	PerfectGames         int       `json:"perfectGames"`
	CurrentStreak        int       `json:"currentStreak"`
	BestStreak           int       `json:"bestStreak"`
	AvgCompletionSeconds float64   `json:"avgTimeSeconds"`
	AvgMistakes          float64   `json:"avgMistakes"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// IncrementalMean folds v into a mean taken over oldCount values.
func IncrementalMean(oldMean float64, oldCount int, v float64) float64 {
	if oldCount <= 0 {
		return v
	}
	return (oldMean*float64(oldCount) + v) / float64(oldCount+1)
}

func ApplyToPuzzle(ps puzzle.PlayStats, o Outcome) puzzle.PlayStats {
	n := ps.PlayCount
	return puzzle.PlayStats{
		PlayCount:            n + 1,
		AvgCompletionSeconds: IncrementalMean(ps.AvgCompletionSeconds, n, float64(o.TimeTakenSeconds)),
		AvgMistakes:          IncrementalMean(ps.AvgMistakes, n, float64(o.MistakesMade)),
	}
}

// ApplyToPlayer weights the running means by the player's own prior game count.
func ApplyToPlayer(p PlayerStats, o Outcome, now time.Time) PlayerStats {
	n := p.GamesPlayed
	p.Username = o.Username
	p.GamesPlayed = n + 1
	if o.Won {
		p.Wins++
		p.CurrentStreak++
	} else {
		p.CurrentStreak = 0
	}
	if o.Perfect() {
		p.PerfectGames++
	}
	p.BestStreak = max(p.BestStreak, p.CurrentStreak)
	p.AvgCompletionSeconds = IncrementalMean(p.AvgCompletionSeconds, n, float64(o.TimeTakenSeconds))
	p.AvgMistakes = IncrementalMean(p.AvgMistakes, n, float64(o.MistakesMade))
	p.UpdatedAt = now
	return p
}

// LocalStats is a client-side record offered for merging. Nil averages leave the stored
// values untouched.
type LocalStats struct {
	Username       string   `json:"username"`
	TotalGames     int      `json:"totalGames"`
	TotalWins      int      `json:"totalWins"`
	PerfectGames   int      `json:"perfectGames"`
	CurrentStreak  int      `json:"currentStreak"`
	BestStreak     int      `json:"bestStreak"`
	AvgTimeSeconds *float64 `json:"avgTimeSeconds,omitempty"`
	AvgMistakes    *float64 `json:"avgMistakes,omitempty"`
}

// Merge folds local stats into the stored record: counters take the larger value,
// averages are replaced when present.
func Merge(stored PlayerStats, in LocalStats, now time.Time) PlayerStats {
	out := stored
	out.Username = in.Username
	out.GamesPlayed = max(stored.GamesPlayed, in.TotalGames)
	out.Wins = max(stored.Wins, in.TotalWins)
	out.PerfectGames = max(stored.PerfectGames, in.PerfectGames)
	out.CurrentStreak = max(stored.CurrentStreak, in.CurrentStreak)
	out.BestStreak = max(stored.BestStreak, in.BestStreak, out.CurrentStreak)
	if in.AvgTimeSeconds != nil {
		out.AvgCompletionSeconds = *in.AvgTimeSeconds
	}
	if in.AvgMistakes != nil {
		out.AvgMistakes = *in.AvgMistakes
	}
	out.UpdatedAt = now
	return out
}
