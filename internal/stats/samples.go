package stats

func ptr[T any](v T) *T { return &v }

// SamplePlayers are the player records inserted by the seed command.
func SamplePlayers() []LocalStats {
	return []LocalStats{
		{
			Username: "Alice", TotalGames: 15, TotalWins: 12, PerfectGames: 3,
			CurrentStreak: 5, BestStreak: 7, AvgTimeSeconds: ptr(245.5), AvgMistakes: ptr(1.2),
		},
		{
			Username: "Bob", TotalGames: 8, TotalWins: 5, PerfectGames: 1,
			CurrentStreak: 2, BestStreak: 3, AvgTimeSeconds: ptr(312.8), AvgMistakes: ptr(2.1),
		},
	}
}
