package puzzle

// SampleDrafts returns the built-in sample puzzles used for seeding and offline generation.
func SampleDrafts() []Draft {
	return []Draft{
		{
			Words: []string{
				"BASS", "TROUT", "SALMON", "TUNA", "APPLE", "CHERRY", "BOARD", "FLOOR",
				"MAPLE", "OAK", "PINE", "BIRCH", "KEYBOARD", "SURFBOARD", "CARDBOARD", "DASHBOARD",
			},
			Categories: []Category{
				{Name: "Types of fish", Words: []string{"BASS", "TROUT", "SALMON", "TUNA"}, Tier: Tier1},
				{Name: "Things made of wood", Words: []string{"APPLE", "CHERRY", "BOARD", "FLOOR"}, Tier: Tier2},
				{Name: "Trees", Words: []string{"MAPLE", "OAK", "PINE", "BIRCH"}, Tier: Tier3},
				{Name: "Words ending in BOARD", Words: []string{"KEYBOARD", "SURFBOARD", "CARDBOARD", "DASHBOARD"}, Tier: Tier4},
			},
			Difficulty: DifficultyMedium,
			Reasoning:  "Fish and trees are direct; the wood group borrows tree names; the BOARD group needs pattern spotting.",
		},
		{
			Words: []string{
				"SPIN", "ROTATE", "TURN", "WHIRL", "ANGRY", "FURIOUS", "MAD", "IRATE",
				"PARIS", "LONDON", "BERLIN", "ROME", "CHICAGO", "BOSTON", "SEATTLE", "MIAMI",
			},
			Categories: []Category{
				{Name: "Words meaning to rotate", Words: []string{"SPIN", "ROTATE", "TURN", "WHIRL"}, Tier: Tier1},
				{Name: "Words meaning angry", Words: []string{"ANGRY", "FURIOUS", "MAD", "IRATE"}, Tier: Tier2},
				{Name: "European capitals", Words: []string{"PARIS", "LONDON", "BERLIN", "ROME"}, Tier: Tier3},
				{Name: "US cities", Words: []string{"CHICAGO", "BOSTON", "SEATTLE", "MIAMI"}, Tier: Tier4},
			},
			Difficulty: DifficultyEasy,
			Reasoning:  "Two semantic groups paired with two geography groups.",
		},
		{
			Words: []string{
				"BANK", "POOL", "WAVE", "CURRENT", "IRON", "PRESS", "STEAM", "WRINKLE",
				"JAVA", "PYTHON", "SWIFT", "RUBY", "RING", "BELL", "HORN", "WHISTLE",
			},
			Categories: []Category{
				{Name: "Things that make noise", Words: []string{"RING", "BELL", "HORN", "WHISTLE"}, Tier: Tier1},
				{Name: "River-related words", Words: []string{"BANK", "POOL", "WAVE", "CURRENT"}, Tier: Tier2},
				{Name: "Ironing-related", Words: []string{"IRON", "PRESS", "STEAM", "WRINKLE"}, Tier: Tier3},
				{Name: "Programming languages", Words: []string{"JAVA", "PYTHON", "SWIFT", "RUBY"}, Tier: Tier4},
			},
			Difficulty: DifficultyTricky,
			Reasoning:  "Every word has a second meaning that pulls it toward another group.",
		},
	}
}
