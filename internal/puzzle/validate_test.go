package puzzle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return SampleDrafts()[0]
}

func TestValidate_SamplesArePartitions(t *testing.T) {
	for _, d := range SampleDrafts() {
		require.NoError(t, Validate(d.Words, d.Categories))

		// the four groups partition the sixteen words
		seen := map[string]int{}
		for _, c := range d.Categories {
			for w := range c.WordSet() {
				seen[w]++
			}
		}
		require.Len(t, seen, WordCount)
		for w, n := range seen {
			assert.Equalf(t, 1, n, "word %s in %d groups", w, n)
		}
		assert.True(t, NewWordSet(d.Words...).Equal(wordsOf(d.Categories)))
	}
}

func wordsOf(cats []Category) WordSet {
	s := WordSet{}
	for _, c := range cats {
		for w := range c.WordSet() {
			s[w] = struct{}{}
		}
	}
	return s
}

func TestValidate_NormalizesBeforeComparing(t *testing.T) {
	d := validDraft()
	d.Words[0] = "  bass "
	d.Categories[1].Words[2] = "board"
	require.NoError(t, Validate(d.Words, d.Categories))
}

func TestValidate_Problems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *Draft)
		want   string
	}{
		{
			name:   "three categories",
			mutate: func(d *Draft) { d.Categories = d.Categories[:3] },
			want:   "exactly 4 categories",
		},
		{
			name:   "word shared by two categories",
			mutate: func(d *Draft) { d.Categories[2].Words[0] = "BASS" },
			want:   "appears in 2 categories",
		},
		{
			name:   "duplicate inside category",
			mutate: func(d *Draft) { d.Categories[0].Words[1] = "bass" },
			want:   "duplicate word BASS",
		},
		{
			name:   "tier reused",
			mutate: func(d *Draft) { d.Categories[3].Tier = Tier1 },
			want:   "missing category tier: purple",
		},
		{
			name:   "invalid tier",
			mutate: func(d *Draft) { d.Categories[3].Tier = 9 },
			want:   "invalid tier 9",
		},
		{
			name:   "extra word in puzzle list",
			mutate: func(d *Draft) { d.Words[15] = "WHITEBOARD" },
			want:   "puzzle word WHITEBOARD is not in any category",
		},
		{
			name:   "short category",
			mutate: func(d *Draft) { d.Categories[0].Words = d.Categories[0].Words[:3] },
			want:   "must have exactly 4 words",
		},
		{
			name:   "missing name",
			mutate: func(d *Draft) { d.Categories[0].Name = "  " },
			want:   "missing a name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)

			err := Validate(d.Words, d.Categories)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalid)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Error(), tc.want)
		})
	}
}

func TestTierMapping(t *testing.T) {
	cases := []struct {
		tier  Tier
		label string
		color string
	}{
		{Tier1, "easy", "yellow"},
		{Tier2, "medium", "green"},
		{Tier3, "hard", "blue"},
		{Tier4, "difficult", "purple"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, tc.tier.Label())
		assert.Equal(t, tc.color, tc.tier.Color())

		got, err := ParseTier(tc.color)
		require.NoError(t, err)
		assert.Equal(t, tc.tier, got)

		got, err = ParseTier(tc.tier.String())
		require.NoError(t, err)
		assert.Equal(t, tc.tier, got)
	}

	_, err := ParseTier("orange")
	assert.Error(t, err)
	assert.False(t, Tier(0).Valid())
}
