package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWord(t *testing.T) {
	assert.Equal(t, "BOARD", NormalizeWord(" board "))
	assert.Equal(t, "CHERRY", NormalizeWord("CHERRY"))
	assert.Equal(t, "", NormalizeWord("   "))
}

func TestWordSet(t *testing.T) {
	a := NewWordSet("apple", "CHERRY", " board ", "Floor")
	b := NewWordSet("APPLE", "CHERRY", "BOARD", "FLOOR")

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.True(t, a.Has("floor"))
	assert.Equal(t, 4, a.Shared(b))

	c := NewWordSet("APPLE", "CHERRY", "BOARD", "OAK")
	assert.False(t, a.Equal(c))
	assert.Equal(t, 3, a.Shared(c))

	// order does not matter
	assert.True(t, NewWordSet("D", "C", "B", "A").Equal(NewWordSet("A", "B", "C", "D")))
}

func TestSameGroupIgnoresNameAndTier(t *testing.T) {
	a := Category{Name: "x", Tier: Tier1, Words: []string{"A", "B", "C", "D"}}
	b := Category{Name: "y", Tier: Tier4, Words: []string{"d", "c", "b", "a"}}
	assert.True(t, SameGroup(a, b))
}
