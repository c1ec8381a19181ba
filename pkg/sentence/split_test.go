package sentence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBasic(t *testing.T) {
	got := Split("Hello world. How are you? Fine!")
	assert.Equal(t, []string{"Hello world.", "How are you?", "Fine!"}, got)
}

func TestSplitAbbreviationIsNotSpecialCased(t *testing.T) {
	// This is the documented, intentionally unusual behavior: the
	// splitter has no notion of "e.g." being a single unit.
	got := Split("See the docs, e.g. the README, for details.")
	assert.Equal(t, []string{"See the docs, e.", "g.", "the README, for details."}, got)
}

func TestSplitDropsEmptyPieces(t *testing.T) {
	got := Split("One.   ..Two!")
	assert.Equal(t, []string{"One.", ".", ".", "Two!"}, got)
}

func TestSplitNoTrailingDelimiter(t *testing.T) {
	got := Split("No punctuation here")
	assert.Equal(t, []string{"No punctuation here"}, got)
}

func TestSplitEmpty(t *testing.T) {
	assert.Nil(t, Split(""))
	assert.Nil(t, Split("   "))
}

func TestCounts(t *testing.T) {
	words, chars, sentences := Counts("Hello world. Bye!")
	assert.Equal(t, 3, words)
	assert.Equal(t, len("Hello world. Bye!"), chars)
	assert.Equal(t, 2, sentences)
}

func TestReplace(t *testing.T) {
	sentences := Split("One. Two. Three.")
	replaced, err := Replace(sentences, 1, "Replaced.")
	require.NoError(t, err)
	assert.Equal(t, "One. Replaced. Three.", Join(replaced))
	// original untouched
	assert.Equal(t, "Two.", sentences[1])
}

func TestReplaceOutOfRange(t *testing.T) {
	_, err := Replace(Split("One."), 5, "x")
	require.Error(t, err)
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 5, oor.Index)
}
