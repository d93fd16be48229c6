package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKeepsPunctuationAttached(t *testing.T) {
	got := Split("Sentence one. Sentence two! Sentence three?")
	assert.Equal(t, []string{"Sentence one.", "Sentence two!", "Sentence three?"}, got)
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("   \n\t "))
}

func TestSplitSingleSentenceWithoutTerminator(t *testing.T) {
	got := Split("no terminal punctuation here")
	assert.Equal(t, []string{"no terminal punctuation here"}, got)
}

func TestSplitTrailingFragment(t *testing.T) {
	got := Split("Done. And then")
	assert.Equal(t, []string{"Done.", "And then"}, got)
}

func TestSplitStackedPunctuation(t *testing.T) {
	// Only the last terminator before whitespace is a boundary; the rest
	// stays inside the sentence.
	got := Split("Really?! Yes.")
	assert.Equal(t, []string{"Really?!", "Yes."}, got)
}

func TestSplitConsumesWhitespaceRuns(t *testing.T) {
	got := Split("A.  \n\tB.")
	assert.Equal(t, []string{"A.", "B."}, got)
}

func TestSplitNoTrailingSentenceAfterFinalTerminator(t *testing.T) {
	got := Split("Only one.")
	assert.Equal(t, []string{"Only one."}, got)
}
