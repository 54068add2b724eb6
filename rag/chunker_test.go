package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunksEmptyInput(t *testing.T) {
	assert.Empty(t, SplitChunks("", 800))
	assert.Empty(t, SplitChunks("   \n\n  \t\n", 800))
}

func TestSplitChunksRespectsMaxChars(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 200) + "\n\n" +
		strings.Repeat("epsilon zeta. ", 100)

	for _, max := range []int{50, 200, 800} {
		for _, c := range SplitChunks(text, max) {
			assert.LessOrEqual(t, len(c), max)
		}
	}
}

func TestSplitChunksKeepsParagraphsTogether(t *testing.T) {
	chunks := SplitChunks("first paragraph\n\nsecond paragraph\n\nthird paragraph", 800)
	require.Len(t, chunks, 1)
	assert.Equal(t, "first paragraph\n\nsecond paragraph\n\nthird paragraph", chunks[0])
}

func TestSplitChunksFlushesBeforeOverflow(t *testing.T) {
	a := strings.Repeat("a", 50)
	b := strings.Repeat("b", 50)
	c := strings.Repeat("c", 50)

	chunks := SplitChunks(a+"\n\n"+b+"\n\n"+c, 110)
	require.Len(t, chunks, 2)
	assert.Equal(t, a+"\n\n"+b, chunks[0])
	assert.Equal(t, c, chunks[1])
}

func TestSplitChunksHardSplitsOversizedParagraph(t *testing.T) {
	para := strings.Repeat("x", 2000)
	chunks := SplitChunks(para, 800)
	require.Len(t, chunks, 3)
	assert.Equal(t, 800, len(chunks[0]))
	assert.Equal(t, 800, len(chunks[1]))
	assert.Equal(t, 400, len(chunks[2]))
	assert.Equal(t, para, strings.Join(chunks, ""))
}

func TestSplitChunksOversizedParagraphFlushesBuffer(t *testing.T) {
	small := "intro paragraph"
	big := strings.Repeat("y", 900)

	chunks := SplitChunks(small+"\n\n"+big+"\n\nclosing paragraph", 800)
	require.Len(t, chunks, 4)
	assert.Equal(t, small, chunks[0])
	assert.Equal(t, big[:800], chunks[1])
	assert.Equal(t, big[800:], chunks[2])
	assert.Equal(t, "closing paragraph", chunks[3])
}

func TestSplitChunksExactMaxCharsKeptWhole(t *testing.T) {
	para := strings.Repeat("z", 800)
	chunks := SplitChunks(para, 800)
	require.Len(t, chunks, 1)
	assert.Equal(t, para, chunks[0])
}

func TestSplitChunksReconstruction(t *testing.T) {
	stripWhitespace := func(s string) string {
		return strings.Join(strings.Fields(s), "")
	}

	text := "one two three\n\nfour five six\n\n" + strings.Repeat("seven ", 300) + "\n\neight nine"

	// Hard splits may land mid-word, so compare the non-whitespace content.
	chunks := SplitChunks(text, 200)
	assert.Equal(t, stripWhitespace(text), stripWhitespace(strings.Join(chunks, "")))
}
