package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_HeadingDelimited(t *testing.T) {
	body := "Intro\n## Setup\nStep 1\n## Usage\nStep 2"

	chunks := NewHeadingChunker().Split(body)
	require.Equal(t, []string{"Intro", "## Setup\nStep 1", "## Usage\nStep 2"}, chunks)
}

func TestSplit_NoHeadingsYieldsSingleChunk(t *testing.T) {
	body := "Just a paragraph.\nAnd another line."

	chunks := NewHeadingChunker().Split(body)
	require.Len(t, chunks, 1)
	assert.Equal(t, body, chunks[0])
}

func TestSplit_WhitespaceOnlyYieldsNothing(t *testing.T) {
	assert.Empty(t, NewHeadingChunker().Split("   \n\n\t\n"))
	assert.Empty(t, NewHeadingChunker().Split(""))
}

func TestSplit_LeadingHeadingHasNoPreambleChunk(t *testing.T) {
	body := "## First\ncontent\n## Second\nmore"

	chunks := NewHeadingChunker().Split(body)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "## First"))
	assert.True(t, strings.HasPrefix(chunks[1], "## Second"))
}

func TestSplit_DeeperHeadingsAreNotBreakMarkers(t *testing.T) {
	body := "## Top\n### Nested\ntext\n#### Deeper"

	chunks := NewHeadingChunker().Split(body)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "### Nested")
}

func TestSplit_HeadingWithoutSpaceIsNotABreakMarker(t *testing.T) {
	body := "intro\n##NotAHeading\nmore"

	chunks := NewHeadingChunker().Split(body)
	require.Len(t, chunks, 1)
}

func TestSplit_RejoinReconstructsBody(t *testing.T) {
	body := "Intro paragraph\n\n## Setup\nStep 1\nStep 2\n\n## Usage\nRun it\n"

	chunks := NewHeadingChunker().Split(body)
	joined := strings.Join(chunks, "\n\n")
	// Reconstruction modulo per-chunk whitespace trimming
	assert.Equal(t,
		"Intro paragraph\n\n## Setup\nStep 1\nStep 2\n\n## Usage\nRun it",
		joined)
}

func TestHeadings_OrderAndDuplicatesPreserved(t *testing.T) {
	body := "## Setup\nx\n## Usage\ny\n## Setup\nz"

	titles := NewHeadingChunker().Headings(body)
	assert.Equal(t, []string{"Setup", "Usage", "Setup"}, titles)
}

func TestHeadings_CountMatchesBreakMarkers(t *testing.T) {
	body := "pre\n## A\n### not counted\n##also not counted\n## B \ntail"

	titles := NewHeadingChunker().Headings(body)
	assert.Equal(t, []string{"A", "B"}, titles)
}

func TestHeadings_EmptyBody(t *testing.T) {
	assert.Empty(t, NewHeadingChunker().Headings("no headings here"))
}
