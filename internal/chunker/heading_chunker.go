package chunker

import "strings"

// breakMarker is the structural delimiter between chunks: a level-2
// Markdown heading.
const breakMarker = "## "

// HeadingChunker splits Markdown bodies into sections delimited by
// level-2 headings. The heading line stays as the first line of its chunk.
type HeadingChunker struct{}

func NewHeadingChunker() *HeadingChunker {
	return &HeadingChunker{}
}

// Split scans the body line by line and flushes the accumulated buffer each
// time a break marker starts a new section. Chunks are trimmed and empty
// chunks are dropped, so a whitespace-only body yields no chunks and a body
// without level-2 headings yields exactly one.
func (c *HeadingChunker) Split(body string) []string {
	var chunks []string
	var buf []string
	flush := func() {
		if len(buf) == 0 {
			return
		}
		if text := strings.TrimSpace(strings.Join(buf, "\n")); text != "" {
			chunks = append(chunks, text)
		}
		buf = buf[:0]
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, breakMarker) {
			flush()
		}
		buf = append(buf, line)
	}
	flush()
	return chunks
}

// Headings returns the trimmed titles of all level-2 headings in document
// order, duplicates preserved. Used as the fallback source of tags.
func (c *HeadingChunker) Headings(body string) []string {
	var titles []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, breakMarker) {
			titles = append(titles, strings.TrimSpace(line[len(breakMarker):]))
		}
	}
	return titles
}
