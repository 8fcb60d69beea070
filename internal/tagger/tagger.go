// Package tagger assigns tags to document chunks.
package tagger

// FallbackTag is assigned when a document has no tags at all.
const FallbackTag = "Misc"

// FirstTag tags every chunk of a document with the document's first tag.
// It is a deliberately simple placeholder for a content-aware matcher;
// the contract is one tag per chunk, deterministic, content-independent.
type FirstTag struct{}

func NewFirstTag() *FirstTag {
	return &FirstTag{}
}

// Tag returns one tag per chunk. The output length always equals the input
// chunk count, for any tag list including an empty one.
func (FirstTag) Tag(chunks []string, tags []string) []string {
	tag := FallbackTag
	if len(tags) > 0 {
		tag = tags[0]
	}
	out := make([]string, len(chunks))
	for i := range out {
		out[i] = tag
	}
	return out
}
