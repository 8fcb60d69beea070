package domain

import "gopkg.in/yaml.v3"

// Descriptor is the sidecar metadata stored next to a document.
// DocID defaults to the document's filename stem when absent.
type Descriptor struct {
	DocID string  `yaml:"doc_id"`
	Tags  TagList `yaml:"tags"`
}

// TagList is a sequence of tags that also accepts a bare scalar in YAML,
// coercing it to a one-element list.
type TagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TagList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*t = TagList{one}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*t = many
	return nil
}

// Chunk is a heading-delimited section of a document, the unit of indexing.
// Tag is the single assigned tag; Tags carries the document's full tag list
// for filtering on the backend side.
type Chunk struct {
	Text  string
	DocID string
	Tag   string
	Tags  []string
	Path  string
}

// SearchResult is a matching chunk with the backend's relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// ProcessedFile is a per-document report entry.
type ProcessedFile struct {
	File   string   `json:"file"`
	DocID  string   `json:"doc_id"`
	Tags   []string `json:"tags"`
	Chunks int      `json:"chunks"`
}

// FileError records a per-document failure that did not abort the run.
type FileError struct {
	File string `json:"file"`
	Err  string `json:"err"`
}

// Report aggregates the outcome of one processing run.
type Report struct {
	Processed []ProcessedFile `json:"processed"`
	Errors    []FileError     `json:"errors"`
}

// NewReport returns an empty report whose slices serialize as [] rather than null.
func NewReport() *Report {
	return &Report{Processed: []ProcessedFile{}, Errors: []FileError{}}
}

// Chunker splits a document body into ordered sections and extracts
// the heading titles used as fallback tags.
type Chunker interface {
	Split(body string) []string
	Headings(body string) []string
}

// Tagger assigns exactly one tag per chunk. Implementations must return a
// slice of the same length as chunks and be deterministic for the same inputs.
type Tagger interface {
	Tag(chunks []string, tags []string) []string
}
