package embedding

// Embedder converts free text into a numeric vector representation.
// Implementations degrade gracefully: a provider failure yields a sentinel
// vector rather than an error that would abort ingestion.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}
