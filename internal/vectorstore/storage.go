// Package vectorstore defines the backend-agnostic vector index contract.
package vectorstore

import (
	"errors"

	"autorag/internal/domain"
)

// ErrNoIndex is returned by Search when no index has been established via
// Upload or Open. This is a usage error, not an empty result.
var ErrNoIndex = errors.New("no index established: upload chunks or open an existing index first")

// Store persists tagged chunks under a named index and supports similarity
// search against it.
//
// Upload rebuilds the named index from scratch: any prior index of the same
// name is destroyed first, there is no incremental merge across runs.
// Open reuses an index that already exists in the backend.
type Store interface {
	Upload(chunks []domain.Chunk, indexName string) error
	Open(indexName string) error
	Search(query string, topK int) ([]domain.SearchResult, error)
}
