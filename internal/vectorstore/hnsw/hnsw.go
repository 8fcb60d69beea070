// Package hnsw is a local persistent vector store backed by a pure-Go
// HNSW graph. Each index lives in its own directory under the storage
// root as an exported graph file plus a gob sidecar with chunk payloads.
package hnsw

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	hnswgo "github.com/coder/hnsw"

	"autorag/internal/domain"
	"autorag/internal/embedding"
	"autorag/internal/vectorstore"
)

const (
	graphFile = "index.hnsw"
	metaFile  = "index.meta"
)

// Store implements vectorstore.Store on top of coder/hnsw.
type Store struct {
	root     string
	embedder embedding.Embedder
	log      *slog.Logger

	mu      sync.RWMutex
	current string
	graph   *hnswgo.Graph[uint64]
	chunks  map[uint64]domain.Chunk
	dim     int
}

// indexMeta is the gob-encoded sidecar holding everything the graph file
// does not: chunk payloads keyed by node and the vector dimension.
type indexMeta struct {
	Chunks    map[uint64]domain.Chunk
	Dimension int
}

// New creates a store rooted at the given directory, creating it if absent.
func New(root string, emb embedding.Embedder, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create index root: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{root: root, embedder: emb, log: log}, nil
}

func newGraph() *hnswgo.Graph[uint64] {
	g := hnswgo.NewGraph[uint64]()
	g.Distance = hnswgo.CosineDistance
	g.M = 16
	g.EfSearch = 20
	g.Ml = 0.25
	return g
}

// Upload rebuilds the named index from the given chunks. Any existing index
// of the same name is removed first. A chunk whose vector the graph rejects
// (dimension mismatch) is skipped with a warning; persisting the finished
// index is the build step and its failure is fatal for the upload.
func (s *Store) Upload(chunks []domain.Chunk, indexName string) error {
	dir := filepath.Join(s.root, indexName)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove previous index: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	s.log.Info("building index", "index", indexName, "chunks", len(chunks))

	graph := newGraph()
	payload := make(map[uint64]domain.Chunk, len(chunks))
	dim := 0
	var key uint64
	for i, c := range chunks {
		vec, err := s.embedder.Embed(c.Text)
		if err != nil {
			s.log.Warn("embedding failed, skipping chunk", "chunk", i, "path", c.Path, "err", err)
			continue
		}
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			s.log.Warn("chunk vector rejected by index, skipping", "chunk", i, "path", c.Path,
				"got", len(vec), "want", dim)
			continue
		}
		v := toFloat32(vec)
		normalizeInPlace(v)
		graph.Add(hnswgo.MakeNode(key, v))
		payload[key] = c
		key++
		if (i+1)%100 == 0 {
			s.log.Info("chunks indexed", "done", i+1, "total", len(chunks))
		}
	}

	if err := saveGraph(filepath.Join(dir, graphFile), graph); err != nil {
		return err
	}
	if err := saveMeta(filepath.Join(dir, metaFile), indexMeta{Chunks: payload, Dimension: dim}); err != nil {
		return err
	}
	s.log.Info("index built", "index", indexName, "vectors", len(payload))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = indexName
	s.graph = graph
	s.chunks = payload
	s.dim = dim
	return nil
}

// Open loads an existing on-disk index so it can be searched without a
// preceding Upload in this process.
func (s *Store) Open(indexName string) error {
	dir := filepath.Join(s.root, indexName)

	metaF, err := os.Open(filepath.Join(dir, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: index %q not found under %s", vectorstore.ErrNoIndex, indexName, s.root)
		}
		return fmt.Errorf("open index metadata: %w", err)
	}
	defer metaF.Close()
	var meta indexMeta
	if err := gob.NewDecoder(metaF).Decode(&meta); err != nil {
		return fmt.Errorf("decode index metadata: %w", err)
	}

	graphF, err := os.Open(filepath.Join(dir, graphFile))
	if err != nil {
		return fmt.Errorf("open index graph: %w", err)
	}
	defer graphF.Close()
	graph := newGraph()
	// coder/hnsw Import requires an io.ByteReader
	if err := graph.Import(bufio.NewReader(graphF)); err != nil {
		return fmt.Errorf("import index graph: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = indexName
	s.graph = graph
	s.chunks = meta.Chunks
	s.dim = meta.Dimension
	return nil
}

// Search embeds the query and returns up to topK chunks ranked by cosine
// similarity. It fails with ErrNoIndex before any Upload or Open.
func (s *Store) Search(query string, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return nil, vectorstore.ErrNoIndex
	}
	if topK <= 0 {
		topK = 5
	}
	vec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	if s.dim > 0 && len(vec) != s.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(vec), s.dim)
	}
	if s.graph.Len() == 0 {
		return []domain.SearchResult{}, nil
	}

	q := toFloat32(vec)
	normalizeInPlace(q)
	nodes := s.graph.Search(q, topK)

	results := make([]domain.SearchResult, 0, len(nodes))
	for _, node := range nodes {
		chunk, ok := s.chunks[node.Key]
		if !ok {
			continue
		}
		dist := s.graph.Distance(q, node.Value)
		results = append(results, domain.SearchResult{Chunk: chunk, Score: float64(1 - dist)})
	}
	return results, nil
}

func saveGraph(path string, graph *hnswgo.Graph[uint64]) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	if err := graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("export graph: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close graph file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename graph file: %w", err)
	}
	return nil
}

func saveMeta(path string, meta indexMeta) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close metadata file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename metadata file: %w", err)
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func normalizeInPlace(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
