// Package qdrant is a remote vector store backend speaking Qdrant's REST API.
// The index name maps to a Qdrant collection; Upload drops and recreates the
// collection, so a run always replaces prior contents wholesale.
package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"autorag/internal/domain"
	"autorag/internal/embedding"
	"autorag/internal/vectorstore"
)

// Store implements vectorstore.Store against a Qdrant server.
type Store struct {
	url        string
	apiKey     string
	embedder   embedding.Embedder
	client     *http.Client
	log        *slog.Logger
	collection string
}

// Config contains connection details for the Qdrant server.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates a Qdrant-backed store. It fails fast when no server URL is
// configured instead of surfacing the problem at first upload.
func New(cfg Config, emb embedding.Embedder) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant backend unavailable: no server url configured")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		embedder: emb,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}, nil
}

// Upload rebuilds the collection named indexName from the given chunks.
func (s *Store) Upload(chunks []domain.Chunk, indexName string) error {
	vectors := make([][]float64, 0, len(chunks))
	kept := make([]domain.Chunk, 0, len(chunks))
	dim := 0
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
			s.log.Warn("chunk vector rejected, skipping", "chunk", i, "path", c.Path)
			continue
		}
		vectors = append(vectors, vec)
		kept = append(kept, c)
	}
	if dim == 0 {
		dim = s.embedder.Dimension()
	}
	if dim == 0 {
		return errors.New("cannot create collection: embedding dimension unknown")
	}

	// Full replace: drop any previous collection of this name, then recreate.
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, indexName), nil)
	s.setHeaders(req)
	if resp, err := s.client.Do(req); err == nil {
		_ = resp.Body.Close()
	}
	create := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, indexName), create); err != nil {
		return err
	}

	points := make([]map[string]any, len(kept))
	for i := range kept {
		points[i] = map[string]any{
			"id":     i,
			"vector": vectors[i],
			"payload": map[string]any{
				"doc_id": kept[i].DocID,
				"tag":    kept[i].Tag,
				"tags":   kept[i].Tags,
				"path":   kept[i].Path,
				"text":   kept[i].Text,
			},
		}
	}
	if len(points) > 0 {
		body := map[string]any{"points": points}
		if err := s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, indexName), body); err != nil {
			return err
		}
	}
	s.log.Info("collection rebuilt", "collection", indexName, "points", len(points))
	s.collection = indexName
	return nil
}

// Open targets an existing collection for subsequent searches.
func (s *Store) Open(indexName string) error {
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, indexName), nil)
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: collection %q not found", vectorstore.ErrNoIndex, indexName)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant GET collection failed: %s", resp.Status)
	}
	s.collection = indexName
	return nil
}

// Search embeds the query and returns up to topK chunks in Qdrant's
// relevance order.
func (s *Store) Search(query string, topK int) ([]domain.SearchResult, error) {
	if s.collection == "" {
		return nil, vectorstore.ErrNoIndex
	}
	if topK <= 0 {
		topK = 5
	}
	vec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	req := map[string]any{
		"vector":       vec,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Chunk: chunkFromPayload(r.Payload), Score: r.Score})
	}
	return results, nil
}

func chunkFromPayload(payload map[string]any) domain.Chunk {
	chunk := domain.Chunk{}
	if v, ok := payload["doc_id"].(string); ok {
		chunk.DocID = v
	}
	if v, ok := payload["tag"].(string); ok {
		chunk.Tag = v
	}
	if v, ok := payload["path"].(string); ok {
		chunk.Path = v
	}
	if v, ok := payload["text"].(string); ok {
		chunk.Text = v
	}
	if raw, ok := payload["tags"].([]any); ok {
		for _, item := range raw {
			if tag, ok := item.(string); ok {
				chunk.Tags = append(chunk.Tags, tag)
			}
		}
	}
	return chunk
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *Store) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
