package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorag/internal/domain"
	"autorag/internal/embedding/hashed"
	"autorag/internal/vectorstore"
)

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{}, hashed.New())
	assert.Error(t, err)
}

func TestSearch_BeforeUploadFailsWithUsageError(t *testing.T) {
	st, err := New(Config{URL: "http://localhost:6333"}, hashed.New())
	require.NoError(t, err)

	_, err = st.Search("q", 3)
	assert.ErrorIs(t, err, vectorstore.ErrNoIndex)
}

func TestUpload_DropsRecreatesAndUpserts(t *testing.T) {
	var calls []string
	var upserted struct {
		Points []struct {
			ID      int             `json:"id"`
			Payload map[string]any  `json:"payload"`
			Vector  json.RawMessage `json:"vector"`
		} `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&upserted))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st, err := New(Config{URL: srv.URL}, hashed.New())
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{Text: "## Setup\nsteps", DocID: "guide", Tag: "Setup", Tags: []string{"Setup", "Usage"}, Path: "docs/guide.md"},
	}
	require.NoError(t, st.Upload(chunks, "docs"))

	require.Equal(t, []string{
		"DELETE /collections/docs",
		"PUT /collections/docs",
		"PUT /collections/docs/points",
	}, calls)
	require.Len(t, upserted.Points, 1)
	assert.Equal(t, "guide", upserted.Points[0].Payload["doc_id"])
	assert.Equal(t, "Setup", upserted.Points[0].Payload["tag"])
	assert.Equal(t, "docs/guide.md", upserted.Points[0].Payload["path"])
}

func TestSearch_ParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/docs/points/search" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{{
					"score": 0.91,
					"payload": map[string]any{
						"doc_id": "guide",
						"tag":    "Setup",
						"tags":   []string{"Setup", "Usage"},
						"path":   "docs/guide.md",
						"text":   "## Setup\nsteps",
					},
				}},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st, err := New(Config{URL: srv.URL}, hashed.New())
	require.NoError(t, err)
	require.NoError(t, st.Open("docs"))

	results, err := st.Search("setup steps", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.91, results[0].Score)
	assert.Equal(t, "guide", results[0].Chunk.DocID)
	assert.Equal(t, []string{"Setup", "Usage"}, results[0].Chunk.Tags)
}

func TestOpen_MissingCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	st, err := New(Config{URL: srv.URL}, hashed.New())
	require.NoError(t, err)
	assert.ErrorIs(t, st.Open("missing"), vectorstore.ErrNoIndex)
}
