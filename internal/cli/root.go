// Package cli provides the autorag command tree.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"autorag/internal/config"
	"autorag/internal/embedding"
	"autorag/internal/embedding/hashed"
	"autorag/internal/embedding/openai"
	"autorag/internal/vectorstore"
	"autorag/internal/vectorstore/hnsw"
	"autorag/internal/vectorstore/qdrant"
)

// NewRootCmd creates the root command for the autorag CLI.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "autorag",
		Short: "Markdown ingestion into a searchable vector index",
		Long: `autorag walks a tree of Markdown documents, splits each into
heading-delimited chunks, reconciles chunk metadata with YAML sidecar
descriptors and uploads the tagged chunks into a named vector index.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"Path to YAML config (default: ./config.yaml, then ~/.config/autorag/config.yaml)")

	cmd.AddCommand(newRunCmd(&cfgPath))
	cmd.AddCommand(newSearchCmd(&cfgPath))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute loads the environment and runs the CLI.
func Execute() error {
	_ = godotenv.Load()
	return NewRootCmd().Execute()
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

// buildEmbedder assembles the configured embedder. A selected openai
// embedder without a usable credential degrades to the offline hashed
// embedder instead of failing the run.
func buildEmbedder(cfg *config.AppConfig, log *slog.Logger) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			oc = &config.OpenAIEmbedderConfig{APIKeyEnv: "OPENAI_API_KEY"}
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
			Logger:    log,
		})
		if err != nil {
			log.Warn("openai embedder unavailable, using offline hashed embedder", "err", err)
			return hashed.New(), nil
		}
		return client, nil
	case "hashed", "":
		return hashed.New(), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q (supported: hashed, openai)", cfg.Embedder.Type)
	}
}

// buildStore assembles the configured vector store backend, failing fast
// with guidance when the backend cannot be used.
func buildStore(cfg *config.AppConfig, emb embedding.Embedder, log *slog.Logger) (vectorstore.Store, error) {
	switch cfg.VectorStore.Type {
	case "hnsw", "":
		return hnsw.New(cfg.VectorStore.Root, emb, log)
	case "qdrant":
		qc := cfg.VectorStore.Qdrant
		if qc == nil {
			return nil, fmt.Errorf("qdrant backend selected but not configured: add a vector_store.qdrant section with the server url")
		}
		return qdrant.New(qdrant.Config{
			URL:     qc.URL,
			APIKey:  qc.APIKey,
			Timeout: time.Duration(qc.TimeoutSecs) * time.Second,
			Logger:  log,
		}, emb)
	default:
		return nil, fmt.Errorf("unknown vector store backend %q (supported: hnsw, qdrant)", cfg.VectorStore.Type)
	}
}
