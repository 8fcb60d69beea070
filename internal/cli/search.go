package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"autorag/internal/logging"
	"autorag/internal/tui"
	"autorag/internal/vectorstore"
)

func newSearchCmd(cfgPath *string) *cobra.Command {
	var indexName string
	var topK int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search a built index",
		Long: `Opens a previously built index and searches it. With a query argument
the results are printed once; without one an interactive view starts.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, *cfgPath, indexName, topK, strings.TrimSpace(strings.Join(args, " ")))
		},
	}
	cmd.Flags().StringVar(&indexName, "index", "", "Name of the index to search")
	cmd.Flags().IntVar(&topK, "top", 5, "Number of results to return")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func runSearch(cmd *cobra.Command, cfgPath, indexName string, topK int, query string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	// logs go to the file only; stderr would tear the interactive view
	log, cleanup, err := logging.Setup(logging.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	emb, err := buildEmbedder(cfg, log)
	if err != nil {
		return err
	}
	store, err := buildStore(cfg, emb, log)
	if err != nil {
		return err
	}
	if err := store.Open(indexName); err != nil {
		if errors.Is(err, vectorstore.ErrNoIndex) {
			return fmt.Errorf("index %q has not been built yet: run `autorag run` first", indexName)
		}
		return err
	}

	if query != "" {
		return printResults(cmd, store, indexName, query, topK)
	}
	_, err = tea.NewProgram(tui.New(store, indexName), tea.WithAltScreen()).Run()
	return err
}

func printResults(cmd *cobra.Command, store vectorstore.Store, indexName, query string, topK int) error {
	results, err := store.Search(query, topK)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No results in index %q\n", indexName)
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%2d. score=%.3f  doc=%s  tag=%s\n", i+1, r.Score, r.Chunk.DocID, r.Chunk.Tag)
		fmt.Fprintf(out, "    %s\n", firstLine(r.Chunk.Text))
	}
	return nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
