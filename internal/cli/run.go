package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"autorag/internal/chunker"
	"autorag/internal/config"
	"autorag/internal/domain"
	"autorag/internal/logging"
	"autorag/internal/metadata"
	"autorag/internal/pipeline"
	"autorag/internal/tagger"
)

type runOptions struct {
	docsPath      string
	dryRun        bool
	reportFile    string
	indexName     string
	noAutoYAML    bool
	overwriteYAML bool
}

func newRunCmd(cfgPath *string) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a documents tree and upload the chunks to an index",
		Long: `Walks the documents tree, chunks every Markdown file on its level-2
headings, reconciles doc_id and tags with the YAML sidecar, uploads the
tagged chunks into the configured vector index and writes a JSON report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, *cfgPath, opts)
		},
	}
	cmd.Flags().StringVar(&opts.docsPath, "docs", "docs", "Root directory of Markdown documents")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Process and report without uploading to the index")
	cmd.Flags().StringVar(&opts.reportFile, "report", "report.json", "Path of the JSON run report")
	cmd.Flags().StringVar(&opts.indexName, "index", "", "Index name (default: first document's doc_id)")
	cmd.Flags().BoolVar(&opts.noAutoYAML, "no-auto-yaml", false, "Do not generate or update sidecar descriptors")
	cmd.Flags().BoolVar(&opts.overwriteYAML, "overwrite-yaml", false, "Rebuild sidecar descriptors from the documents, ignoring existing values")
	return cmd
}

func runRun(cmd *cobra.Command, cfgPath string, opts runOptions) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	log, cleanup, err := logging.Setup(logging.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.File,
		Stderr:   cfg.Logging.Stderr,
	})
	if err != nil {
		return err
	}
	defer cleanup()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(opts.docsPath); err != nil {
		return fmt.Errorf("documents root %q not found", opts.docsPath)
	}
	log.Info("processing documents", "root", opts.docsPath)

	proc := pipeline.New(
		metadata.NewStore(log),
		chunker.NewHeadingChunker(),
		tagger.NewFirstTag(),
		pipeline.Options{
			AutoDescriptor:         !opts.noAutoYAML,
			OverwriteDescriptor:    opts.overwriteYAML,
			StrictDescriptorWrites: cfg.Pipeline.DescriptorWrites != "lenient",
		},
		log,
	)
	chunks, report, err := proc.Process(opts.docsPath)
	if err != nil {
		log.Error("document processing failed", "err", err)
		return err
	}
	fmt.Fprintf(out, "Processed %d chunks from %d documents (%d errors)\n",
		len(chunks), len(report.Processed), len(report.Errors))

	switch {
	case opts.dryRun:
		fmt.Fprintln(out, "Dry run: index upload skipped")
	default:
		indexName := opts.indexName
		if indexName == "" {
			indexName = pipeline.DefaultIndexName(report)
		}
		// an upload failure is reported but never fails the run:
		// the processing already happened and the report is still written
		if err := uploadChunks(cfg, chunks, indexName, log, out); err != nil {
			log.Error("index upload failed", "index", indexName, "err", err)
			fmt.Fprintf(out, "Index upload skipped: %v\n", err)
		}
	}

	if err := pipeline.WriteReport(opts.reportFile, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "Report written to %s\n", opts.reportFile)
	return nil
}

func uploadChunks(cfg *config.AppConfig, chunks []domain.Chunk, indexName string, log *slog.Logger, out io.Writer) error {
	emb, err := buildEmbedder(cfg, log)
	if err != nil {
		return err
	}
	store, err := buildStore(cfg, emb, log)
	if err != nil {
		return err
	}
	if err := store.Upload(chunks, indexName); err != nil {
		return err
	}
	fmt.Fprintf(out, "Uploaded %d chunks to index %q\n", len(chunks), indexName)
	if cfg.VectorStore.Type == "" || cfg.VectorStore.Type == "hnsw" {
		fmt.Fprintf(out, "Index stored under %s\n", filepath.Join(cfg.VectorStore.Root, indexName))
	}
	return nil
}
