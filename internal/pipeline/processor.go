// Package pipeline orchestrates per-document processing: metadata
// reconciliation, chunking, tagging, sidecar regeneration and the run report.
package pipeline

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"autorag/internal/domain"
	"autorag/internal/metadata"
)

// Options controls descriptor handling during a run.
type Options struct {
	// AutoDescriptor enables sidecar (re)generation after reconciliation.
	AutoDescriptor bool
	// OverwriteDescriptor derives doc_id and tags from the document itself,
	// ignoring any sidecar content, and forces the sidecar rewrite.
	OverwriteDescriptor bool
	// StrictDescriptorWrites makes a failed sidecar write abort that
	// document; when false the failure is recorded and the document is
	// still chunked.
	StrictDescriptorWrites bool
}

// Processor walks a documents tree and turns every Markdown file into
// tagged chunks plus a report entry. Documents are processed sequentially;
// a per-file failure is recorded and never aborts the run.
type Processor struct {
	meta    *metadata.Store
	chunker domain.Chunker
	tagger  domain.Tagger
	opts    Options
	log     *slog.Logger
}

func New(meta *metadata.Store, chunker domain.Chunker, tagger domain.Tagger, opts Options, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{meta: meta, chunker: chunker, tagger: tagger, opts: opts, log: log}
}

// Process walks all Markdown files under root recursively and returns the
// accumulated chunks plus the run report. filepath.WalkDir visits entries
// in lexical order per directory, which fixes the report order.
// The returned error covers the walk itself (e.g. a missing root), not
// individual documents.
func (p *Processor) Process(root string) ([]domain.Chunk, *domain.Report, error) {
	var all []domain.Chunk
	report := domain.NewReport()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != ".md" {
			return nil
		}
		chunks, entry, perr := p.processFile(path, report)
		if perr != nil {
			p.log.Warn("document processing failed", "file", path, "err", perr)
			report.Errors = append(report.Errors, domain.FileError{File: path, Err: perr.Error()})
			return nil
		}
		all = append(all, chunks...)
		report.Processed = append(report.Processed, entry)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return all, report, nil
}

func (p *Processor) processFile(path string, report *domain.Report) ([]domain.Chunk, domain.ProcessedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ProcessedFile{}, err
	}
	body := string(data)

	desc, found := p.meta.Load(path)
	headerTags := p.chunker.Headings(body)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	docID, tags := reconcile(desc, stem, headerTags, p.opts.OverwriteDescriptor)

	if p.opts.AutoDescriptor {
		regenerate := !found ||
			p.opts.OverwriteDescriptor ||
			desc.DocID != docID ||
			(len(desc.Tags) == 0 && len(headerTags) > 0)
		if regenerate {
			overwrite := p.opts.OverwriteDescriptor || !found
			if _, err := p.meta.Save(path, docID, tags, overwrite); err != nil {
				if p.opts.StrictDescriptorWrites {
					return nil, domain.ProcessedFile{}, fmt.Errorf("write sidecar: %w", err)
				}
				p.log.Warn("sidecar write failed, continuing", "file", path, "err", err)
				report.Errors = append(report.Errors, domain.FileError{File: path, Err: fmt.Sprintf("write sidecar: %v", err)})
			}
		}
	}

	sections := p.chunker.Split(body)
	chunkTags := p.tagger.Tag(sections, tags)
	chunks := make([]domain.Chunk, 0, len(sections))
	for i, text := range sections {
		chunks = append(chunks, domain.Chunk{
			Text:  text,
			DocID: docID,
			Tag:   chunkTags[i],
			Tags:  tags,
			Path:  path,
		})
	}

	entry := domain.ProcessedFile{File: path, DocID: docID, Tags: tags, Chunks: len(sections)}
	return chunks, entry, nil
}

// reconcile decides the final doc_id and tags from sidecar content versus
// header-derived values. With overwrite the sidecar content is ignored;
// otherwise sidecar values win and headers are the fallback.
func reconcile(desc domain.Descriptor, stem string, headerTags []string, overwrite bool) (string, []string) {
	if overwrite {
		return stem, emptyNotNil(headerTags)
	}
	docID := desc.DocID
	if docID == "" {
		docID = stem
	}
	if len(desc.Tags) > 0 {
		return docID, []string(desc.Tags)
	}
	return docID, emptyNotNil(headerTags)
}

// emptyNotNil keeps report serialization stable: tags is always a list.
func emptyNotNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
