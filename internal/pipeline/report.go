package pipeline

import (
	"encoding/json"
	"os"

	"autorag/internal/domain"
)

// fallbackIndexName is used when no document produced a usable doc_id.
const fallbackIndexName = "auto-rag-index"

// WriteReport serializes the run report as indented JSON, written once per run.
func WriteReport(path string, report *domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// DefaultIndexName derives an index name from the report: the first
// processed document's doc_id, or a fixed fallback for an empty run.
func DefaultIndexName(report *domain.Report) string {
	if len(report.Processed) > 0 && report.Processed[0].DocID != "" {
		return report.Processed[0].DocID
	}
	return fallbackIndexName
}
