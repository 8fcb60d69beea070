package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorag/internal/domain"
)

func TestWriteReport_EmptyRunSerializesEmptyLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, domain.NewReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"processed": [], "errors": []}`, string(data))
}

func TestWriteReport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := domain.NewReport()
	report.Processed = append(report.Processed, domain.ProcessedFile{
		File: "docs/a.md", DocID: "a", Tags: []string{"Setup"}, Chunks: 2,
	})
	report.Errors = append(report.Errors, domain.FileError{File: "docs/b.md", Err: "unreadable"})
	require.NoError(t, WriteReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded domain.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *report, decoded)
}

func TestDefaultIndexName(t *testing.T) {
	report := domain.NewReport()
	assert.Equal(t, "auto-rag-index", DefaultIndexName(report))

	report.Processed = append(report.Processed, domain.ProcessedFile{DocID: "guide"})
	assert.Equal(t, "guide", DefaultIndexName(report))
}
