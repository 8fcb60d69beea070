// Package metadata reads and writes sidecar descriptor files.
//
// A descriptor lives next to its document with the same base name and a
// .yaml (canonical) or .yml extension, and carries the document's doc_id
// and tag list.
package metadata

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"autorag/internal/domain"
)

// extensions in probe priority order; the first match wins and the
// second is never consulted.
var extensions = []string{".yaml", ".yml"}

// Store is the sidecar descriptor accessor.
type Store struct {
	log *slog.Logger
}

// NewStore creates a descriptor store logging through the given logger.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{log: log}
}

// Load returns the descriptor for the given document and whether a sidecar
// file was found. Absence and parse failures both yield an empty descriptor;
// parse failures are logged but never propagated, so one malformed sidecar
// cannot abort a run.
func (s *Store) Load(docPath string) (domain.Descriptor, bool) {
	for _, ext := range extensions {
		path := withExt(docPath, ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			s.log.Warn("sidecar read failed", "path", path, "err", err)
			return domain.Descriptor{}, true
		}
		var desc domain.Descriptor
		if err := yaml.Unmarshal(data, &desc); err != nil {
			s.log.Warn("sidecar parse failed", "path", path, "err", err)
			return domain.Descriptor{}, true
		}
		return desc, true
	}
	return domain.Descriptor{}, false
}

// Save writes a descriptor for the given document using the canonical .yaml
// extension and returns the sidecar path. If a sidecar already exists and
// overwrite is false, nothing is written and the existing path is returned.
// Write failures are returned to the caller.
func (s *Store) Save(docPath, docID string, tags []string, overwrite bool) (string, error) {
	path := withExt(docPath, extensions[0])
	if _, err := os.Stat(path); err == nil && !overwrite {
		s.log.Debug("sidecar exists, skipping generation", "path", path)
		return path, nil
	}
	if tags == nil {
		tags = []string{}
	}
	data, err := yaml.Marshal(domain.Descriptor{DocID: docID, Tags: domain.TagList(tags)})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	s.log.Info("sidecar written", "path", path)
	return path, nil
}

// SidecarPath returns the canonical sidecar path for a document.
func SidecarPath(docPath string) string {
	return withExt(docPath, extensions[0])
}

func withExt(docPath, ext string) string {
	return strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ext
}
