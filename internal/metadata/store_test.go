package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_NoSidecar(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "guide.md")

	desc, found := NewStore(nil).Load(doc)
	assert.False(t, found)
	assert.Empty(t, desc.DocID)
	assert.Empty(t, desc.Tags)
}

func TestLoad_PrimaryExtensionWins(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	writeFile(t, filepath.Join(dir, "guide.yaml"), "doc_id: primary\ntags: [a]\n")
	writeFile(t, filepath.Join(dir, "guide.yml"), "doc_id: secondary\ntags: [b]\n")

	desc, found := NewStore(nil).Load(doc)
	assert.True(t, found)
	assert.Equal(t, "primary", desc.DocID)
	assert.Equal(t, []string{"a"}, []string(desc.Tags))
}

func TestLoad_FallsBackToYml(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	writeFile(t, filepath.Join(dir, "guide.yml"), "doc_id: secondary\n")

	desc, found := NewStore(nil).Load(doc)
	assert.True(t, found)
	assert.Equal(t, "secondary", desc.DocID)
}

func TestLoad_MalformedSidecarDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	writeFile(t, filepath.Join(dir, "guide.yaml"), "doc_id: [unclosed\n")

	desc, found := NewStore(nil).Load(doc)
	assert.True(t, found)
	assert.Empty(t, desc.DocID)
	assert.Empty(t, desc.Tags)
}

func TestLoad_ScalarTagCoercedToList(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	writeFile(t, filepath.Join(dir, "guide.yaml"), "doc_id: g\ntags: solo\n")

	desc, _ := NewStore(nil).Load(doc)
	assert.Equal(t, []string{"solo"}, []string(desc.Tags))
}

func TestSave_SkipsExistingWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	sidecar := filepath.Join(dir, "guide.yaml")
	writeFile(t, sidecar, "doc_id: original\ntags: [keep]\n")

	path, err := NewStore(nil).Save(doc, "replacement", []string{"new"}, false)
	require.NoError(t, err)
	assert.Equal(t, sidecar, path)

	data, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	assert.Contains(t, string(data), "original")
}

func TestSave_OverwriteRewrites(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	sidecar := filepath.Join(dir, "guide.yaml")
	writeFile(t, sidecar, "doc_id: original\n")

	_, err := NewStore(nil).Save(doc, "replacement", []string{"Setup", "Usage"}, true)
	require.NoError(t, err)

	desc, found := NewStore(nil).Load(doc)
	assert.True(t, found)
	assert.Equal(t, "replacement", desc.DocID)
	assert.Equal(t, []string{"Setup", "Usage"}, []string(desc.Tags))
}

func TestSave_KeyOrderAndUnicode(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")

	path, err := NewStore(nil).Save(doc, "гид", []string{"Настройка"}, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	// doc_id comes before tags, and non-ASCII text is kept verbatim
	assert.Less(t, strings.Index(text, "doc_id"), strings.Index(text, "tags"))
	assert.Contains(t, text, "гид")
	assert.Contains(t, text, "Настройка")
}

func TestSave_EmptyTagsWritesEmptyList(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")

	path, err := NewStore(nil).Save(doc, "guide", nil, false)
	require.NoError(t, err)

	desc, found := NewStore(nil).Load(doc)
	assert.True(t, found)
	assert.Equal(t, "guide", desc.DocID)
	assert.Empty(t, desc.Tags)
	assert.Equal(t, filepath.Join(dir, "guide.yaml"), path)
}
