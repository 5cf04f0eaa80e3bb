package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReferences_BulletPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reference.md"), []byte("x"), 0o644))

	body := "See the docs:\n- reference.md: API reference details (120 lines)\n"
	refs := LoadReferences(body, dir)
	require.Len(t, refs, 1)
	assert.Equal(t, "reference.md", refs[0].Name)
	assert.Equal(t, "API reference details", refs[0].Description)
	assert.Equal(t, 120, refs[0].LineCount)
}

func TestLoadReferences_BoldPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	body := "**notes.txt**: extra implementation notes\n"
	refs := LoadReferences(body, dir)
	require.Len(t, refs, 1)
	assert.Equal(t, "notes.txt", refs[0].Name)
}

func TestLoadReferences_InlinePattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.json"), []byte("x"), 0o644))

	body := "See schema.json for the full field list.\n"
	refs := LoadReferences(body, dir)
	require.Len(t, refs, 1)
	assert.Equal(t, "schema.json", refs[0].Name)
}

func TestLoadReferences_RejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	body := "- missing.md: not actually on disk\n"
	refs := LoadReferences(body, dir)
	assert.Empty(t, refs)
}

func TestLoadReferences_RejectsDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.sh"), []byte("x"), 0o644))
	body := "- script.sh: a shell script\n"
	refs := LoadReferences(body, dir)
	assert.Empty(t, refs)
}

func TestLoadReferences_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reference.md"), []byte("x"), 0o644))
	body := "- reference.md: first mention\n**reference.md**: second mention\n"
	refs := LoadReferences(body, dir)
	assert.Len(t, refs, 1)
}

func TestPromptSection_EmptyWhenNoFiles(t *testing.T) {
	assert.Equal(t, "", PromptSection(nil))
}

func TestPromptSection_RendersEntries(t *testing.T) {
	out := PromptSection([]FileReference{{Name: "a.md", Description: "about a", LineCount: 10}})
	assert.Contains(t, out, "a.md: about a (10 lines)")
}
