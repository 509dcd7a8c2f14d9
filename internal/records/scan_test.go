package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	tags, hidden, body := ParseFrontmatter([]byte("---\ntags: [work, projects/alpha]\nhidden: true\n---\nbody text\n"))
	assert.Equal(t, []string{"work", "projects/alpha"}, tags)
	assert.True(t, hidden)
	assert.Equal(t, "body text\n", string(body))
}

func TestParseFrontmatterAbsent(t *testing.T) {
	tags, hidden, body := ParseFrontmatter([]byte("just a note\n"))
	assert.Nil(t, tags)
	assert.False(t, hidden)
	assert.Equal(t, "just a note\n", string(body))
}

func TestParseFrontmatterUnterminated(t *testing.T) {
	input := []byte("---\ntags: [a]\nno closing fence")
	tags, _, body := ParseFrontmatter(input)
	assert.Nil(t, tags)
	assert.Equal(t, input, body)
}

func TestParseFrontmatterMalformedYAML(t *testing.T) {
	tags, hidden, _ := ParseFrontmatter([]byte("---\ntags: [unclosed\n---\nbody\n"))
	assert.Nil(t, tags)
	assert.False(t, hidden)
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("Inbox/a.md", "---\ntags: [work]\n---\nalpha\n")
	write("Inbox/b.md", "beta\n")
	write("notes.txt", "not a note\n")
	write(".trash/gone.md", "deleted\n")

	store := NewStore()
	var indexed []string
	err := ScanDir(root, store, func(rec Record, body []byte) {
		indexed = append(indexed, rec.Path)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	rec, ok := store.Record("/Inbox/a.md")
	require.True(t, ok)
	assert.Equal(t, []string{"work"}, rec.Tags)
	_, ok = store.Record("/Inbox/b.md")
	assert.True(t, ok)

	assert.ElementsMatch(t, []string{"/Inbox/a.md", "/Inbox/b.md"}, indexed)
}

func TestRelPath(t *testing.T) {
	assert.Equal(t, "/Inbox/a.md", RelPath("/vault", "/vault/Inbox/a.md"))
	assert.Equal(t, "/a.md", RelPath("/vault", "/vault/a.md"))
}
