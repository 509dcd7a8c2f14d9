package fileops

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"notenav/internal/config"
	"notenav/internal/errors"
	"notenav/internal/ops"
	"notenav/internal/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func newManager(t *testing.T) (*Manager, *records.Store, *ops.Coordinator) {
	t.Helper()
	store := records.NewStore()
	coord := ops.NewCoordinator()
	t.Cleanup(coord.Close)
	cfg := config.New()
	return NewManager(coord, store, cfg), store, coord
}

func TestMoveFilesBatch(t *testing.T) {
	m, store, _ := newManager(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "archive")

	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	writeFile(t, a)
	writeFile(t, b)
	store.Put(records.Record{Path: a})
	store.Put(records.Record{Path: b})

	results, err := m.MoveFiles([]string{a, b}, dest)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.FileExists(t, filepath.Join(dest, "a.md"))
	assert.FileExists(t, filepath.Join(dest, "b.md"))
	assert.NoFileExists(t, a)

	// The record store follows the rename.
	_, ok := store.Record(a)
	assert.False(t, ok)
	_, ok = store.Record(filepath.Join(dest, "a.md"))
	assert.True(t, ok)
}

func TestMoveCollisionRename(t *testing.T) {
	m, _, _ := newManager(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	src := filepath.Join(dir, "note.md")
	writeFile(t, src)
	writeFile(t, filepath.Join(dest, "note.md"))

	results, err := m.MoveFiles([]string{src}, dest)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dest, "note_(1).md"), results[0].Dest)
	assert.FileExists(t, results[0].Dest)
}

func TestMoveBatchInternalCollision(t *testing.T) {
	// Two sources with the same base name moved in one batch: the
	// second collides with the first and gets a numbered name.
	m, _, _ := newManager(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	first := filepath.Join(dir, "one", "note.md")
	second := filepath.Join(dir, "two", "note.md")
	writeFile(t, first)
	writeFile(t, second)

	results, err := m.MoveFiles([]string{first, second}, dest)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dest, "note.md"), results[0].Dest)
	assert.Equal(t, filepath.Join(dest, "note_(1).md"), results[1].Dest)
}

func TestMoveCollisionSkip(t *testing.T) {
	m, _, _ := newManager(t)
	m.cfg.Settings.Collision = "skip"
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	src := filepath.Join(dir, "note.md")
	writeFile(t, src)
	writeFile(t, filepath.Join(dest, "note.md"))

	results, err := m.MoveFiles([]string{src}, dest)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.FileExists(t, src, "skipped file stays in place")
}

func TestMoveCollisionOverwrite(t *testing.T) {
	m, _, _ := newManager(t)
	m.cfg.Settings.Collision = "overwrite"
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	src := filepath.Join(dir, "note.md")
	writeFile(t, src)
	writeFile(t, filepath.Join(dest, "note.md"))

	results, err := m.MoveFiles([]string{src}, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "note.md"), results[0].Dest)
	assert.NoFileExists(t, src)
}

func TestMoveBatchContinuesPastFailures(t *testing.T) {
	m, _, _ := newManager(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	good := filepath.Join(dir, "good.md")
	missing := filepath.Join(dir, "missing.md")
	writeFile(t, good)

	results, err := m.MoveFiles([]string{missing, good}, dest)
	require.Error(t, err)
	require.True(t, errors.IsBatchError(err))

	var batch *errors.BatchError
	require.True(t, errors.As(err, &batch))
	require.Len(t, batch.Items, 1)
	assert.Equal(t, missing, batch.Items[0].Path)

	// The good file still moved.
	require.Len(t, results, 1)
	assert.FileExists(t, filepath.Join(dest, "good.md"))
}

func TestDeleteFilesBatch(t *testing.T) {
	m, store, _ := newManager(t)
	dir := t.TempDir()

	a := filepath.Join(dir, "a.md")
	writeFile(t, a)
	store.Put(records.Record{Path: a})
	gone := filepath.Join(dir, "gone.md")
	store.Put(records.Record{Path: gone})

	// Deleting an already-missing file is not a failure; the store
	// converges on the file being gone either way.
	err := m.DeleteFiles([]string{a, gone})
	require.NoError(t, err)
	assert.NoFileExists(t, a)
	assert.Equal(t, 0, store.Len())
}

func TestBatchEmitsSingleActivityEdgePair(t *testing.T) {
	m, _, coord := newManager(t)
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		writeFile(t, filepath.Join(dir, name))
	}

	var mu sync.Mutex
	var edges []bool
	unsubscribe := coord.Subscribe(func(kind ops.Kind, active bool) {
		if kind == ops.KindDeleteFiles {
			mu.Lock()
			edges = append(edges, active)
			mu.Unlock()
		}
	})
	defer unsubscribe()

	paths := []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "c.md"),
	}
	require.NoError(t, m.DeleteFiles(paths))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, edges, "one batch, one active/inactive pair")
}

func TestOpenActiveFileLatestWins(t *testing.T) {
	m, _, _ := newManager(t)

	var opened []string
	err := m.OpenActiveFile("/notes/a.md", func(path string) error {
		opened = append(opened, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/a.md"}, opened)
}

func TestOpenWrappersReleaseSlotOnPanic(t *testing.T) {
	m, _, coord := newManager(t)

	func() {
		defer func() { _ = recover() }()
		_ = m.OpenFolderNote(func() error {
			panic("opener blew up")
		})
	}()

	assert.False(t, coord.IsActive(ops.KindOpenFolderNote), "slot released on the panic path")
}

func TestOpenWrapperPropagatesError(t *testing.T) {
	m, _, coord := newManager(t)

	wantErr := errors.New("homepage unavailable")
	err := m.OpenHomepage(func() error { return wantErr })
	assert.Equal(t, wantErr, err)
	assert.False(t, coord.IsActive(ops.KindOpenHomepage))
}
