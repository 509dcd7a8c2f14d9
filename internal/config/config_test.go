package config

import (
	"os"
	"path/filepath"
	"testing"

	"notenav/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, types.SortModifiedDesc, cfg.Settings.Sort)
	assert.Equal(t, types.GroupByDate, cfg.Settings.Group)
	assert.Equal(t, "rename", cfg.Settings.Collision)
	assert.Equal(t, "default", cfg.Profile().Name)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.ActiveProfile)
}

func TestLoadMergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
settings:
  sort: title-asc
  group: folder
  sort_overrides:
    "folder:/Inbox": modified-desc
profiles:
  - name: work
    hidden_folders: ["/Archive"]
    hidden_files: ["*.tmp", "_*"]
active_profile: work
pins:
  folder: ["/Inbox/A.md"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, types.SortTitleAsc, cfg.Settings.Sort)
	assert.Equal(t, types.GroupByFolder, cfg.Settings.Group)
	// Unset fields keep defaults.
	assert.Equal(t, "rename", cfg.Settings.Collision)
	assert.Equal(t, DefaultCoalesceDelayMs, cfg.Settings.CoalesceDelayMs)

	profile := cfg.Profile()
	assert.Equal(t, "work", profile.Name)
	assert.True(t, profile.HidesFolder("/Archive/2024"))
	assert.False(t, profile.HidesFolder("/Archived")) // prefix, not path component
	assert.True(t, profile.MatchesHiddenFile("draft.tmp"))
	assert.True(t, profile.MatchesHiddenFile("_private.md"))
	assert.False(t, profile.MatchesHiddenFile("notes.md"))

	assert.Equal(t, []string{"/Inbox/A.md"}, cfg.PinnedFor(types.SelectFolder))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := New()
	cfg.Settings.Sort = "by-vibes"
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Settings.Collision = "explode"
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.ActiveProfile = "missing"
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Profiles[0].HiddenFiles = []string{"[bad"}
	assert.Error(t, cfg.Validate())
}

func TestScopeResolution(t *testing.T) {
	cfg := New()
	cfg.Settings.Sort = types.SortModifiedDesc
	cfg.Settings.Group = types.GroupByDate
	cfg.Settings.SortOverrides["folder:/Projects"] = types.SortTitleAsc
	cfg.Settings.GroupOverrides["tag:work"] = types.GroupByFolder
	require.NoError(t, cfg.Validate())

	inbox := types.FolderSelection("/Inbox", false)
	projects := types.FolderSelection("/Projects", false)
	work := types.TagSelection("work")

	assert.Equal(t, types.SortModifiedDesc, cfg.SortFor(inbox))
	assert.Equal(t, types.SortTitleAsc, cfg.SortFor(projects))

	assert.Equal(t, types.GroupByDate, cfg.GroupFor(inbox))
	// Title sort forces grouping off even without an override.
	assert.Equal(t, types.GroupNone, cfg.GroupFor(projects))
	assert.Equal(t, types.GroupByFolder, cfg.GroupFor(work))
}

func TestPinUnpin(t *testing.T) {
	cfg := New()
	cfg.Pin(types.SelectFolder, "/Inbox/A.md")
	cfg.Pin(types.SelectFolder, "/Inbox/A.md") // duplicate ignored
	cfg.Pin(types.SelectTag, "/Inbox/B.md")

	assert.Equal(t, []string{"/Inbox/A.md"}, cfg.PinnedFor(types.SelectFolder))
	assert.Equal(t, []string{"/Inbox/B.md"}, cfg.PinnedFor(types.SelectTag))

	cfg.Unpin(types.SelectFolder, "/Inbox/A.md")
	assert.Empty(t, cfg.PinnedFor(types.SelectFolder))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := New()
	cfg.Pin(types.SelectFolder, "/Inbox/A.md")
	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/Inbox/A.md"}, loaded.PinnedFor(types.SelectFolder))
}
