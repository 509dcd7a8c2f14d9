package list

import (
	"testing"
	"time"

	"notenav/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateBuckets(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		ts   time.Time
		want string
	}{
		{time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC), "Today"},
		{time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC), "Yesterday"},
		{time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), "Previous 7 days"},
		{time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC), "Previous 30 days"},
		{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "March"},
		{time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), "2024"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, dateBucket(tc.ts, now), "ts=%s", tc.ts)
	}
}

func TestPartitionPins(t *testing.T) {
	files := []*types.File{
		{Path: "/Inbox/a.md"},
		{Path: "/Inbox/b.md"},
		{Path: "/Inbox/Sub/c.md"},
	}
	sel := types.FolderSelection("/Inbox", true)

	pins, rest := partitionPins(files, []string{"/Inbox/a.md", "/Inbox/Sub/c.md"}, sel, false)
	assert.Equal(t, []string{"/Inbox/a.md", "/Inbox/Sub/c.md"}, paths(pins))
	assert.Equal(t, []string{"/Inbox/b.md"}, paths(rest))

	// Exact-folder restriction drops the subfolder pin back to unpinned.
	pins, rest = partitionPins(files, []string{"/Inbox/a.md", "/Inbox/Sub/c.md"}, sel, true)
	assert.Equal(t, []string{"/Inbox/a.md"}, paths(pins))
	assert.Equal(t, []string{"/Inbox/b.md", "/Inbox/Sub/c.md"}, paths(rest))
}

func TestGroupKeyFolderView(t *testing.T) {
	sel := types.FolderSelection("/Inbox", true)

	key, label, prio := groupKey(&types.File{Path: "/Inbox/a.md"}, sel)
	assert.Equal(t, "/Inbox", key)
	assert.Equal(t, "Inbox", label)
	assert.Equal(t, 0, prio)

	key, label, prio = groupKey(&types.File{Path: "/Inbox/Sub/Deep/b.md"}, sel)
	assert.Equal(t, "/Inbox/Sub", key)
	assert.Equal(t, "Sub", label)
	assert.Equal(t, 1, prio)

	key, label, _ = groupKey(&types.File{Path: "/Elsewhere/c.md"}, sel)
	assert.Equal(t, rootBucket, key)
	assert.Equal(t, rootBucket, label)
}

func TestGroupKeyTagView(t *testing.T) {
	sel := types.TagSelection("work")

	key, label, _ := groupKey(&types.File{Path: "/Projects/Deep/a.md"}, sel)
	assert.Equal(t, "/Projects", key)
	assert.Equal(t, "Projects", label)

	key, label, _ = groupKey(&types.File{Path: "/rootfile.md"}, sel)
	assert.Equal(t, rootBucket, key)
	assert.Equal(t, rootBucket, label)
}

func TestFolderBucketsOrdered(t *testing.T) {
	sel := types.FolderSelection("/Inbox", true)
	files := []*types.File{
		{Path: "/Inbox/zeta/1.md"},
		{Path: "/Inbox/direct.md"},
		{Path: "/Inbox/Alpha/2.md"},
		{Path: "/Inbox/zeta/3.md"},
	}
	buckets := folderBuckets(files, sel)
	require.Len(t, buckets, 3)

	// Current folder first, then case-insensitive alphabetical.
	assert.Equal(t, "/Inbox", buckets[0].key)
	assert.Equal(t, "/Inbox/Alpha", buckets[1].key)
	assert.Equal(t, "/Inbox/zeta", buckets[2].key)
	assert.Equal(t, []string{"/Inbox/zeta/1.md", "/Inbox/zeta/3.md"}, paths(buckets[2].files))
}

func TestAssembleSpacersAlwaysPresent(t *testing.T) {
	items := assemble(nil, nil, types.GroupNone, types.Selection{}, types.SortModifiedDesc, time.Now(), nil)
	require.Len(t, items, 2)
	assert.Equal(t, types.ItemSpacerTop, items[0].Kind)
	assert.Equal(t, types.ItemSpacerBottom, items[1].Kind)
}

func TestAssembleNoneModeHeaderOnlyWhenBothSectionsPresent(t *testing.T) {
	a := &types.File{Path: "/a.md"}
	b := &types.File{Path: "/b.md"}
	now := time.Now()

	// Only unpinned: no headers at all.
	items := assemble(nil, []*types.File{a, b}, types.GroupNone, types.Selection{}, types.SortModifiedDesc, now, nil)
	for _, it := range items {
		assert.NotEqual(t, types.ItemHeader, it.Kind)
	}

	// Both sections: pinned header and the combined files header.
	items = assemble([]*types.File{a}, []*types.File{b}, types.GroupNone, types.Selection{}, types.SortModifiedDesc, now, nil)
	var headers []string
	for _, it := range items {
		if it.Kind == types.ItemHeader {
			headers = append(headers, it.Header)
		}
	}
	assert.Equal(t, []string{HeaderPinned, HeaderFiles}, headers)

	// Only pinned: just the pinned header.
	items = assemble([]*types.File{a}, nil, types.GroupNone, types.Selection{}, types.SortModifiedDesc, now, nil)
	headers = nil
	for _, it := range items {
		if it.Kind == types.ItemHeader {
			headers = append(headers, it.Header)
		}
	}
	assert.Equal(t, []string{HeaderPinned}, headers)
}

func TestAssembleCurrentFolderHeaderSuppression(t *testing.T) {
	sel := types.FolderSelection("/Inbox", true)
	direct := &types.File{Path: "/Inbox/direct.md"}
	deep := &types.File{Path: "/Inbox/Sub/deep.md"}
	now := time.Now()

	// Without pins the current folder's own bucket goes headerless.
	items := assemble(nil, []*types.File{direct, deep}, types.GroupByFolder, sel, types.SortModifiedDesc, now, nil)
	var headers []string
	for _, it := range items {
		if it.Kind == types.ItemHeader {
			headers = append(headers, it.Header)
		}
	}
	assert.Equal(t, []string{"Sub"}, headers)

	// With pins the current-folder header is emitted.
	pinned := &types.File{Path: "/Inbox/pinned.md"}
	items = assemble([]*types.File{pinned}, []*types.File{direct, deep}, types.GroupByFolder, sel, types.SortModifiedDesc, now, nil)
	headers = nil
	for _, it := range items {
		if it.Kind == types.ItemHeader {
			headers = append(headers, it.Header)
		}
	}
	assert.Equal(t, []string{HeaderPinned, "Inbox", "Sub"}, headers)
}
