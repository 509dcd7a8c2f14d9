package list

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"notenav/pkg/types"
)

// Section header labels.
const (
	HeaderPinned = "Pinned"
	HeaderFiles  = "Files"
)

// rootBucket is the sentinel key and label for files grouped at the
// scope root.
const rootBucket = "/"

// itemFlags carries the per-file flags the engine precomputes before
// assembly.
type itemFlags struct {
	hasTags     bool
	hiddenShown bool
	search      *types.SearchMeta
}

// partitionPins splits files into pinned and unpinned using the pin
// list for the current selection context. With exactFolder set, only
// direct children of the selected folder can be pinned. A file is never
// in both halves.
func partitionPins(files []*types.File, pinnedPaths []string, sel types.Selection, exactFolder bool) (pins, rest []*types.File) {
	pinnedSet := make(map[string]bool, len(pinnedPaths))
	for _, p := range pinnedPaths {
		pinnedSet[p] = true
	}
	for _, f := range files {
		isPinned := pinnedSet[f.Path]
		if isPinned && exactFolder && sel.Kind == types.SelectFolder && f.Folder() != sel.Folder {
			isPinned = false
		}
		if isPinned {
			pins = append(pins, f)
		} else {
			rest = append(rest, f)
		}
	}
	return pins, rest
}

// keyTime returns the timestamp matching the active sort field.
func keyTime(f *types.File, sortOpt types.SortOption) time.Time {
	switch sortOpt {
	case types.SortCreatedAsc, types.SortCreatedDesc:
		return f.Created
	default:
		return f.Modified
	}
}

// dateBucket names the date group a timestamp falls into, relative to
// now: Today, Yesterday, the last week, the last month, then months of
// the current year, then years.
func dateBucket(ts, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case !ts.Before(today):
		return "Today"
	case !ts.Before(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case !ts.Before(today.AddDate(0, 0, -7)):
		return "Previous 7 days"
	case !ts.Before(today.AddDate(0, 0, -30)):
		return "Previous 30 days"
	case ts.Year() == now.Year():
		return ts.Format("January")
	default:
		return ts.Format("2006")
	}
}

// folderBucket is one by-folder group.
type folderBucket struct {
	key      string
	label    string
	priority int // 0 places the selected folder's own bucket first
	files    []*types.File
}

// groupKey resolves the by-folder bucket for one file. Viewing a folder,
// its direct children bucket under the folder itself and deeper files
// bucket under their first relative path segment; files outside the
// scope fall into the root sentinel. Viewing a tag (or nothing), files
// bucket under their top-level folder.
func groupKey(f *types.File, sel types.Selection) (key, label string, priority int) {
	if sel.Kind == types.SelectFolder {
		folder := f.Folder()
		if folder == sel.Folder {
			label = filepath.Base(sel.Folder)
			if sel.Folder == rootBucket {
				label = rootBucket
			}
			return sel.Folder, label, 0
		}
		prefix := sel.Folder + "/"
		if sel.Folder == rootBucket {
			prefix = "/"
		}
		if !strings.HasPrefix(f.Path, prefix) {
			return rootBucket, rootBucket, 1
		}
		rel := strings.TrimPrefix(f.Path, prefix)
		seg, _, found := strings.Cut(rel, "/")
		if !found {
			return rootBucket, rootBucket, 1
		}
		if sel.Folder == rootBucket {
			return "/" + seg, seg, 1
		}
		return sel.Folder + "/" + seg, seg, 1
	}

	// Tag view or no selection: top-level folder.
	rel := strings.TrimPrefix(f.Path, "/")
	seg, _, found := strings.Cut(rel, "/")
	if !found {
		return rootBucket, rootBucket, 1
	}
	return "/" + seg, seg, 1
}

// folderBuckets groups files by resolved key, ordered by priority, then
// alphabetical label, then key. Files keep their incoming order inside
// each bucket.
func folderBuckets(files []*types.File, sel types.Selection) []*folderBucket {
	byKey := make(map[string]*folderBucket)
	var buckets []*folderBucket
	for _, f := range files {
		key, label, priority := groupKey(f, sel)
		b, ok := byKey[key]
		if !ok {
			b = &folderBucket{key: key, label: label, priority: priority}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.files = append(b.files, f)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		al, bl := strings.ToLower(a.label), strings.ToLower(b.label)
		if al != bl {
			return al < bl
		}
		return a.key < b.key
	})
	return buckets
}

// assemble synthesizes the final item sequence: top spacer, optional
// pinned section, grouped unpinned section, bottom spacer.
func assemble(pins, rest []*types.File, mode types.GroupMode, sel types.Selection,
	sortOpt types.SortOption, now time.Time, flags map[string]itemFlags) []types.ListItem {

	items := []types.ListItem{{Kind: types.ItemSpacerTop, Key: "spacer:top", FileIndex: -1}}

	if len(pins) > 0 {
		items = append(items, headerItem("header:pinned", HeaderPinned))
		for _, f := range pins {
			items = append(items, fileItem(f, true, flags))
		}
	}

	switch mode {
	case types.GroupByDate:
		last := ""
		for _, f := range rest {
			bucket := dateBucket(keyTime(f, sortOpt), now)
			if bucket != last {
				items = append(items, headerItem("header:date:"+bucket, bucket))
				last = bucket
			}
			items = append(items, fileItem(f, false, flags))
		}
	case types.GroupByFolder:
		for _, b := range folderBuckets(rest, sel) {
			// The selected folder's own bucket goes headerless unless a
			// pinned section sits above it.
			suppress := sel.Kind == types.SelectFolder && b.key == sel.Folder && len(pins) == 0
			if !suppress {
				items = append(items, headerItem("header:folder:"+b.key, b.label))
			}
			for _, f := range b.files {
				item := fileItem(f, false, flags)
				item.Folder = b.key
				items = append(items, item)
			}
		}
	default:
		if len(pins) > 0 && len(rest) > 0 {
			items = append(items, headerItem("header:files", HeaderFiles))
		}
		for _, f := range rest {
			items = append(items, fileItem(f, false, flags))
		}
	}

	return append(items, types.ListItem{Kind: types.ItemSpacerBottom, Key: "spacer:bottom", FileIndex: -1})
}

func headerItem(key, label string) types.ListItem {
	return types.ListItem{Kind: types.ItemHeader, Key: key, Header: label, FileIndex: -1}
}

func fileItem(f *types.File, pinned bool, flags map[string]itemFlags) types.ListItem {
	fl := flags[f.Path]
	return types.ListItem{
		Kind:        types.ItemFile,
		Key:         f.Path,
		File:        f,
		Folder:      f.Folder(),
		Pinned:      pinned,
		HasTags:     fl.hasTags,
		HiddenShown: fl.hiddenShown,
		FileIndex:   -1, // assigned when the model is finalized
		Search:      fl.search,
	}
}
