// Package list implements the list projection engine: it turns a scope,
// a visibility profile, a search state, and sort/group settings into the
// ordered, grouped, render-ready list model.
package list

import (
	"path/filepath"
	"sort"
	"strings"

	"notenav/internal/config"
	"notenav/internal/records"
	"notenav/pkg/types"
)

// Collector produces the base file set for a scope: visibility-filtered
// and primitively sorted.
type Collector interface {
	Collect(sel types.Selection, sortOpt types.SortOption, keepHidden bool) []*types.File
}

// StoreCollector is the default collector over the record store.
type StoreCollector struct {
	Store   *records.Store
	Profile *config.Profile
}

// Collect returns the scope's files after visibility filtering and
// folder-note suppression, sorted with a lexicographic path tie-break.
// With keepHidden set, files hidden by frontmatter flag, filename
// pattern, or ancestor-folder exclusion stay in the set (the engine
// flags them); tag-hidden files are always removed.
func (c *StoreCollector) Collect(sel types.Selection, sortOpt types.SortOption, keepHidden bool) []*types.File {
	var out []*types.File
	for _, f := range c.Store.Files() {
		if !InScope(sel, f.Path, c.tagsOf) {
			continue
		}
		if isFolderNote(f) {
			continue
		}
		if c.Profile.HidesTag(c.tagsOf(f.Path)) {
			continue
		}
		if !keepHidden && c.wouldHide(f) {
			continue
		}
		out = append(out, f)
	}
	SortFiles(out, sortOpt)
	return out
}

// WouldHide reports whether the profile would hide the file by
// frontmatter flag, filename pattern, or ancestor-folder exclusion.
// Used by the hidden-but-shown overlay.
func (c *StoreCollector) WouldHide(f *types.File) bool {
	return c.wouldHide(f)
}

func (c *StoreCollector) wouldHide(f *types.File) bool {
	if c.Profile.HidesFolder(f.Folder()) {
		return true
	}
	if c.Profile.MatchesHiddenFile(f.Name()) {
		return true
	}
	if rec, ok := c.Store.Record(f.Path); ok && rec.Hidden {
		return true
	}
	return false
}

func (c *StoreCollector) tagsOf(path string) []string {
	return c.Store.Tags(path)
}

// InScope reports whether a path belongs to the selection. tags is
// consulted only for tag scopes; nested tags match by prefix segment.
func InScope(sel types.Selection, path string, tags func(string) []string) bool {
	switch sel.Kind {
	case types.SelectFolder:
		folder := folderOf(path)
		if folder == sel.Folder {
			return true
		}
		if !sel.IncludeDescendants {
			return false
		}
		if sel.Folder == "/" {
			return true
		}
		return strings.HasPrefix(folder, sel.Folder+"/")
	case types.SelectTag:
		for _, tag := range tags(path) {
			if tag == sel.Tag || strings.HasPrefix(tag, sel.Tag+"/") {
				return true
			}
		}
		return false
	}
	return false
}

// isFolderNote reports whether the file is its folder's note: a file
// whose base name (sans extension) equals the owning folder's name.
func isFolderNote(f *types.File) bool {
	folder := f.Folder()
	if folder == "/" {
		return false
	}
	return f.Basename() == filepath.Base(folder)
}

// SortFiles orders files by the primitive sort, breaking every tie
// lexicographically on path so the order never depends on input order.
func SortFiles(files []*types.File, sortOpt types.SortOption) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		switch sortOpt {
		case types.SortModifiedDesc:
			if !a.Modified.Equal(b.Modified) {
				return a.Modified.After(b.Modified)
			}
		case types.SortModifiedAsc:
			if !a.Modified.Equal(b.Modified) {
				return a.Modified.Before(b.Modified)
			}
		case types.SortCreatedDesc:
			if !a.Created.Equal(b.Created) {
				return a.Created.After(b.Created)
			}
		case types.SortCreatedAsc:
			if !a.Created.Equal(b.Created) {
				return a.Created.Before(b.Created)
			}
		case types.SortTitleAsc:
			at, bt := strings.ToLower(a.Basename()), strings.ToLower(b.Basename())
			if at != bt {
				return at < bt
			}
		case types.SortTitleDesc:
			at, bt := strings.ToLower(a.Basename()), strings.ToLower(b.Basename())
			if at != bt {
				return at > bt
			}
		}
		return a.Path < b.Path
	})
}

func folderOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return "/"
	}
	return dir
}
