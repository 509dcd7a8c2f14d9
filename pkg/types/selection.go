package types

// SelectionKind says what kind of scope is selected.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectFolder
	SelectTag
)

// String returns a short name for the selection kind.
func (k SelectionKind) String() string {
	switch k {
	case SelectFolder:
		return "folder"
	case SelectTag:
		return "tag"
	}
	return "none"
}

// Selection is the scope a list session projects: one folder or one tag.
type Selection struct {
	Kind SelectionKind

	// Folder path when Kind == SelectFolder, "/" for the root.
	Folder string

	// Tag (normalized, no leading '#') when Kind == SelectTag.
	Tag string

	// IncludeDescendants extends a folder scope to all descendants
	// instead of direct children only.
	IncludeDescendants bool
}

// Key returns a stable scope key usable for per-scope overrides.
func (s Selection) Key() string {
	switch s.Kind {
	case SelectFolder:
		return "folder:" + s.Folder
	case SelectTag:
		return "tag:" + s.Tag
	}
	return "none"
}

// FolderSelection returns a folder scope.
func FolderSelection(path string, descendants bool) Selection {
	return Selection{Kind: SelectFolder, Folder: path, IncludeDescendants: descendants}
}

// TagSelection returns a tag scope.
func TagSelection(tag string) Selection {
	return Selection{Kind: SelectTag, Tag: NormalizeTag(tag)}
}
