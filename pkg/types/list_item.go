package types

// ItemKind discriminates the entries of a rendered list.
type ItemKind int

const (
	ItemFile ItemKind = iota
	ItemHeader
	ItemSpacerTop
	ItemSpacerBottom
)

// String returns a short name for the item kind.
func (k ItemKind) String() string {
	switch k {
	case ItemFile:
		return "file"
	case ItemHeader:
		return "header"
	case ItemSpacerTop:
		return "spacer-top"
	case ItemSpacerBottom:
		return "spacer-bottom"
	}
	return "unknown"
}

// MatchSpan is a half-open [Start, End) rune range inside a name or
// excerpt that matched a search term.
type MatchSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchMeta carries per-file search results for rendering highlights.
type SearchMeta struct {
	Score   float64     `json:"score"`
	Terms   []string    `json:"terms,omitempty"`
	Spans   []MatchSpan `json:"spans,omitempty"`
	Excerpt string      `json:"excerpt,omitempty"`
}

// ListItem is one renderable row: a file, a section header, or a layout
// spacer. Key is stable across recomputations for identical inputs.
type ListItem struct {
	Kind   ItemKind
	Key    string
	File   *File  // set for ItemFile
	Folder string // owning folder path, when relevant
	Header string // header label, set for ItemHeader

	Pinned      bool
	HasTags     bool
	HiddenShown bool // would be hidden, shown because the profile reveals hidden items
	FileIndex   int  // index into ListModel.Files, -1 for non-file items

	Search *SearchMeta
}

// ListModel is the render-ready projection output: the ordered item list
// plus the lookup indexes the rendering layer needs.
type ListModel struct {
	Items []ListItem

	// ListIndex maps file path to its position in Items.
	ListIndex map[string]int

	// Files is the ordered file array (file items only, in list order).
	Files []*File

	// FileIndex maps file path to its position in Files.
	FileIndex map[string]int

	// SearchMeta maps file path to its search metadata, nil-safe.
	SearchMeta map[string]*SearchMeta
}

// FileCount returns the number of file items in the model.
func (m *ListModel) FileCount() int {
	return len(m.Files)
}
