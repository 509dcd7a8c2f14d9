package types

import "strings"

// SortOption selects the primitive ordering of the base file set.
type SortOption string

const (
	SortModifiedDesc SortOption = "modified-desc"
	SortModifiedAsc  SortOption = "modified-asc"
	SortCreatedDesc  SortOption = "created-desc"
	SortCreatedAsc   SortOption = "created-asc"
	SortTitleAsc     SortOption = "title-asc"
	SortTitleDesc    SortOption = "title-desc"
)

// Valid reports whether the option is a known sort.
func (s SortOption) Valid() bool {
	switch s {
	case SortModifiedDesc, SortModifiedAsc, SortCreatedDesc, SortCreatedAsc, SortTitleAsc, SortTitleDesc:
		return true
	}
	return false
}

// ByTitle reports whether the sort key is the file title rather than a
// timestamp. Title sorts force grouping off.
func (s SortOption) ByTitle() bool {
	return s == SortTitleAsc || s == SortTitleDesc
}

// ByModified reports whether the active sort key is the modify time.
// Modify events only invalidate the base set under such a sort.
func (s SortOption) ByModified() bool {
	return s == SortModifiedDesc || s == SortModifiedAsc
}

// GroupMode selects how the unpinned section is grouped.
type GroupMode string

const (
	GroupNone     GroupMode = "none"
	GroupByDate   GroupMode = "date"
	GroupByFolder GroupMode = "folder"
)

// Valid reports whether the mode is a known grouping.
func (g GroupMode) Valid() bool {
	return g == GroupNone || g == GroupByDate || g == GroupByFolder
}

// EffectiveGroupMode resolves the grouping actually applied: the override
// for the scope when present, else the default, forced to none under
// title sorts.
func EffectiveGroupMode(def GroupMode, override GroupMode, sort SortOption) GroupMode {
	mode := def
	if override != "" {
		mode = override
	}
	if sort.ByTitle() {
		return GroupNone
	}
	if !mode.Valid() {
		return GroupNone
	}
	return mode
}

// NormalizeTag lower-cases a tag and strips any leading '#'.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
