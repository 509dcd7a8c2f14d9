package types

import (
	"path/filepath"
	"strings"
	"time"
)

// File is a lightweight handle to one file in the navigated set.
// Path is the stable identity used as the render key everywhere.
type File struct {
	Path     string    `json:"path"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size,omitempty"`
}

// Name returns the base name of the file.
func (f *File) Name() string {
	return filepath.Base(f.Path)
}

// Folder returns the owning folder path, "/" for root-level files.
func (f *File) Folder() string {
	dir := filepath.Dir(f.Path)
	if dir == "." {
		return "/"
	}
	return dir
}

// Ext returns the lower-cased extension without the leading dot.
func (f *File) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
}

// Basename returns the name without its extension, used for folder-note
// detection and title sorting.
func (f *File) Basename() string {
	name := filepath.Base(f.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
