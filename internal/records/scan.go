package records

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"notenav/internal/log"

	"gopkg.in/yaml.v3"
)

// frontmatter is the subset of note frontmatter the navigator reads.
type frontmatter struct {
	Tags   []string `yaml:"tags"`
	Hidden bool     `yaml:"hidden"`
}

var frontmatterFence = []byte("---")

// ParseFrontmatter extracts tags and the hidden flag from a note body
// and returns the body with the frontmatter block stripped. Notes
// without a frontmatter block come back unchanged.
func ParseFrontmatter(data []byte) (tags []string, hidden bool, body []byte) {
	body = data
	if !bytes.HasPrefix(data, frontmatterFence) {
		return nil, false, body
	}
	rest := data[len(frontmatterFence):]
	if len(rest) == 0 || (rest[0] != '\n' && rest[0] != '\r') {
		return nil, false, body
	}
	end := bytes.Index(rest, append([]byte("\n"), frontmatterFence...))
	if end < 0 {
		return nil, false, body
	}
	var fm frontmatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		log.With(log.F("error", err)).Debug("unparseable frontmatter, ignoring")
		return nil, false, body
	}
	after := rest[end+1+len(frontmatterFence):]
	if i := bytes.IndexByte(after, '\n'); i >= 0 {
		after = after[i+1:]
	} else {
		after = nil
	}
	return fm.Tags, fm.Hidden, after
}

// ScanDir walks root and fills store with one record per note file,
// keyed by slash-separated root-relative path ("/Inbox/a.md"). Tags and
// the hidden flag come from YAML frontmatter. onFile, when non-nil,
// receives each record with its frontmatter-stripped body, typically to
// feed a search index. Dotfiles and dot-directories are skipped.
func ScanDir(root string, store *Store, onFile func(rec Record, body []byte)) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.With(log.F("path", path), log.F("error", err)).Warn("skipping unreadable note")
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		tags, hidden, body := ParseFrontmatter(data)
		rec := Record{
			Path:   RelPath(root, path),
			Tags:   tags,
			Hidden: hidden,
			// Birth time is not portable; the modification time serves
			// for both created- and modified-keyed sorts on a fresh scan.
			Created:  info.ModTime(),
			Modified: info.ModTime(),
			Size:     info.Size(),
		}
		store.Put(rec)
		if onFile != nil {
			onFile(rec, body)
		}
		return nil
	})
}

// RelPath converts an absolute filesystem path under root to the
// slash-separated rooted form records are keyed by.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "/" + filepath.ToSlash(filepath.Base(path))
	}
	return "/" + filepath.ToSlash(rel)
}
