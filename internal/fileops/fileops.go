// Package fileops performs the mutating file actions behind the
// navigator: batch moves and deletes wrapped in coordinator operations
// so the projection layer can suppress refreshes while a batch runs,
// plus the open-style actions that only need slot accounting.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"notenav/internal/config"
	"notenav/internal/errors"
	"notenav/internal/log"
	"notenav/internal/ops"
	"notenav/internal/records"
)

// Manager executes file mutations against the filesystem and keeps the
// record store in sync so the post-operation refresh projects the final
// state of the batch.
type Manager struct {
	coord   *ops.Coordinator
	store   *records.Store
	cfg     *config.Config
	statFn  func(string) (os.FileInfo, error)
	moveFn  func(oldpath, newpath string) error
	delFn   func(string) error
	mkdirFn func(string, os.FileMode) error
}

// NewManager wires a Manager to the coordinator, record store, and
// settings it needs. The coordinator may be nil for standalone use.
func NewManager(coord *ops.Coordinator, store *records.Store, cfg *config.Config) *Manager {
	return &Manager{
		coord:   coord,
		store:   store,
		cfg:     cfg,
		statFn:  os.Stat,
		moveFn:  os.Rename,
		delFn:   os.Remove,
		mkdirFn: os.MkdirAll,
	}
}

// MoveResult records where one file of a batch ended up. Skipped is set
// when a collision with strategy "skip" left the file in place.
type MoveResult struct {
	Source  string
	Dest    string
	Skipped bool
}

// MoveFiles moves each path into destDir as one move-files operation.
// Collisions are re-checked immediately before each rename, since an
// earlier item of the same batch may have claimed the destination name.
// Per-item failures are collected; the batch keeps going.
func (m *Manager) MoveFiles(paths []string, destDir string) ([]MoveResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	done := m.begin(ops.KindMoveFiles, paths)
	defer done()

	if err := m.mkdirFn(destDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating destination directory %s", destDir)
	}

	results := make([]MoveResult, 0, len(paths))
	var failed []errors.ItemFailure
	for _, src := range paths {
		res, err := m.moveOne(src, destDir)
		if err != nil {
			log.With(log.F("path", src), log.F("error", err)).Warn("move failed, continuing batch")
			failed = append(failed, errors.ItemFailure{Path: src, Err: err})
			continue
		}
		results = append(results, res)
	}
	return results, errors.NewBatchError("move", failed)
}

func (m *Manager) moveOne(src, destDir string) (MoveResult, error) {
	src = filepath.Clean(src)
	dest := filepath.Join(destDir, filepath.Base(src))
	if src == dest {
		return MoveResult{Source: src, Dest: dest, Skipped: true}, nil
	}

	info, err := m.statFn(src)
	if err != nil {
		if os.IsNotExist(err) {
			return MoveResult{}, errors.NewFileError("source missing", src, errors.FileNotFound, err)
		}
		return MoveResult{}, errors.NewFileError("stat source", src, errors.FileOperationFailed, err)
	}
	if info.IsDir() {
		return MoveResult{}, errors.NewFileError("cannot move directory as file", src, errors.FileOperationFailed, nil)
	}

	final, err := m.resolveCollision(dest)
	if err != nil {
		return MoveResult{}, err
	}
	if final == "" {
		log.With(log.F("path", src)).Debug("skipping move, destination exists")
		return MoveResult{Source: src, Dest: src, Skipped: true}, nil
	}

	if err := m.moveFn(src, final); err != nil {
		return MoveResult{}, errors.NewFileError("rename", src, errors.FileOperationFailed, err)
	}
	m.store.Rename(src, final)
	log.With(log.F("from", src), log.F("to", final)).Debug("moved file")
	return MoveResult{Source: src, Dest: final}, nil
}

// resolveCollision returns the destination to use, an empty string to
// skip the item, or an error. The stat happens here, right before the
// rename, so batch-internal collisions are caught too.
func (m *Manager) resolveCollision(dest string) (string, error) {
	if _, err := m.statFn(dest); os.IsNotExist(err) {
		return dest, nil
	} else if err != nil {
		return "", errors.NewFileError("stat destination", dest, errors.FileOperationFailed, err)
	}

	switch m.cfg.Settings.Collision {
	case "skip":
		return "", nil
	case "overwrite":
		return dest, nil
	case "rename":
		return m.uniqueDestName(dest)
	default:
		return "", errors.NewKind(errors.InvalidConfig, fmt.Sprintf("unknown collision strategy: %s", m.cfg.Settings.Collision))
	}
}

func (m *Manager) uniqueDestName(original string) (string, error) {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	for counter := 1; counter <= 1000; counter++ {
		candidate := fmt.Sprintf("%s_(%d)%s", base, counter, ext)
		if _, err := m.statFn(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", errors.NewFileError("no unique name after 1000 attempts", original, errors.FileExists, nil)
}

// DeleteFiles removes each path as one delete-files operation.
// Per-item failures are collected; the batch keeps going.
func (m *Manager) DeleteFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	done := m.begin(ops.KindDeleteFiles, paths)
	defer done()

	var failed []errors.ItemFailure
	for _, path := range paths {
		path = filepath.Clean(path)
		if err := m.delFn(path); err != nil {
			if os.IsNotExist(err) {
				// Already gone; treat as deleted so the store converges.
				m.store.Delete(path)
				continue
			}
			log.With(log.F("path", path), log.F("error", err)).Warn("delete failed, continuing batch")
			failed = append(failed, errors.ItemFailure{Path: path, Err: err})
			continue
		}
		m.store.Delete(path)
		log.With(log.F("path", path)).Debug("deleted file")
	}
	return errors.NewBatchError("delete", failed)
}

// OpenActiveFile routes the open through the latest-wins lane: rapid
// successive opens settle all but the newest with a superseded error.
func (m *Manager) OpenActiveFile(path string, open func(path string) error) error {
	if m.coord == nil {
		return open(path)
	}
	return m.coord.RunLatestWins(ops.KindOpenActiveFile, func() error {
		return open(path)
	})
}

// OpenFolderNote wraps fn in an open-folder-note operation.
func (m *Manager) OpenFolderNote(fn func() error) error {
	return m.wrapped(ops.KindOpenFolderNote, fn)
}

// OpenVersionHistory wraps fn in an open-version-history operation.
func (m *Manager) OpenVersionHistory(fn func() error) error {
	return m.wrapped(ops.KindOpenVersionHistory, fn)
}

// OpenInNewContext wraps fn in an open-in-new-context operation.
func (m *Manager) OpenInNewContext(fn func() error) error {
	return m.wrapped(ops.KindOpenInNewContext, fn)
}

// OpenHomepage wraps fn in an open-homepage operation.
func (m *Manager) OpenHomepage(fn func() error) error {
	return m.wrapped(ops.KindOpenHomepage, fn)
}

// wrapped runs fn between Begin and End so the slot is released on
// every exit path, panics included.
func (m *Manager) wrapped(kind ops.Kind, fn func() error) error {
	done := m.begin(kind, nil)
	defer done()
	return fn()
}

func (m *Manager) begin(kind ops.Kind, payload interface{}) func() {
	if m.coord == nil {
		return func() {}
	}
	id := m.coord.Begin(kind, payload)
	return func() { m.coord.End(id) }
}
