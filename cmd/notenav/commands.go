package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"notenav/internal/config"
	"notenav/internal/list"
	"notenav/internal/log"
	"notenav/internal/notify"
	"notenav/internal/ops"
	"notenav/internal/records"
	"notenav/internal/search"
	"notenav/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// session bundles the projection stack for one notes directory.
type session struct {
	root   string
	cfg    *config.Config
	store  *records.Store
	index  *search.Index
	coord  *ops.Coordinator
	engine *list.Engine
}

// newSession scans root into a fresh record store and wires an engine
// over it. When withFTS is set an in-memory full-text index is built
// from the note bodies; without it (or when FTS5 is unavailable) the
// engine falls back to token filtering.
func newSession(root string, withFTS bool, onUpdate func(*types.ListModel)) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	s := &session{root: root, cfg: cfg, store: records.NewStore(), coord: ops.NewCoordinator()}

	var onFile func(rec records.Record, body []byte)
	var ranked search.Provider
	if withFTS {
		idx, err := search.NewIndex(":memory:")
		if err != nil {
			log.With(log.F("error", err)).Warn("full-text index unavailable, falling back to token filter")
		} else if idx.Available() {
			s.index = idx
			ranked = idx
			onFile = func(rec records.Record, body []byte) {
				name := filepath.Base(rec.Path)
				if err := idx.Upsert(rec.Path, name, rec.Tags, string(body)); err != nil {
					log.With(log.F("path", rec.Path), log.F("error", err)).Warn("indexing failed")
				}
			}
		}
	}

	if err := records.ScanDir(root, s.store, onFile); err != nil {
		s.close()
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	s.engine = list.NewEngine(list.Deps{
		Collector:   &list.StoreCollector{Store: s.store, Profile: cfg.Profile()},
		Records:     s.store,
		Ranked:      ranked,
		Coordinator: s.coord,
		Config:      cfg,
		OnUpdate:    onUpdate,
	})
	return s, nil
}

func (s *session) close() {
	if s.engine != nil {
		s.engine.Close()
	}
	s.coord.Close()
	if s.index != nil {
		s.index.Close()
	}
}

func selectionFromFlags(cfg *config.Config, folder, tag string) types.Selection {
	if tag != "" {
		return types.TagSelection(tag)
	}
	if folder == "" {
		folder = "/"
	}
	return types.FolderSelection(folder, cfg.Settings.IncludeDescendants)
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func listCmd() *cobra.Command {
	var folder, tag, query string

	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "Project a scope once and print the list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(rootArg(args), false, nil)
			if err != nil {
				return err
			}
			defer s.close()

			s.engine.SetSelection(selectionFromFlags(s.cfg, folder, tag))
			if query != "" {
				s.engine.SetQuery(query)
			}
			fmt.Print(renderModel(s.engine.Project()))
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "/", "folder scope to project")
	cmd.Flags().StringVar(&tag, "tag", "", "tag scope to project instead of a folder")
	cmd.Flags().StringVar(&query, "query", "", "narrow the list with a search query")
	return cmd
}

func searchCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search note names, tags, and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(dir, true, nil)
			if err != nil {
				return err
			}
			defer s.close()

			query := strings.Join(args, " ")
			if s.index != nil {
				hits, err := s.index.Search(context.Background(), query)
				if err != nil {
					return err
				}
				for _, h := range hits {
					fmt.Printf("%7.3f  %s\n", h.Score, h.Path)
					if h.Excerpt != "" {
						fmt.Printf("         %s\n", h.Excerpt)
					}
				}
				return nil
			}

			// Token-filter fallback when FTS5 is not compiled in.
			s.engine.SetSelection(types.FolderSelection("/", true))
			s.engine.SetQuery(query)
			for _, f := range s.engine.Project().Files {
				fmt.Println(f.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "notes directory to search")
	return cmd
}

func watchCmd() *cobra.Command {
	var folder, tag string

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Run a live session and print each refresh",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(rootArg(args), false, func(m *types.ListModel) {
				fmt.Print("\n" + renderModel(m))
			})
			if err != nil {
				return err
			}
			defer s.close()

			watcher, err := notify.New()
			if err != nil {
				return err
			}
			if err := addWatchTree(watcher, s.root); err != nil {
				return err
			}
			if err := watcher.Start(); err != nil {
				return err
			}
			defer watcher.Stop()

			s.engine.SetSelection(selectionFromFlags(s.cfg, folder, tag))

			go func() {
				for ev := range watcher.Events() {
					applyFSEvent(s, ev)
				}
			}()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "/", "folder scope to project")
	cmd.Flags().StringVar(&tag, "tag", "", "tag scope to project instead of a folder")
	return cmd
}

// applyFSEvent converts a watcher event's absolute paths to the rooted
// form records use, keeps the store current, and hands the event to the
// engine for refresh gating.
func applyFSEvent(s *session, ev notify.Event) {
	ev.Path = records.RelPath(s.root, ev.Path)
	if ev.OldPath != "" {
		ev.OldPath = records.RelPath(s.root, ev.OldPath)
	}

	switch ev.Kind {
	case notify.EventCreate, notify.EventModify:
		abs := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(ev.Path, "/")))
		if strings.EqualFold(filepath.Ext(abs), ".md") {
			data, err := os.ReadFile(abs)
			if err == nil {
				if info, statErr := os.Stat(abs); statErr == nil {
					tags, hidden, _ := records.ParseFrontmatter(data)
					s.store.Put(records.Record{
						Path: ev.Path, Tags: tags, Hidden: hidden,
						Created: info.ModTime(), Modified: info.ModTime(), Size: info.Size(),
					})
				}
			}
		}
	case notify.EventDelete, notify.EventRename:
		s.store.Delete(ev.Path)
	}

	s.engine.HandleFileEvent(ev)
}

func addWatchTree(w *notify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.AddDirectory(path)
	})
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderModel prints the full projection: spacers as blank lines,
// headers emphasized, files with their pin/tag/hidden markers.
func renderModel(m *types.ListModel) string {
	var b strings.Builder
	for _, it := range m.Items {
		switch it.Kind {
		case types.ItemSpacerTop, types.ItemSpacerBottom:
			b.WriteString("\n")
		case types.ItemHeader:
			b.WriteString(headerStyle.Render(it.Header) + "\n")
		case types.ItemFile:
			line := "  " + it.File.Name()
			if it.Pinned {
				line = pinStyle.Render("📌") + line
			}
			var marks []string
			if it.HasTags {
				marks = append(marks, "#")
			}
			if it.HiddenShown {
				marks = append(marks, "hidden")
			}
			if len(marks) > 0 {
				line += " " + dimStyle.Render("["+strings.Join(marks, " ")+"]")
			}
			if it.Search != nil && it.Search.Excerpt != "" {
				line += "\n    " + dimStyle.Render(it.Search.Excerpt)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
