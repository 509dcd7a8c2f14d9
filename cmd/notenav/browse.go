package main

import (
	"fmt"
	"strings"
	"sync/atomic"

	"notenav/internal/list"
	"notenav/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func browseCmd() *cobra.Command {
	var folder, tag string

	cmd := &cobra.Command{
		Use:   "browse [directory]",
		Short: "Browse the list interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prog atomic.Pointer[tea.Program]
			s, err := newSession(rootArg(args), true, func(m *types.ListModel) {
				if p := prog.Load(); p != nil {
					p.Send(refreshMsg{model: m})
				}
			})
			if err != nil {
				return err
			}
			defer s.close()

			s.engine.SetSelection(selectionFromFlags(s.cfg, folder, tag))

			m := &browseModel{session: s, model: s.engine.Model()}
			p := tea.NewProgram(m, tea.WithAltScreen())
			prog.Store(p)
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "/", "folder scope to browse")
	cmd.Flags().StringVar(&tag, "tag", "", "tag scope to browse instead of a folder")
	return cmd
}

// refreshMsg delivers a freshly projected model from the engine's
// update callback into the bubbletea loop.
type refreshMsg struct {
	model *types.ListModel
}

type browseModel struct {
	session *session
	model   *types.ListModel

	cursor    int // index into model.Files
	query     string
	searching bool
	height    int
}

var (
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	searchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	pendingStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

// Init implements tea.Model.
func (m *browseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.model = msg.model
		m.clampCursor()
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.searching = true
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.model.Files)-1 {
				m.cursor++
			}
		case "p":
			m.togglePin()
		case "esc":
			if m.query != "" {
				m.query = ""
				m.session.engine.SetQuery("")
			}
		}
	}
	return m, nil
}

func (m *browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
	case "esc":
		m.searching = false
		m.query = ""
		m.session.engine.SetQuery("")
	case "backspace":
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
			m.session.engine.SetQuery(m.query)
		}
	case "ctrl+c":
		return m, tea.Quit
	case " ":
		m.query += " "
		m.session.engine.SetQuery(m.query)
	default:
		if msg.Type == tea.KeyRunes {
			m.query += string(msg.Runes)
			m.session.engine.SetQuery(m.query)
		}
	}
	return m, nil
}

func (m *browseModel) togglePin() {
	if m.cursor >= len(m.model.Files) {
		return
	}
	path := m.model.Files[m.cursor].Path
	sel := m.session.engine.Selection()
	cfg := m.session.cfg
	if contains(cfg.PinnedFor(sel.Kind), path) {
		cfg.Unpin(sel.Kind, path)
	} else {
		cfg.Pin(sel.Kind, path)
	}
	m.session.engine.Refresh()
}

func (m *browseModel) clampCursor() {
	if m.cursor >= len(m.model.Files) {
		m.cursor = len(m.model.Files) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m *browseModel) View() string {
	var b strings.Builder

	for _, it := range m.model.Items {
		switch it.Kind {
		case types.ItemSpacerTop, types.ItemSpacerBottom:
			b.WriteString("\n")
		case types.ItemHeader:
			b.WriteString(headerStyle.Render(it.Header) + "\n")
		case types.ItemFile:
			line := it.File.Name()
			if it.Pinned {
				line = "📌 " + line
			}
			if it.HiddenShown {
				line += dimStyle.Render(" [hidden]")
			}
			if it.FileIndex == m.cursor {
				line = cursorStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
	}

	if m.session.engine.Phase() == list.PhaseSearchPending {
		b.WriteString(pendingStyle.Render("searching…") + "\n")
	}

	status := fmt.Sprintf("%d files", len(m.model.Files))
	if m.searching || m.query != "" {
		status = searchStyle.Render("/"+m.query) + "  " + status
	}
	b.WriteString(dimStyle.Render(status+"  [/ search  p pin  q quit]") + "\n")
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
