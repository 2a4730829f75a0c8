// Package picker is the terminal clip picker behind smart paste. It lists
// the history most recent first, filters as you type and can delete clips.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hpungsan/tails/internal/ops"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// DeleteFunc removes the clip with id and returns the remaining history.
type DeleteFunc func(id string) []ops.ListItem

// Model is a filterable list of clips. Value semantics, like any tea.Model.
type Model struct {
	items     []ops.ListItem
	visible   []ops.ListItem
	selected  int
	scrollOff int
	maxHeight int
	filter    string
	width     int

	remove DeleteFunc

	chosen    string
	done      bool
	cancelled bool
}

// NewModel creates a picker over items. remove may be nil, which disables
// deleting.
func NewModel(items []ops.ListItem, remove DeleteFunc) Model {
	m := Model{
		items:     items,
		maxHeight: 10,
		remove:    remove,
	}
	m.applyFilter()
	return m
}

// Init returns nil; no commands needed at startup.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key and window-size messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			m.chosen = m.visible[m.selected].ID
			m.done = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			m.moveUp()
		case tea.KeyDown, tea.KeyCtrlN:
			m.moveDown()
		case tea.KeyCtrlD, tea.KeyDelete:
			m.deleteSelected()
		case tea.KeyBackspace:
			if m.filter != "" {
				r := []rune(m.filter)
				m = m.SetFilter(string(r[:len(r)-1]))
			}
		case tea.KeySpace:
			m = m.SetFilter(m.filter + " ")
		case tea.KeyRunes:
			m = m.SetFilter(m.filter + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Height > 4 {
			m.maxHeight = msg.Height - 4
			m.adjustScroll()
		}
	}
	return m, nil
}

// View renders the filter line, the visible clips and a key hint.
func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Paste clip"))
	b.WriteString(" ")
	b.WriteString(filterStyle.Render("> " + m.filter))
	b.WriteByte('\n')

	if len(m.visible) == 0 {
		b.WriteString(detailStyle.Render("  no matching clips"))
		b.WriteByte('\n')
	}
	end := min(m.scrollOff+m.maxHeight, len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		b.WriteString(m.formatItem(m.visible[i], i == m.selected))
		b.WriteByte('\n')
	}

	help := "enter paste · esc cancel"
	if m.remove != nil {
		help += " · ctrl+d delete"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m Model) formatItem(item ops.ListItem, selected bool) string {
	label := fmt.Sprintf("  %s", item.Label)
	detail := "  " + item.Detail
	if m.width > 0 {
		label = runewidth.Truncate(label, m.width, "…")
		room := m.width - runewidth.StringWidth(label)
		if room <= 2 {
			detail = ""
		} else {
			detail = runewidth.Truncate(detail, room, "…")
		}
	}
	if selected {
		label = selectedStyle.Render(label)
	}
	if detail == "" {
		return label
	}
	return label + detailStyle.Render(detail)
}

// SetFilter sets the filter string and refilters. Returns a new model.
func (m Model) SetFilter(f string) Model {
	m.filter = f
	m.selected = 0
	m.scrollOff = 0
	m.applyFilter()
	return m
}

// Chosen returns the ID of the picked clip. ok is false when the picker
// was dismissed or is still open.
func (m Model) Chosen() (id string, ok bool) {
	if !m.done || m.cancelled || m.chosen == "" {
		return "", false
	}
	return m.chosen, true
}

// VisibleItems returns the clips matching the filter.
func (m Model) VisibleItems() []ops.ListItem {
	return m.visible
}

// SelectedIndex returns the index within the visible items.
func (m Model) SelectedIndex() int {
	return m.selected
}

func (m *Model) moveUp() {
	if m.selected > 0 {
		m.selected--
		m.adjustScroll()
	}
}

func (m *Model) moveDown() {
	if m.selected < len(m.visible)-1 {
		m.selected++
		m.adjustScroll()
	}
}

func (m *Model) adjustScroll() {
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+m.maxHeight {
		m.scrollOff = m.selected - m.maxHeight + 1
	}
}

func (m *Model) deleteSelected() {
	if m.remove == nil || len(m.visible) == 0 {
		return
	}
	m.items = m.remove(m.visible[m.selected].ID)
	keep := m.selected
	m.applyFilter()
	m.selected = min(keep, max(len(m.visible)-1, 0))
	m.adjustScroll()
}

// applyFilter keeps items whose label or source file contains every
// space-separated word of the filter, case-insensitively.
func (m *Model) applyFilter() {
	words := strings.Fields(strings.ToLower(m.filter))
	m.visible = make([]ops.ListItem, 0, len(m.items))
	for _, item := range m.items {
		hay := strings.ToLower(item.Label + " " + item.SourceFile)
		match := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if match {
			m.visible = append(m.visible, item)
		}
	}
}
