package ui

import (
	"log"
	"path/filepath"

	"notepad/internal/remote"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RecentSelectMsg asks to open a file picked from the recent list.
type RecentSelectMsg struct {
	Path string
}

// RecentRemoveMsg asks to forget a recent file.
type RecentRemoveMsg struct {
	Path string
}

// RecentCancelMsg reports that the recent list was closed.
type RecentCancelMsg struct{}

// recentItem is one entry of the recent files list.
type recentItem struct {
	path string
}

func (r recentItem) Title() string {
	if remote.IsRemote(r.path) {
		if t, err := remote.ParseTarget(r.path); err == nil {
			return filepath.Base(t.Path)
		}
	}
	return filepath.Base(r.path)
}

func (r recentItem) Description() string {
	return r.path
}

func (r recentItem) FilterValue() string {
	return r.path
}

// RecentModel lists recently opened and saved files, most recent first.
type RecentModel struct {
	list list.Model
}

// NewRecentModel creates the list for paths.
func NewRecentModel(paths []string, width, height int) RecentModel {
	items := make([]list.Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, recentItem{path: p})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#FFFFFF")).
		BorderForeground(lipgloss.Color("#7D56F4"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#AAAAAA")).
		BorderForeground(lipgloss.Color("#7D56F4"))

	w, h := width/2, height-6
	if w < 40 {
		w = 40
	}
	if h < 4 {
		h = 4
	}
	l := list.New(items, delegate, w, h)
	l.Title = "Recent files"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return RecentModel{list: l}
}

// Len returns the number of entries.
func (m RecentModel) Len() int {
	return len(m.list.Items())
}

// Update handles keys for the list: Enter opens, Delete forgets, Esc
// closes.
func (m RecentModel) Update(msg tea.Msg) (RecentModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			item, ok := m.list.SelectedItem().(recentItem)
			if !ok {
				return m, nil
			}
			log.Printf("[RecentModel] selected %s", item.path)
			return m, func() tea.Msg { return RecentSelectMsg{Path: item.path} }

		case "delete", "x":
			item, ok := m.list.SelectedItem().(recentItem)
			if !ok {
				return m, nil
			}
			m.list.RemoveItem(m.list.Index())
			return m, func() tea.Msg { return RecentRemoveMsg{Path: item.path} }

		case "esc":
			return m, func() tea.Msg { return RecentCancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list in a centered box.
func (m RecentModel) View(width, height int) string {
	body := m.list.View()
	if m.Len() == 0 {
		body = promptTitleStyle.Render("Recent files") + "\n\n" + promptHintStyle.Render("No recent files yet")
	}
	body += "\n\n" + promptHintStyle.Render("Enter: open • Del/x: forget • Esc: close")
	box := recentBoxStyle.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

var recentBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7D56F4")).
	Padding(1, 2)
