package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2)

	titleModifiedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFD866")).
				Background(lipgloss.Color("#1A1A1A")).
				Padding(0, 1)

	titleBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#0F0F0F"))
)

// Title returns the window title for a document path.
func Title(path string) string {
	if path == "" {
		return "Notepad"
	}
	return "Notepad (" + path + ")"
}

// RenderTitleBar renders the title and, for unsaved changes, a
// "[modified]" marker.
func RenderTitleBar(path string, modified bool, width int) string {
	parts := []string{titleStyle.Render(Title(path))}
	if modified {
		parts = append(parts, titleModifiedStyle.Render("[modified]"))
	}

	bar := strings.Join(parts, " ")
	padding := width - lipgloss.Width(bar)
	if padding > 0 {
		bar += strings.Repeat(" ", padding)
	}

	return titleBarStyle.Width(width).Render(bar)
}
