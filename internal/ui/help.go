package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var helpContent = `
  File
  Ctrl+N        New document
  Ctrl+O        Open a file (local path or [user@]host:/path)
  Ctrl+S        Save (asks for a name the first time)
  F12 / Alt+S   Save As
  Ctrl+Q        Quit (asks when there are unsaved changes)
  Ctrl+C        Quit immediately

  Edit
  Ctrl+Z        Undo
  Ctrl+Y        Redo
  Ctrl+F        Find (Enter jumps to the first match)
  F3 / Ctrl+G   Find next
  Tab           Insert spaces

  Move
  Arrows        Move by character / line
  Home/End      Line start / end
  Ctrl+Home/End Document start / end
  PgUp/PgDn     Page up / down

  Prompts
  Tab           Complete the path
  Enter         Confirm      Esc  Cancel

  F1            Toggle this help overlay
`

var helpStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7D56F4")).
	Padding(1, 3).
	Bold(false)

// RenderHelp returns the help overlay view.
func RenderHelp(width, height int) string {
	box := helpStyle.Render(helpContent)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
