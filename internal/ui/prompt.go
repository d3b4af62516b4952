package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"notepad/internal/remote"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// PromptKind says what a prompt's answer is for.
type PromptKind string

const (
	PromptOpen   PromptKind = "open"
	PromptSaveAs PromptKind = "save-as"
)

// PromptSubmitMsg carries the text entered in a prompt.
type PromptSubmitMsg struct {
	Kind  PromptKind
	Value string
}

// PromptCancelMsg reports that a prompt was dismissed with Esc.
type PromptCancelMsg struct {
	Kind PromptKind
}

// maxCompletions is how many candidates the prompt lists under the input.
const maxCompletions = 5

// PromptModel asks for a file path. Tab completes the last path element by
// fuzzy matching the entries of the typed directory.
type PromptModel struct {
	kind  PromptKind
	title string
	input textinput.Model
	err   string

	// readDir lists a directory for completion.
	readDir func(dir string) ([]os.DirEntry, error)

	candidates []string // full values, best match first
	candIdx    int
}

// NewPromptModel creates a focused prompt pre-filled with value.
func NewPromptModel(kind PromptKind, title, value string) PromptModel {
	t := textinput.New()
	t.Placeholder = "path or [user@]host:/path"
	t.CharLimit = 1024
	t.Width = 56
	t.SetValue(value)
	t.CursorEnd()
	t.Focus()
	return PromptModel{
		kind:    kind,
		title:   title,
		input:   t,
		readDir: os.ReadDir,
	}
}

// Kind returns what the prompt is for.
func (m PromptModel) Kind() PromptKind {
	return m.kind
}

// Value returns the current input.
func (m PromptModel) Value() string {
	return m.input.Value()
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key messages for the prompt.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				m.err = "Enter a file name"
				return m, nil
			}
			kind := m.kind
			return m, func() tea.Msg { return PromptSubmitMsg{Kind: kind, Value: value} }

		case "esc":
			kind := m.kind
			return m, func() tea.Msg { return PromptCancelMsg{Kind: kind} }

		case "tab":
			m.complete()
			return m, nil
		}
		m.candidates = nil
		m.err = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// complete fills in the best match for the last path element. Pressing Tab
// again without typing cycles through the other candidates.
func (m *PromptModel) complete() {
	value := m.input.Value()
	if len(m.candidates) > 0 && value == m.candidates[m.candIdx] {
		m.candIdx = (m.candIdx + 1) % len(m.candidates)
		m.setValue(m.candidates[m.candIdx])
		return
	}

	m.candidates, m.candIdx = nil, 0
	if remote.IsRemote(value) {
		m.err = "No completion for remote paths"
		return
	}
	names, err := m.entries(value)
	if err != nil {
		m.err = err.Error()
		return
	}
	dir, base := filepath.Split(value)
	var picks []string
	if base == "" {
		picks = names
	} else {
		for _, found := range fuzzy.Find(base, names) {
			picks = append(picks, found.Str)
		}
	}
	if len(picks) == 0 {
		m.err = "No matches"
		return
	}
	for _, p := range picks {
		m.candidates = append(m.candidates, dir+p)
	}
	m.setValue(m.candidates[0])
}

// entries lists the directory part of value, directories with a trailing
// separator, sorted by name.
func (m PromptModel) entries(value string) ([]string, error) {
	dir, _ := filepath.Split(value)
	list := dir
	if list == "" {
		list = "."
	} else if strings.HasPrefix(list, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			list = filepath.Join(home, list[2:])
		}
	}
	ents, err := m.readDir(list)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *PromptModel) setValue(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
	m.err = ""
}

// View renders the prompt as a centered box.
func (m PromptModel) View(width, height int) string {
	var sb strings.Builder
	sb.WriteString(promptTitleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	if len(m.candidates) > 1 {
		sb.WriteString("\n")
		for i, c := range m.candidates {
			if i == maxCompletions {
				sb.WriteString("\n" + promptHintStyle.Render("…"))
				break
			}
			line := filepath.Base(strings.TrimSuffix(c, string(filepath.Separator)))
			if i == m.candIdx {
				sb.WriteString("\n" + promptSelectedStyle.Render("> "+line))
			} else {
				sb.WriteString("\n" + promptHintStyle.Render("  "+line))
			}
		}
	}
	if m.err != "" {
		sb.WriteString("\n\n" + promptErrStyle.Render(m.err))
	}
	sb.WriteString("\n\n" + promptHintStyle.Render("Enter: confirm • Tab: complete • Esc: cancel"))

	box := promptBoxStyle.Render(sb.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// --- Confirm dialog -----------------------------------------------------

// ConfirmKind says what a yes/no question guards.
type ConfirmKind string

const (
	ConfirmNew  ConfirmKind = "new"
	ConfirmQuit ConfirmKind = "quit"
)

// ConfirmMsg carries the answer to a confirm dialog.
type ConfirmMsg struct {
	Kind ConfirmKind
	Yes  bool
}

// ConfirmModel is a yes/no question.
type ConfirmModel struct {
	kind     ConfirmKind
	question string
}

// NewConfirmModel creates a dialog asking question.
func NewConfirmModel(kind ConfirmKind, question string) ConfirmModel {
	return ConfirmModel{kind: kind, question: question}
}

// Kind returns what the dialog guards.
func (m ConfirmModel) Kind() ConfirmKind {
	return m.kind
}

// Update answers yes on y or Enter and no on n or Esc. Other keys are
// ignored.
func (m ConfirmModel) Update(msg tea.Msg) (ConfirmModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	var yes bool
	switch key.String() {
	case "y", "Y", "enter":
		yes = true
	case "n", "N", "esc":
		yes = false
	default:
		return m, nil
	}
	kind := m.kind
	return m, func() tea.Msg { return ConfirmMsg{Kind: kind, Yes: yes} }
}

// View renders the question as a centered box.
func (m ConfirmModel) View(width, height int) string {
	body := m.question + "\n\n" + promptHintStyle.Render("(y/Enter = yes, n/Esc = no)")
	box := confirmBoxStyle.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

var (
	promptTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4"))

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2).
			Width(64)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF9500")).
			Padding(1, 3)

	promptHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	promptSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	promptErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)
