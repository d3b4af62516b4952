package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"notepad/internal/config"
	"notepad/internal/document"
	"notepad/internal/remote"
	"notepad/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
)

// defaultFileName is offered by Save As for a document that was never saved.
const defaultFileName = "TextDocument.txt"

// overlay is the dialog currently drawn instead of the editor.
type overlay int

const (
	overlayNone overlay = iota
	overlayPrompt
	overlayConfirm
	overlayRecent
	overlayHelp
)

// fileLoadedMsg carries the result of reading a file off the event loop.
type fileLoadedMsg struct {
	path    string
	dec     document.Decoded
	err     error
	initial bool // the PATH given on the command line
}

// fileSavedMsg reports the result of a save.
type fileSavedMsg struct {
	path string
	err  error
}

// AppModel is the root bubbletea model: one document, its editor and the
// dialogs that drive file commands.
type AppModel struct {
	doc     *document.Document
	editor  ui.EditorModel
	prompt  ui.PromptModel
	confirm ui.ConfirmModel
	recent  ui.RecentModel
	overlay overlay

	store       document.Store
	cfg         *config.Config
	initialPath string
	saving      bool

	width  int
	height int
}

func newAppModel(cfg *config.Config, doc *document.Document, store document.Store, path string) AppModel {
	return AppModel{
		doc:         doc,
		editor:      ui.NewEditorModel(doc, cfg.TabWidth),
		store:       store,
		cfg:         cfg,
		initialPath: path,
	}
}

func (m AppModel) Init() tea.Cmd {
	if m.initialPath == "" {
		return tea.SetWindowTitle(ui.Title(""))
	}
	return loadCmd(m.store, m.initialPath, true)
}

func loadCmd(store document.Store, path string, initial bool) tea.Cmd {
	return func() tea.Msg {
		dec, err := document.Read(store, path)
		return fileLoadedMsg{path: path, dec: dec, err: err, initial: initial}
	}
}

func saveCmd(doc *document.Document, store document.Store, path string) tea.Cmd {
	return func() tea.Msg {
		return fileSavedMsg{path: path, err: doc.SaveAs(store, path)}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetDimensions(msg.Width, msg.Height-1)
		return m, nil

	case fileLoadedMsg:
		if msg.err != nil {
			if msg.initial && errors.Is(msg.err, fs.ErrNotExist) {
				log.Printf("[AppModel] %s does not exist, starting a new file", msg.path)
				m.doc.Load(msg.path, document.Decoded{})
				m.editor.Reload()
				m.editor.SetStatus("New file")
				return m, tea.SetWindowTitle(ui.Title(msg.path))
			}
			log.Printf("[AppModel] open error: %v", msg.err)
			m.editor.SetStatus("Open failed: " + msg.err.Error())
			return m, nil
		}
		m.doc.Load(msg.path, msg.dec)
		m.editor.Reload()
		m.editor.SetStatus("Opened " + msg.path)
		m.rememberFile(msg.path)
		return m, tea.SetWindowTitle(ui.Title(msg.path))

	case fileSavedMsg:
		m.saving = false
		if msg.err != nil {
			log.Printf("[AppModel] save error: %v", msg.err)
			m.editor.SetStatus("Save failed: " + msg.err.Error())
			return m, nil
		}
		m.editor.SetStatus("Saved " + msg.path)
		m.rememberFile(msg.path)
		return m, tea.SetWindowTitle(ui.Title(m.doc.Path()))

	case ui.PromptSubmitMsg:
		m.overlay = overlayNone
		switch msg.Kind {
		case ui.PromptOpen:
			m.editor.SetStatus("Opening " + msg.Value + "...")
			return m, loadCmd(m.store, msg.Value, false)
		case ui.PromptSaveAs:
			return m, m.startSave(msg.Value)
		}
		return m, nil

	case ui.PromptCancelMsg:
		m.overlay = overlayNone
		return m, nil

	case ui.ConfirmMsg:
		m.overlay = overlayNone
		if !msg.Yes {
			return m, nil
		}
		switch msg.Kind {
		case ui.ConfirmNew:
			return m, m.newDocument()
		case ui.ConfirmQuit:
			log.Printf("[AppModel] quit with unsaved changes")
			return m, tea.Quit
		}
		return m, nil

	case ui.RecentSelectMsg:
		m.overlay = overlayNone
		m.editor.SetStatus("Opening " + msg.Path + "...")
		return m, loadCmd(m.store, msg.Path, false)

	case ui.RecentRemoveMsg:
		m.cfg.RemoveRecent(msg.Path)
		m.saveConfig()
		return m, nil

	case ui.RecentCancelMsg:
		m.overlay = overlayNone
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other ticks for the focused dialog.
	if m.overlay == overlayPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.overlay {
	case overlayHelp:
		m.overlay = overlayNone
		return m, nil
	case overlayPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	case overlayConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	case overlayRecent:
		m.recent, cmd = m.recent.Update(msg)
		return m, cmd
	}

	key := msg.String()
	if m.saving && (key == "ctrl+n" || key == "ctrl+o" || key == "ctrl+r") {
		// The buffer being written must not be replaced before the save ends.
		m.editor.SetStatus("Wait for the save to finish")
		return m, nil
	}

	switch key {
	case "ctrl+q":
		if m.doc.Modified() {
			m.confirm = ui.NewConfirmModel(ui.ConfirmQuit, "Quit without saving your changes?")
			m.overlay = overlayConfirm
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+n":
		if m.doc.Text() == "" {
			return m, nil
		}
		if m.cfg.ConfirmNew {
			m.confirm = ui.NewConfirmModel(ui.ConfirmNew, "Discard the current text and start a new document?")
			m.overlay = overlayConfirm
			return m, nil
		}
		return m, m.newDocument()

	case "ctrl+o":
		m.prompt = ui.NewPromptModel(ui.PromptOpen, "Open", recentDir(m.cfg.LastRecent()))
		m.overlay = overlayPrompt
		return m, m.prompt.Init()

	case "ctrl+r":
		m.recent = ui.NewRecentModel(m.cfg.RecentFiles, m.width, m.height)
		m.overlay = overlayRecent
		return m, nil

	case "ctrl+s":
		if path := m.doc.Path(); path != "" {
			return m, m.startSave(path)
		}
		return m, m.openSaveAs()

	case "f12", "alt+s":
		return m, m.openSaveAs()

	case "f1":
		m.overlay = overlayHelp
		return m, nil
	}

	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *AppModel) openSaveAs() tea.Cmd {
	value := m.doc.Path()
	if value == "" {
		value = recentDir(m.cfg.LastRecent()) + defaultFileName
	}
	m.prompt = ui.NewPromptModel(ui.PromptSaveAs, "Save As", value)
	m.overlay = overlayPrompt
	return m.prompt.Init()
}

func (m *AppModel) startSave(path string) tea.Cmd {
	if m.saving {
		return nil
	}
	m.saving = true
	m.editor.SetStatus("Saving...")
	return saveCmd(m.doc, m.store, path)
}

func (m *AppModel) newDocument() tea.Cmd {
	m.doc.Reset()
	m.editor.Reload()
	m.editor.SetStatus("New document")
	return tea.SetWindowTitle(ui.Title(""))
}

func (m *AppModel) rememberFile(path string) {
	m.cfg.AddRecent(path)
	m.saveConfig()
}

func (m *AppModel) saveConfig() {
	if err := config.Save(m.cfg); err != nil {
		log.Printf("[AppModel] failed to save config: %v", err)
	}
}

// recentDir returns the directory of path with a trailing separator, or ""
// when path has none.
func recentDir(path string) string {
	if path == "" {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func (m AppModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case overlayHelp:
		return ui.RenderHelp(m.width, m.height)
	case overlayPrompt:
		return m.prompt.View(m.width, m.height)
	case overlayConfirm:
		return m.confirm.View(m.width, m.height)
	case overlayRecent:
		return m.recent.View(m.width, m.height)
	}

	hints := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Render(" ^S save • F12 save as • ^O open • ^R recent • ^N new • ^F find • F1 help • ^Q quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.editor.View(), hints)
}

// logPath returns the path for the debug log file.
// When running from the project directory (go run / ./bin/notepad), logs go
// to .logs/debug.log. When installed (e.g. /usr/local/bin), logs go to
// ~/.local/state/notepad/debug.log following XDG conventions.
func logPath() string {
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		cwd, _ := os.Getwd()
		if strings.HasPrefix(exeDir, cwd) || strings.Contains(exeDir, "go-build") {
			dir := filepath.Join(cwd, ".logs")
			_ = os.MkdirAll(dir, 0o755)
			return filepath.Join(dir, "debug.log")
		}
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "notepad")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "debug.log")
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "notepad",
		Usage:     "a small terminal text editor with undo and redo",
		ArgsUsage: "[PATH]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "settings file",
				Value: config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "debug log file (default .logs/debug.log or $XDG_STATE_HOME/notepad/debug.log)",
			},
			&cli.IntFlag{
				Name:  "max-history",
				Usage: "undo snapshots to keep, 0 for unlimited (default from config)",
				Value: -1,
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) (err error) {
	if c.NArg() > 1 {
		return cli.Exit("notepad takes at most one PATH", 2)
	}

	lp := c.String("log")
	if lp == "" {
		lp = logPath()
	}
	f, err := tea.LogToFile(lp, "debug")
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer func() { _ = f.Close() }()
	log.Printf("=== notepad starting (log: %s) ===", lp)

	cfg, err := config.LoadFrom(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	maxHistory := cfg.MaxHistory
	if n := c.Int("max-history"); n >= 0 {
		maxHistory = n
	}

	pool := remote.NewPool(document.LocalStore{}, config.LoadSSHConfig(), remote.DefaultOptions())
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			log.Printf("[main] close connections: %v", cerr)
			err = errors.Join(err, cerr)
		}
	}()

	model := newAppModel(cfg, document.New(maxHistory), pool, c.Args().First())
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
