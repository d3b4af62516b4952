package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"notepad/internal/document"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// editorMode is what the keyboard currently drives.
type editorMode int

const (
	modeEdit editorMode = iota
	modeFind            // typing a search term in the status bar
)

func (m editorMode) String() string {
	switch m {
	case modeEdit:
		return "EDIT"
	case modeFind:
		return "FIND"
	default:
		return "UNKNOWN"
	}
}

// match is one search hit, in byte offsets.
type match struct {
	row, col, length int
}

// EditorModel is a plain, non-modal text editor over a document.Document.
// The document owns the text and its history; lines is a split copy that is
// refreshed after every change.
type EditorModel struct {
	doc   *document.Document
	lines []string

	cursorRow int
	cursorCol int // byte offset into lines[cursorRow]
	wantCol   int // display column kept across vertical moves
	scrollRow int
	scrollCol int // display column at the left edge
	width     int
	height    int
	tabWidth  int

	mode      editorMode
	statusMsg string

	findBuffer   string
	lastSearch   string
	findMatches  []match
	findMatchIdx int
}

// NewEditorModel creates an editor showing doc. Tab inserts tabWidth spaces.
func NewEditorModel(doc *document.Document, tabWidth int) EditorModel {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	return EditorModel{
		doc:      doc,
		lines:    splitLines(doc.Text()),
		tabWidth: tabWidth,
	}
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// SetDimensions sets the editor's display dimensions.
func (m *EditorModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// SetStatus shows msg in the status bar until the next one replaces it.
func (m *EditorModel) SetStatus(msg string) {
	m.statusMsg = msg
}

// Status returns the current status bar message.
func (m EditorModel) Status() string {
	return m.statusMsg
}

// Reload re-reads the document after it was replaced by New or Open and
// puts the cursor at the top.
func (m *EditorModel) Reload() {
	m.lines = splitLines(m.doc.Text())
	m.cursorRow, m.cursorCol, m.wantCol = 0, 0, 0
	m.scrollRow, m.scrollCol = 0, 0
	m.mode = modeEdit
	m.findMatches = nil
}

// Content returns the full editor content as a string.
func (m EditorModel) Content() string {
	return strings.Join(m.lines, "\n")
}

// Cursor returns the cursor line and byte column.
func (m EditorModel) Cursor() (row, col int) {
	return m.cursorRow, m.cursorCol
}

func (m EditorModel) visibleRows() int {
	v := m.height - 2 // title bar and status bar
	if v < 1 {
		v = 1
	}
	return v
}

func (m EditorModel) gutterWidth() int {
	w := len(fmt.Sprintf("%d", len(m.lines))) + 1
	if w < 4 {
		w = 4
	}
	return w
}

func (m EditorModel) contentWidth() int {
	w := m.width - m.gutterWidth() - 1
	if w < 10 {
		w = 10
	}
	return w
}

func (m *EditorModel) ensureCursorVisible() {
	vis := m.visibleRows()
	if m.cursorRow < m.scrollRow {
		m.scrollRow = m.cursorRow
	}
	if m.cursorRow >= m.scrollRow+vis {
		m.scrollRow = m.cursorRow - vis + 1
	}
	cw := m.contentWidth()
	dc := m.displayCol(m.lines[m.cursorRow], m.cursorCol)
	if dc < m.scrollCol {
		m.scrollCol = dc
	}
	if dc >= m.scrollCol+cw {
		m.scrollCol = dc - cw + 1
	}
}

// --- Grapheme and column helpers ----------------------------------------

// nextBoundary returns the byte offset just past the grapheme cluster that
// starts at col.
func nextBoundary(line string, col int) int {
	if col >= len(line) {
		return len(line)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(line[col:], -1)
	return col + len(cluster)
}

// prevBoundary returns the start of the grapheme cluster that ends at col.
func prevBoundary(line string, col int) int {
	prev, pos, state := 0, 0, -1
	rest := line[:col]
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		prev = pos
		pos += len(cluster)
	}
	return prev
}

func (m EditorModel) clusterWidth(cluster string, at int) int {
	if cluster == "\t" {
		return m.tabWidth - at%m.tabWidth
	}
	return runewidth.StringWidth(cluster)
}

// displayCol converts a byte offset in line to a screen column.
func (m EditorModel) displayCol(line string, col int) int {
	w, state := 0, -1
	rest := line[:col]
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w += m.clusterWidth(cluster, w)
	}
	return w
}

// byteCol converts a screen column to the byte offset of the cluster that
// covers it, or the end of line when the line is shorter.
func (m EditorModel) byteCol(line string, target int) int {
	w, pos, state := 0, 0, -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		cw := m.clusterWidth(cluster, w)
		if w+cw > target {
			return pos
		}
		w += cw
		pos += len(cluster)
	}
	return pos
}

// firstDiff returns the byte offset of the first difference between a and
// b, moved back to a rune start in b.
func firstDiff(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(b) && !utf8.RuneStart(b[i]) {
		i--
	}
	return i
}

// offsetToPos converts a byte offset in text to a line and byte column.
func offsetToPos(text string, off int) (row, col int) {
	if off > len(text) {
		off = len(text)
	}
	head := text[:off]
	row = strings.Count(head, "\n")
	col = off - (strings.LastIndexByte(head, '\n') + 1)
	return row, col
}

// --- Editing ------------------------------------------------------------

// commit hands the current lines to the document as one user edit.
func (m *EditorModel) commit() {
	m.doc.Edit(m.Content())
	m.findMatches = nil
}

// insertText inserts s at the cursor. s may contain line breaks.
func (m *EditorModel) insertText(s string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return
	}
	line := m.lines[m.cursorRow]
	before, after := line[:m.cursorCol], line[m.cursorCol:]
	parts := strings.Split(s, "\n")

	newLines := make([]string, 0, len(m.lines)+len(parts)-1)
	newLines = append(newLines, m.lines[:m.cursorRow]...)
	if len(parts) == 1 {
		newLines = append(newLines, before+s+after)
		m.cursorCol += len(s)
	} else {
		last := parts[len(parts)-1]
		newLines = append(newLines, before+parts[0])
		newLines = append(newLines, parts[1:len(parts)-1]...)
		newLines = append(newLines, last+after)
		m.cursorCol = len(last)
	}
	newLines = append(newLines, m.lines[m.cursorRow+1:]...)
	m.cursorRow += len(parts) - 1
	m.lines = newLines
	m.commit()
}

func (m *EditorModel) deleteBackward() {
	line := m.lines[m.cursorRow]
	switch {
	case m.cursorCol > 0:
		prev := prevBoundary(line, m.cursorCol)
		m.lines[m.cursorRow] = line[:prev] + line[m.cursorCol:]
		m.cursorCol = prev
	case m.cursorRow > 0:
		prevLen := len(m.lines[m.cursorRow-1])
		m.lines[m.cursorRow-1] += line
		m.lines = append(m.lines[:m.cursorRow], m.lines[m.cursorRow+1:]...)
		m.cursorRow--
		m.cursorCol = prevLen
	default:
		return
	}
	m.commit()
}

func (m *EditorModel) deleteForward() {
	line := m.lines[m.cursorRow]
	switch {
	case m.cursorCol < len(line):
		next := nextBoundary(line, m.cursorCol)
		m.lines[m.cursorRow] = line[:m.cursorCol] + line[next:]
	case m.cursorRow < len(m.lines)-1:
		m.lines[m.cursorRow] += m.lines[m.cursorRow+1]
		m.lines = append(m.lines[:m.cursorRow+1], m.lines[m.cursorRow+2:]...)
	default:
		return
	}
	m.commit()
}

// --- Undo / Redo --------------------------------------------------------

func (m *EditorModel) undo() {
	before := m.doc.Text()
	if !m.doc.Undo() {
		m.statusMsg = "Nothing to undo"
		return
	}
	m.reloadAt(before)
	undo, _ := m.doc.Depths()
	m.statusMsg = fmt.Sprintf("Undo (%d left)", undo)
}

func (m *EditorModel) redo() {
	before := m.doc.Text()
	if !m.doc.Redo() {
		m.statusMsg = "Nothing to redo"
		return
	}
	m.reloadAt(before)
	_, redo := m.doc.Depths()
	m.statusMsg = fmt.Sprintf("Redo (%d left)", redo)
}

// reloadAt refreshes lines after a replay and puts the cursor where the
// text first changed.
func (m *EditorModel) reloadAt(before string) {
	after := m.doc.Text()
	m.lines = splitLines(after)
	m.cursorRow, m.cursorCol = offsetToPos(after, firstDiff(before, after))
	m.findMatches = nil
}

// --- Cursor motion ------------------------------------------------------

func (m *EditorModel) moveVertical(delta int) {
	row := m.cursorRow + delta
	if row < 0 {
		row = 0
	}
	if row > len(m.lines)-1 {
		row = len(m.lines) - 1
	}
	m.cursorRow = row
	m.cursorCol = m.byteCol(m.lines[row], m.wantCol)
}

func (m *EditorModel) moveLeft() {
	if m.cursorCol > 0 {
		m.cursorCol = prevBoundary(m.lines[m.cursorRow], m.cursorCol)
	} else if m.cursorRow > 0 {
		m.cursorRow--
		m.cursorCol = len(m.lines[m.cursorRow])
	}
}

func (m *EditorModel) moveRight() {
	if m.cursorCol < len(m.lines[m.cursorRow]) {
		m.cursorCol = nextBoundary(m.lines[m.cursorRow], m.cursorCol)
	} else if m.cursorRow < len(m.lines)-1 {
		m.cursorRow++
		m.cursorCol = 0
	}
}

// --- Search -------------------------------------------------------------

// findAll returns non-overlapping case-insensitive hits of term.
func findAll(lines []string, term string) []match {
	if term == "" {
		return nil
	}
	var out []match
	for row, line := range lines {
		for i := 0; i+len(term) <= len(line); {
			if strings.EqualFold(line[i:i+len(term)], term) {
				out = append(out, match{row: row, col: i, length: len(term)})
				i += len(term)
				continue
			}
			_, size := utf8.DecodeRuneInString(line[i:])
			i += size
		}
	}
	return out
}

func (m *EditorModel) executeSearch(term string) {
	m.lastSearch = term
	m.findMatches = findAll(m.lines, term)
	m.findMatchIdx = -1
	if term == "" {
		m.statusMsg = ""
		return
	}
	if len(m.findMatches) == 0 {
		m.statusMsg = "Not found: " + term
		return
	}
	m.jumpToMatch(true)
}

func (m *EditorModel) findNext() {
	if m.lastSearch == "" {
		m.statusMsg = "Nothing to find, press Ctrl+F"
		return
	}
	if m.findMatches == nil {
		m.findMatches = findAll(m.lines, m.lastSearch)
	}
	if len(m.findMatches) == 0 {
		m.statusMsg = "Not found: " + m.lastSearch
		return
	}
	m.jumpToMatch(false)
}

// jumpToMatch moves to the first hit after the cursor, or at it when
// inclusive, wrapping to the top.
func (m *EditorModel) jumpToMatch(inclusive bool) {
	best := 0
	for i, hit := range m.findMatches {
		after := hit.row > m.cursorRow || (hit.row == m.cursorRow && hit.col > m.cursorCol)
		at := hit.row == m.cursorRow && hit.col == m.cursorCol
		if after || (inclusive && at) {
			best = i
			break
		}
	}
	m.findMatchIdx = best
	m.cursorRow = m.findMatches[best].row
	m.cursorCol = m.findMatches[best].col
	m.statusMsg = fmt.Sprintf("[%d/%d] %s", best+1, len(m.findMatches), m.lastSearch)
}

// --- Update -------------------------------------------------------------

// Update handles key messages for the editor. File commands are handled by
// the caller before keys reach here.
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	vertical := false
	switch m.mode {
	case modeFind:
		m.updateFind(key)
	default:
		vertical = m.updateEdit(key)
	}
	if m.cursorRow >= len(m.lines) {
		m.cursorRow = len(m.lines) - 1
	}
	if m.cursorCol > len(m.lines[m.cursorRow]) {
		m.cursorCol = len(m.lines[m.cursorRow])
	}
	if !vertical {
		m.wantCol = m.displayCol(m.lines[m.cursorRow], m.cursorCol)
	}
	m.ensureCursorVisible()
	return m, nil
}

// updateEdit applies one key and reports whether it was a vertical move.
func (m *EditorModel) updateEdit(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyRunes {
		if !msg.Alt {
			m.insertText(string(msg.Runes))
		}
		return false
	}

	switch msg.String() {
	case "ctrl+z":
		m.undo()
	case "ctrl+y":
		m.redo()

	case "ctrl+f":
		m.mode = modeFind
		m.findBuffer = ""
		m.statusMsg = ""
	case "f3", "ctrl+g":
		m.findNext()

	case "up":
		m.moveVertical(-1)
		return true
	case "down":
		m.moveVertical(1)
		return true
	case "pgup":
		m.moveVertical(-m.visibleRows())
		return true
	case "pgdown":
		m.moveVertical(m.visibleRows())
		return true
	case "left":
		m.moveLeft()
	case "right":
		m.moveRight()
	case "home":
		m.cursorCol = 0
	case "end":
		m.cursorCol = len(m.lines[m.cursorRow])
	case "ctrl+home":
		m.cursorRow, m.cursorCol = 0, 0
	case "ctrl+end":
		m.cursorRow = len(m.lines) - 1
		m.cursorCol = len(m.lines[m.cursorRow])

	case "enter":
		m.insertText("\n")
	case "backspace":
		m.deleteBackward()
	case "delete":
		m.deleteForward()
	case "tab":
		m.insertText(strings.Repeat(" ", m.tabWidth))
	case " ":
		m.insertText(" ")
	}
	return false
}

func (m *EditorModel) updateFind(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.mode = modeEdit
		m.findBuffer = ""
		m.findMatches = nil
		m.statusMsg = ""

	case "enter":
		m.mode = modeEdit
		m.executeSearch(m.findBuffer)

	case "backspace":
		if m.findBuffer == "" {
			m.mode = modeEdit
			return
		}
		_, size := utf8.DecodeLastRuneInString(m.findBuffer)
		m.findBuffer = m.findBuffer[:len(m.findBuffer)-size]

	case " ":
		m.findBuffer += " "

	default:
		if msg.Type == tea.KeyRunes && !msg.Alt {
			m.findBuffer += string(msg.Runes)
		}
	}
}

// --- View ---------------------------------------------------------------

func (m EditorModel) View() string {
	if m.width == 0 {
		return "Loading editor..."
	}

	header := RenderTitleBar(m.doc.Path(), m.doc.Modified(), m.width)

	vis := m.visibleRows()
	gw := m.gutterWidth()
	cw := m.contentWidth()

	matchesByRow := map[int][]match{}
	for _, hit := range m.findMatches {
		if hit.row >= m.scrollRow && hit.row < m.scrollRow+vis {
			matchesByRow[hit.row] = append(matchesByRow[hit.row], hit)
		}
	}

	var rows []string
	for i := m.scrollRow; i < len(m.lines) && i < m.scrollRow+vis; i++ {
		gutter := editorGutterStyle.Render(fmt.Sprintf("%*d ", gw-1, i+1))
		rows = append(rows, gutter+m.renderLine(i, cw, matchesByRow[i]))
	}
	for len(rows) < vis {
		gutter := editorGutterStyle.Render(strings.Repeat(" ", gw))
		rows = append(rows, gutter+editorTildeStyle.Render("~"))
	}

	body := strings.Join(rows, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatusBar())
}

// renderLine draws the visible part of one line, cluster by cluster.
func (m EditorModel) renderLine(row, cw int, hits []match) string {
	line := m.lines[row]
	left, right := m.scrollCol, m.scrollCol+cw

	var sb strings.Builder
	col, pos, state := 0, 0, -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := m.clusterWidth(cluster, col)
		start := pos
		pos += len(cluster)
		if col < left && col+w <= left {
			col += w
			continue
		}
		if col >= right {
			break
		}

		text := cluster
		switch {
		case col < left:
			text = strings.Repeat(" ", col+w-left)
		case col+w > right:
			text = strings.Repeat(" ", right-col)
		case cluster == "\t":
			text = strings.Repeat(" ", w)
		}
		col += w

		highlighted := false
		for _, hit := range hits {
			if start >= hit.col && start < hit.col+hit.length {
				highlighted = true
				break
			}
		}
		switch {
		case row == m.cursorRow && start == m.cursorCol:
			sb.WriteString(editorCursorStyle.Render(text))
		case highlighted:
			sb.WriteString(editorSearchHLStyle.Render(text))
		default:
			sb.WriteString(text)
		}
	}
	if row == m.cursorRow && m.cursorCol >= len(line) && col < right {
		sb.WriteString(editorCursorStyle.Render(" "))
	}
	return sb.String()
}

func (m EditorModel) renderStatusBar() string {
	pos := fmt.Sprintf(" Ln %d, Col %d ", m.cursorRow+1, m.displayCol(m.lines[m.cursorRow], m.cursorCol)+1)

	if m.mode == modeFind {
		left := fmt.Sprintf(" Find: %s", m.findBuffer)
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(pos)
		if gap < 0 {
			gap = 1
		}
		return editorCommandBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + pos)
	}

	undo, redo := m.doc.Depths()
	left := pos
	if m.statusMsg != "" {
		left += "│ " + m.statusMsg
	}
	right := fmt.Sprintf(" undo %d  redo %d │ %d lines ", undo, redo, len(m.lines))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 1
	}
	return editorStatusStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// Styles for the editor.
var (
	editorGutterStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#555555"))

	editorCursorStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#FFFFFF")).
				Foreground(lipgloss.Color("#000000"))

	editorSearchHLStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#9E6A03")).
				Foreground(lipgloss.Color("#FFFFFF"))

	editorTildeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#444444"))

	editorStatusStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#333333")).
				Foreground(lipgloss.Color("#AAAAAA"))

	editorCommandBarStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1E1E1E")).
				Foreground(lipgloss.Color("#FFFFFF"))
)
