package history

// Origin tags a content change with what caused it.
type Origin int

const (
	UserEdit   Origin = iota // typed, pasted or deleted by the user
	UndoReplay               // buffer restored by Undo
	RedoReplay               // buffer restored by Redo
)

func (o Origin) String() string {
	switch o {
	case UserEdit:
		return "user-edit"
	case UndoReplay:
		return "undo-replay"
	case RedoReplay:
		return "redo-replay"
	default:
		return "unknown"
	}
}

// IsReplay reports whether the change was produced by undo or redo.
func (o Origin) IsReplay() bool {
	return o == UndoReplay || o == RedoReplay
}

// EditHistory holds the undo and redo stacks of whole-buffer snapshots.
// Both stacks are ordered oldest first; the top is the last element.
//
// EditHistory is not safe for concurrent use. The document that owns it
// serializes access.
type EditHistory struct {
	undoStack []string
	redoStack []string
	limit     int
}

// New returns an empty history. A limit of zero or less keeps every snapshot.
func New(limit int) *EditHistory {
	if limit < 0 {
		limit = 0
	}
	return &EditHistory{limit: limit}
}

// Record applies the snapshot rules for a single change from oldText to
// newText. Any change that empties the buffer wipes all history, including
// an undo or redo that lands on "". Other replays leave both stacks alone.
// Any other edit pushes oldText and drops redo history.
func (h *EditHistory) Record(oldText, newText string, origin Origin) {
	if newText == "" {
		h.Reset()
		return
	}
	if origin.IsReplay() {
		return
	}
	h.undoStack = append(h.undoStack, oldText)
	if h.limit > 0 && len(h.undoStack) > h.limit {
		h.undoStack = h.undoStack[len(h.undoStack)-h.limit:]
	}
	h.redoStack = nil
}

// Undo pops the newest undo snapshot and pushes current onto the redo stack.
// It returns the text the buffer should be set to, or false when there is
// nothing to undo.
func (h *EditHistory) Undo(current string) (string, bool) {
	if len(h.undoStack) == 0 {
		return "", false
	}
	top := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return top, true
}

// Redo pops the newest redo snapshot and pushes current onto the undo stack.
func (h *EditHistory) Redo(current string) (string, bool) {
	if len(h.redoStack) == 0 {
		return "", false
	}
	top := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return top, true
}

// Reset clears both stacks.
func (h *EditHistory) Reset() {
	h.undoStack = nil
	h.redoStack = nil
}

func (h *EditHistory) CanUndo() bool {
	return len(h.undoStack) > 0
}

func (h *EditHistory) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoDepth returns the number of snapshots Undo can restore.
func (h *EditHistory) UndoDepth() int {
	return len(h.undoStack)
}

// RedoDepth returns the number of snapshots Redo can restore.
func (h *EditHistory) RedoDepth() int {
	return len(h.redoStack)
}

// UndoSnapshots returns a copy of the undo stack, oldest first.
func (h *EditHistory) UndoSnapshots() []string {
	return copySnapshots(h.undoStack)
}

// RedoSnapshots returns a copy of the redo stack, oldest first.
func (h *EditHistory) RedoSnapshots() []string {
	return copySnapshots(h.redoStack)
}

func copySnapshots(s []string) []string {
	c := make([]string, len(s))
	copy(c, s)
	return c
}
