package document

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"notepad/internal/history"

	"github.com/cespare/xxhash/v2"
)

// ErrNoPath is returned by Save when the document has never been saved or
// opened and so has nowhere to go.
var ErrNoPath = errors.New("document has no file path")

// Document is the single open text buffer together with its edit history.
//
// All methods are safe for concurrent use: the buffer and both history
// stacks change together under one lock and only through these methods.
type Document struct {
	mu       sync.Mutex
	text     string
	path     string
	format   Format
	savedSum uint64
	// gen changes whenever the buffer is replaced by another document, so a
	// save that finishes late can tell its snapshot is stale.
	gen uint64

	history  *history.EditHistory
	observer *history.Observer
}

// New returns an empty, unnamed document. maxHistory caps the undo stack;
// zero keeps every snapshot.
func New(maxHistory int) *Document {
	h := history.New(maxHistory)
	return &Document{
		history:  h,
		observer: history.NewObserver(h),
		savedSum: xxhash.Sum64String(""),
	}
}

// Text returns the current buffer content.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Path returns the file the document was opened from or last saved to.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// SetText replaces the buffer without recording an edit. The replaced
// content is a different document as far as history is concerned, so both
// stacks are cleared.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.gen++
	d.history.Reset()
}

// Load replaces the buffer with freshly read file content and marks it
// unmodified. History is cleared.
func (d *Document) Load(path string, dec Decoded) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = dec.Text
	d.path = path
	d.format = dec.Format
	d.savedSum = xxhash.Sum64String(dec.Text)
	d.gen++
	d.history.Reset()
	log.Printf("[Document] loaded %s (%d bytes, %s, crlf=%v)", path, len(dec.Text), dec.Format.Encoding, dec.Format.CRLF())
}

// Reset starts a new, empty, unnamed document.
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = ""
	d.path = ""
	d.format = Format{}
	d.savedSum = xxhash.Sum64String("")
	d.gen++
	d.history.Reset()
}

// OnUserEdit reports that the user changed the buffer from oldText to
// newText. The change is recorded as a user edit and the buffer becomes
// newText.
func (d *Document) OnUserEdit(oldText, newText string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyLocked(oldText, newText, history.UserEdit)
}

// Edit sets the buffer to newText as a user edit.
func (d *Document) Edit(newText string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyLocked(d.text, newText, history.UserEdit)
}

// Undo restores the previous snapshot. It reports false when there was
// nothing to undo.
func (d *Document) Undo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, ok := d.history.Undo(d.text)
	if !ok {
		return false
	}
	d.applyLocked(d.text, prev, history.UndoReplay)
	return true
}

// Redo reapplies the most recently undone snapshot. It reports false when
// there was nothing to redo.
func (d *Document) Redo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, ok := d.history.Redo(d.text)
	if !ok {
		return false
	}
	d.applyLocked(d.text, next, history.RedoReplay)
	return true
}

func (d *Document) applyLocked(oldText, newText string, origin history.Origin) {
	d.text = newText
	d.observer.Observe(history.Change{Old: oldText, New: newText, Origin: origin})
}

// Modified reports whether the buffer differs from what was last loaded or
// saved.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return xxhash.Sum64String(d.text) != d.savedSum
}

func (d *Document) CanUndo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.CanUndo()
}

func (d *Document) CanRedo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.CanRedo()
}

// Depths returns the sizes of the undo and redo stacks.
func (d *Document) Depths() (undo, redo int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.UndoDepth(), d.history.RedoDepth()
}

// Snapshots returns copies of the undo and redo stacks, oldest first.
func (d *Document) Snapshots() (undo, redo []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.UndoSnapshots(), d.history.RedoSnapshots()
}

// Stats returns the change-classification counters.
func (d *Document) Stats() history.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.observer.Stats()
}

// Read fetches and decodes path without touching any document. The UI runs
// it off the event loop and calls Load with the result.
func Read(store Store, path string) (Decoded, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("open %s: %w", path, err)
	}
	dec, err := Decode(data)
	if err != nil {
		return Decoded{}, fmt.Errorf("open %s: %w", path, err)
	}
	return dec, nil
}

// Open reads path from store and loads it. On any failure the buffer and
// history are left untouched.
func (d *Document) Open(store Store, path string) error {
	dec, err := Read(store, path)
	if err != nil {
		return err
	}
	d.Load(path, dec)
	return nil
}

// Save writes the buffer to the document's current path.
func (d *Document) Save(store Store) error {
	path := d.Path()
	if path == "" {
		return ErrNoPath
	}
	return d.SaveAs(store, path)
}

// SaveAs writes the buffer to path and makes path the document's file.
// The buffer and history are unchanged on failure. If the document is
// replaced (New, Load, SetText) while the write runs, the file is still
// written but the new buffer keeps its own path and modified state.
func (d *Document) SaveAs(store Store, path string) error {
	d.mu.Lock()
	text, format, gen := d.text, d.format, d.gen
	d.mu.Unlock()

	data, err := Encode(text, format)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := store.WriteFile(path, data); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		log.Printf("[Document] saved %s, but the buffer was replaced meanwhile", path)
		return nil
	}
	d.path = path
	d.savedSum = xxhash.Sum64String(text)
	log.Printf("[Document] saved %s (%d bytes)", path, len(data))
	return nil
}
