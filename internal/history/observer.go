package history

import "log"

// Change describes one observed difference in buffer content.
type Change struct {
	Old    string
	New    string
	Origin Origin
}

// Stats counts the changes an Observer has classified.
type Stats struct {
	UserEdits    int
	UndoReplays  int
	RedoReplays  int
	HistoryWipes int // changes that emptied the buffer
	Ignored      int // notifications where nothing changed
}

// Observer classifies buffer changes and feeds them to an EditHistory.
// It never starts an undo or redo itself.
type Observer struct {
	history *EditHistory
	stats   Stats
}

// NewObserver returns an observer recording into h.
func NewObserver(h *EditHistory) *Observer {
	return &Observer{history: h}
}

// Observe handles a single change notification.
func (o *Observer) Observe(c Change) {
	if c.Old == c.New {
		o.stats.Ignored++
		return
	}
	switch c.Origin {
	case UndoReplay:
		o.stats.UndoReplays++
	case RedoReplay:
		o.stats.RedoReplays++
	default:
		o.stats.UserEdits++
	}
	if c.New == "" {
		o.stats.HistoryWipes++
	}
	o.history.Record(c.Old, c.New, c.Origin)
	log.Printf("[Observer] %s: %d -> %d bytes (undo=%d redo=%d)",
		c.Origin, len(c.Old), len(c.New), o.history.UndoDepth(), o.history.RedoDepth())
}

// Stats returns the classification counters.
func (o *Observer) Stats() Stats {
	return o.stats
}

// History returns the history the observer records into.
func (o *Observer) History() *EditHistory {
	return o.history
}
