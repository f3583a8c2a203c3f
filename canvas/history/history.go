// Package history provides linear undo/redo over full canvas snapshots.
package history

import "memeboard/core"

// History is a sequence of committed canvas states plus a cursor into
// it. The cursor always points at the active state. Committing from a
// non-tail position truncates the redo branch: the history is strictly
// linear.
type History struct {
	snapshots [][]core.Element
	cursor    int
}

// New returns a history seeded with the given initial state at cursor 0.
func New(initial []core.Element) *History {
	return &History{snapshots: [][]core.Element{core.CloneElements(initial)}}
}

// Commit appends a snapshot after the cursor, discarding any redo-able
// states, and moves the cursor to it.
func (h *History) Commit(state []core.Element) {
	h.snapshots = append(h.snapshots[:h.cursor+1], core.CloneElements(state))
	h.cursor = len(h.snapshots) - 1
}

// Undo moves the cursor back one state and returns it. It does not
// create a snapshot. Returns false at the start of history.
func (h *History) Undo() ([]core.Element, bool) {
	if h.cursor == 0 {
		return nil, false
	}
	h.cursor--
	return core.CloneElements(h.snapshots[h.cursor]), true
}

// Redo moves the cursor forward one state and returns it. Returns
// false at the end of history.
func (h *History) Redo() ([]core.Element, bool) {
	if h.cursor == len(h.snapshots)-1 {
		return nil, false
	}
	h.cursor++
	return core.CloneElements(h.snapshots[h.cursor]), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Cursor returns the index of the active snapshot.
func (h *History) Cursor() int { return h.cursor }
