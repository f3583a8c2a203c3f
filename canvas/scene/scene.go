// Package scene holds the authoritative element order and the current
// selection. All mutations funnel through Apply, which is the only
// path that extends history.
package scene

import (
	"memeboard/canvas/history"
	"memeboard/core"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Scene is the element store: an ordered sequence of elements (order is
// stacking order, last on top) plus the set of selected element ids.
type Scene struct {
	elements  []core.Element
	selection map[string]struct{}
	hist      *history.History
	onChange  func([]core.Element)
}

// New returns an empty scene with history seeded at the empty state.
func New() *Scene {
	return &Scene{
		selection: make(map[string]struct{}),
		hist:      history.New(nil),
	}
}

// Load replaces the scene content without committing: the loaded state
// becomes the new history origin. Used when restoring a persisted
// document.
func Load(els []core.Element) *Scene {
	return &Scene{
		elements:  core.CloneElements(els),
		selection: make(map[string]struct{}),
		hist:      history.New(els),
	}
}

// SetOnChange registers a hook invoked with the new state after every
// commit and after undo/redo. The session uses it for debounced
// autosave.
func (s *Scene) SetOnChange(fn func([]core.Element)) {
	s.onChange = fn
}

// Elements returns a copy of the current state in stacking order.
func (s *Scene) Elements() []core.Element {
	return core.CloneElements(s.elements)
}

// Find returns the element with the given id, if present.
func (s *Scene) Find(id string) (core.Element, bool) {
	for _, e := range s.elements {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return core.Element{}, false
}

// Apply atomically replaces the canvas state and appends one history
// entry. Commit-time invariants (position clamping, rotation
// normalization, crop containment) are enforced here so no mutation
// helper can bypass them. Selection entries pointing at removed
// elements are dropped.
func (s *Scene) Apply(next []core.Element) {
	sanitized := make([]core.Element, len(next))
	for i, e := range next {
		sanitized[i] = e.Sanitized()
	}
	s.elements = sanitized
	s.hist.Commit(sanitized)
	s.filterSelection()
	s.changed()
}

// Add appends an element on top of the stack and selects it.
func (s *Scene) Add(el core.Element) {
	s.Apply(append(s.Elements(), el))
	s.Select(el.ID)
}

// Delete removes the given elements. Unknown ids are ignored.
func (s *Scene) Delete(ids ...string) {
	if len(ids) == 0 {
		return
	}
	next := lo.Filter(s.Elements(), func(e core.Element, _ int) bool {
		return !lo.Contains(ids, e.ID)
	})
	if len(next) == len(s.elements) {
		return
	}
	s.Apply(next)
}

// Update mutates a single element through fn and commits. A missing
// target is a silent no-op.
func (s *Scene) Update(id string, fn func(*core.Element)) bool {
	next := s.Elements()
	for i := range next {
		if next[i].ID == id {
			fn(&next[i])
			s.Apply(next)
			return true
		}
	}
	logrus.WithField("element_id", id).Debug("update target no longer present")
	return false
}

// Undo steps the history cursor back. Selection never survives history
// navigation.
func (s *Scene) Undo() bool {
	state, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.elements = state
	s.ClearSelection()
	s.changed()
	return true
}

// Redo steps the history cursor forward.
func (s *Scene) Redo() bool {
	state, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.elements = state
	s.ClearSelection()
	s.changed()
	return true
}

func (s *Scene) CanUndo() bool { return s.hist.CanUndo() }
func (s *Scene) CanRedo() bool { return s.hist.CanRedo() }

// History exposes the underlying history for inspection.
func (s *Scene) History() *history.History { return s.hist }

// Select replaces the selection set. Ids not present in the current
// state are filtered out.
func (s *Scene) Select(ids ...string) {
	s.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.selection[id] = struct{}{}
	}
	s.filterSelection()
}

// ToggleSelect flips membership of one id in the selection set.
func (s *Scene) ToggleSelect(id string) {
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
		return
	}
	if _, found := s.Find(id); found {
		s.selection[id] = struct{}{}
	}
}

// ClearSelection empties the selection set.
func (s *Scene) ClearSelection() {
	s.selection = make(map[string]struct{})
}

// IsSelected reports whether the id is currently selected.
func (s *Scene) IsSelected(id string) bool {
	_, ok := s.selection[id]
	return ok
}

// Selected returns the selected ids in stacking order.
func (s *Scene) Selected() []string {
	return lo.FilterMap(s.elements, func(e core.Element, _ int) (string, bool) {
		return e.ID, s.IsSelected(e.ID)
	})
}

func (s *Scene) filterSelection() {
	live := lo.SliceToMap(s.elements, func(e core.Element) (string, struct{}) {
		return e.ID, struct{}{}
	})
	for id := range s.selection {
		if _, ok := live[id]; !ok {
			delete(s.selection, id)
		}
	}
}

func (s *Scene) changed() {
	if s.onChange != nil {
		s.onChange(s.Elements())
	}
}

// MoveToEnd returns the element order with the given ids moved to the
// end (topmost), preserving their relative order. Used by drag commit
// to bring the dragged selection to the front.
func MoveToEnd(els []core.Element, ids []string) []core.Element {
	stay := lo.Filter(els, func(e core.Element, _ int) bool {
		return !lo.Contains(ids, e.ID)
	})
	moved := lo.Filter(els, func(e core.Element, _ int) bool {
		return lo.Contains(ids, e.ID)
	})
	return append(stay, moved...)
}
