// Package session implements the interaction controller: the state
// machine that turns pointer and keyboard input into either transient
// visual previews or committed canvas mutations.
//
// The controller owns every piece of transient gesture state as
// private fields. Pointer-move handling is fully synchronous; the only
// suspension points are the persistence and inference calls, which
// never block a gesture.
package session

import (
	"context"
	"sync"
	"time"

	"memeboard/canvas/scene"
	"memeboard/core"

	"github.com/bep/debounce"
	"github.com/sirupsen/logrus"
)

// Mode identifies the active interaction state. Exactly one is active
// at a time.
type Mode int

const (
	ModeIdle Mode = iota
	ModePendingDrag
	ModeDragging
	ModeMarquee
	ModeTransforming
	ModeCropping
	ModeEyedropper
)

const (
	// dragThreshold is the pointer displacement, in pixels, below
	// which a press-and-release is a click, not a drag.
	dragThreshold = 5
	// marqueeThreshold is the marquee size past which the following
	// canvas click must not clear the fresh selection.
	marqueeThreshold = 3

	defaultSaveDelay   = time.Second
	defaultScrollDelay = 600 * time.Millisecond

	fallbackBoxWidth  = 100
	fallbackBoxHeight = 30
)

// Measurer supplies rendered box sizes for elements without explicit
// dimensions (textboxes before their first resize). Renderers that can
// measure text plug in here; without one a 100x30 heuristic is used.
type Measurer interface {
	MeasureElement(el core.Element) (w, h float64, ok bool)
}

// PixelSampler reads a pixel from an image element's rendered bitmap.
// Coordinates are in the image's natural pixel space; the returned
// color is a hex string.
type PixelSampler interface {
	SampleAt(imageID string, x, y float64) (string, bool)
}

// Remover is the background-removal collaborator: blob in, blob out.
// It may fail; the controller treats failure as "operation failed" and
// leaves the image untouched.
type Remover interface {
	Remove(ctx context.Context, elementID string, blob []byte) ([]byte, error)
}

// Config carries the session's collaborators. Every field is optional;
// a zero Config yields a fully in-memory session.
type Config struct {
	SceneID   string
	SceneName string

	Store   core.SceneStore
	Blobs   core.BlobStore
	Remover Remover

	Measurer Measurer
	Sampler  PixelSampler

	// Status receives user-visible status messages (save failures,
	// removal progress). Never called mid-gesture.
	Status func(msg string)
	// Dispatch marshals a function onto the goroutine driving the
	// controller. Background removal finishes on its own goroutine and
	// commits its result through here, so scene mutations stay on the
	// event loop. Nil runs the function inline; only hosts that never
	// touch the controller concurrently may leave it unset.
	Dispatch func(fn func())
	// ScrollSync receives the debounced scroll offset, mirrored by the
	// frontend into the page query string.
	ScrollSync func(p core.Point)

	// SaveDelay / ScrollDelay override the autosave and scroll-mirror
	// debounce intervals. Zero means the defaults (~1s and ~600ms).
	SaveDelay   time.Duration
	ScrollDelay time.Duration
}

type dragState struct {
	ids    []string
	origin core.Point // canvas coordinates
	start  map[string]core.Point
	delta  core.Point
	moved  bool // past the drag threshold
}

type marqueeState struct {
	start, current core.Point // canvas coordinates
}

// Controller is the interaction state machine. It is single-threaded:
// all pointer/keyboard entry points must be called from one goroutine
// (the UI event loop). Background removal runs its blocking work on a
// separate goroutine but never touches the scene from there: results
// come back through the Dispatch hook, and only the mutex-guarded
// in-flight bookkeeping is shared.
type Controller struct {
	scene *scene.Scene
	cfg   Config

	mode      Mode
	drag      *dragState
	marquee   *marqueeState
	transform *transformState
	crop      *cropState
	picker    *pickerState

	cursor              core.Point // last pointer position, canvas coordinates
	scroll              core.Point
	suppressCanvasClick bool

	saveDebounce   func(func())
	scrollDebounce func(func())

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New wires a controller around a scene. The controller registers
// itself as the scene's change hook for debounced autosave.
func New(sc *scene.Scene, cfg Config) *Controller {
	if cfg.SaveDelay == 0 {
		cfg.SaveDelay = defaultSaveDelay
	}
	if cfg.ScrollDelay == 0 {
		cfg.ScrollDelay = defaultScrollDelay
	}
	if cfg.Status == nil {
		cfg.Status = func(string) {}
	}
	if cfg.Dispatch == nil {
		cfg.Dispatch = func(fn func()) { fn() }
	}
	c := &Controller{
		scene:          sc,
		cfg:            cfg,
		saveDebounce:   debounce.New(cfg.SaveDelay),
		scrollDebounce: debounce.New(cfg.ScrollDelay),
		inFlight:       make(map[string]struct{}),
	}
	sc.SetOnChange(c.autosave)
	return c
}

// Scene returns the controlled scene.
func (c *Controller) Scene() *scene.Scene { return c.scene }

// Mode returns the active interaction state.
func (c *Controller) Mode() Mode { return c.mode }

// Cursor returns the last tracked pointer position in canvas
// coordinates. Paste placement uses it.
func (c *Controller) Cursor() core.Point { return c.cursor }

// Scroll returns the current viewport scroll offset.
func (c *Controller) Scroll() core.Point { return c.scroll }

// SetScroll records the viewport scroll offset and schedules the
// debounced mirror sync.
func (c *Controller) SetScroll(p core.Point) {
	c.scroll = p
	if c.cfg.ScrollSync != nil {
		c.scrollDebounce(func() { c.cfg.ScrollSync(p) })
	}
}

func (c *Controller) canvasPos(viewport core.Point) core.Point {
	return viewport.Add(c.scroll)
}

func (c *Controller) trackCursor(viewport core.Point) {
	c.cursor = c.canvasPos(viewport)
}

// PointerDownOnElement handles a press on an element's body. Shift
// presses only toggle selection membership and never start a drag.
func (c *Controller) PointerDownOnElement(id string, pos core.Point, shift bool) {
	c.trackCursor(pos)
	if c.interceptPointerDown(id) {
		return
	}
	if _, ok := c.scene.Find(id); !ok {
		return
	}
	if shift {
		c.scene.ToggleSelect(id)
		return
	}
	if !c.scene.IsSelected(id) {
		c.scene.Select(id)
	}
	ids := c.scene.Selected()
	start := make(map[string]core.Point, len(ids))
	for _, sid := range ids {
		if el, ok := c.scene.Find(sid); ok {
			start[sid] = core.Pt(el.X, el.Y)
		}
	}
	c.drag = &dragState{ids: ids, origin: c.canvasPos(pos), start: start}
	c.mode = ModePendingDrag
}

// PointerDownOnCanvas handles a press on empty canvas: it starts a
// marquee selection.
func (c *Controller) PointerDownOnCanvas(pos core.Point) {
	c.trackCursor(pos)
	if c.interceptPointerDown("") {
		return
	}
	p := c.canvasPos(pos)
	c.marquee = &marqueeState{start: p, current: p}
	c.mode = ModeMarquee
}

// interceptPointerDown gives the modal sub-states first claim on a
// press. Returns true when the press is consumed.
func (c *Controller) interceptPointerDown(target string) bool {
	switch c.mode {
	case ModeEyedropper:
		c.commitEyedropper()
		return true
	case ModeCropping:
		if c.crop != nil && target == c.crop.id {
			// Presses on the cropped image's body do nothing; only the
			// handles adjust the rectangle.
			return true
		}
		// Deselecting the image while still cropping commits.
		c.CommitCrop()
		return false
	}
	return false
}

// PointerMove feeds pointer motion into whichever gesture is active.
// Rotate/resize and crop take precedence. Every call completes
// synchronously; previews never allocate history entries.
func (c *Controller) PointerMove(pos core.Point) {
	c.trackCursor(pos)
	p := c.canvasPos(pos)
	switch c.mode {
	case ModeTransforming:
		c.transformMove(p)
	case ModeCropping:
		c.cropMove(p)
	case ModeEyedropper:
		c.eyedropperMove(p)
	case ModePendingDrag:
		if c.drag != nil && p.Distance(c.drag.origin) > dragThreshold {
			c.drag.moved = true
			c.drag.delta = p.Sub(c.drag.origin)
			c.mode = ModeDragging
		}
	case ModeDragging:
		if c.drag != nil {
			c.drag.delta = p.Sub(c.drag.origin)
		}
	case ModeMarquee:
		if c.marquee != nil {
			c.marquee.current = p
			c.updateMarqueeSelection()
		}
	}
}

// PointerUp terminates the active gesture. Listeners are attached at
// the document level, so this fires even when the pointer leaves the
// canvas.
func (c *Controller) PointerUp(pos core.Point) {
	c.trackCursor(pos)
	switch c.mode {
	case ModeDragging:
		c.commitDrag()
		c.drag = nil
		c.mode = ModeIdle
	case ModePendingDrag:
		// Below the threshold a release is just the selection click
		// that already happened on pointer-down.
		c.drag = nil
		c.mode = ModeIdle
	case ModeMarquee:
		if m := c.marquee; m != nil {
			r := core.NormalizedRect(m.start, m.current)
			if r.Width > marqueeThreshold || r.Height > marqueeThreshold {
				c.suppressCanvasClick = true
			}
		}
		c.marquee = nil
		c.mode = ModeIdle
	case ModeTransforming:
		c.commitTransform()
		c.transform = nil
		c.mode = ModeIdle
	case ModeCropping:
		if c.crop != nil {
			c.crop.handle = ""
		}
	}
}

// CanvasClick handles the click event the browser synthesizes after a
// release on empty canvas. A marquee release suppresses exactly one of
// these so ending a sweep does not clear the fresh selection.
func (c *Controller) CanvasClick() {
	if c.suppressCanvasClick {
		c.suppressCanvasClick = false
		return
	}
	if c.mode == ModeIdle {
		c.scene.ClearSelection()
	}
}

// KeyDown handles the engine-owned keys. Undo/redo shortcuts are bound
// by the frontend directly to Undo/Redo.
func (c *Controller) KeyDown(key string) {
	switch key {
	case "Escape":
		switch c.mode {
		case ModeCropping:
			c.CancelCrop()
		case ModeEyedropper:
			c.cancelEyedropper()
		}
	case "Enter":
		if c.mode == ModeCropping {
			c.CommitCrop()
		}
	case "Delete", "Backspace":
		if c.mode == ModeIdle {
			c.scene.Delete(c.scene.Selected()...)
		}
	}
}

// Undo cancels any in-flight gesture and steps history back.
func (c *Controller) Undo() bool {
	c.resetTransient()
	return c.scene.Undo()
}

// Redo cancels any in-flight gesture and steps history forward.
func (c *Controller) Redo() bool {
	c.resetTransient()
	return c.scene.Redo()
}

func (c *Controller) resetTransient() {
	c.drag = nil
	c.marquee = nil
	c.transform = nil
	c.crop = nil
	c.picker = nil
	c.mode = ModeIdle
}

func (c *Controller) commitDrag() {
	d := c.drag
	if d == nil {
		return
	}
	next := c.scene.Elements()
	for i := range next {
		start, ok := d.start[next[i].ID]
		if !ok {
			continue
		}
		// Canvas coordinates cannot go negative.
		next[i].X = maxf(0, start.X+d.delta.X)
		next[i].Y = maxf(0, start.Y+d.delta.Y)
	}
	next = scene.MoveToEnd(next, d.ids)
	c.scene.Apply(next)
	c.scene.Select(d.ids...)
}

func (c *Controller) updateMarqueeSelection() {
	m := c.marquee
	if m == nil {
		return
	}
	rect := core.NormalizedRect(m.start, m.current)
	var ids []string
	for _, el := range c.scene.Elements() {
		if rect.Intersects(c.elementBounds(el)) {
			ids = append(ids, el.ID)
		}
	}
	c.scene.Select(ids...)
}

// elementBounds returns the element's axis-aligned box, measuring
// unsized textboxes through the renderer hook when available.
func (c *Controller) elementBounds(el core.Element) core.Rect {
	fw, fh := float64(fallbackBoxWidth), float64(fallbackBoxHeight)
	if (el.Width <= 0 || el.Height <= 0) && c.cfg.Measurer != nil {
		if w, h, ok := c.cfg.Measurer.MeasureElement(el); ok {
			fw, fh = w, h
		}
	}
	return el.Bounds(fw, fh)
}

// MarqueeRect returns the live marquee rectangle for rendering.
func (c *Controller) MarqueeRect() (core.Rect, bool) {
	if c.mode != ModeMarquee || c.marquee == nil {
		return core.Rect{}, false
	}
	return core.NormalizedRect(c.marquee.start, c.marquee.current), true
}

func (c *Controller) status(msg string) {
	c.cfg.Status(msg)
}

// autosave coalesces rapid successive commits into one store write
// roughly a second after the last change. Failures are logged and
// reported, never retried and never surfaced to the gesture.
func (c *Controller) autosave(els []core.Element) {
	if c.cfg.Store == nil {
		return
	}
	doc := &core.SceneDoc{
		ID:       c.cfg.SceneID,
		Name:     c.cfg.SceneName,
		Elements: els,
		ScrollX:  c.scroll.X,
		ScrollY:  c.scroll.Y,
	}
	c.saveDebounce(func() {
		if err := c.cfg.Store.Save(context.Background(), doc); err != nil {
			logrus.WithError(err).WithField("scene_id", doc.ID).Error("Failed to autosave scene")
			c.status("Saving failed")
		}
	})
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
