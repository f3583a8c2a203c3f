package session

import (
	"memeboard/core"
)

// transformState tracks an in-progress rotate/resize gesture driven by
// the rotate handle. The pivot is the element center; angle and
// distance are measured relative to it.
type transformState struct {
	id            string
	center        core.Point
	startAngle    float64
	startDist     float64
	startRotation float64
	startWidth    float64
	startHeight   float64
	startFontSize float64

	// Live preview values, recomputed on every pointer-move.
	rotation float64
	scale    float64
}

// RotateHandleDown begins a rotate/resize gesture on the element's
// rotate handle. A missing target is a silent no-op.
func (c *Controller) RotateHandleDown(id string, pos core.Point) {
	c.trackCursor(pos)
	if c.interceptPointerDown(id) {
		return
	}
	el, ok := c.scene.Find(id)
	if !ok {
		return
	}
	center := c.elementBounds(el).Center()
	p := c.canvasPos(pos)
	dist := center.Distance(p)
	if dist == 0 {
		dist = 1
	}
	c.transform = &transformState{
		id:            id,
		center:        center,
		startAngle:    center.AngleTo(p),
		startDist:     dist,
		startRotation: el.Rotation,
		startWidth:    el.Width,
		startHeight:   el.Height,
		startFontSize: el.FontSize,
		rotation:      el.Rotation,
		scale:         1,
	}
	c.mode = ModeTransforming
}

func (c *Controller) transformMove(p core.Point) {
	t := c.transform
	if t == nil {
		return
	}
	t.rotation = t.startRotation + (t.center.AngleTo(p) - t.startAngle)
	t.scale = t.center.Distance(p) / t.startDist
}

// commitTransform writes the previewed rotation and scale into the
// store as a single history entry. Rotation is normalized into
// [0,360); dimensions and font size are floored/capped per variant.
func (c *Controller) commitTransform() {
	t := c.transform
	if t == nil {
		return
	}
	c.scene.Update(t.id, func(e *core.Element) {
		e.Rotation = core.NormalizeRotation(t.rotation)
		switch e.Kind {
		case core.KindTextbox:
			e.FontSize = clampf(t.startFontSize*t.scale, core.MinFontSize, core.MaxFontSize)
		case core.KindImage, core.KindShape:
			e.Width = maxf(core.MinElementSize, t.startWidth*t.scale)
			e.Height = maxf(core.MinElementSize, t.startHeight*t.scale)
		}
	})
}

// TransformPreview returns the live rotation and scaled geometry for
// the element being transformed.
func (c *Controller) TransformPreview(id string) (rotation, width, height, fontSize float64, ok bool) {
	t := c.transform
	if c.mode != ModeTransforming || t == nil || t.id != id {
		return 0, 0, 0, 0, false
	}
	rotation = t.rotation
	width = maxf(core.MinElementSize, t.startWidth*t.scale)
	height = maxf(core.MinElementSize, t.startHeight*t.scale)
	fontSize = clampf(t.startFontSize*t.scale, core.MinFontSize, core.MaxFontSize)
	return rotation, width, height, fontSize, true
}

// DragPreview returns the visual-only translation applied to a dragged
// element. Rotation and size are untouched during drags.
func (c *Controller) DragPreview(id string) (core.Point, bool) {
	if c.mode != ModeDragging || c.drag == nil {
		return core.Point{}, false
	}
	if _, ok := c.drag.start[id]; !ok {
		return core.Point{}, false
	}
	return c.drag.delta, true
}
