package session

import (
	"strings"

	"memeboard/core"
)

// CropHandle names one of the eight crop edge/corner handles.
type CropHandle string

const (
	CropN  CropHandle = "n"
	CropS  CropHandle = "s"
	CropE  CropHandle = "e"
	CropW  CropHandle = "w"
	CropNE CropHandle = "ne"
	CropNW CropHandle = "nw"
	CropSE CropHandle = "se"
	CropSW CropHandle = "sw"
)

// cropState is the working state of the crop editor. rect is the
// working crop rectangle in natural pixel space; the element itself is
// untouched until commit, so cancel only needs to drop this state.
type cropState struct {
	id        string
	rect      core.Rect
	startRect core.Rect
	naturalW  float64
	naturalH  float64
	dispW     float64
	dispH     float64
	rotation  float64
	handle    CropHandle
	last      core.Point
}

// BeginCrop enters crop mode for an image element. The working
// rectangle starts from the element's crop, or from the region visible
// under cover-fit scaling when the image has none.
func (c *Controller) BeginCrop(id string) {
	el, ok := c.scene.Find(id)
	if !ok || el.Kind != core.KindImage {
		return
	}
	c.resetTransient()
	var rect core.Rect
	if el.Crop != nil {
		rect = core.Rect{X: el.Crop.X, Y: el.Crop.Y, Width: el.Crop.Width, Height: el.Crop.Height}
	} else {
		rect = core.CoverFitRegion(el.NaturalWidth, el.NaturalHeight, el.Width, el.Height)
	}
	c.crop = &cropState{
		id:        id,
		rect:      rect,
		startRect: rect,
		naturalW:  el.NaturalWidth,
		naturalH:  el.NaturalHeight,
		dispW:     el.Width,
		dispH:     el.Height,
		rotation:  el.Rotation,
	}
	c.mode = ModeCropping
}

// ToggleCrop enters crop mode, or cancels it when already cropping the
// same element.
func (c *Controller) ToggleCrop(id string) {
	if c.mode == ModeCropping && c.crop != nil && c.crop.id == id {
		c.CancelCrop()
		return
	}
	c.BeginCrop(id)
}

// CropHandleDown starts adjusting one handle of the working rectangle.
func (c *Controller) CropHandleDown(handle CropHandle, pos core.Point) {
	c.trackCursor(pos)
	if c.mode != ModeCropping || c.crop == nil {
		return
	}
	c.crop.handle = handle
	c.crop.last = c.canvasPos(pos)
}

// cropMove converts the pointer delta into the element's unrotated
// frame, then into natural pixels via the display-to-crop ratio, and
// moves the grabbed edges. Edges clamp against the natural bounds and
// the minimum crop size; geometry is never rejected.
func (c *Controller) cropMove(p core.Point) {
	cr := c.crop
	if cr == nil || cr.handle == "" {
		return
	}
	d := p.Sub(cr.last)
	cr.last = p
	local := d.Rotate(-cr.rotation)
	if cr.dispW <= 0 || cr.dispH <= 0 {
		return
	}
	dx := local.X * cr.rect.Width / cr.dispW
	dy := local.Y * cr.rect.Height / cr.dispH

	h := string(cr.handle)
	r := cr.rect
	if strings.Contains(h, "e") {
		right := clampf(r.X+r.Width+dx, r.X+core.MinCropSize, cr.naturalW)
		r.Width = right - r.X
	}
	if strings.Contains(h, "w") {
		left := clampf(r.X+dx, 0, r.X+r.Width-core.MinCropSize)
		r.Width += r.X - left
		r.X = left
	}
	if strings.Contains(h, "s") {
		bottom := clampf(r.Y+r.Height+dy, r.Y+core.MinCropSize, cr.naturalH)
		r.Height = bottom - r.Y
	}
	if strings.Contains(h, "n") {
		top := clampf(r.Y+dy, 0, r.Y+r.Height-core.MinCropSize)
		r.Height += r.Y - top
		r.Y = top
	}
	cr.rect = r
}

// CommitCrop writes the working rectangle as the element's crop in one
// history entry. Display size is recomputed so the previous display
// scale carries over to the new rectangle.
func (c *Controller) CommitCrop() {
	cr := c.crop
	if cr == nil {
		c.mode = ModeIdle
		return
	}
	// A degenerate working rect (image with no natural size) must not
	// produce NaN dimensions; fall back to a 1:1 scale.
	scaleX, scaleY := 1.0, 1.0
	if cr.startRect.Width > 0 {
		scaleX = cr.dispW / cr.startRect.Width
	}
	if cr.startRect.Height > 0 {
		scaleY = cr.dispH / cr.startRect.Height
	}
	rect := cr.rect
	c.scene.Update(cr.id, func(e *core.Element) {
		e.Crop = &core.Crop{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}
		e.Width = rect.Width * scaleX
		e.Height = rect.Height * scaleY
	})
	c.crop = nil
	c.mode = ModeIdle
}

// CancelCrop leaves crop mode without touching the element; the
// pre-crop crop and dimensions were never overwritten.
func (c *Controller) CancelCrop() {
	c.crop = nil
	c.mode = ModeIdle
}

// CropPreview returns the working crop rectangle for rendering the
// crop overlay.
func (c *Controller) CropPreview(id string) (core.Rect, bool) {
	if c.mode != ModeCropping || c.crop == nil || c.crop.id != id {
		return core.Rect{}, false
	}
	return c.crop.rect, true
}
