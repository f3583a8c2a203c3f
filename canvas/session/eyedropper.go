package session

import (
	"memeboard/core"
)

// pickerState is the eyedropper's working state: the target shape, the
// fill it had when the mode was entered, and the live sampled preview.
type pickerState struct {
	id       string
	prevFill string
	preview  string
}

// StartEyedropper enters eyedropper mode for a shape. Triggering it
// again for the same shape cancels (toggle semantics). The mode is
// mutually exclusive with every other gesture.
func (c *Controller) StartEyedropper(shapeID string) {
	if c.mode == ModeEyedropper && c.picker != nil && c.picker.id == shapeID {
		c.cancelEyedropper()
		return
	}
	el, ok := c.scene.Find(shapeID)
	if !ok || el.Kind != core.KindShape {
		return
	}
	c.resetTransient()
	c.picker = &pickerState{id: shapeID, prevFill: el.FillColor, preview: el.FillColor}
	c.mode = ModeEyedropper
}

// eyedropperMove samples the pixel under the cursor from the topmost
// image element and previews it as the target shape's fill. No history
// entry is written.
func (c *Controller) eyedropperMove(p core.Point) {
	pk := c.picker
	if pk == nil || c.cfg.Sampler == nil {
		return
	}
	// Topmost image under the pointer wins; iterate back to front.
	els := c.scene.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		el := els[i]
		if el.Kind != core.KindImage {
			continue
		}
		nx, ny, ok := imagePixelAt(el, p)
		if !ok {
			continue
		}
		if col, ok := c.cfg.Sampler.SampleAt(el.ID, nx, ny); ok {
			pk.preview = col
		}
		return
	}
}

// imagePixelAt maps a canvas point into an image element's natural
// pixel space, honoring rotation and crop. Returns false when the
// point lies outside the element.
func imagePixelAt(el core.Element, p core.Point) (x, y float64, ok bool) {
	box := el.Bounds(el.NaturalWidth, el.NaturalHeight)
	if box.Width <= 0 || box.Height <= 0 {
		return 0, 0, false
	}
	local := p.RotateAround(box.Center(), -el.Rotation)
	if !box.Contains(local) {
		return 0, 0, false
	}
	u := (local.X - box.X) / box.Width
	v := (local.Y - box.Y) / box.Height
	crop := core.Crop{Width: el.NaturalWidth, Height: el.NaturalHeight}
	if el.Crop != nil {
		crop = *el.Crop
	}
	return crop.X + u*crop.Width, crop.Y + v*crop.Height, true
}

// commitEyedropper writes the sampled fill as one history entry and
// leaves the mode.
func (c *Controller) commitEyedropper() {
	pk := c.picker
	c.picker = nil
	c.mode = ModeIdle
	if pk == nil {
		return
	}
	if pk.preview == "" || pk.preview == pk.prevFill {
		return
	}
	c.scene.Update(pk.id, func(e *core.Element) {
		e.FillColor = pk.preview
	})
}

// cancelEyedropper restores the pre-activation fill and exits without
// committing. The store was never touched, so restoring is dropping
// the preview.
func (c *Controller) cancelEyedropper() {
	c.picker = nil
	c.mode = ModeIdle
}

// FillPreview returns the live fill color for the eyedropper target.
func (c *Controller) FillPreview(id string) (string, bool) {
	if c.mode != ModeEyedropper || c.picker == nil || c.picker.id != id {
		return "", false
	}
	return c.picker.preview, true
}
