package session

import (
	"context"
	"fmt"

	"memeboard/core"

	"github.com/sirupsen/logrus"
)

const (
	defaultFontSize     = 32
	defaultShapeSize    = 120
	maxPasteDisplaySize = 400
)

// AddTextbox creates a textbox at the last tracked cursor position and
// commits it. The box has no explicit size until its first resize.
func (c *Controller) AddTextbox(content string) string {
	el := core.Element{
		ID:         core.NewID(),
		Kind:       core.KindTextbox,
		X:          c.cursor.X,
		Y:          c.cursor.Y,
		Content:    content,
		FontSize:   defaultFontSize,
		FontFamily: core.FontDefault,
		TextColor:  core.TextBlack,
	}
	c.scene.Add(el)
	return el.ID
}

// AddShape creates a shape at the last tracked cursor position.
func (c *Controller) AddShape(kind core.ShapeKind, fill string) string {
	el := core.Element{
		ID:        core.NewID(),
		Kind:      core.KindShape,
		X:         c.cursor.X,
		Y:         c.cursor.Y,
		Width:     defaultShapeSize,
		Height:    defaultShapeSize,
		Shape:     kind,
		FillColor: fill,
	}
	c.scene.Add(el)
	return el.ID
}

// UpdateText commits a textbox's content. Called when editing ends,
// not on every keystroke.
func (c *Controller) UpdateText(id, content string) {
	c.scene.Update(id, func(e *core.Element) {
		e.Content = content
	})
}

// Blur handles focus leaving a textbox: an empty textbox is deleted,
// not kept as an empty update.
func (c *Controller) Blur(id string) {
	el, ok := c.scene.Find(id)
	if !ok {
		return
	}
	if el.IsEmptyTextbox() {
		c.scene.Delete(id)
	}
}

// PasteImage turns a clipboard image blob into an image element at the
// last tracked cursor position. The blob is persisted fire-and-forget;
// a failed write is logged and reported but never blocks the paste.
func (c *Controller) PasteImage(ctx context.Context, data []byte, naturalW, naturalH float64) string {
	id := core.NewID()
	if c.cfg.Blobs != nil {
		if err := c.cfg.Blobs.PutBlob(ctx, id, data); err != nil {
			logrus.WithError(err).WithField("element_id", id).Error("Failed to store pasted image blob")
			c.status("Image could not be saved")
		}
	}
	w, h := pasteDisplaySize(naturalW, naturalH)
	el := core.Element{
		ID:            id,
		Kind:          core.KindImage,
		X:             c.cursor.X,
		Y:             c.cursor.Y,
		Src:           blobSrc(id, ""),
		NaturalWidth:  naturalW,
		NaturalHeight: naturalH,
		Width:         w,
		Height:        h,
	}
	c.scene.Add(el)
	return id
}

// pasteDisplaySize shrinks large images to a workable initial display
// size, preserving aspect ratio.
func pasteDisplaySize(naturalW, naturalH float64) (float64, float64) {
	if naturalW <= 0 || naturalH <= 0 {
		return maxPasteDisplaySize, maxPasteDisplaySize
	}
	scale := 1.0
	if naturalW > maxPasteDisplaySize || naturalH > maxPasteDisplaySize {
		scale = maxPasteDisplaySize / maxf(naturalW, naturalH)
	}
	return naturalW * scale, naturalH * scale
}

// blobSrc builds the resource reference the renderer resolves against
// the blob store. The version suffix busts renderer caches after the
// blob content changes.
func blobSrc(id, version string) string {
	if version == "" {
		return "blob:" + id
	}
	return fmt.Sprintf("blob:%s?v=%s", id, version)
}

// RemoveBackground runs the inference collaborator against an image
// element's blob. The blocking work happens on its own goroutine so
// pointer handling never stalls behind the inference call; the commit
// is marshalled back through the Dispatch hook. Calls are serialized
// per element id: a second request while one is outstanding is
// ignored. On failure the image state is left unmodified.
func (c *Controller) RemoveBackground(ctx context.Context, id string) {
	el, ok := c.scene.Find(id)
	if !ok || el.Kind != core.KindImage {
		return
	}
	if c.cfg.Blobs == nil || c.cfg.Remover == nil {
		c.status("Background removal is not available")
		return
	}

	c.mu.Lock()
	if _, busy := c.inFlight[id]; busy {
		c.mu.Unlock()
		c.status("Background removal already in progress")
		return
	}
	c.inFlight[id] = struct{}{}
	c.mu.Unlock()

	c.status("Removing background...")
	go c.runRemoval(ctx, id)
}

// runRemoval is the background half of RemoveBackground. It only
// touches the blob store and the in-flight map; the scene mutation and
// terminal status message go through Dispatch.
func (c *Controller) runRemoval(ctx context.Context, id string) {
	log := logrus.WithField("element_id", id)
	fail := func() {
		c.cfg.Dispatch(func() { c.status("Background removal failed") })
	}
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, id)
		c.mu.Unlock()
	}()

	blob, err := c.cfg.Blobs.GetBlob(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load image blob for removal")
		fail()
		return
	}

	out, err := c.cfg.Remover.Remove(ctx, id, blob)
	if err != nil {
		log.WithError(err).Error("Background removal failed")
		fail()
		return
	}

	if err := c.cfg.Blobs.PutBlob(ctx, id, out); err != nil {
		log.WithError(err).Error("Failed to store processed image blob")
		fail()
		return
	}

	version := core.NewID()
	c.cfg.Dispatch(func() {
		c.scene.Update(id, func(e *core.Element) {
			e.Src = blobSrc(id, version)
		})
		c.status("Background removed")
	})
}

// RemovalInFlight reports whether a removal is outstanding for the
// element; the frontend disables the trigger button with it.
func (c *Controller) RemovalInFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[id]
	return busy
}
