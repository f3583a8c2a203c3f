package session

import (
	"math"
	"testing"

	"memeboard/core"
)

// sizedShape sits at (100,100) with a 100x100 box, so its rotate pivot
// is (150,150).
func sizedShape(id string) core.Element {
	return core.Element{ID: id, Kind: core.KindShape, X: 100, Y: 100, Width: 100, Height: 100, Shape: core.ShapeRectangle, FillColor: "#abcdef"}
}

func TestRotateQuarterTurnCommitsOnce(t *testing.T) {
	c := newController(sizedShape("a"))
	before := c.Scene().History().Len()

	c.RotateHandleDown("a", core.Pt(150, 50)) // directly above the pivot
	if c.Mode() != ModeTransforming {
		t.Fatalf("mode = %v, want Transforming", c.Mode())
	}
	c.PointerMove(core.Pt(250, 150)) // right of the pivot, same distance

	rot, w, h, _, ok := c.TransformPreview("a")
	if !ok {
		t.Fatal("no transform preview for the grabbed element")
	}
	if math.Abs(rot-90) > 1e-9 {
		t.Errorf("preview rotation = %v, want 90", rot)
	}
	if w != 100 || h != 100 {
		t.Errorf("preview size = (%v, %v), want unchanged (100, 100)", w, h)
	}
	if c.Scene().History().Len() != before {
		t.Fatal("preview wrote a history entry")
	}

	c.PointerUp(core.Pt(250, 150))

	a := elementByID(t, c, "a")
	if math.Abs(a.Rotation-90) > 1e-9 {
		t.Errorf("rotation = %v, want 90", a.Rotation)
	}
	if a.Width != 100 || a.Height != 100 {
		t.Errorf("size = (%v, %v), want unchanged", a.Width, a.Height)
	}
	if got := c.Scene().History().Len(); got != before+1 {
		t.Errorf("history grew by %d, want 1", got-before)
	}
}

func TestNegativeRotationNormalizes(t *testing.T) {
	c := newController(sizedShape("a"))
	c.RotateHandleDown("a", core.Pt(250, 150)) // right of pivot, angle 0
	c.PointerMove(core.Pt(150, 50))            // above pivot, angle -90
	c.PointerUp(core.Pt(150, 50))

	if got := elementByID(t, c, "a").Rotation; math.Abs(got-270) > 1e-9 {
		t.Errorf("rotation = %v, want -90 normalized to 270", got)
	}
}

func TestResizeScalesWithHandleDistance(t *testing.T) {
	c := newController(sizedShape("a"))
	c.RotateHandleDown("a", core.Pt(150, 50)) // distance 100
	c.PointerMove(core.Pt(150, -150))         // distance 300, same angle
	c.PointerUp(core.Pt(150, -150))

	a := elementByID(t, c, "a")
	if a.Width != 300 || a.Height != 300 {
		t.Errorf("size = (%v, %v), want (300, 300)", a.Width, a.Height)
	}
	if a.Rotation != 0 {
		t.Errorf("rotation = %v, want 0", a.Rotation)
	}
}

func TestResizeFloorsAtMinimumSize(t *testing.T) {
	c := newController(sizedShape("a"))
	c.RotateHandleDown("a", core.Pt(150, 50))
	c.PointerMove(core.Pt(150, 140)) // distance 10, scale 0.1
	c.PointerUp(core.Pt(150, 140))

	a := elementByID(t, c, "a")
	if a.Width != core.MinElementSize || a.Height != core.MinElementSize {
		t.Errorf("size = (%v, %v), want floored at %v", a.Width, a.Height, float64(core.MinElementSize))
	}
}

func TestTextboxTransformScalesFontNotBox(t *testing.T) {
	tb := core.Element{ID: "t", Kind: core.KindTextbox, X: 0, Y: 0, Width: 100, Height: 30, Content: "hi", FontSize: 32}
	c := newController(tb) // pivot (50, 15)

	c.RotateHandleDown("t", core.Pt(50, -85)) // distance 100
	c.PointerMove(core.Pt(50, -185))          // distance 200, scale 2
	c.PointerUp(core.Pt(50, -185))

	got := elementByID(t, c, "t")
	if got.FontSize != 64 {
		t.Errorf("font size = %v, want 64", got.FontSize)
	}
	if got.Width != 100 || got.Height != 30 {
		t.Errorf("box = (%v, %v), want untouched (100, 30)", got.Width, got.Height)
	}
}

func TestFontSizeClamps(t *testing.T) {
	tests := []struct {
		name string
		to   core.Point
		want float64
	}{
		{"cap", core.Pt(50, -985), core.MaxFontSize}, // distance 1000, 32*10=320
		{"floor", core.Pt(50, 5), core.MinFontSize},  // distance 10, 32*0.1=3.2
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := core.Element{ID: "t", Kind: core.KindTextbox, Width: 100, Height: 30, Content: "hi", FontSize: 32}
			c := newController(tb)
			c.RotateHandleDown("t", core.Pt(50, -85))
			c.PointerMove(tt.to)
			c.PointerUp(tt.to)
			if got := elementByID(t, c, "t").FontSize; got != tt.want {
				t.Errorf("font size = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateHandleDownOnMissingElement(t *testing.T) {
	c := newController(sizedShape("a"))
	c.RotateHandleDown("ghost", core.Pt(0, 0))
	if c.Mode() != ModeIdle {
		t.Errorf("mode = %v, want Idle", c.Mode())
	}
}

func TestUndoRestoresPreTransformState(t *testing.T) {
	c := newController(sizedShape("a"))
	c.RotateHandleDown("a", core.Pt(150, 50))
	c.PointerMove(core.Pt(250, 150))
	c.PointerUp(core.Pt(250, 150))
	if got := elementByID(t, c, "a").Rotation; got != 90 {
		t.Fatalf("rotation = %v after commit, want 90", got)
	}

	c.Undo()
	if got := elementByID(t, c, "a").Rotation; got != 0 {
		t.Errorf("rotation = %v after undo, want 0", got)
	}
	c.Redo()
	if got := elementByID(t, c, "a").Rotation; got != 90 {
		t.Errorf("rotation = %v after redo, want 90", got)
	}
}
