package core

import (
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ElementKind discriminates the element union. Every element carries a
// Kind; handlers and the interaction engine switch on it exhaustively.
type ElementKind string

const (
	KindTextbox ElementKind = "textbox"
	KindImage   ElementKind = "image"
	KindShape   ElementKind = "shape"
)

type FontFamily string

const (
	FontDefault    FontFamily = "default"
	FontDecorative FontFamily = "decorative"
)

type TextColor string

const (
	TextBlack TextColor = "black"
	TextWhite TextColor = "white"
)

type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeSquare    ShapeKind = "square"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
)

const (
	// MinCropSize is the smallest crop edge, in natural pixels.
	MinCropSize = 20
	// MinElementSize is the smallest width/height a resize can commit
	// for image and shape elements.
	MinElementSize = 50
	MinFontSize    = 8
	MaxFontSize    = 200
)

// Crop is a sub-rectangle of an image in its natural (intrinsic,
// uncropped) pixel space.
type Crop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamped returns the crop forced inside [0,naturalW]x[0,naturalH] with
// both edges at least MinCropSize. Geometry is clamped, never rejected.
func (c Crop) Clamped(naturalW, naturalH float64) Crop {
	c.Width = math.Min(math.Max(c.Width, MinCropSize), naturalW)
	c.Height = math.Min(math.Max(c.Height, MinCropSize), naturalH)
	c.X = math.Min(math.Max(c.X, 0), naturalW-c.Width)
	c.Y = math.Min(math.Max(c.Y, 0), naturalH-c.Height)
	return c
}

// Element is one item on the canvas. It is a tagged union: Kind selects
// which of the variant field groups below is meaningful. The flat shape
// keeps snapshots cheap to copy and serializes to the document format
// the frontend stores.
type Element struct {
	ID       string      `json:"id"`
	Kind     ElementKind `json:"kind"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Rotation float64     `json:"rotation"`
	// Width/Height of zero mean "no explicit size": the renderer
	// measures the intrinsic box. Only textboxes may be unsized.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Textbox fields.
	Content    string     `json:"content,omitempty"`
	FontSize   float64    `json:"fontSize,omitempty"`
	FontFamily FontFamily `json:"fontFamily,omitempty"`
	Italic     bool       `json:"italic,omitempty"`
	TextColor  TextColor  `json:"textColor,omitempty"`

	// Image fields. Src is a resource reference resolved by the
	// renderer/blob store, not owned by the engine.
	Src           string  `json:"src,omitempty"`
	NaturalWidth  float64 `json:"naturalWidth,omitempty"`
	NaturalHeight float64 `json:"naturalHeight,omitempty"`
	Crop          *Crop   `json:"crop,omitempty"`

	// Shape fields.
	Shape     ShapeKind `json:"shape,omitempty"`
	FillColor string    `json:"fillColor,omitempty"`
}

// NewID mints a canvas-unique element identifier.
func NewID() string {
	return ulid.Make().String()
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	if e.Crop != nil {
		c := *e.Crop
		e.Crop = &c
	}
	return e
}

// CloneElements deep-copies a snapshot.
func CloneElements(els []Element) []Element {
	out := make([]Element, len(els))
	for i, e := range els {
		out[i] = e.Clone()
	}
	return out
}

// Sanitized returns the element with commit-time geometry invariants
// applied: non-negative position, rotation in [0,360), crop contained
// in the natural bounds.
func (e Element) Sanitized() Element {
	e.X = math.Max(0, e.X)
	e.Y = math.Max(0, e.Y)
	e.Rotation = NormalizeRotation(e.Rotation)
	if e.Kind == KindImage && e.Crop != nil {
		c := e.Crop.Clamped(e.NaturalWidth, e.NaturalHeight)
		e.Crop = &c
	}
	return e
}

// IsEmptyTextbox reports whether the element is a textbox with no
// visible content. Such elements are deleted on focus loss.
func (e Element) IsEmptyTextbox() bool {
	return e.Kind == KindTextbox && strings.TrimSpace(e.Content) == ""
}

// NormalizeRotation maps any rotation in degrees into [0,360).
func NormalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// SceneDoc is the persisted form of a canvas: the committed element
// order plus the last known viewport scroll offset.
type SceneDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Elements  []Element `json:"elements"`
	ScrollX   float64   `json:"scrollX"`
	ScrollY   float64   `json:"scrollY"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
