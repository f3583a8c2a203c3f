package core

import "math"

// Point is a 2D point or vector in canvas coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	d := p.Sub(q)
	return math.Hypot(d.X, d.Y)
}

// Rotate returns the vector rotated by deg degrees about the origin.
func (p Point) Rotate(deg float64) Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// RotateAround returns the point rotated by deg degrees about c.
func (p Point) RotateAround(c Point, deg float64) Point {
	return p.Sub(c).Rotate(deg).Add(c)
}

// AngleTo returns the angle in degrees of the vector from p to q.
func (p Point) AngleTo(q Point) float64 {
	return math.Atan2(q.Y-p.Y, q.X-p.X) * 180 / math.Pi
}

// Rect is an axis-aligned rectangle with a top-left corner and size.
type Rect struct {
	X, Y, Width, Height float64
}

// NormalizedRect builds the rectangle spanned by two corner points,
// regardless of which corner the gesture started from.
func NormalizedRect(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// CoverFitRegion returns the sub-rectangle of a naturalW x naturalH
// image that stays visible when the image fills a displayW x displayH
// box under cover-fit scaling (aspect preserved, overflow cropped,
// centered). The result is in natural pixel space and seeds the crop
// editor for images without an explicit crop.
func CoverFitRegion(naturalW, naturalH, displayW, displayH float64) Rect {
	if naturalW <= 0 || naturalH <= 0 || displayW <= 0 || displayH <= 0 {
		return Rect{Width: naturalW, Height: naturalH}
	}
	scale := math.Max(displayW/naturalW, displayH/naturalH)
	w := displayW / scale
	h := displayH / scale
	return Rect{
		X:      (naturalW - w) / 2,
		Y:      (naturalH - h) / 2,
		Width:  w,
		Height: h,
	}
}

// Bounds returns the element's unrotated axis-aligned box. Elements
// without an explicit size fall back to the given measured size.
func (e Element) Bounds(fallbackW, fallbackH float64) Rect {
	w, h := e.Width, e.Height
	if w <= 0 {
		w = fallbackW
	}
	if h <= 0 {
		h = fallbackH
	}
	return Rect{X: e.X, Y: e.Y, Width: w, Height: h}
}
