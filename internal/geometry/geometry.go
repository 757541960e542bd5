// Package geometry provides the points and rectangles used for area selection.
package geometry

// Point is a position in document or viewport space.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Rect is an axis-aligned rectangle. Left <= Right and Top <= Bottom hold for
// every rectangle built through RectFromPoints.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromPoints returns the normalized rectangle spanned by two points,
// regardless of drag direction.
func RectFromPoints(a, b Point) Rect {
	r := Rect{Left: a.X, Top: a.Y, Right: b.X, Bottom: b.Y}
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Right: r.Right + d.X, Bottom: r.Bottom + d.Y}
}

// Union returns the smallest rectangle containing both r and o.
// An empty r yields o.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o.Left < r.Left {
		r.Left = o.Left
	}
	if o.Top < r.Top {
		r.Top = o.Top
	}
	if o.Right > r.Right {
		r.Right = o.Right
	}
	if o.Bottom > r.Bottom {
		r.Bottom = o.Bottom
	}
	return r
}

// Intersects uses open intervals on both axes: rectangles that only touch
// along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left &&
		r.Top < o.Bottom && r.Bottom > o.Top
}

// ExceedsThreshold reports whether either side of r is longer than t.
func (r Rect) ExceedsThreshold(t float64) bool {
	return r.Width() > t || r.Height() > t
}
