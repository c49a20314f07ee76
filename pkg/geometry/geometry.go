// Package geometry provides the canvas coordinate types used by the workspace.
package geometry

import (
	"math"
)

// Point is a position in canvas or client coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Viewport describes how the canvas is shown inside the client: the
// bounding rect origin in client space, the pan offset and the zoom factor.
type Viewport struct {
	Origin Point   `json:"origin"`
	Pan    Point   `json:"pan"`
	Zoom   float64 `json:"zoom"`
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ToCanvas maps a client point to canvas coordinates.
func (v Viewport) ToCanvas(client Point) Point {
	return client.Sub(v.Origin).Sub(v.Pan).Scale(1 / v.zoom())
}

// ToClient is the inverse of ToCanvas.
func (v Viewport) ToClient(canvas Point) Point {
	return canvas.Scale(v.zoom()).Add(v.Pan).Add(v.Origin)
}

// Segment is a straight piece of a wire.
type Segment struct {
	A, B Point
}

// DistanceTo returns the shortest distance from p to the segment.
func (s Segment) DistanceTo(p Point) float64 {
	d := s.B.Sub(s.A)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return p.Distance(s.A)
	}

	t := ((p.X-s.A.X)*d.X + (p.Y-s.A.Y)*d.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(s.A.Add(d.Scale(t)))
}

// Touches reports whether p lies on the segment within tol.
func (s Segment) Touches(p Point, tol float64) bool {
	return s.DistanceTo(p) <= tol
}

// Polyline splits an ordered vertex list into segments.
func Polyline(points []Point) []Segment {
	if len(points) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		segs = append(segs, Segment{A: points[i-1], B: points[i]})
	}
	return segs
}
