package geometry

import "math"

// Point is a canvas-space coordinate.
type Point struct {
	X float64 `json:"x" toml:"x" bson:"x"`
	Y float64 `json:"y" toml:"y" bson:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// IsPointInArea reports whether p lies strictly inside the rectangle spanned
// by leftTop and rightBottom. Points on the border are outside.
func IsPointInArea(p, leftTop, rightBottom Point) bool {
	return p.X > leftTop.X && p.X < rightBottom.X &&
		p.Y > leftTop.Y && p.Y < rightBottom.Y
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundsFromCenter returns the box of the given size centered on (x, y).
func BoundsFromCenter(x, y, width, height float64) Bounds {
	return Bounds{
		MinX: x - width/2,
		MinY: y - height/2,
		MaxX: x + width/2,
		MaxY: y + height/2,
	}
}

// Corners returns the four corners clockwise from the top-left.
func (b Bounds) Corners() [4]Point {
	return [4]Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
