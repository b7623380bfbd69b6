package geometry

import "math"

// ClosestPointOnSegment returns the point on segment a-b nearest to p.
func ClosestPointOnSegment(p, a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

// ClosestPointOnPolyline returns the point on the polyline through points
// that is nearest to p. A single point polyline returns that point, and an
// empty polyline returns p unchanged.
func ClosestPointOnPolyline(p Point, points []Point) Point {
	switch len(points) {
	case 0:
		return p
	case 1:
		return points[0]
	}
	best := points[0]
	bestDist := math.Inf(1)
	for i := 0; i < len(points)-1; i++ {
		c := ClosestPointOnSegment(p, points[i], points[i+1])
		if d := Distance(p, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// LongestSegmentMidpoint returns the midpoint of the longest segment of the
// polyline. Ties go to the earliest segment.
func LongestSegmentMidpoint(points []Point) Point {
	switch len(points) {
	case 0:
		return Point{}
	case 1:
		return points[0]
	}
	idx, longest := 0, -1.0
	for i := 0; i < len(points)-1; i++ {
		if d := Distance(points[i], points[i+1]); d > longest {
			idx, longest = i, d
		}
	}
	return Midpoint(points[idx], points[idx+1])
}

// PolylineBounds returns the bounding box of points.
func PolylineBounds(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}
