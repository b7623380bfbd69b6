package geometry

import "math"

// SnapToGrid rounds v to the nearest multiple of gridSize.
// Grid sizes <= 1 disable snapping.
func SnapToGrid(v, gridSize float64) float64 {
	if gridSize <= 1 {
		return v
	}
	return gridSize * math.Round(v/gridSize)
}

// SnapPoint snaps both coordinates of p.
func SnapPoint(p Point, gridSize float64) Point {
	return Point{X: SnapToGrid(p.X, gridSize), Y: SnapToGrid(p.Y, gridSize)}
}

// GridOffset returns how far v sits from the grid line below it.
// It is zero for values already on the grid.
func GridOffset(v, gridSize float64) float64 {
	if gridSize <= 1 {
		return 0
	}
	off := math.Mod(v, gridSize)
	if off < 0 {
		off += gridSize
	}
	return off
}
