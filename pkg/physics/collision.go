// pkg/physics/collision.go
package physics

import "math"

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Rect is an axis-aligned rectangle described by its center point.
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// Contains reports whether point lies inside the rectangle. The left and
// top edges are inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Intersects reports whether two rectangles share any area or edge.
func (r Rect) Intersects(other Rect) bool {
	return !(other.Center.X-other.Width/2 > r.Center.X+r.Width/2 ||
		other.Center.X+other.Width/2 < r.Center.X-r.Width/2 ||
		other.Center.Y-other.Height/2 > r.Center.Y+r.Height/2 ||
		other.Center.Y+other.Height/2 < r.Center.Y-r.Height/2)
}

// Grow returns the rectangle extended by margin on every side.
func (r Rect) Grow(margin float64) Rect {
	return Rect{Center: r.Center, Width: r.Width + 2*margin, Height: r.Height + 2*margin}
}

// OverlapsCircle reports whether the rectangle and the circle overlap.
// Touching at a single point does not count.
func (r Rect) OverlapsCircle(c Circle) bool {
	halfW, halfH := r.Width/2, r.Height/2
	nearestX := math.Max(r.Center.X-halfW, math.Min(c.Center.X, r.Center.X+halfW))
	nearestY := math.Max(r.Center.Y-halfH, math.Min(c.Center.Y, r.Center.Y+halfH))
	d := Vector2D{X: c.Center.X - nearestX, Y: c.Center.Y - nearestY}
	return d.LengthSquared() < c.Radius*c.Radius
}

// QuadTree for spatial partitioning
type QuadTree struct {
	Boundary  Rect
	Capacity  int
	Points    []Vector2D
	Objects   []any
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector2D, 0, capacity),
		Objects:  make([]any, 0, capacity),
	}
}

// Insert stores object at point. It returns false if the point lies
// outside the tree's boundary.
func (qt *QuadTree) Insert(point Vector2D, object any) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if len(qt.Points) < qt.Capacity && !qt.Divided {
		qt.Points = append(qt.Points, point)
		qt.Objects = append(qt.Objects, object)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	return qt.NorthWest.Insert(point, object) ||
		qt.NorthEast.Insert(point, object) ||
		qt.SouthWest.Insert(point, object) ||
		qt.SouthEast.Insert(point, object)
}

// Subdivide splits the quadtree into four quadrants
func (qt *QuadTree) Subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	qt.NorthWest = NewQuadTree(Rect{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.NorthEast = NewQuadTree(Rect{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.SouthWest = NewQuadTree(Rect{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.SouthEast = NewQuadTree(Rect{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.Divided = true
}

// Query returns every object whose point lies inside area
func (qt *QuadTree) Query(area Rect) []any {
	var found []any
	qt.query(area, &found)
	return found
}

func (qt *QuadTree) query(area Rect, found *[]any) {
	if !qt.Boundary.Intersects(area) {
		return
	}

	for i, point := range qt.Points {
		if area.Contains(point) {
			*found = append(*found, qt.Objects[i])
		}
	}

	if !qt.Divided {
		return
	}

	qt.NorthWest.query(area, found)
	qt.NorthEast.query(area, found)
	qt.SouthWest.query(area, found)
	qt.SouthEast.query(area, found)
}

// Clear empties the tree so it can be refilled for the next frame.
func (qt *QuadTree) Clear() {
	qt.Points = qt.Points[:0]
	qt.Objects = qt.Objects[:0]
	qt.Divided = false
	qt.NorthWest, qt.NorthEast, qt.SouthWest, qt.SouthEast = nil, nil, nil, nil
}
