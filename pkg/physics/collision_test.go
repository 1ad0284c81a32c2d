// pkg/physics/collision_test.go
package physics

import (
	"testing"
)

func TestRect_OverlapsCircle(t *testing.T) {
	rocket := Rect{Center: Vector2D{X: 500, Y: 475}, Width: 30, Height: 60}

	tests := []struct {
		name     string
		circle   Circle
		expected bool
	}{
		{"center_inside", Circle{Center: Vector2D{X: 500, Y: 475}, Radius: 1}, true},
		{"above_nose", Circle{Center: Vector2D{X: 500, Y: 430}, Radius: 20}, true},
		{"clear_above", Circle{Center: Vector2D{X: 500, Y: 400}, Radius: 20}, false},
		{"side_overlap", Circle{Center: Vector2D{X: 530, Y: 475}, Radius: 20}, true},
		{"side_touching", Circle{Center: Vector2D{X: 535, Y: 475}, Radius: 20}, false},
		// corner at (515, 445); circle at distance 5*sqrt(2) ~ 7.07
		{"corner_near", Circle{Center: Vector2D{X: 520, Y: 440}, Radius: 8}, true},
		{"corner_miss", Circle{Center: Vector2D{X: 520, Y: 440}, Radius: 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rocket.OverlapsCircle(tt.circle); got != tt.expected {
				t.Errorf("OverlapsCircle() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRect_Intersects(t *testing.T) {
	a := Rect{Center: Vector2D{X: 0, Y: 0}, Width: 10, Height: 10}
	tests := []struct {
		name     string
		other    Rect
		expected bool
	}{
		{"same", a, true},
		{"edge", Rect{Center: Vector2D{X: 10, Y: 0}, Width: 10, Height: 10}, true},
		{"apart", Rect{Center: Vector2D{X: 20, Y: 0}, Width: 10, Height: 10}, false},
		{"grown", Rect{Center: Vector2D{X: 20, Y: 0}, Width: 10, Height: 10}.Grow(10), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.other); got != tt.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestQuadTree_InsertQueryClear(t *testing.T) {
	world := Rect{Center: Vector2D{X: 500, Y: 300}, Width: 1200, Height: 800}
	qt := NewQuadTree(world, 2)

	points := []Vector2D{
		{X: 10, Y: 10}, {X: 20, Y: 20}, {X: 990, Y: 590},
		{X: 500, Y: 300}, {X: 505, Y: 305}, {X: 510, Y: -50},
	}
	for i, p := range points {
		if !qt.Insert(p, i) {
			t.Fatalf("Insert(%v) failed", p)
		}
	}
	if !qt.Divided {
		t.Error("Expected tree to subdivide past capacity")
	}
	if qt.Insert(Vector2D{X: 5000, Y: 0}, 99) {
		t.Error("Expected insert outside boundary to fail")
	}

	found := qt.Query(Rect{Center: Vector2D{X: 500, Y: 300}, Width: 20, Height: 20})
	if len(found) != 2 {
		t.Fatalf("Expected 2 objects near center, got %d", len(found))
	}

	found = qt.Query(world)
	if len(found) != len(points) {
		t.Errorf("Expected %d objects in whole world, got %d", len(points), len(found))
	}

	qt.Clear()
	if len(qt.Query(world)) != 0 || qt.Divided {
		t.Error("Expected empty undivided tree after Clear")
	}
}
