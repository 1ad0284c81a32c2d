package physics

import (
	"math"
	"testing"
)

func TestVector2D_Arithmetic(t *testing.T) {
	a := Vector2D{X: 3, Y: 4}
	b := Vector2D{X: 1, Y: -2}

	if got := a.Add(b); got != (Vector2D{X: 4, Y: 2}) {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Sub(b); got != (Vector2D{X: 2, Y: 6}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := a.Scale(-0.5); got != (Vector2D{X: -1.5, Y: -2}) {
		t.Errorf("Scale = %+v", got)
	}
	if a.Length() != 5 || a.LengthSquared() != 25 {
		t.Errorf("Length = %f, LengthSquared = %f", a.Length(), a.LengthSquared())
	}
	if d := a.Distance(b); math.Abs(d-math.Sqrt(40)) > 1e-12 {
		t.Errorf("Distance = %f", d)
	}
}

func TestHeadingVector_UnitLength(t *testing.T) {
	for _, h := range []float64{0, 0.3, -2.1, 7.5, 100} {
		if l := HeadingVector(h).Length(); math.Abs(l-1) > 1e-12 {
			t.Errorf("heading %f: expected unit vector, length %f", h, l)
		}
	}
}
