package vector

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestAddSub(t *testing.T) {
	a := New(1, 2)
	b := New(3, -1)
	if got := a.Add(b); got != (Vector{4, 1}) {
		t.Fatalf("Add = %v, want {4 1}", got)
	}
	if got := a.Sub(b); got != (Vector{-2, 3}) {
		t.Fatalf("Sub = %v, want {-2 3}", got)
	}
}

func TestDotCross(t *testing.T) {
	a := New(1, 0)
	b := New(0, 1)
	if got := a.Dot(b); got != 0 {
		t.Fatalf("Dot = %v, want 0", got)
	}
	if got := a.Cross(b); got != 1 {
		t.Fatalf("Cross = %v, want 1", got)
	}
}

func TestPerp(t *testing.T) {
	v := New(3, 4)
	p := v.Perp()
	if p != (Vector{-4, 3}) {
		t.Fatalf("Perp = %v, want {-4 3}", p)
	}
	// perp is always orthogonal
	if got := v.Dot(p); got != 0 {
		t.Fatalf("v.Dot(perp(v)) = %v, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	v := New(3, 4)
	n := v.Normalize()
	if !almostEqual(n.Magnitude(), 1, 1e-12) {
		t.Fatalf("|normalize(v)| = %v, want 1", n.Magnitude())
	}
	if got := (Vector{}).Normalize(); got != (Vector{}) {
		t.Fatalf("Normalize of zero vector = %v, want zero", got)
	}
}

func TestRotateAbout(t *testing.T) {
	pivot := New(1, 1)
	v := New(2, 1) // one unit to the right of pivot
	got := v.RotateAbout(pivot, math.Pi/2)
	want := New(1, 2)
	if !almostEqual(got.X, want.X, 1e-9) || !almostEqual(got.Y, want.Y, 1e-9) {
		t.Fatalf("RotateAbout = %v, want %v", got, want)
	}
}

func TestDirectionHalfLineAmbiguity(t *testing.T) {
	v := New(1, 1)
	nv := New(-1, -1)
	if v.Direction() != nv.Direction() {
		t.Fatalf("Direction should collapse opposite vectors: %v vs %v", v.Direction(), nv.Direction())
	}
}

func TestDirectionZeroX(t *testing.T) {
	v := New(0, 5)
	if got := v.Direction(); got != math.Pi/2 {
		t.Fatalf("Direction with X=0 = %v, want pi/2", got)
	}
}
