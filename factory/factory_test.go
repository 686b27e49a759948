package factory

import (
	"math"
	"testing"

	"github.com/0x5844/physics2d/body"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestRectDimensions(t *testing.T) {
	b, err := Rect(0, 0, 10, 4)
	if err != nil {
		t.Fatalf("Rect: %v", err)
	}
	bnds := b.Bounds()
	if !almostEqual(bnds.Width(), 10, 1e-9) || !almostEqual(bnds.Height(), 4, 1e-9) {
		t.Fatalf("bounds = %v x %v, want 10 x 4", bnds.Width(), bnds.Height())
	}
}

func TestRectAppliesOptions(t *testing.T) {
	b, err := Rect(0, 0, 10, 10, body.WithStatic(true), body.WithRestitution(0.2))
	if err != nil {
		t.Fatalf("Rect: %v", err)
	}
	if !b.IsStatic() {
		t.Fatal("expected static body")
	}
	if !almostEqual(b.Restitution(), 0.2, 1e-9) {
		t.Fatalf("restitution = %v, want 0.2", b.Restitution())
	}
}

func TestLineRejectsZeroLength(t *testing.T) {
	_, err := Line(0, 0, 0, 0, 1, false)
	if err == nil {
		t.Fatal("expected error for zero-length line")
	}
}

func TestLineLength(t *testing.T) {
	b, err := Line(0, 0, 10, 0, 1, false)
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	bnds := b.Bounds()
	if !almostEqual(bnds.Width(), 10, 1e-6) {
		t.Fatalf("bounds width = %v, want 10", bnds.Width())
	}
}

func TestCircleVertexCount(t *testing.T) {
	b, err := Circle(0, 0, 5)
	if err != nil {
		t.Fatalf("Circle: %v", err)
	}
	if len(b.Vertices()) != circleSides {
		t.Fatalf("vertex count = %d, want %d", len(b.Vertices()), circleSides)
	}
}

func TestCircleApproximatesRadius(t *testing.T) {
	b, err := Circle(0, 0, 5)
	if err != nil {
		t.Fatalf("Circle: %v", err)
	}
	for _, v := range b.Vertices() {
		if !almostEqual(v.Magnitude(), 5, 1e-9) {
			t.Fatalf("vertex %v not at radius 5", v)
		}
	}
}

func TestCageProducesFourWalls(t *testing.T) {
	walls, err := Cage(0, 0, 100, 80, 5)
	if err != nil {
		t.Fatalf("Cage: %v", err)
	}
	if len(walls) != 4 {
		t.Fatalf("len(walls) = %d, want 4", len(walls))
	}
	for _, w := range walls {
		if !w.IsStatic() {
			t.Fatal("expected all cage walls to be static")
		}
	}
}

func TestStackBuildsGrid(t *testing.T) {
	bodies, err := Stack(0, 0, 3, 2, func(x, y float64, col, row int) (*body.Body, error) {
		return Rect(x, y, 5, 5)
	})
	if err != nil {
		t.Fatalf("Stack: %v", err)
	}
	if len(bodies) != 6 {
		t.Fatalf("len(bodies) = %d, want 6", len(bodies))
	}

	for i, b := range bodies {
		col, row := i%3, i/3
		wantX := float64(col)*5 + 2.5
		wantY := -float64(row)*5 - 2.5
		if !almostEqual(b.Position().X, wantX, 1e-9) || !almostEqual(b.Position().Y, wantY, 1e-9) {
			t.Fatalf("body %d position = %v, want (%v, %v)", i, b.Position(), wantX, wantY)
		}
	}
}

func TestStackPropagatesCreateError(t *testing.T) {
	_, err := Stack(0, 0, 1, 1, func(x, y float64, col, row int) (*body.Body, error) {
		return nil, errBoom
	})
	if err == nil {
		t.Fatal("expected Stack to propagate create error")
	}
}

var errBoom = testError("boom")

type testError string

func (e testError) Error() string { return string(e) }
