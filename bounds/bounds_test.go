package bounds

import (
	"testing"

	"github.com/0x5844/physics2d/vector"
)

func box(minX, minY, maxX, maxY float64) Bounds {
	return Bounds{Min: vector.New(minX, minY), Max: vector.New(maxX, maxY)}
}

func TestFromVertices(t *testing.T) {
	verts := []vector.Vector{
		vector.New(0, 0), vector.New(10, 0), vector.New(10, 5), vector.New(0, 5),
	}
	b := FromVertices(verts)
	if b != box(0, 0, 10, 5) {
		t.Fatalf("FromVertices = %v, want {0 0 10 5}", b)
	}
}

func TestTranslate(t *testing.T) {
	b := box(0, 0, 10, 10)
	got := b.Translate(vector.New(5, -5))
	if got != box(5, -5, 15, 5) {
		t.Fatalf("Translate = %v", got)
	}
}

func TestOverlap(t *testing.T) {
	a := box(0, 0, 10, 10)
	cases := []struct {
		name string
		b    Bounds
		want bool
	}{
		{"identical", a, true},
		{"touching edge", box(10, 0, 20, 10), true},
		{"disjoint right", box(11, 0, 20, 10), false},
		{"disjoint above", box(0, 11, 10, 20), false},
		{"contained", box(2, 2, 4, 4), true},
	}
	for _, c := range cases {
		if got := Overlap(a, c.b); got != c.want {
			t.Errorf("%s: Overlap = %v, want %v", c.name, got, c.want)
		}
		// symmetry
		if got := Overlap(c.b, a); got != c.want {
			t.Errorf("%s: Overlap (swapped) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestContains(t *testing.T) {
	a := box(0, 0, 10, 10)
	if !a.Contains(vector.New(5, 5)) {
		t.Fatal("expected contains center")
	}
	if !a.Contains(vector.New(0, 0)) {
		t.Fatal("expected contains corner (inclusive)")
	}
	if a.Contains(vector.New(-1, 5)) {
		t.Fatal("expected not contains outside point")
	}
}
