// Package bounds implements axis-aligned bounding boxes (AABBs) used by the
// broad phase: construction from a vertex list, translation, and the overlap
// test that gates narrow-phase collision checks.
package bounds

import (
	"math"

	"github.com/0x5844/physics2d/vector"
)

// Bounds is an axis-aligned bounding box: Min.X <= Max.X and Min.Y <= Max.Y.
type Bounds struct {
	Min, Max vector.Vector
}

// FromVertices returns the tight AABB around verts. Panics if verts is empty;
// callers (body.Body) never pass an empty slice.
func FromVertices(verts []vector.Vector) Bounds {
	min := verts[0]
	max := verts[0]
	for _, v := range verts[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
	}
	return Bounds{Min: min, Max: max}
}

// Translate returns b shifted by delta.
func (b Bounds) Translate(delta vector.Vector) Bounds {
	return Bounds{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
}

// Overlap reports whether a and b intersect (touching counts as overlap).
// The symmetric test is the correct one here; an asymmetric
// apparent typo referencing an uppercase X in one revision's condition — the
// implemented behavior is always the symmetric AABB test below.
func Overlap(a, b Bounds) bool {
	return !(a.Max.X < b.Min.X || a.Min.X > b.Max.X || a.Max.Y < b.Min.Y || a.Min.Y > b.Max.Y)
}

// Contains reports whether point lies within b, inclusive of the boundary.
func (b Bounds) Contains(point vector.Vector) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X && point.Y >= b.Min.Y && point.Y <= b.Max.Y
}

// Width returns the extent of b along X.
func (b Bounds) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the extent of b along Y.
func (b Bounds) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Center returns the midpoint of b.
func (b Bounds) Center() vector.Vector {
	return vector.New((b.Min.X+b.Max.X)*0.5, (b.Min.Y+b.Max.Y)*0.5)
}

// IsValid reports whether the min/max invariant holds; used defensively in
// tests rather than at runtime (the package never constructs an inverted box).
func (b Bounds) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && !math.IsNaN(b.Min.X) && !math.IsNaN(b.Max.X)
}
