// Package vertices implements convex-polygon geometry operating directly on
// []vector.Vector slices: signed/unsigned area, centroid, moment of inertia
// about the centroid, point containment (PNPOLY), and in-place rotation.
package vertices

import (
	"math"

	"github.com/0x5844/physics2d/vector"
)

// SignedArea returns the polygon's signed area (shoelace formula). Positive
// for counter-clockwise winding, negative for clockwise.
func SignedArea(verts []vector.Vector) float64 {
	n := len(verts)
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i - 1 + n) % n
		sum += (verts[j].X - verts[i].X) * (verts[j].Y + verts[i].Y)
	}
	return sum * 0.5
}

// Area returns the polygon's unsigned area.
func Area(verts []vector.Vector) float64 {
	return math.Abs(SignedArea(verts))
}

// Centroid returns the polygon's centroid, using the standard
// signed-area-weighted formula.
func Centroid(verts []vector.Vector) vector.Vector {
	n := len(verts)
	area := SignedArea(verts)
	if area == 0 {
		// Degenerate polygon: fall back to the vertex average rather than
		// dividing by zero. Callers are expected to reject zero-area
		// polygons at construction (treated as caller error); this
		// keeps Centroid total even when called directly in isolation.
		var sum vector.Vector
		for _, v := range verts {
			sum = sum.Add(v)
		}
		return sum.Scale(1.0 / float64(n))
	}

	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := verts[i].X*verts[j].Y - verts[j].X*verts[i].Y
		cx += (verts[i].X + verts[j].X) * cross
		cy += (verts[i].Y + verts[j].Y) * cross
	}
	factor := 1.0 / (6.0 * area)
	return vector.New(cx*factor, cy*factor)
}

// Inertia returns the moment of inertia of a polygon of mass m about its own
// centroid. This function translates verts internally using Centroid so
// the centroid is at the origin, so callers may pass world-space vertices
// directly.
func Inertia(verts []vector.Vector, mass float64) float64 {
	c := Centroid(verts)
	n := len(verts)

	var numerator, denominator float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		vi := verts[i].Sub(c)
		vj := verts[j].Sub(c)
		cross := math.Abs(vj.Cross(vi))
		numerator += cross * (vj.Dot(vj) + vj.Dot(vi) + vi.Dot(vi))
		denominator += cross
	}
	if denominator == 0 {
		return 0
	}
	return (mass / 6.0) * (numerator / denominator)
}

// Contains reports whether point lies inside the polygon verts using a
// ray-casting parity test (PNPOLY). Points exactly on an edge may report
// either true or false depending on floating-point rounding, matching the
// classic PNPOLY caveat.
func Contains(verts []vector.Vector, point vector.Vector) bool {
	n := len(verts)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		intersects := (vi.Y > point.Y) != (vj.Y > point.Y)
		if intersects {
			xCross := (vj.X-vi.X)*(point.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if point.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// RotateInPlace rotates every vertex of verts by angle radians about pivot,
// mutating the slice in place.
func RotateInPlace(verts []vector.Vector, pivot vector.Vector, angle float64) {
	for i := range verts {
		verts[i] = verts[i].RotateAbout(pivot, angle)
	}
}

// TranslateInPlace shifts every vertex of verts by delta, mutating the slice
// in place.
func TranslateInPlace(verts []vector.Vector, delta vector.Vector) {
	for i := range verts {
		verts[i] = verts[i].Add(delta)
	}
}
