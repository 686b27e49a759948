// Package collision implements the narrow-phase Separating-Axis-Theorem
// test between two convex polygons and the iterative position/velocity
// solvers that turn overlapping contacts into corrective impulses.
package collision

import (
	"math"

	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/vector"
	"github.com/0x5844/physics2d/vertices"
)

// ContactPoint is a single contact vertex plus the impulse accumulated
// against it across this tick's velocity-solver iterations (warm-start-style
// resting stability).
type ContactPoint struct {
	Vertex         vector.Vector
	NormalImpulse  float64
	TangentImpulse float64
}

// Contact is the narrow-phase result for one body pair for one tick.
type Contact struct {
	BodyA, BodyB *body.Body

	Colliding         bool
	Normal, Tangent   vector.Vector
	Depth             float64
	PenetrationVector vector.Vector
	Points            []ContactPoint

	Slop, Restitution, Friction float64
	Separation                  float64
}

// Detect runs the SAT test between a and b. The returned Contact's Colliding
// field is false (with no further fields populated) when the bodies do not
// overlap on some axis.
func Detect(a, b *body.Body) Contact {
	bestOverlap := math.Inf(1)
	var bestAxis vector.Vector
	found := false

	for _, axis := range a.Axes() {
		overlap, ok := axisOverlap(a.Vertices(), b.Vertices(), axis)
		if !ok {
			return Contact{Colliding: false}
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			bestAxis = axis
			found = true
		}
	}
	for _, axis := range b.Axes() {
		overlap, ok := axisOverlap(a.Vertices(), b.Vertices(), axis)
		if !ok {
			return Contact{Colliding: false}
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			bestAxis = axis
			found = true
		}
	}
	if !found {
		return Contact{Colliding: false}
	}

	normal := bestAxis
	if normal.Dot(b.Position().Sub(a.Position())) > 0 {
		normal = normal.Neg()
	}
	tangent := normal.Perp()

	points := findContactPoints(a, b, normal)

	return Contact{
		BodyA:             a,
		BodyB:             b,
		Colliding:         true,
		Normal:            normal,
		Tangent:           tangent,
		Depth:             bestOverlap,
		PenetrationVector: normal.Scale(bestOverlap),
		Points:            points,
		Slop:              math.Max(a.Slop(), b.Slop()),
		Restitution:       math.Max(a.Restitution(), b.Restitution()),
		Friction:          math.Min(a.Friction(), b.Friction()),
	}
}

// axisOverlap projects both vertex sets onto axis and returns the overlap
// amount. ok is false when the projections do not overlap at all (a
// separating axis was found).
func axisOverlap(vertsA, vertsB []vector.Vector, axis vector.Vector) (overlap float64, ok bool) {
	minA, maxA := projectMinMax(vertsA, axis)
	minB, maxB := projectMinMax(vertsB, axis)

	o := math.Min(maxA, maxB) - math.Max(minA, minB)
	if o <= 0 {
		return 0, false
	}
	return o, true
}

func projectMinMax(verts []vector.Vector, axis vector.Vector) (min, max float64) {
	min = verts[0].Dot(axis)
	max = min
	for _, v := range verts[1:] {
		d := v.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// findContactPoints returns the contact vertices for a collision with the
// given normal (already oriented from b toward a): the two
// vertices of b closest to a's position along normal, kept only if they lie
// inside a's polygon; if fewer than two survive, the search is retried with
// roles swapped and the opposite normal, keeping whichever attempt yields
// more contained points.
func findContactPoints(a, b *body.Body, normal vector.Vector) []ContactPoint {
	attempt1 := nearestContainedVertices(b.Vertices(), a.Position(), normal, a.Vertices())
	if len(attempt1) >= 2 {
		return toContactPoints(attempt1)
	}
	attempt2 := nearestContainedVertices(a.Vertices(), b.Position(), normal.Neg(), b.Vertices())
	if len(attempt2) > len(attempt1) {
		return toContactPoints(attempt2)
	}
	return toContactPoints(attempt1)
}

// nearestContainedVertices finds the vertex of candidates nearest to
// refPosition along normal (normal points from the candidates' body toward
// refPosition), considers its two polygon neighbors and keeps
// the better one, then filters the (up to two) candidates to those
// contained in containerVerts.
func nearestContainedVertices(candidates []vector.Vector, refPosition, normal vector.Vector, containerVerts []vector.Vector) []vector.Vector {
	n := len(candidates)
	nearestIdx := 0
	nearestDist := -candidates[0].Sub(refPosition).Dot(normal)
	for i := 1; i < n; i++ {
		d := -candidates[i].Sub(refPosition).Dot(normal)
		if d < nearestDist {
			nearestDist = d
			nearestIdx = i
		}
	}

	prevIdx := (nearestIdx - 1 + n) % n
	nextIdx := (nearestIdx + 1) % n
	prevDist := -candidates[prevIdx].Sub(refPosition).Dot(normal)
	nextDist := -candidates[nextIdx].Sub(refPosition).Dot(normal)

	secondIdx := prevIdx
	if nextDist < prevDist {
		secondIdx = nextIdx
	}

	picked := []vector.Vector{candidates[nearestIdx], candidates[secondIdx]}

	kept := make([]vector.Vector, 0, 2)
	for _, p := range picked {
		if vertices.Contains(containerVerts, p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func toContactPoints(verts []vector.Vector) []ContactPoint {
	out := make([]ContactPoint, len(verts))
	for i, v := range verts {
		out[i] = ContactPoint{Vertex: v}
	}
	return out
}
