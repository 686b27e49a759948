// Package factory builds common body shapes (rectangles, lines, circles
// approximated as regular polygons) and arrangements (a four-walled cage, a
// grid stack), following the shape of common scene-building helpers
// (generateContainerScene, generatePyramidScene) but returning bodies
// directly instead of mutating an engine in place.
package factory

import (
	"fmt"
	"math"

	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/vector"
)

// circleSides is the vertex count used to approximate a circle as a convex
// polygon; true curved primitives are out of scope.
const circleSides = 20

func buildOptions(verts []vector.Vector, x, y float64, opts []body.Option) body.Options {
	o := body.Options{Vertices: verts, Position: vector.New(x, y)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Rect returns a w×h rectangle centered at (x, y).
func Rect(x, y, w, h float64, opts ...body.Option) (*body.Body, error) {
	hw, hh := w/2, h/2
	verts := []vector.Vector{
		vector.New(-hw, -hh), vector.New(hw, -hh), vector.New(hw, hh), vector.New(-hw, hh),
	}
	return body.New(buildOptions(verts, x, y, opts))
}

// Line returns a thin rectangle running from (x1, y1) to (x2, y2), width
// units wide. If flip is true, the rectangle is not rotated to the segment's
// angle: it is built axis-aligned, width wide along X and the segment's
// length tall along Y, so a horizontal segment becomes a vertical bar and a
// vertical segment stays vertical.
func Line(x1, y1, x2, y2, width float64, flip bool, opts ...body.Option) (*body.Body, error) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil, fmt.Errorf("factory: zero-length line")
	}
	angle := math.Atan2(dy, dx)
	cx, cy := (x1+x2)/2, (y1+y2)/2

	w, h := length, width
	if flip {
		w, h = h, w
	}
	hw, hh := w/2, h/2
	verts := []vector.Vector{
		vector.New(-hw, -hh), vector.New(hw, -hh), vector.New(hw, hh), vector.New(-hw, hh),
	}

	o := buildOptions(verts, cx, cy, opts)
	if !flip {
		o.Angle = angle
	}
	return body.New(o)
}

// Circle returns a regular circleSides-gon of radius r centered at (x, y),
// approximating a circle; true curves are out of scope.
func Circle(x, y, r float64, opts ...body.Option) (*body.Body, error) {
	verts := make([]vector.Vector, circleSides)
	for i := 0; i < circleSides; i++ {
		theta := 2 * math.Pi * float64(i) / float64(circleSides)
		verts[i] = vector.New(r*math.Cos(theta), r*math.Sin(theta))
	}
	return body.New(buildOptions(verts, x, y, opts))
}

// Cage returns four static walls (floor, ceiling, left, right) enclosing a
// w×h region centered at (x, y), each wallWidth thick, grounded in the
// a container-scene wall layout: floor/ceiling/left/right around a cavity.
func Cage(x, y, w, h, wallWidth float64, opts ...body.Option) ([]*body.Body, error) {
	withStatic := append([]body.Option{body.WithStatic(true)}, opts...)

	floor, err := Rect(x, y+h/2+wallWidth/2, w+wallWidth*2, wallWidth, withStatic...)
	if err != nil {
		return nil, fmt.Errorf("factory: cage floor: %w", err)
	}
	ceiling, err := Rect(x, y-h/2-wallWidth/2, w+wallWidth*2, wallWidth, withStatic...)
	if err != nil {
		return nil, fmt.Errorf("factory: cage ceiling: %w", err)
	}
	left, err := Rect(x-w/2-wallWidth/2, y, wallWidth, h, withStatic...)
	if err != nil {
		return nil, fmt.Errorf("factory: cage left wall: %w", err)
	}
	right, err := Rect(x+w/2+wallWidth/2, y, wallWidth, h, withStatic...)
	if err != nil {
		return nil, fmt.Errorf("factory: cage right wall: %w", err)
	}

	return []*body.Body{floor, ceiling, left, right}, nil
}

// Stack builds a cols×rows grid of bodies via create, one row at a time,
// growing upward from (x, y). create's own (x, y) result is only used to
// build the body's shape; Stack measures the body's own Bounds() afterward
// and repositions it, so column spacing tracks each cell's actual width and
// row spacing tracks that row's tallest cell — non-uniform cell sizes (a
// pyramid's narrowing levels, a stack of mixed-size boxes) stack flush with
// no caller-side offset math.
func Stack(x, y float64, cols, rows int, create func(x, y float64, col, row int) (*body.Body, error)) ([]*body.Body, error) {
	out := make([]*body.Body, 0, cols*rows)
	rowY := y
	for row := 0; row < rows; row++ {
		colX := x
		rowHeight := 0.0
		for col := 0; col < cols; col++ {
			b, err := create(colX, rowY, col, row)
			if err != nil {
				return nil, fmt.Errorf("factory: stack cell (%d,%d): %w", col, row, err)
			}
			bnds := b.Bounds()
			w, h := bnds.Width(), bnds.Height()
			b.SetPosition(vector.New(colX+w/2, rowY-h/2))

			colX += w
			if h > rowHeight {
				rowHeight = h
			}
			out = append(out, b)
		}
		rowY -= rowHeight
	}
	return out, nil
}
