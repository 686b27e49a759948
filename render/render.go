// Package render implements a minimal ASCII wireframe debug view of a
// simulation: every body's polygon edges, plus contact points from the
// engine's per-tick contact list.
// renderer style (opd-ai-go-netrek's TerminalRenderer: a rune buffer, a
// world-to-screen transform, Clear/Draw), adapted from sprite glyphs to
// polygon wireframes.
package render

import (
	"strings"

	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/collision"
	"github.com/0x5844/physics2d/vector"
)

// Terminal is a fixed-size rune-buffer wireframe renderer.
type Terminal struct {
	width, height int
	buffer        [][]rune
	scale         float64
	center        vector.Vector
}

// NewTerminal returns a Terminal of the given cell dimensions, scale world
// units per cell.
func NewTerminal(width, height int, scale float64) *Terminal {
	buf := make([][]rune, height)
	for i := range buf {
		buf[i] = make([]rune, width)
	}
	t := &Terminal{width: width, height: height, buffer: buf, scale: scale}
	t.Clear()
	return t
}

// SetCenter recenters the view on a world-space point.
func (t *Terminal) SetCenter(c vector.Vector) { t.center = c }

// Clear blanks the buffer.
func (t *Terminal) Clear() {
	for y := range t.buffer {
		for x := range t.buffer[y] {
			t.buffer[y][x] = ' '
		}
	}
}

func (t *Terminal) worldToScreen(p vector.Vector) (int, int) {
	sx := int((p.X-t.center.X)/t.scale + float64(t.width)/2)
	sy := int((p.Y-t.center.Y)/t.scale + float64(t.height)/2)
	return sx, sy
}

func (t *Terminal) set(x, y int, r rune) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	t.buffer[y][x] = r
}

// DrawBody draws b's polygon edges into the buffer with glyph r.
func (t *Terminal) DrawBody(b *body.Body, r rune) {
	verts := b.Vertices()
	n := len(verts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		t.drawLine(verts[i], verts[j], r)
	}
}

// DrawContacts marks every contact point of every contact with glyph r.
func (t *Terminal) DrawContacts(contacts []collision.Contact, r rune) {
	for _, c := range contacts {
		for _, p := range c.Points {
			x, y := t.worldToScreen(p.Vertex)
			t.set(x, y, r)
		}
	}
}

// drawLine rasterizes a world-space segment using Bresenham's algorithm.
func (t *Terminal) drawLine(a, b vector.Vector, r rune) {
	x0, y0 := t.worldToScreen(a)
	x1, y1 := t.worldToScreen(b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		t.set(x0, y0, r)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// String renders the buffer as newline-joined rows.
func (t *Terminal) String() string {
	var b strings.Builder
	for _, row := range t.buffer {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
