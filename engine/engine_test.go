package engine

import (
	"testing"

	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/collision"
	"github.com/0x5844/physics2d/vector"
)

func rect(t *testing.T, cx, cy, w, h float64, opts body.Options) *body.Body {
	t.Helper()
	hw, hh := w/2, h/2
	opts.Vertices = []vector.Vector{
		vector.New(-hw, -hh), vector.New(hw, -hh), vector.New(hw, hh), vector.New(-hw, hh),
	}
	opts.Position = vector.New(cx, cy)
	b, err := body.New(opts)
	if err != nil {
		t.Fatalf("body.New: %v", err)
	}
	return b
}

func TestNewUsesDefaultIterations(t *testing.T) {
	e := New(nil, Options{})
	if e.positionIterations != defaultPositionIterations {
		t.Fatalf("positionIterations = %d, want %d", e.positionIterations, defaultPositionIterations)
	}
	if e.velocityIterations != defaultVelocityIterations {
		t.Fatalf("velocityIterations = %d, want %d", e.velocityIterations, defaultVelocityIterations)
	}
}

func TestUpdateAppliesGravity(t *testing.T) {
	b := rect(t, 0, 0, 10, 10, body.Options{})
	e := New([]*body.Body{b}, Options{Gravity: vector.New(0, 1)})

	startY := b.Position().Y
	e.Update(DeltaFrom(1.0))

	if b.Position().Y <= startY {
		t.Fatalf("expected body to fall under gravity: start=%v after=%v", startY, b.Position().Y)
	}
}

func TestUpdateSkipsStaticBody(t *testing.T) {
	floor := rect(t, 0, 100, 200, 20, body.Options{IsStatic: true})
	e := New([]*body.Body{floor}, Options{Gravity: vector.New(0, 1)})

	before := floor.Position()
	e.Update(DeltaFrom(1.0))
	if floor.Position() != before {
		t.Fatalf("static body moved: %v -> %v", before, floor.Position())
	}
}

func TestUpdateReturnsContactsOnOverlap(t *testing.T) {
	a := rect(t, 0, 0, 10, 10, body.Options{})
	b := rect(t, 9, 0, 10, 10, body.Options{})
	e := New([]*body.Body{a, b}, Options{})

	contacts := e.Update(DeltaFrom(1.0))
	if len(contacts) == 0 {
		t.Fatal("expected at least one contact for overlapping bodies")
	}
}

func TestUpdateNoContactsWhenFarApart(t *testing.T) {
	a := rect(t, 0, 0, 10, 10, body.Options{})
	b := rect(t, 1000, 1000, 10, 10, body.Options{})
	e := New([]*body.Body{a, b}, Options{})

	contacts := e.Update(DeltaFrom(1.0))
	if len(contacts) != 0 {
		t.Fatalf("expected no contacts for far-apart bodies, got %d", len(contacts))
	}
}

func TestOnPreUpdateAndOnUpdateFire(t *testing.T) {
	b := rect(t, 0, 0, 10, 10, body.Options{})
	e := New([]*body.Body{b}, Options{})

	preFired, updateFired := false, false
	e.OnPreUpdate(func() { preFired = true })
	e.OnUpdate(func(contacts []collision.Contact) { updateFired = true })

	e.Update(DeltaFrom(1.0))
	if !preFired {
		t.Fatal("expected OnPreUpdate listener to fire")
	}
	if !updateFired {
		t.Fatal("expected OnUpdate listener to fire")
	}
}
