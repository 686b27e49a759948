package body

import (
	"math"
	"testing"

	"github.com/0x5844/physics2d/vector"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func rectVerts(w, h float64) []vector.Vector {
	hw, hh := w/2, h/2
	return []vector.Vector{
		vector.New(-hw, -hh), vector.New(hw, -hh), vector.New(hw, hh), vector.New(-hw, hh),
	}
}

func newRect(t *testing.T, w, h float64, opts Options) *Body {
	t.Helper()
	opts.Vertices = rectVerts(w, h)
	b, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewRejectsDegenerate(t *testing.T) {
	_, err := New(Options{Vertices: []vector.Vector{vector.New(0, 0), vector.New(1, 0)}})
	if err == nil {
		t.Fatal("expected error for <3 vertices")
	}
	_, err = New(Options{Vertices: []vector.Vector{vector.New(0, 0), vector.New(1, 0), vector.New(2, 0)}})
	if err == nil {
		t.Fatal("expected error for zero-area (collinear) polygon")
	}
}

func TestMassInverseNonStatic(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0)})
	if got := b.Mass() * b.InvMass(); !almostEqual(got, 1, 1e-12) {
		t.Fatalf("mass*invMass = %v, want 1", got)
	}
}

func TestMassInverseStatic(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0), IsStatic: true})
	if b.InvMass() != 0 {
		t.Fatalf("invMass of static body = %v, want 0", b.InvMass())
	}
	if b.InvInertia() != 0 {
		t.Fatalf("invInertia of static body = %v, want 0", b.InvInertia())
	}
	if !math.IsInf(b.Mass(), 1) {
		t.Fatalf("mass of static body = %v, want +Inf", b.Mass())
	}
}

func TestAxisUniqueness(t *testing.T) {
	b := newRect(t, 10, 4, Options{Position: vector.New(0, 0)})
	seen := map[float64]bool{}
	for _, a := range b.Axes() {
		d := a.Direction()
		if seen[d] {
			t.Fatalf("duplicate axis direction %v", d)
		}
		seen[d] = true
	}
	if len(b.Axes()) != 2 {
		t.Fatalf("rectangle should dedup to 2 axes, got %d", len(b.Axes()))
	}
}

func TestAABBTightness(t *testing.T) {
	b := newRect(t, 10, 4, Options{Position: vector.New(5, 5)})
	got := b.Bounds()
	if !almostEqual(got.Min.X, 0, 1e-9) || !almostEqual(got.Max.X, 10, 1e-9) {
		t.Fatalf("bounds X = [%v, %v], want [0, 10]", got.Min.X, got.Max.X)
	}
}

func TestStaticRigidityAcrossIntegration(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0), IsStatic: true})
	wantPos := b.Position()
	wantVerts := append([]vector.Vector(nil), b.Vertices()...)

	b.ApplyForce(vector.New(100, 100))
	for i := 0; i < 10; i++ {
		b.Integrate(16.666, 16.666)
	}

	if b.Position() != wantPos {
		t.Fatalf("static body moved: %v -> %v", wantPos, b.Position())
	}
	for i, v := range b.Vertices() {
		if v != wantVerts[i] {
			t.Fatalf("static body vertex %d moved: %v -> %v", i, wantVerts[i], v)
		}
	}
}

func TestForceResetAfterIntegrate(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0)})
	b.ApplyForce(vector.New(1, 1))
	b.ApplyTorque(1)
	b.Integrate(16.666, 16.666)
	b.ResetForces()
	if b.Force() != (vector.Vector{}) {
		t.Fatalf("force after reset = %v, want zero", b.Force())
	}
	if b.Torque() != 0 {
		t.Fatalf("torque after reset = %v, want 0", b.Torque())
	}
}

func TestFreeFlightMomentum(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0)})
	b.ApplyForce(vector.New(2, 0))

	delta, lastDelta := 1.0, 1.0
	prevV := b.Position().Sub(b.PreviousPosition())
	airDamp := 1 - b.FrictionAir()
	wantDelta := prevV.Scale(airDamp).Add(b.Force().Scale(1.0 / b.Mass()).Scale(0.5 * delta * (delta + lastDelta)))

	startPos := b.Position()
	b.Integrate(delta, lastDelta)
	gotDelta := b.Position().Sub(startPos)

	if !almostEqual(gotDelta.X, wantDelta.X, 1e-9) || !almostEqual(gotDelta.Y, wantDelta.Y, 1e-9) {
		t.Fatalf("position delta = %v, want %v", gotDelta, wantDelta)
	}
}

func TestSetPositionPreservesVelocity(t *testing.T) {
	v := vector.New(3, -2)
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0), Velocity: &v})
	before := b.Velocity()

	b.SetPosition(b.Position().Add(vector.New(10, 0)))
	after := b.Position().Sub(b.PreviousPosition())

	if !almostEqual(after.X, before.X, 1e-9) || !almostEqual(after.Y, before.Y, 1e-9) {
		t.Fatalf("velocity changed after SetPosition: %v -> %v", before, after)
	}
}

func TestSleepConsistency(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0)})
	b.motion = 0 // already calm
	for i := 0; i < sleepCounterMax+1; i++ {
		b.UpdateSleep()
	}
	if !b.IsSleeping() {
		t.Fatal("expected body to be asleep after sustained low motion")
	}
	if b.Velocity() != (vector.Vector{}) {
		t.Fatalf("sleeping body velocity = %v, want zero", b.Velocity())
	}
	if b.AngularVelocity() != 0 {
		t.Fatalf("sleeping body angular velocity = %v, want 0", b.AngularVelocity())
	}
	if b.PreviousPosition() != b.Position() {
		t.Fatalf("sleeping body previousPosition %v != position %v", b.PreviousPosition(), b.Position())
	}
	if b.PreviousAngle() != b.Angle() {
		t.Fatalf("sleeping body previousAngle %v != angle %v", b.PreviousAngle(), b.Angle())
	}
}

func TestWakeUpOnForce(t *testing.T) {
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0)})
	b.motion = 0
	for i := 0; i < sleepCounterMax+1; i++ {
		b.UpdateSleep()
	}
	if !b.IsSleeping() {
		t.Fatal("setup: expected body asleep")
	}

	b.ApplyForce(vector.New(0, 0.01))
	b.UpdateSleep()
	if b.IsSleeping() {
		t.Fatal("expected body to wake after nonzero force")
	}
}

func TestSetAngleRotatesAndPreservesAngularVelocity(t *testing.T) {
	av := 0.1
	b := newRect(t, 10, 10, Options{Position: vector.New(0, 0), AngularVelocity: &av})
	beforeAV := b.Angle() - b.PreviousAngle()

	b.SetAngle(b.Angle() + math.Pi/4)
	afterAV := b.Angle() - b.PreviousAngle()

	if !almostEqual(beforeAV, afterAV, 1e-9) {
		t.Fatalf("angular velocity changed after SetAngle: %v -> %v", beforeAV, afterAV)
	}
}
