// Package body implements the stateful rigid body: world-space polygon
// geometry, mass/inertia properties derived from that geometry, Verlet-style
// position state, sleep bookkeeping, and the per-tick integrator.
//
// A Body's vertices, bounds, axes, area, mass and inertia are always kept
// mutually consistent: any setter that changes geometry recomputes every
// dependent. Callers outside this package should never mutate the slices
// returned by Vertices()/Axes() in place; treat them as read-only snapshots.
package body

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/0x5844/physics2d/bounds"
	"github.com/0x5844/physics2d/vector"
	"github.com/0x5844/physics2d/vertices"
)

const (
	// DefaultDensity matches the factories' default body density.
	DefaultDensity = 0.001
	// DefaultSlop is the default allowed positional tolerance.
	DefaultSlop = 0.05
	// DefaultRestitution is the default bounciness.
	DefaultRestitution = 0.5
	// DefaultFriction is the default Coulomb friction coefficient.
	DefaultFriction = 0.1
	// DefaultFrictionAir is the default per-step linear velocity damping.
	DefaultFrictionAir = 0.01

	minArea = 1e-9
)

var nextID uint64

// Options configures a new Body. Vertices is required and must describe a
// convex, non-degenerate polygon of at least 3 points, given relative to the
// body's intended center (Position) — New translates them into world space.
type Options struct {
	Vertices []vector.Vector

	Position         vector.Vector
	PreviousPosition *vector.Vector // defaults to Position (or Position-Velocity if Velocity set)
	Velocity         *vector.Vector // convenience: sets PreviousPosition = Position - Velocity

	Angle           float64
	PreviousAngle   *float64
	AngularVelocity *float64 // convenience: sets PreviousAngle = Angle - AngularVelocity

	Force  vector.Vector
	Torque float64

	// Density, Slop, Restitution, Friction, FrictionAir are pointers so a
	// caller can explicitly request the zero value (e.g. Restitution=0,
	// Friction=0 for an inelastic, frictionless body) without it being
	// confused for "unset". nil means "use the package default".
	Density     *float64 // default DefaultDensity; ignored if Mass is set
	IsStatic    bool
	Slop        *float64 // default DefaultSlop
	Restitution *float64 // default DefaultRestitution
	Friction    *float64 // default DefaultFriction
	FrictionAir *float64 // default DefaultFrictionAir

	// Overrides for derived properties; nil means "compute from geometry".
	Area    *float64
	Mass    *float64
	Inertia *float64
	Bounds  *bounds.Bounds
}

// Body is a stateful convex-polygon rigid body.
type Body struct {
	vertices []vector.Vector
	position vector.Vector
	previousPosition vector.Vector
	angle, previousAngle float64
	velocity         vector.Vector
	angularVelocity  float64
	force            vector.Vector
	torque           float64

	density, area, mass, invMass float64
	inertia, invInertia          float64

	bnds bounds.Bounds
	axes []vector.Vector

	isStatic, isSleeping bool
	slop, restitution, friction, frictionAir float64

	// private per-body solver/sleep state.
	positionImpulse vector.Vector
	totalContacts   int
	motion          float64
	sleepCounter    int

	id uint64

	onSleepEnter []func()
	onSleepExit  []func()
	onCollision  []func(contact interface{})
}

// New validates opts and returns a new Body, or an error if the vertex list
// is degenerate (fewer than 3 points or ~zero area). Degenerate input is
// treated as caller error per the package's documented contract: vertex
// lists must describe a convex, non-degenerate polygon.
func New(opts Options) (*Body, error) {
	if len(opts.Vertices) < 3 {
		return nil, fmt.Errorf("body: need at least 3 vertices, got %d", len(opts.Vertices))
	}

	relArea := vertices.Area(opts.Vertices)
	if relArea < minArea || math.IsNaN(relArea) {
		return nil, fmt.Errorf("body: degenerate polygon (area=%v)", relArea)
	}

	world := make([]vector.Vector, len(opts.Vertices))
	copy(world, opts.Vertices)
	vertices.TranslateInPlace(world, opts.Position)

	if opts.Angle != 0 {
		vertices.RotateInPlace(world, opts.Position, opts.Angle)
	}

	b := &Body{
		vertices:    world,
		position:    opts.Position,
		angle:       opts.Angle,
		force:       opts.Force,
		torque:      opts.Torque,
		density:     orDefaultPtr(opts.Density, DefaultDensity),
		slop:        orDefaultPtr(opts.Slop, DefaultSlop),
		restitution: orDefaultPtr(opts.Restitution, DefaultRestitution),
		friction:    orDefaultPtr(opts.Friction, DefaultFriction),
		frictionAir: orDefaultPtr(opts.FrictionAir, DefaultFrictionAir),
		isStatic:    opts.IsStatic,
		id:          atomic.AddUint64(&nextID, 1),
	}

	switch {
	case opts.PreviousPosition != nil:
		b.previousPosition = *opts.PreviousPosition
	case opts.Velocity != nil:
		b.previousPosition = b.position.Sub(*opts.Velocity)
	default:
		b.previousPosition = b.position
	}
	b.velocity = b.position.Sub(b.previousPosition)

	switch {
	case opts.PreviousAngle != nil:
		b.previousAngle = *opts.PreviousAngle
	case opts.AngularVelocity != nil:
		b.previousAngle = b.angle - *opts.AngularVelocity
	default:
		b.previousAngle = b.angle
	}
	b.angularVelocity = b.angle - b.previousAngle

	b.recomputeGeometry(opts.Area, opts.Mass, opts.Inertia, opts.Bounds)

	return b, nil
}

func orDefaultPtr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// F returns a pointer to v, for populating the pointer-typed fields of
// Options inline (e.g. body.Options{Restitution: body.F(0)}).
func F(v float64) *float64 { return &v }

// Option mutates an Options struct in place. Package factory's builders take
// a variadic list of Options so callers can override one or two fields
// (e.g. density, restitution) without repeating a whole Options literal.
type Option func(*Options)

// WithDensity overrides a body's density.
func WithDensity(d float64) Option { return func(o *Options) { o.Density = F(d) } }

// WithStatic marks a body static.
func WithStatic(static bool) Option { return func(o *Options) { o.IsStatic = static } }

// WithRestitution overrides a body's restitution.
func WithRestitution(r float64) Option { return func(o *Options) { o.Restitution = F(r) } }

// WithFriction overrides a body's friction.
func WithFriction(f float64) Option { return func(o *Options) { o.Friction = F(f) } }

// WithAngle sets a body's initial angle.
func WithAngle(a float64) Option { return func(o *Options) { o.Angle = a } }

// WithVelocity sets a body's initial velocity (via previousPosition).
func WithVelocity(v vector.Vector) Option { return func(o *Options) { o.Velocity = &v } }

// recomputeGeometry recomputes area/mass/bounds/axes/inertia (and their
// inverses) from b.vertices, honoring any non-nil override.
func (b *Body) recomputeGeometry(areaOverride, massOverride, inertiaOverride *float64, boundsOverride *bounds.Bounds) {
	if areaOverride != nil {
		b.area = *areaOverride
	} else {
		b.area = vertices.Area(b.vertices)
	}

	if b.isStatic {
		b.mass = math.Inf(1)
		b.invMass = 0
	} else if massOverride != nil {
		b.mass = *massOverride
		b.invMass = 1.0 / b.mass
	} else {
		b.mass = b.density * b.area
		b.invMass = 1.0 / b.mass
	}

	if b.isStatic {
		b.inertia = math.Inf(1)
		b.invInertia = 0
	} else if inertiaOverride != nil {
		b.inertia = *inertiaOverride
		b.invInertia = 1.0 / b.inertia
	} else {
		b.inertia = vertices.Inertia(b.vertices, b.mass)
		b.invInertia = 1.0 / b.inertia
	}

	if boundsOverride != nil {
		b.bnds = *boundsOverride
	} else {
		b.bnds = bounds.FromVertices(b.vertices)
	}

	b.axes = computeAxes(b.vertices)
}

// computeAxes returns the deduplicated set of outward-facing unit normals of
// verts' edges, one per unique Direction() value (collinear/parallel edges
// collapse to a single axis).
func computeAxes(verts []vector.Vector) []vector.Vector {
	n := len(verts)
	seen := make(map[float64]bool, n)
	axes := make([]vector.Vector, 0, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		edge := verts[j].Sub(verts[i])
		normal := edge.Perp().Normalize()
		dir := normal.Direction()
		if seen[dir] {
			continue
		}
		seen[dir] = true
		axes = append(axes, normal)
	}
	return axes
}

// ID returns a stable identity for this body, used by the broad phase for
// canonical pair ordering.
func (b *Body) ID() uint64 { return b.id }

// Vertices returns the current world-space vertex list. Treat as read-only.
func (b *Body) Vertices() []vector.Vector { return b.vertices }

// Axes returns the deduplicated face-normal axes. Treat as read-only.
func (b *Body) Axes() []vector.Vector { return b.axes }

// Position returns the body's reference point.
func (b *Body) Position() vector.Vector { return b.position }

// PreviousPosition returns the position at the end of the previous tick.
func (b *Body) PreviousPosition() vector.Vector { return b.previousPosition }

// Angle returns the body's current orientation in radians.
func (b *Body) Angle() float64 { return b.angle }

// PreviousAngle returns the orientation at the end of the previous tick.
func (b *Body) PreviousAngle() float64 { return b.previousAngle }

// Velocity returns the cached per-step linear velocity.
func (b *Body) Velocity() vector.Vector { return b.velocity }

// AngularVelocity returns the cached per-step angular velocity.
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

// Force returns the currently accumulated external force.
func (b *Body) Force() vector.Vector { return b.force }

// Torque returns the currently accumulated external torque.
func (b *Body) Torque() float64 { return b.torque }

// Bounds returns the AABB tightly enclosing the current vertices.
func (b *Body) Bounds() bounds.Bounds { return b.bnds }

// Mass returns the body's mass (+Inf if static).
func (b *Body) Mass() float64 { return b.mass }

// InvMass returns the body's inverse mass (0 if static).
func (b *Body) InvMass() float64 { return b.invMass }

// Inertia returns the body's moment of inertia (+Inf if static).
func (b *Body) Inertia() float64 { return b.inertia }

// InvInertia returns the body's inverse moment of inertia (0 if static).
func (b *Body) InvInertia() float64 { return b.invInertia }

// Area returns the body's polygon area.
func (b *Body) Area() float64 { return b.area }

// Density returns the body's material density.
func (b *Body) Density() float64 { return b.density }

// Slop returns the body's positional tolerance.
func (b *Body) Slop() float64 { return b.slop }

// Restitution returns the body's bounciness coefficient.
func (b *Body) Restitution() float64 { return b.restitution }

// Friction returns the body's Coulomb friction coefficient.
func (b *Body) Friction() float64 { return b.friction }

// FrictionAir returns the body's per-step linear velocity damping.
func (b *Body) FrictionAir() float64 { return b.frictionAir }

// IsStatic reports whether the body never integrates.
func (b *Body) IsStatic() bool { return b.isStatic }

// IsSleeping reports whether the body is currently sleeping.
func (b *Body) IsSleeping() bool { return b.isSleeping }

// ShouldUpdate reports whether the body participates in integration and
// broad-phase pair formation: true iff the body is neither static nor
// sleeping.
func (b *Body) ShouldUpdate() bool { return !b.isStatic && !b.isSleeping }

// PositionImpulse returns the accumulated position-solver impulse for the
// current tick.
func (b *Body) PositionImpulse() vector.Vector { return b.positionImpulse }

// SetPositionImpulse sets the accumulated position-solver impulse.
func (b *Body) SetPositionImpulse(v vector.Vector) { b.positionImpulse = v }

// TotalContacts returns the number of contact points accumulated against
// this body during the current tick's position-solver preparation.
func (b *Body) TotalContacts() int { return b.totalContacts }

// AddTotalContacts increments the contact counter by n.
func (b *Body) AddTotalContacts(n int) { b.totalContacts += n }

// ResetSolverState zeroes the per-tick solver bookkeeping. Called by the
// engine at the end of position solving.
func (b *Body) ResetSolverState() {
	b.positionImpulse = vector.Vector{}
	b.totalContacts = 0
}

// SetPreviousPosition overwrites previousPosition directly. Used by the
// velocity solver to apply an impulse: since velocity is always derived as
// position-previousPosition, nudging previousPosition is the Verlet
// equivalent of changing velocity without touching position itself.
func (b *Body) SetPreviousPosition(p vector.Vector) { b.previousPosition = p }

// SetPreviousAngle overwrites previousAngle directly, the angular analogue
// of SetPreviousPosition.
func (b *Body) SetPreviousAngle(a float64) { b.previousAngle = a }

// SetVertices replaces the body's world-space vertex list and recomputes
// every dependent (area, mass, inertia, bounds, axes) unless overridden.
func (b *Body) SetVertices(verts []vector.Vector) error {
	if len(verts) < 3 {
		return fmt.Errorf("body: need at least 3 vertices, got %d", len(verts))
	}
	a := vertices.Area(verts)
	if a < minArea || math.IsNaN(a) {
		return fmt.Errorf("body: degenerate polygon (area=%v)", a)
	}
	b.vertices = verts
	b.recomputeGeometry(nil, nil, nil, nil)
	return nil
}

// SetPosition moves the body to newPosition, translating vertices and bounds
// by the delta and shifting previousPosition by the same delta so that
// velocity (position - previousPosition) is preserved.
func (b *Body) SetPosition(newPosition vector.Vector) {
	delta := newPosition.Sub(b.position)
	vertices.TranslateInPlace(b.vertices, delta)
	b.bnds = b.bnds.Translate(delta)
	b.position = newPosition
	b.previousPosition = b.previousPosition.Add(delta)
}

// SetAngle rotates the body to newAngle about its position, recomputing
// bounds and axes, and shifts previousAngle by the same delta so that
// angular velocity is preserved.
func (b *Body) SetAngle(newAngle float64) {
	delta := newAngle - b.angle
	if delta != 0 {
		vertices.RotateInPlace(b.vertices, b.position, delta)
		b.axes = rotateAxes(b.axes, delta)
		b.bnds = bounds.FromVertices(b.vertices)
	}
	b.angle = newAngle
	b.previousAngle += delta
}

func rotateAxes(axes []vector.Vector, delta float64) []vector.Vector {
	out := make([]vector.Vector, len(axes))
	for i, a := range axes {
		out[i] = a.Rotate(delta)
	}
	return out
}

// SetDensity sets the body's density and recomputes mass/inertia (no-op on
// static bodies, whose mass/inertia stay infinite).
func (b *Body) SetDensity(density float64) {
	b.density = density
	if b.isStatic {
		return
	}
	b.mass = b.density * b.area
	b.invMass = 1.0 / b.mass
	b.inertia = vertices.Inertia(b.vertices, b.mass)
	b.invInertia = 1.0 / b.inertia
}

// SetIsStatic toggles the body's static flag. Setting true forces infinite
// mass/inertia; setting false recomputes mass/inertia from density and area.
func (b *Body) SetIsStatic(static bool) {
	b.isStatic = static
	if static {
		b.mass = math.Inf(1)
		b.invMass = 0
		b.inertia = math.Inf(1)
		b.invInertia = 0
		return
	}
	b.mass = b.density * b.area
	b.invMass = 1.0 / b.mass
	b.inertia = vertices.Inertia(b.vertices, b.mass)
	b.invInertia = 1.0 / b.inertia
}

// ApplyForce adds to the body's accumulated force for the current tick.
// No-op on static bodies. A sleeping body keeps the force, and the next
// UpdateSleep wakes it because the force is nonzero.
func (b *Body) ApplyForce(f vector.Vector) {
	if b.isStatic {
		return
	}
	b.force = b.force.Add(f)
}

// ApplyTorque adds to the body's accumulated torque for the current tick.
func (b *Body) ApplyTorque(t float64) {
	if b.isStatic {
		return
	}
	b.torque += t
}

// ResetForces zeroes force and torque. Called by the engine at the end of
// every tick.
func (b *Body) ResetForces() {
	b.force = vector.Vector{}
	b.torque = 0
}

// Integrate advances the body by one Time-Corrected Verlet step, per the
// the integrator: velocity and angular velocity are rederived from the
// previous step's displacement, damped by frictionAir, scaled by the
// variable-step correction factors delta/lastDelta and
// 0.5*delta*(delta+lastDelta), then applied to position/angle. Vertices,
// axes and bounds are updated to match. No-op unless ShouldUpdate().
func (b *Body) Integrate(delta, lastDelta float64) {
	if !b.ShouldUpdate() {
		return
	}

	prevV := b.position.Sub(b.previousPosition)
	prevAngularV := b.angle - b.previousAngle

	c1 := delta / lastDelta
	c2 := 0.5 * delta * (delta + lastDelta)
	airDamp := 1 - b.frictionAir

	b.velocity = vector.New(
		prevV.X*airDamp*c1+(b.force.X/b.mass)*c2,
		prevV.Y*airDamp*c1+(b.force.Y/b.mass)*c2,
	)
	b.angularVelocity = prevAngularV*airDamp*c1 + (b.torque/b.inertia)*c2

	b.previousAngle = b.angle
	b.angle += b.angularVelocity

	b.previousPosition = b.position
	b.position = b.position.Add(b.velocity)

	vertices.TranslateInPlace(b.vertices, b.velocity)
	if b.angularVelocity != 0 {
		vertices.RotateInPlace(b.vertices, b.position, b.angularVelocity)
		b.axes = rotateAxes(b.axes, b.angularVelocity)
		b.bnds = bounds.FromVertices(b.vertices)
	} else {
		b.bnds = b.bnds.Translate(b.velocity)
	}
}

// Sleep tuning constants (scale-sensitive: position units
// pixels, time units milliseconds).
const (
	maxForSleep    = 0.04
	minForWakeup   = 0.09
	sleepCounterMax = 60
)

// UpdateSleep runs one tick of the sleep-management state machine. It must
// be called before Integrate so that a nonzero
// force/torque set by a preUpdate listener wakes the body in time to
// integrate this same tick.
func (b *Body) UpdateSleep() {
	if b.isStatic {
		return
	}
	if b.force != (vector.Vector{}) || b.torque != 0 {
		b.WakeUp()
		return
	}
	if b.isSleeping {
		return
	}

	m := b.velocity.MagnitudeSquared() + b.angularVelocity*b.angularVelocity
	prevMotion := b.motion
	minM, maxM := prevMotion, m
	if m < prevMotion {
		minM, maxM = m, prevMotion
	}
	b.motion = 0.9*minM + 0.1*maxM

	if b.motion < maxForSleep {
		b.sleepCounter++
		if b.sleepCounter > sleepCounterMax {
			b.sleepCounter = sleepCounterMax
		}
		if b.sleepCounter >= sleepCounterMax {
			b.sleep()
		}
	} else if b.sleepCounter > 0 {
		b.sleepCounter--
	}
}

// Motion returns the smoothed motion metric used by the sleep heuristic.
func (b *Body) Motion() float64 { return b.motion }

// WakeUpIfMovingPastThreshold wakes b if it is sleeping and other's squared
// motion exceeds minForWakeup.
// otherMotionSquared is |v|^2 + w^2 for the awake body in the contacting
// pair. Reports whether a wake occurred.
func (b *Body) WakeUpIfMovingPastThreshold(otherMotionSquared float64) bool {
	if !b.isSleeping {
		return false
	}
	if otherMotionSquared <= minForWakeup {
		return false
	}
	b.WakeUp()
	return true
}

func (b *Body) sleep() {
	b.isSleeping = true
	b.velocity = vector.Vector{}
	b.angularVelocity = 0
	b.previousPosition = b.position
	b.previousAngle = b.angle
	for _, fn := range b.onSleepEnter {
		fn()
	}
}

// WakeUp clears the sleeping flag and resets sleep bookkeeping. No-op on
// static bodies (which are never asleep in the first place).
func (b *Body) WakeUp() {
	if b.isStatic {
		return
	}
	wasSleeping := b.isSleeping
	b.isSleeping = false
	b.sleepCounter = 0
	if wasSleeping {
		for _, fn := range b.onSleepExit {
			fn()
		}
	}
}

// OnSleepEnter registers a listener invoked synchronously when the body
// transitions to sleeping.
func (b *Body) OnSleepEnter(fn func()) { b.onSleepEnter = append(b.onSleepEnter, fn) }

// OnSleepExit registers a listener invoked synchronously when the body
// wakes from sleep.
func (b *Body) OnSleepExit(fn func()) { b.onSleepExit = append(b.onSleepExit, fn) }

// OnCollision registers a listener invoked synchronously for every contact
// this body participates in. The payload is a *collision.Contact, typed as
// interface{} here to avoid an import cycle between body and collision.
func (b *Body) OnCollision(fn func(contact interface{})) { b.onCollision = append(b.onCollision, fn) }

// EmitCollision invokes every registered collision listener with contact.
// Called by the engine, not by package body itself.
func (b *Body) EmitCollision(contact interface{}) {
	for _, fn := range b.onCollision {
		fn(contact)
	}
}
