// Package engine orchestrates a fixed set of bodies through one tick:
// wake/sleep bookkeeping, gravity, Verlet integration, broad and narrow
// phase collision detection, the iterative position and velocity solvers,
// and synchronous pre/post-update event dispatch. Update is the only entry
// point that advances simulation time; everything else is read-only.
package engine

import (
	"github.com/0x5844/physics2d/body"
	"github.com/0x5844/physics2d/collision"
	"github.com/0x5844/physics2d/vector"
)

// Options configures an Engine. Zero-valued PositionIterations/
// VelocityIterations fall back to the package defaults (6 and 4).
type Options struct {
	PositionIterations, VelocityIterations int
	Gravity                                vector.Vector
	EnableSleeping                         bool
	CellSize                               float64 // 0 uses the default broad-phase bucket size
}

const (
	defaultPositionIterations = 6
	defaultVelocityIterations = 4
)

// Delta is one tick's time step, paired with the previous tick's step for
// the Time-Corrected Verlet correction factors.
type Delta struct {
	Delta, LastDelta float64
}

// DeltaFrom builds a Delta from a single step size, using it for both Delta
// and LastDelta — the common case of a bare fixed or variable timestep with
// no separate previous-step tracking at the call site.
func DeltaFrom(delta float64) Delta {
	return Delta{Delta: delta, LastDelta: delta}
}

// Engine owns a fixed body list and steps them forward one tick at a time.
type Engine struct {
	bodies []*body.Body
	grid   *spatialGrid

	positionIterations, velocityIterations int
	gravity                                vector.Vector
	enableSleeping                         bool

	onPreUpdate []func()
	onUpdate    []func([]collision.Contact)
}

// New constructs an Engine over bodies with the given options. The body
// slice is owned by the Engine from this point; callers should not mutate it
// directly.
func New(bodies []*body.Body, opts Options) *Engine {
	posIter := opts.PositionIterations
	if posIter <= 0 {
		posIter = defaultPositionIterations
	}
	velIter := opts.VelocityIterations
	if velIter <= 0 {
		velIter = defaultVelocityIterations
	}

	return &Engine{
		bodies:             bodies,
		grid:               newSpatialGrid(opts.CellSize),
		positionIterations: posIter,
		velocityIterations: velIter,
		gravity:            opts.Gravity,
		enableSleeping:     opts.EnableSleeping,
	}
}

// Bodies returns the engine's current body list. Treat as read-only.
func (e *Engine) Bodies() []*body.Body { return e.bodies }

// AddBody appends a body to the simulation.
func (e *Engine) AddBody(b *body.Body) { e.bodies = append(e.bodies, b) }

// OnPreUpdate registers a listener invoked synchronously at the start of
// every Update, before sleep bookkeeping and integration — the hook point
// for applying per-tick forces.
func (e *Engine) OnPreUpdate(fn func()) { e.onPreUpdate = append(e.onPreUpdate, fn) }

// OnUpdate registers a listener invoked synchronously at the end of every
// Update with the tick's full contact list.
func (e *Engine) OnUpdate(fn func([]collision.Contact)) { e.onUpdate = append(e.onUpdate, fn) }

// Update advances every body by one tick and returns the tick's contacts.
// The eleven-step order is fixed: preUpdate emit, sleep update, gravity,
// integrate, broad phase, narrow phase, sleep-wake from contacts, N
// iterations of position solving + apply, M iterations of velocity
// solving, per-body collision emit, force/torque reset, update emit.
func (e *Engine) Update(dt Delta) []collision.Contact {
	for _, fn := range e.onPreUpdate {
		fn()
	}

	if e.enableSleeping {
		for _, b := range e.bodies {
			b.UpdateSleep()
		}
	}

	for _, b := range e.bodies {
		if !b.ShouldUpdate() {
			continue
		}
		b.ApplyForce(e.gravity.Scale(b.Mass()))
	}

	for _, b := range e.bodies {
		b.Integrate(dt.Delta, dt.LastDelta)
	}

	e.grid.clear()
	for _, b := range e.bodies {
		e.grid.insert(b)
	}

	var contacts []collision.Contact
	for _, p := range e.grid.potentialPairs() {
		c := collision.Detect(p.a, p.b)
		if c.Colliding {
			contacts = append(contacts, c)
		}
	}

	if e.enableSleeping {
		for _, c := range contacts {
			wakeFromContact(c.BodyA, c.BodyB)
		}
	}

	contactPtrs := make([]*collision.Contact, len(contacts))
	for i := range contacts {
		contactPtrs[i] = &contacts[i]
	}

	collision.PrepareSolver(contactPtrs)
	for i := 0; i < e.positionIterations; i++ {
		collision.SolvePosition(contactPtrs)
	}
	collision.PostSolvePosition(e.bodies)

	for i := 0; i < e.velocityIterations; i++ {
		collision.SolveVelocity(contactPtrs)
	}

	for _, c := range contactPtrs {
		c.BodyA.EmitCollision(c)
		c.BodyB.EmitCollision(c)
	}

	for _, b := range e.bodies {
		b.ResetForces()
	}

	for _, fn := range e.onUpdate {
		fn(contacts)
	}

	return contacts
}

// wakeFromContact propagates wakefulness from whichever body in a contact is
// awake and moving fast enough to the other if it's asleep, per the
// post-narrow-phase wake rule.
func wakeFromContact(a, b *body.Body) {
	b.WakeUpIfMovingPastThreshold(rawMotion(a))
	a.WakeUpIfMovingPastThreshold(rawMotion(b))
}

func rawMotion(b *body.Body) float64 {
	v := b.Velocity()
	w := b.AngularVelocity()
	return v.MagnitudeSquared() + w*w
}
