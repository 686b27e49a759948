package collision

import (
	"math"

	"github.com/0x5844/physics2d/body"
)

// restingThreshold is the squared approach-velocity cutoff below which a
// contact is treated as resting rather than colliding for the purposes of
// normal-impulse accumulation, avoiding energy injection from jittering
// resting contacts.
const restingThreshold = 6.0

// PrepareSolver increments each contacting body's TotalContacts by the
// number of contact points in every Colliding contact it participates in.
// Must run once per tick before the position-solver iterations begin.
func PrepareSolver(contacts []*Contact) {
	for _, c := range contacts {
		if !c.Colliding {
			continue
		}
		n := len(c.Points)
		c.BodyA.AddTotalContacts(n)
		c.BodyB.AddTotalContacts(n)
	}
}

// effInvMass and effInvInertia treat a non-updating body (static or
// sleeping) as immovable for solving purposes: a static body already has
// invMass/invInertia pinned to 0, but a sleeping body's are nonzero, and
// without this the solver would impart real velocity/position changes on a
// body meant to be resting motionless.
func effInvMass(b *body.Body) float64 {
	if !b.ShouldUpdate() {
		return 0
	}
	return b.InvMass()
}

func effInvInertia(b *body.Body) float64 {
	if !b.ShouldUpdate() {
		return 0
	}
	return b.InvInertia()
}

// SolvePosition runs one iteration of the position solver over contacts,
// accumulating each body's positional correction into its PositionImpulse.
// Call positionIterations times per tick, after PrepareSolver.
func SolvePosition(contacts []*Contact) {
	for _, c := range contacts {
		if !c.Colliding {
			continue
		}
		a, b := c.BodyA, c.BodyB

		pos1 := b.Position().Sub(c.PenetrationVector)
		separation := c.Normal.Dot(
			b.Position().Add(b.PositionImpulse()).Sub(pos1.Add(a.PositionImpulse())),
		)
		c.Separation = separation

		if separation < 0 {
			continue
		}

		shouldUpdate1 := a.ShouldUpdate()
		shouldUpdate2 := b.ShouldUpdate()

		effSep := separation
		if shouldUpdate1 != shouldUpdate2 {
			effSep *= 2
		}
		amount := effSep - c.Slop

		if shouldUpdate1 && a.TotalContacts() > 0 {
			share := amount / float64(a.TotalContacts())
			a.SetPositionImpulse(a.PositionImpulse().Add(c.Normal.Scale(share)))
		}
		if shouldUpdate2 && b.TotalContacts() > 0 {
			share := amount / float64(b.TotalContacts())
			b.SetPositionImpulse(b.PositionImpulse().Sub(c.Normal.Scale(share)))
		}
	}
}

// PostSolvePosition applies each body's accumulated PositionImpulse to its
// position, previousPosition (preserving velocity), vertices and bounds,
// then resets the per-tick solver bookkeeping. Runs once per tick, over
// every body in the simulation, after the position-solver iterations.
func PostSolvePosition(bodies []*body.Body) {
	for _, b := range bodies {
		impulse := b.PositionImpulse()
		if impulse.X == 0 && impulse.Y == 0 {
			b.ResetSolverState()
			continue
		}
		b.SetPosition(b.Position().Add(impulse))
		b.ResetSolverState()
	}
}

// SolveVelocity runs one iteration of the velocity solver over contacts,
// applying clamped normal and tangential (Coulomb friction) impulses as
// adjustments to each body's previousPosition/previousAngle. Call
// velocityIterations times per tick, after position solving.
func SolveVelocity(contacts []*Contact) {
	for _, c := range contacts {
		if !c.Colliding {
			continue
		}
		a, b := c.BodyA, c.BodyB
		invM1, invM2 := effInvMass(a), effInvMass(b)
		invI1, invI2 := effInvInertia(a), effInvInertia(b)

		for i := range c.Points {
			p := &c.Points[i]

			r1 := p.Vertex.Sub(a.Position())
			r2 := p.Vertex.Sub(b.Position())

			v1 := a.Position().Sub(a.PreviousPosition())
			w1 := a.Angle() - a.PreviousAngle()
			v2 := b.Position().Sub(b.PreviousPosition())
			w2 := b.Angle() - b.PreviousAngle()

			cv1 := r1.Perp().Scale(w1).Add(v1)
			cv2 := r2.Perp().Scale(w2).Add(v2)
			rv := cv1.Sub(cv2)

			vn := rv.Dot(c.Normal)
			vt := rv.Dot(c.Tangent)

			rn1 := r1.Cross(c.Normal)
			rn2 := r2.Cross(c.Normal)
			d := (invM1 + invM2 + invI1*rn1*rn1 + invI2*rn2*rn2) * float64(len(c.Points))

			var normalDelta float64
			if vn < 0 && vn*vn > restingThreshold {
				normalDelta = 0
			} else if d != 0 {
				jn := (1 + c.Restitution) * vn / d
				oldImpulse := p.NormalImpulse
				newImpulse := math.Min(oldImpulse+jn, 0)
				normalDelta = newImpulse - oldImpulse
				p.NormalImpulse = newImpulse
			}

			var tangentDelta float64
			if d != 0 {
				normalForce := clamp(c.Separation+vn, 0, 1) * 5
				maxFriction := c.Friction * normalForce
				jt := vt
				if math.Abs(vt) > maxFriction {
					jt = maxFriction * sign(vt)
				}
				jt /= d

				oldT := p.TangentImpulse
				newT := clamp(oldT+jt, -maxFriction, maxFriction)
				tangentDelta = newT - oldT
				p.TangentImpulse = newT
			}

			j := c.Normal.Scale(normalDelta).Add(c.Tangent.Scale(tangentDelta))

			a.SetPreviousPosition(a.PreviousPosition().Add(j.Scale(invM1)))
			a.SetPreviousAngle(a.PreviousAngle() + r1.Cross(j)*invI1)
			b.SetPreviousPosition(b.PreviousPosition().Sub(j.Scale(invM2)))
			b.SetPreviousAngle(b.PreviousAngle() - r2.Cross(j)*invI2)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
