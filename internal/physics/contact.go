package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type contact struct {
	body   *Body
	r      mgl64.Vec3 // contact point relative to the center of mass
	normal mgl64.Vec3
	t1, t2 mgl64.Vec3

	massN, massT1, massT2 float64
	bias                  float64 // target separating speed from restitution
	friction              float64

	accN, accT1, accT2 float64
}

func (w *World) collectContacts() {
	w.contacts = w.contacts[:0]
	w.planePairs(func(b *Body, box Box, floor *Body, normal mgl64.Vec3) {
		t1, t2 := tangents(normal)
		for _, corner := range box.corners() {
			r := b.Orientation.Rotate(corner)
			depth := normal.Dot(b.Position.Add(r).Sub(floor.Position))
			if depth > contactMargin {
				continue
			}
			c := contact{
				body:     b,
				r:        r,
				normal:   normal,
				t1:       t1,
				t2:       t2,
				massN:    b.effectiveMass(r, normal),
				massT1:   b.effectiveMass(r, t1),
				massT2:   b.effectiveMass(r, t2),
				friction: b.Friction * floor.Friction,
			}
			if vn := normal.Dot(b.velocityAt(r)); vn < -restingSpeed {
				c.bias = -b.Restitution * floor.Restitution * vn
			}
			w.contacts = append(w.contacts, c)
		}
	})
}

// solveContacts runs sequential impulses with accumulated clamping
func (w *World) solveContacts() {
	for range w.Iterations {
		for i := range w.contacts {
			c := &w.contacts[i]
			b := c.body

			vn := b.velocityAt(c.r).Dot(c.normal)
			old := c.accN
			c.accN = max(old+c.massN*(c.bias-vn), 0)
			b.applyImpulse(c.normal.Mul(c.accN-old), c.r)

			limit := c.friction * c.accN
			c.accT1 = c.applyFriction(c.t1, c.massT1, c.accT1, limit)
			c.accT2 = c.applyFriction(c.t2, c.massT2, c.accT2, limit)
		}
	}
}

func (c *contact) applyFriction(t mgl64.Vec3, mass, acc, limit float64) float64 {
	vt := c.body.velocityAt(c.r).Dot(t)
	next := mgl64.Clamp(acc-mass*vt, -limit, limit)
	c.body.applyImpulse(t.Mul(next-acc), c.r)
	return next
}

// projectContacts pushes boxes out of planes after integration
func (w *World) projectContacts() {
	w.planePairs(func(b *Body, box Box, floor *Body, normal mgl64.Vec3) {
		deepest := math.Inf(1)
		for _, corner := range box.corners() {
			d := normal.Dot(b.Position.Add(b.Orientation.Rotate(corner)).Sub(floor.Position))
			deepest = min(deepest, d)
		}
		if deepest < 0 {
			b.Position = b.Position.Add(normal.Mul(-deepest))
		}
	})
}

func tangents(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(axis).Normalize()
	return t1, n.Cross(t1)
}
