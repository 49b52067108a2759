package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Damping applied per second to bodies that do not set their own
const (
	DefaultLinearDamping  = 0.01
	DefaultAngularDamping = 0.01
)

// Shape is the collision geometry attached to a body
type Shape interface {
	// inertia returns the principal moments of inertia for the given mass
	inertia(mass float64) mgl64.Vec3
}

// Box is an oriented box described by its half extents in body space
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b Box) inertia(mass float64) mgl64.Vec3 {
	x, y, z := 2*b.HalfExtents[0], 2*b.HalfExtents[1], 2*b.HalfExtents[2]
	return mgl64.Vec3{
		mass / 12 * (y*y + z*z),
		mass / 12 * (x*x + z*z),
		mass / 12 * (x*x + y*y),
	}
}

// corners returns the eight box corners in body space
func (b Box) corners() [8]mgl64.Vec3 {
	h := b.HalfExtents
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				out[i] = mgl64.Vec3{sx * h[0], sy * h[1], sz * h[2]}
				i++
			}
		}
	}
	return out
}

// Plane is an infinite plane through the body position. Its normal is +Y in body space.
type Plane struct{}

func (Plane) inertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

// Body is a rigid body. A body with zero mass is static and never moves.
type Body struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Mass           float64
	Shape          Shape
	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64

	invMass         float64
	invInertia      mgl64.Vec3 // body space
	invInertiaWorld mgl64.Mat3
	sleeping        bool
	idle            float64
}

// BodyOptions describes a body for NewBody
type BodyOptions struct {
	Mass           float64
	Shape          Shape
	Position       mgl64.Vec3
	Orientation    mgl64.Quat
	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64
}

// NewBody creates a body from opts. A zero orientation becomes the identity.
func NewBody(opts BodyOptions) *Body {
	q := opts.Orientation
	if q.Len() == 0 {
		q = mgl64.QuatIdent()
	}
	b := &Body{
		Position:       opts.Position,
		Orientation:    q.Normalize(),
		Mass:           opts.Mass,
		Shape:          opts.Shape,
		Restitution:    opts.Restitution,
		Friction:       opts.Friction,
		LinearDamping:  opts.LinearDamping,
		AngularDamping: opts.AngularDamping,
	}
	b.updateMassProperties()
	return b
}

// NewStatic creates a zero-mass body that collides but never moves
func NewStatic(shape Shape, position mgl64.Vec3) *Body {
	return NewBody(BodyOptions{Shape: shape, Position: position})
}

// IsStatic reports whether the body has zero mass
func (b *Body) IsStatic() bool {
	return b.invMass == 0
}

// Sleeping reports whether the body has come to rest and is skipped by the solver
func (b *Body) Sleeping() bool {
	return b.sleeping
}

// Wake puts a sleeping body back into the simulation
func (b *Body) Wake() {
	b.sleeping = false
	b.idle = 0
}

func (b *Body) updateMassProperties() {
	if b.Mass <= 0 || b.Shape == nil {
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / b.Mass
	in := b.Shape.inertia(b.Mass)
	for i := range 3 {
		if in[i] > 0 {
			b.invInertia[i] = 1 / in[i]
		}
	}
}

func (b *Body) updateWorldInertia() {
	r := b.Orientation.Mat4().Mat3()
	b.invInertiaWorld = r.Mul3(mgl64.Diag3(b.invInertia)).Mul3(r.Transpose())
}

// velocityAt returns the velocity of the point at offset r from the center of mass
func (b *Body) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

// applyImpulse applies impulse p at offset r from the center of mass
func (b *Body) applyImpulse(p, r mgl64.Vec3) {
	b.Velocity = b.Velocity.Add(p.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld.Mul3x1(r.Cross(p)))
}

// effectiveMass returns the inverse of the impulse response along dir at offset r
func (b *Body) effectiveMass(r, dir mgl64.Vec3) float64 {
	k := b.invMass + dir.Dot(b.invInertiaWorld.Mul3x1(r.Cross(dir)).Cross(r))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func (b *Body) integrate(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Orientation).Scale(0.5 * dt)
	b.Orientation = b.Orientation.Add(spin).Normalize()
}
