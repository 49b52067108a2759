package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultGravity is the downward acceleration along Y in m/s²
	DefaultGravity = -9.82

	defaultIterations = 10

	// Contacts approaching slower than this do not bounce. Keeps resting
	// stacks from jittering under the per-step gravity increment.
	restingSpeed = 0.5

	// Corners within this distance above a plane already take part in the solve
	contactMargin = 0.01

	defaultSleepSpeed = 0.1
	defaultSleepTime  = 1.0

	stepEpsilon = 1e-9
)

// World owns the bodies and advances them with a fixed timestep.
// It is not safe for concurrent use.
type World struct {
	Gravity         mgl64.Vec3
	Iterations      int
	SleepSpeedLimit float64
	SleepTime       float64

	bodies      []*Body
	contacts    []contact
	accumulator float64
	time        float64
	substeps    uint64
}

// NewWorld creates an empty world with standard gravity
func NewWorld() *World {
	return &World{
		Gravity:         mgl64.Vec3{0, DefaultGravity, 0},
		Iterations:      defaultIterations,
		SleepSpeedLimit: defaultSleepSpeed,
		SleepTime:       defaultSleepTime,
	}
}

// AddBody registers b with the world
func (w *World) AddBody(b *Body) {
	b.Wake()
	w.bodies = append(w.bodies, b)
}

// Bodies returns the registered bodies in insertion order
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Time returns the total simulated time in seconds
func (w *World) Time() float64 { return w.time }

// Substeps returns how many fixed steps have run since creation
func (w *World) Substeps() uint64 { return w.substeps }

// Clear removes every body and resets the accumulator
func (w *World) Clear() {
	w.bodies = nil
	w.contacts = w.contacts[:0]
	w.accumulator = 0
}

// Step advances the simulation by realDelta seconds of wall time using steps
// of fixedDelta. At most maxSubsteps steps run per call; leftover backlog
// beyond that is dropped so a stalled frame cannot trigger a catch-up spiral.
// A realDelta of zero or less runs no step.
func (w *World) Step(fixedDelta, realDelta float64, maxSubsteps int) {
	if fixedDelta <= 0 || realDelta <= 0 || math.IsNaN(realDelta) {
		return
	}
	if maxSubsteps < 1 {
		maxSubsteps = 1
	}
	w.accumulator += realDelta
	for n := 0; n < maxSubsteps && w.accumulator+stepEpsilon >= fixedDelta; n++ {
		w.internalStep(fixedDelta)
		w.accumulator = max(w.accumulator-fixedDelta, 0)
	}
	if w.accumulator >= fixedDelta {
		w.accumulator = math.Mod(w.accumulator, fixedDelta)
	}
}

func (w *World) internalStep(dt float64) {
	for _, b := range w.bodies {
		if b.IsStatic() || b.sleeping {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Mul(dt)).Mul(math.Pow(1-b.LinearDamping, dt))
		b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
		b.updateWorldInertia()
	}

	w.collectContacts()
	w.solveContacts()

	for _, b := range w.bodies {
		if b.IsStatic() || b.sleeping {
			continue
		}
		b.integrate(dt)
	}
	w.projectContacts()
	w.updateSleep(dt)

	w.time += dt
	w.substeps++
}

// planePairs calls fn for every awake dynamic box against every static plane
func (w *World) planePairs(fn func(b *Body, box Box, plane *Body, normal mgl64.Vec3)) {
	for _, p := range w.bodies {
		if _, ok := p.Shape.(Plane); !ok || !p.IsStatic() {
			continue
		}
		normal := p.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
		for _, b := range w.bodies {
			box, ok := b.Shape.(Box)
			if !ok || b.IsStatic() || b.sleeping {
				continue
			}
			fn(b, box, p, normal)
		}
	}
}

func (w *World) updateSleep(dt float64) {
	limit := w.SleepSpeedLimit * w.SleepSpeedLimit
	for _, b := range w.bodies {
		if b.IsStatic() || b.sleeping || w.SleepTime <= 0 {
			continue
		}
		if b.Velocity.LenSqr() < limit && b.AngularVelocity.LenSqr() < limit {
			b.idle += dt
			if b.idle >= w.SleepTime {
				b.sleeping = true
				b.Velocity = mgl64.Vec3{}
				b.AngularVelocity = mgl64.Vec3{}
			}
			continue
		}
		b.idle = 0
	}
}
