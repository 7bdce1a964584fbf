package dynamics

import (
	"log"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultGravity is the gravity of a new world.
var DefaultGravity = rl.Vector3{X: 0, Y: -9.81, Z: 0}

// Pair is two bodies whose bounds overlap; A has the lower id.
type Pair struct {
	A, B *Body
}

func makePair(a, b *Body) Pair {
	if a.id > b.id {
		return Pair{A: b, B: a}
	}
	return Pair{A: a, B: b}
}

// World steps a set of bodies. Collision handling is limited to reporting
// filtered AABB overlaps; there is no contact response and joints are stored
// but not solved.
type World struct {
	gravity   rl.Vector3
	bodies    []*Body
	joints    []*Joint
	pairs     []Pair
	localTime float32
	stepping  bool
}

func NewWorld() *World {
	return &World{
		gravity: DefaultGravity,
		bodies:  make([]*Body, 0),
	}
}

func (w *World) Gravity() rl.Vector3 {
	return w.gravity
}

// SetGravity changes world gravity and pushes it to every dynamic body that
// does not opt out with DisableWorldGravity.
func (w *World) SetGravity(g rl.Vector3) {
	w.gravity = g
	for _, b := range w.bodies {
		if b.IsStaticOrKinematicObject() || b.flags&DisableWorldGravity != 0 {
			continue
		}
		b.SetGravity(g)
	}
}

// AddBody inserts a body with a collision group and mask. A pair of bodies
// can only overlap when each one's group is in the other's mask.
func (w *World) AddBody(b *Body, group, mask uint32) {
	if b.world == w {
		return
	}
	if b.world != nil {
		b.world.RemoveBody(b)
	}
	b.group = group
	b.mask = mask
	if !b.IsStaticOrKinematicObject() && b.flags&DisableWorldGravity == 0 {
		b.SetGravity(w.gravity)
	}
	if b.IsStaticObject() {
		b.SetActivationState(IslandSleeping)
	}
	b.world = w
	w.bodies = append(w.bodies, b)
}

func (w *World) RemoveBody(b *Body) {
	if b.world != w {
		return
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	kept := w.pairs[:0]
	for _, p := range w.pairs {
		if p.A != b && p.B != b {
			kept = append(kept, p)
		}
	}
	w.pairs = kept
	b.world = nil
}

func (w *World) ContainsBody(b *Body) bool {
	return b != nil && b.world == w
}

func (w *World) Bodies() []*Body {
	return w.bodies
}

func (w *World) AddJoint(j *Joint) {
	if j.world == w {
		return
	}
	j.world = w
	w.joints = append(w.joints, j)
}

func (w *World) RemoveJoint(j *Joint) {
	for i, other := range w.joints {
		if other == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			break
		}
	}
	j.world = nil
}

func (w *World) Joints() []*Joint {
	return w.joints
}

// Contacts returns the overlapping pairs found by the last step.
func (w *World) Contacts() []Pair {
	out := make([]Pair, len(w.pairs))
	copy(out, w.pairs)
	return out
}

// IsStepping reports whether a step is in progress.
func (w *World) IsStepping() bool {
	return w.stepping
}

// StepSimulation advances the world. With maxSubSteps > 0 time is consumed in
// fixed steps of fixedTimeStep, at most maxSubSteps per call, and the
// remainder carries over. With maxSubSteps <= 0 one variable step of timeStep
// is taken. Returns the number of fixed steps the elapsed time called for.
func (w *World) StepSimulation(timeStep float32, maxSubSteps int, fixedTimeStep float32) int {
	numSteps := 0
	if maxSubSteps > 0 && fixedTimeStep > 0 {
		w.localTime += timeStep
		if w.localTime >= fixedTimeStep {
			numSteps = int(w.localTime / fixedTimeStep)
			w.localTime -= float32(numSteps) * fixedTimeStep
		}
	} else {
		fixedTimeStep = timeStep
		w.localTime = 0
		if timeStep > 0 {
			numSteps = 1
			maxSubSteps = 1
		}
	}

	w.stepping = true
	if numSteps > 0 {
		clamped := min(numSteps, maxSubSteps)
		w.saveKinematicState()
		for i := 0; i < clamped; i++ {
			w.internalSingleStep(fixedTimeStep)
		}
	}
	w.synchronizeMotionStates()
	w.stepping = false

	for _, b := range w.bodies {
		b.ClearForces()
	}
	return numSteps
}

func (w *World) internalSingleStep(dt float32) {
	for _, b := range w.bodies {
		b.integrateVelocities(dt)
	}
	for _, b := range w.bodies {
		if b.IsActive() && !b.IsStaticOrKinematicObject() {
			b.integrateTransform(dt)
			b.needsSync = true
		}
	}
	w.detectOverlaps()
	for _, b := range w.bodies {
		b.updateDeactivation(dt)
	}
}

// saveKinematicState pulls the externally driven transform of every kinematic body.
func (w *World) saveKinematicState() {
	for _, b := range w.bodies {
		if !b.IsKinematicObject() || b.motionState == nil {
			continue
		}
		if t, ok := safeRead(b); ok {
			b.worldTransform = t
			b.interpTransform = t
			b.UpdateInertiaTensor()
		}
	}
}

func (w *World) synchronizeMotionStates() {
	for _, b := range w.bodies {
		if !b.needsSync {
			continue
		}
		b.needsSync = false
		if b.motionState == nil || b.IsStaticOrKinematicObject() {
			continue
		}
		safeWrite(b, b.interpTransform)
	}
}

// detectOverlaps rebuilds the pair list and wakes sleeping bodies touched by
// an active dynamic body.
func (w *World) detectOverlaps() {
	w.pairs = w.pairs[:0]
	bounds := make([]AABB, len(w.bodies))
	valid := make([]bool, len(w.bodies))
	for i, b := range w.bodies {
		if b.shape != nil {
			bounds[i], valid[i] = b.shape.Bounds(b.worldTransform)
		}
	}

	for i := 0; i < len(w.bodies); i++ {
		if !valid[i] {
			continue
		}
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			if !valid[j] {
				continue
			}
			b := w.bodies[j]
			if a.IsStaticOrKinematicObject() && b.IsStaticOrKinematicObject() {
				continue
			}
			if a.group&b.mask == 0 || b.group&a.mask == 0 {
				continue
			}
			if !bounds[i].Intersects(bounds[j]) {
				continue
			}
			w.pairs = append(w.pairs, makePair(a, b))
			wakeTouching(a, b)
		}
	}
	sort.Slice(w.pairs, func(i, j int) bool {
		if w.pairs[i].A.id != w.pairs[j].A.id {
			return w.pairs[i].A.id < w.pairs[j].A.id
		}
		return w.pairs[i].B.id < w.pairs[j].B.id
	})
}

func wakeTouching(a, b *Body) {
	if !a.HasContactResponse() || !b.HasContactResponse() {
		return
	}
	if a.IsActive() && !a.IsStaticOrKinematicObject() && !b.IsActive() {
		b.Activate(false)
	}
	if b.IsActive() && !b.IsStaticOrKinematicObject() && !a.IsActive() {
		a.Activate(false)
	}
}

func safeRead(b *Body) (t Transform, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Physics: motion state read failed for body %d: %v", b.id, r)
			ok = false
		}
	}()
	return b.motionState.ReadTransformForSimulation()
}

func safeWrite(b *Body, t Transform) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Physics: motion state write failed for body %d: %v", b.id, r)
		}
	}()
	b.motionState.WriteTransformFromSimulation(t)
}
