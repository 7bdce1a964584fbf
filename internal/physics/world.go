package physics

import (
	"log"

	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	DefaultFPS                       = 60
	DefaultMaxNetworkAngularVelocity = 100.0
)

// DelayedWorldTransform is a simulated transform for a body whose parent node
// also carries a rigid body. It is applied once the parent has been placed.
type DelayedWorldTransform struct {
	Body     *RigidBody
	Parent   *RigidBody
	Position rl.Vector3
	Rotation rl.Quaternion
}

// CollisionPair represents two rigid bodies whose shapes overlap
type CollisionPair struct {
	A, B *RigidBody
}

func makePair(a, b *RigidBody) CollisionPair {
	if a.body != nil && b.body != nil && a.body.ID() > b.body.ID() {
		return CollisionPair{A: b, B: a}
	}
	return CollisionPair{A: a, B: b}
}

// PhysicsWorld is the scene service that owns the solver world. Rigid bodies
// find it through their node's scene.
type PhysicsWorld struct {
	world  *dynamics.World
	scene  *engine.Scene
	bodies []*RigidBody

	delayed      map[*RigidBody]DelayedWorldTransform
	delayedOrder []*RigidBody

	applyingTransforms bool
	internalEdge       bool
	fps                int
	maxSubSteps        int
	maxNetAngularVel   float32

	// Collision tracking for callbacks
	activeCollisions map[CollisionPair]bool
	activeOrder      []CollisionPair
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		world:            dynamics.NewWorld(),
		delayed:          make(map[*RigidBody]DelayedWorldTransform),
		internalEdge:     true,
		fps:              DefaultFPS,
		maxSubSteps:      -1,
		maxNetAngularVel: DefaultMaxNetworkAngularVelocity,
		activeCollisions: make(map[CollisionPair]bool),
	}
}

// OnSceneSet is called when the world is added to or removed from a scene.
// Leaving the scene frees every body; the components stay registered with
// nothing until they are attached again.
func (w *PhysicsWorld) OnSceneSet(s *engine.Scene) {
	if s == nil && w.scene != nil {
		for _, rb := range append([]*RigidBody(nil), w.bodies...) {
			rb.ReleaseBody()
			rb.world = nil
		}
		w.bodies = nil
		w.clearDelayed()
		w.activeCollisions = make(map[CollisionPair]bool)
		w.activeOrder = nil
	}
	w.scene = s
}

// World returns the underlying solver world.
func (w *PhysicsWorld) World() *dynamics.World { return w.world }

func (w *PhysicsWorld) Scene() *engine.Scene { return w.scene }

func (w *PhysicsWorld) AddRigidBody(rb *RigidBody) {
	for _, existing := range w.bodies {
		if existing == rb {
			return
		}
	}
	w.bodies = append(w.bodies, rb)
}

// RemoveRigidBody unregisters rb, dropping its pending delayed transform and
// any collision pair it was part of.
func (w *PhysicsWorld) RemoveRigidBody(rb *RigidBody) {
	for i, existing := range w.bodies {
		if existing == rb {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.removeDelayed(rb)

	kept := w.activeOrder[:0]
	for _, pair := range w.activeOrder {
		if pair.A == rb || pair.B == rb {
			delete(w.activeCollisions, pair)
			continue
		}
		kept = append(kept, pair)
	}
	w.activeOrder = kept
}

// RigidBodies returns the registered rigid bodies in registration order.
func (w *PhysicsWorld) RigidBodies() []*RigidBody {
	out := make([]*RigidBody, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *PhysicsWorld) Gravity() rl.Vector3 { return w.world.Gravity() }

// SetGravity changes world gravity. Bodies without their own gravity follow.
func (w *PhysicsWorld) SetGravity(g rl.Vector3) {
	w.world.SetGravity(g)
}

func (w *PhysicsWorld) IsApplyingTransforms() bool { return w.applyingTransforms }

func (w *PhysicsWorld) SetApplyingTransforms(enable bool) { w.applyingTransforms = enable }

// InternalEdge reports whether triangle meshes get internal edge smoothing.
func (w *PhysicsWorld) InternalEdge() bool { return w.internalEdge }

// SetInternalEdge toggles internal edge smoothing and rebuilds every body so
// the custom material flag follows.
func (w *PhysicsWorld) SetInternalEdge(enable bool) {
	if enable == w.internalEdge {
		return
	}
	w.internalEdge = enable
	for _, rb := range w.bodies {
		rb.UpdateMass()
	}
}

func (w *PhysicsWorld) MaxNetworkAngularVelocity() float32 { return w.maxNetAngularVel }

// SetMaxNetworkAngularVelocity sets the range of the packed angular velocity
// attribute. It is clamped to [1, 32767].
func (w *PhysicsWorld) SetMaxNetworkAngularVelocity(v float32) {
	w.maxNetAngularVel = min(max(v, 1), 32767)
}

func (w *PhysicsWorld) FPS() int { return w.fps }

// SetFPS sets the fixed simulation rate. Values below 1 are raised to 1.
func (w *PhysicsWorld) SetFPS(fps int) {
	w.fps = max(fps, 1)
}

func (w *PhysicsWorld) MaxSubSteps() int { return w.maxSubSteps }

// SetMaxSubSteps limits fixed steps per Update. Negative means enough steps
// to cover the frame, zero means one variable step per frame.
func (w *PhysicsWorld) SetMaxSubSteps(n int) {
	w.maxSubSteps = n
}

// AddDelayedWorldTransform queues t until its parent has been placed. A newer
// transform for the same body replaces the queued one.
func (w *PhysicsWorld) AddDelayedWorldTransform(t DelayedWorldTransform) {
	if _, queued := w.delayed[t.Body]; !queued {
		w.delayedOrder = append(w.delayedOrder, t.Body)
	}
	w.delayed[t.Body] = t
}

// PendingDelayedTransforms returns the number of queued delayed transforms.
func (w *PhysicsWorld) PendingDelayedTransforms() int { return len(w.delayed) }

func (w *PhysicsWorld) removeDelayed(rb *RigidBody) {
	if _, queued := w.delayed[rb]; !queued {
		return
	}
	delete(w.delayed, rb)
	for i, queued := range w.delayedOrder {
		if queued == rb {
			w.delayedOrder = append(w.delayedOrder[:i], w.delayedOrder[i+1:]...)
			break
		}
	}
}

func (w *PhysicsWorld) clearDelayed() {
	w.delayed = make(map[*RigidBody]DelayedWorldTransform)
	w.delayedOrder = nil
}

// Update steps the simulation by dt, places parented bodies and sends
// collision callbacks. It refuses to run during the scene's threaded update.
func (w *PhysicsWorld) Update(dt float32) {
	if w.scene != nil && w.scene.IsThreadedUpdate() {
		log.Printf("Physics: update skipped during threaded scene update")
		return
	}

	maxSubSteps := w.maxSubSteps
	if maxSubSteps < 0 {
		maxSubSteps = int(dt*float32(w.fps)) + 1
	}
	w.world.StepSimulation(dt, maxSubSteps, 1/float32(w.fps))

	w.applyDelayedWorldTransforms()
	w.sendCollisionEvents()
}

// applyDelayedWorldTransforms places queued bodies parent first: an entry
// waits while its parent still has one queued.
func (w *PhysicsWorld) applyDelayedWorldTransforms() {
	for len(w.delayedOrder) > 0 {
		progressed := false
		remaining := w.delayedOrder[:0]
		for _, rb := range w.delayedOrder {
			t := w.delayed[rb]
			if _, parentQueued := w.delayed[t.Parent]; parentQueued && t.Parent != rb {
				remaining = append(remaining, rb)
				continue
			}
			rb.ApplyWorldTransform(t.Position, t.Rotation)
			delete(w.delayed, rb)
			progressed = true
		}
		w.delayedOrder = remaining

		if !progressed {
			// Parents waiting on each other; place them in queue order
			log.Printf("Physics: %d delayed transforms form a cycle", len(w.delayedOrder))
			for _, rb := range w.delayedOrder {
				t := w.delayed[rb]
				rb.ApplyWorldTransform(t.Position, t.Rotation)
			}
			w.clearDelayed()
		}
	}
}

// wantsCollisionEvents decides whether a touching pair is reported.
func wantsCollisionEvents(a, b *RigidBody) bool {
	if a.mass == 0 && b.mass == 0 {
		return false
	}
	if a.collisionEventMode == CollisionNever || b.collisionEventMode == CollisionNever {
		return false
	}
	if a.collisionEventMode == CollisionWhenActive && b.collisionEventMode == CollisionWhenActive &&
		!a.IsActive() && !b.IsActive() {
		return false
	}
	return true
}

// sendCollisionEvents compares the pairs touching now with the previous
// step and calls OnCollisionEnter / OnCollisionExit on both nodes.
func (w *PhysicsWorld) sendCollisionEvents() {
	current := make(map[CollisionPair]bool)
	var order []CollisionPair

	for _, contact := range w.world.Contacts() {
		a, okA := contact.A.UserData.(*RigidBody)
		b, okB := contact.B.UserData.(*RigidBody)
		if !okA || !okB || !wantsCollisionEvents(a, b) {
			continue
		}
		pair := makePair(a, b)
		if current[pair] {
			continue
		}
		current[pair] = true
		order = append(order, pair)
	}

	previous, wasActive := w.activeOrder, w.activeCollisions
	w.activeCollisions = current
	w.activeOrder = order

	for _, pair := range order {
		if !wasActive[pair] {
			notifyCollisionEnter(pair.A, pair.B)
			notifyCollisionEnter(pair.B, pair.A)
		}
	}
	for _, pair := range previous {
		if !current[pair] {
			notifyCollisionExit(pair.A, pair.B)
			notifyCollisionExit(pair.B, pair.A)
		}
	}
}

// CollidingBodies returns the bodies rb touched during the last update.
func (w *PhysicsWorld) CollidingBodies(rb *RigidBody) []*RigidBody {
	var out []*RigidBody
	for _, pair := range w.activeOrder {
		switch rb {
		case pair.A:
			out = append(out, pair.B)
		case pair.B:
			out = append(out, pair.A)
		}
	}
	return out
}

// notifyCollisionEnter calls OnCollisionEnter on all handlers in rb's node
func notifyCollisionEnter(rb, other *RigidBody) {
	obj, otherObj := rb.GetGameObject(), other.GetGameObject()
	if obj == nil {
		return
	}
	for _, handler := range engine.GetComponents[engine.CollisionHandler](obj) {
		handler.OnCollisionEnter(otherObj)
	}
}

// notifyCollisionExit calls OnCollisionExit on all handlers in rb's node
func notifyCollisionExit(rb, other *RigidBody) {
	obj, otherObj := rb.GetGameObject(), other.GetGameObject()
	if obj == nil {
		return
	}
	for _, handler := range engine.GetComponents[engine.CollisionHandler](obj) {
		handler.OnCollisionExit(otherObj)
	}
}
