package physics

import (
	"log"

	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OnNodeSet attaches to or detaches from the node.
func (r *RigidBody) OnNodeSet(g *engine.GameObject) {
	if g == nil {
		r.Detach()
		return
	}
	if err := r.Attach(g); err != nil {
		log.Printf("Physics: %v", err)
	}
}

// Attach resolves the node's physics world and builds the body. Without a
// reachable world the component stays inert and a *ConfigurationError is
// returned.
func (r *RigidBody) Attach(g *engine.GameObject) error {
	g.AddListener(r)

	if g.Scene == nil {
		return &ConfigurationError{Component: "RigidBody", Node: g.Name, Err: ErrNodeDetached}
	}
	world := engine.GetSceneComponent[*PhysicsWorld](g.Scene)
	if world == nil {
		return &ConfigurationError{Component: "RigidBody", Node: g.Name, Err: ErrNoPhysicsWorld}
	}
	r.world = world
	world.AddRigidBody(r)
	r.AddBodyToWorld()
	return nil
}

// Detach frees the body and unregisters from the world and the node. Shapes
// already contributed are kept so the body can be rebuilt on reattach.
func (r *RigidBody) Detach() {
	r.teardown(false)
}

// Release tears the component down: constraints first, then the body leaves
// the world and is freed, then both shape aggregates are cleared.
func (r *RigidBody) Release() {
	r.teardown(true)
}

func (r *RigidBody) teardown(clearShapes bool) {
	r.ReleaseBody()
	if clearShapes {
		r.shapes.Clear()
	}
	r.detachSmoothing()
	if r.world != nil {
		r.world.RemoveRigidBody(r)
		r.world = nil
	}
	if g := r.GetGameObject(); g != nil {
		g.RemoveListener(r)
	}
	r.state = Detached
}

// ReleaseBody releases every attached constraint, then removes the body from
// the world and frees it.
func (r *RigidBody) ReleaseBody() {
	if r.body == nil {
		return
	}
	// ReleaseConstraint removes entries from r.constraints
	constraints := append([]ConstraintCollaborator(nil), r.constraints...)
	for _, c := range constraints {
		c.ReleaseConstraint()
	}
	r.RemoveBodyFromWorld()

	r.body.UserData = nil
	r.body = nil
	r.state = Detached
}

// SetEnabled changes the component's own enabled flag.
func (r *RigidBody) SetEnabled(enabled bool) {
	if enabled == r.IsEnabled() {
		return
	}
	r.SetEnabledFlag(enabled)
	r.OnSetEnabled()
}

// OnSetEnabled adds or removes the body to match the effective enabled state.
func (r *RigidBody) OnSetEnabled() {
	if r.deferThreaded() {
		r.pendingEnable = true
		return
	}
	enabled := r.IsEnabledEffective()
	if enabled && r.state != InWorld {
		r.AddBodyToWorld()
	} else if !enabled && r.state == InWorld {
		r.RemoveBodyFromWorld()
	}
}

// ApplyAttributes performs the rebuild requested by SetAttribute or Deserialize.
func (r *RigidBody) ApplyAttributes() {
	if r.readdBody {
		r.AddBodyToWorld()
	}
}

// AddBodyToWorld rebuilds the body from scratch: it is taken out of the world,
// created if needed, given fresh mass, gravity and flags, and put back in
// when the component is enabled. Calling it repeatedly converges to the same
// state. During the threaded update it only marks the rebuild as pending.
func (r *RigidBody) AddBodyToWorld() {
	if r.world == nil {
		return
	}
	if r.deferThreaded() {
		r.readdBody = true
		r.pendingRebuild = true
		return
	}
	if r.mass < 0 {
		r.mass = 0
	}

	created := false
	var previousMass float32
	if r.body != nil {
		previousMass = r.body.Mass()
		r.RemoveBodyFromWorld()
	} else {
		r.createBody()
		created = true
	}

	r.UpdateMass()
	r.UpdateGravity()

	flags := r.body.CollisionFlags()
	if r.phantom {
		flags |= dynamics.CollisionNoContactResponse
	} else {
		flags &^= dynamics.CollisionNoContactResponse
	}
	if r.kinematic {
		flags |= dynamics.CollisionKinematic
	} else {
		flags &^= dynamics.CollisionKinematic
	}
	r.body.SetCollisionFlags(flags)

	if !r.IsEnabledEffective() {
		return
	}

	r.world.World().AddBody(r.body, r.collisionLayer, r.collisionMask)
	r.state = InWorld
	r.readdBody = false

	if r.mass > 0 {
		if created || previousMass == 0 {
			r.Activate()
		}
	} else {
		r.body.SetLinearVelocity(rl.Vector3Zero())
		r.body.SetAngularVelocity(rl.Vector3Zero())
	}
}

// createBody makes the solver body and gathers what the node already holds:
// a smoothing collaborator, collision shapes and constraints waiting for a body.
func (r *RigidBody) createBody() {
	r.body = dynamics.NewBody(r.mass, r, r.shapes.Shifted(), rl.Vector3Zero())
	r.body.UserData = r
	r.applyProps()
	r.state = CreatedOutOfWorld

	node := r.GetGameObject()
	if s := engine.GetComponent[SmoothingCollaborator](node); s != nil {
		r.attachSmoothing(s)
	}
	for _, sc := range engine.GetComponents[ShapeCollaborator](node) {
		sc.ContributeTo(r.shapes)
	}
	for _, c := range engine.GetComponents[ConstraintCollaborator](node) {
		c.OnBodyReady()
	}
}

// RemoveBodyFromWorld takes the body out of the simulation but keeps it.
func (r *RigidBody) RemoveBodyFromWorld() {
	if r.world == nil || r.body == nil || r.state != InWorld {
		return
	}
	if r.rejectThreaded("RemoveBodyFromWorld") {
		return
	}
	r.world.World().RemoveBody(r.body)
	r.state = CreatedOutOfWorld
}

// ReAddBodyToWorld rebuilds the body if it is currently simulated.
func (r *RigidBody) ReAddBodyToWorld() {
	if r.body != nil && r.state == InWorld {
		r.AddBodyToWorld()
	}
}

// AddShape lets sc contribute its geometry and recomputes the mass properties.
func (r *RigidBody) AddShape(sc ShapeCollaborator) {
	if r.rejectThreaded("AddShape") {
		return
	}
	sc.ContributeTo(r.shapes)
	r.UpdateMass()
}

// RemoveShape drops s and recomputes the mass properties.
func (r *RigidBody) RemoveShape(s dynamics.Shape) {
	if r.rejectThreaded("RemoveShape") {
		return
	}
	if r.shapes.RemoveShape(s) {
		r.UpdateMass()
	}
}

// UpdateShape replaces old with whatever sc now contributes.
func (r *RigidBody) UpdateShape(old dynamics.Shape, sc ShapeCollaborator) {
	if r.rejectThreaded("UpdateShape") {
		return
	}
	if old != nil {
		r.shapes.RemoveShape(old)
	}
	sc.ContributeTo(r.shapes)
	r.UpdateMass()
}

// AddConstraint records a constraint that references this body.
func (r *RigidBody) AddConstraint(c ConstraintCollaborator) {
	for _, existing := range r.constraints {
		if existing == c {
			return
		}
	}
	r.constraints = append(r.constraints, c)
}

// RemoveConstraint forgets c and wakes the body, which may have lost a support.
func (r *RigidBody) RemoveConstraint(c ConstraintCollaborator) {
	for i, existing := range r.constraints {
		if existing == c {
			r.constraints = append(r.constraints[:i], r.constraints[i+1:]...)
			break
		}
	}
	r.Activate()
}

func (r *RigidBody) Constraints() []ConstraintCollaborator {
	return r.constraints
}
