package physics

import (
	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ReadTransformForSimulation gives the solver the node's world transform
// moved to the center of mass. It reports false once the node is gone.
func (r *RigidBody) ReadTransformForSimulation() (dynamics.Transform, bool) {
	node := r.GetGameObject()
	if node == nil {
		return dynamics.Transform{}, false
	}
	r.lastPosition = node.WorldPosition()
	r.lastRotation = node.WorldRotation()
	origin := rl.Vector3Add(r.lastPosition, rl.Vector3RotateByQuaternion(r.centerOfMass, r.lastRotation))
	return dynamics.NewTransform(origin, r.lastRotation), true
}

// WriteTransformFromSimulation takes a simulated transform back to the node.
// A node whose parent also carries a rigid body cannot be placed until the
// parent is, so its transform is queued on the world instead.
func (r *RigidBody) WriteTransformFromSimulation(t dynamics.Transform) {
	node := r.GetGameObject()
	if node == nil {
		return
	}
	rotation := t.Rotation
	position := rl.Vector3Subtract(t.Position, rl.Vector3RotateByQuaternion(r.centerOfMass, rotation))

	var parentBody *RigidBody
	if node.Parent != nil {
		parentBody = engine.GetComponent[*RigidBody](node.Parent)
	}

	if parentBody == nil || r.world == nil {
		r.ApplyWorldTransform(position, rotation)
	} else {
		r.world.AddDelayedWorldTransform(DelayedWorldTransform{
			Body:     r,
			Parent:   parentBody,
			Position: position,
			Rotation: rotation,
		})
	}
	r.markNetworkUpdate()
}

// ApplyWorldTransform places the node, or the smoothing target when one is
// attached, without feeding the change back into the body.
func (r *RigidBody) ApplyWorldTransform(position rl.Vector3, rotation rl.Quaternion) {
	node := r.GetGameObject()
	if node == nil {
		return
	}
	if r.world != nil {
		r.world.SetApplyingTransforms(true)
		defer r.world.SetApplyingTransforms(false)
	}

	if r.smoothing != nil {
		r.smoothing.SetTargetWorldPosition(position)
		r.smoothing.SetTargetWorldRotation(rotation)
		r.lastPosition = position
		r.lastRotation = rotation
		return
	}
	node.SetWorldTransform(position, rotation)
	r.lastPosition = node.WorldPosition()
	r.lastRotation = node.WorldRotation()
}

// OnMarkedDirty pushes node edits made outside the simulation into the body.
func (r *RigidBody) OnMarkedDirty(g *engine.GameObject) {
	node := r.GetGameObject()
	if node == nil {
		return
	}
	if scene := node.Scene; scene != nil && scene.IsThreadedUpdate() {
		scene.DelayedMarkedDirty(r, g)
		return
	}
	r.flushDeferred()

	if r.world != nil && r.world.IsApplyingTransforms() {
		return
	}
	if r.authority == SmoothingDriven {
		return
	}

	newPosition := node.WorldPosition()
	newRotation := node.WorldRotation()

	// Rotation first: with an offset center of mass it also moves the origin
	if !rl.QuaternionEquals(newRotation, r.lastRotation) {
		r.lastRotation = newRotation
		r.SetRotation(newRotation)
	}
	if !rl.Vector3Equals(newPosition, r.lastPosition) {
		r.lastPosition = newPosition
		r.SetPosition(newPosition)
	}
}

// Position returns the node-space position of the body, that is the body
// origin minus the rotated center of mass.
func (r *RigidBody) Position() rl.Vector3 {
	if r.body == nil {
		return rl.Vector3Zero()
	}
	t := r.body.WorldTransform()
	return rl.Vector3Subtract(t.Position, rl.Vector3RotateByQuaternion(r.centerOfMass, t.Rotation))
}

func (r *RigidBody) Rotation() rl.Quaternion {
	if r.body == nil {
		return rl.QuaternionIdentity()
	}
	return r.body.WorldTransform().Rotation
}

// SetPosition moves the body so that its node-space position is p, and wakes it.
func (r *RigidBody) SetPosition(p rl.Vector3) {
	if r.body == nil || r.rejectThreaded("SetPosition") {
		return
	}
	r.placeBody(p)
	r.Activate()
	r.markNetworkUpdate()
}

// SetRotation rotates the body about its node-space position, and wakes it.
func (r *RigidBody) SetRotation(q rl.Quaternion) {
	if r.body == nil || r.rejectThreaded("SetRotation") {
		return
	}
	oldPosition := r.Position()
	t := r.body.WorldTransform()
	t.Rotation = q
	if !rl.Vector3Equals(r.centerOfMass, rl.Vector3Zero()) {
		t.Position = rl.Vector3Add(oldPosition, rl.Vector3RotateByQuaternion(r.centerOfMass, q))
	}
	r.body.SetWorldTransform(t)
	r.body.SetInterpolationWorldTransform(t)
	r.body.UpdateInertiaTensor()

	r.Activate()
	r.markNetworkUpdate()
}

// SetTransform sets node-space position and rotation at once, and wakes the body.
func (r *RigidBody) SetTransform(p rl.Vector3, q rl.Quaternion) {
	if r.body == nil || r.rejectThreaded("SetTransform") {
		return
	}
	t := dynamics.NewTransform(rl.Vector3Add(p, rl.Vector3RotateByQuaternion(r.centerOfMass, q)), q)
	r.body.SetWorldTransform(t)
	r.body.SetInterpolationWorldTransform(t)
	r.body.UpdateInertiaTensor()

	r.Activate()
	r.markNetworkUpdate()
}

// placeBody moves the body origin to match node-space position p under the
// current rotation. It does not wake the body.
func (r *RigidBody) placeBody(p rl.Vector3) {
	t := r.body.WorldTransform()
	t.Position = rl.Vector3Add(p, rl.Vector3RotateByQuaternion(r.centerOfMass, t.Rotation))
	r.body.SetWorldTransform(t)

	interp := r.body.InterpolationWorldTransform()
	interp.Position = t.Position
	r.body.SetInterpolationWorldTransform(interp)
	r.body.UpdateInertiaTensor()
}

// attachSmoothing subscribes to a smoothing collaborator's target changes and
// hands it the node transform.
func (r *RigidBody) attachSmoothing(s SmoothingCollaborator) {
	r.detachSmoothing()
	r.smoothing = s
	r.authority = SmoothingDriven
	r.smoothingSubs[0] = s.TargetPositionChanged().AddListener(r.handleTargetPosition)
	r.smoothingSubs[1] = s.TargetRotationChanged().AddListener(r.handleTargetRotation)
}

func (r *RigidBody) detachSmoothing() {
	if r.smoothing == nil {
		return
	}
	r.smoothing.TargetPositionChanged().RemoveListener(r.smoothingSubs[0])
	r.smoothing.TargetRotationChanged().RemoveListener(r.smoothingSubs[1])
	r.smoothing = nil
	r.authority = SimulationDriven
}

func (r *RigidBody) handleTargetPosition() {
	if r.world == nil || !r.world.IsApplyingTransforms() {
		r.SetPosition(r.smoothing.TargetWorldPosition())
	}
}

func (r *RigidBody) handleTargetRotation() {
	if r.world == nil || !r.world.IsApplyingTransforms() {
		r.SetRotation(r.smoothing.TargetWorldRotation())
	}
}
