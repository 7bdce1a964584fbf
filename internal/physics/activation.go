package physics

import (
	"rigidsync/internal/netcodec"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Activate wakes the body. Massless bodies are never woken.
func (r *RigidBody) Activate() {
	if r.body != nil && r.mass > 0 {
		r.body.Activate(true)
	}
}

// applies reports whether a force-like input should reach the body: there must
// be a body, the input must be nonzero and the caller must not be a worker.
func (r *RigidBody) applies(op string, v rl.Vector3) bool {
	if r.body == nil || v == rl.Vector3Zero() {
		return false
	}
	return !r.rejectThreaded(op)
}

func (r *RigidBody) ApplyForce(force rl.Vector3) {
	if !r.applies("ApplyForce", force) {
		return
	}
	r.Activate()
	r.body.ApplyCentralForce(force)
}

// ApplyForceAtPosition applies force at a position relative to the node origin.
func (r *RigidBody) ApplyForceAtPosition(force, position rl.Vector3) {
	if !r.applies("ApplyForceAtPosition", force) {
		return
	}
	r.Activate()
	r.body.ApplyForce(force, rl.Vector3Subtract(position, r.centerOfMass))
}

func (r *RigidBody) ApplyTorque(torque rl.Vector3) {
	if !r.applies("ApplyTorque", torque) {
		return
	}
	r.Activate()
	r.body.ApplyTorque(torque)
}

func (r *RigidBody) ApplyImpulse(impulse rl.Vector3) {
	if !r.applies("ApplyImpulse", impulse) {
		return
	}
	r.Activate()
	r.body.ApplyCentralImpulse(impulse)
}

// ApplyImpulseAtPosition applies impulse at a position relative to the node origin.
func (r *RigidBody) ApplyImpulseAtPosition(impulse, position rl.Vector3) {
	if !r.applies("ApplyImpulseAtPosition", impulse) {
		return
	}
	r.Activate()
	r.body.ApplyImpulse(impulse, rl.Vector3Subtract(position, r.centerOfMass))
}

func (r *RigidBody) ApplyTorqueImpulse(torque rl.Vector3) {
	if !r.applies("ApplyTorqueImpulse", torque) {
		return
	}
	r.Activate()
	r.body.ApplyTorqueImpulse(torque)
}

// ResetForces clears accumulated force and torque.
func (r *RigidBody) ResetForces() {
	if r.body != nil && !r.rejectThreaded("ResetForces") {
		r.body.ClearForces()
	}
}

// SetLinearVelocity sets the velocity, waking the body when it is nonzero.
func (r *RigidBody) SetLinearVelocity(v rl.Vector3) {
	r.props.linearVelocity = v
	if r.body == nil || r.rejectThreaded("SetLinearVelocity") {
		return
	}
	r.body.SetLinearVelocity(v)
	if v != rl.Vector3Zero() {
		r.Activate()
	}
	r.markNetworkUpdate()
}

// SetAngularVelocity sets the angular velocity, waking the body when it is nonzero.
func (r *RigidBody) SetAngularVelocity(v rl.Vector3) {
	r.props.angularVelocity = v
	if r.body == nil || r.rejectThreaded("SetAngularVelocity") {
		return
	}
	r.body.SetAngularVelocity(v)
	if v != rl.Vector3Zero() {
		r.Activate()
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) maxNetworkAngularVelocity() float32 {
	if r.world != nil {
		return r.world.MaxNetworkAngularVelocity()
	}
	return DefaultMaxNetworkAngularVelocity
}

// NetAngularVelocityAttr encodes the angular velocity for replication.
func (r *RigidBody) NetAngularVelocityAttr() []byte {
	return netcodec.WritePackedVector3(nil, r.AngularVelocity(), r.maxNetworkAngularVelocity())
}

// SetNetAngularVelocityAttr decodes a replicated angular velocity and applies it.
func (r *RigidBody) SetNetAngularVelocityAttr(buf []byte) error {
	v, err := netcodec.ReadPackedVector3(buf, r.maxNetworkAngularVelocity())
	if err != nil {
		return err
	}
	r.SetAngularVelocity(v)
	return nil
}
