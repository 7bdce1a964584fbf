package dynamics

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// DeactivationTime is how long a body must stay under both rest thresholds
// before it is put to sleep, in seconds.
const DeactivationTime = 2.0

// CollisionFlags select how a body takes part in contacts.
type CollisionFlags uint32

const (
	CollisionStatic CollisionFlags = 1 << iota
	CollisionKinematic
	CollisionNoContactResponse
	CollisionCustomMaterialCallback
)

// BodyFlags alter how the world treats a body during integration.
type BodyFlags uint32

const (
	DisableWorldGravity BodyFlags = 1 << iota
)

// ActivationState is the sleep state of a body.
type ActivationState int

const (
	ActiveTag ActivationState = iota
	IslandSleeping
	WantsDeactivation
	DisableDeactivation
	DisableSimulation
)

// MotionState connects a body to the owner of its transform. The world reads
// kinematic bodies through it each step and writes integration results of
// active dynamic bodies back through it.
type MotionState interface {
	// ReadTransformForSimulation returns false when no transform is available.
	ReadTransformForSimulation() (Transform, bool)
	WriteTransformFromSimulation(t Transform)
}

var nextBodyID atomic.Uint64

// Body is a simulated rigid body. Its origin is its center of mass.
type Body struct {
	id uint64

	worldTransform  Transform
	interpTransform Transform

	linearVelocity  rl.Vector3
	angularVelocity rl.Vector3
	linearFactor    rl.Vector3
	angularFactor   rl.Vector3
	linearDamping   float32
	angularDamping  float32

	linearSleepingThreshold  float32
	angularSleepingThreshold float32
	deactivationTime         float32
	activationState          ActivationState

	friction                   float32
	rollingFriction            float32
	restitution                float32
	contactProcessingThreshold float32
	ccdSweptSphereRadius       float32
	ccdMotionThreshold         float32

	gravity     rl.Vector3
	totalForce  rl.Vector3
	totalTorque rl.Vector3

	mass               float32
	inverseMass        float32
	localInertia       rl.Vector3
	invInertiaLocal    rl.Vector3
	invInertiaTensorWS mgl32.Mat3

	flags          BodyFlags
	collisionFlags CollisionFlags
	shape          Shape
	motionState    MotionState

	group, mask uint32
	world       *World
	needsSync   bool

	// UserData is a non-owning back reference to the owner of the body.
	UserData any
}

// NewBody creates a body and reads its initial transform from the motion state.
func NewBody(mass float32, motionState MotionState, shape Shape, localInertia rl.Vector3) *Body {
	b := &Body{
		id:                         nextBodyID.Add(1),
		worldTransform:             IdentityTransform(),
		linearFactor:               rl.Vector3One(),
		angularFactor:              rl.Vector3One(),
		linearSleepingThreshold:    0.8,
		angularSleepingThreshold:   1.0,
		friction:                   0.5,
		contactProcessingThreshold: 1e18,
		shape:                      shape,
		motionState:                motionState,
	}
	if motionState != nil {
		if t, ok := motionState.ReadTransformForSimulation(); ok {
			b.worldTransform = t
		}
	}
	b.interpTransform = b.worldTransform
	b.SetMassProps(mass, localInertia)
	b.UpdateInertiaTensor()
	return b
}

func (b *Body) ID() uint64 { return b.id }

func (b *Body) WorldTransform() Transform { return b.worldTransform }

func (b *Body) SetWorldTransform(t Transform) { b.worldTransform = t }

func (b *Body) InterpolationWorldTransform() Transform { return b.interpTransform }

func (b *Body) SetInterpolationWorldTransform(t Transform) { b.interpTransform = t }

func (b *Body) CollisionShape() Shape { return b.shape }

func (b *Body) SetCollisionShape(s Shape) { b.shape = s }

func (b *Body) MotionState() MotionState { return b.motionState }

// SetMassProps sets mass and diagonal local inertia. A zero mass makes the body static.
func (b *Body) SetMassProps(mass float32, inertia rl.Vector3) {
	if mass == 0 {
		b.collisionFlags |= CollisionStatic
		b.inverseMass = 0
	} else {
		b.collisionFlags &^= CollisionStatic
		b.inverseMass = 1 / mass
	}
	b.mass = mass
	b.localInertia = inertia
	b.invInertiaLocal = rl.Vector3{X: invOrZero(inertia.X), Y: invOrZero(inertia.Y), Z: invOrZero(inertia.Z)}
}

func invOrZero(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

func (b *Body) Mass() float32 { return b.mass }

func (b *Body) InverseMass() float32 { return b.inverseMass }

func (b *Body) LocalInertia() rl.Vector3 { return b.localInertia }

// UpdateInertiaTensor recomputes the world-space inverse inertia from the current rotation.
func (b *Body) UpdateInertiaTensor() {
	r := rotationMat3(b.worldTransform.Rotation)
	b.invInertiaTensorWS = r.Mul3(mgl32.Diag3(toVec3(b.invInertiaLocal))).Mul3(r.Transpose())
}

func (b *Body) InvInertiaTensorWorld() mgl32.Mat3 { return b.invInertiaTensorWS }

func (b *Body) CollisionFlags() CollisionFlags { return b.collisionFlags }

func (b *Body) SetCollisionFlags(f CollisionFlags) { b.collisionFlags = f }

func (b *Body) Flags() BodyFlags { return b.flags }

func (b *Body) SetFlags(f BodyFlags) { b.flags = f }

func (b *Body) IsStaticObject() bool { return b.collisionFlags&CollisionStatic != 0 }

func (b *Body) IsKinematicObject() bool { return b.collisionFlags&CollisionKinematic != 0 }

func (b *Body) IsStaticOrKinematicObject() bool {
	return b.collisionFlags&(CollisionStatic|CollisionKinematic) != 0
}

func (b *Body) HasContactResponse() bool { return b.collisionFlags&CollisionNoContactResponse == 0 }

// Gravity returns the gravity acceleration applied to this body.
func (b *Body) Gravity() rl.Vector3 { return b.gravity }

func (b *Body) SetGravity(g rl.Vector3) { b.gravity = g }

func (b *Body) LinearVelocity() rl.Vector3 { return b.linearVelocity }

func (b *Body) SetLinearVelocity(v rl.Vector3) { b.linearVelocity = v }

func (b *Body) AngularVelocity() rl.Vector3 { return b.angularVelocity }

func (b *Body) SetAngularVelocity(v rl.Vector3) { b.angularVelocity = v }

func (b *Body) LinearFactor() rl.Vector3 { return b.linearFactor }

func (b *Body) SetLinearFactor(f rl.Vector3) { b.linearFactor = f }

func (b *Body) AngularFactor() rl.Vector3 { return b.angularFactor }

func (b *Body) SetAngularFactor(f rl.Vector3) { b.angularFactor = f }

func (b *Body) LinearDamping() float32 { return b.linearDamping }

func (b *Body) AngularDamping() float32 { return b.angularDamping }

func (b *Body) SetDamping(linear, angular float32) {
	b.linearDamping = clamp01(linear)
	b.angularDamping = clamp01(angular)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (b *Body) LinearSleepingThreshold() float32 { return b.linearSleepingThreshold }

func (b *Body) AngularSleepingThreshold() float32 { return b.angularSleepingThreshold }

func (b *Body) SetSleepingThresholds(linear, angular float32) {
	b.linearSleepingThreshold = linear
	b.angularSleepingThreshold = angular
}

func (b *Body) Friction() float32 { return b.friction }

func (b *Body) SetFriction(f float32) { b.friction = f }

func (b *Body) RollingFriction() float32 { return b.rollingFriction }

func (b *Body) SetRollingFriction(f float32) { b.rollingFriction = f }

func (b *Body) Restitution() float32 { return b.restitution }

func (b *Body) SetRestitution(r float32) { b.restitution = r }

func (b *Body) ContactProcessingThreshold() float32 { return b.contactProcessingThreshold }

func (b *Body) SetContactProcessingThreshold(t float32) { b.contactProcessingThreshold = t }

func (b *Body) CcdSweptSphereRadius() float32 { return b.ccdSweptSphereRadius }

func (b *Body) SetCcdSweptSphereRadius(r float32) { b.ccdSweptSphereRadius = r }

func (b *Body) CcdMotionThreshold() float32 { return b.ccdMotionThreshold }

func (b *Body) SetCcdMotionThreshold(t float32) { b.ccdMotionThreshold = t }

func (b *Body) ActivationState() ActivationState { return b.activationState }

func (b *Body) SetActivationState(s ActivationState) {
	if b.activationState != DisableDeactivation && b.activationState != DisableSimulation {
		b.activationState = s
	}
}

// ForceActivationState sets the activation state unconditionally.
func (b *Body) ForceActivationState(s ActivationState) { b.activationState = s }

// Activate wakes the body. Static and kinematic bodies are only woken when forced.
func (b *Body) Activate(force bool) {
	if force || !b.IsStaticOrKinematicObject() {
		b.SetActivationState(ActiveTag)
		b.deactivationTime = 0
	}
}

func (b *Body) IsActive() bool {
	return b.activationState != IslandSleeping && b.activationState != DisableSimulation
}

// IsInWorld reports whether the body is registered with a world.
func (b *Body) IsInWorld() bool { return b.world != nil }

func (b *Body) CollisionGroup() uint32 { return b.group }

func (b *Body) CollisionMask() uint32 { return b.mask }

func (b *Body) ApplyCentralForce(force rl.Vector3) {
	b.totalForce = rl.Vector3Add(b.totalForce, rl.Vector3Multiply(force, b.linearFactor))
}

// ApplyForce applies force at rel, relative to the center of mass.
func (b *Body) ApplyForce(force, rel rl.Vector3) {
	b.ApplyCentralForce(force)
	b.ApplyTorque(rl.Vector3CrossProduct(rel, rl.Vector3Multiply(force, b.linearFactor)))
}

func (b *Body) ApplyTorque(torque rl.Vector3) {
	b.totalTorque = rl.Vector3Add(b.totalTorque, rl.Vector3Multiply(torque, b.angularFactor))
}

func (b *Body) ApplyCentralImpulse(impulse rl.Vector3) {
	if b.inverseMass == 0 {
		return
	}
	dv := rl.Vector3Scale(rl.Vector3Multiply(impulse, b.linearFactor), b.inverseMass)
	b.linearVelocity = rl.Vector3Add(b.linearVelocity, dv)
}

func (b *Body) ApplyTorqueImpulse(torque rl.Vector3) {
	if b.inverseMass == 0 {
		return
	}
	dw := fromVec3(b.invInertiaTensorWS.Mul3x1(toVec3(torque)))
	b.angularVelocity = rl.Vector3Add(b.angularVelocity, rl.Vector3Multiply(dw, b.angularFactor))
}

// ApplyImpulse applies impulse at rel, relative to the center of mass.
func (b *Body) ApplyImpulse(impulse, rel rl.Vector3) {
	if b.inverseMass == 0 {
		return
	}
	b.ApplyCentralImpulse(impulse)
	b.ApplyTorqueImpulse(rl.Vector3CrossProduct(rel, rl.Vector3Multiply(impulse, b.linearFactor)))
}

func (b *Body) TotalForce() rl.Vector3 { return b.totalForce }

func (b *Body) TotalTorque() rl.Vector3 { return b.totalTorque }

func (b *Body) ClearForces() {
	b.totalForce = rl.Vector3Zero()
	b.totalTorque = rl.Vector3Zero()
}

// VelocityInLocalPoint returns the velocity of a point at rel from the center of mass.
func (b *Body) VelocityInLocalPoint(rel rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(b.linearVelocity, rl.Vector3CrossProduct(b.angularVelocity, rel))
}

func (b *Body) integrateVelocities(dt float32) {
	if b.IsStaticOrKinematicObject() || !b.IsActive() {
		return
	}
	accel := rl.Vector3Scale(b.totalForce, b.inverseMass)
	if b.inverseMass != 0 {
		accel = rl.Vector3Add(accel, rl.Vector3Multiply(b.gravity, b.linearFactor))
	}
	b.linearVelocity = rl.Vector3Add(b.linearVelocity, rl.Vector3Scale(accel, dt))
	angAccel := fromVec3(b.invInertiaTensorWS.Mul3x1(toVec3(b.totalTorque)))
	b.angularVelocity = rl.Vector3Add(b.angularVelocity, rl.Vector3Scale(angAccel, dt))

	b.linearVelocity = rl.Vector3Scale(b.linearVelocity, dampingFactor(b.linearDamping, dt))
	b.angularVelocity = rl.Vector3Scale(b.angularVelocity, dampingFactor(b.angularDamping, dt))
}

func (b *Body) integrateTransform(dt float32) {
	if b.IsStaticOrKinematicObject() || !b.IsActive() {
		return
	}
	b.worldTransform.Position = rl.Vector3Add(b.worldTransform.Position, rl.Vector3Scale(b.linearVelocity, dt))
	b.worldTransform.Rotation = integrateRotation(b.worldTransform.Rotation, b.angularVelocity, dt)
	b.interpTransform = b.worldTransform
	b.UpdateInertiaTensor()
}

// updateDeactivation accumulates time spent below the rest thresholds and
// puts the body to sleep once DeactivationTime is reached.
func (b *Body) updateDeactivation(dt float32) {
	if b.IsStaticOrKinematicObject() {
		return
	}
	if b.activationState == IslandSleeping || b.activationState == DisableDeactivation ||
		b.activationState == DisableSimulation {
		return
	}
	lin := rl.Vector3LengthSqr(b.linearVelocity)
	ang := rl.Vector3LengthSqr(b.angularVelocity)
	if lin < b.linearSleepingThreshold*b.linearSleepingThreshold &&
		ang < b.angularSleepingThreshold*b.angularSleepingThreshold {
		b.deactivationTime += dt
	} else {
		b.deactivationTime = 0
		b.SetActivationState(ActiveTag)
		return
	}
	if b.deactivationTime >= DeactivationTime {
		b.SetActivationState(IslandSleeping)
		b.linearVelocity = rl.Vector3Zero()
		b.angularVelocity = rl.Vector3Zero()
	}
}
