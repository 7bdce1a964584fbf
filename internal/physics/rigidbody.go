package physics

import (
	"log"

	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("RigidBody", func() engine.Serializable {
		return NewRigidBody()
	})
}

// MembershipState tracks whether a rigid body has a solver body and whether
// that body is being simulated.
type MembershipState int

const (
	Detached MembershipState = iota
	CreatedOutOfWorld
	InWorld
)

func (s MembershipState) String() string {
	switch s {
	case Detached:
		return "Detached"
	case CreatedOutOfWorld:
		return "CreatedOutOfWorld"
	case InWorld:
		return "InWorld"
	}
	return "Unknown"
}

// TransformAuthority says who owns the node transform.
type TransformAuthority int

const (
	// SimulationDriven: node edits are pushed into the body and simulation
	// results are written to the node.
	SimulationDriven TransformAuthority = iota
	// SmoothingDriven: a smoothing collaborator owns the node; node edits are ignored.
	SmoothingDriven
)

// CollisionEventMode controls when collision events are sent for a body.
type CollisionEventMode int

const (
	CollisionNever CollisionEventMode = iota
	CollisionWhenActive
	CollisionAlways
)

var collisionEventModeNames = map[CollisionEventMode]string{
	CollisionNever:      "Never",
	CollisionWhenActive: "WhenActive",
	CollisionAlways:     "Always",
}

func (m CollisionEventMode) String() string {
	if name, ok := collisionEventModeNames[m]; ok {
		return name
	}
	return "Unknown"
}

// ParseCollisionEventMode accepts the names produced by String.
func ParseCollisionEventMode(s string) (CollisionEventMode, bool) {
	for mode, name := range collisionEventModeNames {
		if name == s {
			return mode, true
		}
	}
	return CollisionWhenActive, false
}

// Defaults for new rigid bodies.
const (
	DefaultCollisionLayer       uint32  = 0x1
	DefaultCollisionMask        uint32  = 0xFFFFFFFF
	DefaultFriction             float32 = 0.5
	DefaultLinearRestThreshold  float32 = 0.8
	DefaultAngularRestThreshold float32 = 1.0
)

// bodyProps holds the properties that are applied to the solver body in place.
// They are kept here so they survive until the body is created.
type bodyProps struct {
	friction             float32
	rollingFriction      float32
	restitution          float32
	linearDamping        float32
	angularDamping       float32
	linearRestThreshold  float32
	angularRestThreshold float32
	linearFactor         rl.Vector3
	angularFactor        rl.Vector3
	contactThreshold     float32
	ccdRadius            float32
	ccdMotionThreshold   float32
	linearVelocity       rl.Vector3
	angularVelocity      rl.Vector3
}

// RigidBody links a scene node with a simulated body. The body's origin is
// the center of mass of the node's collision shapes.
type RigidBody struct {
	engine.BaseComponent

	world        *PhysicsWorld
	body         *dynamics.Body
	shapes       *ShapeAggregator
	centerOfMass rl.Vector3

	mass               float32
	collisionLayer     uint32
	collisionMask      uint32
	collisionEventMode CollisionEventMode
	kinematic          bool
	phantom            bool
	useGravity         bool
	gravityOverride    rl.Vector3
	props              bodyProps

	lastPosition rl.Vector3
	lastRotation rl.Quaternion

	state       MembershipState
	readdBody   bool
	constraints []ConstraintCollaborator

	// work queued during the scene's threaded update
	pendingProps   bool
	pendingRebuild bool
	pendingEnable  bool

	authority     TransformAuthority
	smoothing     SmoothingCollaborator
	smoothingSubs [2]engine.ListenerID
}

func NewRigidBody() *RigidBody {
	return &RigidBody{
		shapes:             NewShapeAggregator(),
		collisionLayer:     DefaultCollisionLayer,
		collisionMask:      DefaultCollisionMask,
		collisionEventMode: CollisionWhenActive,
		useGravity:         true,
		lastRotation:       rl.QuaternionIdentity(),
		props: bodyProps{
			friction:             DefaultFriction,
			linearRestThreshold:  DefaultLinearRestThreshold,
			angularRestThreshold: DefaultAngularRestThreshold,
			linearFactor:         rl.Vector3One(),
			angularFactor:        rl.Vector3One(),
			contactThreshold:     1e18,
		},
	}
}

// Body returns the solver body, or nil before the component is attached.
func (r *RigidBody) Body() *dynamics.Body { return r.body }

func (r *RigidBody) HasBody() bool { return r.body != nil }

func (r *RigidBody) World() *PhysicsWorld { return r.world }

func (r *RigidBody) State() MembershipState { return r.state }

func (r *RigidBody) Shapes() *ShapeAggregator { return r.shapes }

func (r *RigidBody) CenterOfMass() rl.Vector3 { return r.centerOfMass }

func (r *RigidBody) Authority() TransformAuthority { return r.authority }

func (r *RigidBody) PendingRebuild() bool { return r.readdBody }

func (r *RigidBody) Mass() float32 { return r.mass }

func (r *RigidBody) IsKinematic() bool { return r.kinematic }

func (r *RigidBody) IsPhantom() bool { return r.phantom }

func (r *RigidBody) UseGravity() bool { return r.useGravity }

func (r *RigidBody) GravityOverride() rl.Vector3 { return r.gravityOverride }

func (r *RigidBody) CollisionLayer() uint32 { return r.collisionLayer }

func (r *RigidBody) CollisionMask() uint32 { return r.collisionMask }

func (r *RigidBody) CollisionEventMode() CollisionEventMode { return r.collisionEventMode }

func (r *RigidBody) Friction() float32 { return r.props.friction }

func (r *RigidBody) RollingFriction() float32 { return r.props.rollingFriction }

func (r *RigidBody) Restitution() float32 { return r.props.restitution }

func (r *RigidBody) LinearDamping() float32 { return r.props.linearDamping }

func (r *RigidBody) AngularDamping() float32 { return r.props.angularDamping }

func (r *RigidBody) LinearRestThreshold() float32 { return r.props.linearRestThreshold }

func (r *RigidBody) AngularRestThreshold() float32 { return r.props.angularRestThreshold }

func (r *RigidBody) LinearFactor() rl.Vector3 { return r.props.linearFactor }

func (r *RigidBody) AngularFactor() rl.Vector3 { return r.props.angularFactor }

func (r *RigidBody) ContactProcessingThreshold() float32 { return r.props.contactThreshold }

func (r *RigidBody) CcdRadius() float32 { return r.props.ccdRadius }

func (r *RigidBody) CcdMotionThreshold() float32 { return r.props.ccdMotionThreshold }

func (r *RigidBody) LinearVelocity() rl.Vector3 {
	if r.body != nil {
		return r.body.LinearVelocity()
	}
	return r.props.linearVelocity
}

func (r *RigidBody) AngularVelocity() rl.Vector3 {
	if r.body != nil {
		return r.body.AngularVelocity()
	}
	return r.props.angularVelocity
}

// VelocityAtPoint returns the world velocity of the body at world position p.
func (r *RigidBody) VelocityAtPoint(p rl.Vector3) rl.Vector3 {
	if r.body == nil {
		return rl.Vector3Zero()
	}
	return r.body.VelocityInLocalPoint(rl.Vector3Subtract(p, r.body.WorldTransform().Position))
}

func (r *RigidBody) IsActive() bool {
	return r.body != nil && r.body.IsActive()
}

// CollidingBodies returns the bodies this one touched during the last step.
func (r *RigidBody) CollidingBodies() []*RigidBody {
	if r.world == nil {
		return nil
	}
	return r.world.CollidingBodies(r)
}

// applyProps copies the in-place properties onto a freshly created body.
func (r *RigidBody) applyProps() {
	r.applyLiveProps()
	r.body.SetLinearVelocity(r.props.linearVelocity)
	r.body.SetAngularVelocity(r.props.angularVelocity)
}

// applyLiveProps copies every in-place property except the velocities, which
// the body owns once it is simulated.
func (r *RigidBody) applyLiveProps() {
	b := r.body
	b.SetFriction(r.props.friction)
	b.SetRollingFriction(r.props.rollingFriction)
	b.SetRestitution(r.props.restitution)
	b.SetDamping(r.props.linearDamping, r.props.angularDamping)
	b.SetSleepingThresholds(r.props.linearRestThreshold, r.props.angularRestThreshold)
	b.SetLinearFactor(r.props.linearFactor)
	b.SetAngularFactor(r.props.angularFactor)
	b.SetContactProcessingThreshold(r.props.contactThreshold)
	b.SetCcdSweptSphereRadius(r.props.ccdRadius)
	b.SetCcdMotionThreshold(r.props.ccdMotionThreshold)
}

func (r *RigidBody) SetFriction(f float32) {
	r.props.friction = f
	if r.bodyWritable() {
		r.body.SetFriction(f)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetRollingFriction(f float32) {
	r.props.rollingFriction = f
	if r.bodyWritable() {
		r.body.SetRollingFriction(f)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetRestitution(v float32) {
	r.props.restitution = v
	if r.bodyWritable() {
		r.body.SetRestitution(v)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetLinearDamping(d float32) {
	r.props.linearDamping = clamp01(d)
	if r.bodyWritable() {
		r.body.SetDamping(r.props.linearDamping, r.props.angularDamping)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetAngularDamping(d float32) {
	r.props.angularDamping = clamp01(d)
	if r.bodyWritable() {
		r.body.SetDamping(r.props.linearDamping, r.props.angularDamping)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetLinearRestThreshold(t float32) {
	r.props.linearRestThreshold = t
	if r.bodyWritable() {
		r.body.SetSleepingThresholds(t, r.props.angularRestThreshold)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetAngularRestThreshold(t float32) {
	r.props.angularRestThreshold = t
	if r.bodyWritable() {
		r.body.SetSleepingThresholds(r.props.linearRestThreshold, t)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetLinearFactor(f rl.Vector3) {
	r.props.linearFactor = f
	if r.bodyWritable() {
		r.body.SetLinearFactor(f)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetAngularFactor(f rl.Vector3) {
	r.props.angularFactor = f
	if r.bodyWritable() {
		r.body.SetAngularFactor(f)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetContactProcessingThreshold(t float32) {
	r.props.contactThreshold = t
	if r.bodyWritable() {
		r.body.SetContactProcessingThreshold(t)
	}
	r.markNetworkUpdate()
}

// SetCcdRadius sets the swept sphere radius. Negative values become zero.
func (r *RigidBody) SetCcdRadius(radius float32) {
	r.props.ccdRadius = max(radius, 0)
	if r.bodyWritable() {
		r.body.SetCcdSweptSphereRadius(r.props.ccdRadius)
	}
	r.markNetworkUpdate()
}

// SetCcdMotionThreshold sets the CCD motion threshold. Negative values become zero.
func (r *RigidBody) SetCcdMotionThreshold(t float32) {
	r.props.ccdMotionThreshold = max(t, 0)
	if r.bodyWritable() {
		r.body.SetCcdMotionThreshold(r.props.ccdMotionThreshold)
	}
	r.markNetworkUpdate()
}

func (r *RigidBody) SetCollisionEventMode(m CollisionEventMode) {
	r.collisionEventMode = m
	r.markNetworkUpdate()
}

func (r *RigidBody) SetUseGravity(enable bool) {
	if enable == r.useGravity {
		return
	}
	r.useGravity = enable
	r.UpdateGravity()
	r.markNetworkUpdate()
}

// SetGravityOverride sets a per-body gravity. The zero vector means no override.
func (r *RigidBody) SetGravityOverride(g rl.Vector3) {
	if g == r.gravityOverride {
		return
	}
	r.gravityOverride = g
	r.UpdateGravity()
	r.markNetworkUpdate()
}

// SetMass changes the mass and rebuilds the body. Negative mass becomes zero.
func (r *RigidBody) SetMass(mass float32) {
	mass = max(mass, 0)
	if mass == r.mass {
		return
	}
	r.mass = mass
	r.AddBodyToWorld()
	r.markNetworkUpdate()
}

func (r *RigidBody) SetKinematic(enable bool) {
	if enable == r.kinematic {
		return
	}
	r.kinematic = enable
	r.AddBodyToWorld()
	r.markNetworkUpdate()
}

func (r *RigidBody) SetPhantom(enable bool) {
	if enable == r.phantom {
		return
	}
	r.phantom = enable
	r.AddBodyToWorld()
	r.markNetworkUpdate()
}

func (r *RigidBody) SetCollisionLayer(layer uint32) {
	if layer == r.collisionLayer {
		return
	}
	r.collisionLayer = layer
	r.ReAddBodyToWorld()
	r.markNetworkUpdate()
}

func (r *RigidBody) SetCollisionMask(mask uint32) {
	if mask == r.collisionMask {
		return
	}
	r.collisionMask = mask
	r.ReAddBodyToWorld()
	r.markNetworkUpdate()
}

func (r *RigidBody) SetCollisionLayerAndMask(layer, mask uint32) {
	if layer == r.collisionLayer && mask == r.collisionMask {
		return
	}
	r.collisionLayer = layer
	r.collisionMask = mask
	r.ReAddBodyToWorld()
	r.markNetworkUpdate()
}

func (r *RigidBody) markNetworkUpdate() {
	if g := r.GetGameObject(); g != nil && g.Scene != nil {
		g.Scene.MarkNetworkUpdate(r)
	}
}

// deferThreaded queues r for the end of the scene's threaded update and
// reports whether it did. The deferred work runs from OnMarkedDirty.
func (r *RigidBody) deferThreaded() bool {
	g := r.GetGameObject()
	if g == nil || g.Scene == nil || !g.Scene.IsThreadedUpdate() {
		return false
	}
	g.Scene.DelayedMarkedDirty(r, g)
	return true
}

// bodyWritable reports whether an in-place property can reach the body now.
// During the threaded update the write waits for flushDeferred.
func (r *RigidBody) bodyWritable() bool {
	if r.body == nil {
		return false
	}
	if r.deferThreaded() {
		r.pendingProps = true
		return false
	}
	return true
}

// flushDeferred applies what setters queued during the threaded update.
func (r *RigidBody) flushDeferred() {
	if r.pendingProps && r.body != nil {
		r.pendingProps = false
		r.applyLiveProps()
		r.UpdateGravity()
	}
	if r.pendingRebuild {
		r.pendingRebuild = false
		r.AddBodyToWorld()
	}
	if r.pendingEnable {
		r.pendingEnable = false
		r.OnSetEnabled()
	}
}

// rejectThreaded reports, and logs, a body mutation attempted from a worker
// goroutine during the scene's threaded update.
func (r *RigidBody) rejectThreaded(op string) bool {
	g := r.GetGameObject()
	if g == nil || g.Scene == nil || !g.Scene.IsThreadedUpdate() {
		return false
	}
	log.Printf("Physics: %s on %q rejected during threaded update", op, g.Name)
	return true
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
