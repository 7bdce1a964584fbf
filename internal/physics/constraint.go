package physics

import (
	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("Constraint", func() engine.Serializable {
		return NewConstraint()
	})
}

var jointTypeNames = map[dynamics.JointType]string{
	dynamics.JointPoint:     "Point",
	dynamics.JointHinge:     "Hinge",
	dynamics.JointSlider:    "Slider",
	dynamics.JointConeTwist: "ConeTwist",
}

// Constraint joins the rigid body on its node to another node's rigid body,
// or to the world when no other body is set. Pivots are given in each node's
// space; the joint frames are re-expressed relative to the bodies' centers
// of mass whenever those move.
type Constraint struct {
	engine.BaseComponent

	JointType     dynamics.JointType
	Position      rl.Vector3
	Rotation      rl.Quaternion
	OtherBody     engine.GameObjectRef
	OtherBodyName string
	// OtherPosition is in the other node's space, or world space when there
	// is no other body.
	OtherPosition rl.Vector3

	joint     *dynamics.Joint
	world     *PhysicsWorld
	ownBody   *RigidBody
	otherBody *RigidBody
}

func NewConstraint() *Constraint {
	return &Constraint{
		JointType: dynamics.JointPoint,
		Rotation:  rl.QuaternionIdentity(),
	}
}

// Joint returns the solver joint, or nil while the constraint is not created.
func (c *Constraint) Joint() *dynamics.Joint { return c.joint }

func (c *Constraint) IsCreated() bool { return c.joint != nil }

// SetOtherBody connects to g's rigid body. Nil anchors to the world.
func (c *Constraint) SetOtherBody(g *engine.GameObject) {
	c.OtherBody.Set(g)
	c.OtherBodyName = ""
	if g != nil {
		c.OtherBodyName = g.Name
	}
	if c.joint != nil {
		c.CreateConstraint()
	}
}

// OnNodeSet creates the joint if the node's body already exists.
func (c *Constraint) OnNodeSet(g *engine.GameObject) {
	if g == nil {
		c.ReleaseConstraint()
		return
	}
	if rb := engine.GetComponent[*RigidBody](g); rb != nil && rb.HasBody() {
		c.CreateConstraint()
	}
}

// OnBodyReady implements ConstraintCollaborator.
func (c *Constraint) OnBodyReady() {
	c.CreateConstraint()
}

func (c *Constraint) resolveOther(node *engine.GameObject) *engine.GameObject {
	if other := c.OtherBody.Get(node.Scene); other != nil {
		return other
	}
	if c.OtherBodyName != "" && node.Scene != nil {
		if other := node.Scene.FindByName(c.OtherBodyName); other != nil {
			c.OtherBody.Set(other)
			return other
		}
	}
	return nil
}

// CreateConstraint (re)creates the joint. It does nothing until both bodies
// exist; it is retried when the node's body is built.
func (c *Constraint) CreateConstraint() {
	c.ReleaseConstraint()

	node := c.GetGameObject()
	if node == nil {
		return
	}
	own := engine.GetComponent[*RigidBody](node)
	if own == nil || !own.HasBody() || own.World() == nil {
		return
	}

	var other *RigidBody
	if otherNode := c.resolveOther(node); otherNode != nil {
		other = engine.GetComponent[*RigidBody](otherNode)
		if other == nil || !other.HasBody() || other == own {
			return
		}
	} else if c.OtherBody.IsValid() || c.OtherBodyName != "" {
		return
	}

	var otherSolverBody *dynamics.Body
	if other != nil {
		otherSolverBody = other.Body()
	}
	c.joint = dynamics.NewJoint(c.JointType, own.Body(), otherSolverBody)
	c.world = own.World()
	c.ownBody = own
	c.otherBody = other

	own.AddConstraint(c)
	if other != nil {
		other.AddConstraint(c)
	}
	c.ReapplyLocalFrames()
	c.world.World().AddJoint(c.joint)
}

// ReapplyLocalFrames implements ConstraintCollaborator.
func (c *Constraint) ReapplyLocalFrames() {
	if c.joint == nil {
		return
	}
	frameA := dynamics.NewTransform(c.pivot(c.ownBody, c.Position), c.Rotation)
	frameB := dynamics.NewTransform(c.OtherPosition, c.Rotation)
	if c.otherBody != nil {
		frameB.Position = c.pivot(c.otherBody, c.OtherPosition)
	}
	c.joint.SetFrames(frameA, frameB)
}

// pivot turns a node-space point into one relative to rb's center of mass.
func (c *Constraint) pivot(rb *RigidBody, p rl.Vector3) rl.Vector3 {
	scale := rl.Vector3One()
	if node := rb.GetGameObject(); node != nil {
		scale = node.WorldScale()
	}
	return rl.Vector3Subtract(rl.Vector3Multiply(p, scale), rb.CenterOfMass())
}

// ReleaseConstraint implements ConstraintCollaborator.
func (c *Constraint) ReleaseConstraint() {
	if c.joint == nil {
		return
	}
	joint := c.joint
	c.joint = nil

	if c.ownBody != nil {
		c.ownBody.RemoveConstraint(c)
	}
	if c.otherBody != nil {
		c.otherBody.RemoveConstraint(c)
	}
	if c.world != nil {
		c.world.World().RemoveJoint(joint)
	}
	c.world = nil
	c.ownBody = nil
	c.otherBody = nil
}

// Release implements engine.Releaser.
func (c *Constraint) Release() {
	c.ReleaseConstraint()
}

// TypeName implements engine.Serializable
func (c *Constraint) TypeName() string {
	return "Constraint"
}

// Serialize implements engine.Serializable
func (c *Constraint) Serialize() map[string]any {
	return map[string]any{
		"type":          "Constraint",
		"jointType":     jointTypeNames[c.JointType],
		"position":      vec3Slice(c.Position),
		"rotation":      []float32{c.Rotation.X, c.Rotation.Y, c.Rotation.Z, c.Rotation.W},
		"otherBody":     c.OtherBodyName,
		"otherPosition": vec3Slice(c.OtherPosition),
	}
}

// Deserialize implements engine.Serializable
func (c *Constraint) Deserialize(data map[string]any) {
	if s, ok := data["jointType"].(string); ok {
		for t, name := range jointTypeNames {
			if name == s {
				c.JointType = t
			}
		}
	}
	if v, ok := toVec3(data["position"]); ok {
		c.Position = v
	}
	if q, ok := toQuaternion(data["rotation"]); ok {
		c.Rotation = q
	}
	if s, ok := data["otherBody"].(string); ok {
		c.OtherBodyName = s
		c.OtherBody.Clear()
	}
	if v, ok := toVec3(data["otherPosition"]); ok {
		c.OtherPosition = v
	}
	if c.GetGameObject() != nil {
		c.CreateConstraint()
	}
}
