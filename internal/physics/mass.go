package physics

import (
	"rigidsync/internal/dynamics"

	"github.com/go-gl/mathgl/mgl32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MassProperties is the result of RecomputeMassProperties.
type MassProperties struct {
	CenterOfMass rl.Vector3
	LocalInertia rl.Vector3
	// InertiaTensor is the unit-weight tensor of the shape set about the
	// center of mass.
	InertiaTensor mgl32.Mat3
	// Shape is what the solver body should collide with: the shifted
	// compound, or its only child when Collapsed.
	Shape                  dynamics.Shape
	Collapsed              bool
	CustomMaterialCallback bool
}

// RecomputeMassProperties derives the center of mass of agg, rebuilds its
// shifted compound and decides which shape the body exposes.
//
// Every child weighs the same regardless of its size. The principal rotation
// is ignored; only the centroid is used.
func RecomputeMassProperties(agg *ShapeAggregator, mass float32, internalEdge bool) MassProperties {
	var props MassProperties

	n := agg.Len()
	if n > 0 {
		masses := make([]float32, n)
		for i := range masses {
			masses[i] = 1
		}
		principal, tensor := agg.Compound().PrincipalAxisTransform(masses)
		props.CenterOfMass = principal.Position
		props.InertiaTensor = tensor
	}
	agg.Rebuild(props.CenterOfMass)

	props.Shape = agg.Shifted()
	if n == 1 {
		child := agg.Shifted().Child(0)
		if child.Transform.IsIdentity() {
			props.Shape = child.Shape
			props.Collapsed = true
		}
	}

	props.CustomMaterialCallback = props.Collapsed && internalEdge &&
		props.Shape.Type() == dynamics.ShapeTriangleMesh

	if mass > 0 {
		props.LocalInertia = props.Shape.LocalInertia(mass)
	}
	return props
}

// UpdateMass recomputes the mass properties and applies them to the body
// without moving the node, then lets attached constraints re-express their
// frames against the new center of mass.
func (r *RigidBody) UpdateMass() {
	if r.body == nil {
		return
	}
	internalEdge := r.world != nil && r.world.InternalEdge()
	props := RecomputeMassProperties(r.shapes, r.mass, internalEdge)

	r.body.SetCollisionShape(props.Shape)
	flags := r.body.CollisionFlags()
	if props.CustomMaterialCallback {
		flags |= dynamics.CollisionCustomMaterialCallback
	} else {
		flags &^= dynamics.CollisionCustomMaterialCallback
	}
	r.body.SetCollisionFlags(flags)

	oldPosition := r.Position()
	r.centerOfMass = props.CenterOfMass
	r.placeBody(oldPosition)

	r.body.SetMassProps(r.mass, props.LocalInertia)
	r.body.UpdateInertiaTensor()

	if r.GetGameObject() != nil {
		for _, c := range r.constraints {
			c.ReapplyLocalFrames()
		}
	}
}
