package physics

import (
	"rigidsync/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeAggregator collects the shapes contributed to one rigid body. The
// compound holds them in node space; the shifted compound mirrors it with
// every child moved so that the center of mass sits at the origin, which is
// what the solver body uses. Shapes are referenced, never owned.
type ShapeAggregator struct {
	compound *dynamics.CompoundShape
	shifted  *dynamics.CompoundShape
}

func NewShapeAggregator() *ShapeAggregator {
	return &ShapeAggregator{
		compound: dynamics.NewCompoundShape(),
		shifted:  dynamics.NewCompoundShape(),
	}
}

// AddShape adds s at the given node-local transform. Adding a shape that is
// already present only updates its transform.
func (a *ShapeAggregator) AddShape(s dynamics.Shape, local dynamics.Transform) {
	if s == nil {
		return
	}
	if i := a.compound.IndexOf(s); i >= 0 {
		a.compound.SetChildTransform(i, local)
		return
	}
	a.compound.AddChild(local, s)
}

// RemoveShape removes s, reporting whether it was present.
func (a *ShapeAggregator) RemoveShape(s dynamics.Shape) bool {
	i := a.compound.IndexOf(s)
	if i < 0 {
		return false
	}
	a.compound.RemoveChildAt(i)
	return true
}

// Rebuild regenerates the shifted compound from the compound, offsetting
// every child by -centerOfMass.
func (a *ShapeAggregator) Rebuild(centerOfMass rl.Vector3) {
	a.shifted.Clear()
	for i := 0; i < a.compound.ChildCount(); i++ {
		child := a.compound.Child(i)
		adjusted := child.Transform
		adjusted.Position = rl.Vector3Subtract(adjusted.Position, centerOfMass)
		a.shifted.AddChild(adjusted, child.Shape)
	}
}

func (a *ShapeAggregator) Compound() *dynamics.CompoundShape { return a.compound }

func (a *ShapeAggregator) Shifted() *dynamics.CompoundShape { return a.shifted }

func (a *ShapeAggregator) Len() int { return a.compound.ChildCount() }

// Clear drops every shape from both aggregates.
func (a *ShapeAggregator) Clear() {
	a.compound.Clear()
	a.shifted.Clear()
}
