package dynamics

import (
	"github.com/go-gl/mathgl/mgl32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// CompoundChild is one child of a CompoundShape.
type CompoundChild struct {
	Transform Transform
	Shape     Shape
}

// CompoundShape aggregates child shapes, each with its own local transform.
// Child shapes are referenced, not owned.
type CompoundShape struct {
	children []CompoundChild
}

func NewCompoundShape() *CompoundShape {
	return &CompoundShape{}
}

func (c *CompoundShape) Type() ShapeType { return ShapeCompound }

func (c *CompoundShape) AddChild(t Transform, s Shape) {
	c.children = append(c.children, CompoundChild{Transform: t, Shape: s})
}

// RemoveChildAt removes the child at index i, keeping the order of the rest.
func (c *CompoundShape) RemoveChildAt(i int) {
	if i < 0 || i >= len(c.children) {
		return
	}
	c.children = append(c.children[:i], c.children[i+1:]...)
}

// IndexOf returns the index of the first child referencing s, or -1.
func (c *CompoundShape) IndexOf(s Shape) int {
	for i, ch := range c.children {
		if ch.Shape == s {
			return i
		}
	}
	return -1
}

func (c *CompoundShape) SetChildTransform(i int, t Transform) {
	if i < 0 || i >= len(c.children) {
		return
	}
	c.children[i].Transform = t
}

func (c *CompoundShape) ChildCount() int {
	return len(c.children)
}

func (c *CompoundShape) Child(i int) CompoundChild {
	return c.children[i]
}

func (c *CompoundShape) Clear() {
	c.children = c.children[:0]
}

func (c *CompoundShape) Bounds(t Transform) (AABB, bool) {
	var box AABB
	found := false
	for _, ch := range c.children {
		childWorld := Transform{
			Position: t.Apply(ch.Transform.Position),
			Rotation: rl.QuaternionMultiply(t.Rotation, ch.Transform.Rotation),
		}
		b, ok := ch.Shape.Bounds(childWorld)
		if !ok {
			continue
		}
		if !found {
			box = b
			found = true
		} else {
			box = box.Union(b)
		}
	}
	return box, found
}

// LocalInertia approximates the compound as its local bounding box.
func (c *CompoundShape) LocalInertia(mass float32) rl.Vector3 {
	box, ok := c.Bounds(IdentityTransform())
	if !ok {
		return rl.Vector3Zero()
	}
	return boxInertia(mass, box.HalfExtents())
}

// PrincipalAxisTransform computes the mass centroid of the children given one
// mass per child, and the inertia tensor about that centroid. The returned
// transform carries the centroid only; its rotation is always identity.
func (c *CompoundShape) PrincipalAxisTransform(masses []float32) (Transform, mgl32.Mat3) {
	principal := IdentityTransform()
	var total float32
	center := rl.Vector3Zero()
	for i, ch := range c.children {
		center = rl.Vector3Add(center, rl.Vector3Scale(ch.Transform.Position, masses[i]))
		total += masses[i]
	}
	if total <= 0 {
		return principal, mgl32.Mat3{}
	}
	center = rl.Vector3Scale(center, 1/total)
	principal.Position = center

	tensor := mgl32.Mat3{}
	for i, ch := range c.children {
		r := rotationMat3(ch.Transform.Rotation)
		local := r.Mul3(mgl32.Diag3(toVec3(ch.Shape.LocalInertia(masses[i])))).Mul3(r.Transpose())
		offset := toVec3(rl.Vector3Subtract(ch.Transform.Position, center))
		tensor = tensor.Add(local).Add(parallelAxis(offset, masses[i]))
	}
	return principal, tensor
}
