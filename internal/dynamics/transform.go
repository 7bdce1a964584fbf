package dynamics

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform is a rigid transform: rotation followed by translation.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
}

// IdentityTransform returns a transform with no translation and no rotation.
func IdentityTransform() Transform {
	return Transform{Rotation: rl.QuaternionIdentity()}
}

// NewTransform builds a transform from a position and a rotation.
func NewTransform(position rl.Vector3, rotation rl.Quaternion) Transform {
	return Transform{Position: position, Rotation: rotation}
}

// Apply maps a point from local space into the transform's parent space.
func (t Transform) Apply(v rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(t.Position, rl.Vector3RotateByQuaternion(v, t.Rotation))
}

// IsIdentity reports whether the transform has no translation and no rotation.
func (t Transform) IsIdentity() bool {
	return rl.Vector3Equals(t.Position, rl.Vector3Zero()) &&
		rl.QuaternionEquals(t.Rotation, rl.QuaternionIdentity())
}
