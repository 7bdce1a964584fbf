package dynamics

import rl "github.com/gen2brain/raylib-go/raylib"

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and half extents.
func NewAABBFromCenter(center, halfExtents rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3Subtract(center, halfExtents),
		Max: rl.Vector3Add(center, halfExtents),
	}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Union returns the smallest AABB enclosing both boxes.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: rl.Vector3Min(a.Min, b.Min),
		Max: rl.Vector3Max(a.Max, b.Max),
	}
}

// Center returns the midpoint of the box.
func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

// HalfExtents returns half of the box size on each axis.
func (a AABB) HalfExtents() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Subtract(a.Max, a.Min), 0.5)
}

// orientedExtents returns the world-axis half extents of a box with the given
// local half extents after rotation.
func orientedExtents(half rl.Vector3, rotation rl.Quaternion) rl.Vector3 {
	ax := rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, rotation)
	ay := rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, rotation)
	az := rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, rotation)
	return rl.Vector3{
		X: abs(ax.X)*half.X + abs(ay.X)*half.Y + abs(az.X)*half.Z,
		Y: abs(ax.Y)*half.X + abs(ay.Y)*half.Y + abs(az.Y)*half.Z,
		Z: abs(ax.Z)*half.X + abs(ay.Z)*half.Y + abs(az.Z)*half.Z,
	}
}
