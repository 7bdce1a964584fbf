package dynamics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func toVec3(v rl.Vector3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// rotationMat3 converts a quaternion into a 3x3 rotation matrix.
func rotationMat3(q rl.Quaternion) mgl32.Mat3 {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}.Normalize().Mat4().Mat3()
}

// parallelAxis returns m * (|d|^2 * I - d d^T), the inertia contribution of a
// point mass m displaced by d.
func parallelAxis(d mgl32.Vec3, m float32) mgl32.Mat3 {
	dd := d.Dot(d)
	return mgl32.Mat3{
		m * (dd - d[0]*d[0]), -m * d[1] * d[0], -m * d[2] * d[0],
		-m * d[0] * d[1], m * (dd - d[1]*d[1]), -m * d[2] * d[1],
		-m * d[0] * d[2], -m * d[1] * d[2], m * (dd - d[2]*d[2]),
	}
}

func boxInertia(mass float32, half rl.Vector3) rl.Vector3 {
	lx, ly, lz := 2*half.X, 2*half.Y, 2*half.Z
	return rl.Vector3{
		X: mass / 12 * (ly*ly + lz*lz),
		Y: mass / 12 * (lx*lx + lz*lz),
		Z: mass / 12 * (lx*lx + ly*ly),
	}
}

// integrateRotation advances q by angular velocity w over dt.
func integrateRotation(q rl.Quaternion, w rl.Vector3, dt float32) rl.Quaternion {
	angle := rl.Vector3Length(w)
	if angle*dt < 1e-9 {
		return q
	}
	axis := rl.Vector3Scale(w, 1/angle)
	delta := rl.QuaternionFromAxisAngle(axis, angle*dt)
	return rl.QuaternionNormalize(rl.QuaternionMultiply(delta, q))
}

func dampingFactor(damping, dt float32) float32 {
	if damping <= 0 {
		return 1
	}
	if damping >= 1 {
		return 0
	}
	return float32(math.Pow(float64(1-damping), float64(dt)))
}
