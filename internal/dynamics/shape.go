package dynamics

import rl "github.com/gen2brain/raylib-go/raylib"

// ShapeType identifies the geometry behind a Shape.
type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapeTriangleMesh
	ShapeCompound
)

func (t ShapeType) String() string {
	switch t {
	case ShapeBox:
		return "Box"
	case ShapeSphere:
		return "Sphere"
	case ShapeTriangleMesh:
		return "TriangleMesh"
	case ShapeCompound:
		return "Compound"
	}
	return "Unknown"
}

// Shape is collision geometry expressed in its own local frame.
type Shape interface {
	Type() ShapeType
	// LocalInertia returns the diagonal inertia of the shape at the given mass.
	LocalInertia(mass float32) rl.Vector3
	// Bounds returns the world AABB under t, or false for empty geometry.
	Bounds(t Transform) (AABB, bool)
}

type BoxShape struct {
	HalfExtents rl.Vector3
}

func NewBoxShape(size rl.Vector3) *BoxShape {
	return &BoxShape{HalfExtents: rl.Vector3Scale(size, 0.5)}
}

func (b *BoxShape) Type() ShapeType { return ShapeBox }

func (b *BoxShape) LocalInertia(mass float32) rl.Vector3 {
	return boxInertia(mass, b.HalfExtents)
}

func (b *BoxShape) Bounds(t Transform) (AABB, bool) {
	return NewAABBFromCenter(t.Position, orientedExtents(b.HalfExtents, t.Rotation)), true
}

type SphereShape struct {
	Radius float32
}

func NewSphereShape(radius float32) *SphereShape {
	return &SphereShape{Radius: radius}
}

func (s *SphereShape) Type() ShapeType { return ShapeSphere }

func (s *SphereShape) LocalInertia(mass float32) rl.Vector3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return rl.Vector3{X: i, Y: i, Z: i}
}

func (s *SphereShape) Bounds(t Transform) (AABB, bool) {
	r := rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return NewAABBFromCenter(t.Position, r), true
}

// Triangle is a single mesh triangle in shape-local space.
type Triangle struct {
	V0, V1, V2 rl.Vector3
}

// TriangleMeshShape is concave static geometry with a per-axis scale.
type TriangleMeshShape struct {
	Triangles []Triangle
	Scale     rl.Vector3
}

func NewTriangleMeshShape(triangles []Triangle, scale rl.Vector3) *TriangleMeshShape {
	return &TriangleMeshShape{Triangles: triangles, Scale: scale}
}

func (m *TriangleMeshShape) Type() ShapeType { return ShapeTriangleMesh }

// LocalInertia is zero: concave meshes are only meaningful on static bodies.
func (m *TriangleMeshShape) LocalInertia(mass float32) rl.Vector3 {
	return rl.Vector3Zero()
}

func (m *TriangleMeshShape) Bounds(t Transform) (AABB, bool) {
	if len(m.Triangles) == 0 {
		return AABB{}, false
	}
	first := t.Apply(rl.Vector3Multiply(m.Triangles[0].V0, m.Scale))
	box := AABB{Min: first, Max: first}
	for _, tri := range m.Triangles {
		for _, v := range [3]rl.Vector3{tri.V0, tri.V1, tri.V2} {
			p := t.Apply(rl.Vector3Multiply(v, m.Scale))
			box.Min = rl.Vector3Min(box.Min, p)
			box.Max = rl.Vector3Max(box.Max, p)
		}
	}
	return box, true
}
