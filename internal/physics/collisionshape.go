package physics

import (
	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("CollisionShape", func() engine.Serializable {
		return NewCollisionShape()
	})
}

// CollisionShape gives the rigid body on the same node one piece of
// collision geometry. Size, offset and triangles are in node space and are
// scaled by the node's world scale when the shape is built.
type CollisionShape struct {
	engine.BaseComponent

	shapeType dynamics.ShapeType
	size      rl.Vector3 // box: full extents, sphere: X is the diameter
	offset    rl.Vector3
	rotation  rl.Quaternion
	triangles []dynamics.Triangle

	shape         dynamics.Shape
	cachedScale   rl.Vector3
	dirtyGeometry bool
}

func NewCollisionShape() *CollisionShape {
	return &CollisionShape{
		shapeType:   dynamics.ShapeBox,
		size:        rl.Vector3One(),
		rotation:    rl.QuaternionIdentity(),
		cachedScale: rl.Vector3One(),
	}
}

// NewBoxCollisionShape returns a box of the given full size.
func NewBoxCollisionShape(size rl.Vector3) *CollisionShape {
	c := NewCollisionShape()
	c.size = size
	return c
}

// NewSphereCollisionShape returns a sphere of the given diameter.
func NewSphereCollisionShape(diameter float32) *CollisionShape {
	c := NewCollisionShape()
	c.shapeType = dynamics.ShapeSphere
	c.size = rl.Vector3{X: diameter, Y: diameter, Z: diameter}
	return c
}

// NewTriangleMeshCollisionShape returns a concave mesh shape.
func NewTriangleMeshCollisionShape(triangles []dynamics.Triangle) *CollisionShape {
	c := NewCollisionShape()
	c.shapeType = dynamics.ShapeTriangleMesh
	c.triangles = triangles
	return c
}

func (c *CollisionShape) ShapeType() dynamics.ShapeType { return c.shapeType }

func (c *CollisionShape) Size() rl.Vector3 { return c.size }

func (c *CollisionShape) Offset() rl.Vector3 { return c.offset }

func (c *CollisionShape) Rotation() rl.Quaternion { return c.rotation }

// Shape returns the built geometry, or nil before the shape was contributed.
func (c *CollisionShape) Shape() dynamics.Shape { return c.shape }

func (c *CollisionShape) SetBox(size rl.Vector3) {
	c.shapeType = dynamics.ShapeBox
	c.size = size
	c.rebuild()
}

func (c *CollisionShape) SetSphere(diameter float32) {
	c.shapeType = dynamics.ShapeSphere
	c.size = rl.Vector3{X: diameter, Y: diameter, Z: diameter}
	c.rebuild()
}

func (c *CollisionShape) SetTriangleMesh(triangles []dynamics.Triangle) {
	c.shapeType = dynamics.ShapeTriangleMesh
	c.triangles = triangles
	c.rebuild()
}

// SetOffset moves the shape relative to the node.
func (c *CollisionShape) SetOffset(position rl.Vector3, rotation rl.Quaternion) {
	c.offset = position
	c.rotation = rotation
	c.rebuild()
}

// ContributeTo implements ShapeCollaborator.
func (c *CollisionShape) ContributeTo(agg *ShapeAggregator) {
	if c.shape == nil {
		c.shape = c.build()
	}
	local := dynamics.NewTransform(rl.Vector3Multiply(c.offset, c.cachedScale), c.rotation)
	agg.AddShape(c.shape, local)
}

func (c *CollisionShape) build() dynamics.Shape {
	switch c.shapeType {
	case dynamics.ShapeSphere:
		return dynamics.NewSphereShape(c.size.X * c.cachedScale.X * 0.5)
	case dynamics.ShapeTriangleMesh:
		return dynamics.NewTriangleMeshShape(c.triangles, c.cachedScale)
	default:
		return dynamics.NewBoxShape(rl.Vector3Multiply(c.size, c.cachedScale))
	}
}

// rebuild drops the built geometry and lets the rigid body pick up a new one.
// The old geometry always leaves the aggregator before it is forgotten; during
// the threaded update the whole rebuild waits for the drain.
func (c *CollisionShape) rebuild() {
	if node := c.GetGameObject(); node != nil && node.Scene != nil && node.Scene.IsThreadedUpdate() {
		c.dirtyGeometry = true
		node.Scene.DelayedMarkedDirty(c, node)
		return
	}
	c.dirtyGeometry = false

	old := c.shape
	rb := c.rigidBody()
	switch {
	case rb == nil:
		c.shape = nil
	case !rb.HasBody():
		// Detached bodies keep their shapes; the next build contributes again
		if old != nil {
			rb.Shapes().RemoveShape(old)
		}
		c.shape = nil
	default:
		c.shape = nil
		rb.UpdateShape(old, c)
	}
}

func (c *CollisionShape) rigidBody() *RigidBody {
	return engine.GetComponent[*RigidBody](c.GetGameObject())
}

// OnNodeSet hands the shape to the node's rigid body, or takes it back when
// the shape leaves the node.
func (c *CollisionShape) OnNodeSet(g *engine.GameObject) {
	if g == nil {
		if old := c.GetGameObject(); old != nil {
			old.RemoveListener(c)
		}
		c.removeFromBody()
		return
	}
	g.AddListener(c)
	c.cachedScale = g.WorldScale()
	c.rebuild()
}

// OnMarkedDirty rebuilds the geometry when the node's world scale changed.
func (c *CollisionShape) OnMarkedDirty(g *engine.GameObject) {
	node := c.GetGameObject()
	if node == nil {
		return
	}
	if scene := node.Scene; scene != nil && scene.IsThreadedUpdate() {
		scene.DelayedMarkedDirty(c, g)
		return
	}
	scale := node.WorldScale()
	if rl.Vector3Equals(scale, c.cachedScale) && !c.dirtyGeometry {
		return
	}
	c.cachedScale = scale
	c.rebuild()
}

func (c *CollisionShape) removeFromBody() {
	if c.shape == nil {
		return
	}
	if rb := c.rigidBody(); rb != nil {
		rb.RemoveShape(c.shape)
	}
}

// Release implements engine.Releaser.
func (c *CollisionShape) Release() {
	c.removeFromBody()
	if g := c.GetGameObject(); g != nil {
		g.RemoveListener(c)
	}
	c.shape = nil
}

// TypeName implements engine.Serializable
func (c *CollisionShape) TypeName() string {
	return "CollisionShape"
}

// Serialize implements engine.Serializable
func (c *CollisionShape) Serialize() map[string]any {
	data := map[string]any{
		"type":      "CollisionShape",
		"shapeType": c.shapeType.String(),
		"size":      vec3Slice(c.size),
		"offset":    vec3Slice(c.offset),
		"rotation":  []float32{c.rotation.X, c.rotation.Y, c.rotation.Z, c.rotation.W},
	}
	if len(c.triangles) > 0 {
		tris := make([][]float32, len(c.triangles))
		for i, t := range c.triangles {
			tris[i] = []float32{
				t.V0.X, t.V0.Y, t.V0.Z,
				t.V1.X, t.V1.Y, t.V1.Z,
				t.V2.X, t.V2.Y, t.V2.Z,
			}
		}
		data["triangles"] = tris
	}
	return data
}

// Deserialize implements engine.Serializable
func (c *CollisionShape) Deserialize(data map[string]any) {
	if s, ok := data["shapeType"].(string); ok {
		if t, ok := parseShapeType(s); ok {
			c.shapeType = t
		}
	}
	if v, ok := toVec3(data["size"]); ok {
		c.size = v
	} else if f, ok := toFloat(data["size"]); ok {
		c.size = rl.Vector3{X: f, Y: f, Z: f}
	}
	if v, ok := toVec3(data["offset"]); ok {
		c.offset = v
	}
	if q, ok := toQuaternion(data["rotation"]); ok {
		c.rotation = q
	}
	if tris, ok := toTriangles(data["triangles"]); ok {
		c.triangles = tris
	}
	c.rebuild()
}

func parseShapeType(s string) (dynamics.ShapeType, bool) {
	for _, t := range []dynamics.ShapeType{dynamics.ShapeBox, dynamics.ShapeSphere, dynamics.ShapeTriangleMesh} {
		if t.String() == s {
			return t, true
		}
	}
	return dynamics.ShapeBox, false
}

func toFloats(value any) ([]float32, bool) {
	switch v := value.(type) {
	case []float32:
		return v, true
	case []any:
		out := make([]float32, len(v))
		for i, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func toQuaternion(value any) (rl.Quaternion, bool) {
	f, ok := toFloats(value)
	if !ok || len(f) != 4 {
		return rl.Quaternion{}, false
	}
	return rl.QuaternionNormalize(rl.Quaternion{X: f[0], Y: f[1], Z: f[2], W: f[3]}), true
}

// toTriangles reads a list of nine-number vertex triples.
func toTriangles(value any) ([]dynamics.Triangle, bool) {
	var rows []any
	switch v := value.(type) {
	case [][]float32:
		for _, r := range v {
			rows = append(rows, r)
		}
	case []any:
		rows = v
	default:
		return nil, false
	}
	tris := make([]dynamics.Triangle, 0, len(rows))
	for _, row := range rows {
		f, ok := toFloats(row)
		if !ok || len(f) != 9 {
			return nil, false
		}
		tris = append(tris, dynamics.Triangle{
			V0: rl.Vector3{X: f[0], Y: f[1], Z: f[2]},
			V1: rl.Vector3{X: f[3], Y: f[4], Z: f[5]},
			V2: rl.Vector3{X: f[6], Y: f[7], Z: f[8]},
		})
	}
	return tris, true
}
