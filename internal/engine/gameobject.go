package engine

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var nextUID atomic.Uint64

type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Scale    rl.Vector3
}

// DirtyListener is notified when the world transform of a node it listens
// to may have changed, either directly or through an ancestor.
type DirtyListener interface {
	OnMarkedDirty(g *GameObject)
}

// GameObject is a scene graph node. Transform holds the local transform
// relative to Parent; mutate it through the setters so listeners are told.
type GameObject struct {
	UID        uint64
	Name       string
	Tags       []string
	Transform  Transform
	Active     bool
	Scene      *Scene
	Parent     *GameObject
	Children   []*GameObject
	components []Component
	listeners  []DirtyListener
	started    bool
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:    nextUID.Add(1),
		Name:   name,
		Active: true,
		Transform: Transform{
			Position: rl.Vector3{},
			Rotation: rl.QuaternionIdentity(),
			Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		components: make([]Component, 0),
		Children:   make([]*GameObject, 0),
	}
}

// AddComponent attaches c. If the node already belongs to a scene the
// component is told immediately, otherwise when the node joins one.
func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
	if g.Scene != nil {
		if h, ok := c.(NodeSetHandler); ok {
			h.OnNodeSet(g)
		}
	}
}

// RemoveComponent detaches c from the node. The component itself is left
// alive; it only loses its node.
func (g *GameObject) RemoveComponent(c Component) {
	for i, existing := range g.components {
		if existing != c {
			continue
		}
		g.components = append(g.components[:i], g.components[i+1:]...)
		if h, ok := c.(NodeSetHandler); ok {
			h.OnNodeSet(nil)
		}
		c.SetGameObject(nil)
		return
	}
}

// GetComponent returns the first component of type T, or the zero value.
func GetComponent[T any](g *GameObject) T {
	var zero T
	if g == nil {
		return zero
	}
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

// GetComponents returns every component implementing T, in attach order.
func GetComponents[T any](g *GameObject) []T {
	if g == nil {
		return nil
	}
	var result []T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

func (g *GameObject) Update(deltaTime float32) {
	if !g.IsActiveInHierarchy() {
		return
	}
	for _, c := range g.components {
		c.Update(deltaTime)
	}
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SetActive changes the node's own active flag and tells every component in
// the subtree whose effective state may have changed.
func (g *GameObject) SetActive(active bool) {
	if g.Active == active {
		return
	}
	g.Active = active
	g.notifyEnabled()
}

func (g *GameObject) notifyEnabled() {
	for _, c := range g.components {
		if h, ok := c.(EnabledHandler); ok {
			h.OnSetEnabled()
		}
	}
	for _, child := range g.Children {
		child.notifyEnabled()
	}
}

// IsActiveInHierarchy is true when the node and all its ancestors are active.
func (g *GameObject) IsActiveInHierarchy() bool {
	for n := g; n != nil; n = n.Parent {
		if !n.Active {
			return false
		}
	}
	return true
}

// AddChild reparents child under g, keeping its local transform.
func (g *GameObject) AddChild(child *GameObject) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = g
	g.Children = append(g.Children, child)
	child.MarkDirty()
}

func (g *GameObject) RemoveChild(child *GameObject) {
	for i, c := range g.Children {
		if c == child {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			child.Parent = nil
			child.MarkDirty()
			return
		}
	}
}

// Destroy releases the subtree's components, children first, and removes the
// node from its parent and scene.
func (g *GameObject) Destroy() {
	for len(g.Children) > 0 {
		g.Children[len(g.Children)-1].Destroy()
	}
	for i := len(g.components) - 1; i >= 0; i-- {
		if r, ok := g.components[i].(Releaser); ok {
			r.Release()
		}
	}
	if g.Parent != nil {
		g.Parent.RemoveChild(g)
	}
	if g.Scene != nil {
		g.Scene.RemoveGameObject(g)
	}
	g.listeners = nil
}

// AddListener registers l for dirty notifications on this node.
func (g *GameObject) AddListener(l DirtyListener) {
	for _, existing := range g.listeners {
		if existing == l {
			return
		}
	}
	g.listeners = append(g.listeners, l)
}

func (g *GameObject) RemoveListener(l DirtyListener) {
	for i, existing := range g.listeners {
		if existing == l {
			g.listeners = append(g.listeners[:i], g.listeners[i+1:]...)
			return
		}
	}
}

// MarkDirty notifies the listeners of this node and of every descendant.
func (g *GameObject) MarkDirty() {
	// Listeners may unregister themselves while being notified
	listeners := append([]DirtyListener(nil), g.listeners...)
	for _, l := range listeners {
		l.OnMarkedDirty(g)
	}
	for _, child := range g.Children {
		child.MarkDirty()
	}
}

func (g *GameObject) SetPosition(p rl.Vector3) {
	g.Transform.Position = p
	g.MarkDirty()
}

func (g *GameObject) SetRotation(q rl.Quaternion) {
	g.Transform.Rotation = q
	g.MarkDirty()
}

func (g *GameObject) SetScale(s rl.Vector3) {
	g.Transform.Scale = s
	g.MarkDirty()
}

// SetPositionRotation sets both local position and rotation with a single notification.
func (g *GameObject) SetPositionRotation(p rl.Vector3, q rl.Quaternion) {
	g.Transform.Position = p
	g.Transform.Rotation = q
	g.MarkDirty()
}

func (g *GameObject) WorldPosition() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Position
	}
	parentPos := g.Parent.WorldPosition()
	parentRot := g.Parent.WorldRotation()
	parentScale := g.Parent.WorldScale()

	scaled := rl.Vector3Multiply(g.Transform.Position, parentScale)
	return rl.Vector3Add(parentPos, rl.Vector3RotateByQuaternion(scaled, parentRot))
}

func (g *GameObject) WorldRotation() rl.Quaternion {
	if g.Parent == nil {
		return g.Transform.Rotation
	}
	return rl.QuaternionMultiply(g.Parent.WorldRotation(), g.Transform.Rotation)
}

func (g *GameObject) WorldScale() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Scale
	}
	return rl.Vector3Multiply(g.Parent.WorldScale(), g.Transform.Scale)
}

// SetWorldPosition moves the node so that its world position becomes p.
func (g *GameObject) SetWorldPosition(p rl.Vector3) {
	g.Transform.Position = g.worldToLocalPosition(p)
	g.MarkDirty()
}

// SetWorldRotation rotates the node so that its world rotation becomes q.
func (g *GameObject) SetWorldRotation(q rl.Quaternion) {
	g.Transform.Rotation = g.worldToLocalRotation(q)
	g.MarkDirty()
}

// SetWorldTransform sets world position and rotation with a single notification.
func (g *GameObject) SetWorldTransform(p rl.Vector3, q rl.Quaternion) {
	g.Transform.Position = g.worldToLocalPosition(p)
	g.Transform.Rotation = g.worldToLocalRotation(q)
	g.MarkDirty()
}

func (g *GameObject) worldToLocalPosition(p rl.Vector3) rl.Vector3 {
	if g.Parent == nil {
		return p
	}
	rel := rl.Vector3Subtract(p, g.Parent.WorldPosition())
	rel = rl.Vector3RotateByQuaternion(rel, rl.QuaternionInvert(g.Parent.WorldRotation()))
	ps := g.Parent.WorldScale()
	return rl.Vector3{X: safeDiv(rel.X, ps.X), Y: safeDiv(rel.Y, ps.Y), Z: safeDiv(rel.Z, ps.Z)}
}

func (g *GameObject) worldToLocalRotation(q rl.Quaternion) rl.Quaternion {
	if g.Parent == nil {
		return q
	}
	return rl.QuaternionNormalize(rl.QuaternionMultiply(rl.QuaternionInvert(g.Parent.WorldRotation()), q))
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}
