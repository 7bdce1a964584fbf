package engine

type Component interface {
	Start()
	Update(deltaTime float32)
	SetGameObject(g *GameObject)
	GetGameObject() *GameObject
}

// NodeSetHandler is implemented by components that need to react when they
// become attached to a node inside a scene, or lose their node (g == nil).
type NodeSetHandler interface {
	OnNodeSet(g *GameObject)
}

// EnabledHandler is implemented by components that react to changes of their
// own enabled flag or of their node's active state.
type EnabledHandler interface {
	OnSetEnabled()
}

// Releaser is implemented by components holding resources that must be freed
// when their node is destroyed.
type Releaser interface {
	Release()
}

// CollisionHandler is implemented by components that want to receive collision callbacks.
type CollisionHandler interface {
	OnCollisionEnter(other *GameObject)
	OnCollisionExit(other *GameObject)
}

// BaseComponent provides default implementation for Component interface
type BaseComponent struct {
	gameObject *GameObject
	disabled   bool
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Update(deltaTime float32) {}

func (b *BaseComponent) SetGameObject(g *GameObject) {
	b.gameObject = g
}

func (b *BaseComponent) GetGameObject() *GameObject {
	return b.gameObject
}

// IsEnabled reports the component's own flag.
func (b *BaseComponent) IsEnabled() bool {
	return !b.disabled
}

// SetEnabledFlag stores the flag without notifying anyone. Components that
// care about the change wrap it and react themselves.
func (b *BaseComponent) SetEnabledFlag(enabled bool) {
	b.disabled = !enabled
}

// IsEnabledEffective is true when the component is enabled and its node is
// active in the hierarchy.
func (b *BaseComponent) IsEnabledEffective() bool {
	return !b.disabled && b.gameObject != nil && b.gameObject.IsActiveInHierarchy()
}
