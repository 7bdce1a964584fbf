package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPhysicsWorld means the node's scene has no PhysicsWorld component.
	ErrNoPhysicsWorld = errors.New("no physics world component in scene")
	// ErrNodeDetached means the node is not part of any scene.
	ErrNodeDetached = errors.New("node is detached from scene")
)

// ConfigurationError is returned when a physics component is attached to a
// node that cannot reach a physics world. The component stays inert.
type ConfigurationError struct {
	Component string
	Node      string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s on %q: %v", e.Component, e.Node, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
