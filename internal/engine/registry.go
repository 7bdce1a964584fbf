package engine

import (
	"fmt"
	"sort"
)

// Serializable is a component that can be created by name and described as
// plain key/value data.
type Serializable interface {
	Component
	TypeName() string
	Serialize() map[string]any
	Deserialize(data map[string]any)
}

// ComponentFactory creates an empty component with default values.
type ComponentFactory func() Serializable

var componentRegistry = map[string]ComponentFactory{}

// RegisterComponent makes a component type creatable by name.
func RegisterComponent(name string, factory ComponentFactory) {
	if _, exists := componentRegistry[name]; exists {
		panic(fmt.Sprintf("component %q already registered", name))
	}
	componentRegistry[name] = factory
}

// CreateComponent creates a registered component and applies data to it.
func CreateComponent(name string, data map[string]any) (Serializable, error) {
	factory, ok := componentRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown component type %q", name)
	}
	c := factory()
	if data != nil {
		c.Deserialize(data)
	}
	return c, nil
}

// RegisteredComponents returns the registered names in sorted order.
func RegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
