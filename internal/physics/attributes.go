package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TypeName implements engine.Serializable
func (r *RigidBody) TypeName() string {
	return "RigidBody"
}

// Serialize implements engine.Serializable
func (r *RigidBody) Serialize() map[string]any {
	return map[string]any{
		"type":                 "RigidBody",
		"mass":                 r.mass,
		"friction":             r.props.friction,
		"rollingFriction":      r.props.rollingFriction,
		"restitution":          r.props.restitution,
		"linearVelocity":       vec3Slice(r.LinearVelocity()),
		"angularVelocity":      vec3Slice(r.AngularVelocity()),
		"linearFactor":         vec3Slice(r.props.linearFactor),
		"angularFactor":        vec3Slice(r.props.angularFactor),
		"linearDamping":        r.props.linearDamping,
		"angularDamping":       r.props.angularDamping,
		"linearRestThreshold":  r.props.linearRestThreshold,
		"angularRestThreshold": r.props.angularRestThreshold,
		"contactThreshold":     r.props.contactThreshold,
		"ccdRadius":            r.props.ccdRadius,
		"ccdMotionThreshold":   r.props.ccdMotionThreshold,
		"collisionLayer":       r.collisionLayer,
		"collisionMask":        r.collisionMask,
		"collisionEventMode":   r.collisionEventMode.String(),
		"useGravity":           r.useGravity,
		"gravityOverride":      vec3Slice(r.gravityOverride),
		"isKinematic":          r.kinematic,
		"isPhantom":            r.phantom,
	}
}

// Deserialize implements engine.Serializable. Properties that need a rebuild
// are collected and applied once at the end.
func (r *RigidBody) Deserialize(data map[string]any) {
	for name, value := range data {
		r.SetAttribute(name, value)
	}
	r.ApplyAttributes()
}

// SetAttribute sets one property by name, reporting whether the name and
// value were understood. Live properties go through their setters. Mass,
// kinematic, phantom, layer and mask are stored and mark the body for a
// rebuild in ApplyAttributes.
func (r *RigidBody) SetAttribute(name string, value any) bool {
	switch name {
	case "mass":
		if f, ok := toFloat(value); ok {
			r.mass = max(f, 0)
			r.readdBody = true
			return true
		}
	case "isKinematic":
		if b, ok := value.(bool); ok {
			r.kinematic = b
			r.readdBody = true
			return true
		}
	case "isPhantom":
		if b, ok := value.(bool); ok {
			r.phantom = b
			r.readdBody = true
			return true
		}
	case "collisionLayer":
		if u, ok := toUint32(value); ok {
			r.collisionLayer = u
			r.readdBody = true
			return true
		}
	case "collisionMask":
		if u, ok := toUint32(value); ok {
			r.collisionMask = u
			r.readdBody = true
			return true
		}
	case "friction":
		if f, ok := toFloat(value); ok {
			r.SetFriction(f)
			return true
		}
	case "rollingFriction":
		if f, ok := toFloat(value); ok {
			r.SetRollingFriction(f)
			return true
		}
	case "restitution":
		if f, ok := toFloat(value); ok {
			r.SetRestitution(f)
			return true
		}
	case "linearDamping":
		if f, ok := toFloat(value); ok {
			r.SetLinearDamping(f)
			return true
		}
	case "angularDamping":
		if f, ok := toFloat(value); ok {
			r.SetAngularDamping(f)
			return true
		}
	case "linearRestThreshold":
		if f, ok := toFloat(value); ok {
			r.SetLinearRestThreshold(f)
			return true
		}
	case "angularRestThreshold":
		if f, ok := toFloat(value); ok {
			r.SetAngularRestThreshold(f)
			return true
		}
	case "contactThreshold":
		if f, ok := toFloat(value); ok {
			r.SetContactProcessingThreshold(f)
			return true
		}
	case "ccdRadius":
		if f, ok := toFloat(value); ok {
			r.SetCcdRadius(f)
			return true
		}
	case "ccdMotionThreshold":
		if f, ok := toFloat(value); ok {
			r.SetCcdMotionThreshold(f)
			return true
		}
	case "linearVelocity":
		if v, ok := toVec3(value); ok {
			r.SetLinearVelocity(v)
			return true
		}
	case "angularVelocity":
		if v, ok := toVec3(value); ok {
			r.SetAngularVelocity(v)
			return true
		}
	case "linearFactor":
		if v, ok := toVec3(value); ok {
			r.SetLinearFactor(v)
			return true
		}
	case "angularFactor":
		if v, ok := toVec3(value); ok {
			r.SetAngularFactor(v)
			return true
		}
	case "gravityOverride":
		if v, ok := toVec3(value); ok {
			r.SetGravityOverride(v)
			return true
		}
	case "useGravity":
		if b, ok := value.(bool); ok {
			r.SetUseGravity(b)
			return true
		}
	case "collisionEventMode":
		switch m := value.(type) {
		case string:
			if mode, ok := ParseCollisionEventMode(m); ok {
				r.SetCollisionEventMode(mode)
				return true
			}
		case CollisionEventMode:
			r.SetCollisionEventMode(m)
			return true
		}
	case "type":
		return true
	}
	return false
}

func vec3Slice(v rl.Vector3) []float32 {
	return []float32{v.X, v.Y, v.Z}
}

func toFloat(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	case int64:
		return float32(v), true
	case uint32:
		return float32(v), true
	}
	return 0, false
}

func toUint32(value any) (uint32, bool) {
	switch v := value.(type) {
	case uint32:
		return v, true
	case int:
		if v >= 0 && uint64(v) <= math.MaxUint32 {
			return uint32(v), true
		}
	case int64:
		if v >= 0 && v <= math.MaxUint32 {
			return uint32(v), true
		}
	case uint64:
		if v <= math.MaxUint32 {
			return uint32(v), true
		}
	case float64:
		if v >= 0 && v <= math.MaxUint32 && v == math.Trunc(v) {
			return uint32(v), true
		}
	}
	return 0, false
}

// toVec3 accepts a three element sequence as decoded from YAML or JSON, or
// the []float32 produced by Serialize.
func toVec3(value any) (rl.Vector3, bool) {
	switch v := value.(type) {
	case rl.Vector3:
		return v, true
	case []float32:
		if len(v) == 3 {
			return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}, true
		}
	case []any:
		if len(v) != 3 {
			return rl.Vector3{}, false
		}
		var out [3]float32
		for i, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return rl.Vector3{}, false
			}
			out[i] = f
		}
		return rl.Vector3{X: out[0], Y: out[1], Z: out[2]}, true
	}
	return rl.Vector3{}, false
}
