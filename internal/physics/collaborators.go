package physics

import (
	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeCollaborator supplies collision geometry to a rigid body on the same node.
type ShapeCollaborator interface {
	ContributeTo(agg *ShapeAggregator)
}

// ConstraintCollaborator is a joint attached to a rigid body.
type ConstraintCollaborator interface {
	// OnBodyReady is called once the body it was waiting for exists.
	OnBodyReady()
	// ReapplyLocalFrames re-expresses the joint frames after the body's center
	// of mass moved.
	ReapplyLocalFrames()
	// ReleaseConstraint frees the underlying joint.
	ReleaseConstraint()
}

// SmoothingCollaborator takes simulated transforms as targets and eases the
// node towards them. While one is attached it owns the node transform.
type SmoothingCollaborator interface {
	SetTargetWorldPosition(p rl.Vector3)
	SetTargetWorldRotation(q rl.Quaternion)
	TargetWorldPosition() rl.Vector3
	TargetWorldRotation() rl.Quaternion
	TargetPositionChanged() *engine.Event
	TargetRotationChanged() *engine.Event
}
