package physics

import (
	"math"

	"rigidsync/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("SmoothedTransform", func() engine.Serializable {
		return NewSmoothedTransform()
	})
}

const (
	DefaultSmoothingConstant = 50.0
	DefaultSnapThreshold     = 5.0
)

// SmoothedTransform eases its node towards a target world transform instead
// of jumping there. When it shares a node with a RigidBody the simulation
// writes targets here and the node follows over the next frames.
type SmoothedTransform struct {
	engine.BaseComponent

	// SmoothingConstant sets how fast the node converges; higher is faster.
	SmoothingConstant float32
	// SnapThreshold is the distance above which the node jumps to the target.
	SnapThreshold float32

	targetPosition  rl.Vector3
	targetRotation  rl.Quaternion
	smoothPosition  bool
	smoothRotation  bool
	positionChanged engine.Event
	rotationChanged engine.Event
}

func NewSmoothedTransform() *SmoothedTransform {
	return &SmoothedTransform{
		SmoothingConstant: DefaultSmoothingConstant,
		SnapThreshold:     DefaultSnapThreshold,
		targetRotation:    rl.QuaternionIdentity(),
	}
}

func (s *SmoothedTransform) TargetWorldPosition() rl.Vector3 { return s.targetPosition }

func (s *SmoothedTransform) TargetWorldRotation() rl.Quaternion { return s.targetRotation }

func (s *SmoothedTransform) TargetPositionChanged() *engine.Event { return &s.positionChanged }

func (s *SmoothedTransform) TargetRotationChanged() *engine.Event { return &s.rotationChanged }

// IsInProgress reports whether the node is still moving towards the target.
func (s *SmoothedTransform) IsInProgress() bool {
	return s.smoothPosition || s.smoothRotation
}

func (s *SmoothedTransform) SetTargetWorldPosition(p rl.Vector3) {
	s.targetPosition = p
	s.smoothPosition = true
	s.positionChanged.Invoke()
}

func (s *SmoothedTransform) SetTargetWorldRotation(q rl.Quaternion) {
	s.targetRotation = q
	s.smoothRotation = true
	s.rotationChanged.Invoke()
}

// OnNodeSet starts from the node's transform and hands control of the node
// to this component if a rigid body is already simulating it.
func (s *SmoothedTransform) OnNodeSet(g *engine.GameObject) {
	if g == nil {
		if rb := engine.GetComponent[*RigidBody](s.GetGameObject()); rb != nil && rb.smoothing == SmoothingCollaborator(s) {
			rb.detachSmoothing()
		}
		return
	}
	s.targetPosition = g.WorldPosition()
	s.targetRotation = g.WorldRotation()
	s.smoothPosition = false
	s.smoothRotation = false
	if rb := engine.GetComponent[*RigidBody](g); rb != nil && rb.HasBody() {
		rb.attachSmoothing(s)
	}
}

// Release implements engine.Releaser.
func (s *SmoothedTransform) Release() {
	s.OnNodeSet(nil)
}

// Update moves the node a step closer to the target.
func (s *SmoothedTransform) Update(deltaTime float32) {
	node := s.GetGameObject()
	if node == nil || !s.IsInProgress() {
		return
	}
	constant := 1 - float32(math.Pow(2, float64(-deltaTime*s.SmoothingConstant)))
	constant = min(max(constant, 0), 1)

	position := node.WorldPosition()
	rotation := node.WorldRotation()

	if s.smoothPosition {
		delta := rl.Vector3Distance(position, s.targetPosition)
		if delta > s.SnapThreshold {
			position = s.targetPosition
		} else {
			position = rl.Vector3Lerp(position, s.targetPosition, constant)
		}
		if rl.Vector3Distance(position, s.targetPosition) < 1e-4 {
			position = s.targetPosition
			s.smoothPosition = false
		}
	}

	if s.smoothRotation {
		rotation = rl.QuaternionSlerp(rotation, s.targetRotation, constant)
		if quaternionsClose(rotation, s.targetRotation) {
			rotation = s.targetRotation
			s.smoothRotation = false
		}
	}

	node.SetWorldTransform(position, rotation)
}

// quaternionsClose treats q and -q as the same rotation.
func quaternionsClose(a, b rl.Quaternion) bool {
	dot := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	return 1-float32(math.Abs(float64(dot))) < 1e-6
}

// TypeName implements engine.Serializable
func (s *SmoothedTransform) TypeName() string {
	return "SmoothedTransform"
}

// Serialize implements engine.Serializable
func (s *SmoothedTransform) Serialize() map[string]any {
	return map[string]any{
		"type":          "SmoothedTransform",
		"smoothing":     s.SmoothingConstant,
		"snapThreshold": s.SnapThreshold,
	}
}

// Deserialize implements engine.Serializable
func (s *SmoothedTransform) Deserialize(data map[string]any) {
	if f, ok := toFloat(data["smoothing"]); ok {
		s.SmoothingConstant = f
	}
	if f, ok := toFloat(data["snapThreshold"]); ok {
		s.SnapThreshold = f
	}
}
