package dynamics

import rl "github.com/gen2brain/raylib-go/raylib"

// JointType names the kind of joint.
type JointType int

const (
	JointPoint JointType = iota
	JointHinge
	JointSlider
	JointConeTwist
)

// Joint ties two bodies together at pivot frames expressed relative to each
// body's center of mass. BodyB may be nil to anchor BodyA to the world, in
// which case FrameB is in world space. The world stores joints for the
// constraint solver; it does not solve them.
type Joint struct {
	Type   JointType
	BodyA  *Body
	BodyB  *Body
	FrameA Transform
	FrameB Transform

	world *World
}

func NewJoint(t JointType, a, b *Body) *Joint {
	return &Joint{
		Type:   t,
		BodyA:  a,
		BodyB:  b,
		FrameA: IdentityTransform(),
		FrameB: IdentityTransform(),
	}
}

// SetFrames replaces both pivot frames.
func (j *Joint) SetFrames(a, b Transform) {
	j.FrameA = a
	j.FrameB = b
}

// WorldPivotA returns pivot A in world space.
func (j *Joint) WorldPivotA() rl.Vector3 {
	return j.BodyA.WorldTransform().Apply(j.FrameA.Position)
}

func (j *Joint) IsInWorld() bool { return j.world != nil }
