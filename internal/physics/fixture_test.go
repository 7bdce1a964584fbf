package physics

import (
	"testing"

	"rigidsync/internal/engine"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var approx = cmpopts.EquateApprox(0, 1e-4)

func assertVec(t *testing.T, what string, want, got rl.Vector3) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", what, diff)
	}
}

func assertQuat(t *testing.T, what string, want, got rl.Quaternion) {
	t.Helper()
	dot := want.X*got.X + want.Y*got.Y + want.Z*got.Z + want.W*got.W
	if dot < 0 {
		dot = -dot
	}
	if dot < 0.9999 {
		t.Errorf("%s mismatch: want %v, got %v", what, want, got)
	}
}

type fixture struct {
	scene *engine.Scene
	world *PhysicsWorld
}

func newFixture() *fixture {
	scene := engine.NewScene("physics")
	world := NewPhysicsWorld()
	scene.AddSceneComponent(world)
	return &fixture{scene: scene, world: world}
}

// spawn adds a node at pos carrying a rigid body of the given mass plus any
// extra components, optionally under parent.
func (f *fixture) spawn(name string, pos rl.Vector3, mass float32, parent *engine.GameObject, extra ...engine.Component) (*engine.GameObject, *RigidBody) {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	rb := NewRigidBody()
	rb.SetMass(mass)
	g.AddComponent(rb)
	for _, c := range extra {
		g.AddComponent(c)
	}
	if parent != nil {
		parent.AddChild(g)
	}
	f.scene.AddGameObject(g)
	return g, rb
}

// step advances the world by one variable step of dt.
func (f *fixture) step(dt float32) {
	f.world.SetMaxSubSteps(0)
	f.world.Update(dt)
}

type collisionRecorder struct {
	engine.BaseComponent
	entered []string
	exited  []string
}

func (c *collisionRecorder) OnCollisionEnter(other *engine.GameObject) {
	c.entered = append(c.entered, other.Name)
}

func (c *collisionRecorder) OnCollisionExit(other *engine.GameObject) {
	c.exited = append(c.exited, other.Name)
}

// stubConstraint records the calls a rigid body makes on its constraints.
type stubConstraint struct {
	engine.BaseComponent
	calls *[]string
	name  string
}

func (s *stubConstraint) OnBodyReady()        { *s.calls = append(*s.calls, s.name+":ready") }
func (s *stubConstraint) ReapplyLocalFrames() { *s.calls = append(*s.calls, s.name+":frames") }
func (s *stubConstraint) ReleaseConstraint()  { *s.calls = append(*s.calls, s.name+":release") }
