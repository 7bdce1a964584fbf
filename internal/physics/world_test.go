package physics

import (
	"testing"

	"rigidsync/internal/dynamics"

	"github.com/google/go-cmp/cmp"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// touchingPair spawns a static floor and a weightless ball resting in it.
func touchingPair(f *fixture) (floor, ball *RigidBody, floorRec, ballRec *collisionRecorder) {
	floorRec, ballRec = &collisionRecorder{}, &collisionRecorder{}
	_, floor = f.spawn("floor", rl.Vector3Zero(), 0, nil,
		NewBoxCollisionShape(rl.Vector3{X: 10, Y: 1, Z: 10}), floorRec)
	_, ball = f.spawn("ball", rl.Vector3{Y: 0.9}, 1, nil, NewSphereCollisionShape(1), ballRec)
	ball.SetUseGravity(false)
	return floor, ball, floorRec, ballRec
}

func TestCollisionEnterAndExit(t *testing.T) {
	f := newFixture()
	floor, ball, floorRec, ballRec := touchingPair(f)

	f.step(1.0 / 60)
	f.step(1.0 / 60)

	if diff := cmp.Diff([]string{"ball"}, floorRec.entered); diff != "" {
		t.Errorf("floor enter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"floor"}, ballRec.entered); diff != "" {
		t.Errorf("ball enter mismatch (-want +got):\n%s", diff)
	}
	if got := ball.CollidingBodies(); len(got) != 1 || got[0] != floor {
		t.Errorf("Expected the ball to touch the floor, got %v", got)
	}

	ball.SetPosition(rl.Vector3{Y: 5})
	f.step(1.0 / 60)

	if diff := cmp.Diff([]string{"ball"}, floorRec.exited); diff != "" {
		t.Errorf("floor exit mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"floor"}, ballRec.exited); diff != "" {
		t.Errorf("ball exit mismatch (-want +got):\n%s", diff)
	}
	if len(ball.CollidingBodies()) != 0 {
		t.Error("Expected no colliding bodies after separation")
	}
}

func TestNeverModeSuppressesEvents(t *testing.T) {
	f := newFixture()
	_, ball, floorRec, ballRec := touchingPair(f)
	ball.SetCollisionEventMode(CollisionNever)

	f.step(1.0 / 60)

	if len(floorRec.entered)+len(ballRec.entered) != 0 {
		t.Errorf("Expected no events, got %v / %v", floorRec.entered, ballRec.entered)
	}
	if len(ball.CollidingBodies()) != 0 {
		t.Error("Suppressed pairs should not be reported as colliding")
	}
}

func TestSleepingPairNeedsAlwaysMode(t *testing.T) {
	f := newFixture()
	recA, recB := &collisionRecorder{}, &collisionRecorder{}
	_, a := f.spawn("a", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1), recA)
	_, b := f.spawn("b", rl.Vector3{X: 0.5}, 1, nil, NewSphereCollisionShape(1), recB)
	a.Body().ForceActivationState(dynamics.IslandSleeping)
	b.Body().ForceActivationState(dynamics.IslandSleeping)

	f.step(1.0 / 60)
	if len(recA.entered) != 0 || len(recB.entered) != 0 {
		t.Fatalf("Sleeping WhenActive pair should be silent, got %v / %v", recA.entered, recB.entered)
	}

	a.SetCollisionEventMode(CollisionAlways)
	f.step(1.0 / 60)

	if diff := cmp.Diff([]string{"b"}, recA.entered); diff != "" {
		t.Errorf("a enter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, recB.entered); diff != "" {
		t.Errorf("b enter mismatch (-want +got):\n%s", diff)
	}
}

func TestWantsCollisionEvents(t *testing.T) {
	body := func(mass float32, mode CollisionEventMode) *RigidBody {
		rb := NewRigidBody()
		rb.mass = mass
		rb.collisionEventMode = mode
		return rb
	}
	tests := []struct {
		name string
		a, b *RigidBody
		want bool
	}{
		{"both massless", body(0, CollisionAlways), body(0, CollisionAlways), false},
		{"one never", body(1, CollisionAlways), body(1, CollisionNever), false},
		{"both inactive", body(1, CollisionWhenActive), body(1, CollisionWhenActive), false},
		{"always overrides inactive", body(1, CollisionAlways), body(1, CollisionWhenActive), true},
		{"massless with dynamic", body(0, CollisionAlways), body(1, CollisionAlways), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wantsCollisionEvents(tt.a, tt.b); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDisabledBodySendsExit(t *testing.T) {
	f := newFixture()
	_, ball, floorRec, _ := touchingPair(f)
	f.step(1.0 / 60)

	ball.SetEnabled(false)
	f.step(1.0 / 60)

	if diff := cmp.Diff([]string{"ball"}, floorRec.exited); diff != "" {
		t.Errorf("floor exit mismatch (-want +got):\n%s", diff)
	}
}

func TestReleasedBodyDropsPairs(t *testing.T) {
	f := newFixture()
	floor, ball, floorRec, _ := touchingPair(f)
	f.step(1.0 / 60)

	ball.Release()
	f.step(1.0 / 60)

	if len(floorRec.exited) != 0 {
		t.Errorf("Released bodies leave silently, got %v", floorRec.exited)
	}
	if len(floor.CollidingBodies()) != 0 {
		t.Error("Expected the pair to be forgotten")
	}
}

func TestAutoSubSteps(t *testing.T) {
	f := newFixture()
	f.world.SetFPS(10)
	_, rb := f.spawn("ball", rl.Vector3{Y: 100}, 1, nil, NewSphereCollisionShape(1))

	f.world.Update(0.25)

	// Two fixed steps of 0.1, the remainder carries over
	assertVec(t, "velocity", rl.Vector3{Y: -9.81 * 0.2}, rb.LinearVelocity())
}

func TestMaxSubStepsClamps(t *testing.T) {
	f := newFixture()
	f.world.SetFPS(10)
	f.world.SetMaxSubSteps(1)
	_, rb := f.spawn("ball", rl.Vector3{Y: 100}, 1, nil, NewSphereCollisionShape(1))

	f.world.Update(0.35)

	assertVec(t, "velocity", rl.Vector3{Y: -0.981}, rb.LinearVelocity())
}

func TestWorldSettingsClamped(t *testing.T) {
	w := NewPhysicsWorld()

	w.SetFPS(0)
	if w.FPS() != 1 {
		t.Errorf("Expected FPS 1, got %d", w.FPS())
	}
	w.SetMaxNetworkAngularVelocity(0)
	if w.MaxNetworkAngularVelocity() != 1 {
		t.Errorf("Expected 1, got %f", w.MaxNetworkAngularVelocity())
	}
	w.SetMaxNetworkAngularVelocity(1e6)
	if w.MaxNetworkAngularVelocity() != 32767 {
		t.Errorf("Expected 32767, got %f", w.MaxNetworkAngularVelocity())
	}
	if w.MaxSubSteps() != -1 || !w.InternalEdge() {
		t.Error("Unexpected defaults")
	}
}

func TestSetInternalEdgeRefreshesMeshes(t *testing.T) {
	f := newFixture()
	mesh := NewTriangleMeshCollisionShape([]dynamics.Triangle{
		{V0: rl.Vector3{}, V1: rl.Vector3{X: 1}, V2: rl.Vector3{Z: 1}},
	})
	_, rb := f.spawn("terrain", rl.Vector3Zero(), 0, nil, mesh)

	if rb.Body().CollisionFlags()&dynamics.CollisionCustomMaterialCallback == 0 {
		t.Fatal("Expected the custom material flag with internal edge on")
	}

	f.world.SetInternalEdge(false)

	if rb.Body().CollisionFlags()&dynamics.CollisionCustomMaterialCallback != 0 {
		t.Error("Expected the flag to be cleared")
	}
}

func TestRemovingWorldReleasesBodies(t *testing.T) {
	f := newFixture()
	_, a := f.spawn("a", rl.Vector3Zero(), 1, nil)
	_, b := f.spawn("b", rl.Vector3{X: 3}, 0, nil)

	f.scene.RemoveSceneComponent(f.world)

	for _, rb := range []*RigidBody{a, b} {
		if rb.HasBody() || rb.World() != nil {
			t.Errorf("Expected %q to be released", rb.GetGameObject().Name)
		}
	}
	if len(f.world.RigidBodies()) != 0 || len(f.world.World().Bodies()) != 0 {
		t.Error("Expected the world to be empty")
	}
}
