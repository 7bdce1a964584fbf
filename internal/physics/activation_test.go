package physics

import (
	"context"
	"testing"

	"rigidsync/internal/dynamics"
	"rigidsync/internal/engine"
	"rigidsync/internal/netcodec"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestMasslessIgnoresForces(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("floor", rl.Vector3Zero(), 0, nil, NewBoxCollisionShape(rl.Vector3{X: 10, Y: 1, Z: 10}))

	for i := 0; i < 10; i++ {
		rb.ApplyForce(rl.Vector3{Y: 500})
		rb.ApplyTorque(rl.Vector3{X: 3})
		rb.ApplyImpulse(rl.Vector3{X: 20})
		rb.ApplyImpulseAtPosition(rl.Vector3{Z: 5}, rl.Vector3{X: 1})
		rb.ApplyTorqueImpulse(rl.Vector3{Y: 2})
		f.step(1.0 / 60)
	}

	if rb.LinearVelocity() != rl.Vector3Zero() {
		t.Errorf("Expected zero linear velocity, got %v", rb.LinearVelocity())
	}
	if rb.AngularVelocity() != rl.Vector3Zero() {
		t.Errorf("Expected zero angular velocity, got %v", rb.AngularVelocity())
	}
	if rb.Position() != rl.Vector3Zero() {
		t.Errorf("Massless body moved to %v", rb.Position())
	}
}

func TestZeroInputDoesNotWake(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("ball", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1))
	rb.Body().ForceActivationState(dynamics.IslandSleeping)

	rb.ApplyForce(rl.Vector3Zero())
	rb.ApplyForceAtPosition(rl.Vector3Zero(), rl.Vector3{X: 1})
	rb.ApplyTorque(rl.Vector3Zero())
	rb.ApplyImpulse(rl.Vector3Zero())
	rb.ApplyImpulseAtPosition(rl.Vector3Zero(), rl.Vector3{Y: 1})
	rb.ApplyTorqueImpulse(rl.Vector3Zero())
	rb.SetLinearVelocity(rl.Vector3Zero())
	rb.SetAngularVelocity(rl.Vector3Zero())

	if rb.IsActive() {
		t.Error("Zero inputs should leave the body asleep")
	}
}

func TestNonzeroInputWakes(t *testing.T) {
	inputs := map[string]func(rb *RigidBody){
		"force":           func(rb *RigidBody) { rb.ApplyForce(rl.Vector3{X: 1}) },
		"force at":        func(rb *RigidBody) { rb.ApplyForceAtPosition(rl.Vector3{X: 1}, rl.Vector3{Y: 1}) },
		"torque":          func(rb *RigidBody) { rb.ApplyTorque(rl.Vector3{Z: 1}) },
		"impulse":         func(rb *RigidBody) { rb.ApplyImpulse(rl.Vector3{Y: 1}) },
		"impulse at":      func(rb *RigidBody) { rb.ApplyImpulseAtPosition(rl.Vector3{Y: 1}, rl.Vector3{X: 1}) },
		"torque impulse":  func(rb *RigidBody) { rb.ApplyTorqueImpulse(rl.Vector3{X: 1}) },
		"linear velocity": func(rb *RigidBody) { rb.SetLinearVelocity(rl.Vector3{X: 1}) },
		"angular":         func(rb *RigidBody) { rb.SetAngularVelocity(rl.Vector3{Y: 1}) },
	}
	for name, apply := range inputs {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			_, rb := f.spawn("ball", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1))
			rb.Body().ForceActivationState(dynamics.IslandSleeping)

			apply(rb)

			if !rb.IsActive() {
				t.Error("Expected the body to wake")
			}
		})
	}
}

func TestImpulseAtPositionSpins(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("ball", rl.Vector3Zero(), 2, nil, NewSphereCollisionShape(1))
	rb.SetUseGravity(false)

	rb.ApplyImpulseAtPosition(rl.Vector3{Z: 1}, rl.Vector3{X: 1})

	assertVec(t, "linear velocity", rl.Vector3{Z: 0.5}, rb.LinearVelocity())
	if w := rb.AngularVelocity(); w.Y >= 0 || abs(w.X) > 1e-6 || abs(w.Z) > 1e-6 {
		t.Errorf("Expected spin about -Y, got %v", w)
	}
}

func TestForceIsClearedAfterStep(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("ball", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1))
	rb.SetUseGravity(false)

	rb.ApplyForce(rl.Vector3{X: 60})
	f.step(0.1)
	f.step(0.1)

	assertVec(t, "velocity", rl.Vector3{X: 6}, rb.LinearVelocity())
}

func TestResetForces(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("ball", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1))
	rb.SetUseGravity(false)

	rb.ApplyForce(rl.Vector3{X: 60})
	rb.ApplyTorque(rl.Vector3{Y: 5})
	rb.ResetForces()
	f.step(0.1)

	if rb.LinearVelocity() != rl.Vector3Zero() || rb.AngularVelocity() != rl.Vector3Zero() {
		t.Errorf("Expected no motion, got %v / %v", rb.LinearVelocity(), rb.AngularVelocity())
	}
}

func TestVelocityBeforeAttachIsKept(t *testing.T) {
	rb := NewRigidBody()
	rb.SetMass(1)
	rb.SetLinearVelocity(rl.Vector3{X: 3})

	assertVec(t, "stored velocity", rl.Vector3{X: 3}, rb.LinearVelocity())

	f := newFixture()
	g := engine.NewGameObject("late")
	g.AddComponent(rb)
	f.scene.AddGameObject(g)

	assertVec(t, "applied velocity", rl.Vector3{X: 3}, rb.Body().LinearVelocity())
}

func TestRemoveConstraintWakes(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("hanging", rl.Vector3Zero(), 1, nil)
	var calls []string
	c := &stubConstraint{calls: &calls, name: "rope"}
	rb.AddConstraint(c)
	rb.Body().ForceActivationState(dynamics.IslandSleeping)

	rb.RemoveConstraint(c)

	if !rb.IsActive() {
		t.Error("Losing a constraint should wake the body")
	}
	if len(rb.Constraints()) != 0 {
		t.Errorf("Expected no constraints, got %d", len(rb.Constraints()))
	}
}

type impulseWorker struct {
	engine.BaseComponent
	rb *RigidBody
}

func (p *impulseWorker) Update(deltaTime float32) {
	p.rb.ApplyImpulse(rl.Vector3{X: 10})
	p.rb.SetLinearVelocity(rl.Vector3{Y: 10})
}

func TestForcesRejectedDuringThreadedUpdate(t *testing.T) {
	f := newFixture()
	node, rb := f.spawn("guarded", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1))
	node.AddComponent(&impulseWorker{rb: rb})

	if err := f.scene.ThreadedUpdate(context.Background(), 1.0/60, 1); err != nil {
		t.Fatalf("ThreadedUpdate failed: %v", err)
	}

	if rb.LinearVelocity() != rl.Vector3Zero() {
		t.Errorf("Expected worker inputs to be rejected, velocity %v", rb.LinearVelocity())
	}
}

func TestVelocityMarksNetworkUpdate(t *testing.T) {
	f := newFixture()
	_, rb := f.spawn("ball", rl.Vector3Zero(), 1, nil)
	f.scene.TakeNetworkUpdates()

	rb.SetLinearVelocity(rl.Vector3{X: 1})
	rb.SetAngularVelocity(rl.Vector3{Y: 1})

	marked := f.scene.TakeNetworkUpdates()
	if len(marked) != 1 || marked[0] != engine.Component(rb) {
		t.Errorf("Expected the body to be marked once, got %v", marked)
	}
}

func TestNetAngularVelocityRoundTrip(t *testing.T) {
	f := newFixture()
	f.world.SetMaxNetworkAngularVelocity(20)
	_, src := f.spawn("src", rl.Vector3Zero(), 1, nil, NewSphereCollisionShape(1))
	_, dst := f.spawn("dst", rl.Vector3{X: 5}, 1, nil, NewSphereCollisionShape(1))

	src.SetAngularVelocity(rl.Vector3{X: 1.234, Y: -7.5, Z: 19.99})
	buf := src.NetAngularVelocityAttr()
	if len(buf) != netcodec.PackedVector3Size {
		t.Fatalf("Expected %d bytes, got %d", netcodec.PackedVector3Size, len(buf))
	}
	if err := dst.SetNetAngularVelocityAttr(buf); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	tolerance := netcodec.MaxError(20) + 1e-6
	got, want := dst.AngularVelocity(), src.AngularVelocity()
	for _, d := range []float32{got.X - want.X, got.Y - want.Y, got.Z - want.Z} {
		if d > tolerance || d < -tolerance {
			t.Errorf("Decoded %v differs from %v by more than %g", got, want, tolerance)
		}
	}
}

func TestNetAngularVelocityShortBuffer(t *testing.T) {
	rb := NewRigidBody()
	if err := rb.SetNetAngularVelocityAttr([]byte{1, 2, 3}); err == nil {
		t.Error("Expected an error for a truncated attribute")
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
