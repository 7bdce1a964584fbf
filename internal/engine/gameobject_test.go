package engine

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestNewGameObject(t *testing.T) {
	obj := NewGameObject("TestObject")

	if obj.Name != "TestObject" {
		t.Errorf("Expected name 'TestObject', got '%s'", obj.Name)
	}

	if obj.UID == 0 {
		t.Error("UID should not be 0")
	}

	if obj.components == nil {
		t.Error("components slice should be initialized")
	}
}

func TestGameObjectUniqueUIDs(t *testing.T) {
	obj1 := NewGameObject("First")
	obj2 := NewGameObject("Second")
	obj3 := NewGameObject("Third")

	if obj1.UID == obj2.UID {
		t.Error("GameObjects should have unique UIDs")
	}
	if obj2.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
	if obj1.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
}

func TestGameObjectHasTag(t *testing.T) {
	obj := NewGameObject("Test")
	obj.Tags = []string{"enemy", "ai", "dangerous"}

	if !obj.HasTag("enemy") {
		t.Error("HasTag should return true for existing tag")
	}

	if !obj.HasTag("ai") {
		t.Error("HasTag should return true for existing tag")
	}

	if obj.HasTag("player") {
		t.Error("HasTag should return false for non-existent tag")
	}

	// Test empty tags
	obj2 := NewGameObject("Test2")
	if obj2.HasTag("anything") {
		t.Error("HasTag should return false when Tags is nil/empty")
	}
}

func TestGameObjectParentChild(t *testing.T) {
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")

	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("Child.Parent should be set")
	}

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child, got %d", len(parent.Children))
	}

	if parent.Children[0] != child {
		t.Error("Child not added to parent's Children slice")
	}
}

func TestGameObjectRemoveChild(t *testing.T) {
	parent := NewGameObject("Parent")
	child1 := NewGameObject("Child1")
	child2 := NewGameObject("Child2")

	parent.AddChild(child1)
	parent.AddChild(child2)

	parent.RemoveChild(child1)

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child after removal, got %d", len(parent.Children))
	}

	if parent.Children[0] != child2 {
		t.Error("Wrong child removed")
	}

	if child1.Parent != nil {
		t.Error("Removed child should have nil parent")
	}
}

func TestGameObjectAddComponent(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &BaseComponent{}

	obj.AddComponent(comp)

	if len(obj.components) != 1 {
		t.Errorf("Expected 1 component, got %d", len(obj.components))
	}

	if comp.gameObject != obj {
		t.Error("Component.gameObject should be set")
	}
}

func TestGameObjectGetComponent(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &BaseComponent{}

	obj.AddComponent(comp)

	found := GetComponent[*BaseComponent](obj)
	if found != comp {
		t.Error("GetComponent failed to find component")
	}
}

func TestGameObjectStartCalledOnce(t *testing.T) {
	obj := NewGameObject("Test")

	// First call should set started = true
	obj.Start()
	if !obj.started {
		t.Error("started flag should be true after Start()")
	}

	// Second call should be a no-op (no panic, no re-initialization)
	obj.Start() // Should not panic or cause issues
}

type recordingListener struct {
	nodes []*GameObject
}

func (r *recordingListener) OnMarkedDirty(g *GameObject) {
	r.nodes = append(r.nodes, g)
}

func TestMarkDirtyReachesDescendants(t *testing.T) {
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")
	parent.AddChild(child)

	pl := &recordingListener{}
	cl := &recordingListener{}
	parent.AddListener(pl)
	child.AddListener(cl)

	parent.SetPosition(rl.Vector3{X: 1})

	if len(pl.nodes) != 1 || pl.nodes[0] != parent {
		t.Errorf("Parent listener should be notified once, got %d", len(pl.nodes))
	}
	if len(cl.nodes) != 1 || cl.nodes[0] != child {
		t.Errorf("Child listener should be notified once, got %d", len(cl.nodes))
	}

	child.RemoveListener(cl)
	parent.SetPosition(rl.Vector3{X: 2})
	if len(cl.nodes) != 1 {
		t.Error("Removed listener should not be notified")
	}
}

func TestWorldTransformComposition(t *testing.T) {
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")
	parent.AddChild(child)

	parent.Transform.Position = rl.Vector3{X: 10}
	parent.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math.Pi/2)
	parent.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	child.Transform.Position = rl.Vector3{X: 1}

	// (1,0,0) scaled by 2 and rotated 90 degrees about Y lands on (0,0,-2)
	got := child.WorldPosition()
	want := rl.Vector3{X: 10, Y: 0, Z: -2}
	if rl.Vector3Distance(got, want) > 1e-4 {
		t.Errorf("Expected world position %v, got %v", want, got)
	}
	if s := child.WorldScale(); s.X != 2 {
		t.Errorf("Expected world scale 2, got %v", s)
	}
}

func TestSetWorldPositionRoundTrip(t *testing.T) {
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")
	parent.AddChild(child)
	parent.Transform.Position = rl.Vector3{X: 3, Y: 1}
	parent.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, 0.7)
	parent.Transform.Scale = rl.Vector3{X: 1, Y: 2, Z: 1}

	target := rl.Vector3{X: -4, Y: 5, Z: 6}
	rot := rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, 0.3)
	child.SetWorldTransform(target, rot)

	if rl.Vector3Distance(child.WorldPosition(), target) > 1e-4 {
		t.Errorf("Expected world position %v, got %v", target, child.WorldPosition())
	}
	if !quatNear(child.WorldRotation(), rot) {
		t.Errorf("Expected world rotation %v, got %v", rot, child.WorldRotation())
	}
}

type enabledRecorder struct {
	BaseComponent
	calls    int
	released bool
}

func (e *enabledRecorder) OnSetEnabled() { e.calls++ }

func (e *enabledRecorder) Release() { e.released = true }

func TestSetActiveNotifiesSubtree(t *testing.T) {
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")
	parent.AddChild(child)
	comp := &enabledRecorder{}
	child.AddComponent(comp)

	parent.SetActive(false)
	if comp.calls != 1 {
		t.Errorf("Expected 1 enabled notification, got %d", comp.calls)
	}
	if comp.IsEnabledEffective() {
		t.Error("Component under inactive parent should not be effectively enabled")
	}

	parent.SetActive(false)
	if comp.calls != 1 {
		t.Error("Setting the same active state should not notify")
	}
}

func TestGetComponentsByCapability(t *testing.T) {
	obj := NewGameObject("Test")
	a := &enabledRecorder{}
	b := &BaseComponent{}
	c := &enabledRecorder{}
	obj.AddComponent(a)
	obj.AddComponent(b)
	obj.AddComponent(c)

	handlers := GetComponents[EnabledHandler](obj)
	if len(handlers) != 2 {
		t.Fatalf("Expected 2 handlers, got %d", len(handlers))
	}
	if handlers[0] != a || handlers[1] != c {
		t.Error("Handlers should be returned in attach order")
	}
}

func TestDestroyReleasesComponents(t *testing.T) {
	scene := NewScene("Test")
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")
	scene.AddGameObject(parent)
	scene.AddGameObject(child)
	parent.AddChild(child)

	pc := &enabledRecorder{}
	cc := &enabledRecorder{}
	parent.AddComponent(pc)
	child.AddComponent(cc)

	parent.Destroy()

	if !pc.released || !cc.released {
		t.Error("Destroy should release every component in the subtree")
	}
	if len(scene.GameObjects) != 0 {
		t.Errorf("Expected empty scene, got %d objects", len(scene.GameObjects))
	}
}

func TestRemoveComponentDetaches(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &enabledRecorder{}
	obj.AddComponent(comp)

	obj.RemoveComponent(comp)
	if comp.GetGameObject() != nil {
		t.Error("Removed component should lose its node")
	}
	if len(obj.Components()) != 0 {
		t.Error("Component list should be empty")
	}
}

func quatNear(a, b rl.Quaternion) bool {
	dot := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	return math.Abs(float64(dot)) > 1-1e-5
}
