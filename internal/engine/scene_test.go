package engine

import (
	"context"
	"sync"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestSceneAddGameObject(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Player")

	scene.AddGameObject(obj)

	if len(scene.GameObjects) != 1 {
		t.Errorf("Expected 1 GameObject, got %d", len(scene.GameObjects))
	}

	if scene.GameObjects[0] != obj {
		t.Error("GameObject not added to scene")
	}

	if obj.Scene != scene {
		t.Error("GameObject.Scene not set")
	}
}

func TestSceneUIDLookup(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Player")

	scene.AddGameObject(obj)

	// Test O(1) lookup
	found := scene.FindByUID(obj.UID)
	if found != obj {
		t.Errorf("FindByUID failed: expected %v, got %v", obj, found)
	}

	// Test non-existent UID
	notFound := scene.FindByUID(99999)
	if notFound != nil {
		t.Error("FindByUID should return nil for non-existent UID")
	}
}

func TestSceneRemoveGameObject(t *testing.T) {
	scene := NewScene("Test")
	obj1 := NewGameObject("Player")
	obj2 := NewGameObject("Enemy")

	scene.AddGameObject(obj1)
	scene.AddGameObject(obj2)

	scene.RemoveGameObject(obj1)

	if len(scene.GameObjects) != 1 {
		t.Errorf("Expected 1 GameObject after removal, got %d", len(scene.GameObjects))
	}

	if scene.GameObjects[0] != obj2 {
		t.Error("Wrong GameObject removed")
	}

	// Verify UID map was updated
	if scene.FindByUID(obj1.UID) != nil {
		t.Error("Removed GameObject still in UID map")
	}

	if scene.FindByUID(obj2.UID) != obj2 {
		t.Error("Remaining GameObject not in UID map")
	}
}

func TestSceneFindByName(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("UniquePlayer")

	scene.AddGameObject(obj)

	found := scene.FindByName("UniquePlayer")
	if found != obj {
		t.Error("FindByName failed")
	}

	notFound := scene.FindByName("DoesNotExist")
	if notFound != nil {
		t.Error("FindByName should return nil for non-existent name")
	}
}

func TestSceneFindByTag(t *testing.T) {
	scene := NewScene("Test")
	obj1 := NewGameObject("Enemy1")
	obj2 := NewGameObject("Enemy2")
	obj3 := NewGameObject("Player")

	obj1.Tags = []string{"enemy", "ai"}
	obj2.Tags = []string{"enemy"}
	obj3.Tags = []string{"player"}

	scene.AddGameObject(obj1)
	scene.AddGameObject(obj2)
	scene.AddGameObject(obj3)

	enemies := scene.FindByTag("enemy")
	if len(enemies) != 2 {
		t.Errorf("Expected 2 enemies, got %d", len(enemies))
	}

	players := scene.FindByTag("player")
	if len(players) != 1 {
		t.Errorf("Expected 1 player, got %d", len(players))
	}

	notFound := scene.FindByTag("nonexistent")
	if len(notFound) != 0 {
		t.Error("FindByTag should return empty slice for non-existent tag")
	}
}

func TestSceneRemoveWithChildren(t *testing.T) {
	scene := NewScene("Test")
	parent := NewGameObject("Parent")
	child := NewGameObject("Child")

	scene.AddGameObject(parent)
	scene.AddGameObject(child)
	parent.AddChild(child)

	scene.RemoveGameObject(parent)

	// Both parent and child should be removed
	if len(scene.GameObjects) != 0 {
		t.Errorf("Expected 0 GameObjects, got %d", len(scene.GameObjects))
	}

	// Verify UID map cleaned up
	if scene.FindByUID(parent.UID) != nil {
		t.Error("Parent still in UID map after removal")
	}
	if scene.FindByUID(child.UID) != nil {
		t.Error("Child still in UID map after removal")
	}
}

func TestSceneUIDMapInitialization(t *testing.T) {
	scene := NewScene("Test")

	if scene.uidMap == nil {
		t.Error("uidMap should be initialized in NewScene")
	}

	// Test adding to uninitialized map (defensive programming check)
	scene.uidMap = nil
	obj := NewGameObject("Test")
	scene.AddGameObject(obj) // Should not panic

	if scene.uidMap == nil {
		t.Error("uidMap should be initialized on first AddGameObject")
	}
}

type physicsService struct {
	scene *Scene
}

func (p *physicsService) OnSceneSet(s *Scene) { p.scene = s }

func TestSceneComponents(t *testing.T) {
	scene := NewScene("Test")
	svc := &physicsService{}

	if GetSceneComponent[*physicsService](scene) != nil {
		t.Error("Expected no service before registration")
	}
	scene.AddSceneComponent(svc)
	if svc.scene != scene {
		t.Error("OnSceneSet should receive the scene")
	}
	if GetSceneComponent[*physicsService](scene) != svc {
		t.Error("GetSceneComponent failed")
	}
	scene.RemoveSceneComponent(svc)
	if svc.scene != nil || GetSceneComponent[*physicsService](scene) != nil {
		t.Error("Removed service should be detached")
	}
}

type mover struct {
	BaseComponent
}

func (m *mover) Update(dt float32) {
	g := m.GetGameObject()
	g.SetPosition(rl.Vector3Add(g.Transform.Position, rl.Vector3{X: 1}))
}

type deferringListener struct {
	mu       sync.Mutex
	scene    *Scene
	deferred int
	direct   int
}

func (d *deferringListener) OnMarkedDirty(g *GameObject) {
	if d.scene.IsThreadedUpdate() {
		d.mu.Lock()
		d.deferred++
		d.mu.Unlock()
		d.scene.DelayedMarkedDirty(d, g)
		return
	}
	d.direct++
}

func TestThreadedUpdateDefersDirty(t *testing.T) {
	scene := NewScene("Test")
	listeners := make([]*deferringListener, 0)
	for i := 0; i < 8; i++ {
		obj := NewGameObject("Obj")
		obj.AddComponent(&mover{})
		l := &deferringListener{scene: scene}
		obj.AddListener(l)
		listeners = append(listeners, l)
		scene.AddGameObject(obj)
	}

	if err := scene.ThreadedUpdate(context.Background(), 1.0/60, 3); err != nil {
		t.Fatalf("ThreadedUpdate failed: %v", err)
	}
	if scene.IsThreadedUpdate() {
		t.Error("Threaded phase should be over")
	}
	for i, l := range listeners {
		if l.deferred != 1 || l.direct != 1 {
			t.Errorf("Listener %d: expected 1 deferred and 1 replayed, got %d/%d", i, l.deferred, l.direct)
		}
	}
	for _, g := range scene.GameObjects {
		if g.Transform.Position.X != 1 {
			t.Errorf("Expected every object moved once, got %v", g.Transform.Position)
		}
	}
}

func TestThreadedUpdateCancelled(t *testing.T) {
	scene := NewScene("Test")
	scene.AddGameObject(NewGameObject("Obj"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := scene.ThreadedUpdate(ctx, 1.0/60, 1); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestDelayedMarkedDirtyCollapses(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Obj")
	l := &deferringListener{scene: scene}

	scene.DelayedMarkedDirty(l, obj)
	scene.DelayedMarkedDirty(l, obj)
	scene.drainDelayedMarkedDirty()

	if l.direct != 1 {
		t.Errorf("Expected one replayed notification, got %d", l.direct)
	}
}

func TestNetworkUpdateMarks(t *testing.T) {
	scene := NewScene("Test")
	a := &BaseComponent{}
	b := &BaseComponent{}

	scene.MarkNetworkUpdate(a)
	scene.MarkNetworkUpdate(b)
	scene.MarkNetworkUpdate(a)

	marked := scene.TakeNetworkUpdates()
	if len(marked) != 2 || marked[0] != a || marked[1] != b {
		t.Errorf("Expected [a b], got %v", marked)
	}
	if len(scene.TakeNetworkUpdates()) != 0 {
		t.Error("Marks should be cleared after taking them")
	}
}
