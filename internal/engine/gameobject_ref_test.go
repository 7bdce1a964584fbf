package engine

import "testing"

func TestGameObjectRefResolvesInScene(t *testing.T) {
	scene := NewScene("refs")
	a := NewGameObject("a")
	b := NewGameObject("b")
	scene.AddGameObject(a)
	scene.AddGameObject(b)

	var ref GameObjectRef
	ref.Set(b)

	if got := ref.Get(scene); got != b {
		t.Errorf("Expected b, got %v", got)
	}
	if got := ref.Get(NewScene("other")); got != nil {
		t.Errorf("Expected nil from a scene without the node, got %v", got)
	}
	if got := ref.Get(nil); got != nil {
		t.Errorf("Expected nil without a scene, got %v", got)
	}
}

func TestGameObjectRefResolvesBeforeNodeJoins(t *testing.T) {
	scene := NewScene("refs")
	target := NewGameObject("target")

	var ref GameObjectRef
	ref.Set(target)
	if ref.Get(scene) != nil {
		t.Error("Expected nil before the node is added")
	}

	scene.AddGameObject(target)
	if ref.Get(scene) != target {
		t.Error("Expected the ref to resolve once the node is added")
	}
}

func TestGameObjectRefStaleAfterRemoval(t *testing.T) {
	scene := NewScene("refs")
	parent := NewGameObject("parent")
	child := NewGameObject("child")
	parent.AddChild(child)
	scene.AddGameObject(parent)
	scene.AddGameObject(child)

	var ref GameObjectRef
	ref.Set(child)
	scene.RemoveGameObject(parent)

	if ref.Get(scene) != nil {
		t.Error("Expected a removed descendant to no longer resolve")
	}
	if !ref.IsValid() {
		t.Error("Removal should not clear the ref itself")
	}
}

func TestGameObjectRefStaleAfterDestroy(t *testing.T) {
	scene := NewScene("refs")
	g := NewGameObject("doomed")
	scene.AddGameObject(g)

	var ref GameObjectRef
	ref.Set(g)
	g.Destroy()

	if ref.Get(scene) != nil {
		t.Error("Expected a destroyed node to no longer resolve")
	}
}

func TestGameObjectRefSetAndClear(t *testing.T) {
	scene := NewScene("refs")
	a := NewGameObject("a")
	b := NewGameObject("b")
	scene.AddGameObject(a)
	scene.AddGameObject(b)

	var ref GameObjectRef
	if ref.IsValid() {
		t.Error("Expected the zero ref to be invalid")
	}

	ref.Set(a)
	ref.Set(b)
	if ref.Get(scene) != b {
		t.Error("Expected the second Set to win")
	}

	ref.Set(nil)
	if ref.IsValid() || ref.Get(scene) != nil {
		t.Error("Expected Set(nil) to clear the ref")
	}

	ref.Set(a)
	ref.Clear()
	if ref.IsValid() || ref.Get(scene) != nil {
		t.Error("Expected Clear to empty the ref")
	}
}
