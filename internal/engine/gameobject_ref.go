package engine

// GameObjectRef names another node by UID. Constraints hold one for their
// second body so the target can be looked up again after the scene changes.
// The zero value refers to nothing.
type GameObjectRef struct {
	UID uint64
}

// Get returns the referenced node if it is currently in scene.
func (r GameObjectRef) Get(scene *Scene) *GameObject {
	if !r.IsValid() || scene == nil {
		return nil
	}
	return scene.FindByUID(r.UID)
}

// IsValid reports whether the ref names a node. It does not check that the
// node is still in a scene.
func (r GameObjectRef) IsValid() bool {
	return r.UID != 0
}

// Set points the ref at g. A nil g clears it.
func (r *GameObjectRef) Set(g *GameObject) {
	r.Clear()
	if g != nil {
		r.UID = g.UID
	}
}

func (r *GameObjectRef) Clear() {
	r.UID = 0
}
