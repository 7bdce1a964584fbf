package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// SceneComponent is a scene-wide service, such as a physics world, that
// components find through their node's scene.
type SceneComponent interface {
	OnSceneSet(s *Scene)
}

type Scene struct {
	Name        string
	GameObjects []*GameObject
	uidMap      map[uint64]*GameObject
	services    []SceneComponent

	threaded atomic.Bool

	delayedMu    sync.Mutex
	delayed      []DirtyListener
	delayedNodes map[DirtyListener]*GameObject

	netMu      sync.Mutex
	netUpdates []Component
	netMarked  map[Component]struct{}
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:         name,
		GameObjects:  make([]*GameObject, 0),
		uidMap:       make(map[uint64]*GameObject),
		delayedNodes: make(map[DirtyListener]*GameObject),
		netMarked:    make(map[Component]struct{}),
	}
}

// AddGameObject adds g to the scene. Components already on g are attached.
func (s *Scene) AddGameObject(g *GameObject) {
	if g.Scene == s {
		return
	}
	if s.uidMap == nil {
		s.uidMap = make(map[uint64]*GameObject)
	}
	s.GameObjects = append(s.GameObjects, g)
	s.uidMap[g.UID] = g
	g.Scene = s
	for _, c := range g.components {
		if h, ok := c.(NodeSetHandler); ok {
			h.OnNodeSet(g)
		}
	}
}

// RemoveGameObject removes g and its descendants from the scene.
func (s *Scene) RemoveGameObject(g *GameObject) {
	for _, child := range g.Children {
		s.RemoveGameObject(child)
	}
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			delete(s.uidMap, g.UID)
			g.Scene = nil
			return
		}
	}
}

func (s *Scene) FindByUID(uid uint64) *GameObject {
	return s.uidMap[uid]
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

// AddSceneComponent registers a scene-wide service.
func (s *Scene) AddSceneComponent(c SceneComponent) {
	for _, existing := range s.services {
		if existing == c {
			return
		}
	}
	s.services = append(s.services, c)
	c.OnSceneSet(s)
}

func (s *Scene) RemoveSceneComponent(c SceneComponent) {
	for i, existing := range s.services {
		if existing == c {
			s.services = append(s.services[:i], s.services[i+1:]...)
			c.OnSceneSet(nil)
			return
		}
	}
}

// GetSceneComponent returns the first scene service of type T, or the zero value.
func GetSceneComponent[T any](s *Scene) T {
	var zero T
	if s == nil {
		return zero
	}
	for _, c := range s.services {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}

// IsThreadedUpdate reports whether component updates are running on worker
// goroutines. Scene mutations that are not goroutine safe must be queued.
func (s *Scene) IsThreadedUpdate() bool {
	return s.threaded.Load()
}

// ThreadedUpdate updates every game object on up to workers goroutines, then
// replays the dirty notifications that were deferred while it ran.
func (s *Scene) ThreadedUpdate(ctx context.Context, deltaTime float32, workers int) error {
	objects := append([]*GameObject(nil), s.GameObjects...)

	s.threaded.Store(true)
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, obj := range objects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			obj.Update(deltaTime)
			return nil
		})
	}
	err := g.Wait()
	s.threaded.Store(false)

	s.drainDelayedMarkedDirty()
	return err
}

// DelayedMarkedDirty queues a dirty notification for l about g until the
// threaded phase ends. Repeated requests for the same listener collapse.
func (s *Scene) DelayedMarkedDirty(l DirtyListener, g *GameObject) {
	s.delayedMu.Lock()
	defer s.delayedMu.Unlock()
	if _, queued := s.delayedNodes[l]; !queued {
		s.delayed = append(s.delayed, l)
	}
	s.delayedNodes[l] = g
}

func (s *Scene) drainDelayedMarkedDirty() {
	s.delayedMu.Lock()
	pending := s.delayed
	nodes := s.delayedNodes
	s.delayed = nil
	s.delayedNodes = make(map[DirtyListener]*GameObject)
	s.delayedMu.Unlock()

	for _, l := range pending {
		l.OnMarkedDirty(nodes[l])
	}
}

// MarkNetworkUpdate records that c has state to replicate.
func (s *Scene) MarkNetworkUpdate(c Component) {
	s.netMu.Lock()
	defer s.netMu.Unlock()
	if _, ok := s.netMarked[c]; ok {
		return
	}
	s.netMarked[c] = struct{}{}
	s.netUpdates = append(s.netUpdates, c)
}

// TakeNetworkUpdates returns the components marked since the last call, in
// marking order, and clears the set.
func (s *Scene) TakeNetworkUpdates() []Component {
	s.netMu.Lock()
	defer s.netMu.Unlock()
	out := s.netUpdates
	s.netUpdates = nil
	s.netMarked = make(map[Component]struct{})
	return out
}
