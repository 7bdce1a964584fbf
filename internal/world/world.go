package world

import (
	"context"
	"log"

	"rigidsync/internal/config"
	"rigidsync/internal/engine"
	"rigidsync/internal/physics"
)

// World owns a scene and the physics world simulating it.
type World struct {
	Scene   *engine.Scene
	Physics *physics.PhysicsWorld
	Config  *config.Config
}

func New(cfg *config.Config) *World {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	w := &World{
		Scene:   engine.NewScene("Main"),
		Physics: physics.NewPhysicsWorld(),
	}
	w.Scene.AddSceneComponent(w.Physics)
	w.ApplyConfig(cfg)
	return w
}

// ApplyConfig pushes the world settings of cfg into the running physics
// world. Bodies pick up gravity and internal edge changes immediately.
func (w *World) ApplyConfig(cfg *config.Config) {
	w.Config = cfg
	wc := cfg.World
	w.Physics.SetGravity(wc.GravityVector())
	w.Physics.SetFPS(wc.FPS)
	w.Physics.SetMaxSubSteps(wc.MaxSubSteps)
	w.Physics.SetInternalEdge(wc.InternalEdge)
	w.Physics.SetMaxNetworkAngularVelocity(wc.MaxNetworkAngularVelocity)
}

func (w *World) Start() {
	w.Scene.Start()
}

// Update runs one frame: components first, on worker goroutines when the
// config asks for them, then the physics step.
func (w *World) Update(ctx context.Context, deltaTime float32) error {
	if workers := w.Config.Simulation.Workers; workers > 0 {
		if err := w.Scene.ThreadedUpdate(ctx, deltaTime, workers); err != nil {
			return err
		}
	} else {
		w.Scene.Update(deltaTime)
	}
	w.Physics.Update(deltaTime)
	return nil
}

// Run starts the scene and updates it frames times with the configured
// time step, calling onFrame after each one. It stops early when ctx ends.
func (w *World) Run(ctx context.Context, frames int, onFrame func(frame int)) error {
	w.Start()
	dt := w.Config.Simulation.Dt
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Update(ctx, dt); err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(i)
		}
	}
	return nil
}

// FindBody returns the rigid body on the named object, or nil.
func (w *World) FindBody(name string) *physics.RigidBody {
	g := w.Scene.FindByName(name)
	if g == nil {
		return nil
	}
	return engine.GetComponent[*physics.RigidBody](g)
}

// BodyObjects returns the objects carrying a rigid body, in scene order.
func (w *World) BodyObjects() []*engine.GameObject {
	var result []*engine.GameObject
	for _, g := range w.Scene.GameObjects {
		if engine.GetComponent[*physics.RigidBody](g) != nil {
			result = append(result, g)
		}
	}
	return result
}

// Unload destroys every object and detaches the physics world.
func (w *World) Unload() {
	for len(w.Scene.GameObjects) > 0 {
		root := w.Scene.GameObjects[0]
		for root.Parent != nil {
			root = root.Parent
		}
		root.Destroy()
	}
	w.Scene.RemoveSceneComponent(w.Physics)
	log.Printf("Scene: unloaded %q", w.Scene.Name)
}
