package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"rigidsync/internal/config"
	"rigidsync/internal/engine"
	"rigidsync/internal/physics"
	"rigidsync/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
)

var (
	stressCounts []int
	stressFrames int
)

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "time scenes of randomly placed spheres falling onto a floor",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, count := range stressCounts {
				if err := stressScene(cmd.Context(), cmd.OutOrStdout(), count, stressFrames); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&stressCounts, "bodies", []int{100, 500, 1000}, "body counts to try")
	cmd.Flags().IntVar(&stressFrames, "frames", 60, "frames per scene")
	return cmd
}

func stressScene(ctx context.Context, out io.Writer, count, frames int) error {
	w := world.New(config.DefaultConfig())
	defer w.Unload()

	floor := engine.NewGameObject("floor")
	floor.AddComponent(physics.NewRigidBody())
	floor.AddComponent(physics.NewBoxCollisionShape(rl.Vector3{X: 200, Y: 1, Z: 200}))
	w.Scene.AddGameObject(floor)

	// Consistent results between runs
	rng := rand.New(rand.NewSource(42))

	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50.0) + float32(count)/100.0

	for i := range count {
		g := engine.NewGameObject(fmt.Sprintf("sphere%d", i))
		g.Transform.Position = rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: 2 + rng.Float32()*spawnSize,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		rb := physics.NewRigidBody()
		rb.SetMass(1)
		g.AddComponent(rb)
		g.AddComponent(physics.NewSphereCollisionShape(1 + rng.Float32())) // 1 to 2 diameter
		w.Scene.AddGameObject(g)
	}

	start := time.Now()
	if err := w.Run(ctx, frames, nil); err != nil {
		return err
	}
	elapsed := time.Since(start)
	perFrame := elapsed / time.Duration(max(frames, 1))

	fmt.Fprintf(out, "%5d bodies: %8v/frame | %5d contacts | %4d active\n",
		count, perFrame.Round(time.Microsecond), len(w.Physics.World().Contacts()), countActive(w))
	return nil
}

func countActive(w *world.World) int {
	n := 0
	for _, rb := range w.Physics.RigidBodies() {
		if rb.IsActive() {
			n++
		}
	}
	return n
}
