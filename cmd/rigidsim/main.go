package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"rigidsync/internal/config"
	"rigidsync/internal/engine"
	"rigidsync/internal/netcodec"
	"rigidsync/internal/world"

	"github.com/charmbracelet/lipgloss"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	scenePath  string
	configFile string
	frames     int
	dt         float32
	workers    int
	track      string
	watch      bool
	maxAbs     float32
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rigidsim",
		Short:        "rigid body scene simulator",
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a scene file and report the bodies",
		RunE:  runScene,
	}
	runCmd.Flags().StringVar(&scenePath, "scene", "", "scene file (yaml)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate (0 uses the config)")
	runCmd.Flags().Float32Var(&dt, "dt", 0, "frame time step (0 uses the config)")
	runCmd.Flags().IntVar(&workers, "workers", -1, "component update workers (-1 uses the config)")
	runCmd.Flags().StringVar(&track, "track", "", "object whose height is plotted")
	runCmd.Flags().BoolVar(&watch, "watch", false, "reload world settings when the config file changes")
	_ = runCmd.MarkFlagRequired("scene")

	codecCmd := &cobra.Command{
		Use:   "codec x y z",
		Short: "pack a vector the way angular velocity is replicated",
		Args:  cobra.ExactArgs(3),
		RunE:  runCodec,
	}
	codecCmd.Flags().Float32Var(&maxAbs, "max", config.DefaultMaxNetworkAngularVelocity, "largest representable component")

	rootCmd.AddCommand(runCmd, codecCmd, newStressCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	applyOverrides(cfg)
	return cfg, cfg.Validate()
}

func applyOverrides(cfg *config.Config) {
	if frames > 0 {
		cfg.Simulation.Frames = frames
	}
	if dt > 0 {
		cfg.Simulation.Dt = dt
	}
	if workers >= 0 {
		cfg.Simulation.Workers = workers
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	w := world.New(cfg)
	if err := w.LoadScene(scenePath); err != nil {
		return err
	}
	defer w.Unload()

	var tracked *engine.GameObject
	if track != "" {
		if tracked = w.Scene.FindByName(track); tracked == nil {
			return fmt.Errorf("track: no object named %q", track)
		}
	}

	var watcher *config.Watcher
	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch needs --config")
		}
		watcher, err = config.Watch(configFile)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer watcher.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var heights []float64
	onFrame := func(frame int) {
		if tracked != nil {
			heights = append(heights, float64(tracked.WorldPosition().Y))
		}
		if watcher != nil {
			pollWatcher(watcher, w)
		}
	}
	if err := w.Run(ctx, cfg.Simulation.Frames, onFrame); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printReport(out, w, cfg)
	if len(heights) > 1 {
		graph := asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s height over %d frames", track, len(heights))),
		)
		fmt.Fprintln(out, graph)
	}
	return nil
}

func pollWatcher(watcher *config.Watcher, w *world.World) {
	select {
	case cfg, ok := <-watcher.Configs:
		if !ok {
			return
		}
		// Frame count and step are fixed for the run
		cfg.Simulation = w.Config.Simulation
		w.ApplyConfig(cfg)
		log.Printf("Scene: reloaded world settings, gravity %v", cfg.World.Gravity)
	case err, ok := <-watcher.Errors:
		if ok {
			log.Printf("Scene: config reload failed: %v", err)
		}
	default:
	}
}

func printReport(out io.Writer, w *world.World, cfg *config.Config) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s after %d frames", w.Scene.Name, cfg.Simulation.Frames)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("gravity %v  fps %d  dt %.4f", cfg.World.Gravity, cfg.World.FPS, cfg.Simulation.Dt)))
	b.WriteString("\n")

	for _, g := range w.BodyObjects() {
		rb := w.FindBody(g.Name)
		state := staticStyle.Render("static")
		switch {
		case rb.Mass() > 0 && rb.IsActive():
			state = activeStyle.Render("active")
		case rb.Mass() > 0:
			state = sleepingStyle.Render("sleeping")
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			valueStyle.Width(16).Render(g.Name),
			state,
		))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("  mass     ") + valueStyle.Render(fmt.Sprintf("%.3f", rb.Mass())) + "\n")
		b.WriteString(labelStyle.Render("  position ") + valueStyle.Render(formatVec(g.WorldPosition())) + "\n")
		b.WriteString(labelStyle.Render("  velocity ") + valueStyle.Render(formatVec(rb.LinearVelocity())) + "\n")
		if touching := rb.CollidingBodies(); len(touching) > 0 {
			names := make([]string, 0, len(touching))
			for _, other := range touching {
				if n := other.GetGameObject(); n != nil {
					names = append(names, n.Name)
				}
			}
			b.WriteString(labelStyle.Render("  touching ") + valueStyle.Render(strings.Join(names, ", ")) + "\n")
		}
	}
	fmt.Fprintln(out, panelStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func formatVec(v rl.Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

func runCodec(cmd *cobra.Command, args []string) error {
	if maxAbs <= 0 {
		return fmt.Errorf("--max must be positive")
	}
	var v [3]float32
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	in := rl.Vector3{X: v[0], Y: v[1], Z: v[2]}

	buf := netcodec.WritePackedVector3(nil, in, maxAbs)
	decoded, err := netcodec.ReadPackedVector3(buf, maxAbs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "input    %s\n", formatVec(in))
	fmt.Fprintf(out, "packed   %s\n", hex.EncodeToString(buf))
	fmt.Fprintf(out, "decoded  %s\n", formatVec(decoded))
	fmt.Fprintf(out, "step     %g (max error %g)\n", netcodec.Step(maxAbs), netcodec.MaxError(maxAbs))
	return nil
}
