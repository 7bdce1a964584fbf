package config

import (
	"errors"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGravityY                  = -9.81
	DefaultFPS                       = 60
	DefaultMaxSubSteps               = -1
	DefaultMaxNetworkAngularVelocity = 100.0
	DefaultDt                        = 1.0 / 60.0
	DefaultFrames                    = 300
	DefaultWorkers                   = 4
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	World      WorldConfig      `yaml:"world"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// WorldConfig holds the physics world settings. They can be changed while a
// scene is running.
type WorldConfig struct {
	Gravity                   [3]float32 `yaml:"gravity"`
	FPS                       int        `yaml:"fps"`
	MaxSubSteps               int        `yaml:"max_sub_steps"`
	InternalEdge              bool       `yaml:"internal_edge"`
	MaxNetworkAngularVelocity float32    `yaml:"max_network_angular_velocity"`
}

type SimulationConfig struct {
	Dt      float32 `yaml:"dt"`
	Frames  int     `yaml:"frames"`
	Workers int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Gravity:                   [3]float32{0, DefaultGravityY, 0},
			FPS:                       DefaultFPS,
			MaxSubSteps:               DefaultMaxSubSteps,
			InternalEdge:              true,
			MaxNetworkAngularVelocity: DefaultMaxNetworkAngularVelocity,
		},
		Simulation: SimulationConfig{
			Dt:      DefaultDt,
			Frames:  DefaultFrames,
			Workers: DefaultWorkers,
		},
	}
}

// GravityVector returns the configured gravity as a vector.
func (w WorldConfig) GravityVector() rl.Vector3 {
	return rl.Vector3{X: w.Gravity[0], Y: w.Gravity[1], Z: w.Gravity[2]}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.World.FPS < 1 {
		errs = append(errs, fmt.Errorf("%w: world.fps must be at least 1, got %d", ErrInvalid, c.World.FPS))
	}
	if c.World.MaxNetworkAngularVelocity < 1 || c.World.MaxNetworkAngularVelocity > 32767 {
		errs = append(errs, fmt.Errorf("%w: world.max_network_angular_velocity must be in [1, 32767], got %g",
			ErrInvalid, c.World.MaxNetworkAngularVelocity))
	}
	if c.Simulation.Dt <= 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.dt must be positive, got %g", ErrInvalid, c.Simulation.Dt))
	}
	if c.Simulation.Frames < 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.frames must not be negative, got %d", ErrInvalid, c.Simulation.Frames))
	}
	if c.Simulation.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.workers must not be negative, got %d", ErrInvalid, c.Simulation.Workers))
	}
	return errors.Join(errs...)
}
