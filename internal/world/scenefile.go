package world

import (
	"fmt"
	"log"
	"math"
	"os"

	"rigidsync/internal/engine"
	"rigidsync/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// --- YAML types ---

type SceneFile struct {
	Objects []ObjectDef `yaml:"objects"`
}

// ObjectDef describes one node. Position, Scale and Parent are local to the
// parent; Rotation is XYZ Euler angles in degrees.
type ObjectDef struct {
	Name       string      `yaml:"name"`
	Parent     string      `yaml:"parent,omitempty"`
	Tags       []string    `yaml:"tags,omitempty"`
	Position   [3]float32  `yaml:"position"`
	Rotation   [3]float32  `yaml:"rotation"`
	Scale      [3]float32  `yaml:"scale"`
	Active     *bool       `yaml:"active,omitempty"`
	Components []yaml.Node `yaml:"components"`
}

type componentHeader struct {
	Type string `yaml:"type"`
}

// --- Loading ---

// LoadScene reads a YAML scene into the world. Objects are linked to their
// parents before any of them joins the scene, and constraints that name a
// body defined later in the file are created once everything is loaded.
func (w *World) LoadScene(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	return w.LoadSceneData(data)
}

func (w *World) LoadSceneData(data []byte) error {
	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}

	objects := make([]*engine.GameObject, 0, len(sf.Objects))
	byName := make(map[string]*engine.GameObject, len(sf.Objects))
	for i, objDef := range sf.Objects {
		if objDef.Name == "" {
			return fmt.Errorf("object %d: missing name", i)
		}
		if _, dup := byName[objDef.Name]; dup {
			return fmt.Errorf("object %q: duplicate name", objDef.Name)
		}
		g, err := buildObject(objDef)
		if err != nil {
			return fmt.Errorf("object %q: %w", objDef.Name, err)
		}
		objects = append(objects, g)
		byName[objDef.Name] = g
	}

	for i, objDef := range sf.Objects {
		if objDef.Parent == "" {
			continue
		}
		parent, ok := byName[objDef.Parent]
		if !ok {
			return fmt.Errorf("object %q: unknown parent %q", objDef.Name, objDef.Parent)
		}
		if isAncestor(objects[i], parent) {
			return fmt.Errorf("object %q: parent %q would form a cycle", objDef.Name, objDef.Parent)
		}
		parent.AddChild(objects[i])
	}

	for _, g := range objects {
		w.Scene.AddGameObject(g)
	}

	for _, g := range objects {
		for _, c := range engine.GetComponents[*physics.Constraint](g) {
			if !c.IsCreated() {
				c.CreateConstraint()
			}
		}
	}

	log.Printf("Scene: loaded %d objects", len(objects))
	return nil
}

func buildObject(def ObjectDef) (*engine.GameObject, error) {
	g := engine.NewGameObject(def.Name)
	g.Tags = def.Tags
	g.Transform.Position = rl.Vector3{X: def.Position[0], Y: def.Position[1], Z: def.Position[2]}
	g.Transform.Rotation = eulerDegreesToQuaternion(def.Rotation)

	// Default scale to 1 if zero
	if def.Scale == [3]float32{} {
		g.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	} else {
		g.Transform.Scale = rl.Vector3{X: def.Scale[0], Y: def.Scale[1], Z: def.Scale[2]}
	}
	if def.Active != nil {
		g.Active = *def.Active
	}

	for i := range def.Components {
		c, err := decodeComponent(&def.Components[i])
		if err != nil {
			return nil, err
		}
		g.AddComponent(c)
	}
	return g, nil
}

func decodeComponent(node *yaml.Node) (engine.Component, error) {
	var header componentHeader
	if err := node.Decode(&header); err != nil {
		return nil, fmt.Errorf("component at line %d: %w", node.Line, err)
	}
	var data map[string]any
	if err := node.Decode(&data); err != nil {
		return nil, fmt.Errorf("component %s at line %d: %w", header.Type, node.Line, err)
	}
	c, err := engine.CreateComponent(header.Type, data)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return c, nil
}

func isAncestor(candidate, g *engine.GameObject) bool {
	for p := g; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// --- Saving ---

// SaveScene writes every object with its serializable components. Objects
// are written parents first so the file loads back in the same shape.
func (w *World) SaveScene(path string) error {
	data, err := w.MarshalScene()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func (w *World) MarshalScene() ([]byte, error) {
	var sf SceneFile
	for _, g := range w.Scene.GameObjects {
		if g.Parent == nil {
			appendObject(&sf, g)
		}
	}
	data, err := yaml.Marshal(sf)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

func appendObject(sf *SceneFile, g *engine.GameObject) {
	objDef := ObjectDef{
		Name:     g.Name,
		Tags:     g.Tags,
		Position: [3]float32{g.Transform.Position.X, g.Transform.Position.Y, g.Transform.Position.Z},
		Rotation: quaternionToEulerDegrees(g.Transform.Rotation),
		Scale:    [3]float32{g.Transform.Scale.X, g.Transform.Scale.Y, g.Transform.Scale.Z},
	}
	if g.Parent != nil {
		objDef.Parent = g.Parent.Name
	}
	if !g.Active {
		inactive := false
		objDef.Active = &inactive
	}

	for _, c := range g.Components() {
		s, ok := c.(engine.Serializable)
		if !ok {
			continue
		}
		var node yaml.Node
		if err := node.Encode(s.Serialize()); err != nil {
			log.Printf("Scene: skipping %s on %q: %v", s.TypeName(), g.Name, err)
			continue
		}
		objDef.Components = append(objDef.Components, node)
	}
	sf.Objects = append(sf.Objects, objDef)

	for _, child := range g.Children {
		appendObject(sf, child)
	}
}

func eulerDegreesToQuaternion(deg [3]float32) rl.Quaternion {
	return rl.QuaternionFromEuler(deg[0]*rl.Deg2rad, deg[1]*rl.Deg2rad, deg[2]*rl.Deg2rad)
}

func quaternionToEulerDegrees(q rl.Quaternion) [3]float32 {
	e := rl.QuaternionToEuler(q)
	return [3]float32{round4(e.X * rl.Rad2deg), round4(e.Y * rl.Rad2deg), round4(e.Z * rl.Rad2deg)}
}

// round4 trims float noise from converted angles.
func round4(v float32) float32 {
	return float32(math.Round(float64(v)*1e4) / 1e4)
}
