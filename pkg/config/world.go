package config

import (
	"fmt"
	"maps"

	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/geometry"
	"github.com/df07/go-surface-scatter/pkg/loaders"
	"github.com/df07/go-surface-scatter/pkg/scene"
)

// Surface kinds
const (
	KindPlane  = "plane"
	KindSphere = "sphere"
	KindQuad   = "quad"
	KindDisc   = "disc"
	KindMesh   = "mesh"
)

// SurfaceConfig describes one paintable surface. Point is the plane point,
// the sphere or disc center, the quad corner or the mesh offset.
type SurfaceConfig struct {
	Kind   string    `yaml:"kind"`
	Layer  int       `yaml:"layer"`
	Point  core.Vec3 `yaml:"point"`
	Normal core.Vec3 `yaml:"normal,omitempty"` // plane and disc
	Radius float64   `yaml:"radius,omitempty"` // sphere and disc
	U      core.Vec3 `yaml:"u,omitempty"`      // quad edges
	V      core.Vec3 `yaml:"v,omitempty"`
	Path   string    `yaml:"path,omitempty"` // PLY file for meshes
}

func (s SurfaceConfig) validate() error {
	if s.Layer < 0 || s.Layer >= core.MaxLayers {
		return fmt.Errorf("layer %d out of range", s.Layer)
	}

	switch s.Kind {
	case KindPlane:
		if s.Normal.LengthSquared() == 0 {
			return fmt.Errorf("plane needs a non-zero normal")
		}
	case KindSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("sphere needs a positive radius, got %g", s.Radius)
		}
	case KindDisc:
		if s.Radius <= 0 || s.Normal.LengthSquared() == 0 {
			return fmt.Errorf("disc needs a positive radius and a non-zero normal")
		}
	case KindQuad:
		if s.U.Cross(s.V).LengthSquared() == 0 {
			return fmt.Errorf("quad edges must not be parallel")
		}
	case KindMesh:
		if s.Path == "" {
			return fmt.Errorf("mesh needs a path")
		}
	default:
		return fmt.Errorf("unknown surface kind %q", s.Kind)
	}
	return nil
}

// Shapes creates the geometry for the surface. Meshes are loaded from disk
// and produce one shape per triangle.
func (s SurfaceConfig) Shapes() ([]geometry.Shape, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	switch s.Kind {
	case KindPlane:
		return []geometry.Shape{geometry.NewPlane(s.Point, s.Normal.Normalize())}, nil
	case KindSphere:
		return []geometry.Shape{geometry.NewSphere(s.Point, s.Radius)}, nil
	case KindDisc:
		return []geometry.Shape{geometry.NewDisc(s.Point, s.Normal.Normalize(), s.Radius)}, nil
	case KindQuad:
		return []geometry.Shape{geometry.NewQuad(s.Point, s.U, s.V)}, nil
	}

	mesh, err := loaders.LoadPLY(s.Path)
	if err != nil {
		return nil, err
	}
	triangles, err := geometry.NewTriangleMesh(mesh.Vertices, mesh.Faces, s.Point)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	shapes := make([]geometry.Shape, len(triangles))
	for i, t := range triangles {
		shapes[i] = t
	}
	return shapes, nil
}

// BuildWorld adds every configured surface to a new world
func (c *Config) BuildWorld() (*geometry.World, error) {
	world := geometry.NewWorld()
	for i, sc := range c.Surfaces {
		shapes, err := sc.Shapes()
		if err != nil {
			return nil, fmt.Errorf("surfaces[%d]: %w", i, err)
		}
		for _, shape := range shapes {
			world.Add(shape, sc.Layer)
		}
	}
	return world, nil
}

// TemplateConfig is one entry of the template palette
type TemplateConfig struct {
	Name       string            `yaml:"name"`
	Layer      int               `yaml:"layer"`
	Scale      float64           `yaml:"scale,omitempty"` // uniform, 0 means 1
	Properties map[string]string `yaml:"properties,omitempty"`
}

// BuildTemplates creates the template objects for the palette
func (c *Config) BuildTemplates() []*scene.Object {
	templates := make([]*scene.Object, 0, len(c.Templates))
	for _, tc := range c.Templates {
		tpl := scene.NewTemplate(tc.Name, tc.Layer)
		if tc.Scale > 0 {
			tpl.Transform.Scale = core.NewVec3(tc.Scale, tc.Scale, tc.Scale)
		}
		if len(tc.Properties) > 0 {
			tpl.Properties = maps.Clone(tc.Properties)
		}
		templates = append(templates, tpl)
	}
	return templates
}
