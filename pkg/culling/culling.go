// Package culling assigns per-layer view distances so small decoration can be
// dropped long before terrain and large structures.
package culling

import (
	"fmt"
	"math"

	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/scene"
)

// Layer indices the categories map to
const (
	LayerDefault     = 0
	LayerVertical    = 8
	LayerGround      = 9
	LayerConnection  = 10
	LayerMechanism   = 23
	LayerGrass       = 27
	LayerDecoration  = 28
	LayerGroundExtra = 29
)

// Config holds the cull distance for each layer category
type Config struct {
	Default           float64 `yaml:"default"`
	VerticalAndGround float64 `yaml:"verticalAndGround"`
	Connection        float64 `yaml:"connection"`
	Decoration        float64 `yaml:"decoration"`
	Mechanism         float64 `yaml:"mechanism"`
	Grass             float64 `yaml:"grass"`
}

// DefaultConfig returns the standard category distances
func DefaultConfig() Config {
	return Config{
		Default:           1000,
		VerticalAndGround: 4000,
		Connection:        1000,
		Decoration:        700,
		Mechanism:         1200,
		Grass:             200,
	}
}

// Validate rejects negative distances
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"default", c.Default},
		{"verticalAndGround", c.VerticalAndGround},
		{"connection", c.Connection},
		{"decoration", c.Decoration},
		{"mechanism", c.Mechanism},
		{"grass", c.Grass},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) {
			return fmt.Errorf("culling: %s distance must not be negative, got %g", f.name, f.value)
		}
	}
	return nil
}

// Distances builds the per-layer table. Layers without a category get 0,
// which means they are only limited by the far clip distance.
func Distances(c Config) [core.MaxLayers]float64 {
	var d [core.MaxLayers]float64
	d[LayerDefault] = c.Default
	d[LayerVertical] = c.VerticalAndGround
	d[LayerGround] = c.VerticalAndGround
	d[LayerGroundExtra] = c.VerticalAndGround
	d[LayerConnection] = c.Connection
	d[LayerDecoration] = c.Decoration
	d[LayerGrass] = c.Grass
	d[LayerMechanism] = c.Mechanism
	return d
}

// Culler decides visibility from the camera distance
type Culler struct {
	distances [core.MaxLayers]float64
	farClip   float64
}

// NewCuller creates a culler from a config. farClip <= 0 means no far limit.
func NewCuller(c Config, farClip float64) *Culler {
	return &Culler{distances: Distances(c), farClip: farClip}
}

// Limit returns the effective cull distance for layer, or 0 if unlimited
func (c *Culler) Limit(layer int) float64 {
	if layer >= 0 && layer < core.MaxLayers && c.distances[layer] > 0 {
		return c.distances[layer]
	}
	return max(c.farClip, 0)
}

// Visible reports whether an object on layer at distance is drawn
func (c *Culler) Visible(layer int, distance float64) bool {
	limit := c.Limit(layer)
	return limit == 0 || distance <= limit
}

// FilterVisible returns the objects visible from camera
func (c *Culler) FilterVisible(objects []*scene.Object, camera core.Vec3) []*scene.Object {
	var visible []*scene.Object
	for _, o := range objects {
		d := o.Transform.Position.Subtract(camera).Length()
		if c.Visible(o.Layer, d) {
			visible = append(visible, o)
		}
	}
	return visible
}
