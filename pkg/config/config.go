// Package config loads the YAML settings for a scatter session: brush
// parameters, culling distances, save storage, the surfaces to paint on and
// the template palette.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/culling"
	"github.com/df07/go-surface-scatter/pkg/scatter"
)

// Scale range limits for randomized template scale
const (
	MinScale = 1.0
	MaxScale = 3.0
)

// Config is the root of the settings file
type Config struct {
	Brush     BrushConfig      `yaml:"brush"`
	Culling   culling.Config   `yaml:"culling"`
	Save      SaveConfig       `yaml:"save"`
	Surfaces  []SurfaceConfig  `yaml:"surfaces"`
	Templates []TemplateConfig `yaml:"templates"`
}

// BrushConfig holds the prefab brush settings
type BrushConfig struct {
	Radius              float64             `yaml:"radius"`
	SpawnCount          int                 `yaml:"spawnCount"`
	RandomizeScale      bool                `yaml:"randomizeScale"`
	ScaleMin            float64             `yaml:"scaleMin"`
	ScaleMax            float64             `yaml:"scaleMax"`
	OnlyHorizontal      bool                `yaml:"onlyHorizontal"`
	HorizontalThreshold float64             `yaml:"horizontalThreshold"`
	Probe               scatter.ProbeConfig `yaml:"probe"`
	PaintLayers         []int               `yaml:"paintLayers,omitempty"` // overrides probe.mask when set
}

// ProbeConfig returns the probe settings with PaintLayers applied
func (b BrushConfig) ProbeConfig() scatter.ProbeConfig {
	p := b.Probe
	if len(b.PaintLayers) > 0 {
		p.Mask = core.LayersMask(b.PaintLayers...)
	}
	return p
}

// SaveConfig selects the storage used by the save manager
type SaveConfig struct {
	AppName string `yaml:"appName"`
}

// Default returns the built-in settings: a flat ground plane and two templates
func Default() *Config {
	return &Config{
		Brush: BrushConfig{
			Radius:              5,
			SpawnCount:          10,
			RandomizeScale:      true,
			ScaleMin:            1,
			ScaleMax:            1.5,
			HorizontalThreshold: scatter.DefaultHorizontalThreshold,
			Probe:               scatter.DefaultProbeConfig(),
		},
		Culling: culling.DefaultConfig(),
		Save: SaveConfig{
			AppName: "surface_scatter",
		},
		Surfaces: []SurfaceConfig{
			{Kind: KindPlane, Layer: culling.LayerGround, Point: core.Vec3{}, Normal: core.Up},
		},
		Templates: []TemplateConfig{
			{Name: "Rock", Layer: culling.LayerDecoration},
			{Name: "Grass", Layer: culling.LayerGrass},
		},
	}
}

// Load reads a settings file. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if err := validateFilePath(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes and validates settings from r
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps brush parameters into range and rejects settings that
// cannot be used.
func (c *Config) Validate() error {
	b := &c.Brush
	if !isFinite(b.Radius) {
		return fmt.Errorf("brush: radius must be finite, got %g", b.Radius)
	}
	b.Radius = scatter.ClampRadius(b.Radius)
	b.SpawnCount = scatter.ClampCount(b.SpawnCount)
	b.ScaleMin = clamp(b.ScaleMin, MinScale, MaxScale)
	b.ScaleMax = clamp(b.ScaleMax, MinScale, MaxScale)
	if b.ScaleMin > b.ScaleMax {
		b.ScaleMin, b.ScaleMax = b.ScaleMax, b.ScaleMin
	}
	b.HorizontalThreshold = clamp(b.HorizontalThreshold, -1, 1)
	if !isFinite(b.Probe.Lift) || !isFinite(b.Probe.MaxDistance) || b.Probe.Lift < 0 || b.Probe.MaxDistance <= 0 {
		return fmt.Errorf("brush: probe needs lift >= 0 and maxDistance > 0, got %g and %g",
			b.Probe.Lift, b.Probe.MaxDistance)
	}
	for _, l := range b.PaintLayers {
		if l < 0 || l >= core.MaxLayers {
			return fmt.Errorf("brush: paint layer %d out of range", l)
		}
	}

	if err := c.Culling.Validate(); err != nil {
		return err
	}

	if c.Save.AppName == "" {
		return fmt.Errorf("save: appName cannot be empty")
	}

	for i := range c.Surfaces {
		if err := c.Surfaces[i].validate(); err != nil {
			return fmt.Errorf("surfaces[%d]: %w", i, err)
		}
	}

	seen := make(map[string]bool, len(c.Templates))
	for i, t := range c.Templates {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("templates[%d]: name cannot be empty", i)
		}
		if seen[name] {
			return fmt.Errorf("templates[%d]: duplicate name %q", i, name)
		}
		if t.Layer < 0 || t.Layer >= core.MaxLayers {
			return fmt.Errorf("templates[%d]: layer %d out of range", i, t.Layer)
		}
		seen[name] = true
		c.Templates[i].Name = name
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// validateFilePath rejects paths that cannot be a settings file
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("invalid file type: only .yaml and .yml files are allowed")
	}
	return nil
}
