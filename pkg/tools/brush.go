// Package tools implements the editing tools built on the scatter core: a
// prefab brush that paints templates onto surfaces and a swapper that
// replaces found objects with another template.
package tools

import (
	"math"

	"github.com/df07/go-surface-scatter/pkg/config"
	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/scatter"
	"github.com/df07/go-surface-scatter/pkg/scene"
)

// SpawnUndoLabel groups all objects created by one paint stroke
const SpawnUndoLabel = "Spawn Objects"

// PreviewRenderer draws brush feedback for an interactive host. Hover
// accepts a nil renderer.
type PreviewRenderer interface {
	DrawBrush(center core.SurfaceHit, radius float64)
	DrawSample(sample scatter.BrushSample)
}

// PrefabBrush scatters selected templates onto the surfaces under the cursor
type PrefabBrush struct {
	scene   *scene.Scene
	probe   scatter.Probe
	brush   *scatter.Brush
	sampler core.Sampler
	logger  core.Logger

	templates []*scene.Object
	selected  []bool

	randomizeScale     bool
	scaleMin, scaleMax float64
	parent             *scene.Object
}

// NewPrefabBrush creates a brush painting into s. probe answers both the
// primary cursor ray and the per-sample probes.
func NewPrefabBrush(s *scene.Scene, probe scatter.Probe, cfg config.BrushConfig, sampler core.Sampler, logger core.Logger) *PrefabBrush {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	b := scatter.NewBrush(cfg.Radius, cfg.SpawnCount, sampler)
	b.SetProbeConfig(cfg.ProbeConfig())
	b.SetOnlyHorizontal(cfg.OnlyHorizontal)
	b.SetHorizontalThreshold(cfg.HorizontalThreshold)

	pb := &PrefabBrush{
		scene:   s,
		probe:   probe,
		brush:   b,
		sampler: sampler,
		logger:  logger,
	}
	pb.SetRandomScale(cfg.RandomizeScale, cfg.ScaleMin, cfg.ScaleMax)
	return pb
}

// Brush returns the underlying sampler brush
func (pb *PrefabBrush) Brush() *scatter.Brush { return pb.brush }

// SetTemplates replaces the palette. Every template starts selected.
func (pb *PrefabBrush) SetTemplates(templates []*scene.Object) {
	pb.templates = append([]*scene.Object(nil), templates...)
	pb.selected = make([]bool, len(templates))
	for i := range pb.selected {
		pb.selected[i] = true
	}
}

// Templates returns the palette
func (pb *PrefabBrush) Templates() []*scene.Object { return pb.templates }

// ToggleTemplate flips the selection of palette entry i and returns the new state
func (pb *PrefabBrush) ToggleTemplate(i int) bool {
	if i < 0 || i >= len(pb.selected) {
		return false
	}
	pb.selected[i] = !pb.selected[i]
	return pb.selected[i]
}

// SelectTemplate sets the selection of palette entry i
func (pb *PrefabBrush) SelectTemplate(i int, selected bool) {
	if i >= 0 && i < len(pb.selected) {
		pb.selected[i] = selected
	}
}

// SelectedTemplates returns the templates picked for painting, in palette order
func (pb *PrefabBrush) SelectedTemplates() []*scene.Object {
	var out []*scene.Object
	for i, t := range pb.templates {
		if pb.selected[i] {
			out = append(out, t)
		}
	}
	return out
}

// SetParent makes painted objects children of parent. Nil paints root objects.
func (pb *PrefabBrush) SetParent(parent *scene.Object) { pb.parent = parent }

// Parent returns the parent painted objects are attached to
func (pb *PrefabBrush) Parent() *scene.Object { return pb.parent }

// SetRandomScale configures the uniform scale multiplier range, clamped to
// [config.MinScale, config.MaxScale].
func (pb *PrefabBrush) SetRandomScale(enabled bool, lo, hi float64) {
	lo = math.Max(config.MinScale, math.Min(config.MaxScale, lo))
	hi = math.Max(config.MinScale, math.Min(config.MaxScale, hi))
	if lo > hi {
		lo, hi = hi, lo
	}
	pb.randomizeScale = enabled
	pb.scaleMin, pb.scaleMax = lo, hi
}

// Scroll handles the modifier + wheel gesture: with ctrl it changes the
// spawn count by one step, otherwise it grows or shrinks the radius by 10%.
func (pb *PrefabBrush) Scroll(delta float64, ctrl bool) {
	dir := sign(delta)
	if dir == 0 {
		return
	}
	if ctrl {
		pb.brush.SetCount(pb.brush.Count() - int(dir))
		return
	}
	pb.brush.SetRadius(pb.brush.Radius() * (1 - dir*0.1))
}

// Hover casts the cursor ray and returns the samples the brush would paint.
// The second result is false when the cursor is not over any surface.
func (pb *PrefabBrush) Hover(ray core.Ray, up core.Vec3, preview PreviewRenderer) ([]scatter.BrushSample, bool) {
	hit, ok := pb.probe.Raycast(ray, 0, core.AllLayers)
	if !ok {
		return nil, false
	}

	samples := pb.brush.Sample(hit, up, pb.probe)
	if preview != nil {
		preview.DrawBrush(hit, pb.brush.Radius())
		for _, s := range samples {
			preview.DrawSample(s)
		}
	}
	return samples, true
}

// Paint instantiates a random selected template at every sample as a single
// undo step and draws fresh offsets for the next stroke.
func (pb *PrefabBrush) Paint(samples []scatter.BrushSample) []*scene.Object {
	templates := pb.SelectedTemplates()
	if len(templates) == 0 || len(samples) == 0 {
		return nil
	}

	journal := pb.scene.Journal()
	journal.Begin(SpawnUndoLabel)
	defer journal.End()

	parent := pb.parent
	if parent != nil && !parent.InScene() {
		pb.logger.Printf("Warning: brush parent %q is not in the scene, painting root objects\n", parent.Name)
		parent = nil
	}

	spawned := make([]*scene.Object, 0, len(samples))
	for _, s := range samples {
		idx := min(int(pb.sampler.Get1D()*float64(len(templates))), len(templates)-1)
		obj, err := pb.scene.Instantiate(templates[idx])
		if err != nil {
			pb.logger.Printf("Failed to spawn %q: %v\n", templates[idx].Name, err)
			continue
		}

		t := obj.Transform
		t.Position = s.WorldPosition
		if pb.randomizeScale {
			t.Scale = t.Scale.Multiply(core.Range(pb.sampler, pb.scaleMin, pb.scaleMax))
		}
		t.Rotation = scatter.ComputePlacementRotation(s.WorldNormal, pb.sampler.Get1D()*360)
		if err := pb.scene.SetTransform(obj, t); err != nil {
			pb.logger.Printf("Failed to place %q: %v\n", obj.Name, err)
			continue
		}
		if parent != nil {
			if err := pb.scene.SetParent(obj, parent); err != nil {
				pb.logger.Printf("Failed to parent %q: %v\n", obj.Name, err)
			}
		}
		spawned = append(spawned, obj)
	}

	pb.brush.Regenerate()
	pb.logger.Printf("Spawned %d objects\n", len(spawned))
	return spawned
}

// PaintStrokes paints precomputed strokes in order, one undo step each.
// Strokes that missed every surface are skipped.
func (pb *PrefabBrush) PaintStrokes(results []StrokeResult) []*scene.Object {
	var spawned []*scene.Object
	for _, r := range results {
		if r.Hit {
			spawned = append(spawned, pb.Paint(r.Samples)...)
		}
	}
	return spawned
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
