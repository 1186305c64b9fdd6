package tools

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-surface-scatter/pkg/config"
	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/geometry"
	"github.com/df07/go-surface-scatter/pkg/scatter"
	"github.com/df07/go-surface-scatter/pkg/scene"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

type recordingPreview struct {
	brushes []float64
	samples []scatter.BrushSample
}

func (p *recordingPreview) DrawBrush(center core.SurfaceHit, radius float64) {
	p.brushes = append(p.brushes, radius)
}

func (p *recordingPreview) DrawSample(sample scatter.BrushSample) {
	p.samples = append(p.samples, sample)
}

func newGroundWorld() *geometry.World {
	world := geometry.NewWorld()
	world.Add(geometry.NewPlane(core.Vec3{}, core.Up), 9)
	return world
}

func newTestBrush(t *testing.T) (*PrefabBrush, *scene.Scene) {
	t.Helper()
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	s := scene.New(nil)
	pb := NewPrefabBrush(s, newGroundWorld(), cfg.Brush, core.NewSeededSampler(7), nil)
	pb.SetTemplates(cfg.BuildTemplates())
	return pb, s
}

var downFromAbove = core.NewRay(core.NewVec3(0, 10, 0), core.Up.Negate())

func TestPrefabBrush_HoverReportsSamples(t *testing.T) {
	pb, _ := newTestBrush(t)
	preview := &recordingPreview{}

	samples, ok := pb.Hover(downFromAbove, core.Forward, preview)
	require.True(t, ok)
	require.Len(t, samples, 10)
	assert.Equal(t, []float64{5}, preview.brushes)
	assert.Equal(t, samples, preview.samples)

	for _, s := range samples {
		assert.InDelta(t, 0, s.WorldPosition.Y, 1e-9)
		horizontal := math.Hypot(s.WorldPosition.X, s.WorldPosition.Z)
		assert.LessOrEqual(t, horizontal, 5+1e-9)
		assert.True(t, s.WorldNormal.ApproxEqual(core.Up, 1e-9))
	}
}

func TestPrefabBrush_HoverMiss(t *testing.T) {
	pb, _ := newTestBrush(t)
	preview := &recordingPreview{}

	samples, ok := pb.Hover(core.NewRay(core.NewVec3(0, 10, 0), core.Up), core.Forward, preview)
	assert.False(t, ok)
	assert.Nil(t, samples)
	assert.Empty(t, preview.brushes)
}

func TestPrefabBrush_PaintSpawnsOneUndoGroup(t *testing.T) {
	pb, s := newTestBrush(t)
	group := s.Create("Scatter", 0)
	pb.SetParent(group)
	historyBefore := s.Journal().Len()

	samples, ok := pb.Hover(downFromAbove, core.Forward, nil)
	require.True(t, ok)
	offsetsBefore := append([]core.Vec2(nil), pb.Brush().Offsets()...)

	spawned := pb.Paint(samples)
	require.Len(t, spawned, len(samples))
	assert.Len(t, group.Children(), len(samples))
	assert.Equal(t, historyBefore+1, s.Journal().Len())
	assert.NotEqual(t, offsetsBefore, pb.Brush().Offsets(), "offsets are redrawn after painting")

	for i, obj := range spawned {
		assert.Contains(t, []string{"Rock", "Grass"}, obj.Template)
		assert.Equal(t, samples[i].WorldPosition, obj.Transform.Position)
		assert.True(t, obj.Transform.Up().ApproxEqual(core.Up, 1e-9), "up axis follows the surface normal")

		scale := obj.Transform.Scale
		assert.GreaterOrEqual(t, scale.X, 1.0)
		assert.LessOrEqual(t, scale.X, 1.5)
		assert.Equal(t, scale.X, scale.Y)
		assert.Equal(t, scale.X, scale.Z)
	}

	label, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, SpawnUndoLabel, label)
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, group.Children())
}

func TestPrefabBrush_PaintNoOp(t *testing.T) {
	pb, s := newTestBrush(t)
	samples, ok := pb.Hover(downFromAbove, core.Forward, nil)
	require.True(t, ok)

	assert.Nil(t, pb.Paint(nil))

	pb.ToggleTemplate(0)
	pb.ToggleTemplate(1)
	assert.Empty(t, pb.SelectedTemplates())
	assert.Nil(t, pb.Paint(samples))

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Journal().Len())
}

func TestPrefabBrush_PaintParentOutsideScene(t *testing.T) {
	pb, s := newTestBrush(t)
	logger := &recordingLogger{}
	pb.logger = logger
	pb.SetParent(scene.NewTemplate("Detached", 0))

	samples, _ := pb.Hover(downFromAbove, core.Forward, nil)
	spawned := pb.Paint(samples)
	require.NotEmpty(t, spawned)
	assert.Len(t, s.Roots(), len(spawned))
	assert.Contains(t, logger.lines[0], "not in the scene")
}

func TestPrefabBrush_TemplateSelection(t *testing.T) {
	pb, _ := newTestBrush(t)
	require.Len(t, pb.SelectedTemplates(), 2)

	assert.False(t, pb.ToggleTemplate(0))
	selected := pb.SelectedTemplates()
	require.Len(t, selected, 1)
	assert.Equal(t, "Grass", selected[0].Name)

	assert.False(t, pb.ToggleTemplate(5))
	pb.SelectTemplate(0, true)
	assert.Len(t, pb.SelectedTemplates(), 2)
	assert.Len(t, pb.Templates(), 2)
}

func TestPrefabBrush_Scroll(t *testing.T) {
	pb, _ := newTestBrush(t)
	brush := pb.Brush()

	pb.Scroll(3, false)
	assert.InDelta(t, 4.5, brush.Radius(), 1e-9)
	pb.Scroll(-0.5, false)
	assert.InDelta(t, 4.95, brush.Radius(), 1e-9)

	pb.Scroll(1, true)
	assert.Equal(t, 9, brush.Count())
	assert.Len(t, brush.Offsets(), 9)
	pb.Scroll(-2, true)
	assert.Equal(t, 10, brush.Count())

	pb.Scroll(0, true)
	pb.Scroll(0, false)
	assert.Equal(t, 10, brush.Count())
	assert.InDelta(t, 4.95, brush.Radius(), 1e-9)
}

func TestPrefabBrush_ScrollClamps(t *testing.T) {
	pb, _ := newTestBrush(t)
	brush := pb.Brush()
	brush.SetRadius(1)
	brush.SetCount(1)

	pb.Scroll(1, false)
	assert.Equal(t, scatter.MinRadius, brush.Radius())
	pb.Scroll(1, true)
	assert.Equal(t, scatter.MinCount, brush.Count())
}

func TestPrefabBrush_SetRandomScale(t *testing.T) {
	pb, _ := newTestBrush(t)
	pb.SetRandomScale(true, 5, 0.5)
	assert.Equal(t, config.MinScale, pb.scaleMin)
	assert.Equal(t, config.MaxScale, pb.scaleMax)
}
