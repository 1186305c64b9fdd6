package scatter

import (
	"github.com/df07/go-surface-scatter/pkg/core"
)

// Brush keeps the cached unit-disc offsets for a brush and regenerates them
// eagerly whenever radius or sample count change. It is not safe for
// concurrent use; it lives on the interactive input loop.
type Brush struct {
	radius    float64
	count     int
	offsets   []core.Vec2
	sampler   core.Sampler
	probe     ProbeConfig
	horizonly bool
	threshold float64
}

// NewBrush creates a brush with the given radius and sample count
func NewBrush(radius float64, count int, sampler core.Sampler) *Brush {
	b := &Brush{
		radius:    ClampRadius(radius),
		count:     ClampCount(count),
		sampler:   sampler,
		probe:     DefaultProbeConfig(),
		threshold: DefaultHorizontalThreshold,
	}
	b.Regenerate()
	return b
}

// Radius returns the clamped brush radius
func (b *Brush) Radius() float64 { return b.radius }

// Count returns the clamped sample count
func (b *Brush) Count() int { return b.count }

// Offsets returns the current offsets. The slice must not be modified.
func (b *Brush) Offsets() []core.Vec2 { return b.offsets }

// ProbeConfig returns the probe settings
func (b *Brush) ProbeConfig() ProbeConfig { return b.probe }

// SetProbeConfig replaces the probe settings
func (b *Brush) SetProbeConfig(cfg ProbeConfig) { b.probe = cfg }

// SetOnlyHorizontal toggles the slope filter
func (b *Brush) SetOnlyHorizontal(enabled bool) { b.horizonly = enabled }

// OnlyHorizontal reports whether the slope filter is enabled
func (b *Brush) OnlyHorizontal() bool { return b.horizonly }

// SetHorizontalThreshold sets the minimum dot(normal, up) used by the slope filter
func (b *Brush) SetHorizontalThreshold(minCos float64) { b.threshold = minCos }

// SetRadius changes the radius and regenerates offsets if it changed
func (b *Brush) SetRadius(radius float64) {
	radius = ClampRadius(radius)
	if radius == b.radius {
		return
	}
	b.radius = radius
	b.Regenerate()
}

// SetCount changes the sample count and regenerates offsets if it changed
func (b *Brush) SetCount(count int) {
	count = ClampCount(count)
	if count == b.count {
		return
	}
	b.count = count
	b.Regenerate()
}

// Regenerate draws a fresh set of offsets
func (b *Brush) Regenerate() {
	b.offsets = GenerateOffsets(b.count, b.sampler)
}

// State returns the brush frame at center
func (b *Brush) State(center core.SurfaceHit, up core.Vec3) BrushState {
	return NewBrushState(center, up, b.radius, b.count)
}

// Sample drapes every offset onto the surface around center and applies the
// slope filter. Misses are dropped, so the result may be empty.
func (b *Brush) Sample(center core.SurfaceHit, up core.Vec3, probe Probe) []BrushSample {
	state := b.State(center, up)
	samples := make([]BrushSample, 0, len(b.offsets))
	for _, offset := range b.offsets {
		if s, ok := state.Project(offset, probe, b.probe); ok {
			samples = append(samples, s)
		}
	}
	if b.horizonly {
		return FilterBySlope(samples, b.threshold)
	}
	return samples
}
