// Package scatter generates placement points for a circular brush on an
// arbitrary surface. Offsets are drawn uniformly on the unit disc, laid out in
// the tangent plane at the brush center and draped onto the surface with
// short probe rays.
package scatter

import (
	"math"

	"github.com/df07/go-surface-scatter/pkg/core"
)

const (
	// DefaultLift raises probe origins above the tangent plane so a probe
	// never starts inside the surface.
	DefaultLift = 2.0
	// DefaultProbeDistance is the maximum length of a probe ray.
	DefaultProbeDistance = 5.0
	// DefaultHorizontalThreshold is the minimum dot(normal, up) for a
	// sample to count as horizontal, about 45.6 degrees of slope.
	DefaultHorizontalThreshold = 0.7
	// MinRadius and MinCount are the lower clamps for brush parameters.
	MinRadius = 1.0
	MinCount  = 1
)

// Probe answers ray-intersection queries against the host's surfaces
type Probe interface {
	Raycast(ray core.Ray, maxDistance float64, mask core.LayerMask) (core.SurfaceHit, bool)
}

// ProbeConfig controls how offsets are draped onto the surface
type ProbeConfig struct {
	Lift        float64        `yaml:"lift"`
	MaxDistance float64        `yaml:"maxDistance"`
	Mask        core.LayerMask `yaml:"mask"`
}

// DefaultProbeConfig returns the standard lift and probe distance on all layers
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Lift:        DefaultLift,
		MaxDistance: DefaultProbeDistance,
		Mask:        core.AllLayers,
	}
}

// BrushSample is one candidate placement
type BrushSample struct {
	Offset        core.Vec2 // position in the unit disc
	WorldPosition core.Vec3
	WorldNormal   core.Vec3
}

// BrushState is the transient brush frame for one query
type BrushState struct {
	Center      core.SurfaceHit
	Radius      float64
	SampleCount int
	Tangent     core.Vec3
	Bitangent   core.Vec3
}

// NewBrushState clamps radius and count and builds the tangent basis for center
func NewBrushState(center core.SurfaceHit, up core.Vec3, radius float64, count int) BrushState {
	tangent, bitangent := TangentBasis(center.Normal, up)
	return BrushState{
		Center:      center,
		Radius:      ClampRadius(radius),
		SampleCount: ClampCount(count),
		Tangent:     tangent,
		Bitangent:   bitangent,
	}
}

// ClampRadius applies the minimum brush radius. NaN becomes the minimum.
func ClampRadius(radius float64) float64 {
	if math.IsNaN(radius) {
		return MinRadius
	}
	return max(radius, MinRadius)
}

// ClampCount applies the minimum sample count
func ClampCount(count int) int {
	return max(count, MinCount)
}

// GenerateOffsets returns count points drawn uniformly over the unit disc.
// Counts below one are clamped to one.
func GenerateOffsets(count int, sampler core.Sampler) []core.Vec2 {
	count = ClampCount(count)
	offsets := make([]core.Vec2, count)
	for i := range offsets {
		offsets[i] = core.SamplePointInUnitDisk(sampler.Get2D())
	}
	return offsets
}

// TangentBasis returns an orthonormal tangent and bitangent for normal,
// oriented by the up reference (usually the viewer's up vector).
// When normal and up are parallel a world axis is used as reference instead.
func TangentBasis(normal, up core.Vec3) (tangent, bitangent core.Vec3) {
	normal = normal.Normalize()
	t := normal.Cross(up)
	if t.LengthSquared() < 1e-12 {
		t = normal.Cross(core.Perpendicular(normal))
	}
	tangent = t.Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

// ProbeRay returns the probe ray for offset within the brush state
func (s BrushState) ProbeRay(offset core.Vec2, lift float64) core.Ray {
	planar := s.Tangent.Multiply(offset.X).Add(s.Bitangent.Multiply(offset.Y))
	origin := s.Center.Point.
		Add(planar.Multiply(s.Radius)).
		Add(s.Center.Normal.Multiply(lift))
	return core.NewRay(origin, s.Center.Normal.Negate())
}

// Project drapes a single offset onto the surface. A miss returns false.
func (s BrushState) Project(offset core.Vec2, probe Probe, cfg ProbeConfig) (BrushSample, bool) {
	hit, ok := probe.Raycast(s.ProbeRay(offset, cfg.Lift), cfg.MaxDistance, cfg.Mask)
	if !ok {
		return BrushSample{}, false
	}
	return BrushSample{
		Offset:        offset,
		WorldPosition: hit.Point,
		WorldNormal:   hit.Normal,
	}, true
}

// ProjectToSurface projects offset into the tangent plane at center, scaled
// by radius, and probes the surface along -normal from a lifted origin.
// A probe miss returns false and is not an error.
func ProjectToSurface(center, normal, up core.Vec3, offset core.Vec2, radius float64, probe Probe, cfg ProbeConfig) (BrushSample, bool) {
	state := NewBrushState(core.SurfaceHit{Point: center, Normal: normal.Normalize()}, up, radius, MinCount)
	state.Radius = radius
	return state.Project(offset, probe, cfg)
}

// FilterByOrientation keeps only samples on near-horizontal surfaces when
// onlyHorizontal is set, using DefaultHorizontalThreshold
func FilterByOrientation(samples []BrushSample, onlyHorizontal bool) []BrushSample {
	if !onlyHorizontal {
		return samples
	}
	return FilterBySlope(samples, DefaultHorizontalThreshold)
}

// FilterBySlope keeps samples whose normal has dot(normal, up) > minCos
func FilterBySlope(samples []BrushSample, minCos float64) []BrushSample {
	kept := make([]BrushSample, 0, len(samples))
	for _, s := range samples {
		if s.WorldNormal.Dot(core.Up) > minCos {
			kept = append(kept, s)
		}
	}
	return kept
}

// pitchCorrection turns "look along the normal" into "stand on the normal"
var pitchCorrection = core.QuatEulerDegrees(core.NewVec3(90, 0, 0))

// ComputePlacementRotation orients an object so its up axis follows
// hitNormal, spun by yawDegrees around that normal.
// The composition is lookRotation(hitNormal) * pitch(90) * yaw.
func ComputePlacementRotation(hitNormal core.Vec3, yawDegrees float64) core.Quat {
	look := core.LookRotation(hitNormal, core.Up)
	yaw := core.QuatEulerDegrees(core.NewVec3(0, yawDegrees, 0))
	return look.Mul(pitchCorrection).Mul(yaw).Normalize()
}
