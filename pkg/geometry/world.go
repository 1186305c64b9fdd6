package geometry

import (
	"math"
	"sync"

	"github.com/df07/go-surface-scatter/pkg/core"
)

// rayEpsilon keeps probes from re-hitting the surface they start on
const rayEpsilon = 1e-4

// World is the set of paintable surfaces. It answers the ray queries the
// brush tools need and satisfies scatter.Probe.
type World struct {
	mu       sync.Mutex
	surfaces []Surface
	bvh      *BVH // rebuilt lazily after Add
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{}
}

// Add places a shape on the given layer
func (w *World) Add(shape Shape, layer int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surfaces = append(w.surfaces, Surface{Shape: shape, Layer: layer})
	w.bvh = nil
}

// Len returns the number of surfaces
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.surfaces)
}

// Raycast returns the nearest hit within maxDistance among surfaces whose
// layer is in mask. maxDistance <= 0 means unbounded. The ray direction is
// normalized first so distances are in world units.
func (w *World) Raycast(ray core.Ray, maxDistance float64, mask core.LayerMask) (core.SurfaceHit, bool) {
	dir := ray.Direction.Normalize()
	if dir.LengthSquared() == 0 {
		return core.SurfaceHit{}, false
	}
	ray.Direction = dir

	tMax := maxDistance
	if tMax <= 0 {
		tMax = math.Inf(1)
	}

	w.mu.Lock()
	if w.bvh == nil {
		w.bvh = NewBVH(w.surfaces)
	}
	bvh := w.bvh
	w.mu.Unlock()

	hit, ok := bvh.Hit(ray, rayEpsilon, tMax, mask)
	if !ok {
		return core.SurfaceHit{}, false
	}
	return core.SurfaceHit{Point: hit.Point, Normal: hit.Normal}, true
}
