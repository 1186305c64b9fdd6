package geometry

import (
	"math"

	"github.com/df07/go-surface-scatter/pkg/core"
)

// Disc represents a circular disc in 3D space, e.g. a clearing or a platform
type Disc struct {
	Center core.Vec3 // Center of the disc
	Normal core.Vec3 // Unit normal
	Radius float64   // Radius of the disc
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64) *Disc {
	return &Disc{
		Center: center,
		Normal: normal.Normalize(),
		Radius: radius,
	}
}

// Hit implements the Shape interface
func (d *Disc) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-6 {
		return nil, false
	}

	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	if hitPoint.Subtract(d.Center).LengthSquared() > d.Radius*d.Radius {
		return nil, false
	}

	hitRecord := &HitRecord{
		Point: hitPoint,
		T:     t,
	}
	hitRecord.SetFaceNormal(ray, d.Normal)

	return hitRecord, true
}

// BoundingBox returns a box containing the disc for any orientation
func (d *Disc) BoundingBox() AABB {
	// Extent along each axis is radius * sqrt(1 - n_axis²)
	ext := func(n float64) float64 {
		return d.Radius*math.Sqrt(math.Max(0, 1-n*n)) + 0.001
	}
	e := core.NewVec3(ext(d.Normal.X), ext(d.Normal.Y), ext(d.Normal.Z))
	return NewAABB(d.Center.Subtract(e), d.Center.Add(e))
}
