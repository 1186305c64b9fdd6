package geometry

import (
	"github.com/df07/go-surface-scatter/pkg/core"
)

// HitRecord contains information about a ray-surface intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection, facing the ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape interface for surfaces that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool)
	BoundingBox() AABB
}

// AxisAlignment represents which axis a planar surface is perpendicular to
type AxisAlignment int

const (
	NotAxisAligned AxisAlignment = iota
	XAxisAligned
	YAxisAligned
	ZAxisAligned
)

// getAxisAlignment reports the axis a normal points along, if any
func getAxisAlignment(normal core.Vec3) AxisAlignment {
	const tolerance = 1e-9
	n := normal.Normalize()
	switch {
	case n.Y*n.Y+n.Z*n.Z < tolerance:
		return XAxisAligned
	case n.X*n.X+n.Z*n.Z < tolerance:
		return YAxisAligned
	case n.X*n.X+n.Y*n.Y < tolerance:
		return ZAxisAligned
	default:
		return NotAxisAligned
	}
}
