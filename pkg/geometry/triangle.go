package geometry

import (
	"fmt"

	"github.com/df07/go-surface-scatter/pkg/core"
)

// Triangle is a single mesh face. The outward normal follows the
// counter-clockwise winding V0, V1, V2.
type Triangle struct {
	V0, V1, V2 core.Vec3
	normal     core.Vec3
	bbox       AABB
}

// NewTriangle creates a triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	return &Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		normal: v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize(),
		bbox:   NewAABBFromPoints(v0, v1, v2).Expand(0.001),
	}
}

// Hit tests for an intersection using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray parallel to the triangle plane
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return nil, false
	}

	hitRecord := &HitRecord{
		T:     tHit,
		Point: ray.At(tHit),
	}
	hitRecord.SetFaceNormal(ray, t.normal)
	return hitRecord, true
}

// BoundingBox returns the padded bounds of the three vertices
func (t *Triangle) BoundingBox() AABB {
	return t.bbox
}

// Normal returns the outward unit normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// NewTriangleMesh builds triangles from indexed geometry, three indices per
// face, translated by offset. Degenerate faces are skipped.
func NewTriangleMesh(vertices []core.Vec3, faces []int, offset core.Vec3) ([]*Triangle, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3", len(faces))
	}

	triangles := make([]*Triangle, 0, len(faces)/3)
	for i := 0; i < len(faces); i += 3 {
		var v [3]core.Vec3
		for j := 0; j < 3; j++ {
			idx := faces[i+j]
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("face %d references vertex %d, mesh has %d", i/3, idx, len(vertices))
			}
			v[j] = vertices[idx].Add(offset)
		}
		if v[1].Subtract(v[0]).Cross(v[2].Subtract(v[0])).LengthSquared() == 0 {
			continue
		}
		triangles = append(triangles, NewTriangle(v[0], v[1], v[2]))
	}
	return triangles, nil
}
