package geometry

import (
	"sort"

	"github.com/df07/go-surface-scatter/pkg/core"
)

// Surface is a shape placed on a layer of the world
type Surface struct {
	Shape Shape
	Layer int
}

// bvhNode represents a node in the Bounding Volume Hierarchy. Every node
// carries the union of the layers below it so filtered queries can skip
// whole subtrees.
type bvhNode struct {
	box      AABB
	layers   core.LayerMask
	left     *bvhNode
	right    *bvhNode
	surfaces []Surface // non-nil for leaf nodes only
}

// BVH accelerates ray queries against many surfaces
type BVH struct {
	root *bvhNode
}

// Leaf threshold: if we have this many or fewer surfaces, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH from a slice of surfaces. The slice is copied.
func NewBVH(surfaces []Surface) *BVH {
	if len(surfaces) == 0 {
		return &BVH{}
	}
	owned := make([]Surface, len(surfaces))
	copy(owned, surfaces)
	return &BVH{root: buildBVH(owned)}
}

// buildBVH recursively splits surfaces at the median of the longest axis
func buildBVH(surfaces []Surface) *bvhNode {
	box := surfaces[0].Shape.BoundingBox()
	layers := core.LayerBit(surfaces[0].Layer)
	for _, s := range surfaces[1:] {
		box = box.Union(s.Shape.BoundingBox())
		layers |= core.LayerBit(s.Layer)
	}

	if len(surfaces) <= leafThreshold {
		return &bvhNode{box: box, layers: layers, surfaces: surfaces}
	}

	axis := box.LongestAxis()
	sort.Slice(surfaces, func(i, j int) bool {
		ci := surfaces[i].Shape.BoundingBox().Center()
		cj := surfaces[j].Shape.BoundingBox().Center()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})

	mid := len(surfaces) / 2
	return &bvhNode{
		box:    box,
		layers: layers,
		left:   buildBVH(surfaces[:mid]),
		right:  buildBVH(surfaces[mid:]),
	}
}

// Hit returns the closest intersection with a surface whose layer is in mask
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, mask core.LayerMask) (*HitRecord, bool) {
	if bvh.root == nil {
		return nil, false
	}
	return hitNode(bvh.root, ray, tMin, tMax, mask)
}

func hitNode(node *bvhNode, ray core.Ray, tMin, tMax float64, mask core.LayerMask) (*HitRecord, bool) {
	if node.layers&mask == 0 || !node.box.Hit(ray, tMin, tMax) {
		return nil, false
	}

	var closest *HitRecord
	closestSoFar := tMax

	if node.surfaces != nil {
		for _, s := range node.surfaces {
			if !mask.Contains(s.Layer) {
				continue
			}
			if hit, ok := s.Shape.Hit(ray, tMin, closestSoFar); ok {
				closestSoFar = hit.T
				closest = hit
			}
		}
		return closest, closest != nil
	}

	for _, child := range [2]*bvhNode{node.left, node.right} {
		if child == nil {
			continue
		}
		if hit, ok := hitNode(child, ray, tMin, closestSoFar, mask); ok {
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, closest != nil
}

// depth returns the height of the tree, used by tests
func (bvh *BVH) depth() int {
	var walk func(n *bvhNode) int
	walk = func(n *bvhNode) int {
		if n == nil {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(bvh.root)
}
