package scene

import (
	"github.com/df07/go-surface-scatter/pkg/core"
)

// Transform places an object in world space
type Transform struct {
	Position core.Vec3 `yaml:"position"`
	Rotation core.Quat `yaml:"rotation"`
	Scale    core.Vec3 `yaml:"scale"`
}

// IdentityTransform returns a transform at the origin with unit scale
func IdentityTransform() Transform {
	return Transform{
		Rotation: core.QuatIdentity(),
		Scale:    core.NewVec3(1, 1, 1),
	}
}

// Up returns the object's up axis in world space
func (t Transform) Up() core.Vec3 {
	return t.Rotation.Rotate(core.Up)
}

// Object is a placed scene object or a template (prefab) to instantiate from
type Object struct {
	ID         int
	Name       string
	Template   string // name of the template this object was created from
	Layer      int
	Transform  Transform
	Properties map[string]string

	parent   *Object
	children []*Object
	scene    *Scene
}

// NewTemplate creates a template object that is not part of any scene
func NewTemplate(name string, layer int) *Object {
	return &Object{
		Name:      name,
		Template:  name,
		Layer:     layer,
		Transform: IdentityTransform(),
	}
}

// Parent returns the parent object, or nil for root objects
func (o *Object) Parent() *Object {
	return o.parent
}

// Children returns a copy of the direct children
func (o *Object) Children() []*Object {
	out := make([]*Object, len(o.children))
	copy(out, o.children)
	return out
}

// InScene reports whether the object is currently part of a scene
func (o *Object) InScene() bool {
	return o.scene != nil
}

func (o *Object) removeChild(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}
