package scene

import "fmt"

// Data is the serializable form of a scene
type Data struct {
	Objects []ObjectData `yaml:"objects"`
}

// ObjectData is one object in a snapshot. Parent is an index into
// Data.Objects, or -1 for root objects.
type ObjectData struct {
	Name       string            `yaml:"name"`
	Template   string            `yaml:"template,omitempty"`
	Layer      int               `yaml:"layer"`
	Parent     int               `yaml:"parent"`
	Transform  Transform         `yaml:"transform"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// Snapshot captures all objects. Parents always precede their children.
func (s *Scene) Snapshot() Data {
	var data Data
	index := make(map[*Object]int)

	var visit func(o *Object)
	visit = func(o *Object) {
		parent := -1
		if o.parent != nil {
			parent = index[o.parent]
		}
		index[o] = len(data.Objects)
		data.Objects = append(data.Objects, ObjectData{
			Name:       o.Name,
			Template:   o.Template,
			Layer:      o.Layer,
			Parent:     parent,
			Transform:  o.Transform,
			Properties: o.Properties,
		})
		for _, c := range o.children {
			visit(c)
		}
	}
	for _, root := range s.Roots() {
		visit(root)
	}
	return data
}

// Restore replaces the scene content with data and clears the undo history
func (s *Scene) Restore(data Data) error {
	for i, od := range data.Objects {
		if od.Parent >= i || od.Parent < -1 {
			return fmt.Errorf("restore: object %d (%q) has invalid parent %d", i, od.Name, od.Parent)
		}
	}

	for _, o := range s.objects {
		o.scene = nil
		o.parent = nil
		o.children = nil
	}
	s.objects = nil
	s.nextID = 1

	created := make([]*Object, len(data.Objects))
	for i, od := range data.Objects {
		obj := &Object{
			Name:       od.Name,
			Template:   od.Template,
			Layer:      od.Layer,
			Transform:  od.Transform,
			Properties: od.Properties,
		}
		s.attach(obj)
		if od.Parent >= 0 {
			s.reparent(obj, created[od.Parent])
		}
		created[i] = obj
	}

	s.journal.Clear()
	s.dirty = false
	return nil
}
