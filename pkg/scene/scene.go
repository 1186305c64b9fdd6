// Package scene is a headless scene graph: named objects with world
// transforms, an optional parent, a layer, and an undo journal that records
// every edit the tools make.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/df07/go-surface-scatter/pkg/core"
)

var (
	// ErrNilTemplate is returned when instantiating from a nil template
	ErrNilTemplate = errors.New("scene: nil template")
	// ErrNotInScene is returned for objects that are not part of this scene
	ErrNotInScene = errors.New("scene: object not in scene")
	// ErrParentCycle is returned when parenting would create a cycle
	ErrParentCycle = errors.New("scene: parent cycle")
)

// Scene owns placed objects
type Scene struct {
	objects []*Object
	nextID  int
	journal *Journal
	dirty   bool
	logger  core.Logger
}

// New creates an empty scene
func New(logger core.Logger) *Scene {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	return &Scene{
		nextID:  1,
		journal: NewJournal(),
		logger:  logger,
	}
}

// Journal returns the undo log
func (s *Scene) Journal() *Journal {
	return s.journal
}

// Dirty reports whether the scene changed since the last ClearDirty
func (s *Scene) Dirty() bool { return s.dirty }

// MarkDirty flags the scene as modified
func (s *Scene) MarkDirty() { s.dirty = true }

// ClearDirty resets the modified flag, typically after saving
func (s *Scene) ClearDirty() { s.dirty = false }

// Len returns the number of objects in the scene
func (s *Scene) Len() int { return len(s.objects) }

// Objects returns a copy of all objects in creation order
func (s *Scene) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Find returns the object with the given ID
func (s *Scene) Find(id int) (*Object, bool) {
	for _, o := range s.objects {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Create adds an empty object with an identity transform, e.g. a group to parent spawned objects to
func (s *Scene) Create(name string, layer int) *Object {
	obj := &Object{Name: name, Layer: layer, Transform: IdentityTransform()}
	s.attach(obj)
	s.journal.record("Create Object", func() { s.detach(obj) })
	s.dirty = true
	return obj
}

// Instantiate deep-copies template into the scene and records the creation for undo
func (s *Scene) Instantiate(template *Object) (*Object, error) {
	if template == nil {
		return nil, ErrNilTemplate
	}

	obj := &Object{}
	if err := copier.CopyWithOption(obj, template, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", template.Name, err)
	}
	// The copy is a new root object; graph links belong to the template
	obj.ID = 0
	obj.parent, obj.children, obj.scene = nil, nil, nil
	if obj.Template == "" {
		obj.Template = template.Name
	}
	s.attach(obj)
	s.journal.record("Instantiate", func() { s.detach(obj) })
	s.dirty = true
	return obj, nil
}

// Destroy removes obj and its children from the scene. Undo restores them.
func (s *Scene) Destroy(obj *Object) error {
	if obj == nil || obj.scene != s {
		return ErrNotInScene
	}

	parent := obj.parent
	removed := s.subtree(obj)
	s.detach(obj)

	s.journal.record("Destroy", func() {
		for _, o := range removed {
			s.attach(o)
		}
		obj.parent = parent
		if parent != nil {
			parent.children = append(parent.children, obj)
		}
	})
	s.dirty = true
	return nil
}

// SetParent reparents obj. A nil parent makes it a root object.
func (s *Scene) SetParent(obj, parent *Object) error {
	if obj == nil || obj.scene != s {
		return ErrNotInScene
	}
	if parent != nil {
		if parent.scene != s {
			return ErrNotInScene
		}
		for p := parent; p != nil; p = p.parent {
			if p == obj {
				return ErrParentCycle
			}
		}
	}
	if obj.parent == parent {
		return nil
	}

	old := obj.parent
	s.reparent(obj, parent)
	s.journal.record("Set Parent", func() { s.reparent(obj, old) })
	s.dirty = true
	return nil
}

// SetTransform replaces the transform of obj and records the old one for undo
func (s *Scene) SetTransform(obj *Object, t Transform) error {
	if obj == nil || obj.scene != s {
		return ErrNotInScene
	}
	old := obj.Transform
	obj.Transform = t
	s.journal.record("Set Transform", func() { obj.Transform = old })
	s.dirty = true
	return nil
}

// Rename changes the name of obj and records the old one for undo
func (s *Scene) Rename(obj *Object, name string) error {
	if obj == nil || obj.scene != s {
		return ErrNotInScene
	}
	old := obj.Name
	obj.Name = name
	s.journal.record("Rename", func() { obj.Name = old })
	s.dirty = true
	return nil
}

// Roots returns all objects without a parent
func (s *Scene) Roots() []*Object {
	var roots []*Object
	for _, o := range s.objects {
		if o.parent == nil {
			roots = append(roots, o)
		}
	}
	return roots
}

// FindChildren returns the direct children of parent whose name contains substr
func (s *Scene) FindChildren(parent *Object, substr string) []*Object {
	if parent == nil {
		return nil
	}
	var found []*Object
	for _, c := range parent.children {
		if strings.Contains(c.Name, substr) {
			found = append(found, c)
		}
	}
	return found
}

// Undo reverts the most recent edit group
func (s *Scene) Undo() (string, bool) {
	label, ok := s.journal.Undo()
	if ok {
		s.dirty = true
		s.logger.Printf("Undo %s\n", label)
	}
	return label, ok
}

func (s *Scene) attach(obj *Object) {
	if obj.ID == 0 {
		obj.ID = s.nextID
		s.nextID++
	}
	obj.scene = s
	s.objects = append(s.objects, obj)
}

// detach removes obj and its subtree from the object list and unlinks it from its parent
func (s *Scene) detach(obj *Object) {
	if obj.parent != nil {
		obj.parent.removeChild(obj)
		obj.parent = nil
	}
	gone := make(map[*Object]bool)
	for _, o := range s.subtree(obj) {
		gone[o] = true
		o.scene = nil
	}
	kept := s.objects[:0]
	for _, o := range s.objects {
		if !gone[o] {
			kept = append(kept, o)
		}
	}
	s.objects = kept
}

func (s *Scene) reparent(obj, parent *Object) {
	if obj.parent != nil {
		obj.parent.removeChild(obj)
	}
	obj.parent = parent
	if parent != nil {
		parent.children = append(parent.children, obj)
	}
}

// subtree returns obj followed by all its descendants
func (s *Scene) subtree(obj *Object) []*Object {
	out := []*Object{obj}
	for _, c := range obj.children {
		out = append(out, s.subtree(c)...)
	}
	return out
}
