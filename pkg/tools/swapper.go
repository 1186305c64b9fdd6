package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/scene"
)

// Undo labels for swapper edits
const (
	SwapUndoLabel   = "Swap Prefabs"
	RotateUndoLabel = "Rotate Objects"
)

var (
	// ErrNoTemplate is returned by SwapFound without a swap template
	ErrNoTemplate = errors.New("swapper: no swap template")
	// ErrUnknownRotationMode is returned by SetRotation for an invalid mode
	ErrUnknownRotationMode = errors.New("swapper: unknown rotation mode")
)

// RotationMode selects how SetRotation applies its angles
type RotationMode int

const (
	// Absolute replaces the rotation
	Absolute RotationMode = iota
	// Relative rotates on top of the current rotation
	Relative
)

func (m RotationMode) String() string {
	switch m {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("RotationMode(%d)", int(m))
	}
}

// Swapper finds objects under a root and replaces them with a template
type Swapper struct {
	scene  *scene.Scene
	logger core.Logger

	Template      *scene.Object
	Root          *scene.Object // search root and parent of swapped objects
	UseSameScale  bool
	ResetRotation bool

	found []*scene.Object
}

// NewSwapper creates a swapper editing s
func NewSwapper(s *scene.Scene, logger core.Logger) *Swapper {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	return &Swapper{scene: s, logger: logger}
}

// FindByName replaces the found list with the direct children of Root whose
// name contains substr. An empty substr or missing root leaves it unchanged.
func (sw *Swapper) FindByName(substr string) {
	if substr == "" || sw.Root == nil {
		return
	}
	sw.found = sw.scene.FindChildren(sw.Root, substr)
}

// SetSelection replaces the found list, e.g. with the editor selection
func (sw *Swapper) SetSelection(objs []*scene.Object) {
	sw.found = append(sw.found[:0:0], objs...)
}

// Clear empties the found list
func (sw *Swapper) Clear() { sw.found = nil }

// Found returns the current found list
func (sw *Swapper) Found() []*scene.Object { return sw.found }

// FoundNames returns the found object names one per line
func (sw *Swapper) FoundNames() string {
	names := make([]string, len(sw.found))
	for i, o := range sw.found {
		names[i] = o.Name
	}
	return strings.Join(names, "\n")
}

// SwapFound replaces every found object with an instance of Template at the
// same position and returns the new objects. The found list is cleared.
func (sw *Swapper) SwapFound() ([]*scene.Object, error) {
	if sw.Template == nil {
		return nil, ErrNoTemplate
	}

	journal := sw.scene.Journal()
	journal.Begin(SwapUndoLabel)
	defer journal.End()

	root := sw.Root
	if root != nil && !root.InScene() {
		root = nil
	}

	swapped := make([]*scene.Object, 0, len(sw.found))
	for i, old := range sw.found {
		if !old.InScene() {
			sw.logger.Printf("Warning: skipping %q, it is no longer in the scene\n", old.Name)
			continue
		}
		prev := old.Transform
		if err := sw.scene.Destroy(old); err != nil {
			return swapped, fmt.Errorf("destroy %q: %w", old.Name, err)
		}

		obj, err := sw.scene.Instantiate(sw.Template)
		if err != nil {
			return swapped, err
		}

		t := obj.Transform
		t.Position = prev.Position
		if sw.ResetRotation {
			t.Rotation = core.QuatIdentity()
		} else {
			t.Rotation = prev.Rotation
		}
		if sw.UseSameScale {
			t.Scale = prev.Scale
		}
		if err := sw.scene.SetTransform(obj, t); err != nil {
			return swapped, err
		}
		if err := sw.scene.SetParent(obj, root); err != nil {
			return swapped, err
		}
		if err := sw.scene.Rename(obj, fmt.Sprintf("%s (%d)", obj.Name, i)); err != nil {
			return swapped, err
		}
		swapped = append(swapped, obj)
	}

	sw.found = nil
	sw.scene.MarkDirty()
	sw.logger.Printf("Swapped %d objects for %q\n", len(swapped), sw.Template.Name)
	return swapped, nil
}

// SetRotation rotates every found object by euler degrees
func (sw *Swapper) SetRotation(euler core.Vec3, mode RotationMode) error {
	if mode != Absolute && mode != Relative {
		sw.logger.Printf("Warning: no rotation method selected (%v)\n", mode)
		return fmt.Errorf("%w: %v", ErrUnknownRotationMode, mode)
	}

	rot := core.QuatEulerDegrees(euler)
	journal := sw.scene.Journal()
	journal.Begin(RotateUndoLabel)
	defer journal.End()

	for _, o := range sw.found {
		t := o.Transform
		if mode == Absolute {
			t.Rotation = rot
		} else {
			t.Rotation = t.Rotation.Mul(rot).Normalize()
		}
		if err := sw.scene.SetTransform(o, t); err != nil {
			return fmt.Errorf("rotate %q: %w", o.Name, err)
		}
	}
	return nil
}
