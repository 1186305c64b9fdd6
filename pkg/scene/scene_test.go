package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-surface-scatter/pkg/core"
)

func newRockTemplate() *Object {
	tpl := NewTemplate("Rock", 28)
	tpl.Transform.Scale = core.NewVec3(2, 2, 2)
	tpl.Properties = map[string]string{"material": "granite"}
	return tpl
}

func TestInstantiate_DeepCopiesTemplate(t *testing.T) {
	s := New(nil)
	tpl := newRockTemplate()

	a, err := s.Instantiate(tpl)
	require.NoError(t, err)
	b, err := s.Instantiate(tpl)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Rock", a.Name)
	assert.Equal(t, "Rock", a.Template)
	assert.Equal(t, 28, a.Layer)
	assert.Equal(t, core.NewVec3(2, 2, 2), a.Transform.Scale)
	assert.True(t, a.InScene())
	assert.False(t, tpl.InScene())

	// Properties are not shared with the template or between instances
	a.Properties["material"] = "basalt"
	assert.Equal(t, "granite", tpl.Properties["material"])
	assert.Equal(t, "granite", b.Properties["material"])

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Dirty())
}

func TestInstantiate_FromSceneObjectGetsNewID(t *testing.T) {
	s := New(nil)
	a, err := s.Instantiate(newRockTemplate())
	require.NoError(t, err)

	clone, err := s.Instantiate(a)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, clone.ID)
	found, ok := s.Find(clone.ID)
	require.True(t, ok)
	assert.Same(t, clone, found)
}

func TestInstantiate_FromParentedSceneObject(t *testing.T) {
	s := New(nil)
	group := s.Create("Props", 0)
	rock := s.Create("Rock", 28)
	require.NoError(t, s.SetParent(rock, group))
	moss := s.Create("Moss", 28)
	require.NoError(t, s.SetParent(moss, rock))

	clone, err := s.Instantiate(rock)
	require.NoError(t, err)
	assert.Nil(t, clone.Parent())
	assert.Empty(t, clone.Children())
	assert.Contains(t, s.Roots(), clone)
	assert.Equal(t, []*Object{rock}, group.Children())

	require.NoError(t, s.SetParent(clone, group))
	assert.Equal(t, []*Object{rock, clone}, group.Children())
	assert.Len(t, s.Snapshot().Objects, 4)

	require.NoError(t, s.Destroy(clone))
	assert.True(t, moss.InScene())
	assert.Equal(t, []*Object{moss}, rock.Children())
	assert.Equal(t, 3, s.Len())
}

func TestInstantiate_NilTemplate(t *testing.T) {
	_, err := New(nil).Instantiate(nil)
	assert.ErrorIs(t, err, ErrNilTemplate)
}

func TestSetParent(t *testing.T) {
	s := New(nil)
	group := s.Create("Props", 0)
	rock, err := s.Instantiate(newRockTemplate())
	require.NoError(t, err)

	require.NoError(t, s.SetParent(rock, group))
	assert.Same(t, group, rock.Parent())
	assert.Equal(t, []*Object{rock}, group.Children())
	assert.Equal(t, []*Object{group}, s.Roots())

	assert.ErrorIs(t, s.SetParent(group, rock), ErrParentCycle)
	assert.ErrorIs(t, s.SetParent(group, group), ErrParentCycle)

	require.NoError(t, s.SetParent(rock, nil))
	assert.Nil(t, rock.Parent())
	assert.Empty(t, group.Children())

	other := New(nil)
	assert.ErrorIs(t, other.SetParent(rock, nil), ErrNotInScene)
}

func TestDestroy_RemovesSubtree(t *testing.T) {
	s := New(nil)
	group := s.Create("Props", 0)
	rock, _ := s.Instantiate(newRockTemplate())
	require.NoError(t, s.SetParent(rock, group))

	require.NoError(t, s.Destroy(group))
	assert.Equal(t, 0, s.Len())
	assert.False(t, rock.InScene())
	assert.ErrorIs(t, s.Destroy(group), ErrNotInScene)
}

func TestFindChildren(t *testing.T) {
	s := New(nil)
	root := s.Create("Level", 0)
	for _, name := range []string{"Tree_A", "Tree_B", "Bush", "tree_lower"} {
		o := s.Create(name, 0)
		require.NoError(t, s.SetParent(o, root))
	}
	// Grandchildren are not searched
	nested := s.Create("Tree_Nested", 0)
	require.NoError(t, s.SetParent(nested, root.Children()[2]))

	found := s.FindChildren(root, "Tree")
	require.Len(t, found, 2)
	assert.Equal(t, "Tree_A", found[0].Name)
	assert.Equal(t, "Tree_B", found[1].Name)
	assert.Nil(t, s.FindChildren(nil, "Tree"))
}

func TestUndo_Groups(t *testing.T) {
	s := New(nil)
	tpl := newRockTemplate()

	s.Journal().Begin("Spawn Objects")
	for i := 0; i < 3; i++ {
		o, err := s.Instantiate(tpl)
		require.NoError(t, err)
		require.NoError(t, s.SetTransform(o, Transform{Position: core.NewVec3(float64(i), 0, 0)}))
	}
	s.Journal().End()

	single, _ := s.Instantiate(tpl)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 2, s.Journal().Len())

	label, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, "Instantiate", label)
	assert.False(t, single.InScene())
	assert.Equal(t, 3, s.Len())

	label, ok = s.Undo()
	require.True(t, ok)
	assert.Equal(t, "Spawn Objects", label)
	assert.Equal(t, 0, s.Len())

	_, ok = s.Undo()
	assert.False(t, ok)
}

func TestUndo_DestroyRestoresHierarchy(t *testing.T) {
	s := New(nil)
	group := s.Create("Props", 0)
	rock, _ := s.Instantiate(newRockTemplate())
	require.NoError(t, s.SetParent(rock, group))
	require.NoError(t, s.Destroy(rock))
	assert.Empty(t, group.Children())

	_, ok := s.Undo()
	require.True(t, ok)
	assert.True(t, rock.InScene())
	assert.Same(t, group, rock.Parent())
	assert.Equal(t, []*Object{rock}, group.Children())
}

func TestUndo_TransformAndRename(t *testing.T) {
	s := New(nil)
	rock, _ := s.Instantiate(newRockTemplate())
	before := rock.Transform

	require.NoError(t, s.SetTransform(rock, Transform{Position: core.NewVec3(5, 0, 0)}))
	require.NoError(t, s.Rename(rock, "Boulder"))

	s.Undo()
	assert.Equal(t, "Rock", rock.Name)
	s.Undo()
	assert.Equal(t, before, rock.Transform)
}

func TestJournal_EmptyGroupDropped(t *testing.T) {
	j := NewJournal()
	j.Begin("Nothing")
	j.End()
	assert.Equal(t, 0, j.Len())

	j.Begin("Open")
	j.record("x", func() {})
	assert.Equal(t, 1, j.Len())
	j.Clear()
	assert.Equal(t, 0, j.Len())
}

func TestSnapshotRestore(t *testing.T) {
	s := New(nil)
	group := s.Create("Props", 0)
	rock, _ := s.Instantiate(newRockTemplate())
	require.NoError(t, s.SetParent(rock, group))
	require.NoError(t, s.SetTransform(rock, Transform{
		Position: core.NewVec3(1, 2, 3),
		Rotation: core.QuatEulerDegrees(core.NewVec3(0, 45, 0)),
		Scale:    core.NewVec3(1, 1, 1),
	}))
	loose := s.Create("Marker", 5)

	data := s.Snapshot()
	require.Len(t, data.Objects, 3)
	assert.Equal(t, -1, data.Objects[0].Parent)
	assert.Equal(t, 0, data.Objects[1].Parent)
	assert.Equal(t, "Marker", data.Objects[2].Name)

	restored := New(nil)
	require.NoError(t, restored.Restore(data))
	assert.Equal(t, 3, restored.Len())
	assert.False(t, restored.Dirty())
	assert.Equal(t, 0, restored.Journal().Len())

	roots := restored.Roots()
	require.Len(t, roots, 2)
	children := roots[0].Children()
	require.Len(t, children, 1)
	assert.Equal(t, rock.Transform, children[0].Transform)
	assert.Equal(t, "granite", children[0].Properties["material"])
	assert.Equal(t, loose.Layer, roots[1].Layer)
}

func TestRestore_InvalidParent(t *testing.T) {
	s := New(nil)
	err := s.Restore(Data{Objects: []ObjectData{{Name: "a", Parent: 0}}})
	assert.Error(t, err)
}
