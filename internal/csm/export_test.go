package csm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var equalTransformations = cmp.Comparer(func(a, b *lcs.LocalCoordinateSystem) bool {
	return a.Equal(b)
})

func robotArm(t *testing.T) *Manager {
	t.Helper()
	m := New("base", WithName("robot"))
	require.NoError(t, m.AddCS("robot_base", "base", translation(t, 2, 0, 0)))
	require.NoError(t, m.AddCS("flange", "robot_base", rotated(t, geometry.RotationMatrixY(0.2), 0, 0, 1.5)))
	return m
}

func torch(t *testing.T) *Manager {
	t.Helper()
	m := New("flange", WithName("torch"))
	require.NoError(t, m.AddCS("torch_tip", "flange", translation(t, 0, 0, 0.3)))
	return m
}

func TestExportImportRoundTrip(t *testing.T) {
	m := weldingCell(t)
	_, err := m.GetCS("lens", "tcp")
	require.NoError(t, err)

	data := Export(m)
	assert.Equal(t, "cell", data.Name)
	assert.Equal(t, "base", data.RootSystemName)
	assert.Len(t, data.CoordinateSystems, 4)

	imported, err := Import(data)
	require.NoError(t, err)

	if diff := cmp.Diff(m.CoordinateSystemNames(), imported.CoordinateSystemNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(data, Export(imported), equalTransformations); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, imported.NumberOfComputedEdges())
}

func TestImportOrderIndependent(t *testing.T) {
	data := Export(weldingCell(t))
	records := data.CoordinateSystems
	reversed := make([]CoordinateTransformation, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	data.CoordinateSystems = reversed

	m, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumberOfCoordinateSystems())

	tcp, err := m.GetCS("tcp", "base")
	require.NoError(t, err)
	assert.True(t, tcp.IsTimeDependent())
}

func TestImportAttachesReferenceSystems(t *testing.T) {
	// "base" only appears as a child, its reference is added on demand
	data := HierarchyData{
		RootSystemName: "base",
		CoordinateSystems: []CoordinateTransformation{
			{Name: "base", ReferenceSystem: "world", Transformation: translation(t, 1, 0, 0)},
		},
	}
	m, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "world"}, m.CoordinateSystemNames())
	assert.Equal(t, DefaultName, m.Name())

	assert.Equal(t, "world", Export(m).RootSystemName)
}

func TestImportErrors(t *testing.T) {
	id := lcs.Identity()
	tests := []struct {
		name    string
		root    string
		records []CoordinateTransformation
		want    error
	}{
		{
			name: "orphan",
			root: "base",
			records: []CoordinateTransformation{
				{Name: "a", ReferenceSystem: "base", Transformation: id},
				{Name: "x", ReferenceSystem: "y", Transformation: id},
			},
			want: ErrIncompleteHierarchy,
		},
		{
			name: "directed cycle",
			root: "base",
			records: []CoordinateTransformation{
				{Name: "a", ReferenceSystem: "base", Transformation: id},
				{Name: "b", ReferenceSystem: "a", Transformation: id},
				{Name: "c", ReferenceSystem: "b", Transformation: id},
				{Name: "a", ReferenceSystem: "c", Transformation: id},
			},
			want: ErrCyclicHierarchy,
		},
		{
			name: "closing edge",
			root: "base",
			records: []CoordinateTransformation{
				{Name: "a", ReferenceSystem: "base", Transformation: id},
				{Name: "b", ReferenceSystem: "base", Transformation: id},
				{Name: "a", ReferenceSystem: "b", Transformation: id},
			},
			want: ErrCyclicHierarchy,
		},
		{
			name: "self reference",
			root: "base",
			records: []CoordinateTransformation{
				{Name: "base", ReferenceSystem: "base", Transformation: id},
			},
			want: ErrCyclicHierarchy,
		},
		{
			name: "duplicate",
			root: "base",
			records: []CoordinateTransformation{
				{Name: "a", ReferenceSystem: "base", Transformation: id},
				{Name: "base", ReferenceSystem: "a", Transformation: id},
			},
			want: ErrDuplicateSystem,
		},
		{
			name: "missing transformation",
			root: "base",
			records: []CoordinateTransformation{
				{Name: "a", ReferenceSystem: "base"},
			},
			want: ErrIncompleteHierarchy,
		},
		{
			name: "missing root",
			want: ErrIncompleteHierarchy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(HierarchyData{RootSystemName: tt.root, CoordinateSystems: tt.records})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMerge(t *testing.T) {
	m := weldingCell(t)
	require.NoError(t, m.Merge(robotArm(t)))

	assert.Equal(t, 1, m.NumberOfSubsystems())
	assert.Equal(t, []string{"robot"}, m.SubsystemNames())
	assert.Equal(t, []string{"base", "wp", "tcp", "camera", "lens", "robot_base", "flange"}, m.CoordinateSystemNames())

	flange, err := m.GetCS("flange", "base")
	require.NoError(t, err)
	assert.InDelta(t, 2, flange.Coordinates(0).X, tol)
	assert.InDelta(t, 1.5, flange.Coordinates(0).Z, tol)

	_, err = m.GetCS("flange", "tcp")
	require.NoError(t, err)
}

func TestMergeErrors(t *testing.T) {
	t.Run("more than one common system", func(t *testing.T) {
		m := weldingCell(t)
		other := New("base", WithName("other"))
		require.NoError(t, other.AddCS("wp", "base", lcs.Identity()))
		assert.ErrorIs(t, m.Merge(other), ErrNameCollision)
		assert.Equal(t, 0, m.NumberOfSubsystems())
	})

	t.Run("no common system", func(t *testing.T) {
		m := weldingCell(t)
		assert.ErrorIs(t, m.Merge(New("elsewhere", WithName("other"))), ErrNoCommonSystem)
	})

	t.Run("manager name", func(t *testing.T) {
		m := weldingCell(t)
		other := New("base", WithName("cell"))
		require.NoError(t, other.AddCS("x", "base", lcs.Identity()))
		assert.ErrorIs(t, m.Merge(other), ErrDuplicateSubsystem)
		assert.False(t, m.HasCoordinateSystem("x"))
	})

	t.Run("subsystem name", func(t *testing.T) {
		m := weldingCell(t)
		require.NoError(t, m.Merge(robotArm(t)))
		other := New("lens", WithName("robot"))
		require.NoError(t, other.AddCS("filter", "lens", lcs.Identity()))
		assert.ErrorIs(t, m.Merge(other), ErrDuplicateSubsystem)
	})

	t.Run("itself", func(t *testing.T) {
		m := weldingCell(t)
		assert.Error(t, m.Merge(m))
	})
}

func TestUnmerge(t *testing.T) {
	m := weldingCell(t)
	robot := robotArm(t)
	require.NoError(t, m.Merge(robot))
	_, err := m.GetCS("flange", "lens")
	require.NoError(t, err)

	extracted, err := m.Unmerge()
	require.NoError(t, err)
	require.Len(t, extracted, 1)

	if diff := cmp.Diff(Export(robot), Export(extracted[0]), equalTransformations); diff != "" {
		t.Errorf("extracted manager mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"base", "wp", "tcp", "camera", "lens"}, m.CoordinateSystemNames())
	assert.Equal(t, 0, m.NumberOfSubsystems())
	assert.Equal(t, 0, m.NumberOfComputedEdges())
	assert.Equal(t, []string{"wp", "camera"}, m.ChildSystemNames("base"))

	_, err = m.Unmerge()
	assert.ErrorIs(t, err, ErrNoSubsystems)

	// the extracted manager is independent
	require.NoError(t, extracted[0].AddCS("gripper", "flange", lcs.Identity()))
	assert.False(t, m.HasCoordinateSystem("gripper"))
}

func TestUnmergeTakesAttachedSystems(t *testing.T) {
	m := weldingCell(t)
	require.NoError(t, m.Merge(robotArm(t)))
	require.NoError(t, m.AddCS("gripper", "flange", translation(t, 0, 0, 0.1)))
	require.NoError(t, m.AddCS("jaw", "gripper", translation(t, 0.05, 0, 0)))
	require.NoError(t, m.AddCS("fixture", "wp", lcs.Identity()))

	extracted, err := m.Unmerge()
	require.NoError(t, err)
	require.Len(t, extracted, 1)

	assert.Equal(t, []string{"base", "wp", "tcp", "camera", "lens", "fixture"}, m.CoordinateSystemNames())
	assert.False(t, m.HasCoordinateSystem("gripper"))
	for _, n := range m.CoordinateSystemNames() {
		_, err := m.GetCS(n, "base")
		assert.NoError(t, err, "system %q not connected", n)
	}

	robot := extracted[0]
	assert.Equal(t, []string{"base", "robot_base", "flange", "gripper", "jaw"}, robot.CoordinateSystemNames())
	jaw, err := robot.GetCS("jaw", "flange")
	require.NoError(t, err)
	assert.InDelta(t, 0.05, jaw.Coordinates(0).X, tol)
	assert.InDelta(t, 0.1, jaw.Coordinates(0).Z, tol)

	imported, err := Import(Export(robot))
	require.NoError(t, err)
	assert.Equal(t, robot.NumberOfCoordinateSystems(), imported.NumberOfCoordinateSystems())
}

func TestNestedSubsystems(t *testing.T) {
	robot := robotArm(t)
	require.NoError(t, robot.Merge(torch(t)))

	m := weldingCell(t)
	require.NoError(t, m.Merge(robot))
	assert.True(t, m.HasCoordinateSystem("torch_tip"))
	assert.Equal(t, []string{"robot"}, m.SubsystemNames())

	data := Export(m)
	want := []SubsystemData{
		{
			Name:           "robot",
			RootSystemName: "base",
			ParentSystem:   "cell",
			CommonSystem:   "base",
			Members:        []string{"base", "robot_base", "flange", "torch_tip"},
		},
		{
			Name:           "torch",
			RootSystemName: "flange",
			ParentSystem:   "robot",
			CommonSystem:   "flange",
			Members:        []string{"flange", "torch_tip"},
		},
	}
	if diff := cmp.Diff(want, data.Subsystems); diff != "" {
		t.Errorf("subsystems mismatch (-want +got):\n%s", diff)
	}

	t.Run("protected members", func(t *testing.T) {
		assert.ErrorIs(t, m.DeleteCS("torch_tip", false), ErrProtectedSystem)
	})

	t.Run("name reuse", func(t *testing.T) {
		other := New("lens", WithName("torch"))
		require.NoError(t, other.AddCS("filter", "lens", lcs.Identity()))
		assert.ErrorIs(t, m.Merge(other), ErrDuplicateSubsystem)
	})

	t.Run("recursive unmerge", func(t *testing.T) {
		imported, err := Import(data)
		require.NoError(t, err)

		for _, mgr := range []*Manager{m, imported} {
			copied, err := Import(Export(mgr))
			require.NoError(t, err)

			extracted, err := copied.Unmerge()
			require.NoError(t, err)
			require.Len(t, extracted, 1)
			robot := extracted[0]
			assert.Equal(t, "robot", robot.Name())
			assert.Equal(t, []string{"torch"}, robot.SubsystemNames())
			assert.True(t, robot.HasCoordinateSystem("torch_tip"))

			tools, err := robot.Unmerge()
			require.NoError(t, err)
			require.Len(t, tools, 1)
			assert.Equal(t, []string{"flange", "torch_tip"}, tools[0].CoordinateSystemNames())
			assert.Equal(t, []string{"base", "robot_base", "flange"}, robot.CoordinateSystemNames())
		}
	})
}

func TestImportSubsystemErrors(t *testing.T) {
	m := weldingCell(t)
	require.NoError(t, m.Merge(robotArm(t)))
	data := Export(m)

	unknownMember := data
	unknownMember.Subsystems = []SubsystemData{data.Subsystems[0]}
	unknownMember.Subsystems[0].Members = []string{"base", "ghost"}
	_, err := Import(unknownMember)
	assert.ErrorIs(t, err, ErrUnknownSystem)

	unknownParent := data
	unknownParent.Subsystems = []SubsystemData{data.Subsystems[0]}
	unknownParent.Subsystems[0].ParentSystem = "nobody"
	_, err = Import(unknownParent)
	assert.ErrorIs(t, err, ErrIncompleteHierarchy)
}
