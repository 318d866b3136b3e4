package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
)

func boxNode(name string) *Node {
	return NewMesh(name, models.NewBox(name, math3d.V3(1, 1, 1)), models.Single(models.NewMaterial(name+"-mat")))
}

func TestAddRemove(t *testing.T) {
	a, b := NewGroup("a"), NewGroup("b")
	child := NewObject("child")

	a.Add(child)
	b.Add(child)

	if len(a.Children) != 0 {
		t.Errorf("old parent still has %d children", len(a.Children))
	}
	if child.Parent != b || len(b.Children) != 1 {
		t.Error("child not attached to new parent")
	}
	if !b.Remove(child) || child.Parent != nil {
		t.Error("Remove failed")
	}
	if b.Remove(child) {
		t.Error("second Remove reported success")
	}
	a.Add(a, nil)
	if len(a.Children) != 0 {
		t.Error("Add accepted self or nil")
	}
}

func TestTraverseAndObjectByName(t *testing.T) {
	root := NewGroup("root")
	left, right := NewObject("left"), NewObject("right")
	leaf := boxNode("leaf")
	root.Add(left, right)
	left.Add(leaf)

	var order []string
	root.Traverse(func(n *Node) { order = append(order, n.Name) })
	want := []string{"root", "left", "leaf", "right"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if root.ObjectByName("leaf") != leaf {
		t.Error("ObjectByName(leaf) did not find the leaf")
	}
	if root.ObjectByName("missing") != nil {
		t.Error("ObjectByName(missing) should be nil")
	}
	if got := Meshes(root); len(got) != 1 || got[0] != leaf {
		t.Errorf("Meshes = %v, want [leaf]", got)
	}
}

func TestUpdateMatrixWorld(t *testing.T) {
	parent := NewGroup("parent")
	parent.Transform.Position = math3d.V3(10, 0, 0)
	parent.Transform.Rotation = math3d.E(0, math.Pi/2, 0)
	child := boxNode("child")
	child.Transform.Position = math3d.V3(1, 0, 0)
	parent.Add(child)

	parent.UpdateMatrixWorld()

	// RotateY(pi/2) maps +X to -Z.
	got := child.MatrixWorld.MulVec3(math3d.Zero3())
	if want := math3d.V3(10, 0, -1); !got.ApproxEqual(want, 1e-9) {
		t.Errorf("child origin = %v, want %v", got, want)
	}
	b := parent.WorldBounds()
	if !b.Center().ApproxEqual(math3d.V3(10, 0, -1), 1e-9) {
		t.Errorf("WorldBounds center = %v", b.Center())
	}
}

func TestTakeSnapshotOnce(t *testing.T) {
	n := boxNode("box")
	first := n.TakeSnapshot()
	n.Geometry.Vertices[0].UV = math3d.V2(5, 5)
	if second := n.TakeSnapshot(); second != first {
		t.Error("TakeSnapshot replaced an existing snapshot")
	}
	if first.UV(0) == math3d.V2(5, 5) {
		t.Error("snapshot followed a geometry edit")
	}
	if NewGroup("g").TakeSnapshot() != nil {
		t.Error("group should have no snapshot")
	}
}

func TestVisibility(t *testing.T) {
	root := NewGroup("root")
	root.Add(NewObject("door_left"), NewObject("door_right"), NewObject("handle"))
	root.Children[0].Add(NewObject("door_knob"))

	changed, err := SetVisible(root, []string{"left", "knob", "absent"}, false, "door_")
	if err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	if root.ObjectByName("door_left").Visible || root.ObjectByName("door_knob").Visible {
		t.Error("named nodes still visible")
	}
	if !root.ObjectByName("door_right").Visible {
		t.Error("unnamed node hidden")
	}

	if err := HideChildren(root); err != nil {
		t.Fatalf("HideChildren: %v", err)
	}
	for _, c := range root.Children {
		if c.Visible {
			t.Errorf("%s still visible", c.Name)
		}
	}
}

func TestVisibilityInvalidArgument(t *testing.T) {
	if _, err := SetVisible(nil, []string{"a"}, true, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetVisible(nil) err = %v, want ErrInvalidArgument", err)
	}
	if err := HideChildren(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("HideChildren(nil) err = %v, want ErrInvalidArgument", err)
	}

	root := NewGroup("root")
	root.Add(NewObject("a"))
	root.Children[0].Visible = false
	_, err := SetVisible(root, []string{"a", " "}, true, "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetVisible(empty name) err = %v, want ErrInvalidArgument", err)
	}
	if root.Children[0].Visible {
		t.Error("SetVisible mutated before rejecting its arguments")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindObject, "Object3D"},
		{KindGroup, "Group"},
		{KindMesh, "Mesh"},
		{Kind(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestNewDebugCube(t *testing.T) {
	n := NewDebugCube(math3d.V3(2, 1, 1), math3d.V3(1, 2, 3), nil)
	if !n.IsMesh() {
		t.Fatal("debug cube is not a mesh")
	}
	b := n.WorldBounds()
	if !b.Center().ApproxEqual(math3d.V3(1, 2, 3), 1e-9) {
		t.Errorf("center = %v, want (1, 2, 3)", b.Center())
	}
	if !b.Size().ApproxEqual(math3d.V3(2, 1, 1), 1e-9) {
		t.Errorf("size = %v, want (2, 1, 1)", b.Size())
	}
	m := n.Material.At(0)
	if m.Color.G != 1 || m.Color.R != 0 || m.Roughness != 0.5 || m.Metalness != 0.5 {
		t.Errorf("material = %+v, want green 0.5/0.5", m)
	}

	tex := models.NewTexture("checker", nil)
	if textured := NewDebugCube(math3d.One3(), math3d.Zero3(), tex); textured.Material.At(0).Map != tex {
		t.Error("texture not applied")
	}
}
