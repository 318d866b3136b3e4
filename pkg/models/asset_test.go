package models

import (
	"math"
	"testing"

	"github.com/taigrr/carve/pkg/math3d"
)

func twoNodeAsset() *Asset {
	mesh := NewBox("box", math3d.V3(1, 1, 1))
	// Second half of the faces use document material 1, a few use none.
	for i := range mesh.Faces {
		switch {
		case i < 6:
			mesh.Faces[i].Material = 1
		case i < 10:
			mesh.Faces[i].Material = 0
		default:
			mesh.Faces[i].Material = -1
		}
	}
	mesh.CalculateBounds()
	return &Asset{
		Name:      "pair",
		Meshes:    []*Mesh{mesh},
		Materials: []*Material{NewMaterial("zero"), NewMaterial("one")},
		Nodes: []AssetNode{
			{Name: "root", Mesh: 0, Children: []int{1}, Translation: math3d.V3(10, 0, 0), Scale: math3d.One3()},
			{Name: "child", Mesh: 0, Translation: math3d.V3(0, 5, 0), Rotation: math3d.E(0, math.Pi/2, 0), Scale: math3d.V3(2, 2, 2)},
		},
		Roots: []int{0},
	}
}

func TestNodeGeometryRemapsMaterials(t *testing.T) {
	a := twoNodeAsset()
	mesh, ms := a.NodeGeometry(0)

	if !ms.IsMulti() || ms.Len() != 3 {
		t.Fatalf("materials multi=%v len=%d, want multi 3", ms.IsMulti(), ms.Len())
	}
	// Order of first use: document 1, document 0, then default.
	wantNames := []string{"one", "zero", "default"}
	for i, w := range wantNames {
		if got := ms.At(i).Name; got != w {
			t.Errorf("material %d = %q, want %q", i, got, w)
		}
	}
	if mesh.Faces[0].Material != 0 || mesh.Faces[6].Material != 1 || mesh.Faces[11].Material != 2 {
		t.Errorf("face groups = %d %d %d, want 0 1 2",
			mesh.Faces[0].Material, mesh.Faces[6].Material, mesh.Faces[11].Material)
	}
	if a.Meshes[0].Faces[0].Material != 1 {
		t.Error("NodeGeometry modified the shared asset mesh")
	}
}

func TestNodeGeometrySingle(t *testing.T) {
	asset := newSingleMeshAsset(NewBox("box", math3d.V3(1, 1, 1)), nil)
	_, ms := asset.NodeGeometry(0)
	if ms.IsMulti() || ms.Len() != 1 {
		t.Errorf("materials multi=%v len=%d, want single", ms.IsMulti(), ms.Len())
	}
	if ms.At(0).Name != "default" {
		t.Errorf("material name = %q, want default", ms.At(0).Name)
	}
}

func TestFlattenBakesTransforms(t *testing.T) {
	a := twoNodeAsset()
	flat := a.Flatten()

	if flat.TriangleCount() != 24 {
		t.Errorf("TriangleCount = %d, want 24", flat.TriangleCount())
	}
	// Child is scaled 2x around (10, 5, 0): spans 9..11 on X, 4..6 on Y.
	wantMin := math3d.V3(9, -0.5, -1)
	wantMax := math3d.V3(11, 6, 1)
	if !flat.BoundsMin.ApproxEqual(wantMin, 1e-9) || !flat.BoundsMax.ApproxEqual(wantMax, 1e-9) {
		t.Errorf("bounds = %v..%v, want %v..%v", flat.BoundsMin, flat.BoundsMax, wantMin, wantMax)
	}
}
