package models

import (
	"math"
	"testing"

	"github.com/taigrr/carve/pkg/math3d"
)

func TestMeshClone(t *testing.T) {
	mesh := NewBox("box", math3d.V3(1, 1, 1))
	clone := mesh.Clone()

	mesh.Vertices[0].Position = math3d.V3(9, 9, 9)
	mesh.Faces[0].Material = 3

	if clone.Vertices[0].Position.X == 9 {
		t.Error("clone vertices alias the original")
	}
	if clone.Faces[0].Material != 0 {
		t.Error("clone faces alias the original")
	}
}

func TestMeshBoundsEmpty(t *testing.T) {
	mesh := NewMesh("empty")
	mesh.CalculateBounds()
	if mesh.Size() != math3d.Zero3() {
		t.Errorf("Size = %v, want zero", mesh.Size())
	}
	if !mesh.Bounds().IsEmpty() {
		t.Error("Bounds of empty mesh should be empty")
	}
	if !mesh.IsEmpty() {
		t.Error("IsEmpty = false for mesh without faces")
	}
	var nilMesh *Mesh
	if !nilMesh.IsEmpty() {
		t.Error("IsEmpty = false for nil mesh")
	}
}

func TestMeshTransform(t *testing.T) {
	tests := []struct {
		name     string
		mat      math3d.Mat4
		wantMin  math3d.Vec3
		wantMax  math3d.Vec3
		flipping bool
	}{
		{"translate", math3d.Translate(math3d.V3(2, 0, 0)), math3d.V3(1.5, -0.5, -0.5), math3d.V3(2.5, 0.5, 0.5), false},
		{"scale", math3d.Scale(math3d.V3(2, 1, 4)), math3d.V3(-1, -0.5, -2), math3d.V3(1, 0.5, 2), false},
		{"mirror", math3d.Scale(math3d.V3(-1, 1, 1)), math3d.V3(-0.5, -0.5, -0.5), math3d.V3(0.5, 0.5, 0.5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := NewBox("box", math3d.V3(1, 1, 1))
			before := mesh.Faces[0].V
			mesh.Transform(tt.mat)

			if !mesh.BoundsMin.ApproxEqual(tt.wantMin, 1e-9) || !mesh.BoundsMax.ApproxEqual(tt.wantMax, 1e-9) {
				t.Errorf("bounds = %v..%v, want %v..%v", mesh.BoundsMin, mesh.BoundsMax, tt.wantMin, tt.wantMax)
			}
			flipped := mesh.Faces[0].V != before
			if flipped != tt.flipping {
				t.Errorf("winding flipped = %v, want %v", flipped, tt.flipping)
			}
			// Normals must still agree with the winding.
			for i, f := range mesh.Faces {
				fn := mesh.faceNormal(f)
				if fn.Dot(mesh.Vertices[f.V[0]].Normal) < 0.99 {
					t.Fatalf("face %d normal %v disagrees with vertex normal %v", i, fn, mesh.Vertices[f.V[0]].Normal)
				}
			}
		})
	}
}

func TestMeshAppend(t *testing.T) {
	a := NewBox("a", math3d.V3(1, 1, 1))
	b := NewBox("b", math3d.V3(1, 1, 1))
	b.Transform(math3d.Translate(math3d.V3(3, 0, 0)))

	a.Append(b, 2)

	if a.TriangleCount() != 24 {
		t.Errorf("TriangleCount = %d, want 24", a.TriangleCount())
	}
	if got := a.GetFaceMaterial(12); got != 2 {
		t.Errorf("appended face material = %d, want 2", got)
	}
	if got := a.GetFace(12); got[0] < 24 {
		t.Errorf("appended face indices %v not offset", got)
	}
	if a.MaterialGroups() != 3 {
		t.Errorf("MaterialGroups = %d, want 3", a.MaterialGroups())
	}
	if a.BoundsMax.X != 3.5 {
		t.Errorf("BoundsMax.X = %v, want 3.5", a.BoundsMax.X)
	}
}

func TestSmoothNormalsUnitLength(t *testing.T) {
	mesh := NewBox("box", math3d.V3(2, 2, 2))
	mesh.CalculateSmoothNormals()
	for i, v := range mesh.Vertices {
		if l := v.Normal.Len(); math.Abs(l-1) > 1e-9 {
			t.Errorf("vertex %d normal length = %v", i, l)
		}
	}
}
