package models

import (
	"testing"

	"github.com/taigrr/carve/pkg/math3d"
)

// quadMesh returns four coplanar vertices at the corners of the unit square.
func quadMesh(faces ...[3]int) *Mesh {
	mesh := NewMesh("test")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(1, 1, 0)},
	}
	for _, f := range faces {
		mesh.Faces = append(mesh.Faces, Face{V: f})
	}
	return mesh
}

func TestFaceKey(t *testing.T) {
	tests := []struct {
		name       string
		v0, v1, v2 int
		want       [3]int
	}{
		{"already sorted", 0, 1, 2, [3]int{0, 1, 2}},
		{"reverse order", 2, 1, 0, [3]int{0, 1, 2}},
		{"rotated", 1, 2, 0, [3]int{0, 1, 2}},
		{"with gaps", 5, 10, 3, [3]int{3, 5, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faceKey(tt.v0, tt.v1, tt.v2); got != tt.want {
				t.Errorf("faceKey(%d, %d, %d) = %v, want %v", tt.v0, tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestCleanupPasses(t *testing.T) {
	tests := []struct {
		name      string
		faces     [][3]int
		pass      func(*Mesh) int
		removed   int
		remaining int
	}{
		{
			name:      "dedup keeps first of any winding",
			faces:     [][3]int{{0, 1, 2}, {0, 1, 2}, {2, 0, 1}, {1, 3, 2}},
			pass:      (*Mesh).DeduplicateFaces,
			removed:   2,
			remaining: 2,
		},
		{
			name:      "internal pair removed",
			faces:     [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 3, 2}},
			pass:      (*Mesh).RemoveInternalFaces,
			removed:   2,
			remaining: 1,
		},
		{
			name:      "degenerate by index",
			faces:     [][3]int{{0, 1, 2}, {0, 0, 1}, {1, 0, 1}},
			pass:      (*Mesh).RemoveDegenerateFaces,
			removed:   2,
			remaining: 1,
		},
		{
			name:      "clean mesh",
			faces:     [][3]int{{0, 1, 2}, {0, 1, 2}, {1, 3, 2}, {0, 0, 1}},
			pass:      (*Mesh).CleanMesh,
			removed:   2,
			remaining: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := quadMesh(tt.faces...)
			if got := tt.pass(mesh); got != tt.removed {
				t.Errorf("removed %d faces, want %d", got, tt.removed)
			}
			if mesh.TriangleCount() != tt.remaining {
				t.Errorf("TriangleCount = %d, want %d", mesh.TriangleCount(), tt.remaining)
			}
		})
	}
}

func TestRemoveDegenerateCollinear(t *testing.T) {
	mesh := quadMesh()
	mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: math3d.V3(2, 0, 0)})
	mesh.Faces = []Face{{V: [3]int{0, 1, 4}}}
	if !mesh.IsDegenerate(mesh.Faces[0]) {
		t.Error("collinear face not reported degenerate")
	}
	if removed := mesh.RemoveDegenerateFaces(); removed != 1 {
		t.Errorf("removed %d faces, want 1", removed)
	}
}

func TestRemoveUnreferencedVertices(t *testing.T) {
	mesh := quadMesh([3]int{0, 1, 3})
	mesh.RemoveUnreferencedVertices()
	if mesh.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", mesh.VertexCount())
	}
	if mesh.Faces[0].V != [3]int{0, 1, 2} {
		t.Errorf("Face after remap = %v, want [0,1,2]", mesh.Faces[0].V)
	}

	empty := quadMesh()
	empty.RemoveUnreferencedVertices()
	if empty.VertexCount() != 0 {
		t.Errorf("VertexCount without faces = %d, want 0", empty.VertexCount())
	}
}

func TestWeldVertices(t *testing.T) {
	mesh := quadMesh([3]int{0, 1, 2}, [3]int{4, 3, 5})
	mesh.Vertices = append(mesh.Vertices,
		MeshVertex{Position: math3d.V3(1, 0, 1e-9)}, // same as 1 after quantizing
		MeshVertex{Position: math3d.V3(0, 1, 0)},    // exact copy of 2
	)
	removed := mesh.WeldVertices(1e-6)
	if removed != 2 {
		t.Errorf("WeldVertices removed %d, want 2", removed)
	}
	if mesh.Faces[1].V != [3]int{1, 3, 2} {
		t.Errorf("welded face = %v, want [1 3 2]", mesh.Faces[1].V)
	}
	if got := mesh.WeldVertices(0); got != 0 {
		t.Errorf("WeldVertices(0) = %d, want 0", got)
	}
}
