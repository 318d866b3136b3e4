// Package models provides geometry, material and texture representations
// for carve together with the glTF, OBJ and STL loaders and GLB export.
package models

import (
	"github.com/taigrr/carve/pkg/math3d"
)

// Mesh is triangle geometry: vertices with position, normal and UV plus
// faces tagged with a material group. Materials themselves live on the
// scene node that owns the geometry; Face.Material indexes into them.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Bounding box (calculated on load and after edits)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	// UVNeedsUpdate is set whenever UVs change so renderers re-upload them.
	UVNeedsUpdate bool
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and a material group.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into the owner's materials (-1 for none)
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin = math3d.Zero3()
		m.BoundsMax = math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the bounding box as a Box3, empty when there are no vertices.
func (m *Mesh) Bounds() math3d.Box3 {
	if len(m.Vertices) == 0 {
		return math3d.EmptyBox3()
	}
	return math3d.Box3{Min: m.BoundsMin, Max: m.BoundsMax}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IsEmpty reports whether the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0
}

// MaterialGroups returns the number of material groups referenced by faces,
// that is one more than the highest face material index.
func (m *Mesh) MaterialGroups() int {
	n := 0
	for _, f := range m.Faces {
		if f.Material+1 > n {
			n = f.Material + 1
		}
	}
	return n
}

// CalculateNormals computes face normals and assigns them to vertices.
// Vertices shared between faces end up with the normal of the last face.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		normal := m.faceNormal(*f)
		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		normal := v1.Sub(v0).Cross(v2.Sub(v0)) // Unnormalized: weights by area

		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices. Normals use
// the inverse transpose so non-uniform scale keeps them perpendicular.
// A matrix with negative determinant flips winding to keep faces outward.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	if mat.Determinant() < 0 {
		for i := range m.Faces {
			m.Faces[i].V[1], m.Faces[i].V[2] = m.Faces[i].V[2], m.Faces[i].V[1]
		}
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:          m.Name,
		Vertices:      make([]MeshVertex, len(m.Vertices)),
		Faces:         make([]Face, len(m.Faces)),
		BoundsMin:     m.BoundsMin,
		BoundsMax:     m.BoundsMax,
		UVNeedsUpdate: m.UVNeedsUpdate,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}

// Append adds all faces of o to m, offsetting face material groups by
// materialOffset. Vertices are copied.
func (m *Mesh) Append(o *Mesh, materialOffset int) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		mat := f.Material
		if mat >= 0 {
			mat += materialOffset
		}
		m.Faces = append(m.Faces, Face{
			V:        [3]int{f.V[0] + base, f.V[1] + base, f.V[2] + base},
			Material: mat,
		})
	}
	m.CalculateBounds()
}

// GetVertex returns the position, normal, and UV for vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material group for face i, -1 if none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}
