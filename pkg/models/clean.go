package models

import (
	"math"

	"github.com/taigrr/carve/pkg/math3d"
)

// faceKey creates a canonical key for a face by sorting vertex indices.
// Two faces with the same vertices (in any order) will have the same key.
func faceKey(v0, v1, v2 int) [3]int {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return [3]int{v0, v1, v2}
}

// DeduplicateFaces removes faces that reference the same three vertices as
// an earlier face, regardless of winding. Returns the number removed.
func (m *Mesh) DeduplicateFaces() int {
	if len(m.Faces) == 0 {
		return 0
	}

	seen := make(map[[3]int]bool, len(m.Faces))
	kept := make([]Face, 0, len(m.Faces))

	for _, f := range m.Faces {
		key := faceKey(f.V[0], f.V[1], f.V[2])
		if !seen[key] {
			seen[key] = true
			kept = append(kept, f)
		}
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveInternalFaces removes pairs of faces sharing the same vertices with
// opposite normals. Such pairs are the seam left when two solids touching
// along a plane are merged. Returns the number of faces removed.
func (m *Mesh) RemoveInternalFaces() int {
	if len(m.Faces) == 0 {
		return 0
	}

	type faceInfo struct {
		index  int
		normal math3d.Vec3
	}
	groups := make(map[[3]int][]faceInfo)

	for i, f := range m.Faces {
		key := faceKey(f.V[0], f.V[1], f.V[2])
		groups[key] = append(groups[key], faceInfo{index: i, normal: m.faceNormal(f)})
	}

	toRemove := make(map[int]bool)
	for _, faceList := range groups {
		if len(faceList) < 2 {
			continue
		}
		for i := range faceList {
			if toRemove[faceList[i].index] {
				continue
			}
			for j := i + 1; j < len(faceList); j++ {
				if toRemove[faceList[j].index] {
					continue
				}
				if faceList[i].normal.Dot(faceList[j].normal) < -0.99 {
					toRemove[faceList[i].index] = true
					toRemove[faceList[j].index] = true
					break
				}
			}
		}
	}

	if len(toRemove) == 0 {
		return 0
	}

	kept := make([]Face, 0, len(m.Faces)-len(toRemove))
	for i, f := range m.Faces {
		if !toRemove[i] {
			kept = append(kept, f)
		}
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// CleanMesh runs the cleanup passes in dependency order:
// degenerate faces, internal face pairs (before dedup, which would hide
// one side of a pair), duplicates, then unreferenced vertices.
// Returns the total number of faces removed.
func (m *Mesh) CleanMesh() int {
	removed := m.RemoveDegenerateFaces()
	removed += m.RemoveInternalFaces()
	removed += m.DeduplicateFaces()
	m.RemoveUnreferencedVertices()
	return removed
}

// MinFaceArea is the area below which a triangle counts as degenerate.
const MinFaceArea = 1e-10

// RemoveDegenerateFaces removes faces with repeated indices or near-zero
// area. Returns the number of faces removed.
func (m *Mesh) RemoveDegenerateFaces() int {
	if len(m.Faces) == 0 {
		return 0
	}

	kept := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		if !m.IsDegenerate(f) {
			kept = append(kept, f)
		}
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// IsDegenerate reports whether f repeats a vertex index or has area below
// MinFaceArea.
func (m *Mesh) IsDegenerate(f Face) bool {
	if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[0] == f.V[2] {
		return true
	}
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0)).Len()*0.5 <= MinFaceArea
}

// RemoveUnreferencedVertices compacts the vertex array to the vertices used
// by faces and remaps face indices.
func (m *Mesh) RemoveUnreferencedVertices() {
	if len(m.Vertices) == 0 {
		return
	}
	if len(m.Faces) == 0 {
		m.Vertices = m.Vertices[:0]
		return
	}

	referenced := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		referenced[f.V[0]] = true
		referenced[f.V[1]] = true
		referenced[f.V[2]] = true
	}

	newIndex := make([]int, len(m.Vertices))
	newVertices := make([]MeshVertex, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if referenced[i] {
			newIndex[i] = len(newVertices)
			newVertices = append(newVertices, v)
		}
	}

	for i := range m.Faces {
		for j := range m.Faces[i].V {
			m.Faces[i].V[j] = newIndex[m.Faces[i].V[j]]
		}
	}

	m.Vertices = newVertices
}

// WeldVertices merges vertices whose position, normal and UV agree after
// quantizing to eps, remapping faces. Returns the number of vertices removed.
func (m *Mesh) WeldVertices(eps float64) int {
	if len(m.Vertices) == 0 || eps <= 0 {
		return 0
	}

	type weldKey [8]int64
	q := func(f float64) int64 { return int64(math.Round(f / eps)) }

	index := make(map[weldKey]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	welded := make([]MeshVertex, 0, len(m.Vertices))

	for i, v := range m.Vertices {
		key := weldKey{
			q(v.Position.X), q(v.Position.Y), q(v.Position.Z),
			q(v.Normal.X), q(v.Normal.Y), q(v.Normal.Z),
			q(v.UV.X), q(v.UV.Y),
		}
		if j, ok := index[key]; ok {
			remap[i] = j
			continue
		}
		index[key] = len(welded)
		remap[i] = len(welded)
		welded = append(welded, v)
	}

	for i := range m.Faces {
		for j := range m.Faces[i].V {
			m.Faces[i].V[j] = remap[m.Faces[i].V[j]]
		}
	}

	removed := len(m.Vertices) - len(welded)
	m.Vertices = welded
	return removed
}
