package models

import "github.com/taigrr/carve/pkg/math3d"

// Snapshot is an immutable copy of a mesh's vertex positions and UVs taken
// before any edits. Its storage is unexported and it has no mutating
// methods, so it can be shared freely between clones.
type Snapshot struct {
	positions []math3d.Vec3
	uvs       []math3d.Vec2
}

// NewSnapshot copies the current vertex attributes of m.
func NewSnapshot(m *Mesh) *Snapshot {
	s := &Snapshot{
		positions: make([]math3d.Vec3, len(m.Vertices)),
		uvs:       make([]math3d.Vec2, len(m.Vertices)),
	}
	for i, v := range m.Vertices {
		s.positions[i] = v.Position
		s.uvs[i] = v.UV
	}
	return s
}

// Len returns the number of vertices captured.
func (s *Snapshot) Len() int {
	return len(s.uvs)
}

// UV returns the original UV of vertex i.
func (s *Snapshot) UV(i int) math3d.Vec2 {
	return s.uvs[i]
}

// Position returns the original position of vertex i.
func (s *Snapshot) Position(i int) math3d.Vec3 {
	return s.positions[i]
}

// Matches reports whether the snapshot was taken from geometry with the
// same vertex count as m.
func (s *Snapshot) Matches(m *Mesh) bool {
	return m != nil && len(m.Vertices) == len(s.uvs)
}
