package models

import "github.com/taigrr/carve/pkg/math3d"

// BoxUV selects how box primitives lay out texture coordinates.
type BoxUV int

const (
	// BoxUVUnit maps every face to the full [0,1] UV square.
	BoxUVUnit BoxUV = iota
	// BoxUVWorld projects each face onto its plane in world units, so any
	// piece cut from the face keeps the same texel density.
	BoxUVWorld
)

// boxCorners returns the eight corners of b. Bit 0 of the index selects
// Max.X, bit 1 Max.Y and bit 2 Max.Z.
func boxCorners(b math3d.Box3) [8]math3d.Vec3 {
	var c [8]math3d.Vec3
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

// boxFaces lists each side as four corner indices in counter-clockwise
// order seen from outside, with its outward normal.
var boxFaces = [6]struct {
	corners [4]int
	normal  math3d.Vec3
}{
	{[4]int{5, 1, 3, 7}, math3d.V3(1, 0, 0)},
	{[4]int{0, 4, 6, 2}, math3d.V3(-1, 0, 0)},
	{[4]int{6, 7, 3, 2}, math3d.V3(0, 1, 0)},
	{[4]int{0, 1, 5, 4}, math3d.V3(0, -1, 0)},
	{[4]int{4, 5, 7, 6}, math3d.V3(0, 0, 1)},
	{[4]int{1, 0, 2, 3}, math3d.V3(0, 0, -1)},
}

var unitQuadUV = [4]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// NewBox creates a box of the given size centered at the origin with unit
// UVs on every face. All faces use material group 0.
func NewBox(name string, size math3d.Vec3) *Mesh {
	half := size.Scale(0.5)
	return NewBoxFromBounds(name, math3d.Box3{Min: half.Negate(), Max: half}, BoxUVUnit, 1)
}

// NewBoxFromBounds creates a box spanning b. With BoxUVWorld, density is
// the number of texture repeats per world unit.
func NewBoxFromBounds(name string, b math3d.Box3, uv BoxUV, density float64) *Mesh {
	mesh := NewMesh(name)
	corners := boxCorners(b)

	for _, side := range boxFaces {
		base := len(mesh.Vertices)
		for i, ci := range side.corners {
			p := corners[ci]
			v := MeshVertex{Position: p, Normal: side.normal, UV: unitQuadUV[i]}
			if uv == BoxUVWorld {
				v.UV = planarUV(p, side.normal).Scale(density)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}
		mesh.Faces = append(mesh.Faces,
			Face{V: [3]int{base, base + 1, base + 2}, Material: 0},
			Face{V: [3]int{base, base + 2, base + 3}, Material: 0},
		)
	}

	mesh.CalculateBounds()
	return mesh
}

// planarUV projects p onto the plane perpendicular to the dominant axis of n.
func planarUV(p, n math3d.Vec3) math3d.Vec2 {
	switch {
	case n.X != 0:
		return math3d.V2(p.Z, p.Y)
	case n.Y != 0:
		return math3d.V2(p.X, p.Z)
	default:
		return math3d.V2(p.X, p.Y)
	}
}
