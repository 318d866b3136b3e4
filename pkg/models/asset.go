package models

import (
	"github.com/taigrr/carve/pkg/math3d"
)

// Asset is a loaded model file before it becomes a scene graph: shared
// geometry and materials plus a node hierarchy referencing them.
// Face material indices in Meshes refer to Asset.Materials.
type Asset struct {
	Name      string
	Meshes    []*Mesh
	Materials []*Material
	Nodes     []AssetNode
	Roots     []int // Indices into Nodes
}

// AssetNode is one node of an asset hierarchy with its local transform.
type AssetNode struct {
	Name        string
	Mesh        int // Index into Asset.Meshes, -1 for none
	Children    []int
	Translation math3d.Vec3
	Rotation    math3d.Euler
	Scale       math3d.Vec3
}

// LocalMatrix returns the node's local transform.
func (n AssetNode) LocalMatrix() math3d.Mat4 {
	return math3d.Compose(n.Translation, n.Rotation, n.Scale)
}

// newSingleMeshAsset wraps one mesh in a one-node asset. Used by the OBJ
// and STL loaders, which have no hierarchy.
func newSingleMeshAsset(mesh *Mesh, materials []*Material) *Asset {
	return &Asset{
		Name:      mesh.Name,
		Meshes:    []*Mesh{mesh},
		Materials: materials,
		Nodes: []AssetNode{{
			Name:  mesh.Name,
			Mesh:  0,
			Scale: math3d.One3(),
		}},
		Roots: []int{0},
	}
}

// NodeGeometry returns a copy of mesh i whose face material indices are
// local to the returned assignment: materials are collected in order of
// first use. Faces without a material get a default one. One material
// yields a Single assignment, more yield Multi.
func (a *Asset) NodeGeometry(i int) (*Mesh, Materials) {
	src := a.Meshes[i]
	mesh := src.Clone()

	local := make(map[int]int)
	var used []*Material
	for fi := range mesh.Faces {
		global := mesh.Faces[fi].Material
		idx, ok := local[global]
		if !ok {
			idx = len(used)
			local[global] = idx
			if global >= 0 && global < len(a.Materials) {
				used = append(used, a.Materials[global])
			} else {
				used = append(used, NewMaterial("default"))
			}
		}
		mesh.Faces[fi].Material = idx
	}

	switch len(used) {
	case 0:
		return mesh, Materials{}
	case 1:
		return mesh, Single(used[0])
	default:
		return mesh, Multi(used...)
	}
}

// Flatten bakes every node's world transform into a single mesh, keeping
// face material indices global to Asset.Materials.
func (a *Asset) Flatten() *Mesh {
	out := NewMesh(a.Name)
	var walk func(idx int, parent math3d.Mat4)
	walk = func(idx int, parent math3d.Mat4) {
		node := a.Nodes[idx]
		world := parent.Mul(node.LocalMatrix())
		if node.Mesh >= 0 && node.Mesh < len(a.Meshes) {
			m := a.Meshes[node.Mesh].Clone()
			m.Transform(world)
			out.Append(m, 0)
		}
		for _, child := range node.Children {
			walk(child, world)
		}
	}
	for _, root := range a.Roots {
		walk(root, math3d.Identity())
	}
	out.CalculateBounds()
	return out
}
