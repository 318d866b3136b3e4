package scene

import (
	"fmt"

	"github.com/taigrr/carve/pkg/models"
)

// FromAsset builds a scene graph from a loaded asset. The root is a group
// named after the asset; asset nodes with a mesh become mesh nodes with
// their own copy of the geometry, others become plain objects. World
// matrices are up to date on return.
func FromAsset(a *models.Asset) (*Node, error) {
	if a == nil {
		return nil, fmt.Errorf("from asset: nil asset: %w", ErrInvalidArgument)
	}
	root := NewGroup(a.Name)
	visited := make([]bool, len(a.Nodes))

	var build func(idx int) (*Node, error)
	build = func(idx int) (*Node, error) {
		if idx < 0 || idx >= len(a.Nodes) {
			return nil, fmt.Errorf("from asset: node index %d out of range: %w", idx, ErrInvalidArgument)
		}
		if visited[idx] {
			return nil, fmt.Errorf("from asset: node %d reached twice: %w", idx, ErrInvalidArgument)
		}
		visited[idx] = true

		src := a.Nodes[idx]
		var n *Node
		if src.Mesh >= 0 && src.Mesh < len(a.Meshes) {
			geometry, materials := a.NodeGeometry(src.Mesh)
			n = NewMesh(src.Name, geometry, materials)
		} else {
			n = NewObject(src.Name)
		}
		n.Transform = Transform{Position: src.Translation, Rotation: src.Rotation, Scale: src.Scale}
		for _, c := range src.Children {
			child, err := build(c)
			if err != nil {
				return nil, err
			}
			n.Add(child)
		}
		return n, nil
	}

	for _, r := range a.Roots {
		n, err := build(r)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	root.UpdateMatrixWorld()
	return root, nil
}

// Meshes returns every mesh node of the subtree in traversal order.
func Meshes(root *Node) []*Node {
	var out []*Node
	root.Traverse(func(n *Node) {
		if n.IsMesh() {
			out = append(out, n)
		}
	})
	return out
}
