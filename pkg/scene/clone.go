package scene

import (
	"maps"
)

// ClonePolicy controls how CloneRecursive treats materials.
type ClonePolicy struct {
	// SharedMaterials keeps material references instead of deep copies.
	// Use it when many instances reuse one material and edits to it are
	// meant to reach all of them.
	SharedMaterials bool
}

// CloneRecursive deep-copies n and its subtree with deep material copies.
func CloneRecursive(n *Node) *Node {
	return ClonePolicy{}.CloneRecursive(n)
}

// CloneRecursive copies n and its subtree. Geometry is always copied and
// materials are copied unless p.SharedMaterials is set. Children are
// cloned in order. The snapshot pointer is shared since snapshots are
// immutable.
func (p ClonePolicy) CloneRecursive(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := p.copyNode(n)
	for _, child := range n.Children {
		c.Add(p.CloneRecursive(child))
	}
	return c
}

// Clone copies n without its children. Geometry is copied and materials
// are shared.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	return ClonePolicy{SharedMaterials: true}.copyNode(n)
}

func (p ClonePolicy) copyNode(n *Node) *Node {
	c := &Node{
		Kind:          n.Kind,
		Name:          n.Name,
		Transform:     n.Transform,
		Matrix:        n.Matrix,
		MatrixWorld:   n.MatrixWorld,
		Visible:       n.Visible,
		CastShadow:    n.CastShadow,
		ReceiveShadow: n.ReceiveShadow,
		FrustumCulled: n.FrustumCulled,
		RenderOrder:   n.RenderOrder,
		UserData:      maps.Clone(n.UserData),
		Snapshot:      n.Snapshot,
		Material:      n.Material,
	}
	if c.UserData == nil {
		c.UserData = make(map[string]any)
	}
	if n.Geometry != nil {
		c.Geometry = n.Geometry.Clone()
	}
	if !p.SharedMaterials {
		c.Material = n.Material.Clone()
	}
	return c
}
