// Package scene is a small scene graph: objects, groups and meshes with
// local transforms, cached world matrices and ordered children.
package scene

import (
	"errors"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
)

// ErrInvalidArgument is returned, wrapped with detail, when a parameter has
// the wrong shape. Operations check arguments before mutating anything.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind is the concrete variant of a node.
type Kind int

const (
	KindObject Kind = iota
	KindGroup
	KindMesh
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "Object3D"
	case KindGroup:
		return "Group"
	case KindMesh:
		return "Mesh"
	default:
		return "Unknown"
	}
}

// Transform is a node's local position, XYZ Euler rotation and scale.
type Transform struct {
	Position math3d.Vec3
	Rotation math3d.Euler
	Scale    math3d.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: math3d.One3()}
}

// Matrix composes the transform as T * R * S.
func (t Transform) Matrix() math3d.Mat4 {
	return math3d.Compose(t.Position, t.Rotation, t.Scale)
}

// Node is a scene graph node. Geometry, Material and Snapshot are only
// meaningful for KindMesh.
type Node struct {
	Kind      Kind
	Name      string
	Transform Transform

	// Matrix and MatrixWorld are caches refreshed by UpdateMatrixWorld.
	Matrix      math3d.Mat4
	MatrixWorld math3d.Mat4

	Visible       bool
	CastShadow    bool
	ReceiveShadow bool
	FrustumCulled bool
	RenderOrder   int
	UserData      map[string]any

	Geometry *models.Mesh
	Material models.Materials
	// Snapshot holds the pristine vertex attributes used for UV rescaling.
	// It is immutable and may be shared between clones.
	Snapshot *models.Snapshot

	Children []*Node
	Parent   *Node
}

func newNode(kind Kind, name string) *Node {
	return &Node{
		Kind:          kind,
		Name:          name,
		Transform:     NewTransform(),
		Matrix:        math3d.Identity(),
		MatrixWorld:   math3d.Identity(),
		Visible:       true,
		FrustumCulled: true,
		UserData:      make(map[string]any),
	}
}

// NewObject creates an empty object node.
func NewObject(name string) *Node {
	return newNode(KindObject, name)
}

// NewGroup creates a group node.
func NewGroup(name string) *Node {
	return newNode(KindGroup, name)
}

// NewMesh creates a mesh node owning geometry and materials.
func NewMesh(name string, geometry *models.Mesh, material models.Materials) *Node {
	n := newNode(KindMesh, name)
	n.Geometry = geometry
	n.Material = material
	return n
}

// IsMesh reports whether n is a mesh with geometry.
func (n *Node) IsMesh() bool {
	return n != nil && n.Kind == KindMesh && n.Geometry != nil
}

// Add attaches children in order, detaching each from its previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.Parent != nil {
			c.Parent.Remove(c)
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
}

// Remove detaches child, reporting whether it was a child of n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// Traverse calls fn for n and every descendant, depth first, parents
// before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// ObjectByName returns the first node named name in depth-first order,
// nil if none.
func (n *Node) ObjectByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.ObjectByName(name); found != nil {
			return found
		}
	}
	return nil
}

// UpdateMatrix refreshes the local matrix cache from Transform.
func (n *Node) UpdateMatrix() {
	n.Matrix = n.Transform.Matrix()
}

// UpdateMatrixWorld refreshes local and world matrices of n and its
// subtree from the parent's current world matrix.
func (n *Node) UpdateMatrixWorld() {
	n.UpdateMatrix()
	if n.Parent != nil {
		n.MatrixWorld = n.Parent.MatrixWorld.Mul(n.Matrix)
	} else {
		n.MatrixWorld = n.Matrix
	}
	for _, c := range n.Children {
		c.UpdateMatrixWorld()
	}
}

// TakeSnapshot records the pristine geometry once; later calls return the
// existing snapshot. Returns nil for nodes without geometry.
func (n *Node) TakeSnapshot() *models.Snapshot {
	if !n.IsMesh() {
		return nil
	}
	if n.Snapshot == nil {
		n.Snapshot = models.NewSnapshot(n.Geometry)
	}
	return n.Snapshot
}

// WorldBounds returns the world-space bounding box of every mesh in the
// subtree using the cached world matrices.
func (n *Node) WorldBounds() math3d.Box3 {
	box := math3d.EmptyBox3()
	n.Traverse(func(c *Node) {
		if c.IsMesh() && !c.Geometry.IsEmpty() {
			box = box.Union(c.Geometry.Bounds().Transform(c.MatrixWorld))
		}
	})
	return box
}
