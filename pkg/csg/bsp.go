package csg

import (
	"fmt"
	"math"

	"fortio.org/log"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
)

// BSP evaluates booleans with binary space partitioning trees.
type BSP struct {
	// StrictManifold rejects operands whose edges are not each shared by
	// exactly two faces of opposite direction.
	StrictManifold bool
	// WeldEpsilon merges result vertices closer than this; 0 disables it.
	WeldEpsilon float64
}

// NewBSP returns an evaluator with default options.
func NewBSP() *BSP {
	return &BSP{WeldEpsilon: 1e-9}
}

// Evaluate computes a op b in world space. The result has an identity
// matrix, materials a's followed by b's and b's face groups offset by
// the number of a's materials.
func (e *BSP) Evaluate(a, b *Brush, op Operation) (*Brush, error) {
	if err := e.validate(a, op, "a"); err != nil {
		return nil, err
	}
	if err := e.validate(b, op, "b"); err != nil {
		return nil, err
	}

	pa := toPolygons(a.WorldMesh(), a.Materials, 0)
	pb := toPolygons(b.WorldMesh(), b.Materials, a.Materials.Len())
	na, nb := newNode(pa), newNode(pb)

	switch op {
	case Union:
		na.clipTo(nb)
		nb.clipTo(na)
		nb.invert()
		nb.clipTo(na)
		nb.invert()
		na.build(nb.allPolygons())
	case Subtraction:
		na.invert()
		na.clipTo(nb)
		nb.clipTo(na)
		nb.invert()
		nb.clipTo(na)
		nb.invert()
		na.build(nb.allPolygons())
		na.invert()
	case Intersection:
		na.invert()
		nb.clipTo(na)
		nb.invert()
		na.clipTo(nb)
		nb.clipTo(na)
		na.build(nb.allPolygons())
		na.invert()
	default:
		return nil, &GeometryError{Op: op, Operand: "a", Reason: "unknown operation"}
	}

	polys := na.allPolygons()
	mesh := fromPolygons(a.Name, polys)
	if e.WeldEpsilon > 0 {
		mesh.WeldVertices(e.WeldEpsilon)
	}
	mesh.RemoveDegenerateFaces()
	mesh.RemoveUnreferencedVertices()
	mesh.CalculateBounds()
	if mesh.IsEmpty() {
		return nil, &GeometryError{Op: op, Operand: "result", Reason: "empty result"}
	}

	log.LogVf("csg %s %q %q: %d + %d polygons -> %d triangles",
		op, a.Name, b.Name, len(pa), len(pb), mesh.TriangleCount())

	return &Brush{
		Name:      a.Name,
		Geometry:  mesh,
		Materials: a.Materials.Concat(b.Materials),
		Matrix:    math3d.Identity(),
	}, nil
}

func (e *BSP) validate(b *Brush, op Operation, operand string) error {
	fail := func(format string, args ...any) error {
		return &GeometryError{Op: op, Operand: operand, Reason: fmt.Sprintf(format, args...)}
	}
	if b == nil || b.Geometry.IsEmpty() {
		return fail("empty geometry")
	}
	for i, m := range b.Matrix {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return fail("matrix element %d is not finite", i)
		}
	}
	if b.Matrix.Determinant() == 0 {
		return fail("singular matrix")
	}
	mesh := b.Geometry
	for i, v := range mesh.Vertices {
		if !v.Position.IsFinite() {
			return fail("vertex %d has a non-finite position", i)
		}
	}
	usable := 0
	for i, f := range mesh.Faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= len(mesh.Vertices) {
				return fail("face %d references missing vertex %d", i, idx)
			}
		}
		if !mesh.IsDegenerate(f) {
			usable++
		}
	}
	if usable == 0 {
		return fail("no non-degenerate faces")
	}
	if e.StrictManifold {
		if edge, ok := openEdge(mesh); !ok {
			return fail("not closed at edge %v-%v", edge[0], edge[1])
		}
	}
	return nil
}

// openEdge checks that every directed edge, with vertices matched by
// position, is paired with its reverse. It returns the first unpaired edge.
func openEdge(mesh *models.Mesh) ([2]math3d.Vec3, bool) {
	type key [3]int64
	q := func(p math3d.Vec3) key {
		const s = 1e6
		return key{int64(math.Round(p.X * s)), int64(math.Round(p.Y * s)), int64(math.Round(p.Z * s))}
	}
	edges := make(map[[2]key]int)
	for _, f := range mesh.Faces {
		if mesh.IsDegenerate(f) {
			continue
		}
		for i := range 3 {
			from := q(mesh.Vertices[f.V[i]].Position)
			to := q(mesh.Vertices[f.V[(i+1)%3]].Position)
			edges[[2]key{from, to}]++
		}
	}
	for _, f := range mesh.Faces {
		if mesh.IsDegenerate(f) {
			continue
		}
		for i := range 3 {
			pa, pb := mesh.Vertices[f.V[i]].Position, mesh.Vertices[f.V[(i+1)%3]].Position
			from, to := q(pa), q(pb)
			if edges[[2]key{from, to}] != edges[[2]key{to, from}] {
				return [2]math3d.Vec3{pa, pb}, false
			}
		}
	}
	return [2]math3d.Vec3{}, true
}

// groupIndex maps a face material group into the combined assignment.
// A single material serves every face, so its faces collapse to one group.
func groupIndex(ms models.Materials, g, offset int) int {
	if g < 0 {
		return -1
	}
	if !ms.IsMulti() {
		return offset
	}
	return offset + g
}

func toPolygons(mesh *models.Mesh, ms models.Materials, offset int) []*polygon {
	polys := make([]*polygon, 0, len(mesh.Faces))
	for _, f := range mesh.Faces {
		vs := make([]vertex, 3)
		for i, idx := range f.V {
			v := mesh.Vertices[idx]
			vs[i] = vertex{pos: v.Position, normal: v.Normal, uv: v.UV}
		}
		if p, ok := newPolygon(vs, groupIndex(ms, f.Material, offset)); ok {
			polys = append(polys, p)
		}
	}
	return polys
}

// fromPolygons fan-triangulates convex polygons back into a mesh.
func fromPolygons(name string, polys []*polygon) *models.Mesh {
	mesh := models.NewMesh(name)
	for _, p := range polys {
		base := len(mesh.Vertices)
		for _, v := range p.vertices {
			n := v.normal
			if n.LenSq() == 0 {
				n = p.plane.normal
			}
			mesh.Vertices = append(mesh.Vertices, models.MeshVertex{
				Position: v.pos,
				Normal:   n.Normalize(),
				UV:       v.uv,
			})
		}
		for i := 1; i+1 < len(p.vertices); i++ {
			mesh.Faces = append(mesh.Faces, models.Face{
				V:        [3]int{base, base + i, base + i + 1},
				Material: p.group,
			})
		}
	}
	return mesh
}
