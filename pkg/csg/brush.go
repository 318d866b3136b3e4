// Package csg evaluates boolean operations (union, subtraction,
// intersection) between triangle meshes. Operands are Brushes: geometry
// plus materials plus a world matrix. The BSP evaluator splits polygons
// against each other's BSP trees and carries normals and UVs through every
// split, so cut faces keep their texture mapping.
package csg

import (
	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
)

// Operation selects the boolean to evaluate.
type Operation int

const (
	Union Operation = iota
	Subtraction
	Intersection
)

func (o Operation) String() string {
	switch o {
	case Union:
		return "union"
	case Subtraction:
		return "subtraction"
	case Intersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// Brush is a boolean operand. Geometry is in local space and Matrix places
// it in the world. Face material groups index into Materials.
type Brush struct {
	Name      string
	Geometry  *models.Mesh
	Materials models.Materials
	Matrix    math3d.Mat4
}

// NewBrush copies geometry so later edits to the source never reach the
// brush. Materials are referenced, not copied.
func NewBrush(name string, geometry *models.Mesh, materials models.Materials, matrix math3d.Mat4) *Brush {
	b := &Brush{
		Name:      name,
		Materials: materials,
		Matrix:    matrix,
	}
	if geometry != nil {
		b.Geometry = geometry.Clone()
	}
	return b
}

// WorldMesh returns a copy of the geometry with Matrix baked in.
func (b *Brush) WorldMesh() *models.Mesh {
	m := b.Geometry.Clone()
	if !b.Matrix.IsIdentity(0) {
		m.Transform(b.Matrix)
	}
	return m
}

// Evaluator computes a boolean between two brushes. Implementations must
// not modify their operands.
type Evaluator interface {
	Evaluate(a, b *Brush, op Operation) (*Brush, error)
}

// UnionAll folds a union across brushes left to right.
func UnionAll(ev Evaluator, brushes ...*Brush) (*Brush, error) {
	if len(brushes) == 0 {
		return nil, &GeometryError{Op: Union, Operand: "a", Reason: "no brushes"}
	}
	acc := brushes[0]
	for _, b := range brushes[1:] {
		var err error
		acc, err = ev.Evaluate(acc, b, Union)
		if err != nil {
			return nil, err
		}
	}
	if len(brushes) == 1 {
		return NewBrush(acc.Name, acc.Geometry, acc.Materials, acc.Matrix), nil
	}
	return acc, nil
}
