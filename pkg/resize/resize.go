// Package resize stretches or shrinks a solid along one axis without
// scaling it: the object is cut twice by a half-space cutting volume,
// each time shifted by half the size change, and the two remaining halves
// are joined. Detail near the ends keeps its proportions; only the middle
// section gets longer or shorter.
package resize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fortio.org/log"

	"github.com/taigrr/carve/pkg/csg"
	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/scene"
)

// ErrUnsupportedAxis is returned for axes the engine cannot cut along.
var ErrUnsupportedAxis = errors.New("unsupported axis")

// Axis selects the direction to resize along.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis parses "x", "y" or "z", case insensitive.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("parse axis %q: %w", s, scene.ErrInvalidArgument)
	}
}

// cut describes one of the two subtractions: the cutter's Y rotation and
// the sign of the object shift.
type cut struct {
	rotation float64
	sign     float64
}

// cuts per axis. The cutting volume occupies local x <= 0, so with no
// rotation it removes everything on the negative side.
var cuts = map[Axis][2]cut{
	AxisX: {{rotation: 0, sign: -1}, {rotation: math.Pi, sign: 1}},
	AxisZ: {{rotation: -math.Pi / 2, sign: -1}, {rotation: math.Pi / 2, sign: 1}},
}

type options struct {
	name     string
	snapshot bool
}

// Option customizes a resize.
type Option func(*options)

// WithName names the result node. Defaults to the object's name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithSnapshot records a pristine snapshot of the result geometry so it can
// be UV rescaled later.
func WithSnapshot() Option {
	return func(o *options) { o.snapshot = true }
}

// Engine runs segmented resizes with a boolean evaluator.
type Engine struct {
	Evaluator csg.Evaluator
}

// NewEngine returns an engine using ev, or the BSP evaluator when ev is nil.
func NewEngine(ev csg.Evaluator) *Engine {
	if ev == nil {
		ev = csg.NewBSP()
	}
	return &Engine{Evaluator: ev}
}

// Resize uses the BSP evaluator to resize object along axis from
// originalDim to targetDim. See Engine.Resize.
func Resize(object, cutter *scene.Node, originalDim, targetDim float64, axis Axis, opts ...Option) (*scene.Node, error) {
	return NewEngine(nil).Resize(object, cutter, originalDim, targetDim, axis, opts...)
}

// Resize returns a new mesh node whose extent along axis changes from
// originalDim to targetDim. Neither object nor cutter is modified: each
// cut works on copies of their transforms.
//
// The cut plane passes through the cutter's world origin. Along axis, the
// object's world bounds are centered on that plane before each cut and
// shifted by -delta then +delta, so where the object was placed does not
// matter, only where its section is uniform relative to its center. The
// result is moved back so its center along axis stays where the object's
// was. Its geometry is in world space with an identity transform and no
// parent; its materials are copies of the object's followed by copies of
// the cutter's, which texture the new end caps.
func (e *Engine) Resize(object, cutter *scene.Node, originalDim, targetDim float64, axis Axis, opts ...Option) (*scene.Node, error) {
	if err := validate(object, cutter, originalDim, targetDim); err != nil {
		return nil, err
	}
	plan, ok := cuts[axis]
	if !ok {
		return nil, fmt.Errorf("resize %q along %s: %w", object.Name, axis, ErrUnsupportedAxis)
	}
	o := options{name: object.Name}
	for _, opt := range opts {
		opt(&o)
	}

	delta := (originalDim - targetDim) / 2
	log.LogVf("resize %q along %s: %g -> %g (delta %g)", object.Name, axis, originalDim, targetDim, delta)

	dir := axisVector(axis)
	objectWorld := worldMatrix(object)
	center := object.Geometry.Bounds().Transform(objectWorld).Center()
	plane := worldMatrix(cutter).MulVec3(math3d.Zero3())
	align := dir.Scale(plane.Sub(center).Dot(dir))

	var parts [2]*csg.Brush
	for i, c := range plan {
		shift := math3d.Translate(align.Add(dir.Scale(c.sign * delta)))
		objBrush := csg.NewBrush(object.Name, object.Geometry, object.Material, shift.Mul(objectWorld))
		cutBrush := brushFor(cutter, func(t *scene.Transform) {
			t.Rotation = math3d.E(0, c.rotation, 0)
		})
		part, err := e.Evaluator.Evaluate(objBrush, cutBrush, csg.Subtraction)
		if err != nil {
			return nil, fmt.Errorf("resize %q: cut %d: %w", object.Name, i+1, err)
		}
		parts[i] = part
	}

	joined, err := e.Evaluator.Evaluate(parts[0], parts[1], csg.Union)
	if err != nil {
		return nil, fmt.Errorf("resize %q: join: %w", object.Name, err)
	}

	// Both parts share one material layout; fold the second copy back.
	layout := parts[0].Materials.Len()
	geometry := joined.Geometry
	for i, f := range geometry.Faces {
		if f.Material >= layout {
			geometry.Faces[i].Material = f.Material - layout
		}
	}
	if align != math3d.Zero3() {
		geometry.Transform(math3d.Translate(align.Negate()))
	}
	geometry.Name = o.name
	materials := object.Material.Clone().Concat(cutter.Material.Clone())

	result := scene.NewMesh(o.name, geometry, materials)
	result.CastShadow = object.CastShadow
	result.ReceiveShadow = object.ReceiveShadow
	result.UpdateMatrixWorld()
	if o.snapshot {
		result.TakeSnapshot()
	}
	log.LogVf("resize %q: %d triangles, extent %v", o.name, geometry.TriangleCount(), geometry.Size())
	return result, nil
}

func validate(object, cutter *scene.Node, originalDim, targetDim float64) error {
	switch {
	case !object.IsMesh():
		return fmt.Errorf("resize: object is not a mesh: %w", scene.ErrInvalidArgument)
	case !cutter.IsMesh():
		return fmt.Errorf("resize %q: cutting volume is not a mesh: %w", object.Name, scene.ErrInvalidArgument)
	case cutter.Material.IsEmpty():
		return fmt.Errorf("resize %q: cutting volume %q has no material: %w", object.Name, cutter.Name, scene.ErrInvalidArgument)
	case !positive(originalDim):
		return fmt.Errorf("resize %q: original dimension %g: %w", object.Name, originalDim, scene.ErrInvalidArgument)
	case !positive(targetDim):
		return fmt.Errorf("resize %q: target dimension %g: %w", object.Name, targetDim, scene.ErrInvalidArgument)
	}
	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func axisVector(a Axis) math3d.Vec3 {
	switch a {
	case AxisX:
		return math3d.V3(1, 0, 0)
	case AxisY:
		return math3d.V3(0, 1, 0)
	default:
		return math3d.V3(0, 0, 1)
	}
}

// brushFor builds a brush from a copy of n's transform, edited by adjust,
// and a world matrix recomputed from n's ancestors.
func brushFor(n *scene.Node, adjust func(*scene.Transform)) *csg.Brush {
	t := n.Transform
	adjust(&t)
	world := parentWorld(n).Mul(t.Matrix())
	return csg.NewBrush(n.Name, n.Geometry, n.Material, world)
}

// worldMatrix recomputes n's world matrix from the transform chain.
func worldMatrix(n *scene.Node) math3d.Mat4 {
	return parentWorld(n).Mul(n.Transform.Matrix())
}

func parentWorld(n *scene.Node) math3d.Mat4 {
	m := math3d.Identity()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Transform.Matrix().Mul(m)
	}
	return m
}

// NewCuttingVolume returns the default cutting volume: a box filling local
// x in [-extent, 0] and y, z in [-extent/2, extent/2]. Its faces carry
// world-unit planar UVs so the caps it leaves keep the texel density of a
// world-mapped texture.
func NewCuttingVolume(extent float64) *scene.Node {
	half := extent / 2
	b := math3d.Box3{Min: math3d.V3(-extent, -half, -half), Max: math3d.V3(0, half, half)}
	mesh := models.NewBoxFromBounds("cutter", b, models.BoxUVWorld, 1)
	n := scene.NewMesh("cutter", mesh, models.Single(models.NewMaterial("cutter")))
	n.Visible = false
	n.UpdateMatrixWorld()
	return n
}

// CutterExtentFor returns a cutting volume extent comfortably larger than
// object's world bounds. World matrix caches are not consulted.
func CutterExtentFor(object *scene.Node) float64 {
	if !object.IsMesh() {
		return 1
	}
	size := object.Geometry.Bounds().Transform(worldMatrix(object)).Size()
	return math.Max(1, 4*math.Max(size.X, math.Max(size.Y, size.Z)))
}

// RelativeScale converts an absolute dimension into a scale factor for an
// object whose current size objectDim includes a fixed part: initialDim
// minus objectDim is subtracted from dim before dividing.
func RelativeScale(objectDim, initialDim, dim float64) float64 {
	return (dim - (initialDim - objectDim)) / objectDim
}
