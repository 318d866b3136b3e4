package scene

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
)

// NewDebugCube returns a green box marker of the given size at position,
// textured with tex when it is not nil.
func NewDebugCube(size, position math3d.Vec3, tex *models.Texture) *Node {
	mat := models.NewMaterial("debug")
	mat.Color = colorful.Color{G: 1}
	mat.Roughness = 0.5
	mat.Metalness = 0.5
	mat.Map = tex
	n := NewMesh("debug-cube", models.NewBox("debug-cube", size), models.Single(mat))
	n.Transform.Position = position
	n.UpdateMatrixWorld()
	return n
}
