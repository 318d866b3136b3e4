// Package uv adjusts texture mapping after a resize: UV coordinates are
// rescaled from the pristine snapshot, texture repeat and offset are set
// on every texture slot, and repeat changes can be animated with springs.
package uv

import (
	"errors"
	"fmt"

	"fortio.org/log"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/scene"
)

var (
	// ErrMissingSnapshot means the node has no pristine geometry to
	// rescale from. See scene.Node.TakeSnapshot.
	ErrMissingSnapshot = errors.New("no pristine geometry snapshot")
	// ErrSnapshotMismatch means the geometry no longer has the vertex count
	// the snapshot was taken with.
	ErrSnapshotMismatch = errors.New("snapshot does not match geometry")
)

// RescaleUV sets every UV of n's geometry to its snapshot value scaled by
// (scaleU, scaleV). The current UVs are never read, so repeated calls do
// not accumulate. On error the geometry is left untouched.
func RescaleUV(n *scene.Node, scaleU, scaleV float64) error {
	if !n.IsMesh() {
		return fmt.Errorf("rescale uv: not a mesh: %w", scene.ErrInvalidArgument)
	}
	if n.Snapshot == nil {
		return fmt.Errorf("rescale uv %q: %w", n.Name, ErrMissingSnapshot)
	}
	if !n.Snapshot.Matches(n.Geometry) {
		return fmt.Errorf("rescale uv %q: %d vertices, snapshot has %d: %w",
			n.Name, n.Geometry.VertexCount(), n.Snapshot.Len(), ErrSnapshotMismatch)
	}

	scale := math3d.V2(scaleU, scaleV)
	for i := range n.Geometry.Vertices {
		n.Geometry.Vertices[i].UV = n.Snapshot.UV(i).Mul(scale)
	}
	n.Geometry.UVNeedsUpdate = true
	n.Material.MarkNeedsUpdate()
	return nil
}

// SetTextureRepeat sets the tiling repeat of every texture present on n's
// materials. Absent slots are skipped; a node without materials is left
// alone with a warning.
func SetTextureRepeat(n *scene.Node, scaleU, scaleV float64) {
	if n == nil || n.Material.IsEmpty() {
		log.Warnf("set texture repeat: %s has no material", nodeName(n))
		return
	}
	repeat := math3d.V2(scaleU, scaleV)
	n.Material.Each(func(_ int, m *models.Material) {
		m.EachTexture(func(_ models.TextureSlot, t *models.Texture) {
			t.Repeat = repeat
			t.NeedsUpdate = true
		})
	})
}

// SetOffset sets the offset of the diffuse map of every material of n.
func SetOffset(n *scene.Node, offset math3d.Vec2) {
	if n == nil || n.Material.IsEmpty() {
		log.Warnf("set offset: %s has no material", nodeName(n))
		return
	}
	n.Material.Each(func(_ int, m *models.Material) {
		if m.Map != nil {
			m.Map.Offset = offset
			m.Map.NeedsUpdate = true
		}
	})
}

// CurrentRepeat returns the repeat of the first texture found on n's
// materials, (1, 1) if there is none.
func CurrentRepeat(n *scene.Node) math3d.Vec2 {
	if n == nil {
		return math3d.One2()
	}
	for i := range n.Material.Len() {
		m := n.Material.At(i)
		if m == nil {
			continue
		}
		for _, s := range models.TextureSlots {
			if t := m.Texture(s); t != nil {
				return t.Repeat
			}
		}
	}
	return math3d.One2()
}

func nodeName(n *scene.Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", n.Name)
}
