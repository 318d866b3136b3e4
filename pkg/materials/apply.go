package materials

import (
	"fmt"

	"fortio.org/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/scene"
)

// TransparentOpacity is the opacity of materials made by SetTransparent.
const TransparentOpacity = 0.2

// Apply walks root and replaces every mesh material whose name is in the
// library with the library instance. Meshes are set to cast and receive
// shadows. It returns the number of replaced materials.
func (l *Library) Apply(root *scene.Node) int {
	replaced := 0
	root.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		n.CastShadow = true
		n.ReceiveShadow = true
		n.Material.Each(func(i int, m *models.Material) {
			if lib, ok := l.materials[m.Name]; ok && lib != m {
				n.Material = n.Material.Replace(i, lib)
				replaced++
			}
		})
	})
	log.LogVf("Applied %d library materials under %q", replaced, root.Name)
	return replaced
}

// TextureSet is the group of maps a library material can carry.
// Nil entries clear the slot.
type TextureSet struct {
	Map          *models.Texture
	NormalMap    *models.Texture
	RoughnessMap *models.Texture
	MetalnessMap *models.Texture
}

// normalMapScale is the normal scale used when a normal map is present.
var normalMapScale = math3d.V2(-0.4, -0.4)

// SetTextures assigns ts to the library material called name. The normal
// scale follows the normal map: (-0.4, -0.4) with one, zero without.
func (l *Library) SetTextures(name string, ts TextureSet) error {
	m, ok := l.materials[name]
	if !ok {
		return fmt.Errorf("set textures %q: %w", name, ErrUnknownMaterial)
	}
	m.Map = ts.Map
	m.RoughnessMap = ts.RoughnessMap
	m.MetalnessMap = ts.MetalnessMap
	m.NormalMap = ts.NormalMap
	if ts.NormalMap != nil {
		m.NormalScale = normalMapScale
	} else {
		m.NormalScale = math3d.Zero2()
	}
	m.NeedsUpdate = true
	return nil
}

// SetMaterial gives n a clone of source. A multi-material node keeps its
// shape: each slot i takes a clone of source.At(i), so a single source fills
// every slot and slots beyond a shorter multi source are left alone.
func SetMaterial(n *scene.Node, source models.Materials) error {
	if n == nil {
		return fmt.Errorf("set material: nil node: %w", scene.ErrInvalidArgument)
	}
	if source.IsEmpty() {
		return fmt.Errorf("set material %q: empty source: %w", n.Name, scene.ErrInvalidArgument)
	}
	if !n.Material.IsMulti() {
		n.Material = models.Single(source.At(0).Clone())
		return nil
	}
	out := n.Material
	for i := range n.Material.Len() {
		if m := source.At(i); m != nil {
			out = out.Replace(i, m.Clone())
		}
	}
	n.Material = out
	return nil
}

// SetTransparent gives every mesh under root a translucent material of the
// given hex color.
func SetTransparent(root *scene.Node, hex string) error {
	if root == nil {
		return fmt.Errorf("set transparent: nil node: %w", scene.ErrInvalidArgument)
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("set transparent: %w", err)
	}
	m := models.NewMaterial("transparent")
	m.Color = col
	m.Transparent = true
	m.Opacity = TransparentOpacity
	src := models.Single(m)

	var firstErr error
	root.Traverse(func(n *scene.Node) {
		if n.IsMesh() && firstErr == nil {
			firstErr = SetMaterial(n, src)
		}
	})
	return firstErr
}
