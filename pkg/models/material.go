package models

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/carve/pkg/math3d"
)

// Texture is a decoded image plus the tiling parameters a material applies
// to it. The image is treated as immutable and may be shared between
// texture copies; Repeat and Offset are per texture.
type Texture struct {
	Name   string
	Image  image.Image
	Repeat math3d.Vec2
	Offset math3d.Vec2

	// NeedsUpdate marks tiling or image changes for the renderer.
	NeedsUpdate bool
}

// NewTexture creates a texture with repeat (1, 1) and zero offset.
func NewTexture(name string, img image.Image) *Texture {
	return &Texture{
		Name:   name,
		Image:  img,
		Repeat: math3d.One2(),
	}
}

// Clone copies the tiling state. The image is shared.
func (t *Texture) Clone() *Texture {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Size returns the image dimensions, zero when no image is attached.
func (t *Texture) Size() (w, h int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// TextureSlot names one of the material texture slots that tiling
// operations touch.
type TextureSlot int

const (
	SlotMap TextureSlot = iota // Diffuse / base color
	SlotNormal
	SlotRoughness
	SlotMetalness
)

// TextureSlots lists every slot in a stable order.
var TextureSlots = []TextureSlot{SlotMap, SlotNormal, SlotRoughness, SlotMetalness}

// String returns the slot name.
func (s TextureSlot) String() string {
	switch s {
	case SlotMap:
		return "map"
	case SlotNormal:
		return "normalMap"
	case SlotRoughness:
		return "roughnessMap"
	case SlotMetalness:
		return "metalnessMap"
	default:
		return "unknown"
	}
}

// Material is a PBR metallic-roughness material.
type Material struct {
	Name      string
	Color     colorful.Color
	Metalness float64 // 0 = dielectric, 1 = metal
	Roughness float64 // 0 = smooth, 1 = rough

	Transparent bool
	Opacity     float64

	Map          *Texture
	NormalMap    *Texture
	RoughnessMap *Texture
	MetalnessMap *Texture
	NormalScale  math3d.Vec2

	NeedsUpdate bool
}

// NewMaterial creates a white, fully rough, opaque dielectric.
func NewMaterial(name string) *Material {
	return &Material{
		Name:        name,
		Color:       colorful.Color{R: 1, G: 1, B: 1},
		Roughness:   1,
		Opacity:     1,
		NormalScale: math3d.One2(),
	}
}

// Texture returns the texture in slot s, nil if empty.
func (m *Material) Texture(s TextureSlot) *Texture {
	switch s {
	case SlotMap:
		return m.Map
	case SlotNormal:
		return m.NormalMap
	case SlotRoughness:
		return m.RoughnessMap
	case SlotMetalness:
		return m.MetalnessMap
	default:
		return nil
	}
}

// SetTexture assigns t to slot s.
func (m *Material) SetTexture(s TextureSlot, t *Texture) {
	switch s {
	case SlotMap:
		m.Map = t
	case SlotNormal:
		m.NormalMap = t
	case SlotRoughness:
		m.RoughnessMap = t
	case SlotMetalness:
		m.MetalnessMap = t
	}
}

// EachTexture calls fn for every non-empty slot.
func (m *Material) EachTexture(fn func(TextureSlot, *Texture)) {
	for _, s := range TextureSlots {
		if t := m.Texture(s); t != nil {
			fn(s, t)
		}
	}
}

// HasTexture reports whether any slot holds a texture.
func (m *Material) HasTexture() bool {
	for _, s := range TextureSlots {
		if m.Texture(s) != nil {
			return true
		}
	}
	return false
}

// Clone returns a copy of the material with every texture copied as well,
// so tiling edits on the clone never reach the source.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	for _, s := range TextureSlots {
		c.SetTexture(s, m.Texture(s).Clone())
	}
	return &c
}

// Materials is the material assignment of a mesh: either one material for
// the whole mesh or an ordered list indexed by face material group.
// The zero value holds no material.
type Materials struct {
	list  []*Material
	multi bool
}

// Single wraps one material.
func Single(m *Material) Materials {
	if m == nil {
		return Materials{}
	}
	return Materials{list: []*Material{m}}
}

// Multi wraps an ordered list of per-group materials.
func Multi(ms ...*Material) Materials {
	list := make([]*Material, len(ms))
	copy(list, ms)
	return Materials{list: list, multi: true}
}

// IsMulti reports whether the assignment is per group.
func (ms Materials) IsMulti() bool {
	return ms.multi
}

// IsEmpty reports whether no material is assigned.
func (ms Materials) IsEmpty() bool {
	return len(ms.list) == 0
}

// Len returns the number of materials.
func (ms Materials) Len() int {
	return len(ms.list)
}

// At returns the material for group i. A single material serves every
// group. Out of range returns nil.
func (ms Materials) At(i int) *Material {
	if len(ms.list) == 0 {
		return nil
	}
	if !ms.multi {
		return ms.list[0]
	}
	if i < 0 || i >= len(ms.list) {
		return nil
	}
	return ms.list[i]
}

// Each calls fn for every material in order, skipping nil entries.
func (ms Materials) Each(fn func(i int, m *Material)) {
	for i, m := range ms.list {
		if m != nil {
			fn(i, m)
		}
	}
}

// Slice returns a copy of the material list.
func (ms Materials) Slice() []*Material {
	out := make([]*Material, len(ms.list))
	copy(out, ms.list)
	return out
}

// Replace returns a new assignment of the same shape with material i
// replaced by m.
func (ms Materials) Replace(i int, m *Material) Materials {
	if i < 0 || i >= len(ms.list) {
		return ms
	}
	out := Materials{list: ms.Slice(), multi: ms.multi}
	out.list[i] = m
	return out
}

// Clone deep-copies every material.
func (ms Materials) Clone() Materials {
	out := Materials{list: make([]*Material, len(ms.list)), multi: ms.multi}
	for i, m := range ms.list {
		out.list[i] = m.Clone()
	}
	return out
}

// Concat returns a multi assignment holding ms followed by o, used when
// geometry from two owners is merged and face groups are offset by ms.Len().
func (ms Materials) Concat(o Materials) Materials {
	list := make([]*Material, 0, len(ms.list)+len(o.list))
	list = append(list, ms.list...)
	list = append(list, o.list...)
	return Materials{list: list, multi: true}
}

// MarkNeedsUpdate flags every material for the renderer.
func (ms Materials) MarkNeedsUpdate() {
	ms.Each(func(_ int, m *Material) {
		m.NeedsUpdate = true
	})
}
