package models

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// NewGLTFDocument builds a single-node glTF document from mesh, emitting
// one primitive per material group. Textures are not embedded; only the
// PBR factors are written.
func NewGLTFDocument(mesh *Mesh, materials Materials) (*gltf.Document, error) {
	if mesh.IsEmpty() {
		return nil, fmt.Errorf("export %q: mesh has no faces", mesh.Name)
	}

	doc := gltf.NewDocument()

	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	uvs := make([][2]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
		uvs[i] = [2]float32{float32(v.UV.X), float32(v.UV.Y)}
	}
	posAcc := modeler.WritePosition(doc, positions)
	normAcc := modeler.WriteNormal(doc, normals)
	uvAcc := modeler.WriteTextureCoord(doc, uvs)

	// Group indices by material so each group becomes a primitive.
	groups := make(map[int][]uint32)
	var order []int
	for _, f := range mesh.Faces {
		if _, ok := groups[f.Material]; !ok {
			order = append(order, f.Material)
		}
		groups[f.Material] = append(groups[f.Material],
			uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	materialIndex := make(map[*Material]int)
	gm := &gltf.Mesh{Name: mesh.Name}
	for _, group := range order {
		prim := &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, groups[group])),
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION:   posAcc,
				gltf.NORMAL:     normAcc,
				gltf.TEXCOORD_0: uvAcc,
			},
		}
		if mat := materials.At(group); mat != nil {
			idx, ok := materialIndex[mat]
			if !ok {
				idx = len(doc.Materials)
				doc.Materials = append(doc.Materials, exportMaterial(mat))
				materialIndex[mat] = idx
			}
			prim.Material = gltf.Index(idx)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}

	doc.Meshes = append(doc.Meshes, gm)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

func exportMaterial(m *Material) *gltf.Material {
	alpha := 1.0
	if m.Transparent {
		alpha = m.Opacity
	}
	out := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{m.Color.R, m.Color.G, m.Color.B, alpha},
			MetallicFactor:  gltf.Float(m.Metalness),
			RoughnessFactor: gltf.Float(m.Roughness),
		},
	}
	if m.Transparent {
		out.AlphaMode = gltf.AlphaBlend
	}
	return out
}

// SaveGLB writes mesh and its materials as a binary glTF file.
func SaveGLB(path string, mesh *Mesh, materials Materials) error {
	doc, err := NewGLTFDocument(mesh, materials)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}
