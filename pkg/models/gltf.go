package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/carve/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into an Asset.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	SmoothNormals    bool
	LoadTextures     bool
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		LoadTextures:     true,
	}
}

// LoadGLB loads a glTF or GLB file with default options.
func LoadGLB(path string) (*Asset, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens a glTF or GLB file and converts it to an Asset.
func (l *GLTFLoader) Load(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	asset, err := l.convert(doc, path)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}
	return asset, nil
}

func (l *GLTFLoader) convert(doc *gltf.Document, path string) (*Asset, error) {
	asset := &Asset{Name: filepath.Base(path)}

	if l.LoadTextures {
		asset.Materials = extractMaterials(doc, path)
	} else {
		asset.Materials = extractMaterials(doc, "")
	}

	for i, m := range doc.Meshes {
		mesh, err := l.convertMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		asset.Meshes = append(asset.Meshes, mesh)
	}

	asset.Nodes = make([]AssetNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		asset.Nodes[i] = convertNode(n)
	}
	asset.Roots = rootNodes(doc)
	return asset, nil
}

// convertNode reads a node's local transform. An explicit matrix wins over
// TRS, as the glTF format requires.
func convertNode(n *gltf.Node) AssetNode {
	node := AssetNode{
		Name:        n.Name,
		Mesh:        -1,
		Translation: math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2]),
		Rotation:    math3d.EulerFromMat4(math3d.QuatToMat4(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3])),
		Scale:       math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2]),
	}
	if node.Scale == math3d.Zero3() {
		node.Scale = math3d.One3()
	}
	if n.Matrix != [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} && n.Matrix != [16]float64{} {
		node.Translation, node.Rotation, node.Scale = math3d.Decompose(math3d.Mat4FromSlice(n.Matrix[:]))
	}
	if n.Mesh != nil {
		node.Mesh = int(*n.Mesh)
	}
	for _, c := range n.Children {
		node.Children = append(node.Children, int(c))
	}
	return node
}

// rootNodes returns the nodes of the default scene, or every node that is
// nobody's child when the document has no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		var roots []int
		for _, n := range doc.Scenes[sceneIdx].Nodes {
			roots = append(roots, int(n))
		}
		return roots
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// convertMesh merges all triangle primitives of a glTF mesh into one Mesh.
// Face material indices are document-wide material indices.
func (l *GLTFLoader) convertMesh(doc *gltf.Document, m *gltf.Mesh) (*Mesh, error) {
	mesh := NewMesh(m.Name)
	hasNormals := true

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip lines and points
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
		} else {
			hasNormals = false
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
		}

		materialIdx := -1
		if prim.Material != nil {
			materialIdx = int(*prim.Material)
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))}
			if i < len(normals) {
				n := normals[i]
				v.Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
			if i < len(uvs) {
				v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			// Non-indexed: sequential triangles
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			face := Face{
				V: [3]int{
					baseVertex + int(indices[i]),
					baseVertex + int(indices[i+1]),
					baseVertex + int(indices[i+2]),
				},
				Material: materialIdx,
			}
			if face.V[0] >= len(mesh.Vertices) || face.V[1] >= len(mesh.Vertices) || face.V[2] >= len(mesh.Vertices) {
				return nil, fmt.Errorf("index out of range in primitive (vertices: %d)", len(positions))
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}

	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// extractMaterials converts glTF PBR materials. Textures are decoded only
// when basePath is non-empty.
func extractMaterials(doc *gltf.Document, basePath string) []*Material {
	materials := make([]*Material, len(doc.Materials))

	for i, mat := range doc.Materials {
		m := NewMaterial(mat.Name)

		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				m.Color = colorful.Color{
					R: float64(pbr.BaseColorFactor[0]),
					G: float64(pbr.BaseColorFactor[1]),
					B: float64(pbr.BaseColorFactor[2]),
				}
				if a := float64(pbr.BaseColorFactor[3]); a < 1 {
					m.Transparent = true
					m.Opacity = a
				}
			}
			if pbr.MetallicFactor != nil {
				m.Metalness = float64(*pbr.MetallicFactor)
			} else {
				m.Metalness = 1
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = float64(*pbr.RoughnessFactor)
			}

			if basePath != "" {
				if pbr.BaseColorTexture != nil {
					m.Map = textureAt(doc, int(pbr.BaseColorTexture.Index), basePath)
				}
				if pbr.MetallicRoughnessTexture != nil {
					// glTF packs roughness (G) and metalness (B) in one image.
					tex := textureAt(doc, int(pbr.MetallicRoughnessTexture.Index), basePath)
					m.RoughnessMap = tex
					m.MetalnessMap = tex.Clone()
				}
			}
		}

		materials[i] = m
	}

	return materials
}

// textureAt decodes texture texIdx, returning nil if it cannot be read.
func textureAt(doc *gltf.Document, texIdx int, basePath string) *Texture {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return nil
	}
	img := doc.Images[*tex.Source]
	decoded := loadGLTFImage(doc, img, basePath)
	if decoded == nil {
		return nil
	}
	name := img.Name
	if name == "" {
		name = img.URI
	}
	return NewTexture(name, decoded)
}

// loadGLTFImage loads an image from glTF (embedded or external).
func loadGLTFImage(doc *gltf.Document, img *gltf.Image, basePath string) image.Image {
	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(filepath.Dir(basePath), img.URI))
		if err != nil {
			return nil
		}
	default:
		return nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}
