package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/taigrr/carve/pkg/math3d"
)

// STLLoader loads STL (stereolithography) files in both ASCII and binary formats.
// STL carries no UVs or materials: every face lands in material group 0 and
// the returned asset has no materials, so scene construction assigns a
// default one.
type STLLoader struct {
	// Options
	SmoothNormals bool // If true, average normals per-vertex for smooth shading
}

// NewSTLLoader creates a new STL loader with default settings.
func NewSTLLoader() *STLLoader {
	return &STLLoader{
		SmoothNormals: false,
	}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}

	return l.LoadBytes(data, path)
}

// Load parses STL from a reader.
// Note: This reads the entire content into memory to detect format.
func (l *STLLoader) Load(r io.Reader, name string) (*Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Asset, error) {
	b := newSTLBuilder(name)
	var err error
	if isBinarySTL(data) {
		err = b.readBinary(data)
	} else {
		err = b.readASCII(data)
	}
	if err != nil {
		return nil, err
	}

	b.mesh.CalculateBounds()
	if l.SmoothNormals {
		b.mesh.CalculateSmoothNormals()
	}
	return newSingleMeshAsset(b.mesh, nil), nil
}

// isBinarySTL detects if the data is binary STL format.
// Binary STL starts with 80-byte header, then 4-byte triangle count.
// ASCII STL starts with "solid", but some binary exporters put "solid" in
// the header too, so the triangle count is checked against the size.
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return true
	}
	triCount := binary.LittleEndian.Uint32(data[80:84])
	return uint64(len(data)) == 84+uint64(triCount)*50
}

// stlBuilder accumulates facets, sharing vertices with identical position
// and facet normal.
type stlBuilder struct {
	mesh     *Mesh
	vertices map[[2]math3d.Vec3]int
}

func newSTLBuilder(name string) *stlBuilder {
	return &stlBuilder{
		mesh:     NewMesh(name),
		vertices: make(map[[2]math3d.Vec3]int),
	}
}

func (b *stlBuilder) vertex(pos, normal math3d.Vec3) int {
	key := [2]math3d.Vec3{pos, normal}
	if idx, ok := b.vertices[key]; ok {
		return idx
	}
	idx := len(b.mesh.Vertices)
	b.mesh.Vertices = append(b.mesh.Vertices, MeshVertex{Position: pos, Normal: normal})
	b.vertices[key] = idx
	return idx
}

func (b *stlBuilder) facet(normal math3d.Vec3, corners []math3d.Vec3) {
	if normal.LenSq() == 0 {
		normal = corners[1].Sub(corners[0]).Cross(corners[2].Sub(corners[0])).Normalize()
	}
	b.mesh.Faces = append(b.mesh.Faces, Face{
		V: [3]int{
			b.vertex(corners[0], normal),
			b.vertex(corners[1], normal),
			b.vertex(corners[2], normal),
		},
		Material: 0,
	})
}

// readBinary parses binary STL: per triangle a normal, three vertices and a
// 2-byte attribute count, all little-endian float32.
func (b *stlBuilder) readBinary(data []byte) error {
	triCount := binary.LittleEndian.Uint32(data[80:84])
	expectedSize := 84 + uint64(triCount)*50
	if uint64(len(data)) < expectedSize {
		return fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expectedSize, len(data))
	}

	offset := 84
	corners := make([]math3d.Vec3, 3)
	for range triCount {
		normal := readVec3LE(data[offset:])
		offset += 12
		for v := range corners {
			corners[v] = readVec3LE(data[offset:])
			offset += 12
		}
		offset += 2
		b.facet(normal, corners)
	}
	return nil
}

func readVec3LE(data []byte) math3d.Vec3 {
	f := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return math3d.V3(f(0), f(1), f(2))
}

// readASCII parses ASCII STL. Facets with more than three vertices are
// fan-triangulated.
func (b *stlBuilder) readASCII(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	var normal math3d.Vec3
	var corners []math3d.Vec3
	inFacet, inLoop := false, false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = fields[1]
			}

		case "facet":
			normal = math3d.Zero3()
			if len(fields) >= 5 && strings.EqualFold(fields[1], "normal") {
				n, err := parseFloats(fields[2:], 3, "facet normal")
				if err != nil {
					return fmt.Errorf("line %d: %w", lineNum, err)
				}
				normal = math3d.V3(n[0], n[1], n[2]).Normalize()
			}
			inFacet = true
			corners = corners[:0]

		case "outer":
			if len(fields) >= 2 && strings.EqualFold(fields[1], "loop") {
				inLoop = true
			}

		case "vertex":
			if !inFacet || !inLoop {
				return fmt.Errorf("line %d: vertex outside facet/loop", lineNum)
			}
			p, err := parseFloats(fields[1:], 3, "vertex")
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			corners = append(corners, math3d.V3(p[0], p[1], p[2]))

		case "endloop":
			inLoop = false

		case "endfacet":
			for i := 1; i+1 < len(corners); i++ {
				b.facet(normal, []math3d.Vec3{corners[0], corners[i], corners[i+1]})
			}
			inFacet = false
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return nil
}

// LoadSTL is a convenience function to load an STL file with default settings.
func LoadSTL(path string) (*Asset, error) {
	return NewSTLLoader().LoadFile(path)
}
