package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/carve/pkg/math3d"
)

// OBJLoader loads Wavefront OBJ files.
type OBJLoader struct {
	// Options
	CalculateNormals bool // If true, calculate normals if not provided
	SmoothNormals    bool // If true, use smooth shading (averaged normals)
}

// NewOBJLoader creates a new OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{
		CalculateNormals: true,
		SmoothNormals:    false,
	}
}

// LoadFile loads an OBJ file from disk.
func (l *OBJLoader) LoadFile(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return l.Load(f, path)
}

// Load parses an OBJ from a reader. Each "usemtl" directive opens a
// material group; the asset gets one default material per referenced name
// since material libraries are not read.
func (l *OBJLoader) Load(r io.Reader, name string) (*Asset, error) {
	p := newOBJParser(name)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if err := p.directive(strings.Fields(line)); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}

	mesh := p.mesh
	mesh.CalculateBounds()
	if l.CalculateNormals && len(p.normals) == 0 {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	return newSingleMeshAsset(mesh, p.materials), nil
}

// objCorner identifies a face corner by its 0-indexed position, UV and
// normal references; -1 means absent.
type objCorner struct {
	pos, uv, normal int
}

// objParser accumulates OBJ attribute pools and emits mesh vertices for
// each distinct corner.
type objParser struct {
	mesh      *Mesh
	positions []math3d.Vec3
	normals   []math3d.Vec3
	uvs       []math3d.Vec2
	corners   map[objCorner]int

	materials     []*Material
	materialIndex map[string]int
	current       int
}

func newOBJParser(name string) *objParser {
	return &objParser{
		mesh:          NewMesh(name),
		corners:       make(map[objCorner]int),
		materialIndex: make(map[string]int),
		current:       -1,
	}
}

func (p *objParser) directive(fields []string) error {
	switch fields[0] {
	case "v":
		xyz, err := parseFloats(fields[1:], 3, "vertex")
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math3d.V3(xyz[0], xyz[1], xyz[2]))
	case "vt":
		uv, err := parseFloats(fields[1:], 2, "texture coord")
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, math3d.V2(uv[0], uv[1]))
	case "vn":
		xyz, err := parseFloats(fields[1:], 3, "normal")
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math3d.V3(xyz[0], xyz[1], xyz[2]).Normalize())
	case "f":
		return p.face(fields[1:])
	case "o", "g":
		if len(fields) > 1 {
			p.mesh.Name = fields[1]
		}
	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("usemtl needs a material name")
		}
		p.useMaterial(fields[1])
	}
	// mtllib, s and unknown directives are ignored
	return nil
}

func (p *objParser) useMaterial(name string) {
	idx, ok := p.materialIndex[name]
	if !ok {
		idx = len(p.materials)
		p.materials = append(p.materials, NewMaterial(name))
		p.materialIndex[name] = idx
	}
	p.current = idx
}

// face fan-triangulates a convex polygon, keeping OBJ's CCW winding.
func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face needs at least 3 vertices")
	}
	verts := make([]int, len(refs))
	for i, ref := range refs {
		pos, uv, normal, err := parseFaceVertex(ref)
		if err != nil {
			return err
		}
		c := objCorner{
			pos:    resolveIndex(pos, len(p.positions)),
			uv:     resolveIndex(uv, len(p.uvs)),
			normal: resolveIndex(normal, len(p.normals)),
		}
		if c.pos < 0 || c.pos >= len(p.positions) {
			return fmt.Errorf("position index %d out of range", pos)
		}
		verts[i] = p.vertex(c)
	}
	for i := 1; i+1 < len(verts); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{
			V:        [3]int{verts[0], verts[i], verts[i+1]},
			Material: p.current,
		})
	}
	return nil
}

func (p *objParser) vertex(c objCorner) int {
	if idx, ok := p.corners[c]; ok {
		return idx
	}
	v := MeshVertex{Position: p.positions[c.pos]}
	if c.uv >= 0 && c.uv < len(p.uvs) {
		v.UV = p.uvs[c.uv]
	}
	if c.normal >= 0 && c.normal < len(p.normals) {
		v.Normal = p.normals[c.normal]
	}
	idx := len(p.mesh.Vertices)
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.corners[c] = idx
	return idx
}

// parseFloats parses the first n fields as floats.
func parseFloats(fields []string, n int, what string) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("invalid %s: need %d values, got %d", what, n, len(fields))
	}
	out := make([]float64, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s component %d: %w", what, i, err)
		}
		out[i] = f
	}
	return out, nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn
// Returns 1-indexed values (0 means not specified)
func parseFaceVertex(s string) (pos, uv, normal int, err error) {
	parts := strings.Split(s, "/")

	// Position (required)
	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}

	// UV (optional)
	if len(parts) > 1 && parts[1] != "" {
		uv, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid texture index: %s", parts[1])
		}
	}

	// Normal (optional)
	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}

	return pos, uv, normal, nil
}

// resolveIndex converts OBJ 1-indexed (or negative) index to 0-indexed.
// Returns -1 if index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx // Negative indices count from end
	}
	return idx - 1 // Convert 1-indexed to 0-indexed
}

// LoadOBJ is a convenience function to load an OBJ file with default settings.
func LoadOBJ(path string) (*Asset, error) {
	return NewOBJLoader().LoadFile(path)
}
