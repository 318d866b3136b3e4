// Package materials holds named material definitions and the helpers that
// assign them to scene meshes.
package materials

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/carve/pkg/models"
)

// ErrUnknownMaterial is returned when a library has no material of the
// requested name.
var ErrUnknownMaterial = errors.New("unknown material")

// Library maps material names to shared material instances. Meshes that
// receive a library material reference it, so edits through the library
// reach every mesh using it.
type Library struct {
	materials map[string]*models.Material
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{materials: make(map[string]*models.Material)}
}

// DefaultLibrary returns a library holding the "base" material: a white
// standard material with roughness and metalness 0.5.
func DefaultLibrary() *Library {
	l := NewLibrary()
	base := models.NewMaterial("base")
	base.Roughness = 0.5
	base.Metalness = 0.5
	l.Set(base)
	return l
}

// Set stores m under its name, replacing any previous entry.
func (l *Library) Set(m *models.Material) {
	l.materials[m.Name] = m
}

// Get returns the material called name.
func (l *Library) Get(name string) (*models.Material, bool) {
	m, ok := l.materials[name]
	return m, ok
}

// Names returns the material names in sorted order.
func (l *Library) Names() []string {
	return slices.Sorted(maps.Keys(l.materials))
}

// Len returns the number of materials.
func (l *Library) Len() int {
	return len(l.materials)
}

// materialConfig is one [materials.<name>] table of a library file.
// Unset keys keep the models.NewMaterial defaults.
type materialConfig struct {
	Color       string   `toml:"color" yaml:"color"`
	Roughness   *float64 `toml:"roughness" yaml:"roughness"`
	Metalness   *float64 `toml:"metalness" yaml:"metalness"`
	Transparent bool     `toml:"transparent" yaml:"transparent"`
	Opacity     *float64 `toml:"opacity" yaml:"opacity"`
}

type libraryFile struct {
	Materials map[string]materialConfig `toml:"materials" yaml:"materials"`
}

// LoadLibrary reads a material library from path. Files ending in .yaml or
// .yml are YAML, anything else is TOML. A leading ~ is the home directory.
func LoadLibrary(path string) (*Library, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("material library %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read material library: %w", err)
	}
	parse := ParseLibrary
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".yaml", ".yml":
		parse = ParseLibraryYAML
	}
	l, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseLibrary parses a TOML material library:
//
//	[materials.base]
//	color = "#ffffff"
//	roughness = 0.5
//	metalness = 0.5
func ParseLibrary(data []byte) (*Library, error) {
	var file libraryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse material library: %w", err)
	}
	return file.library()
}

// ParseLibraryYAML parses the YAML form of a material library:
//
//	materials:
//	  base:
//	    roughness: 0.5
//	    metalness: 0.5
func ParseLibraryYAML(data []byte) (*Library, error) {
	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse material library: %w", err)
	}
	return file.library()
}

func (file libraryFile) library() (*Library, error) {
	l := NewLibrary()
	for _, name := range slices.Sorted(maps.Keys(file.Materials)) {
		m, err := file.Materials[name].material(name)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		l.Set(m)
	}
	return l, nil
}

func (c materialConfig) material(name string) (*models.Material, error) {
	m := models.NewMaterial(name)
	if c.Color != "" {
		col, err := colorful.Hex(c.Color)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		m.Color = col
	}
	if c.Roughness != nil {
		if *c.Roughness < 0 || *c.Roughness > 1 {
			return nil, fmt.Errorf("roughness %v out of range [0, 1]", *c.Roughness)
		}
		m.Roughness = *c.Roughness
	}
	if c.Metalness != nil {
		if *c.Metalness < 0 || *c.Metalness > 1 {
			return nil, fmt.Errorf("metalness %v out of range [0, 1]", *c.Metalness)
		}
		m.Metalness = *c.Metalness
	}
	m.Transparent = c.Transparent
	if c.Opacity != nil {
		if *c.Opacity < 0 || *c.Opacity > 1 {
			return nil, fmt.Errorf("opacity %v out of range [0, 1]", *c.Opacity)
		}
		m.Opacity = *c.Opacity
	}
	return m, nil
}
