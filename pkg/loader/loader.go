// Package loader reads textures and models from disk, synchronously or in
// the background, and turns models into scene graphs.
package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/carve/pkg/materials"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/scene"
)

// ErrUnsupportedFormat is returned for model files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoadError reports a failed texture or model load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader resolves asset paths and decodes them.
type Loader struct {
	// Root is prepended to relative paths. Empty means the working
	// directory. A leading ~ in Root or a path is the home directory.
	Root string
	// ModelDir holds models referenced by bare name.
	ModelDir string

	GLTF *models.GLTFLoader
	OBJ  *models.OBJLoader
	STL  *models.STLLoader
}

// New creates a loader rooted at root with default format options.
func New(root string) *Loader {
	return &Loader{
		Root:     root,
		ModelDir: "models",
		GLTF:     models.NewGLTFLoader(),
		OBJ:      models.NewOBJLoader(),
		STL:      models.NewSTLLoader(),
	}
}

func (l *Loader) resolve(path string) string {
	path = expandHome(path)
	if filepath.IsAbs(path) || l.Root == "" {
		return path
	}
	return filepath.Join(expandHome(l.Root), path)
}

// expandHome expands a leading ~, leaving the path as is when the home
// directory is unknown.
func expandHome(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

// ModelPath returns the file a model name refers to. A name without an
// extension is a GLB file in ModelDir.
func (l *Loader) ModelPath(name string) string {
	if filepath.Ext(name) == "" {
		return l.resolve(filepath.Join(l.ModelDir, name+".glb"))
	}
	return l.resolve(name)
}

// LoadTexture decodes a PNG, JPEG, GIF, BMP or WebP image into a texture
// named after path.
func (l *Loader) LoadTexture(path string) (*models.Texture, error) {
	f, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("decode image: %w", err)}
	}
	b := img.Bounds()
	log.LogVf("Loaded %s texture %s (%dx%d)", format, path, b.Dx(), b.Dy())
	return models.NewTexture(path, img), nil
}

// LoadTextureAsync loads a texture in the background.
func (l *Loader) LoadTextureAsync(path string) *Pending[*models.Texture] {
	return Go(func() (*models.Texture, error) {
		return l.LoadTexture(path)
	})
}

// LoadAsset reads a model file into an asset, picking the format by
// extension.
func (l *Loader) LoadAsset(name string) (*models.Asset, error) {
	path := l.ModelPath(name)
	var (
		asset *models.Asset
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		asset, err = l.GLTF.Load(path)
	case ".obj":
		asset, err = l.OBJ.LoadFile(path)
	case ".stl":
		asset, err = l.STL.LoadFile(path)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return asset, nil
}

// LoadModel reads a model and builds its scene graph.
func (l *Loader) LoadModel(name string) (*scene.Node, error) {
	asset, err := l.LoadAsset(name)
	if err != nil {
		return nil, err
	}
	root, err := scene.FromAsset(asset)
	if err != nil {
		return nil, &LoadError{Path: l.ModelPath(name), Err: err}
	}
	log.LogVf("Loaded model %s: %d meshes, %d materials", name, len(asset.Meshes), len(asset.Materials))
	return root, nil
}

// LoadModelAsync loads a model in the background.
func (l *Loader) LoadModelAsync(name string) *Pending[*scene.Node] {
	return Go(func() (*scene.Node, error) {
		return l.LoadModel(name)
	})
}

// TexturePaths names the image files of a texture set. Empty paths leave
// the slot empty.
type TexturePaths struct {
	Map          string
	NormalMap    string
	RoughnessMap string
	MetalnessMap string
}

// LoadTextureSet loads the textures of paths concurrently. The first
// failure is returned once every started load has finished.
func (l *Loader) LoadTextureSet(ctx context.Context, paths TexturePaths) (materials.TextureSet, error) {
	var set materials.TextureSet
	g, ctx := errgroup.WithContext(ctx)
	for _, slot := range []struct {
		path string
		dst  **models.Texture
	}{
		{paths.Map, &set.Map},
		{paths.NormalMap, &set.NormalMap},
		{paths.RoughnessMap, &set.RoughnessMap},
		{paths.MetalnessMap, &set.MetalnessMap},
	} {
		if slot.path == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := l.LoadTexture(slot.path)
			if err != nil {
				return err
			}
			*slot.dst = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return materials.TextureSet{}, err
	}
	return set, nil
}
