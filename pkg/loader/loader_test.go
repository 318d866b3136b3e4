package loader

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"

	"github.com/taigrr/carve/pkg/scene"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

const cubeOBJ = `o cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
usemtl wood
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 2 3 7 6
f 3 4 8 7
f 4 1 5 8
`

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wood.png"), 4, 2)

	l := New(dir)
	tex, err := l.LoadTexture("wood.png")
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if tex.Name != "wood.png" {
		t.Errorf("Name = %q, want wood.png", tex.Name)
	}
	if w, h := tex.Size(); w != 4 || h != 2 {
		t.Errorf("Size = %dx%d, want 4x2", w, h)
	}
}

func TestLoadTextureErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := New(dir)

	tests := []struct {
		path     string
		notExist bool
	}{
		{"missing.png", true},
		{"junk.png", false},
	}
	for _, tt := range tests {
		_, err := l.LoadTexture(tt.path)
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("%s: err = %v, want *LoadError", tt.path, err)
		}
		if le.Path != tt.path {
			t.Errorf("Path = %q, want %q", le.Path, tt.path)
		}
		if got := errors.Is(err, os.ErrNotExist); got != tt.notExist {
			t.Errorf("%s: Is(ErrNotExist) = %v, want %v", tt.path, got, tt.notExist)
		}
	}
}

func TestModelPath(t *testing.T) {
	l := New("/assets")
	tests := []struct {
		name, want string
	}{
		{"chair", "/assets/models/chair.glb"},
		{"parts/leg.obj", "/assets/parts/leg.obj"},
		{"/abs/table.stl", "/abs/table.stl"},
	}
	for _, tt := range tests {
		if got := l.ModelPath(tt.name); got != tt.want {
			t.Errorf("ModelPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestModelPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	l := New("~/assets")
	if got, want := l.ModelPath("chair"), filepath.Join(home, "assets", "models", "chair.glb"); got != want {
		t.Errorf("ModelPath = %q, want %q", got, want)
	}
}

func TestLoadModelOBJ(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cube.obj"), []byte(cubeOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	l := New(dir)
	root, err := l.LoadModelAsync("cube.obj").Wait(context.Background())
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	meshes := scene.Meshes(root)
	if len(meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(meshes))
	}
	m := meshes[0]
	if m.Geometry.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", m.Geometry.TriangleCount())
	}
	if m.Material.At(0).Name != "wood" {
		t.Errorf("material = %q, want wood", m.Material.At(0).Name)
	}
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.fbx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := New(dir)

	_, err := l.LoadModel("model.fbx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("fbx err = %v, want ErrUnsupportedFormat", err)
	}

	_, err = l.LoadModel("absent")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("missing model err = %v, want *LoadError", err)
	}
	if want := filepath.Join(dir, "models", "absent.glb"); le.Path != want {
		t.Errorf("Path = %q, want %q", le.Path, want)
	}
}

func TestLoadTextureSet(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "diffuse.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "normal.png"), 2, 2)
	l := New(dir)

	set, err := l.LoadTextureSet(context.Background(), TexturePaths{Map: "diffuse.png", NormalMap: "normal.png"})
	if err != nil {
		t.Fatalf("LoadTextureSet: %v", err)
	}
	if set.Map == nil || set.Map.Name != "diffuse.png" {
		t.Errorf("Map = %v, want diffuse.png", set.Map)
	}
	if set.NormalMap == nil || set.RoughnessMap != nil || set.MetalnessMap != nil {
		t.Error("slots do not follow the requested paths")
	}

	_, err = l.LoadTextureSet(context.Background(), TexturePaths{Map: "diffuse.png", RoughnessMap: "missing.png"})
	var le *LoadError
	if !errors.As(err, &le) || le.Path != "missing.png" {
		t.Errorf("err = %v, want LoadError for missing.png", err)
	}
}
