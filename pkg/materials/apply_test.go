package materials

import (
	"errors"
	"testing"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/scene"
)

func meshNode(name string, mats models.Materials) *scene.Node {
	return scene.NewMesh(name, models.NewBox(name, math3d.V3(1, 1, 1)), mats)
}

func TestApply(t *testing.T) {
	l := DefaultLibrary()
	root := scene.NewGroup("root")
	single := meshNode("single", models.Single(models.NewMaterial("base")))
	multi := meshNode("multi", models.Multi(models.NewMaterial("other"), models.NewMaterial("base")))
	untouched := meshNode("untouched", models.Single(models.NewMaterial("paint")))
	root.Add(single, multi, untouched)

	if got := l.Apply(root); got != 2 {
		t.Errorf("Apply = %d, want 2", got)
	}
	base, _ := l.Get("base")
	if single.Material.At(0) != base {
		t.Error("single mesh does not reference the library material")
	}
	if multi.Material.At(1) != base || multi.Material.At(0).Name != "other" {
		t.Error("multi mesh slots not replaced by name")
	}
	if untouched.Material.At(0).Name != "paint" {
		t.Error("unknown material was replaced")
	}
	for _, n := range []*scene.Node{single, multi, untouched} {
		if !n.CastShadow || !n.ReceiveShadow {
			t.Errorf("%s shadows = %v/%v, want true/true", n.Name, n.CastShadow, n.ReceiveShadow)
		}
	}
	if got := l.Apply(root); got != 0 {
		t.Errorf("second Apply = %d, want 0", got)
	}
}

func TestSetTextures(t *testing.T) {
	l := DefaultLibrary()
	diffuse := models.NewTexture("diffuse", nil)
	normal := models.NewTexture("normal", nil)

	if err := l.SetTextures("base", TextureSet{Map: diffuse, NormalMap: normal}); err != nil {
		t.Fatalf("SetTextures: %v", err)
	}
	base, _ := l.Get("base")
	if base.Map != diffuse || base.NormalMap != normal || base.RoughnessMap != nil {
		t.Error("texture slots not assigned")
	}
	if base.NormalScale != math3d.V2(-0.4, -0.4) {
		t.Errorf("NormalScale = %v, want (-0.4, -0.4)", base.NormalScale)
	}
	if !base.NeedsUpdate {
		t.Error("NeedsUpdate not set")
	}

	if err := l.SetTextures("base", TextureSet{Map: diffuse}); err != nil {
		t.Fatal(err)
	}
	if base.NormalMap != nil || base.NormalScale != math3d.Zero2() {
		t.Errorf("without normal map: map=%v scale=%v, want nil and zero", base.NormalMap, base.NormalScale)
	}

	if err := l.SetTextures("nope", TextureSet{}); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("unknown name error = %v, want ErrUnknownMaterial", err)
	}
}

func TestSetMaterial(t *testing.T) {
	src := models.NewMaterial("src")
	src.Map = models.NewTexture("tex", nil)

	single := meshNode("single", models.Single(models.NewMaterial("old")))
	if err := SetMaterial(single, models.Single(src)); err != nil {
		t.Fatal(err)
	}
	got := single.Material.At(0)
	if got == src || got.Name != "src" {
		t.Error("single node did not get a clone of the source")
	}
	if got.Map == src.Map {
		t.Error("texture shared with the source")
	}

	multi := meshNode("multi", models.Multi(models.NewMaterial("a"), models.NewMaterial("b"), models.NewMaterial("c")))
	if err := SetMaterial(multi, models.Multi(models.NewMaterial("x"), models.NewMaterial("y"))); err != nil {
		t.Fatal(err)
	}
	if !multi.Material.IsMulti() {
		t.Fatal("multi node lost its shape")
	}
	for i, want := range []string{"x", "y", "c"} {
		if name := multi.Material.At(i).Name; name != want {
			t.Errorf("slot %d = %q, want %q", i, name, want)
		}
	}

	if err := SetMaterial(multi, models.Single(src)); err != nil {
		t.Fatal(err)
	}
	if multi.Material.At(0) == multi.Material.At(2) {
		t.Error("slots share one clone")
	}
	for i := range 3 {
		if multi.Material.At(i).Name != "src" {
			t.Errorf("slot %d not filled by the single source", i)
		}
	}
}

func TestSetMaterialInvalid(t *testing.T) {
	if err := SetMaterial(nil, models.Single(models.NewMaterial("m"))); !errors.Is(err, scene.ErrInvalidArgument) {
		t.Errorf("nil node error = %v, want ErrInvalidArgument", err)
	}
	n := meshNode("n", models.Single(models.NewMaterial("keep")))
	if err := SetMaterial(n, models.Materials{}); !errors.Is(err, scene.ErrInvalidArgument) {
		t.Errorf("empty source error = %v, want ErrInvalidArgument", err)
	}
	if n.Material.At(0).Name != "keep" {
		t.Error("material changed after a rejected call")
	}
}

func TestSetTransparent(t *testing.T) {
	root := scene.NewGroup("root")
	a := meshNode("a", models.Single(models.NewMaterial("a")))
	b := meshNode("b", models.Multi(models.NewMaterial("b0"), models.NewMaterial("b1")))
	root.Add(a, scene.NewObject("pivot"), b)

	if err := SetTransparent(root, "#ff0000"); err != nil {
		t.Fatalf("SetTransparent: %v", err)
	}
	for _, m := range []*models.Material{a.Material.At(0), b.Material.At(0), b.Material.At(1)} {
		if !m.Transparent || m.Opacity != TransparentOpacity {
			t.Errorf("%s transparent/opacity = %v/%v", m.Name, m.Transparent, m.Opacity)
		}
		if m.Color.R != 1 || m.Color.G != 0 {
			t.Errorf("%s color = %v, want red", m.Name, m.Color)
		}
	}
	if a.Material.At(0) == b.Material.At(0) {
		t.Error("meshes share one material instance")
	}

	if err := SetTransparent(root, "red"); err == nil {
		t.Error("expected error for a malformed color")
	}
	if err := SetTransparent(nil, "#ffffff"); !errors.Is(err, scene.ErrInvalidArgument) {
		t.Errorf("nil root error = %v, want ErrInvalidArgument", err)
	}
}
