package main

import (
	"testing"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/scene"
	"github.com/taigrr/carve/pkg/uv"
)

func texturedBox() *scene.Node {
	m := models.NewMaterial("wood")
	m.Map = models.NewTexture("diffuse", nil)
	return scene.NewMesh("box", models.NewBox("box", math3d.V3(1, 1, 1)), models.Single(m))
}

func maxUV(n *scene.Node) math3d.Vec2 {
	var out math3d.Vec2
	for _, v := range n.Geometry.Vertices {
		out.X = max(out.X, v.UV.X)
		out.Y = max(out.Y, v.UV.Y)
	}
	return out
}

func TestScaleTextures(t *testing.T) {
	tests := []struct {
		name       string
		repeat     bool
		wantUV     math3d.Vec2
		wantRepeat math3d.Vec2
	}{
		{"uv", false, math3d.V2(3, 2), math3d.One2()},
		{"repeat", true, math3d.One2(), math3d.V2(3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := texturedBox()
			if err := scaleTextures(n, 3, 2, tt.repeat); err != nil {
				t.Fatalf("scaleTextures: %v", err)
			}
			if got := maxUV(n); !got.ApproxEqual(tt.wantUV, 1e-9) {
				t.Errorf("max uv = %v, want %v", got, tt.wantUV)
			}
			if got := uv.CurrentRepeat(n); got != tt.wantRepeat {
				t.Errorf("repeat = %v, want %v", got, tt.wantRepeat)
			}
		})
	}
}

func TestScaleTexturesTwiceNoDrift(t *testing.T) {
	n := texturedBox()
	for range 2 {
		if err := scaleTextures(n, 3, 2, false); err != nil {
			t.Fatal(err)
		}
	}
	if got := maxUV(n); !got.ApproxEqual(math3d.V2(3, 2), 1e-9) {
		t.Errorf("max uv = %v, want (3, 2)", got)
	}
}
