package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestTranslateMulVec3(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	got := m.MulVec3(V3(1, 1, 1))
	if !got.ApproxEqual(V3(2, 3, 4), eps) {
		t.Errorf("MulVec3 = %v, want (2,3,4)", got)
	}
	dir := m.MulVec3Dir(V3(1, 0, 0))
	if !dir.ApproxEqual(V3(1, 0, 0), eps) {
		t.Errorf("MulVec3Dir = %v, want translation ignored", dir)
	}
}

func TestRotateY(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"zero", 0, V3(1, 0, 0), V3(1, 0, 0)},
		{"half turn", math.Pi, V3(1, 0, 0), V3(-1, 0, 0)},
		{"quarter turn x to -z", math.Pi / 2, V3(1, 0, 0), V3(0, 0, -1)},
		{"negative quarter turn x to z", -math.Pi / 2, V3(1, 0, 0), V3(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateY(tt.angle).MulVec3(tt.in)
			if !got.ApproxEqual(tt.want, eps) {
				t.Errorf("RotateY(%v) * %v = %v, want %v", tt.angle, tt.in, got, tt.want)
			}
		})
	}
}

func TestInverse(t *testing.T) {
	m := Compose(V3(1, -2, 3), E(0.3, -0.7, 1.1), V3(2, 3, 0.5))
	if !m.Mul(m.Inverse()).IsIdentity(1e-9) {
		t.Errorf("m * m^-1 is not identity: %v", m.Mul(m.Inverse()))
	}
}

func TestColumnMajorRoundTrip(t *testing.T) {
	m := Compose(V3(4, 5, 6), E(0.1, 0.2, 0.3), V3(1, 2, 3))
	cm := m.ColumnMajor()
	if got := Mat4FromSlice(cm[:]); got != m {
		t.Errorf("Mat4FromSlice(ColumnMajor()) = %v, want %v", got, m)
	}
	// Translation sits in elements 12..14 in column-major layout.
	if cm[12] != 4 || cm[13] != 5 || cm[14] != 6 {
		t.Errorf("column-major translation = %v, want [4 5 6]", cm[12:15])
	}
}

func TestEulerRoundTrip(t *testing.T) {
	tests := []Euler{
		E(0, 0, 0),
		E(0.2, -0.4, 0.9),
		E(-1.2, 0.5, -2.5),
		E(0, math.Pi/2-0.01, 0),
	}
	for _, e := range tests {
		got := EulerFromMat4(e.Mat4())
		if !approxMat(got.Mat4(), e.Mat4(), 1e-9) {
			t.Errorf("EulerFromMat4(%v) = %v, matrices differ", e, got)
		}
	}
}

func TestDecompose(t *testing.T) {
	pos := V3(1, 2, 3)
	rot := E(0.3, 0.2, -0.1)
	scale := V3(2, 4, 0.5)
	p, r, s := Decompose(Compose(pos, rot, scale))
	if !p.ApproxEqual(pos, eps) {
		t.Errorf("position = %v, want %v", p, pos)
	}
	if !s.ApproxEqual(scale, eps) {
		t.Errorf("scale = %v, want %v", s, scale)
	}
	if !approxMat(r.Mat4(), rot.Mat4(), 1e-9) {
		t.Errorf("rotation = %v, want %v", r, rot)
	}
}

func TestQuatToMat4(t *testing.T) {
	// 90 degrees about Y.
	s := math.Sin(math.Pi / 4)
	got := QuatToMat4(0, s, 0, math.Cos(math.Pi/4))
	if !approxMat(got, RotateY(math.Pi/2), 1e-12) {
		t.Errorf("QuatToMat4 = %v, want RotateY(pi/2)", got)
	}
}

func TestBox3(t *testing.T) {
	b := EmptyBox3()
	if !b.IsEmpty() {
		t.Fatal("EmptyBox3 should be empty")
	}
	if b.Size() != Zero3() {
		t.Errorf("empty Size = %v, want zero", b.Size())
	}
	b = b.ExpandByPoint(V3(-1, 0, 2)).ExpandByPoint(V3(3, 1, 4))
	if got := b.Size(); got != V3(4, 1, 2) {
		t.Errorf("Size = %v, want (4,1,2)", got)
	}
	if got := b.Center(); got != V3(1, 0.5, 3) {
		t.Errorf("Center = %v, want (1,0.5,3)", got)
	}
	moved := b.Transform(Translate(V3(1, 1, 1)))
	if !moved.Min.ApproxEqual(V3(0, 1, 3), eps) {
		t.Errorf("Transform min = %v, want (0,1,3)", moved.Min)
	}
}

func approxMat(a, b Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
