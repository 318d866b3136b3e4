package csg

import (
	"github.com/taigrr/carve/pkg/math3d"
)

// planeEpsilon is the tolerance used to decide whether a point is on a
// plane.
const planeEpsilon = 1e-5

type vertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec2
}

func (v vertex) flip() vertex {
	v.normal = v.normal.Negate()
	return v
}

func (v vertex) interpolate(o vertex, t float64) vertex {
	return vertex{
		pos:    v.pos.Lerp(o.pos, t),
		normal: v.normal.Lerp(o.normal, t),
		uv:     v.uv.Lerp(o.uv, t),
	}
}

type plane struct {
	normal math3d.Vec3
	w      float64
}

// planeFromPoints returns the plane through a, b, c with CCW front side.
// ok is false for collinear points.
func planeFromPoints(a, b, c math3d.Vec3) (plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSq() == 0 {
		return plane{}, false
	}
	n = n.Normalize()
	return plane{normal: n, w: n.Dot(a)}, true
}

func (p plane) flip() plane {
	return plane{normal: p.normal.Negate(), w: -p.w}
}

// polygon is a convex planar polygon. group is the output material group.
type polygon struct {
	vertices []vertex
	plane    plane
	group    int
}

func newPolygon(vertices []vertex, group int) (*polygon, bool) {
	pl, ok := planeFromPoints(vertices[0].pos, vertices[1].pos, vertices[2].pos)
	if !ok {
		return nil, false
	}
	return &polygon{vertices: vertices, plane: pl, group: group}, true
}

func (p *polygon) flip() {
	n := len(p.vertices)
	for i := 0; i < n/2; i++ {
		p.vertices[i], p.vertices[n-1-i] = p.vertices[n-1-i], p.vertices[i]
	}
	for i := range p.vertices {
		p.vertices[i] = p.vertices[i].flip()
	}
	p.plane = p.plane.flip()
}

func (p *polygon) clone() *polygon {
	vs := make([]vertex, len(p.vertices))
	copy(vs, p.vertices)
	return &polygon{vertices: vs, plane: p.plane, group: p.group}
}

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = front | back
)

// split classifies poly against p and appends it, or its pieces, to the
// matching lists. Coplanar polygons go to coplanarFront or coplanarBack
// depending on their orientation relative to p.
func (p plane) split(poly *polygon, coplanarFront, coplanarBack, fronts, backs *[]*polygon) {
	polyType := 0
	types := make([]int, len(poly.vertices))
	for i, v := range poly.vertices {
		t := p.normal.Dot(v.pos) - p.w
		typ := coplanar
		if t < -planeEpsilon {
			typ = back
		} else if t > planeEpsilon {
			typ = front
		}
		polyType |= typ
		types[i] = typ
	}

	switch polyType {
	case coplanar:
		if p.normal.Dot(poly.plane.normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case front:
		*fronts = append(*fronts, poly)
	case back:
		*backs = append(*backs, poly)
	case spanning:
		var f, b []vertex
		n := len(poly.vertices)
		for i := range n {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.vertices[i], poly.vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				t := (p.w - p.normal.Dot(vi.pos)) / p.normal.Dot(vj.pos.Sub(vi.pos))
				v := vi.interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*fronts = append(*fronts, &polygon{vertices: f, plane: poly.plane, group: poly.group})
		}
		if len(b) >= 3 {
			*backs = append(*backs, &polygon{vertices: b, plane: poly.plane, group: poly.group})
		}
	}
}
