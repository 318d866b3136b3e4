package csg

// node is a BSP tree node. Polygons coplanar with the node's plane are
// stored on the node; the rest go to the front or back subtree.
type node struct {
	plane    *plane
	front    *node
	back     *node
	polygons []*polygon
}

func newNode(polygons []*polygon) *node {
	n := &node{}
	n.build(polygons)
	return n
}

// invert flips solid and empty space.
func (n *node) invert() {
	for _, p := range n.polygons {
		p.flip()
	}
	if n.plane != nil {
		flipped := n.plane.flip()
		n.plane = &flipped
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polygons that are inside this tree.
func (n *node) clipPolygons(polygons []*polygon) []*polygon {
	if n.plane == nil {
		out := make([]*polygon, len(polygons))
		copy(out, polygons)
		return out
	}
	var fronts, backs []*polygon
	for _, p := range polygons {
		n.plane.split(p, &fronts, &backs, &fronts, &backs)
	}
	if n.front != nil {
		fronts = n.front.clipPolygons(fronts)
	}
	if n.back != nil {
		backs = n.back.clipPolygons(backs)
	} else {
		backs = nil
	}
	return append(fronts, backs...)
}

// clipTo removes every polygon of this tree that lies inside other.
func (n *node) clipTo(other *node) {
	n.polygons = other.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *node) allPolygons() []*polygon {
	out := make([]*polygon, 0, len(n.polygons))
	var walk func(*node)
	walk = func(c *node) {
		out = append(out, c.polygons...)
		if c.front != nil {
			walk(c.front)
		}
		if c.back != nil {
			walk(c.back)
		}
	}
	walk(n)
	return out
}

// build inserts polygons, splitting them by existing planes.
func (n *node) build(polygons []*polygon) {
	if len(polygons) == 0 {
		return
	}
	if n.plane == nil {
		pl := polygons[0].plane
		n.plane = &pl
	}
	var fronts, backs []*polygon
	for _, p := range polygons {
		n.plane.split(p, &n.polygons, &n.polygons, &fronts, &backs)
	}
	if len(fronts) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(fronts)
	}
	if len(backs) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(backs)
	}
}
