package geom

// IsClosed reports whether pts forms a closed ring with at least
// three distinct points.
func IsClosed(pts []Point) bool {
	return len(pts) >= 4 && pts[0] == pts[len(pts)-1]
}

// AssembleRings joins open line segments into closed rings by
// matching endpoints, reversing segments where needed. Segments that
// cannot be closed are returned as incomplete.
func AssembleRings(lines [][]Point) (rings [][]Point, incomplete [][]Point) {
	var open [][]Point
	for _, l := range lines {
		if len(l) < 2 {
			continue
		}
		if IsClosed(l) {
			rings = append(rings, l)
			continue
		}
		open = append(open, l)
	}

	for len(open) > 0 {
		cur := open[0]
		open = open[1:]

		joined := true
		for joined && !IsClosed(cur) {
			joined = false
			for i, cand := range open {
				merged, ok := join(cur, cand)
				if !ok {
					continue
				}
				cur = merged
				open = append(open[:i], open[i+1:]...)
				joined = true
				break
			}
		}
		if IsClosed(cur) {
			rings = append(rings, cur)
		} else {
			incomplete = append(incomplete, cur)
		}
	}
	return rings, incomplete
}

// join connects b to a if they share an endpoint.
func join(a, b []Point) ([]Point, bool) {
	switch {
	case a[len(a)-1] == b[0]:
		return append(a, b[1:]...), true
	case a[len(a)-1] == b[len(b)-1]:
		return append(a, reversed(b)[1:]...), true
	case a[0] == b[len(b)-1]:
		return append(append([]Point{}, b...), a[1:]...), true
	case a[0] == b[0]:
		return append(reversed(b), a[1:]...), true
	}
	return nil, false
}

func reversed(pts []Point) []Point {
	r := make([]Point, len(pts))
	for i, p := range pts {
		r[len(pts)-1-i] = p
	}
	return r
}

// Polygonize builds polygons from assembled outer and inner rings.
// Inner rings become holes of the outer ring that contains them.
func Polygonize(outers, inners [][]Point) [][][]Point {
	polys := make([][][]Point, 0, len(outers))
	for _, o := range outers {
		polys = append(polys, [][]Point{o})
	}
	for _, hole := range inners {
		if len(hole) == 0 {
			continue
		}
		for i, poly := range polys {
			if ringContains(poly[0], hole[0]) {
				polys[i] = append(poly, hole)
				break
			}
		}
	}
	return polys
}

// ringContains tests point containment with a ray cast.
func ringContains(ring []Point, p Point) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Long < (b.Long-a.Long)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Long {
			inside = !inside
		}
		j = i
	}
	return inside
}
