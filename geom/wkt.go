// Package geom builds feature geometries from node coordinates and
// serializes them as WKT.
package geom

import (
	"strconv"
	"strings"
)

// Point is a longitude/latitude coordinate pair.
type Point struct {
	Long float64
	Lat  float64
}

func appendCoord(b *strings.Builder, p Point) {
	b.WriteString(strconv.FormatFloat(p.Long, 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
}

func appendRing(b *strings.Builder, pts []Point) {
	b.WriteByte('(')
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(',')
		}
		appendCoord(b, p)
	}
	b.WriteByte(')')
}

func WKTPoint(p Point) string {
	var b strings.Builder
	b.WriteString("POINT (")
	appendCoord(&b, p)
	b.WriteByte(')')
	return b.String()
}

func WKTLineString(pts []Point) string {
	var b strings.Builder
	b.WriteString("LINESTRING ")
	appendRing(&b, pts)
	return b.String()
}

// WKTPolygon serializes a polygon; the first ring is the shell, the
// rest are holes.
func WKTPolygon(rings [][]Point) string {
	var b strings.Builder
	b.WriteString("POLYGON (")
	for i, ring := range rings {
		if i > 0 {
			b.WriteByte(',')
		}
		appendRing(&b, ring)
	}
	b.WriteByte(')')
	return b.String()
}

func WKTMultiLineString(lines [][]Point) string {
	var b strings.Builder
	b.WriteString("MULTILINESTRING (")
	for i, line := range lines {
		if i > 0 {
			b.WriteByte(',')
		}
		appendRing(&b, line)
	}
	b.WriteByte(')')
	return b.String()
}

func WKTMultiPolygon(polys [][][]Point) string {
	var b strings.Builder
	b.WriteString("MULTIPOLYGON (")
	for i, rings := range polys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for j, ring := range rings {
			if j > 0 {
				b.WriteByte(',')
			}
			appendRing(&b, ring)
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

// WKTGeometryCollection wraps already serialized member geometries.
func WKTGeometryCollection(members []string) string {
	return "GEOMETRYCOLLECTION (" + strings.Join(members, ",") + ")"
}
