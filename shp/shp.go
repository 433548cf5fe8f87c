// Package shp reads OSM shapefile extracts (the .shp.zip downloads)
// into tables. Each shapefile in an archive is one layer, named after
// the file: gis_osm_railways_free_1.shp holds the railways layer.
package shp

import (
	"path/filepath"
	"strconv"
	"strings"

	goshp "github.com/jonas-p/go-shp"
	"github.com/pkg/errors"

	"github.com/osmex/osmex/geom"
	"github.com/osmex/osmex/layer"
)

// LayerName derives the layer name from a shapefile name. The area
// variants (gis_osm_landuse_a_free_1) report area true.
func LayerName(filename string) (name string, area bool) {
	name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	// Geofabrik uses gis_osm_<layer>_(a_)free_1, older extracts
	// gis.osm_<layer>...
	name = strings.TrimPrefix(name, "gis_osm_")
	name = strings.TrimPrefix(name, "gis.osm_")
	if i := strings.Index(name, "_a_free"); i >= 0 {
		return name[:i], true
	}
	if i := strings.Index(name, "_free"); i >= 0 {
		return name[:i], false
	}
	return name, false
}

// Read reads one shapefile into a table. The dbf attributes become
// columns; an osm_id attribute is promoted to the feature ID.
func Read(path string) (*layer.Table, error) {
	r, err := goshp.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening shapefile %s", path)
	}
	defer r.Close()

	name, _ := LayerName(path)
	fields := r.Fields()
	columns := make([]string, 0, len(fields))
	osmIDField := -1
	for i, f := range fields {
		fname := strings.ToLower(f.String())
		if fname == "osm_id" {
			osmIDField = i
			continue
		}
		columns = append(columns, fname)
	}

	t := layer.NewTable(name, columns)
	for row := 0; r.Next(); row++ {
		_, shape := r.Shape()
		wkt, err := shapeWKT(shape)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s row %d", path, row)
		}

		f := layer.Feature{Geometry: wkt, Columns: make(map[string]string, len(columns))}
		for i, field := range fields {
			value := r.ReadAttribute(row, i)
			if i == osmIDField {
				f.OSMID, _ = strconv.ParseInt(value, 10, 64)
				continue
			}
			f.Columns[strings.ToLower(field.String())] = value
		}
		t.Add(f)
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading shapefile %s", path)
	}
	return t, nil
}

func shapeWKT(shape goshp.Shape) (string, error) {
	switch s := shape.(type) {
	case *goshp.Point:
		return geom.WKTPoint(geom.Point{Long: s.X, Lat: s.Y}), nil
	case *goshp.PointZ:
		return geom.WKTPoint(geom.Point{Long: s.X, Lat: s.Y}), nil
	case *goshp.PolyLine:
		parts := splitParts(s.Parts, s.Points)
		if len(parts) == 1 {
			return geom.WKTLineString(parts[0]), nil
		}
		return geom.WKTMultiLineString(parts), nil
	case *goshp.Polygon:
		parts := splitParts(s.Parts, s.Points)
		return geom.WKTPolygon(parts), nil
	case *goshp.Null:
		return "", nil
	}
	return "", errors.Errorf("unsupported shape type %T", shape)
}

// splitParts cuts the flat point list at the part offsets.
func splitParts(offsets []int32, points []goshp.Point) [][]geom.Point {
	if len(offsets) == 0 {
		offsets = []int32{0}
	}
	parts := make([][]geom.Point, 0, len(offsets))
	for i, start := range offsets {
		end := len(points)
		if i+1 < len(offsets) {
			end = int(offsets[i+1])
		}
		part := make([]geom.Point, 0, end-int(start))
		for _, p := range points[start:end] {
			part = append(part, geom.Point{Long: p.X, Lat: p.Y})
		}
		parts = append(parts, part)
	}
	return parts
}
