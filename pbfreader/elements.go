package pbfreader

import (
	osm "github.com/omniscale/go-osm"

	"github.com/osmex/osmex/cache"
	"github.com/osmex/osmex/geom"
	"github.com/osmex/osmex/layer"
)

func (p *pass) coords(batch []osm.Node) {
	if p.progress != nil {
		p.progress.AddCoords(len(batch))
	}
	if err := p.cache.Coords.PutCoords(batch); err != nil {
		p.fail(err)
	}
}

// nodes receives only tagged nodes; they become point features.
func (p *pass) nodes(batch []osm.Node) {
	if p.progress != nil {
		p.progress.AddNodes(len(batch))
	}
	for _, n := range batch {
		tags := p.cleanTags(n.Tags)
		if len(tags) == 0 {
			continue
		}
		wkt := geom.WKTPoint(geom.Point{Long: n.Long, Lat: n.Lat})
		p.add(layer.Points, p.feature(layer.Points, n.ID, wkt, tags))
	}
}

// ways become line or polygon features; their refs are kept in the
// cache for relation assembly.
func (p *pass) ways(batch []osm.Way) {
	if p.progress != nil {
		p.progress.AddWays(len(batch))
	}
	if err := p.cache.Ways.PutWays(batch); err != nil {
		p.fail(err)
		return
	}
	for _, w := range batch {
		tags := p.cleanTags(w.Tags)
		if len(tags) == 0 {
			continue
		}
		pts, ok := p.wayPoints(w.Refs)
		if !ok {
			p.mu.Lock()
			p.incompleteWays++
			p.mu.Unlock()
			continue
		}
		if w.IsClosed() && p.mapping.IsArea(tags) {
			wkt := geom.WKTMultiPolygon([][][]geom.Point{{pts}})
			p.add(layer.Multipolygons, p.feature(layer.Multipolygons, w.ID, wkt, tags))
			continue
		}
		p.add(layer.Lines, p.feature(layer.Lines, w.ID, geom.WKTLineString(pts), tags))
	}
}

func (p *pass) relations(batch []osm.Relation) {
	if p.progress != nil {
		p.progress.AddRelations(len(batch))
	}
	for _, r := range batch {
		tags := p.cleanTags(r.Tags)
		if len(tags) == 0 {
			continue
		}
		switch tags["type"] {
		case "multipolygon", "boundary":
			p.multipolygon(r, tags)
		case "route":
			p.route(r, tags)
		case "":
			// untyped relations carry no usable geometry semantics
		default:
			p.otherRelation(r, tags)
		}
	}
}

func (p *pass) multipolygon(r osm.Relation, tags map[string]string) {
	var outerLines, innerLines [][]geom.Point
	for _, m := range r.Members {
		if m.Type != osm.WayMember {
			continue
		}
		pts, ok := p.memberPoints(m.ID)
		if !ok {
			continue
		}
		if m.Role == "inner" {
			innerLines = append(innerLines, pts)
		} else {
			outerLines = append(outerLines, pts)
		}
	}
	outers, incomplete := geom.AssembleRings(outerLines)
	inners, _ := geom.AssembleRings(innerLines)
	if len(outers) == 0 {
		p.mu.Lock()
		p.incompleteRels++
		p.mu.Unlock()
		return
	}
	if len(incomplete) > 0 {
		p.mu.Lock()
		p.incompleteRels++
		p.mu.Unlock()
	}
	wkt := geom.WKTMultiPolygon(geom.Polygonize(outers, inners))
	p.add(layer.Multipolygons, p.feature(layer.Multipolygons, r.ID, wkt, tags))
}

func (p *pass) route(r osm.Relation, tags map[string]string) {
	var lines [][]geom.Point
	for _, m := range r.Members {
		if m.Type != osm.WayMember {
			continue
		}
		if pts, ok := p.memberPoints(m.ID); ok {
			lines = append(lines, pts)
		}
	}
	if len(lines) == 0 {
		p.mu.Lock()
		p.incompleteRels++
		p.mu.Unlock()
		return
	}
	wkt := geom.WKTMultiLineString(lines)
	p.add(layer.Multilinestrings, p.feature(layer.Multilinestrings, r.ID, wkt, tags))
}

// otherRelation collects member geometries into a geometry
// collection.
func (p *pass) otherRelation(r osm.Relation, tags map[string]string) {
	var members []string
	for _, m := range r.Members {
		switch m.Type {
		case osm.NodeMember:
			long, lat, err := p.cache.Coords.Coord(m.ID)
			if err != nil {
				continue
			}
			members = append(members, geom.WKTPoint(geom.Point{Long: long, Lat: lat}))
		case osm.WayMember:
			if pts, ok := p.memberPoints(m.ID); ok {
				members = append(members, geom.WKTLineString(pts))
			}
		}
	}
	if len(members) == 0 {
		p.mu.Lock()
		p.incompleteRels++
		p.mu.Unlock()
		return
	}
	wkt := geom.WKTGeometryCollection(members)
	p.add(layer.OtherRelations, p.feature(layer.OtherRelations, r.ID, wkt, tags))
}

// wayPoints resolves node refs to coordinates; false when any
// coordinate is missing from the extract.
func (p *pass) wayPoints(refs []int64) ([]geom.Point, bool) {
	if len(refs) < 2 {
		return nil, false
	}
	pts := make([]geom.Point, 0, len(refs))
	for _, ref := range refs {
		long, lat, err := p.cache.Coords.Coord(ref)
		if err == cache.ErrNotFound {
			return nil, false
		}
		if err != nil {
			p.fail(err)
			return nil, false
		}
		pts = append(pts, geom.Point{Long: long, Lat: lat})
	}
	return pts, true
}

func (p *pass) memberPoints(wayID int64) ([]geom.Point, bool) {
	refs, err := p.cache.Ways.Refs(wayID)
	if err != nil {
		return nil, false
	}
	return p.wayPoints(refs)
}

// cleanTags drops ignored keys like created_by.
func (p *pass) cleanTags(tags osm.Tags) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	clean := make(map[string]string, len(tags))
	for k, v := range tags {
		if p.mapping.Ignored(k) {
			continue
		}
		clean[k] = v
	}
	return clean
}
