package pbfreader

import (
	"strings"
	"testing"

	osm "github.com/omniscale/go-osm"

	"github.com/osmex/osmex/cache"
	"github.com/osmex/osmex/layer"
	"github.com/osmex/osmex/mapping"
)

func testPass(t *testing.T) *pass {
	t.Helper()
	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return newPass(mapping.Default(), c)
}

func node(id int64, long, lat float64, tags map[string]string) osm.Node {
	return osm.Node{Element: osm.Element{ID: id, Tags: tags}, Long: long, Lat: lat}
}

func way(id int64, refs []int64, tags map[string]string) osm.Way {
	return osm.Way{Element: osm.Element{ID: id, Tags: tags}, Refs: refs}
}

func TestTaggedNodesBecomePoints(t *testing.T) {
	p := testPass(t)
	p.nodes([]osm.Node{
		node(1, -0.1275, 51.5072, map[string]string{"amenity": "pub", "name": "The Ship"}),
		node(2, 0, 0, map[string]string{"created_by": "JOSM"}), // only ignored tags
	})

	points := p.tables[layer.Points]
	if len(points.Features) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points.Features))
	}
	f := points.Features[0]
	if f.OSMID != 1 {
		t.Errorf("osm_id = %d", f.OSMID)
	}
	if f.Geometry != "POINT (-0.1275 51.5072)" {
		t.Errorf("geometry = %q", f.Geometry)
	}
	if f.Columns["name"] != "The Ship" {
		t.Errorf("name column = %q", f.Columns["name"])
	}
	if !strings.Contains(f.OtherTags, `"amenity"=>"pub"`) {
		t.Errorf("other_tags = %q", f.OtherTags)
	}
}

func TestWaysBecomeLines(t *testing.T) {
	p := testPass(t)
	p.coords([]osm.Node{
		node(1, 0, 0, nil), node(2, 1, 0, nil), node(3, 1, 1, nil),
	})
	p.ways([]osm.Way{
		way(10, []int64{1, 2, 3}, map[string]string{"highway": "residential", "name": "Mill Lane"}),
	})

	lines := p.tables[layer.Lines]
	if len(lines.Features) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines.Features))
	}
	f := lines.Features[0]
	if f.Geometry != "LINESTRING (0 0,1 0,1 1)" {
		t.Errorf("geometry = %q", f.Geometry)
	}
	if f.Columns["highway"] != "residential" {
		t.Errorf("highway column = %q", f.Columns["highway"])
	}
}

func TestClosedAreaWaysBecomeMultipolygons(t *testing.T) {
	p := testPass(t)
	p.coords([]osm.Node{
		node(1, 0, 0, nil), node(2, 1, 0, nil), node(3, 1, 1, nil), node(4, 0, 1, nil),
	})
	p.ways([]osm.Way{
		way(10, []int64{1, 2, 3, 4, 1}, map[string]string{"building": "yes"}),
		// closed but not an area: roundabouts stay lines
		way(11, []int64{1, 2, 3, 4, 1}, map[string]string{"highway": "primary", "junction": "roundabout"}),
	})

	if n := len(p.tables[layer.Multipolygons].Features); n != 1 {
		t.Fatalf("expected 1 multipolygon, got %d", n)
	}
	f := p.tables[layer.Multipolygons].Features[0]
	if f.Geometry != "MULTIPOLYGON (((0 0,1 0,1 1,0 1,0 0)))" {
		t.Errorf("geometry = %q", f.Geometry)
	}
	if n := len(p.tables[layer.Lines].Features); n != 1 {
		t.Fatalf("expected 1 line, got %d", n)
	}
}

func TestIncompleteWaysAreDropped(t *testing.T) {
	p := testPass(t)
	p.coords([]osm.Node{node(1, 0, 0, nil)})
	p.ways([]osm.Way{
		way(10, []int64{1, 99}, map[string]string{"highway": "residential"}),
	})

	if n := len(p.tables[layer.Lines].Features); n != 0 {
		t.Fatalf("expected no lines, got %d", n)
	}
	if p.incompleteWays != 1 {
		t.Errorf("incompleteWays = %d", p.incompleteWays)
	}
}

func TestMultipolygonRelation(t *testing.T) {
	p := testPass(t)
	p.coords([]osm.Node{
		node(1, 0, 0, nil), node(2, 4, 0, nil), node(3, 4, 4, nil), node(4, 0, 4, nil),
		node(5, 1, 1, nil), node(6, 2, 1, nil), node(7, 2, 2, nil), node(8, 1, 2, nil),
	})
	p.ways([]osm.Way{
		// outer ring split into two untagged ways
		way(10, []int64{1, 2, 3}, nil),
		way(11, []int64{3, 4, 1}, nil),
		way(12, []int64{5, 6, 7, 8, 5}, nil),
	})
	p.relations([]osm.Relation{{
		Element: osm.Element{ID: 100, Tags: map[string]string{"type": "multipolygon", "landuse": "forest"}},
		Members: []osm.Member{
			{ID: 10, Type: osm.WayMember, Role: "outer"},
			{ID: 11, Type: osm.WayMember, Role: "outer"},
			{ID: 12, Type: osm.WayMember, Role: "inner"},
		},
	}})

	mp := p.tables[layer.Multipolygons]
	if len(mp.Features) != 1 {
		t.Fatalf("expected 1 multipolygon, got %d", len(mp.Features))
	}
	f := mp.Features[0]
	if f.OSMID != 100 {
		t.Errorf("osm_id = %d", f.OSMID)
	}
	if !strings.HasPrefix(f.Geometry, "MULTIPOLYGON ((") {
		t.Errorf("geometry = %q", f.Geometry)
	}
	// shell plus hole
	if got := strings.Count(f.Geometry, "("); got != 4 {
		t.Errorf("expected shell and hole in %q", f.Geometry)
	}
	if f.Columns["landuse"] != "forest" {
		t.Errorf("landuse column = %q", f.Columns["landuse"])
	}
	// untagged member ways produce no line features
	if n := len(p.tables[layer.Lines].Features); n != 0 {
		t.Errorf("expected no lines, got %d", n)
	}
}

func TestRouteRelation(t *testing.T) {
	p := testPass(t)
	p.coords([]osm.Node{
		node(1, 0, 0, nil), node(2, 1, 0, nil), node(3, 2, 0, nil),
	})
	p.ways([]osm.Way{
		way(10, []int64{1, 2}, nil),
		way(11, []int64{2, 3}, nil),
	})
	p.relations([]osm.Relation{{
		Element: osm.Element{ID: 100, Tags: map[string]string{"type": "route", "route": "bus", "ref": "12"}},
		Members: []osm.Member{
			{ID: 10, Type: osm.WayMember},
			{ID: 11, Type: osm.WayMember},
		},
	}})

	mls := p.tables[layer.Multilinestrings]
	if len(mls.Features) != 1 {
		t.Fatalf("expected 1 multilinestring, got %d", len(mls.Features))
	}
	if mls.Features[0].Geometry != "MULTILINESTRING ((0 0,1 0),(1 0,2 0))" {
		t.Errorf("geometry = %q", mls.Features[0].Geometry)
	}
}

func TestOtherRelation(t *testing.T) {
	p := testPass(t)
	p.coords([]osm.Node{
		node(1, 0, 0, nil), node(2, 1, 0, nil),
	})
	p.ways([]osm.Way{way(10, []int64{1, 2}, nil)})
	p.relations([]osm.Relation{
		{
			Element: osm.Element{ID: 100, Tags: map[string]string{"type": "site", "name": "Depot"}},
			Members: []osm.Member{
				{ID: 1, Type: osm.NodeMember},
				{ID: 10, Type: osm.WayMember},
			},
		},
		// untyped relations are skipped
		{
			Element: osm.Element{ID: 101, Tags: map[string]string{"name": "x"}},
			Members: []osm.Member{{ID: 1, Type: osm.NodeMember}},
		},
	})

	or := p.tables[layer.OtherRelations]
	if len(or.Features) != 1 {
		t.Fatalf("expected 1 other_relation, got %d", len(or.Features))
	}
	f := or.Features[0]
	if f.Geometry != "GEOMETRYCOLLECTION (POINT (0 0),LINESTRING (0 0,1 0))" {
		t.Errorf("geometry = %q", f.Geometry)
	}
	if f.Columns["type"] != "site" {
		t.Errorf("type column = %q", f.Columns["type"])
	}
}
