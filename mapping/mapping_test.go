package mapping

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/osmex/osmex/layer"
)

func TestDefault(t *testing.T) {
	m := Default()
	for _, l := range layer.All {
		if len(m.Columns(l)) == 0 {
			t.Errorf("no columns for layer %s", l)
		}
	}
	if m.Columns(layer.Points)[0] != "name" {
		t.Errorf("first points column = %q", m.Columns(layer.Points)[0])
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yml")
	content := `
layers:
  points: [name, amenity]
  lines: [name, highway]
  multilinestrings: [name, type]
  multipolygons: [name, building]
  other_relations: [name, type]
area_tags: [building]
ignore_tags: [created_by]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Columns(layer.Points); !reflect.DeepEqual(got, []string{"name", "amenity"}) {
		t.Errorf("points columns = %v", got)
	}
	if !m.Ignored("created_by") {
		t.Error("created_by should be ignored")
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yml")

	if err := os.WriteFile(path, []byte("layers:\n  buildings: [name]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown layer")
	}

	if err := os.WriteFile(path, []byte("layers: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty mapping")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIsArea(t *testing.T) {
	m := Default()
	cases := []struct {
		tags map[string]string
		want bool
	}{
		{map[string]string{"building": "yes"}, true},
		{map[string]string{"landuse": "forest"}, true},
		{map[string]string{"highway": "residential"}, false},
		{map[string]string{"highway": "pedestrian", "area": "yes"}, true},
		{map[string]string{"building": "yes", "area": "no"}, false},
		{nil, false},
	}
	for _, c := range cases {
		if got := m.IsArea(c.tags); got != c.want {
			t.Errorf("IsArea(%v) = %v, want %v", c.tags, got, c.want)
		}
	}
}

func TestSplit(t *testing.T) {
	m := Default()
	tags := map[string]string{
		"name":       "The Green Man",
		"amenity":    "pub",
		"created_by": "JOSM",
		"wheelchair": "limited",
	}
	columns, other := m.Split(layer.Multipolygons, tags)
	if columns["name"] != "The Green Man" || columns["amenity"] != "pub" {
		t.Errorf("columns = %v", columns)
	}
	if _, ok := columns["wheelchair"]; ok {
		t.Error("wheelchair should not be a column")
	}
	if !reflect.DeepEqual(other, map[string]string{"wheelchair": "limited"}) {
		t.Errorf("other = %v", other)
	}

	columns, other = m.Split(layer.Points, map[string]string{"name": "x"})
	if other != nil {
		t.Errorf("other = %v, want nil", other)
	}
	if columns["name"] != "x" {
		t.Errorf("columns = %v", columns)
	}
}
