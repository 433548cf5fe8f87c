// Package mapping configures how OSM tags are mapped onto the layer
// table columns. The default mapping follows the widely used GDAL/OGR
// osmconf conventions, so the resulting tables look the same as those
// produced by ogr2ogr.
package mapping

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/osmex/osmex/layer"
)

type Mapping struct {
	// Layers maps each layer name to the tag keys promoted to table
	// columns, in column order. All other tags end up in other_tags.
	Layers map[string][]string `yaml:"layers"`
	// AreaTags lists the keys that turn a closed way into a polygon
	// feature instead of a line.
	AreaTags []string `yaml:"area_tags"`
	// IgnoreTags lists keys that are dropped entirely, they neither
	// become columns nor other_tags entries.
	IgnoreTags []string `yaml:"ignore_tags"`

	areaTags   map[string]bool
	ignoreTags map[string]bool
}

// Load reads a mapping from a YAML file and validates it.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading mapping file")
	}
	m := &Mapping{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "parsing mapping file %s", path)
	}
	if err := m.check(); err != nil {
		return nil, errors.Wrapf(err, "invalid mapping file %s", path)
	}
	m.index()
	return m, nil
}

func (m *Mapping) check() error {
	if len(m.Layers) == 0 {
		return errors.New("no layers defined")
	}
	for name := range m.Layers {
		if !layer.Valid(name) {
			return errors.Errorf("unknown layer %q", name)
		}
	}
	return nil
}

func (m *Mapping) index() {
	m.areaTags = make(map[string]bool, len(m.AreaTags))
	for _, k := range m.AreaTags {
		m.areaTags[k] = true
	}
	m.ignoreTags = make(map[string]bool, len(m.IgnoreTags))
	for _, k := range m.IgnoreTags {
		m.ignoreTags[k] = true
	}
}

// Columns returns the column tag keys of a layer.
func (m *Mapping) Columns(layerName string) []string {
	return m.Layers[layerName]
}

// IsArea reports whether a closed way with these tags represents an
// area. area=yes/no overrides the key based rule.
func (m *Mapping) IsArea(tags map[string]string) bool {
	switch tags["area"] {
	case "yes":
		return true
	case "no":
		return false
	}
	for k := range tags {
		if m.areaTags[k] {
			return true
		}
	}
	return false
}

// Ignored reports whether a tag key is dropped entirely.
func (m *Mapping) Ignored(key string) bool {
	return m.ignoreTags[key]
}

// Split separates an element's tags into the column values of a layer
// and the leftover tags for other_tags.
func (m *Mapping) Split(layerName string, tags map[string]string) (columns map[string]string, other map[string]string) {
	columnKeys := make(map[string]bool, len(m.Layers[layerName]))
	for _, k := range m.Layers[layerName] {
		columnKeys[k] = true
	}
	columns = make(map[string]string, len(columnKeys))
	for k, v := range tags {
		if m.ignoreTags[k] {
			continue
		}
		if columnKeys[k] {
			columns[k] = v
			continue
		}
		if other == nil {
			other = make(map[string]string)
		}
		other[k] = v
	}
	return columns, other
}

const defaultYAML = `
layers:
  points:
    - name
    - barrier
    - highway
    - ref
    - address
    - is_in
    - place
    - man_made
  lines:
    - name
    - highway
    - waterway
    - aerialway
    - barrier
    - man_made
    - railway
  multilinestrings:
    - name
    - type
  multipolygons:
    - name
    - type
    - aeroway
    - amenity
    - admin_level
    - barrier
    - boundary
    - building
    - craft
    - geological
    - historic
    - land_area
    - landuse
    - leisure
    - man_made
    - military
    - natural
    - office
    - place
    - shop
    - sport
    - tourism
  other_relations:
    - name
    - type
area_tags:
  - aeroway
  - amenity
  - boundary
  - building
  - craft
  - geological
  - historic
  - landuse
  - leisure
  - military
  - natural
  - office
  - place
  - shop
  - sport
  - tourism
ignore_tags:
  - created_by
  - converted_by
  - source
  - time
  - ele
  - attribution
`

// Default returns the built-in OGR style mapping.
func Default() *Mapping {
	m := &Mapping{}
	if err := yaml.Unmarshal([]byte(defaultYAML), m); err != nil {
		panic(err)
	}
	m.index()
	return m
}
