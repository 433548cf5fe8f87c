// Package layer defines the tabular form OSM extracts are converted
// to: one table per layer, following the common five layer convention
// of points, lines, multilinestrings, multipolygons and
// other_relations.
package layer

import (
	"sort"
	"strings"
)

const (
	Points           = "points"
	Lines            = "lines"
	Multilinestrings = "multilinestrings"
	Multipolygons    = "multipolygons"
	OtherRelations   = "other_relations"
)

// All lists the layers in their conventional order.
var All = []string{Points, Lines, Multilinestrings, Multipolygons, OtherRelations}

// Valid reports whether name is a known layer name.
func Valid(name string) bool {
	for _, l := range All {
		if l == name {
			return true
		}
	}
	return false
}

// Feature is one row of a layer table.
type Feature struct {
	// OSMID is the ID of the originating element. Relation derived
	// features keep their relation ID.
	OSMID int64
	// Geometry is the feature geometry in WKT.
	Geometry string
	// Columns holds the values of the mapped tag columns; tags the
	// element does not carry are empty strings.
	Columns map[string]string
	// OtherTags holds all remaining tags in hstore notation:
	// "horse"=>"yes","motorcar"=>"no"
	OtherTags string
}

// Table is one layer of a parsed extract.
type Table struct {
	Layer string
	// Columns are the mapped tag column names, in mapping order.
	Columns  []string
	Features []Feature
}

func NewTable(layer string, columns []string) *Table {
	return &Table{Layer: layer, Columns: append([]string(nil), columns...)}
}

func (t *Table) Add(f Feature) {
	t.Features = append(t.Features, f)
}

// EncodeOtherTags encodes unmapped tags in hstore notation, with keys
// sorted for stable output. It returns "" for no tags.
func EncodeOtherTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeHstoreString(&b, k)
		b.WriteString("=>")
		writeHstoreString(&b, tags[k])
	}
	return b.String()
}

// DecodeOtherTags parses the hstore notation produced by
// EncodeOtherTags back into a tag map.
func DecodeOtherTags(s string) map[string]string {
	if s == "" {
		return nil
	}
	tags := make(map[string]string)
	for i := 0; i < len(s); {
		key, next, ok := readHstoreString(s, i)
		if !ok {
			break
		}
		i = next
		if !strings.HasPrefix(s[i:], "=>") {
			break
		}
		i += 2
		value, next, ok := readHstoreString(s, i)
		if !ok {
			break
		}
		i = next
		tags[key] = value
		if i < len(s) && s[i] == ',' {
			i++
		}
	}
	return tags
}

func writeHstoreString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
}

func readHstoreString(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '"' {
		return "", i, false
	}
	i++
	var b strings.Builder
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
				i += 2
				continue
			}
			return "", i, false
		case '"':
			return b.String(), i + 1, true
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return "", i, false
}
