package postgis

import (
	"fmt"
	"strings"

	"github.com/osmex/osmex/database"
	"github.com/osmex/osmex/layer"
)

type ColumnSpec struct {
	Name string
	Type string
}

func (col *ColumnSpec) AsSQL() string {
	return fmt.Sprintf("\"%s\" %s", col.Name, col.Type)
}

// TableSpec describes one layer table of a (sub)region: a serial id,
// the element ID, the WKT geometry, the mapped tag columns and
// other_tags.
type TableSpec struct {
	Name    string
	Schema  string
	Columns []ColumnSpec
}

func NewTableSpec(layerName, subregion string, tagColumns []string) *TableSpec {
	spec := &TableSpec{
		Name:   database.TableName(subregion),
		Schema: layerName,
	}
	spec.Columns = append(spec.Columns,
		ColumnSpec{"osm_id", "BIGINT"},
		ColumnSpec{"geometry", "TEXT"},
	)
	for _, c := range tagColumns {
		spec.Columns = append(spec.Columns, ColumnSpec{c, "TEXT"})
	}
	spec.Columns = append(spec.Columns, ColumnSpec{"other_tags", "TEXT"})
	return spec
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := []string{"id SERIAL PRIMARY KEY"}
	for _, col := range spec.Columns {
		cols = append(cols, col.AsSQL())
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s"."%s" (%s)`,
		spec.Schema,
		spec.Name,
		strings.Join(cols, ", "),
	)
}

func (spec *TableSpec) CopySQL() string {
	var cols []string
	for _, col := range spec.Columns {
		cols = append(cols, "\""+col.Name+"\"")
	}
	return fmt.Sprintf(`COPY "%s"."%s" (%s) FROM STDIN`,
		spec.Schema,
		spec.Name,
		strings.Join(cols, ", "),
	)
}

func (spec *TableSpec) InsertSQL() string {
	var cols []string
	var vars []string
	for i, col := range spec.Columns {
		cols = append(cols, "\""+col.Name+"\"")
		vars = append(vars, fmt.Sprintf("$%d", i+1))
	}
	return fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES (%s)`,
		spec.Schema,
		spec.Name,
		strings.Join(cols, ", "),
		strings.Join(vars, ", "),
	)
}

// Row converts a feature into the column value slice of this spec.
// Empty strings become NULL.
func (spec *TableSpec) Row(tagColumns []string, f *layer.Feature) []interface{} {
	row := make([]interface{}, 0, len(spec.Columns))
	row = append(row, f.OSMID, nullable(f.Geometry))
	for _, c := range tagColumns {
		row = append(row, nullable(f.Columns[c]))
	}
	row = append(row, nullable(f.OtherTags))
	return row
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
