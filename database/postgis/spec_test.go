package postgis

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/osmex/osmex/layer"
)

func testSpec() *TableSpec {
	return NewTableSpec("points", "Greater London", []string{"name", "highway"})
}

func TestCreateTableSQL(t *testing.T) {
	got := testSpec().CreateTableSQL()
	want := `CREATE TABLE IF NOT EXISTS "points"."greater_london" (` +
		`id SERIAL PRIMARY KEY, "osm_id" BIGINT, "geometry" TEXT, ` +
		`"name" TEXT, "highway" TEXT, "other_tags" TEXT)`
	if got != want {
		t.Errorf("CreateTableSQL:\n%s\nwant:\n%s", got, want)
	}
}

func TestCopySQL(t *testing.T) {
	got := testSpec().CopySQL()
	want := `COPY "points"."greater_london" ("osm_id", "geometry", "name", "highway", "other_tags") FROM STDIN`
	if got != want {
		t.Errorf("CopySQL:\n%s\nwant:\n%s", got, want)
	}
}

func TestInsertSQL(t *testing.T) {
	got := testSpec().InsertSQL()
	want := `INSERT INTO "points"."greater_london" ("osm_id", "geometry", "name", "highway", "other_tags") VALUES ($1, $2, $3, $4, $5)`
	if got != want {
		t.Errorf("InsertSQL:\n%s\nwant:\n%s", got, want)
	}
}

func TestRowNullsEmptyValues(t *testing.T) {
	spec := testSpec()
	f := layer.Feature{
		OSMID:    42,
		Geometry: "POINT (0 0)",
		Columns:  map[string]string{"name": "High Street"},
	}
	got := spec.Row([]string{"name", "highway"}, &f)
	want := []interface{}{int64(42), "POINT (0 0)", "High Street", nil, nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row = %#v, want %#v", got, want)
	}
}

// NULL columns must come back as empty strings, so that a stored
// feature with empty values round-trips unchanged.
func TestFeatureFromRowNullsToEmpty(t *testing.T) {
	tagColumns := []string{"name", "highway"}
	values := []sql.NullString{
		{String: "POINT (0 0)", Valid: true}, // geometry
		{String: "High Street", Valid: true}, // name
		{Valid: false},                       // highway is NULL
		{Valid: false},                       // other_tags is NULL
	}
	f := featureFromRow(42, values, tagColumns)

	if f.OSMID != 42 {
		t.Errorf("osm_id = %d", f.OSMID)
	}
	if f.Geometry != "POINT (0 0)" {
		t.Errorf("geometry = %q", f.Geometry)
	}
	if f.Columns["name"] != "High Street" {
		t.Errorf("name = %q", f.Columns["name"])
	}
	if got, ok := f.Columns["highway"]; !ok || got != "" {
		t.Errorf("highway = %q, %v, want empty string", got, ok)
	}
	if f.OtherTags != "" {
		t.Errorf("other_tags = %q, want empty string", f.OtherTags)
	}

	row := testSpec().Row(tagColumns, &f)
	want := []interface{}{int64(42), "POINT (0 0)", "High Street", nil, nil}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("round-tripped Row = %#v, want %#v", row, want)
	}
}
