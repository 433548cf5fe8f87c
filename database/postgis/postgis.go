// Package postgis stores layer tables in PostgreSQL. Layers become
// schemas, (sub)regions tables; geometries are kept as WKT text.
package postgis

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/osmex/osmex/database"
	"github.com/osmex/osmex/layer"
	"github.com/osmex/osmex/log"
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

type PostGIS struct {
	Db     *sql.DB
	Params string
}

func init() {
	database.Register("postgis", New)
}

func New(conf database.Config) (database.DB, error) {
	params := strings.Replace(conf.ConnectionParams, "postgis://", "postgres://", 1)
	db, err := sql.Open("postgres", params)
	if err != nil {
		return nil, err
	}
	return &PostGIS{Db: db, Params: params}, nil
}

// Init creates one schema per layer.
func (pg *PostGIS) Init() error {
	for _, l := range layer.All {
		if err := pg.createSchema(l); err != nil {
			return err
		}
	}
	return nil
}

func (pg *PostGIS) Close() error {
	return pg.Db.Close()
}

func (pg *PostGIS) createSchema(schema string) error {
	if schema == "public" {
		return nil
	}
	var exists bool
	stmt := fmt.Sprintf(
		"SELECT EXISTS(SELECT schema_name FROM information_schema.schemata WHERE schema_name = '%s');",
		schema)
	if err := pg.Db.QueryRow(stmt).Scan(&exists); err != nil {
		return &SQLError{stmt, err}
	}
	if exists {
		return nil
	}
	stmt = fmt.Sprintf(`CREATE SCHEMA "%s"`, schema)
	if _, err := pg.Db.Exec(stmt); err != nil {
		return &SQLError{stmt, err}
	}
	return nil
}

// TableExists reports whether the table of a (sub)region is present.
func (pg *PostGIS) TableExists(layerName, subregion string) (bool, error) {
	table := database.TableName(subregion)
	var exists bool
	stmt := fmt.Sprintf(
		`SELECT EXISTS(SELECT * FROM information_schema.tables WHERE table_name='%s' AND table_schema='%s')`,
		table, layerName)
	if err := pg.Db.QueryRow(stmt).Scan(&exists); err != nil {
		return false, &SQLError{stmt, err}
	}
	return exists, nil
}

// ListTables lists the (sub)region tables of a layer, sorted.
func (pg *PostGIS) ListTables(layerName string) ([]string, error) {
	stmt := fmt.Sprintf(
		`SELECT table_name FROM information_schema.tables WHERE table_schema='%s' ORDER BY table_name`,
		layerName)
	rows, err := pg.Db.Query(stmt)
	if err != nil {
		return nil, &SQLError{stmt, err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// DropTable removes the table of a (sub)region from a layer schema.
func (pg *PostGIS) DropTable(layerName, subregion string) error {
	table := database.TableName(subregion)
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS "%s"."%s"`, layerName, table)
	if _, err := pg.Db.Exec(stmt); err != nil {
		return &SQLError{stmt, err}
	}
	log.Printf("dropped %s.%s", layerName, table)
	return nil
}

// ImportTable bulk imports one layer table via COPY FROM STDIN.
func (pg *PostGIS) ImportTable(subregion string, t *layer.Table, mode database.IfExists) error {
	if err := pg.createSchema(t.Layer); err != nil {
		return err
	}
	spec := NewTableSpec(t.Layer, subregion, t.Columns)

	exists, err := pg.TableExists(t.Layer, subregion)
	if err != nil {
		return err
	}
	if exists {
		switch mode {
		case database.Fail:
			return errors.Wrapf(database.ErrTableExists, "%s.%s", spec.Schema, spec.Name)
		case database.Replace:
			if err := pg.DropTable(t.Layer, subregion); err != nil {
				return err
			}
		}
	}

	tx, err := NewTableTx(pg, spec)
	if err != nil {
		return err
	}
	for i := range t.Features {
		if err := tx.Insert(spec.Row(t.Columns, &t.Features[i])); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("imported %d rows into %s.%s", len(t.Features), spec.Schema, spec.Name)
	return nil
}

// FetchTable reads a layer table of a (sub)region back. NULL values
// come back as empty strings.
func (pg *PostGIS) FetchTable(layerName, subregion string) (*layer.Table, error) {
	table := database.TableName(subregion)
	columns, err := pg.columnNames(layerName, table)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		return nil, errors.Errorf("table %s.%s does not exist", layerName, table)
	}

	var tagColumns []string
	for _, c := range columns {
		if c != "id" && c != "osm_id" && c != "geometry" && c != "other_tags" {
			tagColumns = append(tagColumns, c)
		}
	}

	quoted := make([]string, 0, len(tagColumns)+3)
	quoted = append(quoted, `"osm_id"`, `"geometry"`)
	for _, c := range tagColumns {
		quoted = append(quoted, `"`+c+`"`)
	}
	quoted = append(quoted, `"other_tags"`)
	stmt := fmt.Sprintf(`SELECT %s FROM "%s"."%s" ORDER BY "id"`,
		strings.Join(quoted, ", "), layerName, table)

	rows, err := pg.Db.Query(stmt)
	if err != nil {
		return nil, &SQLError{stmt, err}
	}
	defer rows.Close()

	t := layer.NewTable(layerName, tagColumns)
	for rows.Next() {
		var osmID int64
		values := make([]sql.NullString, len(tagColumns)+2)
		dest := make([]interface{}, 0, len(values)+1)
		dest = append(dest, &osmID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		t.Add(featureFromRow(osmID, values, tagColumns))
	}
	return t, rows.Err()
}

// featureFromRow converts one scanned row back into a feature. The
// values are geometry, the tag columns and other_tags, in select
// order; NULL values become empty strings.
func featureFromRow(osmID int64, values []sql.NullString, tagColumns []string) layer.Feature {
	f := layer.Feature{
		OSMID:    osmID,
		Geometry: values[0].String,
		Columns:  make(map[string]string, len(tagColumns)),
	}
	for i, c := range tagColumns {
		f.Columns[c] = values[i+1].String
	}
	f.OtherTags = values[len(values)-1].String
	return f
}

// columnNames returns the columns of a table in definition order, or
// nil when the table does not exist.
func (pg *PostGIS) columnNames(schema, table string) ([]string, error) {
	stmt := fmt.Sprintf(
		`SELECT column_name FROM information_schema.columns WHERE table_schema='%s' AND table_name='%s' ORDER BY ordinal_position`,
		schema, table)
	rows, err := pg.Db.Query(stmt)
	if err != nil {
		return nil, &SQLError{stmt, err}
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
