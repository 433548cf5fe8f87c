// Package import_ provides the import sub command: download (when
// needed), read and bulk load extracts into the database.
package import_

import (
	"context"
	"os"
	"strings"

	"github.com/osmex/osmex/config"
	"github.com/osmex/osmex/database"
	_ "github.com/osmex/osmex/database/postgis"
	"github.com/osmex/osmex/download"
	"github.com/osmex/osmex/layer"
	"github.com/osmex/osmex/log"
	"github.com/osmex/osmex/mapping"
	"github.com/osmex/osmex/mirror"
	"github.com/osmex/osmex/mirror/sources"
	"github.com/osmex/osmex/pbfreader"
	"github.com/osmex/osmex/shp"
	"github.com/osmex/osmex/stats"
)

// Import runs the import pipeline for each argument, a region name or
// a local file path.
func Import(args []string) {
	base := config.BaseOptions
	opts := config.ImportOptions
	if base.Quiet {
		log.SetQuiet(true)
	}
	if base.Connection == "" {
		log.Fatal("missing -connection")
	}

	tagMapping, err := loadMapping(base.MappingFile)
	if err != nil {
		log.Fatal(err)
	}
	layers := splitLayers(opts.Layers)
	mode, err := database.ParseIfExists(opts.IfExists)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(database.Config{ConnectionParams: base.Connection})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for _, arg := range args {
		if err := importOne(ctx, db, tagMapping, layers, mode, arg); err != nil {
			log.Fatal(err)
		}
	}
}

func importOne(ctx context.Context, db database.DB, tagMapping *mapping.Mapping,
	layers []string, mode database.IfExists, arg string) error {

	base := config.BaseOptions
	opts := config.ImportOptions

	paths := []string{arg}
	if _, err := os.Stat(arg); err != nil {
		// not a local file: resolve against the download server
		src, err := sources.Open(base.Source, base.CacheDir, base.UserAgent)
		if err != nil {
			return err
		}
		d := download.New(src, base.DataDir)
		d.UserAgent = base.UserAgent
		d.Update = opts.Update
		if !base.Yes {
			d.Confirm = download.NewPrompter(os.Stdin, os.Stdout).Confirm
		}
		c, err := src.Catalogue(ctx)
		if err != nil {
			return err
		}
		r, err := c.Match(arg)
		if err != nil {
			return err
		}

		format, err := mirror.MatchFormat(opts.Format, src.Formats())
		if err != nil {
			return err
		}
		paths, err = d.Get(ctx, r.Name, format)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			// declined
			return nil
		}
	}
	return importPaths(ctx, db, tagMapping, layers, mode, paths)
}

// importPaths imports each file as its own (sub)region. A download
// may return several files when a region's format is only offered
// for its subregions.
func importPaths(ctx context.Context, db database.DB, tagMapping *mapping.Mapping,
	layers []string, mode database.IfExists, paths []string) error {

	for _, path := range paths {
		if err := importFile(ctx, db, tagMapping, layers, mode, path); err != nil {
			return err
		}
	}
	return nil
}

func importFile(ctx context.Context, db database.DB, tagMapping *mapping.Mapping,
	layers []string, mode database.IfExists, path string) error {

	opts := config.ImportOptions
	subregion := subregionName(path)

	var tables map[string]*layer.Table
	if strings.HasSuffix(path, ".shp.zip") || strings.HasSuffix(path, ".shp") {
		t, err := readShapefiles(path, layers)
		if err != nil {
			return err
		}
		tables = t
	} else {
		progress := stats.NewReporter()
		rd := pbfreader.Reader{
			Mapping:  tagMapping,
			CacheDir: opts.CacheDir,
			Progress: progress,
		}
		result, err := rd.Read(ctx, path)
		progress.Stop()
		if err != nil {
			return err
		}
		tables = result.Tables
		tables = filterLayers(tables, layers)
	}

	done := log.Step("Importing " + subregion)
	defer done()
	for _, t := range tables {
		if err := db.ImportTable(subregion, t, mode); err != nil {
			return err
		}
	}
	return nil
}

func readShapefiles(path string, layers []string) (map[string]*layer.Table, error) {
	if strings.HasSuffix(path, ".shp") {
		t, err := shp.Read(path)
		if err != nil {
			return nil, err
		}
		return map[string]*layer.Table{t.Layer: t}, nil
	}
	return shp.ReadZip(path, layers)
}

func loadMapping(path string) (*mapping.Mapping, error) {
	if path == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(path)
}

// splitLayers parses the -layers flag; nil means all layers.
func splitLayers(s string) []string {
	if s == "" {
		return nil
	}
	layers := strings.Split(s, ",")
	for i, l := range layers {
		layers[i] = strings.TrimSpace(l)
	}
	return layers
}

func filterLayers(tables map[string]*layer.Table, layers []string) map[string]*layer.Table {
	if layers == nil {
		return tables
	}
	filtered := make(map[string]*layer.Table, len(layers))
	for _, l := range layers {
		if t, ok := tables[l]; ok {
			filtered[l] = t
		}
	}
	return filtered
}

// subregionName derives a table name from a local file path:
// rutland-latest.osm.pbf imports as "rutland".
func subregionName(path string) string {
	name := path
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "-free")
	name = strings.TrimSuffix(name, "-latest")
	return name
}
