package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/osmex/osmex/config"
	"github.com/osmex/osmex/database"
	_ "github.com/osmex/osmex/database/postgis"
	"github.com/osmex/osmex/download"
	"github.com/osmex/osmex/layer"
	"github.com/osmex/osmex/log"
)

func openDB() database.DB {
	if config.BaseOptions.Connection == "" {
		log.Fatal("missing -connection")
	}
	db, err := database.Open(database.Config{ConnectionParams: config.BaseOptions.Connection})
	if err != nil {
		log.Fatal(err)
	}
	return db
}

// checkLayers rejects unknown layer names before they reach SQL
// identifier positions.
func checkLayers(layers []string) error {
	for _, l := range layers {
		if !layer.Valid(l) {
			return errors.Errorf("unknown layer %q (valid: %s)",
				l, strings.Join(layer.All, ", "))
		}
	}
	return nil
}

// Fetch reads the layer tables of a region back and writes them as
// CSV to stdout, or to a file with -output.
func Fetch(args []string) {
	if config.BaseOptions.Quiet {
		log.SetQuiet(true)
	}

	layers := layer.All
	if config.FetchOptions.Layer != "" {
		layers = []string{config.FetchOptions.Layer}
	}
	if err := checkLayers(layers); err != nil {
		log.Fatal(err)
	}

	out := io.Writer(os.Stdout)
	if config.FetchOptions.Output != "" {
		f, err := os.Create(config.FetchOptions.Output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	db := openDB()
	defer db.Close()

	for _, subregion := range args {
		for _, l := range layers {
			exists, err := db.TableExists(l, subregion)
			if err != nil {
				log.Fatal(err)
			}
			if !exists {
				log.Warnf("no %s table for %s", l, subregion)
				continue
			}
			t, err := db.FetchTable(l, subregion)
			if err != nil {
				log.Fatal(err)
			}
			if err := writeCSV(out, t); err != nil {
				log.Fatal(err)
			}
		}
	}
}

func writeCSV(out io.Writer, t *layer.Table) error {
	w := csv.NewWriter(out)
	header := append([]string{"layer", "osm_id", "geometry"}, t.Columns...)
	header = append(header, "other_tags")
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range t.Features {
		feat := &t.Features[i]
		row := make([]string, 0, len(header))
		row = append(row, t.Layer, fmt.Sprintf("%d", feat.OSMID), feat.Geometry)
		for _, c := range t.Columns {
			row = append(row, feat.Columns[c])
		}
		row = append(row, feat.OtherTags)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Drop removes the layer tables of one or more regions.
func Drop(args []string) {
	base := config.BaseOptions
	if base.Quiet {
		log.SetQuiet(true)
	}

	layers := layer.All
	if config.DropOptions.Layers != "" {
		layers = strings.Split(config.DropOptions.Layers, ",")
		for i, l := range layers {
			layers[i] = strings.TrimSpace(l)
		}
	}
	if err := checkLayers(layers); err != nil {
		log.Fatal(err)
	}

	db := openDB()
	defer db.Close()

	if !base.Yes {
		msg := fmt.Sprintf("To drop the %s table(s) of:\n\t%s\n",
			strings.Join(layers, ", "), strings.Join(args, "\n\t"))
		if !download.NewPrompter(os.Stdin, os.Stdout).Confirm(msg) {
			return
		}
	}

	for _, subregion := range args {
		for _, l := range layers {
			if err := db.DropTable(l, subregion); err != nil {
				log.Fatal(err)
			}
		}
	}
}

// Tables lists the imported tables per layer schema.
func Tables() {
	if config.BaseOptions.Quiet {
		log.SetQuiet(true)
	}

	layers := layer.All
	if config.TablesOptions.Layer != "" {
		layers = []string{config.TablesOptions.Layer}
	}
	if err := checkLayers(layers); err != nil {
		log.Fatal(err)
	}

	db := openDB()
	defer db.Close()

	for _, l := range layers {
		tables, err := db.ListTables(l)
		if err != nil {
			log.Fatal(err)
		}
		for _, table := range tables {
			fmt.Printf("%s.%s\n", l, table)
		}
	}
}
