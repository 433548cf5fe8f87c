// Package cmd implements the osmex sub commands.
package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/osmex/osmex/config"
	"github.com/osmex/osmex/log"
	"github.com/osmex/osmex/mirror"
	"github.com/osmex/osmex/mirror/bbbike"
	"github.com/osmex/osmex/mirror/sources"
)

// Regions lists the catalogue of the configured download server, or
// the subregions (or files) of one region.
func Regions(args []string) {
	base := config.BaseOptions
	opts := config.RegionsOptions
	if base.Quiet {
		log.SetQuiet(true)
	}

	src, err := sources.Open(base.Source, base.CacheDir, base.UserAgent)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	var c *mirror.Catalogue
	if opts.Refresh {
		c, err = src.Refresh(ctx)
	} else {
		c, err = src.Catalogue(ctx)
	}
	if err != nil {
		log.Fatal(err)
	}

	if len(args) == 0 {
		for _, name := range c.Names() {
			fmt.Println(name)
		}
		return
	}

	name := args[0]
	if opts.Files {
		printFiles(ctx, src, c, name)
		return
	}

	subs, err := c.Subregions(name, opts.Deep)
	if err != nil {
		log.Fatal(err)
	}
	names := make([]string, len(subs))
	for i, r := range subs {
		names[i] = r.Name
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}

func printFiles(ctx context.Context, src mirror.Source, c *mirror.Catalogue, name string) {
	r, err := c.Match(name)
	if err != nil {
		log.Fatal(err)
	}

	// BBBike publishes sizes and update times on the download page
	if b, ok := src.(*bbbike.BBBike); ok {
		entries, err := b.DownloadPage(ctx, r)
		if err != nil {
			log.Fatal(err)
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%s\n", e.Filename, e.Size, e.LastUpdate)
		}
		return
	}

	formats := make([]string, 0, len(r.URLs))
	for format := range r.URLs {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		fmt.Printf("%s\t%s\n", r.Filename(format), r.URLs[format])
	}
}
