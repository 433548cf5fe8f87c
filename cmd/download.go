package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/osmex/osmex/config"
	"github.com/osmex/osmex/download"
	"github.com/osmex/osmex/log"
	"github.com/osmex/osmex/mirror/sources"
	"github.com/osmex/osmex/shp"
)

// Download fetches the extracts of one or more regions.
func Download(args []string) {
	base := config.BaseOptions
	opts := config.DownloadOptions
	if base.Quiet {
		log.SetQuiet(true)
	}

	src, err := sources.Open(base.Source, base.CacheDir, base.UserAgent)
	if err != nil {
		log.Fatal(err)
	}
	d := download.New(src, base.DataDir)
	d.UserAgent = base.UserAgent
	d.Update = opts.Update
	d.Verify = opts.Verify
	if !base.Yes {
		d.Confirm = download.NewPrompter(os.Stdin, os.Stdout).Confirm
	}

	ctx := context.Background()
	for _, arg := range args {
		paths, err := d.Get(ctx, arg, opts.Format)
		if err != nil {
			log.Fatal(err)
		}
		if opts.Unpack {
			unpack(paths)
		}
	}
}

func unpack(paths []string) {
	for _, p := range paths {
		switch {
		case strings.HasSuffix(p, ".shp.zip"):
			dest := strings.TrimSuffix(p, ".shp.zip")
			if _, err := shp.ExtractZip(p, dest, nil); err != nil {
				log.Fatal(err)
			}
			log.Printf("unpacked %s to %s", p, dest)
		case strings.HasSuffix(p, ".bz2"):
			dest, err := shp.ExtractBz2(p)
			if err != nil {
				log.Fatal(err)
			}
			log.Printf("unpacked %s to %s", p, dest)
		}
	}
}
