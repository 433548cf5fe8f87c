// Package config holds the command line options and the optional
// JSON configuration file. Flags win over the config file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
)

// Config is the JSON configuration file.
type Config struct {
	Connection  string `json:"connection"`
	DataDir     string `json:"datadir"`
	CacheDir    string `json:"cachedir"`
	MappingFile string `json:"mapping"`
	Source      string `json:"source"`
	UserAgent   string `json:"user_agent"`
}

const (
	defaultDataDir  = "osm_data"
	defaultCacheDir = "/tmp/osmex"
	defaultSource   = "geofabrik"
	defaultUA       = "osmex"
)

type _BaseOptions struct {
	ConfigFile  string
	Connection  string
	DataDir     string
	CacheDir    string
	MappingFile string
	Source      string
	UserAgent   string
	Quiet       bool
	Yes         bool
}

func (o *_BaseOptions) updateFromConfig() error {
	conf := &Config{
		DataDir:  defaultDataDir,
		CacheDir: defaultCacheDir,
		Source:   defaultSource,
	}

	if o.ConfigFile != "" {
		f, err := os.Open(o.ConfigFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(conf); err != nil {
			return err
		}
	}

	if o.Connection == "" {
		o.Connection = conf.Connection
	}
	if o.DataDir == defaultDataDir && conf.DataDir != "" {
		o.DataDir = conf.DataDir
	}
	if o.CacheDir == defaultCacheDir && conf.CacheDir != "" {
		o.CacheDir = conf.CacheDir
	}
	if o.MappingFile == "" {
		o.MappingFile = conf.MappingFile
	}
	if o.Source == defaultSource && conf.Source != "" {
		o.Source = conf.Source
	}
	if o.UserAgent == defaultUA && conf.UserAgent != "" {
		o.UserAgent = conf.UserAgent
	}
	return nil
}

func (o *_BaseOptions) check() []error {
	errs := []error{}
	if o.Source != "geofabrik" && o.Source != "bbbike" {
		errs = append(errs, errors.New("only -source=geofabrik or -source=bbbike are supported"))
	}
	return errs
}

type _RegionsOptions struct {
	Refresh bool
	Deep    bool
	Files   bool
}

type _DownloadOptions struct {
	Format string
	Update bool
	Verify bool
	Unpack bool
}

type _ImportOptions struct {
	Format   string
	Layers   string
	IfExists string
	Update   bool
	CacheDir string
}

type _FetchOptions struct {
	Layer  string
	Output string
}

type _DropOptions struct {
	Layers string
}

type _TablesOptions struct {
	Layer string
}

var (
	BaseOptions     = _BaseOptions{}
	RegionsOptions  = _RegionsOptions{}
	DownloadOptions = _DownloadOptions{}
	ImportOptions   = _ImportOptions{}
	FetchOptions    = _FetchOptions{}
	DropOptions     = _DropOptions{}
	TablesOptions   = _TablesOptions{}
)

var (
	RegionsFlags  = flag.NewFlagSet("regions", flag.ExitOnError)
	DownloadFlags = flag.NewFlagSet("download", flag.ExitOnError)
	ImportFlags   = flag.NewFlagSet("import", flag.ExitOnError)
	FetchFlags    = flag.NewFlagSet("fetch", flag.ExitOnError)
	DropFlags     = flag.NewFlagSet("drop", flag.ExitOnError)
	TablesFlags   = flag.NewFlagSet("tables", flag.ExitOnError)
)

func addBaseFlags(flags *flag.FlagSet) {
	flags.StringVar(&BaseOptions.ConfigFile, "config", "", "config (json)")
	flags.StringVar(&BaseOptions.Connection, "connection", "", "database connection URL")
	flags.StringVar(&BaseOptions.DataDir, "datadir", defaultDataDir, "directory for downloaded files")
	flags.StringVar(&BaseOptions.CacheDir, "cachedir", defaultCacheDir, "directory for catalogue and staging caches")
	flags.StringVar(&BaseOptions.MappingFile, "mapping", "", "tag mapping file (yaml), empty uses the built-in mapping")
	flags.StringVar(&BaseOptions.Source, "source", defaultSource, "download server (geofabrik or bbbike)")
	flags.StringVar(&BaseOptions.UserAgent, "useragent", defaultUA, "HTTP user agent")
	flags.BoolVar(&BaseOptions.Quiet, "quiet", false, "quiet log output")
	flags.BoolVar(&BaseOptions.Yes, "yes", false, "answer confirmation prompts with yes")
}

func usage(flags *flag.FlagSet, args string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options] %s\n\n", os.Args[0], flags.Name(), args)
		flags.PrintDefaults()
		os.Exit(2)
	}
}

func init() {
	for _, flags := range []*flag.FlagSet{
		RegionsFlags, DownloadFlags, ImportFlags, FetchFlags, DropFlags, TablesFlags,
	} {
		addBaseFlags(flags)
	}
	RegionsFlags.Usage = usage(RegionsFlags, "[region]")
	DownloadFlags.Usage = usage(DownloadFlags, "region [region ...]")
	ImportFlags.Usage = usage(ImportFlags, "region-or-file [region-or-file ...]")
	FetchFlags.Usage = usage(FetchFlags, "region")
	DropFlags.Usage = usage(DropFlags, "region [region ...]")
	TablesFlags.Usage = usage(TablesFlags, "")

	RegionsFlags.BoolVar(&RegionsOptions.Refresh, "refresh", false, "refresh the catalogue from the server")
	RegionsFlags.BoolVar(&RegionsOptions.Deep, "deep", false, "list subregions recursively")
	RegionsFlags.BoolVar(&RegionsOptions.Files, "files", false, "list the files the server offers for the region")

	DownloadFlags.StringVar(&DownloadOptions.Format, "format", "pbf", "file format")
	DownloadFlags.BoolVar(&DownloadOptions.Update, "update", false, "re-download files that exist locally")
	DownloadFlags.BoolVar(&DownloadOptions.Verify, "verify", false, "verify downloads against published checksums")
	DownloadFlags.BoolVar(&DownloadOptions.Unpack, "unpack", false, "unpack .shp.zip and .osm.bz2 downloads")

	ImportFlags.StringVar(&ImportOptions.Format, "format", "pbf", "file format (pbf or shp)")
	ImportFlags.StringVar(&ImportOptions.Layers, "layers", "", "comma separated layers, empty imports all")
	ImportFlags.StringVar(&ImportOptions.IfExists, "if-exists", "fail", "behavior for existing tables (fail, replace or append)")
	ImportFlags.BoolVar(&ImportOptions.Update, "update", false, "re-download files that exist locally")
	ImportFlags.StringVar(&ImportOptions.CacheDir, "readcache", "", "staging cache directory, empty uses a temporary directory")

	FetchFlags.StringVar(&FetchOptions.Layer, "layer", "", "layer to fetch")
	FetchFlags.StringVar(&FetchOptions.Output, "output", "", "write CSV to this file instead of stdout")

	DropFlags.StringVar(&DropOptions.Layers, "layers", "", "comma separated layers, empty drops all")

	TablesFlags.StringVar(&TablesOptions.Layer, "layer", "", "limit listing to one layer")
}

// Parse parses the arguments of one subcommand, merges the config
// file and validates the result. It returns the positional arguments.
func Parse(flags *flag.FlagSet, args []string, positional bool) []string {
	if len(args) == 0 && positional {
		flags.Usage()
	}
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := BaseOptions.updateFromConfig(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if errs := BaseOptions.check(); len(errs) != 0 {
		fmt.Fprintln(os.Stderr, "errors in config/options:")
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "\t", err)
		}
		flags.Usage()
	}
	if positional && flags.NArg() == 0 {
		flags.Usage()
	}
	return flags.Args()
}
