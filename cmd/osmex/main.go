package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/osmex/osmex"
	"github.com/osmex/osmex/cmd"
	"github.com/osmex/osmex/config"
	"github.com/osmex/osmex/import_"
	"github.com/osmex/osmex/log"
)

func printCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\tregions\t\tlist the regions a download server offers")
	fmt.Fprintln(os.Stderr, "\tdownload\tdownload extracts of one or more regions")
	fmt.Fprintln(os.Stderr, "\timport\t\tdownload, read and load extracts into the database")
	fmt.Fprintln(os.Stderr, "\tfetch\t\tread layer tables of a region back from the database")
	fmt.Fprintln(os.Stderr, "\tdrop\t\tdrop layer tables of one or more regions")
	fmt.Fprintln(os.Stderr, "\ttables\t\tlist the imported tables")
	fmt.Fprintln(os.Stderr, "\tversion")
}

func main() {
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	if len(os.Args) <= 1 {
		printCmds()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "regions":
		args := config.Parse(config.RegionsFlags, os.Args[2:], false)
		cmd.Regions(args)
	case "download":
		args := config.Parse(config.DownloadFlags, os.Args[2:], true)
		cmd.Download(args)
	case "import":
		args := config.Parse(config.ImportFlags, os.Args[2:], true)
		import_.Import(args)
	case "fetch":
		args := config.Parse(config.FetchFlags, os.Args[2:], true)
		cmd.Fetch(args)
	case "drop":
		args := config.Parse(config.DropFlags, os.Args[2:], true)
		cmd.Drop(args)
	case "tables":
		config.Parse(config.TablesFlags, os.Args[2:], false)
		cmd.Tables()
	case "version":
		fmt.Println(osmex.Version)
	default:
		printCmds()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
}
