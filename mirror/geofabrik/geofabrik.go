// Package geofabrik implements the Geofabrik free download server
// (https://download.geofabrik.de/).
package geofabrik

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/osmex/osmex/mirror"
)

const (
	URL      = "https://download.geofabrik.de/"
	IndexURL = URL + "index-v1.json"
)

// formats offered by Geofabrik for (almost) every region.
var formats = []string{".osm.pbf", ".shp.zip", ".osm.bz2"}

// download index property keys -> file format extensions
var urlKeys = map[string]string{
	"pbf": ".osm.pbf",
	"shp": ".shp.zip",
	"bz2": ".osm.bz2",
}

type Geofabrik struct {
	IndexURL  string
	Client    *http.Client
	UserAgent string

	cacheFile string
	catalogue *mirror.Catalogue
}

// New returns a Geofabrik source that caches its catalogue below
// cacheDir.
func New(cacheDir string) *Geofabrik {
	return &Geofabrik{
		IndexURL:  IndexURL,
		Client:    &http.Client{Timeout: 60 * time.Second},
		cacheFile: filepath.Join(cacheDir, "geofabrik-catalogue.json"),
	}
}

func (g *Geofabrik) Name() string { return "geofabrik" }

func (g *Geofabrik) Formats() []string {
	return append([]string(nil), formats...)
}

func (g *Geofabrik) Catalogue(ctx context.Context) (*mirror.Catalogue, error) {
	if g.catalogue != nil {
		return g.catalogue, nil
	}
	c, err := mirror.LoadCatalogue(g.cacheFile)
	if err != nil {
		return nil, err
	}
	if c != nil {
		g.catalogue = c
		return c, nil
	}
	return g.Refresh(ctx)
}

func (g *Geofabrik) Refresh(ctx context.Context) (*mirror.Catalogue, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", g.IndexURL, nil)
	if err != nil {
		return nil, err
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching download index")
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetching download index: unexpected status %s", resp.Status)
	}

	c, err := parseIndex(resp.Body)
	if err != nil {
		return nil, err
	}
	c.Updated = time.Now().UTC()

	if err := mirror.StoreCatalogue(g.cacheFile, c); err != nil {
		return nil, err
	}
	g.catalogue = c
	return c, nil
}

// LocalPath mirrors the server's directory layout below baseDir:
// <baseDir>/europe/great-britain/england/rutland/rutland-latest.osm.pbf
func (g *Geofabrik) LocalPath(baseDir string, r *mirror.Region, format string) string {
	filename := r.Filename(format)
	if filename == "" {
		return ""
	}
	sub := r.DirName()
	if u, err := url.Parse(r.URLs[format]); err == nil {
		if dir := strings.Trim(path.Dir(u.Path), "/"); dir != "" && dir != "." {
			sub = filepath.Join(filepath.FromSlash(dir), sub)
		}
	}
	return filepath.Join(baseDir, sub, filename)
}

// ChecksumURL returns the URL of the MD5 file published next to each
// data file.
func (g *Geofabrik) ChecksumURL(r *mirror.Region, format string) string {
	u, ok := r.URLs[format]
	if !ok {
		return ""
	}
	return u + ".md5"
}

// index-v1.json is a GeoJSON FeatureCollection; only the properties
// are of interest here.
type indexFeature struct {
	Properties struct {
		ID     string            `json:"id"`
		Parent string            `json:"parent"`
		Name   string            `json:"name"`
		URLs   map[string]string `json:"urls"`
	} `json:"properties"`
}

func parseIndex(r io.Reader) (*mirror.Catalogue, error) {
	var index struct {
		Features []indexFeature `json:"features"`
	}
	if err := json.NewDecoder(r).Decode(&index); err != nil {
		return nil, errors.Wrap(err, "decoding download index")
	}
	if len(index.Features) == 0 {
		return nil, errors.New("download index contains no regions")
	}

	c := &mirror.Catalogue{Server: "geofabrik"}
	nameCount := make(map[string]int, len(index.Features))
	for _, f := range index.Features {
		nameCount[cleanName(f.Properties.Name)]++
	}

	for _, f := range index.Features {
		p := f.Properties
		name := cleanName(p.Name)
		// some US states share names with other regions
		// (e.g. Georgia); disambiguate like the server does
		if nameCount[name] > 1 && strings.HasPrefix(p.ID, "us/") {
			name += " (US)"
		}
		urls := make(map[string]string, len(p.URLs))
		for key, u := range p.URLs {
			if format, ok := urlKeys[key]; ok {
				urls[format] = u
			}
		}
		c.Regions = append(c.Regions, mirror.Region{
			ID:     p.ID,
			Name:   name,
			Parent: p.Parent,
			URLs:   urls,
		})
	}
	return c, nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "<br />", " "))
	if rest, ok := strings.CutPrefix(name, "us/"); ok {
		return titleCase(rest)
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
