// Package bbbike implements the BBBike free download server
// (https://download.bbbike.org/osm/bbbike/), which offers OSM
// extracts for individual cities.
package bbbike

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/osmex/osmex/mirror"
)

const (
	URL = "https://download.bbbike.org/osm/bbbike/"
	// CitiesURL lists the names of all cities available on the server.
	CitiesURL = "https://raw.githubusercontent.com/wosch/bbbike-world/world/etc/cities.txt"
)

// formats offered for every city. BBBike names files by convention:
// <City>.osm<format>
var formats = []string{
	".pbf",
	".gz",
	".shp.zip",
	".csv.xz",
	".geojson.xz",
	".garmin-onroad-latin1.zip",
	".garmin-onroad.zip",
	".garmin-opentopo.zip",
	".garmin-osm.zip",
	".mapsforge-osm.zip",
	".svg-osm.zip",
}

type BBBike struct {
	URL       string
	CitiesURL string
	Client    *http.Client
	UserAgent string

	cacheFile string
	catalogue *mirror.Catalogue
}

// New returns a BBBike source that caches its catalogue below cacheDir.
func New(cacheDir string) *BBBike {
	return &BBBike{
		URL:       URL,
		CitiesURL: CitiesURL,
		Client:    &http.Client{Timeout: 60 * time.Second},
		cacheFile: filepath.Join(cacheDir, "bbbike-catalogue.json"),
	}
}

func (b *BBBike) Name() string { return "bbbike" }

func (b *BBBike) Formats() []string {
	return append([]string(nil), formats...)
}

func (b *BBBike) Catalogue(ctx context.Context) (*mirror.Catalogue, error) {
	if b.catalogue != nil {
		return b.catalogue, nil
	}
	c, err := mirror.LoadCatalogue(b.cacheFile)
	if err != nil {
		return nil, err
	}
	if c != nil {
		b.catalogue = c
		return c, nil
	}
	return b.Refresh(ctx)
}

func (b *BBBike) Refresh(ctx context.Context) (*mirror.Catalogue, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", b.CitiesURL, nil)
	if err != nil {
		return nil, err
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching city list")
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetching city list: unexpected status %s", resp.Status)
	}

	c := &mirror.Catalogue{Server: "bbbike"}
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// cities.txt carries optional ":"-separated metadata per line
		city := strings.TrimSpace(strings.SplitN(line, ":", 2)[0])
		if city == "" {
			continue
		}
		urls := make(map[string]string, len(formats))
		for _, format := range formats {
			urls[format] = b.URL + city + "/" + city + ".osm" + format
		}
		c.Regions = append(c.Regions, mirror.Region{
			ID:   city,
			Name: city,
			URLs: urls,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading city list")
	}
	if len(c.Regions) == 0 {
		return nil, errors.New("city list is empty")
	}
	c.Updated = time.Now().UTC()

	if err := mirror.StoreCatalogue(b.cacheFile, c); err != nil {
		return nil, err
	}
	b.catalogue = c
	return c, nil
}

// LocalPath stores city files in one directory per city:
// <baseDir>/london/London.osm.pbf
func (b *BBBike) LocalPath(baseDir string, r *mirror.Region, format string) string {
	filename := r.Filename(format)
	if filename == "" {
		return ""
	}
	return filepath.Join(baseDir, r.DirName(), filename)
}

// DownloadPage fetches and parses the HTML directory listing of a
// city, returning the files the server actually offers, with sizes
// and last-update times.
func (b *BBBike) DownloadPage(ctx context.Context, r *mirror.Region) ([]Entry, error) {
	url := b.URL + r.Name + "/"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching download page of %s", r.Name)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetching download page of %s: unexpected status %s", r.Name, resp.Status)
	}
	return parseDownloadPage(resp.Body, url)
}
