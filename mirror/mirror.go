// Package mirror defines the region catalogues of the public OSM
// download servers and the lookup rules shared by all of them.
package mirror

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Region is a single geographic (sub)region offered by a download server.
type Region struct {
	// ID is the server side identifier, e.g. "europe/great-britain/england".
	ID string `json:"id"`
	// Name is the canonical human readable name, e.g. "Greater London".
	Name string `json:"name"`
	// Parent is the ID of the containing region, empty for top-level regions.
	Parent string `json:"parent,omitempty"`
	// URLs maps file format extensions (".osm.pbf", ".shp.zip", ...) to
	// download URLs. Formats the server does not offer for this region
	// are missing from the map.
	URLs map[string]string `json:"urls"`
}

// Filename returns the remote filename for the given format, or ""
// when the format is not offered for this region.
func (r *Region) Filename(format string) string {
	url, ok := r.URLs[format]
	if !ok {
		return ""
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// DirName returns the name of the directory a region's files are
// stored in locally ("Greater London" -> "greater-london").
func (r *Region) DirName() string {
	parts := strings.Fields(r.Name)
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Trim(p, ".,;:!?'\"()"))
	}
	return strings.Join(parts, "-")
}

// Catalogue is the full region listing of one download server.
type Catalogue struct {
	Server  string    `json:"server"`
	Updated time.Time `json:"updated"`
	Regions []Region  `json:"regions"`

	byName map[string]*Region
}

func (c *Catalogue) index() {
	if c.byName != nil {
		return
	}
	c.byName = make(map[string]*Region, len(c.Regions))
	for i := range c.Regions {
		c.byName[normalizeName(c.Regions[i].Name)] = &c.Regions[i]
	}
}

// Names returns all canonical region names, sorted.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.Regions))
	for i := range c.Regions {
		names = append(names, c.Regions[i].Name)
	}
	sort.Strings(names)
	return names
}

// Get returns the region with the exact canonical name.
func (c *Catalogue) Get(name string) (*Region, bool) {
	c.index()
	r, ok := c.byName[normalizeName(name)]
	return r, ok
}

// Match resolves a user supplied region name. Matching is case
// insensitive and tolerant of punctuation; close misses return an
// UnknownRegionError carrying suggestions.
func (c *Catalogue) Match(name string) (*Region, error) {
	c.index()

	if r, ok := c.byName[normalizeName(name)]; ok {
		return r, nil
	}

	// a filename or URL is accepted in place of a name
	// ("rutland-latest.osm.pbf" -> "rutland")
	if base := baseRegionName(name); base != "" {
		if r, ok := c.byName[normalizeName(base)]; ok {
			return r, nil
		}
		name = base
	}

	best, suggestions := closestNames(normalizeName(name), c.Names())
	if best != "" {
		return c.byName[normalizeName(best)], nil
	}
	return nil, &UnknownRegionError{Server: c.Server, Name: name, Suggestions: suggestions}
}

// Subregions returns the direct children of the named region. With
// deep it descends into leaf regions recursively.
func (c *Catalogue) Subregions(name string, deep bool) ([]*Region, error) {
	parent, err := c.Match(name)
	if err != nil {
		return nil, err
	}
	return c.subregionsOf(parent, deep), nil
}

func (c *Catalogue) subregionsOf(parent *Region, deep bool) []*Region {
	var subs []*Region
	for i := range c.Regions {
		r := &c.Regions[i]
		if r.Parent != parent.ID {
			continue
		}
		children := c.subregionsOf(r, deep)
		if deep && len(children) > 0 {
			subs = append(subs, children...)
		} else {
			subs = append(subs, r)
		}
	}
	return subs
}

// Source is one free download server.
type Source interface {
	// Name returns the short server name ("geofabrik", "bbbike").
	Name() string
	// Catalogue returns the region catalogue, from the local cache
	// when available.
	Catalogue(ctx context.Context) (*Catalogue, error)
	// Refresh fetches the catalogue from the server and replaces the
	// local cache.
	Refresh(ctx context.Context) (*Catalogue, error)
	// Formats returns the file format extensions the server offers.
	Formats() []string
	// LocalPath returns the default path of a region's data file
	// below baseDir.
	LocalPath(baseDir string, r *Region, format string) string
}

// MatchFormat resolves a user supplied file format against the
// formats a server offers. Partial inputs ("pbf", "shp") match their
// full extension.
func MatchFormat(format string, valid []string) (string, error) {
	for _, v := range valid {
		if format == v {
			return v, nil
		}
	}
	token := strings.TrimLeft(strings.ToLower(format), ".")
	var candidates []string
	for _, v := range valid {
		if strings.Contains(v, token) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	// prefer the plain OSM formats over derived ones (.garmin-osm.zip etc.)
	for _, c := range candidates {
		if c == ".osm."+token || c == "."+token {
			return c, nil
		}
	}
	return "", &UnknownFormatError{Format: format, Valid: valid}
}

// UnknownRegionError is returned when a region name cannot be
// resolved against a server's catalogue.
type UnknownRegionError struct {
	Server      string
	Name        string
	Suggestions []string
}

func (e *UnknownRegionError) Error() string {
	msg := fmt.Sprintf("region %q is not available on the %s download server", e.Name, e.Server)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean: " + strings.Join(e.Suggestions, ", ")
	}
	return msg
}

// UnknownFormatError is returned when a file format cannot be
// resolved against the formats a server offers.
type UnknownFormatError struct {
	Format string
	Valid  []string
}

func (e *UnknownFormatError) Error() string {
	valid := append([]string(nil), e.Valid...)
	sort.Strings(valid)
	return fmt.Sprintf("file format %q is unidentifiable; valid options: %s",
		e.Format, strings.Join(valid, ", "))
}

// baseRegionName strips directory, -latest/-free markers and format
// extensions from a filename or URL.
func baseRegionName(name string) string {
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
