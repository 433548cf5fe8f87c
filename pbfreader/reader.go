// Package pbfreader converts PBF extracts into layer tables. Nodes,
// ways and relations are streamed through channels; node coordinates
// and way references are staged in an on-disk cache so that way and
// relation geometries can be assembled in a single pass over an
// ordered PBF file.
package pbfreader

import (
	"context"
	"os"
	"sync"

	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"

	"github.com/osmex/osmex/cache"
	"github.com/osmex/osmex/layer"
	"github.com/osmex/osmex/log"
	"github.com/osmex/osmex/mapping"
	"github.com/osmex/osmex/stats"
)

type Reader struct {
	// Mapping configures the tag columns; nil uses the default OGR
	// style mapping.
	Mapping *mapping.Mapping
	// CacheDir is the directory for the staging caches. Empty uses a
	// temporary directory that is removed after reading.
	CacheDir string
	// Concurrency limits the parser goroutines; <= 0 uses NumCPU.
	Concurrency int
	// Progress reports element counts while reading.
	Progress *stats.Statistics
}

// Result holds the layer tables of one extract.
type Result struct {
	Tables map[string]*layer.Table
	// IncompleteWays counts ways that were dropped because node
	// coordinates were missing from the extract.
	IncompleteWays int
	// IncompleteRelations counts relations that were dropped because
	// their member ways could not be assembled.
	IncompleteRelations int
}

// Read parses the PBF file at path into layer tables.
func (rd *Reader) Read(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening pbf file")
	}
	defer f.Close()

	cacheDir := rd.CacheDir
	removeCache := false
	if cacheDir == "" {
		cacheDir, err = os.MkdirTemp("", "osmex-cache")
		if err != nil {
			return nil, err
		}
		removeCache = true
	}
	elemCache, err := cache.Open(cacheDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if removeCache {
			elemCache.Remove()
		} else {
			elemCache.Close()
		}
	}()

	m := rd.Mapping
	if m == nil {
		m = mapping.Default()
	}

	done := log.Step("Reading " + path)
	defer done()

	p := newPass(m, elemCache)
	p.progress = rd.Progress

	coords := make(chan []osm.Node, 4)
	nodes := make(chan []osm.Node, 4)
	ways := make(chan []osm.Way, 4)
	relations := make(chan []osm.Relation, 4)

	coordsSynced := make(chan struct{})
	nodesSynced := make(chan struct{})
	waysSynced := make(chan struct{})

	parser := pbf.New(f, pbf.Config{
		Coords:      coords,
		Nodes:       nodes,
		Ways:        ways,
		Relations:   relations,
		Concurrency: rd.Concurrency,
		// all coordinates must be cached before the first way is
		// assembled, all way refs before the first relation
		OnFirstWay: func() {
			coords <- nil
			nodes <- nil
			<-coordsSynced
			<-nodesSynced
		},
		OnFirstRelation: func() {
			ways <- nil
			<-waysSynced
		},
	})

	wg := sync.WaitGroup{}
	wg.Add(4)
	go func() {
		defer wg.Done()
		for batch := range coords {
			if batch == nil {
				coordsSynced <- struct{}{}
				continue
			}
			p.coords(batch)
		}
	}()
	go func() {
		defer wg.Done()
		for batch := range nodes {
			if batch == nil {
				nodesSynced <- struct{}{}
				continue
			}
			p.nodes(batch)
		}
	}()
	go func() {
		defer wg.Done()
		for batch := range ways {
			if batch == nil {
				waysSynced <- struct{}{}
				continue
			}
			p.ways(batch)
		}
	}()
	go func() {
		defer wg.Done()
		for batch := range relations {
			p.relations(batch)
		}
	}()

	err = parser.Parse(ctx)
	wg.Wait()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if p.err != nil {
		return nil, p.err
	}

	if p.incompleteWays > 0 || p.incompleteRels > 0 {
		log.Warnf("dropped %d incomplete ways and %d incomplete relations",
			p.incompleteWays, p.incompleteRels)
	}
	return &Result{
		Tables:              p.tables,
		IncompleteWays:      p.incompleteWays,
		IncompleteRelations: p.incompleteRels,
	}, nil
}

// pass holds the shared state of one read.
type pass struct {
	mapping  *mapping.Mapping
	cache    *cache.Cache
	progress *stats.Statistics

	mu             sync.Mutex
	tables         map[string]*layer.Table
	err            error
	incompleteWays int
	incompleteRels int
}

func newPass(m *mapping.Mapping, c *cache.Cache) *pass {
	tables := make(map[string]*layer.Table, len(layer.All))
	for _, l := range layer.All {
		tables[l] = layer.NewTable(l, m.Columns(l))
	}
	return &pass{mapping: m, cache: c, tables: tables}
}

func (p *pass) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func (p *pass) add(layerName string, f layer.Feature) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tables[layerName].Add(f)
}

// feature builds the tag columns of a layer feature.
func (p *pass) feature(layerName string, id int64, wkt string, tags map[string]string) layer.Feature {
	columns, other := p.mapping.Split(layerName, tags)
	return layer.Feature{
		OSMID:     id,
		Geometry:  wkt,
		Columns:   columns,
		OtherTags: layer.EncodeOtherTags(other),
	}
}
