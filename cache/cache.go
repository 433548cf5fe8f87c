// Package cache provides the on-disk staging caches used while
// reading a PBF extract. Node coordinates and way references are
// stored in Badger databases so that way and relation geometries can
// be assembled without keeping the whole extract in memory.
package cache

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when an element is not in the cache.
var ErrNotFound = errors.New("element not in cache")

type Cache struct {
	dir    string
	Coords *CoordsCache
	Ways   *WaysCache
}

// Open opens (or creates) the staging caches below dir.
func Open(dir string) (*Cache, error) {
	coords, err := openDB(filepath.Join(dir, "coords"))
	if err != nil {
		return nil, errors.Wrap(err, "opening coords cache")
	}
	ways, err := openDB(filepath.Join(dir, "ways"))
	if err != nil {
		coords.Close()
		return nil, errors.Wrap(err, "opening ways cache")
	}
	return &Cache{
		dir:    dir,
		Coords: &CoordsCache{db{coords}},
		Ways:   &WaysCache{db{ways}},
	}, nil
}

// Exists reports whether a cache directory is already present.
func Exists(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "coords")); err == nil {
		return true
	}
	return false
}

func (c *Cache) Close() error {
	err := c.Coords.close()
	if werr := c.Ways.close(); err == nil {
		err = werr
	}
	return err
}

// Remove closes the cache and deletes it from disk.
func (c *Cache) Remove() error {
	if err := c.Close(); err != nil {
		return err
	}
	return os.RemoveAll(c.dir)
}

func openDB(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = false
	return badger.Open(opts)
}

type db struct {
	db *badger.DB
}

func (d db) close() error {
	return d.db.Close()
}

func (d db) put(batch map[int64][]byte) error {
	wb := d.db.NewWriteBatch()
	defer wb.Cancel()
	for id, data := range batch {
		if err := wb.Set(idToKeyBuf(id), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (d db) get(id int64) ([]byte, error) {
	var data []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idToKeyBuf(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}
