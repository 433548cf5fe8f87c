package cache

import (
	bin "encoding/binary"
	"math"

	osm "github.com/omniscale/go-osm"
)

// idToKeyBuf encodes an element ID as a big endian key, so Badger
// iterates elements in ID order.
func idToKeyBuf(id int64) []byte {
	b := make([]byte, 8)
	bin.BigEndian.PutUint64(b, uint64(id))
	return b
}

// CoordsCache stores the coordinates of all nodes of an extract.
type CoordsCache struct {
	db
}

func (c *CoordsCache) PutCoords(nodes []osm.Node) error {
	batch := make(map[int64][]byte, len(nodes))
	for _, n := range nodes {
		batch[n.ID] = marshalCoord(n.Long, n.Lat)
	}
	return c.put(batch)
}

func (c *CoordsCache) Coord(id int64) (long, lat float64, err error) {
	data, err := c.get(id)
	if err != nil {
		return 0, 0, err
	}
	long, lat = unmarshalCoord(data)
	return long, lat, nil
}

func marshalCoord(long, lat float64) []byte {
	b := make([]byte, 16)
	bin.BigEndian.PutUint64(b[:8], math.Float64bits(long))
	bin.BigEndian.PutUint64(b[8:], math.Float64bits(lat))
	return b
}

func unmarshalCoord(b []byte) (long, lat float64) {
	long = math.Float64frombits(bin.BigEndian.Uint64(b[:8]))
	lat = math.Float64frombits(bin.BigEndian.Uint64(b[8:]))
	return long, lat
}
