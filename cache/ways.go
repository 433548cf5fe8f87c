package cache

import (
	bin "encoding/binary"

	osm "github.com/omniscale/go-osm"
)

// WaysCache stores the node references of all ways of an extract,
// needed to assemble relation geometries.
type WaysCache struct {
	db
}

func (c *WaysCache) PutWays(ways []osm.Way) error {
	batch := make(map[int64][]byte, len(ways))
	for _, w := range ways {
		batch[w.ID] = marshalRefs(w.Refs)
	}
	return c.put(batch)
}

func (c *WaysCache) Refs(id int64) ([]int64, error) {
	data, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return unmarshalRefs(data), nil
}

// refs are delta encoded, neighboring node IDs are usually close.
func marshalRefs(refs []int64) []byte {
	b := make([]byte, 0, len(refs)*4+bin.MaxVarintLen64)
	buf := make([]byte, bin.MaxVarintLen64)
	n := bin.PutUvarint(buf, uint64(len(refs)))
	b = append(b, buf[:n]...)
	var last int64
	for _, ref := range refs {
		n = bin.PutVarint(buf, ref-last)
		b = append(b, buf[:n]...)
		last = ref
	}
	return b
}

func unmarshalRefs(b []byte) []int64 {
	count, n := bin.Uvarint(b)
	b = b[n:]
	refs := make([]int64, 0, count)
	var last int64
	for i := uint64(0); i < count; i++ {
		delta, n := bin.Varint(b)
		b = b[n:]
		last += delta
		refs = append(refs, last)
	}
	return refs
}
