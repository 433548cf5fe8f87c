package mirror

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LoadCatalogue reads a cached catalogue from path. A missing file is
// not an error; it returns (nil, nil).
func LoadCatalogue(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening catalogue cache")
	}
	defer f.Close()

	c := &Catalogue{}
	if err := json.NewDecoder(f).Decode(c); err != nil {
		return nil, errors.Wrapf(err, "decoding catalogue cache %s", path)
	}
	return c, nil
}

// StoreCatalogue writes a catalogue to path, atomically via a
// temp file.
func StoreCatalogue(path string, c *Catalogue) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating catalogue cache dir")
	}
	tmp := path + "~"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "creating catalogue cache")
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "encoding catalogue cache")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
