// Package sources constructs the configured download server.
package sources

import (
	"github.com/pkg/errors"

	"github.com/osmex/osmex/mirror"
	"github.com/osmex/osmex/mirror/bbbike"
	"github.com/osmex/osmex/mirror/geofabrik"
)

// Open returns the download server with the given name. Catalogue
// caches are stored below cacheDir.
func Open(name, cacheDir, userAgent string) (mirror.Source, error) {
	switch name {
	case "geofabrik":
		g := geofabrik.New(cacheDir)
		g.UserAgent = userAgent
		return g, nil
	case "bbbike":
		b := bbbike.New(cacheDir)
		b.UserAgent = userAgent
		return b, nil
	}
	return nil, errors.Errorf("unknown download server %q", name)
}
