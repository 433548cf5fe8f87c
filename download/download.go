// Package download fetches OSM extracts from the free download
// servers to the local disk.
package download

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/osmex/osmex/log"
	"github.com/osmex/osmex/mirror"
)

// ErrNotAvailable is returned when the server does not have the
// requested file (HTTP 404).
var ErrNotAvailable = errors.New("file not available")

// checksummer is implemented by sources that publish checksum files
// next to their data files.
type checksummer interface {
	ChecksumURL(r *mirror.Region, format string) string
}

type Downloader struct {
	Source    mirror.Source
	Client    *http.Client
	UserAgent string
	// BaseDir is the local root for downloaded files.
	BaseDir string
	// Update re-downloads files that already exist locally.
	Update bool
	// Verify checks server published MD5 sums after downloading.
	Verify bool
	// Confirm is asked before any download starts. A nil Confirm
	// proceeds without asking.
	Confirm func(msg string) bool
	// Retries is the number of additional attempts after a failed
	// download.
	Retries int
	// RetryWait is the initial wait between attempts; it doubles on
	// every retry.
	RetryWait time.Duration
}

func New(source mirror.Source, baseDir string) *Downloader {
	client := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	return &Downloader{
		Source:    source,
		Client:    client,
		BaseDir:   baseDir,
		Retries:   2,
		RetryWait: 2 * time.Second,
	}
}

// Get downloads the file of the named region in the given format and
// returns the local paths. When the region does not offer the format,
// Get falls back to the subregions that do (Geofabrik has no
// shapefiles for large regions, only for their leaves).
func (d *Downloader) Get(ctx context.Context, name, format string) ([]string, error) {
	c, err := d.Source.Catalogue(ctx)
	if err != nil {
		return nil, err
	}
	format, err = mirror.MatchFormat(format, d.Source.Formats())
	if err != nil {
		return nil, err
	}
	r, err := c.Match(name)
	if err != nil {
		return nil, err
	}

	regions := []*mirror.Region{r}
	if _, ok := r.URLs[format]; !ok {
		regions, err = d.fallbackRegions(c, r, format)
		if err != nil {
			return nil, err
		}
		log.Printf("%s is not offered as %s; downloading %d subregions instead",
			r.Name, format, len(regions))
	}

	if d.Confirm != nil {
		names := make([]string, len(regions))
		for i, r := range regions {
			names[i] = r.Name
		}
		msg := fmt.Sprintf("To download %s data of the following geographic (sub)region(s):\n\t%s\n",
			format, strings.Join(names, "\n\t"))
		if !d.Confirm(msg) {
			return nil, nil
		}
	}

	var paths []string
	for _, r := range regions {
		p, err := d.GetRegion(ctx, r, format)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// fallbackRegions returns the deepest subregions of r that offer the
// format.
func (d *Downloader) fallbackRegions(c *mirror.Catalogue, r *mirror.Region, format string) ([]*mirror.Region, error) {
	subs, err := c.Subregions(r.Name, true)
	if err != nil {
		return nil, err
	}
	var regions []*mirror.Region
	for _, s := range subs {
		if _, ok := s.URLs[format]; ok {
			regions = append(regions, s)
		}
	}
	if len(regions) == 0 {
		return nil, errors.Errorf("no %s data available for %s or any of its subregions", format, r.Name)
	}
	return regions, nil
}

// GetRegion downloads a single region's file and returns its local
// path. Existing files are kept unless Update is set.
func (d *Downloader) GetRegion(ctx context.Context, r *mirror.Region, format string) (string, error) {
	url, ok := r.URLs[format]
	if !ok {
		return "", errors.Errorf("no %s data available for %s", format, r.Name)
	}
	dest := d.Source.LocalPath(d.BaseDir, r, format)

	if _, err := os.Stat(dest); err == nil && !d.Update {
		log.Printf("%s already exists, skipping download", dest)
		return dest, nil
	}

	log.Printf("downloading %s to %s", url, dest)
	eb := newExpBackoff(d.RetryWait, 2*time.Minute)
	for attempt := 0; ; attempt++ {
		err := d.fetch(ctx, url, dest)
		if err == nil {
			break
		}
		if err == ErrNotAvailable || attempt >= d.Retries || ctx.Err() != nil {
			return "", errors.Wrapf(err, "downloading %s", url)
		}
		log.Warnf("downloading %s: %s, retrying in %s", url, err, eb.Duration())
		eb.Wait()
	}

	if d.Verify {
		if cs, ok := d.Source.(checksummer); ok {
			if csURL := cs.ChecksumURL(r, format); csURL != "" {
				if err := d.verifyChecksum(ctx, csURL, dest); err != nil {
					return "", err
				}
			}
		}
	}
	return dest, nil
}

// fetch downloads url to dest through a temporary file, so a partial
// download never shows up under the final name.
func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	tmpDest := fmt.Sprintf("%s~%d", dest, os.Getpid())
	out, err := os.Create(tmpDest)
	if err != nil {
		return err
	}
	defer os.Remove(tmpDest)
	defer out.Close()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return ErrNotAvailable
	}
	if resp.StatusCode != 200 {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmpDest, dest)
}

type expBackoff struct {
	current time.Duration
	min     time.Duration
	max     time.Duration
}

func newExpBackoff(min, max time.Duration) *expBackoff {
	return &expBackoff{min, min, max}
}

func (eb *expBackoff) Duration() time.Duration {
	return eb.current
}

func (eb *expBackoff) Wait() {
	time.Sleep(eb.current)
	eb.current = eb.current * 2
	if eb.current > eb.max {
		eb.current = eb.max
	}
}
