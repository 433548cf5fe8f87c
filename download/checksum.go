package download

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// verifyChecksum compares the MD5 sum of dest against the sum
// published at csURL. The checksum file has the usual md5sum format:
// "<hex sum>  <filename>".
func (d *Downloader) verifyChecksum(ctx context.Context, csURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", csURL, nil)
	if err != nil {
		return err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetching checksum")
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		// not every file has a published checksum
		return nil
	}
	if resp.StatusCode != 200 {
		return errors.Errorf("fetching checksum: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return errors.Wrap(err, "reading checksum")
	}
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return errors.New("empty checksum file")
	}
	want := strings.ToLower(fields[0])

	f, err := os.Open(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return errors.Errorf("checksum mismatch for %s: got %s, want %s", dest, got, want)
	}
	return nil
}
