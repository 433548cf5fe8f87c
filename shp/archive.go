package shp

import (
	"archive/zip"
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/osmex/osmex/layer"
)

// ArchiveLayers lists the layers contained in a .shp.zip archive.
func ArchiveLayers(zipPath string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening archive %s", zipPath)
	}
	defer zr.Close()

	var layers []string
	seen := map[string]bool{}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".shp") {
			continue
		}
		name, _ := LayerName(f.Name)
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	return layers, nil
}

// ExtractZip unpacks a .shp.zip archive below destDir. With layers
// set, only the shapefiles of those layers are extracted. It returns
// the paths of the extracted .shp files.
func ExtractZip(zipPath, destDir string, layers []string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening archive %s", zipPath)
	}
	defer zr.Close()

	wanted := make(map[string]bool, len(layers))
	for _, l := range layers {
		wanted[l] = true
	}

	var shpPaths []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if len(layers) > 0 {
			name, _ := LayerName(f.Name)
			if !wanted[name] {
				continue
			}
		}
		dest := filepath.Join(destDir, filepath.Base(f.Name))
		if err := extractFile(f, dest); err != nil {
			return nil, errors.Wrapf(err, "extracting %s", f.Name)
		}
		if strings.HasSuffix(dest, ".shp") {
			shpPaths = append(shpPaths, dest)
		}
	}
	if len(shpPaths) == 0 {
		return nil, errors.Errorf("no shapefiles in %s", zipPath)
	}
	return shpPaths, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReadZip reads all (or the selected) layers of a .shp.zip archive.
// The archive is extracted to a temporary directory that is removed
// afterwards.
func ReadZip(zipPath string, layers []string) (map[string]*layer.Table, error) {
	tmp, err := os.MkdirTemp("", "osmex-shp")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	shpPaths, err := ExtractZip(zipPath, tmp, layers)
	if err != nil {
		return nil, err
	}
	tables := make(map[string]*layer.Table, len(shpPaths))
	for _, p := range shpPaths {
		t, err := Read(p)
		if err != nil {
			return nil, err
		}
		tables[t.Layer] = t
	}
	return tables, nil
}

// ExtractBz2 decompresses a .osm.bz2 download next to itself and
// returns the path of the decompressed file.
func ExtractBz2(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dest := strings.TrimSuffix(path, ".bz2")
	if dest == path {
		dest = path + ".out"
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, bzip2.NewReader(in)); err != nil {
		out.Close()
		os.Remove(dest)
		return "", errors.Wrapf(err, "decompressing %s", path)
	}
	return dest, out.Close()
}
