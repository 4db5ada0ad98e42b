// Package publish bundles a results directory into one compressed archive
// and uploads it to blob storage.
package publish

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// Archive writes every *.json file directly under dir to a zstd-compressed
// tar stream, in sorted order, and returns the archived file names.
func Archive(w io.Writer, dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no result files in %s", dir)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	names := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := addFile(tw, p); err != nil {
			_ = tw.Close()
			_ = zw.Close()
			return nil, err
		}
		names = append(names, filepath.Base(p))
	}

	if err := tw.Close(); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("finishing tar stream: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finishing zstd stream: %w", err)
	}
	return names, nil
}

// ArchiveBytes is Archive into memory.
func ArchiveBytes(dir string) ([]byte, []string, error) {
	var buf bytes.Buffer
	names, err := Archive(&buf, dir)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), names, nil
}

func addFile(tw *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hdr := &tar.Header{
		Name:    filepath.Base(path),
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: info.ModTime(),
		Format:  tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing header for %s: %w", hdr.Name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", hdr.Name, err)
	}
	return nil
}

// Extract reads an archive produced by Archive and returns its files by name.
func Extract(r io.Reader) (map[string][]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening zstd stream: %w", err)
	}
	defer zr.Close()

	files := make(map[string][]byte)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", hdr.Name, err)
		}
		files[hdr.Name] = data
	}
}
