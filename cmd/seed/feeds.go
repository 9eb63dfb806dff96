package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeSampleFeeds writes one gzip JSON-lines catalog feed per vendor into dir, named
// after the vendor's store, and returns the written file names.
func writeSampleFeeds(dir string, f *fixtures) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create feed directory: %w", err)
	}

	var names []string
	for _, v := range f.Vendors {
		if len(v.Products) == 0 {
			continue
		}

		name := feedName(v)
		if err := writeFeed(filepath.Join(dir, name), v.Products); err != nil {
			return names, fmt.Errorf("failed to write %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func feedName(v vendorFixture) string {
	base := v.StoreName
	if base == "" {
		base = v.Name
	}
	slug := strings.Join(strings.Fields(strings.ToLower(base)), "-")
	return slug + ".jsonl.gz"
}

func writeFeed(path string, products []productFixture) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	gz := gzip.NewWriter(file)
	enc := json.NewEncoder(gz)
	for _, p := range products {
		// Feed records carry no category id; ids are vendor-specific.
		if err := enc.Encode(p.productRequest(nil)); err != nil {
			return err
		}
	}
	return gz.Close()
}
