package catalogimport

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"freshmart/internal/model"
)

const maxLineBytes = 1024 * 1024

// readFeed decodes one product request per non-blank line of a gzip stream.
func readFeed(ctx context.Context, r io.Reader, source string) ([]model.ProductRequest, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		if errors.Is(err, gzip.ErrHeader) || errors.Is(err, io.EOF) {
			return nil, model.ValidationError("feed %s is not gzip-compressed", source)
		}
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var records []model.ProductRequest
	line := 0
	for scanner.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var req model.ProductRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, model.ValidationError("feed %s line %d: invalid JSON", source, line)
		}
		records = append(records, req)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, model.ValidationError("feed %s line %d: record too long", source, line+1)
		}
		return nil, fmt.Errorf("error reading feed %s: %w", source, err)
	}

	return records, nil
}
