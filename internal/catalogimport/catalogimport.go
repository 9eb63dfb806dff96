// Package catalogimport bulk-loads vendor products from gzip-compressed JSON-lines feeds.
package catalogimport

import (
	"context"

	"freshmart/internal/model"

	"github.com/google/uuid"
)

// Importer creates products from one or more feed sources.
type Importer interface {
	// Import loads every source and inserts all of their products for vendorID in a
	// single transaction. Any load or validation error aborts the whole import.
	Import(ctx context.Context, vendorID uuid.UUID, sources []string) (int, error)
}

// Loader defines the interface for reading a feed.
type Loader interface {
	// Load reads a gzipped JSON-lines feed and returns its records in file order.
	Load(ctx context.Context, source string) ([]model.ProductRequest, error)
}
