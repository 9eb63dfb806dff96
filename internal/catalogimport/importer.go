package catalogimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"freshmart/internal/model"
	"freshmart/internal/repository"
	"freshmart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// importer implements Importer with concurrent feed loading.
type importer struct {
	loader     Loader
	products   repository.ProductRepository
	txr        repository.Transactor
	maxSources int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewImporter creates a new catalog importer. At most maxSources feeds are accepted per call.
func NewImporter(loader Loader, products repository.ProductRepository, txr repository.Transactor, maxSources int, logger zerolog.Logger) Importer {
	return &importer{
		loader:     loader,
		products:   products,
		txr:        txr,
		maxSources: maxSources,
		logger:     logger.With().Str("component", "catalog-importer").Logger(),
		now:        time.Now,
	}
}

type loadResult struct {
	index   int
	records []model.ProductRequest
	err     error
}

func (im *importer) Import(ctx context.Context, vendorID uuid.UUID, sources []string) (int, error) {
	if len(sources) == 0 {
		return 0, model.MissingFieldError("sources")
	}
	if len(sources) > im.maxSources {
		return 0, model.ValidationError("at most %d sources may be imported at once", im.maxSources)
	}

	im.logger.Info().
		Str("vendor_id", vendorID.String()).
		Int("source_count", len(sources)).
		Msg("starting catalog import")

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultChan := make(chan loadResult, len(sources))
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()
			records, err := im.loader.Load(loadCtx, source)
			if err != nil {
				cancel()
			}
			resultChan <- loadResult{index: index, records: records, err: err}
		}(i, source)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	// Report the first failing source in request order, ignoring loads that were only
	// cancelled because a sibling failed.
	var firstErr, cancelErr error
	for i, result := range results {
		if result.err == nil {
			continue
		}
		if errors.Is(result.err, context.Canceled) && ctx.Err() == nil {
			cancelErr = result.err
			continue
		}
		im.logger.Warn().Err(result.err).Str("source", sources[i]).Msg("failed to load feed")
		if firstErr == nil {
			firstErr = result.err
		}
	}
	if firstErr == nil {
		firstErr = cancelErr
	}
	if firstErr != nil {
		return 0, firstErr
	}

	now := im.now().UTC()
	var products []model.Product
	for i, result := range results {
		for n := range result.records {
			p, err := service.NewProduct(vendorID, &result.records[n], now)
			if err != nil {
				return 0, model.ValidationError("feed %s record %d: %s", sources[i], n+1, err.Error())
			}
			products = append(products, *p)
		}
	}
	if len(products) == 0 {
		return 0, model.ValidationError("feeds contain no products")
	}

	if err := im.insert(ctx, products); err != nil {
		return 0, err
	}

	im.logger.Info().
		Str("vendor_id", vendorID.String()).
		Int("imported", len(products)).
		Msg("catalog import completed")

	return len(products), nil
}

func (im *importer) insert(ctx context.Context, products []model.Product) (err error) {
	tx, err := im.txr.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				im.logger.Error().Err(rbErr).Msg("failed to rollback import")
			}
		}
	}()

	if err = im.products.CreateBatch(ctx, tx, products); err != nil {
		return fmt.Errorf("failed to import products: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
