package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"catalogimport/internal/logger"
	"catalogimport/internal/models"
	"catalogimport/internal/services/shopify"
)

// Request names the job and the uploaded tables it should import. Either
// path may be empty.
type Request struct {
	JobID         string `json:"job_id"`
	ProductsPath  string `json:"products_path"`
	InventoryPath string `json:"inventory_path"`
}

// Importer runs one catalog import end to end: products, collections,
// variants and images per handle, then the optional inventory table.
type Importer struct {
	store     Store
	sink      ProgressSink
	logger    *logger.Logger
	denylist  []string
	resolver  *ProductResolver
	tagger    *CollectionTagger
	variants  *VariantReconciler
	images    *ImagePool
	inventory *InventoryUpdater
}

func New(store Store, blobs BlobStore, sink ProgressSink, opts ImageOptions, log *logger.Logger) *Importer {
	transformer := shopify.NewTransformer()
	return &Importer{
		store:     store,
		sink:      sink,
		logger:    log,
		denylist:  opts.Denylist,
		resolver:  NewProductResolver(store, transformer),
		tagger:    NewCollectionTagger(store, transformer),
		variants:  NewVariantReconciler(store, transformer),
		images:    NewImagePool(store, blobs, opts, log),
		inventory: NewInventoryUpdater(store, log),
	}
}

// Run imports req and leaves the job completed or failed. The uploaded files
// are removed on every exit path, unless the job was not pending: then
// another delivery owns it and its files. Cancelling ctx does not stop a
// run that has started.
func (i *Importer) Run(ctx context.Context, req Request) error {
	ctx = context.WithoutCancel(ctx)
	log := i.logger.WithField("job_id", req.JobID)

	t := &tracker{sink: i.sink, jobID: req.JobID, logger: log}
	if err := t.processing(ctx); err != nil {
		if !errors.Is(err, models.ErrInvalidTransition) {
			removeInputs(log, req)
			t.fail(ctx, err.Error())
		}
		return fmt.Errorf("start import %s: %w", req.JobID, err)
	}
	defer removeInputs(log, req)

	stats, err := i.run(ctx, req, t, log)
	if err == nil {
		err = t.complete(ctx, stats)
	}
	if err != nil {
		log.Error("Import failed: %v", err)
		t.fail(ctx, err.Error())
		return err
	}

	log.Info("Import completed: %d products created, %d skipped, %d variants, %d images",
		stats.ProductsCreated, stats.ProductsSkipped, stats.VariantsCreated, stats.ImagesCreated)
	return nil
}

func (i *Importer) run(ctx context.Context, req Request, t *tracker, log *logger.Logger) (models.ImportStats, error) {
	var (
		rows      []shopify.ProductRow
		inventory []shopify.InventoryRow
		err       error
	)
	if req.ProductsPath != "" {
		if rows, err = shopify.ReadProducts(req.ProductsPath); err != nil {
			return models.ImportStats{}, fmt.Errorf("read products: %w", err)
		}
	}
	if req.InventoryPath != "" {
		if inventory, err = shopify.ReadInventory(req.InventoryPath); err != nil {
			return models.ImportStats{}, fmt.Errorf("read inventory: %w", err)
		}
	}

	acc := NewAccumulator()
	cache := NewCollectionCache()
	groups := GroupRows(rows)
	total := len(groups)
	log.Info("Importing %d products from %d rows", total, len(rows))

	for n, group := range groups {
		step, err := i.processGroup(ctx, group, cache, acc, n+1, total)
		if err != nil {
			log.WithField("handle", group.Handle).Error("Product failed: %v", err)
			acc.Warn("Error processing %s: %v", group.Handle, err)
			step = fmt.Sprintf("Skipped %s due to error", group.Handle)
		}
		t.update(ctx, n+1, total, step)
	}
	log.Debug("Resolved %d collections from tags", cache.Len())

	if len(inventory) > 0 {
		t.update(ctx, total, total, "Updating inventory")
		if err := i.inventory.Apply(ctx, inventory, acc); err != nil {
			return models.ImportStats{}, fmt.Errorf("update inventory: %w", err)
		}
	}

	collections, err := i.store.CountCollections(ctx)
	if err != nil {
		return models.ImportStats{}, fmt.Errorf("count collections: %w", err)
	}
	stats := acc.Snapshot()
	stats.TotalCollections = collections
	return stats, nil
}

func (i *Importer) processGroup(ctx context.Context, group ProductGroup, cache *CollectionCache, acc *Accumulator, n, total int) (step string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	product, err := i.resolver.Resolve(ctx, group, acc)
	if err != nil {
		return "", err
	}
	if product == nil {
		return fmt.Sprintf("Processed %d of %d", n, total), nil
	}

	if err := i.tagger.Tag(ctx, group.Rows[0].Tags, cache, product, acc); err != nil {
		return "", err
	}
	if err := i.variants.Reconcile(ctx, product, group, acc); err != nil {
		return "", err
	}
	if err := i.images.Ingest(ctx, product, FilterImageURLs(group.Rows, i.denylist), acc); err != nil {
		return "", err
	}

	return product.Name, nil
}

func removeInputs(log *logger.Logger, req Request) {
	for _, p := range []string{req.ProductsPath, req.InventoryPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove %s: %v", p, err)
		}
	}
}
