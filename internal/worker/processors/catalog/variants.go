package catalog

import (
	"context"
	"fmt"

	"catalogimport/internal/models"
	"catalogimport/internal/services/shopify"
)

// VariantReconciler creates the variants of a product that the catalog does
// not know yet.
type VariantReconciler struct {
	store       Store
	transformer *shopify.Transformer
}

func NewVariantReconciler(store Store, transformer *shopify.Transformer) *VariantReconciler {
	return &VariantReconciler{store: store, transformer: transformer}
}

func (v *VariantReconciler) Reconcile(ctx context.Context, product *models.Product, group ProductGroup, acc *Accumulator) error {
	known, err := v.store.ExistingSKUs(ctx, group.SKUs())
	if err != nil {
		return fmt.Errorf("load existing SKUs for %s: %w", product.Slug, err)
	}

	for _, row := range group.Rows {
		if !row.HasSKU() {
			size := row.Option1
			if size == "" {
				size = "unknown size"
			}
			acc.VariantSkipped(fmt.Sprintf("Missing SKU for %s variant (%s), skipped", product.Name, size))
			continue
		}

		if _, dup := known[row.SKU]; dup {
			acc.VariantSkipped(fmt.Sprintf("Variant already exists: %s", row.SKU))
			continue
		}

		variant, err := v.transformer.TransformVariant(product.ID, row)
		if err != nil {
			return err
		}
		if err := v.store.CreateVariant(ctx, variant); err != nil {
			return fmt.Errorf("create variant %s: %w", row.SKU, err)
		}
		known[row.SKU] = struct{}{}
		acc.VariantCreated()
	}

	variants, err := v.store.ListVariants(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("list variants of %s: %w", product.Slug, err)
	}

	if len(variants) == 0 {
		acc.Warn("CRITICAL: Product %s has no variants", product.Name)
		return nil
	}

	if product.Price == 0 {
		lowest := variants[0].Price
		for _, variant := range variants[1:] {
			if variant.Price < lowest {
				lowest = variant.Price
			}
		}
		if lowest > 0 {
			product.Price = lowest
			if err := v.store.UpdateProduct(ctx, product); err != nil {
				return fmt.Errorf("backfill price of %s: %w", product.Slug, err)
			}
		}
	}

	return nil
}
