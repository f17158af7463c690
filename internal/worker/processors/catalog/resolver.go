package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalogimport/internal/database"
	"catalogimport/internal/models"
	"catalogimport/internal/services/shopify"
)

// ProductResolver decides, per handle, whether to create a product, revive
// an archived one or skip the group.
type ProductResolver struct {
	store       Store
	transformer *shopify.Transformer
}

func NewProductResolver(store Store, transformer *shopify.Transformer) *ProductResolver {
	return &ProductResolver{store: store, transformer: transformer}
}

// Resolve returns the product the rest of the group should be attached to,
// or nil when the group is skipped.
func (r *ProductResolver) Resolve(ctx context.Context, group ProductGroup, acc *Accumulator) (*models.Product, error) {
	if group.Handle == "" {
		lines := make([]int, 0, len(group.Rows))
		for _, row := range group.Rows {
			lines = append(lines, row.Line)
		}
		acc.ProductSkipped(fmt.Sprintf("Rows without a handle skipped (lines %v)", lines))
		return nil, nil
	}

	active, err := r.findBySlug(ctx, group.Handle, false)
	if err != nil {
		return nil, err
	}
	if active != nil {
		acc.ProductSkipped(fmt.Sprintf("Product already exists: %s", group.Title()))
		return nil, nil
	}

	archived, err := r.findBySlug(ctx, group.Handle, true)
	if err != nil {
		return nil, err
	}

	if !group.HasSKU() {
		if archived != nil {
			acc.ProductSkipped(fmt.Sprintf("Archived product skipped, missing SKUs: %s", group.Title()))
		} else {
			acc.ProductSkipped(fmt.Sprintf("Product skipped, missing SKUs: %s", group.Title()))
		}
		return nil, nil
	}

	incoming, err := r.transformer.TransformProduct(group.Rows)
	if err != nil {
		return nil, err
	}

	if archived != nil {
		return r.unarchive(ctx, archived, incoming, acc)
	}
	return r.create(ctx, incoming, acc)
}

func (r *ProductResolver) unarchive(ctx context.Context, existing, incoming *models.Product, acc *Accumulator) (*models.Product, error) {
	existing.Archived = false
	existing.Name = incoming.Name
	existing.Description = incoming.Description
	existing.Price = incoming.Price
	existing.Weight = incoming.Weight
	existing.Vendor = incoming.Vendor
	existing.ProductType = incoming.ProductType
	existing.SKUPrefix = incoming.SKUPrefix
	existing.Published = incoming.Published

	if err := r.store.UpdateProduct(ctx, existing); err != nil {
		return nil, fmt.Errorf("unarchive %s: %w", existing.Slug, err)
	}
	if err := r.store.ClearCollections(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("clear collections of %s: %w", existing.Slug, err)
	}
	if _, err := r.store.DeleteDefaultVariants(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("remove placeholder variant of %s: %w", existing.Slug, err)
	}

	acc.ProductCreated(existing.Name + " (unarchived)")
	return existing, nil
}

func (r *ProductResolver) create(ctx context.Context, product *models.Product, acc *Accumulator) (*models.Product, error) {
	product.InventoryTracking = models.InventoryTrackingNone
	product.StockQuantity = 0

	if err := r.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create %s: %w", product.Slug, err)
	}
	// the group has real SKU rows, so the auto-generated placeholder goes
	if _, err := r.store.DeleteDefaultVariants(ctx, product.ID); err != nil {
		return nil, fmt.Errorf("remove placeholder variant of %s: %w", product.Slug, err)
	}

	acc.ProductCreated(product.Name)
	return product, nil
}

func (r *ProductResolver) findBySlug(ctx context.Context, slug string, archived bool) (*models.Product, error) {
	product, err := r.store.FindProductBySlug(ctx, slug, archived)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", slug, err)
	}
	return product, nil
}
