package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"catalogimport/internal/database"
	"catalogimport/internal/logger"
	"catalogimport/internal/models"
	"catalogimport/internal/services/shopify"
)

// InventoryUpdater applies a SKU → quantity table to existing variants.
type InventoryUpdater struct {
	store  Store
	logger *logger.Logger
}

func NewInventoryUpdater(store Store, log *logger.Logger) *InventoryUpdater {
	return &InventoryUpdater{store: store, logger: log}
}

func (u *InventoryUpdater) Apply(ctx context.Context, rows []shopify.InventoryRow, acc *Accumulator) error {
	products := make(map[string]*models.Product)

	for _, row := range rows {
		if row.SKU == "" {
			continue
		}

		qty, err := strconv.Atoi(strings.TrimSpace(row.Quantity))
		if err != nil {
			acc.Warn("Invalid quantity %q for SKU %s (line %d), skipped", row.Quantity, row.SKU, row.Line)
			continue
		}

		variant, err := u.store.FindVariantBySKU(ctx, row.SKU)
		if errors.Is(err, database.ErrNotFound) {
			// unknown SKUs are ignored without a warning
			u.logger.Debug("Inventory SKU %s not found, ignored", row.SKU)
			continue
		}
		if err != nil {
			return fmt.Errorf("find variant %s: %w", row.SKU, err)
		}

		variant.StockQuantity = qty
		if err := u.store.UpdateVariant(ctx, variant); err != nil {
			return fmt.Errorf("update stock of %s: %w", row.SKU, err)
		}

		product, ok := products[variant.ProductID]
		if !ok {
			product, err = u.store.FindProduct(ctx, variant.ProductID)
			if err != nil {
				return fmt.Errorf("find product of %s: %w", row.SKU, err)
			}
			products[variant.ProductID] = product
		}
		if product.InventoryTracking != models.InventoryTrackingVariant {
			product.InventoryTracking = models.InventoryTrackingVariant
			if err := u.store.UpdateProduct(ctx, product); err != nil {
				return fmt.Errorf("switch %s to variant tracking: %w", product.Slug, err)
			}
		}

		acc.InventoryUpdated()
	}

	return nil
}
