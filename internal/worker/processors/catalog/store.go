package catalog

import (
	"context"
	"io"

	"catalogimport/internal/models"
)

// Store is the persistence surface the importer works against. Find*
// methods return database.ErrNotFound when nothing matches.
type Store interface {
	FindProductBySlug(ctx context.Context, slug string, archived bool) (*models.Product, error)
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteDefaultVariants(ctx context.Context, productID string) (int64, error)
	ClearCollections(ctx context.Context, productID string) error

	ExistingSKUs(ctx context.Context, skus []string) (map[string]struct{}, error)
	CreateVariant(ctx context.Context, variant *models.Variant) error
	UpdateVariant(ctx context.Context, variant *models.Variant) error
	ListVariants(ctx context.Context, productID string) ([]models.Variant, error)
	FindVariantBySKU(ctx context.Context, sku string) (*models.Variant, error)

	FindCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error)
	CreateCollection(ctx context.Context, collection *models.Collection) error
	LinkCollection(ctx context.Context, productID, collectionID string) error
	CountCollections(ctx context.Context) (int64, error)

	CountImages(ctx context.Context, productID string) (int64, error)
	CreateImage(ctx context.Context, image *models.Image) error
}

// BlobStore persists downloaded image bytes and returns the key they were
// stored under.
type BlobStore interface {
	Store(ctx context.Context, body io.Reader, filename, contentType string) (string, error)
}

// ProgressSink receives job lifecycle updates.
type ProgressSink interface {
	Processing(ctx context.Context, jobID string) error
	UpdateProgress(ctx context.Context, jobID string, progress models.ImportProgress) error
	Complete(ctx context.Context, jobID string, stats models.ImportStats) error
	Fail(ctx context.Context, jobID string, message string) error
}
