package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalogimport/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestCatalogStore_CreateProductAddsPlaceholderVariant(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	product := &models.Product{Slug: "mug-red", Name: "Red Mug", Price: 1200}
	require.NoError(t, store.CreateProduct(ctx, product))
	require.NotEmpty(t, product.ID)

	variants, err := store.ListVariants(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.True(t, variants[0].IsDefault)
	assert.Equal(t, models.DefaultVariantSKU(product.ID), variants[0].SKU)

	removed, err := store.DeleteDefaultVariants(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	variants, err = store.ListVariants(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestCatalogStore_FindProductBySlugPartitions(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	product := &models.Product{Slug: "old-hat", Name: "Old Hat"}
	require.NoError(t, store.CreateProduct(ctx, product))
	product.Archived = true
	require.NoError(t, store.UpdateProduct(ctx, product))

	_, err := store.FindProductBySlug(ctx, "old-hat", false)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := store.FindProductBySlug(ctx, "old-hat", true)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = store.FindProduct(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogStore_ExistingSKUs(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	product := &models.Product{Slug: "tee", Name: "Tee"}
	require.NoError(t, store.CreateProduct(ctx, product))
	require.NoError(t, store.CreateVariant(ctx, &models.Variant{ProductID: product.ID, SKU: "TEE-S", Available: true}))

	known, err := store.ExistingSKUs(ctx, []string{"TEE-S", "TEE-M"})
	require.NoError(t, err)
	assert.Contains(t, known, "TEE-S")
	assert.NotContains(t, known, "TEE-M")

	known, err = store.ExistingSKUs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, known)

	variant, err := store.FindVariantBySKU(ctx, "TEE-S")
	require.NoError(t, err)
	assert.Equal(t, product.ID, variant.ProductID)

	_, err = store.FindVariantBySKU(ctx, "TEE-XL")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogStore_CollectionLinks(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	product := &models.Product{Slug: "mug", Name: "Mug"}
	require.NoError(t, store.CreateProduct(ctx, product))

	col := &models.Collection{Slug: "kitchen", Name: "Kitchen", Published: true}
	require.NoError(t, store.CreateCollection(ctx, col))

	found, err := store.FindCollectionBySlug(ctx, "kitchen")
	require.NoError(t, err)
	assert.Equal(t, col.ID, found.ID)
	assert.True(t, found.Published)

	require.NoError(t, store.LinkCollection(ctx, product.ID, col.ID))
	require.NoError(t, store.LinkCollection(ctx, product.ID, col.ID))

	ids, err := store.collectionIDs(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{col.ID}, ids)

	require.NoError(t, store.ClearCollections(ctx, product.ID))
	ids, err = store.collectionIDs(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := store.CountCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCatalogStore_Images(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(newTestDB(t))

	product := &models.Product{Slug: "lamp", Name: "Lamp"}
	require.NoError(t, store.CreateProduct(ctx, product))

	count, err := store.CountImages(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.CreateImage(ctx, &models.Image{ProductID: product.ID, Key: "k1", Primary: true}))
	require.NoError(t, store.CreateImage(ctx, &models.Image{ProductID: product.ID, Key: "k2", Position: 1}))

	count, err = store.CountImages(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(newTestDB(t))

	job := &models.ImportJob{ProductsPath: "/tmp/products.csv"}
	require.NoError(t, jobs.Create(ctx, job))
	assert.Equal(t, models.ImportStatusPending, job.Status)

	require.NoError(t, jobs.Processing(ctx, job.ID))
	require.NoError(t, jobs.UpdateProgress(ctx, job.ID, models.ImportProgress{Processed: 1, Total: 2, Step: "Red Mug"}))

	stats := models.ImportStats{ProductsCreated: 1, Warnings: []string{"w"}, CreatedProducts: []string{"Red Mug"}}
	require.NoError(t, jobs.Complete(ctx, job.ID, stats))

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, got.Status)
	assert.Equal(t, 1, got.Progress.Processed)
	assert.Equal(t, 2, got.Progress.Total)
	assert.Equal(t, "Red Mug", got.Progress.Step)
	assert.Equal(t, 1, got.Stats.ProductsCreated)
	assert.Equal(t, []string{"Red Mug"}, got.Stats.CreatedProducts)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.FinishedAt)
	assert.Nil(t, got.Error)

	err = jobs.Fail(ctx, job.ID, "too late")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestJobStore_FailKeepsProgress(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(newTestDB(t))

	job := &models.ImportJob{}
	require.NoError(t, jobs.Create(ctx, job))
	require.NoError(t, jobs.Processing(ctx, job.ID))
	require.NoError(t, jobs.UpdateProgress(ctx, job.ID, models.ImportProgress{Processed: 3, Total: 10, Step: "Processed 3 of 10"}))
	require.NoError(t, jobs.Fail(ctx, job.ID, "read products: boom"))

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "read products: boom", *got.Error)
	assert.Equal(t, 3, got.Progress.Processed)
}

func TestJobStore_UnknownJob(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(newTestDB(t))

	_, err := jobs.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, jobs.Processing(ctx, uuid.NewString()), ErrNotFound)
	assert.ErrorIs(t, jobs.UpdateProgress(ctx, uuid.NewString(), models.ImportProgress{}), ErrNotFound)
}

func TestJobStore_List(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(newTestDB(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, jobs.Create(ctx, &models.ImportJob{}))
	}

	list, err := jobs.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
