package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalogimport/internal/models"
)

// CatalogStore is the gorm implementation of the importer's store.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) FindProductBySlug(ctx context.Context, slug string, archived bool) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("slug = ? AND archived = ?", slug, archived).
		First(&product).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *CatalogStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *CatalogStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (s *CatalogStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// DeleteDefaultVariants removes the auto-generated placeholder variants of a
// product and reports how many went.
func (s *CatalogStore) DeleteDefaultVariants(ctx context.Context, productID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("product_id = ? AND is_default = ?", productID, true).
		Delete(&models.Variant{})
	return result.RowsAffected, result.Error
}

func (s *CatalogStore) ClearCollections(ctx context.Context, productID string) error {
	return s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductCollection{}).Error
}

// ExistingSKUs returns the subset of skus that already belong to a variant.
func (s *CatalogStore) ExistingSKUs(ctx context.Context, skus []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(skus))
	if len(skus) == 0 {
		return known, nil
	}

	var found []string
	err := s.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("sku IN ?", skus).
		Pluck("sku", &found).Error
	if err != nil {
		return nil, err
	}
	for _, sku := range found {
		known[sku] = struct{}{}
	}
	return known, nil
}

func (s *CatalogStore) CreateVariant(ctx context.Context, variant *models.Variant) error {
	return s.db.WithContext(ctx).Create(variant).Error
}

func (s *CatalogStore) UpdateVariant(ctx context.Context, variant *models.Variant) error {
	return s.db.WithContext(ctx).Save(variant).Error
}

func (s *CatalogStore) ListVariants(ctx context.Context, productID string) ([]models.Variant, error) {
	var variants []models.Variant
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&variants).Error
	return variants, err
}

func (s *CatalogStore) FindVariantBySKU(ctx context.Context, sku string) (*models.Variant, error) {
	var variant models.Variant
	if err := s.db.WithContext(ctx).Where("sku = ?", sku).First(&variant).Error; err != nil {
		return nil, notFound(err)
	}
	return &variant, nil
}

func (s *CatalogStore) FindCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&collection).Error; err != nil {
		return nil, notFound(err)
	}
	return &collection, nil
}

func (s *CatalogStore) CreateCollection(ctx context.Context, collection *models.Collection) error {
	return s.db.WithContext(ctx).Create(collection).Error
}

// LinkCollection is a no-op when the link already exists.
func (s *CatalogStore) LinkCollection(ctx context.Context, productID, collectionID string) error {
	link := models.ProductCollection{ProductID: productID, CollectionID: collectionID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

func (s *CatalogStore) CountCollections(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Collection{}).Count(&count).Error
	return count, err
}

func (s *CatalogStore) collectionIDs(ctx context.Context, productID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.ProductCollection{}).
		Where("product_id = ?", productID).
		Pluck("collection_id", &ids).Error
	return ids, err
}

func (s *CatalogStore) CountImages(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

func (s *CatalogStore) CreateImage(ctx context.Context, image *models.Image) error {
	return s.db.WithContext(ctx).Create(image).Error
}
