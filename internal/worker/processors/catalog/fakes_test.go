package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"catalogimport/internal/database"
	"catalogimport/internal/models"
)

// memStore is an in-memory Store that mimics the gorm store, including the
// placeholder variant created alongside every product.
type memStore struct {
	mu          sync.Mutex
	products    map[string]models.Product
	variants    map[string]models.Variant
	collections map[string]models.Collection
	links       map[string]map[string]struct{}
	images      []models.Image
	imageErr    error
}

func newMemStore() *memStore {
	return &memStore{
		products:    make(map[string]models.Product),
		variants:    make(map[string]models.Variant),
		collections: make(map[string]models.Collection),
		links:       make(map[string]map[string]struct{}),
	}
}

func (s *memStore) FindProductBySlug(_ context.Context, slug string, archived bool) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug && p.Archived == archived {
			p := p
			return &p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) FindProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == product.Slug {
			return fmt.Errorf("duplicate slug %s", product.Slug)
		}
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	s.products[product.ID] = *product

	placeholder := models.Variant{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		SKU:       models.DefaultVariantSKU(product.ID),
		Price:     product.Price,
		Available: true,
		IsDefault: true,
	}
	s.variants[placeholder.ID] = placeholder
	return nil
}

func (s *memStore) UpdateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return database.ErrNotFound
	}
	s.products[product.ID] = *product
	return nil
}

func (s *memStore) DeleteDefaultVariants(_ context.Context, productID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, v := range s.variants {
		if v.ProductID == productID && v.IsDefault {
			delete(s.variants, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) ClearCollections(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, productID)
	return nil
}

func (s *memStore) ExistingSKUs(_ context.Context, skus []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := make(map[string]struct{})
	for _, sku := range skus {
		for _, v := range s.variants {
			if v.SKU == sku {
				known[sku] = struct{}{}
			}
		}
	}
	return known, nil
}

func (s *memStore) CreateVariant(_ context.Context, variant *models.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.variants {
		if v.SKU == variant.SKU {
			return fmt.Errorf("duplicate sku %s", variant.SKU)
		}
	}
	if variant.ID == "" {
		variant.ID = uuid.NewString()
	}
	s.variants[variant.ID] = *variant
	return nil
}

func (s *memStore) UpdateVariant(_ context.Context, variant *models.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[variant.ID] = *variant
	return nil
}

func (s *memStore) ListVariants(_ context.Context, productID string) ([]models.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Variant
	for _, v := range s.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *memStore) FindVariantBySKU(_ context.Context, sku string) (*models.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.variants {
		if v.SKU == sku {
			v := v
			return &v, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) FindCollectionBySlug(_ context.Context, slug string) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.collections {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memStore) CreateCollection(_ context.Context, collection *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	s.collections[collection.ID] = *collection
	return nil
}

func (s *memStore) LinkCollection(_ context.Context, productID, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links[productID] == nil {
		s.links[productID] = make(map[string]struct{})
	}
	if _, dup := s.links[productID][collectionID]; dup {
		return fmt.Errorf("collection %s already linked to %s", collectionID, productID)
	}
	s.links[productID][collectionID] = struct{}{}
	return nil
}

func (s *memStore) CountCollections(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.collections)), nil
}

func (s *memStore) CountImages(_ context.Context, productID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, img := range s.images {
		if img.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateImage(_ context.Context, image *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageErr != nil {
		return s.imageErr
	}
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	s.images = append(s.images, *image)
	return nil
}

func (s *memStore) productBySlug(t *testing.T, slug string) models.Product {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			return p
		}
	}
	t.Fatalf("no product with slug %s", slug)
	return models.Product{}
}

func (s *memStore) linkCount(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links[productID])
}

func (s *memStore) imagesOf(productID string) []models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Image
	for _, img := range s.images {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	return out
}

// memBlobs records stored blobs. Filenames listed in failFor are rejected.
type memBlobs struct {
	mu      sync.Mutex
	stored  map[string][]byte
	failFor map[string]bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{stored: make(map[string][]byte), failFor: make(map[string]bool)}
}

func (b *memBlobs) Store(_ context.Context, body io.Reader, filename, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failFor[filename] {
		return "", errors.New("bucket unavailable")
	}
	key := uuid.NewString() + "-" + filename
	b.stored[key] = data
	return key, nil
}

// recordingSink keeps every lifecycle call for assertions.
type recordingSink struct {
	mu         sync.Mutex
	status     models.ImportStatus
	progress   []models.ImportProgress
	stats      *models.ImportStats
	failure    string
	processErr error
}

func (r *recordingSink) Processing(_ context.Context, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processErr != nil {
		return r.processErr
	}
	r.status = models.ImportStatusProcessing
	return nil
}

func (r *recordingSink) UpdateProgress(_ context.Context, _ string, progress models.ImportProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progress)
	return nil
}

func (r *recordingSink) Complete(_ context.Context, _ string, stats models.ImportStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = models.ImportStatusCompleted
	r.stats = &stats
	return nil
}

func (r *recordingSink) Fail(_ context.Context, _ string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = models.ImportStatusFailed
	r.failure = message
	return nil
}

var productHeader = "Handle,Title,Body (HTML),Variant Price,Variant Grams,Vendor,Type,Status,Variant SKU,Option1 Value,Option2 Value,Option3 Value,Variant Compare At Price,Image Src,Tags"

// writeCSV writes header plus lines to a temp file and returns its path.
func writeCSV(t *testing.T, name, header string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := header + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
