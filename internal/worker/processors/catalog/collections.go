package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalogimport/internal/database"
	"catalogimport/internal/models"
	"catalogimport/internal/services/shopify"
)

// CollectionCache memoizes collections by slug for the duration of one run.
// It is only touched from the sequential part of the pipeline.
type CollectionCache struct {
	bySlug map[string]*models.Collection
}

func NewCollectionCache() *CollectionCache {
	return &CollectionCache{bySlug: make(map[string]*models.Collection)}
}

func (c *CollectionCache) Get(slug string) (*models.Collection, bool) {
	col, ok := c.bySlug[slug]
	return col, ok
}

func (c *CollectionCache) Put(col *models.Collection) {
	c.bySlug[col.Slug] = col
}

func (c *CollectionCache) Len() int {
	return len(c.bySlug)
}

// CollectionTagger turns a product's tag list into collection links.
type CollectionTagger struct {
	store       Store
	transformer *shopify.Transformer
}

func NewCollectionTagger(store Store, transformer *shopify.Transformer) *CollectionTagger {
	return &CollectionTagger{store: store, transformer: transformer}
}

// Tag links product to one collection per distinct tag slug, creating
// collections that do not exist yet.
func (t *CollectionTagger) Tag(ctx context.Context, tags string, cache *CollectionCache, product *models.Product, acc *Accumulator) error {
	linked := make(map[string]struct{})

	for _, tag := range t.transformer.SplitTags(tags) {
		slug := shopify.Slugify(tag)
		if slug == "" {
			acc.Warn("Tag %q on %s has no usable characters, skipped", tag, product.Name)
			continue
		}

		col, err := t.resolve(ctx, slug, tag, cache, acc)
		if err != nil {
			return err
		}

		if _, done := linked[col.ID]; done {
			continue
		}
		if err := t.store.LinkCollection(ctx, product.ID, col.ID); err != nil {
			return fmt.Errorf("link %s to collection %s: %w", product.Slug, col.Slug, err)
		}
		linked[col.ID] = struct{}{}
	}

	return nil
}

func (t *CollectionTagger) resolve(ctx context.Context, slug, name string, cache *CollectionCache, acc *Accumulator) (*models.Collection, error) {
	if col, ok := cache.Get(slug); ok {
		return col, nil
	}

	col, err := t.store.FindCollectionBySlug(ctx, slug)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound):
		col = &models.Collection{Slug: slug, Name: name, Published: true}
		if err := t.store.CreateCollection(ctx, col); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", slug, err)
		}
		acc.CollectionCreated()
	default:
		return nil, fmt.Errorf("find collection %s: %w", slug, err)
	}

	cache.Put(col)
	return col, nil
}
