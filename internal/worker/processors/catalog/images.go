package catalog

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"catalogimport/internal/logger"
	"catalogimport/internal/models"
	"catalogimport/internal/services/shopify"
)

// MaxImageBatchSize caps concurrent downloads per product regardless of
// configuration.
const MaxImageBatchSize = 5

// ImageOptions tunes the download pool. BatchSize is clamped to
// MaxImageBatchSize.
type ImageOptions struct {
	BatchSize      int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Denylist       []string
}

// ImagePool downloads product images in fixed-size batches. At most
// BatchSize downloads are in flight at any moment; a batch fully drains
// before the next one starts.
type ImagePool struct {
	store     Store
	blobs     BlobStore
	client    *http.Client
	batchSize int
	denylist  []string
	logger    *logger.Logger
}

func NewImagePool(store Store, blobs BlobStore, opts ImageOptions, log *logger.Logger) *ImagePool {
	if opts.BatchSize <= 0 || opts.BatchSize > MaxImageBatchSize {
		opts.BatchSize = MaxImageBatchSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConnsPerHost:   opts.BatchSize,
	}

	return &ImagePool{
		store: store,
		blobs: blobs,
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.ConnectTimeout + opts.ReadTimeout,
		},
		batchSize: opts.BatchSize,
		denylist:  opts.Denylist,
		logger:    log,
	}
}

// positionCounter hands out image positions for one product. Guarded by the
// accumulator's mutex.
type positionCounter struct {
	next int
}

// FilterImageURLs collects the group's image URLs in first-seen order,
// dropping blanks, duplicates and anything whose URL contains a denylisted
// substring (case-insensitive).
func FilterImageURLs(rows []shopify.ProductRow, denylist []string) []string {
	seen := make(map[string]struct{})
	var urls []string

	for _, row := range rows {
		src := strings.TrimSpace(row.ImageSrc)
		if src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		if denied(src, denylist) {
			continue
		}
		urls = append(urls, src)
	}

	return urls
}

func denied(src string, denylist []string) bool {
	lower := strings.ToLower(src)
	for _, term := range denylist {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Ingest downloads every url and attaches the stored images to product.
func (p *ImagePool) Ingest(ctx context.Context, product *models.Product, urls []string, acc *Accumulator) error {
	if len(urls) == 0 {
		return nil
	}

	existing, err := p.store.CountImages(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("count images of %s: %w", product.Slug, err)
	}
	counter := &positionCounter{next: int(existing)}

	for start := 0; start < len(urls); start += p.batchSize {
		end := start + p.batchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for _, src := range urls[start:end] {
			wg.Add(1)
			go func(src string) {
				defer wg.Done()
				p.fetch(ctx, product, src, counter, acc)
			}(src)
		}
		wg.Wait()
	}

	return nil
}

func (p *ImagePool) fetch(ctx context.Context, product *models.Product, src string, counter *positionCounter, acc *Accumulator) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Image task panicked for %s: %v", src, r)
			acc.Warn("Failed to download image: %s", imageBasename(src))
		}
	}()

	if err := p.download(ctx, product, src, counter, acc); err != nil {
		p.logger.Warn("Image %s for %s failed: %v", src, product.Slug, err)
		var orphan *orphanedBlobError
		if errors.As(err, &orphan) {
			acc.Warn("Failed to download image: %s (stored as %s without a record)", imageBasename(src), orphan.key)
			return
		}
		acc.Warn("Failed to download image: %s", imageBasename(src))
	}
}

// orphanedBlobError is returned when a blob was stored but its image row
// could not be written.
type orphanedBlobError struct {
	key string
	err error
}

func (e *orphanedBlobError) Error() string {
	return fmt.Sprintf("record image %s: %v", e.key, e.err)
}

func (e *orphanedBlobError) Unwrap() error {
	return e.err
}

func (p *ImagePool) download(ctx context.Context, product *models.Product, src string, counter *positionCounter, acc *Accumulator) error {
	filename := imageBasename(src)
	if filename == "" || filename == "." || filename == "/" {
		return fmt.Errorf("no filename in %q", src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := p.blobs.Store(ctx, resp.Body, filename, contentType)
	if err != nil {
		return fmt.Errorf("store blob: %w", err)
	}

	return acc.Locked(func(s *models.ImportStats) error {
		count, err := p.store.CountImages(ctx, product.ID)
		if err != nil {
			return &orphanedBlobError{key: key, err: err}
		}
		image := &models.Image{
			ProductID:   product.ID,
			Key:         key,
			Filename:    filename,
			ContentType: contentType,
			SourceURL:   src,
			Position:    counter.next,
			Primary:     count == 0,
		}
		if err := p.store.CreateImage(ctx, image); err != nil {
			return &orphanedBlobError{key: key, err: err}
		}
		counter.next++
		s.ImagesCreated++
		return nil
	})
}

func imageBasename(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return path.Base(src)
	}
	if u.Path == "" {
		return ""
	}
	return path.Base(u.Path)
}
