package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"catalogimport/internal/database"
	"catalogimport/internal/logger"
	"catalogimport/internal/models"
	"catalogimport/internal/services/progress"
	"catalogimport/internal/worker/processors/catalog"
	"catalogimport/internal/worker/processors/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Get(ctx context.Context, id string) (*models.ImportJob, error)
	List(ctx context.Context, limit int) ([]models.ImportJob, error)
	Fail(ctx context.Context, jobID string, message string) error
}

type ImportPublisher interface {
	PublishImport(ctx context.Context, req catalog.Request) error
}

// LiveProgress returns the most recent pushed update of a running job.
type LiveProgress interface {
	Latest(ctx context.Context, jobID string) (*progress.Update, error)
}

type ImportHandler struct {
	jobs      JobRepository
	publisher ImportPublisher
	validator *validation.Validator
	live      LiveProgress
	uploadDir string
	logger    *logger.Logger
}

// NewImportHandler wires the import endpoints. live may be nil.
func NewImportHandler(jobs JobRepository, publisher ImportPublisher, validator *validation.Validator, live LiveProgress, uploadDir string, logger *logger.Logger) *ImportHandler {
	return &ImportHandler{
		jobs:      jobs,
		publisher: publisher,
		validator: validator,
		live:      live,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Create accepts a multipart upload with a "products" and/or "inventory"
// table and queues the import.
func (h *ImportHandler) Create(c *gin.Context) {
	productsPath, err := h.saveUpload(c, "products")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inventoryPath, err := h.saveUpload(c, "inventory")
	if err != nil {
		removeFiles(productsPath)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.validator.ValidateUpload(productsPath, inventoryPath); err != nil {
		removeFiles(productsPath, inventoryPath)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := &models.ImportJob{
		ProductsPath:  productsPath,
		InventoryPath: inventoryPath,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		removeFiles(productsPath, inventoryPath)
		h.logger.Error("Failed to create import job: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	req := catalog.Request{JobID: job.ID, ProductsPath: productsPath, InventoryPath: inventoryPath}
	if err := h.publisher.PublishImport(c.Request.Context(), req); err != nil {
		h.logger.Error("Failed to queue import %s: %v", job.ID, err)
		removeFiles(productsPath, inventoryPath)
		if ferr := h.jobs.Fail(c.Request.Context(), job.ID, "could not be queued"); ferr != nil {
			h.logger.Error("Failed to mark job %s failed: %v", job.ID, ferr)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Import queue unavailable"})
		return
	}

	h.logger.WithField("job_id", job.ID).Info("Import queued")
	c.JSON(http.StatusAccepted, gin.H{"data": job})
}

func (h *ImportHandler) Get(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch import"})
		return
	}

	resp := gin.H{"data": job}
	if h.live != nil && job.Status == models.ImportStatusProcessing {
		update, err := h.live.Latest(c.Request.Context(), job.ID)
		switch {
		case err == nil:
			resp["live"] = update
		case !errors.Is(err, progress.ErrNoUpdate):
			h.logger.Warn("Failed to read live progress for %s: %v", job.ID, err)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ImportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	jobs, err := h.jobs.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch imports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

// saveUpload stores the named form file under the upload dir. A missing
// field is not an error and yields an empty path.
func (h *ImportHandler) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	dst := filepath.Join(h.uploadDir, uploadName(field, file))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func uploadName(field string, file *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	return uuid.New().String() + "-" + field + ext
}

func removeFiles(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}
