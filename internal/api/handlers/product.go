package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catalogimport/internal/logger"
	"catalogimport/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProductHandler exposes the imported catalog read-only.
type ProductHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewProductHandler(db *gorm.DB, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		db:     db,
		logger: logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	// Filters
	archived := c.DefaultQuery("archived", "false") == "true"
	search := strings.ToLower(c.Query("search"))

	query := h.db.Model(&models.Product{}).Where("archived = ?", archived)

	if search != "" {
		query = query.Where("LOWER(name) LIKE ? OR slug LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Session(&gorm.Session{}).Count(&total)

	if err := query.Session(&gorm.Session{}).Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		h.logger.Error("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// Get returns one product with its variants, images in position order and
// collections.
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	err := h.db.
		Preload("Variants").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Collections").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
