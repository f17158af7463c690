package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID                string            `json:"id" gorm:"type:uuid;primaryKey"`
	Slug              string            `json:"slug" gorm:"uniqueIndex;not null"`
	Name              string            `json:"name" gorm:"not null"`
	Description       string            `json:"description"`
	Price             int64             `json:"price"`
	Weight            float64           `json:"weight"`
	Vendor            string            `json:"vendor"`
	ProductType       string            `json:"product_type"`
	SKUPrefix         string            `json:"sku_prefix"`
	Archived          bool              `json:"archived" gorm:"index;default:false"`
	Published         bool              `json:"published" gorm:"default:false"`
	InventoryTracking InventoryTracking `json:"inventory_tracking" gorm:"default:none"`
	StockQuantity     int               `json:"stock_quantity"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	Variants    []Variant    `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	Images      []Image      `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Collections []Collection `json:"collections,omitempty" gorm:"many2many:product_collections"`
}

type InventoryTracking string

const (
	InventoryTrackingNone    InventoryTracking = "none"
	InventoryTrackingProduct InventoryTracking = "product"
	InventoryTrackingVariant InventoryTracking = "variant"
)

type Variant struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID      string    `json:"product_id" gorm:"type:uuid;index;not null"`
	SKU            string    `json:"sku" gorm:"uniqueIndex;not null"`
	Name           string    `json:"name"`
	Option1        string    `json:"option1"`
	Option2        string    `json:"option2"`
	Option3        string    `json:"option3"`
	Price          int64     `json:"price"`
	CompareAtPrice *int64    `json:"compare_at_price"`
	Cost           int64     `json:"cost"`
	Weight         float64   `json:"weight"`
	StockQuantity  int       `json:"stock_quantity"`
	Available      bool      `json:"available"`
	IsDefault      bool      `json:"is_default" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Image struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID   string    `json:"product_id" gorm:"type:uuid;index;not null"`
	Key         string    `json:"key" gorm:"not null"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SourceURL   string    `json:"source_url"`
	Position    int       `json:"position"`
	Primary     bool      `json:"primary"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultVariantSKU is the SKU given to the placeholder variant every new
// product starts with.
func DefaultVariantSKU(productID string) string {
	return "default-" + productID
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.InventoryTracking == "" {
		p.InventoryTracking = InventoryTrackingNone
	}
	return nil
}

// AfterCreate gives every new product a purchasable placeholder variant so
// the product is never variant-less. Importers remove it once real variants
// exist.
func (p *Product) AfterCreate(tx *gorm.DB) error {
	placeholder := Variant{
		ProductID: p.ID,
		SKU:       DefaultVariantSKU(p.ID),
		Name:      "Default",
		Price:     p.Price,
		Weight:    p.Weight,
		Available: true,
		IsDefault: true,
	}
	return tx.Create(&placeholder).Error
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
