package shopify

// Column headers of a Shopify product export.
const (
	ColumnHandle         = "Handle"
	ColumnTitle          = "Title"
	ColumnBodyHTML       = "Body (HTML)"
	ColumnPrice          = "Variant Price"
	ColumnGrams          = "Variant Grams"
	ColumnVendor         = "Vendor"
	ColumnType           = "Type"
	ColumnStatus         = "Status"
	ColumnSKU            = "Variant SKU"
	ColumnOption1        = "Option1 Value"
	ColumnOption2        = "Option2 Value"
	ColumnOption3        = "Option3 Value"
	ColumnCompareAtPrice = "Variant Compare At Price"
	ColumnImageSrc       = "Image Src"
	ColumnTags           = "Tags"

	ColumnInventorySKU      = "SKU"
	ColumnInventoryQuantity = "Quantity"
)

// ProductColumns lists the headers a product table must carry.
var ProductColumns = []string{
	ColumnHandle, ColumnTitle, ColumnBodyHTML, ColumnPrice, ColumnGrams,
	ColumnVendor, ColumnType, ColumnStatus, ColumnSKU, ColumnOption1,
	ColumnOption2, ColumnOption3, ColumnCompareAtPrice, ColumnImageSrc, ColumnTags,
}

var InventoryColumns = []string{ColumnInventorySKU, ColumnInventoryQuantity}

// ProductRow is one line of a product export: a single variant of the
// product identified by Handle.
type ProductRow struct {
	Line           int
	Handle         string
	Title          string
	BodyHTML       string
	Price          string
	Grams          string
	Vendor         string
	Type           string
	Status         string
	SKU            string
	Option1        string
	Option2        string
	Option3        string
	CompareAtPrice string
	ImageSrc       string
	Tags           string
}

// HasSKU reports whether the row names a variant SKU.
func (r ProductRow) HasSKU() bool {
	return r.SKU != ""
}

// InventoryRow is one line of a stock table.
type InventoryRow struct {
	Line     int
	SKU      string
	Quantity string
}
