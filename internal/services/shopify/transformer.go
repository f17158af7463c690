package shopify

import (
	"fmt"
	"strings"

	"catalogimport/internal/models"

	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	ouncesPerGram = decimal.RequireFromString("0.035274")
)

type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformProduct builds the catalog product described by a handle's rows.
// Descriptive and pricing fields come from the first row; the SKU prefix
// comes from the first row that carries a SKU.
func (t *Transformer) TransformProduct(rows []ProductRow) (*models.Product, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to transform")
	}
	first := rows[0]

	price, err := t.ToMinorUnits(first.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price for %s: %w", first.Handle, err)
	}

	weight, err := t.GramsToOunces(first.Grams)
	if err != nil {
		return nil, fmt.Errorf("invalid weight for %s: %w", first.Handle, err)
	}

	name := first.Title
	if name == "" {
		name = first.Handle
	}

	product := &models.Product{
		Slug:        first.Handle,
		Name:        name,
		Description: first.BodyHTML,
		Price:       price,
		Weight:      weight,
		Vendor:      first.Vendor,
		ProductType: first.Type,
		Published:   t.IsPublished(first.Status),
	}

	for _, row := range rows {
		if row.HasSKU() {
			product.SKUPrefix = t.SKUPrefix(row.SKU)
			break
		}
	}

	return product, nil
}

// TransformVariant converts a row with a SKU into a variant of productID.
func (t *Transformer) TransformVariant(productID string, row ProductRow) (*models.Variant, error) {
	price, err := t.ToMinorUnits(row.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price for SKU %s: %w", row.SKU, err)
	}

	weight, err := t.GramsToOunces(row.Grams)
	if err != nil {
		return nil, fmt.Errorf("invalid weight for SKU %s: %w", row.SKU, err)
	}

	variant := &models.Variant{
		ProductID: productID,
		SKU:       row.SKU,
		Name:      t.VariantName(row),
		Option1:   row.Option1,
		Option2:   row.Option2,
		Option3:   row.Option3,
		Price:     price,
		Weight:    weight,
		Available: true,
	}

	if row.CompareAtPrice != "" {
		compareAt, err := t.ToMinorUnits(row.CompareAtPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid compare at price for SKU %s: %w", row.SKU, err)
		}
		variant.CompareAtPrice = &compareAt
	}

	return variant, nil
}

// ToMinorUnits converts a currency amount such as "12.00" to cents.
// A blank amount is zero.
func (t *Transformer) ToMinorUnits(amount string) (int64, error) {
	amount = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(amount))
	if amount == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, err
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// GramsToOunces converts a gram weight to ounces rounded to two decimals.
func (t *Transformer) GramsToOunces(grams string) (float64, error) {
	grams = strings.TrimSpace(grams)
	if grams == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return 0, err
	}
	return d.Mul(ouncesPerGram).Round(2).InexactFloat64(), nil
}

// SKUPrefix returns the part of the SKU before its first hyphen.
func (t *Transformer) SKUPrefix(sku string) string {
	prefix, _, _ := strings.Cut(sku, "-")
	return prefix
}

func (t *Transformer) IsPublished(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "active")
}

func (t *Transformer) VariantName(row ProductRow) string {
	var parts []string
	for _, opt := range []string{row.Option1, row.Option2, row.Option3} {
		if opt != "" {
			parts = append(parts, opt)
		}
	}
	if len(parts) == 0 {
		return row.SKU
	}
	return strings.Join(parts, " / ")
}

// SplitTags splits a comma-separated tag list, trimming blanks away.
func (t *Transformer) SplitTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Slugify lowercases s, turns whitespace and underscores into single hyphens
// and drops everything that is not a letter, digit or hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == ' ' || r == '_' || r == '\t':
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
