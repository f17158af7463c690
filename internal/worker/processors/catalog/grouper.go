package catalog

import "catalogimport/internal/services/shopify"

// ProductGroup is every row of one handle, in file order.
type ProductGroup struct {
	Handle string
	Rows   []shopify.ProductRow
}

// GroupRows partitions rows by handle. Groups come back in the order their
// handle was first seen and no row is dropped.
func GroupRows(rows []shopify.ProductRow) []ProductGroup {
	index := make(map[string]int)
	var groups []ProductGroup

	for _, row := range rows {
		i, ok := index[row.Handle]
		if !ok {
			i = len(groups)
			index[row.Handle] = i
			groups = append(groups, ProductGroup{Handle: row.Handle})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	return groups
}

// Title is the display name used in warnings: the first row's title, or the
// handle when the title is blank.
func (g ProductGroup) Title() string {
	if len(g.Rows) > 0 && g.Rows[0].Title != "" {
		return g.Rows[0].Title
	}
	return g.Handle
}

func (g ProductGroup) HasSKU() bool {
	for _, row := range g.Rows {
		if row.HasSKU() {
			return true
		}
	}
	return false
}

// SKUs returns the distinct non-blank SKUs in row order.
func (g ProductGroup) SKUs() []string {
	seen := make(map[string]struct{}, len(g.Rows))
	var skus []string
	for _, row := range g.Rows {
		if !row.HasSKU() {
			continue
		}
		if _, dup := seen[row.SKU]; dup {
			continue
		}
		seen[row.SKU] = struct{}{}
		skus = append(skus, row.SKU)
	}
	return skus
}
