package shopify

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// table is a header-indexed set of records read from a CSV or XLSX file.
type table struct {
	index   map[string]int
	records [][]string
}

func (t *table) get(record []string, column string) string {
	idx, ok := t.index[normalizeHeader(column)]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// ReadProducts loads a product export from a .csv or .xlsx file.
func ReadProducts(path string) ([]ProductRow, error) {
	t, err := loadTable(path, ProductColumns)
	if err != nil {
		return nil, err
	}
	return t.productRows(), nil
}

// ReadInventory loads a SKU/Quantity table from a .csv or .xlsx file.
func ReadInventory(path string) ([]InventoryRow, error) {
	t, err := loadTable(path, InventoryColumns)
	if err != nil {
		return nil, err
	}
	return t.inventoryRows(), nil
}

// CheckHeader verifies the file parses and carries every required column.
func CheckHeader(path string, required []string) error {
	_, err := loadTable(path, required)
	return err
}

func (t *table) productRows() []ProductRow {
	rows := make([]ProductRow, 0, len(t.records))
	for i, rec := range t.records {
		rows = append(rows, ProductRow{
			Line:           i + 2,
			Handle:         t.get(rec, ColumnHandle),
			Title:          t.get(rec, ColumnTitle),
			BodyHTML:       t.get(rec, ColumnBodyHTML),
			Price:          t.get(rec, ColumnPrice),
			Grams:          t.get(rec, ColumnGrams),
			Vendor:         t.get(rec, ColumnVendor),
			Type:           t.get(rec, ColumnType),
			Status:         t.get(rec, ColumnStatus),
			SKU:            t.get(rec, ColumnSKU),
			Option1:        t.get(rec, ColumnOption1),
			Option2:        t.get(rec, ColumnOption2),
			Option3:        t.get(rec, ColumnOption3),
			CompareAtPrice: t.get(rec, ColumnCompareAtPrice),
			ImageSrc:       t.get(rec, ColumnImageSrc),
			Tags:           t.get(rec, ColumnTags),
		})
	}
	return rows
}

func (t *table) inventoryRows() []InventoryRow {
	rows := make([]InventoryRow, 0, len(t.records))
	for i, rec := range t.records {
		rows = append(rows, InventoryRow{
			Line:     i + 2,
			SKU:      t.get(rec, ColumnInventorySKU),
			Quantity: t.get(rec, ColumnInventoryQuantity),
		})
	}
	return rows
}

func loadTable(path string, required []string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
		}
		defer f.Close()
		return parseCSV(f, required)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
		}
		defer f.Close()
		return parseXLSX(f, required)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func parseCSV(r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", len(records)+2, err)
		}
		records = append(records, record)
	}

	return newTable(headers, records, required)
}

func parseXLSX(r io.Reader, required []string) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRecord(row) {
			continue
		}
		records = append(records, row)
	}

	return newTable(rows[0], records, required)
}

func newTable(headers []string, records [][]string, required []string) (*table, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := normalizeHeader(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return &table{index: index, records: records}, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
