package validation

import (
	"errors"
	"fmt"

	"catalogimport/internal/logger"
	"catalogimport/internal/services/shopify"
)

var ErrNoInput = errors.New("at least one of products or inventory is required")

// Error reports an uploaded table that cannot be imported.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validator checks uploaded tables before a job is queued, so a malformed
// header is reported to the uploader instead of failing the job later.
type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidateUpload checks whichever of the two tables were provided.
func (v *Validator) ValidateUpload(productsPath, inventoryPath string) error {
	if productsPath == "" && inventoryPath == "" {
		return &Error{Field: "products", Err: ErrNoInput}
	}
	if productsPath != "" {
		if err := v.check("products", productsPath, shopify.ProductColumns); err != nil {
			return err
		}
	}
	if inventoryPath != "" {
		if err := v.check("inventory", inventoryPath, shopify.InventoryColumns); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) check(field, path string, required []string) error {
	if err := shopify.CheckHeader(path, required); err != nil {
		v.logger.Debug("Rejected %s upload %s: %v", field, path, err)
		return &Error{Field: field, Err: err}
	}
	return nil
}
