package catalog

import (
	"fmt"
	"sync"

	"catalogimport/internal/models"
)

// Accumulator owns the run's stats. Every mutation goes through its mutex,
// which is also the critical section the image pool uses for position
// assignment.
type Accumulator struct {
	mu    sync.Mutex
	stats models.ImportStats
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		stats: models.ImportStats{
			Warnings:        []string{},
			CreatedProducts: []string{},
		},
	}
}

// Locked runs fn while holding the accumulator's mutex.
func (a *Accumulator) Locked(fn func(s *models.ImportStats) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(&a.stats)
}

func (a *Accumulator) update(fn func(s *models.ImportStats)) {
	a.mu.Lock()
	fn(&a.stats)
	a.mu.Unlock()
}

func (a *Accumulator) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	a.update(func(s *models.ImportStats) {
		s.Warnings = append(s.Warnings, msg)
	})
}

func (a *Accumulator) ProductCreated(name string) {
	a.update(func(s *models.ImportStats) {
		s.ProductsCreated++
		s.CreatedProducts = append(s.CreatedProducts, name)
	})
}

func (a *Accumulator) ProductSkipped(warning string) {
	a.update(func(s *models.ImportStats) {
		s.ProductsSkipped++
		s.Warnings = append(s.Warnings, warning)
	})
}

func (a *Accumulator) VariantCreated() {
	a.update(func(s *models.ImportStats) { s.VariantsCreated++ })
}

func (a *Accumulator) VariantSkipped(warning string) {
	a.update(func(s *models.ImportStats) {
		s.VariantsSkipped++
		if warning != "" {
			s.Warnings = append(s.Warnings, warning)
		}
	})
}

func (a *Accumulator) CollectionCreated() {
	a.update(func(s *models.ImportStats) { s.CollectionsCreated++ })
}

func (a *Accumulator) InventoryUpdated() {
	a.update(func(s *models.ImportStats) { s.InventoryUpdated++ })
}

// Snapshot returns a copy that is safe to hand to other goroutines.
func (a *Accumulator) Snapshot() models.ImportStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.stats
	out.Warnings = append([]string{}, a.stats.Warnings...)
	out.CreatedProducts = append([]string{}, a.stats.CreatedProducts...)
	return out
}
