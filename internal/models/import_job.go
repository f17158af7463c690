package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("invalid import job transition")

type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s ImportStatus) Terminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

type ImportProgress struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Step      string `json:"step"`
}

type ImportStats struct {
	ProductsCreated    int      `json:"products_created"`
	ProductsSkipped    int      `json:"products_skipped"`
	VariantsCreated    int      `json:"variants_created"`
	VariantsSkipped    int      `json:"variants_skipped"`
	ImagesCreated      int      `json:"images_created"`
	CollectionsCreated int      `json:"collections_created"`
	TotalCollections   int64    `json:"total_collections"`
	InventoryUpdated   int      `json:"inventory_updated"`
	Warnings           []string `json:"warnings"`
	CreatedProducts    []string `json:"created_products"`
}

type ImportJob struct {
	ID            string         `json:"id" gorm:"type:uuid;primaryKey"`
	Status        ImportStatus   `json:"status" gorm:"index;not null;default:pending"`
	Progress      ImportProgress `json:"progress" gorm:"embedded;embeddedPrefix:progress_"`
	Stats         ImportStats    `json:"stats" gorm:"serializer:json"`
	Error         *string        `json:"error,omitempty"`
	ProductsPath  string         `json:"-"`
	InventoryPath string         `json:"-"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (j *ImportJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.Status == "" {
		j.Status = ImportStatusPending
	}
	return nil
}

// Transition moves the job along pending -> processing -> completed|failed.
func (j *ImportJob) Transition(to ImportStatus, at time.Time) error {
	allowed := false
	switch to {
	case ImportStatusProcessing:
		allowed = j.Status == ImportStatusPending
	case ImportStatusCompleted:
		allowed = j.Status == ImportStatusProcessing
	case ImportStatusFailed:
		// a job that never got going can still be failed
		allowed = !j.Status.Terminal()
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}

	j.Status = to
	switch to {
	case ImportStatusProcessing:
		j.StartedAt = &at
	case ImportStatusCompleted, ImportStatusFailed:
		j.FinishedAt = &at
	}
	return nil
}
