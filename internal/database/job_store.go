package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"catalogimport/internal/models"
)

// JobStore persists import jobs and doubles as the importer's progress sink.
type JobStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db, now: time.Now}
}

func (s *JobStore) Create(ctx context.Context, job *models.ImportJob) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *JobStore) Get(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

// List returns the most recent jobs first.
func (s *JobStore) List(ctx context.Context, limit int) ([]models.ImportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []models.ImportJob
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (s *JobStore) Processing(ctx context.Context, jobID string) error {
	return s.transition(ctx, jobID, models.ImportStatusProcessing, nil)
}

func (s *JobStore) UpdateProgress(ctx context.Context, jobID string, progress models.ImportProgress) error {
	result := s.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"progress_processed": progress.Processed,
			"progress_total":     progress.Total,
			"progress_step":      progress.Step,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *JobStore) Complete(ctx context.Context, jobID string, stats models.ImportStats) error {
	return s.transition(ctx, jobID, models.ImportStatusCompleted, func(job *models.ImportJob) {
		job.Stats = stats
	})
}

// Fail keeps whatever progress and stats were already recorded.
func (s *JobStore) Fail(ctx context.Context, jobID string, message string) error {
	return s.transition(ctx, jobID, models.ImportStatusFailed, func(job *models.ImportJob) {
		job.Error = &message
	})
}

func (s *JobStore) transition(ctx context.Context, jobID string, to models.ImportStatus, mutate func(*models.ImportJob)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.ImportJob
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			return notFound(err)
		}
		if err := job.Transition(to, s.now()); err != nil {
			return err
		}
		if mutate != nil {
			mutate(&job)
		}
		return tx.Save(&job).Error
	})
}
