package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type PostgresJobRepository struct {
	db *gorm.DB
}

func NewPostgresJobRepository(db *gorm.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

// Migrate creates or updates the jobs table.
func (r *PostgresJobRepository) Migrate() error {
	if err := r.db.AutoMigrate(&Job{}); err != nil {
		return fmt.Errorf("failed to migrate jobs: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) Create(ctx context.Context, taskType string, payload json.RawMessage) (*Job, error) {
	job := &Job{
		TaskType: taskType,
		Payload:  payload,
		Status:   JobStatusPending,
	}

	result := r.db.WithContext(ctx).Create(job)
	if result.Error != nil {
		return nil, result.Error
	}

	return job, nil
}

func (r *PostgresJobRepository) Get(ctx context.Context, id int) (*Job, error) {
	var job Job
	result := r.db.WithContext(ctx).First(&job, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &job, nil
}

func (r *PostgresJobRepository) UpdateStatus(ctx context.Context, id int, status JobStatus, err *string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status": status,
		"error":  err,
	})
}

func (r *PostgresJobRepository) Complete(ctx context.Context, id int, result json.RawMessage) error {
	return r.update(ctx, id, map[string]interface{}{
		"status": JobStatusCompleted,
		"result": []byte(result),
		"error":  nil,
	})
}

func (r *PostgresJobRepository) update(ctx context.Context, id int, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}
