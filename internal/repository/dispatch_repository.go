package repository

import (
	"context"
	"fmt"

	"watercare/internal/models"
)

type dispatchRepository struct {
	db DB
}

// NewDispatchRepository creates a new notification dispatch repository
func NewDispatchRepository(db DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

// Create records a new dispatch attempt
func (r *dispatchRepository) Create(ctx context.Context, dispatch *models.NotificationDispatch) error {
	query := `
		INSERT INTO notification_dispatches (job_id, record_id, mobile, channel, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		dispatch.JobID,
		dispatch.RecordID,
		dispatch.Mobile,
		dispatch.Channel,
		dispatch.Status,
	).Scan(&dispatch.ID, &dispatch.CreatedAt, &dispatch.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create dispatch: %w", err)
	}

	return nil
}

// UpdateStatus updates dispatch status and error
func (r *dispatchRepository) UpdateStatus(ctx context.Context, id int, status models.DispatchStatus, lastError *string) error {
	query := `
		UPDATE notification_dispatches
		SET status = $1, last_error = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to update dispatch status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("dispatch %d not found", id)
	}

	return nil
}

// ListByRecord retrieves the dispatch history of one water test record, newest first
func (r *dispatchRepository) ListByRecord(ctx context.Context, recordID string) ([]*models.NotificationDispatch, error) {
	query := `
		SELECT id, job_id, record_id, mobile, channel, status, last_error, created_at, updated_at
		FROM notification_dispatches
		WHERE record_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatches: %w", err)
	}
	defer rows.Close()

	dispatches := []*models.NotificationDispatch{}
	for rows.Next() {
		dispatch := &models.NotificationDispatch{}
		err := rows.Scan(
			&dispatch.ID,
			&dispatch.JobID,
			&dispatch.RecordID,
			&dispatch.Mobile,
			&dispatch.Channel,
			&dispatch.Status,
			&dispatch.LastError,
			&dispatch.CreatedAt,
			&dispatch.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}
		dispatches = append(dispatches, dispatch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dispatches: %w", err)
	}

	return dispatches, nil
}
