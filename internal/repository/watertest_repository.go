package repository

import (
	"context"
	"fmt"
	"net/http"

	"watercare/internal/models"
)

const waterTestsPath = "/watertests"

type waterTestRepository struct {
	client *APIClient
}

// NewWaterTestRepository creates a water test repository backed by the remote API
func NewWaterTestRepository(client *APIClient) WaterTestRepository {
	return &waterTestRepository{client: client}
}

// List retrieves every water test record
func (r *waterTestRepository) List(ctx context.Context) ([]models.CustomerRecord, error) {
	var records []models.CustomerRecord
	if err := r.client.Do(ctx, http.MethodGet, waterTestsPath, nil, &records); err != nil {
		return nil, fmt.Errorf("failed to list water tests: %w", err)
	}

	if records == nil {
		records = []models.CustomerRecord{}
	}
	return records, nil
}

// Create stores a fully built record and returns the record as the API saved it
func (r *waterTestRepository) Create(ctx context.Context, record *models.CustomerRecord) (*models.CustomerRecord, error) {
	created := &models.CustomerRecord{}
	if err := r.client.Do(ctx, http.MethodPost, waterTestsPath, record, created); err != nil {
		return nil, fmt.Errorf("failed to create water test: %w", err)
	}

	// Some backends answer 201 with an empty body
	if created.ID == "" {
		*created = *record
	}
	return created, nil
}

// UpdateServices patches the service ledger fields of one record
func (r *waterTestRepository) UpdateServices(ctx context.Context, id string, update models.ServiceUpdate) (*models.CustomerRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("record id is required")
	}

	updated := &models.CustomerRecord{}
	path := waterTestsPath + "/" + id
	if err := r.client.Do(ctx, http.MethodPatch, path, update, updated); err != nil {
		return nil, fmt.Errorf("failed to update services for %s: %w", id, err)
	}

	if updated.ID == "" {
		return nil, nil
	}
	return updated, nil
}

// Ping checks that the water test collection is reachable
func (r *waterTestRepository) Ping(ctx context.Context) error {
	if err := r.client.Do(ctx, http.MethodHead, waterTestsPath, nil, nil); err != nil {
		return fmt.Errorf("water test api unreachable: %w", err)
	}
	return nil
}
