package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"watercare/internal/config"
	"watercare/internal/models"
	"watercare/internal/repository"
)

// LedgerResult is the outcome of logging a free service visit.
// RefreshErr is set when the visit was recorded but the store could not be reloaded.
type LedgerResult struct {
	Record     models.CustomerRecord
	RefreshErr error
}

// LedgerService logs free service visits against customer records
type LedgerService struct {
	repo   repository.WaterTestRepository
	store  RecordStore
	policy string
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// NewLedgerService creates a new ledger service. policy is config.RefreshPolicyRefresh or
// config.RefreshPolicyMerge.
func NewLedgerService(
	repo repository.WaterTestRepository,
	store RecordStore,
	policy string,
	loc *time.Location,
	logger zerolog.Logger,
) *LedgerService {
	if policy == "" {
		policy = config.RefreshPolicyRefresh
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		repo:   repo,
		store:  store,
		policy: policy,
		loc:    loc,
		now:    time.Now,
		logger: logger.With().Str("service", "ledger").Logger(),
	}
}

// AddService records one free service visit dated today.
// The store only changes after the remote API confirms the update.
func (s *LedgerService) AddService(ctx context.Context, id string) (*LedgerResult, error) {
	record, ok := s.store.Get(id)
	if !ok {
		return nil, &NotFoundError{Resource: "customer record", ID: id}
	}

	if !record.HasServicesRemaining() {
		return nil, &BusinessLogicError{Message: "no free services remaining"}
	}

	today := s.now().In(s.loc).Format(models.DateLayout)
	next := record.WithService(today)

	confirmed, err := s.repo.UpdateServices(ctx, id, models.ServiceUpdate{
		ServicesDone:   next.ServicesDone,
		ServiceHistory: next.ServiceHistory,
	})
	if err != nil {
		// Deleted remotely since the last load: drop it from the store too
		if repository.IsNotFound(err) {
			s.logger.Warn().Str("record_id", id).Msg("Record no longer exists remotely")
			if refreshErr := refreshStore(ctx, s.store); refreshErr != nil {
				s.logger.Warn().Err(refreshErr).Msg("Refresh after missing record failed")
			}
			return nil, &NotFoundError{Resource: "customer record", ID: id}
		}
		s.logger.Error().Err(err).Str("record_id", id).Msg("Failed to log service")
		return nil, &RemoteError{Kind: UpdateFailed, Op: "add service", Err: err}
	}
	if confirmed == nil {
		confirmed = &next
	}

	s.logger.Info().
		Str("record_id", id).
		Int("services_done", confirmed.ServicesDone).
		Int("free_services_total", confirmed.FreeServicesTotal).
		Msg("Service logged")

	result := &LedgerResult{Record: *confirmed}

	if s.policy == config.RefreshPolicyMerge {
		s.store.Upsert(*confirmed)
		return result, nil
	}

	if err := refreshStore(ctx, s.store); err != nil {
		s.logger.Warn().Err(err).Str("record_id", id).Msg("Service logged but refresh failed")
		result.RefreshErr = err
		return result, nil
	}
	if fresh, ok := s.store.Get(id); ok {
		result.Record = fresh
	}
	return result, nil
}
