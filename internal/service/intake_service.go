package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"watercare/internal/models"
	"watercare/internal/repository"
)

// IntakeResult is the outcome of a submitted entry. The record exists whenever a result is
// returned; NotificationErr and RefreshErr report the follow-up steps that failed.
type IntakeResult struct {
	Record          models.CustomerRecord
	NotificationErr error
	RefreshErr      error
}

// IntakeService validates, builds and submits new water test entries
type IntakeService struct {
	repo       repository.WaterTestRepository
	store      RecordStore
	dispatcher Dispatcher
	validate   *validator.Validate
	now        func() time.Time
	newID      func() string
	logger     zerolog.Logger
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	repo repository.WaterTestRepository,
	store RecordStore,
	dispatcher Dispatcher,
	logger zerolog.Logger,
) *IntakeService {
	return &IntakeService{
		repo:       repo,
		store:      store,
		dispatcher: dispatcher,
		validate:   newValidator(),
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     logger.With().Str("service", "intake").Logger(),
	}
}

// Submit creates the record, then requests the admin notification, then refreshes the store.
// A create failure aborts everything; later failures leave the record in place.
func (s *IntakeService) Submit(ctx context.Context, draft models.EntryDraft) (*IntakeResult, error) {
	record, err := s.Build(draft)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		s.logger.Error().Err(err).Str("customer", record.CustomerName).Msg("Failed to create water test")
		return nil, &RemoteError{Kind: CreateFailed, Op: "create water test", Err: err}
	}

	log := s.logger.With().Str("record_id", created.ID).Logger()
	log.Info().Bool("filter_installed", created.FilterInstalled).Msg("Water test created")

	result := &IntakeResult{Record: *created}

	if err := s.dispatcher.Dispatch(ctx, created); err != nil {
		log.Error().Err(err).Msg("Notification failed, record kept")
		result.NotificationErr = &RemoteError{Kind: NotificationFailed, Op: "send whatsapp", Err: err}
	}

	if err := refreshStore(ctx, s.store); err != nil {
		log.Warn().Err(err).Msg("Water test created but refresh failed")
		result.RefreshErr = err
	}

	return result, nil
}

// Build validates draft and constructs the full record with a new id and timestamp
func (s *IntakeService) Build(draft models.EntryDraft) (*models.CustomerRecord, error) {
	draft = NormalizeDraft(draft)
	if err := s.Validate(draft); err != nil {
		return nil, err
	}
	record := NewRecord(draft, s.now(), s.newID())
	return &record, nil
}

// Validate checks a normalized draft and reports every invalid field
func (s *IntakeService) Validate(draft models.EntryDraft) error {
	fields := map[string]string{}

	if err := s.validate.Struct(draft); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, e := range validationErrors {
			fields[e.Field()] = validationMessage(e)
		}
	}

	for field, value := range map[string]string{"tds": draft.TDS, "ironPPM": draft.IronPPM} {
		if _, failed := fields[field]; failed {
			continue
		}
		if msg := checkReading(value); msg != "" {
			fields[field] = msg
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Message: "entry has invalid fields", Fields: fields}
	}
	return nil
}

// NormalizeDraft trims input, fills enum defaults and drops filter details when no filter was installed
func NormalizeDraft(draft models.EntryDraft) models.EntryDraft {
	draft.CustomerName = strings.TrimSpace(draft.CustomerName)
	draft.Mobile = strings.TrimSpace(draft.Mobile)
	draft.Place = strings.TrimSpace(draft.Place)
	draft.TDS = strings.TrimSpace(draft.TDS)
	draft.IronPPM = strings.TrimSpace(draft.IronPPM)
	draft.Remarks = strings.TrimSpace(draft.Remarks)
	draft.FilterImage = strings.TrimSpace(draft.FilterImage)
	draft.InstallationDate = strings.TrimSpace(draft.InstallationDate)

	if draft.WaterSource == "" {
		draft.WaterSource = models.WaterSourceBorewell
	}
	if draft.PipelineType == "" {
		draft.PipelineType = models.PipelineTypePVC
	}

	if !draft.FilterInstalled {
		draft.FilterImage = ""
		draft.InstallationDate = ""
	}
	return draft
}

// NewRecord builds the record stored for a validated draft
func NewRecord(draft models.EntryDraft, now time.Time, id string) models.CustomerRecord {
	freeServices := 0
	if draft.FilterInstalled {
		freeServices = models.FreeServicesPerInstall
	}

	return models.CustomerRecord{
		ID:                id,
		CustomerName:      draft.CustomerName,
		Mobile:            draft.Mobile,
		Place:             draft.Place,
		WaterSource:       draft.WaterSource,
		TDS:               draft.TDS,
		IronPPM:           draft.IronPPM,
		PipelineType:      draft.PipelineType,
		Remarks:           draft.Remarks,
		FilterInstalled:   draft.FilterInstalled,
		FilterImage:       draft.FilterImage,
		InstallationDate:  draft.InstallationDate,
		FreeServicesTotal: freeServices,
		ServicesDone:      0,
		ServiceHistory:    []string{},
		CreatedAt:         now.UTC(),
	}
}

// checkReading validates a water quality reading as a non-negative decimal
func checkReading(value string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "Must be a number"
	}
	if d.IsNegative() {
		return "Must not be negative"
	}
	return ""
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so field errors match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "len":
		if e.Field() == "mobile" {
			return "Must be exactly " + e.Param() + " digits"
		}
		return "Must be exactly " + e.Param() + " characters"
	case "number":
		return "Must contain only digits"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "url":
		return "Invalid URL format"
	case "datetime":
		return "Must be a date in YYYY-MM-DD format"
	default:
		return "Invalid value"
	}
}
