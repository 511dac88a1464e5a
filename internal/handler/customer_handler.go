package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"watercare/internal/models"
	"watercare/internal/service"
)

// ServiceLoggedResponse is returned after a free service visit is recorded
type ServiceLoggedResponse struct {
	Customer *service.CustomerDetail `json:"customer"`
	Warnings []Warning               `json:"warnings,omitempty"`
}

// RefreshResponse is returned after a manual store refresh
type RefreshResponse struct {
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loadedAt"`
}

// CustomerHandler serves the dashboard list, detail view and service ledger
type CustomerHandler struct {
	dashboard *service.DashboardService
	ledger    *service.LedgerService
	store     service.RecordStore
	log       zerolog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(
	dashboard *service.DashboardService,
	ledger *service.LedgerService,
	store service.RecordStore,
	log zerolog.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		dashboard: dashboard,
		ledger:    ledger,
		store:     store,
		log:       log,
	}
}

// List handles GET /customers.
// A q parameter selects free-text search; otherwise installed, place and date filter.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var listQuery service.ListQuery
	if query.Has("q") {
		q := query.Get("q")
		listQuery.Search = &q
	} else {
		listQuery.Criteria = models.FilterCriteria{
			InstallationStatus: models.InstallationStatus(query.Get("installed")),
			Place:              query.Get("place"),
			Date:               query.Get("date"),
		}
	}

	result, err := h.dashboard.List(listQuery)
	if err != nil {
		HandleServiceError(w, h.log, err)
		return
	}

	WriteOK(w, result)
}

// Get handles GET /customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	detail, err := h.dashboard.Detail(id)
	if err != nil {
		HandleServiceError(w, h.log, err)
		return
	}

	WriteOK(w, detail)
}

// AddService handles POST /customers/{id}/services - logs one free service visit dated today
func (h *CustomerHandler) AddService(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.ledger.AddService(r.Context(), id)
	if err != nil {
		HandleServiceError(w, h.log, err)
		return
	}

	WriteOK(w, ServiceLoggedResponse{
		Customer: service.NewCustomerDetail(result.Record),
		Warnings: warningsFrom(result.RefreshErr),
	})
}

// Refresh handles POST /refresh - reloads every record from the remote API
func (h *CustomerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.Refresh(r.Context()); err != nil {
		HandleServiceError(w, h.log, err)
		return
	}

	WriteOK(w, RefreshResponse{
		Records:  len(h.store.All()),
		LoadedAt: h.store.LoadedAt(),
	})
}
