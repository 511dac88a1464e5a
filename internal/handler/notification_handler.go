package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"watercare/internal/models"
	"watercare/internal/service"
)

// NotificationListResponse lists the dispatch attempts of one record
type NotificationListResponse struct {
	RecordID   string                         `json:"recordId"`
	Dispatches []*models.NotificationDispatch `json:"dispatches"`
}

// NotificationHandler exposes the worker's dispatch log
type NotificationHandler struct {
	history *service.NotificationHistory
	log     zerolog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(history *service.NotificationHistory, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{history: history, log: log}
}

// List handles GET /customers/{id}/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	dispatches, err := h.history.List(r.Context(), id)
	if err != nil {
		HandleServiceError(w, h.log, err)
		return
	}

	WriteOK(w, NotificationListResponse{RecordID: id, Dispatches: dispatches})
}
