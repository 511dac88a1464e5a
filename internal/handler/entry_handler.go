package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"watercare/internal/models"
	"watercare/internal/service"
)

// EntryCreatedResponse is returned after a water test entry is saved
type EntryCreatedResponse struct {
	Record           models.CustomerRecord `json:"record"`
	NotificationSent bool                  `json:"notificationSent"`
	Warnings         []Warning             `json:"warnings,omitempty"`
}

// EntryHandler handles the intake form submission
type EntryHandler struct {
	intake *service.IntakeService
	log    zerolog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(intake *service.IntakeService, log zerolog.Logger) *EntryHandler {
	return &EntryHandler{
		intake: intake,
		log:    log,
	}
}

// Create handles POST /entries
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.EntryDraft

	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		if errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	result, err := h.intake.Submit(r.Context(), draft)
	if err != nil {
		HandleServiceError(w, h.log, err)
		return
	}

	WriteCreated(w, EntryCreatedResponse{
		Record:           result.Record,
		NotificationSent: result.NotificationErr == nil,
		Warnings:         warningsFrom(result.NotificationErr, result.RefreshErr),
	})
}
