package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"watercare/internal/service"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code, message and optional per-field messages
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Warning reports a follow-up step that failed after the main operation succeeded
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// WriteCreated writes a 201 Created response with the given data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteOK writes a 200 OK response with the given data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteValidationError writes a 400 Bad Request response with VALIDATION_ERROR code
func WriteValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Fields:  fields,
		},
	})
}

// WriteNotFoundError writes a 404 Not Found response with RESOURCE_NOT_FOUND code
func WriteNotFoundError(w http.ResponseWriter, resource string, id string) {
	message := fmt.Sprintf("%s with ID %s not found", resource, id)
	WriteError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", message)
}

// WriteInternalError writes a 500 response without exposing internal details
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}

// WriteBusinessLogicError writes a 400 Bad Request response with BUSINESS_LOGIC_ERROR code
func WriteBusinessLogicError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "BUSINESS_LOGIC_ERROR", message)
}

// WriteRemoteError writes a 502 Bad Gateway response coded with the failed remote operation
func WriteRemoteError(w http.ResponseWriter, e *service.RemoteError) {
	WriteError(w, http.StatusBadGateway, string(e.Kind), remoteMessage(e.Kind))
}

// HandleServiceError maps service layer errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		notFound   *service.NotFoundError
		validation *service.ValidationError
		business   *service.BusinessLogicError
		remote     *service.RemoteError
	)

	switch {
	case errors.As(err, &notFound):
		WriteNotFoundError(w, notFound.Resource, notFound.ID)
	case errors.As(err, &validation):
		WriteValidationError(w, validation.Message, validation.Fields)
	case errors.As(err, &business):
		WriteBusinessLogicError(w, business.Message)
	case errors.As(err, &remote):
		log.Error().Err(remote.Err).Str("kind", string(remote.Kind)).Str("op", remote.Op).Msg("Remote API call failed")
		WriteRemoteError(w, remote)
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		WriteInternalError(w)
	}
}

// warningsFrom turns follow-up errors into response warnings, skipping nils
func warningsFrom(errs ...error) []Warning {
	var warnings []Warning
	for _, err := range errs {
		if err == nil {
			continue
		}
		var remote *service.RemoteError
		if errors.As(err, &remote) {
			warnings = append(warnings, Warning{Code: string(remote.Kind), Message: remoteMessage(remote.Kind)})
			continue
		}
		warnings = append(warnings, Warning{Code: "WARNING", Message: err.Error()})
	}
	return warnings
}

func remoteMessage(kind service.RemoteErrorKind) string {
	switch kind {
	case service.FetchFailed:
		return "Could not load records from the water test API"
	case service.CreateFailed:
		return "Could not save the water test entry"
	case service.UpdateFailed:
		return "Could not record the service visit"
	case service.NotificationFailed:
		return "Entry saved, but the WhatsApp notification could not be sent"
	default:
		return "The water test API request failed"
	}
}
