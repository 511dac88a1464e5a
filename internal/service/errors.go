package service

import "fmt"

// RemoteErrorKind classifies a failed call to the remote API
type RemoteErrorKind string

const (
	FetchFailed        RemoteErrorKind = "FETCH_FAILED"
	CreateFailed       RemoteErrorKind = "CREATE_FAILED"
	UpdateFailed       RemoteErrorKind = "UPDATE_FAILED"
	NotificationFailed RemoteErrorKind = "NOTIFICATION_FAILED"
)

// RemoteError represents a failed remote API operation
type RemoteError struct {
	Kind RemoteErrorKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// ValidationError represents a validation error.
// Fields maps the JSON field name to a human-readable message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// BusinessLogicError represents a business logic error
type BusinessLogicError struct {
	Message string
}

func (e *BusinessLogicError) Error() string {
	return fmt.Sprintf("business logic error: %s", e.Message)
}
