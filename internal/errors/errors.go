package errors

import "fmt"

// APIError is the error body returned by the JSON endpoints
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Status is the HTTP status the error maps to
func (e *APIError) Status() int {
	return e.Code.StatusCode()
}

// WithDetails returns a copy carrying extra context
func (e *APIError) WithDetails(details string) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

func NotFound(resource string) *APIError {
	return &APIError{Code: ErrNotFound, Message: resource + " not found"}
}

func InternalError(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return &APIError{Code: ErrInternalError, Message: message}
}

func ServiceUnavailable(service string) *APIError {
	return &APIError{Code: ErrServiceUnavail, Message: service + " is unavailable"}
}
