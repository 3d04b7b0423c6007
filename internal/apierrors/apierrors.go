// Package apierrors contains the error types shared by the API surface.
package apierrors

import "net/http"

// APIError represents a recoverable error that can be rendered to the caller
// with a proper HTTP status code.
type APIError struct {
	Detail         string      `json:"detail"`
	Meta           interface{} `json:"meta,omitempty"`
	httpStatusCode int
}

// APIErrorOption determines the Functional Options used to create a new APIError.
type APIErrorOption func(apiError *APIError)

// NewAPIError creates a new APIError using the given options.
func NewAPIError(opts ...APIErrorOption) *APIError {
	apiError := &APIError{httpStatusCode: http.StatusInternalServerError}
	for _, opt := range opts {
		opt(apiError)
	}
	return apiError
}

// WithDetail determines the error detail message.
func WithDetail(detail string) APIErrorOption {
	return func(apiError *APIError) {
		apiError.Detail = detail
	}
}

// WithError determines the error detail message from the given error.
func WithError(err error) APIErrorOption {
	return func(apiError *APIError) {
		apiError.Detail = err.Error()
	}
}

// WithMeta attaches structured details to the error.
func WithMeta(meta interface{}) APIErrorOption {
	return func(apiError *APIError) {
		apiError.Meta = meta
	}
}

// WithHTTPStatusCode determines the HTTP status code associated to the error.
func WithHTTPStatusCode(statusCode int) APIErrorOption {
	return func(apiError *APIError) {
		apiError.httpStatusCode = statusCode
	}
}

// HTTPStatusCode gets the HTTP status code associated to the error.
func (a APIError) HTTPStatusCode() int {
	return a.httpStatusCode
}

func (a APIError) Error() string {
	return a.Detail
}

// ValidationError represents an error caused by a malformed or missing input.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (v ValidationError) Error() string {
	return v.Field + " " + v.Reason
}
