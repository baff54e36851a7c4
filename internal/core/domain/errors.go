// Package domain holds the core types of the analytics engine: events,
// caller scope, catalog snapshots, report DTOs, and the error taxonomy.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind categorizes analytics errors. Only caller errors surface as
// hard failures; storage-layer partial failures degrade the response
// instead (see ReportMeta).
type ErrorKind string

const (
	// ErrorKindInvalidFilter indicates a filter combination rejected
	// before any I/O was performed.
	ErrorKindInvalidFilter ErrorKind = "invalid_filter"

	// ErrorKindInvalidCaller indicates a caller context with an unknown
	// role or missing identity.
	ErrorKindInvalidCaller ErrorKind = "invalid_caller"

	// ErrorKindCatalogUnavailable indicates the catalog snapshot could
	// not be read at all; without it scope cannot be resolved.
	ErrorKindCatalogUnavailable ErrorKind = "catalog_unavailable"

	// ErrorKindEventStore indicates every partition scan failed, leaving
	// nothing to aggregate.
	ErrorKindEventStore ErrorKind = "event_store"

	// ErrorKindInternal is the fallback for unexpected failures.
	ErrorKindInternal ErrorKind = "internal"
)

// AnalyticsError is the typed error returned by orchestrator operations.
type AnalyticsError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Param names the filter field that caused a caller error, if any.
	Param string `json:"param,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *AnalyticsError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Param, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *AnalyticsError) Unwrap() error {
	return e.cause
}

// HTTPStatusCode maps the error kind to a transport status code.
func (e *AnalyticsError) HTTPStatusCode() int {
	switch e.Kind {
	case ErrorKindInvalidFilter, ErrorKindInvalidCaller:
		return http.StatusBadRequest
	case ErrorKindCatalogUnavailable, ErrorKindEventStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithParam records the offending filter field.
func (e *AnalyticsError) WithParam(param string) *AnalyticsError {
	e.Param = param
	return e
}

// WithCause attaches an underlying error.
func (e *AnalyticsError) WithCause(err error) *AnalyticsError {
	e.cause = err
	return e
}

// ErrInvalidFilter creates a caller error for a rejected filter combination.
func ErrInvalidFilter(message string) *AnalyticsError {
	return &AnalyticsError{Kind: ErrorKindInvalidFilter, Message: message}
}

// ErrInvalidCaller creates a caller error for a malformed caller context.
func ErrInvalidCaller(message string) *AnalyticsError {
	return &AnalyticsError{Kind: ErrorKindInvalidCaller, Message: message}
}

// ErrCatalogUnavailable creates an error for a failed catalog snapshot.
func ErrCatalogUnavailable(err error) *AnalyticsError {
	return &AnalyticsError{Kind: ErrorKindCatalogUnavailable, Message: "catalog snapshot failed", cause: err}
}

// ErrEventStore creates an error for a total event-store failure.
func ErrEventStore(err error) *AnalyticsError {
	return &AnalyticsError{Kind: ErrorKindEventStore, Message: "all partition scans failed", cause: err}
}
