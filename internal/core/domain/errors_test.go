package domain

import (
	"errors"
	"net/http"
	"testing"
)

func TestAnalyticsError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AnalyticsError
		expected string
	}{
		{
			name:     "kind and message",
			err:      &AnalyticsError{Kind: ErrorKindInvalidFilter, Message: "start after end"},
			expected: "invalid_filter: start after end",
		},
		{
			name:     "kind, param, and message",
			err:      &AnalyticsError{Kind: ErrorKindInvalidFilter, Param: "start", Message: "not a timestamp"},
			expected: "invalid_filter (start): not a timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAnalyticsError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *AnalyticsError
		expected int
	}{
		{
			name:     "invalid filter",
			err:      &AnalyticsError{Kind: ErrorKindInvalidFilter},
			expected: http.StatusBadRequest,
		},
		{
			name:     "invalid caller",
			err:      &AnalyticsError{Kind: ErrorKindInvalidCaller},
			expected: http.StatusBadRequest,
		},
		{
			name:     "catalog unavailable",
			err:      &AnalyticsError{Kind: ErrorKindCatalogUnavailable},
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "event store",
			err:      &AnalyticsError{Kind: ErrorKindEventStore},
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "internal",
			err:      &AnalyticsError{Kind: ErrorKindInternal},
			expected: http.StatusInternalServerError,
		},
		{
			name:     "unknown kind",
			err:      &AnalyticsError{Kind: ErrorKind("unknown")},
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.expected {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAnalyticsError_WithParam(t *testing.T) {
	err := ErrInvalidFilter("unknown granularity").WithParam("granularity")
	if err.Param != "granularity" {
		t.Errorf("Param = %q, want %q", err.Param, "granularity")
	}
	if err.Kind != ErrorKindInvalidFilter {
		t.Errorf("Kind = %v, want %v", err.Kind, ErrorKindInvalidFilter)
	}
}

func TestAnalyticsError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrCatalogUnavailable(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	var aerr *AnalyticsError
	if !errors.As(error(err), &aerr) {
		t.Fatal("errors.As failed to match *AnalyticsError")
	}
	if aerr.Kind != ErrorKindCatalogUnavailable {
		t.Errorf("Kind = %v, want %v", aerr.Kind, ErrorKindCatalogUnavailable)
	}
}

func TestAnalyticsError_WithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrInvalidFilter("bad window").WithCause(cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name         string
		err          *AnalyticsError
		expectedKind ErrorKind
		wantCause    bool
	}{
		{
			name:         "ErrInvalidFilter",
			err:          ErrInvalidFilter("bad filter"),
			expectedKind: ErrorKindInvalidFilter,
		},
		{
			name:         "ErrInvalidCaller",
			err:          ErrInvalidCaller("missing role"),
			expectedKind: ErrorKindInvalidCaller,
		},
		{
			name:         "ErrCatalogUnavailable",
			err:          ErrCatalogUnavailable(errors.New("db down")),
			expectedKind: ErrorKindCatalogUnavailable,
			wantCause:    true,
		},
		{
			name:         "ErrEventStore",
			err:          ErrEventStore(errors.New("scan failed")),
			expectedKind: ErrorKindEventStore,
			wantCause:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.expectedKind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.expectedKind)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
			if got := tt.err.Unwrap() != nil; got != tt.wantCause {
				t.Errorf("Unwrap() != nil = %v, want %v", got, tt.wantCause)
			}
		})
	}
}
