package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/orchestrator"
)

// errorBody is the JSON error envelope. Param names the offending query
// parameter when the failure is a filter rejection.
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Param   string `json:"param,omitempty"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode failures after WriteHeader can only be logged by the caller;
	// the DTOs here are plain data and do not fail to marshal.
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)

	var body errorBody
	var aerr *domain.AnalyticsError
	if errors.As(err, &aerr) {
		body.Error.Kind = string(aerr.Kind)
		body.Error.Message = aerr.Message
		body.Error.Param = aerr.Param
		respondJSON(w, aerr.HTTPStatusCode(), body)
		return
	}
	body.Error.Kind = string(domain.ErrorKindInternal)
	body.Error.Message = "internal error"
	respondJSON(w, http.StatusInternalServerError, body)
}

// parseFilters decodes the shared report query parameters. Unknown
// parameters are ignored; malformed values are rejected before any I/O.
func parseFilters(q url.Values) (orchestrator.Filters, error) {
	var f orchestrator.Filters

	var err error
	if f.Unit.InstitutionID, err = parseID(q, "institution_id"); err != nil {
		return f, err
	}
	if f.Unit.CourseID, err = parseID(q, "course_id"); err != nil {
		return f, err
	}
	if f.Unit.ModuleID, err = parseID(q, "module_id"); err != nil {
		return f, err
	}

	if f.Window.Start, err = parseTime(q, "start"); err != nil {
		return f, err
	}
	if f.Window.End, err = parseTime(q, "end"); err != nil {
		return f, err
	}

	f.Granularity = domain.Granularity(q.Get("granularity"))
	f.Metric = domain.RankMetric(q.Get("metric"))

	if f.TopN, err = parseCount(q, "top_n"); err != nil {
		return f, err
	}
	if f.MinOccurrences, err = parseCount(q, "min_occurrences"); err != nil {
		return f, err
	}
	if f.MaxResults, err = parseCount(q, "max_results"); err != nil {
		return f, err
	}

	return f, nil
}

func parseID(q url.Values, name string) (int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidFilter("must be an integer id").WithParam(name)
	}
	return id, nil
}

func parseCount(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidFilter("must be an integer").WithParam(name)
	}
	return n, nil
}

func parseTime(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.ErrInvalidFilter("must be an RFC 3339 timestamp").WithParam(name)
	}
	return t, nil
}

// reportHandler adapts one orchestrator report method into an HTTP
// handler. All report endpoints share the same decode and error shape.
func reportHandler[T any](report func(r *http.Request, caller domain.CallerContext, f orchestrator.Filters) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilters(r.URL.Query())
		if err != nil {
			respondError(w, r, err)
			return
		}
		dto, err := report(r, GetCaller(r.Context()), f)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, dto)
	}
}
