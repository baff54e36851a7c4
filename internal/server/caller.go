package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/courseloop/insights/internal/core/domain"
)

// Trusted headers set by the upstream auth gateway. The engine never
// authenticates; it only decodes an already-authenticated identity.
const (
	HeaderCallerRole        = "X-Caller-Role"
	HeaderCallerInstitution = "X-Caller-Institution"
	HeaderCallerID          = "X-Caller-Id"
)

// callerContextKey is the context key for the decoded caller.
type callerContextKey struct{}

// CallerMiddleware decodes the upstream auth headers into a CallerContext
// and rejects requests that carry no usable identity. Scope enforcement
// itself happens downstream in the resolver; this layer only translates
// transport to domain.
func CallerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := domain.CallerContext{
			Identity: r.Header.Get(HeaderCallerID),
			Role:     domain.Role(r.Header.Get(HeaderCallerRole)),
		}
		if caller.Identity == "" || !caller.Role.Valid() {
			respondError(w, r, domain.ErrInvalidCaller("missing or unknown caller identity"))
			return
		}

		if raw := r.Header.Get(HeaderCallerInstitution); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id < 0 {
				respondError(w, r, domain.ErrInvalidCaller("malformed institution header"))
				return
			}
			caller.InstitutionID = id
		}
		if caller.Role == domain.RoleInstitutionAdmin && caller.InstitutionID == 0 {
			respondError(w, r, domain.ErrInvalidCaller("institution-admin requires an institution"))
			return
		}

		AddLogField(r.Context(), "caller_role", string(caller.Role))
		ctx := context.WithValue(r.Context(), callerContextKey{}, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCaller retrieves the decoded caller from context. The zero value
// means the middleware did not run.
func GetCaller(ctx context.Context) domain.CallerContext {
	caller, _ := ctx.Value(callerContextKey{}).(domain.CallerContext)
	return caller
}
