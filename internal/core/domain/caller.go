package domain

// Role is the authorization role attached to a caller by the upstream
// auth layer. The engine never authenticates; it only derives visibility
// scope from an already-authenticated context.
type Role string

const (
	// RolePlatformAdmin sees every organizational unit.
	RolePlatformAdmin Role = "platform-admin"

	// RoleInstitutionAdmin sees every module under their institution.
	RoleInstitutionAdmin Role = "institution-admin"

	// RoleInstructor sees only modules of courses explicitly assigned to them.
	RoleInstructor Role = "instructor"
)

// Valid reports whether the role is one the engine recognizes.
func (r Role) Valid() bool {
	switch r {
	case RolePlatformAdmin, RoleInstitutionAdmin, RoleInstructor:
		return true
	}
	return false
}

// CallerContext identifies the caller for one analytics request. It is
// constructed once by the transport layer and passed by value; nothing
// downstream mutates it.
type CallerContext struct {
	Identity      string `json:"identity"`
	Role          Role   `json:"role"`
	InstitutionID int64  `json:"institution_id,omitempty"` // zero for platform-admin
}

// AccessibleModuleSet is the materialized visibility scope for one request.
// Unrestricted is a sentinel for platform-admin scope; it avoids
// enumerating every module in the catalog. The set is immutable once
// built and must never be cached across requests with different callers.
type AccessibleModuleSet struct {
	Unrestricted bool
	Modules      map[int64]struct{}
}

// UnrestrictedScope returns the universal scope.
func UnrestrictedScope() AccessibleModuleSet {
	return AccessibleModuleSet{Unrestricted: true}
}

// ScopeOf builds a restricted scope over the given module IDs.
func ScopeOf(moduleIDs ...int64) AccessibleModuleSet {
	m := make(map[int64]struct{}, len(moduleIDs))
	for _, id := range moduleIDs {
		m[id] = struct{}{}
	}
	return AccessibleModuleSet{Modules: m}
}

// Allows reports whether the scope covers the given module.
func (s AccessibleModuleSet) Allows(moduleID int64) bool {
	if s.Unrestricted {
		return true
	}
	_, ok := s.Modules[moduleID]
	return ok
}

// IsEmpty reports whether the scope covers no modules at all. An empty
// scope is a valid state (an instructor with no assignments), not an error.
func (s AccessibleModuleSet) IsEmpty() bool {
	return !s.Unrestricted && len(s.Modules) == 0
}

// Len returns the number of modules in a restricted scope. Zero for the
// unrestricted sentinel, which does not enumerate modules.
func (s AccessibleModuleSet) Len() int {
	return len(s.Modules)
}
