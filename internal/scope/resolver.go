// Package scope computes the set of modules a caller may query. It is the
// single authorization enforcement point of the engine: every orchestrator
// pipeline resolves scope here exactly once before touching the event
// store, and no downstream component ever receives an unscoped query.
package scope

import (
	"context"
	"fmt"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
)

// UnitFilter narrows a request to an explicit organizational unit. Zero
// values mean "not filtered". The resolver intersects the filter with the
// caller's accessible set: a unit outside scope yields an empty
// intersection, never an error and never a fallback to unrestricted data.
type UnitFilter struct {
	InstitutionID int64
	CourseID      int64
	ModuleID      int64
}

// IsZero reports whether no unit filter was supplied.
func (f UnitFilter) IsZero() bool {
	return f.InstitutionID == 0 && f.CourseID == 0 && f.ModuleID == 0
}

// Validate rejects structurally invalid filters before any I/O.
func (f UnitFilter) Validate() error {
	if f.InstitutionID < 0 {
		return domain.ErrInvalidFilter("institution id must be positive").WithParam("institution_id")
	}
	if f.CourseID < 0 {
		return domain.ErrInvalidFilter("course id must be positive").WithParam("course_id")
	}
	if f.ModuleID < 0 {
		return domain.ErrInvalidFilter("module id must be positive").WithParam("module_id")
	}
	return nil
}

// Resolution is the outcome of scope resolution for one request: the
// caller's effective module set plus the catalog snapshot it was derived
// from, reused downstream for enrichment so the catalog is read once per
// request.
type Resolution struct {
	Scope     domain.AccessibleModuleSet
	Hierarchy domain.Hierarchy
}

// Resolver derives visibility scope from the organizational catalog.
type Resolver struct {
	catalog ports.CatalogStore
}

// NewResolver creates a scope resolver over the given catalog.
func NewResolver(catalog ports.CatalogStore) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve computes the caller's accessible module set intersected with the
// optional unit filter.
//
// Role rules:
//   - platform-admin: unrestricted (sentinel, not an enumeration) unless a
//     filter narrows it.
//   - institution-admin: every module whose course belongs to the caller's
//     institution.
//   - instructor: exactly the modules of courses assigned to the caller;
//     zero assignments yield a valid empty scope.
func (r *Resolver) Resolve(ctx context.Context, caller domain.CallerContext, filter UnitFilter) (Resolution, error) {
	if !caller.Role.Valid() {
		return Resolution{}, domain.ErrInvalidCaller(fmt.Sprintf("unknown role %q", caller.Role))
	}
	if caller.Identity == "" {
		return Resolution{}, domain.ErrInvalidCaller("missing caller identity")
	}
	if err := filter.Validate(); err != nil {
		return Resolution{}, err
	}

	hierarchy, err := r.catalog.GetHierarchy(ctx)
	if err != nil {
		return Resolution{}, domain.ErrCatalogUnavailable(err)
	}

	accessible, err := r.accessibleSet(ctx, caller, hierarchy)
	if err != nil {
		return Resolution{}, err
	}

	scoped := intersect(accessible, filter, hierarchy)
	return Resolution{Scope: scoped, Hierarchy: hierarchy}, nil
}

func (r *Resolver) accessibleSet(ctx context.Context, caller domain.CallerContext, h domain.Hierarchy) (domain.AccessibleModuleSet, error) {
	switch caller.Role {
	case domain.RolePlatformAdmin:
		return domain.UnrestrictedScope(), nil

	case domain.RoleInstitutionAdmin:
		if caller.InstitutionID == 0 {
			return domain.AccessibleModuleSet{}, domain.ErrInvalidCaller("institution-admin without institution id")
		}
		return domain.ScopeOf(h.ModulesUnderInstitution(caller.InstitutionID)...), nil

	case domain.RoleInstructor:
		courseIDs, err := r.catalog.GetAssignedCourses(ctx, caller.Identity)
		if err != nil {
			return domain.AccessibleModuleSet{}, domain.ErrCatalogUnavailable(err)
		}
		var moduleIDs []int64
		for _, courseID := range courseIDs {
			moduleIDs = append(moduleIDs, h.ModulesUnderCourse(courseID)...)
		}
		return domain.ScopeOf(moduleIDs...), nil
	}
	return domain.AccessibleModuleSet{}, domain.ErrInvalidCaller(fmt.Sprintf("unknown role %q", caller.Role))
}

// intersect narrows the accessible set by the requested filter. Each
// present filter field constrains the result further; a requested unit the
// caller cannot see produces an empty set, which downstream treats as a
// valid empty report.
func intersect(accessible domain.AccessibleModuleSet, filter UnitFilter, h domain.Hierarchy) domain.AccessibleModuleSet {
	if filter.IsZero() {
		return accessible
	}

	requested := requestedSet(filter, h)
	if accessible.Unrestricted {
		return requested
	}

	out := make(map[int64]struct{})
	for id := range requested.Modules {
		if accessible.Allows(id) {
			out[id] = struct{}{}
		}
	}
	return domain.AccessibleModuleSet{Modules: out}
}

// requestedSet materializes the filter into module IDs. Fields compound:
// an explicit module must also sit under the explicit course and
// institution when those are given.
func requestedSet(filter UnitFilter, h domain.Hierarchy) domain.AccessibleModuleSet {
	out := make(map[int64]struct{})
	for _, m := range h.Modules {
		if filter.ModuleID != 0 && m.ID != filter.ModuleID {
			continue
		}
		if filter.CourseID != 0 && m.CourseID != filter.CourseID {
			continue
		}
		if filter.InstitutionID != 0 {
			c, ok := h.Courses[m.CourseID]
			if !ok || c.InstitutionID != filter.InstitutionID {
				continue
			}
		}
		out[m.ID] = struct{}{}
	}
	return domain.AccessibleModuleSet{Modules: out}
}
