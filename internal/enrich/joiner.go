// Package enrich attaches catalog display names to aggregated numeric
// results. Lookups run against the request's hierarchy snapshot, so
// enrichment is a pure in-memory join: one bulk catalog read per request,
// never an N+1 lookup.
package enrich

import (
	"fmt"

	"github.com/courseloop/insights/internal/core/domain"
)

// Joiner resolves unit identifiers to display names.
type Joiner struct {
	hierarchy domain.Hierarchy
}

// New creates a joiner over a hierarchy snapshot.
func New(hierarchy domain.Hierarchy) *Joiner {
	return &Joiner{hierarchy: hierarchy}
}

// ModuleLabels is the display-name triple for one module.
type ModuleLabels struct {
	Module      string
	Course      string
	Institution string
}

// Module resolves the name chain for a module ID. A unit deleted from the
// catalog after its events were recorded gets a placeholder label instead
// of failing the report.
func (j *Joiner) Module(id int64) ModuleLabels {
	labels := ModuleLabels{
		Module:      placeholder("module", id),
		Course:      "unknown course",
		Institution: "unknown institution",
	}

	m, ok := j.hierarchy.Modules[id]
	if !ok {
		return labels
	}
	labels.Module = m.Name

	c, ok := j.hierarchy.Courses[m.CourseID]
	if !ok {
		labels.Course = placeholder("course", m.CourseID)
		return labels
	}
	labels.Course = c.Name

	inst, ok := j.hierarchy.Institutions[c.InstitutionID]
	if !ok {
		labels.Institution = placeholder("institution", c.InstitutionID)
		return labels
	}
	labels.Institution = inst.Name
	return labels
}

func placeholder(kind string, id int64) string {
	return fmt.Sprintf("%s %d (removed)", kind, id)
}
