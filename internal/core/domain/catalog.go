package domain

import "github.com/shopspring/decimal"

// Institution is the top of the organizational hierarchy.
type Institution struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course belongs to exactly one institution.
type Course struct {
	ID            int64  `json:"id"`
	InstitutionID int64  `json:"institution_id"`
	Name          string `json:"name"`
}

// Module belongs to exactly one course.
type Module struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Name     string `json:"name"`
}

// Hierarchy is a read-only snapshot of the organizational catalog, fetched
// once per request. Lookup maps are keyed by unit ID.
type Hierarchy struct {
	Institutions map[int64]Institution
	Courses      map[int64]Course
	Modules      map[int64]Module
}

// ModulesUnderInstitution returns the IDs of every module whose course
// belongs to the given institution.
func (h Hierarchy) ModulesUnderInstitution(institutionID int64) []int64 {
	var ids []int64
	for _, m := range h.Modules {
		if c, ok := h.Courses[m.CourseID]; ok && c.InstitutionID == institutionID {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// ModulesUnderCourse returns the IDs of every module in the given course.
func (h Hierarchy) ModulesUnderCourse(courseID int64) []int64 {
	var ids []int64
	for _, m := range h.Modules {
		if m.CourseID == courseID {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// PricingEntry maps a (provider, model) pair to per-million-token costs.
// Managed externally; unique on (Provider, ModelName). A missing entry
// means "cost unknown", never an error.
type PricingEntry struct {
	Provider                   string          `json:"provider"`
	ModelName                  string          `json:"model_name"`
	InputCostPerMillionTokens  decimal.Decimal `json:"input_cost_per_million_tokens"`
	OutputCostPerMillionTokens decimal.Decimal `json:"output_cost_per_million_tokens"`
	IsActive                   bool            `json:"is_active"`
}
