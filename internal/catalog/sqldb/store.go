// Package sqldb is the relational catalog adapter: the organizational
// hierarchy, instructor assignments, and unit-economics pricing live in a
// small SQLite database read in bulk once per request.
package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
)

// Store implements ports.CatalogStore over SQLite.
type Store struct {
	db *sqlx.DB
}

var _ ports.CatalogStore = (*Store)(nil)

// New opens (or creates) the catalog database at path.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS institutions (
id INTEGER PRIMARY KEY,
name TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS courses (
id INTEGER PRIMARY KEY,
institution_id INTEGER NOT NULL,
name TEXT NOT NULL,
FOREIGN KEY (institution_id) REFERENCES institutions(id)
)`,
		`CREATE TABLE IF NOT EXISTS modules (
id INTEGER PRIMARY KEY,
course_id INTEGER NOT NULL,
name TEXT NOT NULL,
FOREIGN KEY (course_id) REFERENCES courses(id)
)`,
		`CREATE TABLE IF NOT EXISTS instructor_courses (
instructor_id TEXT NOT NULL,
course_id INTEGER NOT NULL,
PRIMARY KEY (instructor_id, course_id),
FOREIGN KEY (course_id) REFERENCES courses(id)
)`,
		`CREATE TABLE IF NOT EXISTS model_pricing (
provider TEXT NOT NULL,
model_name TEXT NOT NULL,
input_cost_per_million TEXT NOT NULL,
output_cost_per_million TEXT NOT NULL,
is_active INTEGER NOT NULL DEFAULT 1,
PRIMARY KEY (provider, model_name)
)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_institution ON courses(institution_id)`,
		`CREATE INDEX IF NOT EXISTS idx_modules_course ON modules(course_id)`,
		`CREATE INDEX IF NOT EXISTS idx_instructor_courses_instructor ON instructor_courses(instructor_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// GetHierarchy implements ports.CatalogStore with three bulk reads.
func (s *Store) GetHierarchy(ctx context.Context) (domain.Hierarchy, error) {
	h := domain.Hierarchy{
		Institutions: make(map[int64]domain.Institution),
		Courses:      make(map[int64]domain.Course),
		Modules:      make(map[int64]domain.Module),
	}

	var institutions []domain.Institution
	if err := s.db.SelectContext(ctx, &institutions, `SELECT id, name FROM institutions`); err != nil {
		return domain.Hierarchy{}, fmt.Errorf("failed to load institutions: %w", err)
	}
	for _, inst := range institutions {
		h.Institutions[inst.ID] = inst
	}

	type courseRow struct {
		ID            int64  `db:"id"`
		InstitutionID int64  `db:"institution_id"`
		Name          string `db:"name"`
	}
	var courses []courseRow
	if err := s.db.SelectContext(ctx, &courses, `SELECT id, institution_id, name FROM courses`); err != nil {
		return domain.Hierarchy{}, fmt.Errorf("failed to load courses: %w", err)
	}
	for _, c := range courses {
		h.Courses[c.ID] = domain.Course{ID: c.ID, InstitutionID: c.InstitutionID, Name: c.Name}
	}

	type moduleRow struct {
		ID       int64  `db:"id"`
		CourseID int64  `db:"course_id"`
		Name     string `db:"name"`
	}
	var modules []moduleRow
	if err := s.db.SelectContext(ctx, &modules, `SELECT id, course_id, name FROM modules`); err != nil {
		return domain.Hierarchy{}, fmt.Errorf("failed to load modules: %w", err)
	}
	for _, m := range modules {
		h.Modules[m.ID] = domain.Module{ID: m.ID, CourseID: m.CourseID, Name: m.Name}
	}

	return h, nil
}

// GetAssignedCourses implements ports.CatalogStore.
func (s *Store) GetAssignedCourses(ctx context.Context, instructorID string) ([]int64, error) {
	var courseIDs []int64
	err := s.db.SelectContext(ctx, &courseIDs,
		`SELECT course_id FROM instructor_courses WHERE instructor_id = ? ORDER BY course_id`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructor assignments: %w", err)
	}
	return courseIDs, nil
}

// GetActivePricing implements ports.CatalogStore. Costs are stored as
// decimal strings so no precision is lost in the database round trip.
func (s *Store) GetActivePricing(ctx context.Context) ([]domain.PricingEntry, error) {
	type pricingRow struct {
		Provider             string `db:"provider"`
		ModelName            string `db:"model_name"`
		InputCostPerMillion  string `db:"input_cost_per_million"`
		OutputCostPerMillion string `db:"output_cost_per_million"`
	}
	var rows []pricingRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT provider, model_name, input_cost_per_million, output_cost_per_million
		 FROM model_pricing WHERE is_active = 1 ORDER BY provider, model_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing: %w", err)
	}

	entries := make([]domain.PricingEntry, 0, len(rows))
	for _, r := range rows {
		in, err := decimal.NewFromString(r.InputCostPerMillion)
		if err != nil {
			return nil, fmt.Errorf("invalid input cost for %s/%s: %w", r.Provider, r.ModelName, err)
		}
		out, err := decimal.NewFromString(r.OutputCostPerMillion)
		if err != nil {
			return nil, fmt.Errorf("invalid output cost for %s/%s: %w", r.Provider, r.ModelName, err)
		}
		entries = append(entries, domain.PricingEntry{
			Provider:                   r.Provider,
			ModelName:                  r.ModelName,
			InputCostPerMillionTokens:  in,
			OutputCostPerMillionTokens: out,
			IsActive:                   true,
		})
	}
	return entries, nil
}

// Close implements ports.CatalogStore.
func (s *Store) Close() error {
	return s.db.Close()
}

// The write methods below exist for the seed tool and tests; catalog CRUD
// in production belongs to the external catalog service.

// UpsertInstitution inserts or renames an institution.
func (s *Store) UpsertInstitution(ctx context.Context, inst domain.Institution) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO institutions (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`, inst.ID, inst.Name)
	return err
}

// UpsertCourse inserts or updates a course.
func (s *Store) UpsertCourse(ctx context.Context, c domain.Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, institution_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET institution_id = excluded.institution_id, name = excluded.name`,
		c.ID, c.InstitutionID, c.Name)
	return err
}

// UpsertModule inserts or updates a module.
func (s *Store) UpsertModule(ctx context.Context, m domain.Module) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id, course_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET course_id = excluded.course_id, name = excluded.name`,
		m.ID, m.CourseID, m.Name)
	return err
}

// AssignInstructor links an instructor to a course.
func (s *Store) AssignInstructor(ctx context.Context, instructorID string, courseID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO instructor_courses (instructor_id, course_id) VALUES (?, ?)`,
		instructorID, courseID)
	return err
}

// UpsertPricing inserts or updates a pricing entry.
func (s *Store) UpsertPricing(ctx context.Context, e domain.PricingEntry) error {
	active := 0
	if e.IsActive {
		active = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO model_pricing (provider, model_name, input_cost_per_million, output_cost_per_million, is_active)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(provider, model_name) DO UPDATE SET
		   input_cost_per_million = excluded.input_cost_per_million,
		   output_cost_per_million = excluded.output_cost_per_million,
		   is_active = excluded.is_active`,
		e.Provider, e.ModelName, e.InputCostPerMillionTokens.String(), e.OutputCostPerMillionTokens.String(), active)
	return err
}
