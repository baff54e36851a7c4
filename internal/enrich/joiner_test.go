package enrich

import (
	"testing"

	"github.com/courseloop/insights/internal/core/domain"
)

func testHierarchy() domain.Hierarchy {
	return domain.Hierarchy{
		Institutions: map[int64]domain.Institution{
			1: {ID: 1, Name: "Northfield"},
		},
		Courses: map[int64]domain.Course{
			1: {ID: 1, InstitutionID: 1, Name: "Calculus"},
			2: {ID: 2, InstitutionID: 9, Name: "Orphaned Course"},
		},
		Modules: map[int64]domain.Module{
			5: {ID: 5, CourseID: 1, Name: "Limits"},
			6: {ID: 6, CourseID: 3, Name: "Orphaned Module"},
			7: {ID: 7, CourseID: 2, Name: "Half Orphaned"},
		},
	}
}

func TestModule_FullChain(t *testing.T) {
	j := New(testHierarchy())

	labels := j.Module(5)
	if labels.Module != "Limits" || labels.Course != "Calculus" || labels.Institution != "Northfield" {
		t.Errorf("labels = %+v, want Limits/Calculus/Northfield", labels)
	}
}

func TestModule_MissingModule(t *testing.T) {
	j := New(testHierarchy())

	labels := j.Module(404)
	if labels.Module != "module 404 (removed)" {
		t.Errorf("module label = %q, want placeholder", labels.Module)
	}
}

func TestModule_MissingCourse(t *testing.T) {
	j := New(testHierarchy())

	labels := j.Module(6)
	if labels.Module != "Orphaned Module" {
		t.Errorf("module label = %q, want Orphaned Module", labels.Module)
	}
	if labels.Course != "course 3 (removed)" {
		t.Errorf("course label = %q, want placeholder", labels.Course)
	}
}

func TestModule_MissingInstitution(t *testing.T) {
	j := New(testHierarchy())

	labels := j.Module(7)
	if labels.Institution != "institution 9 (removed)" {
		t.Errorf("institution label = %q, want placeholder", labels.Institution)
	}
}
