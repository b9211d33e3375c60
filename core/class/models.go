package class

import (
	"time"

	"github.com/trezcool/classtrack/core"
)

// Semesters
const (
	SemesterFall   = "Fall"
	SemesterSpring = "Spring"
	SemesterSummer = "Summer"
	SemesterWinter = "Winter"
)

var Semesters = []string{SemesterFall, SemesterSpring, SemesterSummer, SemesterWinter}

type Class struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	AcademicYear string `json:"academic_year"` // free-text, e.g. "2023-2024"
	Semester     string `json:"semester"`

	// StudentIDs is denormalized from Student.ClassIDs and stored as
	// received; Student.ClassIDs is the source of truth and the two are not
	// kept in sync.
	StudentIDs []string  `json:"student_ids"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name         string   `json:"name" validate:"required"`
	Subject      string   `json:"subject" validate:"required"`
	AcademicYear string   `json:"academic_year" validate:"required"`
	Semester     string   `json:"semester" validate:"required,semester"`
	StudentIDs   []string `json:"student_ids"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Subject = core.CleanString(nc.Subject)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	return core.Validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	AcademicYear string    `json:"academic_year"`
	Semester     string    `json:"semester" validate:"omitempty,semester"`
	StudentIDs   []string  `json:"student_ids"`
	UpdatedAt    time.Time `json:"-"`
}

func (uc *UpdateClass) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	uc.Subject = core.CleanString(uc.Subject)
	uc.AcademicYear = core.CleanString(uc.AcademicYear)
	return core.Validate.Struct(uc)
}

// Merge applies the supplied fields onto orig and returns the result.
func (uc UpdateClass) Merge(orig Class) Class {
	if uc.Name != "" {
		orig.Name = uc.Name
	}
	if uc.Subject != "" {
		orig.Subject = uc.Subject
	}
	if uc.AcademicYear != "" {
		orig.AcademicYear = uc.AcademicYear
	}
	if uc.Semester != "" {
		orig.Semester = uc.Semester
	}
	if uc.StudentIDs != nil {
		orig.StudentIDs = uc.StudentIDs
	}
	if !uc.UpdatedAt.IsZero() {
		orig.UpdatedAt = uc.UpdatedAt
	}
	return orig
}
