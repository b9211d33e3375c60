package student

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/classtrack/core"
)

type Student struct {
	ID             int       `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	StudentID      string    `json:"student_id"` // human-readable code, not unique-enforced
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	DateOfBirth    time.Time `json:"date_of_birth,omitempty"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	ClassIDs       []string  `json:"class_ids"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// InClass reports whether the student is enrolled in the class.
// ClassIDs holds string identifiers; ids coming from other entities are ints.
func (s Student) InClass(classID string) bool {
	for _, id := range s.ClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

func (s Student) InClassID(classID int) bool {
	return s.InClass(strconv.Itoa(classID))
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name" validate:"required"`
	StudentID      string    `json:"student_id" validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	Phone          string    `json:"phone"`
	PhotoURL       string    `json:"photo_url" validate:"omitempty,url"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	ClassIDs       []string  `json:"class_ids"`
}

func (ns *NewStudent) Validate() error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Empty fields are left untouched; a nil ClassIDs keeps the prior
// enrollment, an empty non-nil slice clears it.
type UpdateStudent struct {
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	StudentID      string    `json:"student_id"`
	Email          string    `json:"email" validate:"omitempty,email"`
	Phone          string    `json:"phone"`
	PhotoURL       string    `json:"photo_url" validate:"omitempty,url"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	ClassIDs       []string  `json:"class_ids"`
	UpdatedAt      time.Time `json:"-"`
}

func (us *UpdateStudent) Validate() error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.StudentID = core.CleanString(us.StudentID)
	us.Email = core.CleanString(us.Email, true /* lower */)
	return core.Validate.Struct(us)
}

// Merge applies the supplied fields onto orig and returns the result.
func (us UpdateStudent) Merge(orig Student) Student {
	if us.FirstName != "" {
		orig.FirstName = us.FirstName
	}
	if us.LastName != "" {
		orig.LastName = us.LastName
	}
	if us.StudentID != "" {
		orig.StudentID = us.StudentID
	}
	if us.Email != "" {
		orig.Email = us.Email
	}
	if us.Phone != "" {
		orig.Phone = us.Phone
	}
	if us.PhotoURL != "" {
		orig.PhotoURL = us.PhotoURL
	}
	if !us.DateOfBirth.IsZero() {
		orig.DateOfBirth = us.DateOfBirth
	}
	if !us.EnrollmentDate.IsZero() {
		orig.EnrollmentDate = us.EnrollmentDate
	}
	if us.ClassIDs != nil {
		orig.ClassIDs = us.ClassIDs
	}
	if !us.UpdatedAt.IsZero() {
		orig.UpdatedAt = us.UpdatedAt
	}
	return orig
}

type QueryFilter struct {
	Search  string `query:"search"`
	ClassID string `query:"class_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassID = core.CleanString(qf.ClassID)
}

// Match reports whether s passes all active filter stages.
// Search does a case-insensitive match on one of full name, StudentID or Email.
func (qf QueryFilter) Match(s Student) bool {
	if qf.ClassID != "" && !s.InClass(qf.ClassID) {
		return false
	}
	if qf.Search != "" {
		term := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(s.FullName()), term) ||
			strings.Contains(strings.ToLower(s.StudentID), term) ||
			strings.Contains(strings.ToLower(s.Email), term)) {
			return false
		}
	}
	return true
}

// Sort keys
const (
	SortName        = "name"
	SortPerformance = "performance"
	SortAttendance  = "attendance"
)

type SortSpec struct {
	Key        string `query:"sort_by"`
	Descending bool
}

func (ss *SortSpec) IsEmpty() bool { return ss.Key == "" }

// Stats holds per-student derived metrics used for sorting and display.
// A nil value means no underlying records exist, which is distinct from 0.
type Stats struct {
	GPA            *int `json:"gpa"`
	AttendanceRate *int `json:"attendance_rate"`
}

// statOrSentinel makes missing metrics sort below any present value.
func statOrSentinel(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

// Sort returns a sorted copy of students according to spec. The sort is
// stable; the input slice is left untouched.
func Sort(students []Student, stats map[int]Stats, spec SortSpec) []Student {
	sorted := make([]Student, len(students))
	copy(sorted, students)
	if spec.IsEmpty() {
		return sorted
	}

	var less func(a, b Student) bool
	switch spec.Key {
	case SortPerformance:
		less = func(a, b Student) bool {
			return statOrSentinel(stats[a.ID].GPA) < statOrSentinel(stats[b.ID].GPA)
		}
	case SortAttendance:
		less = func(a, b Student) bool {
			return statOrSentinel(stats[a.ID].AttendanceRate) < statOrSentinel(stats[b.ID].AttendanceRate)
		}
	default: // SortName
		less = func(a, b Student) bool {
			return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if spec.Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}
