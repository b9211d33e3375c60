package attendance

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/classtrack/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
)

var Statuses = []string{StatusPresent, StatusLate, StatusAbsent, StatusExcused}

// Record is one attendance entry for a (student, class, date). Duplicate
// records for the same day are possible and tolerated; consumers present the
// last-written one, they never merge.
type Record struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recorded_at"` // UTC, set at creation, immutable
}

// CountsTowardRate reports whether the record counts toward the attendance
// rate numerator ({present, excused}; late and absent never do).
func (r Record) CountsTowardRate() bool {
	return r.Status == StatusPresent || r.Status == StatusExcused
}

// NewRecord contains information needed to record attendance.
type NewRecord struct {
	StudentID int       `json:"student_id" validate:"required"`
	ClassID   int       `json:"class_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,attstatus"`
	Notes     string    `json:"notes"`
}

func (nr *NewRecord) Validate() error {
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	nr.Notes = core.CleanString(nr.Notes)
	return core.Validate.Struct(nr)
}

// UpdateRecord defines what information may be provided to modify an existing
// Record. RecordedAt is immutable and cannot be supplied.
type UpdateRecord struct {
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status" validate:"omitempty,attstatus"`
	Notes     string    `json:"notes"`
}

func (ur *UpdateRecord) Validate() error {
	ur.Status = core.CleanString(ur.Status, true /* lower */)
	ur.Notes = core.CleanString(ur.Notes)
	return core.Validate.Struct(ur)
}

// Merge applies the supplied fields onto orig and returns the result.
func (ur UpdateRecord) Merge(orig Record) Record {
	if ur.StudentID != 0 {
		orig.StudentID = ur.StudentID
	}
	if ur.ClassID != 0 {
		orig.ClassID = ur.ClassID
	}
	if !ur.Date.IsZero() {
		orig.Date = ur.Date
	}
	if ur.Status != "" {
		orig.Status = ur.Status
	}
	if ur.Notes != "" {
		orig.Notes = ur.Notes
	}
	return orig
}

type QueryFilter struct {
	Search    string    `query:"search"`
	ClassID   int       `query:"class_id"`
	StudentID int       `query:"student_id"`
	Date      time.Time `query:"date"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassID == 0 && qf.StudentID == 0 && qf.Date.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match reports whether r passes the relational, date and search stages.
// studentName is the referenced student's full name ("" when unknown); the
// search term matches against it and against the status.
func (qf QueryFilter) Match(r Record, studentName string) bool {
	if qf.ClassID != 0 && r.ClassID != qf.ClassID {
		return false
	}
	if qf.StudentID != 0 && r.StudentID != qf.StudentID {
		return false
	}
	if !qf.Date.IsZero() && !sameDay(r.Date, qf.Date) {
		return false
	}
	if qf.Search != "" {
		term := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(studentName), term) ||
			strings.Contains(strings.ToLower(r.Status), term)) {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// SortByDateDesc returns a copy sorted by date, most recent first. The sort
// is stable for equal dates.
func SortByDateDesc(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[j].Date.Before(sorted[i].Date) })
	return sorted
}
