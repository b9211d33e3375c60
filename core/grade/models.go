package grade

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/classtrack/core"
)

// Categories
const (
	CategoryAssignment = "Assignment"
	CategoryQuiz       = "Quiz"
	CategoryTest       = "Test"
	CategoryProject    = "Project"
	CategoryLab        = "Lab"
	CategoryEssay      = "Essay"
	CategoryExam       = "Exam"
)

var Categories = []string{
	CategoryAssignment, CategoryQuiz, CategoryTest, CategoryProject,
	CategoryLab, CategoryEssay, CategoryExam,
}

type Grade struct {
	ID             int     `json:"id"`
	StudentID      int     `json:"student_id"`
	ClassID        int     `json:"class_id"`
	AssignmentName string  `json:"assignment_name"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`

	// Percentage is derived from Score and MaxScore and recomputed on every
	// create and update; it is never independently settable.
	Percentage int       `json:"percentage"`
	Date       time.Time `json:"date"`
	Category   string    `json:"category"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Percent returns round(score/maxScore*100).
func Percent(score, maxScore float64) int {
	return int(math.Round(score / maxScore * 100))
}

// NewGrade contains information needed to record a new Grade.
type NewGrade struct {
	StudentID      int       `json:"student_id" validate:"required"`
	ClassID        int       `json:"class_id" validate:"required"`
	AssignmentName string    `json:"assignment_name" validate:"required"`
	Score          float64   `json:"score" validate:"min=0,ltefield=MaxScore"`
	MaxScore       float64   `json:"max_score" validate:"required,gt=0"`
	Date           time.Time `json:"date" validate:"required"`
	Category       string    `json:"category" validate:"required,gradecategory"`
	Notes          string    `json:"notes"`
}

func (ng *NewGrade) Validate() error {
	ng.AssignmentName = core.CleanString(ng.AssignmentName)
	ng.Notes = core.CleanString(ng.Notes)
	return core.Validate.Struct(ng)
}

// UpdateGrade defines what information may be provided to modify an existing
// Grade. Score and MaxScore are pointers so that a legitimate 0 score can be
// told apart from "not supplied".
type UpdateGrade struct {
	StudentID      int       `json:"student_id"`
	ClassID        int       `json:"class_id"`
	AssignmentName string    `json:"assignment_name"`
	Score          *float64  `json:"score" validate:"omitempty,min=0"`
	MaxScore       *float64  `json:"max_score" validate:"omitempty,gt=0"`
	Date           time.Time `json:"date"`
	Category       string    `json:"category" validate:"omitempty,gradecategory"`
	Notes          string    `json:"notes"`
	UpdatedAt      time.Time `json:"-"`
}

func (ug *UpdateGrade) Validate() error {
	ug.AssignmentName = core.CleanString(ug.AssignmentName)
	ug.Notes = core.CleanString(ug.Notes)
	if err := core.Validate.Struct(ug); err != nil {
		return err
	}
	if ug.Score != nil && ug.MaxScore != nil && *ug.Score > *ug.MaxScore {
		return core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score cannot exceed max_score"})
	}
	return nil
}

// Merge applies the supplied fields onto orig and recomputes Percentage
// whenever Score or MaxScore is supplied.
func (ug UpdateGrade) Merge(orig Grade) Grade {
	if ug.StudentID != 0 {
		orig.StudentID = ug.StudentID
	}
	if ug.ClassID != 0 {
		orig.ClassID = ug.ClassID
	}
	if ug.AssignmentName != "" {
		orig.AssignmentName = ug.AssignmentName
	}
	if ug.Category != "" {
		orig.Category = ug.Category
	}
	if ug.Notes != "" {
		orig.Notes = ug.Notes
	}
	if !ug.Date.IsZero() {
		orig.Date = ug.Date
	}
	if ug.Score != nil {
		orig.Score = *ug.Score
	}
	if ug.MaxScore != nil {
		orig.MaxScore = *ug.MaxScore
	}
	if ug.Score != nil || ug.MaxScore != nil {
		orig.Percentage = Percent(orig.Score, orig.MaxScore)
	}
	if !ug.UpdatedAt.IsZero() {
		orig.UpdatedAt = ug.UpdatedAt
	}
	return orig
}

type QueryFilter struct {
	Search    string `query:"search"`
	ClassID   int    `query:"class_id"`
	StudentID int    `query:"student_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassID == 0 && qf.StudentID == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match reports whether g passes the relational and own-field search stages.
// studentName is the referenced student's full name ("" when unknown); the
// search term also matches against it.
func (qf QueryFilter) Match(g Grade, studentName string) bool {
	if qf.ClassID != 0 && g.ClassID != qf.ClassID {
		return false
	}
	if qf.StudentID != 0 && g.StudentID != qf.StudentID {
		return false
	}
	if qf.Search != "" {
		term := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(g.AssignmentName), term) ||
			strings.Contains(strings.ToLower(g.Category), term) ||
			strings.Contains(strings.ToLower(studentName), term)) {
			return false
		}
	}
	return true
}

// SortByDateDesc returns a copy sorted by date, most recent first. The sort
// is stable for equal dates.
func SortByDateDesc(grades []Grade) []Grade {
	sorted := make([]Grade, len(grades))
	copy(sorted, grades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[j].Date.Before(sorted[i].Date) })
	return sorted
}
