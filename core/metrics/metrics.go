// Package metrics derives per-student and organization-wide statistics from
// already-fetched grade and attendance collections. All functions are pure.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

func round(x float64) int {
	return int(math.Round(x))
}

// GPAFor averages the grade percentages of the student's records, rounded to
// the nearest integer. It returns nil when the student has no grades; "no
// data" is not 0.
func GPAFor(studentID int, grades []grade.Grade) *int {
	var sum, n int
	for _, g := range grades {
		if g.StudentID == studentID {
			sum += g.Percentage
			n++
		}
	}
	if n == 0 {
		return nil
	}
	gpa := round(float64(sum) / float64(n))
	return &gpa
}

// AttendanceRateFor returns the percentage of the student's attendance
// records marked present or excused, rounded to the nearest integer, or nil
// when the student has no records.
func AttendanceRateFor(studentID int, records []attendance.Record) *int {
	var positive, n int
	for _, r := range records {
		if r.StudentID != studentID {
			continue
		}
		n++
		if r.CountsTowardRate() {
			positive++
		}
	}
	if n == 0 {
		return nil
	}
	rate := round(float64(positive) / float64(n) * 100)
	return &rate
}

// AverageGPA averages percentages across all grades. Unlike the per-student
// variant it is defined as 0 for an empty collection.
func AverageGPA(grades []grade.Grade) int {
	if len(grades) == 0 {
		return 0
	}
	var sum int
	for _, g := range grades {
		sum += g.Percentage
	}
	return round(float64(sum) / float64(len(grades)))
}

// OverallAttendanceRate is the organization-wide attendance rate across all
// records; 0 for an empty collection.
func OverallAttendanceRate(records []attendance.Record) int {
	if len(records) == 0 {
		return 0
	}
	var positive int
	for _, r := range records {
		if r.CountsTowardRate() {
			positive++
		}
	}
	return round(float64(positive) / float64(len(records)) * 100)
}

// AtRiskStudent is a student whose mean grade percentage falls below the
// at-risk threshold.
type AtRiskStudent struct {
	student.Student
	AvgGrade int `json:"avg_grade"`
}

// AtRiskStudents flags students whose unrounded mean grade percentage is
// strictly below threshold. Students with no grades are never flagged, and
// grades referencing unknown students are dropped. Results are ordered worst
// average first (ties by id).
func AtRiskStudents(students []student.Student, grades []grade.Grade, threshold float64) []AtRiskStudent {
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, g := range grades {
		sums[g.StudentID] += g.Percentage
		counts[g.StudentID]++
	}

	byID := make(map[int]student.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	atRisk := make([]AtRiskStudent, 0)
	for id, n := range counts {
		avg := float64(sums[id]) / float64(n)
		if avg >= threshold {
			continue
		}
		s, ok := byID[id]
		if !ok {
			continue
		}
		atRisk = append(atRisk, AtRiskStudent{Student: s, AvgGrade: round(avg)})
	}

	sort.Slice(atRisk, func(i, j int) bool {
		if atRisk[i].AvgGrade != atRisk[j].AvgGrade {
			return atRisk[i].AvgGrade < atRisk[j].AvgGrade
		}
		return atRisk[i].ID < atRisk[j].ID
	})
	return atRisk
}

// Activity types
const (
	ActivityGrade      = "grade"
	ActivityAttendance = "attendance"
)

type Activity struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// RecentActivity builds a unified timeline from the 3 most recent grades and
// the 2 most recent non-present attendance records, merged and re-sorted by
// date descending, truncated to limit. Entries whose referenced student
// cannot be found are dropped silently.
func RecentActivity(grades []grade.Grade, records []attendance.Record, students []student.Student, limit int) []Activity {
	byID := make(map[int]student.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	activities := make([]Activity, 0, 5)

	recentGrades := grade.SortByDateDesc(grades)
	if len(recentGrades) > 3 {
		recentGrades = recentGrades[:3]
	}
	for _, g := range recentGrades {
		s, ok := byID[g.StudentID]
		if !ok {
			continue
		}
		activities = append(activities, Activity{
			ID:      fmt.Sprintf("grade-%d", g.ID),
			Type:    ActivityGrade,
			Message: fmt.Sprintf("%s scored %d%% on %s", s.FullName(), g.Percentage, g.AssignmentName),
			Time:    g.Date,
		})
	}

	notPresent := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if r.Status != attendance.StatusPresent {
			notPresent = append(notPresent, r)
		}
	}
	recentRecords := attendance.SortByDateDesc(notPresent)
	if len(recentRecords) > 2 {
		recentRecords = recentRecords[:2]
	}
	for _, r := range recentRecords {
		s, ok := byID[r.StudentID]
		if !ok {
			continue
		}
		activities = append(activities, Activity{
			ID:      fmt.Sprintf("attendance-%d", r.ID),
			Type:    ActivityAttendance,
			Message: fmt.Sprintf("%s was %s", s.FullName(), r.Status),
			Time:    r.Date,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool { return activities[j].Time.Before(activities[i].Time) })
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}

// StatsByStudent computes per-student GPA and attendance rate in one pass,
// keyed by student id. Every student gets an entry; missing metrics stay nil.
func StatsByStudent(students []student.Student, grades []grade.Grade, records []attendance.Record) map[int]student.Stats {
	stats := make(map[int]student.Stats, len(students))
	for _, s := range students {
		stats[s.ID] = student.Stats{
			GPA:            GPAFor(s.ID, grades),
			AttendanceRate: AttendanceRateFor(s.ID, records),
		}
	}
	return stats
}
