// Package reportsvc builds spreadsheet and email exports of the gradebook.
package reportsvc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/class"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/metrics"
	"github.com/trezcool/classtrack/core/student"
)

const (
	gradesSheet  = "Grades"
	summarySheet = "Summary"

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type GradebookData struct {
	Students []student.Student
	Classes  []class.Class
	Grades   []grade.Grade
	Records  []attendance.Record
}

// BuildGradebook renders a two-sheet xlsx workbook: one row per grade (most
// recent first), plus a per-student summary with GPA and attendance rate.
func BuildGradebook(data GradebookData) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), gradesSheet); err != nil {
		return nil, errors.Wrap(err, "renaming grades sheet")
	}

	studentNames := make(map[int]string, len(data.Students))
	for _, s := range data.Students {
		studentNames[s.ID] = s.FullName()
	}
	classNames := make(map[int]string, len(data.Classes))
	for _, c := range data.Classes {
		classNames[c.ID] = c.Name
	}

	headers := []string{"Student", "Class", "Assignment", "Category", "Score", "Max Score", "Percentage", "Date"}
	if err := writeRow(f, gradesSheet, 1, toCells(headers)); err != nil {
		return nil, err
	}
	for i, g := range grade.SortByDateDesc(data.Grades) {
		cells := []interface{}{
			studentNames[g.StudentID],
			classNames[g.ClassID],
			g.AssignmentName,
			g.Category,
			g.Score,
			g.MaxScore,
			g.Percentage,
			g.Date.Format("2006-01-02"),
		}
		if err := writeRow(f, gradesSheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, errors.Wrap(err, "creating summary sheet")
	}
	if err := writeRow(f, summarySheet, 1, toCells([]string{"Student", "GPA", "Attendance Rate"})); err != nil {
		return nil, err
	}
	stats := metrics.StatsByStudent(data.Students, data.Grades, data.Records)
	for i, s := range data.Students {
		st := stats[s.ID]
		cells := []interface{}{s.FullName(), fmtStat(st.GPA), fmtStat(st.AttendanceRate)}
		if err := writeRow(f, summarySheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "serializing workbook")
	}
	return buf, nil
}

// AtRiskEmailBody renders the plain-text body of the at-risk students report.
func AtRiskEmailBody(atRisk []metrics.AtRiskStudent, threshold float64) string {
	body := new(strings.Builder)
	if len(atRisk) == 0 {
		fmt.Fprintf(body, "No students are currently below the %.0f%% grade threshold.\n", threshold)
		return body.String()
	}

	fmt.Fprintf(body, "%d student(s) currently average below %.0f%%:\n\n", len(atRisk), threshold)
	for _, s := range atRisk {
		fmt.Fprintf(body, "- %s (%s): %d%%\n", s.FullName(), s.StudentID, s.AvgGrade)
	}
	return body.String()
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errors.Wrap(err, "resolving cell name")
		}
		if err = f.SetCellValue(sheet, cell, v); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, row)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func fmtStat(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v) + "%"
}
