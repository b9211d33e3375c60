package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/class"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/metrics"
	"github.com/trezcool/classtrack/core/student"
)

const recentActivityLimit = 5

type dashboardApi struct {
	opts *Options
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := dashboardApi{opts: opts}
	g.GET("/dashboard", api.retrieve, jwt)
}

type dashboardResponse struct {
	TotalStudents  int                     `json:"total_students"`
	TotalClasses   int                     `json:"total_classes"`
	AverageGPA     int                     `json:"average_gpa"`
	AttendanceRate int                     `json:"attendance_rate"`
	AtRiskStudents []metrics.AtRiskStudent `json:"at_risk_students"`
	RecentActivity []metrics.Activity      `json:"recent_activity"`
}

// retrieve assembles the dashboard snapshot. The four collections are
// independent, so they are fetched in parallel; a failing fetch degrades to
// an empty collection and the snapshot stays serveable.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	c := ctx.Request().Context()

	var (
		students []student.Student
		classes  []class.Class
		grades   []grade.Grade
		records  []attendance.Record
		wg       sync.WaitGroup
	)
	wg.Add(4)
	go func() { defer wg.Done(); students = api.opts.StudentSvc.QueryAll(c) }()
	go func() { defer wg.Done(); classes = api.opts.ClassSvc.QueryAll(c) }()
	go func() { defer wg.Done(); grades = api.opts.GradeSvc.QueryAll(c) }()
	go func() { defer wg.Done(); records = api.opts.AttendanceSvc.QueryAll(c) }()
	wg.Wait()

	return ctx.JSON(http.StatusOK, dashboardResponse{
		TotalStudents:  len(students),
		TotalClasses:   len(classes),
		AverageGPA:     metrics.AverageGPA(grades),
		AttendanceRate: metrics.OverallAttendanceRate(records),
		AtRiskStudents: metrics.AtRiskStudents(students, grades, core.Conf.AtRiskThreshold),
		RecentActivity: metrics.RecentActivity(grades, records, students, recentActivityLimit),
	})
}
