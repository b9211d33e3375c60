package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/metrics"
	"github.com/trezcool/classtrack/core/student"
)

type studentApi struct {
	svc    *student.Service
	grades *grade.Service
	att    *attendance.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, gradeSvc *grade.Service, attSvc *attendance.Service) {
	api := studentApi{svc: svc, grades: gradeSvc, att: attSvc}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/grades", api.queryGrades)
	dg.GET("/attendance", api.queryAttendance)
}

// studentListItem decorates a student with its derived metrics so list views
// can render and sort without extra round-trips.
type studentListItem struct {
	student.Student
	student.Stats
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to student.QueryFilter")
	}
	spec := student.SortSpec{
		Key:        ctx.QueryParam("sort_by"),
		Descending: ctx.QueryParam("sort_dir") == "desc",
	}

	c := ctx.Request().Context()
	students := api.svc.Filter(c, filter)

	// grades and attendance only feed derived metrics; fetch them in parallel
	var (
		grades  []grade.Grade
		records []attendance.Record
		wg      sync.WaitGroup
	)
	wg.Add(2)
	go func() { defer wg.Done(); grades = api.grades.QueryAll(c) }()
	go func() { defer wg.Done(); records = api.att.QueryAll(c) }()
	wg.Wait()

	stats := metrics.StatsByStudent(students, grades, records)
	items := make([]studentListItem, 0, len(students))
	for _, s := range student.Sort(students, stats, spec) {
		items = append(items, studentListItem{s, stats[s.ID]})
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *studentApi) create(ctx echo.Context) error {
	data := new(student.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	data := new(student.UpdateStudent)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) queryGrades(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	if _, err = api.svc.GetByID(c, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.grades.GetByStudentID(c, id))
}

func (api *studentApi) queryAttendance(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	if _, err = api.svc.GetByID(c, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.att.GetByStudentID(c, id))
}
