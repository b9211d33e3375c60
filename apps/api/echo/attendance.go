package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.POST("/bulk", api.createBulk)
	ag.GET("/statuses", api.queryStatuses)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := attendance.QueryFilter{Search: ctx.QueryParam("search")}
	filter.ClassID, _ = strconv.Atoi(ctx.QueryParam("class_id"))
	filter.StudentID, _ = strconv.Atoi(ctx.QueryParam("student_id"))
	if d := ctx.QueryParam("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, d); err != nil {
				return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "invalid date; use YYYY-MM-DD"})
			}
		}
		filter.Date = t
	}
	return ctx.JSON(http.StatusOK, api.svc.Filter(ctx.Request().Context(), filter))
}

func (api *attendanceApi) create(ctx echo.Context) error {
	data := new(attendance.NewRecord)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

// createBulk records attendance for a whole class in one request. Invalid
// input fails the request up front; store-level failures are partial, the
// successful records are kept and the failed positions reported.
func (api *attendanceApi) createBulk(ctx echo.Context) error {
	var data []attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []NewRecord")
	}
	if len(data) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "records", Error: "this field is required"})
	}
	for i := range data {
		if err := data[i].Validate(); err != nil {
			return err
		}
	}

	records, err := api.svc.CreateBatch(ctx.Request().Context(), data)
	if err != nil {
		batchErr, ok := err.(*core.PartialBatchError)
		if !ok {
			return err
		}
		failed := make(map[string]string, len(batchErr.Failed))
		for _, fErr := range batchErr.Failed {
			failed[fErr.Field] = fErr.Error
		}
		return ctx.JSON(http.StatusMultiStatus, echo.Map{"created": records, "failed": failed})
	}
	return ctx.JSON(http.StatusCreated, records)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	r, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	data := new(attendance.UpdateRecord)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) queryStatuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, attendance.Statuses)
}
