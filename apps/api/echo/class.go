package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/class"
	"github.com/trezcool/classtrack/core/student"
)

type classApi struct {
	svc      *class.Service
	students *student.Service
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *class.Service, studentSvc *student.Service) {
	api := classApi{svc: svc, students: studentSvc}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/semesters", api.querySemesters)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/students", api.queryStudents)
}

// Handlers

func (api *classApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.QueryAll(ctx.Request().Context()))
}

func (api *classApi) create(ctx echo.Context) error {
	data := new(class.NewClass)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	data := new(class.UpdateClass)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// queryStudents lists the students enrolled in the class, per their own
// enrollment list.
func (api *classApi) queryStudents(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	if _, err = api.svc.GetByID(c, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.students.GetByClassID(c, id))
}

func (api *classApi) querySemesters(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, class.Semesters)
}
