package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/metrics"
	reportsvc "github.com/trezcool/classtrack/services/report"
)

type reportsApi struct {
	opts *Options
}

func registerReportsAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := reportsApi{opts: opts}

	rg := g.Group("/reports", jwt)
	rg.GET("/gradebook", api.downloadGradebook)
	rg.POST("/at-risk", api.emailAtRiskReport)
}

func (api *reportsApi) fetchGradebookData(ctx echo.Context) reportsvc.GradebookData {
	c := ctx.Request().Context()

	var (
		data reportsvc.GradebookData
		wg   sync.WaitGroup
	)
	wg.Add(4)
	go func() { defer wg.Done(); data.Students = api.opts.StudentSvc.QueryAll(c) }()
	go func() { defer wg.Done(); data.Classes = api.opts.ClassSvc.QueryAll(c) }()
	go func() { defer wg.Done(); data.Grades = api.opts.GradeSvc.QueryAll(c) }()
	go func() { defer wg.Done(); data.Records = api.opts.AttendanceSvc.QueryAll(c) }()
	wg.Wait()
	return data
}

// Handlers

func (api *reportsApi) downloadGradebook(ctx echo.Context) error {
	buf, err := reportsvc.BuildGradebook(api.fetchGradebookData(ctx))
	if err != nil {
		return errors.Wrap(err, "building gradebook")
	}

	filename := fmt.Sprintf("gradebook-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=`+filename)
	return ctx.Blob(http.StatusOK, reportsvc.ContentType, buf.Bytes())
}

type atRiskReportRequest struct {
	Recipient string `json:"recipient" validate:"omitempty,email"`
}

// emailAtRiskReport mails the at-risk summary with the full gradebook
// attached. The recipient defaults to the configured report address.
func (api *reportsApi) emailAtRiskReport(ctx echo.Context) error {
	data := new(atRiskReportRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to atRiskReportRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	recipient := data.Recipient
	if recipient == "" {
		recipient = core.Conf.ReportRecipient.Address
	}
	if recipient == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "recipient", Error: "no recipient configured"})
	}

	gbData := api.fetchGradebookData(ctx)
	buf, err := reportsvc.BuildGradebook(gbData)
	if err != nil {
		return errors.Wrap(err, "building gradebook")
	}

	atRisk := metrics.AtRiskStudents(gbData.Students, gbData.Grades, core.Conf.AtRiskThreshold)
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: recipient}},
		Subject: "At-Risk Students Report",
		BodyStr: reportsvc.AtRiskEmailBody(atRisk, core.Conf.AtRiskThreshold),
	}
	if err = msg.Attach(buf, "gradebook.xlsx", reportsvc.ContentType); err != nil {
		return errors.Wrap(err, "attaching gradebook")
	}
	api.opts.EmailSvc.SendMessages(msg)

	return ctx.JSON(http.StatusAccepted, echo.Map{"at_risk_count": len(atRisk)})
}
