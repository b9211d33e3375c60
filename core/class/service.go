package class

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/classtrack/core"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		UpdateClass(ctx context.Context, id int, up UpdateClass) (Class, error)
		DeleteClass(ctx context.Context, id int) (Class, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	c := Class{
		Name:         nc.Name,
		Subject:      nc.Subject,
		AcademicYear: nc.AcademicYear,
		Semester:     nc.Semester,
		StudentIDs:   nc.StudentIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.StudentIDs == nil {
		c.StudentIDs = []string{}
	}
	return svc.repo.CreateClass(ctx, c)
}

// QueryAll returns the full collection; transport failures degrade to an
// empty collection and are logged.
func (svc *Service) QueryAll(ctx context.Context) []Class {
	classes, err := svc.repo.QueryAllClasses(ctx)
	if err != nil {
		svc.logger.Error("querying classes", err)
		return []Class{}
	}
	return classes
}

func (svc *Service) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	uc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, id, uc)
}

func (svc *Service) Delete(ctx context.Context, id int) (Class, error) {
	return svc.repo.DeleteClass(ctx, id)
}
