package grade

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/classtrack/core"
)

var ErrNotFound = errors.New("grade not found")

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryAllGrades(ctx context.Context) ([]Grade, error)
		GetGradeByID(ctx context.Context, id int) (Grade, error)
		// FilterGrades applies AND operation on available QueryFilter fields.
		// QueryFilter.Search also matches the referenced student's full name.
		FilterGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		UpdateGrade(ctx context.Context, id int, up UpdateGrade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) (Grade, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	now := time.Now().UTC()
	g := Grade{
		StudentID:      ng.StudentID,
		ClassID:        ng.ClassID,
		AssignmentName: ng.AssignmentName,
		Score:          ng.Score,
		MaxScore:       ng.MaxScore,
		Percentage:     Percent(ng.Score, ng.MaxScore),
		Date:           ng.Date,
		Category:       ng.Category,
		Notes:          ng.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateGrade(ctx, g)
}

// QueryAll returns the full collection; transport failures degrade to an
// empty collection and are logged.
func (svc *Service) QueryAll(ctx context.Context) []Grade {
	grades, err := svc.repo.QueryAllGrades(ctx)
	if err != nil {
		svc.logger.Error("querying grades", err)
		return []Grade{}
	}
	return grades
}

func (svc *Service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) []Grade {
	filter.Clean()
	grades, err := svc.repo.FilterGrades(ctx, filter)
	if err != nil {
		svc.logger.Error("filtering grades", err)
		return []Grade{}
	}
	return grades
}

func (svc *Service) GetByStudentID(ctx context.Context, studentID int) []Grade {
	return svc.Filter(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) GetByClassID(ctx context.Context, classID int) []Grade {
	return svc.Filter(ctx, QueryFilter{ClassID: classID})
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGrade) (Grade, error) {
	ug.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, id, ug)
}

func (svc *Service) Delete(ctx context.Context, id int) (Grade, error) {
	return svc.repo.DeleteGrade(ctx, id)
}
