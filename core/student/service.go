package student

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/trezcool/classtrack/core"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, id int, up UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, id int) (Student, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		StudentID:      ns.StudentID,
		Email:          ns.Email,
		Phone:          ns.Phone,
		PhotoURL:       ns.PhotoURL,
		DateOfBirth:    ns.DateOfBirth,
		EnrollmentDate: ns.EnrollmentDate,
		ClassIDs:       ns.ClassIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if s.EnrollmentDate.IsZero() {
		s.EnrollmentDate = now
	}
	if s.ClassIDs == nil {
		s.ClassIDs = []string{}
	}
	return svc.repo.CreateStudent(ctx, s)
}

// QueryAll returns the full collection. A transport failure never escapes:
// it is logged and an empty collection is returned so list views keep working.
func (svc *Service) QueryAll(ctx context.Context) []Student {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		svc.logger.Error("querying students", err)
		return []Student{}
	}
	return students
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) []Student {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.QueryAll(ctx)
	}
	students, err := svc.repo.FilterStudents(ctx, filter)
	if err != nil {
		svc.logger.Error("filtering students", err)
		return []Student{}
	}
	return students
}

func (svc *Service) GetByClassID(ctx context.Context, classID int) []Student {
	return svc.Filter(ctx, QueryFilter{ClassID: strconv.Itoa(classID)})
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	us.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, id, us)
}

// Delete removes the student and returns the removed record. Dependent
// grade/attendance records are not cascaded.
func (svc *Service) Delete(ctx context.Context, id int) (Student, error) {
	return svc.repo.DeleteStudent(ctx, id)
}
