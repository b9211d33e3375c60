package attendance

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/trezcool/classtrack/core"
)

var ErrNotFound = errors.New("attendance record not found")

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		QueryAllRecords(ctx context.Context) ([]Record, error)
		GetRecordByID(ctx context.Context, id int) (Record, error)
		// FilterRecords applies AND operation on available QueryFilter fields.
		// QueryFilter.Search also matches the referenced student's full name.
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		UpdateRecord(ctx context.Context, id int, up UpdateRecord) (Record, error)
		DeleteRecord(ctx context.Context, id int) (Record, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	r := Record{
		StudentID:  nr.StudentID,
		ClassID:    nr.ClassID,
		Date:       nr.Date,
		Status:     nr.Status,
		Notes:      nr.Notes,
		RecordedAt: time.Now().UTC(),
	}
	return svc.repo.CreateRecord(ctx, r)
}

// CreateBatch records attendance for several students at once, typically a
// whole class on one day. Records the store rejects are reported individually
// in a core.PartialBatchError, keyed by their position in nrs; the rest are
// still created.
func (svc *Service) CreateBatch(ctx context.Context, nrs []NewRecord) ([]Record, error) {
	created := make([]Record, 0, len(nrs))
	var failed []core.FieldError
	for i, nr := range nrs {
		r, err := svc.Create(ctx, nr)
		if err != nil {
			failed = append(failed, core.FieldError{Field: strconv.Itoa(i), Error: err.Error()})
			continue
		}
		created = append(created, r)
	}
	if failed != nil {
		return created, &core.PartialBatchError{Op: "creating attendance batch", Failed: failed}
	}
	return created, nil
}

// QueryAll returns the full collection; transport failures degrade to an
// empty collection and are logged.
func (svc *Service) QueryAll(ctx context.Context) []Record {
	records, err := svc.repo.QueryAllRecords(ctx)
	if err != nil {
		svc.logger.Error("querying attendance", err)
		return []Record{}
	}
	return records
}

func (svc *Service) GetByID(ctx context.Context, id int) (Record, error) {
	return svc.repo.GetRecordByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) []Record {
	filter.Clean()
	records, err := svc.repo.FilterRecords(ctx, filter)
	if err != nil {
		svc.logger.Error("filtering attendance", err)
		return []Record{}
	}
	return records
}

func (svc *Service) GetByStudentID(ctx context.Context, studentID int) []Record {
	return svc.Filter(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) GetByClassID(ctx context.Context, classID int) []Record {
	return svc.Filter(ctx, QueryFilter{ClassID: classID})
}

func (svc *Service) GetByDate(ctx context.Context, date time.Time) []Record {
	return svc.Filter(ctx, QueryFilter{Date: date})
}

func (svc *Service) Update(ctx context.Context, id int, ur UpdateRecord) (Record, error) {
	return svc.repo.UpdateRecord(ctx, id, ur)
}

func (svc *Service) Delete(ctx context.Context, id int) (Record, error) {
	return svc.repo.DeleteRecord(ctx, id)
}
