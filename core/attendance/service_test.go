package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trezcool/classtrack/core"
)

// batchStubRepo fails CreateRecord for one student so the partial path can be
// exercised; everything else inherits from the embedded nil interface.
type batchStubRepo struct {
	Repository
	failFor int
	seq     int
}

func (r *batchStubRepo) CreateRecord(_ context.Context, rec Record) (Record, error) {
	if rec.StudentID == r.failFor {
		return Record{}, errors.New("store rejected record")
	}
	r.seq++
	rec.ID = r.seq
	return rec, nil
}

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func TestService_CreateBatch(t *testing.T) {
	svc := NewService(&batchStubRepo{failFor: 99}, testLogger{})
	day := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	nrs := []NewRecord{
		{StudentID: 1, ClassID: 1, Date: day, Status: StatusPresent},
		{StudentID: 99, ClassID: 1, Date: day, Status: StatusAbsent},
		{StudentID: 2, ClassID: 1, Date: day, Status: StatusLate},
	}

	created, err := svc.CreateBatch(context.Background(), nrs)
	if len(created) != 2 {
		t.Fatalf("len(created) = %d; want 2", len(created))
	}
	batchErr, ok := err.(*core.PartialBatchError)
	if !ok {
		t.Fatalf("err = %v; want *core.PartialBatchError", err)
	}
	if len(batchErr.Failed) != 1 || batchErr.Failed[0].Field != "1" {
		t.Errorf("Failed = %+v; want the second record flagged", batchErr.Failed)
	}
	for _, r := range created {
		if r.RecordedAt.IsZero() {
			t.Errorf("RecordedAt not set on %+v", r)
		}
	}
}

func TestService_CreateBatch_allGood(t *testing.T) {
	svc := NewService(&batchStubRepo{failFor: -1}, testLogger{})
	day := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	created, err := svc.CreateBatch(context.Background(), []NewRecord{
		{StudentID: 1, ClassID: 1, Date: day, Status: StatusPresent},
	})
	if err != nil {
		t.Fatalf("CreateBatch(): %v", err)
	}
	if len(created) != 1 {
		t.Errorf("len(created) = %d; want 1", len(created))
	}
}
