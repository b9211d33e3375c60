package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core/attendance"
)

type attendanceRepository struct {
	db *DB // needs the student table to resolve names for search
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// query must be called with (at least) the attendance table's read lock held.
func (repo *attendanceRepository) query() []attendance.Record {
	records := make([]attendance.Record, 0, len(repo.db.attendance.table))
	for _, r := range repo.db.attendance.table {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

func (repo *attendanceRepository) studentName(id int) string {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	if s, ok := repo.db.student.table[id]; ok {
		return s.FullName()
	}
	return ""
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	repo.db.attendance.mutex.Lock()
	defer repo.db.attendance.mutex.Unlock()

	r.ID = repo.db.attendance.nextID()
	repo.db.attendance.table[r.ID] = &r
	return r, nil
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context) ([]attendance.Record, error) {
	repo.db.attendance.mutex.RLock()
	defer repo.db.attendance.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id int) (attendance.Record, error) {
	repo.db.attendance.mutex.RLock()
	defer repo.db.attendance.mutex.RUnlock()

	if r, ok := repo.db.attendance.table[id]; ok {
		return *r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.attendance.mutex.RLock()
	defer repo.db.attendance.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.query() {
		var name string
		if filter.Search != "" {
			name = repo.studentName(r.StudentID)
		}
		if filter.Match(r, name) {
			records = append(records, r)
		}
	}
	return records, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, id int, up attendance.UpdateRecord) (attendance.Record, error) {
	repo.db.attendance.mutex.Lock()
	defer repo.db.attendance.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.attendance.table[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	stored := up.Merge(*orig)
	repo.db.attendance.table[id] = &stored
	return stored, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id int) (attendance.Record, error) {
	repo.db.attendance.mutex.Lock()
	defer repo.db.attendance.mutex.Unlock()

	r, ok := repo.db.attendance.table[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	delete(repo.db.attendance.table, id)
	return *r, nil
}
