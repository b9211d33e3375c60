package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

// copyStudent detaches the slice field so callers can never mutate stored state.
func copyStudent(s student.Student) student.Student {
	if s.ClassIDs != nil {
		ids := make([]string, len(s.ClassIDs))
		copy(ids, s.ClassIDs)
		s.ClassIDs = ids
	}
	return s
}

// query must be called with (at least) the read lock held.
func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, copyStudent(*s))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.nextID()
	stored := copyStudent(s)
	repo.db.table[s.ID] = &stored
	return copyStudent(stored), nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return copyStudent(*s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.query() {
		if filter.Match(s) {
			students = append(students, s)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, id int, up student.UpdateStudent) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	stored := copyStudent(up.Merge(copyStudent(*orig)))
	repo.db.table[id] = &stored
	return copyStudent(stored), nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	delete(repo.db.table, id)
	return copyStudent(*s), nil
}
