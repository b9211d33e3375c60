package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core/grade"
)

type gradeRepository struct {
	db *DB // needs the student table to resolve names for search
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

// query must be called with (at least) the grade table's read lock held.
func (repo *gradeRepository) query() []grade.Grade {
	grades := make([]grade.Grade, 0, len(repo.db.grade.table))
	for _, g := range repo.db.grade.table {
		grades = append(grades, *g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades
}

func (repo *gradeRepository) studentName(id int) string {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	if s, ok := repo.db.student.table[id]; ok {
		return s.FullName()
	}
	return ""
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.grade.mutex.Lock()
	defer repo.db.grade.mutex.Unlock()

	g.ID = repo.db.grade.nextID()
	repo.db.grade.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) QueryAllGrades(ctx context.Context) ([]grade.Grade, error) {
	repo.db.grade.mutex.RLock()
	defer repo.db.grade.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	repo.db.grade.mutex.RLock()
	defer repo.db.grade.mutex.RUnlock()

	if g, ok := repo.db.grade.table[id]; ok {
		return *g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) FilterGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	repo.db.grade.mutex.RLock()
	defer repo.db.grade.mutex.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.query() {
		var name string
		if filter.Search != "" {
			name = repo.studentName(g.StudentID)
		}
		if filter.Match(g, name) {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, id int, up grade.UpdateGrade) (grade.Grade, error) {
	repo.db.grade.mutex.Lock()
	defer repo.db.grade.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.grade.table[id]
	if !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	stored := up.Merge(*orig)
	repo.db.grade.table[id] = &stored
	return stored, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	repo.db.grade.mutex.Lock()
	defer repo.db.grade.mutex.Unlock()

	g, ok := repo.db.grade.table[id]
	if !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	delete(repo.db.grade.table, id)
	return *g, nil
}
