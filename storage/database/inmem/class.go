package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classtrack/core/class"
)

type classRepository struct {
	db *classTable
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db.class}
}

func copyClass(c class.Class) class.Class {
	if c.StudentIDs != nil {
		ids := make([]string, len(c.StudentIDs))
		copy(ids, c.StudentIDs)
		c.StudentIDs = ids
	}
	return c
}

// query must be called with (at least) the read lock held.
func (repo *classRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		classes = append(classes, copyClass(*c))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextID()
	stored := copyClass(c)
	repo.db.table[c.ID] = &stored
	return copyClass(stored), nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return copyClass(*c), nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(ctx context.Context, id int, up class.UpdateClass) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[id]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	stored := copyClass(up.Merge(copyClass(*orig)))
	repo.db.table[id] = &stored
	return copyClass(stored), nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	delete(repo.db.table, id)
	return copyClass(*c), nil
}
