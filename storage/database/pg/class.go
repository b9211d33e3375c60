package pgdb

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/class"
)

type classRow struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Subject      string         `db:"subject"`
	AcademicYear string         `db:"academic_year"`
	Semester     string         `db:"semester"`
	StudentIDs   pq.StringArray `db:"student_ids"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) row(c class.Class) classRow {
	return classRow{
		ID:           c.ID,
		Name:         c.Name,
		Subject:      c.Subject,
		AcademicYear: c.AcademicYear,
		Semester:     c.Semester,
		StudentIDs:   pq.StringArray(c.StudentIDs),
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func (repo *classRepository) unrow(r classRow) class.Class {
	studentIDs := []string(r.StudentIDs)
	if studentIDs == nil {
		studentIDs = []string{}
	}
	return class.Class{
		ID:           r.ID,
		Name:         r.Name,
		Subject:      r.Subject,
		AcademicYear: r.AcademicYear,
		Semester:     r.Semester,
		StudentIDs:   studentIDs,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (repo *classRepository) unrowSlice(rows []classRow) []class.Class {
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, repo.unrow(r))
	}
	return classes
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	r := repo.row(c)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO class (name, subject, academic_year, semester, student_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		r.Name, r.Subject, r.AcademicYear, r.Semester, r.StudentIDs, r.CreatedAt, r.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return class.Class{}, core.NewTransportError("inserting class", err)
	}
	return c, nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	var rows []classRow
	query := "SELECT * FROM class ORDER BY " + defaultOrdering.String()
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewTransportError("querying classes", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (class.Class, error) {
	var r classRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM class WHERE id = $1", id); err != nil {
		return class.Class{}, trapNoRows(err, class.ErrNotFound, "finding class")
	}
	return repo.unrow(r), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, id int, up class.UpdateClass) (class.Class, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return class.Class{}, core.NewTransportError("beginning tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orig classRow
	if err = tx.GetContext(ctx, &orig, "SELECT * FROM class WHERE id = $1 FOR UPDATE", id); err != nil {
		return class.Class{}, trapNoRows(err, class.ErrNotFound, "finding class")
	}

	merged := up.Merge(repo.unrow(orig))
	r := repo.row(merged)
	_, err = tx.ExecContext(ctx, `
		UPDATE class
		SET name = $1, subject = $2, academic_year = $3, semester = $4, student_ids = $5, updated_at = $6
		WHERE id = $7`,
		r.Name, r.Subject, r.AcademicYear, r.Semester, r.StudentIDs, r.UpdatedAt, id,
	)
	if err != nil {
		return class.Class{}, core.NewTransportError("updating class", err)
	}
	if err = tx.Commit(); err != nil {
		return class.Class{}, core.NewTransportError("committing class update", err)
	}
	return merged, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) (class.Class, error) {
	var r classRow
	if err := repo.db.GetContext(ctx, &r, "DELETE FROM class WHERE id = $1 RETURNING *", id); err != nil {
		return class.Class{}, trapNoRows(err, class.ErrNotFound, "deleting class")
	}
	return repo.unrow(r), nil
}
