package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/grade"
)

type gradeRow struct {
	ID             int         `db:"id"`
	StudentID      int         `db:"student_id"`
	ClassID        int         `db:"class_id"`
	AssignmentName string      `db:"assignment_name"`
	Score          float64     `db:"score"`
	MaxScore       float64     `db:"max_score"`
	Percentage     int         `db:"percentage"`
	Date           time.Time   `db:"date"`
	Category       string      `db:"category"`
	Notes          null.String `db:"notes"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) row(g grade.Grade) gradeRow {
	return gradeRow{
		ID:             g.ID,
		StudentID:      g.StudentID,
		ClassID:        g.ClassID,
		AssignmentName: g.AssignmentName,
		Score:          g.Score,
		MaxScore:       g.MaxScore,
		Percentage:     g.Percentage,
		Date:           g.Date.UTC(),
		Category:       g.Category,
		Notes:          null.NewString(g.Notes, g.Notes != ""),
		CreatedAt:      g.CreatedAt.UTC(),
		UpdatedAt:      g.UpdatedAt.UTC(),
	}
}

func (repo *gradeRepository) unrow(r gradeRow) grade.Grade {
	return grade.Grade{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ClassID:        r.ClassID,
		AssignmentName: r.AssignmentName,
		Score:          r.Score,
		MaxScore:       r.MaxScore,
		Percentage:     r.Percentage,
		Date:           r.Date,
		Category:       r.Category,
		Notes:          r.Notes.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (repo *gradeRepository) unrowSlice(rows []gradeRow) []grade.Grade {
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, repo.unrow(r))
	}
	return grades
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	r := repo.row(g)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO grade (student_id, class_id, assignment_name, score, max_score, percentage,
		                   date, category, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		r.StudentID, r.ClassID, r.AssignmentName, r.Score, r.MaxScore, r.Percentage,
		r.Date, r.Category, r.Notes, r.CreatedAt, r.UpdatedAt,
	).Scan(&g.ID)
	if err != nil {
		return grade.Grade{}, core.NewTransportError("inserting grade", err)
	}
	return g, nil
}

func (repo *gradeRepository) QueryAllGrades(ctx context.Context) ([]grade.Grade, error) {
	var rows []gradeRow
	query := "SELECT * FROM grade ORDER BY " + defaultOrdering.String()
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewTransportError("querying grades", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	var r gradeRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM grade WHERE id = $1", id); err != nil {
		return grade.Grade{}, trapNoRows(err, grade.ErrNotFound, "finding grade")
	}
	return repo.unrow(r), nil
}

func (repo *gradeRepository) FilterGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	query := "SELECT g.* FROM grade g"
	if filter.Search != "" {
		// the search term also matches the referenced student's full name
		query += " LEFT JOIN student s ON s.id = g.student_id"
	}
	query += " WHERE true"
	var args []interface{}

	if filter.ClassID != 0 {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND g.class_id = $%d", len(args))
	}
	if filter.StudentID != 0 {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND g.student_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (g.assignment_name ILIKE $%d OR g.category ILIKE $%d OR (s.first_name || ' ' || s.last_name) ILIKE $%d)",
			n, n, n)
	}
	query += " ORDER BY g." + defaultOrdering.String()

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, core.NewTransportError("filtering grades", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, id int, up grade.UpdateGrade) (grade.Grade, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return grade.Grade{}, core.NewTransportError("beginning tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orig gradeRow
	if err = tx.GetContext(ctx, &orig, "SELECT * FROM grade WHERE id = $1 FOR UPDATE", id); err != nil {
		return grade.Grade{}, trapNoRows(err, grade.ErrNotFound, "finding grade")
	}

	merged := up.Merge(repo.unrow(orig))
	r := repo.row(merged)
	_, err = tx.ExecContext(ctx, `
		UPDATE grade
		SET student_id = $1, class_id = $2, assignment_name = $3, score = $4, max_score = $5,
		    percentage = $6, date = $7, category = $8, notes = $9, updated_at = $10
		WHERE id = $11`,
		r.StudentID, r.ClassID, r.AssignmentName, r.Score, r.MaxScore,
		r.Percentage, r.Date, r.Category, r.Notes, r.UpdatedAt, id,
	)
	if err != nil {
		return grade.Grade{}, core.NewTransportError("updating grade", err)
	}
	if err = tx.Commit(); err != nil {
		return grade.Grade{}, core.NewTransportError("committing grade update", err)
	}
	return merged, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	var r gradeRow
	if err := repo.db.GetContext(ctx, &r, "DELETE FROM grade WHERE id = $1 RETURNING *", id); err != nil {
		return grade.Grade{}, trapNoRows(err, grade.ErrNotFound, "deleting grade")
	}
	return repo.unrow(r), nil
}
