package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/student"
)

type studentRow struct {
	ID             int            `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	StudentID      string         `db:"student_id"`
	Email          string         `db:"email"`
	Phone          null.String    `db:"phone"`
	PhotoURL       null.String    `db:"photo_url"`
	DateOfBirth    null.Time      `db:"date_of_birth"`
	EnrollmentDate time.Time      `db:"enrollment_date"`
	ClassIDs       pq.StringArray `db:"class_ids"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) row(s student.Student) studentRow {
	return studentRow{
		ID:             s.ID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		StudentID:      s.StudentID,
		Email:          s.Email,
		Phone:          null.NewString(s.Phone, s.Phone != ""),
		PhotoURL:       null.NewString(s.PhotoURL, s.PhotoURL != ""),
		DateOfBirth:    null.NewTime(s.DateOfBirth.UTC(), !s.DateOfBirth.IsZero()),
		EnrollmentDate: s.EnrollmentDate.UTC(),
		ClassIDs:       pq.StringArray(s.ClassIDs),
		CreatedAt:      s.CreatedAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
	}
}

func (repo *studentRepository) unrow(r studentRow) student.Student {
	classIDs := []string(r.ClassIDs)
	if classIDs == nil {
		classIDs = []string{}
	}
	return student.Student{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		StudentID:      r.StudentID,
		Email:          r.Email,
		Phone:          r.Phone.String,
		PhotoURL:       r.PhotoURL.String,
		DateOfBirth:    r.DateOfBirth.Time,
		EnrollmentDate: r.EnrollmentDate,
		ClassIDs:       classIDs,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (repo *studentRepository) unrowSlice(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, repo.unrow(r))
	}
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	r := repo.row(s)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO student (first_name, last_name, student_id, email, phone, photo_url,
		                     date_of_birth, enrollment_date, class_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		r.FirstName, r.LastName, r.StudentID, r.Email, r.Phone, r.PhotoURL,
		r.DateOfBirth, r.EnrollmentDate, r.ClassIDs, r.CreatedAt, r.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return student.Student{}, core.NewTransportError("inserting student", err)
	}
	return s, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	query := "SELECT * FROM student ORDER BY " + defaultOrdering.String()
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewTransportError("querying students", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM student WHERE id = $1", id); err != nil {
		return student.Student{}, trapNoRows(err, student.ErrNotFound, "finding student")
	}
	return repo.unrow(r), nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := "SELECT * FROM student WHERE true"
	var args []interface{}

	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND $%d = ANY (class_ids)", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND ((first_name || ' ' || last_name) ILIKE $%d OR student_id ILIKE $%d OR email ILIKE $%d)",
			n, n, n)
	}
	query += " ORDER BY " + defaultOrdering.String()

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, core.NewTransportError("filtering students", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, id int, up student.UpdateStudent) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, core.NewTransportError("beginning tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orig studentRow
	if err = tx.GetContext(ctx, &orig, "SELECT * FROM student WHERE id = $1 FOR UPDATE", id); err != nil {
		return student.Student{}, trapNoRows(err, student.ErrNotFound, "finding student")
	}

	merged := up.Merge(repo.unrow(orig))
	r := repo.row(merged)
	_, err = tx.ExecContext(ctx, `
		UPDATE student
		SET first_name = $1, last_name = $2, student_id = $3, email = $4, phone = $5,
		    photo_url = $6, date_of_birth = $7, enrollment_date = $8, class_ids = $9, updated_at = $10
		WHERE id = $11`,
		r.FirstName, r.LastName, r.StudentID, r.Email, r.Phone,
		r.PhotoURL, r.DateOfBirth, r.EnrollmentDate, r.ClassIDs, r.UpdatedAt, id,
	)
	if err != nil {
		return student.Student{}, core.NewTransportError("updating student", err)
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, core.NewTransportError("committing student update", err)
	}
	return merged, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, "DELETE FROM student WHERE id = $1 RETURNING *", id); err != nil {
		return student.Student{}, trapNoRows(err, student.ErrNotFound, "deleting student")
	}
	return repo.unrow(r), nil
}
