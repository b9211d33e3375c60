package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
)

type attendanceRow struct {
	ID         int         `db:"id"`
	StudentID  int         `db:"student_id"`
	ClassID    int         `db:"class_id"`
	Date       time.Time   `db:"date"`
	Status     string      `db:"status"`
	Notes      null.String `db:"notes"`
	RecordedAt time.Time   `db:"recorded_at"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) row(r attendance.Record) attendanceRow {
	return attendanceRow{
		ID:         r.ID,
		StudentID:  r.StudentID,
		ClassID:    r.ClassID,
		Date:       r.Date.UTC(),
		Status:     r.Status,
		Notes:      null.NewString(r.Notes, r.Notes != ""),
		RecordedAt: r.RecordedAt.UTC(),
	}
}

func (repo *attendanceRepository) unrow(r attendanceRow) attendance.Record {
	return attendance.Record{
		ID:         r.ID,
		StudentID:  r.StudentID,
		ClassID:    r.ClassID,
		Date:       r.Date,
		Status:     r.Status,
		Notes:      r.Notes.String,
		RecordedAt: r.RecordedAt,
	}
}

func (repo *attendanceRepository) unrowSlice(rows []attendanceRow) []attendance.Record {
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, repo.unrow(r))
	}
	return records
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	r := repo.row(rec)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO attendance (student_id, class_id, date, status, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		r.StudentID, r.ClassID, r.Date, r.Status, r.Notes, r.RecordedAt,
	).Scan(&rec.ID)
	if err != nil {
		return attendance.Record{}, core.NewTransportError("inserting attendance record", err)
	}
	return rec, nil
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context) ([]attendance.Record, error) {
	var rows []attendanceRow
	query := "SELECT * FROM attendance ORDER BY " + defaultOrdering.String()
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewTransportError("querying attendance", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id int) (attendance.Record, error) {
	var r attendanceRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM attendance WHERE id = $1", id); err != nil {
		return attendance.Record{}, trapNoRows(err, attendance.ErrNotFound, "finding attendance record")
	}
	return repo.unrow(r), nil
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	query := "SELECT a.* FROM attendance a"
	if filter.Search != "" {
		// the search term also matches the referenced student's full name
		query += " LEFT JOIN student s ON s.id = a.student_id"
	}
	query += " WHERE true"
	var args []interface{}

	if filter.ClassID != 0 {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND a.class_id = $%d", len(args))
	}
	if filter.StudentID != 0 {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND a.student_id = $%d", len(args))
	}
	if !filter.Date.IsZero() {
		args = append(args, filter.Date.UTC())
		query += fmt.Sprintf(" AND (a.date AT TIME ZONE 'UTC')::date = ($%d AT TIME ZONE 'UTC')::date", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (a.status ILIKE $%d OR (s.first_name || ' ' || s.last_name) ILIKE $%d)",
			n, n)
	}
	query += " ORDER BY a." + defaultOrdering.String()

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, core.NewTransportError("filtering attendance", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, id int, up attendance.UpdateRecord) (attendance.Record, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return attendance.Record{}, core.NewTransportError("beginning tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orig attendanceRow
	if err = tx.GetContext(ctx, &orig, "SELECT * FROM attendance WHERE id = $1 FOR UPDATE", id); err != nil {
		return attendance.Record{}, trapNoRows(err, attendance.ErrNotFound, "finding attendance record")
	}

	merged := up.Merge(repo.unrow(orig))
	r := repo.row(merged)
	_, err = tx.ExecContext(ctx, `
		UPDATE attendance
		SET student_id = $1, class_id = $2, date = $3, status = $4, notes = $5
		WHERE id = $6`,
		r.StudentID, r.ClassID, r.Date, r.Status, r.Notes, id,
	)
	if err != nil {
		return attendance.Record{}, core.NewTransportError("updating attendance record", err)
	}
	if err = tx.Commit(); err != nil {
		return attendance.Record{}, core.NewTransportError("committing attendance update", err)
	}
	return merged, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id int) (attendance.Record, error) {
	var r attendanceRow
	if err := repo.db.GetContext(ctx, &r, "DELETE FROM attendance WHERE id = $1 RETURNING *", id); err != nil {
		return attendance.Record{}, trapNoRows(err, attendance.ErrNotFound, "deleting attendance record")
	}
	return repo.unrow(r), nil
}
