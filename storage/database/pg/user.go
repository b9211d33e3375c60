package pgdb

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/user"
)

type userRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	IsActive     bool        `db:"is_active"`
	IsAdmin      bool        `db:"is_admin"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) row(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.IsActive,
		IsAdmin:      usr.IsAdmin,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo *userRepository) unrow(r userRow) user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		IsAdmin:      r.IsAdmin,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func (repo *userRepository) unrowSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, repo.unrow(r))
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var rows []userRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM "user"
		WHERE (username = $1 OR email = $2) AND id != ALL($3)`,
		username, email, pq.Array(exclIDs),
	)
	if err != nil {
		return core.NewTransportError("checking user uniqueness", err)
	}

	for _, r := range rows {
		if username != "" && r.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && r.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	r := repo.row(usr)
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO "user" (name, username, email, is_active, is_admin, password_hash,
		                    created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		r.Name, r.Username, r.Email, r.IsActive, r.IsAdmin, r.PasswordHash,
		r.CreatedAt, r.UpdatedAt, r.LastLogin,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, core.NewTransportError("inserting user", err)
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	query := `SELECT * FROM "user" ORDER BY ` + defaultOrdering.String()
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewTransportError("querying users", err)
	}
	return repo.unrowSlice(rows), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var r userRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var r userRow
	err := repo.db.GetContext(ctx, &r, `SELECT * FROM "user" WHERE username = $1 OR email = $1`, username)
	if err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, id int, up user.UpdateUser) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, core.NewTransportError("beginning tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orig userRow
	if err = tx.GetContext(ctx, &orig, `SELECT * FROM "user" WHERE id = $1 FOR UPDATE`, id); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user")
	}

	merged := up.Merge(repo.unrow(orig))
	r := repo.row(merged)
	_, err = tx.ExecContext(ctx, `
		UPDATE "user"
		SET name = $1, username = $2, email = $3, is_active = $4, is_admin = $5, password_hash = $6, updated_at = $7
		WHERE id = $8`,
		r.Name, r.Username, r.Email, r.IsActive, r.IsAdmin, r.PasswordHash, r.UpdatedAt, id,
	)
	if err != nil {
		return user.User{}, core.NewTransportError("updating user", err)
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, core.NewTransportError("committing user update", err)
	}
	return merged, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id int, t time.Time) (user.User, error) {
	var r userRow
	err := repo.db.GetContext(ctx, &r, `
		UPDATE "user" SET last_login = $1 WHERE id = $2 RETURNING *`,
		t.UTC(), id,
	)
	if err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "setting last login")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id int) (user.User, error) {
	var r userRow
	if err := repo.db.GetContext(ctx, &r, `DELETE FROM "user" WHERE id = $1 RETURNING *`, id); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "deleting user")
	}
	return repo.unrow(r), nil
}
