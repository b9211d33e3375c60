package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/classtrack/core"
)

// User is a staff account that can sign in to the dashboard.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"omitempty,min=6,alphanum"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	IsAdmin         bool   `json:"is_admin"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string    `json:"name"`
	Username        string    `json:"username" validate:"omitempty,min=6,alphanum"`
	Email           string    `json:"email" validate:"omitempty,email"`
	IsActive        *bool     `json:"is_active"`
	IsAdmin         *bool     `json:"is_admin"`
	Password        string    `json:"password" validate:"omitempty"`
	PasswordConfirm string    `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	PasswordHash    []byte    `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Username = core.CleanString(uu.Username, true /* lower */)
	uu.Email = core.CleanString(uu.Email, true /* lower */)

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}

// Merge applies the supplied fields onto orig.
func (uu UpdateUser) Merge(orig User) User {
	if uu.Name != "" {
		orig.Name = uu.Name
	}
	if uu.PasswordHash != nil {
		orig.PasswordHash = uu.PasswordHash
	}
	if uu.Username != "" {
		orig.Username = uu.Username
	}
	if uu.Email != "" {
		orig.Email = uu.Email
	}
	if uu.IsActive != nil {
		orig.IsActive = *uu.IsActive
	}
	if uu.IsAdmin != nil {
		orig.IsAdmin = *uu.IsAdmin
	}
	if !uu.UpdatedAt.IsZero() {
		orig.UpdatedAt = uu.UpdatedAt
	}
	return orig
}
