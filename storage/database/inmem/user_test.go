package inmemdb

import (
	"testing"

	"github.com/trezcool/classtrack/core/user"
)

func createUser(t *testing.T, repo user.Repository, name, uname, email string) user.User {
	t.Helper()
	usr, err := repo.CreateUser(ctx, user.User{Name: name, Username: uname, Email: email, IsActive: true})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func Test_userRepository_CheckUsernameUniqueness(t *testing.T) {
	repo := NewUserRepository(Open())

	admin := createUser(t, repo, "Admin", "admin", "admin@classtrack.cd")
	createUser(t, repo, "No Email", "noemail", "")

	tests := []struct {
		name     string
		username string
		email    string
		excluded []user.User
		wantErr  error
	}{
		{name: "available", username: "newuser", email: "new@classtrack.cd"},
		{name: "username taken", username: "admin", wantErr: user.ErrUsernameExists},
		{name: "email taken", email: "admin@classtrack.cd", wantErr: user.ErrEmailExists},
		{name: "taken by excluded user", username: "admin", excluded: []user.User{admin}},
		{name: "empty email never matches the blank record", email: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CheckUsernameUniqueness(ctx, tt.username, tt.email, tt.excluded...)
			if err != tt.wantErr {
				t.Errorf("CheckUsernameUniqueness() err = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_userRepository_GetUserByUsernameOrEmail(t *testing.T) {
	repo := NewUserRepository(Open())
	admin := createUser(t, repo, "Admin", "admin", "admin@classtrack.cd")

	for _, lookup := range []string{"admin", "admin@classtrack.cd"} {
		usr, err := repo.GetUserByUsernameOrEmail(ctx, lookup)
		if err != nil {
			t.Fatalf("GetUserByUsernameOrEmail(%s): %v", lookup, err)
		}
		if usr.ID != admin.ID {
			t.Errorf("GetUserByUsernameOrEmail(%s) ID = %d; want %d", lookup, usr.ID, admin.ID)
		}
	}

	if _, err := repo.GetUserByUsernameOrEmail(ctx, "ghost"); err != user.ErrNotFound {
		t.Errorf("GetUserByUsernameOrEmail() err = %v; want ErrNotFound", err)
	}
}

func Test_userRepository_UpdateUser(t *testing.T) {
	repo := NewUserRepository(Open())
	usr := createUser(t, repo, "Admin", "admin", "admin@classtrack.cd")

	isAdmin := true
	updated, err := repo.UpdateUser(ctx, usr.ID, user.UpdateUser{IsAdmin: &isAdmin})
	if err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}
	if !updated.IsAdmin {
		t.Error("UpdateUser() IsAdmin = false; want true")
	}
	if updated.Username != usr.Username || !updated.IsActive {
		t.Error("UpdateUser() touched unset fields")
	}
}
