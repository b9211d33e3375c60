package main

import (
	"context"
	"time"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	lookup := uname
	if lookup == "" {
		lookup = email
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, lookup)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			IsActive:  true,
			IsAdmin:   isAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	var hashed user.User
	if err = hashed.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	up := user.UpdateUser{
		Username:     uname,
		Email:        email,
		IsActive:     &active,
		IsAdmin:      &isAdmin,
		PasswordHash: hashed.PasswordHash,
		UpdatedAt:    now,
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr.ID, up)
	return err
}
