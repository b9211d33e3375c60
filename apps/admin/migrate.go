package main

import (
	"path/filepath"

	"github.com/pressly/goose"

	"github.com/trezcool/classtrack/core"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	migrationsDir := filepath.Join(core.Conf.WorkDir, "migrations")
	return gooseRunFunc(args[0], cli.db.DB, migrationsDir, arguments...)
}
