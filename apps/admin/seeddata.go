package main

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	inmemdb "github.com/trezcool/classtrack/storage/database/inmem"
	pgdb "github.com/trezcool/classtrack/storage/database/pg"
)

// seedData loads the embedded demo dataset into the database. It refuses to
// run against a non-empty students table: the fixtures reference each other
// by id, and serial ids only line up with those references on a fresh schema.
func (cli *commandLine) seedData() error {
	ctx := context.Background()

	studentRepo := pgdb.NewStudentRepository(cli.db)
	classRepo := pgdb.NewClassRepository(cli.db)
	gradeRepo := pgdb.NewGradeRepository(cli.db)
	attRepo := pgdb.NewAttendanceRepository(cli.db)

	existing, err := studentRepo.QueryAllStudents(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return errors.New("database is not empty; seeddata requires a fresh schema")
	}

	fixtures, err := inmemdb.LoadFixtures()
	if err != nil {
		return err
	}

	// insert in id order so serial ids match the fixtures' cross-references
	sort.Slice(fixtures.Classes, func(i, j int) bool { return fixtures.Classes[i].ID < fixtures.Classes[j].ID })
	for _, c := range fixtures.Classes {
		if _, err = classRepo.CreateClass(ctx, c); err != nil {
			return err
		}
	}

	sort.Slice(fixtures.Students, func(i, j int) bool { return fixtures.Students[i].ID < fixtures.Students[j].ID })
	for _, s := range fixtures.Students {
		if _, err = studentRepo.CreateStudent(ctx, s); err != nil {
			return err
		}
	}

	sort.Slice(fixtures.Grades, func(i, j int) bool { return fixtures.Grades[i].ID < fixtures.Grades[j].ID })
	for _, g := range fixtures.Grades {
		if _, err = gradeRepo.CreateGrade(ctx, g); err != nil {
			return err
		}
	}

	sort.Slice(fixtures.Records, func(i, j int) bool { return fixtures.Records[i].ID < fixtures.Records[j].ID })
	for _, r := range fixtures.Records {
		if _, err = attRepo.CreateRecord(ctx, r); err != nil {
			return err
		}
	}

	logger.Printf(
		"seeded %d classes, %d students, %d grades, %d attendance records",
		len(fixtures.Classes), len(fixtures.Students), len(fixtures.Grades), len(fixtures.Records),
	)
	return nil
}
