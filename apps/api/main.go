package main

import (
	"context"
	"log"
	"os"

	echoapi "github.com/trezcool/classtrack/apps/api/echo"
	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/class"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/core/user"
	emailsvc "github.com/trezcool/classtrack/services/email"
	logsvc "github.com/trezcool/classtrack/services/logger"
	"github.com/trezcool/classtrack/storage/database"
	inmemdb "github.com/trezcool/classtrack/storage/database/inmem"
	pgdb "github.com/trezcool/classtrack/storage/database/pg"
)

func main() {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// set up repositories for the configured engine
	var (
		studentRepo    student.Repository
		classRepo      class.Repository
		gradeRepo      grade.Repository
		attendanceRepo attendance.Repository
		userRepo       user.Repository
	)
	var dbCheck func() error
	switch core.Conf.Database.Engine {
	case "postgres":
		db, err := database.Open(core.Conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer func() { _ = db.Close() }()

		if err = database.Migrate(db, core.Conf); err != nil {
			logger.Fatal("migrating database", err)
		}
		dbCheck = func() error { return database.StatusCheck(db) }

		studentRepo = pgdb.NewStudentRepository(db)
		classRepo = pgdb.NewClassRepository(db)
		gradeRepo = pgdb.NewGradeRepository(db)
		attendanceRepo = pgdb.NewAttendanceRepository(db)
		userRepo = pgdb.NewUserRepository(db)
	default: // inmem
		db, err := inmemdb.OpenSeeded()
		if err != nil {
			logger.Fatal("seeding database", err)
		}

		studentRepo = inmemdb.NewStudentRepository(db)
		classRepo = inmemdb.NewClassRepository(db)
		gradeRepo = inmemdb.NewGradeRepository(db)
		attendanceRepo = inmemdb.NewAttendanceRepository(db)
		userRepo = inmemdb.NewUserRepository(db)
	}

	usrSvc := user.NewService(userRepo, logger)
	if core.Conf.Debug {
		seedDefaultAdmin(usrSvc, logger)
	}

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:          core.Conf.Server.Addr(),
			DBCheck:       dbCheck,
			Logger:        logger,
			EmailSvc:      mailSvc,
			StudentSvc:    student.NewService(studentRepo, logger),
			ClassSvc:      class.NewService(classRepo, logger),
			GradeSvc:      grade.NewService(gradeRepo, logger),
			AttendanceSvc: attendance.NewService(attendanceRepo, logger),
			UserSvc:       usrSvc,
		},
	)
	logger.Info("server listening on " + core.Conf.Server.Addr())
	app.Start()
}

// seedDefaultAdmin creates a local admin account so a fresh Debug instance
// can be signed into without running the admin CLI first.
func seedDefaultAdmin(svc *user.Service, logger core.Logger) {
	ctx := context.Background()
	if _, err := svc.GetByUsernameOrEmail(ctx, "sysadmin"); err == nil {
		return
	}

	nu := user.NewUser{
		Name:     "Admin",
		Username: "sysadmin",
		Password: "LocalAdmin1!",
		IsAdmin:  true,
	}
	if _, err := svc.Create(ctx, nu); err != nil {
		logger.Warn("seeding default admin", err)
		return
	}
	logger.Info("default admin created (username: sysadmin)")
}
