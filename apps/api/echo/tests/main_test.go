package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/classtrack/apps/api/echo"
	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/class"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/core/user"
	emailsvc "github.com/trezcool/classtrack/services/email"
	inmemdb "github.com/trezcool/classtrack/storage/database/inmem"
)

var (
	ctx = context.Background()

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotFound     = httpErr{Error: "not found"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	// error bodies must keep their production shape
	core.Conf.Debug = false
	core.Conf.TestMode = true
	os.Exit(m.Run())
}

// nopLogger keeps test output quiet; repo failures cannot happen in-mem anyway.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	app echoapi.Server

	studentRepo student.Repository
	classRepo   class.Repository
	gradeRepo   grade.Repository
	attRepo     attendance.Repository
	usrRepo     user.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	// set up DB & repos
	db := inmemdb.Open()
	env := &testEnv{
		studentRepo: inmemdb.NewStudentRepository(db),
		classRepo:   inmemdb.NewClassRepository(db),
		gradeRepo:   inmemdb.NewGradeRepository(db),
		attRepo:     inmemdb.NewAttendanceRepository(db),
		usrRepo:     inmemdb.NewUserRepository(db),
	}

	// set up services & server
	logger := nopLogger{}
	env.app = echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		Logger:         logger,
		EmailSvc:       emailsvc.NewConsoleServiceMock(),
		StudentSvc:     student.NewService(env.studentRepo, logger),
		ClassSvc:       class.NewService(env.classRepo, logger),
		GradeSvc:       grade.NewService(env.gradeRepo, logger),
		AttendanceSvc:  attendance.NewService(env.attRepo, logger),
		UserSvc:        user.NewService(env.usrRepo, logger),
	})
	return env
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, isAdmin, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createStudent(t *testing.T, repo student.Repository, first, last, code string, classIDs ...string) student.Student {
	t.Helper()
	now := time.Now().UTC()
	if classIDs == nil {
		classIDs = []string{}
	}
	s, err := repo.CreateStudent(ctx, student.Student{
		FirstName:      first,
		LastName:       last,
		StudentID:      code,
		Email:          first + "@school.edu",
		EnrollmentDate: now,
		ClassIDs:       classIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return s
}

func createClass(t *testing.T, repo class.Repository, name, subject string) class.Class {
	t.Helper()
	now := time.Now().UTC()
	c, err := repo.CreateClass(ctx, class.Class{
		Name:         name,
		Subject:      subject,
		AcademicYear: "2023-2024",
		Semester:     class.SemesterSpring,
		StudentIDs:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("createClass(): %v", err)
	}
	return c
}

func createGrade(t *testing.T, repo grade.Repository, studentID, classID int, name string, score, maxScore float64, date time.Time) grade.Grade {
	t.Helper()
	now := time.Now().UTC()
	g, err := repo.CreateGrade(ctx, grade.Grade{
		StudentID:      studentID,
		ClassID:        classID,
		AssignmentName: name,
		Score:          score,
		MaxScore:       maxScore,
		Percentage:     grade.Percent(score, maxScore),
		Date:           date,
		Category:       grade.CategoryQuiz,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("createGrade(): %v", err)
	}
	return g
}

func createRecord(t *testing.T, repo attendance.Repository, studentID, classID int, status string, date time.Time) attendance.Record {
	t.Helper()
	r, err := repo.CreateRecord(ctx, attendance.Record{
		StudentID:  studentID,
		ClassID:    classID,
		Date:       date,
		Status:     status,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createRecord(): %v", err)
	}
	return r
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
