package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/student"
)

func Test_studentApi_query(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, createUser(t, env.usrRepo, "Staff", "staffer", "staff@classtrack.cd", "", false, true))

	now := time.Now().UTC()
	emma := createStudent(t, env.studentRepo, "Emma", "Johnson", "STU-1001", "1")
	liam := createStudent(t, env.studentRepo, "Liam", "Martinez", "STU-1002", "1", "2")
	ava := createStudent(t, env.studentRepo, "Ava", "Dubois", "STU-1003")

	// emma avg 90, liam avg 62; ava has no data at all
	createGrade(t, env.gradeRepo, emma.ID, 1, "Chapter 5 Quiz", 45, 50, now)
	createGrade(t, env.gradeRepo, liam.ID, 1, "Chapter 5 Quiz", 31, 50, now)
	createRecord(t, env.attRepo, emma.ID, 1, attendance.StatusPresent, now)
	createRecord(t, env.attRepo, liam.ID, 1, attendance.StatusAbsent, now)

	path := func(search, classID, sortBy, sortDir string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if classID != "" {
			v.Add("class_id", classID)
		}
		if sortBy != "" {
			v.Add("sort_by", sortBy)
		}
		if sortDir != "" {
			v.Add("sort_dir", sortDir)
		}
		return "/v1/students?" + v.Encode()
	}

	type listItem struct {
		ID             int    `json:"id"`
		FirstName      string `json:"first_name"`
		GPA            *int   `json:"gpa"`
		AttendanceRate *int   `json:"attendance_rate"`
	}

	tests := []struct {
		name    string
		path    string
		wantIDs []int
	}{
		{name: "all, insertion order", path: "/v1/students", wantIDs: []int{emma.ID, liam.ID, ava.ID}},
		{name: "search", path: path("emma", "", "", ""), wantIDs: []int{emma.ID}},
		{name: "by class", path: path("", "2", "", ""), wantIDs: []int{liam.ID}},
		{name: "sort by name", path: path("", "", "name", ""), wantIDs: []int{ava.ID, emma.ID, liam.ID}},
		{name: "sort by performance, no data first", path: path("", "", "performance", ""), wantIDs: []int{ava.ID, liam.ID, emma.ID}},
		{name: "sort by performance desc", path: path("", "", "performance", "desc"), wantIDs: []int{emma.ID, liam.ID, ava.ID}},
		{name: "sort by attendance", path: path("", "", "attendance", ""), wantIDs: []int{ava.ID, liam.ID, emma.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, staffToken)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
			}

			var items []listItem
			if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("failed! len = %d; want %d", len(items), len(tt.wantIDs))
			}
			for i, item := range items {
				if item.ID != tt.wantIDs[i] {
					t.Errorf("failed! IDs[%d] = %d; want %d", i, item.ID, tt.wantIDs[i])
				}
			}
		})
	}

	t.Run("derived metrics are embedded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", staffToken)
		env.app.ServeHTTP(rec, req)

		var items []listItem
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if items[0].GPA == nil || *items[0].GPA != 90 {
			t.Errorf("emma GPA = %v; want 90", items[0].GPA)
		}
		if items[1].AttendanceRate == nil || *items[1].AttendanceRate != 0 {
			t.Errorf("liam AttendanceRate = %v; want 0", items[1].AttendanceRate)
		}
		if items[2].GPA != nil || items[2].AttendanceRate != nil {
			t.Errorf("ava stats = %v, %v; want null, null", items[2].GPA, items[2].AttendanceRate)
		}
	})

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/students")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})
}

func Test_studentApi_crud(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, createUser(t, env.usrRepo, "Staff", "staffer", "staff@classtrack.cd", "", false, true))

	reqMsg := "this field is required"

	var created student.Student

	t.Run("create requires fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", staffToken, marchallObj(t, student.NewStudent{}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"first_name": reqMsg, "last_name": reqMsg, "student_id": reqMsg, "email": reqMsg,
			}),
		}, rec)
	})

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, student.NewStudent{
			FirstName: "Noah",
			LastName:  "Okafor",
			StudentID: "STU-1004",
			Email:     "Noah.Okafor@School.edu",
			ClassIDs:  []string{"1"},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if created.ID == 0 {
			t.Error("failed! no ID assigned")
		}
		if created.Email != "noah.okafor@school.edu" { // lowered
			t.Errorf("failed! Email = %v", created.Email)
		}
		if created.EnrollmentDate.IsZero() {
			t.Error("failed! EnrollmentDate not defaulted")
		}
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+strconv.Itoa(created.ID), staffToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, created)}, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/999", staffToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"})}, rec)
	})

	t.Run("retrieve non-numeric id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/lol", staffToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("partial update", func(t *testing.T) {
		body := marchallObj(t, student.UpdateStudent{Phone: "555-0104"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/"+strconv.Itoa(created.ID), staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var updated student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if updated.Phone != "555-0104" {
			t.Errorf("failed! Phone = %v", updated.Phone)
		}
		if updated.FirstName != created.FirstName || updated.Email != created.Email {
			t.Error("failed! unset fields were touched")
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+strconv.Itoa(created.ID), staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v", rec.Code)
		}
		if _, err := env.studentRepo.GetStudentByID(ctx, created.ID); err != student.ErrNotFound {
			t.Errorf("GetStudentByID() err = %v; want ErrNotFound", err)
		}
	})
}

func Test_studentApi_queryGrades(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, createUser(t, env.usrRepo, "Staff", "staffer", "staff@classtrack.cd", "", false, true))

	now := time.Now().UTC()
	emma := createStudent(t, env.studentRepo, "Emma", "Johnson", "STU-1001", "1")
	liam := createStudent(t, env.studentRepo, "Liam", "Martinez", "STU-1002", "1")

	g1 := createGrade(t, env.gradeRepo, emma.ID, 1, "Chapter 5 Quiz", 45, 50, now)
	createGrade(t, env.gradeRepo, liam.ID, 1, "Chapter 5 Quiz", 31, 50, now)
	r1 := createRecord(t, env.attRepo, emma.ID, 1, attendance.StatusLate, now)

	tests := []httpTest{
		{
			name: "own grades only", path: "/v1/students/" + strconv.Itoa(emma.ID) + "/grades",
			wantCode: http.StatusOK, wantData: marchallList(t, g1),
		},
		{
			name: "own attendance only", path: "/v1/students/" + strconv.Itoa(emma.ID) + "/attendance",
			wantCode: http.StatusOK, wantData: marchallList(t, r1),
		},
		{
			name: "unknown student", path: "/v1/students/999/grades",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.token = staffToken

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
