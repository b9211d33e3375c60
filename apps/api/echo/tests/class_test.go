package tests

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/trezcool/classtrack/core/class"
)

func Test_classApi(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, createUser(t, env.usrRepo, "Staff", "staffer", "staff@classtrack.cd", "", false, true))

	algebra := createClass(t, env.classRepo, "Algebra II", "Mathematics")
	history := createClass(t, env.classRepo, "World History", "History")

	algebraID := strconv.Itoa(algebra.ID)
	emma := createStudent(t, env.studentRepo, "Emma", "Johnson", "STU-1001", algebraID)
	createStudent(t, env.studentRepo, "Liam", "Martinez", "STU-1002", strconv.Itoa(history.ID))

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/classes", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Get all", method: http.MethodGet, path: "/v1/classes", token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, algebra, history),
		},
		{
			name: "semesters", method: http.MethodGet, path: "/v1/classes/semesters", token: staffToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, class.Semesters),
		},
		{
			name: "retrieve", method: http.MethodGet, path: "/v1/classes/" + algebraID, token: staffToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, algebra),
		},
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/v1/classes/999", token: staffToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
		{
			name: "enrolled students", method: http.MethodGet, path: "/v1/classes/" + algebraID + "/students", token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, emma),
		},
		{
			name: "enrolled students of unknown class", method: http.MethodGet, path: "/v1/classes/999/students", token: staffToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
		{
			name: "invalid semester rejected", method: http.MethodPost, path: "/v1/classes", token: staffToken,
			body: marchallObj(t, class.NewClass{
				Name: "Biology", Subject: "Science", AcademicYear: "2023-2024", Semester: "Midwinter",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"semester": "must be one of Fall, Spring, Summer or Winter"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, class.NewClass{
			Name: "Biology", Subject: "Science", AcademicYear: "2023-2024", Semester: class.SemesterFall,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var created class.Class
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if created.ID == 0 || created.Semester != class.SemesterFall {
			t.Errorf("failed! data = %+v", created)
		}
		if created.StudentIDs == nil {
			t.Error("failed! StudentIDs not defaulted")
		}
	})

	t.Run("partial update", func(t *testing.T) {
		body := marchallObj(t, class.UpdateClass{Name: "Algebra III"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/classes/"+algebraID, staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var updated class.Class
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if updated.Name != "Algebra III" || updated.Subject != algebra.Subject || updated.Semester != algebra.Semester {
			t.Errorf("failed! data = %+v", updated)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/classes/"+strconv.Itoa(history.ID), staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v", rec.Code)
		}
		if _, err := env.classRepo.GetClassByID(ctx, history.ID); err != class.ErrNotFound {
			t.Errorf("GetClassByID() err = %v; want ErrNotFound", err)
		}
	})
}
