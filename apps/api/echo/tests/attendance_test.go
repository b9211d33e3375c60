package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/classtrack/core/attendance"
)

func Test_attendanceApi(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, createUser(t, env.usrRepo, "Staff", "staffer", "staff@classtrack.cd", "", false, true))

	emma := createStudent(t, env.studentRepo, "Emma", "Johnson", "STU-1001", "1")
	liam := createStudent(t, env.studentRepo, "Liam", "Martinez", "STU-1002", "1")

	feb15 := time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)
	feb16 := feb15.AddDate(0, 0, 1)
	r1 := createRecord(t, env.attRepo, emma.ID, 1, attendance.StatusPresent, feb15)
	r2 := createRecord(t, env.attRepo, liam.ID, 1, attendance.StatusAbsent, feb15)
	r3 := createRecord(t, env.attRepo, emma.ID, 2, attendance.StatusLate, feb16)

	path := func(search, date string, classID, studentID int) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if date != "" {
			v.Add("date", date)
		}
		if classID != 0 {
			v.Add("class_id", strconv.Itoa(classID))
		}
		if studentID != 0 {
			v.Add("student_id", strconv.Itoa(studentID))
		}
		return "/v1/attendance?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/attendance", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Get all", method: http.MethodGet, path: "/v1/attendance", token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, r1, r2, r3),
		},
		{
			name: "by day", method: http.MethodGet, path: path("", "2024-02-15", 0, 0), token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, r1, r2),
		},
		{
			name: "by day (RFC3339)", method: http.MethodGet, path: path("", "2024-02-16T23:59:00Z", 0, 0), token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, r3),
		},
		{
			name: "invalid date", method: http.MethodGet, path: path("", "yesterday", 0, 0), token: staffToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"date": "invalid date; use YYYY-MM-DD"}),
		},
		{
			name: "by student", method: http.MethodGet, path: path("", "", 0, emma.ID), token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, r1, r3),
		},
		{
			name: "search matches status", method: http.MethodGet, path: path("absent", "", 0, 0), token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, r2),
		},
		{
			name: "search matches student name", method: http.MethodGet, path: path("emma", "", 0, 0), token: staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, r1, r3),
		},
		{
			name: "statuses", method: http.MethodGet, path: "/v1/attendance/statuses", token: staffToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, attendance.Statuses),
		},
		{
			name: "unknown status rejected", method: http.MethodPost, path: "/v1/attendance", token: staffToken,
			body: marchallObj(t, attendance.NewRecord{
				StudentID: emma.ID, ClassID: 1, Date: feb16, Status: "tardy",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "must be one of present, late, absent or excused"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("create stamps RecordedAt", func(t *testing.T) {
		body := marchallObj(t, attendance.NewRecord{
			StudentID: liam.ID, ClassID: 2, Date: feb16, Status: attendance.StatusExcused, Notes: "doctor's note",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var created attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if created.RecordedAt.IsZero() {
			t.Error("failed! RecordedAt not set")
		}
	})

	t.Run("duplicate day entries are tolerated", func(t *testing.T) {
		body := marchallObj(t, attendance.NewRecord{
			StudentID: emma.ID, ClassID: 1, Date: feb15, Status: attendance.StatusLate,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("bulk create", func(t *testing.T) {
		body := marchallList(t,
			attendance.NewRecord{StudentID: emma.ID, ClassID: 3, Date: feb16, Status: attendance.StatusPresent},
			attendance.NewRecord{StudentID: liam.ID, ClassID: 3, Date: feb16, Status: attendance.StatusPresent},
		)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/bulk", staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var created []attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("failed! len(created) = %d; want 2", len(created))
		}
		for _, r := range created {
			if r.ID == 0 || r.RecordedAt.IsZero() {
				t.Errorf("failed! data = %+v", r)
			}
		}
	})

	t.Run("bulk create rejects an invalid entry up front", func(t *testing.T) {
		body := marchallList(t,
			attendance.NewRecord{StudentID: emma.ID, ClassID: 3, Date: feb16, Status: attendance.StatusPresent},
			attendance.NewRecord{StudentID: liam.ID, ClassID: 3, Date: feb16, Status: "tardy"},
		)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/bulk", staffToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "must be one of present, late, absent or excused"}),
		}, rec)
	})

	t.Run("bulk create requires at least one record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/bulk", staffToken, []byte(`[]`))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"records": "this field is required"}),
		}, rec)
	})

	t.Run("update cannot touch RecordedAt", func(t *testing.T) {
		body := []byte(`{"status": "excused", "recorded_at": "2030-01-01T00:00:00Z"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/"+strconv.Itoa(r2.ID), staffToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var updated attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if updated.Status != attendance.StatusExcused {
			t.Errorf("failed! Status = %v", updated.Status)
		}
		if !updated.RecordedAt.Equal(r2.RecordedAt) {
			t.Errorf("failed! RecordedAt = %v; want %v", updated.RecordedAt, r2.RecordedAt)
		}
	})
}
