package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/metrics"
)

func Test_dashboardApi_retrieve(t *testing.T) {
	env := setup(t)
	staffToken := getToken(t, createUser(t, env.usrRepo, "Staff", "staffer", "staff@classtrack.cd", "", false, true))

	now := time.Now().UTC()
	emma := createStudent(t, env.studentRepo, "Emma", "Johnson", "STU-1001", "1")
	liam := createStudent(t, env.studentRepo, "Liam", "Martinez", "STU-1002", "1")
	createClass(t, env.classRepo, "Algebra II", "Mathematics")

	// emma avg 90, liam avg 62: liam lands below the 75% default threshold
	createGrade(t, env.gradeRepo, emma.ID, 1, "Chapter 5 Quiz", 45, 50, now.Add(-2*time.Hour))
	createGrade(t, env.gradeRepo, liam.ID, 1, "Chapter 5 Quiz", 31, 50, now.Add(-1*time.Hour))

	createRecord(t, env.attRepo, emma.ID, 1, attendance.StatusPresent, now.Add(-26*time.Hour))
	createRecord(t, env.attRepo, liam.ID, 1, attendance.StatusAbsent, now.Add(-25*time.Hour))
	createRecord(t, env.attRepo, emma.ID, 1, attendance.StatusExcused, now.Add(-2*time.Hour))
	createRecord(t, env.attRepo, liam.ID, 1, attendance.StatusLate, now.Add(-1*time.Hour))

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/dashboard")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("snapshot", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", staffToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}

		var resp struct {
			TotalStudents  int                     `json:"total_students"`
			TotalClasses   int                     `json:"total_classes"`
			AverageGPA     int                     `json:"average_gpa"`
			AttendanceRate int                     `json:"attendance_rate"`
			AtRiskStudents []metrics.AtRiskStudent `json:"at_risk_students"`
			RecentActivity []metrics.Activity      `json:"recent_activity"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}

		if resp.TotalStudents != 2 {
			t.Errorf("TotalStudents = %d; want 2", resp.TotalStudents)
		}
		if resp.TotalClasses != 1 {
			t.Errorf("TotalClasses = %d; want 1", resp.TotalClasses)
		}
		if resp.AverageGPA != 76 { // (90+62)/2
			t.Errorf("AverageGPA = %d; want 76", resp.AverageGPA)
		}
		if resp.AttendanceRate != 50 { // present+excused out of 4
			t.Errorf("AttendanceRate = %d; want 50", resp.AttendanceRate)
		}

		if len(resp.AtRiskStudents) != 1 || resp.AtRiskStudents[0].ID != liam.ID || resp.AtRiskStudents[0].AvgGrade != 62 {
			t.Errorf("AtRiskStudents = %+v; want liam at 62", resp.AtRiskStudents)
		}

		// 2 grades + the 2 most recent non-present records; ties keep grades first
		wantIDs := []string{"grade-2", "attendance-4", "grade-1", "attendance-3"}
		if len(resp.RecentActivity) != len(wantIDs) {
			t.Fatalf("RecentActivity len = %d; want %d", len(resp.RecentActivity), len(wantIDs))
		}
		for i, a := range resp.RecentActivity {
			if a.ID != wantIDs[i] {
				t.Errorf("RecentActivity[%d].ID = %s; want %s", i, a.ID, wantIDs[i])
			}
		}
	})
}
