package grade

import (
	"testing"
	"time"

	"github.com/trezcool/classtrack/core"
)

func fPtr(f float64) *float64 { return &f }

func TestPercent(t *testing.T) {
	tests := []struct {
		score, maxScore float64
		want            int
	}{
		{45, 50, 90},
		{52, 80, 65},
		{2, 3, 67}, // rounded, not truncated
		{0, 10, 0},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.score, tt.maxScore); got != tt.want {
			t.Errorf("Percent(%v, %v) = %v; want %v", tt.score, tt.maxScore, got, tt.want)
		}
	}
}

func TestUpdateGrade_Merge(t *testing.T) {
	orig := Grade{
		ID:             1,
		StudentID:      1,
		ClassID:        1,
		AssignmentName: "Chapter 5 Quiz",
		Score:          45,
		MaxScore:       50,
		Percentage:     90,
		Category:       CategoryQuiz,
	}

	t.Run("score change recomputes percentage", func(t *testing.T) {
		got := (UpdateGrade{Score: fPtr(31)}).Merge(orig)
		if got.Score != 31 || got.Percentage != 62 {
			t.Errorf("Merge() Score = %v, Percentage = %v; want 31, 62", got.Score, got.Percentage)
		}
	})

	t.Run("max score change recomputes percentage", func(t *testing.T) {
		got := (UpdateGrade{MaxScore: fPtr(90)}).Merge(orig)
		if got.Percentage != 50 {
			t.Errorf("Merge() Percentage = %v; want 50", got.Percentage)
		}
	})

	t.Run("zero score is a real value", func(t *testing.T) {
		got := (UpdateGrade{Score: fPtr(0)}).Merge(orig)
		if got.Score != 0 || got.Percentage != 0 {
			t.Errorf("Merge() Score = %v, Percentage = %v; want 0, 0", got.Score, got.Percentage)
		}
	})

	t.Run("no score change keeps stored percentage", func(t *testing.T) {
		got := (UpdateGrade{AssignmentName: "Chapter 6 Quiz"}).Merge(orig)
		if got.Percentage != 90 {
			t.Errorf("Merge() Percentage = %v; want 90", got.Percentage)
		}
		if got.AssignmentName != "Chapter 6 Quiz" {
			t.Errorf("Merge() AssignmentName = %v", got.AssignmentName)
		}
	})
}

func TestUpdateGrade_Validate(t *testing.T) {
	ug := UpdateGrade{Score: fPtr(60), MaxScore: fPtr(50)}
	err := ug.Validate()
	if err == nil {
		t.Fatal("Validate() = nil; want error")
	}
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Validate() err type = %T; want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "score" {
		t.Errorf("Validate() fields = %+v", vErr.Fields)
	}

	ug = UpdateGrade{Score: fPtr(40), MaxScore: fPtr(50), Category: CategoryExam}
	if err = ug.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}
}

func TestQueryFilter_Match(t *testing.T) {
	g := Grade{StudentID: 1, ClassID: 2, AssignmentName: "Midterm Exam", Category: CategoryExam}

	tests := []struct {
		name        string
		filter      QueryFilter
		studentName string
		want        bool
	}{
		{name: "empty filter matches", filter: QueryFilter{}, want: true},
		{name: "class match", filter: QueryFilter{ClassID: 2}, want: true},
		{name: "class miss", filter: QueryFilter{ClassID: 3}, want: false},
		{name: "student match", filter: QueryFilter{StudentID: 1}, want: true},
		{name: "search matches assignment", filter: QueryFilter{Search: "midterm"}, want: true},
		{name: "search matches category", filter: QueryFilter{Search: "exam"}, want: true},
		{name: "search matches student name", filter: QueryFilter{Search: "emma"}, studentName: "Emma Johnson", want: true},
		{name: "search miss", filter: QueryFilter{Search: "quiz"}, studentName: "Emma Johnson", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(g, tt.studentName); got != tt.want {
				t.Errorf("Match() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSortByDateDesc(t *testing.T) {
	now := time.Now()
	g1 := Grade{ID: 1, Date: now.Add(-2 * time.Hour)}
	g2 := Grade{ID: 2, Date: now}
	g3 := Grade{ID: 3, Date: now.Add(-1 * time.Hour)}

	grades := []Grade{g1, g2, g3}
	got := SortByDateDesc(grades)

	wantIDs := []int{2, 3, 1}
	for i, g := range got {
		if g.ID != wantIDs[i] {
			t.Errorf("SortByDateDesc()[%d].ID = %d; want %d", i, g.ID, wantIDs[i])
		}
	}
	if grades[0].ID != 1 {
		t.Error("SortByDateDesc() mutated its input")
	}
}
