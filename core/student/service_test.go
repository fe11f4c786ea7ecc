package student_test

import (
	"errors"
	"testing"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/services/email"
	"github.com/shuledesk/shuledesk/tests"
)

func Test_service_Create(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	s, err := svc.Create(student.NewStudent{
		Roll: " s1 ", Name: " Asha ",
		DSA: "85.6", OS: "150", DBMS: "abc", CN: "-5",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if s.Roll != "s1" || s.Name != "Asha" {
		t.Errorf("identity not cleaned: roll %q, name %q", s.Roll, s.Name)
	}
	if marks := s.Marks(); marks != [4]int{86, 100, 0, 0} {
		t.Errorf("marks = %v, want [86 100 0 0]", marks)
	}
	if s.Total != 186 {
		t.Errorf("Total = %d, want 186", s.Total)
	}
	if s.Percentage != 46.5 {
		t.Errorf("Percentage = %v, want 46.5", s.Percentage)
	}
	// fee defaults
	if got := s.FeeTotal.String(); got != "1500" {
		t.Errorf("FeeTotal = %s, want 1500", got)
	}
	if s.FeeDueDate != "2026-03-31" {
		t.Errorf("FeeDueDate = %s, want 2026-03-31", s.FeeDueDate)
	}
	if !s.CreatedAt.Equal(nowFunc()) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, nowFunc())
	}
}

func Test_service_Create_invalid(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s1", Name: "Asha"})

	tests := []struct {
		name string
		ns   student.NewStudent
	}{
		{name: "no roll", ns: student.NewStudent{Name: "Asha"}},
		{name: "no name", ns: student.NewStudent{Roll: "s2"}},
		{name: "blank roll", ns: student.NewStudent{Roll: "   ", Name: "Asha"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(tt.ns); err == nil {
				t.Error("Create() should fail")
			}
		})
	}

	t.Run("duplicate roll", func(t *testing.T) {
		if _, err := svc.Create(student.NewStudent{Roll: "s1", Name: "Benny"}); !errors.Is(err, student.ErrRollExists) {
			t.Errorf("Create() error = %v, want %v", err, student.ErrRollExists)
		}
	})
}

func Test_service_Update(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	created := testutil.CreateStudent(t, svc, student.NewStudent{
		Roll: "s1", Name: "Asha", DSA: "50",
		FeeDueDate: "2026-04-15", PhotoURL: "http://img/asha.png",
	})

	s, err := svc.Update("s1", student.UpdateStudent{Name: "Asha N", DSA: "90", OS: "80"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if s.Roll != "s1" {
		t.Errorf("Roll = %s, want s1", s.Roll)
	}
	if s.Name != "Asha N" {
		t.Errorf("Name = %s, want Asha N", s.Name)
	}
	if s.Total != 170 {
		t.Errorf("Total = %d, want 170", s.Total)
	}
	// blank input keeps the stored due date and photo
	if s.FeeDueDate != "2026-04-15" {
		t.Errorf("FeeDueDate = %s, want 2026-04-15", s.FeeDueDate)
	}
	if s.PhotoURL != created.PhotoURL {
		t.Errorf("PhotoURL = %s, want %s", s.PhotoURL, created.PhotoURL)
	}
	if !s.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, created.CreatedAt)
	}

	t.Run("name required", func(t *testing.T) {
		if _, err := svc.Update("s1", student.UpdateStudent{}); err == nil {
			t.Error("Update() without a name should fail")
		}
	})
	t.Run("unknown roll", func(t *testing.T) {
		if _, err := svc.Update("nope", student.UpdateStudent{Name: "X"}); !errors.Is(err, student.ErrNotFound) {
			t.Errorf("Update() error = %v, want %v", err, student.ErrNotFound)
		}
	})
}

func Test_service_Delete(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s1", Name: "Asha"})
	if err := svcs.Attendance.SetStatus("2026-03-01", "s1", "present"); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}

	if err := svc.Delete("s1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByRoll("s1"); !errors.Is(err, student.ErrNotFound) {
		t.Errorf("GetByRoll() error = %v, want %v", err, student.ErrNotFound)
	}

	// attendance entries cascade
	att, err := svcs.Attendance.QueryAll()
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(att) != 0 {
		t.Errorf("attendance = %v, want empty", att)
	}

	t.Run("unknown roll", func(t *testing.T) {
		if err := svc.Delete("nope"); !errors.Is(err, student.ErrNotFound) {
			t.Errorf("Delete() error = %v, want %v", err, student.ErrNotFound)
		}
	})
}

func Test_service_Leaderboard(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "c", Name: "C", DSA: "50"})
	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "b", Name: "B", DSA: "90"})
	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "a", Name: "A", DSA: "90"})

	ranked, err := svc.Leaderboard()
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	var rolls []string
	for _, s := range ranked {
		rolls = append(rolls, s.Roll)
	}
	// total descending, ties broken by roll ascending
	want := []string{"a", "b", "c"}
	for i := range want {
		if rolls[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", rolls, want)
		}
	}

	t.Run("topK", func(t *testing.T) {
		top, err := svc.TopK(2)
		if err != nil {
			t.Fatalf("TopK() failed: %v", err)
		}
		if len(top) != 2 || top[0].Roll != "a" || top[1].Roll != "b" {
			t.Errorf("TopK(2) = %v", top)
		}
		if top, _ := svc.TopK(0); top != nil {
			t.Errorf("TopK(0) = %v, want nil", top)
		}
		if top, _ := svc.TopK(10); len(top) != 3 {
			t.Errorf("len(TopK(10)) = %d, want 3", len(top))
		}
	})
}

func Test_service_Stats(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	t.Run("empty set", func(t *testing.T) {
		stats, err := svc.Stats(nowFunc())
		if err != nil {
			t.Fatalf("Stats() failed: %v", err)
		}
		if stats.Students != 0 || stats.TopScore != 0 || stats.AveragePercent != 0 {
			t.Errorf("Stats() = %+v, want zeros", stats)
		}
	})

	testutil.CreateStudent(t, svc, student.NewStudent{
		Roll: "s1", Name: "Asha", DSA: "86", OS: "100", FeePaid: "1500",
	})
	testutil.CreateStudent(t, svc, student.NewStudent{
		Roll: "s2", Name: "Benny", DSA: "100", OS: "100", DBMS: "100", CN: "100",
	})

	stats, err := svc.Stats(nowFunc())
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Students != 2 {
		t.Errorf("Students = %d, want 2", stats.Students)
	}
	if stats.TopScore != 400 {
		t.Errorf("TopScore = %d, want 400", stats.TopScore)
	}
	if stats.AveragePercent != 73.25 {
		t.Errorf("AveragePercent = %v, want 73.25", stats.AveragePercent)
	}
	if got := stats.Fees.Total.String(); got != "3000" {
		t.Errorf("Fees.Total = %s, want 3000", got)
	}
	if got := stats.Fees.Due.String(); got != "1500" {
		t.Errorf("Fees.Due = %s, want 1500", got)
	}
}

func Test_service_SendFeeReminders(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s1", Name: "Asha", FeePaid: "1500"})
	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s2", Name: "Benny"})

	sentBefore := len(emailsvc.SentMessages)
	count, err := svc.SendFeeReminders(nowFunc())
	if err != nil {
		t.Fatalf("SendFeeReminders() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("SendFeeReminders() = %d, want 1", count)
	}

	// one digest went out, addressed to the admin, listing only the debtor
	if len(emailsvc.SentMessages) != sentBefore+1 {
		t.Fatalf("len(SentMessages) = %d, want %d", len(emailsvc.SentMessages), sentBefore+1)
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	if len(msg.To) != 1 || msg.To[0].Address != core.Conf.AdminEmail.Address {
		t.Errorf("To = %v, want %v", msg.To, core.Conf.AdminEmail)
	}
	if want := "Benny (s2): due 1500.00 by 2026-03-31"; msg.Body != want {
		t.Errorf("Body = %q, want %q", msg.Body, want)
	}
}
