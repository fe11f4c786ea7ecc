package student_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/tests"
)

// fixed clock for deterministic deadlines
func nowFunc() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestStudent_FeeInfo_lateFee(t *testing.T) {
	asOf := nowFunc()

	tests := []struct {
		name     string
		paid     int64
		dueDate  string
		wantLate string
	}{
		{name: "35 days late accrues 2 periods", dueDate: "2026-01-25", wantLate: "40.00"},
		{name: "1 day late accrues 1 period", dueDate: "2026-02-28", wantLate: "20.00"},
		{name: "on the due date", dueDate: "2026-03-01", wantLate: "0.00"},
		{name: "before the due date", dueDate: "2026-03-31", wantLate: "0.00"},
		{name: "no due date", dueDate: "", wantLate: "0.00"},
		{name: "fully paid", paid: 1000, dueDate: "2026-01-25", wantLate: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := student.Student{
				FeeTotal:   decimal.NewFromInt(1000),
				FeePaid:    decimal.NewFromInt(tt.paid),
				FeeDueDate: tt.dueDate,
			}
			info := s.FeeInfo(asOf)
			if got := info.LateFee.StringFixed(2); got != tt.wantLate {
				t.Errorf("LateFee = %s, want %s", got, tt.wantLate)
			}
			if want := info.FeeDue.Add(info.LateFee); !info.TotalPayable.Equal(want) {
				t.Errorf("TotalPayable = %s, want %s", info.TotalPayable, want)
			}
		})
	}
}

func TestStudent_FeeInfo_floorRaise(t *testing.T) {
	s := student.Student{
		FeeTotal: decimal.NewFromInt(1500),
		FeePaid:  decimal.Zero,
		Installments: []student.Installment{
			{ID: "a", Amount: decimal.NewFromInt(200)},
			{ID: "b", Amount: decimal.NewFromInt(100)},
		},
	}
	info := s.FeeInfo(nowFunc())
	if got := info.FeePaid.String(); got != "300" {
		t.Errorf("FeePaid = %s, want 300", got)
	}
	if got := info.FeeDue.String(); got != "1200" {
		t.Errorf("FeeDue = %s, want 1200", got)
	}
}

func Test_service_ApplyPayment(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{
		Roll: "s1", Name: "Asha", FeeTotal: "2000", FeePaid: "500",
	})

	// over-payment applies the due amount only; the excess comes back
	receipt, unapplied, err := svc.ApplyPayment("s1", student.Payment{Amount: "2,000", Method: "cash"})
	if err != nil {
		t.Fatalf("ApplyPayment() failed: %v", err)
	}
	if got := receipt.Amount.String(); got != "1500" {
		t.Errorf("receipt.Amount = %s, want 1500", got)
	}
	if got := unapplied.String(); got != "500" {
		t.Errorf("unapplied = %s, want 500", got)
	}
	if got := receipt.FeePaid.String(); got != "2000" {
		t.Errorf("receipt.FeePaid = %s, want 2000", got)
	}
	if got := receipt.FeeDue.String(); got != "0" {
		t.Errorf("receipt.FeeDue = %s, want 0", got)
	}

	s, err := svc.GetByRoll("s1")
	if err != nil {
		t.Fatalf("GetByRoll() failed: %v", err)
	}
	if len(s.Installments) != 1 {
		t.Fatalf("len(Installments) = %d, want 1", len(s.Installments))
	}
	if got := s.Installments[0].Amount.String(); got != "1500" {
		t.Errorf("installment amount = %s, want 1500", got)
	}
	if got := s.FeePaid.String(); got != "2000" {
		t.Errorf("FeePaid = %s, want 2000", got)
	}

	// nothing left to pay
	if _, _, err := svc.ApplyPayment("s1", student.Payment{Amount: "10"}); !errors.Is(err, student.ErrNoPendingFee) {
		t.Errorf("ApplyPayment() error = %v, want %v", err, student.ErrNoPendingFee)
	}
}

func Test_service_ApplyPayment_invalid(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s1", Name: "Asha"})

	tests := []struct {
		name    string
		roll    string
		payment student.Payment
		wantErr error
	}{
		{name: "unknown roll", roll: "nope", payment: student.Payment{Amount: "10"}, wantErr: student.ErrNotFound},
		{name: "zero amount", roll: "s1", payment: student.Payment{Amount: "0"}, wantErr: student.ErrInvalidAmount},
		{name: "negative amount", roll: "s1", payment: student.Payment{Amount: "-10"}, wantErr: student.ErrInvalidAmount},
		{name: "garbage amount", roll: "s1", payment: student.Payment{Amount: "lol"}, wantErr: student.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.ApplyPayment(tt.roll, tt.payment); !errors.Is(err, tt.wantErr) {
				t.Errorf("ApplyPayment() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// a missing amount fails struct validation
	if _, _, err := svc.ApplyPayment("s1", student.Payment{}); err == nil {
		t.Error("ApplyPayment() with no amount should fail")
	}
}

func Test_service_Update_keepsInstallmentFloor(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s1", Name: "Asha"})
	if _, _, err := svc.ApplyPayment("s1", student.Payment{Amount: "300"}); err != nil {
		t.Fatalf("ApplyPayment() failed: %v", err)
	}

	// an update cannot push FeePaid below the recorded installments
	s, err := svc.Update("s1", student.UpdateStudent{Name: "Asha", FeePaid: "0"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if got := s.FeePaid.String(); got != "300" {
		t.Errorf("FeePaid = %s, want 300", got)
	}
	if len(s.Installments) != 1 {
		t.Errorf("len(Installments) = %d, want 1", len(s.Installments))
	}
}

func Test_service_Receipts(t *testing.T) {
	svcs := testutil.NewServices(t, nowFunc)
	svc := svcs.Students

	testutil.CreateStudent(t, svc, student.NewStudent{Roll: "s1", Name: "Asha"})

	if _, err := svc.LatestReceipt("s1"); !errors.Is(err, student.ErrNoReceipt) {
		t.Errorf("LatestReceipt() error = %v, want %v", err, student.ErrNoReceipt)
	}

	if _, _, err := svc.ApplyPayment("s1", student.Payment{Amount: "100"}); err != nil {
		t.Fatalf("ApplyPayment() failed: %v", err)
	}
	if _, _, err := svc.ApplyPayment("s1", student.Payment{Amount: "200"}); err != nil {
		t.Fatalf("ApplyPayment() failed: %v", err)
	}

	latest, err := svc.LatestReceipt("s1")
	if err != nil {
		t.Fatalf("LatestReceipt() failed: %v", err)
	}
	if got := latest.Amount.String(); got != "200" {
		t.Errorf("latest.Amount = %s, want 200", got)
	}

	receipts, err := svc.Receipts()
	if err != nil {
		t.Fatalf("Receipts() failed: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("len(receipts) = %d, want 2", len(receipts))
	}
	// newest first
	if got := receipts[0].Amount.String(); got != "200" {
		t.Errorf("receipts[0].Amount = %s, want 200", got)
	}
}

func TestAggregateFees(t *testing.T) {
	asOf := nowFunc()
	students := []student.Student{
		{Roll: "a", FeeTotal: decimal.NewFromInt(1000), FeePaid: decimal.NewFromInt(1000)},
		{Roll: "b", FeeTotal: decimal.NewFromInt(1000), FeeDueDate: "2026-01-25"}, // 2 periods late
	}
	agg := student.AggregateFees(students, asOf)
	if got := agg.Total.String(); got != "2000" {
		t.Errorf("Total = %s, want 2000", got)
	}
	if got := agg.Paid.String(); got != "1000" {
		t.Errorf("Paid = %s, want 1000", got)
	}
	if got := agg.Due.String(); got != "1000" {
		t.Errorf("Due = %s, want 1000", got)
	}
	if got := agg.Late.StringFixed(2); got != "40.00" {
		t.Errorf("Late = %s, want 40.00", got)
	}
}
