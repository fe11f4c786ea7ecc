package testutil

import (
	"testing"
	"time"

	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/services/email"
	"github.com/shuledesk/shuledesk/storage/inmem"
)

// Services wires a fresh in-memory store behind a mocked mail service.
type Services struct {
	Students   *student.Service
	Attendance *attendance.Service
	Receipts   student.ReceiptRepository
}

func NewServices(t *testing.T, now func() time.Time) Services {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("NewServices() failed: %v", err)
	}
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db))
	receipts := inmemdb.NewReceiptRepository(db)
	stdSvc := student.NewServiceMock(
		inmemdb.NewStudentRepository(db), receipts, attSvc, emailsvc.NewConsoleServiceMock(), now)
	return Services{Students: stdSvc, Attendance: attSvc, Receipts: receipts}
}

func CreateStudent(t *testing.T, svc *student.Service, ns student.NewStudent) student.Student {
	s, err := svc.Create(ns)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
