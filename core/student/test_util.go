package student

import (
	"time"

	"github.com/shuledesk/shuledesk/core"
)

// NewServiceMock builds a Service with a controllable clock so fee deadlines
// and timestamps are deterministic under test.
func NewServiceMock(repo Repository, receipts ReceiptRepository, pruner AttendancePruner, mailSvc core.EmailService, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, receipts: receipts, pruner: pruner, mailSvc: mailSvc, now: now}
}
