package student

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shuledesk/shuledesk/core"
)

// SendFeeReminders composes one notice listing every student with an
// outstanding balance as of the given time and hands it to the mail service.
// Returns how many students were listed.
func (svc *Service) SendFeeReminders(asOf time.Time) (int, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return 0, err
	}

	var lines []string
	for _, s := range students {
		info := s.FeeInfo(asOf)
		if !info.FeeDue.IsPositive() {
			continue
		}
		line := fmt.Sprintf("%s (%s): due %s by %s", s.Name, s.Roll, info.FeeDue.StringFixed(2), s.FeeDueDate)
		if info.LateFee.IsPositive() {
			line += fmt.Sprintf(", late fee %s", info.LateFee.StringFixed(2))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 || svc.mailSvc == nil {
		return len(lines), nil
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{core.Conf.AdminEmail},
		Subject: "Fee due reminders",
		Body:    strings.Join(lines, "\n"),
	})
	return len(lines), nil
}
