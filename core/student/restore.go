package student

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shuledesk/shuledesk/core"
)

// RestoreInstallment is an installment as found in stored JSON; every field
// is untrusted and re-normalized.
type RestoreInstallment struct {
	ID     string
	Date   string
	Amount string
	Method string
	Note   string
}

// RestoreStudent is a stored record being reloaded. Unlike NewStudent it
// carries the installment history and the original timestamps.
type RestoreStudent struct {
	NewStudent
	Installments []RestoreInstallment
	CreatedAt    string
	UpdatedAt    string
}

// Restore rebuilds a stored record through the normalizers and inserts it.
// Malformed fields fall back to computed defaults; a missing roll or name, or
// a roll already restored, rejects the record (callers skip it).
func (svc *Service) Restore(rs RestoreStudent) (Student, error) {
	if err := rs.NewStudent.Validate(svc); err != nil {
		return Student{}, err
	}
	now := svc.now().UTC()
	s := svc.build(rs.NewStudent, nil, now)

	installments := make([]Installment, 0, len(rs.Installments))
	for _, ri := range rs.Installments {
		amount := core.NormalizeMoney(ri.Amount, decimal.Zero)
		if !amount.IsPositive() {
			continue
		}
		id := core.CleanString(ri.ID)
		if id == "" {
			id = uuid.NewString()
		}
		installments = append(installments, Installment{
			ID:     id,
			Date:   core.NormalizeCalendarDate(ri.Date),
			Amount: amount,
			Method: core.CleanString(ri.Method),
			Note:   core.CleanString(ri.Note),
		})
	}
	s.Installments = installments
	s.FeePaid = floorRaise(s.FeePaid, s.Installments, s.FeeTotal)

	if t, err := time.Parse(time.RFC3339, rs.CreatedAt); err == nil {
		s.CreatedAt = t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, rs.UpdatedAt); err == nil {
		s.UpdatedAt = t.UTC()
	}
	return svc.repo.CreateStudent(s)
}
