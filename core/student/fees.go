package student

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shuledesk/shuledesk/core"
)

// FeeInfo is the read-only fee projection for one student.
type FeeInfo struct {
	FeeTotal     decimal.Decimal `json:"fee_total"`
	FeePaid      decimal.Decimal `json:"fee_paid"`
	FeeDue       decimal.Decimal `json:"fee_due"`
	LateFee      decimal.Decimal `json:"late_fee"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

// InstallmentTotal sums the recorded installment amounts. The sum acts as a
// monotonic floor for FeePaid.
func InstallmentTotal(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// floorRaise lifts paid to at least the installment total, capped at feeTotal.
func floorRaise(paid decimal.Decimal, installments []Installment, feeTotal decimal.Decimal) decimal.Decimal {
	if instTotal := InstallmentTotal(installments); instTotal.GreaterThan(paid) {
		paid = instTotal
	}
	return core.ClampMoney(paid, feeTotal)
}

// FeeInfo computes the fee projection as of the given time. FeePaid is
// floor-raised against the installment history and capped at FeeTotal; the
// late fee accrues per whole late period elapsed strictly after the due date.
func (s Student) FeeInfo(asOf time.Time) FeeInfo {
	paid := floorRaise(s.FeePaid, s.Installments, s.FeeTotal)
	due := s.FeeTotal.Sub(paid)

	info := FeeInfo{
		FeeTotal: s.FeeTotal,
		FeePaid:  paid,
		FeeDue:   due,
		LateFee:  lateFee(due, s.FeeDueDate, asOf),
	}
	info.TotalPayable = info.FeeDue.Add(info.LateFee)
	return info
}

func lateFee(due decimal.Decimal, dueDate string, asOf time.Time) decimal.Decimal {
	if !due.IsPositive() || dueDate == "" {
		return decimal.Zero
	}
	deadline, err := time.Parse(core.ISODate, dueDate)
	if err != nil {
		return decimal.Zero
	}
	asOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	daysLate := int(asOfDay.Sub(deadline).Hours() / 24)
	if daysLate <= 0 {
		return decimal.Zero
	}
	periodDays := core.Conf.LateFeePeriodDays
	periods := int(math.Ceil(float64(daysLate) / float64(periodDays)))
	return due.Mul(core.Conf.LateFeeRate).Mul(decimal.NewFromInt(int64(periods))).Round(2)
}

// ApplyPayment records one installment against the student's pending fee.
// Paying more than the due amount applies exactly the due amount; the
// unapplied remainder is returned to the caller and never stored.
func (svc *Service) ApplyPayment(roll string, p Payment) (Receipt, decimal.Decimal, error) {
	if err := p.Validate(); err != nil {
		return Receipt{}, decimal.Zero, err
	}
	s, err := svc.repo.GetStudentByRoll(core.CleanString(roll))
	if err != nil {
		return Receipt{}, decimal.Zero, err
	}

	amount := core.NormalizeMoney(p.Amount, decimal.Zero)
	if !amount.IsPositive() {
		return Receipt{}, decimal.Zero, core.NewValidationError(ErrInvalidAmount,
			core.FieldError{Field: "amount", Error: ErrInvalidAmount.Error()})
	}

	now := svc.now().UTC()
	info := s.FeeInfo(now)
	if !info.FeeDue.IsPositive() {
		return Receipt{}, decimal.Zero, core.NewValidationError(ErrNoPendingFee,
			core.FieldError{Field: "amount", Error: ErrNoPendingFee.Error()})
	}

	applied := decimal.Min(amount, info.FeeDue)
	remainder := amount.Sub(applied)

	date := core.NormalizeCalendarDate(p.Date)
	if date == "" {
		date = now.Format(core.ISODate)
	}

	s.Installments = append(s.Installments, Installment{
		ID:     uuid.NewString(),
		Date:   date,
		Amount: applied,
		Method: core.CleanString(p.Method),
		Note:   core.CleanString(p.Note),
	})
	s.FeePaid = core.ClampMoney(info.FeePaid.Add(applied), s.FeeTotal)
	s.UpdatedAt = now

	s, err = svc.repo.UpdateStudent(s)
	if err != nil {
		return Receipt{}, decimal.Zero, err
	}

	post := s.FeeInfo(now)
	receipt := svc.receipts.AppendReceipt(Receipt{
		ID:          uuid.NewString(),
		Roll:        s.Roll,
		StudentName: s.Name,
		Date:        date,
		Amount:      applied,
		Method:      core.CleanString(p.Method),
		Note:        core.CleanString(p.Note),
		FeeTotal:    post.FeeTotal,
		FeePaid:     post.FeePaid,
		FeeDue:      post.FeeDue,
		LateFee:     post.LateFee,
		IssuedAt:    now,
	})
	return receipt, remainder, nil
}

// FeeAggregate sums the per-student fee projections across the whole set.
type FeeAggregate struct {
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
	Due   decimal.Decimal `json:"due"`
	Late  decimal.Decimal `json:"late"`
}

// AggregateFees recomputes the aggregate on demand; it is never cached.
func AggregateFees(students []Student, asOf time.Time) FeeAggregate {
	agg := FeeAggregate{
		Total: decimal.Zero,
		Paid:  decimal.Zero,
		Due:   decimal.Zero,
		Late:  decimal.Zero,
	}
	for _, s := range students {
		info := s.FeeInfo(asOf)
		agg.Total = agg.Total.Add(info.FeeTotal)
		agg.Paid = agg.Paid.Add(info.FeePaid)
		agg.Due = agg.Due.Add(info.FeeDue)
		agg.Late = agg.Late.Add(info.LateFee)
	}
	return agg
}
