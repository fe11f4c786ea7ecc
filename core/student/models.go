package student

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shuledesk/shuledesk/core"
)

// Student is one academic record, keyed by roll number.
type Student struct {
	Roll    string `json:"roll"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	// subject marks, each clamped to [0, 100]
	DSA  int `json:"dsa"`
	OS   int `json:"os"`
	DBMS int `json:"dbms"`
	CN   int `json:"cn"`

	// derived, always recomputed from the marks
	Total      int     `json:"total"`      // 0 - 400
	Percentage float64 `json:"percentage"` // Total / 4, 2 decimals

	FeeTotal     decimal.Decimal `json:"fee_total"`
	FeePaid      decimal.Decimal `json:"fee_paid"`
	FeeDueDate   string          `json:"fee_due_date"` // ISO date
	Installments []Installment   `json:"installments"`

	PhotoURL string `json:"photo_url"`

	CreatedAt time.Time `json:"created_at"` // UTC, set once
	UpdatedAt time.Time `json:"updated_at"` // UTC, refreshed on every mutation
}

// Marks returns the four subject marks in fixed order.
func (s Student) Marks() [4]int {
	return [4]int{s.DSA, s.OS, s.DBMS, s.CN}
}

// Installment is one recorded partial fee payment.
type Installment struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"` // ISO date
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Note   string          `json:"note"`
}

// Receipt is an immutable snapshot issued after an installment is applied.
// The fee fields capture the post-payment state.
type Receipt struct {
	ID          string          `json:"id"`
	Roll        string          `json:"roll"`
	StudentName string          `json:"student_name"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Note        string          `json:"note"`
	FeeTotal    decimal.Decimal `json:"fee_total"`
	FeePaid     decimal.Decimal `json:"fee_paid"`
	FeeDue      decimal.Decimal `json:"fee_due"`
	LateFee     decimal.Decimal `json:"late_fee"`
	IssuedAt    time.Time       `json:"issued_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
// All fields arrive raw; marks, money and dates go through the normalizers.
type NewStudent struct {
	Roll       string `json:"roll" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	DSA        string `json:"dsa"`
	OS         string `json:"os"`
	DBMS       string `json:"dbms"`
	CN         string `json:"cn"`
	FeeTotal   string `json:"fee_total"`
	FeePaid    string `json:"fee_paid"`
	FeeDue     string `json:"fee_due"`
	FeeDueDate string `json:"fee_due_date"`
	PhotoURL   string `json:"photo_url"`
}

func (ns *NewStudent) Validate(svc *Service) error {
	ns.Roll = core.CleanString(ns.Roll)
	ns.Name = core.CleanString(ns.Name)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ns.Roll)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. The roll is the lookup key and cannot change.
type UpdateStudent struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	DSA        string `json:"dsa"`
	OS         string `json:"os"`
	DBMS       string `json:"dbms"`
	CN         string `json:"cn"`
	FeeTotal   string `json:"fee_total"`
	FeePaid    string `json:"fee_paid"`
	FeeDue     string `json:"fee_due"`
	FeeDueDate string `json:"fee_due_date"`
	PhotoURL   string `json:"photo_url"`
}

func (us *UpdateStudent) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.Validate.Struct(us)
}

// Payment is a request to record one fee installment.
type Payment struct {
	Amount string `json:"amount" validate:"required"`
	Date   string `json:"date"`
	Method string `json:"method"`
	Note   string `json:"note"`
}

func (p *Payment) Validate() error {
	p.Amount = core.CleanString(p.Amount)
	return core.Validate.Struct(p)
}
