package snapshot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/student"
)

// restoreReceipt re-validates one stored receipt; receipts are immutable
// history, so unknown rolls are kept, but a receipt without a roll or with a
// non-positive amount carries no information and is dropped.
func restoreReceipt(rd ReceiptDoc) (student.Receipt, bool) {
	roll := core.CleanString(string(rd.Roll))
	amount := core.NormalizeMoney(string(rd.Amount), decimal.Zero)
	if roll == "" || !amount.IsPositive() {
		return student.Receipt{}, false
	}

	r := student.Receipt{
		ID:          core.CleanString(string(rd.ID)),
		Roll:        roll,
		StudentName: core.CleanString(string(rd.StudentName)),
		Date:        core.NormalizeCalendarDate(string(rd.Date)),
		Amount:      amount,
		Method:      core.CleanString(string(rd.Method)),
		Note:        core.CleanString(string(rd.Note)),
		FeeTotal:    core.NormalizeMoney(string(rd.FeeTotal), decimal.Zero),
		FeePaid:     core.NormalizeMoney(string(rd.FeePaid), decimal.Zero),
		FeeDue:      core.NormalizeMoney(string(rd.FeeDue), decimal.Zero),
		LateFee:     core.NormalizeMoney(string(rd.LateFee), decimal.Zero),
	}
	if t, err := time.Parse(time.RFC3339, string(rd.IssuedAt)); err == nil {
		r.IssuedAt = t.UTC()
	}
	return r, true
}
