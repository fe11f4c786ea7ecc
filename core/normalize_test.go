package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeMark(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "plain", raw: "85", want: 85},
		{name: "rounded", raw: "85.6", want: 86},
		{name: "padded", raw: " 92 ", want: 92},
		{name: "percent sign stripped", raw: "72%", want: 72},
		{name: "negative clamps to 0", raw: "-5", want: 0},
		{name: "above 100 clamps", raw: "150", want: 100},
		{name: "garbage", raw: "abc", want: 0},
		{name: "empty", raw: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMark(tt.raw); got != tt.want {
				t.Errorf("NormalizeMark(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeMoney(t *testing.T) {
	fallback := decimal.NewFromInt(1500)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "1200.50", want: "1200.5"},
		{name: "thousands separator", raw: "1,200.50", want: "1200.5"},
		{name: "currency prefix", raw: "KES 300", want: "300"},
		{name: "negative clamps to zero", raw: "-10", want: "0"},
		{name: "garbage falls back", raw: "abc", want: "1500"},
		{name: "empty falls back", raw: "", want: "1500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMoney(tt.raw, fallback); got.String() != tt.want {
				t.Errorf("NormalizeMoney(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeCalendarDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "iso passes through", raw: "2026-03-05", want: "2026-03-05"},
		{name: "day first", raw: "05-03-2026", want: "2026-03-05"},
		{name: "us slashes", raw: "03/05/2026", want: "2026-03-05"},
		{name: "iso slashes", raw: "2026/03/05", want: "2026-03-05"},
		{name: "spelled month", raw: "5 Mar 2026", want: "2026-03-05"},
		{name: "rfc3339", raw: "2026-03-05T10:00:00Z", want: "2026-03-05"},
		{name: "garbage", raw: "not a date", want: ""},
		{name: "empty", raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCalendarDate(tt.raw); got != tt.want {
				t.Errorf("NormalizeCalendarDate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestReconcileFeeValues(t *testing.T) {
	tests := []struct {
		name                string
		total, paid, due    string
		wantTotal, wantPaid string
		wantDue             string
	}{
		{name: "all absent uses default", wantTotal: "1500", wantPaid: "0", wantDue: "1500"},
		{name: "total and paid", total: "2000", paid: "500", wantTotal: "2000", wantPaid: "500", wantDue: "1500"},
		{name: "paid derived from due", total: "2000", due: "300", wantTotal: "2000", wantPaid: "1700", wantDue: "300"},
		{name: "paid wins over due", total: "1000", paid: "400", due: "100", wantTotal: "1000", wantPaid: "400", wantDue: "600"},
		{name: "paid clamped to total", total: "2000", paid: "5000", wantTotal: "2000", wantPaid: "2000", wantDue: "0"},
		{name: "negative total uses default", total: "-100", wantTotal: "1500", wantPaid: "0", wantDue: "1500"},
		{name: "zero total uses default", total: "0", wantTotal: "1500", wantPaid: "0", wantDue: "1500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileFeeValues(tt.total, tt.paid, tt.due)
			if got.FeeTotal.String() != tt.wantTotal {
				t.Errorf("FeeTotal = %s, want %s", got.FeeTotal, tt.wantTotal)
			}
			if got.FeePaid.String() != tt.wantPaid {
				t.Errorf("FeePaid = %s, want %s", got.FeePaid, tt.wantPaid)
			}
			if got.FeeDue.String() != tt.wantDue {
				t.Errorf("FeeDue = %s, want %s", got.FeeDue, tt.wantDue)
			}
			if !got.FeeTotal.Equal(got.FeePaid.Add(got.FeeDue)) {
				t.Errorf("FeeTotal != FeePaid + FeeDue: %s != %s + %s", got.FeeTotal, got.FeePaid, got.FeeDue)
			}
		})
	}
}
