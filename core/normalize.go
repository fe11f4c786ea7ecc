package core

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalizers turn arbitrary external input (form fields, spreadsheet cells,
// stored JSON) into validated domain values. They never fail: unparsable input
// resolves to a safe default.

const ISODate = "2006-01-02"

// CleanString strips surrounding whitespace; pass true to also lower-case.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// dateLayouts are tried in order for non-ISO input.
var dateLayouts = []string{
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
	"2 Jan 2006",
	time.RFC3339,
}

// stripNonNumeric keeps digits, dots and minus signs only.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeMark parses a subject mark and clamps it to [0, 100].
func NormalizeMark(raw string) int {
	f, err := strconv.ParseFloat(stripNonNumeric(strings.TrimSpace(raw)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	mark := int(math.Round(f))
	if mark < 0 {
		return 0
	}
	if mark > 100 {
		return 100
	}
	return mark
}

// NormalizeMoney parses a money amount; unparsable input yields `fallback`,
// negative amounts clamp to zero.
func NormalizeMoney(raw string, fallback decimal.Decimal) decimal.Decimal {
	amt, err := decimal.NewFromString(stripNonNumeric(strings.TrimSpace(raw)))
	if err != nil {
		return fallback
	}
	if amt.IsNegative() {
		return decimal.Zero
	}
	return amt
}

// NormalizeCalendarDate returns an ISO "YYYY-MM-DD" date string, or "" when
// the input cannot be interpreted as a date. An exact ISO string passes
// through unchanged.
func NormalizeCalendarDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := time.Parse(ISODate, raw); err == nil {
		return raw
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(ISODate)
		}
	}
	return ""
}

// FeeValues is the reconciled triple of fee fields.
type FeeValues struct {
	FeeTotal decimal.Decimal
	FeePaid  decimal.Decimal
	FeeDue   decimal.Decimal
}

// ReconcileFeeValues resolves any combination of present/absent raw fee
// fields into a consistent triple. A blank string means the field is absent.
//
// FeeTotal falls back to the configured default when absent or non-positive.
// FeePaid is taken directly when present; otherwise derived from a present
// due amount; otherwise zero. The result always satisfies
// 0 <= FeePaid <= FeeTotal and FeeDue = FeeTotal - FeePaid.
func ReconcileFeeValues(feeTotalRaw, feePaidRaw, feeDueRaw string) FeeValues {
	feeTotal := NormalizeMoney(feeTotalRaw, Conf.DefaultFeeTotal)
	if !feeTotal.IsPositive() {
		feeTotal = Conf.DefaultFeeTotal
	}

	var feePaid decimal.Decimal
	switch {
	case strings.TrimSpace(feePaidRaw) != "":
		feePaid = NormalizeMoney(feePaidRaw, decimal.Zero)
	case strings.TrimSpace(feeDueRaw) != "":
		feePaid = feeTotal.Sub(NormalizeMoney(feeDueRaw, decimal.Zero))
	}
	feePaid = ClampMoney(feePaid, feeTotal)

	return FeeValues{
		FeeTotal: feeTotal,
		FeePaid:  feePaid,
		FeeDue:   feeTotal.Sub(feePaid),
	}
}

// ClampMoney clamps amt to [0, max].
func ClampMoney(amt, max decimal.Decimal) decimal.Decimal {
	if amt.IsNegative() {
		return decimal.Zero
	}
	if amt.GreaterThan(max) {
		return max
	}
	return amt
}
