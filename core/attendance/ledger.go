package attendance

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shuledesk/shuledesk/core"
)

// Statuses. Absence of an entry means "unmarked".
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"

	// StatusClear requests removal of an entry.
	StatusClear = "clear"
)

var (
	// errors
	ErrInvalidDate   = errors.New("a valid calendar date is required")
	ErrInvalidStatus = errors.New("status must be present, absent or clear")
	ErrRollRequired  = errors.New("a roll number is required")
)

type (
	// Repository stores per-date, per-roll status cells.
	Repository interface {
		GetDay(date string) (map[string]string, bool)
		SetEntry(date, roll, status string)
		RemoveEntry(date, roll string)
		RemoveDate(date string)
		Dates() []string
		QueryAll() (map[string]map[string]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeStatus(status string) (string, error) {
	switch core.CleanString(status, true /* lower */) {
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	case StatusClear, "":
		return StatusClear, nil
	}
	return "", core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
}

func normalizeDate(date string) (string, error) {
	date = core.NormalizeCalendarDate(date)
	if date == "" {
		return "", core.NewValidationError(ErrInvalidDate, core.FieldError{Field: "date", Error: ErrInvalidDate.Error()})
	}
	return date, nil
}

// SetStatus writes or clears a single cell. A per-date bucket left empty
// after a clear is removed entirely.
func (svc *Service) SetStatus(date, roll, status string) error {
	date, err := normalizeDate(date)
	if err != nil {
		return err
	}
	roll = core.CleanString(roll)
	if roll == "" {
		return core.NewValidationError(ErrRollRequired, core.FieldError{Field: "roll", Error: ErrRollRequired.Error()})
	}
	status, err = normalizeStatus(status)
	if err != nil {
		return err
	}

	if status == StatusClear {
		svc.repo.RemoveEntry(date, roll)
		if day, ok := svc.repo.GetDay(date); ok && len(day) == 0 {
			svc.repo.RemoveDate(date)
		}
		return nil
	}
	svc.repo.SetEntry(date, roll, status)
	return nil
}

// SetAllForDate bulk-sets every given roll to the same status for the date.
func (svc *Service) SetAllForDate(date string, rolls []string, status string) error {
	date, err := normalizeDate(date)
	if err != nil {
		return err
	}
	status, err = normalizeStatus(status)
	if err != nil {
		return err
	}
	if status == StatusClear {
		return core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	for _, roll := range rolls {
		if roll = core.CleanString(roll); roll != "" {
			svc.repo.SetEntry(date, roll, status)
		}
	}
	return nil
}

// ClearDate removes the entire per-date mapping.
func (svc *Service) ClearDate(date string) error {
	date, err := normalizeDate(date)
	if err != nil {
		return err
	}
	svc.repo.RemoveDate(date)
	return nil
}

// RemoveRoll drops the roll's entries across every date; used when a student
// record is deleted. Reports whether anything changed.
func (svc *Service) RemoveRoll(roll string) bool {
	roll = core.CleanString(roll)
	var changed bool
	for _, date := range svc.repo.Dates() {
		day, ok := svc.repo.GetDay(date)
		if !ok {
			continue
		}
		if _, ok := day[roll]; !ok {
			continue
		}
		svc.repo.RemoveEntry(date, roll)
		changed = true
		if day, ok := svc.repo.GetDay(date); ok && len(day) == 0 {
			svc.repo.RemoveDate(date)
		}
	}
	return changed
}

// Synchronize drops entries for unknown rolls or invalid statuses, buckets
// with unparsable date keys, and buckets left empty. Reports whether
// anything changed, so callers can decide whether to persist.
func (svc *Service) Synchronize(validRolls []string) bool {
	valid := make(map[string]struct{}, len(validRolls))
	for _, roll := range validRolls {
		valid[roll] = struct{}{}
	}

	var changed bool
	for _, date := range svc.repo.Dates() {
		if _, err := time.Parse(core.ISODate, date); err != nil {
			svc.repo.RemoveDate(date)
			changed = true
			continue
		}
		day, ok := svc.repo.GetDay(date)
		if !ok {
			continue
		}
		for roll, status := range day {
			_, known := valid[roll]
			if !known || (status != StatusPresent && status != StatusAbsent) {
				svc.repo.RemoveEntry(date, roll)
				changed = true
			}
		}
		if day, ok := svc.repo.GetDay(date); ok && len(day) == 0 {
			svc.repo.RemoveDate(date)
			changed = true
		}
	}
	return changed
}

// QueryAll exposes the raw date-keyed map for persistence.
func (svc *Service) QueryAll() (map[string]map[string]string, error) {
	return svc.repo.QueryAll()
}

// Summary is the daily projection over the full known student set.
type Summary struct {
	Present  int `json:"present"`
	Absent   int `json:"absent"`
	Unmarked int `json:"unmarked"`
}

func (svc *Service) DailySummary(date string, allRolls []string) (Summary, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return Summary{}, err
	}
	day, _ := svc.repo.GetDay(date)

	var sum Summary
	for _, roll := range allRolls {
		switch day[roll] {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		default:
			sum.Unmarked++
		}
	}
	return sum, nil
}

// MonthlyPercentage computes the roll's presence percentage over the
// year-month of the given date: present / (present + absent), 2 decimals.
// A month with no entries yields 0.
func (svc *Service) MonthlyPercentage(roll, anyDateInMonth string) (float64, error) {
	date, err := normalizeDate(anyDateInMonth)
	if err != nil {
		return 0, err
	}
	roll = core.CleanString(roll)
	month := date[:len("2006-01")]

	var present, absent int
	for _, d := range svc.repo.Dates() {
		if !strings.HasPrefix(d, month) {
			continue
		}
		day, ok := svc.repo.GetDay(d)
		if !ok {
			continue
		}
		switch day[roll] {
		case StatusPresent:
			present++
		case StatusAbsent:
			absent++
		}
	}
	if present+absent == 0 {
		return 0, nil
	}
	return math.Round(float64(present)/float64(present+absent)*10000) / 100, nil
}
