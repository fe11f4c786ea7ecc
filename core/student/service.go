package student

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/shuledesk/shuledesk/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrRollExists    = errors.New("a student with this roll already exists; use update to modify the record")
	ErrNoReceipt     = errors.New("no receipt found for this roll")
	ErrNoPendingFee  = errors.New("no pending fee")
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
)

type (
	Repository interface {
		CheckRollUniqueness(roll string) error
		CreateStudent(student Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByRoll(roll string) (Student, error)
		// UpdateStudent replaces the stored record with the same roll.
		UpdateStudent(student Student) (Student, error)
		DeleteStudentByRoll(roll string) error
	}

	// ReceiptRepository is the append-only receipt log; newest first, capped.
	ReceiptRepository interface {
		AppendReceipt(receipt Receipt) Receipt
		QueryAllReceipts() ([]Receipt, error)
		GetLatestReceiptByRoll(roll string) (Receipt, error)
	}

	// AttendancePruner removes a deleted student's attendance entries.
	AttendancePruner interface {
		RemoveRoll(roll string) bool
	}

	Service struct {
		repo     Repository
		receipts ReceiptRepository
		pruner   AttendancePruner
		mailSvc  core.EmailService
		now      func() time.Time
	}
)

func NewService(repo Repository, receipts ReceiptRepository, pruner AttendancePruner, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, receipts: receipts, pruner: pruner, mailSvc: mailSvc, now: time.Now}
}

func (svc *Service) checkUniqueness(roll string) error {
	if err := svc.repo.CheckRollUniqueness(roll); err != nil {
		if errors.Is(err, ErrRollExists) {
			return core.NewValidationError(err, core.FieldError{Field: "roll", Error: err.Error()})
		}
		return err
	}
	return nil
}

// build assembles a Student from raw input, recomputing every derived field.
// When existing is non-nil its roll, installments, photo (if no new one) and
// creation timestamp carry over; FeePaid is floor-raised against the carried
// installments.
func (svc *Service) build(ns NewStudent, existing *Student, now time.Time) Student {
	s := Student{
		Roll:    core.CleanString(ns.Roll),
		Name:    core.CleanString(ns.Name),
		Phone:   core.CleanString(ns.Phone),
		Address: core.CleanString(ns.Address),

		DSA:  core.NormalizeMark(ns.DSA),
		OS:   core.NormalizeMark(ns.OS),
		DBMS: core.NormalizeMark(ns.DBMS),
		CN:   core.NormalizeMark(ns.CN),

		PhotoURL:  core.CleanString(ns.PhotoURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Total = s.DSA + s.OS + s.DBMS + s.CN
	s.Percentage = float64(s.Total) / 4 // quarters, always exact to 2 decimals

	fees := core.ReconcileFeeValues(ns.FeeTotal, ns.FeePaid, ns.FeeDue)
	s.FeeTotal = fees.FeeTotal
	s.FeePaid = fees.FeePaid

	s.FeeDueDate = core.NormalizeCalendarDate(ns.FeeDueDate)

	if existing != nil {
		s.Roll = existing.Roll
		s.Installments = existing.Installments
		s.FeePaid = floorRaise(s.FeePaid, s.Installments, s.FeeTotal)
		if s.FeeDueDate == "" {
			s.FeeDueDate = existing.FeeDueDate
		}
		if s.PhotoURL == "" {
			s.PhotoURL = existing.PhotoURL
		}
		s.CreatedAt = existing.CreatedAt
	}
	if s.FeeDueDate == "" {
		s.FeeDueDate = now.AddDate(0, 0, core.Conf.FeeDueInDays).Format(core.ISODate)
	}
	return s
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	if err := ns.Validate(svc); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(svc.build(ns, nil, svc.now().UTC()))
}

func (svc *Service) Update(roll string, us UpdateStudent) (Student, error) {
	if err := us.Validate(); err != nil {
		return Student{}, err
	}
	existing, err := svc.repo.GetStudentByRoll(core.CleanString(roll))
	if err != nil {
		return Student{}, err
	}
	ns := NewStudent{
		Roll:       existing.Roll,
		Name:       us.Name,
		Phone:      us.Phone,
		Address:    us.Address,
		DSA:        us.DSA,
		OS:         us.OS,
		DBMS:       us.DBMS,
		CN:         us.CN,
		FeeTotal:   us.FeeTotal,
		FeePaid:    us.FeePaid,
		FeeDue:     us.FeeDue,
		FeeDueDate: us.FeeDueDate,
		PhotoURL:   us.PhotoURL,
	}
	return svc.repo.UpdateStudent(svc.build(ns, &existing, svc.now().UTC()))
}

// Delete removes the record and cascades to the student's attendance
// entries. Historical receipts stay untouched.
func (svc *Service) Delete(roll string) error {
	roll = core.CleanString(roll)
	if err := svc.repo.DeleteStudentByRoll(roll); err != nil {
		return err
	}
	if svc.pruner != nil {
		svc.pruner.RemoveRoll(roll)
	}
	return nil
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByRoll(roll string) (Student, error) {
	return svc.repo.GetStudentByRoll(core.CleanString(roll))
}

// Leaderboard returns all students ranked by total descending, roll
// ascending on ties. The ranking is recomputed on demand, never cached.
func (svc *Service) Leaderboard() ([]Student, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	ranked := make([]Student, len(students))
	copy(ranked, students)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total == ranked[j].Total {
			return ranked[i].Roll < ranked[j].Roll
		}
		return ranked[i].Total > ranked[j].Total
	})
	return ranked, nil
}

// TopK returns the k best-ranked students.
func (svc *Service) TopK(k int) ([]Student, error) {
	if k <= 0 {
		return nil, nil
	}
	ranked, err := svc.Leaderboard()
	if err != nil {
		return nil, err
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k], nil
}

// Stats is the dashboard projection over the whole record set.
type Stats struct {
	Students       int          `json:"students"`
	TopScore       int          `json:"top_score"`
	AveragePercent float64      `json:"average_percent"`
	Fees           FeeAggregate `json:"fees"`
}

func (svc *Service) Stats(asOf time.Time) (Stats, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Students: len(students),
		Fees:     AggregateFees(students, asOf),
	}
	if len(students) == 0 {
		return st, nil
	}
	var pctSum float64
	for _, s := range students {
		if s.Total > st.TopScore {
			st.TopScore = s.Total
		}
		pctSum += s.Percentage
	}
	st.AveragePercent = round2(pctSum / float64(len(students)))
	return st, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (svc *Service) Receipts() ([]Receipt, error) {
	return svc.receipts.QueryAllReceipts()
}

// LatestReceipt returns only the most recent receipt for the roll; earlier
// receipts are not reachable through this path.
func (svc *Service) LatestReceipt(roll string) (Receipt, error) {
	return svc.receipts.GetLatestReceiptByRoll(core.CleanString(roll))
}
