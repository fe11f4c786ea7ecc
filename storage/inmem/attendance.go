package inmemdb

import (
	"sort"

	"github.com/shuledesk/shuledesk/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) GetDay(date string) (map[string]string, bool) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	day, ok := repo.db.t[date]
	if !ok {
		return nil, false
	}
	cp := make(map[string]string, len(day))
	for roll, status := range day {
		cp[roll] = status
	}
	return cp, true
}

func (repo *attendanceRepository) SetEntry(date, roll, status string) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	day, ok := repo.db.t[date]
	if !ok {
		day = make(map[string]string)
		repo.db.t[date] = day
	}
	day[roll] = status
}

func (repo *attendanceRepository) RemoveEntry(date, roll string) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if day, ok := repo.db.t[date]; ok {
		delete(day, roll)
	}
}

func (repo *attendanceRepository) RemoveDate(date string) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.t, date)
}

func (repo *attendanceRepository) Dates() []string {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	dates := make([]string, 0, len(repo.db.t))
	for date := range repo.db.t {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

func (repo *attendanceRepository) QueryAll() (map[string]map[string]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cp := make(map[string]map[string]string, len(repo.db.t))
	for date, day := range repo.db.t {
		dayCp := make(map[string]string, len(day))
		for roll, status := range day {
			dayCp[roll] = status
		}
		cp[date] = dayCp
	}
	return cp, nil
}
