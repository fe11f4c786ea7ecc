package inmemdb

import (
	"github.com/shuledesk/shuledesk/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.students}
}

// query returns all records in insertion order; callers must hold the lock.
func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.order))
	for _, roll := range repo.db.order {
		if s, ok := repo.db.t[roll]; ok {
			students = append(students, *s)
		}
	}
	return students
}

func (repo *studentRepository) CheckRollUniqueness(roll string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.t[roll]; ok {
		return student.ErrRollExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[s.Roll]; ok {
		return student.Student{}, student.ErrRollExists
	}
	repo.db.t[s.Roll] = &s
	repo.db.order = append(repo.db.order, s.Roll)
	return s, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByRoll(roll string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.t[roll]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[s.Roll]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.t[s.Roll] = &s // position in insertion order is kept
	return s, nil
}

func (repo *studentRepository) DeleteStudentByRoll(roll string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[roll]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.t, roll)
	for i, r := range repo.db.order {
		if r == roll {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}
