package inmemdb

import (
	"sync"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/student"
)

type (
	// DB owns the whole in-memory record set: students, the date-keyed
	// attendance map and the receipt log. It is the single store object every
	// operation works against; there are no hidden module-level tables.
	DB struct {
		students   *studentTable
		attendance *attendanceTable
		receipts   *receiptTable
	}

	studentTable struct {
		t     map[string]*student.Student
		order []string // insertion order of rolls
		mutex sync.RWMutex
	}

	attendanceTable struct {
		t     map[string]map[string]string // date -> roll -> status
		mutex sync.RWMutex
	}

	receiptTable struct {
		t     []student.Receipt // newest first
		cap   int
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		students:   &studentTable{t: make(map[string]*student.Student)},
		attendance: &attendanceTable{t: make(map[string]map[string]string)},
		receipts:   &receiptTable{cap: core.Conf.ReceiptCap},
	}
	return db, nil
}
