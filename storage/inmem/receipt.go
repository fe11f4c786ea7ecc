package inmemdb

import (
	"github.com/shuledesk/shuledesk/core/student"
)

type receiptRepository struct {
	db *receiptTable
}

func NewReceiptRepository(db *DB) student.ReceiptRepository {
	return &receiptRepository{db: db.receipts}
}

// AppendReceipt prepends the receipt so the newest sits at the front; when
// the cap is exceeded the oldest entries are trimmed from the tail.
func (repo *receiptRepository) AppendReceipt(r student.Receipt) student.Receipt {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.t = append([]student.Receipt{r}, repo.db.t...)
	if repo.db.cap > 0 && len(repo.db.t) > repo.db.cap {
		repo.db.t = repo.db.t[:repo.db.cap]
	}
	return r
}

func (repo *receiptRepository) QueryAllReceipts() ([]student.Receipt, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	receipts := make([]student.Receipt, len(repo.db.t))
	copy(receipts, repo.db.t)
	return receipts, nil
}

func (repo *receiptRepository) GetLatestReceiptByRoll(roll string) (student.Receipt, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, r := range repo.db.t { // newest first
		if r.Roll == roll {
			return r, nil
		}
	}
	return student.Receipt{}, student.ErrNoReceipt
}
