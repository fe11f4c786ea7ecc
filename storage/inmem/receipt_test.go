package inmemdb_test

import (
	"strconv"
	"testing"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/storage/inmem"
)

func Test_receiptRepository_cap(t *testing.T) {
	origCap := core.Conf.ReceiptCap
	core.Conf.ReceiptCap = 5
	defer func() { core.Conf.ReceiptCap = origCap }()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	repo := inmemdb.NewReceiptRepository(db)

	for i := 1; i <= 8; i++ {
		repo.AppendReceipt(student.Receipt{ID: "r" + strconv.Itoa(i), Roll: "s1"})
	}

	receipts, err := repo.QueryAllReceipts()
	if err != nil {
		t.Fatalf("QueryAllReceipts() failed: %v", err)
	}
	if len(receipts) != 5 {
		t.Fatalf("len(receipts) = %d, want the cap of 5", len(receipts))
	}
	// newest at the front, oldest trimmed from the tail
	if receipts[0].ID != "r8" {
		t.Errorf("receipts[0].ID = %s, want r8", receipts[0].ID)
	}
	if receipts[4].ID != "r4" {
		t.Errorf("receipts[4].ID = %s, want r4", receipts[4].ID)
	}

	// the latest-by-roll lookup still sees the newest survivor
	latest, err := repo.GetLatestReceiptByRoll("s1")
	if err != nil {
		t.Fatalf("GetLatestReceiptByRoll() failed: %v", err)
	}
	if latest.ID != "r8" {
		t.Errorf("latest.ID = %s, want r8", latest.ID)
	}
}
