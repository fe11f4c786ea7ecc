package main

import (
	"log"
	"os"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/services/email"
	"github.com/shuledesk/shuledesk/storage/inmem"
	"github.com/shuledesk/shuledesk/storage/snapshot"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up the store
	db, err := inmemdb.Open()
	errAndDie(err)

	// set up services; admin commands report over the console
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db))
	receiptRepo := inmemdb.NewReceiptRepository(db)
	stdSvc := student.NewService(inmemdb.NewStudentRepository(db), receiptRepo, attSvc, emailsvc.NewConsoleService())

	store := snapshot.NewStore(core.Conf.SnapshotPath, stdSvc, attSvc, receiptRepo)
	errAndDie(store.Load())

	// start CLI
	cli := commandLine{
		stdSvc: stdSvc,
		attSvc: attSvc,
		store:  store,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
