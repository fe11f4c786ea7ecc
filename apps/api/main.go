package main

import (
	"log"
	"os"

	"github.com/shuledesk/shuledesk/apps/api/echo"
	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/services/email"
	"github.com/shuledesk/shuledesk/services/logger"
	"github.com/shuledesk/shuledesk/storage/inmem"
	"github.com/shuledesk/shuledesk/storage/snapshot"
)

// TODO:
// - graceful shutdown on SIGTERM
// - APM/Tracing
func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var appLogger core.Logger
	if core.Conf.RollbarToken != "" {
		appLogger = logsvc.NewRollbarLogger(std, &core.Conf)
	} else {
		appLogger = core.StdLogger{Std: std}
	}

	// set up the store
	db, err := inmemdb.Open()
	errAndDie(std, err)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(appLogger)
	}
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db))
	receiptRepo := inmemdb.NewReceiptRepository(db)
	stdSvc := student.NewService(inmemdb.NewStudentRepository(db), receiptRepo, attSvc, mailSvc)

	// reload the last snapshot; a corrupt file aborts startup rather than
	// silently starting empty and overwriting it on the first mutation
	store := snapshot.NewStore(core.Conf.SnapshotPath, stdSvc, attSvc, receiptRepo)
	errAndDie(std, store.Load())

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.Address,
			StudentSvc:    stdSvc,
			AttendanceSvc: attSvc,
			Snapshot:      store,
			Logger:        appLogger,
		},
	)
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
