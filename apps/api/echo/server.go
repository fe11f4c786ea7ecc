package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/sheet"
	"github.com/shuledesk/shuledesk/core/student"
	"github.com/shuledesk/shuledesk/storage/snapshot"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		StudentSvc     *student.Service
		AttendanceSvc  *attendance.Service
		Snapshot       *snapshot.Store // optional; mutations persist through it
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = appHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	registerStudentAPI(v1, s.opts.StudentSvc, s.persist)
	registerAttendanceAPI(v1, s.opts.AttendanceSvc, s.opts.StudentSvc, s.persist)
	registerSheetAPI(v1,
		sheet.NewImporter(s.opts.StudentSvc),
		sheet.NewExporter(s.opts.StudentSvc, s.opts.AttendanceSvc),
		s.persist,
	)
}

// persist writes the snapshot after a completed mutation; best effort only.
func (s *server) persist() {
	if s.opts.Snapshot == nil {
		return
	}
	if err := s.opts.Snapshot.Save(); err != nil {
		if s.opts.Logger != nil {
			s.opts.Logger.Error("saving snapshot", err)
		} else {
			s.app.Logger.Error(err)
		}
	}
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
