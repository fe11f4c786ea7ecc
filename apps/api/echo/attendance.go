package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/student"
)

type attendanceAPI struct {
	service  *attendance.Service
	students *student.Service
	persist  func()
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, students *student.Service, persist func()) {
	api := attendanceAPI{service: svc, students: students, persist: persist}

	ag := g.Group("/attendance")
	ag.POST("/mark", api.attendanceMark)
	ag.POST("/mark-all", api.attendanceMarkAll)
	ag.POST("/synchronize", api.attendanceSynchronize)
	ag.GET("/monthly", api.attendanceMonthly)
	ag.DELETE("/:date", api.attendanceClearDate)
	ag.GET("/:date/summary", api.attendanceDailySummary)
}

func (api *attendanceAPI) rolls() ([]string, error) {
	students, err := api.students.QueryAll()
	if err != nil {
		return nil, err
	}
	rolls := make([]string, 0, len(students))
	for _, s := range students {
		rolls = append(rolls, s.Roll)
	}
	return rolls, nil
}

// Handlers

type markRequest struct {
	Date   string `json:"date"`
	Roll   string `json:"roll"`
	Status string `json:"status"`
}

func (api *attendanceAPI) attendanceMark(ctx echo.Context) error {
	data := new(markRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.service.SetStatus(data.Date, data.Roll, data.Status); err != nil {
		return err
	}
	api.persist()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceAPI) attendanceMarkAll(ctx echo.Context) error {
	data := new(markRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	rolls, err := api.rolls()
	if err != nil {
		return err
	}
	if err := api.service.SetAllForDate(data.Date, rolls, data.Status); err != nil {
		return err
	}
	api.persist()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceAPI) attendanceSynchronize(ctx echo.Context) error {
	rolls, err := api.rolls()
	if err != nil {
		return err
	}
	changed := api.service.Synchronize(rolls)
	if changed {
		api.persist()
	}
	return ctx.JSON(http.StatusOK, echo.Map{"changed": changed})
}

func (api *attendanceAPI) attendanceMonthly(ctx echo.Context) error {
	pct, err := api.service.MonthlyPercentage(ctx.QueryParam("roll"), ctx.QueryParam("date"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"percentage": pct})
}

func (api *attendanceAPI) attendanceClearDate(ctx echo.Context) error {
	if err := api.service.ClearDate(ctx.Param("date")); err != nil {
		return err
	}
	api.persist()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceAPI) attendanceDailySummary(ctx echo.Context) error {
	rolls, err := api.rolls()
	if err != nil {
		return err
	}
	sum, err := api.service.DailySummary(ctx.Param("date"), rolls)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}
