package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/shuledesk/shuledesk/core/student"
)

type studentAPI struct {
	service *student.Service
	persist func()
}

func registerStudentAPI(g *echo.Group, svc *student.Service, persist func()) {
	api := studentAPI{service: svc, persist: persist}

	sg := g.Group("/students")
	sg.GET("", api.studentQuery)
	sg.POST("", api.studentCreate)
	sg.GET("/leaderboard", api.studentLeaderboard)

	// detail endpoints
	dg := sg.Group("/:roll")
	dg.GET("", api.studentRetrieve)
	dg.PUT("", api.studentUpdate)
	dg.DELETE("", api.studentDestroy)
	dg.GET("/fees", api.studentFeeInfo)
	dg.POST("/payments", api.studentApplyPayment)
	dg.GET("/receipt", api.studentLatestReceipt)

	g.GET("/receipts", api.receiptQuery)
	g.GET("/fees/summary", api.feeSummary)
	g.POST("/fees/remind", api.feeRemind)
	g.GET("/stats", api.stats)
}

// Handlers

func (api *studentAPI) studentQuery(ctx echo.Context) error {
	students, err := api.service.QueryAll()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentAPI) studentCreate(ctx echo.Context) error {
	data := new(student.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	s, err := api.service.Create(*data)
	if err != nil {
		return err
	}
	api.persist()
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentAPI) studentLeaderboard(ctx echo.Context) error {
	if kParam := ctx.QueryParam("k"); kParam != "" {
		k, err := strconv.Atoi(kParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be an integer")
		}
		top, err := api.service.TopK(k)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, top)
	}
	ranked, err := api.service.Leaderboard()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ranked)
}

func (api *studentAPI) studentRetrieve(ctx echo.Context) error {
	s, err := api.service.GetByRoll(ctx.Param("roll"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) studentUpdate(ctx echo.Context) error {
	data := new(student.UpdateStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	s, err := api.service.Update(ctx.Param("roll"), *data)
	if err != nil {
		return err
	}
	api.persist()
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) studentDestroy(ctx echo.Context) error {
	if err := api.service.Delete(ctx.Param("roll")); err != nil {
		return err
	}
	api.persist()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentAPI) studentFeeInfo(ctx echo.Context) error {
	s, err := api.service.GetByRoll(ctx.Param("roll"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.FeeInfo(time.Now().UTC()))
}

type paymentResponse struct {
	Receipt   student.Receipt `json:"receipt"`
	Unapplied decimal.Decimal `json:"unapplied"` // excess amount, reported but never stored
}

func (api *studentAPI) studentApplyPayment(ctx echo.Context) error {
	data := new(student.Payment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	receipt, unapplied, err := api.service.ApplyPayment(ctx.Param("roll"), *data)
	if err != nil {
		return err
	}
	api.persist()
	return ctx.JSON(http.StatusCreated, paymentResponse{Receipt: receipt, Unapplied: unapplied})
}

func (api *studentAPI) studentLatestReceipt(ctx echo.Context) error {
	receipt, err := api.service.LatestReceipt(ctx.Param("roll"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, receipt)
}

func (api *studentAPI) receiptQuery(ctx echo.Context) error {
	receipts, err := api.service.Receipts()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, receipts)
}

func (api *studentAPI) feeSummary(ctx echo.Context) error {
	students, err := api.service.QueryAll()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student.AggregateFees(students, time.Now().UTC()))
}

func (api *studentAPI) feeRemind(ctx echo.Context) error {
	count, err := api.service.SendFeeReminders(time.Now().UTC())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"reminded": count})
}

func (api *studentAPI) stats(ctx echo.Context) error {
	stats, err := api.service.Stats(time.Now().UTC())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}
