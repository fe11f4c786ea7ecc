package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shuledesk/shuledesk/core/sheet"
)

type sheetAPI struct {
	importer *sheet.Importer
	exporter *sheet.Exporter
	persist  func()
}

func registerSheetAPI(g *echo.Group, importer *sheet.Importer, exporter *sheet.Exporter, persist func()) {
	api := sheetAPI{importer: importer, exporter: exporter, persist: persist}

	sg := g.Group("/sheet")
	sg.POST("/import", api.sheetImport)
	sg.GET("/export", api.sheetExport)
}

// sheetImport upserts records from an uploaded .csv or .xlsx file. The file
// is parsed fully before any record is touched; a parse failure mutates
// nothing.
func (api *sheetAPI) sheetImport(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a spreadsheet file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read the uploaded file")
	}
	defer f.Close()

	rows, err := sheet.ReadFile(fh.Filename, f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := api.importer.ImportRows(rows)
	if res.Added > 0 || res.Updated > 0 {
		api.persist()
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *sheetAPI) sheetExport(ctx echo.Context) error {
	asOf := time.Now().UTC()
	res := ctx.Response()

	switch ctx.QueryParam("format") {
	case "", "xlsx":
		res.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="students.xlsx"`)
		res.WriteHeader(http.StatusOK)
		return api.exporter.WriteXLSX(res, asOf)
	case "csv":
		res.Header().Set(echo.HeaderContentType, "text/csv")
		res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="students.csv"`)
		res.WriteHeader(http.StatusOK)
		return api.exporter.WriteCSV(res, asOf)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "format must be xlsx or csv")
}
