package sheet

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/student"
)

// ExportColumns is the fixed column order of export rows.
var ExportColumns = []string{
	"Roll", "Name", "Phone", "Address",
	"DSA", "OS", "DBMS", "CN", "Total", "Percentage",
	"FeeTotal", "FeePaid", "FeeDue", "LateFee", "DueDate",
	"Installments", "AttendanceMonthPct",
}

type Exporter struct {
	students   *student.Service
	attendance *attendance.Service
}

func NewExporter(students *student.Service, att *attendance.Service) *Exporter {
	return &Exporter{students: students, attendance: att}
}

// Rows builds one flat record per student, fee and attendance projections
// included, as of the given time.
func (ex *Exporter) Rows(asOf time.Time) ([]map[string]string, error) {
	students, err := ex.students.QueryAll()
	if err != nil {
		return nil, err
	}
	asOfDate := asOf.UTC().Format(core.ISODate)

	rows := make([]map[string]string, 0, len(students))
	for _, s := range students {
		info := s.FeeInfo(asOf)
		monthPct, err := ex.attendance.MonthlyPercentage(s.Roll, asOfDate)
		if err != nil {
			return nil, err
		}
		rows = append(rows, map[string]string{
			"Roll":               s.Roll,
			"Name":               s.Name,
			"Phone":              s.Phone,
			"Address":            s.Address,
			"DSA":                strconv.Itoa(s.DSA),
			"OS":                 strconv.Itoa(s.OS),
			"DBMS":               strconv.Itoa(s.DBMS),
			"CN":                 strconv.Itoa(s.CN),
			"Total":              strconv.Itoa(s.Total),
			"Percentage":         strconv.FormatFloat(s.Percentage, 'f', 2, 64),
			"FeeTotal":           info.FeeTotal.StringFixed(2),
			"FeePaid":            info.FeePaid.StringFixed(2),
			"FeeDue":             info.FeeDue.StringFixed(2),
			"LateFee":            info.LateFee.StringFixed(2),
			"DueDate":            s.FeeDueDate,
			"Installments":       strconv.Itoa(len(s.Installments)),
			"AttendanceMonthPct": strconv.FormatFloat(monthPct, 'f', 2, 64),
		})
	}
	return rows, nil
}

func (ex *Exporter) cells(asOf time.Time) ([][]string, error) {
	rows, err := ex.Rows(asOf)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rows)+1)
	out = append(out, ExportColumns)
	for _, row := range rows {
		cells := make([]string, len(ExportColumns))
		for i, col := range ExportColumns {
			cells[i] = row[col]
		}
		out = append(out, cells)
	}
	return out, nil
}

func (ex *Exporter) WriteCSV(w io.Writer, asOf time.Time) error {
	cells, err := ex.cells(asOf)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(cells); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}

func (ex *Exporter) WriteXLSX(w io.Writer, asOf time.Time) error {
	cells, err := ex.cells(asOf)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "resolving cell name")
		}
		cellRow := make([]interface{}, len(row))
		for j, v := range row {
			cellRow[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cellRow); err != nil {
			return errors.Wrap(err, "writing workbook row")
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
