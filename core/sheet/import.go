package sheet

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/student"
)

// Mode says how a sheet's columns are resolved; it is chosen once per sheet.
type Mode int

const (
	// ModePositional maps cells by fixed column position.
	ModePositional Mode = iota
	// ModeHeaderMatched maps cells through recognized header tokens.
	ModeHeaderMatched
)

// logical column names, also the fixed positional order
var positionalOrder = []string{
	"roll", "name", "phone", "address",
	"dsa", "os", "dbms", "cn",
	"feetotal", "feepaid", "feedue", "feeduedate",
}

// columnAliases are tried in priority order; the first header token that
// matches wins the column.
var columnAliases = map[string][]string{
	"roll":       {"roll", "rollno", "rollnumber", "studentid", "id"},
	"name":       {"name", "studentname", "fullname"},
	"phone":      {"phone", "phoneno", "mobile", "contact"},
	"address":    {"address", "addr", "location"},
	"dsa":        {"dsa", "datastructures"},
	"os":         {"os", "operatingsystems"},
	"dbms":       {"dbms", "database", "databases"},
	"cn":         {"cn", "computernetworks", "networks"},
	"feetotal":   {"feetotal", "totalfee", "fees", "fee"},
	"feepaid":    {"feepaid", "paidfee", "paid"},
	"feedue":     {"feedue", "duefee", "balance", "due"},
	"feeduedate": {"duedate", "feeduedate"},
}

// NormalizeHeaderToken lower-cases a header cell and strips everything that
// is not alphanumeric, keeping '%' significant for percentage-like columns.
func NormalizeHeaderToken(cell string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(cell)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '%' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseHeaderRow normalizes every cell of a candidate header row.
func ParseHeaderRow(cells []string) []string {
	tokens := make([]string, len(cells))
	for i, cell := range cells {
		tokens[i] = NormalizeHeaderToken(cell)
	}
	return tokens
}

// DetectHeaderMode reports header-matched mode when any alias for roll/name
// or any subject-mark column is found among the header tokens.
func DetectHeaderMode(headerTokens []string) Mode {
	for _, logical := range []string{"roll", "name", "dsa", "os", "dbms", "cn"} {
		for _, alias := range columnAliases[logical] {
			for _, token := range headerTokens {
				if token == alias {
					return ModeHeaderMatched
				}
			}
		}
	}
	return ModePositional
}

// columnMap resolves a logical column to a cell index; -1 means unmatched.
type columnMap map[string]int

func resolveHeaderColumns(headerTokens []string) columnMap {
	cols := make(columnMap, len(positionalOrder))
	for _, logical := range positionalOrder {
		cols[logical] = -1
	aliases:
		for _, alias := range columnAliases[logical] {
			for i, token := range headerTokens {
				if token == alias {
					cols[logical] = i
					break aliases
				}
			}
		}
	}
	return cols
}

func resolvePositionalColumns() columnMap {
	cols := make(columnMap, len(positionalOrder))
	for i, logical := range positionalOrder {
		cols[logical] = i
	}
	return cols
}

func (cols columnMap) cell(row []string, logical string) string {
	i := cols[logical]
	if i < 0 || i >= len(row) {
		return "" // unmatched columns default through the normalizers
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow maps one data row to raw student input. ok is false when the row
// must be skipped silently: blank row, or missing roll/name.
func parseRow(row []string, cols columnMap) (student.NewStudent, bool) {
	if blankRow(row) {
		return student.NewStudent{}, false
	}
	ns := student.NewStudent{
		Roll:       core.CleanString(cols.cell(row, "roll")),
		Name:       core.CleanString(cols.cell(row, "name")),
		Phone:      cols.cell(row, "phone"),
		Address:    cols.cell(row, "address"),
		DSA:        cols.cell(row, "dsa"),
		OS:         cols.cell(row, "os"),
		DBMS:       cols.cell(row, "dbms"),
		CN:         cols.cell(row, "cn"),
		FeeTotal:   cols.cell(row, "feetotal"),
		FeePaid:    cols.cell(row, "feepaid"),
		FeeDue:     cols.cell(row, "feedue"),
		FeeDueDate: cols.cell(row, "feeduedate"),
	}
	if ns.Roll == "" || ns.Name == "" {
		return student.NewStudent{}, false
	}
	return ns, true
}

// Result reports upsert counts for user feedback.
type Result struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type Importer struct {
	students *student.Service
}

func NewImporter(students *student.Service) *Importer {
	return &Importer{students: students}
}

// ImportRows upserts tabular data keyed by roll: unseen rolls are created,
// known rolls merged (installment history and creation timestamp preserved).
// Individual bad rows are counted as skipped, never failed.
func (imp *Importer) ImportRows(rows [][]string) Result {
	var res Result
	if len(rows) == 0 {
		return res
	}

	cols := resolvePositionalColumns()
	data := rows
	if DetectHeaderMode(ParseHeaderRow(rows[0])) == ModeHeaderMatched {
		cols = resolveHeaderColumns(ParseHeaderRow(rows[0]))
		data = rows[1:]
	}

	for _, row := range data {
		ns, ok := parseRow(row, cols)
		if !ok {
			res.Skipped++
			continue
		}
		if _, err := imp.students.GetByRoll(ns.Roll); err == nil {
			if _, err := imp.students.Update(ns.Roll, mergeInput(ns)); err != nil {
				res.Skipped++
				continue
			}
			res.Updated++
			continue
		}
		if _, err := imp.students.Create(ns); err != nil {
			res.Skipped++
			continue
		}
		res.Added++
	}
	return res
}

func mergeInput(ns student.NewStudent) student.UpdateStudent {
	return student.UpdateStudent{
		Name:       ns.Name,
		Phone:      ns.Phone,
		Address:    ns.Address,
		DSA:        ns.DSA,
		OS:         ns.OS,
		DBMS:       ns.DBMS,
		CN:         ns.CN,
		FeeTotal:   ns.FeeTotal,
		FeePaid:    ns.FeePaid,
		FeeDue:     ns.FeeDue,
		FeeDueDate: ns.FeeDueDate,
		PhotoURL:   ns.PhotoURL,
	}
}

// ReadFile parses an uploaded spreadsheet into rows of raw cells. A failure
// here is the only wholesale import error; nothing has been mutated yet.
func ReadFile(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		return rows, errors.Wrap(err, "reading csv")
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "opening workbook")
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		return rows, errors.Wrap(err, "reading workbook rows")
	}
	return nil, errors.New("unsupported file type")
}
