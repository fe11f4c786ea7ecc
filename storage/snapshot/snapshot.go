// Package snapshot persists the whole record set as one JSON document in a
// local file. Persistence is best effort: a failed save is reported, never
// fatal, and a reloaded document is treated as untrusted input.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/shuledesk/shuledesk/core/attendance"
	"github.com/shuledesk/shuledesk/core/student"
)

// Value is a stored scalar of unknown type coerced to a string; the
// normalizers take it from there.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = Value(n.String())
		return nil
	}
	var t bool
	if err := json.Unmarshal(b, &t); err == nil {
		*v = Value(strconv.FormatBool(t))
		return nil
	}
	// arrays/objects have no scalar meaning here
	*v = ""
	return nil
}

type (
	InstallmentDoc struct {
		ID     Value `json:"id"`
		Date   Value `json:"date"`
		Amount Value `json:"amount"`
		Method Value `json:"method"`
		Note   Value `json:"note"`
	}

	StudentDoc struct {
		Roll         Value            `json:"roll"`
		Name         Value            `json:"name"`
		Phone        Value            `json:"phone"`
		Address      Value            `json:"address"`
		DSA          Value            `json:"dsa"`
		OS           Value            `json:"os"`
		DBMS         Value            `json:"dbms"`
		CN           Value            `json:"cn"`
		FeeTotal     Value            `json:"fee_total"`
		FeePaid      Value            `json:"fee_paid"`
		FeeDueDate   Value            `json:"fee_due_date"`
		Installments []InstallmentDoc `json:"installments"`
		PhotoURL     Value            `json:"photo_url"`
		CreatedAt    Value            `json:"created_at"`
		UpdatedAt    Value            `json:"updated_at"`
	}

	ReceiptDoc struct {
		ID          Value `json:"id"`
		Roll        Value `json:"roll"`
		StudentName Value `json:"student_name"`
		Date        Value `json:"date"`
		Amount      Value `json:"amount"`
		Method      Value `json:"method"`
		Note        Value `json:"note"`
		FeeTotal    Value `json:"fee_total"`
		FeePaid     Value `json:"fee_paid"`
		FeeDue      Value `json:"fee_due"`
		LateFee     Value `json:"late_fee"`
		IssuedAt    Value `json:"issued_at"`
	}

	Document struct {
		Students   []StudentDoc                `json:"students"`
		Attendance map[string]map[string]Value `json:"attendance"`
		Receipts   []ReceiptDoc                `json:"receipts"`
	}

	// Store is the storage collaborator: it serializes the live services'
	// state to the snapshot file and restores it on load.
	Store struct {
		path     string
		students *student.Service
		att      *attendance.Service
		receipts student.ReceiptRepository
	}
)

func NewStore(path string, students *student.Service, att *attendance.Service, receipts student.ReceiptRepository) *Store {
	return &Store{path: path, students: students, att: att, receipts: receipts}
}

type saveDoc struct {
	Students   []student.Student            `json:"students"`
	Attendance map[string]map[string]string `json:"attendance"`
	Receipts   []student.Receipt            `json:"receipts"`
}

// Save writes the snapshot atomically (temp file + rename).
func (st *Store) Save() error {
	students, err := st.students.QueryAll()
	if err != nil {
		return err
	}
	att, err := st.att.QueryAll()
	if err != nil {
		return err
	}
	receipts, err := st.receipts.QueryAllReceipts()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(saveDoc{Students: students, Attendance: att, Receipts: receipts}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling snapshot")
	}
	tmp := st.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return errors.Wrap(err, "creating snapshot dir")
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "writing snapshot")
	}
	return errors.Wrap(os.Rename(tmp, st.path), "replacing snapshot")
}

// Load reads the snapshot file and restores it into the services. A missing
// file is not an error; an unreadable one is, and nothing is mutated.
func (st *Store) Load() error {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "reading snapshot")
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return errors.Wrap(err, "decoding snapshot")
	}
	st.restore(doc)
	return nil
}

// restore replays the document through the reconciler and ledgers; records
// it cannot make sense of are skipped, never fatal.
func (st *Store) restore(doc Document) {
	for _, sd := range doc.Students {
		rs := student.RestoreStudent{
			NewStudent: student.NewStudent{
				Roll:       string(sd.Roll),
				Name:       string(sd.Name),
				Phone:      string(sd.Phone),
				Address:    string(sd.Address),
				DSA:        string(sd.DSA),
				OS:         string(sd.OS),
				DBMS:       string(sd.DBMS),
				CN:         string(sd.CN),
				FeeTotal:   string(sd.FeeTotal),
				FeePaid:    string(sd.FeePaid),
				FeeDueDate: string(sd.FeeDueDate),
				PhotoURL:   string(sd.PhotoURL),
			},
			CreatedAt: string(sd.CreatedAt),
			UpdatedAt: string(sd.UpdatedAt),
		}
		for _, id := range sd.Installments {
			rs.Installments = append(rs.Installments, student.RestoreInstallment{
				ID:     string(id.ID),
				Date:   string(id.Date),
				Amount: string(id.Amount),
				Method: string(id.Method),
				Note:   string(id.Note),
			})
		}
		_, _ = st.students.Restore(rs) // duplicates and nameless records are skipped
	}

	for date, day := range doc.Attendance {
		for roll, status := range day {
			_ = st.att.SetStatus(date, roll, string(status)) // invalid cells are dropped
		}
	}

	// receipts are stored newest first; replay from the oldest so the log
	// keeps that order
	for i := len(doc.Receipts) - 1; i >= 0; i-- {
		if r, ok := restoreReceipt(doc.Receipts[i]); ok {
			st.receipts.AppendReceipt(r)
		}
	}

	students, err := st.students.QueryAll()
	if err != nil {
		return
	}
	rolls := make([]string, 0, len(students))
	for _, s := range students {
		rolls = append(rolls, s.Roll)
	}
	st.att.Synchronize(rolls)
}
