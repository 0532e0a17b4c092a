package repository

import (
	"fmt"
	"strings"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/internal/parser"
	"github.com/tobsdb/ehr/pkg"
)

// Tables answers lookups by scanning the parsed extracts directly. Patients and
// labs are decoded per call and nothing is kept between calls.
type Tables struct {
	patients *parser.Table
	labs     *parser.Table
	columns  ehr.Columns
}

// NewTables checks that both tables carry the configured columns and that
// every lab references a patient in the patient table.
func NewTables(patients, labs *parser.Table, columns ehr.Columns) (*Tables, error) {
	if missing := ehr.MissingColumns(columns.Patient.Names(), patients.Has); len(missing) > 0 {
		return nil, fmt.Errorf("Patient table is missing columns: %s", strings.Join(missing, ", "))
	}
	if missing := ehr.MissingColumns(columns.Lab.Names(), labs.Has); len(missing) > 0 {
		return nil, fmt.Errorf("Lab table is missing columns: %s", strings.Join(missing, ", "))
	}

	ids, _ := patients.Column(columns.Patient.ID)
	known := pkg.SetOf(ids...)
	lab_ids, _ := labs.Column(columns.Lab.PatientID)
	for i, id := range lab_ids {
		if !known.Has(id) {
			lab := &ehr.Lab{PatientID: id}
			if l, err := columns.Lab.Decode(labs.Row(i)); err == nil {
				lab = l
			}
			return nil, labReferenceError(lab)
		}
	}

	return &Tables{patients, labs, columns}, nil
}

func (t *Tables) Get(id string) (*ehr.Patient, error) {
	ids, _ := t.patients.Column(t.columns.Patient.ID)

	// last row with the id wins
	row_idx := -1
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			row_idx = i
			break
		}
	}
	if row_idx < 0 {
		return nil, patientNotFound(id)
	}

	p, err := t.columns.Patient.Decode(t.patients.Row(row_idx))
	if err != nil {
		return nil, fmt.Errorf("patient table row %d: %s", row_idx+1, err.Error())
	}

	lab_ids, _ := t.labs.Column(t.columns.Lab.PatientID)
	for i, lab_id := range lab_ids {
		if lab_id != id {
			continue
		}
		if err := t.takeLab(p, i); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (t *Tables) All() ([]*ehr.Patient, error) {
	order := pkg.NewInsertSortMap[string, *ehr.Patient]()
	for i := 0; i < t.patients.Len(); i++ {
		p, err := t.columns.Patient.Decode(t.patients.Row(i))
		if err != nil {
			return nil, fmt.Errorf("patient table row %d: %s", i+1, err.Error())
		}
		order.Set(p.ID, p)
	}

	lab_ids, _ := t.labs.Column(t.columns.Lab.PatientID)
	for i, id := range lab_ids {
		if !order.Has(id) {
			return nil, labReferenceError(&ehr.Lab{PatientID: id})
		}
		if err := t.takeLab(order.Get(id), i); err != nil {
			return nil, err
		}
	}

	patients := make([]*ehr.Patient, 0, order.Len())
	for _, id := range order.Sorted {
		patients = append(patients, order.Get(id))
	}
	return patients, nil
}

func (t *Tables) takeLab(p *ehr.Patient, row_idx int) error {
	lab, err := t.columns.Lab.Decode(t.labs.Row(row_idx))
	if err != nil {
		return fmt.Errorf("lab table row %d: %s", row_idx+1, err.Error())
	}
	return p.TakesLab(lab)
}
