package builder

import (
	"fmt"
	"strings"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/internal/parser"
	"github.com/tobsdb/ehr/internal/repository"
	"github.com/tobsdb/ehr/pkg"
)

// BuildPatients writes one patient per row of the patient table and attaches
// one lab per row of the lab table. Patients are written before any lab, so a
// repeated patient id keeps the last row's attributes. A lab whose patient is
// missing aborts the build with an ehr.ErrReference error.
func BuildPatients(patients, labs *parser.Table, w repository.Writer, columns ehr.Columns) error {
	if err := CheckColumns(patients, labs, columns); err != nil {
		return err
	}

	build := func(w repository.Writer) error {
		for i := 0; i < patients.Len(); i++ {
			p, err := columns.Patient.Decode(patients.Row(i))
			if err != nil {
				return BuildRowError("patient", i, err)
			}
			if err := w.PutPatient(p); err != nil {
				return err
			}
		}

		for i := 0; i < labs.Len(); i++ {
			l, err := columns.Lab.Decode(labs.Row(i))
			if err != nil {
				return BuildRowError("lab", i, err)
			}
			if err := w.AttachLab(l); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if b, ok := w.(repository.Batcher); ok {
		err = b.Batch(build)
	} else {
		err = build(w)
	}
	if err != nil {
		return err
	}

	pkg.DebugLog("built", patients.Len(), "patient rows and", labs.Len(), "lab rows")
	return nil
}

// BuildMemory builds the patient set into a fresh in-memory repository.
func BuildMemory(patients, labs *parser.Table, columns ehr.Columns) (*repository.Memory, error) {
	m := repository.NewMemory()
	if err := BuildPatients(patients, labs, m, columns); err != nil {
		return nil, err
	}
	return m, nil
}

// CheckColumns reports every configured column absent from the tables.
func CheckColumns(patients, labs *parser.Table, columns ehr.Columns) error {
	problems := []string{}
	if missing := ehr.MissingColumns(columns.Patient.Names(), patients.Has); len(missing) > 0 {
		problems = append(problems, "patient table is missing "+strings.Join(missing, ", "))
	}
	if missing := ehr.MissingColumns(columns.Lab.Names(), labs.Has); len(missing) > 0 {
		problems = append(problems, "lab table is missing "+strings.Join(missing, ", "))
	}
	if len(problems) > 0 {
		return fmt.Errorf("Invalid columns: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Row numbers in errors count data rows from 1, excluding the header.
func BuildRowError(table string, row int, err error) error {
	return fmt.Errorf("Error building %s row %d: %s", table, row+1, err.Error())
}
