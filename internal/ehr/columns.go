package ehr

import (
	"fmt"
	"strconv"

	"github.com/tobsdb/ehr/pkg"
)

// Row is one record of an extract, keyed by column name.
type Row = pkg.Map[string, string]

// PatientColumns names the patient extract columns the builder reads.
type PatientColumns struct {
	ID          string `mapstructure:"id" yaml:"id"`
	Gender      string `mapstructure:"gender" yaml:"gender"`
	DateOfBirth string `mapstructure:"date_of_birth" yaml:"date_of_birth"`
	Race        string `mapstructure:"race" yaml:"race"`
}

// LabColumns names the lab extract columns the builder reads.
type LabColumns struct {
	PatientID   string `mapstructure:"patient_id" yaml:"patient_id"`
	AdmissionID string `mapstructure:"admission_id" yaml:"admission_id"`
	Name        string `mapstructure:"name" yaml:"name"`
	Value       string `mapstructure:"value" yaml:"value"`
	Date        string `mapstructure:"date" yaml:"date"`
}

type Columns struct {
	Patient PatientColumns `mapstructure:"patient" yaml:"patient"`
	Lab     LabColumns     `mapstructure:"lab" yaml:"lab"`
}

// DefaultColumns matches the headers of the PatientCorePopulatedTable and
// LabsCorePopulatedTable extracts.
func DefaultColumns() Columns {
	return Columns{
		Patient: PatientColumns{
			ID:          "PatientID",
			Gender:      "PatientGender",
			DateOfBirth: "PatientDateOfBirth",
			Race:        "PatientRace",
		},
		Lab: LabColumns{
			PatientID:   "PatientID",
			AdmissionID: "AdmissionID",
			Name:        "LabName",
			Value:       "LabValue",
			Date:        "LabDateTime",
		},
	}
}

func (c PatientColumns) Names() []string {
	return []string{c.ID, c.Gender, c.DateOfBirth, c.Race}
}

func (c LabColumns) Names() []string {
	return []string{c.PatientID, c.AdmissionID, c.Name, c.Value, c.Date}
}

// MissingColumns lists the names that `has` does not know about.
func MissingColumns(names []string, has func(string) bool) []string {
	return pkg.Filter(names, func(name string) bool { return !has(name) })
}

func (c PatientColumns) Decode(row Row) (*Patient, error) {
	dob, err := ParseTimestamp(row.Get(c.DateOfBirth))
	if err != nil {
		return nil, fmt.Errorf("%s: %s", c.DateOfBirth, err.Error())
	}
	return NewPatient(row.Get(c.ID), row.Get(c.Gender), dob, row.Get(c.Race)), nil
}

func (c LabColumns) Decode(row Row) (*Lab, error) {
	value, err := strconv.ParseFloat(row.Get(c.Value), 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid lab value %q", c.Value, row.Get(c.Value))
	}

	date, err := ParseTimestamp(row.Get(c.Date))
	if err != nil {
		return nil, fmt.Errorf("%s: %s", c.Date, err.Error())
	}

	return &Lab{
		PatientID:   row.Get(c.PatientID),
		AdmissionID: row.Get(c.AdmissionID),
		Name:        row.Get(c.Name),
		Value:       value,
		Date:        date,
	}, nil
}
