package ehr

import (
	"fmt"
	"time"
)

// Admission id that marks a patient's first admission.
const FirstAdmission = "1"

type Patient struct {
	ID          string    `json:"id"`
	Gender      string    `json:"gender"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Race        string    `json:"race"`

	Labs []*Lab `json:"labs"`
}

func NewPatient(id, gender string, dob time.Time, race string) *Patient {
	return &Patient{ID: id, Gender: gender, DateOfBirth: dob, Race: race, Labs: []*Lab{}}
}

func (p *Patient) String() string { return p.ID }

// TakesLab appends a lab to the patient. The lab must reference this patient.
func (p *Patient) TakesLab(lab *Lab) error {
	if lab.PatientID != p.ID {
		return NewReferenceError("Lab %s belongs to patient %s, not %s", lab, lab.PatientID, p.ID)
	}
	p.Labs = append(p.Labs, lab)
	return nil
}

// FindLab returns the first lab with the given name, in the order they were taken.
func (p *Patient) FindLab(name string) (*Lab, bool) {
	for _, lab := range p.Labs {
		if lab.Name == name {
			return lab, true
		}
	}
	return nil, false
}

type Lab struct {
	PatientID   string    `json:"patient_id"`
	AdmissionID string    `json:"admission_id"`
	Name        string    `json:"name"`
	Value       float64   `json:"value"`
	Date        time.Time `json:"date"`
}

func (l *Lab) String() string {
	return fmt.Sprintf("(%s, %s, %s)", l.PatientID, l.AdmissionID, l.Name)
}
