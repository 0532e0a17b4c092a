package repository

import "github.com/tobsdb/ehr/internal/ehr"

// PatientRepository is the read side the query engine runs against.
type PatientRepository interface {
	// Get fails with ehr.ErrNotFound for an unknown id.
	Get(id string) (*ehr.Patient, error)
	All() ([]*ehr.Patient, error)
}

// Writer is the build side. PutPatient overwrites an existing patient with the
// same id; AttachLab fails with ehr.ErrReference when the patient is unknown.
type Writer interface {
	PutPatient(p *ehr.Patient) error
	AttachLab(l *ehr.Lab) error
}

// Batcher is implemented by writers that can group many writes into one unit.
type Batcher interface {
	Batch(f func(w Writer) error) error
}

func patientNotFound(id string) error {
	return ehr.NewNotFoundError("Patient %s not found", id)
}

func labReferenceError(l *ehr.Lab) error {
	return ehr.NewReferenceError("Lab %s references unknown patient %s", l, l.PatientID)
}
