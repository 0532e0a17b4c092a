package query

import (
	"time"

	"github.com/tobsdb/ehr/internal/ehr"
)

// Age is the patient's age at `now` in years of 365.25 days.
func Age(p *ehr.Patient, now time.Time) (float64, error) {
	if p.DateOfBirth.IsZero() {
		return 0, ehr.NewNotFoundError("Patient %s has no date of birth", p.ID)
	}
	return ehr.YearsBetween(p.DateOfBirth, now), nil
}

// IsSick checks the first lab named lab_name against value. The comparator is
// validated before the labs are looked at.
func IsSick(p *ehr.Patient, lab_name, comparator string, value float64) (bool, error) {
	return isSick(p, lab_name, comparator, value, func(*ehr.Lab) bool { return true })
}

// IsSickAtAdmission is IsSick restricted to labs taken during one admission.
func IsSickAtAdmission(p *ehr.Patient, admission_id, lab_name, comparator string, value float64) (bool, error) {
	return isSick(p, lab_name, comparator, value, func(l *ehr.Lab) bool {
		return l.AdmissionID == admission_id
	})
}

func isSick(p *ehr.Patient, lab_name, comparator string, value float64, keep func(*ehr.Lab) bool) (bool, error) {
	cmp, err := ParseComparator(comparator)
	if err != nil {
		return false, err
	}

	for _, lab := range p.Labs {
		if lab.Name == lab_name && keep(lab) {
			return cmp.Compare(lab.Value, value), nil
		}
	}
	return false, ehr.NewNotFoundError("Patient %s has not taken lab %s", p.ID, lab_name)
}

// AgeAtFirstAdmission is the age at the earliest lab of admission "1".
// A lab dated before birth gives a negative age.
func AgeAtFirstAdmission(p *ehr.Patient) (float64, error) {
	var first time.Time
	found := false
	for _, lab := range p.Labs {
		if lab.AdmissionID != ehr.FirstAdmission {
			continue
		}
		if !found || lab.Date.Before(first) {
			first = lab.Date
			found = true
		}
	}

	if !found {
		return 0, ehr.NewNotFoundError("Patient %s has not taken any lab yet", p.ID)
	}
	return ehr.YearsBetween(p.DateOfBirth, first), nil
}
