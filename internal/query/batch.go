package query

import (
	"errors"
	"time"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/pkg"
)

// NumOlderThan counts patients strictly older than age at `now`.
func NumOlderThan(patients []*ehr.Patient, age float64, now time.Time) (int, error) {
	count := 0
	for _, p := range patients {
		p_age, err := Age(p, now)
		if err != nil {
			return 0, err
		}
		if p_age > age {
			count++
		}
	}
	return count, nil
}

// SickPatients returns the ids of patients whose first lab_name lab passes the
// comparison. Patients without such a lab are left out; an invalid comparator
// fails the whole query, even when no patient has the lab.
func SickPatients(patients []*ehr.Patient, lab_name, comparator string, value float64) (pkg.Map[string, struct{}], error) {
	return sickPatients(patients, comparator, func(p *ehr.Patient) (bool, error) {
		return IsSick(p, lab_name, comparator, value)
	})
}

// SickPatientsAtAdmission is SickPatients restricted to one admission id.
func SickPatientsAtAdmission(patients []*ehr.Patient, admission_id, lab_name, comparator string, value float64) (pkg.Map[string, struct{}], error) {
	return sickPatients(patients, comparator, func(p *ehr.Patient) (bool, error) {
		return IsSickAtAdmission(p, admission_id, lab_name, comparator, value)
	})
}

func sickPatients(patients []*ehr.Patient, comparator string, is_sick func(*ehr.Patient) (bool, error)) (pkg.Map[string, struct{}], error) {
	if _, err := ParseComparator(comparator); err != nil {
		return nil, err
	}

	sick := pkg.SetOf[string]()
	for _, p := range patients {
		ok, err := is_sick(p)
		if errors.Is(err, ehr.ErrNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		if ok {
			sick.Set(p.ID, struct{}{})
		}
	}
	return sick, nil
}
