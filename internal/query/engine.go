package query

import (
	"sort"
	"time"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/internal/repository"
	"github.com/tobsdb/ehr/pkg"
)

// Engine answers queries against a repository. Now defaults to time.Now.
type Engine struct {
	Repo repository.PatientRepository
	Now  func() time.Time
}

func NewEngine(repo repository.PatientRepository) *Engine {
	return &Engine{Repo: repo, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) Patient(id string) (*ehr.Patient, error) {
	return e.Repo.Get(id)
}

func (e *Engine) Patients() ([]*ehr.Patient, error) {
	return e.Repo.All()
}

func (e *Engine) AgeOf(id string) (float64, error) {
	p, err := e.Repo.Get(id)
	if err != nil {
		return 0, err
	}
	return Age(p, e.now())
}

func (e *Engine) NumOlderThan(age float64) (int, error) {
	patients, err := e.Repo.All()
	if err != nil {
		return 0, err
	}
	return NumOlderThan(patients, age, e.now())
}

func (e *Engine) IsSick(id, lab_name, comparator string, value float64) (bool, error) {
	if _, err := ParseComparator(comparator); err != nil {
		return false, err
	}
	p, err := e.Repo.Get(id)
	if err != nil {
		return false, err
	}
	return IsSick(p, lab_name, comparator, value)
}

// SickPatients returns the matching ids in natural order.
func (e *Engine) SickPatients(lab_name, comparator string, value float64) ([]string, error) {
	if _, err := ParseComparator(comparator); err != nil {
		return nil, err
	}
	patients, err := e.Repo.All()
	if err != nil {
		return nil, err
	}
	sick, err := SickPatients(patients, lab_name, comparator, value)
	if err != nil {
		return nil, err
	}
	return SortedIDs(sick), nil
}

func (e *Engine) SickPatientsAtAdmission(admission_id, lab_name, comparator string, value float64) ([]string, error) {
	if _, err := ParseComparator(comparator); err != nil {
		return nil, err
	}
	patients, err := e.Repo.All()
	if err != nil {
		return nil, err
	}
	sick, err := SickPatientsAtAdmission(patients, admission_id, lab_name, comparator, value)
	if err != nil {
		return nil, err
	}
	return SortedIDs(sick), nil
}

func (e *Engine) AgeAtFirstAdmission(id string) (float64, error) {
	p, err := e.Repo.Get(id)
	if err != nil {
		return 0, err
	}
	return AgeAtFirstAdmission(p)
}

func SortedIDs(set pkg.Map[string, struct{}]) []string {
	ids := set.Keys()
	sort.Slice(ids, func(i, j int) bool { return pkg.NaturalLess(ids[i], ids[j]) })
	return ids
}
