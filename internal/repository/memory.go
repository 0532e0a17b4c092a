package repository

import (
	"sync"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/pkg"
	sorted "github.com/tobshub/go-sortedmap"
)

// Memory keeps patients in a map sorted by natural id order.
type Memory struct {
	locker   sync.RWMutex
	patients *sorted.SortedMap[string, *ehr.Patient]
	count    int
}

func patientComparisonFunc(a, b *ehr.Patient) bool {
	return pkg.NaturalLess(a.ID, b.ID)
}

func NewMemory() *Memory {
	return &Memory{patients: sorted.New[string, *ehr.Patient](0, patientComparisonFunc)}
}

func (m *Memory) GetLocker() *sync.RWMutex { return &m.locker }

func (m *Memory) Len() int {
	n, _ := pkg.RLockGet(m, func() (int, error) { return m.count, nil })
	return n
}

func (m *Memory) PutPatient(p *ehr.Patient) error {
	return pkg.LockWrap(m, func() error {
		if m.patients.Insert(p.ID, p) {
			m.count++
			return nil
		}

		// last write wins, but labs already attached stay with the id
		prev, _ := m.patients.Get(p.ID)
		p.Labs = append(prev.Labs, p.Labs...)
		m.patients.Replace(p.ID, p)
		pkg.DebugLog("replaced patient", p.ID)
		return nil
	})
}

func (m *Memory) AttachLab(l *ehr.Lab) error {
	return pkg.LockWrap(m, func() error {
		p, ok := m.patients.Get(l.PatientID)
		if !ok {
			return labReferenceError(l)
		}
		return p.TakesLab(l)
	})
}

func (m *Memory) Batch(f func(w Writer) error) error { return f(m) }

func (m *Memory) Get(id string) (*ehr.Patient, error) {
	return pkg.RLockGet(m, func() (*ehr.Patient, error) {
		p, ok := m.patients.Get(id)
		if !ok {
			return nil, patientNotFound(id)
		}
		return p, nil
	})
}

func (m *Memory) All() ([]*ehr.Patient, error) {
	return pkg.RLockGet(m, func() ([]*ehr.Patient, error) {
		patients := make([]*ehr.Patient, 0, m.count)
		iterCh, err := m.patients.IterCh()
		if err != nil {
			// nothing to iterate
			return patients, nil
		}
		for rec := range iterCh.Records() {
			patients = append(patients, rec.Val)
		}
		return patients, nil
	})
}
