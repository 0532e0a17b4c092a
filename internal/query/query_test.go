package query_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/internal/ehrtest"
	. "github.com/tobsdb/ehr/internal/query"
	"github.com/tobsdb/ehr/internal/repository"
	"github.com/tobsdb/ehr/pkg"
	"gotest.tools/v3/assert"
)

func patientMap() pkg.Map[string, *ehr.Patient] {
	m := pkg.Map[string, *ehr.Patient]{}
	for _, p := range ehrtest.Patients() {
		m.Set(p.ID, p)
	}
	return m
}

func TestAge(t *testing.T) {
	patients := patientMap()

	for id, want := range map[string]float64{"1": 74, "2": 62, "3": 22, "99": 2} {
		age, err := Age(patients.Get(id), ehrtest.Now)
		assert.NilError(t, err)
		assert.Equal(t, math.Round(age), want, "patient %s", id)
	}

	t.Run("monotonic in now", func(t *testing.T) {
		p := patients.Get("2")
		prev := math.Inf(-1)
		for days := 0; days < 2000; days += 97 {
			age, err := Age(p, ehrtest.Now.AddDate(0, 0, days))
			assert.NilError(t, err)
			assert.Assert(t, age >= prev)
			prev = age
		}
	})

	t.Run("no date of birth", func(t *testing.T) {
		_, err := Age(ehr.NewPatient("5", "Male", time.Time{}, "White"), ehrtest.Now)
		assert.Assert(t, errors.Is(err, ehr.ErrNotFound))
	})
}

func TestNumOlderThan(t *testing.T) {
	patients := ehrtest.Patients()

	for threshold, want := range map[float64]int{0: 4, 1000: 0, 50: 2} {
		n, err := NumOlderThan(patients, threshold, ehrtest.Now)
		assert.NilError(t, err)
		assert.Equal(t, n, want, "threshold %v", threshold)
	}

	t.Run("strictly greater", func(t *testing.T) {
		p := ehr.NewPatient("5", "Male", ehrtest.Now.AddDate(0, 0, -3653), "White")
		n, err := NumOlderThan([]*ehr.Patient{p}, 3653/ehr.DaysPerYear, ehrtest.Now)
		assert.NilError(t, err)
		assert.Equal(t, n, 0)
	})

	t.Run("born centuries ago", func(t *testing.T) {
		p := ehr.NewPatient("5", "Male", time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC), "White")
		now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

		age, err := Age(p, now)
		assert.NilError(t, err)
		assert.Equal(t, math.Floor(age), 321.0)

		n, err := NumOlderThan([]*ehr.Patient{p}, 300, now)
		assert.NilError(t, err)
		assert.Equal(t, n, 1)
	})

	t.Run("monotonic in threshold", func(t *testing.T) {
		prev := math.MaxInt
		for threshold := -10.0; threshold < 100; threshold += 7.5 {
			n, err := NumOlderThan(patients, threshold, ehrtest.Now)
			assert.NilError(t, err)
			assert.Assert(t, n <= prev)
			prev = n
		}
	})
}

func TestIsSick(t *testing.T) {
	patients := patientMap()

	sick, err := IsSick(patients.Get("1"), "lab_a", ">", 0.5)
	assert.NilError(t, err)
	assert.Assert(t, sick)

	sick, err = IsSick(patients.Get("2"), "lab_b", "<", 0.3)
	assert.NilError(t, err)
	assert.Assert(t, !sick)

	_, err = IsSick(patients.Get("1"), "lab_a", ">=", 0.5)
	assert.ErrorContains(t, err, "Incorrect comparator")
	assert.Assert(t, errors.Is(err, ehr.ErrInvalidArgument))

	_, err = IsSick(patients.Get("1"), "lab_z", ">", 100)
	assert.ErrorContains(t, err, "has not taken lab lab_z")
	assert.Assert(t, errors.Is(err, ehr.ErrNotFound))

	t.Run("comparator checked before labs", func(t *testing.T) {
		_, err := IsSick(patients.Get("99"), "lab_z", "=", 1)
		assert.Assert(t, errors.Is(err, ehr.ErrInvalidArgument))
	})

	t.Run("first lab wins", func(t *testing.T) {
		p := ehr.NewPatient("5", "Male", ehrtest.Now, "White")
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "1", Name: "lab_a", Value: 1}))
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "2", Name: "lab_a", Value: 9}))

		sick, err := IsSick(p, "lab_a", ">", 5)
		assert.NilError(t, err)
		assert.Assert(t, !sick)

		sick, err = IsSickAtAdmission(p, "2", "lab_a", ">", 5)
		assert.NilError(t, err)
		assert.Assert(t, sick)

		_, err = IsSickAtAdmission(p, "3", "lab_a", ">", 5)
		assert.Assert(t, errors.Is(err, ehr.ErrNotFound))
	})
}

func TestSickPatients(t *testing.T) {
	patients := ehrtest.Patients()

	sick, err := SickPatients(patients, "lab_a", ">", 1)
	assert.NilError(t, err)
	assert.DeepEqual(t, SortedIDs(sick), []string{"2", "3"})

	sick, err = SickPatients(patients, "lab_z", ">", 0)
	assert.NilError(t, err)
	assert.Equal(t, len(sick), 0)

	_, err = SickPatients(patients, "lab_a", ">=", 1)
	assert.ErrorContains(t, err, "Incorrect comparator")

	t.Run("invalid comparator on empty data", func(t *testing.T) {
		for _, c := range []string{"", "=", ">=", "gt", "<<"} {
			_, err := SickPatients(nil, "lab_a", c, 1)
			assert.Assert(t, errors.Is(err, ehr.ErrInvalidArgument), "comparator %q", c)
		}
	})

	t.Run("at admission", func(t *testing.T) {
		sick, err := SickPatientsAtAdmission(patients, "1", "lab_b", "<", 0.55)
		assert.NilError(t, err)
		assert.DeepEqual(t, SortedIDs(sick), []string{"1"})
	})
}

func TestAgeAtFirstAdmission(t *testing.T) {
	patients := patientMap()

	for id, want := range map[string]float64{"1": 60, "2": 62, "3": 22} {
		age, err := AgeAtFirstAdmission(patients.Get(id))
		assert.NilError(t, err)
		assert.Equal(t, math.Round(age), want, "patient %s", id)
	}

	_, err := AgeAtFirstAdmission(patients.Get("99"))
	assert.ErrorContains(t, err, "has not taken any lab yet")
	assert.Assert(t, errors.Is(err, ehr.ErrNotFound))

	t.Run("earliest first admission lab", func(t *testing.T) {
		dob := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		p := ehr.NewPatient("5", "Male", dob, "White")
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "2", Name: "lab_a", Date: dob.AddDate(1, 0, 0)}))
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "1", Name: "lab_a", Date: dob.AddDate(20, 0, 0)}))
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "1", Name: "lab_b", Date: dob.AddDate(10, 0, 0)}))

		age, err := AgeAtFirstAdmission(p)
		assert.NilError(t, err)
		assert.Equal(t, math.Round(age), 10.0)
	})

	t.Run("only later admissions", func(t *testing.T) {
		p := ehr.NewPatient("5", "Male", ehrtest.Now, "White")
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "2", Name: "lab_a", Date: ehrtest.Now}))
		_, err := AgeAtFirstAdmission(p)
		assert.Assert(t, errors.Is(err, ehr.ErrNotFound))
	})

	t.Run("lab before birth", func(t *testing.T) {
		p := ehr.NewPatient("5", "Male", ehrtest.Now, "White")
		assert.NilError(t, p.TakesLab(&ehr.Lab{PatientID: "5", AdmissionID: "1", Name: "lab_a", Date: ehrtest.Now.AddDate(-2, 0, 0)}))
		age, err := AgeAtFirstAdmission(p)
		assert.NilError(t, err)
		assert.Assert(t, age < 0)
	})
}

func TestEngine(t *testing.T) {
	repo := repository.NewMemory()
	for _, p := range ehrtest.Patients() {
		assert.NilError(t, repo.PutPatient(p))
	}
	engine := &Engine{Repo: repo, Now: func() time.Time { return ehrtest.Now }}

	n, err := engine.NumOlderThan(50)
	assert.NilError(t, err)
	assert.Equal(t, n, 2)

	age, err := engine.AgeOf("3")
	assert.NilError(t, err)
	assert.Equal(t, math.Round(age), 22.0)

	_, err = engine.AgeOf("42")
	assert.Assert(t, errors.Is(err, ehr.ErrNotFound))

	ids, err := engine.SickPatients("lab_a", ">", 1)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []string{"2", "3"})

	_, err = engine.SickPatients("lab_a", "!", 1)
	assert.Assert(t, errors.Is(err, ehr.ErrInvalidArgument))

	ids, err = engine.SickPatientsAtAdmission("1", "lab_c", ">", 5)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []string{"1"})

	sick, err := engine.IsSick("2", "lab_b", ">", 0.5)
	assert.NilError(t, err)
	assert.Assert(t, sick)

	age, err = engine.AgeAtFirstAdmission("1")
	assert.NilError(t, err)
	assert.Equal(t, math.Round(age), 60.0)

	_, err = engine.AgeAtFirstAdmission("99")
	assert.Assert(t, errors.Is(err, ehr.ErrNotFound))
}
