// Package ehrtest holds the sample patients and labs used across the tests.
package ehrtest

import (
	"time"

	"github.com/tobsdb/ehr/internal/ehr"
)

// Now is the reference instant the age expectations are computed against.
var Now = time.Date(2022, 2, 15, 0, 0, 0, 0, time.UTC)

const PatientsTSV = "PatientID\tPatientGender\tPatientDateOfBirth\tPatientRace\n" +
	"1\tMale\t1947-12-28 02:45:40.547\tWhite\n" +
	"2\tFemale\t1960-01-20 04:35:40.547\tAfrican American\n" +
	"3\tMale\t2000-02-13 04:35:40.547\tWhite\n" +
	"99\tFemale\t2020-02-23 04:35:40.547\tAsian\n"

const LabsTSV = "PatientID\tAdmissionID\tLabName\tLabValue\tLabUnits\tLabDateTime\n" +
	"1\t1\tlab_a\t1\tmg/dL\t2007-12-30 02:45:40.547\n" +
	"1\t1\tlab_b\t0.5\tmg/dL\t2007-12-30 02:45:40.547\n" +
	"1\t1\tlab_c\t10\tmg/dL\t2021-12-01 02:45:40.547\n" +
	"2\t1\tlab_a\t2\tmg/dL\t2022-01-20 04:35:40.547\n" +
	"2\t1\tlab_b\t0.6\tmg/dL\t2022-01-20 04:35:40.547\n" +
	"3\t1\tlab_a\t2\tmg/dL\t2022-02-14 04:35:40.547\n"

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustTime(s string) time.Time {
	t, err := ehr.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Patients returns fresh copies of the sample patients with their labs attached.
func Patients() []*ehr.Patient {
	p1 := ehr.NewPatient("1", "Male", mustTime("1947-12-28 02:45:40.547"), "White")
	p2 := ehr.NewPatient("2", "Female", mustTime("1960-01-20 04:35:40.547"), "African American")
	p3 := ehr.NewPatient("3", "Male", mustTime("2000-02-13 04:35:40.547"), "White")
	p99 := ehr.NewPatient("99", "Female", mustTime("2020-02-23 04:35:40.547"), "Asian")

	by_id := map[string]*ehr.Patient{"1": p1, "2": p2, "3": p3, "99": p99}
	for _, l := range Labs() {
		p, ok := by_id[l.PatientID]
		if !ok {
			panic("fixture lab " + l.String() + " has no patient")
		}
		must(p.TakesLab(l))
	}
	return []*ehr.Patient{p1, p2, p3, p99}
}

func Labs() []*ehr.Lab {
	lab := func(pid, aid, name string, value float64, date string) *ehr.Lab {
		return &ehr.Lab{PatientID: pid, AdmissionID: aid, Name: name, Value: value, Date: mustTime(date)}
	}
	return []*ehr.Lab{
		lab("1", "1", "lab_a", 1, "2007-12-30 02:45:40.547"),
		lab("1", "1", "lab_b", 0.5, "2007-12-30 02:45:40.547"),
		lab("1", "1", "lab_c", 10, "2021-12-01 02:45:40.547"),
		lab("2", "1", "lab_a", 2, "2022-01-20 04:35:40.547"),
		lab("2", "1", "lab_b", 0.6, "2022-01-20 04:35:40.547"),
		lab("3", "1", "lab_a", 2, "2022-02-14 04:35:40.547"),
	}
}
