package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/pkg"
)

const sqliteDriver = "sqlite"

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		pid    TEXT PRIMARY KEY,
		gender TEXT NOT NULL DEFAULT '',
		dob    TEXT NOT NULL,
		race   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS labs (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		pid   TEXT NOT NULL REFERENCES patients (pid),
		aid   TEXT NOT NULL,
		name  TEXT NOT NULL,
		value REAL NOT NULL,
		date  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS labs_pid ON labs (pid)`,
}

type patientRow struct {
	ID     string `db:"pid"`
	Gender string `db:"gender"`
	DOB    string `db:"dob"`
	Race   string `db:"race"`
}

func (r patientRow) toPatient() (*ehr.Patient, error) {
	dob, err := ehr.ParseTimestamp(r.DOB)
	if err != nil {
		return nil, errors.Wrapf(err, "patient %s", r.ID)
	}
	return ehr.NewPatient(r.ID, r.Gender, dob, r.Race), nil
}

type labRow struct {
	ID          int64   `db:"id"`
	PatientID   string  `db:"pid"`
	AdmissionID string  `db:"aid"`
	Name        string  `db:"name"`
	Value       float64 `db:"value"`
	Date        string  `db:"date"`
}

func (r labRow) toLab() (*ehr.Lab, error) {
	date, err := ehr.ParseTimestamp(r.Date)
	if err != nil {
		return nil, errors.Wrapf(err, "lab %d", r.ID)
	}
	return &ehr.Lab{
		PatientID:   r.PatientID,
		AdmissionID: r.AdmissionID,
		Name:        r.Name,
		Value:       r.Value,
		Date:        date,
	}, nil
}

// SQLite stores patients and labs in two relational tables. Every read is an
// independent statement; nothing is cached between queries.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) the database at dsn. ":memory:" gives a
// private in-memory database.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite")
	}
	// one connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "creating sqlite schema")
		}
	}

	pkg.DebugLog("opened sqlite database", dsn)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) PutPatient(p *ehr.Patient) error { return sqliteWriter{s.db}.PutPatient(p) }
func (s *SQLite) AttachLab(l *ehr.Lab) error      { return sqliteWriter{s.db}.AttachLab(l) }

// Batch runs f inside a single transaction.
func (s *SQLite) Batch(f func(w Writer) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if err := f(sqliteWriter{tx}); err != nil {
		tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (s *SQLite) Get(id string) (*ehr.Patient, error) {
	var row patientRow
	err := s.db.Get(&row, `SELECT pid, gender, dob, race FROM patients WHERE pid = ?`, id)
	if err == sql.ErrNoRows {
		return nil, patientNotFound(id)
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading patient %s", id)
	}

	p, err := row.toPatient()
	if err != nil {
		return nil, err
	}

	var lab_rows []labRow
	err = s.db.Select(&lab_rows,
		`SELECT id, pid, aid, name, value, date FROM labs WHERE pid = ? ORDER BY id`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "reading labs of patient %s", id)
	}

	for _, lab_row := range lab_rows {
		lab, err := lab_row.toLab()
		if err != nil {
			return nil, err
		}
		if err := p.TakesLab(lab); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *SQLite) All() ([]*ehr.Patient, error) {
	var patient_rows []patientRow
	if err := s.db.Select(&patient_rows, `SELECT pid, gender, dob, race FROM patients ORDER BY rowid`); err != nil {
		return nil, errors.Wrap(err, "reading patients")
	}

	patients := make([]*ehr.Patient, 0, len(patient_rows))
	by_id := make(pkg.Map[string, *ehr.Patient], len(patient_rows))
	for _, row := range patient_rows {
		p, err := row.toPatient()
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
		by_id.Set(p.ID, p)
	}

	var lab_rows []labRow
	if err := s.db.Select(&lab_rows, `SELECT id, pid, aid, name, value, date FROM labs ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "reading labs")
	}

	for _, row := range lab_rows {
		lab, err := row.toLab()
		if err != nil {
			return nil, err
		}
		p := by_id.Get(lab.PatientID)
		if p == nil {
			return nil, labReferenceError(lab)
		}
		if err := p.TakesLab(lab); err != nil {
			return nil, err
		}
	}
	return patients, nil
}

// sqliteWriter runs writes against either the database or an open transaction.
type sqliteWriter struct {
	ext sqlx.Ext
}

func (w sqliteWriter) PutPatient(p *ehr.Patient) error {
	_, err := sqlx.NamedExec(w.ext, `
		INSERT INTO patients (pid, gender, dob, race)
		VALUES (:pid, :gender, :dob, :race)
		ON CONFLICT (pid) DO UPDATE SET
			gender = excluded.gender, dob = excluded.dob, race = excluded.race`,
		patientRow{p.ID, p.Gender, ehr.FormatTimestamp(p.DateOfBirth), p.Race})
	return errors.Wrapf(err, "writing patient %s", p.ID)
}

func (w sqliteWriter) AttachLab(l *ehr.Lab) error {
	var n int
	if err := sqlx.Get(w.ext, &n, `SELECT COUNT(*) FROM patients WHERE pid = ?`, l.PatientID); err != nil {
		return errors.Wrapf(err, "looking up patient %s", l.PatientID)
	}
	if n == 0 {
		return labReferenceError(l)
	}

	_, err := sqlx.NamedExec(w.ext, `
		INSERT INTO labs (pid, aid, name, value, date)
		VALUES (:pid, :aid, :name, :value, :date)`,
		labRow{
			PatientID:   l.PatientID,
			AdmissionID: l.AdmissionID,
			Name:        l.Name,
			Value:       l.Value,
			Date:        ehr.FormatTimestamp(l.Date),
		})
	return errors.Wrapf(err, "writing lab %s", l)
}
