package config

import (
	"fmt"

	"github.com/tobsdb/ehr/internal/auth"
	"github.com/tobsdb/ehr/internal/builder"
	"github.com/tobsdb/ehr/internal/repository"
	"github.com/tobsdb/ehr/pkg"
)

// Repository is what the commands and the server query against.
type Repository interface {
	repository.PatientRepository
	Close() error
}

type nopCloser struct {
	repository.PatientRepository
}

func (nopCloser) Close() error { return nil }

// OpenRepository builds the configured backend. The sqlite backend serves the
// database at DSN as it is; use Import to fill it.
func OpenRepository(c *Config) (Repository, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	pkg.DebugLog("opening", c.Backend, "backend")
	switch c.Backend {
	case BackendSQLite:
		db, err := repository.OpenSQLite(c.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendTables:
		patients, labs, err := builder.ParseFiles(c.PatientsPath, c.LabsPath)
		if err != nil {
			return nil, err
		}
		t, err := repository.NewTables(patients, labs, c.Columns)
		if err != nil {
			return nil, err
		}
		return nopCloser{t}, nil
	default:
		patients, labs, err := builder.ParseFiles(c.PatientsPath, c.LabsPath)
		if err != nil {
			return nil, err
		}
		m, err := builder.BuildMemory(patients, labs, c.Columns)
		if err != nil {
			return nil, err
		}
		return nopCloser{m}, nil
	}
}

// Import parses the configured extracts into the sqlite database at DSN.
func Import(c *Config) (*repository.SQLite, error) {
	if c.PatientsPath == "" || c.LabsPath == "" || c.DSN == "" {
		return nil, fmt.Errorf("Import needs both extract paths and a dsn")
	}
	patients, labs, err := builder.ParseFiles(c.PatientsPath, c.LabsPath)
	if err != nil {
		return nil, err
	}
	db, err := repository.OpenSQLite(c.DSN)
	if err != nil {
		return nil, err
	}
	if err := builder.BuildPatients(patients, labs, db, c.Columns); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// User is nil when no username is configured.
func (c *Config) User() (*auth.User, error) {
	if c.Server.Username == "" {
		return nil, nil
	}
	return auth.NewUser(c.Server.Username, c.Server.Password)
}
