package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tobsdb/ehr/internal/ehr"
	"github.com/tobsdb/ehr/pkg"
	"gopkg.in/yaml.v3"
)

// Environment variables override the config file, e.g. EHR_SERVER_PORT.
const EnvPrefix = "EHR"

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendTables Backend = "tables"
)

type LogConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Debug   bool `mapstructure:"debug" yaml:"debug"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

type Config struct {
	PatientsPath string      `mapstructure:"patients" yaml:"patients"`
	LabsPath     string      `mapstructure:"labs" yaml:"labs"`
	Backend      Backend     `mapstructure:"backend" yaml:"backend"`
	DSN          string      `mapstructure:"dsn" yaml:"dsn"`
	Columns      ehr.Columns `mapstructure:"columns" yaml:"columns"`

	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

func Default() *Config {
	return &Config{
		Backend: BackendMemory,
		DSN:     "ehr.db",
		Columns: ehr.DefaultColumns(),
		Log:     LogConfig{Enabled: true},
		Server:  ServerConfig{Port: 7085},
	}
}

// FlagKeys maps command line flag names onto config keys.
var FlagKeys = map[string]string{
	"patients": "patients",
	"labs":     "labs",
	"backend":  "backend",
	"dsn":      "dsn",
	"debug":    "log.debug",
	"quiet":    "log.enabled",
	"port":     "server.port",
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("patients", c.PatientsPath)
	v.SetDefault("labs", c.LabsPath)
	v.SetDefault("backend", string(c.Backend))
	v.SetDefault("dsn", c.DSN)

	v.SetDefault("columns.patient.id", c.Columns.Patient.ID)
	v.SetDefault("columns.patient.gender", c.Columns.Patient.Gender)
	v.SetDefault("columns.patient.date_of_birth", c.Columns.Patient.DateOfBirth)
	v.SetDefault("columns.patient.race", c.Columns.Patient.Race)
	v.SetDefault("columns.lab.patient_id", c.Columns.Lab.PatientID)
	v.SetDefault("columns.lab.admission_id", c.Columns.Lab.AdmissionID)
	v.SetDefault("columns.lab.name", c.Columns.Lab.Name)
	v.SetDefault("columns.lab.value", c.Columns.Lab.Value)
	v.SetDefault("columns.lab.date", c.Columns.Lab.Date)

	v.SetDefault("log.enabled", c.Log.Enabled)
	v.SetDefault("log.debug", c.Log.Debug)
	v.SetDefault("server.port", c.Server.Port)
	v.SetDefault("server.username", c.Server.Username)
	v.SetDefault("server.password", c.Server.Password)
}

// Load reads the config file at path (or an optional ./ehr.yaml when path is
// empty), then EHR_* environment variables, then any changed flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ehr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.Wrap(err, "reading config")
		}
	} else {
		pkg.DebugLog("using config file", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if name == "quiet" {
				// --quiet switches logging off
				v.Set(key, f.Value.String() != "true")
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "binding flag %s", name)
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return c, nil
}

// Validate checks the backend has what it needs to open.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendTables:
		if c.PatientsPath == "" || c.LabsPath == "" {
			return fmt.Errorf("Backend %s needs both a patients and a labs file", c.Backend)
		}
	case BackendSQLite:
		if c.DSN == "" {
			return fmt.Errorf("Backend sqlite needs a dsn")
		}
	default:
		return fmt.Errorf("Unknown backend %q: expected memory, sqlite or tables", c.Backend)
	}

	if c.Server.Password != "" && c.Server.Username == "" {
		return fmt.Errorf("Server password set without a username")
	}
	return nil
}

func (c *Config) LogLevel() pkg.LogLevel {
	if !c.Log.Enabled {
		return pkg.LogLevelNone
	}
	if c.Log.Debug {
		return pkg.LogLevelDebug
	}
	return pkg.LogLevelErrOnly
}

// YAML renders the config with the server password masked.
func (c *Config) YAML() ([]byte, error) {
	out := *c
	if out.Server.Password != "" {
		out.Server.Password = "********"
	}
	buf, err := yaml.Marshal(&out)
	return buf, errors.Wrap(err, "encoding config")
}
