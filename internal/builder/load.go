package builder

import (
	"github.com/tobsdb/ehr/internal/parser"
)

// ParseFiles parses the patient and lab extracts.
func ParseFiles(patients_path, labs_path string) (patients, labs *parser.Table, err error) {
	patients, err = parser.Parse(patients_path)
	if err != nil {
		return nil, nil, err
	}
	labs, err = parser.Parse(labs_path)
	if err != nil {
		return nil, nil, err
	}
	return patients, labs, nil
}
