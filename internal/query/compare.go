package query

import "github.com/tobsdb/ehr/internal/ehr"

type Comparator string

const (
	CompareGreater Comparator = ">"
	CompareLess    Comparator = "<"
)

func ParseComparator(s string) (Comparator, error) {
	c := Comparator(s)
	if !c.IsValid() {
		return "", ehr.NewInvalidArgumentError("Incorrect comparator %q: expected \">\" or \"<\"", s)
	}
	return c, nil
}

func (c Comparator) IsValid() bool {
	return c == CompareGreater || c == CompareLess
}

// Compare is strict in both directions: equal values never match.
func (c Comparator) Compare(value, threshold float64) bool {
	switch c {
	case CompareGreater:
		return value > threshold
	case CompareLess:
		return value < threshold
	}
	return false
}
