package pkg

import (
	"strconv"
	"strings"
)

func Filter[T any](items []T, predicate func(T) bool) []T {
	filtered := []T{}
	for _, item := range items {
		if predicate(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// NaturalLess orders identifiers numerically when both are integers
// ("2" < "10") and lexically otherwise. Numbers sort before words.
func NaturalLess(a, b string) bool {
	a_num, a_err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	b_num, b_err := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	switch {
	case a_err == nil && b_err == nil:
		if a_num != b_num {
			return a_num < b_num
		}
		return a < b
	case a_err == nil:
		return true
	case b_err == nil:
		return false
	}
	return a < b
}

// SetOf collects items into a set.
func SetOf[T comparable](items ...T) Map[T, struct{}] {
	set := make(Map[T, struct{}], len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
