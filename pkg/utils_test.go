package pkg_test

import (
	"sort"
	"testing"

	. "github.com/tobsdb/ehr/pkg"
	"gotest.tools/v3/assert"
)

func TestFilter(t *testing.T) {
	res := Filter([]int{1, 2, 3, 4, 5, 6}, func(i int) bool {
		return i%2 == 0
	})

	if len(res) != 3 {
		t.Errorf("Expected 3, got %d", len(res))
	}

	if res[0] != 2 || res[1] != 4 || res[2] != 6 {
		t.Errorf("Expected 2, 4, 6, got %d, %d, %d", res[0], res[1], res[2])
	}
}

func TestNaturalLess(t *testing.T) {
	ids := []string{"10", "b", "2", "a", "1", "99"}
	sort.Slice(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })
	assert.DeepEqual(t, ids, []string{"1", "2", "10", "99", "a", "b"})
}

func TestInsertSortMap(t *testing.T) {
	m := NewInsertSortMap[string, int]()
	assert.Assert(t, m.Push("b", 1))
	assert.Assert(t, m.Push("a", 2))
	assert.Assert(t, !m.Push("b", 3), "duplicate push should fail")

	m.Set("b", 4)
	m.Set("c", 5)

	assert.DeepEqual(t, m.Keys(), []string{"b", "a", "c"})
	assert.Equal(t, m.Get("b"), 4)

	m.Delete("a")
	assert.Equal(t, m.Len(), 2)
	assert.Assert(t, !m.Has("a"))
}

func TestSetOf(t *testing.T) {
	s := SetOf("1", "2", "2")
	assert.Equal(t, len(s), 2)
	assert.Assert(t, s.Has("1"))
}
