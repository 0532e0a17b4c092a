package parser

import (
	"github.com/tobsdb/ehr/pkg"
)

// Table is a column oriented view of a tab-delimited extract.
// Every column holds the same number of raw string cells.
type Table struct {
	columns *pkg.InsertSortMap[string, []string]
	rows    int
}

func NewTable() *Table {
	return &Table{columns: pkg.NewInsertSortMap[string, []string]()}
}

// Headers returns the column names in file order.
func (t *Table) Headers() []string { return t.columns.Keys() }

func (t *Table) Has(name string) bool { return t.columns.Has(name) }

func (t *Table) Column(name string) ([]string, bool) {
	if !t.columns.Has(name) {
		return nil, false
	}
	return t.columns.Get(name), true
}

// Len is the number of data rows.
func (t *Table) Len() int { return t.rows }

// Row gathers the i-th cell of every column.
func (t *Table) Row(i int) pkg.Map[string, string] {
	row := make(pkg.Map[string, string], t.columns.Len())
	for _, name := range t.columns.Sorted {
		row.Set(name, t.columns.Get(name)[i])
	}
	return row
}

// Map returns the table as a plain column name -> cells map.
func (t *Table) Map() map[string][]string {
	m := make(map[string][]string, t.columns.Len())
	for _, name := range t.columns.Sorted {
		m[name] = t.columns.Get(name)
	}
	return m
}

func (t *Table) addColumn(name string) bool {
	return t.columns.Push(name, []string{})
}

func (t *Table) appendRow(cells []string) {
	for i, name := range t.columns.Sorted {
		t.columns.Idx.Set(name, append(t.columns.Get(name), cells[i]))
	}
	t.rows++
}
