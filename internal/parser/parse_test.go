package parser_test

import (
	"strings"
	"testing"

	. "github.com/tobsdb/ehr/internal/parser"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestParse(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		f := fs.NewFile(t, "data0", fs.WithContent(""))
		defer f.Remove()

		table, err := Parse(f.Path())
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Map(), map[string][]string{})
		assert.Equal(t, table.Len(), 0)
	})

	t.Run("rows", func(t *testing.T) {
		f := fs.NewFile(t, "data1", fs.WithContent(
			"var0\tvar1\tvar2\tvar3\n0\tTrue\tFalse\tTrue\n1\tFalse\tTrue\tTrue\n"))
		defer f.Remove()

		table, err := Parse(f.Path())
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Map(), map[string][]string{
			"var0": {"0", "1"},
			"var1": {"True", "False"},
			"var2": {"False", "True"},
			"var3": {"True", "True"},
		})
		assert.DeepEqual(t, table.Headers(), []string{"var0", "var1", "var2", "var3"})
		assert.Equal(t, table.Len(), 2)
	})

	t.Run("header only", func(t *testing.T) {
		f := fs.NewFile(t, "data2", fs.WithContent("var0\tvar1\tvar2\tvar3\n"))
		defer f.Remove()

		table, err := Parse(f.Path())
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Map(), map[string][]string{
			"var0": {}, "var1": {}, "var2": {}, "var3": {},
		})
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Parse("/does/not/exist.txt")
		assert.ErrorContains(t, err, "opening table")
	})
}

func TestParseReader(t *testing.T) {
	t.Run("byte order mark", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("\ufeffPatientID\tLabName\n1\tlab_a\n"))
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Headers(), []string{"PatientID", "LabName"})
	})

	t.Run("crlf and blank lines", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("a\tb\r\n1\t2\r\n\r\n3\t4\r\n"))
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Map(), map[string][]string{"a": {"1", "3"}, "b": {"2", "4"}})
	})

	t.Run("empty trailing field", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("a\tb\n1\t\n"))
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Map(), map[string][]string{"a": {"1"}, "b": {""}})
	})

	t.Run("short row", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader("a\tb\tc\n1\t2\n"))
		assert.Error(t, err, "Error parsing line 2: expected 3 fields, found 2")
	})

	t.Run("long row", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("a\tb\n1\t2\t3\n"))
		assert.NilError(t, err)
		assert.DeepEqual(t, table.Map(), map[string][]string{"a": {"1"}, "b": {"2"}})
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader("a\ta\n1\t2\n"))
		assert.ErrorContains(t, err, "Duplicate column a")
	})
}

func TestTableRow(t *testing.T) {
	table, err := ParseReader(strings.NewReader("PatientID\tLabName\tLabValue\n1\tlab_a\t1.0\n2\tlab_b\t0.6\n"))
	assert.NilError(t, err)

	row := table.Row(1)
	assert.Equal(t, row.Get("PatientID"), "2")
	assert.Equal(t, row.Get("LabValue"), "0.6")

	col, ok := table.Column("LabName")
	assert.Assert(t, ok)
	assert.DeepEqual(t, col, []string{"lab_a", "lab_b"})

	_, ok = table.Column("LabUnits")
	assert.Assert(t, !ok)
}
