package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tobsdb/ehr/pkg"
)

const (
	fieldSeparator = "\t"
	maxLineSize    = 1024 * 1024
)

// Parse reads a tab-delimited file. The first line names the columns.
func Parse(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening table")
	}
	defer f.Close()

	table, err := ParseReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	pkg.DebugLog("parsed", path, "columns:", len(table.Headers()), "rows:", table.Len())
	return table, nil
}

// ParseReader reads tab-delimited text from r. An empty input gives an empty
// table; a header line without data gives empty columns.
func ParseReader(r io.Reader) (*Table, error) {
	// drop a leading UTF-8 byte order mark
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	table := NewTable()
	line_idx := 0
	has_header := false

	for scanner.Scan() {
		line_idx++
		line := strings.TrimRight(scanner.Text(), "\r")

		// Ignore empty lines
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		cells := splitLine(line)

		if !has_header {
			for _, name := range cells {
				if !table.addColumn(name) {
					return nil, ParseLineError(line_idx, fmt.Sprintf("Duplicate column %s", name))
				}
			}
			has_header = true
			continue
		}

		n_columns := len(table.columns.Sorted)
		if len(cells) < n_columns {
			return nil, ParseLineError(line_idx,
				fmt.Sprintf("expected %d fields, found %d", n_columns, len(cells)))
		}
		table.appendRow(cells[:n_columns])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

func splitLine(line string) []string {
	cells := strings.Split(line, fieldSeparator)
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}

func ParseLineError(line int, reason string) error {
	return fmt.Errorf("Error parsing line %d: %s", line, reason)
}
