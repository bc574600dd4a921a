// Package ingest parses property rolls and contact lists from CSV and XLSX
// uploads into the closed model schemas, and writes the CSV exports and
// templates the workflow hands back to the user.
package ingest

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a parsed tabular file: a header row plus data rows keyed by
// column name. Rows shorter than the header leave the missing cells absent.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// ReadTable parses CSV bytes into a Table. The first row is the header;
// variable-width rows are tolerated.
func ReadTable(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}
	if len(records) == 0 {
		return nil, eris.New("ingest: empty csv")
	}

	return tableFromRows(records[0], records[1:]), nil
}

func tableFromRows(header []string, rows [][]string) *Table {
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	t := &Table{Columns: columns, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		m := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				m[col] = strings.TrimSpace(row[i])
			}
		}
		t.Rows = append(t.Rows, m)
	}
	return t
}
