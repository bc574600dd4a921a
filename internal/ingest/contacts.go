package ingest

import (
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/contact"
	"github.com/sells-group/outreach-cli/internal/model"
)

// ParseContacts turns CSV bytes into the raw table the contact normalizer
// consumes. Column names are matched case-insensitively.
func ParseContacts(data []byte) (contact.RawTable, error) {
	t, err := ReadTable(data)
	if err != nil {
		return contact.RawTable{}, eris.Wrap(err, "ingest: parse contacts")
	}

	lower := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		lower[i] = strings.ToLower(c)
	}

	rows := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(row))
		for k, v := range row {
			m[strings.ToLower(k)] = v
		}
		rows = append(rows, m)
	}

	return contact.RawTable{Columns: lower, Rows: rows}, nil
}

// WriteContactsCSV exports contact records with the template column layout.
func WriteContactsCSV(w io.Writer, records []model.ContactRecord) error {
	if records == nil {
		records = []model.ContactRecord{}
	}
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "ingest: marshal contacts csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "ingest: write contacts csv")
	}
	return nil
}

// WriteContactTemplate writes the downloadable contact-upload template with
// the columns {id,name,type,value,address,current_address,selected} and a
// few example rows.
func WriteContactTemplate(w io.Writer) error {
	examples := []model.ContactRecord{
		{ID: "PROP-001", Name: "Owner Name", Type: model.ContactTypePhone, Value: "(555) 123-4567", Address: "123 Main St, City, State", CurrentAddress: "123 Main St, City, State", Selected: true},
		{ID: "PROP-001", Name: "Owner Name", Type: model.ContactTypeEmail, Value: "email@example.com", Address: "123 Main St, City, State", CurrentAddress: "123 Main St, City, State", Selected: true},
		{ID: "PROP-002", Name: "Another Owner", Type: model.ContactTypePhone, Value: "(555) 987-6543", Address: "456 Oak Ave, City, State", CurrentAddress: "PO Box 789, City, State", Selected: true},
	}
	return WriteContactsCSV(w, examples)
}
