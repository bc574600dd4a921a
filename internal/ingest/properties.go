package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// propertyColumns are the columns of the closed PropertyRecord schema.
// Anything else lands in the Extra side-map.
var propertyColumns = map[string]bool{
	"Account Number":   true,
	"Account Status":   true,
	"Owner Name":       true,
	"Property Address": true,
	"Owner Address":    true,
	"Balance Amount":   true,
	"Assessed Value":   true,
	"Tax Yr":           true,
	"Roll Yr":          true,
	"Cert Status":      true,
	"Deed Status":      true,
	"Alternate Key":    true,
}

// ParseProperties maps a parsed table onto PropertyRecords. Monetary and
// numeric cells tolerate "$" and thousands separators; negative balances and
// assessed values are clamped to zero with a warning, and an unknown account
// status is preserved as Pending with a warning. The table must carry at
// least an Account Number column.
func ParseProperties(t *Table) ([]model.PropertyRecord, []string, error) {
	hasAccount := false
	for _, c := range t.Columns {
		if c == "Account Number" {
			hasAccount = true
			break
		}
	}
	if !hasAccount {
		return nil, nil, eris.New("ingest: missing required column: Account Number")
	}

	records := make([]model.PropertyRecord, 0, len(t.Rows))
	var warnings []string

	for i, row := range t.Rows {
		rec := model.PropertyRecord{
			AccountNumber:   row["Account Number"],
			Status:          model.AccountStatus(row["Account Status"]),
			OwnerName:       row["Owner Name"],
			PropertyAddress: row["Property Address"],
			OwnerAddress:    row["Owner Address"],
			CertStatus:      row["Cert Status"],
			DeedStatus:      row["Deed Status"],
		}

		if !rec.Status.Valid() {
			if rec.Status != "" {
				warnings = append(warnings, fmt.Sprintf("row %d: unknown account status %q treated as Pending", i+1, rec.Status))
			}
			rec.Status = model.AccountStatusPending
		}

		rec.BalanceAmount = parseMoney(row["Balance Amount"])
		if rec.BalanceAmount < 0 {
			warnings = append(warnings, fmt.Sprintf("row %d: negative balance clamped to 0", i+1))
			rec.BalanceAmount = 0
		}
		rec.AssessedValue = int(parseMoney(row["Assessed Value"]))
		if rec.AssessedValue < 0 {
			warnings = append(warnings, fmt.Sprintf("row %d: negative assessed value clamped to 0", i+1))
			rec.AssessedValue = 0
		}
		rec.TaxYear = parseInt(row["Tax Yr"])
		rec.RollYear = parseInt(row["Roll Yr"])
		rec.AlternateKey = parseInt(row["Alternate Key"])

		for _, col := range t.Columns {
			if propertyColumns[col] {
				continue
			}
			if v, ok := row[col]; ok && v != "" {
				if rec.Extra == nil {
					rec.Extra = map[string]string{}
				}
				rec.Extra[col] = v
			}
		}

		records = append(records, rec)
	}

	return records, warnings, nil
}

// WritePropertiesCSV exports records in the same column layout the parser
// accepts, so exports round-trip.
func WritePropertiesCSV(w io.Writer, records []model.PropertyRecord) error {
	if records == nil {
		records = []model.PropertyRecord{}
	}
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "ingest: marshal properties csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "ingest: write properties csv")
	}
	return nil
}

func parseMoney(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	// Spreadsheet exports render integer cells as "2023.00".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
