// Package contact implements the contact normalization and
// first-contact-per-owner selection logic at the center of the outreach
// workflow.
package contact

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// RawTable is an uploaded or scraped contact dataset before normalization.
// Rows are keyed by column name; absent cells are absent keys.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// requiredColumns must all be present for normalization to proceed.
var requiredColumns = []string{"id", "name", "type", "value"}

const defaultAddress = "Unknown Address"

// Normalize validates and repairs a raw contact table into canonical
// ContactRecords. It fails if any required column is missing from the table
// header; row-level problems are repaired, never rejected: an unknown contact
// type is coerced to phone_number with a warning, and absent
// selected/address/current_address cells receive defaults. The operation is
// all-or-nothing: on error no partially normalized rows are returned.
func Normalize(t RawTable) ([]model.ContactRecord, []string, error) {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[strings.TrimSpace(strings.ToLower(c))] = true
	}

	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, eris.Errorf("contact: missing required columns: %s", strings.Join(missing, ", "))
	}

	records := make([]model.ContactRecord, 0, len(t.Rows))
	var warnings []string
	seenInvalid := map[string]bool{}

	for _, row := range t.Rows {
		rec := model.ContactRecord{
			ID:             row["id"],
			Name:           row["name"],
			Type:           model.ContactType(row["type"]),
			Value:          row["value"],
			Address:        row["address"],
			CurrentAddress: row["current_address"],
		}

		if !rec.Type.Valid() {
			if !seenInvalid[string(rec.Type)] {
				seenInvalid[string(rec.Type)] = true
				warnings = append(warnings, fmt.Sprintf("invalid contact type %q converted to %s", rec.Type, model.ContactTypePhone))
			}
			rec.Type = model.ContactTypePhone
		}

		if sel, ok := row["selected"]; ok && strings.TrimSpace(sel) != "" {
			rec.Selected = parseBool(sel)
		} else {
			rec.Selected = true
		}
		if rec.Address == "" {
			rec.Address = defaultAddress
		}
		if rec.CurrentAddress == "" {
			rec.CurrentAddress = rec.Address
		}

		records = append(records, rec)
	}

	return records, warnings, nil
}

// Repair applies the row-level normalization rules to records that are
// already structurally shaped, e.g. scrape results decoded from JSON. Unlike
// Normalize it cannot fail: there is no header to validate.
func Repair(records []model.ContactRecord) ([]model.ContactRecord, []string) {
	out := make([]model.ContactRecord, len(records))
	var warnings []string
	seenInvalid := map[string]bool{}

	for i, rec := range records {
		if !rec.Type.Valid() {
			if !seenInvalid[string(rec.Type)] {
				seenInvalid[string(rec.Type)] = true
				warnings = append(warnings, fmt.Sprintf("invalid contact type %q converted to %s", rec.Type, model.ContactTypePhone))
			}
			rec.Type = model.ContactTypePhone
		}
		if rec.Address == "" {
			rec.Address = defaultAddress
		}
		if rec.CurrentAddress == "" {
			rec.CurrentAddress = rec.Address
		}
		out[i] = rec
	}

	return out, warnings
}

func parseBool(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true
	}
	return false
}
