package notify

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// WriteLedgerCSV writes the notification report with the exact column set
// {id,name,contact,type,timestamp,status,response}. An empty ledger produces
// a header-only file.
func WriteLedgerCSV(w io.Writer, ledger []model.NotificationOutcome) error {
	if ledger == nil {
		ledger = []model.NotificationOutcome{}
	}
	data, err := csvutil.Marshal(ledger)
	if err != nil {
		return eris.Wrap(err, "notify: marshal ledger csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "notify: write ledger csv")
	}
	return nil
}

// ReadLedgerCSV parses a previously exported notification report. The
// report round-trips with WriteLedgerCSV.
func ReadLedgerCSV(data []byte) ([]model.NotificationOutcome, error) {
	var ledger []model.NotificationOutcome
	if err := csvutil.Unmarshal(data, &ledger); err != nil {
		return nil, eris.Wrap(err, "notify: unmarshal ledger csv")
	}
	return ledger, nil
}
