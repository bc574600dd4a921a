package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Summarize renders a short human-readable digest of a property dataset:
// record count, status breakdown, and formatted balance/assessed totals.
func Summarize(records []model.PropertyRecord) string {
	p := message.NewPrinter(language.AmericanEnglish)

	var balance float64
	var assessed int64
	byStatus := map[model.AccountStatus]int{}
	for _, r := range records {
		balance += r.BalanceAmount
		assessed += int64(r.AssessedValue)
		byStatus[r.Status]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Sprintf("%d property records", len(records)))
	for _, s := range []model.AccountStatus{model.AccountStatusUnpaid, model.AccountStatusPending, model.AccountStatusPaid} {
		if n := byStatus[s]; n > 0 {
			fmt.Fprintf(&b, "  %s: %s\n", s, p.Sprintf("%d", n))
		}
	}
	fmt.Fprintf(&b, "  total balance: %s\n", p.Sprintf("$%.2f", balance))
	fmt.Fprintf(&b, "  total assessed value: %s\n", p.Sprintf("$%d", assessed))
	return b.String()
}
